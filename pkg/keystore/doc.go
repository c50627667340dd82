/*
Package keystore persists wrapped per-entity data encryption keys between
application runs.

Keys enter and leave the store in wrapped form only, as produced by the
encryption manager's key wrapping, so the store never sees plaintext key
material. All returns the full (id, wrapped key) map that the manager's
session and machine initializers consume after unwrapping.

Two backends implement Store: FileStore, a single binary file for simple
deployments, and SQLiteStore for clients that already ship a database.
*/
package keystore
