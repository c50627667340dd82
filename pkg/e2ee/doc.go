/*
Package e2ee is the end-to-end encryption core of the companion client: a
Manager that owns all key material derived from one 32-byte master secret,
per-session and per-machine encryption facades, and a bounded LRU cache of
decrypted payloads.

# How it works:

New derives two things from the master secret via the keytree package: an
X25519 content keypair (used to wrap per-entity data encryption keys to
self) and a stable anonymous id. InitializeSessions and InitializeMachines
then register one facade per entity, choosing its scheme by whether the
entity brought its own data encryption key: with one, payloads use
AES-256-GCM behind a version byte; without one, the legacy NaCl secretbox
keyed by the master secret.

Facades decrypt through the shared cache, so a payload version is decrypted
at most once, and batch message decrypts submit all cache misses to the
cipher in a single call. Decryption is fail-closed per item: tampered,
truncated, or foreign ciphertext degrades to "no plaintext available" and
never to an error reaching UI-adjacent code.

# General guidelines:

  - One Manager per master secret, living as long as the application
    session. Facade maps and caches share its lifetime.
  - Facade accessors return nil for unknown ids; initialize first.
  - A single facade is not designed for concurrent mutation, but distinct
    entities can be worked concurrently; the cache is internally locked.
*/
package e2ee
