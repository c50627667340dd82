/*
Package envelope abstracts the payload encryption schemes behind a batch
Encryptor/Decryptor capability pair, so callers stay agnostic to which
scheme protects a given entity.

Three implementations exist: SecretBoxEncryption (legacy symmetric, keyed
from the master secret), BoxEncryption (public key, used for wrapping keys
to self), and AES256Encryption (per-entity data encryption key, blobs
prefixed with a format version byte).

Decryption is fail-open at the batch level and fail-closed per item: a blob
that cannot be authenticated turns into a nil element at its position and
the rest of the batch proceeds.
*/
package envelope
