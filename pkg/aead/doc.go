/*
Package aead provides the three authenticated-encryption schemes used for
payload protection, with byte layouts that interoperate with the companion
client.

# How it works:

Every scheme prepends its randomly generated nonce to the ciphertext, and
every ciphertext carries an authentication tag, so a blob is self-contained:
the matching key is all that is needed to open it.

  - SealSecretBox/OpenSecretBox: NaCl secretbox (XSalsa20-Poly1305),
    layout nonce(24)||ciphertext||tag.
  - SealBox/OpenBox: NaCl box with a fresh ephemeral X25519 keypair per call,
    layout ephemeralPub(32)||nonce(24)||ciphertext||tag. Only the holder of
    the recipient private key can open it.
  - SealGCM/OpenGCM: AES-256-GCM, layout nonce(12)||ciphertext||tag(16).

# General guidelines:

  - Seal functions return an error only for caller bugs (bad key size) or a
    failing entropy source. Open functions never return an error: tampering,
    truncation, and wrong keys all report ok=false so batch callers can
    continue with their remaining items.
  - SealSecretBox pads or truncates its key to 32 bytes for compatibility
    with the companion client. SealGCM rejects anything but a 32-byte key.
*/
package aead
