/*
Package keytree implements deterministic hierarchical key derivation from a
single master secret, in the style of BIP32 hardened derivation.

# How it works:

A usage label selects an independent subtree: the root node is
HMAC-SHA512(key=master, data=label+" Master Seed"), split into a 32-byte key
and a 32-byte chain code. Each path segment then derives a child node as
HMAC-SHA512(key=parentChainCode, data=0x00||segment), split the same way.
The final node's key is the derived key.

Distinct usage labels produce unrelated trees from the same master secret, so
keys handed to different consumers never correlate. Derivation is pure
computation with no error paths and no randomness; nodes are recomputed on
demand and never stored.
*/
package keytree
