package keytree

import (
	"crypto/hmac"
	"crypto/sha512"
)

// KeySize is the size of every derived key and chain code.
const KeySize = 32

const rootSuffix = " Master Seed"

// Node is one step of the derivation tree: a key and the chain code used to
// derive its children.
type Node struct {
	Key       [KeySize]byte
	ChainCode [KeySize]byte
}

// DeriveRoot computes the root node for a usage label. The label is baked
// into the HMAC input, so two distinct labels never produce correlatable
// trees.
func DeriveRoot(master []byte, usage string) Node {
	return split(hmacSHA512(master, []byte(usage+rootSuffix)))
}

// DeriveChild computes the child node for one path segment, keyed by the
// parent's chain code.
func DeriveChild(parent Node, segment string) Node {
	data := make([]byte, 0, 1+len(segment))
	data = append(data, 0x00)
	data = append(data, segment...)
	return split(hmacSHA512(parent.ChainCode[:], data))
}

// Derive walks the tree from the usage root through each path segment and
// returns the final node's key. Identical inputs always produce the same
// key.
func Derive(master []byte, usage string, path []string) [KeySize]byte {
	node := DeriveRoot(master, usage)
	for _, segment := range path {
		node = DeriveChild(node, segment)
	}
	return node.Key
}

func hmacSHA512(key, data []byte) []byte {
	mac := hmac.New(sha512.New, key)
	mac.Write(data)
	return mac.Sum(nil)
}

func split(sum []byte) Node {
	var n Node
	copy(n.Key[:], sum[:KeySize])
	copy(n.ChainCode[:], sum[KeySize:])
	return n
}
