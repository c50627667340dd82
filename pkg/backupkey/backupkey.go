// Package backupkey converts the 32-byte master secret to and from a dashed
// base32 string that a person can write on paper and type back in.
//
// Encoding uses the RFC 4648 alphabet without padding: 256 bits become 52
// symbols, emitted in dashed groups for readability. Decoding is forgiving
// about transcription: dashes, whitespace, and letter case are ignored, and
// the visually confusable 0/O and 1/I pairs are normalized before the
// alphabet check. Everything else is a FormatError; in particular a decoded
// length other than 32 bytes is rejected rather than silently truncated.
package backupkey

import (
	"encoding/base32"
	"fmt"
	"strings"
)

// SecretSize is the exact byte length a backup key encodes.
const SecretSize = 32

const groupSize = 5

// The confusable pairs normalized on decode. The RFC 4648 alphabet contains
// no 0 or 1, so the digits can only mean their letter lookalikes.
var confusables = strings.NewReplacer("0", "O", "1", "I")

var encoding = base32.StdEncoding.WithPadding(base32.NoPadding)

// FormatError describes why a backup string could not be decoded.
type FormatError struct {
	Reason string
}

func (e *FormatError) Error() string {
	return "backupkey: " + e.Reason
}

// Encode renders exactly 32 bytes as a dashed backup string.
func Encode(secret []byte) (string, error) {
	if len(secret) != SecretSize {
		return "", &FormatError{Reason: fmt.Sprintf("secret must be %d bytes, got %d", SecretSize, len(secret))}
	}
	symbols := encoding.EncodeToString(secret)

	var sb strings.Builder
	for i := 0; i < len(symbols); i += groupSize {
		if i > 0 {
			sb.WriteByte('-')
		}
		end := i + groupSize
		if end > len(symbols) {
			end = len(symbols)
		}
		sb.WriteString(symbols[i:end])
	}
	return sb.String(), nil
}

// Decode parses a backup string back to its 32 bytes. Input is cleaned
// before strict validation: grouping dashes and whitespace are stripped,
// case is folded, and 0/1 are read as O/I.
func Decode(s string) ([]byte, error) {
	cleaned := strings.Map(func(r rune) rune {
		switch r {
		case '-', ' ', '\t', '\n', '\r':
			return -1
		}
		return r
	}, s)
	cleaned = confusables.Replace(strings.ToUpper(cleaned))

	for _, r := range cleaned {
		if !isAlphabet(r) {
			return nil, &FormatError{Reason: fmt.Sprintf("character %q is not in the backup alphabet", r)}
		}
	}

	secret, err := encoding.DecodeString(cleaned)
	if err != nil {
		return nil, &FormatError{Reason: "malformed backup string: " + err.Error()}
	}
	if len(secret) != SecretSize {
		return nil, &FormatError{Reason: fmt.Sprintf("decodes to %d bytes, want %d", len(secret), SecretSize)}
	}
	return secret, nil
}

func isAlphabet(r rune) bool {
	return (r >= 'A' && r <= 'Z') || (r >= '2' && r <= '7')
}
