package e2ee

// Content type tags understood by DecryptMessages.
const (
	ContentTypeEncrypted = "encrypted"
	ContentTypePlain     = "plaintext"
)

// MessageContent is the tagged body of a message as it arrives from the
// service. Encrypted content carries a base64 blob; plaintext content
// carries its data verbatim.
type MessageContent struct {
	Type string `json:"t"`
	Data string `json:"c"`
}

// Message is one inbound message prior to decryption.
type Message struct {
	ID      string
	Version int
	Content MessageContent
}

// DecryptedMessage is the per-item result of a batch decrypt. A message
// whose ciphertext could not be authenticated stays in the result with
// Decrypted=false and no payload, so callers can still render its shell.
type DecryptedMessage struct {
	ID        string
	Version   int
	Payload   []byte
	Decrypted bool
}
