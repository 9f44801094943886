package records

// Record type discriminators used by the remote backend's single collection
// and carried in the local file for compatibility.
const (
	TypeDocument = "document"
	TypeMessage  = "message"
)

// Message roles.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Document is an uploaded document plus its extracted text. Timestamps are
// canonical strings (see timeutil) so ordering across backends is identical.
type Document struct {
	ID        string
	UserID    string
	FileName  string
	BlobRef   string
	Text      string
	CreatedAt string
}

// DocumentSummary is the listing shape: everything except the text payload.
type DocumentSummary struct {
	ID        string `json:"id"`
	FileName  string `json:"file_name"`
	BlobRef   string `json:"blob_url"`
	CreatedAt string `json:"created_at"`
}

// Message is one conversation turn. A DocID that references no stored
// document is tolerated; history still returns the message.
type Message struct {
	ID        string `json:"id"`
	Type      string `json:"type"`
	UserID    string `json:"user_id"`
	DocID     string `json:"doc_id"`
	Role      string `json:"role"`
	Content   string `json:"content"`
	Timestamp string `json:"timestamp"`
}
