package records

import "context"

// Backend persists documents and conversation turns. Both variants honor the
// same contract: owner isolation on lookups, ascending-timestamp history,
// append-only records.
type Backend interface {
	SaveDocument(ctx context.Context, doc Document) error
	GetDocumentText(ctx context.Context, userID, docID string) (string, error)
	SaveMessage(ctx context.Context, userID, docID, role, content string) (Message, error)
	History(ctx context.Context, userID, docID string) ([]Message, error)
	ListDocuments(ctx context.Context, userID string) ([]DocumentSummary, error)
}
