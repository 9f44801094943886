package records

import "context"

// Service is the persistence facade callers use. The backend is chosen once
// at bootstrap and never revisited; every method forwards unchanged,
// including the error kind (ErrNotFound stays ErrNotFound, storage failures
// stay StorageError).
type Service struct {
	backend Backend
}

// NewService wraps the selected backend.
func NewService(backend Backend) *Service {
	return &Service{backend: backend}
}

func (s *Service) SaveDocument(ctx context.Context, doc Document) error {
	return s.backend.SaveDocument(ctx, doc)
}

func (s *Service) GetDocumentText(ctx context.Context, userID, docID string) (string, error) {
	return s.backend.GetDocumentText(ctx, userID, docID)
}

func (s *Service) SaveMessage(ctx context.Context, userID, docID, role, content string) (Message, error) {
	return s.backend.SaveMessage(ctx, userID, docID, role, content)
}

func (s *Service) History(ctx context.Context, userID, docID string) ([]Message, error) {
	return s.backend.History(ctx, userID, docID)
}

func (s *Service) ListDocuments(ctx context.Context, userID string) ([]DocumentSummary, error) {
	return s.backend.ListDocuments(ctx, userID)
}
