package chat

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"pdfchat-backend/internal/records"
	"pdfchat-backend/internal/shared/telemetry"
)

// ErrInvalidInput marks a caller mistake that maps to a 400.
var ErrInvalidInput = errors.New("invalid input")

// AnswerGenerator produces an answer grounded in the document text.
type AnswerGenerator interface {
	Answer(ctx context.Context, documentText, question string) (string, error)
}

// Service runs the ask flow: load document text, persist the user turn,
// generate the answer and persist the assistant turn.
type Service struct {
	Records *records.Service
	Gen     AnswerGenerator
}

// NewService constructs a Service.
func NewService(recs *records.Service, gen AnswerGenerator) *Service {
	return &Service{Records: recs, Gen: gen}
}

// Ask answers a question about a previously uploaded document. The user turn
// is persisted before generation so a failed generation still leaves the
// question in history.
func (s *Service) Ask(ctx context.Context, userID, docID, question string) (string, error) {
	userID = strings.TrimSpace(userID)
	docID = strings.TrimSpace(docID)
	question = strings.TrimSpace(question)
	if userID == "" {
		return "", fmt.Errorf("%w: user_id is required", ErrInvalidInput)
	}
	if docID == "" {
		return "", fmt.Errorf("%w: doc_id is required", ErrInvalidInput)
	}
	if question == "" {
		return "", fmt.Errorf("%w: question cannot be empty", ErrInvalidInput)
	}

	documentText, err := s.Records.GetDocumentText(ctx, userID, docID)
	if err != nil {
		return "", err
	}

	if _, err := s.Records.SaveMessage(ctx, userID, docID, records.RoleUser, question); err != nil {
		return "", err
	}

	answer, err := s.Gen.Answer(ctx, documentText, question)
	if err != nil {
		return "", err
	}

	if _, err := s.Records.SaveMessage(ctx, userID, docID, records.RoleAssistant, answer); err != nil {
		telemetry.Error("chat.save_assistant_turn", map[string]any{
			"user_id": userID,
			"doc_id":  docID,
			"error":   err.Error(),
		})
		return "", err
	}

	return answer, nil
}

// History returns the conversation for a document, oldest first.
func (s *Service) History(ctx context.Context, userID, docID string) ([]records.Message, error) {
	userID = strings.TrimSpace(userID)
	docID = strings.TrimSpace(docID)
	if userID == "" {
		return nil, fmt.Errorf("%w: user_id is required", ErrInvalidInput)
	}
	if docID == "" {
		return nil, fmt.Errorf("%w: doc_id is required", ErrInvalidInput)
	}
	return s.Records.History(ctx, userID, docID)
}

// Documents returns the user's uploaded documents.
func (s *Service) Documents(ctx context.Context, userID string) ([]records.DocumentSummary, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, fmt.Errorf("%w: user_id is required", ErrInvalidInput)
	}
	return s.Records.ListDocuments(ctx, userID)
}
