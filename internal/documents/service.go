package documents

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/google/uuid"

	"pdfchat-backend/internal/extract"
	"pdfchat-backend/internal/records"
	"pdfchat-backend/internal/shared/storage/object"
	"pdfchat-backend/internal/shared/util"
)

// ExtractFunc pulls plain text from an uploaded payload.
type ExtractFunc func(ctx context.Context, data []byte, mimeType string, fileName string) (string, error)

// Service handles document ingestion: blob storage, text extraction and
// the persisted document record.
type Service struct {
	Blobs   object.ObjectStore
	Records *records.Service
	Extract ExtractFunc
}

// NewService constructs a Service with the default extractor.
func NewService(blobs object.ObjectStore, recs *records.Service) *Service {
	return &Service{
		Blobs:   blobs,
		Records: recs,
		Extract: extract.FromBytes,
	}
}

// Uploaded describes a stored document.
type Uploaded struct {
	DocID    string
	FileName string
	BlobRef  string
}

// Upload stores the file, extracts its text and saves the document record.
// The returned doc ID is the handle for asking questions about the document.
func (s *Service) Upload(ctx context.Context, userID, fileName, mimeType string, r io.Reader) (Uploaded, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return Uploaded{}, fmt.Errorf("%w: user_id is required", ErrInvalidInput)
	}

	data, err := io.ReadAll(r)
	if err != nil {
		return Uploaded{}, fmt.Errorf("read upload: %w", err)
	}
	if len(data) == 0 {
		return Uploaded{}, fmt.Errorf("%w: file is empty", ErrInvalidInput)
	}

	docID := uuid.NewString()
	safeName := util.SanitizeFileName(fileName, docID+util.FileExt(fileName))

	text, err := s.Extract(ctx, data, mimeType, safeName)
	if err != nil {
		return Uploaded{}, fmt.Errorf("%w: %v", ErrUnreadableDocument, err)
	}

	blobRef, err := s.Blobs.Save(ctx, userID, docID, safeName, bytes.NewReader(data))
	if err != nil {
		return Uploaded{}, fmt.Errorf("store blob: %w", err)
	}

	doc := records.Document{
		ID:       docID,
		UserID:   userID,
		FileName: safeName,
		BlobRef:  blobRef,
		Text:     text,
	}
	if err := s.Records.SaveDocument(ctx, doc); err != nil {
		return Uploaded{}, err
	}

	return Uploaded{DocID: docID, FileName: safeName, BlobRef: blobRef}, nil
}

// List returns the user's uploaded documents, oldest first.
func (s *Service) List(ctx context.Context, userID string) ([]records.DocumentSummary, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, fmt.Errorf("%w: user_id is required", ErrInvalidInput)
	}
	return s.Records.ListDocuments(ctx, userID)
}
