package documents

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"pdfchat-backend/internal/records"
	localstore "pdfchat-backend/internal/shared/storage/object/local"
)

func newTestService(t *testing.T) *Service {
	t.Helper()
	dir := t.TempDir()
	backend, err := records.NewFileBackend(filepath.Join(dir, records.DefaultFileName))
	if err != nil {
		t.Fatalf("new file backend: %v", err)
	}
	svc := NewService(localstore.New(filepath.Join(dir, "blobs")), records.NewService(backend))
	svc.Extract = func(ctx context.Context, data []byte, mimeType, fileName string) (string, error) {
		return "extracted: " + string(data), nil
	}
	return svc
}

func TestUploadStoresBlobAndRecord(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	up, err := svc.Upload(ctx, "u1", "report.pdf", "application/pdf", strings.NewReader("pdf body"))
	if err != nil {
		t.Fatalf("Upload: %v", err)
	}
	if up.DocID == "" {
		t.Fatal("expected non-empty doc id")
	}
	if up.FileName != "report.pdf" {
		t.Fatalf("expected sanitized name report.pdf, got %q", up.FileName)
	}
	if !strings.HasPrefix(up.BlobRef, "file://") {
		t.Fatalf("expected file:// blob ref, got %q", up.BlobRef)
	}

	text, err := svc.Records.GetDocumentText(ctx, "u1", up.DocID)
	if err != nil {
		t.Fatalf("GetDocumentText: %v", err)
	}
	if text != "extracted: pdf body" {
		t.Fatalf("unexpected stored text %q", text)
	}

	docs, err := svc.List(ctx, "u1")
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(docs) != 1 || docs[0].ID != up.DocID {
		t.Fatalf("unexpected listing %+v", docs)
	}
	if docs[0].BlobRef != up.BlobRef {
		t.Fatalf("listing blob ref %q, want %q", docs[0].BlobRef, up.BlobRef)
	}
}

func TestUploadSanitizesTraversalNames(t *testing.T) {
	svc := newTestService(t)

	up, err := svc.Upload(context.Background(), "u1", "../../etc/passwd", "text/plain", strings.NewReader("data"))
	if err != nil {
		t.Fatalf("Upload: %v", err)
	}
	if strings.Contains(up.FileName, "/") || strings.Contains(up.FileName, "..") {
		t.Fatalf("file name not sanitized: %q", up.FileName)
	}
}

func TestUploadRequiresUserID(t *testing.T) {
	svc := newTestService(t)

	_, err := svc.Upload(context.Background(), "  ", "a.pdf", "application/pdf", strings.NewReader("data"))
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestUploadRejectsEmptyFile(t *testing.T) {
	svc := newTestService(t)

	_, err := svc.Upload(context.Background(), "u1", "a.pdf", "application/pdf", strings.NewReader(""))
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestUploadExtractionFailure(t *testing.T) {
	svc := newTestService(t)
	svc.Extract = func(ctx context.Context, data []byte, mimeType, fileName string) (string, error) {
		return "", errors.New("bad parse")
	}

	_, err := svc.Upload(context.Background(), "u1", "a.pdf", "application/pdf", strings.NewReader("data"))
	if !errors.Is(err, ErrUnreadableDocument) {
		t.Fatalf("expected ErrUnreadableDocument, got %v", err)
	}

	// Nothing should have been recorded for the failed upload.
	docs, err := svc.List(context.Background(), "u1")
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(docs) != 0 {
		t.Fatalf("expected no documents, got %+v", docs)
	}
}
