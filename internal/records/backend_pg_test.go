package records

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
)

func newPGTest(t *testing.T) (*PGBackend, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	backend, err := NewPGBackend(db, DefaultTable)
	if err != nil {
		t.Fatalf("NewPGBackend: %v", err)
	}
	return backend, mock
}

func TestNewPGBackendRejectsBadTableName(t *testing.T) {
	db, _, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	if _, err := NewPGBackend(db, `records; DROP TABLE records`); err == nil {
		t.Fatal("expected error for invalid table name")
	}
}

func TestPGBackendEnsureSchemaProvisionsConfiguredTable(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	backend, err := NewPGBackend(db, "chat_records")
	if err != nil {
		t.Fatalf("NewPGBackend: %v", err)
	}

	mock.ExpectExec("CREATE TABLE IF NOT EXISTS chat_records").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("CREATE INDEX IF NOT EXISTS idx_chat_records_user_type ON chat_records").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("CREATE INDEX IF NOT EXISTS idx_chat_records_user_doc ON chat_records").
		WillReturnResult(sqlmock.NewResult(0, 0))

	if err := backend.EnsureSchema(context.Background()); err != nil {
		t.Fatalf("EnsureSchema: %v", err)
	}

	mock.ExpectExec("INSERT INTO chat_records").
		WithArgs("d1", "u1", TypeDocument, "hello.pdf", "s3://bucket/key", "hello world", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	doc := Document{ID: "d1", UserID: "u1", FileName: "hello.pdf", BlobRef: "s3://bucket/key", Text: "hello world"}
	if err := backend.SaveDocument(context.Background(), doc); err != nil {
		t.Fatalf("SaveDocument: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}

func TestPGBackendEnsureSchemaFailureIsStorageError(t *testing.T) {
	backend, mock := newPGTest(t)

	mock.ExpectExec("CREATE TABLE IF NOT EXISTS records").
		WillReturnError(errors.New("permission denied"))

	err := backend.EnsureSchema(context.Background())
	if !IsStorageError(err) {
		t.Fatalf("expected StorageError, got %v", err)
	}
}

func TestPGBackendSaveDocument(t *testing.T) {
	backend, mock := newPGTest(t)

	mock.ExpectExec("INSERT INTO records").
		WithArgs("d1", "u1", TypeDocument, "hello.pdf", "s3://bucket/key", "hello world", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	doc := Document{ID: "d1", UserID: "u1", FileName: "hello.pdf", BlobRef: "s3://bucket/key", Text: "hello world"}
	if err := backend.SaveDocument(context.Background(), doc); err != nil {
		t.Fatalf("SaveDocument: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}

func TestPGBackendGetDocumentTextNotFound(t *testing.T) {
	backend, mock := newPGTest(t)

	mock.ExpectQuery("SELECT document_text").
		WithArgs("d1", "u2", TypeDocument).
		WillReturnRows(sqlmock.NewRows([]string{"document_text"}))

	_, err := backend.GetDocumentText(context.Background(), "u2", "d1")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if IsStorageError(err) {
		t.Fatal("not-found must not be a StorageError")
	}
}

func TestPGBackendGetDocumentTextStorageFailure(t *testing.T) {
	backend, mock := newPGTest(t)

	mock.ExpectQuery("SELECT document_text").
		WithArgs("d1", "u1", TypeDocument).
		WillReturnError(errors.New("connection reset"))

	_, err := backend.GetDocumentText(context.Background(), "u1", "d1")
	if !IsStorageError(err) {
		t.Fatalf("expected StorageError, got %v", err)
	}
	if errors.Is(err, ErrNotFound) {
		t.Fatal("storage failure must not be ErrNotFound")
	}
}

func TestPGBackendSaveMessageWritesLegacyColumn(t *testing.T) {
	backend, mock := newPGTest(t)

	mock.ExpectExec("INSERT INTO records").
		WithArgs(sqlmock.AnyArg(), "u1", TypeMessage, "d1", RoleUser, "hi", "hi", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	msg, err := backend.SaveMessage(context.Background(), "u1", "d1", RoleUser, "hi")
	if err != nil {
		t.Fatalf("SaveMessage: %v", err)
	}
	if msg.ID == "" || msg.Timestamp == "" {
		t.Fatalf("expected id and timestamp on returned message: %+v", msg)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}

func TestPGBackendHistoryShapesAndSorts(t *testing.T) {
	backend, mock := newPGTest(t)

	// Rows arrive unordered, one with content only in the legacy column and
	// an epoch timestamp.
	rows := sqlmock.NewRows([]string{"id", "doc_id", "role", "content", "message", "ts"}).
		AddRow("m2", "d1", RoleAssistant, "yo", "yo", "2024-01-01T00:00:05Z").
		AddRow("m1", "d1", RoleUser, nil, "hi from legacy", "1700000000")

	mock.ExpectQuery("SELECT id, doc_id, role, content, message, ts").
		WithArgs("u1", "d1", TypeMessage).
		WillReturnRows(rows)

	history, err := backend.History(context.Background(), "u1", "d1")
	if err != nil {
		t.Fatalf("History: %v", err)
	}
	if len(history) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(history))
	}
	if history[0].ID != "m1" {
		t.Fatalf("expected epoch-timestamped message first, got %s", history[0].ID)
	}
	if history[0].Content != "hi from legacy" {
		t.Fatalf("expected legacy content fallback, got %q", history[0].Content)
	}
	if history[0].Timestamp != "2023-11-14T22:13:20Z" {
		t.Fatalf("expected normalized timestamp, got %q", history[0].Timestamp)
	}
	if history[0].UserID != "u1" {
		t.Fatalf("expected user id on message, got %q", history[0].UserID)
	}
}

func TestPGBackendListDocuments(t *testing.T) {
	backend, mock := newPGTest(t)

	rows := sqlmock.NewRows([]string{"id", "file_name", "blob_ref", "ts"}).
		AddRow("d1", "a.pdf", "s3://bucket/a", "2024-01-01T00:00:00Z")

	mock.ExpectQuery("SELECT id, file_name, blob_ref, ts").
		WithArgs("u1", TypeDocument).
		WillReturnRows(rows)

	docs, err := backend.ListDocuments(context.Background(), "u1")
	if err != nil {
		t.Fatalf("ListDocuments: %v", err)
	}
	if len(docs) != 1 || docs[0].ID != "d1" || docs[0].CreatedAt != "2024-01-01T00:00:00Z" {
		t.Fatalf("unexpected summaries: %+v", docs)
	}
}
