package records

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"regexp"
	"sort"

	"github.com/google/uuid"

	"pdfchat-backend/internal/shared/timeutil"
)

// DefaultTable is the records table created by the embedded migrations.
const DefaultTable = "records"

var tableNameRe = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// PGBackend stores both record kinds in one Postgres table tagged with a
// record_type discriminator. Concurrency control is the database's own; no
// extra locking here.
type PGBackend struct {
	db    *sql.DB
	table string
}

// NewPGBackend constructs a backend over db using the given table. The table
// name is interpolated into queries (identifiers cannot be bound), so it
// must be a plain SQL identifier.
func NewPGBackend(db *sql.DB, table string) (*PGBackend, error) {
	if table == "" {
		table = DefaultTable
	}
	if !tableNameRe.MatchString(table) {
		return nil, fmt.Errorf("invalid records table name %q", table)
	}
	return &PGBackend{db: db, table: table}, nil
}

// EnsureSchema creates the backend's table and indexes when they do not
// exist yet. The embedded migrations provision the default table; this
// covers a configured non-default table so the backend never commits to a
// table that is missing.
func (b *PGBackend) EnsureSchema(ctx context.Context) error {
	stmts := []string{
		fmt.Sprintf(`
CREATE TABLE IF NOT EXISTS %s (
    id TEXT NOT NULL,
    user_id TEXT NOT NULL,
    record_type TEXT NOT NULL,
    doc_id TEXT,
    file_name TEXT,
    blob_ref TEXT,
    document_text TEXT,
    role TEXT,
    content TEXT,
    message TEXT,
    ts TEXT NOT NULL,
    PRIMARY KEY (user_id, id)
)`, b.table),
		fmt.Sprintf(`CREATE INDEX IF NOT EXISTS idx_%[1]s_user_type ON %[1]s (user_id, record_type)`, b.table),
		fmt.Sprintf(`CREATE INDEX IF NOT EXISTS idx_%[1]s_user_doc ON %[1]s (user_id, doc_id) WHERE record_type = 'message'`, b.table),
	}
	for _, stmt := range stmts {
		if _, err := b.db.ExecContext(ctx, stmt); err != nil {
			return storageErr("ensure schema", err)
		}
	}
	return nil
}

// SaveDocument inserts a new document record with CreatedAt set to now. The
// caller-supplied id is trusted; no uniqueness probe beyond the insert.
func (b *PGBackend) SaveDocument(ctx context.Context, doc Document) error {
	query := fmt.Sprintf(`
INSERT INTO %s (id, user_id, record_type, file_name, blob_ref, document_text, ts)
VALUES ($1, $2, $3, $4, $5, $6, $7)`, b.table)

	_, err := b.db.ExecContext(ctx, query,
		doc.ID,
		doc.UserID,
		TypeDocument,
		doc.FileName,
		doc.BlobRef,
		doc.Text,
		timeutil.Now(),
	)
	if err != nil {
		return storageErr("save document", err)
	}
	return nil
}

// GetDocumentText returns the extracted text for (userID, docID). A docID
// created under another user is not visible here.
func (b *PGBackend) GetDocumentText(ctx context.Context, userID, docID string) (string, error) {
	query := fmt.Sprintf(`
SELECT document_text
FROM %s
WHERE id = $1 AND user_id = $2 AND record_type = $3`, b.table)

	var text sql.NullString
	err := b.db.QueryRowContext(ctx, query, docID, userID, TypeDocument).Scan(&text)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", ErrNotFound
		}
		return "", storageErr("get document text", err)
	}
	return text.String, nil
}

// SaveMessage inserts a new conversation turn with a fresh id and the
// current canonical timestamp. The legacy message column is written
// alongside content for older readers.
func (b *PGBackend) SaveMessage(ctx context.Context, userID, docID, role, content string) (Message, error) {
	msg := Message{
		ID:        uuid.NewString(),
		Type:      TypeMessage,
		UserID:    userID,
		DocID:     docID,
		Role:      role,
		Content:   content,
		Timestamp: timeutil.Now(),
	}

	query := fmt.Sprintf(`
INSERT INTO %s (id, user_id, record_type, doc_id, role, content, message, ts)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`, b.table)

	_, err := b.db.ExecContext(ctx, query,
		msg.ID,
		msg.UserID,
		TypeMessage,
		msg.DocID,
		msg.Role,
		msg.Content,
		msg.Content,
		msg.Timestamp,
	)
	if err != nil {
		return Message{}, storageErr("save message", err)
	}
	return msg, nil
}

// History returns all turns for (userID, docID) sorted by ascending
// normalized timestamp. Content falls back to the legacy message column when
// the primary is absent.
func (b *PGBackend) History(ctx context.Context, userID, docID string) ([]Message, error) {
	query := fmt.Sprintf(`
SELECT id, doc_id, role, content, message, ts
FROM %s
WHERE user_id = $1 AND doc_id = $2 AND record_type = $3`, b.table)

	rows, err := b.db.QueryContext(ctx, query, userID, docID, TypeMessage)
	if err != nil {
		return nil, storageErr("load history", err)
	}
	defer rows.Close()

	out := []Message{}
	for rows.Next() {
		var (
			msg     Message
			role    sql.NullString
			content sql.NullString
			legacy  sql.NullString
			ts      sql.NullString
		)
		if err := rows.Scan(&msg.ID, &msg.DocID, &role, &content, &legacy, &ts); err != nil {
			return nil, storageErr("load history", err)
		}
		msg.Type = TypeMessage
		msg.UserID = userID
		msg.Role = role.String
		msg.Content = content.String
		if msg.Content == "" {
			msg.Content = legacy.String
		}
		msg.Timestamp = timeutil.NormalizeString(ts.String)
		out = append(out, msg)
	}
	if err := rows.Err(); err != nil {
		return nil, storageErr("load history", err)
	}

	sort.SliceStable(out, func(i, j int) bool { return out[i].Timestamp < out[j].Timestamp })
	return out, nil
}

// ListDocuments returns document summaries for a user, text omitted.
func (b *PGBackend) ListDocuments(ctx context.Context, userID string) ([]DocumentSummary, error) {
	query := fmt.Sprintf(`
SELECT id, file_name, blob_ref, ts
FROM %s
WHERE user_id = $1 AND record_type = $2`, b.table)

	rows, err := b.db.QueryContext(ctx, query, userID, TypeDocument)
	if err != nil {
		return nil, storageErr("list documents", err)
	}
	defer rows.Close()

	out := []DocumentSummary{}
	for rows.Next() {
		var (
			doc      DocumentSummary
			fileName sql.NullString
			blobRef  sql.NullString
			ts       sql.NullString
		)
		if err := rows.Scan(&doc.ID, &fileName, &blobRef, &ts); err != nil {
			return nil, storageErr("list documents", err)
		}
		doc.FileName = fileName.String
		doc.BlobRef = blobRef.String
		doc.CreatedAt = timeutil.NormalizeString(ts.String)
		out = append(out, doc)
	}
	if err := rows.Err(); err != nil {
		return nil, storageErr("list documents", err)
	}
	return out, nil
}

var _ Backend = (*PGBackend)(nil)
