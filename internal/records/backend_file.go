package records

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/google/uuid"

	"pdfchat-backend/internal/shared/timeutil"
)

// DefaultFileName is the local database file created under the store dir.
const DefaultFileName = "local_db.json"

// FileBackend is the development fallback: one JSON file holding a documents
// list and a messages list, loaded fully per operation and rewritten fully
// per mutation. A single mutex serializes everything; the file is not safe
// for multi-process writers.
type FileBackend struct {
	mu   sync.Mutex
	path string
}

type fileDocument struct {
	ID        string `json:"id"`
	Type      string `json:"type"`
	UserID    string `json:"user_id"`
	FileName  string `json:"file_name"`
	BlobRef   string `json:"blob_url"`
	Text      string `json:"document_text"`
	CreatedAt string `json:"created_at"`
}

type fileMessage struct {
	ID        string `json:"id,omitempty"`
	Type      string `json:"type,omitempty"`
	UserID    string `json:"user_id"`
	DocID     string `json:"doc_id"`
	Role      string `json:"role"`
	Content   string `json:"content,omitempty"`
	Legacy    string `json:"message,omitempty"`
	Timestamp string `json:"timestamp,omitempty"`
}

type fileDB struct {
	Documents []fileDocument `json:"documents"`
	Messages  []fileMessage  `json:"messages"`
}

// NewFileBackend opens (creating if needed) the JSON store at path.
func NewFileBackend(path string) (*FileBackend, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, storageErr("init local store", err)
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		empty := fileDB{Documents: []fileDocument{}, Messages: []fileMessage{}}
		if err := writeDB(path, &empty); err != nil {
			return nil, err
		}
	} else if err != nil {
		return nil, storageErr("init local store", err)
	}
	return &FileBackend{path: path}, nil
}

func (b *FileBackend) load() (*fileDB, error) {
	raw, err := os.ReadFile(b.path)
	if err != nil {
		return nil, storageErr("read local store", err)
	}
	var db fileDB
	if err := json.Unmarshal(raw, &db); err != nil {
		return nil, storageErr("decode local store", fmt.Errorf("%s: %w", b.path, err))
	}
	return &db, nil
}

func writeDB(path string, db *fileDB) error {
	raw, err := json.MarshalIndent(db, "", "  ")
	if err != nil {
		return storageErr("encode local store", err)
	}
	if err := os.WriteFile(path, raw, 0o644); err != nil {
		return storageErr("write local store", err)
	}
	return nil
}

// SaveDocument appends a document record and rewrites the file.
func (b *FileBackend) SaveDocument(ctx context.Context, doc Document) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	b.mu.Lock()
	defer b.mu.Unlock()

	db, err := b.load()
	if err != nil {
		return err
	}
	db.Documents = append(db.Documents, fileDocument{
		ID:        doc.ID,
		Type:      TypeDocument,
		UserID:    doc.UserID,
		FileName:  doc.FileName,
		BlobRef:   doc.BlobRef,
		Text:      doc.Text,
		CreatedAt: timeutil.Now(),
	})
	return writeDB(b.path, db)
}

// GetDocumentText returns stored text for (userID, docID).
func (b *FileBackend) GetDocumentText(ctx context.Context, userID, docID string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	b.mu.Lock()
	defer b.mu.Unlock()

	db, err := b.load()
	if err != nil {
		return "", err
	}
	for _, doc := range db.Documents {
		if doc.UserID == userID && doc.ID == docID {
			return doc.Text, nil
		}
	}
	return "", ErrNotFound
}

// SaveMessage appends a conversation turn and rewrites the file.
func (b *FileBackend) SaveMessage(ctx context.Context, userID, docID, role, content string) (Message, error) {
	if err := ctx.Err(); err != nil {
		return Message{}, err
	}
	b.mu.Lock()
	defer b.mu.Unlock()

	db, err := b.load()
	if err != nil {
		return Message{}, err
	}
	msg := Message{
		ID:        uuid.NewString(),
		Type:      TypeMessage,
		UserID:    userID,
		DocID:     docID,
		Role:      role,
		Content:   content,
		Timestamp: timeutil.Now(),
	}
	db.Messages = append(db.Messages, fileMessage{
		ID:        msg.ID,
		Type:      TypeMessage,
		UserID:    msg.UserID,
		DocID:     msg.DocID,
		Role:      msg.Role,
		Content:   msg.Content,
		Timestamp: msg.Timestamp,
	})
	if err := writeDB(b.path, db); err != nil {
		return Message{}, err
	}
	return msg, nil
}

// History returns turns for (userID, docID) sorted ascending by normalized
// timestamp. Legacy records are healed on read: missing ids get a fresh
// UUID, content resolves from the legacy message field, malformed timestamps
// are normalized in place, and the repaired file is persisted. No field
// other than those is ever rewritten.
func (b *FileBackend) History(ctx context.Context, userID, docID string) ([]Message, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	b.mu.Lock()
	defer b.mu.Unlock()

	db, err := b.load()
	if err != nil {
		return nil, err
	}

	updated := false
	out := []Message{}
	for i := range db.Messages {
		entry := &db.Messages[i]
		if entry.UserID != userID || entry.DocID != docID {
			continue
		}

		if entry.ID == "" {
			entry.ID = uuid.NewString()
			updated = true
		}
		if entry.Type == "" {
			entry.Type = TypeMessage
		}
		content := entry.Content
		if content == "" {
			content = entry.Legacy
		}
		if entry.Content != content {
			entry.Content = content
			updated = true
		}
		ts := timeutil.NormalizeString(entry.Timestamp)
		if entry.Timestamp != ts {
			entry.Timestamp = ts
			updated = true
		}

		out = append(out, Message{
			ID:        entry.ID,
			Type:      TypeMessage,
			UserID:    entry.UserID,
			DocID:     entry.DocID,
			Role:      entry.Role,
			Content:   entry.Content,
			Timestamp: entry.Timestamp,
		})
	}

	sort.SliceStable(out, func(i, j int) bool { return out[i].Timestamp < out[j].Timestamp })

	if updated {
		if err := writeDB(b.path, db); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// ListDocuments returns document summaries for a user, normalizing stored
// timestamps the same way as History.
func (b *FileBackend) ListDocuments(ctx context.Context, userID string) ([]DocumentSummary, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	b.mu.Lock()
	defer b.mu.Unlock()

	db, err := b.load()
	if err != nil {
		return nil, err
	}

	updated := false
	out := []DocumentSummary{}
	for i := range db.Documents {
		doc := &db.Documents[i]
		if doc.UserID != userID {
			continue
		}
		created := timeutil.NormalizeString(doc.CreatedAt)
		if doc.CreatedAt != created {
			doc.CreatedAt = created
			updated = true
		}
		out = append(out, DocumentSummary{
			ID:        doc.ID,
			FileName:  doc.FileName,
			BlobRef:   doc.BlobRef,
			CreatedAt: created,
		})
	}

	if updated {
		if err := writeDB(b.path, db); err != nil {
			return nil, err
		}
	}
	return out, nil
}

var _ Backend = (*FileBackend)(nil)
