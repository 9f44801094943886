package object

import (
	"context"
	"io"
)

// ObjectStore persists uploaded file bytes. Save returns an opaque reference
// (URL or path) usable later for display or download; the persistence layer
// stores the reference without interpreting it.
type ObjectStore interface {
	Save(ctx context.Context, userID, docID, fileName string, r io.Reader) (ref string, err error)
}
