package repository

import (
	"context"

	"github.com/tarotdesk/share-server-go/internal/database"
)

// RecordStore is the narrow view of the consultation record store this
// service depends on. It is consulted at link creation time only, to avoid
// minting links for records or clients that do not exist.
type RecordStore interface {
	RecordExists(ctx context.Context, recordID string) (bool, error)
	ClientExists(ctx context.Context, clientID string) (bool, error)
}

type recordStore struct {
	db database.DBTX
}

// NewRecordStore creates a RecordStore backed by the shared Postgres schema.
func NewRecordStore(db database.DBTX) RecordStore {
	return &recordStore{db: db}
}

func (r *recordStore) RecordExists(ctx context.Context, recordID string) (bool, error) {
	var exists bool
	err := r.db.GetContext(ctx, &exists, `
		SELECT EXISTS (SELECT 1 FROM tarot_records WHERE id = $1)
	`, recordID)
	return exists, err
}

func (r *recordStore) ClientExists(ctx context.Context, clientID string) (bool, error) {
	var exists bool
	err := r.db.GetContext(ctx, &exists, `
		SELECT EXISTS (SELECT 1 FROM clients WHERE id = $1)
	`, clientID)
	return exists, err
}

// OpenRecordStore treats every record and client as existing. Used when the
// record store lives in another system and existence cannot be checked here.
type OpenRecordStore struct{}

func (OpenRecordStore) RecordExists(context.Context, string) (bool, error) { return true, nil }
func (OpenRecordStore) ClientExists(context.Context, string) (bool, error) { return true, nil }
