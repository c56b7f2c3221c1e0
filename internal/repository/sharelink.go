package repository

import (
	"context"
	"errors"
	"time"

	"github.com/lib/pq"

	"github.com/tarotdesk/share-server-go/internal/database"
	apperrors "github.com/tarotdesk/share-server-go/internal/errors"
	"github.com/tarotdesk/share-server-go/internal/model"
)

// ShareLinkRepository handles share link data operations.
//
// Find* operations return (nil, nil) when no row matches; lookups by access
// code resolve entities regardless of their active or expiry state so callers
// can report the precise denial reason. When a code was reused, the active
// link wins over inactive ones. Mutations on unknown ids fail with a
// NOT_FOUND AppError.
type ShareLinkRepository interface {
	// Create persists a new link. It fails with DUPLICATE_ACCESS_CODE when
	// the code collides with another currently active link.
	Create(ctx context.Context, params model.CreateShareLinkParams) (*model.ShareLink, error)
	FindByID(ctx context.Context, id string) (*model.ShareLink, error)
	FindByAccessCode(ctx context.Context, code string) (*model.ShareLink, error)
	ActiveCodeExists(ctx context.Context, code string) (bool, error)
	SetActive(ctx context.Context, id string, active bool) error
	ClearExpiry(ctx context.Context, id string) error
	UpdateSettings(ctx context.Context, id string, params model.UpdateShareLinkParams) (*model.ShareLink, error)
	// RecordView increments the view counter and stamps last_viewed_at as a
	// single atomic write, so concurrent viewers never lose an increment.
	RecordView(ctx context.Context, id string) error
	Delete(ctx context.Context, id string) error
	ListByRecord(ctx context.Context, recordID string) ([]model.ShareLink, error)
	ListByClient(ctx context.Context, clientID string) ([]model.ShareLink, error)
	// DeleteExpiredBefore removes links whose expiry passed before cutoff.
	DeleteExpiredBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

const pqUniqueViolation = "23505"

type shareLinkRepo struct {
	db database.DBTX
}

// NewShareLinkRepository creates a Postgres-backed share link repository
func NewShareLinkRepository(db database.DBTX) ShareLinkRepository {
	return &shareLinkRepo{db: db}
}

func (r *shareLinkRepo) Create(ctx context.Context, params model.CreateShareLinkParams) (*model.ShareLink, error) {
	var link model.ShareLink
	err := r.db.GetContext(ctx, &link, `
		INSERT INTO share_links (tarot_record_id, client_id, access_code, password, expires_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING *
	`, params.TarotRecordID, params.ClientID, params.AccessCode, params.Password, params.ExpiresAt)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == pqUniqueViolation {
			return nil, apperrors.DuplicateAccessCode(params.AccessCode).WithCause(err)
		}
		return nil, err
	}
	return &link, nil
}

func (r *shareLinkRepo) FindByID(ctx context.Context, id string) (*model.ShareLink, error) {
	var link model.ShareLink
	err := r.db.GetContext(ctx, &link, `
		SELECT * FROM share_links WHERE id = $1
	`, id)
	return HandleNotFound(&link, err)
}

func (r *shareLinkRepo) FindByAccessCode(ctx context.Context, code string) (*model.ShareLink, error) {
	var link model.ShareLink
	err := r.db.GetContext(ctx, &link, `
		SELECT * FROM share_links WHERE access_code = $1
		ORDER BY is_active DESC, created_at DESC
		LIMIT 1
	`, code)
	return HandleNotFound(&link, err)
}

func (r *shareLinkRepo) ActiveCodeExists(ctx context.Context, code string) (bool, error) {
	var exists bool
	err := r.db.GetContext(ctx, &exists, `
		SELECT EXISTS (
			SELECT 1 FROM share_links WHERE access_code = $1 AND is_active
		)
	`, code)
	return exists, err
}

func (r *shareLinkRepo) SetActive(ctx context.Context, id string, active bool) error {
	result, err := r.db.ExecContext(ctx, `
		UPDATE share_links SET is_active = $1 WHERE id = $2
	`, active, id)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == pqUniqueViolation {
			return apperrors.New(apperrors.ErrCodeDuplicateAccessCode,
				"Access code already belongs to another active share link").WithCause(err)
		}
		return err
	}
	return requireRow(result)
}

func (r *shareLinkRepo) ClearExpiry(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `
		UPDATE share_links SET expires_at = NULL WHERE id = $1
	`, id)
	if err != nil {
		return err
	}
	return requireRow(result)
}

func (r *shareLinkRepo) UpdateSettings(ctx context.Context, id string, params model.UpdateShareLinkParams) (*model.ShareLink, error) {
	var link model.ShareLink
	err := r.db.GetContext(ctx, &link, `
		UPDATE share_links
		SET password = CASE
			WHEN $2::boolean THEN NULL
			WHEN $3::text IS NOT NULL THEN $3
			ELSE password
		END,
		expires_at = CASE
			WHEN $4::boolean THEN NULL
			WHEN $5::timestamptz IS NOT NULL THEN $5
			ELSE expires_at
		END
		WHERE id = $1
		RETURNING *
	`, id, params.ClearPassword, params.Password, params.ClearExpiry, params.ExpiresAt)
	updated, err := HandleNotFound(&link, err)
	if err != nil {
		return nil, err
	}
	if updated == nil {
		return nil, apperrors.NotFound("Share link")
	}
	return updated, nil
}

func (r *shareLinkRepo) RecordView(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `
		UPDATE share_links
		SET views = views + 1, last_viewed_at = NOW()
		WHERE id = $1
	`, id)
	if err != nil {
		return err
	}
	return requireRow(result)
}

func (r *shareLinkRepo) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `
		DELETE FROM share_links WHERE id = $1
	`, id)
	if err != nil {
		return err
	}
	return requireRow(result)
}

func (r *shareLinkRepo) ListByRecord(ctx context.Context, recordID string) ([]model.ShareLink, error) {
	var links []model.ShareLink
	err := r.db.SelectContext(ctx, &links, `
		SELECT * FROM share_links
		WHERE tarot_record_id = $1
		ORDER BY created_at DESC
	`, recordID)
	return links, err
}

func (r *shareLinkRepo) ListByClient(ctx context.Context, clientID string) ([]model.ShareLink, error) {
	var links []model.ShareLink
	err := r.db.SelectContext(ctx, &links, `
		SELECT * FROM share_links
		WHERE client_id = $1
		ORDER BY created_at DESC
	`, clientID)
	return links, err
}

func (r *shareLinkRepo) DeleteExpiredBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	result, err := r.db.ExecContext(ctx, `
		DELETE FROM share_links
		WHERE expires_at IS NOT NULL AND expires_at < $1
	`, cutoff)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}
