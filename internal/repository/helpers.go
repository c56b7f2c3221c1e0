package repository

import (
	"database/sql"
	"errors"

	apperrors "github.com/tarotdesk/share-server-go/internal/errors"
)

// HandleNotFound processes a database query result, converting sql.ErrNoRows
// to a nil result without error. This is a common pattern for Find* operations
// where a missing row is not an error condition.
//
// Usage:
//
//	var link model.ShareLink
//	err := r.db.GetContext(ctx, &link, query, args...)
//	return HandleNotFound(&link, err)
func HandleNotFound[T any](result *T, err error) (*T, error) {
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return result, nil
}

// requireRow converts a zero-row update or delete into a NOT_FOUND AppError.
func requireRow(result sql.Result) error {
	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return apperrors.NotFound("Share link")
	}
	return nil
}
