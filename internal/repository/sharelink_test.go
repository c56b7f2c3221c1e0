package repository

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/tarotdesk/share-server-go/internal/errors"
	"github.com/tarotdesk/share-server-go/internal/model"
)

func TestShareLinkRepository_Create(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	repo := NewShareLinkRepository(db.DB)
	ctx := context.Background()

	link, err := repo.Create(ctx, model.CreateShareLinkParams{
		TarotRecordID: "record-1",
		ClientID:      "client-1",
		AccessCode:    "ABC123",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, link.ID)
	assert.Equal(t, "ABC123", link.AccessCode)
	assert.Equal(t, int64(0), link.Views)
	assert.True(t, link.IsActive)
	assert.Nil(t, link.LastViewedAt)
	assert.Nil(t, link.Password)

	t.Run("rejects duplicate active code", func(t *testing.T) {
		_, err := repo.Create(ctx, model.CreateShareLinkParams{
			TarotRecordID: "record-2",
			ClientID:      "client-2",
			AccessCode:    "ABC123",
		})
		require.Error(t, err)
		assert.True(t, apperrors.IsCode(err, apperrors.ErrCodeDuplicateAccessCode))
	})

	t.Run("allows reuse after deactivation", func(t *testing.T) {
		require.NoError(t, repo.SetActive(ctx, link.ID, false))

		_, err := repo.Create(ctx, model.CreateShareLinkParams{
			TarotRecordID: "record-2",
			ClientID:      "client-2",
			AccessCode:    "ABC123",
		})
		assert.NoError(t, err)
	})
}

func TestShareLinkRepository_Lookups(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	repo := NewShareLinkRepository(db.DB)
	ctx := context.Background()

	pw := "1234"
	expiry := time.Now().Add(-time.Hour).UTC()
	link, err := repo.Create(ctx, model.CreateShareLinkParams{
		TarotRecordID: "record-1",
		ClientID:      "client-1",
		AccessCode:    "DEF456",
		Password:      &pw,
		ExpiresAt:     &expiry,
	})
	require.NoError(t, err)

	t.Run("find by access code ignores expiry state", func(t *testing.T) {
		found, err := repo.FindByAccessCode(ctx, "DEF456")
		require.NoError(t, err)
		require.NotNil(t, found)
		assert.Equal(t, link.ID, found.ID)
		require.NotNil(t, found.Password)
		assert.Equal(t, "1234", *found.Password)
		assert.True(t, found.IsExpired(time.Now()))
	})

	t.Run("unknown code returns nil without error", func(t *testing.T) {
		found, err := repo.FindByAccessCode(ctx, "ZZZZZZ")
		require.NoError(t, err)
		assert.Nil(t, found)
	})

	t.Run("active code exists respects is_active", func(t *testing.T) {
		exists, err := repo.ActiveCodeExists(ctx, "DEF456")
		require.NoError(t, err)
		assert.True(t, exists)

		require.NoError(t, repo.SetActive(ctx, link.ID, false))

		exists, err = repo.ActiveCodeExists(ctx, "DEF456")
		require.NoError(t, err)
		assert.False(t, exists)
	})
}

func TestShareLinkRepository_CodeReuse(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	repo := NewShareLinkRepository(db.DB)
	ctx := context.Background()

	first, err := repo.Create(ctx, model.CreateShareLinkParams{
		TarotRecordID: "record-1", ClientID: "client-1", AccessCode: "PQR678",
	})
	require.NoError(t, err)
	require.NoError(t, repo.SetActive(ctx, first.ID, false))

	second, err := repo.Create(ctx, model.CreateShareLinkParams{
		TarotRecordID: "record-2", ClientID: "client-2", AccessCode: "PQR678",
	})
	require.NoError(t, err)
	require.NoError(t, repo.SetActive(ctx, second.ID, false))
	require.NoError(t, repo.SetActive(ctx, first.ID, true))

	t.Run("lookup resolves the active link over newer inactive ones", func(t *testing.T) {
		found, err := repo.FindByAccessCode(ctx, "PQR678")
		require.NoError(t, err)
		require.NotNil(t, found)
		assert.Equal(t, first.ID, found.ID)
		assert.True(t, found.IsActive)
	})

	t.Run("reactivating into an active code collision is rejected", func(t *testing.T) {
		err := repo.SetActive(ctx, second.ID, true)
		require.Error(t, err)
		assert.True(t, apperrors.IsCode(err, apperrors.ErrCodeDuplicateAccessCode))
	})
}

func TestShareLinkRepository_RecordViewConcurrent(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	repo := NewShareLinkRepository(db.DB)
	ctx := context.Background()

	link, err := repo.Create(ctx, model.CreateShareLinkParams{
		TarotRecordID: "record-1",
		ClientID:      "client-1",
		AccessCode:    "GHI789",
	})
	require.NoError(t, err)

	const viewers = 25
	var wg sync.WaitGroup
	wg.Add(viewers)
	for i := 0; i < viewers; i++ {
		go func() {
			defer wg.Done()
			assert.NoError(t, repo.RecordView(ctx, link.ID))
		}()
	}
	wg.Wait()

	found, err := repo.FindByID(ctx, link.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(viewers), found.Views)
	assert.NotNil(t, found.LastViewedAt)
}

func TestShareLinkRepository_DeleteAndRetention(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	repo := NewShareLinkRepository(db.DB)
	ctx := context.Background()

	link, err := repo.Create(ctx, model.CreateShareLinkParams{
		TarotRecordID: "record-1",
		ClientID:      "client-1",
		AccessCode:    "JKL012",
	})
	require.NoError(t, err)

	t.Run("delete removes by id", func(t *testing.T) {
		require.NoError(t, repo.Delete(ctx, link.ID))

		found, err := repo.FindByAccessCode(ctx, "JKL012")
		require.NoError(t, err)
		assert.Nil(t, found)

		err = repo.Delete(ctx, link.ID)
		assert.True(t, apperrors.IsCode(err, apperrors.ErrCodeNotFound))
	})

	t.Run("retention removes only long-expired links", func(t *testing.T) {
		old := time.Now().Add(-120 * 24 * time.Hour).UTC()
		_, err := repo.Create(ctx, model.CreateShareLinkParams{
			TarotRecordID: "record-1", ClientID: "client-1", AccessCode: "MNO345", ExpiresAt: &old,
		})
		require.NoError(t, err)

		removed, err := repo.DeleteExpiredBefore(ctx, time.Now().Add(-90*24*time.Hour))
		require.NoError(t, err)
		assert.Equal(t, int64(1), removed)
	})
}
