package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/tarotdesk/share-server-go/internal/accesscode"
	apperrors "github.com/tarotdesk/share-server-go/internal/errors"
	"github.com/tarotdesk/share-server-go/internal/model"
	"github.com/tarotdesk/share-server-go/internal/repository"
)

// createRetries bounds regeneration when a freshly checked code loses the
// race against a concurrent create with the same code.
const createRetries = 3

// ShareSettings are the consultant-chosen access controls on a new link.
type ShareSettings struct {
	Password  *string
	ExpiresAt *time.Time
}

// ShareLinkService owns the administrative lifecycle of share links:
// create, activate, deactivate, settings updates and deletion.
type ShareLinkService struct {
	linkRepo    repository.ShareLinkRepository
	recordStore repository.RecordStore

	// clearExpiryOnActivate makes Activate drop an already-passed expiry so
	// the link is immediately viewable again. Off, the reactivated link
	// keeps its expiry and keeps reading as EXPIRED until the expiry itself
	// is changed.
	clearExpiryOnActivate bool

	now func() time.Time
}

func NewShareLinkService(
	linkRepo repository.ShareLinkRepository,
	recordStore repository.RecordStore,
	clearExpiryOnActivate bool,
) *ShareLinkService {
	return &ShareLinkService{
		linkRepo:              linkRepo,
		recordStore:           recordStore,
		clearExpiryOnActivate: clearExpiryOnActivate,
		now:                   time.Now,
	}
}

// Create mints an access code and persists a new active link for the given
// record and client. The expiry, when set, must be strictly in the future.
func (s *ShareLinkService) Create(ctx context.Context, recordID, clientID string, settings ShareSettings) (*model.ShareLink, error) {
	if recordID == "" {
		return nil, apperrors.MissingRequired("tarotRecordId")
	}
	if clientID == "" {
		return nil, apperrors.MissingRequired("clientId")
	}
	if settings.ExpiresAt != nil && !settings.ExpiresAt.After(s.now()) {
		return nil, apperrors.InvalidInput("expiresAt", "must be in the future")
	}

	if err := s.checkReferences(ctx, recordID, clientID); err != nil {
		return nil, err
	}

	// The generator's existence check and the insert cannot be one atomic
	// step, so a duplicate rejection from the store triggers a fresh code.
	for attempt := 0; ; attempt++ {
		code, err := accesscode.Generate(ctx, s.linkRepo.ActiveCodeExists)
		if err != nil {
			return nil, err
		}

		link, err := s.linkRepo.Create(ctx, model.CreateShareLinkParams{
			TarotRecordID: recordID,
			ClientID:      clientID,
			AccessCode:    code,
			Password:      settings.Password,
			ExpiresAt:     settings.ExpiresAt,
		})
		if err == nil {
			log.Info().
				Str("linkId", link.ID).
				Str("accessCode", link.AccessCode).
				Str("tarotRecordId", recordID).
				Str("clientId", clientID).
				Msg("share link created")
			return link, nil
		}

		if apperrors.IsCode(err, apperrors.ErrCodeDuplicateAccessCode) && attempt < createRetries {
			log.Warn().Str("accessCode", code).Msg("access code collision on create, regenerating")
			continue
		}
		return nil, fmt.Errorf("create share link: %w", err)
	}
}

func (s *ShareLinkService) checkReferences(ctx context.Context, recordID, clientID string) error {
	exists, err := s.recordStore.RecordExists(ctx, recordID)
	if err != nil {
		return fmt.Errorf("check record: %w", err)
	}
	if !exists {
		return apperrors.NotFound("Tarot record")
	}

	exists, err = s.recordStore.ClientExists(ctx, clientID)
	if err != nil {
		return fmt.Errorf("check client: %w", err)
	}
	if !exists {
		return apperrors.NotFound("Client")
	}
	return nil
}

// Get fetches a link by id for the owner's management view.
func (s *ShareLinkService) Get(ctx context.Context, id string) (*model.ShareLink, error) {
	link, err := s.linkRepo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("find share link: %w", err)
	}
	if link == nil {
		return nil, apperrors.NotFound("Share link")
	}
	return link, nil
}

// Activate re-enables a deactivated link.
func (s *ShareLinkService) Activate(ctx context.Context, id string) (*model.ShareLink, error) {
	if err := s.linkRepo.SetActive(ctx, id, true); err != nil {
		return nil, err
	}

	if s.clearExpiryOnActivate {
		link, err := s.linkRepo.FindByID(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("find share link: %w", err)
		}
		if link != nil && link.IsExpired(s.now()) {
			if err := s.linkRepo.ClearExpiry(ctx, id); err != nil {
				return nil, err
			}
			log.Info().Str("linkId", id).Msg("stale expiry cleared on reactivation")
		}
	}

	log.Info().Str("linkId", id).Msg("share link activated")
	return s.Get(ctx, id)
}

// Deactivate flips the administrative kill switch.
func (s *ShareLinkService) Deactivate(ctx context.Context, id string) (*model.ShareLink, error) {
	if err := s.linkRepo.SetActive(ctx, id, false); err != nil {
		return nil, err
	}
	log.Info().Str("linkId", id).Msg("share link deactivated")
	return s.Get(ctx, id)
}

// UpdateSettings changes the password and/or expiry of an existing link.
func (s *ShareLinkService) UpdateSettings(ctx context.Context, id string, params model.UpdateShareLinkParams) (*model.ShareLink, error) {
	if params.ExpiresAt != nil && !params.ExpiresAt.After(s.now()) {
		return nil, apperrors.InvalidInput("expiresAt", "must be in the future")
	}

	link, err := s.linkRepo.UpdateSettings(ctx, id, params)
	if err != nil {
		return nil, err
	}
	log.Info().Str("linkId", id).Msg("share link settings updated")
	return link, nil
}

// Delete removes the link permanently; its access code resolves to nothing
// from then on.
func (s *ShareLinkService) Delete(ctx context.Context, id string) error {
	if err := s.linkRepo.Delete(ctx, id); err != nil {
		return err
	}
	log.Info().Str("linkId", id).Msg("share link deleted")
	return nil
}

// ListByRecord returns all links for a consultation record, newest first.
func (s *ShareLinkService) ListByRecord(ctx context.Context, recordID string) ([]model.ShareLink, error) {
	return s.linkRepo.ListByRecord(ctx, recordID)
}

// ListByClient returns all links shared with a client, newest first.
func (s *ShareLinkService) ListByClient(ctx context.Context, clientID string) ([]model.ShareLink, error) {
	return s.linkRepo.ListByClient(ctx, clientID)
}
