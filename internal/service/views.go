package service

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/tarotdesk/share-server-go/internal/repository"
)

// ViewRecorder accounts successful accesses: one VALID verdict becomes one
// view increment plus a last-viewed timestamp, applied atomically at the
// repository so racing viewers never lose an update.
type ViewRecorder struct {
	linkRepo repository.ShareLinkRepository
}

func NewViewRecorder(linkRepo repository.ShareLinkRepository) *ViewRecorder {
	return &ViewRecorder{linkRepo: linkRepo}
}

// RecordView registers one successful access of the link.
func (v *ViewRecorder) RecordView(ctx context.Context, linkID string) error {
	if err := v.linkRepo.RecordView(ctx, linkID); err != nil {
		return fmt.Errorf("record view: %w", err)
	}
	return nil
}

// RecordViewBestEffort records a view without failing the access: a broken
// counter must not block a viewer who already passed the gate. The failure
// is logged for monitoring instead.
func (v *ViewRecorder) RecordViewBestEffort(ctx context.Context, linkID string) {
	if err := v.RecordView(ctx, linkID); err != nil {
		log.Error().Err(err).Str("linkId", linkID).Msg("failed to record share link view")
	}
}
