package jobs

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/tarotdesk/share-server-go/internal/repository"
)

// RetentionJob periodically purges share links whose expiry passed longer
// ago than the retention window. Within the window an expired code still
// resolves and reports EXPIRED; only long-dead links become NOT_FOUND.
type RetentionJob struct {
	linkRepo  repository.ShareLinkRepository
	retention time.Duration
	interval  time.Duration
	done      chan struct{}
}

func NewRetentionJob(linkRepo repository.ShareLinkRepository, retention, interval time.Duration) *RetentionJob {
	return &RetentionJob{
		linkRepo:  linkRepo,
		retention: retention,
		interval:  interval,
		done:      make(chan struct{}),
	}
}

func (j *RetentionJob) Start() {
	go j.run()
	log.Info().
		Dur("interval", j.interval).
		Dur("retention", j.retention).
		Msg("share link retention job started")
}

func (j *RetentionJob) Stop() {
	close(j.done)
	log.Info().Msg("share link retention job stopped")
}

func (j *RetentionJob) run() {
	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	j.sweep()

	for {
		select {
		case <-j.done:
			return
		case <-ticker.C:
			j.sweep()
		}
	}
}

func (j *RetentionJob) sweep() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	cutoff := time.Now().Add(-j.retention)
	removed, err := j.linkRepo.DeleteExpiredBefore(ctx, cutoff)
	if err != nil {
		log.Error().Err(err).Msg("share link retention sweep failed")
		return
	}
	if removed > 0 {
		log.Info().Int64("removed", removed).Time("cutoff", cutoff).Msg("purged long-expired share links")
	}
}
