package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/tarotdesk/share-server-go/internal/model"
	"github.com/tarotdesk/share-server-go/internal/repository"
)

// VerdictKind enumerates the outcomes of an access attempt.
type VerdictKind string

const (
	VerdictValid            VerdictKind = "VALID"
	VerdictNotFound         VerdictKind = "NOT_FOUND"
	VerdictDisabled         VerdictKind = "DISABLED"
	VerdictExpired          VerdictKind = "EXPIRED"
	VerdictPasswordRequired VerdictKind = "PASSWORD_REQUIRED"
	VerdictPasswordInvalid  VerdictKind = "PASSWORD_INVALID"
)

// Verdict is the gate's decision for one access attempt. Link is set only
// for VerdictValid.
type Verdict struct {
	Kind VerdictKind
	Link *model.ShareLink
}

// AccessGate decides whether an access code plus optional password reaches
// the shared reading. It never mutates state; view accounting is the
// caller's job after a VALID verdict.
type AccessGate struct {
	linkRepo repository.ShareLinkRepository
	now      func() time.Time
}

// NewAccessGate creates the access decision engine.
func NewAccessGate(linkRepo repository.ShareLinkRepository) *AccessGate {
	return &AccessGate{
		linkRepo: linkRepo,
		now:      time.Now,
	}
}

// Authorize resolves the code and applies the checks in a fixed order:
// existence, active flag, expiry, password. Deactivation wins over expiry so
// a deactivated-but-unexpired link reads as disabled. A store failure is
// returned as an error, never folded into NOT_FOUND.
func (g *AccessGate) Authorize(ctx context.Context, code string, suppliedPassword *string) (Verdict, error) {
	link, err := g.linkRepo.FindByAccessCode(ctx, code)
	if err != nil {
		return Verdict{}, fmt.Errorf("resolve access code: %w", err)
	}
	if link == nil {
		return Verdict{Kind: VerdictNotFound}, nil
	}

	if !link.IsActive {
		return Verdict{Kind: VerdictDisabled}, nil
	}

	if link.IsExpired(g.now()) {
		return Verdict{Kind: VerdictExpired}, nil
	}

	if link.HasPassword() {
		if suppliedPassword == nil {
			return Verdict{Kind: VerdictPasswordRequired}, nil
		}
		if *suppliedPassword != *link.Password {
			log.Warn().Str("accessCode", code).Msg("share link password mismatch")
			return Verdict{Kind: VerdictPasswordInvalid}, nil
		}
	}

	return Verdict{Kind: VerdictValid, Link: link}, nil
}
