package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	apperrors "github.com/tarotdesk/share-server-go/internal/errors"
	"github.com/tarotdesk/share-server-go/internal/model"
)

// MemoryShareLinkRepository is an in-memory ShareLinkRepository used in tests
// and local runs without Postgres. All operations take the store lock, so the
// single-entity atomicity contract holds under concurrent callers.
type MemoryShareLinkRepository struct {
	mu    sync.Mutex
	links map[string]*model.ShareLink // id -> link
	now   func() time.Time
}

// NewMemoryShareLinkRepository creates an empty in-memory repository.
func NewMemoryShareLinkRepository() *MemoryShareLinkRepository {
	return &MemoryShareLinkRepository{
		links: make(map[string]*model.ShareLink),
		now:   time.Now,
	}
}

var _ ShareLinkRepository = (*MemoryShareLinkRepository)(nil)

func (m *MemoryShareLinkRepository) Create(_ context.Context, params model.CreateShareLinkParams) (*model.ShareLink, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, l := range m.links {
		if l.IsActive && l.AccessCode == params.AccessCode {
			return nil, apperrors.DuplicateAccessCode(params.AccessCode)
		}
	}

	link := &model.ShareLink{
		ID:            uuid.NewString(),
		TarotRecordID: params.TarotRecordID,
		ClientID:      params.ClientID,
		AccessCode:    params.AccessCode,
		Views:         0,
		IsActive:      true,
		ExpiresAt:     params.ExpiresAt,
		CreatedAt:     m.now(),
		Password:      params.Password,
	}
	m.links[link.ID] = link

	return copyLink(link), nil
}

func (m *MemoryShareLinkRepository) FindByID(_ context.Context, id string) (*model.ShareLink, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	link, ok := m.links[id]
	if !ok {
		return nil, nil
	}
	return copyLink(link), nil
}

func (m *MemoryShareLinkRepository) FindByAccessCode(_ context.Context, code string) (*model.ShareLink, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	// Active link first, then newest, matching the Postgres ordering so a
	// reused code never shadows the sole active link with an inactive row.
	var best *model.ShareLink
	for _, l := range m.links {
		if l.AccessCode != code {
			continue
		}
		if best == nil ||
			(l.IsActive && !best.IsActive) ||
			(l.IsActive == best.IsActive && l.CreatedAt.After(best.CreatedAt)) {
			best = l
		}
	}
	if best == nil {
		return nil, nil
	}
	return copyLink(best), nil
}

func (m *MemoryShareLinkRepository) ActiveCodeExists(_ context.Context, code string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, l := range m.links {
		if l.IsActive && l.AccessCode == code {
			return true, nil
		}
	}
	return false, nil
}

func (m *MemoryShareLinkRepository) SetActive(_ context.Context, id string, active bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	link, ok := m.links[id]
	if !ok {
		return apperrors.NotFound("Share link")
	}
	if active && !link.IsActive {
		for _, other := range m.links {
			if other.ID != id && other.IsActive && other.AccessCode == link.AccessCode {
				return apperrors.DuplicateAccessCode(link.AccessCode)
			}
		}
	}
	link.IsActive = active
	return nil
}

func (m *MemoryShareLinkRepository) ClearExpiry(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	link, ok := m.links[id]
	if !ok {
		return apperrors.NotFound("Share link")
	}
	link.ExpiresAt = nil
	return nil
}

func (m *MemoryShareLinkRepository) UpdateSettings(_ context.Context, id string, params model.UpdateShareLinkParams) (*model.ShareLink, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	link, ok := m.links[id]
	if !ok {
		return nil, apperrors.NotFound("Share link")
	}

	switch {
	case params.ClearPassword:
		link.Password = nil
	case params.Password != nil:
		link.Password = params.Password
	}

	switch {
	case params.ClearExpiry:
		link.ExpiresAt = nil
	case params.ExpiresAt != nil:
		link.ExpiresAt = params.ExpiresAt
	}

	return copyLink(link), nil
}

func (m *MemoryShareLinkRepository) RecordView(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	link, ok := m.links[id]
	if !ok {
		return apperrors.NotFound("Share link")
	}

	viewedAt := m.now()
	link.Views++
	link.LastViewedAt = &viewedAt
	return nil
}

func (m *MemoryShareLinkRepository) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.links[id]; !ok {
		return apperrors.NotFound("Share link")
	}
	delete(m.links, id)
	return nil
}

func (m *MemoryShareLinkRepository) ListByRecord(_ context.Context, recordID string) ([]model.ShareLink, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.collect(func(l *model.ShareLink) bool { return l.TarotRecordID == recordID }), nil
}

func (m *MemoryShareLinkRepository) ListByClient(_ context.Context, clientID string) ([]model.ShareLink, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.collect(func(l *model.ShareLink) bool { return l.ClientID == clientID }), nil
}

func (m *MemoryShareLinkRepository) DeleteExpiredBefore(_ context.Context, cutoff time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var removed int64
	for id, l := range m.links {
		if l.ExpiresAt != nil && l.ExpiresAt.Before(cutoff) {
			delete(m.links, id)
			removed++
		}
	}
	return removed, nil
}

// collect must be called with the lock held. Results are newest first to
// match the Postgres implementation.
func (m *MemoryShareLinkRepository) collect(match func(*model.ShareLink) bool) []model.ShareLink {
	var out []model.ShareLink
	for _, l := range m.links {
		if match(l) {
			out = append(out, *copyLink(l))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out
}

// copyLink returns a deep copy so callers never alias stored state.
func copyLink(l *model.ShareLink) *model.ShareLink {
	cp := *l
	if l.LastViewedAt != nil {
		t := *l.LastViewedAt
		cp.LastViewedAt = &t
	}
	if l.ExpiresAt != nil {
		t := *l.ExpiresAt
		cp.ExpiresAt = &t
	}
	if l.Password != nil {
		p := *l.Password
		cp.Password = &p
	}
	return &cp
}
