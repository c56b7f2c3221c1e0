package model

import (
	"fmt"
	"time"
)

// ReadingPathPrefix is the public URL prefix a share link is reachable under.
const ReadingPathPrefix = "/tarot-reading/"

// EffectiveStatus is the derived authorization state of a share link.
// It is computed at access time from isActive, expiresAt and existence,
// never persisted.
type EffectiveStatus string

const (
	StatusValid    EffectiveStatus = "VALID"
	StatusExpired  EffectiveStatus = "EXPIRED"
	StatusDisabled EffectiveStatus = "DISABLED"
	StatusNotFound EffectiveStatus = "NOT_FOUND"
)

// ShareLink binds a tarot consultation record and a client to an access code
// plus its access-control settings.
type ShareLink struct {
	ID            string     `db:"id" json:"id"`
	TarotRecordID string     `db:"tarot_record_id" json:"tarotRecordId"`
	ClientID      string     `db:"client_id" json:"clientId"`
	AccessCode    string     `db:"access_code" json:"accessCode"`
	Views         int64      `db:"views" json:"views"`
	LastViewedAt  *time.Time `db:"last_viewed_at" json:"lastViewedAt,omitempty"`
	IsActive      bool       `db:"is_active" json:"isActive"`
	ExpiresAt     *time.Time `db:"expires_at" json:"expiresAt,omitempty"`
	CreatedAt     time.Time  `db:"created_at" json:"createdAt"`
	Password      *string    `db:"password" json:"-"`
}

// CreateShareLinkParams contains parameters for persisting a new share link
type CreateShareLinkParams struct {
	TarotRecordID string
	ClientID      string
	AccessCode    string
	Password      *string
	ExpiresAt     *time.Time
}

// UpdateShareLinkParams carries a partial settings update. Nil fields are
// left unchanged; ClearPassword/ClearExpiry remove the stored value.
type UpdateShareLinkParams struct {
	Password      *string
	ClearPassword bool
	ExpiresAt     *time.Time
	ClearExpiry   bool
}

// URL returns the relative viewer path for the link's access code.
func (l *ShareLink) URL() string {
	return ReadingPathPrefix + l.AccessCode
}

// AbsoluteURL joins the viewer path with a public base URL. With an empty
// base it falls back to the relative path.
func (l *ShareLink) AbsoluteURL(baseURL string) string {
	if baseURL == "" {
		return l.URL()
	}
	return fmt.Sprintf("%s%s", baseURL, l.URL())
}

// IsExpired reports whether the link is past its expiry at the given instant.
// Links without an expiry never expire.
func (l *ShareLink) IsExpired(at time.Time) bool {
	if l.ExpiresAt == nil {
		return false
	}
	return at.After(*l.ExpiresAt)
}

// HasPassword reports whether access is additionally gated by a password.
func (l *ShareLink) HasPassword() bool {
	return l.Password != nil && *l.Password != ""
}

// Status derives the effective status at the given instant. Deactivation
// takes precedence over expiry so a disabled link reads as disabled even
// when it is also past its expiry.
func (l *ShareLink) Status(at time.Time) EffectiveStatus {
	if !l.IsActive {
		return StatusDisabled
	}
	if l.IsExpired(at) {
		return StatusExpired
	}
	return StatusValid
}
