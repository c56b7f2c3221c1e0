package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func timePtr(t time.Time) *time.Time { return &t }

func TestShareLinkIsExpired(t *testing.T) {
	now := time.Now()

	t.Run("no expiry never expires", func(t *testing.T) {
		link := &ShareLink{}
		assert.False(t, link.IsExpired(now))
		assert.False(t, link.IsExpired(now.Add(100*365*24*time.Hour)))
	})

	t.Run("future expiry is not expired", func(t *testing.T) {
		link := &ShareLink{ExpiresAt: timePtr(now.Add(time.Hour))}
		assert.False(t, link.IsExpired(now))
	})

	t.Run("past expiry is expired", func(t *testing.T) {
		link := &ShareLink{ExpiresAt: timePtr(now.Add(-24 * time.Hour))}
		assert.True(t, link.IsExpired(now))
	})

	t.Run("exactly at expiry is not expired", func(t *testing.T) {
		link := &ShareLink{ExpiresAt: timePtr(now)}
		assert.False(t, link.IsExpired(now))
	})

	t.Run("deterministic for fixed inputs", func(t *testing.T) {
		link := &ShareLink{ExpiresAt: timePtr(now.Add(-time.Minute))}
		first := link.IsExpired(now)
		second := link.IsExpired(now)
		assert.Equal(t, first, second)
	})
}

func TestShareLinkStatus(t *testing.T) {
	now := time.Now()

	tests := []struct {
		name string
		link ShareLink
		want EffectiveStatus
	}{
		{
			name: "active without expiry",
			link: ShareLink{IsActive: true},
			want: StatusValid,
		},
		{
			name: "active with future expiry",
			link: ShareLink{IsActive: true, ExpiresAt: timePtr(now.Add(time.Hour))},
			want: StatusValid,
		},
		{
			name: "active with past expiry",
			link: ShareLink{IsActive: true, ExpiresAt: timePtr(now.Add(-time.Hour))},
			want: StatusExpired,
		},
		{
			name: "disabled without expiry",
			link: ShareLink{IsActive: false},
			want: StatusDisabled,
		},
		{
			name: "disabled wins over expiry",
			link: ShareLink{IsActive: false, ExpiresAt: timePtr(now.Add(-time.Hour))},
			want: StatusDisabled,
		},
		{
			name: "disabled with future expiry still disabled",
			link: ShareLink{IsActive: false, ExpiresAt: timePtr(now.Add(time.Hour))},
			want: StatusDisabled,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.link.Status(now))
		})
	}
}

func TestShareLinkURL(t *testing.T) {
	link := &ShareLink{AccessCode: "ABC123"}

	assert.Equal(t, "/tarot-reading/ABC123", link.URL())
	assert.Equal(t, "/tarot-reading/ABC123", link.AbsoluteURL(""))
	assert.Equal(t, "https://readings.example.com/tarot-reading/ABC123",
		link.AbsoluteURL("https://readings.example.com"))
}

func TestShareLinkHasPassword(t *testing.T) {
	empty := ""
	secret := "1234"

	assert.False(t, (&ShareLink{}).HasPassword())
	assert.False(t, (&ShareLink{Password: &empty}).HasPassword())
	assert.True(t, (&ShareLink{Password: &secret}).HasPassword())
}
