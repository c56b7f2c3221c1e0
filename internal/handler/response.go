package handler

import (
	"net/http"
	"time"

	"github.com/tarotdesk/share-server-go/internal/httputil"
	"github.com/tarotdesk/share-server-go/internal/model"
)

func writeJSON(w http.ResponseWriter, status int, data any) {
	httputil.WriteJSON(w, status, data)
}

func writeError(w http.ResponseWriter, err error) {
	httputil.WriteError(w, err)
}

func formatTime(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.Format(time.RFC3339)
}

// formatShareLink is the owner-facing shape: full accounting, status and
// whether a password is set, but never the password itself.
func formatShareLink(link *model.ShareLink, baseURL string) map[string]any {
	return map[string]any{
		"id":            link.ID,
		"tarotRecordId": link.TarotRecordID,
		"clientId":      link.ClientID,
		"accessCode":    link.AccessCode,
		"url":           link.AbsoluteURL(baseURL),
		"views":         link.Views,
		"lastViewedAt":  formatTime(link.LastViewedAt),
		"isActive":      link.IsActive,
		"expiresAt":     formatTime(link.ExpiresAt),
		"createdAt":     link.CreatedAt.Format(time.RFC3339),
		"hasPassword":   link.HasPassword(),
		"status":        link.Status(time.Now()),
	}
}

// formatReading is the viewer-facing shape after a VALID verdict: just the
// references the presentation layer needs to fetch and render the record.
func formatReading(link *model.ShareLink) map[string]any {
	return map[string]any{
		"tarotRecordId": link.TarotRecordID,
		"clientId":      link.ClientID,
		"accessCode":    link.AccessCode,
		"views":         link.Views,
		"expiresAt":     formatTime(link.ExpiresAt),
	}
}
