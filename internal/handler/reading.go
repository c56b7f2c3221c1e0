package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/tarotdesk/share-server-go/internal/accesscode"
	apperrors "github.com/tarotdesk/share-server-go/internal/errors"
	"github.com/tarotdesk/share-server-go/internal/service"
)

// ReadingHandler serves the public viewer endpoint behind a share link.
type ReadingHandler struct {
	gate     *service.AccessGate
	recorder *service.ViewRecorder
}

func NewReadingHandler(gate *service.AccessGate, recorder *service.ViewRecorder) *ReadingHandler {
	return &ReadingHandler{
		gate:     gate,
		recorder: recorder,
	}
}

func (h *ReadingHandler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Get("/{accessCode}", h.View)

	return r
}

// GET /tarot-reading/{accessCode}?password=...
//
// The sole public surface. Runs the gate, records the view on success and
// returns the references the presentation layer needs. A failed view write
// never turns a granted access into an error.
func (h *ReadingHandler) View(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	code := chi.URLParam(r, "accessCode")
	if !accesscode.IsValid(code) {
		// Malformed codes cannot exist, so answer like any unknown code.
		writeError(w, apperrors.LinkNotFound())
		return
	}

	var password *string
	if r.URL.Query().Has("password") {
		p := r.URL.Query().Get("password")
		password = &p
	}

	verdict, err := h.gate.Authorize(ctx, code, password)
	if err != nil {
		log.Error().Err(err).Str("accessCode", code).Msg("share link authorization failed")
		writeError(w, apperrors.Database(err))
		return
	}

	if verdict.Kind != service.VerdictValid {
		writeError(w, verdictError(verdict.Kind))
		return
	}

	h.recorder.RecordViewBestEffort(ctx, verdict.Link.ID)

	writeJSON(w, http.StatusOK, formatReading(verdict.Link))
}

func verdictError(kind service.VerdictKind) *apperrors.AppError {
	switch kind {
	case service.VerdictNotFound:
		return apperrors.LinkNotFound()
	case service.VerdictDisabled:
		return apperrors.LinkDisabled()
	case service.VerdictExpired:
		return apperrors.LinkExpired()
	case service.VerdictPasswordRequired:
		return apperrors.PasswordRequired()
	case service.VerdictPasswordInvalid:
		return apperrors.PasswordInvalid()
	default:
		return apperrors.Internal("Unexpected verdict")
	}
}
