package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	apperrors "github.com/tarotdesk/share-server-go/internal/errors"
	"github.com/tarotdesk/share-server-go/internal/model"
	"github.com/tarotdesk/share-server-go/internal/service"
)

// ShareLinkHandler exposes the consultant's administrative API.
type ShareLinkHandler struct {
	links   *service.ShareLinkService
	baseURL string
}

func NewShareLinkHandler(links *service.ShareLinkService, baseURL string) *ShareLinkHandler {
	return &ShareLinkHandler{
		links:   links,
		baseURL: baseURL,
	}
}

func (h *ShareLinkHandler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Post("/", h.Create)
	r.Get("/", h.List)
	r.Get("/{id}", h.Get)
	r.Patch("/{id}", h.UpdateSettings)
	r.Post("/{id}/activate", h.Activate)
	r.Post("/{id}/deactivate", h.Deactivate)
	r.Delete("/{id}", h.Delete)

	return r
}

type createShareLinkRequest struct {
	TarotRecordID string     `json:"tarotRecordId"`
	ClientID      string     `json:"clientId"`
	Password      *string    `json:"password,omitempty"`
	ExpiresAt     *time.Time `json:"expiresAt,omitempty"`
}

// POST /v1/share-links
func (h *ShareLinkHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createShareLinkRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, apperrors.ValidationError("Invalid request body"))
		return
	}

	link, err := h.links.Create(r.Context(), req.TarotRecordID, req.ClientID, service.ShareSettings{
		Password:  req.Password,
		ExpiresAt: req.ExpiresAt,
	})
	if err != nil {
		if !apperrors.IsAppError(err) {
			log.Error().Err(err).Msg("failed to create share link")
		}
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, formatShareLink(link, h.baseURL))
}

// GET /v1/share-links?recordId=... | ?clientId=...
func (h *ShareLinkHandler) List(w http.ResponseWriter, r *http.Request) {
	recordID := r.URL.Query().Get("recordId")
	clientID := r.URL.Query().Get("clientId")

	var (
		links []model.ShareLink
		err   error
	)
	switch {
	case recordID != "":
		links, err = h.links.ListByRecord(r.Context(), recordID)
	case clientID != "":
		links, err = h.links.ListByClient(r.Context(), clientID)
	default:
		writeError(w, apperrors.MissingRequired("recordId or clientId"))
		return
	}
	if err != nil {
		log.Error().Err(err).Msg("failed to list share links")
		writeError(w, err)
		return
	}

	out := make([]map[string]any, 0, len(links))
	for i := range links {
		out = append(out, formatShareLink(&links[i], h.baseURL))
	}
	writeJSON(w, http.StatusOK, map[string]any{"shareLinks": out})
}

// GET /v1/share-links/{id}
func (h *ShareLinkHandler) Get(w http.ResponseWriter, r *http.Request) {
	link, err := h.links.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, formatShareLink(link, h.baseURL))
}

type updateShareLinkRequest struct {
	Password      *string    `json:"password,omitempty"`
	ClearPassword bool       `json:"clearPassword,omitempty"`
	ExpiresAt     *time.Time `json:"expiresAt,omitempty"`
	ClearExpiry   bool       `json:"clearExpiry,omitempty"`
}

// PATCH /v1/share-links/{id}
func (h *ShareLinkHandler) UpdateSettings(w http.ResponseWriter, r *http.Request) {
	var req updateShareLinkRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, apperrors.ValidationError("Invalid request body"))
		return
	}

	link, err := h.links.UpdateSettings(r.Context(), chi.URLParam(r, "id"), model.UpdateShareLinkParams{
		Password:      req.Password,
		ClearPassword: req.ClearPassword,
		ExpiresAt:     req.ExpiresAt,
		ClearExpiry:   req.ClearExpiry,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, formatShareLink(link, h.baseURL))
}

// POST /v1/share-links/{id}/activate
func (h *ShareLinkHandler) Activate(w http.ResponseWriter, r *http.Request) {
	link, err := h.links.Activate(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, formatShareLink(link, h.baseURL))
}

// POST /v1/share-links/{id}/deactivate
func (h *ShareLinkHandler) Deactivate(w http.ResponseWriter, r *http.Request) {
	link, err := h.links.Deactivate(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, formatShareLink(link, h.baseURL))
}

// DELETE /v1/share-links/{id}
func (h *ShareLinkHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.links.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
