package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"loft/internal/link"
	"loft/internal/target"
)

type LinkHandler struct {
	Enricher *link.Enricher
	Store    *link.Store
}

type attachmentDTO struct {
	ID             uint64    `json:"id"`
	OwnerType      string    `json:"ownerType"`
	OwnerID        uint64    `json:"ownerId"`
	URL            string    `json:"url"`
	Title          *string   `json:"title"`
	Description    *string   `json:"description"`
	ImageURL       *string   `json:"imageUrl"`
	FaviconURL     *string   `json:"faviconUrl"`
	ScreenshotPath *string   `json:"screenshotPath"`
	LastFetchedAt  time.Time `json:"lastFetchedAt"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

func toAttachmentDTO(a link.Attachment) attachmentDTO {
	return attachmentDTO{
		ID:             a.ID,
		OwnerType:      string(a.OwnerType),
		OwnerID:        a.OwnerID,
		URL:            a.URL,
		Title:          a.Title,
		Description:    a.Description,
		ImageURL:       a.ImageURL,
		FaviconURL:     a.FaviconURL,
		ScreenshotPath: a.ScreenshotPath,
		LastFetchedAt:  a.LastFetchedAt,
		CreatedAt:      a.CreatedAt,
		UpdatedAt:      a.UpdatedAt,
	}
}

type attachReq struct {
	URL string `json:"url"`
}

// Attach returns the create handler for one owner kind; the same enrichment
// runs whether the owner is a task or a note.
func (h *LinkHandler) Attach(kind target.Kind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(r)
		if !ok {
			http.Error(w, "invalid id", http.StatusBadRequest)
			return
		}

		var req attachReq
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad json", http.StatusBadRequest)
			return
		}

		a, err := h.Enricher.Enrich(r.Context(), target.Ref{Kind: kind, ID: id}, req.URL)
		switch {
		case err == nil:
			writeJSON(w, http.StatusCreated, toAttachmentDTO(a))
		case errors.Is(err, link.ErrInvalidURL):
			http.Error(w, "invalid url", http.StatusBadRequest)
		case errors.Is(err, target.ErrNotFound):
			http.Error(w, "owner not found", http.StatusNotFound)
		default:
			http.Error(w, "server error", http.StatusInternalServerError)
		}
	}
}

// ListByOwner returns the list handler for one owner kind, newest update first.
func (h *LinkHandler) ListByOwner(kind target.Kind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(r)
		if !ok {
			http.Error(w, "invalid id", http.StatusBadRequest)
			return
		}

		rows, err := h.Store.ListByOwner(r.Context(), target.Ref{Kind: kind, ID: id})
		if err != nil {
			http.Error(w, "server error", http.StatusInternalServerError)
			return
		}

		out := make([]attachmentDTO, 0, len(rows))
		for _, a := range rows {
			out = append(out, toAttachmentDTO(a))
		}
		writeJSON(w, http.StatusOK, out)
	}
}

func (h *LinkHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}

	a, err := h.Store.Get(r.Context(), id)
	switch err {
	case nil:
		writeJSON(w, http.StatusOK, toAttachmentDTO(a))
	case link.ErrNotFound:
		http.Error(w, "not found", http.StatusNotFound)
	default:
		http.Error(w, "server error", http.StatusInternalServerError)
	}
}

func (h *LinkHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}

	switch err := h.Store.Delete(r.Context(), id); err {
	case nil:
		w.WriteHeader(http.StatusNoContent)
	case link.ErrNotFound:
		http.Error(w, "not found", http.StatusNotFound)
	default:
		http.Error(w, "server error", http.StatusInternalServerError)
	}
}

type previewDTO struct {
	URL         string  `json:"url"`
	Title       *string `json:"title"`
	Description *string `json:"description"`
	ImageURL    *string `json:"imageUrl"`
	FaviconURL  *string `json:"faviconUrl"`
}

// Preview runs enrichment without persisting anything.
func (h *LinkHandler) Preview(w http.ResponseWriter, r *http.Request) {
	p, err := h.Enricher.Preview(r.Context(), r.URL.Query().Get("url"))
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, previewDTO{
			URL:         p.URL,
			Title:       p.Title,
			Description: p.Description,
			ImageURL:    p.ImageURL,
			FaviconURL:  p.FaviconURL,
		})
	case errors.Is(err, link.ErrInvalidURL):
		http.Error(w, "invalid url", http.StatusBadRequest)
	default:
		http.Error(w, "server error", http.StatusInternalServerError)
	}
}
