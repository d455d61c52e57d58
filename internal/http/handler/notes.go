package handler

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"loft/internal/note"
)

type NoteHandler struct {
	Svc *note.Service
}

type noteDTO struct {
	ID        uint64    `json:"id"`
	Title     string    `json:"title"`
	Body      string    `json:"body"`
	Position  int       `json:"position"`
	Tags      []string  `json:"tags"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func toNoteDTO(n note.Note) noteDTO {
	tgs := n.Tags
	if tgs == nil {
		tgs = []string{}
	}
	return noteDTO{
		ID:        n.ID,
		Title:     n.Title,
		Body:      n.Body,
		Position:  n.Position,
		Tags:      tgs,
		CreatedAt: n.CreatedAt,
		UpdatedAt: n.UpdatedAt,
	}
}

type createNoteReq struct {
	Title string `json:"title"`
	Body  string `json:"body"`
}

func (h *NoteHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createNoteReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad json", http.StatusBadRequest)
		return
	}
	req.Title = strings.TrimSpace(req.Title)
	if req.Title == "" {
		http.Error(w, "title required", http.StatusBadRequest)
		return
	}

	n, err := h.Svc.Create(r.Context(), note.CreateInput{Title: req.Title, Body: req.Body})
	if err != nil {
		http.Error(w, "server error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusCreated, toNoteDTO(n))
}

func (h *NoteHandler) List(w http.ResponseWriter, r *http.Request) {
	rows, err := h.Svc.List(r.Context(), r.URL.Query().Get("tag"))
	if err != nil {
		http.Error(w, "server error", http.StatusInternalServerError)
		return
	}

	out := make([]noteDTO, 0, len(rows))
	for _, n := range rows {
		out = append(out, toNoteDTO(n))
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *NoteHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}

	n, err := h.Svc.Get(r.Context(), id)
	switch err {
	case nil:
		writeJSON(w, http.StatusOK, toNoteDTO(n))
	case note.ErrNotFound:
		http.Error(w, "not found", http.StatusNotFound)
	default:
		http.Error(w, "server error", http.StatusInternalServerError)
	}
}

type updateNoteReq struct {
	Title *string `json:"title"`
	Body  *string `json:"body"`
}

func (h *NoteHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}

	var req updateNoteReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad json", http.StatusBadRequest)
		return
	}
	if req.Title != nil && strings.TrimSpace(*req.Title) == "" {
		http.Error(w, "title required", http.StatusBadRequest)
		return
	}

	n, err := h.Svc.Update(r.Context(), id, note.UpdateInput{Title: req.Title, Body: req.Body})
	switch err {
	case nil:
		writeJSON(w, http.StatusOK, toNoteDTO(n))
	case note.ErrNotFound:
		http.Error(w, "not found", http.StatusNotFound)
	default:
		http.Error(w, "server error", http.StatusInternalServerError)
	}
}

func (h *NoteHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}

	switch err := h.Svc.Delete(r.Context(), id); err {
	case nil:
		w.WriteHeader(http.StatusNoContent)
	case note.ErrNotFound:
		http.Error(w, "not found", http.StatusNotFound)
	default:
		http.Error(w, "server error", http.StatusInternalServerError)
	}
}
