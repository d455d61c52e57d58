package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"loft/internal/reminder"
	"loft/internal/target"
)

type ReminderHandler struct {
	Svc *reminder.Service
}

type reminderDTO struct {
	ID         uint64     `json:"id"`
	TargetType string     `json:"targetType"`
	TargetID   uint64     `json:"targetId"`
	DueAt      time.Time  `json:"dueAt"`
	Message    string     `json:"message"`
	IsDone     bool       `json:"isDone"`
	FiredAt    *time.Time `json:"firedAt"`
	CreatedAt  time.Time  `json:"createdAt"`
}

func toReminderDTO(r reminder.Reminder) reminderDTO {
	return reminderDTO{
		ID:         r.ID,
		TargetType: string(r.TargetType),
		TargetID:   r.TargetID,
		DueAt:      r.DueAt,
		Message:    r.Message,
		IsDone:     r.IsDone,
		FiredAt:    r.FiredAt,
		CreatedAt:  r.CreatedAt,
	}
}

type createReminderReq struct {
	TargetType string `json:"targetType"`
	TargetID   uint64 `json:"targetId"`
	DueAt      string `json:"dueAt"` // RFC3339
	Message    string `json:"message"`
}

func (h *ReminderHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createReminderReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad json", http.StatusBadRequest)
		return
	}

	kind, err := target.ParseKind(req.TargetType)
	if err != nil {
		http.Error(w, "invalid targetType (TASK|NOTE)", http.StatusBadRequest)
		return
	}
	if req.TargetID == 0 {
		http.Error(w, "invalid targetId", http.StatusBadRequest)
		return
	}
	dueAt, err := time.Parse(time.RFC3339, strings.TrimSpace(req.DueAt))
	if err != nil {
		http.Error(w, "invalid dueAt (RFC3339)", http.StatusBadRequest)
		return
	}

	rem, err := h.Svc.Create(r.Context(), reminder.CreateInput{
		Target:  target.Ref{Kind: kind, ID: req.TargetID},
		DueAt:   dueAt,
		Message: req.Message,
	})
	switch {
	case err == nil:
		writeJSON(w, http.StatusCreated, toReminderDTO(rem))
	case errors.Is(err, target.ErrNotFound):
		http.Error(w, "target not found", http.StatusNotFound)
	case errors.Is(err, target.ErrInvalidKind), errors.Is(err, target.ErrInvalidID):
		http.Error(w, err.Error(), http.StatusBadRequest)
	default:
		http.Error(w, "server error", http.StatusInternalServerError)
	}
}

func (h *ReminderHandler) List(w http.ResponseWriter, r *http.Request) {
	includeDone := r.URL.Query().Get("includeDone") == "1" ||
		strings.EqualFold(r.URL.Query().Get("includeDone"), "true")

	rows, err := h.Svc.List(r.Context(), includeDone)
	if err != nil {
		http.Error(w, "server error", http.StatusInternalServerError)
		return
	}

	out := make([]reminderDTO, 0, len(rows))
	for _, rem := range rows {
		out = append(out, toReminderDTO(rem))
	}
	writeJSON(w, http.StatusOK, out)
}

type updateReminderReq struct {
	DueAt   *string `json:"dueAt"`
	Message *string `json:"message"`
	IsDone  *bool   `json:"isDone"`
}

func (h *ReminderHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}

	var req updateReminderReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad json", http.StatusBadRequest)
		return
	}

	var dueAt *time.Time
	if req.DueAt != nil {
		t, err := time.Parse(time.RFC3339, strings.TrimSpace(*req.DueAt))
		if err != nil {
			http.Error(w, "invalid dueAt (RFC3339)", http.StatusBadRequest)
			return
		}
		dueAt = &t
	}

	rem, err := h.Svc.Update(r.Context(), id, reminder.UpdateInput{
		DueAt:   dueAt,
		Message: req.Message,
		IsDone:  req.IsDone,
	})
	switch err {
	case nil:
		writeJSON(w, http.StatusOK, toReminderDTO(rem))
	case reminder.ErrNotFound:
		http.Error(w, "not found", http.StatusNotFound)
	default:
		http.Error(w, "server error", http.StatusInternalServerError)
	}
}

func (h *ReminderHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}

	switch err := h.Svc.Delete(r.Context(), id); err {
	case nil:
		w.WriteHeader(http.StatusNoContent)
	case reminder.ErrNotFound:
		http.Error(w, "not found", http.StatusNotFound)
	default:
		http.Error(w, "server error", http.StatusInternalServerError)
	}
}

// Due returns every due-and-unfired reminder and marks it fired in the same
// transaction. Deliberately not idempotent: a second poll gets an empty list.
func (h *ReminderHandler) Due(w http.ResponseWriter, r *http.Request) {
	take := 50
	if v := strings.TrimSpace(r.URL.Query().Get("take")); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			take = n
		}
	}

	rows, err := h.Svc.PollDue(r.Context(), time.Now(), take)
	if err != nil {
		http.Error(w, "server error", http.StatusInternalServerError)
		return
	}

	out := make([]reminderDTO, 0, len(rows))
	for _, rem := range rows {
		out = append(out, toReminderDTO(rem))
	}
	writeJSON(w, http.StatusOK, out)
}
