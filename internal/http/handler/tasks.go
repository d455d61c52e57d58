package handler

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"loft/internal/task"
)

type TaskHandler struct {
	Svc *task.Service
}

type subtaskDTO struct {
	ID       uint64 `json:"id"`
	TaskID   uint64 `json:"taskId"`
	Title    string `json:"title"`
	IsDone   bool   `json:"isDone"`
	Position int    `json:"position"`
}

type taskDTO struct {
	ID        uint64       `json:"id"`
	Title     string       `json:"title"`
	Notes     string       `json:"notes"`
	IsDone    bool         `json:"isDone"`
	Position  int          `json:"position"`
	Tags      []string     `json:"tags"`
	Subtasks  []subtaskDTO `json:"subtasks"`
	CreatedAt time.Time    `json:"createdAt"`
	UpdatedAt time.Time    `json:"updatedAt"`
}

func toTaskDTO(t task.Task) taskDTO {
	subs := make([]subtaskDTO, 0, len(t.Subtasks))
	for _, st := range t.Subtasks {
		subs = append(subs, toSubtaskDTO(st))
	}
	tgs := t.Tags
	if tgs == nil {
		tgs = []string{}
	}
	return taskDTO{
		ID:        t.ID,
		Title:     t.Title,
		Notes:     t.Notes,
		IsDone:    t.IsDone,
		Position:  t.Position,
		Tags:      tgs,
		Subtasks:  subs,
		CreatedAt: t.CreatedAt,
		UpdatedAt: t.UpdatedAt,
	}
}

func toSubtaskDTO(st task.Subtask) subtaskDTO {
	return subtaskDTO{
		ID:       st.ID,
		TaskID:   st.TaskID,
		Title:    st.Title,
		IsDone:   st.IsDone,
		Position: st.Position,
	}
}

type createTaskReq struct {
	Title string `json:"title"`
	Notes string `json:"notes"`
}

func (h *TaskHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createTaskReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad json", http.StatusBadRequest)
		return
	}
	req.Title = strings.TrimSpace(req.Title)
	if req.Title == "" {
		http.Error(w, "title required", http.StatusBadRequest)
		return
	}

	t, err := h.Svc.Create(r.Context(), task.CreateInput{Title: req.Title, Notes: req.Notes})
	if err != nil {
		http.Error(w, "server error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusCreated, toTaskDTO(t))
}

func (h *TaskHandler) List(w http.ResponseWriter, r *http.Request) {
	rows, err := h.Svc.List(r.Context(), r.URL.Query().Get("tag"))
	if err != nil {
		http.Error(w, "server error", http.StatusInternalServerError)
		return
	}

	out := make([]taskDTO, 0, len(rows))
	for _, t := range rows {
		out = append(out, toTaskDTO(t))
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *TaskHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}

	t, err := h.Svc.Get(r.Context(), id)
	switch err {
	case nil:
		writeJSON(w, http.StatusOK, toTaskDTO(t))
	case task.ErrNotFound:
		http.Error(w, "not found", http.StatusNotFound)
	default:
		http.Error(w, "server error", http.StatusInternalServerError)
	}
}

type updateTaskReq struct {
	Title  *string `json:"title"`
	Notes  *string `json:"notes"`
	IsDone *bool   `json:"isDone"`
}

func (h *TaskHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}

	var req updateTaskReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad json", http.StatusBadRequest)
		return
	}
	if req.Title != nil && strings.TrimSpace(*req.Title) == "" {
		http.Error(w, "title required", http.StatusBadRequest)
		return
	}

	t, err := h.Svc.Update(r.Context(), id, task.UpdateInput{
		Title:  req.Title,
		Notes:  req.Notes,
		IsDone: req.IsDone,
	})
	switch err {
	case nil:
		writeJSON(w, http.StatusOK, toTaskDTO(t))
	case task.ErrNotFound:
		http.Error(w, "not found", http.StatusNotFound)
	default:
		http.Error(w, "server error", http.StatusInternalServerError)
	}
}

func (h *TaskHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}

	switch err := h.Svc.Delete(r.Context(), id); err {
	case nil:
		w.WriteHeader(http.StatusNoContent)
	case task.ErrNotFound:
		http.Error(w, "not found", http.StatusNotFound)
	default:
		http.Error(w, "server error", http.StatusInternalServerError)
	}
}

type reorderReq struct {
	Position *int `json:"position"`
}

func (h *TaskHandler) Reorder(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}

	var req reorderReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Position == nil {
		http.Error(w, "position required", http.StatusBadRequest)
		return
	}

	switch err := h.Svc.Reorder(r.Context(), id, *req.Position); err {
	case nil:
		w.WriteHeader(http.StatusNoContent)
	case task.ErrNotFound:
		http.Error(w, "not found", http.StatusNotFound)
	default:
		http.Error(w, "server error", http.StatusInternalServerError)
	}
}

type createSubtaskReq struct {
	Title string `json:"title"`
}

func (h *TaskHandler) CreateSubtask(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}

	var req createSubtaskReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad json", http.StatusBadRequest)
		return
	}
	req.Title = strings.TrimSpace(req.Title)
	if req.Title == "" {
		http.Error(w, "title required", http.StatusBadRequest)
		return
	}

	st, err := h.Svc.CreateSubtask(r.Context(), id, req.Title)
	switch err {
	case nil:
		writeJSON(w, http.StatusCreated, toSubtaskDTO(st))
	case task.ErrNotFound:
		http.Error(w, "not found", http.StatusNotFound)
	default:
		http.Error(w, "server error", http.StatusInternalServerError)
	}
}

func (h *TaskHandler) ListSubtasks(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}

	rows, err := h.Svc.ListSubtasks(r.Context(), id)
	switch err {
	case nil:
	case task.ErrNotFound:
		http.Error(w, "not found", http.StatusNotFound)
		return
	default:
		http.Error(w, "server error", http.StatusInternalServerError)
		return
	}

	out := make([]subtaskDTO, 0, len(rows))
	for _, st := range rows {
		out = append(out, toSubtaskDTO(st))
	}
	writeJSON(w, http.StatusOK, out)
}

type updateSubtaskReq struct {
	Title  *string `json:"title"`
	IsDone *bool   `json:"isDone"`
}

func (h *TaskHandler) UpdateSubtask(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}

	var req updateSubtaskReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad json", http.StatusBadRequest)
		return
	}
	if req.Title != nil && strings.TrimSpace(*req.Title) == "" {
		http.Error(w, "title required", http.StatusBadRequest)
		return
	}

	st, err := h.Svc.UpdateSubtask(r.Context(), id, task.SubtaskUpdateInput{
		Title:  req.Title,
		IsDone: req.IsDone,
	})
	switch err {
	case nil:
		writeJSON(w, http.StatusOK, toSubtaskDTO(st))
	case task.ErrNotFound:
		http.Error(w, "not found", http.StatusNotFound)
	default:
		http.Error(w, "server error", http.StatusInternalServerError)
	}
}

func (h *TaskHandler) ReorderSubtask(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}

	var req reorderReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Position == nil {
		http.Error(w, "position required", http.StatusBadRequest)
		return
	}

	switch err := h.Svc.ReorderSubtask(r.Context(), id, *req.Position); err {
	case nil:
		w.WriteHeader(http.StatusNoContent)
	case task.ErrNotFound:
		http.Error(w, "not found", http.StatusNotFound)
	default:
		http.Error(w, "server error", http.StatusInternalServerError)
	}
}

func (h *TaskHandler) DeleteSubtask(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}

	switch err := h.Svc.DeleteSubtask(r.Context(), id); err {
	case nil:
		w.WriteHeader(http.StatusNoContent)
	case task.ErrNotFound:
		http.Error(w, "not found", http.StatusNotFound)
	default:
		http.Error(w, "server error", http.StatusInternalServerError)
	}
}
