package http

import (
	"net/http"
	"path/filepath"

	"loft/internal/config"
	"loft/internal/http/handler"
	mw "loft/internal/http/middleware"
	"loft/internal/link"
	"loft/internal/note"
	"loft/internal/reminder"
	"loft/internal/target"
	"loft/internal/task"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"gorm.io/gorm"
)

func NewRouter(cfg config.Config, db *gorm.DB) http.Handler {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)

	if len(cfg.CORSAllowedOrigins) > 0 {
		r.Use(mw.CORS(cfg.CORSAllowedOrigins, cfg.CORSAllowCredentials))
	}

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	resolver := &target.Resolver{DB: db}

	taskSvc := &task.Service{DB: db}
	taskH := &handler.TaskHandler{Svc: taskSvc}

	noteSvc := &note.Service{DB: db}
	noteH := &handler.NoteHandler{Svc: noteSvc}

	remSvc := &reminder.Service{DB: db, Resolver: resolver}
	remH := &handler.ReminderHandler{Svc: remSvc}

	linkStore := &link.Store{DB: db}
	shots := link.NewScreenshotCapture(cfg.ScreenshotEnabled, cfg.ScreenshotDir, cfg.ScreenshotTimeout)
	enricher := link.NewEnricher(linkStore, resolver, cfg.FetchTimeout, shots)
	linkH := &handler.LinkHandler{Enricher: enricher, Store: linkStore}

	r.Route("/tasks", func(r chi.Router) {
		r.Post("/", taskH.Create)
		r.Get("/", taskH.List)

		r.Get("/{id}", taskH.Get)
		r.Put("/{id}", taskH.Update)
		r.Delete("/{id}", taskH.Delete)
		r.Post("/{id}/reorder", taskH.Reorder)

		r.Get("/{id}/subtasks", taskH.ListSubtasks)
		r.Post("/{id}/subtasks", taskH.CreateSubtask)

		r.Get("/{id}/links", linkH.ListByOwner(target.KindTask))
		r.Post("/{id}/links", linkH.Attach(target.KindTask))
	})

	r.Put("/subtasks/{id}", taskH.UpdateSubtask)
	r.Delete("/subtasks/{id}", taskH.DeleteSubtask)
	r.Post("/subtasks/{id}/reorder", taskH.ReorderSubtask)

	r.Route("/notes", func(r chi.Router) {
		r.Post("/", noteH.Create)
		r.Get("/", noteH.List)

		r.Get("/{id}", noteH.Get)
		r.Put("/{id}", noteH.Update)
		r.Delete("/{id}", noteH.Delete)

		r.Get("/{id}/links", linkH.ListByOwner(target.KindNote))
		r.Post("/{id}/links", linkH.Attach(target.KindNote))
	})

	r.Route("/reminders", func(r chi.Router) {
		r.Get("/", remH.List)
		r.Post("/", remH.Create)

		// due must register before the id routes so chi does not eat it
		r.Get("/due", remH.Due)

		r.Put("/{id}", remH.Update)
		r.Delete("/{id}", remH.Delete)
	})

	r.Get("/links/{id}", linkH.Get)
	r.Delete("/links/{id}", linkH.Delete)
	r.Get("/link-preview", linkH.Preview)

	// Captured screenshots served straight off disk, keyed by filename.
	r.Get("/screenshots/{file}", func(w http.ResponseWriter, r *http.Request) {
		name := filepath.Base(chi.URLParam(r, "file"))
		http.ServeFile(w, r, filepath.Join(cfg.ScreenshotDir, name))
	})

	return r
}
