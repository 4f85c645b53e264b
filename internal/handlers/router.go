package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// NewRouter регистрирует все маршруты локального API поверх переданных middleware
func NewRouter(h *TaskHandler, middlewares ...func(http.Handler) http.Handler) *chi.Mux {
	r := chi.NewRouter()
	r.Use(middlewares...)

	r.Route("/tasks", func(r chi.Router) {
		r.Get("/", h.ListTasks) // GET /tasks?q=&tab=&time=&priority=&sort=&page=&page_size=
		r.Post("/", h.PostTask) // POST /tasks

		r.Post("/bulk-delete", h.BulkDelete)         // POST /tasks/bulk-delete
		r.Post("/clear-completed", h.ClearCompleted) // POST /tasks/clear-completed
		r.Post("/clear-all", h.ClearAll)             // POST /tasks/clear-all?confirm=true

		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", h.GetTaskByID)       // GET /tasks/{id}
			r.Put("/", h.UpdateTaskByID)    // PUT /tasks/{id}
			r.Delete("/", h.DeleteTaskByID) // DELETE /tasks/{id}

			r.Post("/complete", h.CompleteTask)     // POST /tasks/{id}/complete
			r.Post("/uncomplete", h.UncompleteTask) // POST /tasks/{id}/uncomplete
			r.Post("/move", h.MoveTask)             // POST /tasks/{id}/move
			r.Post("/collapse", h.CollapseTask)     // POST /tasks/{id}/collapse
		})
	})

	r.Route("/history", func(r chi.Router) {
		r.Get("/", h.GetHistory)
		r.Post("/undo", h.Undo)
		r.Post("/redo", h.Redo)
	})

	r.Route("/import", func(r chi.Router) {
		r.Post("/preview", h.PreviewImport) // POST /import/preview?format=&match=
		r.Post("/apply", h.ApplyImport)     // POST /import/apply?format=&match=&strategy=&confirm=
	})

	r.Get("/settings", h.GetSettings)
	r.Put("/settings", h.PutSettings)
	r.Post("/sync", h.Sync)
	r.Get("/health", h.HealthCheck)
	return r
}
