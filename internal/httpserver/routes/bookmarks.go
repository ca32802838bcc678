package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/linkmarkhq/linkmark/internal/httpserver/deps"
	"github.com/linkmarkhq/linkmark/internal/httpserver/handlers"
	"github.com/linkmarkhq/linkmark/internal/httpserver/mw"
)

func init() { Register(registerBookmarks) }

func registerBookmarks(r chi.Router, d deps.Deps) {
	r.With(mw.RequireUser()).Route("/api/bookmarks", func(r chi.Router) {
		r.Post("/", handlers.CreateBookmark(d))
		r.Get("/", handlers.ListBookmarks(d))
		r.Get("/{id}", handlers.GetBookmark(d))
	})
}
