package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/linkmarkhq/linkmark/internal/httpserver/deps"
	"github.com/linkmarkhq/linkmark/internal/httpserver/handlers"
	"github.com/linkmarkhq/linkmark/internal/httpserver/mw"
)

func init() { Register(registerAudit) }

func registerAudit(r chi.Router, d deps.Deps) {
	r.With(mw.RequireUser()).Post("/api/audit", handlers.Audit(d))
}
