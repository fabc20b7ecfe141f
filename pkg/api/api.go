// Package api serves the portfolio's REST resources: login, contact
// messages, projects, notes and the GitHub widgets.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"portfolioos/pkg/auth"
	"portfolioos/pkg/logger"
	"portfolioos/pkg/router"
	"portfolioos/pkg/store"
)

// Documents is the persistence the API needs.
type Documents interface {
	CreateProject(ctx context.Context, p store.Project) (*store.Project, error)
	GetProject(ctx context.Context, id string) (*store.Project, error)
	ListProjects(ctx context.Context) ([]store.Project, error)
	UpdateProject(ctx context.Context, id string, patch store.Project) (*store.Project, error)
	DeleteProject(ctx context.Context, id string) error

	CreateContact(ctx context.Context, c store.Contact) (*store.Contact, error)
	ListContacts(ctx context.Context) ([]store.Contact, error)

	CreateNote(ctx context.Context, n store.Note) (*store.Note, error)
	ListNotes(ctx context.Context) ([]store.Note, error)
	DeleteNote(ctx context.Context, id string) error
}

// GitHub fetches the raw profile and repository listings.
type GitHub interface {
	Profile(ctx context.Context) (json.RawMessage, error)
	Repos(ctx context.Context) (json.RawMessage, error)
}

// API holds the handlers' dependencies.
type API struct {
	docs   Documents
	auth   *auth.Authenticator
	github GitHub
	log    *logger.Logger
}

// New creates an API. github may be nil, in which case the GitHub routes
// are not registered.
func New(docs Documents, authn *auth.Authenticator, gh GitHub, log *logger.Logger) *API {
	if log == nil {
		log = logger.Nop()
	}
	return &API{docs: docs, auth: authn, github: gh, log: log}
}

// Register mounts every route under /api.
func (a *API) Register(r *router.Router) {
	admin := a.auth.RequireAdmin

	r.POST("/api/auth/login", router.Handler(a.login))

	r.POST("/api/contact", router.Handler(a.createContact))
	r.GET("/api/contact", router.Handler(a.listContacts), admin)

	r.GET("/api/projects", router.Handler(a.listProjects))
	r.GET("/api/projects/:id", router.Handler(a.getProject))
	r.POST("/api/projects", router.Handler(a.createProject), admin)
	r.PUT("/api/projects/:id", router.Handler(a.updateProject), admin)
	r.DELETE("/api/projects/:id", router.Handler(a.deleteProject), admin)

	r.GET("/api/notes", router.Handler(a.listNotes))
	r.POST("/api/notes", router.Handler(a.createNote), admin)
	r.DELETE("/api/notes/:id", router.Handler(a.deleteNote), admin)

	if a.github != nil {
		r.GET("/api/github/profile", router.Handler(a.githubProfile))
		r.GET("/api/github/repos", router.Handler(a.githubRepos))
	}
}

// fail maps a store error to a response. Validation and not-found errors are
// reported with their own message or notFoundMsg.
func (a *API) fail(w http.ResponseWriter, r *http.Request, err error, notFoundMsg string) {
	var se *store.Error
	switch {
	case errors.Is(err, store.ErrNotFound):
		router.WriteMessage(w, http.StatusNotFound, notFoundMsg)
	case errors.Is(err, store.ErrValidation) && errors.As(err, &se) && se.Err != nil:
		router.WriteMessage(w, http.StatusBadRequest, se.Err.Error())
	case errors.Is(err, store.ErrDuplicate):
		router.WriteMessage(w, http.StatusConflict, "Already exists")
	default:
		a.log.Error("Request failed", err, "method", r.Method, "path", r.URL.Path)
		router.WriteMessage(w, http.StatusInternalServerError, "Server Error")
	}
}

// decode reads a JSON body, writing a 400 on failure.
func decode(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	if err := router.DecodeJSON(w, r, v); err != nil {
		router.WriteMessage(w, http.StatusBadRequest, err.Error())
		return false
	}
	return true
}
