package api

import (
	"errors"
	"net/http"

	"portfolioos/pkg/auth"
	"portfolioos/pkg/router"
	"portfolioos/pkg/store"
)

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (a *API) login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !decode(w, r, &req) {
		return
	}

	res, err := a.auth.Login(r.Context(), req.Username, req.Password, router.ClientIP(r))
	switch {
	case errors.Is(err, auth.ErrAccountLocked):
		router.WriteMessage(w, http.StatusTooManyRequests, "Too many failed attempts, try again later")
	case errors.Is(err, auth.ErrInvalidCredentials):
		router.WriteMessage(w, http.StatusUnauthorized, "Invalid username or password")
	case err != nil:
		a.log.Error("Login failed", err, "username", req.Username)
		router.WriteMessage(w, http.StatusInternalServerError, "Server Error")
	default:
		router.WriteJSON(w, http.StatusOK, res)
	}
}

type contactRequest struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Message string `json:"message"`
}

func (a *API) createContact(w http.ResponseWriter, r *http.Request) {
	var req contactRequest
	if !decode(w, r, &req) {
		return
	}
	if req.Name == "" || req.Email == "" || req.Message == "" {
		router.WriteMessage(w, http.StatusBadRequest, "Please fill in all fields")
		return
	}

	_, err := a.docs.CreateContact(r.Context(), store.Contact{
		Name:    req.Name,
		Email:   req.Email,
		Message: req.Message,
	})
	if err != nil {
		a.fail(w, r, err, "")
		return
	}
	router.WriteMessage(w, http.StatusCreated, "Message sent successfully")
}

func (a *API) listContacts(w http.ResponseWriter, r *http.Request) {
	contacts, err := a.docs.ListContacts(r.Context())
	if err != nil {
		a.fail(w, r, err, "")
		return
	}
	router.WriteJSON(w, http.StatusOK, contacts)
}

type projectRequest struct {
	Title       string              `json:"title"`
	Description string              `json:"description"`
	Tags        []string            `json:"tags"`
	Link        string              `json:"link"`
	Status      store.ProjectStatus `json:"status"`
}

func (p projectRequest) project() store.Project {
	return store.Project{
		Title:       p.Title,
		Description: p.Description,
		Tags:        p.Tags,
		Link:        p.Link,
		Status:      p.Status,
	}
}

func (a *API) listProjects(w http.ResponseWriter, r *http.Request) {
	projects, err := a.docs.ListProjects(r.Context())
	if err != nil {
		a.fail(w, r, err, "")
		return
	}
	router.WriteJSON(w, http.StatusOK, projects)
}

func (a *API) getProject(w http.ResponseWriter, r *http.Request) {
	p, err := a.docs.GetProject(r.Context(), router.Param(r, "id"))
	if err != nil {
		a.fail(w, r, err, "Project not found")
		return
	}
	router.WriteJSON(w, http.StatusOK, p)
}

func (a *API) createProject(w http.ResponseWriter, r *http.Request) {
	var req projectRequest
	if !decode(w, r, &req) {
		return
	}
	p, err := a.docs.CreateProject(r.Context(), req.project())
	if err != nil {
		a.fail(w, r, err, "")
		return
	}
	router.WriteJSON(w, http.StatusCreated, p)
}

func (a *API) updateProject(w http.ResponseWriter, r *http.Request) {
	var req projectRequest
	if !decode(w, r, &req) {
		return
	}
	p, err := a.docs.UpdateProject(r.Context(), router.Param(r, "id"), req.project())
	if err != nil {
		a.fail(w, r, err, "Project not found")
		return
	}
	router.WriteJSON(w, http.StatusOK, p)
}

func (a *API) deleteProject(w http.ResponseWriter, r *http.Request) {
	if err := a.docs.DeleteProject(r.Context(), router.Param(r, "id")); err != nil {
		a.fail(w, r, err, "Project not found")
		return
	}
	router.WriteMessage(w, http.StatusOK, "Project removed")
}

type noteRequest struct {
	Title   string   `json:"title"`
	Content string   `json:"content"`
	Tags    []string `json:"tags"`
}

func (a *API) listNotes(w http.ResponseWriter, r *http.Request) {
	notes, err := a.docs.ListNotes(r.Context())
	if err != nil {
		a.fail(w, r, err, "")
		return
	}
	router.WriteJSON(w, http.StatusOK, notes)
}

func (a *API) createNote(w http.ResponseWriter, r *http.Request) {
	var req noteRequest
	if !decode(w, r, &req) {
		return
	}
	n, err := a.docs.CreateNote(r.Context(), store.Note{
		Title:   req.Title,
		Content: req.Content,
		Tags:    req.Tags,
	})
	if err != nil {
		a.fail(w, r, err, "")
		return
	}
	router.WriteJSON(w, http.StatusCreated, n)
}

func (a *API) deleteNote(w http.ResponseWriter, r *http.Request) {
	if err := a.docs.DeleteNote(r.Context(), router.Param(r, "id")); err != nil {
		a.fail(w, r, err, "Note not found")
		return
	}
	router.WriteMessage(w, http.StatusOK, "Note deleted")
}

func (a *API) githubProfile(w http.ResponseWriter, r *http.Request) {
	body, err := a.github.Profile(r.Context())
	if err != nil {
		a.log.Error("GitHub profile fetch failed", err)
		router.WriteMessage(w, http.StatusInternalServerError, "Error fetching GitHub profile")
		return
	}
	router.WriteJSON(w, http.StatusOK, body)
}

func (a *API) githubRepos(w http.ResponseWriter, r *http.Request) {
	body, err := a.github.Repos(r.Context())
	if err != nil {
		a.log.Error("GitHub repos fetch failed", err)
		router.WriteMessage(w, http.StatusInternalServerError, "Error fetching GitHub repos")
		return
	}
	router.WriteJSON(w, http.StatusOK, body)
}
