package desktop

import (
	"errors"
	"net/http"

	"portfolioos/pkg/logger"
	"portfolioos/pkg/router"
	"portfolioos/pkg/wm"
)

// Handler exposes a Store over HTTP.
type Handler struct {
	store *Store
	log   *logger.Logger
}

// NewHandler creates a Handler.
func NewHandler(store *Store, log *logger.Logger) *Handler {
	if log == nil {
		log = logger.Nop()
	}
	return &Handler{store: store, log: log}
}

// Register mounts the desktop routes under prefix, usually "/api/desktop".
func (h *Handler) Register(r *router.Router, prefix string) {
	r.GET(prefix+"/apps", router.Handler(h.listApps))
	r.POST(prefix+"/sessions", router.Handler(h.createSession))
	r.GET(prefix+"/sessions/:id", router.Handler(h.getSession))
	r.DELETE(prefix+"/sessions/:id", router.Handler(h.deleteSession))
	r.POST(prefix+"/sessions/:id/windows/:app/:action", router.Handler(h.windowAction))
	r.GET(prefix+"/sessions/:id/taskbar", router.Handler(h.taskbar))
	r.POST(prefix+"/sessions/:id/taskbar/:app", router.Handler(h.clickTaskbar))
	r.GET(prefix+"/sessions/:id/terminal", router.Handler(h.terminalLines))
	r.POST(prefix+"/sessions/:id/terminal", router.Handler(h.terminalExec))
}

type appInfo struct {
	ID    wm.AppID `json:"id"`
	Title string   `json:"title"`
}

type sessionResponse struct {
	ID    string   `json:"id"`
	State wm.State `json:"state"`
}

type terminalRequest struct {
	Input string `json:"input"`
}

type terminalResponse struct {
	Lines  []string `json:"lines"`
	Output []string `json:"output"`
	Exit   bool     `json:"exit"`
	State  wm.State `json:"state"`
}

type taskbarResponse struct {
	Op    string   `json:"op"`
	State wm.State `json:"state"`
}

func (h *Handler) listApps(w http.ResponseWriter, r *http.Request) {
	apps := make([]appInfo, 0, len(wm.Apps()))
	for _, id := range wm.Apps() {
		apps = append(apps, appInfo{ID: id, Title: id.Title()})
	}
	router.WriteJSON(w, http.StatusOK, apps)
}

func (h *Handler) createSession(w http.ResponseWriter, r *http.Request) {
	sess, err := h.store.Create()
	if errors.Is(err, ErrTooManySessions) {
		router.WriteMessage(w, http.StatusServiceUnavailable, "Too many desktop sessions")
		return
	}
	if err != nil {
		h.log.Error("Failed to create desktop session", err)
		router.WriteMessage(w, http.StatusInternalServerError, "Server Error")
		return
	}
	router.WriteJSON(w, http.StatusCreated, sessionResponse{ID: sess.ID, State: sess.Windows().Snapshot()})
}

// session resolves the :id parameter, writing a 404 when it is unknown.
func (h *Handler) session(w http.ResponseWriter, r *http.Request) (*Session, bool) {
	sess, err := h.store.Get(router.Param(r, "id"))
	if err != nil {
		router.WriteMessage(w, http.StatusNotFound, "Session not found")
		return nil, false
	}
	return sess, true
}

// app resolves the :app parameter, writing a 400 when it is unknown.
func (h *Handler) app(w http.ResponseWriter, r *http.Request) (wm.AppID, bool) {
	id, err := wm.ParseAppID(router.Param(r, "app"))
	if err != nil {
		router.WriteMessage(w, http.StatusBadRequest, err.Error())
		return 0, false
	}
	return id, true
}

func (h *Handler) getSession(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}
	router.WriteJSON(w, http.StatusOK, sess.Windows().Snapshot())
}

func (h *Handler) deleteSession(w http.ResponseWriter, r *http.Request) {
	if err := h.store.Delete(router.Param(r, "id")); err != nil {
		router.WriteMessage(w, http.StatusNotFound, "Session not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) windowAction(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}
	app, ok := h.app(w, r)
	if !ok {
		return
	}
	op, err := wm.ParseOp(router.Param(r, "action"))
	if err != nil {
		router.WriteMessage(w, http.StatusBadRequest, err.Error())
		return
	}

	state, err := sess.Do(op, app)
	if err != nil {
		router.WriteMessage(w, http.StatusBadRequest, err.Error())
		return
	}
	router.WriteJSON(w, http.StatusOK, state)
}

func (h *Handler) taskbar(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}
	router.WriteJSON(w, http.StatusOK, sess.Windows().Taskbar())
}

func (h *Handler) clickTaskbar(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}
	app, ok := h.app(w, r)
	if !ok {
		return
	}
	op, state := sess.ClickTaskbar(app)
	router.WriteJSON(w, http.StatusOK, taskbarResponse{Op: op.String(), State: state})
}

func (h *Handler) terminalLines(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}
	router.WriteJSON(w, http.StatusOK, map[string][]string{"lines": sess.Shell().Lines()})
}

func (h *Handler) terminalExec(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}
	var req terminalRequest
	if err := router.DecodeJSON(w, r, &req); err != nil {
		router.WriteMessage(w, http.StatusBadRequest, err.Error())
		return
	}

	res, state, err := sess.Exec(req.Input)
	if errors.Is(err, ErrTerminalClosed) {
		router.WriteMessage(w, http.StatusConflict, "Terminal is not open")
		return
	}
	router.WriteJSON(w, http.StatusOK, terminalResponse{
		Lines:  res.Lines,
		Output: res.Output,
		Exit:   res.Exit,
		State:  state,
	})
}
