package web

import (
	"errors"
	"net/http"
	"strings"

	"github.com/rubiojr/stusearch/pkg/controller"
	"github.com/rubiojr/stusearch/pkg/render"
	"github.com/rubiojr/stusearch/pkg/version"
)

// fetchHeader marks requests issued by the page script. They get an empty
// answer and pick up the new state from the event stream.
const fetchHeader = "X-Requested-With"

func isFetch(r *http.Request) bool {
	return r.Header.Get(fetchHeader) == "fetch"
}

// done finishes a state changing request.
func done(w http.ResponseWriter, r *http.Request) {
	if isFetch(r) {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (s *Server) handleHome(w http.ResponseWriter, r *http.Request) {
	sess := s.sessions.get(w, r)

	if q := r.URL.Query().Get("q"); q != "" {
		// failures surface as notifications
		_ = sess.ctrl.Search(r.Context(), q)
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	page := render.Page(render.PageData{
		Version: version.Version,
		State:   sess.ctrl.State(),
	})
	if err := page.Render(r.Context(), w); err != nil {
		logger.Errorf("rendering page: %v", err)
	}
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	sess := s.sessions.get(w, r)
	if err := r.ParseForm(); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err.Error())
		return
	}

	err := sess.ctrl.Search(r.Context(), r.FormValue("q"))
	if err != nil && !errors.Is(err, controller.ErrEmptyQuery) {
		logger.Debugf("search %q: %v", r.FormValue("q"), err)
	}
	done(w, r)
}

func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	sess := s.sessions.get(w, r)
	sess.ctrl.Reset()
	done(w, r)
}

func (s *Server) handleDetails(w http.ResponseWriter, r *http.Request) {
	sess := s.sessions.get(w, r)
	if _, err := sess.ctrl.ShowDetails(r.PathValue("key")); err != nil {
		writeError(w, http.StatusNotFound, "not_found", err.Error())
		return
	}
	done(w, r)
}

func (s *Server) handleClose(w http.ResponseWriter, r *http.Request) {
	sess := s.sessions.get(w, r)
	sess.ctrl.CloseDetails()
	done(w, r)
}

func (s *Server) handlePrint(w http.ResponseWriter, r *http.Request) {
	sess := s.sessions.get(w, r)
	profile, err := sess.ctrl.PrintProfile(r.PathValue("key"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := render.Print(profile).Render(r.Context(), w); err != nil {
		logger.Errorf("rendering profile: %v", err)
	}
}

func (s *Server) handleFragment(w http.ResponseWriter, r *http.Request) {
	sess := s.sessions.get(w, r)
	state := sess.ctrl.State()

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	if err := render.App(state).Render(r.Context(), w); err != nil {
		logger.Errorf("rendering fragment: %v", err)
	}
}

func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	sess := s.sessions.get(w, r)
	writeJSON(w, http.StatusOK, sess.ctrl.State())
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, healthResponse())
}

// handleStatic serves the embedded stylesheet and script.
func (s *Server) handleStatic(w http.ResponseWriter, r *http.Request) {
	path := r.URL.Path
	filePath := "static/" + strings.TrimPrefix(path, "/static/")

	content, err := staticFS.ReadFile(filePath)
	if err != nil {
		http.NotFound(w, r)
		return
	}

	switch {
	case strings.HasSuffix(path, ".css"):
		w.Header().Set("Content-Type", "text/css")
	case strings.HasSuffix(path, ".js"):
		w.Header().Set("Content-Type", "application/javascript")
	case strings.HasSuffix(path, ".ico"):
		w.Header().Set("Content-Type", "image/x-icon")
	}
	w.Header().Set("Cache-Control", "public, max-age=3600")

	if _, err := w.Write(content); err != nil {
		logger.Errorf("writing static content: %v", err)
	}
}
