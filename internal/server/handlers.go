package server

import (
	"encoding/json"
	"errors"
	"io"
	"net"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/aksuhana/JS-PLAY-AROUND/internal/engine"
	"github.com/aksuhana/JS-PLAY-AROUND/internal/storage"
	"github.com/aksuhana/JS-PLAY-AROUND/internal/workspace"
)

// --- Response helpers ---

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func writeText(w http.ResponseWriter, status int, text string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(status)
	_, _ = io.WriteString(w, text)
}

// decodeJSON decodes the request body into v. An empty body leaves v untouched.
func decodeJSON(r *http.Request, v any) error {
	defer r.Body.Close()
	err := json.NewDecoder(r.Body).Decode(v)
	if errors.Is(err, io.EOF) {
		return nil
	}
	return err
}

func bodyError(w http.ResponseWriter, err error) {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		writeError(w, http.StatusRequestEntityTooLarge, "request body too large")
		return
	}
	writeError(w, http.StatusBadRequest, "invalid JSON: "+err.Error())
}

// --- Workspace handlers ---

func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	groups, err := s.workspace.List()
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, groups)
}

func (s *Server) handleReadFile(w http.ResponseWriter, r *http.Request) {
	content, err := s.workspace.Read(chi.URLParam(r, "lang"), chi.URLParam(r, "file"))
	switch {
	case errors.Is(err, workspace.ErrNotFound):
		writeText(w, http.StatusNotFound, "File not found")
	case errors.Is(err, workspace.ErrInvalidPath):
		writeText(w, http.StatusBadRequest, err.Error())
	case err != nil:
		writeText(w, http.StatusInternalServerError, err.Error())
	default:
		writeText(w, http.StatusOK, content)
	}
}

type saveRequest struct {
	Code string `json:"code"`
}

func (s *Server) handleSaveFile(w http.ResponseWriter, r *http.Request) {
	var req saveRequest
	if err := decodeJSON(r, &req); err != nil {
		bodyError(w, err)
		return
	}

	err := s.workspace.Save(chi.URLParam(r, "lang"), chi.URLParam(r, "file"), req.Code)
	switch {
	case errors.Is(err, workspace.ErrInvalidPath):
		writeError(w, http.StatusBadRequest, err.Error())
	case err != nil:
		writeError(w, http.StatusInternalServerError, err.Error())
	default:
		writeJSON(w, http.StatusOK, map[string]string{"message": "File saved successfully."})
	}
}

// --- Run handlers ---

// runRequest accepts both the engine field names and the shell's lang/code.
type runRequest struct {
	Dialect string `json:"dialect"`
	Source  string `json:"source"`
	Lang    string `json:"lang"`
	Code    string `json:"code"`
}

func (rr runRequest) engineRequest() engine.Request {
	req := engine.Request{Dialect: rr.Dialect, Source: rr.Source}
	if req.Dialect == "" {
		req.Dialect = rr.Lang
	}
	if req.Dialect == "" {
		req.Dialect = "js"
	}
	if req.Source == "" {
		req.Source = rr.Code
	}
	return req
}

// handleRunTemp keeps the plain-text contract of the original playground:
// 200 with the formatted text, or 400 when the transpiler is missing.
func (s *Server) handleRunTemp(w http.ResponseWriter, r *http.Request) {
	var req runRequest
	if err := decodeJSON(r, &req); err != nil {
		bodyError(w, err)
		return
	}

	out := s.engine.Run(r.Context(), req.engineRequest())
	s.history.Record(r.Context(), out, storage.OriginHTTP)

	status := http.StatusOK
	if out.Kind == engine.KindUnavailable {
		status = http.StatusBadRequest
	}
	writeText(w, status, engine.Format(out))
}

func (s *Server) handleRun(w http.ResponseWriter, r *http.Request) {
	var req runRequest
	if err := decodeJSON(r, &req); err != nil {
		bodyError(w, err)
		return
	}

	out := s.engine.Run(r.Context(), req.engineRequest())
	s.history.Record(r.Context(), out, storage.OriginHTTP)
	writeJSON(w, http.StatusOK, out.Response())
}

// --- History handlers ---

func (s *Server) store(w http.ResponseWriter) storage.Store {
	st := s.history.Store()
	if st == nil {
		writeError(w, http.StatusServiceUnavailable, "run history is disabled")
	}
	return st
}

func (s *Server) handleListRuns(w http.ResponseWriter, r *http.Request) {
	st := s.store(w)
	if st == nil {
		return
	}

	q := r.URL.Query()
	opts := storage.RunListOptions{
		Status:  storage.RunStatus(q.Get("status")),
		Dialect: q.Get("dialect"),
	}
	if limit := q.Get("limit"); limit != "" {
		if n, err := strconv.Atoi(limit); err == nil {
			opts.Limit = n
		}
	}
	if offset := q.Get("offset"); offset != "" {
		if n, err := strconv.Atoi(offset); err == nil {
			opts.Offset = n
		}
	}

	runs, err := st.ListRuns(r.Context(), opts)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if runs == nil {
		runs = []storage.Run{}
	}
	writeJSON(w, http.StatusOK, runs)
}

func (s *Server) handleGetRun(w http.ResponseWriter, r *http.Request) {
	st := s.store(w)
	if st == nil {
		return
	}

	run, err := st.GetRun(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			writeError(w, http.StatusNotFound, "run not found")
		} else {
			writeError(w, http.StatusBadRequest, err.Error())
		}
		return
	}
	writeJSON(w, http.StatusOK, run)
}

// --- Misc ---

func (s *Server) handleEcho(w http.ResponseWriter, r *http.Request) {
	var got any
	if err := decodeJSON(r, &got); err != nil {
		bodyError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true, "got": got})
}

func clientIP(r *http.Request) string {
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}
