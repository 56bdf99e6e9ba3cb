package web

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/jspark-dev/rollbook/internal/directory"
	"github.com/jspark-dev/rollbook/internal/logging"
	"github.com/jspark-dev/rollbook/internal/session"
)

// maxSaveBytes bounds a save request body, photo included.
const maxSaveBytes = 16 << 20

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type loginRequest struct {
	Password string `json:"password"`
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, 4096)).Decode(&req); err != nil {
		respondBadRequest(w, r, "body must be JSON with a password field")
		return
	}

	sess, err := s.sessions.Login(req.Password)
	if err != nil {
		logging.FromContext(r.Context()).Warn("login rejected", "remote_addr", r.RemoteAddr)
		writeJSON(w, http.StatusUnauthorized, ErrorResponse{
			Error:   "비밀번호가 틀렸습니다.",
			Message: "비밀번호가 틀렸습니다.",
			Code:    "AUTH003",
		})
		return
	}

	logging.FromContext(r.Context()).Info("login", "session_id", sess.ID)
	writeJSON(w, http.StatusOK, sess)
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	if sess, ok := session.FromContext(r.Context()); ok {
		s.sessions.Revoke(sess.Token)
		logging.FromContext(r.Context()).Info("logout", "session_id", sess.ID)
	}
	w.WriteHeader(http.StatusNoContent)
}

// directoryResponse is the full directory view: the schema, the (possibly
// filtered) records, and the same records chunked for card layout.
type directoryResponse struct {
	Header  directory.Header      `json:"header"`
	Total   int                   `json:"total"`
	Records directory.Directory   `json:"records"`
	Grid    []directory.Directory `json:"grid"`
}

func (s *Server) handleDirectory(w http.ResponseWriter, r *http.Request) {
	snap, err := s.service.Load(r.Context())
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	term := r.URL.Query().Get("q")
	field := r.URL.Query().Get("field")
	if field == "" {
		field = s.cfg.Directory.SearchField
	}
	filtered := directory.Search(snap.Records, term, field)

	columns := parseIntParam(r, "columns", s.cfg.Directory.GridColumns)

	writeJSON(w, http.StatusOK, directoryResponse{
		Header:  snap.Header,
		Total:   len(filtered),
		Records: filtered,
		Grid:    directory.Grid(filtered, columns),
	})
}

type memberResponse struct {
	Header directory.Header `json:"header"`
	Record directory.Record `json:"record"`
}

func (s *Server) handleMember(w http.ResponseWriter, r *http.Request) {
	row, err := strconv.Atoi(chi.URLParam(r, "row"))
	if err != nil || row < 0 {
		respondBadRequest(w, r, "row must be a non-negative integer")
		return
	}

	rec, header, err := s.service.Member(r.Context(), row)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, memberResponse{Header: header, Record: rec})
}

func (s *Server) handleCreateMember(w http.ResponseWriter, r *http.Request) {
	s.handleSave(w, r, -1, http.StatusCreated)
}

func (s *Server) handleUpdateMember(w http.ResponseWriter, r *http.Request) {
	row, err := strconv.Atoi(chi.URLParam(r, "row"))
	if err != nil || row < 0 {
		respondBadRequest(w, r, "row must be a non-negative integer")
		return
	}
	s.handleSave(w, r, row, http.StatusOK)
}

// savePayload is the JSON body shape for saves without a photo.
type savePayload struct {
	Edits    directory.Member `json:"edits"`
	Original directory.Member `json:"original"`
}

func (s *Server) handleSave(w http.ResponseWriter, r *http.Request, rowIndex, successStatus int) {
	r.Body = http.MaxBytesReader(w, r.Body, maxSaveBytes)

	edits, original, photo, err := parseSave(r)
	if err != nil {
		respondBadRequest(w, r, err.Error())
		return
	}
	if len(edits) == 0 && len(photo) == 0 {
		respondBadRequest(w, r, "nothing to save")
		return
	}

	var sessionID string
	if sess, ok := session.FromContext(r.Context()); ok {
		sessionID = sess.ID
	}

	merged, err := s.service.Save(r.Context(), directory.SaveRequest{
		RowIndex:  rowIndex,
		Original:  original,
		Edits:     edits,
		Photo:     photo,
		SessionID: sessionID,
	})
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	// The snapshot the client holds is stale now; it should reload the
	// directory before further edits.
	writeJSON(w, successStatus, map[string]interface{}{
		"member": merged,
		"row":    rowIndex,
	})
}

// parseSave decodes a save request. JSON bodies carry edits and the original
// snapshot; multipart bodies additionally carry a photo file, with ordinary
// form values as the edits and an optional _original JSON part.
func parseSave(r *http.Request) (edits, original directory.Member, photo []byte, err error) {
	ct := r.Header.Get("Content-Type")

	if strings.HasPrefix(ct, "application/json") {
		var payload savePayload
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			return nil, nil, nil, errors.New("malformed JSON body")
		}
		return payload.Edits, payload.Original, nil, nil
	}

	if err := r.ParseMultipartForm(maxSaveBytes); err != nil {
		return nil, nil, nil, errors.New("body must be JSON or multipart form data")
	}

	edits = directory.Member{}
	for key, vals := range r.MultipartForm.Value {
		if len(vals) == 0 {
			continue
		}
		if key == "_original" {
			if err := json.Unmarshal([]byte(vals[0]), &original); err != nil {
				return nil, nil, nil, errors.New("_original must be a JSON object")
			}
			continue
		}
		edits[key] = vals[0]
	}

	if file, _, ferr := r.FormFile("photo"); ferr == nil {
		defer file.Close()
		photo, err = io.ReadAll(file)
		if err != nil {
			return nil, nil, nil, errors.New("photo upload could not be read")
		}
	}

	return edits, original, photo, nil
}

// printEntry is one member prepared for the print view: name and photo
// rendered separately, everything else as projected fields.
type printEntry struct {
	Row    int               `json:"row"`
	Name   string            `json:"name"`
	Photo  string            `json:"photo,omitempty"`
	Fields []directory.Field `json:"fields"`
}

func (s *Server) handlePrint(w http.ResponseWriter, r *http.Request) {
	snap, err := s.service.Load(r.Context())
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	records := directory.Search(snap.Records, r.URL.Query().Get("q"), r.URL.Query().Get("field"))

	cols := parseColumns(r.URL.Query().Get("cols"), snap.Header, s.cfg.Directory.NameColumn, s.cfg.Directory.PhotoColumn)

	entries := make([]printEntry, len(records))
	for i, rec := range records {
		entries[i] = printEntry{
			Row:    rec.Row,
			Name:   rec.Member.Get(s.cfg.Directory.NameColumn),
			Photo:  rec.Member.Get(s.cfg.Directory.PhotoColumn),
			Fields: directory.Project(rec.Member, cols),
		}
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"columns": cols,
		"entries": entries,
	})
}

// parseColumns resolves the ?cols= selection against the header, dropping
// unknown columns and the name/photo columns, which always render
// separately. An empty selection means every remaining header column.
func parseColumns(raw string, header directory.Header, nameCol, photoCol string) []string {
	selectable := make([]string, 0, len(header))
	for _, col := range header {
		if col != nameCol && col != photoCol {
			selectable = append(selectable, col)
		}
	}
	if raw == "" {
		return selectable
	}

	allowed := make(map[string]bool, len(selectable))
	for _, col := range selectable {
		allowed[col] = true
	}

	var cols []string
	for _, col := range strings.Split(raw, ",") {
		col = strings.TrimSpace(col)
		if allowed[col] {
			cols = append(cols, col)
		}
	}
	return cols
}

func (s *Server) handleAudit(w http.ResponseWriter, r *http.Request) {
	if s.audit == nil {
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"enabled": false,
			"entries": []directory.AuditEntry{},
		})
		return
	}

	limit := parseIntParam(r, "limit", s.cfg.Audit.MaxEntries)
	if limit > s.cfg.Audit.MaxEntries {
		limit = s.cfg.Audit.MaxEntries
	}

	entries, err := s.audit.Recent(r.Context(), limit)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"enabled": true,
		"entries": entries,
	})
}

// parseIntParam parses an integer query parameter with a default value.
func parseIntParam(r *http.Request, name string, defaultVal int) int {
	val := r.URL.Query().Get(name)
	if val == "" {
		return defaultVal
	}
	i, err := strconv.Atoi(val)
	if err != nil || i < 1 {
		return defaultVal
	}
	return i
}
