package web

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/catalogkit/skuadmin/internal/catalog"
	"github.com/catalogkit/skuadmin/internal/logging"
)

// descriptorView is the JSON shape of one field descriptor. Validation
// internals (compiled patterns, bounds) stay server-side.
type descriptorView struct {
	Name      string                 `json:"name"`
	Label     string                 `json:"label"`
	Type      string                 `json:"type"`
	Mandatory bool                   `json:"mandatory"`
	Options   []catalog.SelectOption `json:"options,omitempty"`
}

// handleDescriptors returns the ordered field schema.
func (s *Server) handleDescriptors(w http.ResponseWriter, r *http.Request) {
	descs := s.cache.Descriptors()
	out := make([]descriptorView, len(descs))
	for i, d := range descs {
		out[i] = descriptorView{
			Name:      d.Name,
			Label:     d.Label,
			Type:      typeName(d.Type),
			Mandatory: d.Mandatory,
			Options:   d.Options,
		}
	}
	writeJSON(w, out)
}

func typeName(ft catalog.FieldType) string {
	switch ft {
	case catalog.FieldLongText:
		return "long-text"
	case catalog.FieldNumber:
		return "number"
	case catalog.FieldBool:
		return "boolean"
	case catalog.FieldSelect:
		return "single-select"
	case catalog.FieldURL:
		return "url"
	default:
		return "text"
	}
}

// handleListRecords returns all cached records, filtered by the
// optional case-insensitive ?q= substring query.
func (s *Server) handleListRecords(w http.ResponseWriter, r *http.Request) {
	records := s.cache.Search(r.URL.Query().Get("q"))
	writeJSON(w, map[string]any{
		"records": records,
		"total":   len(records),
	})
}

// handleReload refreshes the cache from the remote store.
func (s *Server) handleReload(w http.ResponseWriter, r *http.Request) {
	if err := s.cache.Load(r.Context()); err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, map[string]any{"total": s.cache.Len()})
}

// handleInsertPending creates a pending record and begins editing it.
func (s *Server) handleInsertPending(w http.ResponseWriter, r *http.Request) {
	rec := s.cache.InsertPending()
	staged, err := s.session.Begin(rec)
	if err != nil {
		// Another record is mid-edit; roll the optimistic insert back.
		s.cache.Discard(rec.Key)
		respondError(w, r, err)
		return
	}
	writeJSON(w, map[string]any{"record": rec, "staged": staged})
}

// handleBeginEdit starts an edit session for an existing record.
func (s *Server) handleBeginEdit(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Key string `json:"key"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	rec, ok := s.cache.Get(req.Key)
	if !ok {
		respondError(w, r, &catalog.NotFoundError{Key: req.Key})
		return
	}

	staged, err := s.session.Begin(rec)
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, map[string]any{"key": req.Key, "staged": staged})
}

// handleChangeField merges one edited value into the staged snapshot.
func (s *Server) handleChangeField(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name  string `json:"name"`
		Value any    `json:"value"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := s.session.ChangeField(req.Name, req.Value); err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, map[string]any{"staged": s.session.Staged()})
}

// handleCommit validates and persists the staged values.
func (s *Server) handleCommit(w http.ResponseWriter, r *http.Request) {
	rec, err := s.session.Commit(r.Context())
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, map[string]any{"record": rec})
}

// handleAbort discards the staged values.
func (s *Server) handleAbort(w http.ResponseWriter, r *http.Request) {
	s.session.Abort()
	w.WriteHeader(http.StatusNoContent)
}

// handleBulkDelete deletes a selection of records with partial-failure
// semantics.
func (s *Server) handleBulkDelete(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Keys []string `json:"keys"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if len(req.Keys) == 0 {
		writeError(w, http.StatusBadRequest, "no keys selected")
		return
	}

	result := s.bulk.DeleteMany(r.Context(), req.Keys)
	logging.FromContext(r.Context()).Info("bulk delete finished",
		"requested", len(req.Keys),
		"succeeded", result.Succeeded,
		"discarded", result.Discarded,
		"failed", len(result.Failed),
	)
	writeJSON(w, result)
}

// handleImport accepts a CSV file and submits it as an import job.
func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.opts.MaxUploadBytes)
	if err := r.ParseMultipartForm(s.opts.MaxUploadBytes); err != nil {
		writeError(w, http.StatusRequestEntityTooLarge, "file exceeds the upload size limit")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "no file provided")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		writeError(w, http.StatusBadRequest, "read file: "+err.Error())
		return
	}
	if len(data) == 0 {
		writeError(w, http.StatusBadRequest, "empty file")
		return
	}

	if err := s.tracker.Submit(r.Context(), header.Filename, data); err != nil {
		respondError(w, r, err)
		return
	}

	logging.FromContext(r.Context()).Info("import submitted",
		"file", header.Filename, "bytes", len(data))
	w.WriteHeader(http.StatusAccepted)
	writeJSON(w, s.tracker.Snapshot())
}

// handleImportStatus returns the tracked task's current state.
func (s *Server) handleImportStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, s.tracker.Snapshot())
}

// handleImportReport serves the result report of the last completed
// import as a download.
func (s *Server) handleImportReport(w http.ResponseWriter, r *http.Request) {
	report, ok := s.tracker.Report()
	if !ok {
		writeError(w, http.StatusNotFound, "no completed import")
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", report.Filename))
	w.Write(report.Content)
}

// handleExport streams the cached records as CSV in descriptor order.
func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	descs := s.cache.Descriptors()
	records := s.cache.Records()

	filename := fmt.Sprintf("catalog-%s.csv", time.Now().Format("20060102-150405"))
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))

	cw := csv.NewWriter(w)
	header := make([]string, 0, len(descs)+1)
	header = append(header, "key")
	for _, d := range descs {
		header = append(header, d.Name)
	}
	cw.Write(header)

	row := make([]string, len(header))
	for _, rec := range records {
		row[0] = rec.Key
		for i, d := range descs {
			row[i+1] = fmt.Sprintf("%v", catalog.ToEditValue(d, rec.Fields[d.Name]))
		}
		cw.Write(row)
	}
	cw.Flush()
}
