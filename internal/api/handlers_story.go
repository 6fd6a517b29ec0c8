package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/MohanBalaji3/TestCaseStudio/internal/importer"
	"github.com/MohanBalaji3/TestCaseStudio/internal/story"
	"github.com/MohanBalaji3/TestCaseStudio/internal/testcase"
)

// extractPayload mirrors the shape of a Jira issue response so clients can
// POST a payload they fetched themselves and get extraction without the
// service ever seeing their credentials.
type extractPayload struct {
	Key            string                     `json:"key"`
	Fields         map[string]json.RawMessage `json:"fields"`
	RenderedFields struct {
		Description string `json:"description"`
	} `json:"renderedFields"`
	Names map[string]string `json:"names"`
}

func (s *Server) handleExtractStory(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 4<<20)

	var payload extractPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		jsonError(w, "invalid issue payload: "+err.Error(), http.StatusBadRequest)
		return
	}

	var summary string
	if raw, ok := payload.Fields["summary"]; ok {
		_ = json.Unmarshal(raw, &summary)
	}

	detail := story.Resolve(story.Issue{
		Key:                 payload.Key,
		Summary:             summary,
		Fields:              payload.Fields,
		RenderedDescription: payload.RenderedFields.Description,
		Names:               payload.Names,
	}, story.Options{AcceptanceFieldID: s.cfg.AcceptanceFieldID})

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(detail)
}

func (s *Server) handleImportStory(w http.ResponseWriter, r *http.Request) {
	// Limit total request size.
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes+1024*1024) // extra 1MB for form overhead

	if err := r.ParseMultipartForm(32 << 20); err != nil {
		jsonError(w, "invalid multipart form: "+err.Error(), http.StatusBadRequest)
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile("file")
	if err != nil {
		jsonError(w, "file is required: "+err.Error(), http.StatusBadRequest)
		return
	}
	defer file.Close()

	filename := sanitizeFilename(header.Filename)
	if !importer.IsSupportedExtension(filename) {
		jsonError(w, fmt.Sprintf("unsupported file type: %s", filepath.Ext(filename)), http.StatusBadRequest)
		return
	}

	data, err := io.ReadAll(io.LimitReader(file, s.cfg.MaxUploadBytes+1))
	if err != nil {
		jsonError(w, "failed to read file", http.StatusInternalServerError)
		return
	}
	if int64(len(data)) > s.cfg.MaxUploadBytes {
		jsonError(w, fmt.Sprintf("file exceeds max size (%d bytes)", s.cfg.MaxUploadBytes), http.StatusRequestEntityTooLarge)
		return
	}

	imp, err := importer.ForFile(filename)
	if err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}
	if p, ok := imp.(*importer.PDFImporter); ok {
		p.FallbackPdftotext = s.cfg.PDFFallbackPdftotext
	}

	draft, err := imp.Import(bytes.NewReader(data), filename)
	if err != nil {
		jsonError(w, "import failed: "+err.Error(), http.StatusUnprocessableEntity)
		return
	}

	resp := map[string]any{
		"filename": filename,
		"draft":    draft,
	}
	if r.FormValue("generate") == "true" {
		cases := generateValid(story.Detail{
			Title:              draft.Title,
			Description:        draft.Description,
			AcceptanceCriteria: draft.AcceptanceCriteria,
		})
		resp["cases"] = cases
		resp["count"] = len(cases)
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(resp)
}

type exportRequest struct {
	Filename string          `json:"filename"`
	Cases    []testcase.Case `json:"cases"`
}

func (s *Server) handleExportCSV(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 4<<20)

	var req exportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonError(w, "invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}
	if len(req.Cases) == 0 {
		jsonError(w, "cases is required", http.StatusBadRequest)
		return
	}

	filename := sanitizeFilename(req.Filename)
	if filename == "unnamed" {
		filename = "testcases.csv"
	}
	if !strings.HasSuffix(strings.ToLower(filename), ".csv") {
		filename += ".csv"
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	if err := testcase.WriteCSV(w, req.Cases); err != nil {
		s.log.Error("csv export failed", "error", err)
	}
}

func jsonError(w http.ResponseWriter, msg string, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}

func sanitizeFilename(name string) string {
	// Strip path components, keep only the base name.
	name = filepath.Base(name)
	// Remove any path separators that might have survived.
	name = strings.ReplaceAll(name, "/", "_")
	name = strings.ReplaceAll(name, "\\", "_")
	name = strings.ReplaceAll(name, "..", "_")
	if name == "" || name == "." {
		name = "unnamed"
	}
	return name
}
