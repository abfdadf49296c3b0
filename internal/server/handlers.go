package server

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/flowsmith/flowsmith/pkg/convert"
	"github.com/flowsmith/flowsmith/pkg/emit"
	"github.com/flowsmith/flowsmith/pkg/errors"
	"github.com/flowsmith/flowsmith/pkg/ir/analyze"
	"github.com/flowsmith/flowsmith/pkg/pipeline"
)

// maxFlowBytes bounds the accepted flow export size (8 MiB).
const maxFlowBytes = 8 << 20

// convertRequest is the POST /api/convert body.
type convertRequest struct {
	// Flow is the raw flow-builder JSON export.
	Flow json.RawMessage `json:"flow"`

	// Options configures generation (language, project name, flags).
	Options pipeline.Options `json:"options"`

	// Async queues the conversion as a job instead of running inline.
	Async bool `json:"async,omitempty"`
}

// convertResponse is the conversion result payload, shared by the sync
// endpoint and job snapshots.
type convertResponse struct {
	Analysis     *analyze.Report   `json:"analysis,omitempty"`
	Artifacts    []emit.Artifact   `json:"artifacts"`
	Dependencies []string          `json:"dependencies,omitempty"`
	Warnings     []convert.Warning `json:"warnings,omitempty"`
	Converted    int               `json:"converted"`
	Skipped      int               `json:"skipped"`
	ParseHit     bool              `json:"parseCacheHit"`
	ConvertHit   bool              `json:"convertCacheHit"`
}

// newConvertResponse assembles the response payload from stage outputs.
func newConvertResponse(report *analyze.Report, conv *convert.Result, artifacts []emit.Artifact, parseHit, convertHit bool) *convertResponse {
	return &convertResponse{
		Analysis:     report,
		Artifacts:    artifacts,
		Dependencies: conv.Dependencies,
		Warnings:     conv.Warnings,
		Converted:    conv.Converted,
		Skipped:      conv.Skipped,
		ParseHit:     parseHit,
		ConvertHit:   convertHit,
	}
}

// handleConvert accepts a flow export and either converts it inline or
// queues an asynchronous job.
func (s *Server) handleConvert(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxFlowBytes)

	var req convertRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, errors.New(errors.ErrCodeInvalidInput, "request body is not valid JSON"))
		return
	}
	if len(req.Flow) == 0 {
		writeError(w, errors.New(errors.ErrCodeInvalidInput, "missing flow export"))
		return
	}

	if req.Async {
		job := s.jobs.create()
		go s.runJob(job, []byte(req.Flow), req.Options)
		writeJSON(w, http.StatusAccepted, job.snapshot())
		return
	}

	job := &Job{subscribers: make(map[chan Event]struct{})}
	resp, err := s.executeStaged(r.Context(), job, []byte(req.Flow), req.Options)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// handleJob returns the current snapshot of a job.
func (s *Server) handleJob(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	job, ok := s.jobs.get(id)
	if !ok {
		writeError(w, errors.New(errors.ErrCodeJobNotFound, "job not found: %s", id))
		return
	}
	writeJSON(w, http.StatusOK, job.snapshot())
}

// errorResponse is the JSON error envelope.
type errorResponse struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// writeError maps a domain error to an HTTP status and envelope.
func writeError(w http.ResponseWriter, err error) {
	code := errors.GetCode(err)

	status := http.StatusInternalServerError
	switch code {
	case errors.ErrCodeInvalidInput, errors.ErrCodeInvalidFlow, errors.ErrCodeInvalidLanguage,
		errors.ErrCodeInvalidFormat, errors.ErrCodeCircularDependency, errors.ErrCodeMissingNode,
		errors.ErrCodeDuplicateNode, errors.ErrCodeMissingParameter, errors.ErrCodeUnsupported:
		status = http.StatusBadRequest
	case errors.ErrCodeNotFound, errors.ErrCodeFileNotFound, errors.ErrCodeJobNotFound:
		status = http.StatusNotFound
	case errors.ErrCodeTimeout:
		status = http.StatusGatewayTimeout
	}

	var resp errorResponse
	resp.Error.Code = string(code)
	resp.Error.Message = errors.UserMessage(err)
	writeJSON(w, status, resp)
}

// writeJSON writes v as a JSON response with the given status.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
