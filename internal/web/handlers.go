package web

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/JonMunkholm/grantsheet/internal/grants"
	"github.com/JonMunkholm/grantsheet/internal/logging"
	"github.com/JonMunkholm/grantsheet/internal/workbook"
)

// ActorHeader names the user responsible for an upload.
const ActorHeader = "X-Actor"

// multipartSlack is the body allowance for boundaries and part headers on
// top of the file size limit.
const multipartSlack = 1 << 20

// UploadResponse is the body of a committed import.
type UploadResponse struct {
	Message         string   `json:"message"`
	ProcessedGrants int      `json:"processed_grants"`
	Warnings        []string `json:"warnings,omitempty"`
}

// UploadFailure is the body of an import that was rolled back.
type UploadFailure struct {
	Message string `json:"message"`
	Error   string `json:"error"`
}

// handleUpload imports one workbook from the multipart field "file".
func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	maxSize := s.cfg.Upload.MaxFileSize
	r.Body = http.MaxBytesReader(w, r.Body, maxSize+multipartSlack)

	if err := r.ParseMultipartForm(maxSize); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			respondError(w, r, fmt.Errorf("file too large: limit %d bytes", maxSize), http.StatusBadRequest)
			return
		}
		respondError(w, r, fmt.Errorf("invalid upload form: %w", err), http.StatusBadRequest)
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile("file")
	if err != nil {
		respondError(w, r, errNoFile, http.StatusBadRequest)
		return
	}
	defer file.Close()

	if header.Size > maxSize {
		respondError(w, r, fmt.Errorf("file too large: limit %d bytes", maxSize), http.StatusBadRequest)
		return
	}

	if !workbook.Supported(header.Filename) {
		respondError(w, r, fmt.Errorf("%w: %q", workbook.ErrUnsupportedFormat, header.Filename), http.StatusBadRequest)
		return
	}

	actor := strings.TrimSpace(r.Header.Get(ActorHeader))
	if actor == "" {
		actor = s.cfg.Upload.DefaultActor
	}

	ctx := logging.ContextWith(r.Context(), "actor", actor, "ip", clientIP(r))
	result, err := s.service.ImportFile(ctx, file, header.Filename, actor)
	if err != nil {
		switch {
		case errors.Is(err, grants.ErrTooManyImports):
			w.Header().Set("Retry-After", "30")
			respondError(w, r, err, http.StatusServiceUnavailable)
		case errors.Is(err, workbook.ErrUnsupportedFormat):
			respondError(w, r, err, http.StatusBadRequest)
		default:
			logging.FromContext(ctx).Error("grant import failed", "file", header.Filename, "error", err)
			writeJSONStatus(w, http.StatusInternalServerError, UploadFailure{
				Message: "Failed to import grant data",
				Error:   grants.FormatUserError(err),
			})
		}
		return
	}

	writeJSON(w, UploadResponse{
		Message:         "Grant data import completed",
		ProcessedGrants: result.ProcessedGrants,
		Warnings:        result.Warnings,
	})
}

// handleListGrants lists grants that have items, optionally filtered by
// ?grant_id=N.
func (s *Server) handleListGrants(w http.ResponseWriter, r *http.Request) {
	var filter grants.GrantFilter
	if v := r.URL.Query().Get("grant_id"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil || id <= 0 {
			respondError(w, r, errBadGrantID, http.StatusBadRequest)
			return
		}
		filter.GrantID = id
	}

	list, err := s.service.ListGrants(r.Context(), filter)
	if err != nil {
		respondError(w, r, err, http.StatusInternalServerError)
		return
	}
	if list == nil {
		list = []grants.GrantWithItems{}
	}
	writeJSON(w, list)
}

// HealthResponse is the body of /healthz.
type HealthResponse struct {
	Status   string               `json:"status"`
	Database string               `json:"database"`
	Imports  grants.LimiterStatus `json:"imports"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	resp := HealthResponse{
		Status:   "ok",
		Database: "ok",
		Imports:  s.service.Limiter().Status(),
	}
	status := http.StatusOK
	if err := s.service.Ping(ctx); err != nil {
		logging.FromContext(r.Context()).Warn("health check: database unreachable", "error", err)
		resp.Status = "degraded"
		resp.Database = "unreachable"
		status = http.StatusServiceUnavailable
	}
	writeJSONStatus(w, status, resp)
}

// clientIP strips the port from RemoteAddr.
func clientIP(r *http.Request) string {
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}
