package handlers

import (
	"context"
	"errors"
	"io"
	"net/http"

	"github.com/chatlens/chatlens/internal/archive"
	"github.com/chatlens/chatlens/internal/models"
	"github.com/chatlens/chatlens/internal/parser"
)

// ParseService runs uploads through the parsing pipeline.
type ParseService interface {
	ParseSync(filename string, content []byte) (*models.ParseResult, error)
	Submit(ctx context.Context, filename string, content []byte) (*models.Task, error)
}

// ParseHandler handles upload-and-parse requests.
type ParseHandler struct {
	svc            ParseService
	maxUploadBytes int64
}

// NewParseHandler creates a new ParseHandler.
func NewParseHandler(svc ParseService, maxUploadBytes int64) *ParseHandler {
	return &ParseHandler{
		svc:            svc,
		maxUploadBytes: maxUploadBytes,
	}
}

// Parse receives a file, parses it synchronously and returns the complete
// corpus and statistics in the response.
func (h *ParseHandler) Parse(w http.ResponseWriter, r *http.Request) {
	filename, content, ok := h.readUpload(w, r)
	if !ok {
		return
	}

	result, err := h.svc.ParseSync(filename, content)
	if err != nil {
		if errors.Is(err, archive.ErrNoDocuments) || errors.Is(err, parser.ErrNoDocuments) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// ParseAsync receives a file, queues a background parse task and returns
// its id for polling via the tasks endpoint or the WebSocket stream.
func (h *ParseHandler) ParseAsync(w http.ResponseWriter, r *http.Request) {
	filename, content, ok := h.readUpload(w, r)
	if !ok {
		return
	}

	task, err := h.svc.Submit(r.Context(), filename, content)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusAccepted, map[string]any{
		"task_id": task.ID,
		"status":  task.Status,
	})
}

// readUpload extracts the multipart "file" part; on failure it writes the
// error response and returns ok=false.
func (h *ParseHandler) readUpload(w http.ResponseWriter, r *http.Request) (string, []byte, bool) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes)

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "No file part")
		return "", nil, false
	}
	defer file.Close()

	if header.Filename == "" {
		writeError(w, http.StatusBadRequest, "No selected file")
		return "", nil, false
	}

	content, err := io.ReadAll(file)
	if err != nil {
		writeError(w, http.StatusBadRequest, "failed to read upload")
		return "", nil, false
	}

	return header.Filename, content, true
}
