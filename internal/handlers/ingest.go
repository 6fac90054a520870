package handlers

import (
	"io"
	"net/http"

	"examino-backend/internal/services"
)

type IngestHandler struct {
	ingestService  *services.IngestService
	maxUploadBytes int64
}

func NewIngestHandler(ingestService *services.IngestService, maxUploadBytes int64) *IngestHandler {
	return &IngestHandler{ingestService: ingestService, maxUploadBytes: maxUploadBytes}
}

// Upload accepts a multipart study document, runs the full ingestion
// pipeline, and returns the sync report. A failed bank commit still returns
// 201: the stored questions are live and the report carries the sync error.
func (h *IngestHandler) Upload(w http.ResponseWriter, r *http.Request) {
	if r.ContentLength > h.maxUploadBytes {
		writeJSON(w, http.StatusRequestEntityTooLarge, errorResp("FILE_TOO_LARGE", "File size exceeds upload limit", r))
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes)

	file, header, err := r.FormFile("file")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "No file provided", r))
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Failed to read uploaded file", r))
		return
	}

	topic := r.FormValue("topic")

	report, err := h.ingestService.Ingest(r.Context(), data, header.Filename, topic)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, report)
}
