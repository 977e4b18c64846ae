// Package http exposes the ingestion pipeline over HTTP: multipart
// uploads in, JSON parse results out. Handlers translate APIError values
// to status codes; the pipeline itself stays transport-agnostic.
package http

import (
	"encoding/json"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"

	apierrors "github.com/dshap474/tabular/internal/errors"
	"github.com/dshap474/tabular/internal/ingest"
	v1 "github.com/dshap474/tabular/pkg/contracts/api/v1"
	"github.com/dshap474/tabular/pkg/contracts/domain"
)

// maxMultipartMemory bounds the in-memory portion of multipart parsing;
// larger parts spill to temp files.
const maxMultipartMemory = 32 << 20

// ProgressBroadcaster pushes parse progress to subscribed clients.
type ProgressBroadcaster interface {
	BroadcastProgress(update domain.ProgressUpdate)
}

// IngestHandler handles the /api/ingest routes.
type IngestHandler struct {
	orchestrator *ingest.Orchestrator
	broadcaster  ProgressBroadcaster
	logger       *slog.Logger
	validate     *validator.Validate
}

// NewIngestHandler creates the ingest handler. broadcaster may be nil
// when no progress streaming is wanted.
func NewIngestHandler(orchestrator *ingest.Orchestrator, broadcaster ProgressBroadcaster, logger *slog.Logger) *IngestHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &IngestHandler{
		orchestrator: orchestrator,
		broadcaster:  broadcaster,
		logger:       logger.With(slog.String("component", "ingest_handler")),
		validate:     validator.New(),
	}
}

// Routes returns the ingest routes.
func (h *IngestHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(render.SetContentType(render.ContentTypeJSON))

	r.Post("/parse", h.Parse)
	r.Post("/parse-batch", h.ParseBatch)
	r.Post("/preview", h.Preview)
	r.Post("/sheets", h.Sheets)
	r.Post("/info", h.FileInfo)
	r.Get("/formats", h.Formats)

	return r
}

// Parse handles POST /api/ingest/parse: one file part plus an optional
// options JSON part. A parse that fails pipeline validation still
// returns 200 with success=false; only transport-level problems map to
// error statuses.
func (h *IngestHandler) Parse(w http.ResponseWriter, r *http.Request) {
	file, opts, apiErr := h.readUpload(r)
	if apiErr != nil {
		h.renderError(w, r, apiErr)
		return
	}

	result := h.orchestrator.ParseFileWithProgress(r.Context(), file, opts, h.progressFunc())

	render.JSON(w, r, v1.ParseResponse{Success: result.Success, Result: &result})
}

// ParseBatch handles POST /api/ingest/parse-batch: every part named
// "files" is parsed, with bounded concurrency. Results come back in
// upload order, failures included.
func (h *IngestHandler) ParseBatch(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxMultipartMemory); err != nil {
		h.renderError(w, r, apierrors.NewWithDetails(http.StatusBadRequest,
			"INVALID_REQUEST", "Invalid multipart form", err.Error()))
		return
	}

	opts, apiErr := h.readOptions(r)
	if apiErr != nil {
		h.renderError(w, r, apiErr)
		return
	}

	headers := r.MultipartForm.File["files"]
	if len(headers) == 0 {
		h.renderError(w, r, apierrors.ErrValidation("files", "at least one file part named 'files' is required"))
		return
	}

	files := make([]domain.InputFile, 0, len(headers))
	for _, header := range headers {
		file, apiErr := readFilePart(header)
		if apiErr != nil {
			h.renderError(w, r, apiErr)
			return
		}
		files = append(files, file)
	}

	results := h.orchestrator.ParseFiles(r.Context(), files, opts)

	success := true
	for _, result := range results {
		if !result.Success {
			success = false
			break
		}
	}
	render.JSON(w, r, v1.BatchParseResponse{Success: success, Results: results})
}

// Preview handles POST /api/ingest/preview. The limit query parameter
// caps the row window; the configured default applies otherwise.
func (h *IngestHandler) Preview(w http.ResponseWriter, r *http.Request) {
	file, opts, apiErr := h.readUpload(r)
	if apiErr != nil {
		h.renderError(w, r, apiErr)
		return
	}

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			h.renderError(w, r, apierrors.ErrValidation("limit", "limit must be a positive integer"))
			return
		}
		limit = parsed
	}

	preview, apiErr := h.orchestrator.PreviewFile(r.Context(), file, opts, limit)
	if apiErr != nil {
		h.renderError(w, r, apiErr)
		return
	}
	render.JSON(w, r, v1.PreviewResponse{Success: true, Preview: &preview})
}

// Sheets handles POST /api/ingest/sheets, listing a workbook's sheet
// names.
func (h *IngestHandler) Sheets(w http.ResponseWriter, r *http.Request) {
	file, _, apiErr := h.readUpload(r)
	if apiErr != nil {
		h.renderError(w, r, apiErr)
		return
	}

	sheets, apiErr := h.orchestrator.ListSheets(file)
	if apiErr != nil {
		h.renderError(w, r, apiErr)
		return
	}
	render.JSON(w, r, v1.SheetsResponse{Success: true, Sheets: sheets})
}

// FileInfo handles POST /api/ingest/info: validation and estimates only,
// no parsing.
func (h *IngestHandler) FileInfo(w http.ResponseWriter, r *http.Request) {
	file, _, apiErr := h.readUpload(r)
	if apiErr != nil {
		h.renderError(w, r, apiErr)
		return
	}

	info := h.orchestrator.GetFileInfo(file)
	render.JSON(w, r, v1.FileInfoResponse{Success: info.IsValid, Info: &info})
}

// Formats handles GET /api/ingest/formats.
func (h *IngestHandler) Formats(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, v1.FormatsResponse{
		Success:   true,
		Formats:   domain.SupportedFileTypes(),
		Encodings: domain.SupportedEncodings(),
	})
}

// readUpload extracts the "file" part and the optional "options" JSON
// field from a multipart request.
func (h *IngestHandler) readUpload(r *http.Request) (domain.InputFile, domain.ParseOptions, *apierrors.APIError) {
	if err := r.ParseMultipartForm(maxMultipartMemory); err != nil {
		return domain.InputFile{}, domain.ParseOptions{}, apierrors.NewWithDetails(
			http.StatusBadRequest, "INVALID_REQUEST", "Invalid multipart form", err.Error())
	}

	opts, apiErr := h.readOptions(r)
	if apiErr != nil {
		return domain.InputFile{}, domain.ParseOptions{}, apiErr
	}

	part, header, err := r.FormFile("file")
	if err != nil {
		return domain.InputFile{}, domain.ParseOptions{}, apierrors.ErrValidation(
			"file", "a file part named 'file' is required")
	}
	part.Close()

	file, apiErr := readFilePart(header)
	if apiErr != nil {
		return domain.InputFile{}, domain.ParseOptions{}, apiErr
	}
	return file, opts, nil
}

// readOptions decodes and validates the "options" form field.
func (h *IngestHandler) readOptions(r *http.Request) (domain.ParseOptions, *apierrors.APIError) {
	var opts domain.ParseOptions
	raw := r.FormValue("options")
	if raw == "" {
		return opts, nil
	}

	if err := json.Unmarshal([]byte(raw), &opts); err != nil {
		return opts, apierrors.NewWithDetails(http.StatusBadRequest,
			"INVALID_REQUEST", "options field must be valid JSON", err.Error())
	}
	if err := h.validate.Struct(opts); err != nil {
		return opts, apierrors.NewWithDetails(http.StatusBadRequest,
			"VALIDATION_FAILED", "Invalid parse options", err.Error())
	}
	return opts, nil
}

// readFilePart loads one multipart file into memory.
func readFilePart(header *multipart.FileHeader) (domain.InputFile, *apierrors.APIError) {
	part, err := header.Open()
	if err != nil {
		return domain.InputFile{}, apierrors.FileReadError(err)
	}
	defer part.Close()

	content, err := io.ReadAll(part)
	if err != nil {
		return domain.InputFile{}, apierrors.FileReadError(err)
	}

	return domain.NewInputFile(header.Filename, header.Header.Get("Content-Type"), content), nil
}

func (h *IngestHandler) progressFunc() domain.ProgressFunc {
	if h.broadcaster == nil {
		return nil
	}
	return h.broadcaster.BroadcastProgress
}

func (h *IngestHandler) renderError(w http.ResponseWriter, r *http.Request, apiErr *apierrors.APIError) {
	h.logger.WarnContext(r.Context(), "request rejected",
		slog.String("error_code", apiErr.ErrorCode),
		slog.String("message", apiErr.Message))
	render.Status(r, apiErr.StatusCode)
	render.JSON(w, r, apierrors.NewErrorResponse(apiErr))
}
