package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/dmitrijs2005/truthchain/internal/common"
	"github.com/dmitrijs2005/truthchain/internal/logging"
	"github.com/dmitrijs2005/truthchain/internal/server/models"
	"github.com/dmitrijs2005/truthchain/internal/server/services"
	"github.com/go-chi/chi/v5"
)

// multipartMemory is the part of a multipart form kept in memory; the rest
// spills to temporary files.
const multipartMemory = 8 << 20

// RecordService is what the handlers need from services.RecordService.
type RecordService interface {
	List(ctx context.Context) ([]*models.Record, error)
	Prepare(ctx context.Context, in services.Upload) (*models.PreparedUpload, error)
	Finalize(ctx context.Context, sub models.Submission) (*models.Record, error)
	Relay(ctx context.Context, in services.Upload) (*models.Record, error)
	RelayEnabled() bool
	ContractAddress() string
	Status() services.Status
}

// ReadinessChecker reports whether a dependency is usable. *sql.DB satisfies it.
type ReadinessChecker interface {
	PingContext(ctx context.Context) error
}

// FileLocator resolves a CID to a file on disk. contentstore.Local satisfies it.
type FileLocator interface {
	Path(cid string) (string, error)
}

// Handler implements the HTTP endpoints.
type Handler struct {
	records        RecordService
	db             ReadinessChecker
	files          FileLocator
	maxUploadBytes int64
	logger         logging.Logger
}

// NewHandler returns a Handler. db and files may be nil: readiness then
// skips the database check and /uploads answers 404.
func NewHandler(rs RecordService, db ReadinessChecker, files FileLocator, maxUploadBytes int64, logger logging.Logger) *Handler {
	return &Handler{
		records:        rs,
		db:             db,
		files:          files,
		maxUploadBytes: maxUploadBytes,
		logger:         logger.With("module", "http_handler"),
	}
}

type errorResponse struct {
	Success bool        `json:"success"`
	Kind    common.Kind `json:"kind"`
	Message string      `json:"message"`
}

type recordResponse struct {
	Success bool           `json:"success"`
	Record  *models.Record `json:"record"`
}

type preparedResponse struct {
	Success bool `json:"success"`
	*models.PreparedUpload
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// statusFor maps an error kind to its HTTP status.
func statusFor(kind common.Kind) int {
	switch kind {
	case common.KindValidation, common.KindLedgerTxNotFound, common.KindLedgerTxFailed,
		common.KindWrongContract, common.KindEventNotFound, common.KindHashMismatch,
		common.KindCidMismatch, common.KindSubmitterMismatch, common.KindHashVerificationFailed:
		return http.StatusBadRequest
	case common.KindDuplicateRecord:
		return http.StatusConflict
	case common.KindUpstreamUnavailable:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	kind := common.KindOf(err)
	msg := err.Error()
	if kind == common.KindInternal {
		h.logger.Error(r.Context(), "request failed", "path", r.URL.Path, "error", err)
		msg = "internal error"
	}
	writeJSON(w, statusFor(kind), errorResponse{Kind: kind, Message: msg})
}

func (h *Handler) ListRecords(w http.ResponseWriter, r *http.Request) {
	recs, err := h.records.List(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, recs)
}

func (h *Handler) PrepareUpload(w http.ResponseWriter, r *http.Request) {
	in, err := h.readUpload(w, r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	p, err := h.records.Prepare(r.Context(), in)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, preparedResponse{Success: true, PreparedUpload: p})
}

func (h *Handler) SaveRecord(w http.ResponseWriter, r *http.Request) {
	var sub models.Submission
	if err := json.NewDecoder(io.LimitReader(r.Body, 1<<20)).Decode(&sub); err != nil {
		h.writeError(w, r, fmt.Errorf("%w: request body must be a JSON submission", common.ErrValidation))
		return
	}

	rec, err := h.records.Finalize(r.Context(), sub)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, recordResponse{Success: true, Record: rec})
}

// Relay is the server-signed flow. It exists for local testing and is
// refused unless the server holds a signer key.
func (h *Handler) Relay(w http.ResponseWriter, r *http.Request) {
	if !h.records.RelayEnabled() {
		writeJSON(w, http.StatusNotFound, errorResponse{
			Kind:    common.KindUpstreamUnavailable,
			Message: "relay is disabled; configure a ledger signer key",
		})
		return
	}

	in, err := h.readUpload(w, r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	rec, err := h.records.Relay(r.Context(), in)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, recordResponse{Success: true, Record: rec})
}

func (h *Handler) ContractAddress(w http.ResponseWriter, _ *http.Request) {
	var addr *string
	if a := h.records.ContractAddress(); a != "" {
		addr = &a
	}
	writeJSON(w, http.StatusOK, map[string]*string{"address": addr})
}

func (h *Handler) Status(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, h.records.Status())
}

func (h *Handler) ServeUpload(w http.ResponseWriter, r *http.Request) {
	if h.files == nil {
		http.NotFound(w, r)
		return
	}
	p, err := h.files.Path(chi.URLParam(r, "cid"))
	if err != nil {
		http.NotFound(w, r)
		return
	}
	http.ServeFile(w, r, p)
}

// readUpload parses a multipart form with fields text and file.
func (h *Handler) readUpload(w http.ResponseWriter, r *http.Request) (services.Upload, error) {
	if h.maxUploadBytes > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes+multipartMemory)
	}

	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			return services.Upload{}, fmt.Errorf("%w: file is too large", common.ErrValidation)
		}
		return services.Upload{}, fmt.Errorf("%w: expected a multipart form with text and file", common.ErrValidation)
	}

	in := services.Upload{Text: r.FormValue("text")}

	file, hdr, err := r.FormFile("file")
	if errors.Is(err, http.ErrMissingFile) {
		return in, nil
	}
	if err != nil {
		return in, fmt.Errorf("%w: %v", common.ErrValidation, err)
	}
	defer file.Close()

	in.Data, err = io.ReadAll(file)
	if err != nil {
		return in, fmt.Errorf("%w: %v", common.ErrValidation, err)
	}
	in.FileName = hdr.Filename
	in.FileType = hdr.Header.Get("Content-Type")
	return in, nil
}
