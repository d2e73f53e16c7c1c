package handler

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"roster/internal/platform/metrics"
	"roster/internal/platform/middleware"
	"roster/internal/record/models"
	dErrors "roster/pkg/domain-errors"
	"roster/pkg/platform/httputil"
)

// Success messages sent with 200 responses.
const (
	MsgCreated = "User created successfully"
	MsgFetched = "User fetched successfully"
	MsgListed  = "Users fetched successfully"
	MsgUpdated = "User details updated successfully"
	MsgDeleted = "User deleted successfully"
)

const maxBodyBytes = 1 << 20

// Service defines the record operations the handler needs.
type Service interface {
	Create(ctx context.Context, req *models.CreateRecordRequest) (*models.Record, error)
	Get(ctx context.Context, id int64) (*models.Record, error)
	List(ctx context.Context) ([]*models.Record, error)
	Update(ctx context.Context, id int64, req *models.UpdateRecordRequest) (*models.Record, error)
	Delete(ctx context.Context, id int64) error
}

// Handler serves the user record routes.
type Handler struct {
	records Service
	logger  *slog.Logger
	metrics *metrics.Metrics
}

// New creates a record Handler. metrics may be nil.
func New(records Service, logger *slog.Logger, metrics *metrics.Metrics) *Handler {
	return &Handler{records: records, logger: logger, metrics: metrics}
}

// Register mounts the record routes under /api/v1/users.
func (h *Handler) Register(r chi.Router) {
	users := chi.NewRouter()
	users.Use(middleware.ContentTypeJSON)
	users.Use(middleware.LatencyMiddleware(h.metrics))
	users.Post("/create-user", h.handleCreate)
	users.Get("/read-user/{userId}", h.handleGet)
	users.Get("/read-users", h.handleList)
	users.Put("/update-user/{userId}", h.handleUpdate)
	users.Delete("/delete-user/{userId}", h.handleDelete)

	r.Mount("/api/v1/users", users)
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var req models.CreateRecordRequest
	if err := decode(r, &req); err != nil {
		h.logger.WarnContext(ctx, "invalid create user request",
			"request_id", middleware.GetRequestID(ctx),
			"error", err.Error(),
		)
		httputil.WriteError(w, err)
		return
	}

	record, err := h.records.Create(ctx, &req)
	if err != nil {
		h.writeFailure(ctx, w, "create user", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, record, MsgCreated)
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, err := userID(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	record, err := h.records.Get(ctx, id)
	if err != nil {
		h.writeFailure(ctx, w, "read user", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, record, MsgFetched)
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	records, err := h.records.List(ctx)
	if err != nil {
		h.writeFailure(ctx, w, "read users", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, records, MsgListed)
}

func (h *Handler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, err := userID(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	var req models.UpdateRecordRequest
	if err := decode(r, &req); err != nil {
		h.logger.WarnContext(ctx, "invalid update user request",
			"request_id", middleware.GetRequestID(ctx),
			"error", err.Error(),
		)
		httputil.WriteError(w, err)
		return
	}

	record, err := h.records.Update(ctx, id, &req)
	if err != nil {
		h.writeFailure(ctx, w, "update user", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, record, MsgUpdated)
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, err := userID(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	if err := h.records.Delete(ctx, id); err != nil {
		h.writeFailure(ctx, w, "delete user", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, struct{}{}, MsgDeleted)
}

// writeFailure logs server-side failures at error level and client
// failures at debug, then writes the envelope.
func (h *Handler) writeFailure(ctx context.Context, w http.ResponseWriter, op string, err error) {
	if de, ok := dErrors.As(err); ok && de.Code.IsClientError() {
		h.logger.DebugContext(ctx, op+" rejected",
			"request_id", middleware.GetRequestID(ctx),
			"code", string(de.Code),
			"field", de.Field,
		)
	} else {
		h.logger.ErrorContext(ctx, "failed to "+op,
			"request_id", middleware.GetRequestID(ctx),
			"error", err.Error(),
		)
	}
	httputil.WriteError(w, err)
}

func userID(r *http.Request) (int64, error) {
	raw := chi.URLParam(r, "userId")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, dErrors.New(dErrors.CodeBadRequest, "userId must be an integer")
	}
	return id, nil
}

// decode reads a single JSON object keeping numbers as json.Number so the
// validator can tell 30 from 30.5 without float rounding.
func decode(r *http.Request, dst any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	dec.UseNumber()
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return dErrors.Wrap(err, dErrors.CodeBadRequest, "invalid request body")
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return dErrors.New(dErrors.CodeBadRequest, "invalid request body")
	}
	return nil
}
