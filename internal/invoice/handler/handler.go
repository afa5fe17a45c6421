// Package handler exposes the invoice registry over HTTP.
//
// Reads are public. Writes run behind the auth middleware, which puts the
// bearer token subject on the context as the caller identity.
package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"tradeinvoice/internal/invoice/models"
	"tradeinvoice/pkg/contenthash"
	id "tradeinvoice/pkg/domain"
	dErrors "tradeinvoice/pkg/domain-errors"
	"tradeinvoice/pkg/platform/httputil"
	"tradeinvoice/pkg/requestcontext"
)

// Service is the registry surface the handler needs.
type Service interface {
	TransferAdmin(ctx context.Context, caller, newAdmin id.Identity) error
	SetOracle(ctx context.Context, caller, newOracle id.Identity) error
	SetPaused(ctx context.Context, caller id.Identity, paused bool) (bool, error)
	CreateInvoice(ctx context.Context, caller id.Identity, req models.CreateInvoiceRequest) (uint64, error)
	UpdateStatus(ctx context.Context, caller id.Identity, invoiceID uint64, status models.Status) (*models.Invoice, error)
	VerifyInvoice(ctx context.Context, caller id.Identity, invoiceID uint64) (*models.Invoice, error)
	CancelInvoice(ctx context.Context, caller id.Identity, invoiceID uint64) (*models.Invoice, error)
	GetInvoice(ctx context.Context, invoiceID uint64) (*models.Invoice, error)
	GetInvoiceCount(ctx context.Context) (uint64, error)
	GetInvoiceByHash(ctx context.Context, hash models.ContentHash) (uint64, error)
	GetState(ctx context.Context) (models.RegistryState, error)
}

// Handler wires registry endpoints to the service.
type Handler struct {
	service Service
	logger  *slog.Logger
}

func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// Register mounts the registry endpoints. requireAuth guards every write.
func (h *Handler) Register(r chi.Router, requireAuth func(http.Handler) http.Handler) {
	r.Get("/registry", h.HandleGetRegistry)
	r.Get("/invoices/count", h.HandleGetInvoiceCount)
	r.Get("/invoices/by-hash/{hash}", h.HandleGetInvoiceByHash)
	r.Get("/invoices/{id}", h.HandleGetInvoice)

	r.Group(func(r chi.Router) {
		r.Use(requireAuth)
		r.Put("/registry/admin", h.HandleTransferAdmin)
		r.Put("/registry/oracle", h.HandleSetOracle)
		r.Put("/registry/paused", h.HandleSetPaused)
		r.Post("/invoices", h.HandleCreateInvoice)
		r.Put("/invoices/{id}/status", h.HandleUpdateStatus)
		r.Post("/invoices/{id}/verify", h.HandleVerifyInvoice)
		r.Post("/invoices/{id}/cancel", h.HandleCancelInvoice)
	})
}

// HandleGetRegistry handles GET /registry.
func (h *Handler) HandleGetRegistry(w http.ResponseWriter, r *http.Request) {
	state, err := h.service.GetState(r.Context())
	if err != nil {
		h.fail(w, r, "load registry state", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, state)
}

// HandleTransferAdmin handles PUT /registry/admin.
func (h *Handler) HandleTransferAdmin(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	req, ok := httputil.DecodeAndPrepare[TransferAdminRequest](w, r, h.logger, ctx, requestcontext.RequestID(ctx))
	if !ok {
		return
	}
	caller := requestcontext.Caller(ctx)
	newAdmin := id.ParseIdentity(req.NewAdmin)
	if err := h.service.TransferAdmin(ctx, caller, newAdmin); err != nil {
		h.fail(w, r, "transfer admin", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, RoleResponse{Admin: newAdmin.String()})
}

// HandleSetOracle handles PUT /registry/oracle.
func (h *Handler) HandleSetOracle(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	req, ok := httputil.DecodeAndPrepare[SetOracleRequest](w, r, h.logger, ctx, requestcontext.RequestID(ctx))
	if !ok {
		return
	}
	newOracle := id.ParseIdentity(req.NewOracle)
	if err := h.service.SetOracle(ctx, requestcontext.Caller(ctx), newOracle); err != nil {
		h.fail(w, r, "set oracle", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, RoleResponse{Oracle: newOracle.String()})
}

// HandleSetPaused handles PUT /registry/paused.
func (h *Handler) HandleSetPaused(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	req, ok := httputil.DecodeAndPrepare[SetPausedRequest](w, r, h.logger, ctx, requestcontext.RequestID(ctx))
	if !ok {
		return
	}
	paused, err := h.service.SetPaused(ctx, requestcontext.Caller(ctx), *req.Paused)
	if err != nil {
		h.fail(w, r, "set paused", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, PausedResponse{Paused: paused})
}

// HandleCreateInvoice handles POST /invoices. Without an explicit hash the
// content hash is derived from the caller and the document fields.
func (h *Handler) HandleCreateInvoice(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	req, ok := httputil.DecodeAndPrepare[CreateInvoiceRequest](w, r, h.logger, ctx, requestcontext.RequestID(ctx))
	if !ok {
		return
	}
	caller := requestcontext.Caller(ctx)

	domainReq := req.ToModel()
	if !req.HasHash() {
		domainReq.Hash = models.ContentHash(contenthash.Sum(req.Document(caller)))
	}

	invoiceID, err := h.service.CreateInvoice(ctx, caller, domainReq)
	if err != nil {
		h.fail(w, r, "create invoice", err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, CreateInvoiceResponse{
		InvoiceID: invoiceID,
		Hash:      domainReq.Hash,
	})
}

// HandleUpdateStatus handles PUT /invoices/{id}/status.
func (h *Handler) HandleUpdateStatus(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	invoiceID, ok := h.invoiceID(w, r)
	if !ok {
		return
	}
	req, ok := httputil.DecodeAndPrepare[UpdateStatusRequest](w, r, h.logger, ctx, requestcontext.RequestID(ctx))
	if !ok {
		return
	}
	inv, err := h.service.UpdateStatus(ctx, requestcontext.Caller(ctx), invoiceID, *req.Status)
	if err != nil {
		h.fail(w, r, "update invoice status", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, inv)
}

// HandleVerifyInvoice handles POST /invoices/{id}/verify.
func (h *Handler) HandleVerifyInvoice(w http.ResponseWriter, r *http.Request) {
	invoiceID, ok := h.invoiceID(w, r)
	if !ok {
		return
	}
	inv, err := h.service.VerifyInvoice(r.Context(), requestcontext.Caller(r.Context()), invoiceID)
	if err != nil {
		h.fail(w, r, "verify invoice", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, inv)
}

// HandleCancelInvoice handles POST /invoices/{id}/cancel.
func (h *Handler) HandleCancelInvoice(w http.ResponseWriter, r *http.Request) {
	invoiceID, ok := h.invoiceID(w, r)
	if !ok {
		return
	}
	inv, err := h.service.CancelInvoice(r.Context(), requestcontext.Caller(r.Context()), invoiceID)
	if err != nil {
		h.fail(w, r, "cancel invoice", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, inv)
}

// HandleGetInvoice handles GET /invoices/{id}.
func (h *Handler) HandleGetInvoice(w http.ResponseWriter, r *http.Request) {
	invoiceID, ok := h.invoiceID(w, r)
	if !ok {
		return
	}
	inv, err := h.service.GetInvoice(r.Context(), invoiceID)
	if err != nil {
		h.fail(w, r, "get invoice", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, inv)
}

// HandleGetInvoiceCount handles GET /invoices/count.
func (h *Handler) HandleGetInvoiceCount(w http.ResponseWriter, r *http.Request) {
	count, err := h.service.GetInvoiceCount(r.Context())
	if err != nil {
		h.fail(w, r, "count invoices", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, CountResponse{InvoiceCount: count})
}

// HandleGetInvoiceByHash handles GET /invoices/by-hash/{hash}.
func (h *Handler) HandleGetInvoiceByHash(w http.ResponseWriter, r *http.Request) {
	hash, err := models.ParseContentHash(chi.URLParam(r, "hash"))
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "hash must be 32 hex encoded bytes"))
		return
	}
	invoiceID, err := h.service.GetInvoiceByHash(r.Context(), hash)
	if err != nil {
		h.fail(w, r, "get invoice by hash", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, HashLookupResponse{InvoiceID: invoiceID, Hash: hash})
}

func (h *Handler) invoiceID(w http.ResponseWriter, r *http.Request) (uint64, bool) {
	invoiceID, err := strconv.ParseUint(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invoice id must be an unsigned integer"))
		return 0, false
	}
	return invoiceID, true
}

// fail logs rejected calls at warn and unexpected failures at error, then
// writes the mapped response.
func (h *Handler) fail(w http.ResponseWriter, r *http.Request, op string, err error) {
	ctx := r.Context()
	attrs := []any{
		"operation", op,
		"error", err,
		"request_id", requestcontext.RequestID(ctx),
		"caller", requestcontext.Caller(ctx).String(),
	}
	if httputil.StatusFor(codeOf(err)) >= http.StatusInternalServerError && !dErrors.HasCode(err, dErrors.CodePaused) {
		h.logger.ErrorContext(ctx, "registry operation failed", attrs...)
	} else {
		h.logger.WarnContext(ctx, "registry operation rejected", attrs...)
	}
	httputil.WriteError(w, err)
}

func codeOf(err error) dErrors.Code {
	if code, ok := dErrors.CodeOf(err); ok {
		return code
	}
	return dErrors.CodeInternal
}
