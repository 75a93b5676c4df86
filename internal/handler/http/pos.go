package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/Carlos85Carvalho/luni-final-sub000/internal/domain"
	"github.com/Carlos85Carvalho/luni-final-sub000/internal/service"
	"github.com/Carlos85Carvalho/luni-final-sub000/pkg/httputil"
	"github.com/Carlos85Carvalho/luni-final-sub000/pkg/pagination"
	"github.com/Carlos85Carvalho/luni-final-sub000/pkg/validator"
)

// POSHandler handles HTTP requests for point-of-sale sessions.
type POSHandler struct {
	sessions *service.SessionService
	pending  *service.PendingService
	logger   *slog.Logger
}

// NewPOSHandler creates a new point-of-sale HTTP handler.
func NewPOSHandler(sessions *service.SessionService, pending *service.PendingService, logger *slog.Logger) *POSHandler {
	return &POSHandler{
		sessions: sessions,
		pending:  pending,
		logger:   logger,
	}
}

// --- Request DTOs ---

// OpenSessionRequest is the JSON request body for opening a session.
type OpenSessionRequest struct {
	SalonID string `json:"salon_id" validate:"required"`
}

// AddLineRequest is the JSON request body for adding an item to the cart.
type AddLineRequest struct {
	ItemID        string `json:"item_id" validate:"required"`
	Kind          string `json:"kind" validate:"required,oneof=product service"`
	Quantity      int    `json:"quantity" validate:"omitempty,gte=1"`
	AppointmentID string `json:"appointment_id"`
	Note          string `json:"note" validate:"omitempty,max=500"`
}

// AdjustLineRequest is the JSON request body for adjusting a line's quantity.
type AdjustLineRequest struct {
	Delta int `json:"delta" validate:"required"`
}

// SetPriceRequest is the JSON request body for overriding a service price.
type SetPriceRequest struct {
	UnitPrice int64 `json:"unit_price" validate:"gte=0"`
}

// SetDiscountRequest is the JSON request body for the cart-level discount.
type SetDiscountRequest struct {
	Kind  string  `json:"kind" validate:"required,oneof=percent fixed"`
	Value float64 `json:"value" validate:"gte=0"`
}

// AttachCustomerRequest is the JSON request body for attaching a customer.
type AttachCustomerRequest struct {
	CustomerID string `json:"customer_id" validate:"required"`
}

// CheckoutRequest is the JSON request body for finalizing the sale.
type CheckoutRequest struct {
	PaymentMethod string `json:"payment_method" validate:"required,oneof=cash card pix transfer"`
}

// RecoverRequest is the JSON request body for recovering a pending sale.
type RecoverRequest struct {
	PendingSaleID string `json:"pending_sale_id" validate:"required"`
}

// RecoverResponse pairs the refreshed session with the lines that could not
// be restored.
type RecoverResponse struct {
	Session      *service.SessionView `json:"session"`
	DroppedLines []domain.PendingLine `json:"dropped_lines,omitempty"`
}

// --- Handlers ---

// OpenSession handles POST /api/v1/pos/sessions
func (h *POSHandler) OpenSession(w http.ResponseWriter, r *http.Request) {
	var req OpenSessionRequest
	if !h.decode(w, r, &req) {
		return
	}

	view, err := h.sessions.Open(r.Context(), req.SalonID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, httputil.Response{Data: view})
}

// GetSession handles GET /api/v1/pos/sessions/{id}
func (h *POSHandler) GetSession(w http.ResponseWriter, r *http.Request) {
	view, err := h.sessions.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: view})
}

// CloseSession handles DELETE /api/v1/pos/sessions/{id}
func (h *POSHandler) CloseSession(w http.ResponseWriter, r *http.Request) {
	if err := h.sessions.Close(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.writeError(w, r, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: map[string]string{"status": "closed"}})
}

// AddLine handles POST /api/v1/pos/sessions/{id}/lines
func (h *POSHandler) AddLine(w http.ResponseWriter, r *http.Request) {
	var req AddLineRequest
	if !h.decode(w, r, &req) {
		return
	}

	view, err := h.sessions.AddItem(r.Context(), chi.URLParam(r, "id"), service.AddItemInput{
		ItemID:        req.ItemID,
		Kind:          domain.LineKind(req.Kind),
		Quantity:      req.Quantity,
		AppointmentID: req.AppointmentID,
		Note:          req.Note,
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: view})
}

// AdjustLine handles PATCH /api/v1/pos/sessions/{id}/lines/{kind}/{itemId}
func (h *POSHandler) AdjustLine(w http.ResponseWriter, r *http.Request) {
	var req AdjustLineRequest
	if !h.decode(w, r, &req) {
		return
	}

	view, err := h.sessions.AdjustQuantity(r.Context(),
		chi.URLParam(r, "id"), chi.URLParam(r, "itemId"), domain.LineKind(chi.URLParam(r, "kind")), req.Delta)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: view})
}

// SetLinePrice handles PUT /api/v1/pos/sessions/{id}/lines/{kind}/{itemId}/price
func (h *POSHandler) SetLinePrice(w http.ResponseWriter, r *http.Request) {
	var req SetPriceRequest
	if !h.decode(w, r, &req) {
		return
	}

	view, err := h.sessions.SetLinePrice(r.Context(),
		chi.URLParam(r, "id"), chi.URLParam(r, "itemId"), req.UnitPrice)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: view})
}

// RemoveLine handles DELETE /api/v1/pos/sessions/{id}/lines/{kind}/{itemId}
func (h *POSHandler) RemoveLine(w http.ResponseWriter, r *http.Request) {
	view, err := h.sessions.RemoveLine(r.Context(),
		chi.URLParam(r, "id"), chi.URLParam(r, "itemId"), domain.LineKind(chi.URLParam(r, "kind")))
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: view})
}

// ClearCart handles DELETE /api/v1/pos/sessions/{id}/lines
func (h *POSHandler) ClearCart(w http.ResponseWriter, r *http.Request) {
	view, err := h.sessions.ClearCart(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: view})
}

// SetDiscount handles PUT /api/v1/pos/sessions/{id}/discount
func (h *POSHandler) SetDiscount(w http.ResponseWriter, r *http.Request) {
	var req SetDiscountRequest
	if !h.decode(w, r, &req) {
		return
	}

	view, err := h.sessions.SetDiscount(r.Context(),
		chi.URLParam(r, "id"), domain.DiscountKind(req.Kind), req.Value)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: view})
}

// AttachCustomer handles PUT /api/v1/pos/sessions/{id}/customer
func (h *POSHandler) AttachCustomer(w http.ResponseWriter, r *http.Request) {
	var req AttachCustomerRequest
	if !h.decode(w, r, &req) {
		return
	}

	view, err := h.sessions.AttachCustomer(r.Context(), chi.URLParam(r, "id"), req.CustomerID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: view})
}

// Checkout handles POST /api/v1/pos/sessions/{id}/checkout
func (h *POSHandler) Checkout(w http.ResponseWriter, r *http.Request) {
	var req CheckoutRequest
	if !h.decode(w, r, &req) {
		return
	}

	result, err := h.sessions.Checkout(r.Context(), chi.URLParam(r, "id"), req.PaymentMethod)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, httputil.Response{Data: result})
}

// SavePending handles POST /api/v1/pos/sessions/{id}/pending
func (h *POSHandler) SavePending(w http.ResponseWriter, r *http.Request) {
	pending, err := h.sessions.SavePending(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, httputil.Response{Data: pending})
}

// Recover handles POST /api/v1/pos/sessions/{id}/recover
func (h *POSHandler) Recover(w http.ResponseWriter, r *http.Request) {
	var req RecoverRequest
	if !h.decode(w, r, &req) {
		return
	}

	view, dropped, err := h.sessions.Recover(r.Context(), chi.URLParam(r, "id"), req.PendingSaleID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: RecoverResponse{Session: view, DroppedLines: dropped}})
}

// ListPending handles GET /api/v1/pos/pending?salon_id=...
func (h *POSHandler) ListPending(w http.ResponseWriter, r *http.Request) {
	pendings, err := h.pending.List(r.Context(), r.URL.Query().Get("salon_id"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	// Snapshots come back from a Redis scan, so the page is cut in memory.
	params := pagination.FromRequest(r)
	total := len(pendings)
	start := min(params.Offset, total)
	end := min(start+params.PerPage, total)

	httputil.WriteJSON(w, http.StatusOK, httputil.NewPaginatedResponse(pendings[start:end], total, params.Page, params.PerPage))
}

// --- Helpers ---

// decode parses and validates the JSON request body, writing the error
// response itself when the body is unusable.
func (h *POSHandler) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20) // 1MB limit

	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		httputil.WriteJSON(w, http.StatusBadRequest, httputil.Response{
			Error: &httputil.ErrorResponse{Code: "INVALID_INPUT", Message: "invalid request body: " + err.Error()},
		})
		return false
	}

	if err := validator.Validate(v); err != nil {
		httputil.WriteValidationError(w, err)
		return false
	}

	return true
}

// writeError maps service errors to responses. A checkout step failure means
// earlier writes are already committed, so the failing step is surfaced to
// the operator instead of a generic internal error.
func (h *POSHandler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	var stepErr *domain.StepError
	if errors.As(err, &stepErr) {
		h.logger.ErrorContext(r.Context(), "checkout halted mid-sequence",
			slog.String("step", stepErr.Step),
			slog.String("error", stepErr.Err.Error()),
			slog.String("path", r.URL.Path),
		)
		httputil.WriteJSON(w, http.StatusInternalServerError, httputil.Response{
			Error: &httputil.ErrorResponse{
				Code:    "CHECKOUT_STEP_FAILED",
				Message: "checkout halted; earlier steps are persisted and were not rolled back",
				Fields:  map[string]string{"step": stepErr.Step},
			},
		})
		return
	}

	httputil.WriteError(w, r, err, h.logger)
}
