package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"rental/internal/domain"
	"rental/internal/service"
)

// PaymentHandler handles HTTP requests for checkout and the provider webhook.
type PaymentHandler struct {
	paymentService *service.PaymentService
}

// NewPaymentHandler creates a new PaymentHandler.
func NewPaymentHandler(paymentService *service.PaymentService) *PaymentHandler {
	return &PaymentHandler{paymentService: paymentService}
}

// CheckoutRequest is the HTTP request body for initiating a checkout.
type CheckoutRequest struct {
	BookingID string `json:"booking_id"`
}

// WebhookRequest is the payment provider's completion callback payload.
// Signature verification happens upstream; by the time it reaches this
// handler the event is authentic.
type WebhookRequest struct {
	Reference string `json:"reference"`
	Event     string `json:"event"` // Only "payment.completed" is acted on
}

// PaymentResponse is the HTTP representation of a payment.
type PaymentResponse struct {
	ID          string `json:"id"`
	BookingID   string `json:"booking_id"`
	Reference   string `json:"reference"`
	Amount      string `json:"amount"`
	Paid        bool   `json:"paid"`
	PaidAt      string `json:"paid_at,omitempty"`
	RedirectURL string `json:"redirect_url,omitempty"`
}

func toPaymentResponse(p *domain.Payment, redirectURL string) PaymentResponse {
	resp := PaymentResponse{
		ID:          p.ID,
		BookingID:   p.BookingID,
		Reference:   p.Reference,
		Amount:      p.Amount.StringFixed(2),
		Paid:        p.Paid,
		RedirectURL: redirectURL,
	}
	if !p.PaidAt.IsZero() {
		resp.PaidAt = p.PaidAt.Format(time.RFC3339)
	}
	return resp
}

// CreateCheckout handles POST /v1/payments/checkout
func (h *PaymentHandler) CreateCheckout(c *gin.Context) {
	var req CheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	result, err := h.paymentService.CreateCheckout(c.Request.Context(), req.BookingID)
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusCreated, toPaymentResponse(result.Payment, result.RedirectURL))
}

// Webhook handles POST /v1/payments/webhook
// The provider retries until it sees 2xx, so every accepted outcome,
// including a redelivered confirmation, must answer success.
func (h *PaymentHandler) Webhook(c *gin.Context) {
	var req WebhookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	if req.Event != "payment.completed" {
		// Unrelated events are acknowledged and dropped.
		respondJSON(c, http.StatusOK, gin.H{"status": "ignored"})
		return
	}

	payment, err := h.paymentService.ConfirmPayment(c.Request.Context(), req.Reference)
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, toPaymentResponse(payment, ""))
}
