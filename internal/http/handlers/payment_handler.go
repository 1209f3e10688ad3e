// README: Payment initiation and Stripe webhook handlers.
package handlers

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"tourbook/internal/http/middleware"
	"tourbook/internal/logging"
	"tourbook/internal/modules/payment"
)

// maxWebhookBody matches Stripe's documented payload ceiling.
const maxWebhookBody = 65536

type PaymentHandler struct {
	payments *payment.Service
}

func NewPaymentHandler(svc *payment.Service) *PaymentHandler {
	return &PaymentHandler{payments: svc}
}

func (h *PaymentHandler) Initiate(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	intent, err := h.payments.Initiate(c.Request.Context(), id)
	if err != nil {
		writePaymentError(c, err)
		return
	}
	writeJSON(c, http.StatusCreated, intent)
}

// Webhook acknowledges events for intents it does not know so that the
// gateway stops retrying them.
func (h *PaymentHandler) Webhook(c *gin.Context) {
	payload, err := io.ReadAll(io.LimitReader(c.Request.Body, maxWebhookBody))
	if err != nil {
		writeError(c, http.StatusServiceUnavailable, "read_failed", "could not read body")
		return
	}
	err = h.payments.HandleWebhook(c.Request.Context(), payload, c.GetHeader("Stripe-Signature"))
	switch {
	case err == nil:
	case errors.Is(err, payment.ErrUnknownIntent):
		logging.Event(middleware.GetRequestID(c), "payment", "webhook_unknown_intent", err.Error())
	default:
		writePaymentError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, gin.H{"received": true})
}
