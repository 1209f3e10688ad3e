// README: Base handler utilities (JSON helpers, error mapping).
package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"tourbook/internal/http/middleware"
	"tourbook/internal/logging"
	"tourbook/internal/modules/booking"
	"tourbook/internal/modules/fleet"
	"tourbook/internal/modules/payment"
	"tourbook/internal/modules/wizard"
	"tourbook/internal/types"
)

type errorResponse struct {
	Error  string              `json:"error"`
	Code   string              `json:"code"`
	From   string              `json:"from,omitempty"`
	To     string              `json:"to,omitempty"`
	Fields *wizard.FieldErrors `json:"fields,omitempty"`
	View   *wizard.View        `json:"view,omitempty"`
}

// isValidID accepts uuids and the short slugs used for fleet records.
func isValidID(v string) bool {
	if v == "" || len(v) > 64 {
		return false
	}
	for _, c := range v {
		if (c >= '0' && c <= '9') || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || c == '-' || c == '_' {
			continue
		}
		return false
	}
	return true
}

func pathID(c *gin.Context) (types.ID, bool) {
	id := c.Param("id")
	if !isValidID(id) {
		writeError(c, http.StatusBadRequest, "bad_request", "invalid id")
		return "", false
	}
	return types.ID(id), true
}

func writeJSON(c *gin.Context, status int, v any) {
	c.JSON(status, v)
}

func writeError(c *gin.Context, status int, code, msg string) {
	writeJSON(c, status, errorResponse{Error: msg, Code: code})
}

func writeInternal(c *gin.Context, module string, err error) {
	logging.Event(middleware.GetRequestID(c), module, "error", fmt.Sprintf("path=%s err=%v", c.FullPath(), err))
	writeError(c, http.StatusInternalServerError, "internal", "internal error")
}

func writeBookingError(c *gin.Context, err error) {
	var te *booking.InvalidTransitionError
	switch {
	case errors.As(err, &te):
		writeJSON(c, http.StatusConflict, errorResponse{
			Error: err.Error(),
			Code:  "invalid_transition",
			From:  string(te.From),
			To:    string(te.To),
		})
	case errors.Is(err, booking.ErrConflict):
		writeError(c, http.StatusConflict, "conflict", err.Error())
	case errors.Is(err, booking.ErrResourceBusy):
		writeError(c, http.StatusConflict, "resource_busy", err.Error())
	case errors.Is(err, booking.ErrNotAssignable):
		writeError(c, http.StatusConflict, "not_assignable", err.Error())
	case errors.Is(err, booking.ErrInvalidState):
		writeError(c, http.StatusConflict, "invalid_transition", err.Error())
	case errors.Is(err, booking.ErrNotFound):
		writeError(c, http.StatusNotFound, "not_found", err.Error())
	case errors.Is(err, booking.ErrResourceNotFound):
		writeError(c, http.StatusUnprocessableEntity, "resource_not_found", err.Error())
	case errors.Is(err, booking.ErrBadRequest):
		writeError(c, http.StatusBadRequest, "bad_request", err.Error())
	default:
		writeInternal(c, "booking", err)
	}
}

func writeWizardError(c *gin.Context, view *wizard.View, err error) {
	var ve *wizard.ValidationError
	switch {
	case errors.As(err, &ve):
		fields := ve.Errors
		writeJSON(c, http.StatusUnprocessableEntity, errorResponse{
			Error:  err.Error(),
			Code:   "validation_failed",
			Fields: &fields,
			View:   view,
		})
	case errors.Is(err, wizard.ErrSessionNotFound):
		writeError(c, http.StatusNotFound, "session_not_found", err.Error())
	case errors.Is(err, wizard.ErrSubmitted):
		writeError(c, http.StatusGone, "submitted", err.Error())
	case errors.Is(err, wizard.ErrLastStep), errors.Is(err, wizard.ErrNotReady):
		writeError(c, http.StatusConflict, "wrong_step", err.Error())
	case errors.Is(err, wizard.ErrInvalidServiceType):
		writeError(c, http.StatusBadRequest, "bad_request", err.Error())
	default:
		writeBookingError(c, err)
	}
}

func writePaymentError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, payment.ErrAlreadyPaid):
		writeError(c, http.StatusConflict, "already_paid", err.Error())
	case errors.Is(err, payment.ErrNotPayable):
		writeError(c, http.StatusConflict, "not_payable", err.Error())
	case errors.Is(err, payment.ErrBadSignature):
		writeError(c, http.StatusBadRequest, "bad_signature", "invalid webhook signature")
	default:
		writeBookingError(c, err)
	}
}

func writeFleetError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, fleet.ErrNotFound):
		writeError(c, http.StatusNotFound, "not_found", err.Error())
	default:
		writeInternal(c, "fleet", err)
	}
}

func callerID(c *gin.Context) *types.ID {
	return types.IDPtr(middleware.CallerUID(c))
}
