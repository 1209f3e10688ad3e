// README: Customer booking wizard and stateless fare quote handlers.
package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"tourbook/internal/modules/booking"
	"tourbook/internal/modules/wizard"
)

type WizardHandler struct {
	wizard *wizard.Service
}

func NewWizardHandler(svc *wizard.Service) *WizardHandler {
	return &WizardHandler{wizard: svc}
}

// Start opens a session, seeded from ?type=&pickup=&dropoff=&date=.
func (h *WizardHandler) Start(c *gin.Context) {
	view, err := h.wizard.Start(c.Request.Context(), wizard.PrefillFromQuery(c.Request.URL.Query()))
	if err != nil {
		writeWizardError(c, nil, err)
		return
	}
	writeJSON(c, http.StatusCreated, view)
}

func (h *WizardHandler) Get(c *gin.Context) {
	id, ok := sessionID(c)
	if !ok {
		return
	}
	view, err := h.wizard.View(c.Request.Context(), id)
	if err != nil {
		writeWizardError(c, nil, err)
		return
	}
	writeJSON(c, http.StatusOK, view)
}

func (h *WizardHandler) Edit(c *gin.Context) {
	id, ok := sessionID(c)
	if !ok {
		return
	}
	var req wizard.Edit
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "bad_request", "invalid json")
		return
	}
	view, err := h.wizard.Edit(c.Request.Context(), id, req)
	if err != nil {
		writeWizardError(c, nil, err)
		return
	}
	writeJSON(c, http.StatusOK, view)
}

// Next answers 422 with the field errors and the refreshed view when the
// current step does not pass its gate.
func (h *WizardHandler) Next(c *gin.Context) {
	id, ok := sessionID(c)
	if !ok {
		return
	}
	view, err := h.wizard.Next(c.Request.Context(), id)
	if err != nil {
		writeWizardError(c, viewOrNil(view, err), err)
		return
	}
	writeJSON(c, http.StatusOK, view)
}

func (h *WizardHandler) Back(c *gin.Context) {
	id, ok := sessionID(c)
	if !ok {
		return
	}
	view, err := h.wizard.Back(c.Request.Context(), id)
	if err != nil {
		writeWizardError(c, nil, err)
		return
	}
	writeJSON(c, http.StatusOK, view)
}

type bookingCreatedResp struct {
	ID            string                `json:"id"`
	BookingNumber string                `json:"booking_number"`
	Status        booking.Status        `json:"status"`
	PaymentStatus booking.PaymentStatus `json:"payment_status"`
	Total         string                `json:"total"`
	TotalAmount   int64                 `json:"total_amount"`
	Currency      string                `json:"currency"`
}

func (h *WizardHandler) Submit(c *gin.Context) {
	id, ok := sessionID(c)
	if !ok {
		return
	}
	b, err := h.wizard.Submit(c.Request.Context(), id)
	if err != nil {
		writeWizardError(c, nil, err)
		return
	}
	writeJSON(c, http.StatusCreated, bookingCreatedResp{
		ID:            b.ID.String(),
		BookingNumber: b.BookingNumber,
		Status:        b.Status,
		PaymentStatus: b.PaymentStatus,
		Total:         b.TotalPrice.String(),
		TotalAmount:   b.TotalPrice.Amount,
		Currency:      b.TotalPrice.Currency,
	})
}

type quoteReq struct {
	ServiceType     string `json:"service_type" binding:"required,servicetype"`
	PickupLocation  string `json:"pickup_location" binding:"max=200"`
	DropoffLocation string `json:"dropoff_location" binding:"max=200"`
	Time            string `json:"time" binding:"omitempty,clocktime"`
	Passengers      int    `json:"passengers" binding:"omitempty,min=1,max=50"`
}

// QuoteQuery prices ?type=&pickup=&dropoff=&time=&passengers= without a session.
func (h *WizardHandler) QuoteQuery(c *gin.Context) {
	bd, err := h.wizard.Quote(wizard.EditFromQuery(c.Request.URL.Query()))
	if err != nil {
		writeWizardError(c, nil, err)
		return
	}
	writeJSON(c, http.StatusOK, bd)
}

func (h *WizardHandler) Quote(c *gin.Context) {
	var req quoteReq
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "bad_request", err.Error())
		return
	}
	e := wizard.Edit{
		ServiceType:     &req.ServiceType,
		PickupLocation:  &req.PickupLocation,
		DropoffLocation: &req.DropoffLocation,
	}
	if req.Time != "" {
		e.Time = &req.Time
	}
	if req.Passengers != 0 {
		e.Passengers = &req.Passengers
	}
	bd, err := h.wizard.Quote(e)
	if err != nil {
		writeWizardError(c, nil, err)
		return
	}
	writeJSON(c, http.StatusOK, bd)
}

func sessionID(c *gin.Context) (string, bool) {
	id := c.Param("id")
	if !isValidID(id) {
		writeError(c, http.StatusBadRequest, "bad_request", "invalid session id")
		return "", false
	}
	return id, true
}

func viewOrNil(view wizard.View, err error) *wizard.View {
	var ve *wizard.ValidationError
	if errors.As(err, &ve) {
		return &view
	}
	return nil
}
