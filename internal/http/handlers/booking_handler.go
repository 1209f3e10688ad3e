// README: Operator booking handlers (list, counts, lifecycle transitions, assignment, payment status).
package handlers

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"tourbook/internal/modules/booking"
	"tourbook/internal/types"
)

const operatorDeleteReason = "cancelled by operator"

type BookingHandler struct {
	bookings *booking.Service
}

func NewBookingHandler(svc *booking.Service) *BookingHandler {
	return &BookingHandler{bookings: svc}
}

type bookingView struct {
	*booking.Booking
	StatusLabel        string           `json:"status_label"`
	PaymentStatusLabel string           `json:"payment_status_label"`
	ServiceLabel       string           `json:"service_label"`
	Total              string           `json:"total"`
	NextTransitions    []booking.Status `json:"next_transitions"`
}

func newBookingView(b *booking.Booking) bookingView {
	return bookingView{
		Booking:            b,
		StatusLabel:        b.Status.Label(),
		PaymentStatusLabel: b.PaymentStatus.Label(),
		ServiceLabel:       b.ServiceType.Label(),
		Total:              b.TotalPrice.String(),
		NextTransitions:    booking.NextTransitions(b.Status),
	}
}

type listResp struct {
	Items []bookingView `json:"items"`
	Total int           `json:"total"`
	Page  int           `json:"page"`
	Limit int           `json:"limit"`
}

// List supports ?status=&payment_status=&type=&search=&from=&to=&page=&limit=.
func (h *BookingHandler) List(c *gin.Context) {
	f, ok := parseFilter(c)
	if !ok {
		return
	}
	items, total, err := h.bookings.List(c.Request.Context(), f)
	if err != nil {
		writeBookingError(c, err)
		return
	}
	out := make([]bookingView, 0, len(items))
	for _, b := range items {
		out = append(out, newBookingView(b))
	}
	f = f.Normalized()
	writeJSON(c, http.StatusOK, listResp{Items: out, Total: total, Page: f.Page, Limit: f.Limit})
}

func parseFilter(c *gin.Context) (booking.Filter, bool) {
	var f booking.Filter
	if v := c.Query("status"); v != "" {
		if !booking.Status(v).Valid() {
			writeError(c, http.StatusBadRequest, "bad_request", "invalid status filter")
			return f, false
		}
		f.Status = booking.Status(v)
	}
	if v := c.Query("payment_status"); v != "" {
		if !booking.PaymentStatus(v).Valid() {
			writeError(c, http.StatusBadRequest, "bad_request", "invalid payment status filter")
			return f, false
		}
		f.PaymentStatus = booking.PaymentStatus(v)
	}
	if v := c.Query("type"); v != "" {
		st, err := types.ParseServiceType(v)
		if err != nil {
			writeError(c, http.StatusBadRequest, "bad_request", "invalid service type filter")
			return f, false
		}
		f.ServiceType = st
	}
	f.Search = strings.TrimSpace(c.Query("search"))
	for key, dst := range map[string]**time.Time{"from": &f.DateFrom, "to": &f.DateTo} {
		v := c.Query(key)
		if v == "" {
			continue
		}
		d, err := time.Parse(time.DateOnly, v)
		if err != nil {
			writeError(c, http.StatusBadRequest, "bad_request", "dates must be YYYY-MM-DD")
			return f, false
		}
		*dst = &d
	}
	f.Page, _ = strconv.Atoi(c.Query("page"))
	f.Limit, _ = strconv.Atoi(c.Query("limit"))
	return f, true
}

func (h *BookingHandler) Counts(c *gin.Context) {
	counts, err := h.bookings.Counts(c.Request.Context())
	if err != nil {
		writeBookingError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, counts)
}

func (h *BookingHandler) Get(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	b, err := h.bookings.Get(c.Request.Context(), id)
	if err != nil {
		writeBookingError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, newBookingView(b))
}

type transitionReq struct {
	Status string `json:"status" binding:"required,bookingstatus"`
	Reason string `json:"reason" binding:"max=500"`
}

func (h *BookingHandler) Transition(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req transitionReq
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "bad_request", err.Error())
		return
	}
	b, err := h.bookings.Transition(c.Request.Context(), booking.TransitionCommand{
		BookingID: id,
		To:        booking.Status(req.Status),
		ActorType: booking.ActorOperator,
		ActorID:   callerID(c),
		Reason:    req.Reason,
	})
	h.respond(c, b, err)
}

func (h *BookingHandler) Confirm(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	b, err := h.bookings.Confirm(c.Request.Context(), id, callerID(c))
	h.respond(c, b, err)
}

func (h *BookingHandler) Start(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	b, err := h.bookings.Start(c.Request.Context(), id, callerID(c))
	h.respond(c, b, err)
}

func (h *BookingHandler) Complete(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	b, err := h.bookings.Complete(c.Request.Context(), id, callerID(c))
	h.respond(c, b, err)
}

type cancelReq struct {
	Reason string `json:"reason" binding:"max=500"`
}

// Cancel accepts an optional JSON body with a reason.
func (h *BookingHandler) Cancel(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req cancelReq
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			writeError(c, http.StatusBadRequest, "bad_request", err.Error())
			return
		}
	}
	b, err := h.bookings.Cancel(c.Request.Context(), id, booking.ActorOperator, callerID(c), req.Reason)
	h.respond(c, b, err)
}

// Delete never removes rows; it cancels the booking.
func (h *BookingHandler) Delete(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	b, err := h.bookings.Cancel(c.Request.Context(), id, booking.ActorOperator, callerID(c), operatorDeleteReason)
	h.respond(c, b, err)
}

type assignReq struct {
	DriverID  string `json:"driver_id" binding:"omitempty,max=64"`
	VehicleID string `json:"vehicle_id" binding:"omitempty,max=64"`
}

func (h *BookingHandler) Assign(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req assignReq
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "bad_request", err.Error())
		return
	}
	cmd := booking.AssignCommand{BookingID: id}
	for _, ref := range []struct {
		raw string
		dst **types.ID
	}{{req.DriverID, &cmd.DriverID}, {req.VehicleID, &cmd.VehicleID}} {
		if ref.raw == "" {
			continue
		}
		if !isValidID(ref.raw) {
			writeError(c, http.StatusBadRequest, "bad_request", "invalid driver or vehicle id")
			return
		}
		*ref.dst = types.IDPtr(ref.raw)
	}
	b, err := h.bookings.Assign(c.Request.Context(), cmd)
	h.respond(c, b, err)
}

type paymentStatusReq struct {
	PaymentStatus string `json:"payment_status" binding:"required,paymentstatus"`
}

// SetPaymentStatus records a manual payment outcome. Booking status is untouched.
func (h *BookingHandler) SetPaymentStatus(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req paymentStatusReq
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "bad_request", err.Error())
		return
	}
	if err := h.bookings.SetPaymentStatus(c.Request.Context(), id, booking.PaymentStatus(req.PaymentStatus)); err != nil {
		writeBookingError(c, err)
		return
	}
	b, err := h.bookings.Get(c.Request.Context(), id)
	h.respond(c, b, err)
}

func (h *BookingHandler) respond(c *gin.Context, b *booking.Booking, err error) {
	if err != nil {
		writeBookingError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, newBookingView(b))
}
