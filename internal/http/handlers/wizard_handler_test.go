package handlers_test

import (
	"net/http"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tourbook/internal/modules/booking"
)

func TestWizard_FullFlowOverHTTP(t *testing.T) {
	env := newEnv(t, booking.NewMemoryStore())

	q := url.Values{"type": {"airport_transfer"}, "pickup": {"Keflavik Airport"}}
	w := env.do(http.MethodPost, "/api/wizard?"+q.Encode(), nil, false)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	view := decode(t, w)
	id, _ := view["session_id"].(string)
	require.NotEmpty(t, id)
	assert.EqualValues(t, 1, view["step"])
	base := "/api/wizard/" + id

	w = env.do(http.MethodPost, base+"/next", nil, false)
	require.Equal(t, http.StatusOK, w.Code)
	assert.EqualValues(t, 2, decode(t, w)["step"])

	w = env.do(http.MethodPost, base+"/next", nil, false)
	require.Equal(t, http.StatusUnprocessableEntity, w.Code)
	body := decode(t, w)
	assert.Equal(t, "validation_failed", body["code"])
	fields, _ := body["fields"].(map[string]any)
	assert.Equal(t, "Please select a date", fields["date"])
	stuck, _ := body["view"].(map[string]any)
	assert.EqualValues(t, 2, stuck["step"])

	w = env.do(http.MethodPatch, base, map[string]any{"date": "2026-10-20"}, false)
	require.Equal(t, http.StatusOK, w.Code)
	errs, _ := decode(t, w)["errors"].(map[string]any)
	assert.Empty(t, errs["date"])

	w = env.do(http.MethodPost, base+"/next", nil, false)
	require.Equal(t, http.StatusOK, w.Code)

	w = env.do(http.MethodPatch, base, map[string]any{"dropoff_location": "Reykjavik"}, false)
	require.Equal(t, http.StatusOK, w.Code)
	w = env.do(http.MethodPost, base+"/next", nil, false)
	require.Equal(t, http.StatusOK, w.Code)
	view = decode(t, w)
	assert.EqualValues(t, 4, view["step"])
	assert.Equal(t, true, view["is_final"])

	w = env.do(http.MethodPost, base+"/submit", nil, false)
	require.Equal(t, http.StatusUnprocessableEntity, w.Code)

	w = env.do(http.MethodPatch, base, map[string]any{
		"name":  "Jon Jonsson",
		"email": "jon@example.is",
		"phone": "+354 777 0000",
	}, false)
	require.Equal(t, http.StatusOK, w.Code)
	shown := decode(t, w)["breakdown"].(map[string]any)["total"]

	w = env.do(http.MethodPost, base+"/submit", nil, false)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	created := decode(t, w)
	assert.True(t, strings.HasPrefix(created["booking_number"].(string), "ICE-"))
	assert.Equal(t, "pending", created["status"])
	assert.Equal(t, "pending", created["payment_status"])
	assert.Equal(t, shown, created["total_amount"])

	w = env.do(http.MethodGet, base, nil, false)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestWizard_BackNeverValidates(t *testing.T) {
	env := newEnv(t, booking.NewMemoryStore())
	w := env.do(http.MethodPost, "/api/wizard", nil, false)
	require.Equal(t, http.StatusCreated, w.Code)
	base := "/api/wizard/" + decode(t, w)["session_id"].(string)

	w = env.do(http.MethodPost, base+"/back", nil, false)
	require.Equal(t, http.StatusOK, w.Code)
	assert.EqualValues(t, 1, decode(t, w)["step"])

	w = env.do(http.MethodPost, base+"/submit", nil, false)
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestWizard_UnknownSession(t *testing.T) {
	env := newEnv(t, booking.NewMemoryStore())
	w := env.do(http.MethodGet, "/api/wizard/does-not-exist", nil, false)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "session_not_found", decode(t, w)["code"])
}

func TestQuote(t *testing.T) {
	env := newEnv(t, booking.NewMemoryStore())

	w := env.do(http.MethodPost, "/api/fares/quote", map[string]any{"service_type": "helicopter"}, false)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = env.do(http.MethodPost, "/api/fares/quote", map[string]any{
		"service_type":     "city_taxi",
		"pickup_location":  "Harpa",
		"dropoff_location": "Perlan",
		"time":             "25:99",
	}, false)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = env.do(http.MethodPost, "/api/fares/quote", map[string]any{
		"service_type": "private_tour",
		"passengers":   4,
	}, false)
	require.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	assert.Equal(t, "ISK", body["currency"])
	assert.Greater(t, body["total"].(float64), 0.0)

	q := url.Values{"type": {"airport_transfer"}, "pickup": {"Keflavik"}, "dropoff": {"Reykjavik"}}
	w = env.do(http.MethodGet, "/api/fares/quote?"+q.Encode(), nil, false)
	require.Equal(t, http.StatusOK, w.Code)
	body = decode(t, w)
	assert.EqualValues(t, 45, body["distance_km"])

	w = env.do(http.MethodGet, "/api/fares/quote?type=city_taxi&time=23", nil, false)
	require.Equal(t, http.StatusOK, w.Code)
	surcharge, _ := decode(t, w)["time_surcharge"].(map[string]any)
	require.NotNil(t, surcharge)
	assert.Equal(t, "night", surcharge["name"])
}
