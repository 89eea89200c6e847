package trade

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"

	"github.com/Prithwiraj-CK/polybot2/internal/reply"
)

func newTestRouter(f *fixture) *chi.Mux {
	r := chi.NewRouter()
	r.Post("/api/v1/messages", f.svc.HandleMessage)
	r.Post("/api/v1/confirmations/{confirmID}/confirm", f.svc.HandleConfirm)
	r.Post("/api/v1/confirmations/{confirmID}/cancel", f.svc.HandleCancel)
	return r
}

func postJSON(t *testing.T, router http.Handler, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestHandleMessage_Buy(t *testing.T) {
	f := newFixture(t)
	router := newTestRouter(f)

	rec := postJSON(t, router, "/api/v1/messages",
		`{"user_id":"user1","text":"buy $5 of YES on rain-tomorrow"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var rep Reply
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &rep))
	require.NotNil(t, rep.Confirmation)
	require.Equal(t, "5.00", rep.Confirmation.AmountDisplay)
}

func TestHandleMessage_BadBody(t *testing.T) {
	f := newFixture(t)
	router := newTestRouter(f)

	rec := postJSON(t, router, "/api/v1/messages", `{nope`)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec = postJSON(t, router, "/api/v1/messages", `{"text":"no user id"}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleConfirm_RoundTrip(t *testing.T) {
	f := newFixture(t)
	router := newTestRouter(f)
	c := startBuy(t, f)

	rec := postJSON(t, router, "/api/v1/confirmations/"+c.ConfirmID+"/confirm", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp ConfirmResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.True(t, resp.Done)
	require.Contains(t, resp.Text, "executed")

	// The id is consumed; replaying the confirm is answered with 410.
	rec = postJSON(t, router, "/api/v1/confirmations/"+c.ConfirmID+"/confirm", "")
	require.Equal(t, http.StatusGone, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.False(t, resp.Done)
	require.Equal(t, reply.ConfirmationGone, resp.Text)
}

func TestHandleCancel(t *testing.T) {
	f := newFixture(t)
	router := newTestRouter(f)
	c := startBuy(t, f)

	rec := postJSON(t, router, "/api/v1/confirmations/"+c.ConfirmID+"/cancel", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp ConfirmResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.True(t, resp.Done)
	require.Equal(t, reply.Cancelled, resp.Text)

	rec = postJSON(t, router, "/api/v1/confirmations/"+c.ConfirmID+"/cancel", "")
	require.Equal(t, http.StatusGone, rec.Code)
	require.Equal(t, int64(0), f.executor.calls.Load())
}

func TestHandleConfirm_UnknownID(t *testing.T) {
	f := newFixture(t)
	router := newTestRouter(f)

	rec := postJSON(t, router, "/api/v1/confirmations/no-such-id/confirm", "")
	require.Equal(t, http.StatusGone, rec.Code)
}
