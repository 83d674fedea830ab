package common

import (
	"errors"
	"math"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/goccy/go-json"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

func newIdemRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return mr, client
}

func idemRequest(handler http.Handler, session, key string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/checkout", nil)
	req.Header.Set("Idempotency-Key", key)
	req = req.WithContext(WithSessionID(req.Context(), session))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func TestIdemReplaysStoredResponseWithinSession(t *testing.T) {
	_, client := newIdemRedis(t)

	calls := 0
	handler := Idem{R: client, TTL: time.Minute}.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		JSON(w, http.StatusCreated, map[string]any{"call": calls})
	}))

	first := idemRequest(handler, "s1", "abc")
	require.Equal(t, http.StatusCreated, first.Code)
	require.Empty(t, first.Header().Get("Idempotent-Replayed"))

	again := idemRequest(handler, "s1", "abc")
	require.Equal(t, http.StatusCreated, again.Code)
	require.Equal(t, "true", again.Header().Get("Idempotent-Replayed"))
	require.Equal(t, "application/json", again.Header().Get("Content-Type"))
	require.JSONEq(t, first.Body.String(), again.Body.String())

	other := idemRequest(handler, "s2", "abc")
	require.Equal(t, http.StatusCreated, other.Code)
	require.JSONEq(t, `{"call":2}`, other.Body.String())
	require.Equal(t, 2, calls)
}

func TestIdemRejectsConcurrentDuplicate(t *testing.T) {
	mr, client := newIdemRedis(t)
	require.NoError(t, mr.Set(idemKey("s1", "abc"), idemPending))

	handler := Idem{R: client}.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler must not run while the key is pending")
	}))
	rec := idemRequest(handler, "s1", "abc")
	require.Equal(t, http.StatusConflict, rec.Code)
	require.Contains(t, rec.Body.String(), "IDEMPOTENCY_IN_PROGRESS")
}

func TestIdemReleasesKeyOnServerError(t *testing.T) {
	mr, client := newIdemRedis(t)

	calls := 0
	handler := Idem{R: client}.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls == 1 {
			JSONError(w, http.StatusInternalServerError, "INTERNAL", "boom", nil)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))

	require.Equal(t, http.StatusInternalServerError, idemRequest(handler, "s1", "abc").Code)
	require.False(t, mr.Exists(idemKey("s1", "abc")))
	require.Equal(t, http.StatusOK, idemRequest(handler, "s1", "abc").Code)
	require.Equal(t, 2, calls)
}

func TestIdemPassThroughWithoutHeader(t *testing.T) {
	handler := Idem{}.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/", nil))
	require.Equal(t, http.StatusNoContent, rec.Code)
}

func TestValidatorReportsJSONFieldNames(t *testing.T) {
	type payload struct {
		Email string `json:"email" validate:"required,email"`
		Qty   int    `json:"quantity" validate:"min=1"`
	}
	v := NewValidator()
	require.NoError(t, v.Struct(payload{Email: "a@b.co", Qty: 1}))

	err := v.Struct(payload{Email: "nope"})
	var appErr *AppError
	require.True(t, errors.As(err, &appErr))
	require.Equal(t, http.StatusUnprocessableEntity, appErr.HTTPStatus)
	fields := appErr.Details.(map[string]any)["fields"].(map[string]string)
	require.Equal(t, "email", fields["email"])
	require.Equal(t, "min", fields["quantity"])
}

func TestWriteErrorShapes(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteError(rec, NotFound("", "product not found", nil))
	require.Equal(t, http.StatusNotFound, rec.Code)
	var body struct {
		Error ErrorBody `json:"error"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Equal(t, "NOT_FOUND", body.Error.Code)

	rec = httptest.NewRecorder()
	WriteError(rec, errors.New("boom"))
	require.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestAppErrorHelpers(t *testing.T) {
	cause := errors.New("no lines")
	base := Conflict("CART_EMPTY", "cart is empty", cause)
	require.ErrorIs(t, base, cause)
	require.Equal(t, "cart is empty: no lines", base.Error())

	detailed := base.WithDetails(map[string]any{"cartId": "c-1"})
	require.Nil(t, base.Details)

	rec := httptest.NewRecorder()
	WriteError(rec, detailed)
	require.Equal(t, http.StatusConflict, rec.Code)
	require.JSONEq(t, `{"error":{"code":"CART_EMPTY","message":"cart is empty","details":{"cartId":"c-1"}}}`, rec.Body.String())
}

func TestPageBounds(t *testing.T) {
	start, end := PageBounds(5, 2, 2)
	require.Equal(t, 2, start)
	require.Equal(t, 4, end)

	start, end = PageBounds(5, 4, 2)
	require.Equal(t, 5, start)
	require.Equal(t, 5, end)

	start, end = PageBounds(0, 1, 20)
	require.Zero(t, start)
	require.Zero(t, end)

	start, end = PageBounds(6, math.MaxInt, 2)
	require.Equal(t, 6, start)
	require.Equal(t, 6, end)

	start, end = PageBounds(6, 2, math.MaxInt)
	require.Equal(t, 6, start)
	require.Equal(t, 6, end)
}
