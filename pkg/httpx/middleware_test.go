package httpx_test

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/aussiebroadwan/gatekeeper/pkg/httpx"
	"github.com/stretchr/testify/require"
)

func TestChainOrder(t *testing.T) {
	var order []string
	mark := func(name string) httpx.Middleware {
		return func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				order = append(order, name)
				next.ServeHTTP(w, r)
			})
		}
	}

	h := httpx.Chain(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		order = append(order, "handler")
	}), mark("outer"), mark("inner"))

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	require.Equal(t, []string{"outer", "inner", "handler"}, order)
}

func TestRecover(t *testing.T) {
	body := map[string]string{"error": "internal_error"}
	h := httpx.Chain(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}), httpx.Recover(body))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	require.Equal(t, http.StatusInternalServerError, rec.Code)
	require.Contains(t, rec.Body.String(), "internal_error")
	require.NotContains(t, rec.Body.String(), "boom")
}

func TestDecodeJSON(t *testing.T) {
	type payload struct {
		Email string `json:"email"`
	}

	decode := func(body string) (payload, error) {
		var p payload
		req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
		err := httpx.DecodeJSON(httptest.NewRecorder(), req, &p)
		return p, err
	}

	t.Run("valid object", func(t *testing.T) {
		p, err := decode(`{"email":"a@example.com"}`)
		require.NoError(t, err)
		require.Equal(t, "a@example.com", p.Email)
	})

	t.Run("unknown field", func(t *testing.T) {
		_, err := decode(`{"email":"a@example.com","admin":true}`)
		require.Error(t, err)
	})

	t.Run("trailing data", func(t *testing.T) {
		_, err := decode(`{"email":"a@example.com"}{}`)
		require.Error(t, err)
	})

	t.Run("empty body", func(t *testing.T) {
		_, err := decode(``)
		require.ErrorIs(t, err, io.EOF)
	})
}

func TestWriteJSON(t *testing.T) {
	rec := httptest.NewRecorder()
	httpx.WriteJSON(rec, http.StatusCreated, map[string]bool{"success": true})

	require.Equal(t, http.StatusCreated, rec.Code)
	require.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	require.Equal(t, "no-store", rec.Header().Get("Cache-Control"))
	require.JSONEq(t, `{"success":true}`, rec.Body.String())
}
