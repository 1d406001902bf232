package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pkgerrors "github.com/angelmondragon/omnicart-backend/pkg/errors"
)

func TestAuthRateLimit(t *testing.T) {
	tests := []struct {
		name       string
		ipLimit    int
		emailLimit int
		requests   []string // remote addr per attempt
		email      string
		wantLast   int
	}{
		{name: "under limit", ipLimit: 2, emailLimit: 2, requests: []string{"1.2.3.4:1", "1.2.3.4:1"}, email: "tester@example.com", wantLast: http.StatusOK},
		{name: "email over limit across ips", emailLimit: 2, requests: []string{"1.1.1.1:1", "2.2.2.2:1", "3.3.3.3:1"}, email: "blocked@example.com", wantLast: http.StatusTooManyRequests},
		{name: "ip over limit", ipLimit: 1, requests: []string{"5.6.7.8:1", "5.6.7.8:2"}, email: "foo@example.com", wantLast: http.StatusTooManyRequests},
		{name: "different ips pass", ipLimit: 1, requests: []string{"5.6.7.8:1", "9.9.9.9:1"}, email: "foo@example.com", wantLast: http.StatusOK},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			policy := NewAuthRateLimitPolicy("login", time.Minute, tc.ipLimit, tc.emailLimit)
			handler := AuthRateLimit(policy, newFakeRateStore(), nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				body, err := io.ReadAll(r.Body)
				require.NoError(t, err)
				assert.Contains(t, string(body), tc.email, "downstream must still see the body")
				w.WriteHeader(http.StatusOK)
			}))

			var rec *httptest.ResponseRecorder
			for _, addr := range tc.requests {
				req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", strings.NewReader(`{"email":"`+tc.email+`","password":"secret"}`))
				req.RemoteAddr = addr
				rec = httptest.NewRecorder()
				handler.ServeHTTP(rec, req)
			}
			require.Equal(t, tc.wantLast, rec.Code)

			if tc.wantLast == http.StatusTooManyRequests {
				var payload struct {
					Error struct {
						Code string `json:"code"`
					} `json:"error"`
				}
				require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload))
				assert.Equal(t, string(pkgerrors.CodeRateLimit), payload.Error.Code)
			}
		})
	}
}

func TestAuthRateLimitEmailIsCaseInsensitive(t *testing.T) {
	store := newFakeRateStore()
	handler := AuthRateLimit(NewAuthRateLimitPolicy("login", time.Minute, 0, 1), store, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	for _, email := range []string{"Shopper@Example.com", " shopper@example.com"} {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", strings.NewReader(`{"email":"`+email+`"}`))
		handler.ServeHTTP(httptest.NewRecorder(), req)
	}
	assert.Len(t, store.counts, 1)
}

func TestAuthRateLimitDisabledWithoutStore(t *testing.T) {
	calls := 0
	handler := AuthRateLimit(NewAuthRateLimitPolicy("login", time.Minute, 1, 1), nil, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
	}))
	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", strings.NewReader(`{"email":"a@b.co"}`))
		handler.ServeHTTP(httptest.NewRecorder(), req)
	}
	assert.Equal(t, 3, calls)
}

func TestAuthRateLimitStoreFailureIsDependencyError(t *testing.T) {
	store := newFakeRateStore()
	store.err = errors.New("redis down")
	handler := AuthRateLimit(NewAuthRateLimitPolicy("register", time.Minute, 1, 0), store, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler must not run when the limiter fails")
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/auth/register", strings.NewReader(`{}`)))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestClientIPPrefersForwardedHeader(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "10.0.0.1:443"
	assert.Equal(t, "10.0.0.1", clientIP(req))

	req.Header.Set("X-Real-IP", "7.7.7.7")
	assert.Equal(t, "7.7.7.7", clientIP(req))

	req.Header.Set("X-Forwarded-For", " 8.8.8.8 , 10.0.0.2")
	assert.Equal(t, "8.8.8.8", clientIP(req))
}

type fakeRateStore struct {
	mu     sync.Mutex
	counts map[string]int64
	err    error
}

func newFakeRateStore() *fakeRateStore {
	return &fakeRateStore{counts: map[string]int64{}}
}

func (f *fakeRateStore) FixedWindowAllow(_ context.Context, scope string, limit int64, _ time.Duration) (bool, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return false, 0, f.err
	}
	f.counts[scope]++
	return f.counts[scope] <= limit, f.counts[scope], nil
}
