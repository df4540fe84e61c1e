package wearable

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

// writeJSON answers with a JSON body. The content type matters: the client
// only decodes responses declared as JSON.
func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}

// newTestServer serves a token endpoint plus the given extra routes.
func newTestServer(t *testing.T, tokenCalls *atomic.Int32, routes map[string]http.HandlerFunc) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/auth/token", func(w http.ResponseWriter, r *http.Request) {
		tokenCalls.Add(1)
		var body map[string]string
		json.NewDecoder(r.Body).Decode(&body)
		if body["grant_type"] != "client_credentials" {
			t.Errorf("unexpected grant_type %q", body["grant_type"])
		}
		writeJSON(w, map[string]interface{}{
			"access_token": "tok-1",
			"expires_in":   3600,
		})
	})
	for pattern, h := range routes {
		mux.HandleFunc(pattern, h)
	}
	return httptest.NewServer(mux)
}

func TestClient_CreateUser(t *testing.T) {
	var tokenCalls atomic.Int32
	srv := newTestServer(t, &tokenCalls, map[string]http.HandlerFunc{
		"/users": func(w http.ResponseWriter, r *http.Request) {
			if got := r.Header.Get("Authorization"); got != "Bearer tok-1" {
				t.Errorf("unexpected auth header %q", got)
			}
			var body map[string]string
			json.NewDecoder(r.Body).Decode(&body)
			if body["external_id"] != "patient-1" || body["email"] != "p@example.com" {
				t.Errorf("unexpected body %v", body)
			}
			writeJSON(w, map[string]string{
				"id":              "wu-42",
				"connection_code": "CONNECT-99",
			})
		},
	})
	defer srv.Close()

	c := NewClient(srv.URL, "cid", "secret", zerolog.Nop())
	user, err := c.CreateUser(context.Background(), "patient-1", "p@example.com")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if user.UserID != "wu-42" || user.ConnectionCode != "CONNECT-99" {
		t.Errorf("unexpected user %+v", user)
	}
}

func TestClient_TokenCachedAcrossCalls(t *testing.T) {
	var tokenCalls atomic.Int32
	srv := newTestServer(t, &tokenCalls, map[string]http.HandlerFunc{
		"/users/wu-1/sync": func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
		},
	})
	defer srv.Close()

	c := NewClient(srv.URL, "cid", "secret", zerolog.Nop())
	for i := 0; i < 3; i++ {
		if err := c.RequestSync(context.Background(), "wu-1"); err != nil {
			t.Fatalf("sync %d: %v", i, err)
		}
	}
	if got := tokenCalls.Load(); got != 1 {
		t.Errorf("expected a single token request, got %d", got)
	}
}

func TestClient_TokenRefreshedAfterExpiry(t *testing.T) {
	var tokenCalls atomic.Int32
	srv := newTestServer(t, &tokenCalls, map[string]http.HandlerFunc{
		"/users/wu-1/sync": func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
		},
	})
	defer srv.Close()

	c := NewClient(srv.URL, "cid", "secret", zerolog.Nop())
	if err := c.RequestSync(context.Background(), "wu-1"); err != nil {
		t.Fatalf("first sync: %v", err)
	}

	// Force expiry; the next call must fetch a fresh token.
	c.mu.Lock()
	c.tokenExpiry = time.Now().Add(-time.Second)
	c.mu.Unlock()

	if err := c.RequestSync(context.Background(), "wu-1"); err != nil {
		t.Fatalf("second sync: %v", err)
	}
	if got := tokenCalls.Load(); got != 2 {
		t.Errorf("expected 2 token requests, got %d", got)
	}
}

func TestClient_AuthFailure(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/auth/token", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	c := NewClient(srv.URL, "cid", "bad-secret", zerolog.Nop())
	_, err := c.CreateUser(context.Background(), "p", "p@example.com")
	if !errors.Is(err, ErrAuthFailed) {
		t.Fatalf("expected ErrAuthFailed, got %v", err)
	}
}

func TestClient_RequestFailure(t *testing.T) {
	var tokenCalls atomic.Int32
	srv := newTestServer(t, &tokenCalls, map[string]http.HandlerFunc{
		"/users/wu-1/connection-code": func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		},
	})
	defer srv.Close()

	c := NewClient(srv.URL, "cid", "secret", zerolog.Nop())
	_, err := c.GetConnectionCode(context.Background(), "wu-1")
	if !errors.Is(err, ErrRequestFailed) {
		t.Fatalf("expected ErrRequestFailed, got %v", err)
	}
}

func TestClient_GetLatestReading(t *testing.T) {
	var tokenCalls atomic.Int32
	ts := time.Date(2026, 3, 1, 8, 30, 0, 0, time.UTC)
	srv := newTestServer(t, &tokenCalls, map[string]http.HandlerFunc{
		"/users/wu-1/data/blood_pressure": func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, map[string]interface{}{
				"readings": []map[string]interface{}{
					{"systolic": 152, "diastolic": 98, "heart_rate": 80, "timestamp": ts.Format(time.RFC3339)},
					{"systolic": 120, "diastolic": 80, "heart_rate": 65, "timestamp": ts.Add(-time.Hour).Format(time.RFC3339)},
				},
			})
		},
		"/users/wu-2/data/blood_pressure": func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, map[string]interface{}{"readings": []interface{}{}})
		},
	})
	defer srv.Close()

	c := NewClient(srv.URL, "cid", "secret", zerolog.Nop())

	reading, err := c.GetLatestReading(context.Background(), "wu-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if reading == nil || reading.Systolic != 152 || reading.Diastolic != 98 {
		t.Errorf("unexpected reading %+v", reading)
	}

	none, err := c.GetLatestReading(context.Background(), "wu-2")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if none != nil {
		t.Errorf("expected nil reading for empty history, got %+v", none)
	}
}
