package datafetcher

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/lendscope/cre/internal/types"
)

func TestNewOracleFreshnessClient(t *testing.T) {
	if _, err := NewOracleFreshnessClient("", time.Second); err == nil {
		t.Errorf("empty endpoint should be rejected")
	}
	if _, err := NewOracleFreshnessClient("http://localhost:9999", 0); err != nil {
		t.Errorf("zero timeout should fall back to the default, got error: %v", err)
	}
}

func TestGetFreshness(t *testing.T) {
	const oracle = "0x1111111111111111111111111111111111111111"

	t.Run("resolved age", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path != "/oracles/"+oracle+"/freshness" {
				t.Errorf("unexpected path: %s", r.URL.Path)
			}
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`{"ageSeconds": 3600}`))
		}))
		defer server.Close()

		client, err := NewOracleFreshnessClient(server.URL, time.Second)
		if err != nil {
			t.Fatalf("NewOracleFreshnessClient: %v", err)
		}
		got, err := client.GetFreshness(context.Background(), oracle)
		if err != nil {
			t.Fatalf("GetFreshness: %v", err)
		}
		if !got.Known || got.AgeSeconds != 3600 {
			t.Errorf("freshness = %+v, want known age 3600", got)
		}
	})

	t.Run("null age resolves to unknown", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"ageSeconds": null}`))
		}))
		defer server.Close()

		client, _ := NewOracleFreshnessClient(server.URL, time.Second)
		got, err := client.GetFreshness(context.Background(), oracle)
		if err != nil {
			t.Fatalf("GetFreshness: %v", err)
		}
		if got.Known {
			t.Errorf("null age should resolve to Known=false, got %+v", got)
		}
	})

	t.Run("untracked oracle is not an error", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
		}))
		defer server.Close()

		client, _ := NewOracleFreshnessClient(server.URL, time.Second)
		got, err := client.GetFreshness(context.Background(), oracle)
		if err != nil {
			t.Fatalf("GetFreshness: %v", err)
		}
		if got.Known {
			t.Errorf("untracked oracle should resolve to Known=false")
		}
	})

	t.Run("server error is reported", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		}))
		defer server.Close()

		client, _ := NewOracleFreshnessClient(server.URL, time.Second)
		if _, err := client.GetFreshness(context.Background(), oracle); err == nil {
			t.Errorf("expected an error for a 500 response")
		}
	})

	t.Run("zero address skips the lookup", func(t *testing.T) {
		client, _ := NewOracleFreshnessClient("http://localhost:1", time.Second)
		got, err := client.GetFreshness(context.Background(), types.ZeroAddress)
		if err != nil {
			t.Fatalf("GetFreshness: %v", err)
		}
		if got.Known {
			t.Errorf("zero address should resolve to Known=false without a request")
		}
	})
}
