package datafetcher

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestGetTargetUtilization(t *testing.T) {
	const irm = "0x2222222222222222222222222222222222222222"

	t.Run("valid target", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path != "/irms/"+irm+"/target" {
				t.Errorf("unexpected path: %s", r.URL.Path)
			}
			w.Write([]byte(`{"targetUtilization": 0.85}`))
		}))
		defer server.Close()

		client, err := NewIrmTargetClient(server.URL, time.Second)
		if err != nil {
			t.Fatalf("NewIrmTargetClient: %v", err)
		}
		got, err := client.GetTargetUtilization(context.Background(), irm)
		if err != nil {
			t.Fatalf("GetTargetUtilization: %v", err)
		}
		if got == nil || *got != 0.85 {
			t.Errorf("target = %v, want 0.85", got)
		}
	})

	t.Run("out of range target yields nil", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"targetUtilization": 1.7}`))
		}))
		defer server.Close()

		client, _ := NewIrmTargetClient(server.URL, time.Second)
		got, err := client.GetTargetUtilization(context.Background(), irm)
		if err != nil {
			t.Fatalf("GetTargetUtilization: %v", err)
		}
		if got != nil {
			t.Errorf("out-of-range target should yield nil, got %v", *got)
		}
	})

	t.Run("untracked IRM yields nil without error", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
		}))
		defer server.Close()

		client, _ := NewIrmTargetClient(server.URL, time.Second)
		got, err := client.GetTargetUtilization(context.Background(), irm)
		if err != nil {
			t.Fatalf("GetTargetUtilization: %v", err)
		}
		if got != nil {
			t.Errorf("untracked IRM should yield nil, got %v", *got)
		}
	})

	t.Run("empty address skips the lookup", func(t *testing.T) {
		client, _ := NewIrmTargetClient("http://localhost:1", time.Second)
		got, err := client.GetTargetUtilization(context.Background(), "")
		if err != nil {
			t.Fatalf("GetTargetUtilization: %v", err)
		}
		if got != nil {
			t.Errorf("empty address should yield nil")
		}
	})
}
