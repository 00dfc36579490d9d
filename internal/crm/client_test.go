package crm

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"invoice-extraction-platform/internal/apperr"
	"invoice-extraction-platform/internal/config"
)

func newTestClient(baseURL string) *Client {
	return NewClient(&config.Config{
		CRMBaseAPI:       baseURL,
		CRMSecretKey:     "segreto",
		CRMAllowedOrigin: "https://app.example.com",
		CRMTimeoutSecs:   5,
	})
}

func TestFetchClients(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/clients" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		if got := r.Header.Get("x-crm-secret-key"); got != "segreto" {
			t.Errorf("unexpected secret header %q", got)
		}
		if got := r.Header.Get("origin"); got != "https://app.example.com" {
			t.Errorf("unexpected origin header %q", got)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"data":[{"id":"c-1","name":"Arredamenti Rossi SRL"}]}`))
	}))
	defer srv.Close()

	clients, err := newTestClient(srv.URL).FetchClients(context.Background())
	if err != nil {
		t.Fatalf("fetch error: %v", err)
	}
	if len(clients) != 1 {
		t.Fatalf("expected 1 client, got %d", len(clients))
	}
	if clients[0].ID != "c-1" || clients[0].Name != "Arredamenti Rossi SRL" {
		t.Fatalf("unexpected client %+v", clients[0])
	}
}

func TestFetchClientsNon200(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	_, err := newTestClient(srv.URL).FetchClients(context.Background())
	if err == nil {
		t.Fatal("expected error on non-200 response")
	}
	if !apperr.IsKind(err, apperr.KindProvider) {
		t.Fatalf("expected provider error, got %v", err)
	}
}

func TestFetchClientsMissingData(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	_, err := newTestClient(srv.URL).FetchClients(context.Background())
	if err == nil {
		t.Fatal("expected error when data field is missing")
	}
}

func TestFetchClientsEmptyList(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"data":[]}`))
	}))
	defer srv.Close()

	clients, err := newTestClient(srv.URL).FetchClients(context.Background())
	if err != nil {
		t.Fatalf("an empty directory is valid: %v", err)
	}
	if len(clients) != 0 {
		t.Fatalf("expected empty list, got %d", len(clients))
	}
}
