package zyte

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"go.uber.org/zap"

	"github.com/bizvet/bizvet/internal/domain"
	"github.com/bizvet/bizvet/internal/metrics"
)

func TestMain(m *testing.M) {
	metrics.RegisterPipelineMetrics()
	os.Exit(m.Run())
}

func newTestClient(endpoint string) *Client {
	return NewClient(&Config{
		APIKey:     "test-key",
		Endpoint:   endpoint,
		RatePerSec: 1000,
		Logger:     zap.NewNop(),
	})
}

func TestClient_Post_RelaysEnvelope(t *testing.T) {
	relayed := []byte(`{"records":[]}`)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("unexpected method: %s", r.Method)
		}
		user, _, ok := r.BasicAuth()
		if !ok || user != "test-key" {
			t.Errorf("unexpected basic auth user: %q", user)
		}

		var env extractRequest
		if err := json.NewDecoder(r.Body).Decode(&env); err != nil {
			t.Fatalf("decode envelope: %v", err)
		}
		if env.URL != "https://registry.example/search" {
			t.Errorf("unexpected target url: %s", env.URL)
		}
		if !env.HTTPResponseBody {
			t.Error("expected httpResponseBody=true")
		}
		if env.HTTPRequestMethod != http.MethodPost {
			t.Errorf("unexpected relayed method: %s", env.HTTPRequestMethod)
		}
		if env.HTTPRequestText != `{"corpName":"Acme"}` {
			t.Errorf("unexpected relayed body: %s", env.HTTPRequestText)
		}
		if len(env.CustomHTTPRequestHeaders) != 2 ||
			env.CustomHTTPRequestHeaders[0].Name != "Content-Type" ||
			env.CustomHTTPRequestHeaders[1].Value != "Mozilla/5.0" {
			t.Errorf("unexpected relayed headers: %+v", env.CustomHTTPRequestHeaders)
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(extractResponse{
			HTTPResponseBody: base64.StdEncoding.EncodeToString(relayed),
		})
	}))
	defer server.Close()

	c := newTestClient(server.URL)
	defer c.Close()

	got, err := c.Post(context.Background(), "https://registry.example/search", []byte(`{"corpName":"Acme"}`))
	if err != nil {
		t.Fatalf("Post failed: %v", err)
	}
	if string(got) != string(relayed) {
		t.Errorf("unexpected body: %s", got)
	}
}

func TestClient_Get_OmitsRequestFields(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var env extractRequest
		if err := json.NewDecoder(r.Body).Decode(&env); err != nil {
			t.Fatalf("decode envelope: %v", err)
		}
		if env.HTTPRequestMethod != "" {
			t.Errorf("expected no relayed method for GET, got %s", env.HTTPRequestMethod)
		}
		if env.HTTPRequestText != "" {
			t.Errorf("expected no relayed body for GET, got %s", env.HTTPRequestText)
		}
		if len(env.CustomHTTPRequestHeaders) != 1 || env.CustomHTTPRequestHeaders[0].Name != "User-Agent" {
			t.Errorf("unexpected relayed headers: %+v", env.CustomHTTPRequestHeaders)
		}

		json.NewEncoder(w).Encode(extractResponse{
			HTTPResponseBody: base64.StdEncoding.EncodeToString([]byte("detail")),
		})
	}))
	defer server.Close()

	c := newTestClient(server.URL)
	defer c.Close()

	got, err := c.Get(context.Background(), "https://registry.example/info/42")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if string(got) != "detail" {
		t.Errorf("unexpected body: %s", got)
	}
}

func TestClient_ErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	c := newTestClient(server.URL)
	defer c.Close()

	_, err := c.Get(context.Background(), "https://registry.example/info/42")
	if err == nil {
		t.Fatal("expected error for 502 response")
	}
	if !errors.Is(err, domain.ErrRequestFailed) {
		t.Errorf("expected ErrRequestFailed, got %v", err)
	}
}

func TestClient_BadBase64(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(extractResponse{HTTPResponseBody: "%%%not-base64%%%"})
	}))
	defer server.Close()

	c := newTestClient(server.URL)
	defer c.Close()

	_, err := c.Get(context.Background(), "https://registry.example/info/42")
	if err == nil {
		t.Fatal("expected error for invalid base64 body")
	}
	if !errors.Is(err, domain.ErrRequestFailed) {
		t.Errorf("expected ErrRequestFailed, got %v", err)
	}
}

func TestClient_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	c := newTestClient("http://unused")
	defer c.Close()

	if _, err := c.Get(ctx, "https://registry.example/info/42"); err == nil {
		t.Fatal("expected error for cancelled context")
	}
}
