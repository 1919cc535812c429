package transport

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"reflect"
	"testing"

	"github.com/goccy/go-json"
)

func TestHTTPSenderGetWithQuery(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			t.Errorf("Expected GET, got %s", r.Method)
		}
		if got := r.URL.Query().Get("color"); got != "red" {
			t.Errorf("Expected color=red, got %q", got)
		}
		if got := r.Header.Get("X-Token"); got != "abc" {
			t.Errorf("Expected X-Token header, got %q", got)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[{"id":1},{"id":2}]`))
	}))
	defer srv.Close()

	s := NewHTTPSender()
	resp, err := s.Send(context.Background(), &Request{
		Method: "get",
		URL:    srv.URL + "/widgets",
		Query:  url.Values{"color": {"red"}},
		Header: map[string]string{"X-Token": "abc"},
	})
	if err != nil {
		t.Fatalf("Send failed: %v", err)
	}
	if !resp.OK || resp.StatusCode != 200 {
		t.Fatalf("Expected 200 OK, got %d ok=%v", resp.StatusCode, resp.OK)
	}
	want := []any{map[string]any{"id": float64(1)}, map[string]any{"id": float64(2)}}
	if !reflect.DeepEqual(resp.Body, want) {
		t.Errorf("Expected %v, got %v", want, resp.Body)
	}
}

func TestHTTPSenderPostBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("Expected JSON content type, got %q", ct)
		}
		var body map[string]any
		data, _ := io.ReadAll(r.Body)
		if err := json.Unmarshal(data, &body); err != nil {
			t.Errorf("Invalid body: %v", err)
		}
		body["id"] = 1
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(body)
	}))
	defer srv.Close()

	resp, err := NewHTTPSender().Send(context.Background(), &Request{
		Method: http.MethodPost,
		URL:    srv.URL + "/widgets",
		Body:   map[string]any{"name": "myWidget"},
	})
	if err != nil {
		t.Fatalf("Send failed: %v", err)
	}
	want := map[string]any{"id": float64(1), "name": "myWidget"}
	if !resp.OK || !reflect.DeepEqual(resp.Body, want) {
		t.Errorf("Expected OK %v, got ok=%v %v", want, resp.OK, resp.Body)
	}
}

func TestHTTPSenderErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusUnprocessableEntity)
	}))
	defer srv.Close()

	resp, err := NewHTTPSender().Send(context.Background(), &Request{Method: "DELETE", URL: srv.URL + "/widgets/1"})
	if err != nil {
		t.Fatalf("Send failed: %v", err)
	}
	if resp.OK {
		t.Error("Expected OK=false for 422")
	}
	if resp.Body != "nope\n" {
		t.Errorf("Expected raw text body, got %#v", resp.Body)
	}
}

func TestHTTPSenderRejectsUnknownMethod(t *testing.T) {
	_, err := NewHTTPSender().Send(context.Background(), &Request{Method: "TRACE", URL: "http://example.invalid"})
	if err == nil {
		t.Fatal("Expected error for TRACE")
	}
}

func TestHTTPSenderDefaultHeaders(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer override" {
			t.Errorf("Expected request header to win, got %q", got)
		}
		if got := r.Header.Get("X-App"); got != "ducks" {
			t.Errorf("Expected sender header, got %q", got)
		}
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	s := NewHTTPSender(WithHeader("Authorization", "Bearer base"), WithHeader("X-App", "ducks"))
	resp, err := s.Send(context.Background(), &Request{
		Method: "GET",
		URL:    srv.URL,
		Header: map[string]string{"Authorization": "Bearer override"},
	})
	if err != nil {
		t.Fatalf("Send failed: %v", err)
	}
	if !resp.OK || resp.Body != nil {
		t.Errorf("Expected empty OK response, got ok=%v body=%v", resp.OK, resp.Body)
	}
}

func TestHTTPSenderContextCancelled(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := NewHTTPSender().Send(ctx, &Request{Method: "GET", URL: srv.URL}); err == nil {
		t.Fatal("Expected error for cancelled context")
	}
}
