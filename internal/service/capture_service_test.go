package service

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestCaptureReturnsScreenshot(t *testing.T) {
	png := []byte("\x89PNG\r\n\x1a\nfake")
	var gotReq struct {
		URL    string `json:"url"`
		Width  int    `json:"width"`
		Height int    `json:"height"`
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/screenshot" {
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(&gotReq); err != nil {
			t.Errorf("decode request: %v", err)
		}
		w.Header().Set("Content-Type", "image/png")
		_, _ = w.Write(png)
	}))
	defer srv.Close()

	svc := NewCaptureService(srv.URL, 5*time.Second)
	got, err := svc.Capture(context.Background(), "https://example.com")
	if err != nil {
		t.Fatalf("Capture: %v", err)
	}
	if string(got) != string(png) {
		t.Fatal("screenshot bytes do not round-trip")
	}
	if gotReq.URL != "https://example.com" || gotReq.Width != captureWidth || gotReq.Height != captureHeight {
		t.Fatalf("unexpected capture request: %+v", gotReq)
	}
}

func TestCaptureClientErrorIsUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "could not load page", http.StatusUnprocessableEntity)
	}))
	defer srv.Close()

	svc := NewCaptureService(srv.URL, 5*time.Second)
	if _, err := svc.Capture(context.Background(), "https://down.example.com"); !errors.Is(err, ErrTargetUnreachable) {
		t.Fatalf("err = %v, want ErrTargetUnreachable", err)
	}
}

func TestCaptureServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	svc := NewCaptureService(srv.URL, 5*time.Second)
	_, err := svc.Capture(context.Background(), "https://example.com")
	if err == nil || errors.Is(err, ErrTargetUnreachable) {
		t.Fatalf("err = %v, want a non-unreachable failure", err)
	}
}

func TestCaptureEmptyBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	svc := NewCaptureService(srv.URL, 5*time.Second)
	if _, err := svc.Capture(context.Background(), "https://example.com"); err == nil {
		t.Fatal("expected error for empty screenshot")
	}
}
