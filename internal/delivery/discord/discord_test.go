package discord

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestSendPostsJSONContent(t *testing.T) {
	var gotContentType string
	var gotBody []byte
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotContentType = r.Header.Get("Content-Type")
		gotBody, _ = io.ReadAll(r.Body)
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	s := New(srv.URL, 5*time.Second)
	if err := s.Send(context.Background(), "hello webhook"); err != nil {
		t.Fatalf("Send failed: %v", err)
	}

	if gotContentType != "application/json" {
		t.Errorf("Expected JSON content type, got %q", gotContentType)
	}
	var payload map[string]string
	if err := json.Unmarshal(gotBody, &payload); err != nil {
		t.Fatalf("Body is not JSON: %v", err)
	}
	if payload["content"] != "hello webhook" {
		t.Errorf("Expected content field, got %v", payload)
	}
}

func TestSendFailsOnHTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "rate limited", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	s := New(srv.URL, 5*time.Second)
	err := s.Send(context.Background(), "hello")
	if err == nil {
		t.Fatal("Expected error for non-2xx response")
	}
	if !strings.Contains(err.Error(), "429") {
		t.Errorf("Expected status code in error, got %v", err)
	}
}

func TestSendImageUploadsMultipart(t *testing.T) {
	png := []byte{0x89, 0x50, 0x4e, 0x47}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Errorf("Expected multipart form: %v", err)
			return
		}

		var payload map[string]string
		if err := json.Unmarshal([]byte(r.FormValue("payload_json")), &payload); err != nil {
			t.Errorf("payload_json is not JSON: %v", err)
		} else if payload["content"] != "today's chart" {
			t.Errorf("Expected caption in payload_json, got %v", payload)
		}

		f, hdr, err := r.FormFile("file")
		if err != nil {
			t.Errorf("Expected file part: %v", err)
			return
		}
		defer f.Close()
		if hdr.Filename != "chart.png" {
			t.Errorf("Expected filename chart.png, got %q", hdr.Filename)
		}
		body, _ := io.ReadAll(f)
		if string(body) != string(png) {
			t.Errorf("File bytes mismatch: %v", body)
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	s := New(srv.URL, 5*time.Second)
	if err := s.SendImage(context.Background(), "today's chart", png); err != nil {
		t.Fatalf("SendImage failed: %v", err)
	}
}

func TestSendImageWithoutCaption(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Errorf("Expected multipart form: %v", err)
			return
		}
		if v := r.FormValue("payload_json"); v != "" {
			t.Errorf("Expected no payload_json without caption, got %q", v)
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	s := New(srv.URL, 5*time.Second)
	if err := s.SendImage(context.Background(), "", []byte("png")); err != nil {
		t.Fatalf("SendImage failed: %v", err)
	}
}
