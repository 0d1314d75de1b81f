package weather

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"battery-buddy/internal/store"
)

func weatherConfig() *store.Config {
	cfg := &store.Config{}
	cfg.Weather.Enabled = true
	cfg.Weather.Latitude = 48.1374
	cfg.Weather.Longitude = 11.5755
	cfg.Weather.Timezone = "Europe/Berlin"
	return cfg
}

func TestSunHoursTomorrow(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/forecast" {
			t.Errorf("Unexpected path %s", r.URL.Path)
		}
		q := r.URL.Query()
		if q.Get("latitude") != "48.1374" || q.Get("longitude") != "11.5755" {
			t.Errorf("Unexpected coordinates: %v", q)
		}
		if q.Get("daily") != "sunshine_duration,daylight_duration" {
			t.Errorf("Unexpected daily parameter: %s", q.Get("daily"))
		}
		// Today, tomorrow, day after, in seconds.
		fmt.Fprint(w, `{"daily":{"sunshine_duration":[36000,28800,18000]}}`)
	}))
	defer srv.Close()

	o := New(weatherConfig(), WithBaseURL(srv.URL))
	hours, err := o.SunHoursTomorrow(context.Background())
	if err != nil {
		t.Fatalf("SunHoursTomorrow failed: %v", err)
	}
	if hours != 8 {
		t.Errorf("Expected tomorrow's 8 sun hours, got %v", hours)
	}
}

func TestSunHoursTomorrowShortForecast(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"daily":{"sunshine_duration":[36000]}}`)
	}))
	defer srv.Close()

	o := New(weatherConfig(), WithBaseURL(srv.URL))
	if _, err := o.SunHoursTomorrow(context.Background()); err == nil {
		t.Error("Expected error for a forecast without a tomorrow entry")
	}
}

func TestSunHoursTomorrowServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "unavailable", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	o := New(weatherConfig(), WithBaseURL(srv.URL))
	if _, err := o.SunHoursTomorrow(context.Background()); err == nil {
		t.Error("Expected error for HTTP 503")
	}
}
