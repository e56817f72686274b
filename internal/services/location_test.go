package services

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestCalculateDistance(t *testing.T) {
	tests := []struct {
		name       string
		lat1, lng1 float64
		lat2, lng2 float64
		expected   float64
		tolerance  float64
	}{
		{
			name: "same point",
			lat1: 30.0444, lng1: 31.2357,
			lat2: 30.0444, lng2: 31.2357,
			expected: 0, tolerance: 0.01,
		},
		{
			name: "cairo to alexandria",
			lat1: 30.0444, lng1: 31.2357,
			lat2: 31.2001, lng2: 29.9187,
			expected: 179, tolerance: 5,
		},
		{
			name: "short hop across town",
			lat1: 30.0444, lng1: 31.2357,
			lat2: 30.0561, lng2: 31.2394,
			expected: 1.35, tolerance: 0.2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CalculateDistance(tt.lat1, tt.lng1, tt.lat2, tt.lng2)
			if diff := got - tt.expected; diff < -tt.tolerance || diff > tt.tolerance {
				t.Errorf("CalculateDistance = %v; want %v ± %v", got, tt.expected, tt.tolerance)
			}
		})
	}
}

func TestGeocodeAddress(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("q") == "" {
			w.Write([]byte(`[]`))
			return
		}
		w.Write([]byte(`[{"lat":"30.0444","lon":"31.2357"}]`))
	}))
	defer server.Close()

	svc := &LocationService{baseURL: server.URL, client: server.Client()}

	t.Run("resolves an address", func(t *testing.T) {
		pos := svc.GeocodeAddress("Tahrir Square, Cairo")
		if pos == nil {
			t.Fatal("expected a position")
		}
		if pos.Lat != 30.0444 || pos.Lng != 31.2357 {
			t.Errorf("position = %+v; want 30.0444, 31.2357", pos)
		}
	})

	t.Run("blank address is nil without a request", func(t *testing.T) {
		if pos := svc.GeocodeAddress("   "); pos != nil {
			t.Errorf("position = %+v; want nil", pos)
		}
	})
}

func TestGeocodeAddressNoResults(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[]`))
	}))
	defer server.Close()

	svc := &LocationService{baseURL: server.URL, client: server.Client()}

	if pos := svc.GeocodeAddress("nowhere at all"); pos != nil {
		t.Errorf("position = %+v; want nil for an unresolvable address", pos)
	}
}
