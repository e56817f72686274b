package services

import (
	"encoding/json"
	"fmt"
	"io"
	"log"
	"math"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"pharmaplus_echo/internal/models"
)

// LocationService resolves street addresses to coordinates using the
// OpenStreetMap Nominatim API.
type LocationService struct {
	baseURL string
	client  *http.Client
}

func NewLocationService() *LocationService {
	base := os.Getenv("NOMINATIM_BASE_URL")
	if base == "" {
		base = "https://nominatim.openstreetmap.org"
	}
	return &LocationService{
		baseURL: base,
		client:  &http.Client{Timeout: 5 * time.Second},
	}
}

type nominatimResult struct {
	Lat string `json:"lat"`
	Lon string `json:"lon"`
}

// GeocodeAddress resolves an address to a position. A lookup miss or upstream
// failure returns nil without error, so callers can save records without
// coordinates.
func (s *LocationService) GeocodeAddress(address string) *models.Position {
	if strings.TrimSpace(address) == "" {
		return nil
	}

	params := url.Values{}
	params.Set("q", address)
	params.Set("format", "json")
	params.Set("limit", "1")

	req, err := http.NewRequest("GET", fmt.Sprintf("%s/search?%s", s.baseURL, params.Encode()), nil)
	if err != nil {
		log.Printf("location: failed to create request: %v", err)
		return nil
	}
	req.Header.Set("User-Agent", "PharmaPlus-App/1.0")

	resp, err := s.client.Do(req)
	if err != nil {
		log.Printf("location: geocode request failed for %q: %v", address, err)
		return nil
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		body, _ := io.ReadAll(resp.Body)
		log.Printf("location: geocode failed with status %d: %s", resp.StatusCode, string(body))
		return nil
	}

	var results []nominatimResult
	if err := json.NewDecoder(resp.Body).Decode(&results); err != nil {
		log.Printf("location: failed to decode geocode response: %v", err)
		return nil
	}
	if len(results) == 0 {
		log.Printf("location: no position found for address %q", address)
		return nil
	}

	lat, err1 := strconv.ParseFloat(results[0].Lat, 64)
	lng, err2 := strconv.ParseFloat(results[0].Lon, 64)
	if err1 != nil || err2 != nil {
		return nil
	}

	return &models.Position{Lat: lat, Lng: lng}
}

// CalculateDistance returns the great-circle distance between two points in
// kilometers, rounded to two decimals.
func CalculateDistance(lat1, lng1, lat2, lng2 float64) float64 {
	const earthRadiusKm = 6371

	dLat := (lat2 - lat1) * math.Pi / 180
	dLng := (lng2 - lng1) * math.Pi / 180

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1*math.Pi/180)*math.Cos(lat2*math.Pi/180)*
			math.Sin(dLng/2)*math.Sin(dLng/2)

	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
	return math.Round(earthRadiusKm*c*100) / 100
}
