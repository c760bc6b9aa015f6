package capability

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"pookal/internal/config"
)

// orsProfiles maps the user-facing travel mode to an OpenRouteService
// routing profile. ORS has no transit profile, so transit routes fall back
// to walking directions.
var orsProfiles = map[string]string{
	"walking":   "foot-walking",
	"driving":   "driving-car",
	"bicycling": "cycling-regular",
	"transit":   "foot-walking",
}

var safetyNotes = []string{
	"Prefer well-lit main roads over shortcuts.",
	"Share your live location with someone you trust.",
	"Keep your phone charged and reachable.",
}

// RouteService geocodes endpoints via Nominatim and fetches directions from
// OpenRouteService. Geocode results are cached; place names don't move.
type RouteService struct {
	cfg    config.RouteConfig
	client *http.Client
	geo    *gocache.Cache
}

// NewRouteService creates a route service from config.
func NewRouteService(cfg config.RouteConfig) *RouteService {
	return &RouteService{
		cfg:    cfg,
		client: &http.Client{Timeout: 15 * time.Second},
		geo:    gocache.New(24*time.Hour, time.Hour),
	}
}

// Capability returns the maps.safe_route capability backed by this service.
func (s *RouteService) Capability() *Capability {
	return &Capability{
		Name:        "maps.safe_route",
		Description: "Plan a safer route between two places, with distance, duration and a maps link.",
		Sensitive:   false,
		Schema: Schema{
			{Name: "from", Required: true, MinLen: 2, Description: "Starting point, e.g. 'MG Road, Bengaluru'"},
			{Name: "to", Required: true, MinLen: 2, Description: "Where to go, e.g. 'Indiranagar'"},
			{Name: "mode", Default: "walking", Enum: []string{"walking", "driving", "transit", "bicycling"}, Description: "Travel mode"},
			{Name: "time", Description: "Departure time context, e.g. 'now' or '10pm'"},
		},
		Run: s.run,
	}
}

// geoPoint is one Nominatim search result. Lat and lon arrive as strings.
type geoPoint struct {
	Lat         string `json:"lat"`
	Lon         string `json:"lon"`
	DisplayName string `json:"display_name"`
}

func (s *RouteService) run(ctx context.Context, args map[string]string) (*ExecutionResult, error) {
	if s.cfg.ORSAPIKey == "" {
		return &ExecutionResult{OK: false, Error: "route planning is not configured (missing OpenRouteService API key)"}, nil
	}

	origin, destination, mode := args["from"], args["to"], args["mode"]

	from, err := s.geocode(ctx, origin)
	if err == nil {
		var to *geoPoint
		to, err = s.geocode(ctx, destination)
		if err == nil {
			return s.directions(ctx, from, to, origin, destination, mode)
		}
	}
	if isTransport(err) {
		return nil, err
	}
	return &ExecutionResult{OK: false, Error: "failed to geocode origin or destination"}, nil
}

// transportError marks network-level failures, which the caller reports
// separately from domain failures like an unknown place name.
type transportError struct{ err error }

func (e *transportError) Error() string { return e.err.Error() }
func (e *transportError) Unwrap() error { return e.err }

func isTransport(err error) bool {
	_, ok := err.(*transportError)
	return ok
}

// geocode resolves a free-text place name to coordinates via Nominatim.
func (s *RouteService) geocode(ctx context.Context, place string) (*geoPoint, error) {
	key := strings.ToLower(strings.TrimSpace(place))
	if cached, ok := s.geo.Get(key); ok {
		return cached.(*geoPoint), nil
	}

	u := fmt.Sprintf("%s/search?q=%s&format=json&limit=1", s.cfg.NominatimBaseURL, url.QueryEscape(place))
	req, err := http.NewRequestWithContext(ctx, "GET", u, nil)
	if err != nil {
		return nil, &transportError{err}
	}
	// Nominatim's usage policy requires an identifying User-Agent.
	req.Header.Set("User-Agent", s.cfg.UserAgent)

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, &transportError{err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &transportError{fmt.Errorf("nominatim error %d", resp.StatusCode)}
	}

	var results []geoPoint
	if err := json.NewDecoder(resp.Body).Decode(&results); err != nil {
		return nil, &transportError{err}
	}
	if len(results) == 0 {
		return nil, fmt.Errorf("no geocode result for %q", place)
	}

	p := &results[0]
	s.geo.Set(key, p, gocache.DefaultExpiration)
	return p, nil
}

type orsResponse struct {
	Routes []struct {
		Summary struct {
			Distance float64 `json:"distance"` // meters
			Duration float64 `json:"duration"` // seconds
		} `json:"summary"`
	} `json:"routes"`
}

// coords converts Nominatim's string lat/lon into the numeric [lon, lat]
// pair ORS requires.
func (p *geoPoint) coords() ([2]float64, error) {
	lat, err := strconv.ParseFloat(p.Lat, 64)
	if err != nil {
		return [2]float64{}, fmt.Errorf("bad latitude %q", p.Lat)
	}
	lon, err := strconv.ParseFloat(p.Lon, 64)
	if err != nil {
		return [2]float64{}, fmt.Errorf("bad longitude %q", p.Lon)
	}
	return [2]float64{lon, lat}, nil
}

func (s *RouteService) directions(ctx context.Context, from, to *geoPoint, origin, destination, mode string) (*ExecutionResult, error) {
	profile := orsProfiles[mode]

	fromXY, err := from.coords()
	if err != nil {
		return &ExecutionResult{OK: false, Error: "failed to geocode origin or destination"}, nil
	}
	toXY, err := to.coords()
	if err != nil {
		return &ExecutionResult{OK: false, Error: "failed to geocode origin or destination"}, nil
	}

	body, _ := json.Marshal(map[string]any{
		// ORS wants [lon, lat] pairs
		"coordinates": [][2]float64{fromXY, toXY},
	})

	u := fmt.Sprintf("%s/v2/directions/%s", s.cfg.ORSBaseURL, profile)
	req, err := http.NewRequestWithContext(ctx, "POST", u, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", s.cfg.ORSAPIKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, resp.Body)
		return &ExecutionResult{OK: false, Error: fmt.Sprintf("route service error (%d)", resp.StatusCode)}, nil
	}

	var ors orsResponse
	if err := json.NewDecoder(resp.Body).Decode(&ors); err != nil {
		return nil, err
	}
	if len(ors.Routes) == 0 {
		return &ExecutionResult{OK: false, Error: "no route found between those places"}, nil
	}

	sum := ors.Routes[0].Summary
	km := sum.Distance / 1000
	mins := int(sum.Duration/60 + 0.5)

	gmaps := fmt.Sprintf("https://www.google.com/maps/dir/?api=1&origin=%s&destination=%s&travelmode=%s",
		url.QueryEscape(origin), url.QueryEscape(destination), mode)

	notes := safetyNotes
	if mode == "transit" {
		notes = append([]string{"Transit directions are approximated with walking distances."}, notes...)
	}

	return &ExecutionResult{
		OK: true,
		Data: map[string]any{
			"summary":       fmt.Sprintf("%.1f km • %d min", km, mins),
			"distance_m":    sum.Distance,
			"duration_s":    sum.Duration,
			"distance_text": fmt.Sprintf("%.1f km", km),
			"duration_text": fmt.Sprintf("%d min", mins),
			"start_address": from.DisplayName,
			"end_address":   to.DisplayName,
			"mode":          mode,
			"gmaps_url":     gmaps,
			"safety_notes":  notes,
		},
	}, nil
}
