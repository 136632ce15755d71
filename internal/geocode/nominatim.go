package geocode

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"
)

const (
	defaultNominatimURL = "https://nominatim.openstreetmap.org"
	defaultUserAgent    = "photo-index/1.0"
)

// ErrNoAddress is returned when the provider has no address for a point.
var ErrNoAddress = errors.New("no address for coordinates")

// Address holds the address components the resolver uses.
type Address struct {
	City    string `json:"city"`
	Town    string `json:"town"`
	Village string `json:"village"`
	State   string `json:"state"`
	Country string `json:"country"`
}

// ReverseGeocoder resolves a coordinate to an address.
type ReverseGeocoder interface {
	Reverse(ctx context.Context, lat, lon float64) (Address, error)
}

// NominatimClient talks to a Nominatim-compatible /reverse endpoint. It
// spaces requests at least MinInterval apart, as the public instance's
// usage policy requires.
type NominatimClient struct {
	baseURL     string
	userAgent   string
	language    string
	minInterval time.Duration
	client      *http.Client

	mu       sync.Mutex
	lastCall time.Time
}

// NominatimConfig configures a NominatimClient.
type NominatimConfig struct {
	BaseURL     string
	UserAgent   string
	Language    string
	MinInterval time.Duration
	Timeout     time.Duration
}

// NewNominatimClient creates a new reverse geocoding client
func NewNominatimClient(cfg NominatimConfig) *NominatimClient {
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultNominatimURL
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = defaultUserAgent
	}
	if cfg.Language == "" {
		cfg.Language = "en"
	}
	return &NominatimClient{
		baseURL:     strings.TrimSuffix(cfg.BaseURL, "/"),
		userAgent:   cfg.UserAgent,
		language:    cfg.Language,
		minInterval: cfg.MinInterval,
		client:      &http.Client{Timeout: cfg.Timeout},
	}
}

type reverseResponse struct {
	Address *Address `json:"address"`
	Error   string   `json:"error"`
}

// wait blocks until the next request may be sent.
func (c *NominatimClient) wait(ctx context.Context) error {
	if c.minInterval <= 0 {
		return nil
	}

	c.mu.Lock()
	next := c.lastCall.Add(c.minInterval)
	now := time.Now()
	if next.Before(now) {
		next = now
	}
	c.lastCall = next
	c.mu.Unlock()

	delay := time.Until(next)
	if delay <= 0 {
		return nil
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(delay):
		return nil
	}
}

// Reverse implements ReverseGeocoder.
func (c *NominatimClient) Reverse(ctx context.Context, lat, lon float64) (Address, error) {
	if err := c.wait(ctx); err != nil {
		return Address{}, err
	}

	q := url.Values{}
	q.Set("format", "jsonv2")
	q.Set("lat", strconv.FormatFloat(lat, 'f', -1, 64))
	q.Set("lon", strconv.FormatFloat(lon, 'f', -1, 64))
	q.Set("addressdetails", "1")
	q.Set("accept-language", c.language)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/reverse?"+q.Encode(), nil)
	if err != nil {
		return Address{}, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return Address{}, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return Address{}, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return Address{}, fmt.Errorf("API error (status %d): %s", resp.StatusCode, string(body))
	}

	var parsed reverseResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return Address{}, fmt.Errorf("failed to parse response: %w", err)
	}
	if parsed.Error != "" || parsed.Address == nil {
		return Address{}, ErrNoAddress
	}
	return *parsed.Address, nil
}
