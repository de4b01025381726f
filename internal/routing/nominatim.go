package routing

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/sethvargo/go-retry"

	"eld-trip-service/internal/domain"
)

const nominatimUserAgent = "eld-trip-service/1.0"

// NominatimGeocoder resolves addresses against an OpenStreetMap Nominatim
// endpoint. Transient failures (5xx, 429, network errors) are retried with
// exponential backoff; an address that resolves to nothing is a permanent
// routing error.
type NominatimGeocoder struct {
	baseURL string
	client  *http.Client
}

func NewNominatimGeocoder(baseURL string, timeout time.Duration) *NominatimGeocoder {
	return &NominatimGeocoder{
		baseURL: baseURL,
		client:  &http.Client{Timeout: timeout},
	}
}

type nominatimResult struct {
	Lat string `json:"lat"`
	Lon string `json:"lon"`
}

func (g *NominatimGeocoder) Geocode(ctx context.Context, address string) (domain.Coordinates, error) {
	var coords domain.Coordinates

	backoff := retry.WithMaxRetries(3, retry.NewExponential(250*time.Millisecond))
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		c, err := g.search(ctx, address)
		if err != nil {
			return err
		}
		coords = c
		return nil
	})
	if err != nil {
		return domain.Coordinates{}, fmt.Errorf("routing.NominatimGeocoder.Geocode %q: %w: %w", address, domain.ErrRouting, err)
	}
	return coords, nil
}

func (g *NominatimGeocoder) search(ctx context.Context, address string) (domain.Coordinates, error) {
	q := url.Values{}
	q.Set("q", address)
	q.Set("format", "json")
	q.Set("limit", "1")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.baseURL+"/search?"+q.Encode(), nil)
	if err != nil {
		return domain.Coordinates{}, err
	}
	// Required by the Nominatim usage policy.
	req.Header.Set("User-Agent", nominatimUserAgent)

	resp, err := g.client.Do(req)
	if err != nil {
		return domain.Coordinates{}, retry.RetryableError(err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusOK:
	case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
		return domain.Coordinates{}, retry.RetryableError(fmt.Errorf("nominatim status %d", resp.StatusCode))
	default:
		return domain.Coordinates{}, fmt.Errorf("nominatim status %d", resp.StatusCode)
	}

	var results []nominatimResult
	if err := json.NewDecoder(resp.Body).Decode(&results); err != nil {
		return domain.Coordinates{}, fmt.Errorf("decode response: %w", err)
	}
	if len(results) == 0 {
		return domain.Coordinates{}, fmt.Errorf("no results")
	}

	lat, err := strconv.ParseFloat(results[0].Lat, 64)
	if err != nil {
		return domain.Coordinates{}, fmt.Errorf("parse lat: %w", err)
	}
	lng, err := strconv.ParseFloat(results[0].Lon, 64)
	if err != nil {
		return domain.Coordinates{}, fmt.Errorf("parse lon: %w", err)
	}

	return domain.Coordinates{Lat: lat, Lng: lng}, nil
}
