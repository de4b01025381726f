package routing

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"eld-trip-service/internal/domain"
	"eld-trip-service/internal/ports"
)

// geocodeCacheTTL bounds staleness of cached coordinates. Addresses move
// rarely; a month keeps Nominatim traffic near zero for repeat trips.
const geocodeCacheTTL = 30 * 24 * time.Hour

// CachedGeocoder fronts another geocoder with a Redis cache keyed by
// normalized address. Cache failures are logged and treated as misses so a
// Redis outage degrades to direct geocoding instead of failing trips.
type CachedGeocoder struct {
	inner  ports.Geocoder
	client *redis.Client
	logger *slog.Logger
}

func NewCachedGeocoder(inner ports.Geocoder, client *redis.Client, logger *slog.Logger) *CachedGeocoder {
	return &CachedGeocoder{inner: inner, client: client, logger: logger}
}

func (g *CachedGeocoder) Geocode(ctx context.Context, address string) (domain.Coordinates, error) {
	key := cacheKey(address)

	if raw, err := g.client.Get(ctx, key).Result(); err == nil {
		var coords domain.Coordinates
		if err := json.Unmarshal([]byte(raw), &coords); err == nil {
			return coords, nil
		}
		g.logger.Warn("discarding malformed geocode cache entry", "key", key)
	} else if err != redis.Nil {
		g.logger.Warn("geocode cache read failed", "key", key, "error", err)
	}

	coords, err := g.inner.Geocode(ctx, address)
	if err != nil {
		return domain.Coordinates{}, err
	}

	raw, err := json.Marshal(coords)
	if err == nil {
		if err := g.client.Set(ctx, key, raw, geocodeCacheTTL).Err(); err != nil {
			g.logger.Warn("geocode cache write failed", "key", key, "error", err)
		}
	}

	return coords, nil
}

// cacheKey normalizes the address so trivially different spellings share an
// entry.
func cacheKey(address string) string {
	norm := strings.ToLower(strings.TrimSpace(address))
	norm = strings.Join(strings.Fields(norm), " ")
	return "geocode:" + norm
}
