package domain

// Coordinates is an explicit WGS-84 lat/lng pair. The API accepts optional
// coordinates alongside addresses; a nil *Coordinates means "geocode the
// address", never a zero-value island off West Africa.
type Coordinates struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// NewCoordinates builds a *Coordinates from optional lat/lng inputs.
// Both must be present for the pair to be usable; a half-specified pair is
// treated as absent.
func NewCoordinates(lat, lng *float64) *Coordinates {
	if lat == nil || lng == nil {
		return nil
	}
	return &Coordinates{Lat: *lat, Lng: *lng}
}

// InRange reports whether the pair is a plausible WGS-84 coordinate.
func (c Coordinates) InRange() bool {
	return c.Lat >= -90 && c.Lat <= 90 && c.Lng >= -180 && c.Lng <= 180
}
