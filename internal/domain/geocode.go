package domain

import (
	"context"
	"fmt"
	"log/slog"
)

// Geo source values recorded on Headquarters.
const (
	GeoSourceReverse  = "reverse"
	GeoSourceOriginal = "original"
	GeoSourceFailed   = "failed"
)

// Headquarters is a hotspot annotated for reporting.
type Headquarters struct {
	Hotspot
	MapsURL       string
	Address       string
	PlaceName     string
	GeoConfidence float64
	GeoSource     string
}

// MapsURL returns a Google Maps link for p with 6-decimal coordinates.
func MapsURL(p Point) string {
	return fmt.Sprintf("https://www.google.com/maps?q=%.6f,%.6f", p.Lat, p.Lon)
}

// LocateHeadquarters annotates a hotspot with a maps link and, when a geocoder
// is available, the address of its centroid. Geocoding failures are logged and
// recorded in GeoSource; they never fail the run.
func LocateHeadquarters(ctx context.Context, hs Hotspot, geocoder Geocoder, logger *slog.Logger) Headquarters {
	hq := Headquarters{Hotspot: hs, MapsURL: MapsURL(hs.Centroid)}
	if geocoder == nil {
		return hq
	}

	result, err := geocoder.ReverseGeocode(ctx, hs.Centroid.Lat, hs.Centroid.Lon)
	if err != nil {
		logger.Warn("reverse geocoding failed",
			"lat", hs.Centroid.Lat,
			"lon", hs.Centroid.Lon,
			"error", err,
		)
		hq.GeoSource = GeoSourceFailed
		return hq
	}
	if result.FormattedAddress == "" {
		hq.GeoSource = GeoSourceOriginal
		return hq
	}

	hq.Address = result.FormattedAddress
	hq.PlaceName = result.PlaceName
	hq.GeoConfidence = result.Confidence
	hq.GeoSource = GeoSourceReverse
	return hq
}
