package geo

import (
	"math"
	"testing"
)

func TestProjectionOriginMapsToFalseOrigin(t *testing.T) {
	easting, northing := ToITM(53.5, -8.0)
	if math.Abs(easting-600000) > 0.001 {
		t.Errorf("origin easting = %f, want 600000", easting)
	}
	if math.Abs(northing-750000) > 0.001 {
		t.Errorf("origin northing = %f, want 750000", northing)
	}

	lat, lon := FromITM(600000, 750000)
	if math.Abs(lat-53.5) > 1e-9 || math.Abs(lon+8.0) > 1e-9 {
		t.Errorf("inverse of false origin = (%f, %f), want (53.5, -8.0)", lat, lon)
	}
}

func TestProjectionRoundTrip(t *testing.T) {
	// Points spread across the island: Dublin, Cork, Galway, Donegal, Wexford.
	points := []struct {
		name     string
		lat, lon float64
	}{
		{"dublin", 53.3498, -6.2603},
		{"cork", 51.8985, -8.4756},
		{"galway", 53.2707, -9.0568},
		{"donegal", 55.0000, -8.1167},
		{"wexford", 52.3369, -6.4633},
	}

	for _, p := range points {
		easting, northing := ToITM(p.lat, p.lon)
		lat, lon := FromITM(easting, northing)

		if math.Abs(lat-p.lat) > 1e-6 || math.Abs(lon-p.lon) > 1e-6 {
			t.Errorf("%s: round trip (%f, %f) -> (%f, %f)", p.name, p.lat, p.lon, lat, lon)
		}
	}
}

func TestProjectionCoordinatesInPlausibleRange(t *testing.T) {
	// Any point on the island projects inside the published ITM extent.
	easting, northing := ToITM(53.3498, -6.2603)
	if easting < 400000 || easting > 800000 {
		t.Errorf("dublin easting %f outside plausible ITM range", easting)
	}
	if northing < 500000 || northing > 1000000 {
		t.Errorf("dublin northing %f outside plausible ITM range", northing)
	}
	// East of the central meridian means easting above 600000.
	if easting <= 600000 {
		t.Errorf("dublin is east of the -8 meridian, easting %f should exceed 600000", easting)
	}
}
