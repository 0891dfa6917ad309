package geo

import (
	"encoding/json"
	"fmt"
	"math"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/paulmach/orb/simplify"
	"go.uber.org/zap"

	"github.com/glaspolitics/backend/internal/storage/models"
	"github.com/glaspolitics/backend/pkg/logger"
)

// voteShareTolerance bounds how far a constituency's first-preference
// percentages may drift from 100 before the feature is rejected.
const voteShareTolerance = 0.5

// ParseBoundaries reads a GeoJSON feature collection of constituency
// boundaries, reprojects ITM coordinates to WGS84 when needed, simplifies
// each polygon, and validates vote-share percentages.
func ParseBoundaries(data []byte, simplifyTolerance float64) ([]models.Constituency, error) {
	fc, err := geojson.UnmarshalFeatureCollection(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse feature collection: %w", err)
	}

	var cons []models.Constituency
	for _, feature := range fc.Features {
		name := feature.Properties.MustString("name", "")
		if name == "" {
			name = feature.Properties.MustString("constituency", "")
		}
		if name == "" {
			return nil, fmt.Errorf("feature missing name property")
		}

		seats := feature.Properties.MustInt("seats", 3)

		shares, err := extractVoteShares(feature.Properties["vote_shares"])
		if err != nil {
			return nil, fmt.Errorf("constituency %s: %w", name, err)
		}
		if len(shares) > 0 {
			if err := validateVoteShares(shares); err != nil {
				return nil, fmt.Errorf("constituency %s: %w", name, err)
			}
		}

		geom := feature.Geometry
		if looksLikeITM(geom) {
			geom = reproject(geom)
			logger.Debug("Reprojected boundary from ITM", zap.String("constituency", name))
		}

		if simplifyTolerance > 0 {
			geom = simplify.DouglasPeucker(simplifyTolerance).Simplify(geom)
		}

		boundary, err := json.Marshal(geojson.NewGeometry(geom))
		if err != nil {
			return nil, fmt.Errorf("constituency %s: failed to marshal boundary: %w", name, err)
		}

		cons = append(cons, models.Constituency{
			Name:            name,
			SeatCount:       seats,
			VoteShares:      shares,
			BoundaryGeoJSON: boundary,
		})
	}

	return cons, nil
}

func extractVoteShares(raw any) (map[string]float64, error) {
	if raw == nil {
		return nil, nil
	}

	asMap, ok := raw.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("vote_shares is not an object")
	}

	shares := make(map[string]float64, len(asMap))
	for party, v := range asMap {
		f, ok := v.(float64)
		if !ok {
			return nil, fmt.Errorf("vote share for %s is not a number", party)
		}
		shares[party] = f
	}
	return shares, nil
}

func validateVoteShares(shares map[string]float64) error {
	var sum float64
	for party, share := range shares {
		if share < 0 || share > 100 {
			return fmt.Errorf("vote share for %s out of range: %f", party, share)
		}
		sum += share
	}
	if math.Abs(sum-100) > voteShareTolerance {
		return fmt.Errorf("vote shares sum to %.2f, expected ~100", sum)
	}
	return nil
}

// looksLikeITM treats coordinates outside the valid longitude range as
// projected metres. ITM eastings around Ireland sit in the hundreds of
// thousands, so the first point is enough to decide.
func looksLikeITM(geom orb.Geometry) bool {
	switch g := geom.(type) {
	case orb.Polygon:
		if len(g) > 0 && len(g[0]) > 0 {
			return math.Abs(g[0][0][0]) > 180
		}
	case orb.MultiPolygon:
		if len(g) > 0 && len(g[0]) > 0 && len(g[0][0]) > 0 {
			return math.Abs(g[0][0][0][0]) > 180
		}
	}
	return false
}

func reproject(geom orb.Geometry) orb.Geometry {
	switch g := geom.(type) {
	case orb.Polygon:
		return reprojectPolygon(g)
	case orb.MultiPolygon:
		out := make(orb.MultiPolygon, len(g))
		for i, poly := range g {
			out[i] = reprojectPolygon(poly)
		}
		return out
	default:
		return geom
	}
}

func reprojectPolygon(poly orb.Polygon) orb.Polygon {
	out := make(orb.Polygon, len(poly))
	for i, ring := range poly {
		newRing := make(orb.Ring, len(ring))
		for j, pt := range ring {
			lat, lon := FromITM(pt[0], pt[1])
			newRing[j] = orb.Point{lon, lat}
		}
		out[i] = newRing
	}
	return out
}
