package geo

import (
	"fmt"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/paulmach/orb/planar"
	"go.uber.org/zap"

	"github.com/glaspolitics/backend/internal/storage/models"
	"github.com/glaspolitics/backend/pkg/logger"
)

// Index answers point-in-polygon constituency lookups over boundaries
// loaded from storage. Boundaries are held in memory; the full national
// set is a few megabytes after simplification.
type Index struct {
	entries []indexEntry
}

type indexEntry struct {
	name     string
	seats    int
	bound    orb.Bound
	geometry orb.Geometry
}

type LookupResult struct {
	Constituency string
	SeatCount    int
}

func NewIndex(cons []models.Constituency) (*Index, error) {
	idx := &Index{entries: make([]indexEntry, 0, len(cons))}

	for _, con := range cons {
		g, err := geojson.UnmarshalGeometry(con.BoundaryGeoJSON)
		if err != nil {
			return nil, fmt.Errorf("failed to parse boundary for %s: %w", con.Name, err)
		}

		geom := g.Geometry()
		idx.entries = append(idx.entries, indexEntry{
			name:     con.Name,
			seats:    con.SeatCount,
			bound:    geom.Bound(),
			geometry: geom,
		})
	}

	logger.Info("Constituency index built", zap.Int("constituencies", len(idx.entries)))
	return idx, nil
}

// Lookup returns the constituency containing the given WGS84 point, or
// false when the point falls outside every boundary.
func (idx *Index) Lookup(lat, lng float64) (LookupResult, bool) {
	point := orb.Point{lng, lat}

	for _, e := range idx.entries {
		if !e.bound.Contains(point) {
			continue
		}
		if geometryContains(e.geometry, point) {
			return LookupResult{Constituency: e.name, SeatCount: e.seats}, true
		}
	}

	return LookupResult{}, false
}

func (idx *Index) Size() int {
	return len(idx.entries)
}

func geometryContains(geom orb.Geometry, point orb.Point) bool {
	switch g := geom.(type) {
	case orb.Polygon:
		return planar.PolygonContains(g, point)
	case orb.MultiPolygon:
		return planar.MultiPolygonContains(g, point)
	default:
		return false
	}
}
