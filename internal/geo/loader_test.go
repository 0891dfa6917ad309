package geo

import (
	"encoding/json"
	"fmt"
	"strings"
	"testing"

	"github.com/paulmach/orb/geojson"
)

func squareFeatureCollection(name string, shares string, coords string) []byte {
	return []byte(fmt.Sprintf(`{
		"type": "FeatureCollection",
		"features": [{
			"type": "Feature",
			"properties": {"name": %q, "seats": 4, "vote_shares": %s},
			"geometry": {"type": "Polygon", "coordinates": [%s]}
		}]
	}`, name, shares, coords))
}

const wgs84Square = `[[-6.3, 53.3], [-6.2, 53.3], [-6.2, 53.4], [-6.3, 53.4], [-6.3, 53.3]]`

func TestParseBoundariesWGS84(t *testing.T) {
	data := squareFeatureCollection("Dublin Central", `{"Fianna Fail": 30.0, "Fine Gael": 30.0, "Sinn Fein": 40.0}`, wgs84Square)

	cons, err := ParseBoundaries(data, 0)
	if err != nil {
		t.Fatalf("ParseBoundaries: %v", err)
	}
	if len(cons) != 1 {
		t.Fatalf("expected 1 constituency, got %d", len(cons))
	}

	con := cons[0]
	if con.Name != "Dublin Central" || con.SeatCount != 4 {
		t.Errorf("unexpected constituency: %+v", con)
	}
	if con.VoteShares["Sinn Fein"] != 40.0 {
		t.Errorf("unexpected vote shares: %v", con.VoteShares)
	}

	var check map[string]any
	if err := json.Unmarshal(con.BoundaryGeoJSON, &check); err != nil {
		t.Fatalf("stored boundary is not valid JSON: %v", err)
	}
	if check["type"] != "Polygon" {
		t.Errorf("stored boundary type = %v", check["type"])
	}
}

func TestParseBoundariesReprojectsITM(t *testing.T) {
	// Build the same square in ITM metres and expect WGS84 back out.
	corners := [][2]float64{
		{53.3, -6.3}, {53.3, -6.2}, {53.4, -6.2}, {53.4, -6.3}, {53.3, -6.3},
	}
	var pts []string
	for _, c := range corners {
		e, n := ToITM(c[0], c[1])
		pts = append(pts, fmt.Sprintf("[%f, %f]", e, n))
	}
	coords := "[" + strings.Join(pts, ", ") + "]"

	data := squareFeatureCollection("Dublin Central", "null", coords)

	cons, err := ParseBoundaries(data, 0)
	if err != nil {
		t.Fatalf("ParseBoundaries: %v", err)
	}

	g, err := geojson.UnmarshalGeometry(cons[0].BoundaryGeoJSON)
	if err != nil {
		t.Fatalf("unmarshal boundary: %v", err)
	}

	bound := g.Geometry().Bound()
	if bound.Min[0] < -6.31 || bound.Max[0] > -6.19 {
		t.Errorf("reprojected longitudes out of range: %v", bound)
	}
	if bound.Min[1] < 53.29 || bound.Max[1] > 53.41 {
		t.Errorf("reprojected latitudes out of range: %v", bound)
	}
}

func TestParseBoundariesRejectsBadVoteShares(t *testing.T) {
	data := squareFeatureCollection("Dublin Central", `{"Fianna Fail": 30.0, "Fine Gael": 30.0}`, wgs84Square)

	if _, err := ParseBoundaries(data, 0); err == nil {
		t.Fatal("expected error for vote shares summing to 60")
	}
}

func TestParseBoundariesAcceptsRoundingSlack(t *testing.T) {
	data := squareFeatureCollection("Dublin Central", `{"Fianna Fail": 33.4, "Fine Gael": 33.3, "Sinn Fein": 33.6}`, wgs84Square)

	if _, err := ParseBoundaries(data, 0); err != nil {
		t.Fatalf("expected 100.3 to pass rounding tolerance: %v", err)
	}
}

func TestParseBoundariesSimplifies(t *testing.T) {
	// A ring with a redundant collinear vertex should lose it.
	coords := `[[-6.3, 53.3], [-6.25, 53.3], [-6.2, 53.3], [-6.2, 53.4], [-6.3, 53.4], [-6.3, 53.3]]`
	data := squareFeatureCollection("Dublin Central", "null", coords)

	cons, err := ParseBoundaries(data, 0.001)
	if err != nil {
		t.Fatalf("ParseBoundaries: %v", err)
	}

	var check struct {
		Coordinates [][][2]float64 `json:"coordinates"`
	}
	if err := json.Unmarshal(cons[0].BoundaryGeoJSON, &check); err != nil {
		t.Fatalf("unmarshal boundary: %v", err)
	}
	if got := len(check.Coordinates[0]); got != 5 {
		t.Errorf("expected simplification to 5 ring points, got %d", got)
	}
}

func TestLookupFindsContainingConstituency(t *testing.T) {
	data := squareFeatureCollection("Dublin Central", "null", wgs84Square)
	cons, err := ParseBoundaries(data, 0)
	if err != nil {
		t.Fatalf("ParseBoundaries: %v", err)
	}

	idx, err := NewIndex(cons)
	if err != nil {
		t.Fatalf("NewIndex: %v", err)
	}

	result, ok := idx.Lookup(53.35, -6.25)
	if !ok {
		t.Fatal("expected point inside square to match")
	}
	if result.Constituency != "Dublin Central" || result.SeatCount != 4 {
		t.Errorf("unexpected result: %+v", result)
	}

	if _, ok := idx.Lookup(51.9, -8.47); ok {
		t.Error("expected Cork point to miss a Dublin-only index")
	}
}
