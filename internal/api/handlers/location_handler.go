package handlers

import (
	"context"
	"fmt"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/glaspolitics/backend/internal/geo"
	"github.com/glaspolitics/backend/internal/metrics"
	"github.com/glaspolitics/backend/internal/storage/models"
	"github.com/glaspolitics/backend/pkg/logger"
)

// Ireland's bounding box, with margin for offshore islands. Coordinates
// outside it are rejected before touching the polygon index.
const (
	minLat = 51.2
	maxLat = 55.6
	minLng = -11.0
	maxLng = -5.3
)

type ConstituencyResolver interface {
	Lookup(lat, lng float64) (geo.LookupResult, bool)
}

type ConstituencyStore interface {
	ListTDsByConstituency(ctx context.Context, constituency string) ([]models.TDScore, error)
}

type LocationHandler struct {
	resolver ConstituencyResolver
	store    ConstituencyStore
}

func NewLocationHandler(resolver ConstituencyResolver, store ConstituencyStore) *LocationHandler {
	return &LocationHandler{resolver: resolver, store: store}
}

// HandleConstituencyLookup maps a WGS84 coordinate to its Dail constituency
// and returns the sitting TDs for it.
func (h *LocationHandler) HandleConstituencyLookup(c *fiber.Ctx) error {
	lat, err := parseCoord(c.Query("lat"), minLat, maxLat)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": fmt.Sprintf("invalid lat: %v", err),
		})
	}
	lng, err := parseCoord(c.Query("lng"), minLng, maxLng)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": fmt.Sprintf("invalid lng: %v", err),
		})
	}

	result, found := h.resolver.Lookup(lat, lng)
	if !found {
		metrics.ConstituencyLookups.WithLabelValues("miss").Inc()
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "No constituency found for this location",
		})
	}
	metrics.ConstituencyLookups.WithLabelValues("hit").Inc()

	tds, err := h.store.ListTDsByConstituency(c.Context(), result.Constituency)
	if err != nil {
		logger.Error("Failed to list constituency TDs",
			zap.String("constituency", result.Constituency),
			zap.Error(err),
		)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to load constituency TDs",
		})
	}

	out := make([]tdSummary, 0, len(tds))
	for _, td := range tds {
		out = append(out, toTDSummary(td))
	}

	return c.JSON(fiber.Map{
		"constituency": result.Constituency,
		"seat_count":   result.SeatCount,
		"tds":          out,
	})
}

func parseCoord(raw string, lo, hi float64) (float64, error) {
	if raw == "" {
		return 0, fmt.Errorf("missing")
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("not a number")
	}
	if v < lo || v > hi {
		return 0, fmt.Errorf("%.4f outside Ireland (%.1f to %.1f)", v, lo, hi)
	}
	return v, nil
}
