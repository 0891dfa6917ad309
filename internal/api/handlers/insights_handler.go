package handlers

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/glaspolitics/backend/pkg/logger"
)

type InsightGenerator interface {
	GenerateInsight(ctx context.Context, answersSummary, constituency, scoresContext string) (string, error)
}

type InsightsHandler struct {
	store     ConstituencyStore
	generator InsightGenerator
	cache     ScoreCache
}

func NewInsightsHandler(store ConstituencyStore, generator InsightGenerator, cache ScoreCache) *InsightsHandler {
	return &InsightsHandler{store: store, generator: generator, cache: cache}
}

type insightRequest struct {
	Constituency string `json:"constituency"`
	// Answers maps compass question IDs to the -2..2 agreement value
	// the user picked.
	Answers map[string]int `json:"answers"`
}

type insightResponse struct {
	Constituency string `json:"constituency"`
	Insight      string `json:"insight"`
	Cached       bool   `json:"cached"`
}

const (
	insightCacheType = "insight"
	insightCacheTTL  = 7 * 24 * time.Hour
)

// HandleGenerateInsight writes a short personalized reading of how the
// user's compass answers relate to their constituency's TDs. Responses
// are cached by answer profile, so two users with identical answers in
// the same constituency share one LLM call.
func (h *InsightsHandler) HandleGenerateInsight(c *fiber.Ctx) error {
	var req insightRequest
	if err := c.BodyParser(&req); err != nil {
		logger.Error("Failed to parse insight request", zap.Error(err))
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	if req.Constituency == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "constituency is required",
		})
	}
	if len(req.Answers) == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "answers are required",
		})
	}
	for id, v := range req.Answers {
		if v < -2 || v > 2 {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": fmt.Sprintf("answer %s out of range: values run -2 to 2", id),
			})
		}
	}

	cacheKey := insightCacheKey(req)
	if h.cache != nil {
		var cached insightResponse
		hit, err := h.cache.GetJSON(c.Context(), insightCacheType, cacheKey, &cached)
		if err != nil {
			logger.Warn("Insight cache read failed", zap.Error(err))
		} else if hit {
			cached.Cached = true
			return c.JSON(cached)
		}
	}

	tds, err := h.store.ListTDsByConstituency(c.Context(), req.Constituency)
	if err != nil {
		logger.Error("Failed to load constituency TDs", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to load constituency data",
		})
	}
	if len(tds) == 0 {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Unknown constituency",
		})
	}

	var scoresContext strings.Builder
	for _, td := range tds {
		fmt.Fprintf(&scoresContext,
			"%s (%s): overall %.0f, transparency %.0f, effectiveness %.0f, integrity %.0f, consistency %.0f, service %.0f\n",
			td.FullName, td.Party,
			td.Overall, td.Transparency, td.Effectiveness, td.Integrity, td.Consistency, td.Service,
		)
	}

	insight, err := h.generator.GenerateInsight(c.Context(),
		summarizeAnswers(req.Answers), req.Constituency, scoresContext.String())
	if err != nil {
		logger.Error("Failed to generate insight", zap.Error(err))
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
			"error": "Insight generation is temporarily unavailable",
		})
	}

	resp := insightResponse{
		Constituency: req.Constituency,
		Insight:      insight,
	}
	if h.cache != nil {
		if err := h.cache.SetJSON(c.Context(), insightCacheType, cacheKey, resp, insightCacheTTL); err != nil {
			logger.Warn("Insight cache write failed", zap.Error(err))
		}
	}

	return c.JSON(resp)
}

// summarizeAnswers renders the answer map in a stable order so the same
// profile always produces the same prompt and cache key.
func summarizeAnswers(answers map[string]int) string {
	ids := make([]string, 0, len(answers))
	for id := range answers {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	var b strings.Builder
	for _, id := range ids {
		fmt.Fprintf(&b, "%s=%d\n", id, answers[id])
	}
	return b.String()
}

func insightCacheKey(req insightRequest) string {
	sum := sha256.Sum256([]byte(req.Constituency + "\n" + summarizeAnswers(req.Answers)))
	return hex.EncodeToString(sum[:])
}
