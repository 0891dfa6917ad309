package handlers

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/glaspolitics/backend/internal/storage/models"
	"github.com/glaspolitics/backend/pkg/logger"
)

type ScoreStore interface {
	ListTDs(ctx context.Context, activeOnly bool) ([]models.TDScore, error)
	GetTD(ctx context.Context, memberCode string) (*models.TDScore, error)
	ListPartyPerformance(ctx context.Context) ([]models.PartyPerformance, error)
}

// ScoreCache is the subset of the redis client the read handlers use.
// A nil cache degrades to hitting Postgres on every request.
type ScoreCache interface {
	GetJSON(ctx context.Context, cacheType, key string, out interface{}) (bool, error)
	SetJSON(ctx context.Context, cacheType, key string, payload interface{}, ttl time.Duration) error
}

type ScoresHandler struct {
	store ScoreStore
	cache ScoreCache
}

func NewScoresHandler(store ScoreStore, cache ScoreCache) *ScoresHandler {
	return &ScoresHandler{store: store, cache: cache}
}

type tdSummary struct {
	MemberCode    string  `json:"member_code"`
	FullName      string  `json:"full_name"`
	Party         string  `json:"party"`
	Constituency  string  `json:"constituency"`
	ImageURL      string  `json:"image_url,omitempty"`
	IsMinister    bool    `json:"is_minister"`
	Overall       float64 `json:"overall"`
	Transparency  float64 `json:"transparency"`
	Effectiveness float64 `json:"effectiveness"`
	Integrity     float64 `json:"integrity"`
	Consistency   float64 `json:"consistency"`
	Service       float64 `json:"service"`
}

type partySummary struct {
	Party         string  `json:"party"`
	Color         string  `json:"color"`
	MemberCount   int     `json:"member_count"`
	Overall       float64 `json:"overall"`
	Transparency  float64 `json:"transparency"`
	Effectiveness float64 `json:"effectiveness"`
	Integrity     float64 `json:"integrity"`
	Consistency   float64 `json:"consistency"`
	Service       float64 `json:"service"`
}

type widgetPayload struct {
	Top         []tdSummary    `json:"top_tds"`
	Bottom      []tdSummary    `json:"bottom_tds"`
	Parties     []partySummary `json:"parties"`
	GeneratedAt int64          `json:"generated_at"`
}

const (
	widgetCacheType = "widget"
	widgetCacheTTL  = 15 * time.Minute
	widgetSliceSize = 5
)

// HandleWidgetScores serves the embeddable scores widget: the five highest
// and five lowest ranked TDs plus the party aggregates, in one payload.
func (h *ScoresHandler) HandleWidgetScores(c *fiber.Ctx) error {
	if h.cache != nil {
		var cached widgetPayload
		hit, err := h.cache.GetJSON(c.Context(), widgetCacheType, "all", &cached)
		if err != nil {
			logger.Warn("Widget cache read failed", zap.Error(err))
		} else if hit {
			return c.JSON(cached)
		}
	}

	tds, err := h.store.ListTDs(c.Context(), true)
	if err != nil {
		logger.Error("Failed to list TDs", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to load scores",
		})
	}

	parties, err := h.store.ListPartyPerformance(c.Context())
	if err != nil {
		logger.Error("Failed to list party performance", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to load scores",
		})
	}

	// tds arrive ordered by overall rating, best first.
	payload := widgetPayload{
		Parties:     make([]partySummary, 0, len(parties)),
		GeneratedAt: time.Now().Unix(),
	}
	n := widgetSliceSize
	if n > len(tds) {
		n = len(tds)
	}
	// With a small roster the bottom slice starts after the top one, so a
	// TD never appears in both.
	bottomStart := len(tds) - n
	if bottomStart < n {
		bottomStart = n
	}
	for _, td := range tds[:n] {
		payload.Top = append(payload.Top, toTDSummary(td))
	}
	for _, td := range tds[bottomStart:] {
		payload.Bottom = append(payload.Bottom, toTDSummary(td))
	}
	for _, p := range parties {
		payload.Parties = append(payload.Parties, toPartySummary(p))
	}

	if h.cache != nil {
		if err := h.cache.SetJSON(c.Context(), widgetCacheType, "all", payload, widgetCacheTTL); err != nil {
			logger.Warn("Widget cache write failed", zap.Error(err))
		}
	}

	return c.JSON(payload)
}

func (h *ScoresHandler) HandleListTDs(c *fiber.Ctx) error {
	activeOnly := c.QueryBool("active", true)

	tds, err := h.store.ListTDs(c.Context(), activeOnly)
	if err != nil {
		logger.Error("Failed to list TDs", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to load TDs",
		})
	}

	out := make([]tdSummary, 0, len(tds))
	for _, td := range tds {
		out = append(out, toTDSummary(td))
	}

	return c.JSON(fiber.Map{"tds": out})
}

func (h *ScoresHandler) HandleGetTD(c *fiber.Ctx) error {
	memberCode := c.Params("memberCode")
	if memberCode == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "memberCode is required",
		})
	}

	td, err := h.store.GetTD(c.Context(), memberCode)
	if err != nil {
		logger.Error("Failed to load TD", zap.String("member_code", memberCode), zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to load TD",
		})
	}
	if td == nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "TD not found",
		})
	}

	summary := toTDSummary(*td)
	return c.JSON(fiber.Map{
		"td": summary,
		"activity": fiber.Map{
			"questions_asked": td.QuestionsAsked,
			"bills_sponsored": td.BillsSponsored,
			"votes_cast":      td.VotesCast,
			"votes_eligible":  td.VotesEligible,
			"speech_count":    td.SpeechCount,
		},
	})
}

func (h *ScoresHandler) HandleListParties(c *fiber.Ctx) error {
	parties, err := h.store.ListPartyPerformance(c.Context())
	if err != nil {
		logger.Error("Failed to list parties", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to load parties",
		})
	}

	out := make([]partySummary, 0, len(parties))
	for _, p := range parties {
		out = append(out, toPartySummary(p))
	}

	return c.JSON(fiber.Map{"parties": out})
}

func toTDSummary(td models.TDScore) tdSummary {
	return tdSummary{
		MemberCode:    td.MemberCode,
		FullName:      td.FullName,
		Party:         td.Party,
		Constituency:  td.Constituency,
		ImageURL:      td.ImageURL,
		IsMinister:    td.IsMinister,
		Overall:       td.Overall,
		Transparency:  td.Transparency,
		Effectiveness: td.Effectiveness,
		Integrity:     td.Integrity,
		Consistency:   td.Consistency,
		Service:       td.Service,
	}
}

func toPartySummary(p models.PartyPerformance) partySummary {
	return partySummary{
		Party:         p.Party,
		Color:         p.Color,
		MemberCount:   p.MemberCount,
		Overall:       p.Overall,
		Transparency:  p.Transparency,
		Effectiveness: p.Effectiveness,
		Integrity:     p.Integrity,
		Consistency:   p.Consistency,
		Service:       p.Service,
	}
}
