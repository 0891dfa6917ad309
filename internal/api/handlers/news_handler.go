package handlers

import (
	"context"
	"fmt"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/glaspolitics/backend/internal/storage/models"
	"github.com/glaspolitics/backend/pkg/logger"
)

type NewsStore interface {
	ListArticles(ctx context.Context, limit int) ([]models.NewsArticle, error)
}

type NewsHandler struct {
	store NewsStore
}

func NewNewsHandler(store NewsStore) *NewsHandler {
	return &NewsHandler{store: store}
}

const maxNewsLimit = 50

func (h *NewsHandler) HandleListNews(c *fiber.Ctx) error {
	limit := c.QueryInt("limit", 10)
	if limit < 1 || limit > maxNewsLimit {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": fmt.Sprintf("limit must be between 1 and %d", maxNewsLimit),
		})
	}

	articles, err := h.store.ListArticles(c.Context(), limit)
	if err != nil {
		logger.Error("Failed to list news articles", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to load news",
		})
	}

	out := make([]fiber.Map, 0, len(articles))
	for _, a := range articles {
		out = append(out, fiber.Map{
			"url":          a.URL,
			"title":        a.Title,
			"source":       a.Source,
			"summary":      a.Summary,
			"score":        a.Score,
			"published_at": a.PublishedAt,
		})
	}

	return c.JSON(fiber.Map{"articles": out})
}
