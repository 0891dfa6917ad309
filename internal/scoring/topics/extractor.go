package topics

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/glaspolitics/backend/internal/llm"
	"github.com/glaspolitics/backend/internal/metrics"
	"github.com/glaspolitics/backend/internal/storage/models"
	"github.com/glaspolitics/backend/internal/storage/postgres"
	"github.com/glaspolitics/backend/pkg/logger"
)

const (
	MethodLLM     = "llm"
	MethodKeyword = "keyword"

	maxTopicsPerSection = 5
)

// Topic is one extracted topic label with the extractor's confidence in it.
type Topic struct {
	Name       string
	Confidence float64
}

type TopicLabeler interface {
	ExtractTopics(ctx context.Context, debateTitle, transcript string) ([]llm.TopicExtraction, error)
}

type Store interface {
	SectionsWithoutTopics(ctx context.Context, limit int) ([]postgres.SectionSample, error)
	UpsertTopic(ctx context.Context, topic *models.DebateTopic) error
}

// Extractor labels debate sections with policy topics. The language model
// does the labelling when it is reachable; when a call fails the section
// falls back to part-of-speech keyword extraction instead of being skipped,
// so a model outage degrades topic quality rather than halting the job.
type Extractor struct {
	store   Store
	labeler TopicLabeler
}

func NewExtractor(store Store, labeler TopicLabeler) *Extractor {
	return &Extractor{store: store, labeler: labeler}
}

// Run labels up to limit unlabelled sections and reports how many sections
// received at least one topic.
func (e *Extractor) Run(ctx context.Context, limit int) (int, error) {
	sections, err := e.store.SectionsWithoutTopics(ctx, limit)
	if err != nil {
		return 0, fmt.Errorf("failed to list unlabelled sections: %w", err)
	}

	logger.Info("Extracting debate topics", zap.Int("sections", len(sections)))

	labelled := 0
	for _, section := range sections {
		extracted, method := e.extract(ctx, section)
		if len(extracted) == 0 {
			logger.Debug("No topics found for section", zap.String("section_id", section.SectionID))
			continue
		}

		for _, topic := range extracted {
			if err := e.store.UpsertTopic(ctx, &models.DebateTopic{
				SectionID:  section.SectionID,
				Topic:      topic.Name,
				Method:     method,
				Confidence: topic.Confidence,
			}); err != nil {
				return labelled, fmt.Errorf("failed to store topic for section %s: %w", section.SectionID, err)
			}
			metrics.TopicsExtracted.WithLabelValues(method).Inc()
		}
		labelled++
	}

	logger.Info("Debate topics extracted", zap.Int("labelled", labelled))
	return labelled, nil
}

func (e *Extractor) extract(ctx context.Context, section postgres.SectionSample) ([]Topic, string) {
	if e.labeler != nil {
		extractions, err := e.labeler.ExtractTopics(ctx, section.Title, section.Text)
		if err == nil {
			topics := make([]Topic, 0, len(extractions))
			for _, ex := range extractions {
				if ex.Topic == "" {
					continue
				}
				topics = append(topics, Topic{Name: ex.Topic, Confidence: ex.Confidence})
			}
			if len(topics) > maxTopicsPerSection {
				topics = topics[:maxTopicsPerSection]
			}
			return topics, MethodLLM
		}
		logger.Warn("LLM topic extraction failed, falling back to keywords",
			zap.String("section_id", section.SectionID),
			zap.Error(err),
		)
	}

	topics, err := ExtractKeywords(section.Text, maxTopicsPerSection)
	if err != nil {
		logger.Warn("Keyword extraction failed",
			zap.String("section_id", section.SectionID),
			zap.Error(err),
		)
		return nil, MethodKeyword
	}
	return topics, MethodKeyword
}
