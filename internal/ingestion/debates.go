package ingestion

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"

	"github.com/glaspolitics/backend/internal/metrics"
	"github.com/glaspolitics/backend/internal/oireachtas"
	"github.com/glaspolitics/backend/internal/storage/models"
	"github.com/glaspolitics/backend/pkg/logger"
)

type DebateStore interface {
	UpsertSpeech(ctx context.Context, speech *models.DebateSpeech) error
	ListUnchunkedSpeeches(ctx context.Context, limit int) ([]models.DebateSpeech, error)
	MarkSpeechChunked(ctx context.Context, sectionID string, speechIndex int) error
	InsertChunk(ctx context.Context, chunk *models.DebateChunk) error
}

type DebateFetcher interface {
	FetchDebateRecords(ctx context.Context, chamberID string, dateStart, dateEnd time.Time) ([]oireachtas.DebateRecord, error)
	FetchSectionContent(ctx context.Context, uri string) (string, error)
}

type DebateProcessor struct {
	store        DebateStore
	client       DebateFetcher
	chamberID    string
	chunkSize    int
	chunkOverlap int
}

func NewDebateProcessor(store DebateStore, client DebateFetcher, chamberID string) *DebateProcessor {
	return &DebateProcessor{
		store:        store,
		client:       client,
		chamberID:    chamberID,
		chunkSize:    1000,
		chunkOverlap: 100,
	}
}

// Run ingests every debate section in the date window. Chunking is a
// separate pass; callers invoke ChunkPending when they want it.
func (p *DebateProcessor) Run(ctx context.Context, dateStart, dateEnd time.Time) (int, error) {
	records, err := p.client.FetchDebateRecords(ctx, p.chamberID, dateStart, dateEnd)
	if err != nil {
		return 0, fmt.Errorf("failed to fetch debate records: %w", err)
	}

	logger.Info("Fetched debate records", zap.Int("count", len(records)))

	stored := 0
	for _, record := range records {
		spokeAt, err := time.Parse("2006-01-02", record.Date)
		if err != nil {
			logger.Warn("Skipping debate record with bad date", zap.String("date", record.Date))
			continue
		}

		for _, sec := range record.DebateSections {
			section := sec.DebateSection
			if section.Formats.XML.URI == "" {
				continue
			}

			content, err := p.client.FetchSectionContent(ctx, section.Formats.XML.URI)
			if err != nil {
				// One unreachable transcript should not abort the whole window.
				logger.Warn("Failed to fetch section content",
					zap.String("section_id", section.DebateSectionID),
					zap.Error(err),
				)
				metrics.IngestRows.WithLabelValues("speech", "error").Inc()
				continue
			}

			speeches := parseSpeeches(content)
			for i, sp := range speeches {
				speech := &models.DebateSpeech{
					SectionID:   section.DebateSectionID,
					SpeechIndex: i,
					MemberCode:  sp.MemberCode,
					SpeakerName: sp.SpeakerName,
					DebateTitle: section.ShowAs,
					Chamber:     p.chamberID,
					Text:        sp.Text,
					SpokeAt:     spokeAt,
				}

				if err := p.store.UpsertSpeech(ctx, speech); err != nil {
					metrics.IngestRows.WithLabelValues("speech", "error").Inc()
					return stored, fmt.Errorf("failed to upsert speech %s/%d: %w", section.DebateSectionID, i, err)
				}
				metrics.IngestRows.WithLabelValues("speech", "ok").Inc()
				stored++
			}
		}
	}

	logger.Info("Debates ingested", zap.Int("speeches", stored))
	return stored, nil
}

// ChunkPending derives debate_chunks rows for speeches not yet chunked.
func (p *DebateProcessor) ChunkPending(ctx context.Context) error {
	const batch = 500

	for {
		speeches, err := p.store.ListUnchunkedSpeeches(ctx, batch)
		if err != nil {
			return fmt.Errorf("failed to list unchunked speeches: %w", err)
		}
		if len(speeches) == 0 {
			return nil
		}

		for _, speech := range speeches {
			chunks := chunkText(speech.Text, p.chunkSize, p.chunkOverlap)
			for i, text := range chunks {
				chunk := &models.DebateChunk{
					ID:         fmt.Sprintf("%s_%d_chunk_%d", speech.SectionID, speech.SpeechIndex, i),
					SectionID:  speech.SectionID,
					ChunkIndex: i,
					MemberCode: speech.MemberCode,
					Text:       text,
				}
				if err := p.store.InsertChunk(ctx, chunk); err != nil {
					return fmt.Errorf("failed to insert chunk: %w", err)
				}
			}

			if err := p.store.MarkSpeechChunked(ctx, speech.SectionID, speech.SpeechIndex); err != nil {
				return fmt.Errorf("failed to mark speech chunked: %w", err)
			}
		}

		if len(speeches) < batch {
			return nil
		}
	}
}

type parsedSpeech struct {
	MemberCode  string
	SpeakerName string
	Text        string
}

var whitespaceRE = regexp.MustCompile(`\s+`)

// parseSpeeches extracts speaker turns from an Akoma Ntoso debate document.
// Each <speech> element carries a by="#memberCode" attribute, a <from>
// element naming the speaker, and paragraph content.
func parseSpeeches(document string) []parsedSpeech {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(document))
	if err != nil {
		return nil
	}

	var speeches []parsedSpeech
	doc.Find("speech").Each(func(i int, s *goquery.Selection) {
		by, _ := s.Attr("by")
		memberCode := strings.TrimPrefix(by, "#")

		speakerName := strings.TrimSpace(s.Find("from").First().Text())

		var parts []string
		s.Find("p").Each(func(_ int, p *goquery.Selection) {
			if text := strings.TrimSpace(p.Text()); text != "" {
				parts = append(parts, text)
			}
		})

		text := whitespaceRE.ReplaceAllString(strings.Join(parts, " "), " ")
		text = strings.TrimSpace(text)
		if text == "" {
			return
		}

		speeches = append(speeches, parsedSpeech{
			MemberCode:  memberCode,
			SpeakerName: speakerName,
			Text:        text,
		})
	})

	return speeches
}

// chunkText splits text into chunks of roughly chunkSize characters on word
// boundaries, carrying a word overlap between consecutive chunks.
func chunkText(text string, chunkSize, chunkOverlap int) []string {
	words := strings.Fields(text)
	if len(words) == 0 {
		return nil
	}

	var chunks []string
	var current strings.Builder
	currentSize := 0

	for _, word := range words {
		wordLen := len(word) + 1

		if currentSize+wordLen > chunkSize && current.Len() > 0 {
			chunks = append(chunks, strings.TrimSpace(current.String()))

			overlapWords := strings.Fields(current.String())
			overlapStart := len(overlapWords) - chunkOverlap/10
			if overlapStart < 0 {
				overlapStart = 0
			}
			current.Reset()
			current.WriteString(strings.Join(overlapWords[overlapStart:], " ") + " ")
			currentSize = current.Len()
		}

		current.WriteString(word + " ")
		currentSize += wordLen
	}

	if current.Len() > 0 {
		chunks = append(chunks, strings.TrimSpace(current.String()))
	}

	return chunks
}
