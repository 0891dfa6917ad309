package topics

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/glaspolitics/backend/internal/llm"
	"github.com/glaspolitics/backend/internal/storage/models"
	"github.com/glaspolitics/backend/internal/storage/postgres"
)

type fakeTopicStore struct {
	sections []postgres.SectionSample
	topics   []*models.DebateTopic
}

func (f *fakeTopicStore) SectionsWithoutTopics(context.Context, int) ([]postgres.SectionSample, error) {
	return f.sections, nil
}

func (f *fakeTopicStore) UpsertTopic(_ context.Context, topic *models.DebateTopic) error {
	f.topics = append(f.topics, topic)
	return nil
}

type fakeLabeler struct {
	topics []llm.TopicExtraction
	err    error
	calls  int
}

func (f *fakeLabeler) ExtractTopics(context.Context, string, string) ([]llm.TopicExtraction, error) {
	f.calls++
	return f.topics, f.err
}

func TestExtractorUsesLLMWhenAvailable(t *testing.T) {
	store := &fakeTopicStore{
		sections: []postgres.SectionSample{
			{SectionID: "2026-01-14_12", Title: "Housing Policy", Text: "transcript"},
		},
	}
	labeler := &fakeLabeler{topics: []llm.TopicExtraction{
		{Topic: "Housing", Confidence: 0.9},
		{Topic: "", Confidence: 0.5},
		{Topic: "Homelessness", Confidence: 0.7},
	}}

	n, err := NewExtractor(store, labeler).Run(context.Background(), 10)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if n != 1 {
		t.Errorf("labelled %d sections, want 1", n)
	}
	if len(store.topics) != 2 {
		t.Fatalf("stored %d topics, want 2 (empty label dropped)", len(store.topics))
	}
	for _, topic := range store.topics {
		if topic.Method != MethodLLM {
			t.Errorf("topic method = %q, want %q", topic.Method, MethodLLM)
		}
		if topic.SectionID != "2026-01-14_12" {
			t.Errorf("topic section = %q", topic.SectionID)
		}
	}
}

func TestExtractorFallsBackToKeywords(t *testing.T) {
	transcript := strings.Repeat("The housing crisis worsens. Housing waiting lists grow. ", 4) +
		strings.Repeat("Hospital beds are scarce and every hospital is at capacity. ", 3)

	store := &fakeTopicStore{
		sections: []postgres.SectionSample{
			{SectionID: "2026-01-14_13", Title: "Topical Issues", Text: transcript},
		},
	}
	labeler := &fakeLabeler{err: errors.New("rate limited")}

	n, err := NewExtractor(store, labeler).Run(context.Background(), 10)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if labeler.calls != 1 {
		t.Errorf("labeler called %d times, want 1", labeler.calls)
	}
	if n != 1 {
		t.Fatalf("labelled %d sections, want 1", n)
	}

	found := map[string]bool{}
	for _, topic := range store.topics {
		if topic.Method != MethodKeyword {
			t.Errorf("fallback topic method = %q, want %q", topic.Method, MethodKeyword)
		}
		if topic.Confidence <= 0 || topic.Confidence > 1 {
			t.Errorf("confidence %f out of range", topic.Confidence)
		}
		found[topic.Topic] = true
	}
	if !found["Housing"] {
		t.Errorf("expected Housing among fallback topics, got %v", found)
	}
}

func TestExtractKeywords(t *testing.T) {
	text := strings.Repeat("The hospital waiting lists keep growing and the hospital budget shrinks. ", 3) +
		"The Minister noted the Deputy's question about nurses and nurses again."

	topics, err := ExtractKeywords(text, 5)
	if err != nil {
		t.Fatalf("ExtractKeywords failed: %v", err)
	}
	if len(topics) == 0 {
		t.Fatal("expected at least one keyword topic")
	}
	if topics[0].Name != "Hospital" {
		t.Errorf("top topic = %q, want Hospital", topics[0].Name)
	}
	for _, topic := range topics {
		lower := strings.ToLower(topic.Name)
		if debateStopwords[lower] {
			t.Errorf("stopword %q leaked into topics", topic.Name)
		}
	}
}

func TestExtractKeywordsEmptyText(t *testing.T) {
	topics, err := ExtractKeywords("", 5)
	if err != nil {
		t.Fatalf("ExtractKeywords on empty text: %v", err)
	}
	if len(topics) != 0 {
		t.Errorf("expected no topics, got %v", topics)
	}
}

func TestSingular(t *testing.T) {
	cases := map[string]string{
		"hospitals": "hospital",
		"policies":  "policy",
		"buses":     "bus",
		"taxes":     "tax",
		"business":  "business",
		"homeless":  "homeless",
		"housing":   "housing",
	}
	for in, want := range cases {
		if got := singular(in); got != want {
			t.Errorf("singular(%q) = %q, want %q", in, got, want)
		}
	}
}
