package ingestion

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/glaspolitics/backend/internal/oireachtas"
	"github.com/glaspolitics/backend/internal/storage/models"
)

type engagement struct {
	questions int
	bills     int
}

type fakeActivityStore struct {
	tds     []models.TDScore
	written map[string]engagement
	listErr error
}

func (f *fakeActivityStore) ListTDs(_ context.Context, _ bool) ([]models.TDScore, error) {
	return f.tds, f.listErr
}

func (f *fakeActivityStore) UpdateTDEngagement(_ context.Context, memberCode string, questionsAsked, billsSponsored int) error {
	if f.written == nil {
		f.written = make(map[string]engagement)
	}
	f.written[memberCode] = engagement{questions: questionsAsked, bills: billsSponsored}
	return nil
}

type fakeActivityFetcher struct {
	questions []oireachtas.Question
	bills     []oireachtas.Bill
}

func (f *fakeActivityFetcher) FetchQuestions(_ context.Context, _ time.Time) ([]oireachtas.Question, error) {
	return f.questions, nil
}

func (f *fakeActivityFetcher) FetchBills(_ context.Context, _ time.Time) ([]oireachtas.Bill, error) {
	return f.bills, nil
}

func questionBy(uri string) oireachtas.Question {
	var q oireachtas.Question
	q.By.URI = uri
	return q
}

func billSponsoredBy(t *testing.T, uris ...string) oireachtas.Bill {
	t.Helper()

	sponsors := make([]map[string]any, 0, len(uris))
	for _, uri := range uris {
		sponsors = append(sponsors, map[string]any{
			"sponsor": map[string]any{"by": map[string]any{"uri": uri}},
		})
	}
	raw, err := json.Marshal(map[string]any{"sponsors": sponsors})
	if err != nil {
		t.Fatalf("marshal bill fixture: %v", err)
	}

	var b oireachtas.Bill
	if err := json.Unmarshal(raw, &b); err != nil {
		t.Fatalf("unmarshal bill fixture: %v", err)
	}
	return b
}

func TestActivityProcessorRunCountsPerMember(t *testing.T) {
	store := &fakeActivityStore{
		tds: []models.TDScore{
			{MemberCode: "Simon-Harris.D.2011-03-09"},
			{MemberCode: "Mary-Lou-McDonald.D.2011-03-09"},
		},
	}
	fetcher := &fakeActivityFetcher{
		questions: []oireachtas.Question{
			questionBy("/ie/oireachtas/member/id/Simon-Harris.D.2011-03-09"),
			questionBy("/ie/oireachtas/member/id/Simon-Harris.D.2011-03-09"),
			questionBy(""),
		},
		bills: []oireachtas.Bill{
			billSponsoredBy(t, "/ie/oireachtas/member/id/Mary-Lou-McDonald.D.2011-03-09"),
		},
	}

	p := NewActivityProcessor(store, fetcher)
	updated, err := p.Run(context.Background(), time.Now().AddDate(0, 0, -365))
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if updated != 2 {
		t.Errorf("updated = %d, want 2", updated)
	}

	harris := store.written["Simon-Harris.D.2011-03-09"]
	if harris.questions != 2 || harris.bills != 0 {
		t.Errorf("harris engagement = %+v", harris)
	}

	mcdonald := store.written["Mary-Lou-McDonald.D.2011-03-09"]
	if mcdonald.questions != 0 || mcdonald.bills != 1 {
		t.Errorf("mcdonald engagement = %+v", mcdonald)
	}
}

func TestActivityProcessorRunZeroesIdleMembers(t *testing.T) {
	store := &fakeActivityStore{
		tds: []models.TDScore{{MemberCode: "Idle-TD.D.2020-02-08"}},
	}

	p := NewActivityProcessor(store, &fakeActivityFetcher{})
	if _, err := p.Run(context.Background(), time.Now().AddDate(0, 0, -30)); err != nil {
		t.Fatalf("Run: %v", err)
	}

	e, ok := store.written["Idle-TD.D.2020-02-08"]
	if !ok {
		t.Fatal("idle TD was not written")
	}
	if e.questions != 0 || e.bills != 0 {
		t.Errorf("idle engagement = %+v", e)
	}
}

func TestActivityProcessorRunPropagatesListError(t *testing.T) {
	store := &fakeActivityStore{listErr: errors.New("db down")}

	p := NewActivityProcessor(store, &fakeActivityFetcher{})
	if _, err := p.Run(context.Background(), time.Now()); err == nil {
		t.Fatal("expected error")
	}
}
