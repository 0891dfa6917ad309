package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/glaspolitics/backend/internal/geo"
	"github.com/glaspolitics/backend/internal/storage/models"
)

type fakeStore struct {
	tds      []models.TDScore
	parties  []models.PartyPerformance
	byConst  map[string][]models.TDScore
	articles []models.NewsArticle
}

func (f *fakeStore) ListTDs(context.Context, bool) ([]models.TDScore, error) {
	return f.tds, nil
}

func (f *fakeStore) GetTD(_ context.Context, memberCode string) (*models.TDScore, error) {
	for i := range f.tds {
		if f.tds[i].MemberCode == memberCode {
			return &f.tds[i], nil
		}
	}
	return nil, nil
}

func (f *fakeStore) ListPartyPerformance(context.Context) ([]models.PartyPerformance, error) {
	return f.parties, nil
}

func (f *fakeStore) ListTDsByConstituency(_ context.Context, constituency string) ([]models.TDScore, error) {
	return f.byConst[constituency], nil
}

func (f *fakeStore) ListArticles(_ context.Context, limit int) ([]models.NewsArticle, error) {
	if limit > len(f.articles) {
		limit = len(f.articles)
	}
	return f.articles[:limit], nil
}

type fakeCache struct {
	data map[string][]byte
}

func newFakeCache() *fakeCache {
	return &fakeCache{data: make(map[string][]byte)}
}

func (f *fakeCache) GetJSON(_ context.Context, cacheType, key string, out interface{}) (bool, error) {
	raw, ok := f.data[cacheType+":"+key]
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(raw, out)
}

func (f *fakeCache) SetJSON(_ context.Context, cacheType, key string, payload interface{}, _ time.Duration) error {
	raw, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	f.data[cacheType+":"+key] = raw
	return nil
}

type fakeResolver struct {
	result geo.LookupResult
	found  bool
}

func (f *fakeResolver) Lookup(float64, float64) (geo.LookupResult, bool) {
	return f.result, f.found
}

type fakeGenerator struct {
	insight string
	err     error
	calls   int
}

func (f *fakeGenerator) GenerateInsight(context.Context, string, string, string) (string, error) {
	f.calls++
	return f.insight, f.err
}

func decodeBody(t *testing.T, resp *http.Response, out interface{}) {
	t.Helper()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("failed to read body: %v", err)
	}
	if err := json.Unmarshal(body, out); err != nil {
		t.Fatalf("failed to decode %s: %v", body, err)
	}
}

func sampleStore() *fakeStore {
	harris := models.TDScore{
		MemberCode: "Simon-Harris.D.2011-03-09", FullName: "Simon Harris",
		Party: "Fine Gael", Constituency: "Wicklow",
		Overall: 1620, Consistency: 1700, IsMinister: true, IsActive: true,
		QuestionsAsked: 12,
	}
	return &fakeStore{
		tds:     []models.TDScore{harris},
		parties: []models.PartyPerformance{{Party: "Fine Gael", Color: "#6699FF", MemberCount: 35, Overall: 1540}},
		byConst: map[string][]models.TDScore{"Wicklow": {harris}},
		articles: []models.NewsArticle{
			{URL: "http://example.com/a", Title: "Budget day", Source: "RTE News", Score: 9},
		},
	}
}

func TestWidgetScores(t *testing.T) {
	store := sampleStore()
	cache := newFakeCache()

	app := fiber.New()
	app.Get("/widget", NewScoresHandler(store, cache).HandleWidgetScores)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/widget", nil))
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}

	var payload widgetPayload
	decodeBody(t, resp, &payload)
	if len(payload.Top) != 1 || payload.Top[0].FullName != "Simon Harris" {
		t.Errorf("unexpected top TDs: %+v", payload.Top)
	}
	if len(payload.Bottom) != 0 {
		t.Errorf("unexpected bottom TDs: %+v", payload.Bottom)
	}
	if len(payload.Parties) != 1 || payload.Parties[0].Color != "#6699FF" {
		t.Errorf("unexpected parties: %+v", payload.Parties)
	}

	// Second request should come from the cache.
	if len(cache.data) != 1 {
		t.Errorf("cache holds %d entries, want 1", len(cache.data))
	}
	resp2, err := app.Test(httptest.NewRequest(http.MethodGet, "/widget", nil))
	if err != nil {
		t.Fatalf("second request failed: %v", err)
	}
	if resp2.StatusCode != http.StatusOK {
		t.Errorf("cached status = %d", resp2.StatusCode)
	}
}

func TestWidgetScoresSmallRosterDisjoint(t *testing.T) {
	tds := make([]models.TDScore, 7)
	for i := range tds {
		tds[i] = models.TDScore{
			MemberCode: fmt.Sprintf("TD-%d", i),
			FullName:   fmt.Sprintf("Deputy %d", i),
			Overall:    float64(1900 - 100*i),
			IsActive:   true,
		}
	}
	store := &fakeStore{tds: tds}

	app := fiber.New()
	app.Get("/widget", NewScoresHandler(store, nil).HandleWidgetScores)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/widget", nil))
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}

	var payload widgetPayload
	decodeBody(t, resp, &payload)
	if len(payload.Top) != 5 {
		t.Errorf("top holds %d TDs, want 5", len(payload.Top))
	}
	if len(payload.Bottom) != 2 {
		t.Errorf("bottom holds %d TDs, want 2", len(payload.Bottom))
	}

	seen := make(map[string]bool)
	for _, td := range payload.Top {
		seen[td.MemberCode] = true
	}
	for _, td := range payload.Bottom {
		if seen[td.MemberCode] {
			t.Errorf("TD %s appears in both top and bottom", td.MemberCode)
		}
	}
}

func TestGetTD(t *testing.T) {
	app := fiber.New()
	app.Get("/tds/:memberCode", NewScoresHandler(sampleStore(), nil).HandleGetTD)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/tds/Simon-Harris.D.2011-03-09", nil))
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}

	var body struct {
		TD       tdSummary      `json:"td"`
		Activity map[string]int `json:"activity"`
	}
	decodeBody(t, resp, &body)
	if body.TD.Party != "Fine Gael" {
		t.Errorf("party = %q", body.TD.Party)
	}
	if body.Activity["questions_asked"] != 12 {
		t.Errorf("questions_asked = %d", body.Activity["questions_asked"])
	}

	resp404, err := app.Test(httptest.NewRequest(http.MethodGet, "/tds/nobody", nil))
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if resp404.StatusCode != http.StatusNotFound {
		t.Errorf("missing TD status = %d, want 404", resp404.StatusCode)
	}
}

func TestConstituencyLookup(t *testing.T) {
	store := sampleStore()
	resolver := &fakeResolver{result: geo.LookupResult{Constituency: "Wicklow", SeatCount: 4}, found: true}

	app := fiber.New()
	app.Get("/location/constituency", NewLocationHandler(resolver, store).HandleConstituencyLookup)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/location/constituency?lat=52.98&lng=-6.04", nil))
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}

	var body struct {
		Constituency string      `json:"constituency"`
		SeatCount    int         `json:"seat_count"`
		TDs          []tdSummary `json:"tds"`
	}
	decodeBody(t, resp, &body)
	if body.Constituency != "Wicklow" || body.SeatCount != 4 {
		t.Errorf("unexpected constituency payload: %+v", body)
	}
	if len(body.TDs) != 1 {
		t.Errorf("returned %d TDs, want 1", len(body.TDs))
	}
}

func TestConstituencyLookupValidation(t *testing.T) {
	app := fiber.New()
	app.Get("/location/constituency",
		NewLocationHandler(&fakeResolver{}, sampleStore()).HandleConstituencyLookup)

	cases := []string{
		"/location/constituency",
		"/location/constituency?lat=abc&lng=-6.0",
		"/location/constituency?lat=48.85&lng=2.35",
		"/location/constituency?lat=53.35&lng=-20.0",
	}
	for _, target := range cases {
		resp, err := app.Test(httptest.NewRequest(http.MethodGet, target, nil))
		if err != nil {
			t.Fatalf("request failed: %v", err)
		}
		if resp.StatusCode != http.StatusBadRequest {
			t.Errorf("%s: status = %d, want 400", target, resp.StatusCode)
		}
	}
}

func TestConstituencyLookupMiss(t *testing.T) {
	app := fiber.New()
	app.Get("/location/constituency",
		NewLocationHandler(&fakeResolver{found: false}, sampleStore()).HandleConstituencyLookup)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/location/constituency?lat=53.35&lng=-6.26", nil))
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("status = %d, want 404", resp.StatusCode)
	}
}

func TestGenerateInsight(t *testing.T) {
	store := sampleStore()
	gen := &fakeGenerator{insight: "Your local TDs vote often."}
	cache := newFakeCache()

	app := fiber.New()
	app.Post("/personalized-insights", NewInsightsHandler(store, gen, cache).HandleGenerateInsight)

	body := `{"constituency":"Wicklow","answers":{"q1":2,"q2":-1}}`
	req := httptest.NewRequest(http.MethodPost, "/personalized-insights", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}

	var out insightResponse
	decodeBody(t, resp, &out)
	if out.Insight != "Your local TDs vote often." || out.Cached {
		t.Errorf("unexpected response: %+v", out)
	}

	// Same profile again: served from cache, no second LLM call.
	req2 := httptest.NewRequest(http.MethodPost, "/personalized-insights", bytes.NewBufferString(body))
	req2.Header.Set("Content-Type", "application/json")
	resp2, err := app.Test(req2)
	if err != nil {
		t.Fatalf("second request failed: %v", err)
	}
	var out2 insightResponse
	decodeBody(t, resp2, &out2)
	if !out2.Cached {
		t.Error("second identical request not served from cache")
	}
	if gen.calls != 1 {
		t.Errorf("generator called %d times, want 1", gen.calls)
	}
}

func TestGenerateInsightValidation(t *testing.T) {
	app := fiber.New()
	app.Post("/personalized-insights",
		NewInsightsHandler(sampleStore(), &fakeGenerator{}, nil).HandleGenerateInsight)

	cases := []string{
		`{}`,
		`{"constituency":"Wicklow"}`,
		`{"constituency":"Wicklow","answers":{"q1":7}}`,
	}
	for _, body := range cases {
		req := httptest.NewRequest(http.MethodPost, "/personalized-insights", bytes.NewBufferString(body))
		req.Header.Set("Content-Type", "application/json")
		resp, err := app.Test(req)
		if err != nil {
			t.Fatalf("request failed: %v", err)
		}
		if resp.StatusCode != http.StatusBadRequest {
			t.Errorf("%s: status = %d, want 400", body, resp.StatusCode)
		}
	}
}

func TestGenerateInsightLLMFailure(t *testing.T) {
	app := fiber.New()
	app.Post("/personalized-insights",
		NewInsightsHandler(sampleStore(), &fakeGenerator{err: errors.New("timeout")}, nil).HandleGenerateInsight)

	req := httptest.NewRequest(http.MethodPost, "/personalized-insights",
		bytes.NewBufferString(`{"constituency":"Wicklow","answers":{"q1":1}}`))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if resp.StatusCode != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want 503", resp.StatusCode)
	}
}

func TestListNews(t *testing.T) {
	app := fiber.New()
	app.Get("/news", NewNewsHandler(sampleStore()).HandleListNews)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/news?limit=5", nil))
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}

	var body struct {
		Articles []map[string]interface{} `json:"articles"`
	}
	decodeBody(t, resp, &body)
	if len(body.Articles) != 1 || body.Articles[0]["title"] != "Budget day" {
		t.Errorf("unexpected articles: %+v", body.Articles)
	}

	respBad, err := app.Test(httptest.NewRequest(http.MethodGet, "/news?limit=500", nil))
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if respBad.StatusCode != http.StatusBadRequest {
		t.Errorf("oversized limit status = %d, want 400", respBad.StatusCode)
	}

	var badBody struct {
		Error string `json:"error"`
	}
	decodeBody(t, respBad, &badBody)
	if want := fmt.Sprintf("limit must be between 1 and %d", maxNewsLimit); badBody.Error != want {
		t.Errorf("error = %q, want %q", badBody.Error, want)
	}
}
