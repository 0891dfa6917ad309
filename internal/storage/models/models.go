package models

import "time"

// TDScore is the canonical per-TD row. Score columns hold ELO-style ratings
// in the 1000-2000 band recomputed by the scoring jobs.
type TDScore struct {
	MemberCode     string
	FullName       string
	Party          string
	Constituency   string
	ImageURL       string
	WikipediaTitle string
	IsMinister     bool
	IsActive       bool

	Overall       float64
	Transparency  float64
	Effectiveness float64
	Integrity     float64
	Consistency   float64
	Service       float64

	QuestionsAsked int
	BillsSponsored int
	VotesCast      int
	VotesEligible  int
	SpeechCount    int

	CreatedAt time.Time
	UpdatedAt time.Time
}

type TDVote struct {
	DivisionID string
	MemberCode string
	Subject    string
	VotedAs    string
	Chamber    string
	VotedAt    time.Time
	CreatedAt  time.Time
}

// TDDebateMetrics is a per-TD, per-period row derived from debate_speeches.
type TDDebateMetrics struct {
	MemberCode  string
	PeriodStart time.Time
	PeriodEnd   time.Time
	SpeechCount int
	WordCount   int
	DebateCount int
	TopicCount  int
	UpdatedAt   time.Time
}

type DebateSpeech struct {
	SectionID   string
	SpeechIndex int
	MemberCode  string
	SpeakerName string
	DebateTitle string
	Chamber     string
	Text        string
	SpokeAt     time.Time
	Chunked     bool
	CreatedAt   time.Time
}

type DebateChunk struct {
	ID         string
	SectionID  string
	ChunkIndex int
	MemberCode string
	Text       string
	CreatedAt  time.Time
}

type DebateTopic struct {
	SectionID  string
	Topic      string
	Method     string
	Confidence float64
	CreatedAt  time.Time
}

type PartyPerformance struct {
	Party         string
	Color         string
	MemberCount   int
	Overall       float64
	Transparency  float64
	Effectiveness float64
	Integrity     float64
	Consistency   float64
	Service       float64
	UpdatedAt     time.Time
}

type Constituency struct {
	Name      string
	SeatCount int
	// VoteShares maps party name to first-preference percentage.
	VoteShares map[string]float64
	// BoundaryGeoJSON is a WGS84 Polygon or MultiPolygon geometry document.
	BoundaryGeoJSON []byte
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

type NewsSource struct {
	ID        int
	Name      string
	FeedURL   string
	Enabled   bool
	CreatedAt time.Time
}

type NewsArticle struct {
	ID          string
	URL         string
	Title       string
	Source      string
	Summary     string
	Content     string
	Score       float64
	PublishedAt time.Time
	CreatedAt   time.Time
}
