package scoring

import (
	"math"
	"testing"
)

func TestOverallWeightsSumToOne(t *testing.T) {
	e, c, tr, i, s := OverallWeights()
	if sum := e + c + tr + i + s; math.Abs(sum-1.0) > 1e-9 {
		t.Errorf("weights sum to %f, want 1.0", sum)
	}
}

func TestComputeScoresStayInBand(t *testing.T) {
	cases := []struct {
		name  string
		stats ActivityStats
	}{
		{"zero activity", ActivityStats{}},
		{"typical", ActivityStats{
			QuestionsAsked: 40, BillsSponsored: 2,
			VotesCast: 80, VotesEligible: 100,
			SpeechCount: 30, DebateCount: 12, TopicCount: 8,
		}},
		{"hyperactive", ActivityStats{
			QuestionsAsked: 10000, BillsSponsored: 100,
			VotesCast: 500, VotesEligible: 500,
			SpeechCount: 5000, DebateCount: 400, TopicCount: 200,
		}},
		{"negative counters clamp", ActivityStats{
			QuestionsAsked: -5, BillsSponsored: -1,
			VotesCast: 0, VotesEligible: 10,
		}},
	}

	for _, tc := range cases {
		scores := ComputeScores(tc.stats)
		for name, v := range map[string]float64{
			"overall":       scores.Overall,
			"transparency":  scores.Transparency,
			"effectiveness": scores.Effectiveness,
			"integrity":     scores.Integrity,
			"consistency":   scores.Consistency,
			"service":       scores.Service,
		} {
			if v < ScoreFloor || v > ScoreCeiling {
				t.Errorf("%s: %s = %f outside [%f, %f]", tc.name, name, v, ScoreFloor, ScoreCeiling)
			}
		}
	}
}

func TestComputeScoresFullActivityHitsCeiling(t *testing.T) {
	scores := ComputeScores(ActivityStats{
		QuestionsAsked: 150, BillsSponsored: 5,
		VotesCast: 100, VotesEligible: 100,
		SpeechCount: 100, DebateCount: 20, TopicCount: 15,
	})

	if math.Abs(scores.Overall-ScoreCeiling) > 1e-6 {
		t.Errorf("full activity overall = %f, want %f", scores.Overall, ScoreCeiling)
	}
}

func TestComputeScoresNoVotesIsNeutralNotFloor(t *testing.T) {
	scores := ComputeScores(ActivityStats{})
	if math.Abs(scores.Consistency-1500) > 1e-6 {
		t.Errorf("new TD consistency = %f, want neutral 1500", scores.Consistency)
	}
}

func TestComputeScoresPartialAttendanceIsFractional(t *testing.T) {
	cases := []struct {
		cast, eligible int
		want           float64
	}{
		{30, 120, 1250},
		{45, 90, 1500},
		{90, 120, 1750},
	}
	for _, tc := range cases {
		scores := ComputeScores(ActivityStats{VotesCast: tc.cast, VotesEligible: tc.eligible})
		if math.Abs(scores.Consistency-tc.want) > 1e-6 {
			t.Errorf("consistency(%d/%d) = %f, want %f", tc.cast, tc.eligible, scores.Consistency, tc.want)
		}
	}
}

func TestComputeScoresMonotonicInAttendance(t *testing.T) {
	low := ComputeScores(ActivityStats{VotesCast: 20, VotesEligible: 100})
	high := ComputeScores(ActivityStats{VotesCast: 90, VotesEligible: 100})

	if high.Consistency <= low.Consistency {
		t.Errorf("consistency not monotonic: %f vs %f", low.Consistency, high.Consistency)
	}
	if high.Overall <= low.Overall {
		t.Errorf("overall not monotonic: %f vs %f", low.Overall, high.Overall)
	}
}
