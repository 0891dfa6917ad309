package scoring

// ELO-style scorecards. Each dimension is a normalized activity measure
// mapped onto the 1000-2000 band; the overall rating is a fixed-weight
// blend. The weights and caps are product configuration, reviewed with the
// editorial team, not derived quantities.

const (
	ScoreFloor   = 1000.0
	ScoreCeiling = 2000.0

	weightEffectiveness = 0.30
	weightConsistency   = 0.25
	weightTransparency  = 0.20
	weightIntegrity     = 0.15
	weightService       = 0.10

	// Activity caps: the observed value at which a dimension saturates.
	capBillsSponsored = 5.0
	capDebatesJoined  = 20.0
	capQuestionsAsked = 150.0
	capTopicsCovered  = 15.0
	capSpeechesGiven  = 100.0
)

type ActivityStats struct {
	QuestionsAsked int
	BillsSponsored int
	VotesCast      int
	VotesEligible  int
	SpeechCount    int
	WordCount      int
	DebateCount    int
	TopicCount     int
}

type Scores struct {
	Overall       float64
	Transparency  float64
	Effectiveness float64
	Integrity     float64
	Consistency   float64
	Service       float64
}

// ComputeScores maps raw activity counters to the six scorecard dimensions.
// A TD with no eligible votes gets a neutral attendance rather than a zero,
// so newly elected members do not start at the floor.
func ComputeScores(stats ActivityStats) Scores {
	attendance := 0.5
	if stats.VotesEligible > 0 {
		attendance = float64(stats.VotesCast) / float64(stats.VotesEligible)
	}

	effectiveness := 0.6*capped(stats.BillsSponsored, capBillsSponsored) +
		0.4*capped(stats.DebateCount, capDebatesJoined)
	consistency := attendance
	transparency := capped(stats.TopicCount, capTopicsCovered)
	integrity := 0.7*attendance + 0.3*capped(stats.SpeechCount, capSpeechesGiven)
	service := capped(stats.QuestionsAsked, capQuestionsAsked)

	overall := weightEffectiveness*effectiveness +
		weightConsistency*consistency +
		weightTransparency*transparency +
		weightIntegrity*integrity +
		weightService*service

	return Scores{
		Overall:       toBand(overall),
		Transparency:  toBand(transparency),
		Effectiveness: toBand(effectiveness),
		Integrity:     toBand(integrity),
		Consistency:   toBand(consistency),
		Service:       toBand(service),
	}
}

func capped(value int, cap float64) float64 {
	if value <= 0 {
		return 0
	}
	v := float64(value) / cap
	if v > 1 {
		return 1
	}
	return v
}

func toBand(normalized float64) float64 {
	score := ScoreFloor + (ScoreCeiling-ScoreFloor)*normalized
	if score < ScoreFloor {
		return ScoreFloor
	}
	if score > ScoreCeiling {
		return ScoreCeiling
	}
	return score
}

// OverallWeights exposes the blend for callers that aggregate party scores
// the same way.
func OverallWeights() (effectiveness, consistency, transparency, integrity, service float64) {
	return weightEffectiveness, weightConsistency, weightTransparency, weightIntegrity, weightService
}
