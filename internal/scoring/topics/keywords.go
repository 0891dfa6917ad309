package topics

import (
	"sort"
	"strings"

	"github.com/jdkato/prose/v2"
)

// stopwords that dominate Dail transcripts but carry no topical signal.
var debateStopwords = map[string]bool{
	"deputy": true, "deputies": true, "minister": true, "ministers": true,
	"ceann": true, "comhairle": true, "cathaoirleach": true, "taoiseach": true,
	"tanaiste": true, "government": true, "house": true, "dail": true,
	"eireann": true, "ireland": true, "irish": true, "state": true,
	"bill": true, "amendment": true, "amendments": true, "section": true,
	"question": true, "questions": true, "debate": true, "motion": true,
	"time": true, "people": true, "year": true, "years": true, "number": true,
	"way": true, "matter": true, "issue": true, "issues": true, "point": true,
	"member": true, "members": true, "today": true, "week": true, "day": true,
	"thing": true, "things": true, "terms": true, "regard": true, "respect": true,
}

type keywordCandidate struct {
	topic string
	count int
}

// ExtractKeywords derives topic candidates from a transcript using
// part-of-speech tagging: it counts noun lemmas, drops procedural
// vocabulary, and returns the most frequent survivors title-cased.
// Confidence scales with how often a noun recurs relative to the leader.
func ExtractKeywords(text string, maxTopics int) ([]Topic, error) {
	doc, err := prose.NewDocument(text)
	if err != nil {
		return nil, err
	}

	counts := make(map[string]int)
	for _, tok := range doc.Tokens() {
		switch tok.Tag {
		case "NN", "NNS", "NNP", "NNPS":
		default:
			continue
		}
		word := strings.ToLower(strings.Trim(tok.Text, ".,;:!?'\"()"))
		if len(word) < 4 || debateStopwords[word] {
			continue
		}
		counts[singular(word)]++
	}

	candidates := make([]keywordCandidate, 0, len(counts))
	for word, n := range counts {
		if n < 2 {
			continue
		}
		candidates = append(candidates, keywordCandidate{topic: word, count: n})
	}
	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].count != candidates[j].count {
			return candidates[i].count > candidates[j].count
		}
		return candidates[i].topic < candidates[j].topic
	})

	if maxTopics > 0 && len(candidates) > maxTopics {
		candidates = candidates[:maxTopics]
	}
	if len(candidates) == 0 {
		return nil, nil
	}

	leader := float64(candidates[0].count)
	result := make([]Topic, 0, len(candidates))
	for _, c := range candidates {
		result = append(result, Topic{
			Name:       titleCase(c.topic),
			Confidence: 0.3 + 0.4*float64(c.count)/leader,
		})
	}
	return result, nil
}

// singular collapses the common plural so "hospitals" and "hospital"
// count as one topic. Irregular plurals are left alone.
func singular(word string) string {
	switch {
	case strings.HasSuffix(word, "ies") && len(word) > 4:
		return word[:len(word)-3] + "y"
	case strings.HasSuffix(word, "ses"), strings.HasSuffix(word, "xes"):
		return word[:len(word)-2]
	case strings.HasSuffix(word, "s") && !strings.HasSuffix(word, "ss"):
		return word[:len(word)-1]
	}
	return word
}

func titleCase(word string) string {
	if word == "" {
		return word
	}
	return strings.ToUpper(word[:1]) + word[1:]
}
