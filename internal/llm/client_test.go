package llm

import "testing"

func TestDecodeJSONResponsePlain(t *testing.T) {
	var score ArticleScore
	err := decodeJSONResponse(`{"score": 8.5, "summary": "A summary."}`, &score)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if score.Score != 8.5 || score.Summary != "A summary." {
		t.Errorf("unexpected result: %+v", score)
	}
}

func TestDecodeJSONResponseFenced(t *testing.T) {
	content := "```json\n[{\"topic\": \"Housing\", \"confidence\": 0.9}]\n```"

	var topics []TopicExtraction
	if err := decodeJSONResponse(content, &topics); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(topics) != 1 || topics[0].Topic != "Housing" {
		t.Errorf("unexpected result: %+v", topics)
	}
}

func TestDecodeJSONResponseBareFence(t *testing.T) {
	content := "```\n{\"score\": 3, \"summary\": \"s\"}\n```"

	var score ArticleScore
	if err := decodeJSONResponse(content, &score); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if score.Score != 3 {
		t.Errorf("unexpected score: %v", score.Score)
	}
}

func TestDecodeJSONResponseInvalid(t *testing.T) {
	var score ArticleScore
	if err := decodeJSONResponse("not json at all", &score); err == nil {
		t.Fatal("expected error")
	}
}
