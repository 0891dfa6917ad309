package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/glaspolitics/backend/internal/metrics"
	"github.com/glaspolitics/backend/pkg/circuitbreaker"
	"github.com/glaspolitics/backend/pkg/logger"
	"github.com/glaspolitics/backend/pkg/retry"
)

type Client struct {
	client      *openai.Client
	model       string
	temperature float32
	maxTokens   int
	timeout     time.Duration
	cb          *circuitbreaker.CircuitBreaker
	retryConfig retry.Config
}

type CompletionRequest struct {
	SystemPrompt string
	UserPrompt   string
	Temperature  float32
	MaxTokens    int
}

type CompletionResponse struct {
	Content string
	Usage   Usage
}

type Usage struct {
	PromptTokens     int
	CompletionTokens int
	TotalTokens      int
}

func NewClient(apiKey, model string, temperature float32, maxTokens, timeoutSec int) *Client {
	client := openai.NewClient(apiKey)

	cb := circuitbreaker.New("llm", circuitbreaker.Config{
		MaxRequests:      5,
		Interval:         time.Minute,
		Timeout:          30 * time.Second,
		FailureThreshold: 5,
		SuccessThreshold: 2,
		Logger:           logger.GetLogger(),
	})

	retryConfig := retry.Config{
		MaxAttempts:    3,
		InitialDelay:   500 * time.Millisecond,
		MaxDelay:       5 * time.Second,
		Multiplier:     2.0,
		JitterFraction: 0.1,
		Logger:         logger.GetLogger(),
	}

	if timeoutSec <= 0 {
		timeoutSec = 60
	}

	logger.Info("LLM client initialized", zap.String("model", model))

	return &Client{
		client:      client,
		model:       model,
		temperature: temperature,
		maxTokens:   maxTokens,
		timeout:     time.Duration(timeoutSec) * time.Second,
		cb:          cb,
		retryConfig: retryConfig,
	}
}

func (c *Client) Complete(ctx context.Context, req CompletionRequest) (*CompletionResponse, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	temperature := req.Temperature
	if temperature == 0 {
		temperature = c.temperature
	}

	maxTokens := req.MaxTokens
	if maxTokens == 0 {
		maxTokens = c.maxTokens
	}

	messages := []openai.ChatCompletionMessage{
		{
			Role:    openai.ChatMessageRoleSystem,
			Content: req.SystemPrompt,
		},
		{
			Role:    openai.ChatMessageRoleUser,
			Content: req.UserPrompt,
		},
	}

	var result *CompletionResponse

	err := c.cb.Execute(ctx, func() error {
		return retry.Do(ctx, c.retryConfig, func() error {
			resp, err := c.client.CreateChatCompletion(
				ctx,
				openai.ChatCompletionRequest{
					Model:       c.model,
					Messages:    messages,
					Temperature: temperature,
					MaxTokens:   maxTokens,
				},
			)

			if err != nil {
				return fmt.Errorf("failed to create completion: %w", err)
			}

			logger.Debug("LLM completion generated",
				zap.Int("prompt_tokens", resp.Usage.PromptTokens),
				zap.Int("completion_tokens", resp.Usage.CompletionTokens),
			)

			metrics.LLMTokensUsed.WithLabelValues("prompt").Add(float64(resp.Usage.PromptTokens))
			metrics.LLMTokensUsed.WithLabelValues("completion").Add(float64(resp.Usage.CompletionTokens))

			result = &CompletionResponse{
				Content: resp.Choices[0].Message.Content,
				Usage: Usage{
					PromptTokens:     resp.Usage.PromptTokens,
					CompletionTokens: resp.Usage.CompletionTokens,
					TotalTokens:      resp.Usage.TotalTokens,
				},
			}

			return nil
		})
	})

	if err != nil {
		return nil, err
	}

	return result, nil
}

type ArticleScore struct {
	Score   float64 `json:"score"`
	Summary string  `json:"summary"`
}

// ScoreArticle rates an article's relevance to Irish politics on a 0-10
// scale and produces a two-sentence summary.
func (c *Client) ScoreArticle(ctx context.Context, title, content string) (*ArticleScore, error) {
	systemPrompt := `You are an editor for an Irish civic-accountability site. Rate news articles for relevance to Irish national politics.

Scoring guide (0-10):
- 9-10: directly about the Oireachtas, government policy, TDs, or elections
- 6-8: Irish public affairs with clear political dimension
- 3-5: tangentially political (business, courts, local interest)
- 0-2: not about Irish politics

Return JSON only:
{"score": 7.5, "summary": "two sentence neutral summary"}`

	if len(content) > 8000 {
		content = content[:8000] + "..."
	}

	userPrompt := fmt.Sprintf("Title: %s\n\nArticle:\n%s", title, content)

	resp, err := c.Complete(ctx, CompletionRequest{
		SystemPrompt: systemPrompt,
		UserPrompt:   userPrompt,
		Temperature:  0.2,
		MaxTokens:    400,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to score article: %w", err)
	}

	var score ArticleScore
	if err := decodeJSONResponse(resp.Content, &score); err != nil {
		return nil, fmt.Errorf("failed to parse article score: %w", err)
	}

	logger.Debug("Article scored", zap.String("title", title), zap.Float64("score", score.Score))
	return &score, nil
}

type TopicExtraction struct {
	Topic      string  `json:"topic"`
	Confidence float64 `json:"confidence"`
}

// ExtractTopics names the policy topics discussed in a debate section.
func (c *Client) ExtractTopics(ctx context.Context, debateTitle, transcript string) ([]TopicExtraction, error) {
	systemPrompt := `You are an analyst of Irish parliamentary debates. Extract the policy topics discussed in a Dail debate section.

Use short canonical topic names (e.g. "Housing", "Health Service", "Immigration", "Climate Policy", "Cost of Living").
Return at most 5 topics as a JSON array:
[{"topic": "Housing", "confidence": 0.9}]`

	if len(transcript) > 8000 {
		transcript = transcript[:8000] + "..."
	}

	userPrompt := fmt.Sprintf("Debate section: %s\n\nTranscript:\n%s\n\nReturn JSON only.", debateTitle, transcript)

	resp, err := c.Complete(ctx, CompletionRequest{
		SystemPrompt: systemPrompt,
		UserPrompt:   userPrompt,
		Temperature:  0.2,
		MaxTokens:    300,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to extract topics: %w", err)
	}

	var topics []TopicExtraction
	if err := decodeJSONResponse(resp.Content, &topics); err != nil {
		return nil, fmt.Errorf("failed to parse topics: %w", err)
	}

	logger.Debug("Topics extracted", zap.String("section", debateTitle), zap.Int("count", len(topics)))
	return topics, nil
}

// GenerateInsight writes a short personalized explanation of how the user's
// compass answers relate to their constituency's TDs and parties.
func (c *Client) GenerateInsight(ctx context.Context, answersSummary, constituency, scoresContext string) (string, error) {
	systemPrompt := `You are a neutral civic-information assistant for Irish voters.

Given a user's political-compass answers and the scorecards of the TDs in their constituency, write 2-3 short paragraphs explaining:
1. Which of their local TDs' records align with the issues they care about
2. How their constituency's parties compare on those dimensions

Rules: be factual and balanced, cite only the scores provided, never tell the user how to vote.`

	userPrompt := fmt.Sprintf(`User's compass answers:
%s

Constituency: %s

Scorecards:
%s`, answersSummary, constituency, scoresContext)

	resp, err := c.Complete(ctx, CompletionRequest{
		SystemPrompt: systemPrompt,
		UserPrompt:   userPrompt,
		Temperature:  0.4,
		MaxTokens:    700,
	})
	if err != nil {
		return "", fmt.Errorf("failed to generate insight: %w", err)
	}

	return strings.TrimSpace(resp.Content), nil
}

// decodeJSONResponse tolerates markdown code fences around the model's JSON.
func decodeJSONResponse(content string, out any) error {
	cleaned := strings.TrimSpace(content)
	if strings.HasPrefix(cleaned, "```") {
		cleaned = strings.TrimPrefix(cleaned, "```json")
		cleaned = strings.TrimPrefix(cleaned, "```")
		if idx := strings.LastIndex(cleaned, "```"); idx >= 0 {
			cleaned = cleaned[:idx]
		}
		cleaned = strings.TrimSpace(cleaned)
	}
	return json.Unmarshal([]byte(cleaned), out)
}
