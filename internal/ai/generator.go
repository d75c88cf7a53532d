package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/coursemate/coursemate-api/internal/models"
)

// Generator produces a multiple-choice question set from source text.
// Implementations must return questions with exactly four choices and a
// 0-based correct index.
type Generator interface {
	GenerateQuiz(ctx context.Context, sourceText string, n int, difficulty models.Difficulty) ([]models.Question, error)
}

// OpenAIGenerator implements Generator over an OpenAI-compatible API.
type OpenAIGenerator struct {
	api        *openai.Client
	model      string
	maxRetries int
	logger     *zap.Logger
}

// NewOpenAIGenerator creates a generator client. An empty baseURL uses the
// default OpenAI endpoint.
func NewOpenAIGenerator(baseURL, apiKey, model string, maxRetries int, logger *zap.Logger) *OpenAIGenerator {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	if maxRetries < 0 {
		maxRetries = 0
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &OpenAIGenerator{
		api:        openai.NewClientWithConfig(cfg),
		model:      model,
		maxRetries: maxRetries,
		logger:     logger,
	}
}

const systemPrompt = "You are an expert educational content creator. Generate quiz questions in valid JSON format only. Do not include any explanatory text outside the JSON."

// GenerateQuiz sends the source text with the instruction template and parses
// the response into a validated question set. Retries transient failures with
// exponential backoff.
func (g *OpenAIGenerator) GenerateQuiz(ctx context.Context, sourceText string, n int, difficulty models.Difficulty) ([]models.Question, error) {
	prompt := buildPrompt(sourceText, n, difficulty)

	var lastErr error
	for attempt := 0; attempt <= g.maxRetries; attempt++ {
		if attempt > 0 {
			backoff := time.Duration(1<<(attempt-1)) * time.Second
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(backoff):
			}
		}

		questions, err := g.complete(ctx, prompt)
		if err == nil {
			return questions, nil
		}
		lastErr = err
		g.logger.Warn("quiz generation attempt failed",
			zap.Int("attempt", attempt+1),
			zap.Error(err))
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
	}
	return nil, fmt.Errorf("generate quiz after %d attempts: %w", g.maxRetries+1, lastErr)
}

func (g *OpenAIGenerator) complete(ctx context.Context, prompt string) ([]models.Question, error) {
	resp, err := g.api.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: g.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		Temperature: 0.7,
		MaxTokens:   2000,
	})
	if err != nil {
		return nil, fmt.Errorf("chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("model returned no choices")
	}

	questions, err := parseQuestions(resp.Choices[0].Message.Content)
	if err != nil {
		return nil, err
	}
	if len(questions) == 0 {
		return nil, fmt.Errorf("model returned no usable questions")
	}
	return questions, nil
}

var difficultyInstructions = map[models.Difficulty]string{
	models.DifficultyEasy:   "Focus on basic recall and understanding. Questions should test fundamental concepts and definitions.",
	models.DifficultyMedium: "Include application and analysis questions. Test understanding and ability to apply concepts.",
	models.DifficultyHard:   "Require critical thinking and problem-solving. Include complex scenarios and multi-step reasoning.",
}

// buildPrompt assembles the instruction template around the source text. The
// caller truncates the text to its prompt budget before it gets here.
func buildPrompt(sourceText string, n int, difficulty models.Difficulty) string {
	instruction, ok := difficultyInstructions[difficulty]
	if !ok {
		instruction = difficultyInstructions[models.DifficultyMedium]
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Based on the following educational content, generate %d multiple-choice quiz questions at %s difficulty level.\n\n", n, difficulty)
	sb.WriteString(instruction)
	sb.WriteString("\n\nContent:\n")
	sb.WriteString(sourceText)
	sb.WriteString("\n\nGenerate questions in the following JSON format ONLY. Do not include any text outside the JSON array:\n\n")
	sb.WriteString(`[
  {
    "question": "Question text here?",
    "choices": ["Choice A", "Choice B", "Choice C", "Choice D"],
    "answer": 0,
    "explanation": "Detailed explanation of why this answer is correct"
  }
]`)
	sb.WriteString("\n\nRequirements:\n")
	fmt.Fprintf(&sb, "- Generate exactly %d questions\n", n)
	sb.WriteString("- Each question must have exactly 4 choices\n")
	sb.WriteString("- Answer index is 0-based (0, 1, 2, or 3)\n")
	sb.WriteString("- Include clear, educational explanations\n")
	sb.WriteString("- Questions must be based on the provided content\n")
	fmt.Fprintf(&sb, "- Ensure questions are appropriate for %s level\n", difficulty)
	sb.WriteString("\nReturn ONLY the JSON array, no other text.\n")
	return sb.String()
}

// wireQuestion is the JSON shape the model is asked to produce.
type wireQuestion struct {
	Question    string   `json:"question"`
	Choices     []string `json:"choices"`
	Answer      *int     `json:"answer"`
	Explanation string   `json:"explanation"`
}

// parseQuestions tolerates markdown fencing and stray prose around the JSON
// array, then validates each question against the structural contract.
func parseQuestions(content string) ([]models.Question, error) {
	content = stripFences(content)

	var wire []wireQuestion
	if err := json.Unmarshal([]byte(content), &wire); err != nil {
		start := strings.Index(content, "[")
		end := strings.LastIndex(content, "]")
		if start == -1 || end == -1 || end <= start {
			return nil, fmt.Errorf("no JSON array in model response")
		}
		if err := json.Unmarshal([]byte(content[start:end+1]), &wire); err != nil {
			return nil, fmt.Errorf("parse model response: %w", err)
		}
	}

	questions := make([]models.Question, 0, len(wire))
	for _, w := range wire {
		if !validQuestion(w) {
			continue
		}
		questions = append(questions, models.Question{
			Prompt:      strings.TrimSpace(w.Question),
			Choices:     w.Choices,
			Answer:      *w.Answer,
			Explanation: strings.TrimSpace(w.Explanation),
		})
	}
	return questions, nil
}

func validQuestion(w wireQuestion) bool {
	if strings.TrimSpace(w.Question) == "" {
		return false
	}
	if len(w.Choices) != 4 {
		return false
	}
	if w.Answer == nil || *w.Answer < 0 || *w.Answer > 3 {
		return false
	}
	return true
}

func stripFences(content string) string {
	content = strings.TrimSpace(content)
	if strings.HasPrefix(content, "```") {
		lines := strings.Split(content, "\n")
		if len(lines) > 0 && strings.HasPrefix(lines[0], "```") {
			lines = lines[1:]
		}
		if len(lines) > 0 && strings.HasPrefix(lines[len(lines)-1], "```") {
			lines = lines[:len(lines)-1]
		}
		content = strings.Join(lines, "\n")
	}
	content = strings.ReplaceAll(content, "```json", "")
	content = strings.ReplaceAll(content, "```", "")
	return strings.TrimSpace(content)
}
