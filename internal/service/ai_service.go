package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"

	"prepace_backend/internal/config"
	"prepace_backend/internal/model"
)

// ScoringOracle 外部评分服务，返回模型的原始文本
type ScoringOracle interface {
	Configured() bool
	Evaluate(ctx context.Context, questionText, answerText string, category model.QuestionCategory) (string, error)
}

const noAnswerPlaceholder = "[No answer — timed out]"

const evaluationPrompt = `You are an expert interview coach. Analyze this %s interview answer.
Return ONLY a raw JSON object — no markdown, no backticks, no explanation:
{
  "score": <integer 0-10>,
  "strengths": ["strength 1", "strength 2"],
  "improvements": ["improvement 1", "improvement 2"],
  "summary": "<2-3 sentence honest evaluation>",
  "keywords": ["keyword1", "keyword2"]
}`

// AIService 调用 OpenAI 兼容的 /chat/completions 接口。配置可以在运行时热更新
type AIService struct {
	mu     sync.RWMutex
	config config.AIConfig
	client *http.Client
}

var _ ScoringOracle = (*AIService)(nil)

func NewAIService(cfg config.AIConfig) *AIService {
	return &AIService{
		config: cfg,
		client: &http.Client{Timeout: cfg.Timeout()},
	}
}

type AIChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type ChatCompletionRequest struct {
	Model       string          `json:"model"`
	Messages    []AIChatMessage `json:"messages"`
	Temperature float64         `json:"temperature"`
	MaxTokens   int             `json:"max_tokens,omitempty"`
}

type ChatCompletionResponse struct {
	Choices []struct {
		Message AIChatMessage `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// UpdateConfig 配置文件变更时替换评分服务的地址、密钥和超时
func (s *AIService) UpdateConfig(cfg config.AIConfig) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.config = cfg
	s.client = &http.Client{Timeout: cfg.Timeout()}
}

func (s *AIService) snapshot() (config.AIConfig, *http.Client) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.config, s.client
}

// Configured 未配置 API Key 时不发起调用
func (s *AIService) Configured() bool {
	cfg, _ := s.snapshot()
	return strings.TrimSpace(cfg.APIKey) != ""
}

func (s *AIService) Evaluate(ctx context.Context, questionText, answerText string, category model.QuestionCategory) (string, error) {
	if strings.TrimSpace(answerText) == "" {
		answerText = noAnswerPlaceholder
	}

	messages := []AIChatMessage{
		{
			Role:    "system",
			Content: fmt.Sprintf(evaluationPrompt, category),
		},
		{
			Role:    "user",
			Content: fmt.Sprintf("Question: %s\n\nAnswer: %s", questionText, answerText),
		},
	}
	return s.Chat(ctx, messages)
}

// Chat 单次同步调用，不重试
func (s *AIService) Chat(ctx context.Context, messages []AIChatMessage) (string, error) {
	cfg, client := s.snapshot()

	reqBody := ChatCompletionRequest{
		Model:       cfg.Model,
		Messages:    messages,
		Temperature: cfg.Temperature,
		MaxTokens:   cfg.MaxTokens,
	}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return "", &ScoringOracleFailure{Reason: "encode request", Wrapped: err}
	}

	endpoint := strings.TrimRight(cfg.BaseURL, "/") + "/chat/completions"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewBuffer(jsonData))
	if err != nil {
		return "", &ScoringOracleFailure{Reason: "build request", Wrapped: err}
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+cfg.APIKey)

	resp, err := client.Do(req)
	if err != nil {
		return "", &ScoringOracleFailure{Reason: "transport", Wrapped: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", &ScoringOracleFailure{Reason: "read response", Wrapped: err}
	}
	if resp.StatusCode != http.StatusOK {
		return "", &ScoringOracleFailure{Reason: fmt.Sprintf("status %d: %s", resp.StatusCode, truncate(string(body), 200))}
	}

	var result ChatCompletionResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return "", &ScoringOracleFailure{Reason: "decode response", Wrapped: err}
	}
	if result.Error != nil {
		return "", &ScoringOracleFailure{Reason: result.Error.Message}
	}
	if len(result.Choices) == 0 {
		return "", &ScoringOracleFailure{Reason: "no choices returned"}
	}

	return strings.TrimSpace(result.Choices[0].Message.Content), nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
