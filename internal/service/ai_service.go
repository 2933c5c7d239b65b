package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"lang_exam_backend/internal/config"
	"lang_exam_backend/internal/plugin"
	"net/http"
	"strings"
	"sync"
	"time"
)

const defaultAITimeout = 30 * time.Second

// AIService 对接 OpenAI 兼容的 chat completions 接口，承担两类评分：
// 翻译/词形的 0–1 质量分与写作的 0–9 档位分。
type AIService struct {
	mu     sync.RWMutex
	config config.AIConfig
	client *http.Client
}

func NewAIService(cfg config.AIConfig) *AIService {
	return &AIService{
		config: cfg,
		client: &http.Client{Timeout: aiTimeout(cfg)},
	}
}

func aiTimeout(cfg config.AIConfig) time.Duration {
	if cfg.TimeoutSeconds > 0 {
		return time.Duration(cfg.TimeoutSeconds) * time.Second
	}
	return defaultAITimeout
}

// UpdateConfig 配置热更新入口，进行中的调用继续使用旧客户端
func (s *AIService) UpdateConfig(cfg config.AIConfig) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.config = cfg
	s.client = &http.Client{Timeout: aiTimeout(cfg)}
}

func (s *AIService) snapshot() (config.AIConfig, *http.Client) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.config, s.client
}

// Enabled 是否配置了可用的 AI 接入点
func (s *AIService) Enabled() bool {
	cfg, _ := s.snapshot()
	return cfg.BaseURL != "" && cfg.APIKey != ""
}

// Scorer 插件评分上下文使用的回调，未配置 AI 时返回 nil 使插件走降级路径
func (s *AIService) Scorer() plugin.AIScorer {
	if !s.Enabled() {
		return nil
	}
	return s.Score
}

type AIChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type ChatCompletionRequest struct {
	Model    string          `json:"model"`
	Messages []AIChatMessage `json:"messages"`
}

type ChatCompletionResponse struct {
	Choices []struct {
		Message AIChatMessage `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// judgeVerdict 评分接口要求模型返回的 JSON 结构
type judgeVerdict struct {
	Score    float64 `json:"score"`
	Feedback string  `json:"feedback"`
}

// Score 实现 plugin.AIScorer。Essay 非空走写作评分（0–9 档位），
// 否则走翻译/词形质量评分（0–1）。
func (s *AIService) Score(ctx context.Context, req plugin.AIScoreRequest) (plugin.AIScoreResponse, error) {
	var system, user string
	if req.Essay != "" {
		system = "你是一名资深的英语写作阅卷人。按雅思写作评分标准从任务回应、连贯与衔接、词汇资源、语法多样性与准确性四个维度评估作文，" +
			"给出 0 到 9 的总档位分（允许 0.5 步进）。" +
			"只输出 JSON，格式：{\"score\": <0-9 的数字>, \"feedback\": \"<中文评语>\"}，不要输出其他内容。"
		user = fmt.Sprintf("写作题目：\n%s\n\n考生作文：\n%s", req.Prompt, req.Essay)
	} else {
		system = "你是一名语言测试阅卷人。评估考生作答相对题目要求的质量，" +
			"给出 0 到 1 的质量分：1 表示完全正确，0 表示完全错误，中间值表示部分达意。" +
			"只输出 JSON，格式：{\"score\": <0-1 的数字>, \"feedback\": \"<中文评语>\"}，不要输出其他内容。"
		user = fmt.Sprintf("题目：\n%s\n\n考生作答：\n%s", req.Prompt, req.Text)
	}
	if req.ScoringPrompt != "" {
		system += "\n\n出题人补充的评分说明：\n" + req.ScoringPrompt
	}

	content, err := s.chat(ctx, system, user)
	if err != nil {
		return plugin.AIScoreResponse{OK: false, Error: err.Error()}, err
	}

	verdict, err := parseVerdict(content)
	if err != nil {
		return plugin.AIScoreResponse{OK: false, Error: err.Error()}, err
	}
	return plugin.AIScoreResponse{
		Score:    verdict.Score,
		Feedback: verdict.Feedback,
		OK:       true,
	}, nil
}

// Chat 单轮补全调用
func (s *AIService) Chat(ctx context.Context, system, prompt string) (string, error) {
	return s.chat(ctx, system, prompt)
}

func (s *AIService) chat(ctx context.Context, system, user string) (string, error) {
	cfg, client := s.snapshot()
	reqBody := ChatCompletionRequest{
		Model: cfg.Model,
		Messages: []AIChatMessage{
			{Role: "system", Content: system},
			{Role: "user", Content: user},
		},
	}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		cfg.BaseURL+"/chat/completions", bytes.NewBuffer(jsonData))
	if err != nil {
		return "", err
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+cfg.APIKey)

	resp, err := client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("AI API error (status %d): %s", resp.StatusCode, string(body))
	}

	var result ChatCompletionResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return "", err
	}
	if result.Error != nil {
		return "", fmt.Errorf("AI API error: %s", result.Error.Message)
	}
	if len(result.Choices) == 0 {
		return "", fmt.Errorf("AI returned no choices")
	}
	return result.Choices[0].Message.Content, nil
}

// parseVerdict 从模型输出中取出评分 JSON，容忍输出被 markdown 代码块包裹
func parseVerdict(content string) (judgeVerdict, error) {
	var verdict judgeVerdict
	trimmed := strings.TrimSpace(content)
	trimmed = strings.TrimPrefix(trimmed, "```json")
	trimmed = strings.TrimPrefix(trimmed, "```")
	trimmed = strings.TrimSuffix(trimmed, "```")
	trimmed = strings.TrimSpace(trimmed)

	if err := json.Unmarshal([]byte(trimmed), &verdict); err != nil {
		// 截取首个 JSON 对象再试一次
		start := strings.Index(trimmed, "{")
		end := strings.LastIndex(trimmed, "}")
		if start >= 0 && end > start {
			if err2 := json.Unmarshal([]byte(trimmed[start:end+1]), &verdict); err2 == nil {
				return verdict, nil
			}
		}
		return verdict, fmt.Errorf("unparseable AI verdict: %s", content)
	}
	return verdict, nil
}
