package service

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"lang_exam_backend/internal/config"
	"lang_exam_backend/internal/plugin"
)

func TestParseVerdict(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    float64
		wantErr bool
	}{
		{"裸 JSON", `{"score": 0.8, "feedback": "不错"}`, 0.8, false},
		{"代码块包裹", "```json\n{\"score\": 6.5, \"feedback\": \"ok\"}\n```", 6.5, false},
		{"夹杂说明文字", `评分如下：{"score": 1, "feedback": "完全正确"} 以上。`, 1, false},
		{"无 JSON", "这篇作文写得不错", 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			verdict, err := parseVerdict(tt.content)
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr && verdict.Score != tt.want {
				t.Errorf("Score = %v, want %v", verdict.Score, tt.want)
			}
		})
	}
}

func aiTestServer(t *testing.T, verdict string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if auth := r.Header.Get("Authorization"); auth != "Bearer test-key" {
			t.Errorf("unexpected auth header %q", auth)
		}
		resp := map[string]interface{}{
			"choices": []map[string]interface{}{
				{"message": map[string]string{"role": "assistant", "content": verdict}},
			},
		}
		json.NewEncoder(w).Encode(resp)
	}))
}

func TestAIServiceScore(t *testing.T) {
	srv := aiTestServer(t, `{"score": 0.75, "feedback": "大体达意"}`)
	defer srv.Close()

	svc := NewAIService(config.AIConfig{BaseURL: srv.URL, APIKey: "test-key", Model: "test-model"})
	resp, err := svc.Score(context.Background(), plugin.AIScoreRequest{
		Text:   "He runs daily.",
		Prompt: "他每天跑步。",
	})
	if err != nil {
		t.Fatalf("Score: %v", err)
	}
	if !resp.OK || resp.Score != 0.75 || resp.Feedback != "大体达意" {
		t.Errorf("resp = %+v", resp)
	}
}

func TestAIServiceScoreEssay(t *testing.T) {
	srv := aiTestServer(t, `{"score": 6, "feedback": "结构完整"}`)
	defer srv.Close()

	svc := NewAIService(config.AIConfig{BaseURL: srv.URL, APIKey: "test-key", Model: "test-model"})
	resp, err := svc.Score(context.Background(), plugin.AIScoreRequest{
		Essay:  "In recent years ...",
		Prompt: "Discuss both views.",
	})
	if err != nil {
		t.Fatalf("Score: %v", err)
	}
	if !resp.OK || resp.Score != 6 {
		t.Errorf("resp = %+v", resp)
	}
}

func TestAIServiceUpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "rate limited", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	svc := NewAIService(config.AIConfig{BaseURL: srv.URL, APIKey: "test-key", Model: "test-model"})
	resp, err := svc.Score(context.Background(), plugin.AIScoreRequest{Text: "x", Prompt: "y"})
	if err == nil || resp.OK {
		t.Errorf("上游失败应返回错误，resp=%+v err=%v", resp, err)
	}
}

func TestScorerDisabledWithoutConfig(t *testing.T) {
	svc := NewAIService(config.AIConfig{})
	if svc.Scorer() != nil {
		t.Error("未配置接入点时 Scorer 应为 nil，让插件走降级路径")
	}
}
