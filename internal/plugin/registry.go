package plugin

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"lang_exam_backend/internal/model"
)

// Registry 题型插件注册表。启动时显式初始化一次，评分期间只读；
// 配置热更新触发的重复注册按“后写覆盖”处理，不会产生重复条目。
type Registry struct {
	mu      sync.RWMutex
	plugins map[model.QuestionType]QuestionPlugin
}

func NewRegistry() *Registry {
	return &Registry{plugins: make(map[model.QuestionType]QuestionPlugin)}
}

// NewDefaultRegistry 注册全部内置题型插件，进程启动时调用一次
func NewDefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register(NewSingleChoicePlugin())
	r.Register(NewCompletionPlugin())
	r.Register(NewMatchingPlugin())
	r.Register(NewLabelingPlugin())
	r.Register(NewPickFromListPlugin())
	r.Register(NewTrueFalseNotGivenPlugin())
	r.Register(NewYesNoNotGivenPlugin())
	r.Register(NewMatchingHeadingsPlugin())
	r.Register(NewShortAnswerPlugin())
	r.Register(NewTranslationPlugin())
	r.Register(NewWordFormPlugin())
	r.Register(NewWritingTaskPlugin())
	return r
}

// Register 注册插件，同名题型后写覆盖
func (r *Registry) Register(p QuestionPlugin) {
	if p == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.plugins[p.Config().Type] = p
}

// Get 按题型取插件
func (r *Registry) Get(t model.QuestionType) (QuestionPlugin, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.plugins[t]
	return p, ok
}

// All 返回全部插件，按题型标签排序保证遍历稳定
func (r *Registry) All() []QuestionPlugin {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]QuestionPlugin, 0, len(r.plugins))
	for _, p := range r.plugins {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Config().Type < out[j].Config().Type
	})
	return out
}

// ByCategory 返回对指定试卷类别可用的插件
func (r *Registry) ByCategory(cat model.ExamCategory) []QuestionPlugin {
	all := r.All()
	out := make([]QuestionPlugin, 0, len(all))
	for _, p := range all {
		for _, c := range p.Config().Categories {
			if c == cat {
				out = append(out, p)
				break
			}
		}
	}
	return out
}

// CreateQuestion 按题型生成缺省题目
func (r *Registry) CreateQuestion(t model.QuestionType, index int) (*model.Question, error) {
	p, ok := r.Get(t)
	if !ok {
		return nil, fmt.Errorf("未注册的题型: %s", t)
	}
	return p.CreateDefault(index), nil
}

// TransformQuestion 标准化投影。未注册题型是硬错误：
// 下游的编号与报表无法在缺少标准化形态的情况下继续。
func (r *Registry) TransformQuestion(q *model.Question) (*model.StandardQuestion, error) {
	if q == nil {
		return nil, fmt.Errorf("题目为空")
	}
	p, ok := r.Get(q.Type)
	if !ok {
		return nil, fmt.Errorf("未注册的题型: %s", q.Type)
	}
	return p.Transform(q), nil
}

// ValidateQuestion 校验题目。未注册题型返回结构化失败而非报错。
func (r *Registry) ValidateQuestion(q *model.Question) ValidationResult {
	if q == nil {
		return ValidationResult{IsValid: false, Errors: []string{"题目为空"}}
	}
	p, ok := r.Get(q.Type)
	if !ok {
		return ValidationResult{
			IsValid: false,
			Errors:  []string{fmt.Sprintf("未注册的题型: %s", q.Type)},
		}
	}
	return p.Validate(q)
}

// ScoreQuestion 评分。未注册题型返回零分结果并说明原因，绝不向外抛出。
func (r *Registry) ScoreQuestion(ctx context.Context, sc ScoringContext) ScoringResult {
	if sc.Question == nil {
		return errorResult(0, CodeScoringError, "评分上下文缺少题目")
	}
	p, ok := r.Get(sc.Question.Type)
	if !ok {
		return errorResult(sc.Question.Points, CodeNoPlugin,
			fmt.Sprintf("题型 %s 未注册评分插件", sc.Question.Type))
	}
	return p.Score(ctx, sc)
}
