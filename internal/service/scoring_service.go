package service

import (
	"context"
	"fmt"
	"lang_exam_backend/internal/model"
	"lang_exam_backend/internal/plugin"
	"lang_exam_backend/internal/repository"
	"lang_exam_backend/internal/util"
	"lang_exam_backend/pkg/logger"
	"lang_exam_backend/pkg/monitoring"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// 单次判卷中并发评分的题目数上限
const maxConcurrentScoring = 8

// QuestionScore 单题评分明细
type QuestionScore struct {
	QuestionID string                 `json:"questionId"`
	Index      int                    `json:"index"`
	Score      float64                `json:"score"`
	MaxScore   float64                `json:"maxScore"`
	IsCorrect  bool                   `json:"isCorrect"`
	Status     string                 `json:"status"`
	Results    []plugin.ScoringResult `json:"results,omitempty"`
}

// AttemptScore 整卷评分结果
type AttemptScore struct {
	AttemptID   string          `json:"attemptId"`
	TotalScore  float64         `json:"totalScore"`
	MaxScore    float64         `json:"maxScore"`
	Percentage  int             `json:"percentage"`
	NeedsManual bool            `json:"needsManual"`
	Questions   []QuestionScore `json:"questions"`
}

// ScoringService 评分引擎：把题目与作答记录交给对应题型插件，
// 汇总小题得分并回写作答记录与答题总分。
type ScoringService struct {
	Registry    *plugin.Registry
	AI          *AIService
	ExamRepo    *repository.ExamRepository
	AttemptRepo *repository.AttemptRepository
}

func NewScoringService(registry *plugin.Registry, ai *AIService,
	examRepo *repository.ExamRepository, attemptRepo *repository.AttemptRepository) *ScoringService {
	return &ScoringService{
		Registry:    registry,
		AI:          ai,
		ExamRepo:    examRepo,
		AttemptRepo: attemptRepo,
	}
}

// safeScore 插件评分的防护壳：任何 panic 都折算为零分错误结果
func (s *ScoringService) safeScore(ctx context.Context, sc plugin.ScoringContext) (res plugin.ScoringResult) {
	start := time.Now()
	defer func() {
		res.ScoringID = model.GenerateUUID()
		outcome := "ok"
		if res.Code != "" {
			outcome = "error"
		}
		monitoring.ObserveScoring(string(sc.Question.Type), outcome, time.Since(start).Seconds())
	}()
	defer func() {
		if r := recover(); r != nil {
			logger.Log.Error("scoring panic",
				zap.String("question_id", sc.Question.ID),
				zap.String("question_type", string(sc.Question.Type)),
				zap.Any("panic", r))
			res = plugin.ScoringResult{
				MaxScore:    sc.Question.Points,
				Feedback:    fmt.Sprintf("评分异常：%v", r),
				Recoverable: true,
				Code:        plugin.CodeScoringError,
			}
		}
	}()
	return s.Registry.ScoreQuestion(ctx, sc)
}

// CalculateQuestionScore 单题评分。answers 为该题名下的作答记录，
// recompute 为 false 且记录带有历史评分时直接复用缓存结果。
func (s *ScoringService) CalculateQuestionScore(ctx context.Context, q *model.Question,
	answers []model.UserAnswer, recompute bool) (QuestionScore, []model.UserAnswer) {
	fullMax := plugin.QuestionMaxScore(q)
	qs := QuestionScore{
		QuestionID: q.ID,
		Index:      q.Index,
		MaxScore:   fullMax,
		Status:     util.DetermineQuestionStatus(q, answers),
	}

	if len(answers) == 0 {
		// 未作答：满分计入、得分为零
		return qs, nil
	}

	scorer := s.aiScorer()
	now := time.Now()
	scored := make([]model.UserAnswer, 0, len(answers))
	var total, max float64
	allCorrect := true

	for i := range answers {
		ans := answers[i]
		if !recompute && ans.ScoredAt != nil && !ans.ManualScored {
			total += ans.Score
			max += ans.MaxScore
			if !ans.IsCorrect {
				allCorrect = false
			}
			scored = append(scored, ans)
			continue
		}
		if ans.ManualScored {
			// 人工改分优先于机器重评
			total += ans.Score
			max += ans.MaxScore
			if !ans.IsCorrect {
				allCorrect = false
			}
			scored = append(scored, ans)
			continue
		}

		res := s.safeScore(ctx, plugin.ScoringContext{
			Question:      q,
			Answer:        ans.Answer(),
			SubQuestionID: ans.SubQuestionID,
			AIScorer:      scorer,
		})
		qs.Results = append(qs.Results, res)

		ans.IsCorrect = res.IsCorrect
		ans.Score = util.ClampScore(res.Score, res.MaxScore)
		ans.MaxScore = res.MaxScore
		ans.Feedback = res.Feedback
		ans.AIScored = res.AIScored
		ans.ScoredAt = &now

		total += ans.Score
		max += ans.MaxScore
		if !res.IsCorrect {
			allCorrect = false
		}
		scored = append(scored, ans)
	}

	// 漏答的小题不产生作答记录，满分口径始终取全部小题的作者设定分值之和
	qs.Score = util.ClampScore(total, fullMax)
	qs.IsCorrect = allCorrect && max >= fullMax
	return qs, scored
}

// ScoreAttempt 整卷判分。各题评分互不依赖，按固定并发度并行执行；
// 任一题的插件失败只影响该题得分，不中断整卷。
func (s *ScoringService) ScoreAttempt(ctx context.Context, attemptID string, recompute bool) (*AttemptScore, error) {
	attempt, err := s.AttemptRepo.FindByID(attemptID)
	if err != nil {
		return nil, util.ErrAttemptNotFound
	}

	questions, err := s.ExamRepo.ListQuestionsByExam(attempt.ExamID)
	if err != nil {
		return nil, err
	}

	answers, err := s.AttemptRepo.ListAnswers(attemptID)
	if err != nil {
		return nil, err
	}
	byQuestion := make(map[string][]model.UserAnswer, len(questions))
	for _, a := range answers {
		byQuestion[a.QuestionID] = append(byQuestion[a.QuestionID], a)
	}

	scores := make([]QuestionScore, len(questions))
	scoredAnswers := make([][]model.UserAnswer, len(questions))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrentScoring)
	for i := range questions {
		i := i
		g.Go(func() error {
			q := &questions[i]
			qs, updated := s.CalculateQuestionScore(gctx, q, byQuestion[q.ID], recompute)
			scores[i] = qs
			scoredAnswers[i] = updated
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	result := &AttemptScore{AttemptID: attemptID, Questions: scores}
	var flat []model.UserAnswer
	for i, qs := range scores {
		result.TotalScore += qs.Score
		result.MaxScore += qs.MaxScore
		for _, r := range qs.Results {
			if r.NeedsManual {
				result.NeedsManual = true
			}
		}
		flat = append(flat, scoredAnswers[i]...)
	}
	result.Percentage = util.Percentage(result.TotalScore, result.MaxScore)

	if err := s.AttemptRepo.SaveScoredAnswers(flat); err != nil {
		return nil, err
	}

	now := time.Now()
	attempt.Status = model.AttemptScored
	attempt.TotalScore = result.TotalScore
	attempt.MaxScore = result.MaxScore
	attempt.Percentage = result.Percentage
	if attempt.SubmittedAt == nil {
		attempt.SubmittedAt = &now
	}
	if err := s.AttemptRepo.Update(attempt); err != nil {
		return nil, err
	}

	logger.Log.Info("attempt scored",
		zap.String("attempt_id", attemptID),
		zap.Float64("total", result.TotalScore),
		zap.Float64("max", result.MaxScore),
		zap.Int("percentage", result.Percentage),
		zap.Bool("needs_manual", result.NeedsManual))
	return result, nil
}

func (s *ScoringService) aiScorer() plugin.AIScorer {
	if s.AI == nil {
		return nil
	}
	return s.AI.Scorer()
}
