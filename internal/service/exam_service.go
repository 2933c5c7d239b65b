package service

import (
	"context"
	"encoding/json"
	"fmt"
	"lang_exam_backend/internal/model"
	"lang_exam_backend/internal/plugin"
	"lang_exam_backend/internal/repository"
	"lang_exam_backend/internal/util"
	"lang_exam_backend/pkg/logger"
	"time"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	learnerViewKeyPrefix = "exam_learner_view:"
	learnerViewTTL       = 10 * time.Minute
)

// ExamSectionView 分区及其编号后的题目
type ExamSectionView struct {
	Section   model.ExamSection         `json:"section"`
	Questions []*model.StandardQuestion `json:"questions"`
}

// ExamView 整卷视图。教师端含答案，考生端经 StripAnswers 脱敏。
type ExamView struct {
	Exam          *model.Exam       `json:"exam"`
	Sections      []ExamSectionView `json:"sections"`
	QuestionCount int               `json:"questionCount"`
}

type ExamService struct {
	ExamRepo  *repository.ExamRepository
	Registry  *plugin.Registry
	Numbering *NumberingService
	Redis     *redis.Client
}

func NewExamService(examRepo *repository.ExamRepository, registry *plugin.Registry,
	numbering *NumberingService, rdb *redis.Client) *ExamService {
	return &ExamService{
		ExamRepo:  examRepo,
		Registry:  registry,
		Numbering: numbering,
		Redis:     rdb,
	}
}

func (s *ExamService) CreateExam(exam *model.Exam, creatorID uint) error {
	exam.CreatorID = creatorID
	exam.IsPublished = false
	return s.ExamRepo.CreateExam(exam)
}

func (s *ExamService) GetExam(id string) (*model.Exam, error) {
	exam, err := s.ExamRepo.FindExamByID(id)
	if err == gorm.ErrRecordNotFound {
		return nil, util.ErrExamNotFound
	}
	return exam, err
}

func (s *ExamService) UpdateExam(exam *model.Exam) error {
	defer s.invalidateView(exam.ID)
	return s.ExamRepo.UpdateExam(exam)
}

func (s *ExamService) DeleteExam(id string) error {
	defer s.invalidateView(id)
	return s.ExamRepo.DeleteExam(id)
}

func (s *ExamService) ListExams(category model.ExamCategory, publishedOnly bool, page, limit int) ([]repository.ExamListRow, int64, error) {
	return s.ExamRepo.ListExams(category, publishedOnly, page, limit)
}

// CreateQuestion 按题型生成缺省题目并挂到分区，编号在整卷重排时回填
func (s *ExamService) CreateQuestion(sectionID string, qType model.QuestionType) (*model.Question, error) {
	section, err := s.ExamRepo.FindSectionByID(sectionID)
	if err != nil {
		return nil, err
	}

	q, err := s.Registry.CreateQuestion(qType, 0)
	if err != nil {
		return nil, util.ErrUnknownQuestionType
	}
	q.SectionID = section.ID

	if err := s.ExamRepo.CreateQuestion(q); err != nil {
		return nil, err
	}
	if err := s.RenumberExam(section.ExamID); err != nil {
		return nil, err
	}
	s.invalidateView(section.ExamID)
	return q, nil
}

func (s *ExamService) UpdateQuestion(q *model.Question) (plugin.ValidationResult, error) {
	res := s.Registry.ValidateQuestion(q)
	if !res.IsValid {
		return res, nil
	}
	if err := s.ExamRepo.UpdateQuestion(q); err != nil {
		return res, err
	}

	section, err := s.ExamRepo.FindSectionByID(q.SectionID)
	if err == nil {
		if err := s.RenumberExam(section.ExamID); err != nil {
			return res, err
		}
		s.invalidateView(section.ExamID)
	}
	return res, nil
}

func (s *ExamService) DeleteQuestion(id string) error {
	q, err := s.ExamRepo.FindQuestionByID(id)
	if err != nil {
		return util.ErrQuestionNotFound
	}
	if err := s.ExamRepo.DeleteQuestion(id); err != nil {
		return err
	}
	if section, err := s.ExamRepo.FindSectionByID(q.SectionID); err == nil {
		if err := s.RenumberExam(section.ExamID); err != nil {
			return err
		}
		s.invalidateView(section.ExamID)
	}
	return nil
}

// RenumberExam 整卷重排显示编号并落库
func (s *ExamService) RenumberExam(examID string) error {
	questions, err := s.ExamRepo.ListQuestionsByExam(examID)
	if err != nil {
		return err
	}
	if _, err := s.Numbering.AssignNumbers(questions); err != nil {
		return err
	}
	return s.ExamRepo.SaveQuestionNumbering(questions)
}

// ValidateExam 汇总整卷所有题目的校验结果
func (s *ExamService) ValidateExam(examID string) (map[string]plugin.ValidationResult, bool, error) {
	questions, err := s.ExamRepo.ListQuestionsByExam(examID)
	if err != nil {
		return nil, false, err
	}
	results := make(map[string]plugin.ValidationResult, len(questions))
	allValid := true
	for i := range questions {
		res := s.Registry.ValidateQuestion(&questions[i])
		results[questions[i].ID] = res
		if !res.IsValid {
			allValid = false
		}
	}
	return results, allValid, nil
}

// PublishExam 发布门禁：存在校验错误的试卷不能发布
func (s *ExamService) PublishExam(examID string) error {
	exam, err := s.GetExam(examID)
	if err != nil {
		return err
	}

	_, allValid, err := s.ValidateExam(examID)
	if err != nil {
		return err
	}
	if !allValid {
		return util.ErrExamNotReady
	}

	now := time.Now()
	exam.IsPublished = true
	exam.PublishedAt = &now
	if err := s.ExamRepo.UpdateExam(exam); err != nil {
		return err
	}
	s.invalidateView(examID)

	logger.Log.Info("exam published",
		zap.String("exam_id", examID),
		zap.String("title", exam.Title))
	return nil
}

func (s *ExamService) UnpublishExam(examID string) error {
	exam, err := s.GetExam(examID)
	if err != nil {
		return err
	}
	exam.IsPublished = false
	exam.PublishedAt = nil
	defer s.invalidateView(examID)
	return s.ExamRepo.UpdateExam(exam)
}

// BuildExamView 教师端整卷视图，编号连续且含答案
func (s *ExamService) BuildExamView(examID string) (*ExamView, error) {
	exam, err := s.GetExam(examID)
	if err != nil {
		return nil, err
	}

	sections, err := s.ExamRepo.ListSections(examID)
	if err != nil {
		return nil, err
	}

	view := &ExamView{Exam: exam}
	counterBase := []model.Question{}
	for _, sec := range sections {
		qs, err := s.ExamRepo.ListQuestionsBySection(sec.ID)
		if err != nil {
			return nil, err
		}
		counterBase = append(counterBase, qs...)
	}

	numbered, err := s.Numbering.AssignNumbers(counterBase)
	if err != nil {
		return nil, err
	}
	view.QuestionCount = util.DisplayQuestionCount(counterBase)

	bySection := make(map[string][]*model.StandardQuestion)
	for _, n := range numbered {
		bySection[n.Question.SectionID] = append(bySection[n.Question.SectionID], n.Standard)
	}
	for _, sec := range sections {
		view.Sections = append(view.Sections, ExamSectionView{
			Section:   sec,
			Questions: bySection[sec.ID],
		})
	}
	return view, nil
}

// BuildLearnerView 考生端整卷视图：仅已发布试卷、答案脱敏、Redis 缓存
func (s *ExamService) BuildLearnerView(ctx context.Context, examID string) (*ExamView, error) {
	cacheKey := learnerViewKeyPrefix + examID
	if s.Redis != nil {
		if val, err := s.Redis.Get(ctx, cacheKey).Result(); err == nil {
			var cached ExamView
			if err := json.Unmarshal([]byte(val), &cached); err == nil {
				return &cached, nil
			}
		} else if err != redis.Nil {
			logger.Log.Warn("learner view cache read failed", zap.Error(err))
		}
	}

	view, err := s.BuildExamView(examID)
	if err != nil {
		return nil, err
	}
	if !view.Exam.IsPublished {
		return nil, util.ErrExamNotPublished
	}

	for i := range view.Sections {
		view.Sections[i].Questions = StripForLearner(view.Sections[i].Questions)
	}

	if s.Redis != nil {
		if data, err := json.Marshal(view); err == nil {
			if err := s.Redis.Set(ctx, cacheKey, data, learnerViewTTL).Err(); err != nil {
				logger.Log.Warn("learner view cache write failed", zap.Error(err))
			}
		}
	}
	return view, nil
}

func (s *ExamService) invalidateView(examID string) {
	if s.Redis == nil {
		return
	}
	key := fmt.Sprintf("%s%s", learnerViewKeyPrefix, examID)
	if err := s.Redis.Del(context.Background(), key).Err(); err != nil {
		logger.Log.Warn("learner view cache invalidation failed",
			zap.String("exam_id", examID), zap.Error(err))
	}
}

func (s *ExamService) CreateSection(section *model.ExamSection) error {
	defer s.invalidateView(section.ExamID)
	return s.ExamRepo.CreateSection(section)
}

func (s *ExamService) UpdateSection(section *model.ExamSection) error {
	defer s.invalidateView(section.ExamID)
	return s.ExamRepo.UpdateSection(section)
}

func (s *ExamService) DeleteSection(id string) error {
	section, err := s.ExamRepo.FindSectionByID(id)
	if err != nil {
		return err
	}
	if err := s.ExamRepo.DeleteSection(id); err != nil {
		return err
	}
	if err := s.RenumberExam(section.ExamID); err != nil {
		return err
	}
	s.invalidateView(section.ExamID)
	return nil
}
