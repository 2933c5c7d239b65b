package service

import (
	"lang_exam_backend/internal/model"
	"lang_exam_backend/internal/plugin"
)

// NumberedQuestion 编号回填后的题目及其标准化形态
type NumberedQuestion struct {
	Question *model.Question         `json:"question"`
	Standard *model.StandardQuestion `json:"standard"`
}

// NumberingService 显示编号分配器。partial 题型每个小题占一个编号，
// 其余题型整题占一个编号；编号在整卷范围内连续且从 0 开始。
type NumberingService struct {
	Registry *plugin.Registry
}

func NewNumberingService(registry *plugin.Registry) *NumberingService {
	return &NumberingService{Registry: registry}
}

// AssignNumbers 单次遍历完成编号回填与标准化投影。
// 输入顺序即显示顺序，重复调用结果一致。
func (s *NumberingService) AssignNumbers(questions []model.Question) ([]NumberedQuestion, error) {
	out := make([]NumberedQuestion, 0, len(questions))
	counter := 0
	for i := range questions {
		q := &questions[i]
		span := q.DisplaySpan()
		q.Index = counter
		q.PartialEndingIndex = counter + span - 1
		counter += span

		std, err := s.Registry.TransformQuestion(q)
		if err != nil {
			return nil, err
		}
		out = append(out, NumberedQuestion{Question: q, Standard: std})
	}
	return out, nil
}

// StripForLearner 去除答案后的考生视图
func StripForLearner(questions []*model.StandardQuestion) []*model.StandardQuestion {
	out := make([]*model.StandardQuestion, 0, len(questions))
	for _, sq := range questions {
		out = append(out, sq.StripAnswers())
	}
	return out
}
