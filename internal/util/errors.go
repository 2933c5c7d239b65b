package util

import "errors"

var (
	ErrUserNotFound        = errors.New("用户不存在")
	ErrEmailRegistered     = errors.New("该邮箱已被注册")
	ErrPermissionDenied    = errors.New("permission denied")
	ErrExamNotFound        = errors.New("exam not found")
	ErrExamNotPublished    = errors.New("exam not published or not accessible")
	ErrExamNotReady        = errors.New("exam has validation errors and cannot be published")
	ErrQuestionNotFound    = errors.New("question not found")
	ErrAttemptNotFound     = errors.New("attempt not found")
	ErrAttemptSubmitted    = errors.New("attempt already submitted")
	ErrAttemptNotSubmitted = errors.New("attempt not yet submitted")
	ErrAnswerNotFound      = errors.New("answer not found")
	ErrUnknownQuestionType = errors.New("unknown question type")
)
