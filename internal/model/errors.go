package model

import "fmt"

// Stage 报告生成阶段
type Stage string

const (
	StageParse  Stage = "parse"
	StageRender Stage = "render"
)

// Describe 面向用户的阶段描述
func (s Stage) Describe() string {
	switch s {
	case StageParse:
		return "data parse"
	case StageRender:
		return "render"
	default:
		return string(s)
	}
}

// StageError 带阶段信息的致命错误，整次生成请求随之失败
type StageError struct {
	Stage  Stage
	Target string // 出错的文件名（可为空）
	Err    error
}

func (e *StageError) Error() string {
	if e.Target != "" {
		return fmt.Sprintf("%s failed (%s): %v", e.Stage.Describe(), e.Target, e.Err)
	}
	return fmt.Sprintf("%s failed: %v", e.Stage.Describe(), e.Err)
}

func (e *StageError) Unwrap() error {
	return e.Err
}

// NewStageError 包装错误
func NewStageError(stage Stage, target string, err error) *StageError {
	return &StageError{Stage: stage, Target: target, Err: err}
}
