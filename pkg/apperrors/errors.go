package apperrors

import "errors"

var (
	ErrSessionNotFound     = errors.New("session not found")
	ErrUnknownWorkloadType = errors.New("unknown workload type")
	ErrUnknownTool         = errors.New("unknown tool")
	ErrEmptyMessage        = errors.New("message content is empty")
	ErrLLMNotConfigured    = errors.New("no LLM endpoint configured")
)
