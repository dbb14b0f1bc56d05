package analyses

import "errors"

var (
	ErrNotFound     = errors.New("not found")
	ErrCVTooShort   = errors.New("cv content too short")
	ErrNoCredential = errors.New("llm client not configured")
)

const (
	ErrorCodeValidation        = "VALIDATION_ERROR"
	ErrorCodeLLMTimeout        = "LLM_TIMEOUT"
	ErrorCodeLLMSchemaMismatch = "LLM_SCHEMA_MISMATCH"
	ErrorCodeStorage           = "STORAGE_ERROR"
	ErrorCodeInternal          = "INTERNAL_ERROR"
)
