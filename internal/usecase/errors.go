package usecase

import "errors"

var (
	ErrRateLimited         = errors.New("rate limit exceeded")
	ErrSynthesizerRequired = errors.New("answer synthesizer is required")
	ErrSynthesisFailed     = errors.New("answer synthesis failed")
)
