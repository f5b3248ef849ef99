package workflow

import "errors"

// Pipeline errors wrap node failures with the stage that produced them.
var (
	ErrContextFailed = errors.New("catalog context load failed")
	ErrAnalyzeFailed = errors.New("activity analysis failed")
	ErrSuggestFailed = errors.New("suggestion emission failed")
)
