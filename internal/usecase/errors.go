package usecase

import "errors"

var (
	// ErrStaleResponse marks a refresh whose answer arrived after a newer
	// refresh was issued. The view keeps the newer state.
	ErrStaleResponse        = errors.New("stale response discarded")
	ErrEvaluationInProgress = errors.New("evaluation already in progress")
	ErrAlreadyEvaluated     = errors.New("notice already evaluated")
	ErrNoticeNotFound       = errors.New("notice not found")
	ErrInvalidSelection     = errors.New("invalid selection")
	ErrInvalidTheme         = errors.New("invalid theme")
)
