package scoring

import "errors"

var (
	// ErrOracleUnavailable covers transport failures and non-success replies
	// from the evaluation oracle. The underlying cause stays in the chain.
	ErrOracleUnavailable = errors.New("evaluation oracle unavailable")
	ErrInvalidRequest    = errors.New("invalid evaluation request")
)
