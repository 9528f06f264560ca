package repository

import "errors"

var (
	// ErrStoreQueryFailed wraps every read or write failure of the backing store.
	ErrStoreQueryFailed = errors.New("store query failed")
	ErrNotFound         = errors.New("record not found")
)
