package kv

import "errors"

var (
	ErrNotFound = errors.New("kv: key not found")
	ErrConflict = errors.New("kv: compare-and-swap conflict")
)
