package repository

import "errors"

var (
	ErrNotFound = errors.New("not found")
	// unique制約違反など、同時更新で負けた側が受け取る
	ErrConflict = errors.New("conflict")
)
