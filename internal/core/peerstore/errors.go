package peerstore

import "errors"

var (
	// ErrInvalidCapacity 键状态容量无效
	ErrInvalidCapacity = errors.New("max tracked keys must be positive")
)
