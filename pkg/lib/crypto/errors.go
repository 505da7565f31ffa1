package crypto

import "errors"

var (
	// ErrNilPrivateKey Sign 收到空私钥
	ErrNilPrivateKey = errors.New("crypto: private key is nil")

	// ErrInvalidKeySize 种子或私钥长度不符合 Ed25519
	ErrInvalidKeySize = errors.New("crypto: wrong ed25519 key length")
)
