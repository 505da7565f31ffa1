package crypto

import (
	"bytes"
	"crypto/ed25519"
	"encoding/binary"
	"fmt"
	"io"

	"github.com/dep2p/go-sharedvar/pkg/interfaces"
	"github.com/dep2p/go-sharedvar/pkg/types"
)

// Ed25519 常量
const (
	// PublicKeySize 公钥大小（32 字节）
	PublicKeySize = ed25519.PublicKeySize
	// PrivateKeySize 私钥大小（64 字节）
	PrivateKeySize = ed25519.PrivateKeySize
	// SeedSize 种子大小（32 字节）
	SeedSize = ed25519.SeedSize

	// seqSize 签名前缀中的序列号长度
	seqSize = 8
	// SignatureSize 签名字段总长度
	SignatureSize = seqSize + ed25519.SignatureSize
)

// signingDomain 签名域分隔标签
var signingDomain = []byte("sharedvar/ed25519/v1\x00")

// ============================================================================
//                              密钥
// ============================================================================

// GenerateKey 生成 Ed25519 密钥对，rand 为 nil 时使用 crypto/rand
func GenerateKey(rand io.Reader) (ed25519.PublicKey, ed25519.PrivateKey, error) {
	return ed25519.GenerateKey(rand)
}

// KeyFromSeed 从 32 字节种子派生私钥
func KeyFromSeed(seed []byte) (ed25519.PrivateKey, error) {
	if len(seed) != SeedSize {
		return nil, fmt.Errorf("%w: seed is %d bytes", ErrInvalidKeySize, len(seed))
	}
	return ed25519.NewKeyFromSeed(seed), nil
}

// PublicKeyOf 返回私钥对应的公钥
func PublicKeyOf(priv ed25519.PrivateKey) ([]byte, error) {
	if len(priv) != PrivateKeySize {
		return nil, fmt.Errorf("%w: private key is %d bytes", ErrInvalidKeySize, len(priv))
	}
	return bytes.Clone(priv.Public().(ed25519.PublicKey)), nil
}

// ============================================================================
//                              签名
// ============================================================================

// Sign 以序列号 seq 签名 value
func Sign(priv ed25519.PrivateKey, seq uint64, value []byte) (*types.SignedVariable, error) {
	if priv == nil {
		return nil, ErrNilPrivateKey
	}
	pub, err := PublicKeyOf(priv)
	if err != nil {
		return nil, err
	}

	sig := make([]byte, seqSize, SignatureSize)
	binary.BigEndian.PutUint64(sig, seq)
	sig = append(sig, ed25519.Sign(priv, signedMessage(seq, value))...)

	return &types.SignedVariable{
		PublicKey: pub,
		Signature: sig,
		Value:     bytes.Clone(value),
	}, nil
}

// Sequence 返回签名中的序列号，格式不正确时返回 0
func Sequence(v *types.SignedVariable) uint64 {
	if v == nil || len(v.Signature) < seqSize {
		return 0
	}
	return binary.BigEndian.Uint64(v.Signature[:seqSize])
}

func signedMessage(seq uint64, value []byte) []byte {
	msg := make([]byte, 0, len(signingDomain)+seqSize+len(value))
	msg = append(msg, signingDomain...)
	msg = binary.BigEndian.AppendUint64(msg, seq)
	return append(msg, value...)
}

// ============================================================================
//                              Ed25519Scheme
// ============================================================================

// Ed25519Scheme 默认签名方案
type Ed25519Scheme struct{}

var _ interfaces.SignatureScheme = Ed25519Scheme{}

// Verify 验证 v 是 claimedKey 下的有效签名
func (Ed25519Scheme) Verify(v *types.SignedVariable, claimedKey []byte) bool {
	if v == nil || len(claimedKey) != PublicKeySize || len(v.Signature) != SignatureSize {
		return false
	}
	if !bytes.Equal(v.PublicKey, claimedKey) {
		return false
	}
	seq := binary.BigEndian.Uint64(v.Signature[:seqSize])
	return ed25519.Verify(claimedKey, signedMessage(seq, v.Value), v.Signature[seqSize:])
}

// Fresher 序列号更大者更新，相同时比较签名字节
func (Ed25519Scheme) Fresher(a, b *types.SignedVariable) bool {
	sa, sb := Sequence(a), Sequence(b)
	if sa != sb {
		return sa > sb
	}
	return bytes.Compare(a.Signature, b.Signature) > 0
}
