package types

import (
	"errors"

	"github.com/mr-tron/base58"
)

// ErrInvalidKeyText 公钥文本无法解码
var ErrInvalidKeyText = errors.New("invalid public key text")

// EncodePublicKey 返回公钥的 Base58 文本形式
//
// 用于命令行和配置文件中书写公钥。
func EncodePublicKey(publicKey []byte) string {
	return base58.Encode(publicKey)
}

// ParsePublicKey 解析 Base58 公钥文本
func ParsePublicKey(s string) ([]byte, error) {
	if s == "" {
		return nil, ErrInvalidKeyText
	}
	b, err := base58.Decode(s)
	if err != nil {
		return nil, errors.Join(ErrInvalidKeyText, err)
	}
	return b, nil
}
