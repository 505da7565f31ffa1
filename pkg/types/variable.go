package types

import (
	"bytes"
	"encoding/hex"

	"golang.org/x/crypto/blake2b"
)

// ============================================================================
//                              SignedVariable
// ============================================================================

// SignedVariable 签名共享变量
//
// 由公钥标识，签名覆盖值。签名的具体格式（版本号、时间戳等）
// 由 SignatureScheme 决定，核心只把它当作不透明字节。
// 核心从不修改其字段。
type SignedVariable struct {
	_msgpack struct{} `msgpack:",as_array"`

	// PublicKey 主体公钥，变量的身份
	PublicKey []byte

	// Signature 签名（方案相关）
	Signature []byte

	// Value 变量值
	Value []byte
}

// Key 返回变量的键
func (v *SignedVariable) Key() Key {
	return KeyOf(v.PublicKey)
}

// Equal 逐字段比较
func (v *SignedVariable) Equal(other *SignedVariable) bool {
	if v == nil || other == nil {
		return v == other
	}
	return bytes.Equal(v.PublicKey, other.PublicKey) &&
		bytes.Equal(v.Signature, other.Signature) &&
		bytes.Equal(v.Value, other.Value)
}

// Clone 深拷贝
func (v *SignedVariable) Clone() *SignedVariable {
	if v == nil {
		return nil
	}
	return &SignedVariable{
		PublicKey: bytes.Clone(v.PublicKey),
		Signature: bytes.Clone(v.Signature),
		Value:     bytes.Clone(v.Value),
	}
}

// ============================================================================
//                              Key
// ============================================================================

// Key 公钥的稳定字节身份，可作为 map 键
type Key string

// KeyOf 由公钥字节构造 Key
func KeyOf(publicKey []byte) Key {
	return Key(publicKey)
}

// Bytes 返回公钥字节
func (k Key) Bytes() []byte {
	return []byte(k)
}

// Fingerprint 返回公钥的短指纹（blake2b-256 前 8 字节，十六进制）
//
// 用于日志输出。
func (k Key) Fingerprint() string {
	sum := blake2b.Sum256([]byte(k))
	return hex.EncodeToString(sum[:8])
}

// String 实现 fmt.Stringer
func (k Key) String() string {
	return k.Fingerprint()
}

// ============================================================================
//                              发布结果与监听
// ============================================================================

// PublishResult 一次 Publish 的结果
type PublishResult struct {
	// Accepted 本地存储是否接受了该值（比已存值更新）
	Accepted bool

	// Propagated 是否存在已记录的兴趣节点集合
	//
	// 为 false 时没有任何网络发送，Sent/Acked 均无意义。
	Propagated bool

	// Sent 发出的 PUBLISH 请求数
	Sent int

	// Acked 无错误确认的节点数
	Acked int
}

// PublishListener 变量被接受时的回调
//
// 在事件循环上同步调用，不得阻塞。
type PublishListener func(v *SignedVariable)

// ListenerHandle 监听器句柄，用于取消订阅
type ListenerHandle struct {
	Key Key
	ID  string
}
