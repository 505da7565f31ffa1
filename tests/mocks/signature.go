package mocks

import (
	"bytes"
	"sync"

	"github.com/dep2p/go-sharedvar/pkg/interfaces"
	"github.com/dep2p/go-sharedvar/pkg/types"
)

var _ interfaces.SignatureScheme = (*MockSignatureScheme)(nil)

// MockSignatureScheme 模拟 SignatureScheme 接口实现
//
// 默认行为：签名为空视为无效，否则有效；签名字节序更大的更新。
type MockSignatureScheme struct {
	// 可覆盖的方法
	VerifyFunc  func(v *types.SignedVariable, claimedKey []byte) bool
	FresherFunc func(a, b *types.SignedVariable) bool

	mu sync.Mutex
	// 调用记录
	VerifyCalls int
}

// NewMockSignatureScheme 创建 MockSignatureScheme
func NewMockSignatureScheme() *MockSignatureScheme {
	return &MockSignatureScheme{}
}

// Verify 验证签名
func (m *MockSignatureScheme) Verify(v *types.SignedVariable, claimedKey []byte) bool {
	m.mu.Lock()
	m.VerifyCalls++
	m.mu.Unlock()

	if m.VerifyFunc != nil {
		return m.VerifyFunc(v, claimedKey)
	}
	return v != nil && len(v.Signature) > 0 && bytes.Equal(v.PublicKey, claimedKey)
}

// Fresher 比较新鲜度
func (m *MockSignatureScheme) Fresher(a, b *types.SignedVariable) bool {
	if m.FresherFunc != nil {
		return m.FresherFunc(a, b)
	}
	return bytes.Compare(a.Signature, b.Signature) > 0
}

// Calls 返回 Verify 调用次数
func (m *MockSignatureScheme) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.VerifyCalls
}
