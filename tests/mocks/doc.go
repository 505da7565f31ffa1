// Package mocks 提供统一的测试 Mock 实现
//
// # 传输 Mock
//
//   - MockTransport: 由 mockgen 生成的 interfaces.Transport，配合 gomock 设置期望
//
// # 签名 Mock
//
//   - MockSignatureScheme: 模拟 interfaces.SignatureScheme，可覆盖 Verify/Fresher
//
// 使用示例：
//
//	ctrl := gomock.NewController(t)
//	tr := mocks.NewMockTransport(ctrl)
//	tr.EXPECT().Send(gomock.Any(), gomock.Any(), peer).Return(nil)
package mocks

//go:generate mockgen -destination=transport.go -package=mocks github.com/dep2p/go-sharedvar/pkg/interfaces Transport
