// Package crypto 提供共享变量的默认签名方案
//
// # Ed25519Scheme
//
// 签名字段的格式为 8 字节大端序列号 || Ed25519 签名，签名覆盖
// 域分隔标签、序列号和值。新鲜度按序列号比较，序列号相同时按签名
// 字节序比较，保证任意两个不同签名之间是全序。
//
// 签名和验证：
//
//	pub, priv, err := crypto.GenerateKey(nil)
//	v, err := crypto.Sign(priv, 1, []byte("hello"))
//	ok := crypto.Ed25519Scheme{}.Verify(v, pub)
package crypto
