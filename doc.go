// Package sharedvar 提供基于数据报的签名共享变量网络
//
// 每个共享变量由一个公钥标识，值由对应私钥签名。节点之间通过
// 不可靠数据报交换 PING / GET / PUBLISH 三种请求：
//
//   - Connect: PING 对端，成功则加入节点集合
//   - Lookup:  向兴趣节点扇出 GET，取回最新的有效值
//   - Publish: 本地存储并推送给最近一次 Lookup 回应过的节点
//
// # 快速开始
//
//	node, err := sharedvar.New(sharedvar.WithListen("0.0.0.0:7000"))
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if err := node.Start(ctx); err != nil {
//	    log.Fatal(err)
//	}
//	defer node.Close()
//
//	_ = node.Connect(ctx, sharedvar.NewPeer("10.0.0.2", 7000))
//
//	// 写端：持有私钥
//	w, _ := node.Assign(privateKey)
//	_, _ = w.Set(ctx, []byte("hello"))
//
//	// 读端：只持有公钥
//	r := node.Get(publicKey)
//	v, _ := r.Refresh(ctx)
//
// # 组件结构
//
//	┌──────────────────────────────────────────────┐
//	│  Node / Handle                               │
//	├──────────────────────────────────────────────┤
//	│  internal/protocol/sharedvar  (Service)      │
//	├──────────────┬───────────────┬───────────────┤
//	│  correlation │  dispatch     │  peerstore    │
//	│  varstore    │  wire         │  eventloop    │
//	├──────────────┴───────────────┴───────────────┤
//	│  transport (udp / memory)                    │
//	└──────────────────────────────────────────────┘
//
// 组件通过 go.uber.org/fx 装配，见 fx.go。
package sharedvar
