// Package main 提供 sharedvar 命令行入口
package main

import (
	"context"
	"encoding/hex"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/dep2p/go-sharedvar"
	"github.com/dep2p/go-sharedvar/internal/util/logger"
	"github.com/dep2p/go-sharedvar/pkg/lib/crypto"
	"github.com/dep2p/go-sharedvar/pkg/types"
)

var log = logger.Logger("cmd")

// ═══════════════════════════════════════════════════════════════════════════
// 命令行参数
// ═══════════════════════════════════════════════════════════════════════════
//
//   命令行参数：运行时覆盖（「这次运行」想怎么跑）
//   JSON 配置文件：持久化配置（「这个节点」的固定配置）
//
// ═══════════════════════════════════════════════════════════════════════════
var (
	// ─────────────────────────────────────────────────────────────────────
	// 节点参数
	// ─────────────────────────────────────────────────────────────────────
	listen     = flag.String("listen", "", "UDP 监听地址 host:port（默认 0.0.0.0:0）")
	configFile = flag.String("config", "", "配置文件路径")
	peers      = flag.String("peer", "", "启动后连接的节点，逗号分隔")
	timeout    = flag.Duration("timeout", 0, "请求超时（默认 10s）")

	// ─────────────────────────────────────────────────────────────────────
	// 变量操作
	// ─────────────────────────────────────────────────────────────────────
	seed   = flag.String("seed", "", "写端私钥种子（十六进制，32 字节）")
	setVal = flag.String("set", "", "以 -seed 对应的私钥写入该值")
	getKey = flag.String("get", "", "查询该公钥（Base58）的最新值")
	keygen = flag.Bool("keygen", false, "生成新的密钥种子并退出")
	serve  = flag.Bool("serve", false, "执行完操作后继续运行，直到收到退出信号")

	// ─────────────────────────────────────────────────────────────────────
	// 观测
	// ─────────────────────────────────────────────────────────────────────
	metricsAddr = flag.String("metrics", "", "Prometheus 指标 HTTP 地址（如 127.0.0.1:9100）")
	logLevel    = flag.String("log-level", "", "日志级别规则，覆盖 SHAREDVAR_LOG_LEVEL（如 correlation=debug,info）")

	// ─────────────────────────────────────────────────────────────────────
	// 信息显示
	// ─────────────────────────────────────────────────────────────────────
	showVersion = flag.Bool("version", false, "显示版本信息")
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "错误: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	flag.Parse()

	if *showVersion {
		fmt.Println(sharedvar.VersionInfo())
		return nil
	}
	if *keygen {
		return printNewKey()
	}
	if *logLevel != "" {
		spec, err := logger.ParseLevelSpec(*logLevel)
		if err != nil {
			return fmt.Errorf("日志级别: %w", err)
		}
		logger.ApplySpec(spec)
	}

	opts, err := buildOptions()
	if err != nil {
		return fmt.Errorf("配置错误: %w", err)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	node, err := sharedvar.Start(ctx, opts...)
	if err != nil {
		return fmt.Errorf("启动失败: %w", err)
	}
	defer func() { _ = node.Close() }()

	fmt.Printf("📦 %s\n", sharedvar.VersionInfo())
	fmt.Printf("监听地址: %s\n", node.LocalPeer())
	log.Info("节点已启动", "addr", node.LocalPeer().String(), "commit", sharedvar.GitCommit)

	if *metricsAddr != "" {
		stop := serveMetrics(node)
		defer stop()
	}

	connectPeers(ctx, node)

	ops := false
	if *setVal != "" {
		ops = true
		if err := doSet(ctx, node); err != nil {
			return err
		}
	}
	if *getKey != "" {
		ops = true
		if err := doGet(ctx, node); err != nil {
			return err
		}
	}

	if !ops || *serve {
		fmt.Println("节点运行中，按 Ctrl+C 退出")
		<-ctx.Done()
		fmt.Println("\n正在关闭节点...")
	}
	return nil
}

// ═══════════════════════════════════════════════════════════════════════════
// 操作
// ═══════════════════════════════════════════════════════════════════════════

// connectPeers 逐个连接 -peer 指定的节点，失败只打印
func connectPeers(ctx context.Context, node *sharedvar.Node) {
	for _, addr := range splitAndTrim(*peers, ",") {
		if err := node.ConnectAddr(ctx, addr); err != nil {
			fmt.Printf("✗ 连接 %s 失败: %v\n", addr, err)
			continue
		}
		fmt.Printf("✓ 已连接 %s\n", addr)
	}
}

// doSet 先查询最新值再以下一个序列号写入
func doSet(ctx context.Context, node *sharedvar.Node) error {
	if *seed == "" {
		return errors.New("-set 需要 -seed")
	}
	raw, err := hex.DecodeString(*seed)
	if err != nil {
		return fmt.Errorf("解析种子: %w", err)
	}
	priv, err := crypto.KeyFromSeed(raw)
	if err != nil {
		return err
	}

	h, err := node.Assign(priv)
	if err != nil {
		return err
	}
	if _, err := h.Refresh(ctx); err != nil {
		fmt.Printf("⚠ 查询失败，按本地值继续: %v\n", err)
	}

	res, err := h.Set(ctx, []byte(*setVal))
	if err != nil {
		return fmt.Errorf("发布失败: %w", err)
	}
	fmt.Printf("公钥: %s\n", types.EncodePublicKey(h.PublicKey()))
	fmt.Printf("序列号: %d  本地接受: %v  推送: %d/%d\n",
		crypto.Sequence(h.Value()), res.Accepted, res.Acked, res.Sent)
	return nil
}

// doGet 查询并打印最新值
func doGet(ctx context.Context, node *sharedvar.Node) error {
	pub, err := types.ParsePublicKey(*getKey)
	if err != nil {
		return fmt.Errorf("解析公钥: %w", err)
	}

	v, err := node.Get(pub).Refresh(ctx)
	if err != nil {
		return fmt.Errorf("查询失败: %w", err)
	}
	if v == nil {
		fmt.Println("未找到该变量")
		return nil
	}
	fmt.Printf("序列号: %d\n值: %s\n", crypto.Sequence(v), v.Value)
	return nil
}

func printNewKey() error {
	pub, priv, err := crypto.GenerateKey(nil)
	if err != nil {
		return err
	}
	fmt.Printf("种子: %s\n公钥: %s\n", hex.EncodeToString(priv.Seed()), types.EncodePublicKey(pub))
	return nil
}

// serveMetrics 在 -metrics 地址上暴露 /metrics
func serveMetrics(node *sharedvar.Node) func() {
	gatherer := node.Metrics()
	if gatherer == nil {
		fmt.Println("⚠ 指标已在配置中关闭")
		return func() {}
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	srv := &http.Server{Addr: *metricsAddr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Warn("指标服务退出", "err", err)
		}
	}()
	fmt.Printf("指标地址: http://%s/metrics\n", *metricsAddr)

	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctx)
	}
}
