package main

import (
	"flag"
	"os"
	"strings"

	"github.com/dep2p/go-sharedvar"
)

// 环境变量
const (
	envListen = "SHAREDVAR_LISTEN"
	envPeers  = "SHAREDVAR_PEERS"
)

// buildOptions 构建选项
//
// 配置优先级（从高到低）：
//  1. 命令行参数
//  2. 环境变量（SHAREDVAR_* 前缀）
//  3. 配置文件
//  4. 默认值
func buildOptions() ([]sharedvar.Option, error) {
	var opts []sharedvar.Option

	// 配置文件必须最先应用，后续选项在其基础上覆盖
	if *configFile != "" {
		opts = append(opts, sharedvar.WithConfigFile(*configFile))
	}

	if addr := pick("listen", *listen, envListen); addr != "" {
		opts = append(opts, sharedvar.WithListen(addr))
	}
	if !isFlagSet("peer") {
		// 环境变量中的节点在后台自动连接
		if ps := splitAndTrim(os.Getenv(envPeers), ","); len(ps) > 0 {
			opts = append(opts, sharedvar.WithPeers(ps...))
		}
	}
	if *timeout > 0 {
		opts = append(opts, sharedvar.WithRequestTimeout(*timeout))
	}
	return opts, nil
}

// pick 命令行优先，其次环境变量
func pick(flagName, flagValue, env string) string {
	if isFlagSet(flagName) {
		return flagValue
	}
	return os.Getenv(env)
}

// isFlagSet 检查命令行参数是否被显式设置
func isFlagSet(name string) bool {
	set := false
	flag.Visit(func(f *flag.Flag) {
		if f.Name == name {
			set = true
		}
	})
	return set
}

func splitAndTrim(s, sep string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, sep)
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
