// Package udp 实现 UDP 数据报传输
package udp

import "errors"

var (
	// ErrTransportClosed 传输已关闭
	ErrTransportClosed = errors.New("transport closed")

	// ErrDatagramTooLarge 数据报超过读缓冲区上限
	ErrDatagramTooLarge = errors.New("datagram too large")

	// ErrNoAddress 主机名没有可用的 IP
	ErrNoAddress = errors.New("host has no usable address")
)
