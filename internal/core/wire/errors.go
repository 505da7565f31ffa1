package wire

import "errors"

var (
	// ErrNotSequence 数据不是有序序列
	ErrNotSequence = errors.New("message is not a sequence")

	// ErrTooShort 序列少于两个元素
	ErrTooShort = errors.New("message shorter than [type, requestId]")

	// ErrNotNumeric type 或 requestId 不是数字
	ErrNotNumeric = errors.New("message header is not numeric")

	// ErrTrailingData 序列之后还有多余字节
	ErrTrailingData = errors.New("trailing bytes after message")

	// ErrMissingArgument 载荷元素不存在
	ErrMissingArgument = errors.New("missing payload argument")
)
