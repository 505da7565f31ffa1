package config

import (
	"encoding/json"
	"fmt"
	"time"
)

// Duration 在 JSON 中以 "10s" 形式读写的时长
//
// 读取时也接受纳秒整数，便于直接填 time.Duration 的数值。
type Duration time.Duration

// UnmarshalJSON 接受时长字符串或纳秒整数
func (d *Duration) UnmarshalJSON(data []byte) error {
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		v, err := time.ParseDuration(s)
		if err != nil {
			return fmt.Errorf("config: bad duration %q: %w", s, err)
		}
		*d = Duration(v)
		return nil
	}

	var ns int64
	if err := json.Unmarshal(data, &ns); err != nil {
		return fmt.Errorf("config: duration must be a string like \"10s\" or integer nanoseconds: %w", err)
	}
	*d = Duration(ns)
	return nil
}

// MarshalJSON 输出为 "10s" 形式
func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

// Duration 转回 time.Duration
func (d Duration) Duration() time.Duration { return time.Duration(d) }

func (d Duration) String() string { return time.Duration(d).String() }
