package xconf

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/rawbytes"
	"github.com/knadh/koanf/v2"

	"github.com/omeyang/xbackoff/pkg/resilience/xbackoff"
)

// Format 定义配置文件格式。
type Format string

// 支持的配置格式。
const (
	// FormatYAML YAML 格式（推荐用于 K8s ConfigMap）。
	FormatYAML Format = "yaml"

	// FormatJSON JSON 格式。
	FormatJSON Format = "json"
)

// 配置键。
const (
	keyMultiplier    = "multiplier"
	keyJitter        = "jitter"
	keyInitialJitter = "initial_jitter"
	keyInitialDelay  = "initial_delay"
	keyMaxDelay      = "max_delay"
)

// FromFile 从文件加载退避参数，根据扩展名自动检测格式（.yaml/.yml 或 .json）。
// 文件中省略的键保持 xbackoff.NewOptions 的默认值。
func FromFile(path string) (xbackoff.Options, error) {
	if path == "" {
		return xbackoff.NewOptions(), ErrEmptyPath
	}

	format, err := detectFormat(path)
	if err != nil {
		return xbackoff.NewOptions(), err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return xbackoff.NewOptions(), fmt.Errorf("%w: %w", ErrLoadFailed, err)
	}

	return FromBytes(data, format)
}

// FromBytes 从字节数据加载退避参数，需要显式指定格式。
// 空数据返回默认参数，与空文件的行为一致。
func FromBytes(data []byte, format Format) (xbackoff.Options, error) {
	o := xbackoff.NewOptions()
	if !isValidFormat(format) {
		return o, ErrUnsupportedFormat
	}
	if len(data) == 0 {
		return o, nil
	}

	k := koanf.New(".")
	if err := loadData(k, data, format); err != nil {
		return o, err
	}

	if k.Exists(keyMultiplier) {
		o = o.WithMultiplier(k.Float64(keyMultiplier))
	}
	if k.Exists(keyJitter) {
		o = o.WithJitter(k.Float64(keyJitter))
	}
	if k.Exists(keyInitialJitter) {
		o = o.WithInitialJitter(k.Float64(keyInitialJitter))
	}

	if d, set, err := durationAt(k, keyInitialDelay); err != nil {
		return xbackoff.NewOptions(), err
	} else if set {
		o = o.WithInitialDelay(d)
	}
	if d, set, err := durationAt(k, keyMaxDelay); err != nil {
		return xbackoff.NewOptions(), err
	} else if set {
		o = o.WithMaxDelay(d)
	}

	return o, nil
}

// detectFormat 根据文件扩展名检测配置格式。
func detectFormat(path string) (Format, error) {
	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".json":
		return FormatJSON, nil
	default:
		return "", fmt.Errorf("%w: unknown extension %q", ErrUnsupportedFormat, ext)
	}
}

// isValidFormat 检查格式是否有效。
func isValidFormat(format Format) bool {
	switch format {
	case FormatYAML, FormatJSON:
		return true
	default:
		return false
	}
}

// loadData 加载数据到 koanf 实例。
func loadData(k *koanf.Koanf, data []byte, format Format) error {
	var parser koanf.Parser
	switch format {
	case FormatYAML:
		parser = yaml.Parser()
	case FormatJSON:
		parser = json.Parser()
	default:
		return ErrUnsupportedFormat
	}

	if err := k.Load(rawbytes.Provider(data), parser); err != nil {
		return fmt.Errorf("%w: %w", ErrParseFailed, err)
	}
	return nil
}

// durationAt 读取 Go duration 字符串或纳秒数值。
// 设计决策: 不用 koanf 的 Duration 辅助方法，它对无法解析的字符串
// 静默返回 0，会把配置笔误变成"无延迟"。这里显式解析并返回 ErrInvalidValue。
func durationAt(k *koanf.Koanf, key string) (time.Duration, bool, error) {
	if !k.Exists(key) {
		return 0, false, nil
	}
	switch v := k.Get(key).(type) {
	case string:
		d, err := time.ParseDuration(v)
		if err != nil {
			return 0, false, fmt.Errorf("%w: %s: %w", ErrInvalidValue, key, err)
		}
		return d, true, nil
	default:
		return k.Duration(key), true, nil
	}
}
