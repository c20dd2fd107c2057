package conf

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/viper"
)

/* ========================================================================
 * Config Loader - 配置加载器
 * ========================================================================
 * 职责: 读取 <dir>/<name>.<type>，展开环境变量占位符后解码到结构体
 * 技术: Viper + mapstructure
 * 约定:
 *   - 结构体字段使用 yaml 标签，嵌入结构体自动展开
 *   - 文件内可写 ${VAR} / ${VAR:-default}，未设置或为空时取 default
 *   - <PREFIX>_HTTP_PORT 形式的环境变量覆盖文件中已有的键
 *   - 文件不存在不是错误，结构体保留调用方预设的默认值
 * ======================================================================== */

const defaultEnvPrefix = "APP"

// Loader 配置加载器
type Loader struct {
	dir       string
	name      string
	typ       string
	envPrefix string
}

// Option 加载器选项
type Option func(*Loader)

// WithEnvPrefix 设置覆盖用环境变量前缀，默认 APP
func WithEnvPrefix(prefix string) Option {
	return func(l *Loader) {
		l.envPrefix = prefix
	}
}

// NewLoader name 不含扩展名，typ 为 yaml / json 等
func NewLoader(dir, name, typ string, opts ...Option) *Loader {
	l := &Loader{dir: dir, name: name, typ: typ, envPrefix: defaultEnvPrefix}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Path 配置文件完整路径
func (l *Loader) Path() string {
	return filepath.Join(l.dir, l.name+"."+l.typ)
}

// Load 解码到 out，out 必须为指针
func (l *Loader) Load(out any) error {
	v := viper.New()
	v.SetConfigType(l.typ)
	v.SetEnvPrefix(l.envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	raw, err := os.ReadFile(l.Path())
	switch {
	case errors.Is(err, fs.ErrNotExist):
	case err != nil:
		return fmt.Errorf("read %s: %w", l.Path(), err)
	default:
		if err := v.ReadConfig(strings.NewReader(expandEnvPlaceholders(string(raw)))); err != nil {
			return fmt.Errorf("parse %s: %w", l.Path(), err)
		}
	}

	return v.Unmarshal(out, decoderOptions)
}

var placeholder = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)(?::-(.*?))?\}`)

func expandEnvPlaceholders(raw string) string {
	return placeholder.ReplaceAllStringFunc(raw, func(match string) string {
		sub := placeholder.FindStringSubmatch(match)
		if val := os.Getenv(sub[1]); val != "" {
			return val
		}
		return sub[2]
	})
}

// decoderOptions 按 yaml 标签解码，并支持 "30s" 时长与 "a,b" 逗号列表
func decoderOptions(dc *mapstructure.DecoderConfig) {
	dc.TagName = "yaml"
	dc.Squash = true
	dc.WeaklyTypedInput = true
	dc.DecodeHook = mapstructure.ComposeDecodeHookFunc(
		mapstructure.StringToTimeDurationHookFunc(),
		mapstructure.StringToSliceHookFunc(","),
	)
}
