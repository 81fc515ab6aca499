// Package config 管理 CLI 的客户端属性文件。
// 属性都挂在 core 节下（host / port / tls / instance / processor），
// 文件默认在 ~/.config/astrolink-cli/config.yaml，环境变量
// ASTROLINK_CORE_* 可临时覆盖文件里的值。
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/viper"
)

// DefaultPort 服务器缺省端口
const DefaultPort = 8090

const envPrefix = "ASTROLINK"

// Core 建连所需的核心属性
type Core struct {
	Host      string
	Port      int
	TLS       bool
	Instance  string
	Processor string
}

// Address 返回 host:port；host 缺省 localhost，port 缺省 DefaultPort
func (c Core) Address() string {
	host := c.Host
	if host == "" {
		host = "localhost"
	}
	port := c.Port
	if port == 0 {
		port = DefaultPort
	}
	return fmt.Sprintf("%s:%d", host, port)
}

// Store 属性文件的读写句柄。
// 读取走叠加了环境变量的视图，落盘只走纯文件视图，
// 环境变量的覆盖值永远进不了文件。
type Store struct {
	v    *viper.Viper // 文件 + 环境变量覆盖
	file *viper.Viper // 仅文件内容
	path string
}

// DefaultPath 返回属性文件的默认位置
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("locate home directory: %w", err)
	}
	return filepath.Join(home, ".config", "astrolink-cli", "config.yaml"), nil
}

// Open 打开属性文件（path 为空用默认位置）。文件不存在不算错，首次 Set 时创建。
func Open(path string) (*Store, error) {
	if path == "" {
		var err error
		if path, err = DefaultPath(); err != nil {
			return nil, err
		}
	}

	v, err := openViper(path, true)
	if err != nil {
		return nil, err
	}
	file, err := openViper(path, false)
	if err != nil {
		return nil, err
	}
	return &Store{v: v, file: file, path: path}, nil
}

// openViper 读入属性文件；withEnv 决定是否叠加 ASTROLINK_* 环境变量
func openViper(path string, withEnv bool) (*viper.Viper, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	if withEnv {
		v.SetEnvPrefix(envPrefix)
		v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
		v.AutomaticEnv()
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !os.IsNotExist(err) && !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}
	return v, nil
}

// Path 属性文件位置
func (s *Store) Path() string {
	return s.path
}

// Core 解析核心属性。逐键读取而不是整体反序列化，
// 让只在环境变量里出现的键也能生效。
func (s *Store) Core() Core {
	return Core{
		Host:      s.v.GetString("core.host"),
		Port:      s.v.GetInt("core.port"),
		TLS:       s.v.GetBool("core.tls"),
		Instance:  s.v.GetString("core.instance"),
		Processor: s.v.GetString("core.processor"),
	}
}

// Get 取 core 节下的一个属性
func (s *Store) Get(property string) (string, bool) {
	key := "core." + strings.ToLower(property)
	if !s.v.IsSet(key) {
		return "", false
	}
	return s.v.GetString(key), true
}

// List 按属性名排序列出 core 节的全部属性
func (s *Store) List() []string {
	settings := s.coreSettings()
	keys := make([]string, 0, len(settings))
	for key := range settings {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	lines := make([]string, 0, len(keys))
	for _, key := range keys {
		lines = append(lines, fmt.Sprintf("%s = %v", key, settings[key]))
	}
	return lines
}

// Set 写一个属性并落盘。落盘基于纯文件视图：
// 同名键在环境变量里的覆盖值不会跟着被固化
func (s *Store) Set(property, value string) error {
	key := "core." + property
	s.v.Set(key, value)
	s.file.Set(key, value)
	return s.save(s.file.AllSettings())
}

// Unset 删除一个属性并落盘
func (s *Store) Unset(property string) error {
	settings := s.file.AllSettings()
	if core, ok := settings["core"].(map[string]interface{}); ok {
		delete(core, property)
		if len(core) == 0 {
			delete(settings, "core")
		}
	}
	if err := s.save(settings); err != nil {
		return err
	}
	// 重新装载，让内存里的旧值也消失
	fresh, err := Open(s.path)
	if err != nil {
		return err
	}
	s.v = fresh.v
	s.file = fresh.file
	return nil
}

func (s *Store) coreSettings() map[string]interface{} {
	if core, ok := s.v.AllSettings()["core"].(map[string]interface{}); ok {
		return core
	}
	return map[string]interface{}{}
}

// save 把给定设置写盘；settings 必须来自纯文件视图
func (s *Store) save(settings map[string]interface{}) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}
	out := viper.New()
	out.SetConfigFile(s.path)
	out.SetConfigType("yaml")
	if err := out.MergeConfigMap(settings); err != nil {
		return fmt.Errorf("assemble config: %w", err)
	}
	if err := out.WriteConfigAs(s.path); err != nil {
		return fmt.Errorf("write config %s: %w", s.path, err)
	}
	return nil
}
