package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/pelletier/go-toml/v2"
)

// AppConfig 应用配置
type AppConfig struct {
	Server ServerConfig `toml:"server"`
	Data   DataConfig   `toml:"data"`
	Report ReportConfig `toml:"report"`
	Rules  RulesConfig  `toml:"rules"`
}

// ServerConfig 服务器配置
type ServerConfig struct {
	Port    int  `toml:"port"`
	DevMode bool `toml:"dev_mode"`
}

// DataConfig 数据配置
type DataConfig struct {
	DataDir string `toml:"data_dir"`
}

// ReportConfig 报告生成配置
type ReportConfig struct {
	VariableSheet      string `toml:"variable_sheet"`
	Diagnostics        bool   `toml:"diagnostics"`
	DownloadTTLMinutes int    `toml:"download_ttl_minutes"`
	MaxUploadMB        int    `toml:"max_upload_mb"`
}

// LoadConfigInfo 配置加载元信息
type LoadConfigInfo struct {
	Path          string
	Found         bool
	PortSpecified bool
}

// DefaultConfig 默认配置
func DefaultConfig() *AppConfig {
	return &AppConfig{
		Server: ServerConfig{
			Port:    20262,
			DevMode: false,
		},
		Data: DataConfig{
			DataDir: "data",
		},
		Report: ReportConfig{
			VariableSheet:      "變數",
			Diagnostics:        true,
			DownloadTTLMinutes: 10,
			MaxUploadMB:        32,
		},
	}
}

func isPortSpecifiedInToml(data []byte) bool {
	var raw map[string]any
	if err := toml.Unmarshal(data, &raw); err != nil {
		return false
	}

	serverAny, ok := raw["server"]
	if !ok {
		return false
	}

	serverMap, ok := serverAny.(map[string]any)
	if !ok {
		return false
	}

	_, ok = serverMap["port"]
	return ok
}

// GetExeDir 获取可执行文件所在目录
func GetExeDir() (string, error) {
	exe, err := os.Executable()
	if err != nil {
		return "", err
	}
	return filepath.Dir(exe), nil
}

// LoadConfigWithInfo 从可执行文件同目录的 config.toml 加载配置
func LoadConfigWithInfo() (*AppConfig, LoadConfigInfo, error) {
	exeDir, err := GetExeDir()
	if err != nil {
		// 无法获取可执行文件目录，使用当前目录
		exeDir = "."
	}
	return Load(filepath.Join(exeDir, "config.toml"))
}

// Load 从指定路径加载配置；文件不存在时使用默认配置
func Load(configPath string) (*AppConfig, LoadConfigInfo, error) {
	info := LoadConfigInfo{Path: configPath}
	config := DefaultConfig()

	data, err := os.ReadFile(configPath)
	switch {
	case err == nil:
		info.Found = true
		info.PortSpecified = isPortSpecifiedInToml(data)
		if err := toml.Unmarshal(data, config); err != nil {
			return nil, info, fmt.Errorf("parse %s: %w", configPath, err)
		}
	case os.IsNotExist(err):
		// 配置文件不存在，使用默认配置
	default:
		return nil, info, err
	}

	// 环境变量覆盖
	if v := os.Getenv("GENERATOR_DATA_DIR"); v != "" {
		config.Data.DataDir = v
	}
	if v := os.Getenv("GENERATOR_PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil || port <= 0 || port > 65535 {
			return nil, info, fmt.Errorf("invalid GENERATOR_PORT %q", v)
		}
		config.Server.Port = port
		info.PortSpecified = true
	}

	if err := config.Validate(); err != nil {
		return nil, info, err
	}
	return config, info, nil
}

// Validate 校验配置取值
func (c *AppConfig) Validate() error {
	if c.Server.Port < 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server.port %d", c.Server.Port)
	}
	if c.Report.DownloadTTLMinutes < 0 {
		return fmt.Errorf("invalid report.download_ttl_minutes %d", c.Report.DownloadTTLMinutes)
	}
	if c.Report.MaxUploadMB < 0 {
		return fmt.Errorf("invalid report.max_upload_mb %d", c.Report.MaxUploadMB)
	}
	if _, err := c.Rules.Apply(nil); err != nil {
		return err
	}
	return nil
}

// SaveConfig 校验后把配置写为 TOML，目录不存在时创建
func SaveConfig(config *AppConfig, configPath string) error {
	if err := config.Validate(); err != nil {
		return err
	}
	data, err := toml.Marshal(config)
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(configPath), 0755); err != nil {
		return err
	}
	return os.WriteFile(configPath, data, 0644)
}

// ResolveDataDir 数据目录：绝对路径原样使用，相对路径基于可执行文件目录
func ResolveDataDir(config *AppConfig) string {
	if filepath.IsAbs(config.Data.DataDir) {
		return config.Data.DataDir
	}
	exeDir, err := GetExeDir()
	if err != nil {
		exeDir = "."
	}
	return filepath.Join(exeDir, config.Data.DataDir)
}

// EnsureDataDir 确保数据目录存在
func EnsureDataDir(config *AppConfig) (string, error) {
	dataDir := ResolveDataDir(config)
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return "", err
	}
	return dataDir, nil
}

// DatabasePath 生成记录数据库路径
func DatabasePath(config *AppConfig) string {
	return filepath.Join(ResolveDataDir(config), "generator.db")
}
