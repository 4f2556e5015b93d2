package main

import (
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/houzhh15/taskable/pkg/logger"
	"github.com/houzhh15/taskable/pkg/storage"
)

const defaultAPIURL = "https://usable.dev"

// Config 保存 CLI 全局配置
type Config struct {
	APIURL      string `yaml:"api_url" json:"api_url"`
	Token       string `yaml:"token" json:"token"`
	Issuer      string `yaml:"issuer" json:"issuer"`
	ClientID    string `yaml:"client_id" json:"client_id"`
	WorkspaceID string `yaml:"workspace_id" json:"workspace_id"`
	LogLevel    string `yaml:"log_level" json:"log_level"`
	LogFile     string `yaml:"log_file" json:"log_file"`
	Output      string `yaml:"-" json:"-"`
	Home        string `yaml:"-" json:"-"`
}

// LoadConfig 从命令行标志、环境变量、配置文件加载配置（优先级从高到低）
func LoadConfig(cmd *cobra.Command) *Config {
	cfg := &Config{Home: storage.DefaultHome()}

	// 尝试从配置文件读取基础值
	loadConfigFile(filepath.Join(cfg.Home, "config.yaml"), cfg)

	// 环境变量覆盖配置文件
	envs := []struct {
		key    string
		target *string
	}{
		{"TASKABLE_API_URL", &cfg.APIURL},
		{"TASKABLE_TOKEN", &cfg.Token},
		{"TASKABLE_ISSUER", &cfg.Issuer},
		{"TASKABLE_CLIENT_ID", &cfg.ClientID},
		{"TASKABLE_WORKSPACE_ID", &cfg.WorkspaceID},
		{"TASKABLE_LOG_LEVEL", &cfg.LogLevel},
	}
	for _, e := range envs {
		if v := os.Getenv(e.key); v != "" {
			*e.target = v
		}
	}

	// 命令行标志覆盖环境变量
	flags := []struct {
		name   string
		target *string
	}{
		{"api-url", &cfg.APIURL},
		{"token", &cfg.Token},
		{"issuer", &cfg.Issuer},
		{"client-id", &cfg.ClientID},
		{"workspace-id", &cfg.WorkspaceID},
		{"log-level", &cfg.LogLevel},
		{"output", &cfg.Output},
	}
	for _, f := range flags {
		if v, _ := cmd.Flags().GetString(f.name); v != "" {
			*f.target = v
		}
	}

	// 默认值
	if cfg.APIURL == "" {
		cfg.APIURL = defaultAPIURL
	}
	if cfg.Output == "" {
		cfg.Output = "text"
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = "warn"
	}

	return cfg
}

// loadConfigFile 从 ~/.taskable/config.yaml 读取配置
func loadConfigFile(path string, cfg *Config) {
	data, err := os.ReadFile(path)
	if err != nil {
		return
	}
	_ = yaml.Unmarshal(data, cfg)
}

// addGlobalFlags 为 root 命令添加全局标志
func addGlobalFlags(cmd *cobra.Command) {
	cmd.PersistentFlags().String("api-url", "", "Usable API 地址 (env: TASKABLE_API_URL, 默认: "+defaultAPIURL+")")
	cmd.PersistentFlags().String("token", "", "访问令牌，跳过登录会话 (env: TASKABLE_TOKEN)")
	cmd.PersistentFlags().String("issuer", "", "OIDC issuer (env: TASKABLE_ISSUER)")
	cmd.PersistentFlags().String("client-id", "", "OIDC client id (env: TASKABLE_CLIENT_ID)")
	cmd.PersistentFlags().StringP("workspace-id", "w", "", "工作区ID，覆盖 setup 保存的值 (env: TASKABLE_WORKSPACE_ID)")
	cmd.PersistentFlags().String("log-level", "", "日志级别: debug/info/warn/error (默认: warn)")
	cmd.PersistentFlags().StringP("output", "o", "", "输出格式: json / text (默认: text)")
}

// initLogging 初始化 CLI 日志，日志写入 stderr
func initLogging(cmd *cobra.Command) error {
	cfg := LoadConfig(cmd)
	_, err := logger.Init(logger.Config{
		Level:  cfg.LogLevel,
		File:   cfg.LogFile,
		Output: os.Stderr,
	})
	return err
}
