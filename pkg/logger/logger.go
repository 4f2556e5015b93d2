package logger

import (
	"errors"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"

	"gopkg.in/natefinch/lumberjack.v2"
)

// Config 定义日志初始化配置
// Level 支持 debug/info/warn/error，Environment 支持 prod/dev 等
// Format 为 json/text，留空时 prod 使用 json，其余使用 text
// File 非空时同时写入滚动日志文件
// Output 默认 os.Stdout，CLI 传入 os.Stderr 避免污染命令输出
type Config struct {
	Level       string
	Environment string
	Format      string
	WithSource  bool
	File        string
	Output      io.Writer
}

var (
	global *slog.Logger
	once   sync.Once
)

func levelFromString(level string) (slog.Level, error) {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, errors.New("invalid log level: " + level)
	}
}

func useJSON(cfg Config) (bool, error) {
	switch strings.ToLower(cfg.Format) {
	case "json":
		return true, nil
	case "text":
		return false, nil
	case "":
		return strings.ToLower(cfg.Environment) == "prod", nil
	default:
		return false, errors.New("invalid log format: " + cfg.Format)
	}
}

// rotatingFile 返回按大小滚动的日志文件
func rotatingFile(path string) io.Writer {
	return &lumberjack.Logger{
		Filename:   path,
		MaxSize:    100, // MB
		MaxBackups: 10,
		MaxAge:     30, // days
		Compress:   true,
	}
}

// New 根据配置创建新的 slog.Logger，不设置全局实例
func New(cfg Config) (*slog.Logger, error) {
	lvl, err := levelFromString(cfg.Level)
	if err != nil {
		return nil, err
	}
	asJSON, err := useJSON(cfg)
	if err != nil {
		return nil, err
	}

	out := cfg.Output
	if out == nil {
		out = os.Stdout
	}
	if cfg.File != "" {
		out = io.MultiWriter(out, rotatingFile(cfg.File))
	}

	handlerOpts := &slog.HandlerOptions{Level: lvl, AddSource: cfg.WithSource}
	var handler slog.Handler
	if asJSON {
		handler = slog.NewJSONHandler(out, handlerOpts)
	} else {
		handler = slog.NewTextHandler(out, handlerOpts)
	}

	return slog.New(handler), nil
}

// Init 初始化全局日志实例并设为 slog 默认 logger，重复调用将返回首次创建的 logger
func Init(cfg Config) (*slog.Logger, error) {
	var initErr error
	once.Do(func() {
		global, initErr = New(cfg)
		if initErr == nil {
			slog.SetDefault(global)
		}
	})
	return global, initErr
}

// L 返回已初始化的全局 logger，未初始化时 panic
func L() *slog.Logger {
	if global == nil {
		panic("logger.Init must be called before logger.L")
	}
	return global
}

// Component 返回带 component 字段的子 logger；未初始化时基于 slog.Default
func Component(name string) *slog.Logger {
	base := global
	if base == nil {
		base = slog.Default()
	}
	return base.With("component", name)
}
