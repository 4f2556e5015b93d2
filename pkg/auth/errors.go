package auth

import "errors"

// 错误定义
var (
	// ErrConfigInvalid 配置无效
	ErrConfigInvalid = errors.New("invalid auth configuration")

	// ErrDeviceFlowUnsupported 身份源未提供 device authorization endpoint
	ErrDeviceFlowUnsupported = errors.New("identity provider does not support device login")

	// ErrTokenInvalid Token 无效
	ErrTokenInvalid = errors.New("token is invalid")

	// ErrNotLoggedIn 本地没有可用会话
	ErrNotLoggedIn = errors.New("not logged in")
)
