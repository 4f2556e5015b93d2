// Package auth 提供 Usable 身份源（Keycloak OIDC）的登录与 token 管理
package auth

import (
	"context"
	"fmt"
	"strings"

	"github.com/coreos/go-oidc/v3/oidc"
	"golang.org/x/oauth2"
)

// Config 定义 OIDC 客户端配置
type Config struct {
	IssuerURL    string
	ClientID     string
	ClientSecret string
	Scopes       []string
}

// Identity 是 ID Token 中的用户信息
type Identity struct {
	Subject  string
	Username string
	Email    string
	Name     string
}

// Authenticator OIDC 认证器
type Authenticator struct {
	config       Config
	provider     *oidc.Provider
	oauth2Config *oauth2.Config
	verifier     *oidc.IDTokenVerifier
}

// NewAuthenticator 通过 discovery 创建认证器
func NewAuthenticator(ctx context.Context, cfg Config) (*Authenticator, error) {
	if cfg.IssuerURL == "" || cfg.ClientID == "" {
		return nil, fmt.Errorf("%w: issuer and client id are required", ErrConfigInvalid)
	}

	provider, err := oidc.NewProvider(ctx, strings.TrimSuffix(cfg.IssuerURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("failed to discover OIDC provider: %w", err)
	}

	// discovery 文档中的 device endpoint 需要单独读取
	var extra struct {
		DeviceAuthorizationEndpoint string `json:"device_authorization_endpoint"`
	}
	if err := provider.Claims(&extra); err != nil {
		return nil, fmt.Errorf("failed to read provider metadata: %w", err)
	}
	endpoint := provider.Endpoint()
	endpoint.DeviceAuthURL = extra.DeviceAuthorizationEndpoint

	oauth2Config := &oauth2.Config{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		Endpoint:     endpoint,
		Scopes:       cfg.Scopes,
	}
	if len(oauth2Config.Scopes) == 0 {
		oauth2Config.Scopes = []string{oidc.ScopeOpenID, oidc.ScopeOfflineAccess, "profile", "email"}
	}

	return &Authenticator{
		config:       cfg,
		provider:     provider,
		oauth2Config: oauth2Config,
		verifier:     provider.Verifier(&oidc.Config{ClientID: cfg.ClientID}),
	}, nil
}

// OAuth2Config 返回底层 oauth2 配置
func (a *Authenticator) OAuth2Config() *oauth2.Config {
	return a.oauth2Config
}

// StartDeviceLogin 发起 device authorization，返回用户需要访问的地址与验证码
func (a *Authenticator) StartDeviceLogin(ctx context.Context) (*oauth2.DeviceAuthResponse, error) {
	if a.oauth2Config.Endpoint.DeviceAuthURL == "" {
		return nil, ErrDeviceFlowUnsupported
	}
	resp, err := a.oauth2Config.DeviceAuth(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to start device login: %w", err)
	}
	return resp, nil
}

// WaitForToken 轮询 token endpoint 直到用户完成授权或 ctx 结束
func (a *Authenticator) WaitForToken(ctx context.Context, da *oauth2.DeviceAuthResponse) (*oauth2.Token, error) {
	token, err := a.oauth2Config.DeviceAccessToken(ctx, da)
	if err != nil {
		return nil, fmt.Errorf("device login failed: %w", err)
	}
	return token, nil
}

// VerifyIDToken 验证 token 响应中的 id_token 并提取用户信息
func (a *Authenticator) VerifyIDToken(ctx context.Context, token *oauth2.Token) (*Identity, error) {
	rawIDToken, ok := token.Extra("id_token").(string)
	if !ok {
		return nil, fmt.Errorf("%w: no id_token in token response", ErrTokenInvalid)
	}

	idToken, err := a.verifier.Verify(ctx, rawIDToken)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTokenInvalid, err)
	}

	var claims map[string]any
	if err := idToken.Claims(&claims); err != nil {
		return nil, fmt.Errorf("failed to parse claims: %w", err)
	}
	return identityFromClaims(claims), nil
}

// TokenSource 返回自动刷新的 token source，刷新后的 token 通过 saver 持久化
func (a *Authenticator) TokenSource(ctx context.Context, token *oauth2.Token, saver TokenSaver) oauth2.TokenSource {
	return NewPersistingTokenSource(a.oauth2Config.TokenSource(ctx, token), token, saver)
}

func identityFromClaims(claims map[string]any) *Identity {
	id := &Identity{}
	id.Subject, _ = getClaimString(claims, "sub")
	id.Email, _ = getClaimString(claims, "email")
	id.Name, _ = getClaimString(claims, "name")
	for _, claim := range []string{"preferred_username", "email", "sub"} {
		if v, ok := getClaimString(claims, claim); ok && v != "" {
			id.Username = v
			break
		}
	}
	return id
}

// getClaimString 从 claims 中安全获取字符串值
func getClaimString(claims map[string]any, key string) (string, bool) {
	if v, ok := claims[key]; ok {
		if s, ok := v.(string); ok {
			return s, true
		}
	}
	return "", false
}
