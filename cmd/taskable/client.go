package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/oauth2"

	"github.com/houzhh15/taskable/pkg/auth"
	"github.com/houzhh15/taskable/pkg/cards"
	"github.com/houzhh15/taskable/pkg/logger"
	"github.com/houzhh15/taskable/pkg/storage"
	"github.com/houzhh15/taskable/pkg/templates"
	"github.com/houzhh15/taskable/pkg/usable"
)

// Session 汇总一次命令执行所需的配置、本地存储与 API 客户端
type Session struct {
	Config   *Config
	Local    *storage.ConfigStore
	Sessions *storage.SessionStore
	Client   *usable.Client
	Logger   *slog.Logger
}

// NewSession 创建带认证的会话
func NewSession(cmd *cobra.Command) (*Session, error) {
	cfg := LoadConfig(cmd)
	s := &Session{
		Config:   cfg,
		Local:    storage.NewConfigStore(cfg.Home),
		Sessions: storage.NewSessionStore(cfg.Home),
		Logger:   logger.Component("cli"),
	}

	ts, err := s.tokenSource(cmd.Context())
	if err != nil {
		return nil, err
	}
	s.Client = usable.NewClient(cfg.APIURL, ts, usable.WithLogger(logger.Component("usable")))
	return s, nil
}

// tokenSource 优先使用显式 token，其次使用 login 保存的会话
func (s *Session) tokenSource(ctx context.Context) (oauth2.TokenSource, error) {
	if s.Config.Token != "" {
		return oauth2.StaticTokenSource(&oauth2.Token{AccessToken: s.Config.Token, TokenType: "Bearer"}), nil
	}

	tok, err := s.Sessions.Get()
	if err != nil {
		return nil, err
	}
	if tok == nil {
		return nil, fmt.Errorf("%w: run 'taskable login' or set TASKABLE_TOKEN", auth.ErrNotLoggedIn)
	}

	if s.Config.Issuer == "" || s.Config.ClientID == "" || tok.RefreshToken == "" {
		if info, err := auth.Inspect(tok.AccessToken); err == nil && info.Expired(time.Now(), 0) {
			return nil, fmt.Errorf("session expired at %s: run 'taskable login'", info.ExpiresAt.Local().Format(time.RFC822))
		}
		return oauth2.StaticTokenSource(tok), nil
	}

	a, err := auth.NewAuthenticator(ctx, auth.Config{IssuerURL: s.Config.Issuer, ClientID: s.Config.ClientID})
	if err != nil {
		return nil, err
	}
	// 刷新使用独立的 context，命令结束前 token 可能需要多次刷新
	return a.TokenSource(context.Background(), tok, s.Sessions), nil
}

// Workspace 返回本地保存的工作区配置，--workspace-id 覆盖保存的工作区
func (s *Session) Workspace() (*storage.TaskableConfig, error) {
	local, err := s.Local.Get()
	if err != nil {
		return nil, err
	}
	if local == nil {
		local = &storage.TaskableConfig{}
	}
	if s.Config.WorkspaceID != "" && s.Config.WorkspaceID != local.WorkspaceID {
		local = &storage.TaskableConfig{WorkspaceID: s.Config.WorkspaceID}
	}
	if local.WorkspaceID == "" {
		return nil, errors.New("no workspace configured, run 'taskable setup' or pass --workspace-id")
	}
	return local, nil
}

// SaveTemplates 把模板结果合并进本地保存的配置。--workspace-id 指向其他工作区时
// 不写入，返回 false
func (s *Session) SaveTemplates(workspaceID string, result templates.Result, now time.Time) (bool, error) {
	local, err := s.Local.Get()
	if err != nil {
		return false, err
	}
	if local == nil || local.WorkspaceID != workspaceID {
		return false, nil
	}
	if err := s.Local.Set(templates.SaveConfig(*local, result, now)); err != nil {
		return false, err
	}
	return true, nil
}

// Cards 返回当前工作区的卡片服务，并在模板超过 24 小时未检查时给出提示
func (s *Session) Cards() (*cards.Service, error) {
	ws, err := s.Workspace()
	if err != nil {
		return nil, err
	}
	if templates.ShouldCheck(ws, time.Now()) {
		fmt.Fprintln(os.Stderr, "Note: chat templates have not been checked in the last 24h, run 'taskable templates sync'")
	}
	return cards.NewService(s.Client, ws.WorkspaceID, ws.FragmentTypeID, logger.Component("cards")), nil
}

// Templates 返回模板管理器
func (s *Session) Templates() *templates.Manager {
	return templates.NewManager(s.Client, logger.Component("templates"))
}
