package main

import (
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/houzhh15/taskable/pkg/auth"
	"github.com/houzhh15/taskable/pkg/storage"
)

func newLoginCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "login",
		Short: "通过 OIDC device flow 登录 Usable",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := LoadConfig(cmd)
			if cfg.Issuer == "" || cfg.ClientID == "" {
				return errors.New("login needs --issuer and --client-id (or TASKABLE_ISSUER / TASKABLE_CLIENT_ID)")
			}

			ctx := cmd.Context()
			a, err := auth.NewAuthenticator(ctx, auth.Config{IssuerURL: cfg.Issuer, ClientID: cfg.ClientID})
			if err != nil {
				return err
			}
			da, err := a.StartDeviceLogin(ctx)
			if err != nil {
				return err
			}

			uri := da.VerificationURIComplete
			if uri == "" {
				uri = da.VerificationURI
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "Open %s and enter code %s\n", uri, da.UserCode)

			tok, err := a.WaitForToken(ctx, da)
			if err != nil {
				return err
			}
			if err := storage.NewSessionStore(cfg.Home).Set(tok); err != nil {
				return err
			}

			id, err := a.VerifyIDToken(ctx, tok)
			if err != nil {
				fmt.Fprintln(cmd.ErrOrStderr(), "Logged in.")
				return nil
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "Logged in as %s.\n", id.Username)
			return nil
		},
	}
}

func newLogoutCmd() *cobra.Command {
	c := &cobra.Command{
		Use:   "logout",
		Short: "删除本地登录会话",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := LoadConfig(cmd)
			if err := storage.NewSessionStore(cfg.Home).Clear(); err != nil {
				return err
			}
			if all, _ := cmd.Flags().GetBool("all"); all {
				if err := storage.NewConfigStore(cfg.Home).Clear(); err != nil {
					return err
				}
			}
			fmt.Fprintln(cmd.ErrOrStderr(), "Logged out.")
			return nil
		},
	}
	c.Flags().Bool("all", false, "同时清除工作区配置")
	return c
}

type whoami struct {
	Subject   string    `json:"subject"`
	Username  string    `json:"username,omitempty"`
	Email     string    `json:"email,omitempty"`
	Issuer    string    `json:"issuer,omitempty"`
	ExpiresAt time.Time `json:"expiresAt,omitempty"`
	Expired   bool      `json:"expired"`
}

func newWhoamiCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "显示当前令牌对应的用户",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := LoadConfig(cmd)
			raw := cfg.Token
			if raw == "" {
				tok, err := storage.NewSessionStore(cfg.Home).Get()
				if err != nil {
					return err
				}
				if tok == nil {
					return auth.ErrNotLoggedIn
				}
				raw = tok.AccessToken
			}

			info, err := auth.Inspect(raw)
			if err != nil {
				return err
			}
			out := whoami{
				Subject:   info.Subject,
				Username:  info.Username,
				Email:     info.Email,
				Issuer:    info.Issuer,
				ExpiresAt: info.ExpiresAt,
				Expired:   info.Expired(time.Now(), 0),
			}
			return printOutput(cfg.Output, out, func(w io.Writer) {
				name := out.Username
				if name == "" {
					name = out.Subject
				}
				fmt.Fprintf(w, "%s", name)
				if out.Email != "" {
					fmt.Fprintf(w, " <%s>", out.Email)
				}
				fmt.Fprintln(w)
				if !out.ExpiresAt.IsZero() {
					state := "expires"
					if out.Expired {
						state = "expired"
					}
					fmt.Fprintf(w, "token %s %s\n", state, out.ExpiresAt.Local().Format(time.RFC1123))
				}
			})
		},
	}
}
