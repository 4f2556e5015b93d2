package main

import (
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/houzhh15/taskable/pkg/storage"
	"github.com/houzhh15/taskable/pkg/templates"
)

func newWorkspaceCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "workspace",
		Short: "工作区与片段类型",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "列出可访问的工作区",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := NewSession(cmd)
			if err != nil {
				return err
			}
			list, err := s.Client.ListWorkspaces(cmd.Context())
			if err != nil {
				return err
			}
			return printOutput(s.Config.Output, list, func(w io.Writer) {
				tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
				fmt.Fprintln(tw, "ID\tNAME")
				for _, ws := range list {
					fmt.Fprintf(tw, "%s\t%s\n", ws.ID, ws.Name)
				}
				tw.Flush()
			})
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "types",
		Short: "列出工作区的片段类型",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := NewSession(cmd)
			if err != nil {
				return err
			}
			ws, err := s.Workspace()
			if err != nil {
				return err
			}
			types, err := s.Client.ListFragmentTypes(cmd.Context(), ws.WorkspaceID)
			if err != nil {
				return err
			}
			return printOutput(s.Config.Output, types, func(w io.Writer) {
				tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
				fmt.Fprintln(tw, "ID\tNAME\tDESCRIPTION")
				for _, t := range types {
					fmt.Fprintf(tw, "%s\t%s\t%s\n", t.ID, t.Name, t.Description)
				}
				tw.Flush()
			})
		},
	})
	return cmd
}

func newSetupCmd() *cobra.Command {
	c := &cobra.Command{
		Use:   "setup",
		Short: "选择工作区与卡片片段类型，并同步聊天模板",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := NewSession(cmd)
			if err != nil {
				return err
			}
			if s.Config.WorkspaceID == "" {
				return fmt.Errorf("--workspace-id is required, see 'taskable workspace list'")
			}

			ctx := cmd.Context()
			ft, err := resolveFragmentType(ctx, s.Client, s.Config.WorkspaceID, mustGetString(cmd, "fragment-type"))
			if err != nil {
				return err
			}
			cfg := storage.TaskableConfig{WorkspaceID: s.Config.WorkspaceID, FragmentTypeID: ft.ID}

			if skip, _ := cmd.Flags().GetBool("skip-templates"); !skip {
				result, err := s.Templates().Reconcile(ctx, cfg.WorkspaceID, cfg.FragmentTypeID)
				if err != nil {
					return err
				}
				cfg = templates.SaveConfig(cfg, *result, time.Now())
			}
			if err := s.Local.Set(cfg); err != nil {
				return err
			}

			return printOutput(s.Config.Output, cfg, func(w io.Writer) {
				fmt.Fprintf(w, "workspace:     %s\n", cfg.WorkspaceID)
				fmt.Fprintf(w, "fragment type: %s (%s)\n", ft.Name, ft.ID)
				if cfg.TemplatesConfig != nil {
					fmt.Fprintf(w, "template:      %s\n", cfg.TemplatesConfig.TemplateFragmentID)
					fmt.Fprintf(w, "instructions:  %s\n", cfg.TemplatesConfig.InstructionSetFragmentID)
				}
			})
		},
	}
	c.Flags().String("fragment-type", "Cards", "卡片使用的片段类型（名称或ID）")
	c.Flags().Bool("skip-templates", false, "不同步聊天模板")
	return c
}

func newResetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "reset",
		Short: "清除本地工作区配置",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := LoadConfig(cmd)
			if err := storage.NewConfigStore(cfg.Home).Clear(); err != nil {
				return err
			}
			fmt.Fprintln(cmd.ErrOrStderr(), "Workspace configuration cleared.")
			return nil
		},
	}
}
