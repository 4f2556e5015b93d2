package main

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/houzhh15/taskable/pkg/templates"
)

func newTemplatesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "templates",
		Short: "聊天代理使用的模板与指令集",
	}
	cmd.AddCommand(newTemplatesStatusCmd())
	cmd.AddCommand(newTemplatesSyncCmd())
	return cmd
}

func newTemplatesStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "检查模板与指令集是否为当前版本",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := NewSession(cmd)
			if err != nil {
				return err
			}
			ws, err := s.Workspace()
			if err != nil {
				return err
			}
			status, err := s.Templates().CheckStatus(cmd.Context(), ws.WorkspaceID)
			if err != nil {
				return err
			}
			return printOutput(s.Config.Output, status, func(w io.Writer) {
				for _, a := range []templates.ArtifactStatus{status.Template, status.InstructionSet} {
					fmt.Fprintf(w, "%-26s %-8s %s\n", a.Kind, a.State, a.FragmentID)
				}
				if ws.TemplatesConfig != nil {
					fmt.Fprintf(w, "last checked %s\n", ws.TemplatesConfig.LastChecked.Local().Format(time.RFC1123))
				}
			})
		},
	}
}

func newTemplatesSyncCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "sync",
		Short: "创建或替换过期的模板与指令集",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := NewSession(cmd)
			if err != nil {
				return err
			}
			ws, err := s.Workspace()
			if err != nil {
				return err
			}
			result, err := s.Templates().Reconcile(cmd.Context(), ws.WorkspaceID, ws.FragmentTypeID)
			if err != nil {
				return err
			}
			saved, err := s.SaveTemplates(ws.WorkspaceID, *result, time.Now())
			if err != nil {
				return err
			}
			if !saved {
				fmt.Fprintf(os.Stderr, "Note: workspace %s is not the saved workspace, local config left unchanged\n", ws.WorkspaceID)
			}
			return printOutput(s.Config.Output, result, func(w io.Writer) {
				fmt.Fprintf(w, "template:     %s\n", result.TemplateID)
				fmt.Fprintf(w, "instructions: %s\n", result.InstructionSetID)
			})
		},
	}
}
