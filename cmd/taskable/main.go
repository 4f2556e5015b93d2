package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var version = "dev"

func main() {
	rootCmd := &cobra.Command{
		Use:           "taskable",
		Short:         "Taskable CLI - todo cards stored in Usable",
		Long:          "Manage Taskable todo cards from the command line. Cards live as fragments in a Usable workspace.",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return initLogging(cmd)
		},
	}

	// 添加全局标志
	addGlobalFlags(rootCmd)

	rootCmd.AddCommand(newLoginCmd())
	rootCmd.AddCommand(newLogoutCmd())
	rootCmd.AddCommand(newWhoamiCmd())
	rootCmd.AddCommand(newWorkspaceCmd())
	rootCmd.AddCommand(newSetupCmd())
	rootCmd.AddCommand(newResetCmd())
	rootCmd.AddCommand(newCardCmd())
	rootCmd.AddCommand(newItemCmd())
	rootCmd.AddCommand(newTemplatesCmd())

	if err := rootCmd.Execute(); err != nil {
		exitError("%v", err)
	}
}

// exitError 输出错误到 stderr 并退出
func exitError(msg string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, "Error: "+msg+"\n", args...)
	os.Exit(1)
}
