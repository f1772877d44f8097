/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>

*/
package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "checksheet-gin",
	Short: "Quality checksheet lifecycle API server",
	Long: `Checksheet Gin is a REST API server for quality inspection checksheets.
It manages dimensional inspection reports and final inspection sheets through
a pending/revision/approved lifecycle, with per-line tolerance verdicts and
append-only approval and revision ledgers.`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	// 全局配置标志将在后续添加
}

// GetRootCmd 返回根命令（用于测试）
func GetRootCmd() *cobra.Command {
	return rootCmd
}
