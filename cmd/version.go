package cmd

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"
)

// 编译时通过 -ldflags "-X github.com/wolfitem/ai-news/cmd.Version=..." 注入
var (
	Version   string
	Commit    string
	BuildDate string
)

// versionCmd 表示 version 命令
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "显示程序版本信息",
	Run: func(cmd *cobra.Command, args []string) {
		version := Version
		if version == "" {
			version = "开发版本"
		}
		fmt.Printf("AI-News 版本: %s\n", version)
		if Commit != "" {
			fmt.Printf("提交: %s\n", Commit)
		}
		if BuildDate != "" {
			fmt.Printf("构建时间: %s\n", BuildDate)
		}
		fmt.Printf("Go: %s %s/%s\n", runtime.Version(), runtime.GOOS, runtime.GOARCH)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
