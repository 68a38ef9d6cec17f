package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	searchPage  int
	searchLimit int
)

// searchCmd 执行一次新闻搜索并输出JSON
var searchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "搜索新闻",
	Long:  `调用配置的搜索提供方搜索新闻，按页输出JSON结果。`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		config := loadConfig(viper.GetViper())
		app, err := newApplication(cmd.Context(), config)
		if err != nil {
			return err
		}
		defer app.Close()

		result, err := app.news.SearchNews(cmd.Context(), args[0], searchPage, searchLimit)
		if err != nil {
			return fmt.Errorf("搜索失败: %w", err)
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	},
}

func init() {
	rootCmd.AddCommand(searchCmd)

	searchCmd.Flags().IntVarP(&searchPage, "page", "p", 1, "页码 (1-10)")
	searchCmd.Flags().IntVarP(&searchLimit, "limit", "l", 9, "每页数量 (1-10)")
}
