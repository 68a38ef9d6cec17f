package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/wolfitem/ai-news/internal/domain/model"
)

var (
	analyzeTitle   string
	analyzeContent string
	analyzeSession string
)

// analyzeCmd 分析一篇文章并输出JSON
var analyzeCmd = &cobra.Command{
	Use:   "analyze [url]",
	Short: "分析一篇文章",
	Long: `抓取文章正文，生成摘要并计算情感评分，结果写入数据库后以JSON输出。
已经分析过的URL直接返回数据库中的结果。`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		config := loadConfig(viper.GetViper())
		app, err := newApplication(cmd.Context(), config)
		if err != nil {
			return err
		}
		defer app.Close()

		title := analyzeTitle
		if title == "" {
			title = args[0]
		}
		session := analyzeSession
		if session == "" {
			session = "cli-" + uuid.NewString()
		}

		article := model.Article{URL: args[0], Title: title, Content: analyzeContent}
		result, err := app.analysis.AnalyzeArticle(cmd.Context(), article, session)
		if err != nil {
			return fmt.Errorf("分析失败: %w", err)
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	},
}

func init() {
	rootCmd.AddCommand(analyzeCmd)

	analyzeCmd.Flags().StringVarP(&analyzeTitle, "title", "t", "", "文章标题，默认使用URL")
	analyzeCmd.Flags().StringVarP(&analyzeContent, "content", "c", "", "文章正文，抽取失败时使用")
	analyzeCmd.Flags().StringVarP(&analyzeSession, "session", "s", "", "会话ID，默认随机生成")
}
