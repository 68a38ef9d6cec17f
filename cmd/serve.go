package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/wolfitem/ai-news/internal/infrastructure/logger"
	"github.com/wolfitem/ai-news/internal/server"
)

var memStatsInterval time.Duration

// serveCmd 启动HTTP API服务
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "启动HTTP API服务",
	Long:  `启动新闻搜索和文章分析的HTTP API服务，收到 SIGINT/SIGTERM 后优雅退出。`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		config := loadConfig(viper.GetViper())
		app, err := newApplication(ctx, config)
		if err != nil {
			return err
		}
		defer app.Close()

		if memStatsInterval > 0 {
			monitor := logger.NewMemStatsMonitor(memStatsInterval)
			monitor.Start()
			defer monitor.Stop()
		}

		srv := server.New(config.Server, app.news, app.analysis, app.metrics)
		if err := srv.Start(ctx); err != nil {
			return fmt.Errorf("HTTP服务异常退出: %w", err)
		}
		logger.Info("HTTP服务已停止")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringP("address", "a", "", "监听地址，覆盖 server.address")
	serveCmd.Flags().DurationVar(&memStatsInterval, "memstats-interval", 5*time.Minute, "内存统计日志间隔，0 表示关闭")
	_ = viper.BindPFlag("server.address", serveCmd.Flags().Lookup("address"))
}
