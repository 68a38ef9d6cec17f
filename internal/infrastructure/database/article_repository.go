package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/wolfitem/ai-news/internal/domain/model"
	"github.com/wolfitem/ai-news/internal/infrastructure/logger"
)

// 定宽格式，保证按字符串排序即按时间排序
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

const articleColumns = `url_hash, url, title, description, content, image, published_at,
	source_name, source_url, analysis, session_id, search_query, retry_count, status, created_at, updated_at`

// SQLiteArticleRepository 基于SQLite的文章存储，实现 service.ArticleStore
type SQLiteArticleRepository struct {
	db  Database
	now func() time.Time
}

// NewSQLiteArticleRepository 创建一个新的SQLite文章存储库
func NewSQLiteArticleRepository(db Database) *SQLiteArticleRepository {
	return &SQLiteArticleRepository{
		db:  db,
		now: time.Now,
	}
}

// FindByURLHash 根据urlHash查询文章，不存在时返回 nil
func (r *SQLiteArticleRepository) FindByURLHash(ctx context.Context, urlHash string) (*model.Article, error) {
	row := r.db.QueryRowContext(ctx, "SELECT "+articleColumns+" FROM articles WHERE url_hash = ?", urlHash)
	article, err := scanArticle(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("查询文章失败: %w", err)
	}
	return article, nil
}

// UpsertByURLHash 以urlHash为键创建或更新文章。
// 已有记录保留 created_at；新记录不带分析结果时保留旧的分析结果。
func (r *SQLiteArticleRepository) UpsertByURLHash(ctx context.Context, urlHash string, article model.Article) (*model.Article, error) {
	now := r.now().UTC()
	article.URLHash = urlHash
	if article.Status == "" {
		article.Status = model.StatusPending
	}

	var (
		analysisJSON   sql.NullString
		sentimentLabel string
	)
	if article.Analysis != nil {
		data, err := json.Marshal(article.Analysis)
		if err != nil {
			return nil, fmt.Errorf("序列化分析结果失败: %w", err)
		}
		analysisJSON = sql.NullString{String: string(data), Valid: true}
		sentimentLabel = article.Analysis.Sentiment.Label
	}

	query := `
	INSERT INTO articles (` + articleColumns + `, sentiment_label)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	ON CONFLICT(url_hash) DO UPDATE SET
		url = excluded.url,
		title = excluded.title,
		description = excluded.description,
		content = excluded.content,
		image = excluded.image,
		published_at = excluded.published_at,
		source_name = excluded.source_name,
		source_url = excluded.source_url,
		analysis = COALESCE(excluded.analysis, articles.analysis),
		sentiment_label = CASE WHEN excluded.analysis IS NULL THEN articles.sentiment_label ELSE excluded.sentiment_label END,
		session_id = excluded.session_id,
		search_query = excluded.search_query,
		retry_count = excluded.retry_count,
		status = excluded.status,
		updated_at = excluded.updated_at
	`

	_, err := r.db.ExecContext(ctx, query,
		urlHash, article.URL, article.Title, article.Description, article.Content, article.Image,
		formatTime(article.PublishedAt), article.Source.Name, article.Source.URL, analysisJSON,
		article.SessionID, article.SearchQuery, article.RetryCount, article.Status,
		formatTime(now), formatTime(now), sentimentLabel,
	)
	if err != nil {
		return nil, fmt.Errorf("保存文章失败: %w", err)
	}

	logger.Debug("文章保存成功", "url_hash", urlHash, "status", article.Status)
	return r.FindByURLHash(ctx, urlHash)
}

// ListHistory 查询会话内已完成的分析，按创建时间倒序
func (r *SQLiteArticleRepository) ListHistory(ctx context.Context, q model.HistoryQuery) ([]model.Article, int, error) {
	where := "WHERE session_id = ? AND status = ?"
	args := []interface{}{q.SessionID, model.StatusCompleted}
	if q.Sentiment != "" {
		where += " AND sentiment_label = ?"
		args = append(args, q.Sentiment)
	}

	var total int
	if err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM articles "+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("统计历史记录失败: %w", err)
	}

	offset := (q.Page - 1) * q.Limit
	if offset < 0 {
		offset = 0
	}
	rows, err := r.db.QueryContext(ctx,
		"SELECT "+articleColumns+" FROM articles "+where+" ORDER BY created_at DESC, id DESC LIMIT ? OFFSET ?",
		append(args, q.Limit, offset)...)
	if err != nil {
		return nil, 0, fmt.Errorf("查询历史记录失败: %w", err)
	}
	defer rows.Close()

	articles := make([]model.Article, 0, q.Limit)
	for rows.Next() {
		article, err := scanArticle(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("读取历史记录失败: %w", err)
		}
		articles = append(articles, *article)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("读取历史记录失败: %w", err)
	}
	return articles, total, nil
}

// Ping 检查存储可用性
func (r *SQLiteArticleRepository) Ping(ctx context.Context) error {
	return r.db.Ping(ctx)
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanArticle(row rowScanner) (*model.Article, error) {
	var (
		a                               model.Article
		publishedAt, createdAt, updated string
		analysisJSON                    sql.NullString
	)
	err := row.Scan(&a.URLHash, &a.URL, &a.Title, &a.Description, &a.Content, &a.Image, &publishedAt,
		&a.Source.Name, &a.Source.URL, &analysisJSON, &a.SessionID, &a.SearchQuery, &a.RetryCount,
		&a.Status, &createdAt, &updated)
	if err != nil {
		return nil, err
	}

	a.PublishedAt = parseTime(publishedAt)
	a.CreatedAt = parseTime(createdAt)
	a.UpdatedAt = parseTime(updated)
	if analysisJSON.Valid && analysisJSON.String != "" {
		var analysis model.AnalysisResult
		if err := json.Unmarshal([]byte(analysisJSON.String), &analysis); err != nil {
			return nil, fmt.Errorf("解析分析结果失败: %w", err)
		}
		a.Analysis = &analysis
	}
	return &a, nil
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(timeLayout)
}

func parseTime(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}
	}
	return t
}
