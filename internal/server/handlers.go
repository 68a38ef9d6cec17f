package server

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/wolfitem/ai-news/internal/domain/model"
)

const (
	defaultSearchLimit  = 9
	defaultHistoryLimit = 20
)

type successResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data"`
	Meta    interface{} `json:"meta,omitempty"`
}

type searchMeta struct {
	Query             string `json:"query"`
	Page              int    `json:"page"`
	Limit             int    `json:"limit"`
	RemainingRequests int    `json:"remainingRequests"`
	Cached            bool   `json:"cached"`
}

type analyzeArticleRequest struct {
	Article *model.Article `json:"article"`
}

type analyzeBatchRequest struct {
	Articles []model.Article `json:"articles"`
}

// searchNews GET /api/news/search?q=&page=&limit=
func (s *Server) searchNews(c echo.Context) error {
	query := c.QueryParam("q")
	page, err := intParam(c, "page", 1)
	if err != nil {
		return err
	}
	limit, err := intParam(c, "limit", defaultSearchLimit)
	if err != nil {
		return err
	}

	result, err := s.news.SearchNews(c.Request().Context(), query, page, limit)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, successResponse{
		Success: true,
		Data:    result,
		Meta: searchMeta{
			Query:             query,
			Page:              page,
			Limit:             limit,
			RemainingRequests: s.news.RemainingRequests(),
			Cached:            result.Cached,
		},
	})
}

// newsStatus GET /api/news/status
func (s *Server) newsStatus(c echo.Context) error {
	status := s.news.Status()
	return c.JSON(http.StatusOK, map[string]interface{}{
		"service":           status.Provider,
		"status":            model.ServiceOperational,
		"remainingRequests": status.RequestsRemaining,
		"resetTime":         status.ResetTime,
		"cache":             status.Cache,
	})
}

// analyzeArticle POST /api/analysis/article
func (s *Server) analyzeArticle(c echo.Context) error {
	var req analyzeArticleRequest
	if err := c.Bind(&req); err != nil {
		return &model.InvalidInputError{Field: "body", Message: "invalid JSON body"}
	}
	if req.Article == nil || req.Article.URL == "" || req.Article.Title == "" {
		return &model.InvalidInputError{Field: "article", Message: "Article with url and title is required"}
	}

	result, err := s.analysis.AnalyzeArticle(c.Request().Context(), *req.Article, sessionID(c))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, successResponse{Success: true, Data: result})
}

// analyzeBatch POST /api/analysis/batch
func (s *Server) analyzeBatch(c echo.Context) error {
	var req analyzeBatchRequest
	if err := c.Bind(&req); err != nil {
		return &model.InvalidInputError{Field: "body", Message: "invalid JSON body"}
	}

	result, err := s.analysis.AnalyzeBatch(c.Request().Context(), req.Articles, sessionID(c))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, successResponse{Success: true, Data: result})
}

// history GET /api/analysis/history?page=&limit=&sentiment=
func (s *Server) history(c echo.Context) error {
	page, err := intParam(c, "page", 1)
	if err != nil {
		return err
	}
	limit, err := intParam(c, "limit", defaultHistoryLimit)
	if err != nil {
		return err
	}

	result, err := s.analysis.History(c.Request().Context(), model.HistoryQuery{
		SessionID: sessionID(c),
		Sentiment: c.QueryParam("sentiment"),
		Page:      page,
		Limit:     limit,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, successResponse{Success: true, Data: result})
}

// analysisStatus GET /api/analysis/status
func (s *Server) analysisStatus(c echo.Context) error {
	return c.JSON(http.StatusOK, s.analysis.Status(c.Request().Context()))
}

func intParam(c echo.Context, name string, def int) (int, error) {
	raw := c.QueryParam(name)
	if raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, &model.InvalidInputError{Field: name, Message: name + " must be an integer"}
	}
	return v, nil
}
