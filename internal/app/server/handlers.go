package server

import (
	"encoding/base64"
	"errors"
	"math"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/codeatlas/codeatlas/internal/core/analyzer"
	"github.com/codeatlas/codeatlas/internal/core/diagram"
	"github.com/codeatlas/codeatlas/internal/core/repository"
)

// diagramRequest はダイアグラム生成リクエスト
type diagramRequest struct {
	GitHubURL string `json:"github_url"`
	APIKey    string `json:"api_key"`
	ModelName string `json:"model_name"`
	FocusArea string `json:"focus_area"`
}

// diagramStats はダイアグラムのノード・エッジ数
type diagramStats struct {
	Nodes int `json:"nodes"`
	Edges int `json:"edges"`
}

// diagramResponse はダイアグラム生成レスポンス
type diagramResponse struct {
	Success   bool         `json:"success"`
	DotSource string       `json:"dot_source"`
	Summary   string       `json:"summary"`
	Filename  string       `json:"filename"`
	Stats     diagramStats `json:"stats"`
}

// voiceRequest は音声合成リクエスト
type voiceRequest struct {
	Text    string `json:"text"`
	APIKey  string `json:"api_key"`
	VoiceID string `json:"voice_id"`
}

// analyzeRequest はコードベース解析リクエスト
type analyzeRequest struct {
	GitHubURL string `json:"github_url"`
	APIKey    string `json:"api_key"`
	ModelName string `json:"model_name"`
	Question  string `json:"question"`
}

// errorResponse はエラーレスポンス
type errorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": ServiceName,
		"version": ServiceVersion,
	})
}

func (s *Server) handleDiagram(c *gin.Context) {
	var req diagramRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}
	if req.GitHubURL == "" {
		c.JSON(http.StatusBadRequest, errorResponse{Error: "github_url is required"})
		return
	}
	if req.APIKey == "" {
		c.JSON(http.StatusBadRequest, errorResponse{Error: "api_key is required"})
		return
	}

	ctx := c.Request.Context()

	result, err := s.loader.LoadRemote(ctx, req.GitHubURL)
	if err != nil {
		s.respondError(c, err)
		return
	}

	model := analyzer.ResolveModelID(req.ModelName)
	client, err := s.newClient(ctx, req.APIKey, model)
	if err != nil {
		s.respondError(c, err)
		return
	}

	svc := analyzer.NewService(client, analyzer.WithModel(model), analyzer.WithServiceLogger(s.logger))

	dotSource, err := svc.GenerateDiagram(ctx, result.Context, req.FocusArea)
	if err != nil {
		s.respondError(c, err)
		return
	}

	// 要約の失敗でダイアグラム自体は返す
	summary, err := svc.GenerateSummary(ctx, result.Context)
	if err != nil {
		s.logger.Warn("failed to generate summary", "error", err)
		summary = ""
	}

	prepared := diagram.Prepare(dotSource)

	var filename string
	if s.store != nil {
		filename, err = s.store.Save(prepared, result.RepoName, &diagram.Metadata{
			ModelName:       model,
			FilesProcessed:  result.Stats.FilesProcessed,
			TotalCharacters: result.Stats.TotalCharacters,
		})
		if err != nil {
			s.logger.Warn("failed to save diagram", "error", err)
		}
	}

	nodes, edges := diagram.CountNodesEdges(prepared)

	c.JSON(http.StatusOK, diagramResponse{
		Success:   true,
		DotSource: prepared,
		Summary:   summary,
		Filename:  filename,
		Stats:     diagramStats{Nodes: nodes, Edges: edges},
	})
}

func (s *Server) handleVoice(c *gin.Context) {
	var req voiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}
	if req.Text == "" {
		c.JSON(http.StatusBadRequest, errorResponse{Error: "text is required"})
		return
	}
	if req.APIKey == "" {
		c.JSON(http.StatusBadRequest, errorResponse{Error: "api_key is required"})
		return
	}

	synth, err := s.newSynth(req.APIKey)
	if err != nil {
		s.respondError(c, err)
		return
	}

	audio, err := synth.Synthesize(c.Request.Context(), req.Text, req.VoiceID)
	if err != nil {
		s.respondError(c, err)
		return
	}

	duration := math.Round(float64(len(audio))/(16*1024)*10) / 10

	c.JSON(http.StatusOK, gin.H{
		"success":          true,
		"audio_base64":     base64.StdEncoding.EncodeToString(audio),
		"duration_seconds": duration,
	})
}

func (s *Server) handleAnalyze(c *gin.Context) {
	var req analyzeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}
	if req.GitHubURL == "" {
		c.JSON(http.StatusBadRequest, errorResponse{Error: "github_url is required"})
		return
	}
	if req.APIKey == "" {
		c.JSON(http.StatusBadRequest, errorResponse{Error: "api_key is required"})
		return
	}

	ctx := c.Request.Context()

	result, err := s.loader.LoadRemote(ctx, req.GitHubURL)
	if err != nil {
		s.respondError(c, err)
		return
	}

	model := analyzer.ResolveModelID(req.ModelName)
	client, err := s.newClient(ctx, req.APIKey, model)
	if err != nil {
		s.respondError(c, err)
		return
	}

	svc := analyzer.NewService(client, analyzer.WithModel(model), analyzer.WithServiceLogger(s.logger))

	var analysis string
	if req.Question != "" {
		analysis, err = svc.Chat(ctx, req.Question, result.Context, nil)
	} else {
		analysis, err = svc.GenerateSummary(ctx, result.Context)
	}
	if err != nil {
		s.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":  true,
		"analysis": analysis,
	})
}

// respondError はエラーをHTTPステータスに対応付けて返す
func (s *Server) respondError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, repository.ErrInvalidURL):
		status = http.StatusBadRequest
	case errors.Is(err, repository.ErrNotFound), errors.Is(err, diagram.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, repository.ErrNoCodeFiles), errors.Is(err, repository.ErrInvalidArchive):
		status = http.StatusUnprocessableEntity
	case errors.Is(err, repository.ErrTimeout):
		status = http.StatusGatewayTimeout
	case errors.Is(err, analyzer.ErrRateLimited), errors.Is(err, diagram.ErrRateLimited):
		status = http.StatusTooManyRequests
	case errors.Is(err, analyzer.ErrInvalidAPIKey):
		status = http.StatusUnauthorized
	}

	s.logger.Error("request failed", "request_id", c.GetString(requestIDKey), "error", err)
	c.JSON(status, errorResponse{Error: err.Error()})
}
