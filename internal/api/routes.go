package api

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	"moodsong/backend/internal/recommend"
	"moodsong/backend/internal/util"
)

const (
	welcomeMessage        = "Welcome to TS Finder API!"
	defaultMaxUploadBytes = 10 << 20
	// multipartSlack covers boundaries and part headers around the uploaded file.
	multipartSlack = 64 << 10
)

// Analyzer runs the detect-then-recommend flow for each input modality.
type Analyzer interface {
	AnalyzeImageAndRecommend(ctx context.Context, image []byte) (recommend.Result, error)
	AnalyzeTextAndRecommend(ctx context.Context, text string) (recommend.Result, error)
}

// Config defines server dependencies.
type Config struct {
	AllowedOrigins []string
	MaxUploadBytes int64
}

// Server wires HTTP handlers to the mood pipeline.
type Server struct {
	analyzer       Analyzer
	allowedOrigins []string
	maxUploadBytes int64
}

// NewServer constructs the API server.
func NewServer(cfg Config, analyzer Analyzer) (*Server, error) {
	if analyzer == nil {
		return nil, errors.New("analyzer required")
	}
	maxUpload := cfg.MaxUploadBytes
	if maxUpload <= 0 {
		maxUpload = defaultMaxUploadBytes
	}
	return &Server{
		analyzer:       analyzer,
		allowedOrigins: cfg.AllowedOrigins,
		maxUploadBytes: maxUpload,
	}, nil
}

// Router configures gin routes.
func (s *Server) Router() (*gin.Engine, error) {
	r := gin.New()
	r.Use(gin.Recovery(), requestIDMiddleware(), accessLogMiddleware(), metricsMiddleware())

	corsCfg := cors.DefaultConfig()
	corsCfg.AllowCredentials = true
	if len(s.allowedOrigins) == 0 {
		corsCfg.AllowAllOrigins = true
		corsCfg.AllowCredentials = false
	} else {
		corsCfg.AllowOrigins = s.allowedOrigins
	}
	corsCfg.AllowHeaders = []string{"Origin", "Content-Type", "Accept", requestIDHeader}
	corsCfg.ExposeHeaders = []string{requestIDHeader}
	corsCfg.AllowMethods = []string{"GET", "POST", "OPTIONS"}
	r.Use(cors.New(corsCfg))

	r.GET("/", s.handleRoot)
	r.GET("/api/healthz", s.handleHealth)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	moodGroup := r.Group("/mood/analyze")
	{
		moodGroup.POST("/image", s.handleAnalyzeImage)
		moodGroup.POST("/text", s.handleAnalyzeText)
	}

	return r, nil
}

func (s *Server) handleRoot(c *gin.Context) {
	c.JSON(http.StatusOK, MessageResponse{Message: welcomeMessage})
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) handleAnalyzeImage(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, s.maxUploadBytes+multipartSlack)

	fileHeader, err := c.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		switch {
		case errors.As(err, &tooLarge):
			s.renderError(c, http.StatusRequestEntityTooLarge, errUploadTooLarge)
		case errors.Is(err, http.ErrMissingFile):
			s.renderError(c, http.StatusBadRequest, errors.New("image file is required"))
		default:
			s.renderError(c, http.StatusBadRequest, err)
		}
		return
	}
	if fileHeader.Size > s.maxUploadBytes {
		s.renderError(c, http.StatusRequestEntityTooLarge, errUploadTooLarge)
		return
	}

	src, err := fileHeader.Open()
	if err != nil {
		s.renderError(c, http.StatusBadRequest, err)
		return
	}
	defer src.Close()

	image, err := io.ReadAll(src)
	if err != nil {
		s.renderError(c, http.StatusBadRequest, err)
		return
	}
	if len(image) == 0 {
		s.renderError(c, http.StatusBadRequest, errors.New("image file is empty"))
		return
	}

	logrus.WithFields(logrus.Fields{
		"request_id": util.RequestID(c.Request.Context()),
		"filename":   fileHeader.Filename,
		"bytes":      len(image),
	}).Info("analyzing image mood")

	result, err := s.analyzer.AnalyzeImageAndRecommend(c.Request.Context(), image)
	if err != nil {
		s.renderPipelineError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (s *Server) handleAnalyzeText(c *gin.Context) {
	text, err := readText(c)
	if err != nil {
		s.renderError(c, http.StatusBadRequest, err)
		return
	}
	if strings.TrimSpace(text) == "" {
		s.renderError(c, http.StatusBadRequest, errors.New("text is required"))
		return
	}

	logrus.WithFields(logrus.Fields{
		"request_id": util.RequestID(c.Request.Context()),
		"chars":      len(text),
	}).Info("analyzing text mood")

	result, err := s.analyzer.AnalyzeTextAndRecommend(c.Request.Context(), text)
	if err != nil {
		s.renderPipelineError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// readText takes the query parameter first, then a form field, then a JSON body.
func readText(c *gin.Context) (string, error) {
	if text, ok := c.GetQuery("text"); ok && strings.TrimSpace(text) != "" {
		return text, nil
	}
	if text := c.PostForm("text"); strings.TrimSpace(text) != "" {
		return text, nil
	}
	if strings.HasPrefix(c.ContentType(), gin.MIMEJSON) {
		var req TextRequest
		if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
			return "", err
		}
		return req.Text, nil
	}
	return "", nil
}

var errUploadTooLarge = errors.New("image file exceeds upload limit")

func (s *Server) renderPipelineError(c *gin.Context, err error) {
	logrus.WithError(err).WithField("request_id", util.RequestID(c.Request.Context())).Error("mood pipeline failed")
	s.renderError(c, http.StatusInternalServerError, err)
}

func (s *Server) renderError(c *gin.Context, status int, err error) {
	c.JSON(status, ErrorResponse{Error: err.Error()})
}
