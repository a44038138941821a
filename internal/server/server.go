// Package server exposes the bias-detection pipeline over a JSON API with
// explicit per-user sessions.
package server

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/DouglasBergamim/Detect-Wikipedia-Bias/internal/app"
	"github.com/DouglasBergamim/Detect-Wikipedia-Bias/internal/arguments"
	"github.com/DouglasBergamim/Detect-Wikipedia-Bias/internal/article"
	"github.com/DouglasBergamim/Detect-Wikipedia-Bias/internal/session"
)

// Pipeline is the subset of the application the API drives.
type Pipeline interface {
	Trending(ctx context.Context, topics []string, topK int, date string) app.Trending
	Analyze(ctx context.Context, doc article.Document) session.Analysis
	Neutralize(ctx context.Context, texts []string) map[string]string
	MissingArguments(ctx context.Context, doc article.Document) ([]arguments.SectionArguments, []arguments.Argument)
}

// Server holds the API dependencies.
type Server struct {
	Pipeline Pipeline
	Sessions *session.Store
}

func New(p Pipeline) *Server {
	return &Server{Pipeline: p, Sessions: session.NewStore()}
}

// Router builds the gin engine with all routes.
func (s *Server) Router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), requestLogger())

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := r.Group("/sessions")
	{
		api.POST("", s.createSession)
		api.DELETE("/:id", s.deleteSession)
		api.GET("/:id/articles", s.listArticles)
		api.POST("/:id/articles", s.fetchArticles)
		api.POST("/:id/articles/:pageid/analyze", s.analyze)
		api.GET("/:id/articles/:pageid/render", s.render)
		api.GET("/:id/articles/:pageid/sentences/:idx/context", s.sentenceContext)
		api.PUT("/:id/articles/:pageid/selection", s.selectSentences)
		api.POST("/:id/articles/:pageid/neutralize", s.neutralize)
		api.POST("/:id/articles/:pageid/arguments", s.missingArguments)
	}
	return r
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{Addr: addr, Handler: s.Router(), ReadHeaderTimeout: 10 * time.Second}
	errc := make(chan error, 1)
	go func() {
		log.Info().Str("addr", addr).Msg("serving API")
		errc <- srv.ListenAndServe()
	}()
	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		ev := log.Info()
		if c.Writer.Status() >= http.StatusInternalServerError {
			ev = log.Warn()
		}
		ev.Str("method", c.Request.Method).
			Str("path", c.FullPath()).
			Int("status", c.Writer.Status()).
			Dur("latency", time.Since(start)).
			Msg("request")
	}
}

func abort(c *gin.Context, code int, err error) {
	c.AbortWithStatusJSON(code, gin.H{"error": err.Error()})
}

// sessionOf resolves the :id parameter, writing 404 when unknown.
func (s *Server) sessionOf(c *gin.Context) (*session.Session, bool) {
	sess, err := s.Sessions.Get(c.Param("id"))
	if err != nil {
		abort(c, http.StatusNotFound, err)
		return nil, false
	}
	return sess, true
}

// documentOf resolves :id and :pageid.
func (s *Server) documentOf(c *gin.Context) (*session.Session, article.Document, bool) {
	sess, ok := s.sessionOf(c)
	if !ok {
		return nil, article.Document{}, false
	}
	id, err := strconv.ParseInt(c.Param("pageid"), 10, 64)
	if err != nil {
		abort(c, http.StatusBadRequest, errors.New("invalid page id"))
		return nil, article.Document{}, false
	}
	doc, err := sess.Document(id)
	if err != nil {
		abort(c, http.StatusNotFound, err)
		return nil, article.Document{}, false
	}
	return sess, doc, true
}

// analysisOf resolves the stored analysis, writing 409 when the document was
// not analyzed yet.
func analysisOf(c *gin.Context, sess *session.Session, id int64) (session.Analysis, bool) {
	an, err := sess.Analysis(id)
	if err != nil {
		abort(c, http.StatusConflict, err)
		return session.Analysis{}, false
	}
	return an, true
}
