// Package server exposes the pipeline over HTTP for previewing runs from
// internal tooling. Runs triggered here are always dry-run; committing
// writes stays a deliberate CLI action.
package server

import (
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/agenthands/cobalt/internal/core"
	"github.com/agenthands/cobalt/internal/core/enrich"
	"github.com/agenthands/cobalt/internal/core/fetch"
)

type Server struct {
	cleaner *core.Cleaner
	log     *zap.Logger

	mu   sync.RWMutex
	runs map[string]*core.RunResult
}

func New(cleaner *core.Cleaner, log *zap.Logger) *Server {
	if log == nil {
		log = zap.NewNop()
	}
	return &Server{
		cleaner: cleaner,
		log:     log,
		runs:    make(map[string]*core.RunResult),
	}
}

func (s *Server) SetupRouter() *gin.Engine {
	r := gin.Default()
	r.GET("/healthz", s.Health)
	r.POST("/runs", s.StartRun)
	r.GET("/runs/:id", s.GetRun)
	return r
}

func (s *Server) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

type RunRequest struct {
	Limit      int  `json:"limit"`
	Merge      bool `json:"merge"`
	EnrichOnly bool `json:"enrich_only"`
	Workers    int  `json:"workers"`
}

// StartRun executes a dry-run pipeline synchronously and returns its
// summary. Results stay available under /runs/:id for later inspection.
func (s *Server) StartRun(c *gin.Context) {
	var req RunRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	result, err := s.cleaner.Run(c.Request.Context(), core.RunOptions{
		Limit:      req.Limit,
		DryRun:     true,
		Merge:      req.Merge,
		EnrichOnly: req.EnrichOnly,
		Fetch:      fetch.Options{Workers: req.Workers},
		Enrich:     enrich.Options{Workers: req.Workers},
	})
	if err != nil {
		s.log.Error("run failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	s.mu.Lock()
	s.runs[result.RunID] = result
	s.mu.Unlock()
	c.JSON(http.StatusOK, result)
}

func (s *Server) GetRun(c *gin.Context) {
	s.mu.RLock()
	result, ok := s.runs[c.Param("id")]
	s.mu.RUnlock()
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "run not found"})
		return
	}
	c.JSON(http.StatusOK, result)
}
