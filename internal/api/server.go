package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"StockScreener/internal/metrics"
	"StockScreener/internal/model"
	"StockScreener/internal/recorder"
	"StockScreener/internal/report"
	"StockScreener/internal/scheduler"
	"StockScreener/internal/strategy"
)

// Scanner runs scans and keeps the latest report.
type Scanner interface {
	RunNow(ctx context.Context, kind strategy.Kind, p model.Params) (*model.Report, error)
	Latest() *model.Report
}

// Server exposes scans over HTTP.
type Server struct {
	Scanner  Scanner
	Recorder recorder.Recorder
	Metrics  *metrics.Metrics
	Strategy strategy.Kind
	Params   model.Params
}

// Router builds the gin engine.
func (s *Server) Router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(requestLogger())

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(s.Metrics.Handler()))

	api := r.Group("/api")
	api.GET("/strategies", s.listStrategies)
	api.POST("/scans", s.runScan)
	api.GET("/scans/latest", s.latest)
	api.GET("/scans/latest.csv", s.latestCSV)
	api.GET("/runs", s.recentRuns)
	return r
}

// ListenAndServe serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		zap.S().Infof("http api listening on %s", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
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
		zap.S().Debugf("%s %s %d %v", c.Request.Method, c.Request.URL.Path, c.Writer.Status(), time.Since(start))
	}
}

func (s *Server) listStrategies(c *gin.Context) {
	type item struct {
		Slug    string `json:"slug"`
		Name    string `json:"name"`
		MinBars int    `json:"min_bars"`
		Default bool   `json:"default"`
	}
	out := make([]item, 0, len(strategy.Kinds()))
	for _, k := range strategy.Kinds() {
		out = append(out, item{Slug: k.Slug(), Name: k.String(), MinBars: strategy.MinBars(k, s.Params), Default: k == s.Strategy})
	}
	c.JSON(http.StatusOK, gin.H{"data": out, "params": s.Params})
}

type scanRequest struct {
	Strategy string          `json:"strategy"`
	Params   json.RawMessage `json:"params"`
}

func (s *Server) runScan(c *gin.Context) {
	var req scanRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
	}

	kind := s.Strategy
	if req.Strategy != "" {
		k, err := strategy.ParseKind(req.Strategy)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		kind = k
	}

	// Overrides apply on top of the configured parameters.
	p := s.Params
	if len(bytes.TrimSpace(req.Params)) > 0 {
		if err := json.Unmarshal(req.Params, &p); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "params: " + err.Error()})
			return
		}
	}
	if err := p.Validate(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	rep, err := s.Scanner.RunNow(c.Request.Context(), kind, p)
	switch {
	case errors.Is(err, scheduler.ErrScanInProgress):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		return
	case err != nil:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": rep, "matches": len(rep.Matches())})
}

func (s *Server) latest(c *gin.Context) {
	rep := s.Scanner.Latest()
	if rep == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "no scan has completed yet"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": rep})
}

func (s *Server) latestCSV(c *gin.Context) {
	rep := s.Scanner.Latest()
	if rep == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "no scan has completed yet"})
		return
	}
	kind, err := strategy.ParseKind(rep.Strategy)
	if err != nil {
		kind = s.Strategy
	}

	var buf bytes.Buffer
	if err := report.WriteCSV(&buf, rep.Matches()); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.Header("Content-Disposition", `attachment; filename="`+report.CSVFileName(kind)+`"`)
	c.Data(http.StatusOK, "text/csv; charset=utf-8", buf.Bytes())
}

func (s *Server) recentRuns(c *gin.Context) {
	limit := 20
	if v := c.Query("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 || n > 500 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be between 1 and 500"})
			return
		}
		limit = n
	}
	runs, err := s.Recorder.RecentRuns(limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if runs == nil {
		runs = []recorder.RunSummary{}
	}
	c.JSON(http.StatusOK, gin.H{"data": runs})
}
