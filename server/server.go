// Package server exposes a caravan ledger over HTTP, for dashboards and
// charts.
//
// The session is single writer: every request holds the server lock, and
// changes are flushed to storage before the response is written.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/etnz/caravan"
	"github.com/etnz/caravan/advisor"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// AdviceTimeout bounds a background advice request.
const AdviceTimeout = 2 * time.Minute

// Server serves a session.
type Server struct {
	mu      sync.Mutex
	session *caravan.Session
	rates   caravan.Rates
	advisor *advisor.Advisor // nil when no model is configured
	board   advisor.Board
	engine  *gin.Engine
}

// New creates a server for the session. adv may be nil, advice requests are
// then rejected.
func New(s *caravan.Session, rates caravan.Rates, adv *advisor.Advisor) *Server {
	srv := &Server{session: s, rates: rates, advisor: adv}
	srv.engine = srv.routes()
	return srv
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler { return s.engine }

func (s *Server) routes() *gin.Engine {
	r := gin.New()
	r.Use(correlationID)
	r.Use(errorLogger)
	r.Use(gin.Recovery())

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowAllOrigins = true
	corsConfig.AddAllowMethods("DELETE")
	r.Use(cors.New(corsConfig))

	r.GET("/healthz", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	api := r.Group("/api")
	api.GET("/dashboard", s.dashboard)
	api.GET("/history", s.history)
	api.GET("/routes", s.routeStats)
	api.GET("/series", s.series)
	api.GET("/nodes", s.nodes)
	api.POST("/nodes", s.addNode)

	api.POST("/trades", s.recordTrade)
	api.POST("/expenses", s.recordExpense)
	api.POST("/coin-sales", s.recordCoinSale)
	api.PUT("/records/:id", s.updateRecord)
	api.DELETE("/records/:id", s.deleteRecord)

	api.GET("/shift", s.shift)
	api.POST("/shift", s.startShift)
	api.DELETE("/shift", s.stopShift)

	api.GET("/trip", s.trip)
	api.POST("/trip", s.startTrip)
	api.POST("/trip/finish", s.finishTrip)
	api.DELETE("/trip", s.cancelTrip)

	api.POST("/advice", s.requestAdvice)
	api.GET("/advice", s.advice)

	api.GET("/export", s.export)
	api.POST("/import", s.importDocument)
	return r
}

// Run serves on addr until ctx is done, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{Addr: addr, Handler: s.engine}
	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()
	logrus.WithField("addr", addr).Info("server started")

	select {
	case <-ctx.Done():
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	logrus.Info("server stopped")
	return nil
}

// correlationID tags each request with an id, taken from the request when
// present.
func correlationID(c *gin.Context) {
	cid := c.GetHeader("x-correlation-id")
	if cid == "" {
		cid = uuid.NewString()
	}
	c.Set("cid", cid)
	c.Header("x-correlation-id", cid)
	c.Next()
}

// errorLogger logs the errors of failed requests.
func errorLogger(c *gin.Context) {
	c.Next()
	if len(c.Errors) > 0 {
		logrus.WithFields(logrus.Fields{
			"cid":    c.GetString("cid"),
			"path":   c.Request.URL.Path,
			"status": c.Writer.Status(),
		}).Warn(c.Errors.String())
	}
}

// status maps domain errors to HTTP status codes.
func status(err error) int {
	switch {
	case errors.Is(err, caravan.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, caravan.ErrInvalid):
		return http.StatusBadRequest
	case errors.Is(err, caravan.ErrTripActive), errors.Is(err, caravan.ErrNoTrip):
		return http.StatusConflict
	}
	return http.StatusInternalServerError
}

func fail(c *gin.Context, code int, err error) {
	c.Error(err)
	c.AbortWithStatusJSON(code, gin.H{"error": err.Error()})
}

// read runs f under the lock and writes its result.
func (s *Server) read(c *gin.Context, f func(*caravan.Session) (any, error)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, err := f(s.session)
	if err != nil {
		fail(c, status(err), err)
		return
	}
	c.JSON(http.StatusOK, v)
}

// write runs f under the lock, flushes the changes and writes the result
// with code.
func (s *Server) write(c *gin.Context, code int, f func(*caravan.Session) (any, error)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, err := f(s.session)
	if err != nil {
		fail(c, status(err), err)
		return
	}
	if err := s.session.Flush(c.Request.Context()); err != nil {
		fail(c, http.StatusInternalServerError, err)
		return
	}
	c.JSON(code, v)
}

// bind decodes the JSON body into v, failures are ErrInvalid.
func bind(c *gin.Context, v any) error {
	if err := c.ShouldBindJSON(v); err != nil {
		return fmt.Errorf("%w: %v", caravan.ErrInvalid, err)
	}
	return nil
}
