package server

import (
	"context"
	"errors"
	"net/http"

	"github.com/etnz/caravan/advisor"
	"github.com/gin-gonic/gin"
)

var errNoAdvisor = errors.New("no advisor configured")

// requestAdvice starts an advice request in the background. The answer is
// read with GET /api/advice; an answer to a superseded request is dropped.
func (s *Server) requestAdvice(c *gin.Context) {
	if s.advisor == nil {
		fail(c, http.StatusServiceUnavailable, errNoAdvisor)
		return
	}

	s.mu.Lock()
	snap := advisor.SnapshotOf(s.session)
	s.mu.Unlock()

	token, _ := s.board.Go(context.Background(), func(ctx context.Context) string {
		ctx, cancel := context.WithTimeout(ctx, AdviceTimeout)
		defer cancel()
		return s.advisor.RequestAdvice(ctx, snap)
	})
	c.JSON(http.StatusAccepted, gin.H{"token": token})
}

func (s *Server) advice(c *gin.Context) {
	text, pending := s.board.State()
	c.JSON(http.StatusOK, gin.H{"text": text, "pending": pending})
}

