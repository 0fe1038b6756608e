package http

import (
	"context"
	"net/http"
	"time"

	"github.com/dkeye/viewing/internal/app/relay"
	"github.com/dkeye/viewing/internal/domain"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

type sessionHandlers struct {
	relay *relay.Relay
}

type endQuery struct {
	Reason string `form:"reason" binding:"max=256"`
}

type endResponse struct {
	SessionID domain.SessionID `json:"sessionId"`
	Message   string           `json:"message"`
}

type sessionResponse struct {
	SessionID    domain.SessionID        `json:"sessionId"`
	HostSocketID domain.ConnID           `json:"hostSocketId"`
	HostName     string                  `json:"hostName"`
	CreatedAt    time.Time               `json:"createdAt"`
	IsRecording  bool                    `json:"isRecording"`
	Property     *domain.PropertySummary `json:"property,omitempty"`
	Participants []domain.Participant    `json:"participants"`
}

func newSessionResponse(s domain.Session) sessionResponse {
	participants := s.Participants
	if participants == nil {
		participants = []domain.Participant{}
	}
	return sessionResponse{
		SessionID:    s.ID,
		HostSocketID: s.Host,
		HostName:     s.HostName,
		CreatedAt:    s.CreatedAt,
		IsRecording:  s.Recording,
		Property:     s.Property,
		Participants: participants,
	}
}

func (h *sessionHandlers) list(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"sessions": h.relay.Registry().List()})
}

func (h *sessionHandlers) get(c *gin.Context) {
	sid := domain.SessionID(c.Param("id"))
	s, ok := h.relay.Registry().Snapshot(sid)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "session not found"})
		return
	}
	c.JSON(http.StatusOK, newSessionResponse(s))
}

func (h *sessionHandlers) end(c *gin.Context) {
	var q endQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid reason"})
		return
	}
	sid := domain.SessionID(c.Param("id"))
	reason := q.Reason
	if reason == "" {
		reason = relay.OperatorEndReason
	}
	if !h.relay.EndByOperator(sid, reason) {
		c.JSON(http.StatusNotFound, gin.H{"error": "session not found"})
		return
	}
	log.Info().Str("module", "adapters.http").Str("session", string(sid)).Str("reason", reason).Msg("session ended by operator")
	c.JSON(http.StatusOK, endResponse{SessionID: sid, Message: reason})
}

func healthz(store Pinger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if store != nil {
			ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
			defer cancel()
			if err := store.Ping(ctx); err != nil {
				log.Warn().Err(err).Str("module", "adapters.http").Msg("store ping failed")
				c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded", "error": err.Error()})
				return
			}
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	}
}
