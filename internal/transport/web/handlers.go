package web

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sandevgo/tuskrelay/internal/service/guard"
)

type chatResponse struct {
	Reply     string `json:"reply"`
	SessionID string `json:"sessionId"`
}

func (s *Server) handleHealth(c *gin.Context) {
	c.String(http.StatusOK, "OK")
}

func (s *Server) handleChat(c *gin.Context) {
	err := s.guard.Admit(
		c.GetHeader("Origin"),
		c.GetHeader(guard.WidgetTokenHeader),
		c.ClientIP(),
	)
	if err != nil {
		abortWithError(c, err)
		return
	}

	req, err := guard.Decode(c.Request.Body)
	if err != nil {
		abortWithError(c, err)
		return
	}

	reply, err := s.chat.Reply(c.Request.Context(), req.SessionID, req.Message)
	if err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, chatResponse{
		Reply:     reply.Text,
		SessionID: reply.SessionID,
	})
}

// handlePreflight is never reached: cors answers every OPTIONS request.
// Registering it makes the router route OPTIONS through the group.
func handlePreflight(c *gin.Context) {
	c.Status(http.StatusNoContent)
}
