package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"pocketledger/internal/auth"
	"pocketledger/internal/core"
	"pocketledger/internal/log"
	"pocketledger/internal/social"
)

type loginRequest struct {
	FID     int64 `json:"fid"`
	Refresh bool  `json:"refresh"`
}

type loginView struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
	User      core.User `json:"user"`
}

// handleLogin resolves the social profile, upserts the local user and issues
// a session token. With the demo provider any fid logs in as the demo user.
// refresh drops a cached profile first so profile edits show up at once.
func (s *Server) handleLogin(c *gin.Context) {
	ctx := c.Request.Context()

	var req loginRequest
	if err := bindJSON(c, &req); err != nil {
		writeError(c, err)
		return
	}
	_, demo := s.social.(social.Demo)
	if req.FID <= 0 && !demo {
		writeError(c, core.ErrInvalidFID)
		return
	}

	if r, ok := s.social.(social.Refresher); ok && req.Refresh {
		r.Forget(req.FID)
	}
	profile := s.social.UserByFID(ctx, req.FID)
	if !profile.Success {
		writeFailure(c, profile.Kind, profile.Error)
		return
	}

	user := s.ledger.UpsertUser(ctx, profile.Data.User())
	if !user.Success {
		writeFailure(c, user.Kind, user.Error)
		return
	}

	token, expiresAt, err := s.issuer.Issue(user.Data.ID, user.Data.FID)
	if err != nil {
		log.FromContext(ctx).ErrorContext(ctx, "Failed to issue session token",
			log.NewFields().WithOperation(log.OpLogin).WithUser(user.Data.ID).WithError(err).ToSlice()...)
		writeError(c, err)
		return
	}

	log.FromContext(ctx).InfoContext(ctx, "User logged in",
		log.NewFields().WithOperation(log.OpLogin).WithUser(user.Data.ID).With(log.FieldFID, user.Data.FID).ToSlice()...)
	c.JSON(http.StatusOK, response{
		Success: true,
		Data:    loginView{Token: token, ExpiresAt: expiresAt, User: user.Data},
		Demo:    demo,
	})
}

func (s *Server) handleMe(c *gin.Context) {
	writeResult(c, http.StatusOK, s.ledger.GetUser(c.Request.Context(), auth.UserID(c)), identity[core.User])
}
