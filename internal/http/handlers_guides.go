package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"pocketledger/internal/auth"
	"pocketledger/internal/core"
	"pocketledger/internal/guides"
)

type guideList struct {
	Guides     []guides.Guide `json:"guides"`
	Disclaimer string         `json:"disclaimer"`
}

type guideDetail struct {
	guides.Guide
	Disclaimer string `json:"disclaimer"`
}

func (s *Server) handleListGuides(c *gin.Context) {
	writeOK(c, http.StatusOK, guideList{Guides: guides.List(), Disclaimer: guides.Disclaimer})
}

func (s *Server) handleGetGuide(c *gin.Context) {
	g, err := guides.Get(c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	writeOK(c, http.StatusOK, guideDetail{Guide: g, Disclaimer: guides.Disclaimer})
}

type interactionRequest struct {
	InteractionType string            `json:"interaction_type"`
	Metadata        map[string]string `json:"metadata"`
}

func (s *Server) handleRecordInteraction(c *gin.Context) {
	id := c.Param("id")
	if !guides.Exists(id) {
		writeError(c, guides.ErrUnknownGuide)
		return
	}
	var req interactionRequest
	if err := bindJSON(c, &req); err != nil {
		writeError(c, err)
		return
	}
	res := s.ledger.RecordInteraction(c.Request.Context(), auth.UserID(c), core.InteractionForm{
		GuideID:         id,
		InteractionType: req.InteractionType,
		Metadata:        req.Metadata,
	})
	writeResult(c, http.StatusCreated, res, identity[core.GuideInteraction])
}

// handleSavedGuides returns the catalog entries the user bookmarked. Saved
// ids that are no longer in the catalog are skipped.
func (s *Server) handleSavedGuides(c *gin.Context) {
	res := s.ledger.SavedGuides(c.Request.Context(), auth.UserID(c))
	writeResult(c, http.StatusOK, res, func(ids []string) guideList {
		out := guideList{Guides: []guides.Guide{}, Disclaimer: guides.Disclaimer}
		for _, id := range ids {
			if g, err := guides.Get(id); err == nil {
				out.Guides = append(out.Guides, g)
			}
		}
		return out
	})
}
