package httpapi

import (
	"errors"
	"net/http"
	"time"

	"github.com/dmitrijs2005/custodian/internal/common"
	"github.com/dmitrijs2005/custodian/internal/server/models"
	"github.com/gin-gonic/gin"
)

type errorResponse struct {
	Error string `json:"error"`
}

type redeemRequest struct {
	Code string `json:"code" binding:"required"`
}

type documentView struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Category string `json:"category"`
}

type redeemResponse struct {
	Name       string         `json:"name,omitempty"`
	Categories []string       `json:"categories"`
	ExpiresAt  time.Time      `json:"expires_at"`
	Documents  []documentView `json:"documents"`
}

type documentResponse struct {
	URL    string `json:"url"`
	Action string `json:"action"`
}

func (s *Server) healthz(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) redeem(c *gin.Context) {
	var req redeemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid request"})
		return
	}

	grant, err := s.codes.Redeem(c.Request.Context(), req.Code)
	if err != nil {
		s.writeError(c, err)
		return
	}

	resp := redeemResponse{
		Name:       grant.Code.Name,
		Categories: make([]string, 0, len(grant.Code.Categories)),
		ExpiresAt:  grant.Code.ExpiresAt,
		Documents:  make([]documentView, 0, len(grant.Documents)),
	}
	for _, t := range grant.Code.Categories {
		resp.Categories = append(resp.Categories, string(t))
	}
	for _, d := range grant.Documents {
		resp.Documents = append(resp.Documents, documentView{ID: d.ID, Name: d.Name, Category: string(d.Category)})
	}
	c.JSON(http.StatusOK, resp)
}

// document redeems the code again, signs a short-lived download URL and
// records the access. The URL is withheld unless the event was recorded, and
// nothing is recorded for a URL that could not be signed.
func (s *Server) document(c *gin.Context) {
	ctx := c.Request.Context()
	documentID := c.Param("documentID")
	code := c.Query("code")
	action := models.AccessAction(c.DefaultQuery("action", string(models.ActionView)))
	if code == "" || !action.Valid() {
		c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid request"})
		return
	}

	grant, err := s.codes.Redeem(ctx, code)
	if err != nil {
		s.writeError(c, err)
		return
	}

	var doc *models.Document
	for _, d := range grant.Documents {
		if d.ID == documentID {
			doc = d
			break
		}
	}
	if doc == nil {
		s.writeError(c, common.ErrorForbidden)
		return
	}

	url, err := s.presigner.PresignGet(ctx, doc.StorageKey, action, doc.Name)
	if err != nil {
		s.writeError(c, err)
		return
	}

	if _, err := s.access.LogAccess(ctx, grant.Code.ID, doc.ID, action, c.ClientIP(), c.Request.UserAgent()); err != nil {
		s.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, documentResponse{URL: url, Action: string(action)})
}

func (s *Server) writeError(c *gin.Context, err error) {
	_ = c.Error(err)
	switch {
	case errors.Is(err, common.ErrorNotFound), errors.Is(err, common.ErrorForbidden):
		c.JSON(http.StatusForbidden, errorResponse{Error: common.GenericAccessDenied})
	case errors.Is(err, common.ErrorValidation):
		c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid request"})
	case errors.Is(err, common.ErrorCodeExpired), errors.Is(err, common.ErrorCodeRevoked), errors.Is(err, common.ErrorInvalidState):
		c.JSON(http.StatusGone, errorResponse{Error: "share code is no longer active"})
	default:
		c.JSON(http.StatusInternalServerError, errorResponse{Error: "internal error"})
	}
}
