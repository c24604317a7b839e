package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/anjerodev/dotenv/internal/domain/services"
	"github.com/anjerodev/dotenv/internal/interfaces/dto"
)

type MemberHandler struct {
	memberSvc *services.MemberService
}

func NewMemberHandler(memberSvc *services.MemberService) *MemberHandler {
	return &MemberHandler{memberSvc: memberSvc}
}

// Search looks up member candidates for the team dialog.
func (h *MemberHandler) Search(c *gin.Context) {
	var req dto.MemberSearchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, http.StatusBadRequest, err.Error())
		return
	}

	members, err := h.memberSvc.Search(c.Request.Context(), userID(c), req.Username, req.Email)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, members)
}

// Reconcile applies the team dialog's pending edits in bulk.
func (h *MemberHandler) Reconcile(c *gin.Context) {
	var req dto.MemberReconcileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, http.StatusBadRequest, err.Error())
		return
	}

	result, err := h.memberSvc.Reconcile(c.Request.Context(), req.ProjectID, req.DocumentID, userID(c), req.Members)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}
