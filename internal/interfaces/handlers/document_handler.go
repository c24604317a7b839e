package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/anjerodev/dotenv/internal/domain/services"
	"github.com/anjerodev/dotenv/internal/interfaces/dto"
)

type DocumentHandler struct {
	docSvc *services.DocumentService
}

func NewDocumentHandler(docSvc *services.DocumentService) *DocumentHandler {
	return &DocumentHandler{docSvc: docSvc}
}

func (h *DocumentHandler) ListByProject(c *gin.Context) {
	views, err := h.docSvc.ListByProject(c.Request.Context(), c.Param("id"), userID(c))
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, views)
}

func (h *DocumentHandler) Count(c *gin.Context) {
	count, err := h.docSvc.CountByProject(c.Request.Context(), c.Param("id"))
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.DocumentCountResponse{Count: count})
}

func (h *DocumentHandler) Create(c *gin.Context) {
	var req dto.DocumentCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, http.StatusBadRequest, err.Error())
		return
	}

	doc, err := h.docSvc.Create(c.Request.Context(), c.Param("id"), userID(c), req.Name, req.Content)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, doc)
}

func (h *DocumentHandler) Get(c *gin.Context) {
	docID := c.Param("docId")
	if docID == "" {
		docID = c.Param("id")
	}

	view, err := h.docSvc.Get(c.Request.Context(), docID, userID(c))
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

func (h *DocumentHandler) Update(c *gin.Context) {
	var req dto.DocumentUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, http.StatusBadRequest, err.Error())
		return
	}

	docID := c.Param("docId")
	if err := h.docSvc.Update(c.Request.Context(), c.Param("id"), docID, userID(c), req.Name, req.Content); err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.DocumentUpdateResponse{ID: docID, Success: true})
}
