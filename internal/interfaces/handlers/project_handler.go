package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/anjerodev/dotenv/internal/domain/services"
	"github.com/anjerodev/dotenv/internal/interfaces/dto"
)

type ProjectHandler struct {
	projectSvc *services.ProjectService
}

func NewProjectHandler(projectSvc *services.ProjectService) *ProjectHandler {
	return &ProjectHandler{projectSvc: projectSvc}
}

func (h *ProjectHandler) List(c *gin.Context) {
	views, err := h.projectSvc.List(c.Request.Context(), userID(c))
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, views)
}

func (h *ProjectHandler) Count(c *gin.Context) {
	count, ids, err := h.projectSvc.Count(c.Request.Context(), userID(c))
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.ProjectCountResponse{Count: count, Projects: ids})
}

func (h *ProjectHandler) Get(c *gin.Context) {
	view, err := h.projectSvc.Get(c.Request.Context(), c.Param("id"), userID(c))
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

func (h *ProjectHandler) Create(c *gin.Context) {
	var req dto.ProjectCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, http.StatusBadRequest, err.Error())
		return
	}

	project, err := h.projectSvc.Create(c.Request.Context(), userID(c), req.Name)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, project)
}

func (h *ProjectHandler) Update(c *gin.Context) {
	var req dto.ProjectUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, http.StatusBadRequest, err.Error())
		return
	}

	projectID := c.Param("id")
	if err := h.projectSvc.Update(c.Request.Context(), projectID, userID(c), req.Name, req.RemovedDocs); err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.ProjectDeleteResponse{ID: projectID, Success: true})
}

func (h *ProjectHandler) Delete(c *gin.Context) {
	projectID := c.Param("id")
	if err := h.projectSvc.Delete(c.Request.Context(), projectID, userID(c)); err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.ProjectDeleteResponse{ID: projectID, Success: true})
}
