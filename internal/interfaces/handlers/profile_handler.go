package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/anjerodev/dotenv/internal/domain/services"
	"github.com/anjerodev/dotenv/internal/interfaces/dto"
)

// maxAvatarSize caps avatar uploads at 2 MiB.
const maxAvatarSize = 2 << 20

type ProfileHandler struct {
	profileSvc *services.ProfileService
}

func NewProfileHandler(profileSvc *services.ProfileService) *ProfileHandler {
	return &ProfileHandler{profileSvc: profileSvc}
}

func (h *ProfileHandler) Get(c *gin.Context) {
	profile, err := h.profileSvc.Get(c.Request.Context(), userID(c))
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, profile)
}

func (h *ProfileHandler) Update(c *gin.Context) {
	var req dto.ProfileUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.profileSvc.Update(c.Request.Context(), userID(c), req.Username, req.Website); err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// UploadAvatar accepts a multipart "avatar" file and stores it keyed by
// the user id, so re-uploads replace the previous image.
func (h *ProfileHandler) UploadAvatar(c *gin.Context) {
	header, err := c.FormFile("avatar")
	if err != nil {
		respondWithError(c, http.StatusBadRequest, "avatar file is required")
		return
	}
	if header.Size > maxAvatarSize {
		respondWithError(c, http.StatusBadRequest, "avatar file is too large")
		return
	}

	file, err := header.Open()
	if err != nil {
		respondWithError(c, http.StatusBadRequest, "avatar file could not be read")
		return
	}
	defer file.Close()

	url, err := h.profileSvc.UpdateAvatar(c.Request.Context(), userID(c), file,
		header.Size, header.Header.Get("Content-Type"))
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.AvatarResponse{AvatarURL: url})
}
