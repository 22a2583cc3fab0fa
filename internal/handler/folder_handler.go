package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/gadgeski/bugmemo-sub000/internal/service"
	"github.com/gadgeski/bugmemo-sub000/pkg/logger"
)

type FolderHandler struct {
	svc       *service.BugService
	validator *CustomValidator
	log       *logger.Logger
}

func NewFolderHandler(svc *service.BugService, validator *CustomValidator, log *logger.Logger) *FolderHandler {
	return &FolderHandler{svc: svc, validator: validator, log: log}
}

// ListFolders returns every folder
func (h *FolderHandler) ListFolders(c *gin.Context) {
	folders, err := h.svc.ListFoldersOnce(c.Request.Context())
	if err != nil {
		h.log.WithError(err).Error("failed to list folders")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list folders"})
		return
	}
	c.JSON(http.StatusOK, folders)
}

// CreateFolder adds a folder. A blank name answers 422 mirroring the
// service's sentinel-0 rejection; a duplicate name answers the existing id.
func (h *FolderHandler) CreateFolder(c *gin.Context) {
	var req struct {
		Name string `json:"name" validate:"folder_name"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	if err := h.validator.Validate(&req); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "folder name must not be blank"})
		return
	}

	id, err := h.svc.AddFolder(c.Request.Context(), req.Name)
	if err != nil {
		h.log.WithError(err).Error("failed to add folder")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to add folder"})
		return
	}
	if id == 0 {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "folder name must not be blank"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"id": id})
}

// DeleteFolder removes a folder; its notes survive unclassified
func (h *FolderHandler) DeleteFolder(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	if err := h.svc.DeleteFolder(c.Request.Context(), id); err != nil {
		h.log.WithError(err).WithField("folder_id", id).Error("failed to delete folder")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete folder"})
		return
	}
	c.Status(http.StatusNoContent)
}

// CountNotesInFolder reports how many notes are filed under a folder
func (h *FolderHandler) CountNotesInFolder(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	count, err := h.svc.CountNotesInFolder(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to count notes"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"count": count})
}
