// Package handler exposes the repository contract over a local HTTP
// surface. Handlers are thin: parse, validate, call the service, map
// errors. All domain rules live in the service layer.
package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/gadgeski/bugmemo-sub000/internal/models"
	"github.com/gadgeski/bugmemo-sub000/internal/service"
	"github.com/gadgeski/bugmemo-sub000/pkg/logger"
)

type NoteHandler struct {
	svc       *service.BugService
	sync      *service.SyncService
	validator *CustomValidator
	log       *logger.Logger
}

func NewNoteHandler(svc *service.BugService, sync *service.SyncService, validator *CustomValidator, log *logger.Logger) *NoteHandler {
	return &NoteHandler{svc: svc, sync: sync, validator: validator, log: log}
}

type noteRequest struct {
	ID         int64    `json:"id"`
	Title      string   `json:"title"`
	Content    string   `json:"content"`
	FolderID   int64    `json:"folder_id"`
	IsStarred  bool     `json:"is_starred"`
	ImagePaths []string `json:"image_paths" validate:"dive,image_path"`
}

// ListNotes returns all notes, or search results when ?q= is present,
// optionally restricted to ?folder_id=
func (h *NoteHandler) ListNotes(c *gin.Context) {
	ctx := c.Request.Context()

	var (
		notes []*models.Note
		err   error
	)
	if query := c.Query("q"); query != "" {
		notes, err = h.svc.SearchNotesOnce(ctx, query)
	} else {
		notes, err = h.svc.ListNotesOnce(ctx)
	}
	if err != nil {
		h.log.WithError(err).Error("failed to list notes")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list notes"})
		return
	}

	if folderParam := c.Query("folder_id"); folderParam != "" {
		folderID, err := strconv.ParseInt(folderParam, 10, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid folder_id"})
			return
		}
		filtered := make([]*models.Note, 0, len(notes))
		for _, note := range notes {
			if note.FolderID.Valid && note.FolderID.Int64 == folderID {
				filtered = append(filtered, note)
			}
		}
		notes = filtered
	}

	c.JSON(http.StatusOK, notes)
}

// GetNote returns one note by id
func (h *NoteHandler) GetNote(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	note, err := h.svc.GetNote(c.Request.Context(), id)
	if err != nil {
		h.log.WithError(err).WithField("note_id", id).Error("failed to get note")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get note"})
		return
	}
	if note == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "note not found"})
		return
	}
	c.JSON(http.StatusOK, note)
}

// UpsertNote creates (id 0) or updates (id set) a note
func (h *NoteHandler) UpsertNote(c *gin.Context) {
	var req noteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	if err := h.validator.Validate(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	note := &models.Note{
		ID:         req.ID,
		Title:      req.Title,
		Content:    req.Content,
		IsStarred:  req.IsStarred,
		ImagePaths: req.ImagePaths,
	}
	note.SetFolder(req.FolderID)

	id, err := h.svc.Upsert(c.Request.Context(), note)
	if err != nil {
		h.log.WithError(err).Error("failed to upsert note")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to save note"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"id": id})
}

// DeleteNote removes a note; a missing id still answers 204
func (h *NoteHandler) DeleteNote(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	if err := h.svc.DeleteNote(c.Request.Context(), id); err != nil {
		h.log.WithError(err).WithField("note_id", id).Error("failed to delete note")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete note"})
		return
	}
	c.Status(http.StatusNoContent)
}

// StarNote sets or clears the star flag
func (h *NoteHandler) StarNote(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	var req struct {
		Starred bool `json:"starred"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	if err := h.svc.SetStarred(c.Request.Context(), id, req.Starred); err != nil {
		h.log.WithError(err).WithField("note_id", id).Error("failed to star note")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update star"})
		return
	}
	c.Status(http.StatusNoContent)
}

// SyncNote pushes a note to the gist service. A remote failure is reported
// without touching local state.
func (h *NoteHandler) SyncNote(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	url, err := h.sync.PushNote(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": "sync failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"url": url})
}

// Stats reports the count aggregates
func (h *NoteHandler) Stats(c *gin.Context) {
	ctx := c.Request.Context()

	noteCount, err := h.svc.CountNotes(ctx)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to count notes"})
		return
	}
	folderCount, err := h.svc.CountFolders(ctx)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to count folders"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"notes": noteCount, "folders": folderCount})
}

func parseID(c *gin.Context, param string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(param), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return 0, false
	}
	return id, true
}
