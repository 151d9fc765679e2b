package handlers

import (
	"errors"
	"net/http"

	"gym_backend/internal/models"
	"gym_backend/internal/services"
	"gym_backend/pkg/utils"

	"github.com/gin-gonic/gin"
)

type NoteHandler struct {
	noteService services.NoteService
}

func NewNoteHandler(ns services.NoteService) *NoteHandler {
	return &NoteHandler{noteService: ns}
}

func (h *NoteHandler) CreateNote(c *gin.Context) {
	var req services.CreateNoteRequest
	if !bindJSON(c, &req, "CreateNote") {
		return
	}

	note, err := h.noteService.CreateNote(c.Request.Context(), req)
	if err != nil {
		utils.LogError(err, "CreateNote: Error from noteService.CreateNote")
		if respondValidation(c, err) {
			return
		}
		if errors.Is(err, services.ErrNoteValidation) || errors.Is(err, services.ErrDateFormat) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, err.Error(), ""))
			return
		}
		utils.RespondInternal(c, "Failed to create note.")
		return
	}
	c.JSON(http.StatusCreated, note)
}

func (h *NoteHandler) GetNotes(c *gin.Context) {
	notes, err := h.noteService.GetNotes(c.Request.Context())
	if err != nil {
		utils.LogError(err, "GetNotes: Error from noteService.GetNotes")
		utils.RespondInternal(c, "Failed to fetch notes.")
		return
	}
	if notes == nil {
		notes = []models.Note{}
	}
	c.JSON(http.StatusOK, gin.H{"data": notes})
}

func (h *NoteHandler) DeleteNote(c *gin.Context) {
	noteID, ok := parseIDParam(c, "id", "note")
	if !ok {
		return
	}

	if err := h.noteService.DeleteNote(c.Request.Context(), noteID); err != nil {
		utils.LogError(err, "DeleteNote: Error from noteService.DeleteNote for ID "+utils.Int64ToStr(noteID))
		if errors.Is(err, services.ErrNoteNotFound) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusNotFound, utils.ErrCodeNotFound, "Note not found.", ""))
			return
		}
		utils.RespondInternal(c, "Failed to delete note.")
		return
	}
	c.Status(http.StatusNoContent)
}
