package handlers

import (
	"errors"
	"net/http"

	"gym_backend/internal/models"
	"gym_backend/internal/services"
	"gym_backend/pkg/utils"

	"github.com/gin-gonic/gin"
)

type TrainerHandler struct {
	trainerService services.TrainerService
}

func NewTrainerHandler(ts services.TrainerService) *TrainerHandler {
	return &TrainerHandler{trainerService: ts}
}

func (h *TrainerHandler) CreateTrainer(c *gin.Context) {
	var req services.CreateTrainerRequest
	if !bindJSON(c, &req, "CreateTrainer") {
		return
	}

	trainer, err := h.trainerService.CreateTrainer(c.Request.Context(), req)
	if err != nil {
		utils.LogError(err, "CreateTrainer: Error from trainerService.CreateTrainer")
		if respondValidation(c, err) {
			return
		}
		utils.RespondInternal(c, "Failed to create trainer.")
		return
	}
	c.JSON(http.StatusCreated, trainer)
}

func (h *TrainerHandler) GetTrainers(c *gin.Context) {
	trainers, err := h.trainerService.GetTrainers(c.Request.Context())
	if err != nil {
		utils.LogError(err, "GetTrainers: Error from trainerService.GetTrainers")
		utils.RespondInternal(c, "Failed to fetch trainers.")
		return
	}
	if trainers == nil {
		trainers = []models.Trainer{}
	}
	c.JSON(http.StatusOK, gin.H{"data": trainers})
}

func (h *TrainerHandler) DeleteTrainer(c *gin.Context) {
	trainerID, ok := parseIDParam(c, "id", "trainer")
	if !ok {
		return
	}

	if err := h.trainerService.DeleteTrainer(c.Request.Context(), trainerID); err != nil {
		utils.LogError(err, "DeleteTrainer: Error from trainerService.DeleteTrainer for ID "+utils.Int64ToStr(trainerID))
		switch {
		case errors.Is(err, services.ErrTrainerNotFound):
			utils.RespondWithError(c, utils.NewAPIError(http.StatusNotFound, utils.ErrCodeNotFound, "Trainer not found.", ""))
		case errors.Is(err, services.ErrTrainerInUse):
			utils.RespondWithError(c, utils.NewAPIError(http.StatusConflict, utils.ErrCodeConflict, err.Error(), ""))
		default:
			utils.RespondInternal(c, "Failed to delete trainer.")
		}
		return
	}
	c.Status(http.StatusNoContent)
}
