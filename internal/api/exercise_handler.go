package api

import (
	"errors"
	"fittrackr/server/internal/service"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
)

// ExerciseHandler holds the exercise service dependency.
type ExerciseHandler struct {
	exerciseService service.ExerciseService
}

// NewExerciseHandler creates a new ExerciseHandler.
func NewExerciseHandler(exerciseService service.ExerciseService) *ExerciseHandler {
	return &ExerciseHandler{exerciseService: exerciseService}
}

// --- Request/Response Structs ---

type ExerciseRequest struct {
	Name          string `json:"name" binding:"required"`
	PrimaryMuscle string `json:"primaryMuscle" binding:"required"`
	Equipment     string `json:"equipment,omitempty"`
	Difficulty    string `json:"difficulty,omitempty" binding:"omitempty,oneof=Beginner Intermediate Advanced"`
	Description   string `json:"description,omitempty"`
}

// --- Handler Methods ---

// Create adds an exercise to the shared library. Coach or admin only.
func (h *ExerciseHandler) Create(c *gin.Context) {
	var req ExerciseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}

	exercise, err := h.exerciseService.Create(c.Request.Context(), service.ExerciseInput{
		Name:          req.Name,
		PrimaryMuscle: req.PrimaryMuscle,
		Equipment:     req.Equipment,
		Difficulty:    req.Difficulty,
		Description:   req.Description,
	})
	if err != nil {
		handleExerciseError(c, err)
		return
	}
	c.JSON(http.StatusCreated, exercise)
}

// Get returns one library exercise.
func (h *ExerciseHandler) Get(c *gin.Context) {
	exerciseID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	exercise, err := h.exerciseService.GetByID(c.Request.Context(), exerciseID)
	if err != nil {
		handleExerciseError(c, err)
		return
	}
	c.JSON(http.StatusOK, exercise)
}

// List returns the full exercise library.
func (h *ExerciseHandler) List(c *gin.Context) {
	exercises, err := h.exerciseService.List(c.Request.Context())
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to list exercises")
		return
	}
	c.JSON(http.StatusOK, exercises)
}

// Update edits a library exercise. Coach or admin only.
func (h *ExerciseHandler) Update(c *gin.Context) {
	exerciseID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req ExerciseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}

	exercise, err := h.exerciseService.Update(c.Request.Context(), exerciseID, service.ExerciseInput{
		Name:          req.Name,
		PrimaryMuscle: req.PrimaryMuscle,
		Equipment:     req.Equipment,
		Difficulty:    req.Difficulty,
		Description:   req.Description,
	})
	if err != nil {
		handleExerciseError(c, err)
		return
	}
	c.JSON(http.StatusOK, exercise)
}

// Delete removes a library exercise. Admin only.
func (h *ExerciseHandler) Delete(c *gin.Context) {
	exerciseID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.exerciseService.Delete(c.Request.Context(), exerciseID); err != nil {
		handleExerciseError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// handleExerciseError maps exercise service errors onto HTTP statuses.
func handleExerciseError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrExerciseNotFound):
		abortWithError(c, http.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrExerciseValidation):
		abortWithError(c, http.StatusBadRequest, err.Error())
	default:
		abortWithError(c, http.StatusInternalServerError, "An unexpected error occurred")
	}
}
