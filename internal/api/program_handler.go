package api

import (
	"errors"
	"fittrackr/server/internal/service"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
)

// ProgramHandler holds the program service dependency.
type ProgramHandler struct {
	programService service.ProgramService
}

// NewProgramHandler creates a new ProgramHandler.
func NewProgramHandler(programService service.ProgramService) *ProgramHandler {
	return &ProgramHandler{programService: programService}
}

// --- Request/Response Structs ---

type ProgramRequest struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description,omitempty"`
	Level       string `json:"level,omitempty"`
	GoalType    string `json:"goalType,omitempty"`
}

type ProgramExerciseRequest struct {
	ExerciseID     string  `json:"exerciseId" binding:"required"`
	DayIndex       int     `json:"dayIndex" binding:"min=0"`
	OrderIndex     int     `json:"orderIndex" binding:"min=0"`
	TargetSets     int     `json:"targetSets" binding:"min=0"`
	TargetReps     int     `json:"targetReps" binding:"min=0"`
	TargetWeightKg float64 `json:"targetWeightKg" binding:"min=0"`
}

// --- Handler Methods ---

// Create makes a new program owned by the authenticated user.
func (h *ProgramHandler) Create(c *gin.Context) {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to get user ID from token")
		return
	}

	var req ProgramRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}

	program, err := h.programService.Create(c.Request.Context(), userID, service.ProgramInput{
		Name:        req.Name,
		Description: req.Description,
		Level:       req.Level,
		GoalType:    req.GoalType,
	})
	if err != nil {
		handleProgramError(c, err)
		return
	}
	c.JSON(http.StatusCreated, program)
}

// Get returns one program with its exercise placements.
func (h *ProgramHandler) Get(c *gin.Context) {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to get user ID from token")
		return
	}
	programID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	detail, err := h.programService.GetByID(c.Request.Context(), userID, programID)
	if err != nil {
		handleProgramError(c, err)
		return
	}
	c.JSON(http.StatusOK, detail)
}

// List returns the authenticated user's programs.
func (h *ProgramHandler) List(c *gin.Context) {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to get user ID from token")
		return
	}

	programs, err := h.programService.List(c.Request.Context(), userID)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to list programs")
		return
	}
	c.JSON(http.StatusOK, programs)
}

// Update edits a program's metadata.
func (h *ProgramHandler) Update(c *gin.Context) {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to get user ID from token")
		return
	}
	programID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req ProgramRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}

	program, err := h.programService.Update(c.Request.Context(), userID, programID, service.ProgramInput{
		Name:        req.Name,
		Description: req.Description,
		Level:       req.Level,
		GoalType:    req.GoalType,
	})
	if err != nil {
		handleProgramError(c, err)
		return
	}
	c.JSON(http.StatusOK, program)
}

// Delete removes a program and its placements.
func (h *ProgramHandler) Delete(c *gin.Context) {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to get user ID from token")
		return
	}
	programID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.programService.Delete(c.Request.Context(), userID, programID); err != nil {
		handleProgramError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// AddExercise places an exercise into the program.
func (h *ProgramHandler) AddExercise(c *gin.Context) {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to get user ID from token")
		return
	}
	programID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req ProgramExerciseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}
	exerciseID, err := parseObjectID(req.ExerciseID)
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid exerciseId format")
		return
	}

	placement, err := h.programService.AddExercise(c.Request.Context(), userID, programID, service.ProgramExerciseInput{
		ExerciseID:     exerciseID,
		DayIndex:       req.DayIndex,
		OrderIndex:     req.OrderIndex,
		TargetSets:     req.TargetSets,
		TargetReps:     req.TargetReps,
		TargetWeightKg: req.TargetWeightKg,
	})
	if err != nil {
		handleProgramError(c, err)
		return
	}
	c.JSON(http.StatusCreated, placement)
}

// handleProgramError maps program service errors onto HTTP statuses.
func handleProgramError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrProgramNotFound), errors.Is(err, service.ErrExerciseNotFound):
		abortWithError(c, http.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrProgramAccessDenied):
		abortWithError(c, http.StatusForbidden, err.Error())
	case errors.Is(err, service.ErrProgramValidation):
		abortWithError(c, http.StatusBadRequest, err.Error())
	default:
		abortWithError(c, http.StatusInternalServerError, "An unexpected error occurred")
	}
}
