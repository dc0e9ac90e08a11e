package api

import (
	"errors"
	"fittrackr/server/internal/domain"
	"fittrackr/server/internal/service"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// WorkoutHandler holds the workout service dependency.
type WorkoutHandler struct {
	workoutService service.WorkoutService
}

// NewWorkoutHandler creates a new WorkoutHandler.
func NewWorkoutHandler(workoutService service.WorkoutService) *WorkoutHandler {
	return &WorkoutHandler{workoutService: workoutService}
}

// --- Request/Response Structs ---

type WorkoutSetRequest struct {
	ExerciseID  string   `json:"exerciseId" binding:"required"`
	SetNumber   int      `json:"setNumber" binding:"required,min=1"`
	Reps        int      `json:"reps" binding:"min=0"`
	WeightKg    float64  `json:"weightKg" binding:"min=0"`
	RPE         *float64 `json:"rpe,omitempty"`
	RestSeconds *int     `json:"restSeconds,omitempty"`
}

type WorkoutRequest struct {
	Date            string              `json:"date" binding:"required"` // YYYY-MM-DD
	Title           string              `json:"title" binding:"required"`
	WorkoutType     string              `json:"workoutType,omitempty"`
	Notes           string              `json:"notes,omitempty"`
	DurationMinutes int                 `json:"durationMinutes" binding:"min=0"`
	ProgramID       *string             `json:"programId,omitempty"`
	Sets            []WorkoutSetRequest `json:"sets,omitempty"`
}

// --- Handler Methods ---

// Create logs a new workout for the authenticated user.
func (h *WorkoutHandler) Create(c *gin.Context) {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to get user ID from token")
		return
	}

	input, ok := bindWorkoutInput(c)
	if !ok {
		return
	}

	workout, err := h.workoutService.Create(c.Request.Context(), userID, *input)
	if err != nil {
		handleWorkoutError(c, err)
		return
	}
	c.JSON(http.StatusCreated, workout)
}

// Get returns a single workout owned by the authenticated user.
func (h *WorkoutHandler) Get(c *gin.Context) {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to get user ID from token")
		return
	}
	workoutID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	workout, err := h.workoutService.GetByID(c.Request.Context(), userID, workoutID)
	if err != nil {
		handleWorkoutError(c, err)
		return
	}
	c.JSON(http.StatusOK, workout)
}

// List returns the user's workouts split into past and upcoming sessions.
func (h *WorkoutHandler) List(c *gin.Context) {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to get user ID from token")
		return
	}

	listing, err := h.workoutService.List(c.Request.Context(), userID, time.Now().UTC())
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to list workouts")
		return
	}
	c.JSON(http.StatusOK, listing)
}

// Journal lists the user's workouts, optionally filtered by ?type=.
func (h *WorkoutHandler) Journal(c *gin.Context) {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to get user ID from token")
		return
	}

	workouts, err := h.workoutService.Journal(c.Request.Context(), userID, c.Query("type"))
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to list workouts")
		return
	}
	c.JSON(http.StatusOK, workouts)
}

// Update edits a workout owned by the authenticated user.
func (h *WorkoutHandler) Update(c *gin.Context) {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to get user ID from token")
		return
	}
	workoutID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	input, ok := bindWorkoutInput(c)
	if !ok {
		return
	}

	workout, err := h.workoutService.Update(c.Request.Context(), userID, workoutID, *input)
	if err != nil {
		handleWorkoutError(c, err)
		return
	}
	c.JSON(http.StatusOK, workout)
}

// Delete removes a workout owned by the authenticated user.
func (h *WorkoutHandler) Delete(c *gin.Context) {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to get user ID from token")
		return
	}
	workoutID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.workoutService.Delete(c.Request.Context(), userID, workoutID); err != nil {
		handleWorkoutError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// bindWorkoutInput parses and validates the shared create/update payload.
func bindWorkoutInput(c *gin.Context) (*service.WorkoutInput, bool) {
	var req WorkoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return nil, false
	}

	date, err := time.Parse("2006-01-02", req.Date)
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid date format, expected YYYY-MM-DD")
		return nil, false
	}

	input := &service.WorkoutInput{
		Date:            date,
		Title:           req.Title,
		WorkoutType:     req.WorkoutType,
		Notes:           req.Notes,
		DurationMinutes: req.DurationMinutes,
	}

	if req.ProgramID != nil {
		programID, err := parseObjectID(*req.ProgramID)
		if err != nil {
			abortWithError(c, http.StatusBadRequest, "Invalid programId format")
			return nil, false
		}
		input.ProgramID = &programID
	}

	for _, set := range req.Sets {
		exerciseID, err := parseObjectID(set.ExerciseID)
		if err != nil {
			abortWithError(c, http.StatusBadRequest, "Invalid exerciseId format in sets")
			return nil, false
		}
		input.Sets = append(input.Sets, domain.WorkoutSet{
			ExerciseID:  exerciseID,
			SetNumber:   set.SetNumber,
			Reps:        set.Reps,
			WeightKg:    set.WeightKg,
			RPE:         set.RPE,
			RestSeconds: set.RestSeconds,
		})
	}
	return input, true
}

// handleWorkoutError maps workout service errors onto HTTP statuses.
func handleWorkoutError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrWorkoutNotFound), errors.Is(err, service.ErrProgramNotFound):
		abortWithError(c, http.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrWorkoutAccessDenied):
		abortWithError(c, http.StatusForbidden, err.Error())
	case errors.Is(err, service.ErrWorkoutValidation):
		abortWithError(c, http.StatusBadRequest, err.Error())
	default:
		abortWithError(c, http.StatusInternalServerError, "An unexpected error occurred")
	}
}
