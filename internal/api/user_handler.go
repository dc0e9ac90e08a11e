package api

import (
	"errors"
	"fittrackr/server/internal/domain"
	"fittrackr/server/internal/service"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
)

// UserHandler covers the profile surface plus the admin user pages.
type UserHandler struct {
	userService service.UserService
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(userService service.UserService) *UserHandler {
	return &UserHandler{userService: userService}
}

// --- Request/Response Structs ---

type OnboardingRequest struct {
	Age        int      `json:"age" binding:"required,min=1"`
	WeightKg   int      `json:"weightKg" binding:"required,min=1"`
	HeightCm   int      `json:"heightCm" binding:"required,min=1"`
	GoalType   string   `json:"goalType,omitempty"`
	WeightGoal *float64 `json:"weightGoal,omitempty"`
}

type ProfileUpdateRequest struct {
	Name     string `json:"name,omitempty"`
	Age      *int   `json:"age,omitempty"`
	WeightKg *int   `json:"weightKg,omitempty"`
	HeightCm *int   `json:"heightCm,omitempty"`
}

type AdminUserUpdateRequest struct {
	Name   string      `json:"name,omitempty"`
	Role   domain.Role `json:"role" binding:"required,oneof=member coach admin"`
	PlanID *string     `json:"planId,omitempty"`
}

type AdminUserListResponse struct {
	Users        []UserResponse `json:"users"`
	TotalCount   int64          `json:"totalCount"`
	ResultsCount int            `json:"resultsCount"`
}

// --- Handler Methods ---

// CompleteOnboarding stores the post-signup profile and optional goal.
func (h *UserHandler) CompleteOnboarding(c *gin.Context) {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to get user ID from token")
		return
	}

	var req OnboardingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}

	user, err := h.userService.CompleteOnboarding(c.Request.Context(), userID, service.OnboardingInput{
		Age:        req.Age,
		WeightKg:   req.WeightKg,
		HeightCm:   req.HeightCm,
		GoalType:   req.GoalType,
		WeightGoal: req.WeightGoal,
	})
	if err != nil {
		handleUserError(c, err)
		return
	}
	c.JSON(http.StatusOK, MapUserToResponse(user))
}

// UpdateProfile edits the authenticated user's profile fields.
func (h *UserHandler) UpdateProfile(c *gin.Context) {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to get user ID from token")
		return
	}

	var req ProfileUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}

	user, err := h.userService.UpdateProfile(c.Request.Context(), userID, service.ProfileUpdate{
		Name:     req.Name,
		Age:      req.Age,
		WeightKg: req.WeightKg,
		HeightCm: req.HeightCm,
	})
	if err != nil {
		handleUserError(c, err)
		return
	}
	c.JSON(http.StatusOK, MapUserToResponse(user))
}

// GetGoals returns the authenticated user's goals.
func (h *UserHandler) GetGoals(c *gin.Context) {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to get user ID from token")
		return
	}

	goals, err := h.userService.GetGoals(c.Request.Context(), userID)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to load goals")
		return
	}
	c.JSON(http.StatusOK, goals)
}

// requireAdmin re-checks the caller's role from the token claims before an
// admin-only handler runs, independent of the route group's RoleMiddleware.
func requireAdmin(c *gin.Context) bool {
	role, err := getUserRoleFromContext(c)
	if err != nil || role != domain.RoleAdmin {
		abortWithError(c, http.StatusForbidden, "Access denied: admin role required")
		return false
	}
	return true
}

// SearchUsers lists accounts matching ?q=. Admin only.
func (h *UserHandler) SearchUsers(c *gin.Context) {
	if !requireAdmin(c) {
		return
	}

	listing, err := h.userService.SearchUsers(c.Request.Context(), c.Query("q"))
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to search users")
		return
	}

	resp := AdminUserListResponse{
		TotalCount:   listing.TotalCount,
		ResultsCount: listing.ResultsCount,
		Users:        make([]UserResponse, 0, len(listing.Users)),
	}
	for i := range listing.Users {
		resp.Users = append(resp.Users, MapUserToResponse(&listing.Users[i]))
	}
	c.JSON(http.StatusOK, resp)
}

// AdminUpdateUser edits any account's name, role and plan pointer. Admin only.
func (h *UserHandler) AdminUpdateUser(c *gin.Context) {
	if !requireAdmin(c) {
		return
	}

	targetID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req AdminUserUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}

	update := service.AdminUserUpdate{
		Name: req.Name,
		Role: req.Role,
	}
	if req.PlanID != nil {
		planID, err := parseObjectID(*req.PlanID)
		if err != nil {
			abortWithError(c, http.StatusBadRequest, "Invalid planId format")
			return
		}
		update.PlanID = &planID
	}

	user, err := h.userService.AdminUpdateUser(c.Request.Context(), targetID, update)
	if err != nil {
		handleUserError(c, err)
		return
	}
	c.JSON(http.StatusOK, MapUserToResponse(user))
}

// handleUserError maps user service errors onto HTTP statuses.
func handleUserError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrUserNotFound), errors.Is(err, service.ErrPlanNotFound):
		abortWithError(c, http.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrProfileValidation):
		abortWithError(c, http.StatusBadRequest, err.Error())
	default:
		abortWithError(c, http.StatusInternalServerError, "An unexpected error occurred")
	}
}
