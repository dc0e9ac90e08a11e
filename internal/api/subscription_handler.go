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

// SubscriptionHandler holds the subscription service dependency.
type SubscriptionHandler struct {
	subscriptionService service.SubscriptionService
}

// NewSubscriptionHandler creates a new SubscriptionHandler.
func NewSubscriptionHandler(subscriptionService service.SubscriptionService) *SubscriptionHandler {
	return &SubscriptionHandler{subscriptionService: subscriptionService}
}

// --- Request/Response Structs ---

type ChangePlanRequest struct {
	PlanID string `json:"planId" binding:"required"`
}

type EngagementResponse struct {
	ID               string `json:"id"`
	PlanID           string `json:"planId"`
	StartDate        string `json:"startDate"` // YYYY-MM-DD
	EndDate          string `json:"endDate"`   // YYYY-MM-DD
	CommitmentMonths int    `json:"commitmentMonths"`
}

type SubscriptionStatusResponse struct {
	CurrentPlan      *domain.SubscriptionPlan `json:"currentPlan,omitempty"`
	ActiveEngagement *EngagementResponse      `json:"activeEngagement,omitempty"`
}

type PlanChangeResponse struct {
	Plan              *domain.SubscriptionPlan `json:"plan"`
	AlreadySubscribed bool                     `json:"alreadySubscribed"`
	Engagement        *EngagementResponse      `json:"engagement,omitempty"`
}

// --- Handler Methods ---

// ListPlans returns the subscription catalog, cheapest tier first.
func (h *SubscriptionHandler) ListPlans(c *gin.Context) {
	plans, err := h.subscriptionService.ListPlans(c.Request.Context())
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to load plans")
		return
	}
	c.JSON(http.StatusOK, plans)
}

// Status returns the user's current plan and running engagement, if any.
func (h *SubscriptionHandler) Status(c *gin.Context) {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to get user ID from token")
		return
	}

	status, err := h.subscriptionService.Status(c.Request.Context(), userID, time.Now().UTC())
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to load subscription status")
		return
	}

	resp := SubscriptionStatusResponse{CurrentPlan: status.CurrentPlan}
	if status.ActiveEngagement != nil {
		resp.ActiveEngagement = mapEngagement(status.ActiveEngagement)
	}
	c.JSON(http.StatusOK, resp)
}

// ChangePlan resolves a requested plan change. A blocked downgrade maps to
// 409 Conflict carrying the blocking plan and its commitment end date.
func (h *SubscriptionHandler) ChangePlan(c *gin.Context) {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to get user ID from token")
		return
	}

	var req ChangePlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}
	planID, err := parseObjectID(req.PlanID)
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid planId format")
		return
	}

	result, err := h.subscriptionService.ChangePlan(c.Request.Context(), userID, planID, time.Now().UTC())
	if err != nil {
		var blocked *service.DowngradeBlockedError
		switch {
		case errors.As(err, &blocked):
			c.AbortWithStatusJSON(http.StatusConflict, gin.H{
				"error":    blocked.Error(),
				"planName": blocked.PlanName,
				"endDate":  blocked.EndDate.Format("2006-01-02"),
			})
		case errors.Is(err, service.ErrPlanNotFound):
			abortWithError(c, http.StatusNotFound, err.Error())
		case errors.Is(err, service.ErrPlanRequired):
			abortWithError(c, http.StatusBadRequest, err.Error())
		case errors.Is(err, service.ErrUserNotFound):
			abortWithError(c, http.StatusNotFound, err.Error())
		default:
			abortWithError(c, http.StatusInternalServerError, "Failed to change plan")
		}
		return
	}

	resp := PlanChangeResponse{
		Plan:              result.Plan,
		AlreadySubscribed: result.AlreadySubscribed,
	}
	status := http.StatusOK
	if result.Engagement != nil {
		resp.Engagement = mapEngagement(result.Engagement)
		status = http.StatusCreated
	}
	c.JSON(status, resp)
}

func mapEngagement(e *domain.Engagement) *EngagementResponse {
	return &EngagementResponse{
		ID:               e.ID.Hex(),
		PlanID:           e.PlanID.Hex(),
		StartDate:        e.StartDate.Format("2006-01-02"),
		EndDate:          e.EndDate.Format("2006-01-02"),
		CommitmentMonths: e.CommitmentMonths,
	}
}
