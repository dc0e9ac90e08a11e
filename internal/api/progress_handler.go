package api

import (
	"fittrackr/server/internal/domain"
	"fittrackr/server/internal/repository"
	"fittrackr/server/internal/service"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// ProgressHandler serves the derived progress views: weekly buckets, badge
// eligibility, the dashboard recap and the CSV export.
type ProgressHandler struct {
	progressService service.ProgressService
	badgeRepo       repository.BadgeRepository
}

// NewProgressHandler creates a new ProgressHandler.
func NewProgressHandler(progressService service.ProgressService, badgeRepo repository.BadgeRepository) *ProgressHandler {
	return &ProgressHandler{
		progressService: progressService,
		badgeRepo:       badgeRepo,
	}
}

// --- Response Structs ---

type BadgeStatusResponse struct {
	Badge  domain.Badge `json:"badge"`
	Earned bool         `json:"earned"`
}

type BadgesResponse struct {
	Badges       []BadgeStatusResponse `json:"badges"`
	TotalMinutes int                   `json:"totalMinutes"` // Over the lookback period
}

// --- Handler Methods ---

// RecentWeeks returns the last four 7-day windows, oldest first.
func (h *ProgressHandler) RecentWeeks(c *gin.Context) {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to get user ID from token")
		return
	}

	buckets, err := h.progressService.AggregateRecent(c.Request.Context(), userID, time.Now().UTC(), service.DefaultWindowCount)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to aggregate weekly progress")
		return
	}
	c.JSON(http.StatusOK, buckets)
}

// History returns weekly buckets over the user's entire journal.
func (h *ProgressHandler) History(c *gin.Context) {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to get user ID from token")
		return
	}

	buckets, err := h.progressService.AggregateHistory(c.Request.Context(), userID)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to aggregate workout history")
		return
	}
	c.JSON(http.StatusOK, buckets)
}

// Badges joins the badge catalog with the user's computed eligibility.
func (h *ProgressHandler) Badges(c *gin.Context) {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to get user ID from token")
		return
	}

	flags, err := h.progressService.Badges(c.Request.Context(), userID, time.Now().UTC())
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to evaluate badges")
		return
	}

	catalog, err := h.badgeRepo.List(c.Request.Context())
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to load badge catalog")
		return
	}

	resp := BadgesResponse{TotalMinutes: flags.TotalMinutes}
	for _, badge := range catalog {
		earned := false
		switch badge.Code {
		case domain.BadgeCodeRegularity:
			earned = flags.Regularity
		case domain.BadgeCodeVolume:
			earned = flags.Volume
		}
		resp.Badges = append(resp.Badges, BadgeStatusResponse{Badge: badge, Earned: earned})
	}
	c.JSON(http.StatusOK, resp)
}

// WeeklySummary recaps the current calendar week for the dashboard.
func (h *ProgressHandler) WeeklySummary(c *gin.Context) {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to get user ID from token")
		return
	}

	summary, err := h.progressService.WeeklySummary(c.Request.Context(), userID, time.Now().UTC())
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to build weekly summary")
		return
	}
	c.JSON(http.StatusOK, summary)
}

// ExportCSV streams the user's full journal as a CSV download.
func (h *ProgressHandler) ExportCSV(c *gin.Context) {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to get user ID from token")
		return
	}

	data, err := h.progressService.ExportCSV(c.Request.Context(), userID)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to export workouts")
		return
	}

	c.Header("Content-Disposition", `attachment; filename="workouts.csv"`)
	c.Data(http.StatusOK, "text/csv", data)
}
