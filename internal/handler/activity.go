package handler

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/Emmanuelfoeh/Hotel-Management-sub001/internal/model"
	"github.com/Emmanuelfoeh/Hotel-Management-sub001/internal/repository"
)

// ActivityHandler exposes the audit trail to back-office staff.
type ActivityHandler struct {
	Repo *repository.ActivityRepo
}

func NewActivityHandler(repo *repository.ActivityRepo) *ActivityHandler {
	if repo == nil {
		panic("nil repository passed to NewActivityHandler")
	}
	return &ActivityHandler{Repo: repo}
}

type activityPart struct {
	ID         uint64 `json:"id"`
	EntityType string `json:"entity_type"`
	EntityID   uint64 `json:"entity_id"`
	Action     string `json:"action"`
	UserID     uint64 `json:"user_id"`
	Details    string `json:"details"`
	IPAddress  string `json:"ip_address"`
	CreatedAt  string `json:"created_at"`
}

func toActivityPart(e *model.ActivityEntry) activityPart {
	return activityPart{
		ID:         e.ID,
		EntityType: e.EntityType,
		EntityID:   e.EntityID,
		Action:     e.Action,
		UserID:     e.UserID,
		Details:    e.Details,
		IPAddress:  e.IPAddress,
		CreatedAt:  e.CreatedAt.UTC().Format(time.RFC3339),
	}
}

// Query handles GET /v1/staff/activity with optional entity_type,
// entity_id, action, user_id, from, to, page and per_page filters.
func (h *ActivityHandler) Query(c echo.Context) error {
	f := repository.ActivityFilter{
		EntityType: strings.ToUpper(strings.TrimSpace(c.QueryParam("entity_type"))),
		Action:     strings.ToUpper(strings.TrimSpace(c.QueryParam("action"))),
	}
	if raw := c.QueryParam("entity_id"); raw != "" {
		id, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid entity_id"})
		}
		f.EntityID = id
	}
	if raw := c.QueryParam("user_id"); raw != "" {
		id, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid user_id"})
		}
		f.UserID = id
	}
	if raw := c.QueryParam("from"); raw != "" {
		t, err := parseDate(raw)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "from must be YYYY-MM-DD"})
		}
		f.From = t
	}
	if raw := c.QueryParam("to"); raw != "" {
		t, err := parseDate(raw)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "to must be YYYY-MM-DD"})
		}
		f.To = t
	}
	f.Page, _ = strconv.Atoi(c.QueryParam("page"))
	f.PerPage, _ = strconv.Atoi(c.QueryParam("per_page"))

	entries, err := h.Repo.Query(c.Request().Context(), f)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query activity failed"})
	}
	out := make([]activityPart, 0, len(entries))
	for i := range entries {
		out = append(out, toActivityPart(&entries[i]))
	}
	return c.JSON(http.StatusOK, echo.Map{"entries": out})
}

// Purge handles DELETE /v1/staff/activity?before=YYYY-MM-DD, removing
// audit entries older than the cutoff.  Admin only.
func (h *ActivityHandler) Purge(c echo.Context) error {
	cutoff, err := parseDate(c.QueryParam("before"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "before must be YYYY-MM-DD"})
	}
	deleted, err := h.Repo.DeleteOlderThan(c.Request().Context(), cutoff)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "purge failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"deleted": deleted})
}
