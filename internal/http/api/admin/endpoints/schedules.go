package endpoints

import (
	"database/sql"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/tobemax82-stack/DockFm-Retail-sub000/internal/db"
	"github.com/tobemax82-stack/DockFm-Retail-sub000/internal/http/api"
	"github.com/tobemax82-stack/DockFm-Retail-sub000/internal/http/api/admin/packets"
	"github.com/tobemax82-stack/DockFm-Retail-sub000/internal/model"
	"github.com/tobemax82-stack/DockFm-Retail-sub000/internal/schedule"
)

type ScheduleController struct {
	store  db.Store
	notify Notifier
}

func NewScheduleController(store db.Store, notify Notifier) *ScheduleController {
	return &ScheduleController{store: store, notify: notify}
}

func ScheduleModule(store db.Store, notify Notifier) api.Module {
	ctl := NewScheduleController(store, notify)
	return api.ModuleFunc(func(c *api.Controller) {
		c.GET("/stores/:id/schedule", ctl.listRules)
		c.POST("/stores/:id/schedule", ctl.createRule)
		c.PUT("/stores/:id/schedule/:rule_id", ctl.updateRule)
		c.DELETE("/stores/:id/schedule/:rule_id", ctl.deleteRule)

		c.POST("/stores/:id/schedule/bulk", ctl.bulkCreate)
		c.POST("/stores/:id/schedule/copy", ctl.copySchedule)
	})
}

// mapScheduleError distinguishes the conflict case (409, naming the occupied
// window) from plain validation failures.
func mapScheduleError(err error) *api.APIError {
	var conflict *schedule.ErrConflict
	switch {
	case errors.As(err, &conflict):
		return &api.APIError{Code: http.StatusConflict, Message: conflict.Error()}
	case errors.Is(err, sql.ErrNoRows):
		return &api.APIError{Code: http.StatusNotFound, Message: "schedule rule not found"}
	default:
		return &api.APIError{Code: http.StatusBadRequest, Message: err.Error()}
	}
}

func (c *ScheduleController) validateCreate(user *model.User, request packets.CreateScheduleRuleRequest) *api.APIError {
	if err := schedule.ValidateRule(request.DayOfWeek, request.StartTime, request.EndTime); err != nil {
		return &api.APIError{Code: http.StatusBadRequest, Message: err.Error()}
	}
	if request.Volume != nil && (*request.Volume < 0 || *request.Volume > 100) {
		return &api.APIError{Code: http.StatusBadRequest, Message: "volume out of range 0-100"}
	}
	if _, err := c.store.GetPlaylistByID(user.OrganizationID, request.PlaylistID); err != nil {
		return &api.APIError{Code: http.StatusNotFound, Message: "playlist not found"}
	}
	return nil
}

// GET /api/admin/stores/:id/schedule
func (c *ScheduleController) listRules(ctx *gin.Context, user *model.User) (any, *api.APIError) {
	id, apiErr := idParam(ctx, "id")
	if apiErr != nil {
		return nil, apiErr
	}
	if _, apiErr := ownedStore(c.store, user, id); apiErr != nil {
		return nil, apiErr
	}

	rules, err := c.store.ListScheduleRules(id)
	if err != nil {
		return nil, &api.APIError{Code: http.StatusInternalServerError, Message: "failed to list schedule rules"}
	}
	return rules, nil
}

// POST /api/admin/stores/:id/schedule
func (c *ScheduleController) createRule(ctx *gin.Context, user *model.User) (any, *api.APIError) {
	id, apiErr := idParam(ctx, "id")
	if apiErr != nil {
		return nil, apiErr
	}
	if _, apiErr := ownedStore(c.store, user, id); apiErr != nil {
		return nil, apiErr
	}

	var request packets.CreateScheduleRuleRequest
	if err := ctx.ShouldBindJSON(&request); err != nil {
		return nil, &api.APIError{Code: http.StatusBadRequest, Message: err.Error()}
	}
	if apiErr := c.validateCreate(user, request); apiErr != nil {
		return nil, apiErr
	}

	rule, err := c.store.CreateScheduleRule(id, request.PlaylistID, strings.ToLower(request.DayOfWeek), request.StartTime, request.EndTime, request.Volume)
	if err != nil {
		return nil, mapScheduleError(err)
	}

	c.notify.NotifyContentUpdated(user.OrganizationID, "schedule")
	return rule, nil
}

// PUT /api/admin/stores/:id/schedule/:rule_id
func (c *ScheduleController) updateRule(ctx *gin.Context, user *model.User) (any, *api.APIError) {
	id, apiErr := idParam(ctx, "id")
	if apiErr != nil {
		return nil, apiErr
	}
	ruleID, apiErr := idParam(ctx, "rule_id")
	if apiErr != nil {
		return nil, apiErr
	}
	if _, apiErr := ownedStore(c.store, user, id); apiErr != nil {
		return nil, apiErr
	}

	var request packets.UpdateScheduleRuleRequest
	if err := ctx.ShouldBindJSON(&request); err != nil {
		return nil, &api.APIError{Code: http.StatusBadRequest, Message: err.Error()}
	}
	if request.DayOfWeek != nil && !schedule.ValidDay(strings.ToLower(*request.DayOfWeek)) {
		return nil, &api.APIError{Code: http.StatusBadRequest, Message: "invalid day of week"}
	}
	if request.StartTime != nil && !schedule.ValidClock(*request.StartTime) {
		return nil, &api.APIError{Code: http.StatusBadRequest, Message: "start_time must be zero-padded HH:MM"}
	}
	if request.EndTime != nil && !schedule.ValidClock(*request.EndTime) {
		return nil, &api.APIError{Code: http.StatusBadRequest, Message: "end_time must be zero-padded HH:MM"}
	}
	if request.Volume != nil && (*request.Volume < 0 || *request.Volume > 100) {
		return nil, &api.APIError{Code: http.StatusBadRequest, Message: "volume out of range 0-100"}
	}
	if request.PlaylistID != nil {
		if _, err := c.store.GetPlaylistByID(user.OrganizationID, *request.PlaylistID); err != nil {
			return nil, &api.APIError{Code: http.StatusNotFound, Message: "playlist not found"}
		}
	}

	rule, err := c.store.UpdateScheduleRule(id, ruleID, request.PlaylistID, request.DayOfWeek, request.StartTime, request.EndTime, request.Volume, request.IsActive)
	if err != nil {
		return nil, mapScheduleError(err)
	}

	c.notify.NotifyContentUpdated(user.OrganizationID, "schedule")
	return rule, nil
}

// DELETE /api/admin/stores/:id/schedule/:rule_id
func (c *ScheduleController) deleteRule(ctx *gin.Context, user *model.User) (any, *api.APIError) {
	id, apiErr := idParam(ctx, "id")
	if apiErr != nil {
		return nil, apiErr
	}
	ruleID, apiErr := idParam(ctx, "rule_id")
	if apiErr != nil {
		return nil, apiErr
	}
	if _, apiErr := ownedStore(c.store, user, id); apiErr != nil {
		return nil, apiErr
	}

	if err := c.store.DeleteScheduleRule(id, ruleID); err != nil {
		return nil, mapScheduleError(err)
	}

	c.notify.NotifyContentUpdated(user.OrganizationID, "schedule")
	return gin.H{"message": "deleted"}, nil
}

// POST /api/admin/stores/:id/schedule/bulk
// All rules land or none do; the first conflict aborts the whole batch.
func (c *ScheduleController) bulkCreate(ctx *gin.Context, user *model.User) (any, *api.APIError) {
	id, apiErr := idParam(ctx, "id")
	if apiErr != nil {
		return nil, apiErr
	}
	if _, apiErr := ownedStore(c.store, user, id); apiErr != nil {
		return nil, apiErr
	}

	var request packets.BulkScheduleRequest
	if err := ctx.ShouldBindJSON(&request); err != nil {
		return nil, &api.APIError{Code: http.StatusBadRequest, Message: err.Error()}
	}
	if len(request.Rules) == 0 {
		return nil, &api.APIError{Code: http.StatusBadRequest, Message: "rules must not be empty"}
	}

	candidates := make([]model.ScheduleRule, 0, len(request.Rules))
	for _, r := range request.Rules {
		if apiErr := c.validateCreate(user, r); apiErr != nil {
			return nil, apiErr
		}
		candidates = append(candidates, model.ScheduleRule{
			PlaylistID: r.PlaylistID,
			DayOfWeek:  strings.ToLower(r.DayOfWeek),
			StartTime:  r.StartTime,
			EndTime:    r.EndTime,
			Volume:     r.Volume,
		})
	}

	rules, err := c.store.BulkCreateScheduleRules(id, candidates)
	if err != nil {
		return nil, mapScheduleError(err)
	}

	c.notify.NotifyContentUpdated(user.OrganizationID, "schedule")
	return rules, nil
}

// POST /api/admin/stores/:id/schedule/copy
func (c *ScheduleController) copySchedule(ctx *gin.Context, user *model.User) (any, *api.APIError) {
	id, apiErr := idParam(ctx, "id")
	if apiErr != nil {
		return nil, apiErr
	}
	if _, apiErr := ownedStore(c.store, user, id); apiErr != nil {
		return nil, apiErr
	}

	var request packets.CopyScheduleRequest
	if err := ctx.ShouldBindJSON(&request); err != nil {
		return nil, &api.APIError{Code: http.StatusBadRequest, Message: err.Error()}
	}
	if _, apiErr := ownedStore(c.store, user, request.FromStoreID); apiErr != nil {
		return nil, &api.APIError{Code: http.StatusNotFound, Message: "source store not found"}
	}

	rules, err := c.store.CopySchedule(request.FromStoreID, id)
	if err != nil {
		return nil, mapScheduleError(err)
	}

	c.notify.NotifyContentUpdated(user.OrganizationID, "schedule")
	return rules, nil
}
