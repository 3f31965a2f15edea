package endpoints

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tobemax82-stack/DockFm-Retail-sub000/internal/db"
	"github.com/tobemax82-stack/DockFm-Retail-sub000/internal/http/api"
	"github.com/tobemax82-stack/DockFm-Retail-sub000/internal/http/api/admin/packets"
	"github.com/tobemax82-stack/DockFm-Retail-sub000/internal/model"
)

// Cartwall slots per store. Position is 0-based.
const cartwallSlots = 4

type CartwallController struct {
	store  db.Store
	notify Notifier
}

func NewCartwallController(store db.Store, notify Notifier) *CartwallController {
	return &CartwallController{store: store, notify: notify}
}

func CartwallModule(store db.Store, notify Notifier) api.Module {
	ctl := NewCartwallController(store, notify)
	return api.ModuleFunc(func(c *api.Controller) {
		c.GET("/stores/:id/cartwall", ctl.getCartwall)
		c.PUT("/stores/:id/cartwall/:position", ctl.setItem)
		c.DELETE("/stores/:id/cartwall/:position", ctl.removeItem)
	})
}

func positionParam(ctx *gin.Context) (int, *api.APIError) {
	position, apiErr := idParam(ctx, "position")
	if apiErr != nil {
		return 0, apiErr
	}
	if position < 0 || position >= cartwallSlots {
		return 0, &api.APIError{Code: http.StatusBadRequest, Message: "position out of range 0-3"}
	}
	return position, nil
}

// GET /api/admin/stores/:id/cartwall
func (c *CartwallController) getCartwall(ctx *gin.Context, user *model.User) (any, *api.APIError) {
	id, apiErr := idParam(ctx, "id")
	if apiErr != nil {
		return nil, apiErr
	}
	if _, apiErr := ownedStore(c.store, user, id); apiErr != nil {
		return nil, apiErr
	}

	items, err := c.store.GetCartwall(id)
	if err != nil {
		return nil, &api.APIError{Code: http.StatusInternalServerError, Message: "failed to load cartwall"}
	}
	return items, nil
}

// PUT /api/admin/stores/:id/cartwall/:position
// Assigning an occupied slot replaces the occupant.
func (c *CartwallController) setItem(ctx *gin.Context, user *model.User) (any, *api.APIError) {
	id, apiErr := idParam(ctx, "id")
	if apiErr != nil {
		return nil, apiErr
	}
	position, apiErr := positionParam(ctx)
	if apiErr != nil {
		return nil, apiErr
	}
	st, apiErr := ownedStore(c.store, user, id)
	if apiErr != nil {
		return nil, apiErr
	}

	var request packets.SetCartwallItemRequest
	if err := ctx.ShouldBindJSON(&request); err != nil {
		return nil, &api.APIError{Code: http.StatusBadRequest, Message: err.Error()}
	}
	if _, err := c.store.GetAnnouncementByID(user.OrganizationID, request.AnnouncementID); err != nil {
		return nil, &api.APIError{Code: http.StatusNotFound, Message: "announcement not found"}
	}

	item, err := c.store.SetCartwallItem(id, position, request.AnnouncementID)
	if err != nil {
		return nil, &api.APIError{Code: http.StatusInternalServerError, Message: "could not set cartwall item"}
	}

	c.notify.NotifyContentUpdated(st.OrganizationID, "cartwall")
	return item, nil
}

// DELETE /api/admin/stores/:id/cartwall/:position
func (c *CartwallController) removeItem(ctx *gin.Context, user *model.User) (any, *api.APIError) {
	id, apiErr := idParam(ctx, "id")
	if apiErr != nil {
		return nil, apiErr
	}
	position, apiErr := positionParam(ctx)
	if apiErr != nil {
		return nil, apiErr
	}
	st, apiErr := ownedStore(c.store, user, id)
	if apiErr != nil {
		return nil, apiErr
	}

	if err := c.store.RemoveCartwallItem(id, position); err != nil {
		return nil, &api.APIError{Code: http.StatusNotFound, Message: "cartwall slot is empty"}
	}

	c.notify.NotifyContentUpdated(st.OrganizationID, "cartwall")
	return gin.H{"message": "deleted"}, nil
}
