package endpoints

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/tobemax82-stack/DockFm-Retail-sub000/internal/db"
	"github.com/tobemax82-stack/DockFm-Retail-sub000/internal/http/api"
	"github.com/tobemax82-stack/DockFm-Retail-sub000/internal/http/api/admin/packets"
	"github.com/tobemax82-stack/DockFm-Retail-sub000/internal/model"
	"github.com/tobemax82-stack/DockFm-Retail-sub000/internal/player"
	"github.com/tobemax82-stack/DockFm-Retail-sub000/internal/settings"
)

// Notifier pushes cache-invalidation events to the owning organization's
// dashboards after an admin mutation.
type Notifier interface {
	NotifyContentUpdated(orgID int, contentType string)
}

type StoreController struct {
	store  db.Store
	player *player.Service
	notify Notifier
}

func NewStoreController(store db.Store, playerSvc *player.Service, notify Notifier) *StoreController {
	return &StoreController{store: store, player: playerSvc, notify: notify}
}

func StoreModule(store db.Store, playerSvc *player.Service, notify Notifier) api.Module {
	ctl := NewStoreController(store, playerSvc, notify)
	return api.ModuleFunc(func(c *api.Controller) {
		c.GET("/stores", ctl.listStores)
		c.POST("/stores", ctl.createStore)
		c.GET("/stores/:id", ctl.getStore)
		c.PUT("/stores/:id", ctl.updateStore)
		c.DELETE("/stores/:id", ctl.deleteStore)

		c.POST("/stores/:id/regenerate-code", ctl.regenerateCode)
		c.PUT("/stores/:id/playlist", ctl.setActivePlaylist)
		c.PUT("/stores/:id/volume", ctl.setVolume)
		c.PUT("/stores/:id/settings", ctl.updateSettings)
		c.GET("/stores/:id/playback-logs", ctl.listPlaybackLogs)
	})
}

func idParam(ctx *gin.Context, name string) (int, *api.APIError) {
	id, err := strconv.Atoi(ctx.Param(name))
	if err != nil {
		return 0, &api.APIError{Code: http.StatusBadRequest, Message: "invalid " + name}
	}
	return id, nil
}

// ownedStore resolves a store id against the caller's organization. A store
// of another tenant reads as not found, never as forbidden.
func ownedStore(store db.Store, user *model.User, id int) (model.Store, *api.APIError) {
	st, err := store.GetStoreByID(id)
	if err != nil || st.OrganizationID != user.OrganizationID {
		return model.Store{}, &api.APIError{Code: http.StatusNotFound, Message: "store not found"}
	}
	return st, nil
}

func storeResponse(st model.Store) packets.StoreResponse {
	var lastSeen *string
	if st.LastSeen != nil {
		s := st.LastSeen.Format(time.RFC3339)
		lastSeen = &s
	}
	return packets.StoreResponse{
		ID:               st.ID,
		Name:             st.Name,
		Location:         st.Location,
		Timezone:         st.Timezone,
		IsActive:         st.IsActive,
		IsOnline:         st.IsOnline,
		LastSeen:         lastSeen,
		CurrentVolume:    st.CurrentVolume,
		Paired:           st.DeviceID != nil,
		ActivationCode:   st.ActivationCode,
		ActivePlaylistID: st.ActivePlaylistID,
		Settings:         st.Settings,
		CreatedAt:        st.CreatedAt.Format(time.RFC3339),
		UpdatedAt:        st.UpdatedAt.Format(time.RFC3339),
	}
}

// GET /api/admin/stores
func (c *StoreController) listStores(ctx *gin.Context, user *model.User) (any, *api.APIError) {
	list, err := c.store.ListStores(user.OrganizationID)
	if err != nil {
		return nil, &api.APIError{Code: http.StatusInternalServerError, Message: "failed to list stores"}
	}

	response := make([]packets.StoreResponse, 0, len(list))
	for _, st := range list {
		response = append(response, storeResponse(st))
	}
	return response, nil
}

// POST /api/admin/stores
func (c *StoreController) createStore(ctx *gin.Context, user *model.User) (any, *api.APIError) {
	var request packets.CreateStoreRequest
	if err := ctx.ShouldBindJSON(&request); err != nil {
		return nil, &api.APIError{Code: http.StatusBadRequest, Message: err.Error()}
	}

	timezone := "UTC"
	if request.Timezone != nil {
		if _, err := time.LoadLocation(*request.Timezone); err != nil {
			return nil, &api.APIError{Code: http.StatusBadRequest, Message: "unknown timezone"}
		}
		timezone = *request.Timezone
	}

	st, err := c.store.CreateStore(user.OrganizationID, request.Name, request.Location, timezone, player.GenerateActivationCode())
	if err != nil {
		return nil, &api.APIError{Code: http.StatusInternalServerError, Message: "could not create store"}
	}

	log.Info().Int("store_id", st.ID).Int("organization_id", user.OrganizationID).Msg("store created")
	return storeResponse(st), nil
}

// GET /api/admin/stores/:id
func (c *StoreController) getStore(ctx *gin.Context, user *model.User) (any, *api.APIError) {
	id, apiErr := idParam(ctx, "id")
	if apiErr != nil {
		return nil, apiErr
	}
	st, apiErr := ownedStore(c.store, user, id)
	if apiErr != nil {
		return nil, apiErr
	}
	return storeResponse(st), nil
}

// PUT /api/admin/stores/:id
func (c *StoreController) updateStore(ctx *gin.Context, user *model.User) (any, *api.APIError) {
	id, apiErr := idParam(ctx, "id")
	if apiErr != nil {
		return nil, apiErr
	}
	if _, apiErr := ownedStore(c.store, user, id); apiErr != nil {
		return nil, apiErr
	}

	var request packets.UpdateStoreRequest
	if err := ctx.ShouldBindJSON(&request); err != nil {
		return nil, &api.APIError{Code: http.StatusBadRequest, Message: err.Error()}
	}
	if request.Timezone != nil {
		if _, err := time.LoadLocation(*request.Timezone); err != nil {
			return nil, &api.APIError{Code: http.StatusBadRequest, Message: "unknown timezone"}
		}
	}

	if err := c.store.UpdateStore(id, request.Name, request.Location, request.Timezone); err != nil {
		return nil, &api.APIError{Code: http.StatusInternalServerError, Message: "could not update store"}
	}

	updated, err := c.store.GetStoreByID(id)
	if err != nil {
		return nil, &api.APIError{Code: http.StatusInternalServerError, Message: "could not fetch updated store"}
	}
	return storeResponse(updated), nil
}

// DELETE /api/admin/stores/:id
func (c *StoreController) deleteStore(ctx *gin.Context, user *model.User) (any, *api.APIError) {
	id, apiErr := idParam(ctx, "id")
	if apiErr != nil {
		return nil, apiErr
	}
	if _, apiErr := ownedStore(c.store, user, id); apiErr != nil {
		return nil, apiErr
	}

	if err := c.store.DeleteStore(id); err != nil {
		return nil, &api.APIError{Code: http.StatusInternalServerError, Message: "could not delete store"}
	}
	return gin.H{"message": "deleted"}, nil
}

// POST /api/admin/stores/:id/regenerate-code
func (c *StoreController) regenerateCode(ctx *gin.Context, user *model.User) (any, *api.APIError) {
	id, apiErr := idParam(ctx, "id")
	if apiErr != nil {
		return nil, apiErr
	}
	if _, apiErr := ownedStore(c.store, user, id); apiErr != nil {
		return nil, apiErr
	}

	code, err := c.player.RegenerateCode(ctx.Request.Context(), id)
	if err != nil {
		return nil, &api.APIError{Code: http.StatusInternalServerError, Message: "could not regenerate code"}
	}
	return packets.ActivationCodeResponse{ActivationCode: code}, nil
}

// PUT /api/admin/stores/:id/playlist
func (c *StoreController) setActivePlaylist(ctx *gin.Context, user *model.User) (any, *api.APIError) {
	id, apiErr := idParam(ctx, "id")
	if apiErr != nil {
		return nil, apiErr
	}
	st, apiErr := ownedStore(c.store, user, id)
	if apiErr != nil {
		return nil, apiErr
	}

	var request packets.SetActivePlaylistRequest
	if err := ctx.ShouldBindJSON(&request); err != nil {
		return nil, &api.APIError{Code: http.StatusBadRequest, Message: err.Error()}
	}

	if request.PlaylistID != nil {
		if _, err := c.store.GetPlaylistByID(user.OrganizationID, *request.PlaylistID); err != nil {
			return nil, &api.APIError{Code: http.StatusNotFound, Message: "playlist not found"}
		}
	}

	if err := c.store.SetStoreActivePlaylist(id, request.PlaylistID); err != nil {
		return nil, &api.APIError{Code: http.StatusInternalServerError, Message: "could not set active playlist"}
	}

	c.notify.NotifyContentUpdated(st.OrganizationID, "store")
	return gin.H{"message": "updated"}, nil
}

// PUT /api/admin/stores/:id/volume
func (c *StoreController) setVolume(ctx *gin.Context, user *model.User) (any, *api.APIError) {
	id, apiErr := idParam(ctx, "id")
	if apiErr != nil {
		return nil, apiErr
	}
	if _, apiErr := ownedStore(c.store, user, id); apiErr != nil {
		return nil, apiErr
	}

	var request packets.SetVolumeRequest
	if err := ctx.ShouldBindJSON(&request); err != nil {
		return nil, &api.APIError{Code: http.StatusBadRequest, Message: err.Error()}
	}
	if *request.Volume < 0 || *request.Volume > 100 {
		return nil, &api.APIError{Code: http.StatusBadRequest, Message: "volume out of range 0-100"}
	}

	if err := c.store.SetStoreVolume(id, *request.Volume); err != nil {
		return nil, &api.APIError{Code: http.StatusInternalServerError, Message: "could not set volume"}
	}
	return gin.H{"message": "updated"}, nil
}

// PUT /api/admin/stores/:id/settings
func (c *StoreController) updateSettings(ctx *gin.Context, user *model.User) (any, *api.APIError) {
	id, apiErr := idParam(ctx, "id")
	if apiErr != nil {
		return nil, apiErr
	}
	st, apiErr := ownedStore(c.store, user, id)
	if apiErr != nil {
		return nil, apiErr
	}

	var request settings.Settings
	if err := ctx.ShouldBindJSON(&request); err != nil {
		return nil, &api.APIError{Code: http.StatusBadRequest, Message: err.Error()}
	}

	if err := c.store.UpdateStoreSettings(id, request); err != nil {
		return nil, &api.APIError{Code: http.StatusInternalServerError, Message: "could not update settings"}
	}

	c.notify.NotifyContentUpdated(st.OrganizationID, "store")
	return gin.H{"message": "updated"}, nil
}

// GET /api/admin/stores/:id/playback-logs
func (c *StoreController) listPlaybackLogs(ctx *gin.Context, user *model.User) (any, *api.APIError) {
	id, apiErr := idParam(ctx, "id")
	if apiErr != nil {
		return nil, apiErr
	}
	if _, apiErr := ownedStore(c.store, user, id); apiErr != nil {
		return nil, apiErr
	}

	limit := 100
	if raw := ctx.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			return nil, &api.APIError{Code: http.StatusBadRequest, Message: "invalid limit"}
		}
		limit = parsed
	}

	logs, err := c.store.ListPlaybackLogs(id, limit)
	if err != nil {
		return nil, &api.APIError{Code: http.StatusInternalServerError, Message: "failed to list playback logs"}
	}
	return logs, nil
}
