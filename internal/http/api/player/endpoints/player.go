package endpoints

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/tobemax82-stack/DockFm-Retail-sub000/internal/http/api"
	"github.com/tobemax82-stack/DockFm-Retail-sub000/internal/http/api/player/packets"
	"github.com/tobemax82-stack/DockFm-Retail-sub000/internal/player"
)

// PlayerModule mounts the device-facing endpoints. Authentication is the
// (storeId, deviceId) pair checked by the service, not a bearer token, so
// every route is mounted public.
func PlayerModule(svc *player.Service) api.Module {
	ctl := &PlayerController{svc: svc}
	return api.ModuleFunc(func(c *api.Controller) {
		c.PUBLIC_POST("/activate", ctl.activate)
		c.PUBLIC_POST("/heartbeat", ctl.heartbeat)

		c.PUBLIC_GET("/:storeId/state", ctl.getState)
		c.PUBLIC_GET("/:storeId/offline-content", ctl.getOfflineContent)
		c.PUBLIC_POST("/:storeId/offline", ctl.goOffline)
		c.PUBLIC_POST("/:storeId/track/start", ctl.trackStarted)
		c.PUBLIC_POST("/:storeId/track/end", ctl.trackEnded)
		c.PUBLIC_POST("/:storeId/announcement/played", ctl.announcementPlayed)
		c.PUBLIC_POST("/:storeId/sync", ctl.syncState)
	})
}

type PlayerController struct {
	svc *player.Service
}

func storeParam(ctx *gin.Context) (int, *api.APIError) {
	id, err := strconv.Atoi(ctx.Param("storeId"))
	if err != nil {
		return 0, &api.APIError{Code: http.StatusBadRequest, Message: "invalid store id"}
	}
	return id, nil
}

func mapPlayerError(err error) *api.APIError {
	switch {
	case errors.Is(err, player.ErrUnauthorized):
		return &api.APIError{Code: http.StatusUnauthorized, Message: err.Error()}
	case errors.Is(err, player.ErrNotFound):
		return &api.APIError{Code: http.StatusNotFound, Message: err.Error()}
	default:
		return &api.APIError{Code: http.StatusInternalServerError, Message: err.Error()}
	}
}

// POST /api/player/activate
func (p *PlayerController) activate(ctx *gin.Context) (any, *api.APIError) {
	var request packets.ActivateRequest
	if err := ctx.ShouldBindJSON(&request); err != nil {
		return nil, &api.APIError{Code: http.StatusBadRequest, Message: err.Error()}
	}

	state, deviceID, err := p.svc.Activate(ctx.Request.Context(), request.Code)
	if err != nil {
		if errors.Is(err, player.ErrNotFound) {
			log.Warn().Msg("activation attempted with unknown code")
		}
		return nil, mapPlayerError(err)
	}

	return packets.ActivateResponse{DeviceID: deviceID, State: state}, nil
}

// POST /api/player/heartbeat
func (p *PlayerController) heartbeat(ctx *gin.Context) (any, *api.APIError) {
	var request player.HeartbeatRequest
	if err := ctx.ShouldBindJSON(&request); err != nil {
		return nil, &api.APIError{Code: http.StatusBadRequest, Message: err.Error()}
	}

	acked, err := p.svc.Heartbeat(request)
	if err != nil {
		if errors.Is(err, player.ErrUnauthorized) {
			return nil, mapPlayerError(err)
		}
		return nil, &api.APIError{Code: http.StatusBadRequest, Message: err.Error()}
	}
	return acked, nil
}

// GET /api/player/:storeId/state
func (p *PlayerController) getState(ctx *gin.Context) (any, *api.APIError) {
	storeID, apiErr := storeParam(ctx)
	if apiErr != nil {
		return nil, apiErr
	}

	state, err := p.svc.GetState(storeID, ctx.GetHeader("X-Device-ID"))
	if err != nil {
		return nil, mapPlayerError(err)
	}
	return state, nil
}

// GET /api/player/:storeId/offline-content
func (p *PlayerController) getOfflineContent(ctx *gin.Context) (any, *api.APIError) {
	storeID, apiErr := storeParam(ctx)
	if apiErr != nil {
		return nil, apiErr
	}

	snapshot, err := p.svc.GetOfflineContent(storeID, ctx.GetHeader("X-Device-ID"))
	if err != nil {
		return nil, mapPlayerError(err)
	}
	return snapshot, nil
}

// POST /api/player/:storeId/offline
func (p *PlayerController) goOffline(ctx *gin.Context) (any, *api.APIError) {
	storeID, apiErr := storeParam(ctx)
	if apiErr != nil {
		return nil, apiErr
	}
	var request packets.DeviceRequest
	if err := ctx.ShouldBindJSON(&request); err != nil {
		return nil, &api.APIError{Code: http.StatusBadRequest, Message: err.Error()}
	}

	acked, err := p.svc.GoOffline(storeID, request.DeviceID)
	if err != nil {
		return nil, mapPlayerError(err)
	}
	return acked, nil
}

// POST /api/player/:storeId/track/start
func (p *PlayerController) trackStarted(ctx *gin.Context) (any, *api.APIError) {
	storeID, apiErr := storeParam(ctx)
	if apiErr != nil {
		return nil, apiErr
	}
	var request packets.TrackEventRequest
	if err := ctx.ShouldBindJSON(&request); err != nil {
		return nil, &api.APIError{Code: http.StatusBadRequest, Message: err.Error()}
	}

	acked, err := p.svc.TrackStarted(storeID, request.DeviceID, request.TrackID)
	if err != nil {
		return nil, mapPlayerError(err)
	}
	return acked, nil
}

// POST /api/player/:storeId/track/end
func (p *PlayerController) trackEnded(ctx *gin.Context) (any, *api.APIError) {
	storeID, apiErr := storeParam(ctx)
	if apiErr != nil {
		return nil, apiErr
	}
	var request packets.TrackEventRequest
	if err := ctx.ShouldBindJSON(&request); err != nil {
		return nil, &api.APIError{Code: http.StatusBadRequest, Message: err.Error()}
	}

	acked, err := p.svc.TrackEnded(storeID, request.DeviceID, request.TrackID)
	if err != nil {
		return nil, mapPlayerError(err)
	}
	return acked, nil
}

// POST /api/player/:storeId/announcement/played
func (p *PlayerController) announcementPlayed(ctx *gin.Context) (any, *api.APIError) {
	storeID, apiErr := storeParam(ctx)
	if apiErr != nil {
		return nil, apiErr
	}
	var request packets.AnnouncementEventRequest
	if err := ctx.ShouldBindJSON(&request); err != nil {
		return nil, &api.APIError{Code: http.StatusBadRequest, Message: err.Error()}
	}

	acked, err := p.svc.AnnouncementPlayed(storeID, request.DeviceID, request.AnnouncementID)
	if err != nil {
		return nil, mapPlayerError(err)
	}
	return acked, nil
}

// POST /api/player/:storeId/sync
func (p *PlayerController) syncState(ctx *gin.Context) (any, *api.APIError) {
	storeID, apiErr := storeParam(ctx)
	if apiErr != nil {
		return nil, apiErr
	}
	var request packets.SyncRequest
	if err := ctx.ShouldBindJSON(&request); err != nil {
		return nil, &api.APIError{Code: http.StatusBadRequest, Message: err.Error()}
	}

	acked, err := p.svc.SyncState(storeID, request.DeviceID, request.State)
	if err != nil {
		return nil, mapPlayerError(err)
	}
	return acked, nil
}
