package endpoints

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/tobemax82-stack/DockFm-Retail-sub000/internal/db"
	"github.com/tobemax82-stack/DockFm-Retail-sub000/internal/http/api"
	"github.com/tobemax82-stack/DockFm-Retail-sub000/internal/http/api/admin/packets"
	"github.com/tobemax82-stack/DockFm-Retail-sub000/internal/model"
	"github.com/tobemax82-stack/DockFm-Retail-sub000/internal/storage"
)

type PlaylistController struct {
	store   db.Store
	storage storage.Storage
	notify  Notifier
}

func NewPlaylistController(store db.Store, fileStorage storage.Storage, notify Notifier) *PlaylistController {
	return &PlaylistController{store: store, storage: fileStorage, notify: notify}
}

func PlaylistModule(store db.Store, fileStorage storage.Storage, notify Notifier) api.Module {
	ctl := NewPlaylistController(store, fileStorage, notify)
	return api.ModuleFunc(func(c *api.Controller) {
		c.GET("/playlists", ctl.listPlaylists)
		c.POST("/playlists", ctl.createPlaylist)
		c.GET("/playlists/:id", ctl.getPlaylist)
		c.PUT("/playlists/:id", ctl.updatePlaylist)
		c.DELETE("/playlists/:id", ctl.deletePlaylist)

		c.POST("/playlists/:id/tracks", ctl.addTrack)
		c.DELETE("/playlists/:id/tracks/:track_id", ctl.removeTrack)
		c.PUT("/playlists/:id/tracks/reorder", ctl.reorderTracks)
	})
}

// ownedPlaylist resolves a playlist id within the caller's organization.
func (c *PlaylistController) ownedPlaylist(user *model.User, id int) (model.Playlist, *api.APIError) {
	pl, err := c.store.GetPlaylistByID(user.OrganizationID, id)
	if err != nil {
		return model.Playlist{}, &api.APIError{Code: http.StatusNotFound, Message: "playlist not found"}
	}
	return pl, nil
}

// GET /api/admin/playlists
func (c *PlaylistController) listPlaylists(ctx *gin.Context, user *model.User) (any, *api.APIError) {
	list, err := c.store.ListPlaylists(user.OrganizationID)
	if err != nil {
		return nil, &api.APIError{Code: http.StatusInternalServerError, Message: "failed to list playlists"}
	}
	return list, nil
}

// POST /api/admin/playlists
func (c *PlaylistController) createPlaylist(ctx *gin.Context, user *model.User) (any, *api.APIError) {
	var request packets.CreatePlaylistRequest
	if err := ctx.ShouldBindJSON(&request); err != nil {
		return nil, &api.APIError{Code: http.StatusBadRequest, Message: err.Error()}
	}

	pl, err := c.store.CreatePlaylist(user.OrganizationID, request.Name, request.Description)
	if err != nil {
		return nil, &api.APIError{Code: http.StatusInternalServerError, Message: "could not create playlist"}
	}

	c.notify.NotifyContentUpdated(user.OrganizationID, "playlist")
	return pl, nil
}

// GET /api/admin/playlists/:id
func (c *PlaylistController) getPlaylist(ctx *gin.Context, user *model.User) (any, *api.APIError) {
	id, apiErr := idParam(ctx, "id")
	if apiErr != nil {
		return nil, apiErr
	}
	pl, apiErr := c.ownedPlaylist(user, id)
	if apiErr != nil {
		return nil, apiErr
	}
	return pl, nil
}

// PUT /api/admin/playlists/:id
func (c *PlaylistController) updatePlaylist(ctx *gin.Context, user *model.User) (any, *api.APIError) {
	id, apiErr := idParam(ctx, "id")
	if apiErr != nil {
		return nil, apiErr
	}
	if _, apiErr := c.ownedPlaylist(user, id); apiErr != nil {
		return nil, apiErr
	}

	var request packets.UpdatePlaylistRequest
	if err := ctx.ShouldBindJSON(&request); err != nil {
		return nil, &api.APIError{Code: http.StatusBadRequest, Message: err.Error()}
	}

	if err := c.store.UpdatePlaylist(user.OrganizationID, id, request.Name, request.Description); err != nil {
		return nil, &api.APIError{Code: http.StatusInternalServerError, Message: "could not update playlist"}
	}

	updated, apiErr := c.ownedPlaylist(user, id)
	if apiErr != nil {
		return nil, apiErr
	}
	c.notify.NotifyContentUpdated(user.OrganizationID, "playlist")
	return updated, nil
}

// DELETE /api/admin/playlists/:id
func (c *PlaylistController) deletePlaylist(ctx *gin.Context, user *model.User) (any, *api.APIError) {
	id, apiErr := idParam(ctx, "id")
	if apiErr != nil {
		return nil, apiErr
	}
	if _, apiErr := c.ownedPlaylist(user, id); apiErr != nil {
		return nil, apiErr
	}

	if err := c.store.DeletePlaylist(user.OrganizationID, id); err != nil {
		return nil, &api.APIError{Code: http.StatusInternalServerError, Message: "could not delete playlist"}
	}

	c.notify.NotifyContentUpdated(user.OrganizationID, "playlist")
	return gin.H{"message": "deleted"}, nil
}

// POST /api/admin/playlists/:id/tracks
// Accepts either a JSON body with a ready URL or a multipart form with an
// audio file under "source", which is pushed through the storage layer first.
func (c *PlaylistController) addTrack(ctx *gin.Context, user *model.User) (any, *api.APIError) {
	id, apiErr := idParam(ctx, "id")
	if apiErr != nil {
		return nil, apiErr
	}
	if _, apiErr := c.ownedPlaylist(user, id); apiErr != nil {
		return nil, apiErr
	}

	var request packets.AddTrackRequest
	if ctx.ContentType() == "multipart/form-data" {
		request.Title = ctx.PostForm("title")
		if artist := ctx.PostForm("artist"); artist != "" {
			request.Artist = &artist
		}
		if request.Title == "" {
			return nil, &api.APIError{Code: http.StatusBadRequest, Message: "title is required"}
		}

		fileHeader, err := ctx.FormFile("source")
		if err != nil {
			return nil, &api.APIError{Code: http.StatusBadRequest, Message: "file is required"}
		}
		url, err := c.storage.SaveFile(fileHeader, fileHeader.Filename)
		if err != nil {
			log.Error().Err(err).Msg("track upload failed")
			return nil, &api.APIError{Code: http.StatusInternalServerError, Message: "could not store audio file"}
		}
		request.URL = url
	} else {
		if err := ctx.ShouldBindJSON(&request); err != nil {
			return nil, &api.APIError{Code: http.StatusBadRequest, Message: err.Error()}
		}
		if request.URL == "" {
			return nil, &api.APIError{Code: http.StatusBadRequest, Message: "url is required"}
		}
	}

	track, err := c.store.AddTrack(id, request.Title, request.Artist, request.URL, request.Duration)
	if err != nil {
		return nil, &api.APIError{Code: http.StatusInternalServerError, Message: "could not add track"}
	}

	c.notify.NotifyContentUpdated(user.OrganizationID, "playlist")
	return track, nil
}

// DELETE /api/admin/playlists/:id/tracks/:track_id
func (c *PlaylistController) removeTrack(ctx *gin.Context, user *model.User) (any, *api.APIError) {
	id, apiErr := idParam(ctx, "id")
	if apiErr != nil {
		return nil, apiErr
	}
	trackID, apiErr := idParam(ctx, "track_id")
	if apiErr != nil {
		return nil, apiErr
	}
	if _, apiErr := c.ownedPlaylist(user, id); apiErr != nil {
		return nil, apiErr
	}

	if err := c.store.RemoveTrack(id, trackID); err != nil {
		return nil, &api.APIError{Code: http.StatusNotFound, Message: "track not found"}
	}

	c.notify.NotifyContentUpdated(user.OrganizationID, "playlist")
	return gin.H{"message": "deleted"}, nil
}

// PUT /api/admin/playlists/:id/tracks/reorder
func (c *PlaylistController) reorderTracks(ctx *gin.Context, user *model.User) (any, *api.APIError) {
	id, apiErr := idParam(ctx, "id")
	if apiErr != nil {
		return nil, apiErr
	}
	if _, apiErr := c.ownedPlaylist(user, id); apiErr != nil {
		return nil, apiErr
	}

	var request packets.ReorderTracksRequest
	if err := ctx.ShouldBindJSON(&request); err != nil {
		return nil, &api.APIError{Code: http.StatusBadRequest, Message: err.Error()}
	}
	if len(request.TrackIDs) == 0 {
		return nil, &api.APIError{Code: http.StatusBadRequest, Message: "track_ids must not be empty"}
	}

	if err := c.store.ReorderTracks(id, request.TrackIDs); err != nil {
		return nil, &api.APIError{Code: http.StatusBadRequest, Message: err.Error()}
	}

	updated, apiErr := c.ownedPlaylist(user, id)
	if apiErr != nil {
		return nil, apiErr
	}
	c.notify.NotifyContentUpdated(user.OrganizationID, "playlist")
	return updated, nil
}
