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

type AnnouncementController struct {
	store   db.Store
	storage storage.Storage
	notify  Notifier
}

func NewAnnouncementController(store db.Store, fileStorage storage.Storage, notify Notifier) *AnnouncementController {
	return &AnnouncementController{store: store, storage: fileStorage, notify: notify}
}

func AnnouncementModule(store db.Store, fileStorage storage.Storage, notify Notifier) api.Module {
	ctl := NewAnnouncementController(store, fileStorage, notify)
	return api.ModuleFunc(func(c *api.Controller) {
		c.GET("/announcements", ctl.listAnnouncements)
		c.POST("/announcements", ctl.createAnnouncement)
		c.GET("/announcements/:id", ctl.getAnnouncement)
		c.PUT("/announcements/:id", ctl.updateAnnouncement)
		c.DELETE("/announcements/:id", ctl.deleteAnnouncement)
		c.POST("/announcements/:id/audio", ctl.uploadAudio)
	})
}

func (c *AnnouncementController) owned(user *model.User, id int) (model.Announcement, *api.APIError) {
	a, err := c.store.GetAnnouncementByID(user.OrganizationID, id)
	if err != nil {
		return model.Announcement{}, &api.APIError{Code: http.StatusNotFound, Message: "announcement not found"}
	}
	return a, nil
}

// GET /api/admin/announcements
func (c *AnnouncementController) listAnnouncements(ctx *gin.Context, user *model.User) (any, *api.APIError) {
	list, err := c.store.ListAnnouncements(user.OrganizationID)
	if err != nil {
		return nil, &api.APIError{Code: http.StatusInternalServerError, Message: "failed to list announcements"}
	}
	return list, nil
}

// POST /api/admin/announcements
func (c *AnnouncementController) createAnnouncement(ctx *gin.Context, user *model.User) (any, *api.APIError) {
	var request packets.CreateAnnouncementRequest
	if err := ctx.ShouldBindJSON(&request); err != nil {
		return nil, &api.APIError{Code: http.StatusBadRequest, Message: err.Error()}
	}

	a, err := c.store.CreateAnnouncement(user.OrganizationID, request.Name, request.Text, request.AudioURL)
	if err != nil {
		return nil, &api.APIError{Code: http.StatusInternalServerError, Message: "could not create announcement"}
	}

	c.notify.NotifyContentUpdated(user.OrganizationID, "announcement")
	return a, nil
}

// GET /api/admin/announcements/:id
func (c *AnnouncementController) getAnnouncement(ctx *gin.Context, user *model.User) (any, *api.APIError) {
	id, apiErr := idParam(ctx, "id")
	if apiErr != nil {
		return nil, apiErr
	}
	a, apiErr := c.owned(user, id)
	if apiErr != nil {
		return nil, apiErr
	}
	return a, nil
}

// PUT /api/admin/announcements/:id
func (c *AnnouncementController) updateAnnouncement(ctx *gin.Context, user *model.User) (any, *api.APIError) {
	id, apiErr := idParam(ctx, "id")
	if apiErr != nil {
		return nil, apiErr
	}
	if _, apiErr := c.owned(user, id); apiErr != nil {
		return nil, apiErr
	}

	var request packets.UpdateAnnouncementRequest
	if err := ctx.ShouldBindJSON(&request); err != nil {
		return nil, &api.APIError{Code: http.StatusBadRequest, Message: err.Error()}
	}

	if err := c.store.UpdateAnnouncement(user.OrganizationID, id, request.Name, request.Text, request.AudioURL, request.IsActive); err != nil {
		return nil, &api.APIError{Code: http.StatusInternalServerError, Message: "could not update announcement"}
	}

	updated, apiErr := c.owned(user, id)
	if apiErr != nil {
		return nil, apiErr
	}
	c.notify.NotifyContentUpdated(user.OrganizationID, "announcement")
	return updated, nil
}

// DELETE /api/admin/announcements/:id
func (c *AnnouncementController) deleteAnnouncement(ctx *gin.Context, user *model.User) (any, *api.APIError) {
	id, apiErr := idParam(ctx, "id")
	if apiErr != nil {
		return nil, apiErr
	}
	if _, apiErr := c.owned(user, id); apiErr != nil {
		return nil, apiErr
	}

	if err := c.store.DeleteAnnouncement(user.OrganizationID, id); err != nil {
		return nil, &api.APIError{Code: http.StatusInternalServerError, Message: "could not delete announcement"}
	}

	c.notify.NotifyContentUpdated(user.OrganizationID, "announcement")
	return gin.H{"message": "deleted"}, nil
}

// POST /api/admin/announcements/:id/audio
// Multipart upload; the stored URL replaces the announcement's audio_url.
func (c *AnnouncementController) uploadAudio(ctx *gin.Context, user *model.User) (any, *api.APIError) {
	id, apiErr := idParam(ctx, "id")
	if apiErr != nil {
		return nil, apiErr
	}
	if _, apiErr := c.owned(user, id); apiErr != nil {
		return nil, apiErr
	}

	fileHeader, err := ctx.FormFile("source")
	if err != nil {
		return nil, &api.APIError{Code: http.StatusBadRequest, Message: "file is required"}
	}

	url, err := c.storage.SaveFile(fileHeader, fileHeader.Filename)
	if err != nil {
		log.Error().Err(err).Msg("announcement upload failed")
		return nil, &api.APIError{Code: http.StatusInternalServerError, Message: "could not store audio file"}
	}

	if err := c.store.UpdateAnnouncement(user.OrganizationID, id, nil, nil, &url, nil); err != nil {
		return nil, &api.APIError{Code: http.StatusInternalServerError, Message: "could not update announcement"}
	}

	c.notify.NotifyContentUpdated(user.OrganizationID, "announcement")
	return packets.UploadResponse{URL: url}, nil
}
