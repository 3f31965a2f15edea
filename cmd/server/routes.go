package main

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/tobemax82-stack/DockFm-Retail-sub000/internal/db"
	"github.com/tobemax82-stack/DockFm-Retail-sub000/internal/http/api"
	authapi "github.com/tobemax82-stack/DockFm-Retail-sub000/internal/http/api/admin/auth/endpoints"
	adminapi "github.com/tobemax82-stack/DockFm-Retail-sub000/internal/http/api/admin/endpoints"
	playerapi "github.com/tobemax82-stack/DockFm-Retail-sub000/internal/http/api/player/endpoints"
	"github.com/tobemax82-stack/DockFm-Retail-sub000/internal/player"
	"github.com/tobemax82-stack/DockFm-Retail-sub000/internal/realtime"
	"github.com/tobemax82-stack/DockFm-Retail-sub000/internal/storage"
)

// RegisterRoutes sets up all application routes
func RegisterRoutes(r *gin.Engine, env Environment, store db.Store, storageSystem storage.Storage, playerSvc *player.Service, relay *realtime.Relay) {
	// CORS
	r.Use(cors.New(cors.Config{
		AllowOriginFunc: func(origin string) bool { return true },
		AllowMethods: []string{
			"GET",
			"POST",
			"PUT",
			"PATCH",
			"DELETE",
			"OPTIONS",
			"HEAD",
		},
		AllowHeaders: []string{
			"Origin",
			"Content-Type",
			"Authorization",
			"Accept",
			"X-Device-ID",
		},
		ExposeHeaders: []string{
			"Content-Length",
		},
		AllowCredentials: false,
	}))

	api.MountGroup(r, api.GroupConfig{
		Prefix: "/api/admin",
		Auth:   false,
	},
		authapi.AuthPublicModule(env.SecretKey, store),
	)

	api.MountGroup(r, api.GroupConfig{
		Prefix:    "/api/admin",
		Auth:      true,
		SecretKey: env.SecretKey,
		Store:     store,
	},
		adminapi.StoreModule(store, playerSvc, relay),
		adminapi.PlaylistModule(store, storageSystem, relay),
		adminapi.AnnouncementModule(store, storageSystem, relay),
		adminapi.ScheduleModule(store, relay),
		adminapi.CartwallModule(store, relay),
		// session endpoints that require auth
		authapi.AuthSessionModule(env.SecretKey, store),
	)

	api.MountGroup(r, api.GroupConfig{
		Prefix: "/api/player",
	},
		playerapi.PlayerModule(playerSvc),
	)

	r.GET("/ws", relay.HandleWS)

	// Static audio when not on Spaces
	if !env.UseSpaces {
		r.Static("/uploads", env.UploadDir)
	}
}
