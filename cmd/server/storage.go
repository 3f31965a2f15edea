package main

import (
	"github.com/rs/zerolog/log"

	"github.com/tobemax82-stack/DockFm-Retail-sub000/internal/storage"
)

// InitStorage selects and returns the configured storage backend
func InitStorage(env Environment) storage.Storage {
	if env.UseSpaces {
		spacesStorage, err := storage.NewSpacesStorage(
			env.SpacesEndpoint,
			env.SpacesRegion,
			env.SpacesBucket,
			env.SpacesCDNURL,
			env.SpacesAccessKey,
			env.SpacesSecretKey,
		)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to initialize Spaces storage")
		}
		log.Info().Str("cdn", env.SpacesCDNURL).Msg("using Spaces audio storage")
		return spacesStorage
	}

	log.Info().Str("dir", env.UploadDir).Msg("using local audio storage")
	return storage.NewLocalStorage(env.UploadDir, env.UploadPublicURL)
}
