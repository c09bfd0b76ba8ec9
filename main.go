package main

import (
	"context"
	"os"
	"strconv"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"package-index/config"
	"package-index/orm"
	"package-index/storage"
	"package-index/storage/filesystemStorage"
	"package-index/storage/memoryStorage"
	"package-index/storage/s3"
)

func main() {
	cfg, err := config.Load(os.Getenv("PKGIDX_CONFIG"))
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	initLogging(cfg)

	db, err := orm.Open(cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize the database")
	}

	store := initializeStore()
	db.RegisterUploadDeleteHook(orm.UploadCleanupHook(store))

	runCommand(db, os.Args[1:])
}

func initLogging(cfg *config.AppConfig) {
	level, err := zerolog.ParseLevel(cfg.Logging.Level)
	if err != nil {
		log.Warn().
			Msgf("unknown log level '%s', defaulting to info", cfg.Logging.Level)

		level = zerolog.InfoLevel
	}

	zerolog.SetGlobalLevel(level)
}

func initializeStore() storage.Store {
	var store storage.Store

	switch config.Cfg.Storage.Type {
	case "filesystem":
		store = initFilesystemStore()
	case "s3":
		store = initS3Store()
	case "memory":
		store = memoryStorage.New()
	default:
		log.Warn().
			Msgf("unknown storage type '%s', defaulting to filesystem", config.Cfg.Storage.Type)

		store = initFilesystemStore()
	}

	return store
}

func initFilesystemStore() storage.Store {
	uploadRoot := filesystemStorage.GetUploadRoot()

	fsStore, err := filesystemStorage.New(uploadRoot)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize filesystem store")
	}

	log.Info().
		Str("upload_root", uploadRoot).
		Msg("filesystem store initialized")

	return fsStore
}

func initS3Store() storage.Store {
	s3Store, err := s3.New()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize s3 store")
	}

	log.Info().Msg("s3 store initialized")

	return s3Store
}

// runCommand dispatches the admin subcommand. The serving layer lives in the
// owning application; this binary only covers schema and storage upkeep.
func runCommand(db *orm.DB, args []string) {
	ctx := context.Background()

	if len(args) == 0 {
		log.Info().Msg("schema migrated, nothing else to do")

		return
	}

	switch args[0] {
	case "migrate":
		// Migration already ran in orm.Open.
		log.Info().Msg("schema migrated")
	case "reorder":
		if len(args) < 2 {
			log.Fatal().Msg("usage: reorder <project-id>")
		}

		projectID, err := strconv.ParseUint(args[1], 10, 64)
		if err != nil {
			log.Fatal().Err(err).Msg("invalid project id")
		}

		if err := db.UpdateUploadOrdering(ctx, uint(projectID)); err != nil {
			log.Fatal().Err(err).Msg("failed to reorder uploads")
		}

		log.Info().Uint64("project_id", projectID).Msg("uploads reordered")
	case "purge":
		if len(args) < 2 {
			log.Fatal().Msg("usage: purge <filename>")
		}

		upload, err := db.GetUploadByFilename(ctx, args[1])
		if err != nil {
			log.Fatal().Err(err).Msg("failed to look up upload")
		}

		if err := db.DeleteUpload(ctx, upload.ID); err != nil {
			log.Fatal().Err(err).Msg("failed to purge upload")
		}

		log.Info().Str("filename", upload.Filename).Msg("upload purged")
	default:
		log.Fatal().Msgf("unknown command '%s'", args[0])
	}
}
