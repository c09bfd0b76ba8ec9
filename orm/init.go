package orm

import (
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"
	"gorm.io/driver/postgres"

	"gorm.io/gorm/logger"

	"gorm.io/gorm"

	"package-index/config"
)

// UploadDeleteHook is invoked synchronously after an upload row has been
// deleted, with the removed record. An error propagates to the caller of the
// delete; the row stays deleted.
type UploadDeleteHook func(upload *ProjectUpload) error

// DB is the persistence handle for the project schema.
type DB struct {
	gorm *gorm.DB

	uploadDeleteHooks []UploadDeleteHook
}

// Open connects to postgres using the database configuration and migrates
// the project schema.
func Open(cfg config.DatabaseConfig) (*DB, error) {
	dsn := cfg.DSN()

	dsnRedacted := strings.ReplaceAll(dsn, cfg.Password, "*****")
	log.Debug().
		Msgf("Connecting to postgres using the following information: %s", dsnRedacted)

	gormDB, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to the database: %w", err)
	}

	log.Debug().Msg("Successfully connected to the database")

	return New(gormDB)
}

// New wraps an already-open GORM connection and migrates the project schema.
// Tests use this with an in-memory sqlite connection.
func New(gormDB *gorm.DB) (*DB, error) {
	if err := gormDB.AutoMigrate(
		&User{},
		&Project{},
		&ProjectMembership{},
		&ProjectCredential{},
		&ProjectUpload{},
	); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return &DB{gorm: gormDB}, nil
}

// RegisterUploadDeleteHook adds a callback run after each committed upload
// delete. Hooks run in registration order; the first error stops the chain.
func (db *DB) RegisterUploadDeleteHook(hook UploadDeleteHook) {
	db.uploadDeleteHooks = append(db.uploadDeleteHooks, hook)
}
