package orm

import (
	"context"
	"fmt"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"package-index/storage"
)

func newTestDB(t *testing.T) *DB {
	t.Helper()

	gormDB, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)

	// Every pooled connection to :memory: would get its own database.
	sqlDB, err := gormDB.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	db, err := New(gormDB)
	require.NoError(t, err)

	return db
}

func seedUser(t *testing.T, db *DB, login string, member, banned bool) *User {
	t.Helper()

	user := &User{Login: login, IsMember: member, IsBanned: banned}
	require.NoError(t, db.gorm.Create(user).Error)

	return user
}

func seedProject(t *testing.T, db *DB, name string) *Project {
	t.Helper()

	project := &Project{Name: name, IsActive: true}
	require.NoError(t, db.CreateProject(context.Background(), project))

	return project
}

// seedUpload creates an upload whose digests are derived from the filename,
// keeping the global uniqueness constraints satisfied across fixtures.
func seedUpload(
	t *testing.T,
	db *DB,
	projectID uint,
	version, filename string,
) *ProjectUpload {
	t.Helper()

	digests := storage.Sum([]byte(filename))

	upload := &ProjectUpload{
		ProjectID:       projectID,
		Version:         version,
		Path:            fmt.Sprintf("acme/%s", filename),
		Filename:        filename,
		Size:            int64(len(filename)),
		MD5Digest:       digests.MD5,
		SHA256Digest:    digests.SHA256,
		Blake2256Digest: digests.Blake2256,
	}
	require.NoError(t, db.CreateUpload(context.Background(), upload))

	return upload
}
