package orm

import (
	"context"
	"fmt"
	"sort"
	"time"

	goversion "github.com/hashicorp/go-version"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

func (db *DB) CreateUpload(ctx context.Context, upload *ProjectUpload) error {
	if upload == nil {
		return &BadInputError{Reason: "upload must not be nil"}
	}

	if upload.ProjectID == 0 || upload.Path == "" || upload.Filename == "" {
		return &BadInputError{
			Reason: fmt.Sprintf(
				"All parameters must be provided: project_id=%d, path=%q, filename=%q",
				upload.ProjectID,
				upload.Path,
				upload.Filename,
			),
		}
	}

	err := gorm.G[ProjectUpload](db.gorm).Create(ctx, upload)

	return wrapErrorWithDetails(
		err,
		"create upload",
		fmt.Sprintf(
			"project_id=%d, filename=%q",
			upload.ProjectID,
			upload.Filename,
		),
	)
}

func (db *DB) GetUpload(ctx context.Context, id uint) (*ProjectUpload, error) {
	upload, err := gorm.G[ProjectUpload](db.gorm).Where("id = ?", id).First(ctx)
	if err != nil {
		return nil, wrapErrorWithDetails(
			err,
			"get upload",
			fmt.Sprintf("id=%d", id),
		)
	}

	return &upload, nil
}

func (db *DB) GetUploadByFilename(
	ctx context.Context,
	filename string,
) (*ProjectUpload, error) {
	if filename == "" {
		return nil, &BadInputError{Reason: "filename must be provided"}
	}

	upload, err := gorm.G[ProjectUpload](db.gorm).
		Where("filename = ?", filename).
		First(ctx)
	if err != nil {
		return nil, wrapErrorWithDetails(
			err,
			"get upload by filename",
			fmt.Sprintf("filename=%q", filename),
		)
	}

	return &upload, nil
}

// ListUploads returns the project's uploads ordered by their explicit
// ordering key, descending, nulls last.
func (db *DB) ListUploads(
	ctx context.Context,
	projectID uint,
) ([]ProjectUpload, error) {
	uploads, err := gorm.G[ProjectUpload](db.gorm).
		Where("project_id = ?", projectID).
		Order("ordering DESC NULLS LAST").
		Find(ctx)
	if err != nil {
		return nil, wrapErrorWithDetails(
			err,
			"list uploads",
			fmt.Sprintf("project_id=%d", projectID),
		)
	}

	return uploads, nil
}

// ListUploadsByVersion looks up a project's uploads for one version via the
// (project_id, version) index.
func (db *DB) ListUploadsByVersion(
	ctx context.Context,
	projectID uint,
	version string,
) ([]ProjectUpload, error) {
	if version == "" {
		return nil, &BadInputError{Reason: "version must be provided"}
	}

	uploads, err := gorm.G[ProjectUpload](db.gorm).
		Where("project_id = ?", projectID).
		Where("version = ?", version).
		Find(ctx)
	if err != nil {
		return nil, wrapErrorWithDetails(
			err,
			"list uploads by version",
			fmt.Sprintf("project_id=%d, version=%q", projectID, version),
		)
	}

	return uploads, nil
}

// DeleteUpload removes the upload row and then runs the registered delete
// hooks with the removed record. Hook errors surface to the caller, but the
// row is gone either way: a failed file cleanup leaves an orphaned file that
// has to be reconciled externally.
func (db *DB) DeleteUpload(ctx context.Context, id uint) error {
	upload, err := db.GetUpload(ctx, id)
	if err != nil {
		return err
	}

	err = db.gorm.WithContext(ctx).Delete(upload).Error
	if err != nil {
		return wrapErrorWithDetails(
			err,
			"delete upload",
			fmt.Sprintf("id=%d, filename=%q", id, upload.Filename),
		)
	}

	for _, hook := range db.uploadDeleteHooks {
		if err := hook(upload); err != nil {
			log.Error().
				Err(err).
				Str("filename", upload.Filename).
				Msg("upload delete hook failed after row removal")

			return fmt.Errorf(
				"upload %q deleted but delete hook failed: %w",
				upload.Filename,
				err,
			)
		}
	}

	return nil
}

// MarkUploadNotified records that the new-upload notification for this
// upload went out.
func (db *DB) MarkUploadNotified(ctx context.Context, id uint) error {
	now := time.Now().UTC()

	rows, err := gorm.G[ProjectUpload](db.gorm).
		Where("id = ?", id).
		Update(ctx, "notified_at", &now)
	if err != nil {
		return wrapErrorWithDetails(
			err,
			"mark upload notified",
			fmt.Sprintf("id=%d", id),
		)
	}

	if rows == 0 {
		return &NotFoundError{Search: fmt.Sprintf("mark upload notified (id=%d)", id)}
	}

	return nil
}

// ListUnnotifiedUploads returns uploads that never had their notification
// sent, optionally restricted to one project.
func (db *DB) ListUnnotifiedUploads(
	ctx context.Context,
	projectID uint,
) ([]ProjectUpload, error) {
	query := gorm.G[ProjectUpload](db.gorm).Where("notified_at IS NULL")
	if projectID != 0 {
		query = query.Where("project_id = ?", projectID)
	}

	uploads, err := query.Find(ctx)
	if err != nil {
		return nil, wrapErrorWithDetails(
			err,
			"list unnotified uploads",
			fmt.Sprintf("project_id=%d", projectID),
		)
	}

	return uploads, nil
}

// UpdateUploadOrdering reassigns the ordering keys of a project's uploads so
// that they follow version order: the oldest version gets 0. Versions that
// do not parse sort before parseable ones, by plain string comparison.
func (db *DB) UpdateUploadOrdering(ctx context.Context, projectID uint) error {
	return db.gorm.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var uploads []ProjectUpload
		if err := tx.Where("project_id = ?", projectID).
			Find(&uploads).Error; err != nil {
			return wrapErrorWithDetails(
				err,
				"load uploads for reordering",
				fmt.Sprintf("project_id=%d", projectID),
			)
		}

		sort.SliceStable(uploads, func(i, j int) bool {
			return versionLess(uploads[i].Version, uploads[j].Version)
		})

		for index, upload := range uploads {
			if upload.Ordering == index {
				continue
			}

			err := tx.Model(&ProjectUpload{}).
				Where("id = ?", upload.ID).
				UpdateColumn("ordering", index).Error
			if err != nil {
				return wrapErrorWithDetails(
					err,
					"update upload ordering",
					fmt.Sprintf("id=%d, ordering=%d", upload.ID, index),
				)
			}
		}

		return nil
	})
}

func versionLess(a, b string) bool {
	va, errA := goversion.NewVersion(a)
	vb, errB := goversion.NewVersion(b)

	switch {
	case errA == nil && errB == nil:
		return va.LessThan(vb)
	case errA == nil:
		return false
	case errB == nil:
		return true
	default:
		return a < b
	}
}
