package orm

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// IssueCredential creates a new active API key for the project. The key is
// generated server-side; callers never choose it.
func (db *DB) IssueCredential(
	ctx context.Context,
	projectID uint,
) (*ProjectCredential, error) {
	if projectID == 0 {
		return nil, &BadInputError{Reason: "project id must be provided"}
	}

	credential := &ProjectCredential{
		ProjectID: projectID,
		IsActive:  true,
	}

	err := gorm.G[ProjectCredential](db.gorm).Create(ctx, credential)
	if err != nil {
		return nil, wrapErrorWithDetails(
			err,
			"issue credential",
			fmt.Sprintf("project_id=%d", projectID),
		)
	}

	return credential, nil
}

// RevokeCredential deactivates a credential. The row is kept for audit; only
// active credentials authenticate.
func (db *DB) RevokeCredential(ctx context.Context, id uint) error {
	rows, err := gorm.G[ProjectCredential](db.gorm).
		Where("id = ?", id).
		Update(ctx, "is_active", false)
	if err != nil {
		return wrapErrorWithDetails(
			err,
			"revoke credential",
			fmt.Sprintf("id=%d", id),
		)
	}

	if rows == 0 {
		return &NotFoundError{Search: fmt.Sprintf("revoke credential (id=%d)", id)}
	}

	return nil
}

// FindActiveCredential looks up an active credential by key, served by the
// (key, is_active) index.
func (db *DB) FindActiveCredential(
	ctx context.Context,
	key uuid.UUID,
) (*ProjectCredential, error) {
	if key == uuid.Nil {
		return nil, &BadInputError{Reason: "credential key must be provided"}
	}

	credential, err := gorm.G[ProjectCredential](db.gorm).
		Where("key = ?", key).
		Where("is_active = ?", true).
		First(ctx)
	if err != nil {
		return nil, wrapErrorWithDetails(
			err,
			"find active credential",
			fmt.Sprintf("key=%q", key),
		)
	}

	return &credential, nil
}

// ListCredentials returns all credentials of a project, active or not.
func (db *DB) ListCredentials(
	ctx context.Context,
	projectID uint,
) ([]ProjectCredential, error) {
	credentials, err := gorm.G[ProjectCredential](db.gorm).
		Where("project_id = ?", projectID).
		Find(ctx)
	if err != nil {
		return nil, wrapErrorWithDetails(
			err,
			"list credentials",
			fmt.Sprintf("project_id=%d", projectID),
		)
	}

	return credentials, nil
}
