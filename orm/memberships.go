package orm

import (
	"context"
	"fmt"

	"gorm.io/gorm"
)

// AddMember creates a membership row for the user on the project.
func (db *DB) AddMember(
	ctx context.Context,
	projectID, userID uint,
	isLead bool,
) (*ProjectMembership, error) {
	if projectID == 0 || userID == 0 {
		return nil, &BadInputError{
			Reason: fmt.Sprintf(
				"All parameters must be provided: project_id=%d, user_id=%d",
				projectID,
				userID,
			),
		}
	}

	membership := &ProjectMembership{
		ProjectID: projectID,
		UserID:    userID,
		IsLead:    isLead,
	}

	err := gorm.G[ProjectMembership](db.gorm).Create(ctx, membership)
	if err != nil {
		return nil, wrapErrorWithDetails(
			err,
			"add member",
			fmt.Sprintf("project_id=%d, user_id=%d", projectID, userID),
		)
	}

	return membership, nil
}

// RemoveMember deletes the user's membership row. Removing a membership
// removes the lead sub-role with it.
func (db *DB) RemoveMember(
	ctx context.Context,
	projectID, userID uint,
) error {
	rows, err := gorm.G[ProjectMembership](db.gorm).
		Where("project_id = ?", projectID).
		Where("user_id = ?", userID).
		Delete(ctx)
	if err != nil {
		return wrapErrorWithDetails(
			err,
			"remove member",
			fmt.Sprintf("project_id=%d, user_id=%d", projectID, userID),
		)
	}

	if rows == 0 {
		return &NotFoundError{
			Search: fmt.Sprintf(
				"remove member (project_id=%d, user_id=%d)",
				projectID,
				userID,
			),
		}
	}

	return nil
}

// SetLead flips the lead sub-role on an existing membership.
func (db *DB) SetLead(
	ctx context.Context,
	projectID, userID uint,
	isLead bool,
) error {
	rows, err := gorm.G[ProjectMembership](db.gorm).
		Where("project_id = ?", projectID).
		Where("user_id = ?", userID).
		Update(ctx, "is_lead", isLead)
	if err != nil {
		return wrapErrorWithDetails(
			err,
			"set lead",
			fmt.Sprintf("project_id=%d, user_id=%d", projectID, userID),
		)
	}

	if rows == 0 {
		return &NotFoundError{
			Search: fmt.Sprintf(
				"set lead (project_id=%d, user_id=%d)",
				projectID,
				userID,
			),
		}
	}

	return nil
}

// ListMemberships returns the project's membership rows with their users
// preloaded.
func (db *DB) ListMemberships(
	ctx context.Context,
	projectID uint,
) ([]ProjectMembership, error) {
	memberships, err := gorm.G[ProjectMembership](db.gorm).
		Preload("User", nil).
		Where("project_id = ?", projectID).
		Find(ctx)
	if err != nil {
		return nil, wrapErrorWithDetails(
			err,
			"list memberships",
			fmt.Sprintf("project_id=%d", projectID),
		)
	}

	return memberships, nil
}
