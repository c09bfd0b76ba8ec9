package orm

import (
	"context"
	"fmt"

	"gorm.io/gorm"
)

// Actor is the request-scoped identity performing an operation. It is passed
// explicitly instead of read from ambient state. Roadie is the externally
// determined elevated capability.
type Actor struct {
	ID            uint
	Authenticated bool
	Roadie        bool
}

func (db *DB) CreateProject(ctx context.Context, project *Project) error {
	if project == nil || project.Name == "" {
		return &BadInputError{Reason: "project name must be provided"}
	}

	err := gorm.G[Project](db.gorm).Create(ctx, project)

	return wrapErrorWithDetails(
		err,
		"create project",
		fmt.Sprintf("name=%q", project.Name),
	)
}

func (db *DB) GetProject(ctx context.Context, id uint) (*Project, error) {
	project, err := gorm.G[Project](db.gorm).Where("id = ?", id).First(ctx)
	if err != nil {
		return nil, wrapErrorWithDetails(
			err,
			"get project",
			fmt.Sprintf("id=%d", id),
		)
	}

	return &project, nil
}

func (db *DB) GetProjectByName(
	ctx context.Context,
	name string,
) (*Project, error) {
	if name == "" {
		return nil, &BadInputError{Reason: "project name must be provided"}
	}

	project, err := gorm.G[Project](db.gorm).
		Where("name = ?", name).
		First(ctx)
	if err != nil {
		return nil, wrapErrorWithDetails(
			err,
			"get project by name",
			fmt.Sprintf("name=%q", name),
		)
	}

	return &project, nil
}

// ListProjects returns projects, optionally restricted to active ones. The
// (name, is_active) index serves the restricted lookup.
func (db *DB) ListProjects(
	ctx context.Context,
	activeOnly bool,
) ([]Project, error) {
	query := gorm.G[Project](db.gorm).Order("name")
	if activeOnly {
		query = query.Where("is_active = ?", true)
	}

	projects, err := query.Find(ctx)
	if err != nil {
		return nil, wrapErrorWithDetails(
			err,
			"list projects",
			fmt.Sprintf("active_only=%t", activeOnly),
		)
	}

	return projects, nil
}

// MemberIDs returns the user ids of all memberships of the project, in load
// order.
func (db *DB) MemberIDs(ctx context.Context, projectID uint) ([]uint, error) {
	memberships, err := gorm.G[ProjectMembership](db.gorm).
		Where("project_id = ?", projectID).
		Find(ctx)
	if err != nil {
		return nil, wrapErrorWithDetails(
			err,
			"list member ids",
			fmt.Sprintf("project_id=%d", projectID),
		)
	}

	ids := make([]uint, 0, len(memberships))
	for _, membership := range memberships {
		ids = append(ids, membership.UserID)
	}

	return ids, nil
}

// Leads returns the users holding the lead sub-role on the project,
// restricted to currently active members. A lead who is banned or no longer
// a member is excluded.
func (db *DB) Leads(ctx context.Context, projectID uint) ([]User, error) {
	var leads []User

	err := db.gorm.WithContext(ctx).
		Joins("JOIN project_memberships ON project_memberships.user_id = users.id").
		Where("project_memberships.project_id = ?", projectID).
		Where("project_memberships.is_lead = ?", true).
		Where("users.is_member = ?", true).
		Where("users.is_banned = ?", false).
		Find(&leads).Error
	if err != nil {
		return nil, wrapErrorWithDetails(
			err,
			"list leads",
			fmt.Sprintf("project_id=%d", projectID),
		)
	}

	return leads, nil
}

// ActiveMembers returns all users currently counted as members: flagged as
// members and not banned.
func (db *DB) ActiveMembers(ctx context.Context) ([]User, error) {
	users, err := gorm.G[User](db.gorm).
		Where("is_member = ?", true).
		Where("is_banned = ?", false).
		Find(ctx)
	if err != nil {
		return nil, wrapErrorWithDetails(err, "list active members", "")
	}

	return users, nil
}

// CurrentUserIsMember reports whether the acting user belongs to the
// project. Anonymous and unauthenticated actors are never members; a roadie
// counts as a member of every project.
func (db *DB) CurrentUserIsMember(
	ctx context.Context,
	actor *Actor,
	projectID uint,
) (bool, error) {
	if actor == nil || !actor.Authenticated {
		return false, nil
	}

	if actor.Roadie {
		return true, nil
	}

	memberIDs, err := db.MemberIDs(ctx, projectID)
	if err != nil {
		return false, err
	}

	for _, id := range memberIDs {
		if id == actor.ID {
			return true, nil
		}
	}

	return false, nil
}
