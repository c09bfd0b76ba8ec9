package orm

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Project is a registered package with its mirrored index counters and its
// memberships, credentials and uploads.
type Project struct {
	ID          uint   `gorm:"primaryKey" json:"id"`
	Name        string `gorm:"not null;index:idx_projects_name;index:idx_projects_name_active,priority:1" json:"name"`
	Description string `json:"description"`
	HTMLURL     string `gorm:"column:html_url;size:255" json:"htmlUrl"`

	SubscribersCount int  `gorm:"type:smallint;not null;default:0" json:"subscribersCount"`
	StargazersCount  int  `gorm:"type:smallint;not null;default:0" json:"stargazersCount"`
	ForksCount       int  `gorm:"type:smallint;not null;default:0" json:"forksCount"`
	OpenIssuesCount  int  `gorm:"type:smallint;not null;default:0" json:"openIssuesCount"`
	IsActive         bool `gorm:"not null;default:true;index;index:idx_projects_name_active,priority:2" json:"isActive"`

	TransferIssueURL string `gorm:"size:255" json:"transferIssueUrl"`

	// Maintained by the ProjectUpload create/delete hooks; always the live
	// count of this project's uploads after each committed change.
	UploadsCount int `gorm:"type:smallint;not null;default:0" json:"uploadsCount"`

	// Mirrored from the external index, not row lifecycle timestamps.
	CreatedAt *time.Time `gorm:"autoCreateTime:false" json:"createdAt"`
	UpdatedAt *time.Time `gorm:"autoUpdateTime:false" json:"updatedAt"`
	PushedAt  *time.Time `json:"pushedAt"`

	Memberships []ProjectMembership `gorm:"foreignKey:ProjectID;constraint:OnDelete:CASCADE" json:"memberships,omitempty"`
	Credentials []ProjectCredential `gorm:"foreignKey:ProjectID;constraint:OnDelete:CASCADE" json:"credentials,omitempty"`
	Uploads     []ProjectUpload     `gorm:"foreignKey:ProjectID;constraint:OnDelete:CASCADE" json:"uploads,omitempty"`
}

func (Project) TableName() string { return "projects" }

func (p *Project) String() string { return p.Name }

var nameSeparators = regexp.MustCompile(`[-_.]+`)

// NormalizeProjectName canonicalizes a project name per the external index
// naming rules: lowercase, with runs of '-', '_' and '.' collapsed into a
// single '-'.
func NormalizeProjectName(name string) string {
	return strings.ToLower(nameSeparators.ReplaceAllString(name, "-"))
}

// NormalizedName is a pure function of Name; it is computed on access and
// never stored.
func (p *Project) NormalizedName() string {
	return NormalizeProjectName(p.Name)
}

// PyPIJSONURL returns the external index JSON endpoint for this project.
// String construction only, no network call.
func (p *Project) PyPIJSONURL() string {
	return fmt.Sprintf("https://pypi.org/pypi/%s/json", p.NormalizedName())
}

// ProjectCredential is a project-scoped API key used to authenticate
// automated uploads. Revocation deactivates the row rather than deleting it.
type ProjectCredential struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	ProjectID uint      `gorm:"index" json:"projectId"`
	IsActive  bool      `gorm:"not null;default:true;index;index:idx_credentials_key_active,priority:2" json:"isActive"`
	Key       uuid.UUID `gorm:"type:uuid;index:idx_credentials_key_active,priority:1" json:"key"`
}

func (ProjectCredential) TableName() string { return "project_credentials" }

func (c *ProjectCredential) String() string {
	return strings.ReplaceAll(c.Key.String(), "-", "")
}

// BeforeCreate generates a random key when none was supplied.
func (c *ProjectCredential) BeforeCreate(tx *gorm.DB) error {
	if c.Key == uuid.Nil {
		c.Key = uuid.New()
	}

	return nil
}

// ProjectMembership associates a user with a project. The row's existence is
// the sole evidence of membership; "lead" is a sub-role within it, not a
// separate entity.
type ProjectMembership struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"index" json:"userId"`
	ProjectID uint      `gorm:"index" json:"projectId"`
	JoinedAt  time.Time `gorm:"autoCreateTime" json:"joinedAt"`
	IsLead    bool      `gorm:"not null;default:false;index" json:"isLead"`

	User *User `gorm:"foreignKey:UserID" json:"user,omitempty"`
}

func (ProjectMembership) TableName() string { return "project_memberships" }

// User is the member collaborator consumed by the membership and lead
// queries. The full account model lives with the owning application.
type User struct {
	ID       uint   `gorm:"primaryKey" json:"id"`
	Login    string `gorm:"uniqueIndex;not null" json:"login"`
	IsMember bool   `gorm:"not null;default:false;index" json:"isMember"`
	IsBanned bool   `gorm:"not null;default:false" json:"isBanned"`
	IsRoadie bool   `gorm:"not null;default:false" json:"isRoadie"`
}

func (User) TableName() string { return "users" }

// ProjectUpload is one ingested release artifact file with its integrity
// digests and storage path. Path, filename and all three digests are
// globally unique across uploads.
type ProjectUpload struct {
	ID        uint   `gorm:"primaryKey" json:"id"`
	ProjectID uint   `gorm:"index:idx_uploads_project_version,priority:1" json:"projectId"`
	Version   string `gorm:"index;index:idx_uploads_project_version,priority:2" json:"version"`
	Path      string `gorm:"uniqueIndex" json:"path"`
	Filename  string `gorm:"uniqueIndex" json:"filename"`

	Size            int64  `json:"size"`
	MD5Digest       string `gorm:"column:md5_digest;uniqueIndex;not null" json:"md5Digest"`
	SHA256Digest    string `gorm:"column:sha256_digest;uniqueIndex;not null" json:"sha256Digest"`
	Blake2256Digest string `gorm:"column:blake2_256_digest;uniqueIndex;not null" json:"blake2_256Digest"`

	UploadedAt time.Time  `gorm:"autoCreateTime" json:"uploadedAt"`
	ReleasedAt *time.Time `json:"releasedAt"`
	NotifiedAt *time.Time `gorm:"index" json:"notifiedAt"`

	FormData   datatypes.JSON `gorm:"column:form_data" json:"formData"`
	UserAgent  string         `json:"userAgent"`
	RemoteAddr string         `json:"remoteAddr"`
	Ordering   int            `gorm:"default:0" json:"ordering"`
}

func (ProjectUpload) TableName() string { return "project_uploads" }

func (u *ProjectUpload) String() string { return u.Filename }

// SignatureName is the co-located detached signature filename. Computed, not
// stored.
func (u *ProjectUpload) SignatureName() string {
	return u.Filename + ".asc"
}

var hexDigest64 = regexp.MustCompile(`^[A-Fa-f0-9]{64}$`)

// BeforeSave enforces the digest format constraints before the row reaches
// the database.
func (u *ProjectUpload) BeforeSave(tx *gorm.DB) error {
	if u.MD5Digest == "" {
		return &BadInputError{Reason: "md5_digest must not be empty"}
	}

	if !hexDigest64.MatchString(u.SHA256Digest) {
		return &BadInputError{
			Reason: fmt.Sprintf(
				"sha256_digest %q is not 64 hex characters",
				u.SHA256Digest,
			),
		}
	}

	if !hexDigest64.MatchString(u.Blake2256Digest) {
		return &BadInputError{
			Reason: fmt.Sprintf(
				"blake2_256_digest %q is not 64 hex characters",
				u.Blake2256Digest,
			),
		}
	}

	return nil
}

// AfterCreate keeps projects.uploads_count in sync with the upload set.
// Runs inside the insert's transaction.
func (u *ProjectUpload) AfterCreate(tx *gorm.DB) error {
	return refreshUploadsCount(tx, u.ProjectID)
}

// AfterDelete keeps projects.uploads_count in sync with the upload set.
// Runs inside the delete's transaction.
func (u *ProjectUpload) AfterDelete(tx *gorm.DB) error {
	return refreshUploadsCount(tx, u.ProjectID)
}

func refreshUploadsCount(tx *gorm.DB, projectID uint) error {
	return tx.Model(&Project{}).
		Where("id = ?", projectID).
		UpdateColumn(
			"uploads_count",
			gorm.Expr(
				"(SELECT COUNT(*) FROM project_uploads WHERE project_id = ?)",
				projectID,
			),
		).Error
}
