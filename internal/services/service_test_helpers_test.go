package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/taskhive-io/taskhive/internal/models"
	"github.com/taskhive-io/taskhive/pkg/crypto"
)

func openServiceTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.Workspace{},
		&models.Member{},
		&models.Project{},
		&models.Task{},
		&models.AuditLog{},
	))

	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = sqlDB.Close()
	})

	return db
}

type testServices struct {
	db         *gorm.DB
	membership *MembershipService
	users      *UserService
	workspaces *WorkspaceService
	members    *MemberService
	projects   *ProjectService
	tasks      *TaskService
}

func newTestServices(t *testing.T) *testServices {
	t.Helper()

	db := openServiceTestDB(t)

	audit, err := NewAuditService(db)
	require.NoError(t, err)

	membership, err := NewMembershipService(db)
	require.NoError(t, err)

	users, err := NewUserService(db)
	require.NoError(t, err)

	workspaces, err := NewWorkspaceService(db, membership, audit)
	require.NoError(t, err)

	members, err := NewMemberService(db, membership, users, audit)
	require.NoError(t, err)

	projects, err := NewProjectService(db, membership, audit)
	require.NoError(t, err)

	tasks, err := NewTaskService(db, membership, users, audit)
	require.NoError(t, err)

	return &testServices{
		db:         db,
		membership: membership,
		users:      users,
		workspaces: workspaces,
		members:    members,
		projects:   projects,
		tasks:      tasks,
	}
}

func seedUser(t *testing.T, db *gorm.DB, name, email string) *models.User {
	t.Helper()

	hashed, err := crypto.HashPassword("p@ssW0rd!")
	require.NoError(t, err)

	user := &models.User{Name: name, Email: email, Password: hashed}
	require.NoError(t, db.Create(user).Error)
	return user
}

// seedWorkspace creates a workspace owned by the user, who becomes its ADMIN.
func seedWorkspace(t *testing.T, svc *testServices, owner *models.User, name string) *models.Workspace {
	t.Helper()

	workspace, err := svc.workspaces.Create(context.Background(), owner.ID, CreateWorkspaceInput{Name: name})
	require.NoError(t, err)
	return workspace
}

// joinWorkspace adds the user to the workspace using its current invite code.
func joinWorkspace(t *testing.T, svc *testServices, workspace *models.Workspace, user *models.User) *models.Member {
	t.Helper()

	ctx := context.Background()

	var current models.Workspace
	require.NoError(t, svc.db.First(&current, "id = ?", workspace.ID).Error)

	_, err := svc.workspaces.Join(ctx, workspace.ID, user.ID, current.InviteCode)
	require.NoError(t, err)

	member, err := svc.membership.ResolveMember(ctx, workspace.ID, user.ID)
	require.NoError(t, err)
	require.NotNil(t, member)
	return member
}

func seedTask(t *testing.T, db *gorm.DB, task *models.Task) *models.Task {
	t.Helper()

	require.NoError(t, db.Create(task).Error)
	return task
}

func dayIn(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 12, 0, 0, 0, time.UTC)
}
