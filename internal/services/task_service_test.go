package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/taskhive-io/taskhive/internal/models"
)

type taskFixture struct {
	svc       *testServices
	owner     *models.User
	member    *models.Member
	workspace *models.Workspace
	project   *models.Project
}

func newTaskFixture(t *testing.T) *taskFixture {
	t.Helper()

	svc := newTestServices(t)
	ctx := context.Background()

	owner := seedUser(t, svc.db, "Owner", "owner@example.com")
	workspace := seedWorkspace(t, svc, owner, "Engineering")

	member, err := svc.membership.ResolveMember(ctx, workspace.ID, owner.ID)
	require.NoError(t, err)
	require.NotNil(t, member)

	project, err := svc.projects.Create(ctx, owner.ID, CreateProjectInput{Name: "Backend", WorkspaceID: workspace.ID})
	require.NoError(t, err)

	return &taskFixture{svc: svc, owner: owner, member: member, workspace: workspace, project: project}
}

func (f *taskFixture) createTask(t *testing.T, name string, status models.TaskStatus) *models.Task {
	t.Helper()

	task, err := f.svc.tasks.Create(context.Background(), f.owner.ID, CreateTaskInput{
		Name:        name,
		Status:      status,
		WorkspaceID: f.workspace.ID,
		ProjectID:   f.project.ID,
		AssigneeID:  f.member.ID,
		DueDate:     dayIn(2026, 9, 15),
	})
	require.NoError(t, err)
	return task
}

func TestTaskCreateAssignsColumnPositions(t *testing.T) {
	fix := newTaskFixture(t)

	first := fix.createTask(t, "First", models.StatusTodo)
	require.Equal(t, models.PositionStep, first.Position)

	second := fix.createTask(t, "Second", models.StatusTodo)
	require.Equal(t, 2*models.PositionStep, second.Position)

	// A different status column starts its own sequence.
	other := fix.createTask(t, "Other", models.StatusInProgress)
	require.Equal(t, models.PositionStep, other.Position)
}

func TestTaskCreateValidation(t *testing.T) {
	fix := newTaskFixture(t)
	ctx := context.Background()

	_, err := fix.svc.tasks.Create(ctx, fix.owner.ID, CreateTaskInput{
		Name:        "Bad status",
		Status:      "SOMEDAY",
		WorkspaceID: fix.workspace.ID,
		ProjectID:   fix.project.ID,
		AssigneeID:  fix.member.ID,
		DueDate:     dayIn(2026, 9, 15),
	})
	require.Error(t, err)

	_, err = fix.svc.tasks.Create(ctx, fix.owner.ID, CreateTaskInput{
		Name:        "No due date",
		Status:      models.StatusTodo,
		WorkspaceID: fix.workspace.ID,
		ProjectID:   fix.project.ID,
		AssigneeID:  fix.member.ID,
	})
	require.Error(t, err)
}

func TestTaskListFiltersAreConjunctive(t *testing.T) {
	fix := newTaskFixture(t)
	ctx := context.Background()

	done := fix.createTask(t, "Deploy service", models.StatusDone)
	fix.createTask(t, "Write deploy docs", models.StatusTodo)
	fix.createTask(t, "Fix login", models.StatusDone)

	status := models.StatusDone
	tasks, err := fix.svc.tasks.List(ctx, fix.owner.ID, TaskFilter{
		WorkspaceID: fix.workspace.ID,
		Status:      status,
		Search:      "Deploy",
	})
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	require.Equal(t, done.ID, tasks[0].ID)

	// The search term alone matches two tasks.
	tasks, err = fix.svc.tasks.List(ctx, fix.owner.ID, TaskFilter{
		WorkspaceID: fix.workspace.ID,
		Search:      "deploy",
	})
	require.NoError(t, err)
	require.Len(t, tasks, 2)
}

func TestTaskListEnrichesProjectAndAssignee(t *testing.T) {
	fix := newTaskFixture(t)

	fix.createTask(t, "Ship it", models.StatusTodo)

	tasks, err := fix.svc.tasks.List(context.Background(), fix.owner.ID, TaskFilter{WorkspaceID: fix.workspace.ID})
	require.NoError(t, err)
	require.Len(t, tasks, 1)

	require.NotNil(t, tasks[0].Project)
	require.Equal(t, fix.project.ID, tasks[0].Project.ID)

	require.NotNil(t, tasks[0].Assignee)
	require.Equal(t, fix.member.ID, tasks[0].Assignee.ID)
	require.Equal(t, "Owner", tasks[0].Assignee.Name)
	require.Equal(t, "owner@example.com", tasks[0].Assignee.Email)
}

func TestTaskAccessGuardsViaOwningWorkspace(t *testing.T) {
	fix := newTaskFixture(t)
	ctx := context.Background()

	outsider := seedUser(t, fix.svc.db, "Outsider", "outsider@example.com")
	task := fix.createTask(t, "Ship it", models.StatusTodo)

	_, err := fix.svc.tasks.GetByID(ctx, task.ID, outsider.ID)
	require.ErrorIs(t, err, ErrNotWorkspaceMember)

	_, err = fix.svc.tasks.GetByID(ctx, "missing", fix.owner.ID)
	require.ErrorIs(t, err, ErrTaskNotFound)

	err = fix.svc.tasks.Delete(ctx, task.ID, outsider.ID)
	require.ErrorIs(t, err, ErrNotWorkspaceMember)
}

func TestTaskUpdate(t *testing.T) {
	fix := newTaskFixture(t)
	ctx := context.Background()

	task := fix.createTask(t, "Ship it", models.StatusTodo)

	name := "Ship it carefully"
	status := models.StatusInReview
	due := dayIn(2026, 10, 1)
	updated, err := fix.svc.tasks.Update(ctx, task.ID, fix.owner.ID, UpdateTaskInput{
		Name:    &name,
		Status:  &status,
		DueDate: &due,
	})
	require.NoError(t, err)
	require.Equal(t, "Ship it carefully", updated.Name)
	require.Equal(t, models.StatusInReview, updated.Status)

	bad := models.TaskStatus("SOMEDAY")
	_, err = fix.svc.tasks.Update(ctx, task.ID, fix.owner.ID, UpdateTaskInput{Status: &bad})
	require.Error(t, err)
}

func TestBulkUpdateMovesTasksAcrossColumns(t *testing.T) {
	fix := newTaskFixture(t)
	ctx := context.Background()

	first := fix.createTask(t, "First", models.StatusTodo)
	second := fix.createTask(t, "Second", models.StatusTodo)

	result, err := fix.svc.tasks.BulkUpdate(ctx, fix.owner.ID, []BulkTaskUpdate{
		{ID: first.ID, Status: models.StatusInProgress, Position: 1000},
		{ID: second.ID, Status: models.StatusTodo, Position: 1000},
	})
	require.NoError(t, err)
	require.Len(t, result.Updated, 2)
	require.Empty(t, result.Failed)

	moved, err := fix.svc.tasks.GetByID(ctx, first.ID, fix.owner.ID)
	require.NoError(t, err)
	require.Equal(t, models.StatusInProgress, moved.Status)
	require.Equal(t, 1000, moved.Position)
}

func TestBulkUpdateRejectsMixedWorkspacesWithZeroWrites(t *testing.T) {
	fix := newTaskFixture(t)
	ctx := context.Background()

	local := fix.createTask(t, "Local", models.StatusTodo)

	other := seedWorkspace(t, fix.svc, fix.owner, "Other")
	otherMember, err := fix.svc.membership.ResolveMember(ctx, other.ID, fix.owner.ID)
	require.NoError(t, err)
	otherProject, err := fix.svc.projects.Create(ctx, fix.owner.ID, CreateProjectInput{Name: "Side", WorkspaceID: other.ID})
	require.NoError(t, err)
	foreign, err := fix.svc.tasks.Create(ctx, fix.owner.ID, CreateTaskInput{
		Name:        "Foreign",
		Status:      models.StatusTodo,
		WorkspaceID: other.ID,
		ProjectID:   otherProject.ID,
		AssigneeID:  otherMember.ID,
		DueDate:     dayIn(2026, 9, 20),
	})
	require.NoError(t, err)

	_, err = fix.svc.tasks.BulkUpdate(ctx, fix.owner.ID, []BulkTaskUpdate{
		{ID: local.ID, Status: models.StatusDone, Position: 1000},
		{ID: foreign.ID, Status: models.StatusDone, Position: 1000},
	})
	require.ErrorIs(t, err, ErrTasksSpanWorkspaces)

	// Neither task was touched.
	unchanged, err := fix.svc.tasks.GetByID(ctx, local.ID, fix.owner.ID)
	require.NoError(t, err)
	require.Equal(t, models.StatusTodo, unchanged.Status)
}

func TestBulkUpdateRejectsUnknownTasks(t *testing.T) {
	fix := newTaskFixture(t)

	task := fix.createTask(t, "Known", models.StatusTodo)

	_, err := fix.svc.tasks.BulkUpdate(context.Background(), fix.owner.ID, []BulkTaskUpdate{
		{ID: task.ID, Status: models.StatusDone, Position: 1000},
		{ID: "missing", Status: models.StatusDone, Position: 1000},
	})
	require.ErrorIs(t, err, ErrTaskNotFound)
}

func TestBulkUpdateValidatesBeforeAnyWrite(t *testing.T) {
	fix := newTaskFixture(t)

	task := fix.createTask(t, "Known", models.StatusTodo)

	_, err := fix.svc.tasks.BulkUpdate(context.Background(), fix.owner.ID, []BulkTaskUpdate{
		{ID: task.ID, Status: models.StatusDone, Position: 250},
	})
	require.Error(t, err)

	unchanged, err := fix.svc.tasks.GetByID(context.Background(), task.ID, fix.owner.ID)
	require.NoError(t, err)
	require.Equal(t, models.StatusTodo, unchanged.Status)
}

func TestTaskDueDateFilter(t *testing.T) {
	fix := newTaskFixture(t)
	ctx := context.Background()

	due := dayIn(2026, 9, 15)
	fix.createTask(t, "On the day", models.StatusTodo)

	other := dayIn(2026, 9, 30)
	_, err := fix.svc.tasks.Create(ctx, fix.owner.ID, CreateTaskInput{
		Name:        "Later",
		Status:      models.StatusTodo,
		WorkspaceID: fix.workspace.ID,
		ProjectID:   fix.project.ID,
		AssigneeID:  fix.member.ID,
		DueDate:     other,
	})
	require.NoError(t, err)

	tasks, err := fix.svc.tasks.List(ctx, fix.owner.ID, TaskFilter{WorkspaceID: fix.workspace.ID, DueDate: &due})
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	require.Equal(t, "On the day", tasks[0].Name)
	require.True(t, tasks[0].DueDate.Equal(due))
}
