package repository

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/forgehq/forge/internal/domain"
	"github.com/forgehq/forge/internal/repository/testutil"
)

var projectRows = []string{
	"id", "user_id", "name", "description", "status",
	"preview_url", "sandbox_id", "created_at", "updated_at",
}

func TestProjectList(t *testing.T) {
	db, mock := testutil.SetupMockDB(t)

	repo := NewProjectRepository(db)
	now := time.Now().UTC().Truncate(time.Microsecond)

	rows := sqlmock.NewRows(projectRows).
		AddRow("p2", "user1", "Newest", "", "idle", nil, nil, now, now).
		AddRow("p1", "user1", "Older", "", "idle", "https://p1.example.dev", "sbx-1", now.Add(-time.Hour), now.Add(-time.Hour))

	mock.ExpectQuery(`SELECT (.+) FROM projects WHERE user_id = \$1 ORDER BY updated_at DESC`).
		WithArgs("user1").
		WillReturnRows(rows)

	projects, err := repo.List(context.Background(), "user1")
	require.NoError(t, err)
	require.Len(t, projects, 2)
	assert.Equal(t, "p2", projects[0].ID)
	assert.Equal(t, "Older", projects[1].Name)
	assert.False(t, projects[1].PreviewURL.IsNull)
	assert.True(t, projects[0].PreviewURL.IsNull)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestProjectGetByID(t *testing.T) {
	db, mock := testutil.SetupMockDB(t)

	repo := NewProjectRepository(db)
	now := time.Now().UTC().Truncate(time.Microsecond)

	mock.ExpectQuery(`SELECT (.+) FROM projects WHERE id = \$1 AND user_id = \$2`).
		WithArgs("p1", "user1").
		WillReturnRows(sqlmock.NewRows(projectRows).
			AddRow("p1", "user1", "My App", "demo", "idle", nil, nil, now, now))

	project, err := repo.GetByID(context.Background(), "p1", "user1")
	require.NoError(t, err)
	require.NotNil(t, project)
	assert.Equal(t, "My App", project.Name)

	require.NoError(t, mock.ExpectationsWereMet())
}

// A row that does not exist and a row owned by someone else must be
// indistinguishable: both come back as a nil project with no error.
func TestProjectGetByIDAbsentAndForeignLookAlike(t *testing.T) {
	db, mock := testutil.SetupMockDB(t)

	repo := NewProjectRepository(db)

	mock.ExpectQuery(`SELECT (.+) FROM projects WHERE id = \$1 AND user_id = \$2`).
		WithArgs("missing", "user1").
		WillReturnError(sql.ErrNoRows)

	absent, err := repo.GetByID(context.Background(), "missing", "user1")
	require.NoError(t, err)
	assert.Nil(t, absent)

	mock.ExpectQuery(`SELECT (.+) FROM projects WHERE id = \$1 AND user_id = \$2`).
		WithArgs("p1", "intruder").
		WillReturnError(sql.ErrNoRows)

	foreign, err := repo.GetByID(context.Background(), "p1", "intruder")
	require.NoError(t, err)
	assert.Nil(t, foreign)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestProjectCreate(t *testing.T) {
	db, mock := testutil.SetupMockDB(t)

	repo := NewProjectRepository(db)

	mock.ExpectExec(`INSERT INTO projects`).
		WithArgs("p1", "user1", "My App", "", "idle", nil, nil, sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	project := &domain.Project{
		ID:         "p1",
		UserID:     "user1",
		Name:       "My App",
		PreviewURL: domain.NullableString{IsNull: true},
		SandboxID:  domain.NullableString{IsNull: true},
	}
	err := repo.Create(context.Background(), project)
	require.NoError(t, err)
	assert.Equal(t, domain.ProjectStatusIdle, project.Status)
	assert.False(t, project.CreatedAt.IsZero())

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestProjectCreateDuplicateKey(t *testing.T) {
	db, mock := testutil.SetupMockDB(t)

	repo := NewProjectRepository(db)

	mock.ExpectExec(`INSERT INTO projects`).
		WillReturnError(&pq.Error{Code: "23505", Constraint: "projects_pkey"})

	err := repo.Create(context.Background(), &domain.Project{
		ID:         "p1",
		UserID:     "user1",
		Name:       "My App",
		PreviewURL: domain.NullableString{IsNull: true},
		SandboxID:  domain.NullableString{IsNull: true},
	})
	require.Error(t, err)
	assert.True(t, domain.IsDuplicateKey(err))

	var dup *domain.ErrDuplicateKey
	require.True(t, errors.As(err, &dup))
	assert.Equal(t, "projects_pkey", dup.Constraint)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestProjectPatch(t *testing.T) {
	db, mock := testutil.SetupMockDB(t)

	repo := NewProjectRepository(db)
	now := time.Now().UTC().Truncate(time.Microsecond)

	mock.ExpectQuery(`UPDATE projects SET updated_at = \$1, name = \$2, preview_url = \$3 WHERE id = \$4 AND user_id = \$5 RETURNING (.+)`).
		WithArgs(sqlmock.AnyArg(), "Renamed", nil, "p1", "user1").
		WillReturnRows(sqlmock.NewRows(projectRows).
			AddRow("p1", "user1", "Renamed", "", "idle", nil, nil, now, now))

	name := "Renamed"
	project, err := repo.Patch(context.Background(), "p1", "user1", &domain.ProjectPatch{
		Name:       &name,
		PreviewURL: &domain.NullableString{IsNull: true},
	})
	require.NoError(t, err)
	require.NotNil(t, project)
	assert.Equal(t, "Renamed", project.Name)
	assert.True(t, project.PreviewURL.IsNull)

	require.NoError(t, mock.ExpectationsWereMet())
}

// An empty patch must not write anything: it reads and returns the
// current row, so "nothing changed" stays distinguishable from "not found".
func TestProjectPatchEmptyReturnsCurrentRow(t *testing.T) {
	db, mock := testutil.SetupMockDB(t)

	repo := NewProjectRepository(db)
	now := time.Now().UTC().Truncate(time.Microsecond)

	mock.ExpectQuery(`SELECT (.+) FROM projects WHERE id = \$1 AND user_id = \$2`).
		WithArgs("p1", "user1").
		WillReturnRows(sqlmock.NewRows(projectRows).
			AddRow("p1", "user1", "My App", "", "idle", nil, nil, now, now))

	project, err := repo.Patch(context.Background(), "p1", "user1", &domain.ProjectPatch{})
	require.NoError(t, err)
	require.NotNil(t, project)
	assert.Equal(t, "My App", project.Name)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestProjectPatchNotOwned(t *testing.T) {
	db, mock := testutil.SetupMockDB(t)

	repo := NewProjectRepository(db)

	mock.ExpectQuery(`UPDATE projects SET updated_at = \$1, status = \$2 WHERE id = \$3 AND user_id = \$4 RETURNING (.+)`).
		WillReturnError(sql.ErrNoRows)

	status := "deployed"
	project, err := repo.Patch(context.Background(), "p1", "intruder", &domain.ProjectPatch{
		Status: &status,
	})
	require.NoError(t, err)
	assert.Nil(t, project)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestProjectDelete(t *testing.T) {
	db, mock := testutil.SetupMockDB(t)

	repo := NewProjectRepository(db)

	mock.ExpectExec(`DELETE FROM projects WHERE id = \$1 AND user_id = \$2`).
		WithArgs("p1", "user1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	deleted, err := repo.Delete(context.Background(), "p1", "user1")
	require.NoError(t, err)
	assert.True(t, deleted)

	mock.ExpectExec(`DELETE FROM projects WHERE id = \$1 AND user_id = \$2`).
		WithArgs("p1", "intruder").
		WillReturnResult(sqlmock.NewResult(0, 0))

	deleted, err = repo.Delete(context.Background(), "p1", "intruder")
	require.NoError(t, err)
	assert.False(t, deleted)

	require.NoError(t, mock.ExpectationsWereMet())
}
