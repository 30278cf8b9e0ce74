package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mizan-legal/mizan-api/internal/models"
)

func TestConsultantRepositoryListActiveOnly(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewConsultantRepository(db)

	rows := sqlmock.NewRows([]string{"id", "name", "specialization", "email", "active", "created_at", "updated_at"}).
		AddRow("cons-1", "A. Benali", "Commercial law", nil, true, time.Now(), time.Now())
	mock.ExpectQuery(`SELECT id, name, specialization, email, active, created_at, updated_at FROM consultants WHERE 1=1 AND active = \$1 ORDER BY name ASC LIMIT 100 OFFSET 0`).
		WithArgs(true).
		WillReturnRows(rows)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM consultants WHERE 1=1 AND active = $1")).
		WithArgs(true).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	active := true
	list, total, err := repo.List(context.Background(), models.ConsultantFilter{Active: &active})
	require.NoError(t, err)
	assert.Len(t, list, 1)
	assert.Equal(t, 1, total)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestConsultantRepositoryCreateAndDeactivate(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewConsultantRepository(db)

	mock.ExpectExec("INSERT INTO consultants").
		WillReturnResult(sqlmock.NewResult(1, 1))

	consultant := &models.Consultant{Name: "S. Khelifi", Specialization: "Family law", Active: true}
	require.NoError(t, repo.Create(context.Background(), consultant))
	assert.NotEmpty(t, consultant.ID)

	mock.ExpectExec("UPDATE consultants SET active = FALSE").
		WithArgs("cons-1", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.Deactivate(context.Background(), "cons-1"))
	assert.NoError(t, mock.ExpectationsWereMet())
}
