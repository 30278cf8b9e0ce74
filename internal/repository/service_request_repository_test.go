package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mizan-legal/mizan-api/internal/models"
)

func newRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func requestRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "client_id", "category_id", "status", "urgency", "service_description",
		"assigned_to", "assigned_consultant_name", "payment_required", "payment_amount",
		"payment_currency", "payment_status", "viewed", "created_at", "updated_at",
	})
}

func TestServiceRequestRepositoryListFiltersByClientAndStatus(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewServiceRequestRepository(db)

	rows := requestRows().
		AddRow("req-1", "client-1", nil, "pending", "normal", "Contract review",
			nil, nil, false, nil, nil, "pending", false, time.Now(), time.Now())
	mock.ExpectQuery(`SELECT id, client_id, .+ FROM service_requests WHERE 1=1 AND client_id = \$1 AND status = \$2 ORDER BY created_at DESC LIMIT 20 OFFSET 0`).
		WithArgs("client-1", models.RequestStatusPending).
		WillReturnRows(rows)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM service_requests WHERE 1=1 AND client_id = $1 AND status = $2")).
		WithArgs("client-1", models.RequestStatusPending).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	status := models.RequestStatusPending
	list, total, err := repo.List(context.Background(), models.ServiceRequestFilter{ClientID: "client-1", Status: &status})
	require.NoError(t, err)
	assert.Len(t, list, 1)
	assert.Equal(t, 1, total)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestServiceRequestRepositoryListSearchesDescriptions(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewServiceRequestRepository(db)

	rows := requestRows().
		AddRow("req-1", "client-1", nil, "pending", "normal", "Contract review for a startup",
			nil, nil, false, nil, nil, "pending", false, time.Now(), time.Now())
	mock.ExpectQuery(`SELECT id, client_id, .+ FROM service_requests WHERE 1=1 AND LOWER\(service_description\) LIKE \$1 ORDER BY created_at DESC LIMIT 20 OFFSET 0`).
		WithArgs("%contract%").
		WillReturnRows(rows)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM service_requests WHERE 1=1 AND LOWER(service_description) LIKE $1")).
		WithArgs("%contract%").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	list, total, err := repo.List(context.Background(), models.ServiceRequestFilter{Search: "Contract"})
	require.NoError(t, err)
	assert.Len(t, list, 1)
	assert.Equal(t, 1, total)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestServiceRequestRepositoryCreate(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewServiceRequestRepository(db)

	mock.ExpectExec("INSERT INTO service_requests").
		WillReturnResult(sqlmock.NewResult(1, 1))

	request := &models.ServiceRequest{
		ClientID:           "client-1",
		Status:             models.RequestStatusPending,
		Urgency:            models.UrgencyNormal,
		ServiceDescription: "Succession file",
		PaymentStatus:      models.PaymentStatusPending,
	}
	require.NoError(t, repo.Create(context.Background(), request))
	assert.NotEmpty(t, request.ID)
	assert.False(t, request.CreatedAt.IsZero())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestServiceRequestRepositoryMarkViewedIsIdempotent(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewServiceRequestRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE service_requests SET viewed = TRUE, updated_at = $2 WHERE id = $1 AND viewed = FALSE")).
		WithArgs("req-1", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, repo.MarkViewed(context.Background(), "req-1"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestServiceRequestRepositoryCountUnviewed(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewServiceRequestRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM service_requests WHERE client_id = $1 AND viewed = FALSE")).
		WithArgs("client-1").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(3))

	count, err := repo.CountUnviewed(context.Background(), "client-1")
	require.NoError(t, err)
	assert.Equal(t, 3, count)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestServiceRequestRepositoryAddReplyResetsViewed(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewServiceRequestRepository(db)

	mock.ExpectExec("INSERT INTO request_replies").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE service_requests SET viewed = FALSE, updated_at = $2 WHERE id = $1")).
		WithArgs("req-1", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	reply := &models.RequestReply{RequestID: "req-1", Author: "Admin", Role: models.ReplyRoleAdmin, Message: "Documents received."}
	require.NoError(t, repo.AddReply(context.Background(), reply))
	assert.NotEmpty(t, reply.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}
