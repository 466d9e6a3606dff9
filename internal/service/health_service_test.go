package service_test

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/nsxzhou1114/social-api/internal/service"
	"github.com/nsxzhou1114/social-api/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func TestHealthCheckOK(t *testing.T) {
	health := service.NewHealthService(testutil.NewDB(t))

	status, err := health.Check(context.Background())
	require.NoError(t, err)
	assert.Equal(t, service.HealthOK, status.Status)
	assert.Equal(t, "sqlite", status.Database)
	assert.NotEmpty(t, status.Timestamp)
}

func TestHealthCheckDegraded(t *testing.T) {
	sqlDB, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)
	defer sqlDB.Close()

	db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{DisableAutomaticPing: true})
	require.NoError(t, err)

	mock.ExpectPing().WillReturnError(errors.New("connection refused"))

	status, err := service.NewHealthService(db).Check(context.Background())
	require.Error(t, err)
	assert.Equal(t, service.HealthDegraded, status.Status)
	assert.Equal(t, "postgres", status.Database)
	assert.NoError(t, mock.ExpectationsWereMet())
}
