package db

import (
	"context"
	"database/sql/driver"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

// cutoffNear matches a time argument within a second of now-retention.
type cutoffNear struct{ retention time.Duration }

func (c cutoffNear) Match(v driver.Value) bool {
	ts, ok := v.(time.Time)
	if !ok {
		return false
	}
	want := time.Now().Add(-c.retention)
	return ts.After(want.Add(-time.Second)) && ts.Before(want.Add(time.Second))
}

func runCleaner(t *testing.T, setup func(sqlmock.Sqlmock)) *observer.ObservedLogs {
	t.Helper()
	dbMock, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer dbMock.Close()
	setup(mock)

	core, logs := observer.New(zapcore.InfoLevel)
	ctx, cancel := context.WithCancel(context.Background())

	StartStatusCleaner(ctx, dbMock, 10*time.Millisecond, 24*time.Hour, zap.New(core))
	require.Eventually(t, func() bool {
		return mock.ExpectationsWereMet() == nil
	}, time.Second, 5*time.Millisecond)
	cancel()
	time.Sleep(30 * time.Millisecond)
	return logs
}

func TestStartStatusCleaner_RemovesOldChecks(t *testing.T) {
	logs := runCleaner(t, func(mock sqlmock.Sqlmock) {
		mock.ExpectExec("DELETE FROM status_checks").
			WithArgs(cutoffNear{retention: 24 * time.Hour}).
			WillReturnResult(sqlmock.NewResult(0, 3))
	})

	require.Eventually(t, func() bool {
		return logs.FilterMessage("cleaned status checks").Len() == 1
	}, time.Second, 5*time.Millisecond)
	entry := logs.FilterMessage("cleaned status checks").All()[0]
	assert.Equal(t, int64(3), entry.ContextMap()["removed"])
}

func TestStartStatusCleaner_NothingToRemove(t *testing.T) {
	logs := runCleaner(t, func(mock sqlmock.Sqlmock) {
		mock.ExpectExec("DELETE FROM status_checks").
			WithArgs(sqlmock.AnyArg()).
			WillReturnResult(sqlmock.NewResult(0, 0))
	})
	assert.Zero(t, logs.FilterMessage("cleaned status checks").Len())
}

func TestStartStatusCleaner_ErrorLogged(t *testing.T) {
	logs := runCleaner(t, func(mock sqlmock.Sqlmock) {
		mock.ExpectExec("DELETE FROM status_checks").
			WithArgs(sqlmock.AnyArg()).
			WillReturnError(errors.New("db fail"))
	})

	require.Eventually(t, func() bool {
		return logs.FilterMessage("failed to clean status checks").Len() >= 1
	}, time.Second, 5*time.Millisecond)
}

func TestStartStatusCleaner_CancelBeforeTick(t *testing.T) {
	dbMock, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer dbMock.Close()

	ctx, cancel := context.WithCancel(context.Background())
	StartStatusCleaner(ctx, dbMock, 100*time.Millisecond, time.Hour, zap.NewNop())
	cancel()
	time.Sleep(150 * time.Millisecond)

	assert.NoError(t, mock.ExpectationsWereMet(), "no statement runs after cancel")
}
