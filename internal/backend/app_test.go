package backend

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/socialclone/internal/backend/config"
	"github.com/dmitrijs2005/socialclone/internal/backend/repositories/repomanager"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubRepoManager struct {
	repomanager.RepositoryManager
	migrateErr error
}

func (s *stubRepoManager) RunMigrations(context.Context, *sql.DB) error { return s.migrateErr }

func stubDB(t *testing.T, migrateErr error) sqlmock.Sqlmock {
	t.Helper()
	origOpen, origRM := openDB, newRepoManager
	t.Cleanup(func() { openDB, newRepoManager = origOpen, origRM })

	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	openDB = func(string) (*sql.DB, error) { return db, nil }
	newRepoManager = func(*sql.DB) (repomanager.RepositoryManager, error) {
		return &stubRepoManager{migrateErr: migrateErr}, nil
	}
	return mock
}

func testConfig() *config.Config {
	c := &config.Config{}
	c.LoadDefaults()
	c.EndpointAddrGRPC = "127.0.0.1:0"
	c.EndpointAddrHTTP = "127.0.0.1:0"
	return c
}

func TestNewApp_OpenError(t *testing.T) {
	orig := openDB
	t.Cleanup(func() { openDB = orig })
	openDB = func(string) (*sql.DB, error) { return nil, errors.New("bad dsn") }

	_, err := NewApp(context.Background(), testConfig())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bad dsn")
}

func TestNewApp_MigrationError(t *testing.T) {
	mock := stubDB(t, errors.New("goose failed"))
	mock.ExpectClose()

	_, err := NewApp(context.Background(), testConfig())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "migrations error")
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestApp_RunStopsOnCancel(t *testing.T) {
	mock := stubDB(t, nil)
	mock.ExpectClose()

	app, err := NewApp(context.Background(), testConfig())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- app.Run(ctx) }()

	time.Sleep(150 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("app did not stop")
	}
	require.NoError(t, mock.ExpectationsWereMet())
}
