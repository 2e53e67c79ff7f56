package database

import (
	"context"
	"fmt"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/at-ishikawa/pathtutor/internal/config"
)

func TestOpen(t *testing.T) {
	tests := []struct {
		name       string
		cfg        config.DatabaseConfig
		wantDriver string
		wantErr    bool
	}{
		{
			name: "creates mysql connection with valid config",
			cfg: config.DatabaseConfig{
				Driver:   "mysql",
				Host:     "localhost",
				Port:     3306,
				Database: "testdb",
				Username: "testuser",
				Password: "testpass",
			},
			wantDriver: "mysql",
		},
		{
			name: "creates mysql connection with pool settings and TLS",
			cfg: config.DatabaseConfig{
				Driver:          "mysql",
				Host:            "db.example.com",
				Port:            3307,
				Database:        "pathtutor",
				Username:        "admin",
				Password:        "secret",
				TLS:             true,
				Params:          map[string]string{"charset": "utf8mb4"},
				MaxOpenConns:    25,
				MaxIdleConns:    5,
				ConnMaxLifetime: 300,
			},
			wantDriver: "mysql",
		},
		{
			name:       "creates in-memory sqlite connection",
			cfg:        config.DatabaseConfig{Driver: "sqlite"},
			wantDriver: "sqlite",
		},
		{
			name:    "rejects unknown driver",
			cfg:     config.DatabaseConfig{Driver: "oracle"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Open(tt.cfg)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			require.NotNil(t, got)
			defer got.Close()

			assert.Equal(t, tt.wantDriver, got.DriverName())
		})
	}
}

func TestMigrate(t *testing.T) {
	db, err := Open(config.DatabaseConfig{Driver: "sqlite"})
	require.NoError(t, err)
	defer db.Close()

	ctx := context.Background()
	require.NoError(t, Migrate(ctx, db))
	require.NoError(t, Migrate(ctx, db), "migrations are idempotent")

	var tables []string
	require.NoError(t, db.SelectContext(ctx, &tables, "SELECT name FROM sqlite_master WHERE type = 'table' AND name IN ('sessions', 'answer_logs') ORDER BY name"))
	assert.Equal(t, []string{"answer_logs", "sessions"}, tables)
}

func TestSplitStatements(t *testing.T) {
	got := SplitStatements("CREATE TABLE a (id INT);\n\nCREATE INDEX i ON a (id);\n")
	assert.Equal(t, []string{"CREATE TABLE a (id INT)", "CREATE INDEX i ON a (id)"}, got)
	assert.Empty(t, SplitStatements("  \n"))
}

func TestBuildMultiRowInsert(t *testing.T) {
	assert.Equal(t,
		"INSERT INTO answer_logs (a, b) VALUES (?, ?), (?, ?), (?, ?)",
		BuildMultiRowInsert("answer_logs", []string{"a", "b"}, 3),
	)
}

func TestRunInTx(t *testing.T) {
	replaceSession := func(ctx context.Context, tx *sqlx.Tx) error {
		if _, err := tx.ExecContext(ctx, "DELETE FROM sessions WHERE learner_id = ?", "u-1"); err != nil {
			return err
		}
		_, err := tx.ExecContext(ctx, "INSERT INTO sessions (learner_id, rating) VALUES (?, ?)", "u-1", 1118)
		return err
	}

	tests := []struct {
		name      string
		setupMock func(mock sqlmock.Sqlmock)
		wantErr   string
	}{
		{
			name: "replaces the session row in one transaction",
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectBegin()
				mock.ExpectExec("DELETE FROM sessions").WithArgs("u-1").WillReturnResult(sqlmock.NewResult(0, 1))
				mock.ExpectExec("INSERT INTO sessions").WithArgs("u-1", 1118).WillReturnResult(sqlmock.NewResult(1, 1))
				mock.ExpectCommit()
			},
		},
		{
			name: "insert failure keeps the old row",
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectBegin()
				mock.ExpectExec("DELETE FROM sessions").WithArgs("u-1").WillReturnResult(sqlmock.NewResult(0, 1))
				mock.ExpectExec("INSERT INTO sessions").WillReturnError(fmt.Errorf("duplicate key"))
				mock.ExpectRollback()
			},
			wantErr: "duplicate key",
		},
		{
			name: "begin failure",
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectBegin().WillReturnError(fmt.Errorf("too many connections"))
			},
			wantErr: "begin transaction",
		},
		{
			name: "commit failure",
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectBegin()
				mock.ExpectExec("DELETE FROM sessions").WillReturnResult(sqlmock.NewResult(0, 0))
				mock.ExpectExec("INSERT INTO sessions").WillReturnResult(sqlmock.NewResult(1, 1))
				mock.ExpectCommit().WillReturnError(fmt.Errorf("connection lost"))
			},
			wantErr: "commit transaction",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock, err := sqlmock.New()
			require.NoError(t, err)
			defer db.Close()
			tt.setupMock(mock)

			err = RunInTx(context.Background(), sqlx.NewDb(db, "mysql"), replaceSession)
			if tt.wantErr != "" {
				assert.ErrorContains(t, err, tt.wantErr)
			} else {
				require.NoError(t, err)
			}
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}
