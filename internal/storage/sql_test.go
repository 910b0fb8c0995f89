package storage

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupSQLStore(t *testing.T, dialect Dialect) (*SQLStore, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return &SQLStore{DB: db, dialect: dialect}, mock
}

func TestSQLStore_Get(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name      string
		prepare   func(sqlmock.Sqlmock)
		wantValue []byte
		wantErr   bool
	}{
		{
			name: "found",
			prepare: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`SELECT entry_value FROM kv_entries WHERE entry_key = \$1`).
					WithArgs("restaurant:thai").
					WillReturnRows(sqlmock.NewRows([]string{"entry_value"}).AddRow([]byte(`{"id":"thai"}`)))
			},
			wantValue: []byte(`{"id":"thai"}`),
		},
		{
			name: "missing",
			prepare: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery("SELECT entry_value").
					WithArgs("restaurant:thai").
					WillReturnError(sql.ErrNoRows)
			},
		},
		{
			name: "db error",
			prepare: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery("SELECT entry_value").
					WithArgs("restaurant:thai").
					WillReturnError(sql.ErrConnDone)
			},
			wantErr: true,
		},
	}

	for _, testCase := range tests {
		t.Run(testCase.name, func(t *testing.T) {
			store, mock := setupSQLStore(t, PostgresDialect)
			testCase.prepare(mock)

			value, err := store.Get(ctx, "restaurant:thai")

			if testCase.wantErr {
				assert.ErrorIs(t, err, sql.ErrConnDone)
			} else {
				assert.NoError(t, err)
			}
			assert.Equal(t, testCase.wantValue, value)
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestSQLStore_PutUpserts(t *testing.T) {
	store, mock := setupSQLStore(t, PostgresDialect)
	value := []byte(`{"id":"thai"}`)

	mock.ExpectExec(`(?s)INSERT INTO kv_entries .* ON CONFLICT \(entry_key\) DO UPDATE`).
		WithArgs("restaurant:thai", value).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, store.Put(context.Background(), "restaurant:thai", value))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLStore_SQLitePlaceholders(t *testing.T) {
	store, mock := setupSQLStore(t, SQLiteDialect)

	mock.ExpectExec(`DELETE FROM kv_entries WHERE entry_key = \?`).
		WithArgs("menu:thai").
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, store.Delete(context.Background(), "menu:thai"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLStore_ListEscapesPrefix(t *testing.T) {
	store, mock := setupSQLStore(t, PostgresDialect)

	mock.ExpectQuery(`SELECT entry_key FROM kv_entries WHERE entry_key LIKE \$1`).
		WithArgs(`history:user\_1:%`).
		WillReturnRows(sqlmock.NewRows([]string{"entry_key"}).
			AddRow("history:user_1:pizza").
			AddRow("history:user_1:thai"))

	keys, err := store.List(context.Background(), "history:user_1:")

	require.NoError(t, err)
	assert.Equal(t, []string{"history:user_1:pizza", "history:user_1:thai"}, keys)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLStore_ListKeepsExactPrefixOnly(t *testing.T) {
	store, mock := setupSQLStore(t, SQLiteDialect)

	mock.ExpectQuery(`SELECT entry_key FROM kv_entries WHERE entry_key LIKE \?`).
		WithArgs(`rating:thai:%`).
		WillReturnRows(sqlmock.NewRows([]string{"entry_key"}).
			AddRow("rating:Thai:1700000000000:aa").
			AddRow("rating:thai:1700000000000:bb"))

	keys, err := store.List(context.Background(), "rating:thai:")

	require.NoError(t, err)
	assert.Equal(t, []string{"rating:thai:1700000000000:bb"}, keys)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLStore_PutError(t *testing.T) {
	store, mock := setupSQLStore(t, PostgresDialect)
	boom := errors.New("disk full")

	mock.ExpectExec("INSERT INTO kv_entries").WillReturnError(boom)

	err := store.Put(context.Background(), "k", []byte("v"))
	assert.ErrorIs(t, err, boom)
}

func TestSQLStore_EnsureSchema(t *testing.T) {
	store, mock := setupSQLStore(t, SQLiteDialect)

	mock.ExpectExec(`(?s)CREATE TABLE IF NOT EXISTS kv_entries .* BLOB`).
		WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, store.EnsureSchema(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEscapeLike(t *testing.T) {
	assert.Equal(t, `a\%b\_c\\d`, escapeLike(`a%b_c\d`))
}
