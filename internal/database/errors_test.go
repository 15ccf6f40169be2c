package database

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/at-ishikawa/dramatis/internal/config"
)

func TestMapError(t *testing.T) {
	plainErr := errors.New("plain failure")

	tests := []struct {
		name         string
		err          error
		wantSentinel error
	}{
		{
			name: "nil",
			err:  nil,
		},
		{
			name: "unrelated error passes through",
			err:  plainErr,
		},
		{
			name:         "mysql duplicate entry",
			err:          &mysql.MySQLError{Number: 1062, Message: "Duplicate entry 'x' for key 'stories.title'"},
			wantSentinel: ErrDuplicateKey,
		},
		{
			name:         "mysql row is referenced",
			err:          &mysql.MySQLError{Number: 1451, Message: "Cannot delete or update a parent row"},
			wantSentinel: ErrForeignKey,
		},
		{
			name:         "mysql no referenced row",
			err:          &mysql.MySQLError{Number: 1452, Message: "Cannot add or update a child row"},
			wantSentinel: ErrForeignKey,
		},
		{
			name: "mysql access denied passes through",
			err:  &mysql.MySQLError{Number: 1045, Message: "Access denied"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MapError(tt.err)
			if tt.err == nil {
				assert.NoError(t, got)
				return
			}
			if tt.wantSentinel == nil {
				assert.Equal(t, tt.err, got)
				return
			}
			assert.ErrorIs(t, got, tt.wantSentinel)
			assert.ErrorAs(t, got, new(*mysql.MySQLError))
		})
	}
}

func TestMapError_SQLiteConstraints(t *testing.T) {
	db, err := Open(config.DatabaseConfig{
		Driver: DriverSQLite,
		Path:   filepath.Join(t.TempDir(), "dramatis.db"),
	})
	require.NoError(t, err)
	defer db.Close()

	_, err = db.Exec(`CREATE TABLE parents (id INTEGER PRIMARY KEY)`)
	require.NoError(t, err)
	_, err = db.Exec(`CREATE TABLE children (
		id INTEGER PRIMARY KEY,
		parent_id INTEGER NOT NULL REFERENCES parents (id),
		name TEXT NOT NULL UNIQUE
	)`)
	require.NoError(t, err)

	_, err = db.Exec(`INSERT INTO parents (id) VALUES (1)`)
	require.NoError(t, err)
	_, err = db.Exec(`INSERT INTO children (id, parent_id, name) VALUES (1, 1, 'a')`)
	require.NoError(t, err)

	t.Run("unique constraint", func(t *testing.T) {
		_, err := db.Exec(`INSERT INTO children (id, parent_id, name) VALUES (2, 1, 'a')`)
		require.Error(t, err)
		assert.ErrorIs(t, MapError(err), ErrDuplicateKey)
	})

	t.Run("primary key constraint", func(t *testing.T) {
		_, err := db.Exec(`INSERT INTO children (id, parent_id, name) VALUES (1, 1, 'b')`)
		require.Error(t, err)
		assert.ErrorIs(t, MapError(err), ErrDuplicateKey)
	})

	t.Run("foreign key constraint", func(t *testing.T) {
		_, err := db.Exec(`INSERT INTO children (id, parent_id, name) VALUES (3, 99, 'c')`)
		require.Error(t, err)
		assert.ErrorIs(t, MapError(err), ErrForeignKey)
	})
}
