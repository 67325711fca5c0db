package db

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

func TestIsDuplicateKeyErr(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want bool
	}{
		{name: "nil", err: nil, want: false},
		{name: "gorm translated", err: fmt.Errorf("insert: %w", gorm.ErrDuplicatedKey), want: true},
		{name: "postgres", err: errors.New(`ERROR: duplicate key value violates unique constraint "members_pkey"`), want: true},
		{name: "mysql", err: errors.New("Error 1062 (23000): Duplicate entry 'M1' for key 'PRIMARY'"), want: true},
		{name: "sqlite", err: errors.New("UNIQUE constraint failed: members.member_id"), want: true},
		{name: "other", err: errors.New("no such table: members"), want: false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, IsDuplicateKeyErr(tc.err))
		})
	}
}

func TestSQLiteDSN(t *testing.T) {
	assert.Equal(t, "data/gym.db?_busy_timeout=5000&_journal_mode=WAL", SQLiteDSN("data/gym.db"))
	assert.Equal(t, "file::memory:?cache=shared", SQLiteDSN("file::memory:?cache=shared"))
	assert.Equal(t, defaultSQLitePath+"?_busy_timeout=5000&_journal_mode=WAL", SQLiteDSN(""))
}

func TestDialectRejectsUnknownType(t *testing.T) {
	_, err := Dialect(Config{Type: "oracle"})
	assert.Error(t, err)
}
