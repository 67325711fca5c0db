package logger

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOperationFromSQL(t *testing.T) {
	cases := map[string]string{
		"SELECT * FROM members":                           "SELECT",
		"  insert into checkins (checkin_id) values (?)": "INSERT",
		"WITH recent AS (SELECT 1) SELECT * FROM recent":  "SELECT",
		"DELETE FROM sales":                               "DELETE",
		"":                                                "UNKNOWN",
		"PRAGMA journal_mode=WAL":                         "UNKNOWN",
	}
	for sql, want := range cases {
		assert.Equal(t, want, operationFromSQL(sql), sql)
	}
}

func TestTableFromSQL(t *testing.T) {
	assert.Equal(t, "members", tableFromSQL("SELECT * FROM `members` ORDER BY member_id"))
	assert.Equal(t, "checkins", tableFromSQL(`INSERT INTO "checkins" ("checkin_id") VALUES (?)`))
	assert.Equal(t, "", tableFromSQL("SELECT 1"))
}

func TestTruncateSQL(t *testing.T) {
	long := "INSERT INTO members VALUES " + strings.Repeat("(?),", 200)
	out := truncateSQL(long, 32)
	assert.Len(t, out, 35)
	assert.True(t, strings.HasSuffix(out, "..."))
	assert.Equal(t, "SELECT 1", truncateSQL(" SELECT 1 ", 0))
}
