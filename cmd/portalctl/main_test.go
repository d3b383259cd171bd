package main

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/support-portal/internal/domain"
)

func TestRunPrintsUsage(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, run(nil, &out))
	assert.Contains(t, out.String(), "set-role <username> <role>")
}

func TestRunRequiresDSN(t *testing.T) {
	t.Setenv("POSTGRES_DSN", "")
	var out bytes.Buffer
	err := run([]string{"list-users"}, &out)
	assert.ErrorContains(t, err, "POSTGRES_DSN")
}

func TestPrintAccounts(t *testing.T) {
	var out bytes.Buffer
	created := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	require.NoError(t, printAccounts(&out, []domain.Account{
		{ID: 1, Username: "boss", Role: domain.RoleManager, CreatedAt: created},
		{ID: 2, Username: "alice", Role: domain.RoleUser, CreatedAt: created},
	}))

	lines := bytes.Split(bytes.TrimSpace(out.Bytes()), []byte("\n"))
	require.Len(t, lines, 3)
	assert.Contains(t, string(lines[1]), "MANAGER")
	assert.Contains(t, string(lines[1]), "2024-05-01")
	assert.Contains(t, string(lines[2]), "alice")
}
