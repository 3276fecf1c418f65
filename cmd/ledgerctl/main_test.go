package main

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRunReturnsExitCode(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	assert.Equal(t, 1, run("ensure", "", 0, "", "", time.Second))

	t.Setenv("DATABASE_URL", "postgres://localhost/ledger")
	t.Setenv("LEDGER_DUE_HOUR", "25")
	assert.Equal(t, 1, run("ensure", "", 0, "", "", time.Second))
}
