package audit

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestLogBalanceChange(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	a := NewLogger(zap.New(core))

	a.LogBalanceChange("3", "student1", "purchase", decimal.RequireFromString("-8.5"), decimal.RequireFromString("37.25"))

	require.Equal(t, 1, logs.Len())
	entry := logs.All()[0]
	assert.Equal(t, EventBalanceChange, entry.Message)
	assert.Equal(t, "audit", entry.LoggerName)

	fields := entry.ContextMap()
	assert.Equal(t, true, fields["audit"])
	assert.Equal(t, "student1", fields["account_id"])
	assert.Equal(t, "-8.50", fields["amount"])
	assert.Equal(t, "37.25", fields["balance_after"])
}

func TestLogError(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	a := NewLogger(zap.New(core))

	a.LogError("purchase", "student2", errors.New("insufficient balance"))

	require.Equal(t, 1, logs.Len())
	entry := logs.All()[0]
	assert.Equal(t, zapcore.WarnLevel, entry.Level)
	assert.Equal(t, "FAILED", entry.ContextMap()["status"])
	assert.Equal(t, "insufficient balance", entry.ContextMap()["error"])
}

func TestNewLogger_NilIsSafe(t *testing.T) {
	assert.NotPanics(t, func() {
		NewLogger(nil).LogOperation(EventLogin, 1, "admin@university.edu")
	})
}
