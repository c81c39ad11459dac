package logger

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestNewLogger(t *testing.T) {
	log, err := newLogger(Config{Level: "debug", Encoding: "json"})
	require.NoError(t, err)
	assert.NotNil(t, log)
}

func TestNewLogger_InvalidLevel(t *testing.T) {
	_, err := newLogger(Config{Level: "verbose", Encoding: "json"})
	assert.Error(t, err)
}

func TestGet_Uninitialized(t *testing.T) {
	assert.NotNil(t, Get())
}

func TestContextFields(t *testing.T) {
	ctx := context.WithValue(context.Background(), SourceKey, "combat.strap")
	ctx = context.WithValue(ctx, StageKey, "materialize")

	assert.Equal(t, []zap.Field{
		zap.String("source", "combat.strap"),
		zap.String("stage", "materialize"),
	}, contextFields(ctx))
}

func TestContextFields_Empty(t *testing.T) {
	assert.Empty(t, contextFields(context.Background()))
}

func TestWithContext(t *testing.T) {
	ctx := context.WithValue(context.Background(), StageKey, "schema_discovery")
	assert.NotNil(t, WithContext(ctx))
}

func TestSync(t *testing.T) {
	assert.NotPanics(t, func() { _ = Sync() })
}
