package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("DSN", "postgres://localhost/boosta_test")
	t.Setenv("JWT_SECRET", "s3cret")

	cfg, err := Load(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, "postgres://localhost/boosta_test", cfg.DSN)
	assert.Equal(t, "s3cret", cfg.JwtSecret)
	assert.Equal(t, ":8080", cfg.Addr, "default addr")
	assert.NotEmpty(t, cfg.CreatorHandle)
}

func TestLoadMissingFileIsNotAnError(t *testing.T) {
	_, err := Load(t.TempDir())
	require.NoError(t, err)
}
