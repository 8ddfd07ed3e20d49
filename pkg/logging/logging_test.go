package logging

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

func TestSetup_ConsoleLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	logger, closer, err := Setup(Options{Level: "warn", Console: &buf})
	require.NoError(t, err)
	defer closer.Close()

	logger.Info().Msg("hidden")
	logger.Warn().Msg("shown")

	require.NotContains(t, buf.String(), "hidden")
	require.Contains(t, buf.String(), "shown")
}

func TestSetup_EmptyLevelDefaultsToInfo(t *testing.T) {
	logger, closer, err := Setup(Options{})
	require.NoError(t, err)
	defer closer.Close()
	require.Equal(t, zerolog.InfoLevel, logger.GetLevel())
}

func TestSetup_InvalidLevel(t *testing.T) {
	_, _, err := Setup(Options{Level: "loud"})
	require.Error(t, err)
}

func TestSetup_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "chat.log")
	logger, closer, err := Setup(Options{Level: "debug", File: path})
	require.NoError(t, err)

	logger.Debug().Str("component", "test").Msg("to file")
	require.NoError(t, closer.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Contains(t, string(data), `"message":"to file"`)
	require.Contains(t, string(data), `"component":"test"`)
}
