package main

import (
	"flag"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AntonStoeckl/bookshelf-viewmodel/shell/config"
)

func newFlagSet() *flag.FlagSet {
	fs := flag.NewFlagSet("bookshelf", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	return fs
}

func givenEnvConfig() config.Config {
	return config.Config{
		Driver:    config.DriverPGX,
		LogLevel:  config.LogLevelInfo,
		LogFormat: config.LogFormatJSON,
	}
}

func Test_ParseFlags_DefaultsDSNForDriverGivenOnCommandLine(t *testing.T) {
	// act
	cfg, err := parseFlags(newFlagSet(), []string{"-driver", "sqlite"}, givenEnvConfig())

	// assert
	require.NoError(t, err)
	assert.Equal(t, config.DriverSQLite, cfg.Driver)
	assert.Equal(t, config.Config{Driver: config.DriverSQLite}.WithDefaults().DSN, cfg.DSN)
}

func Test_ParseFlags_DefaultsDSNForEnvironmentDriver(t *testing.T) {
	// act
	cfg, err := parseFlags(newFlagSet(), nil, givenEnvConfig())

	// assert
	require.NoError(t, err)
	assert.Contains(t, cfg.DSN, "postgres://")
}

func Test_ParseFlags_KeepsDSNFromEnvironment(t *testing.T) {
	// arrange
	env := givenEnvConfig()
	env.DSN = "postgres://app@db:5432/bookshelf"

	// act
	cfg, err := parseFlags(newFlagSet(), []string{"-driver", "postgres"}, env)

	// assert
	require.NoError(t, err)
	assert.Equal(t, env.DSN, cfg.DSN)
}

func Test_ParseFlags_AuthorZeroIsLoadable(t *testing.T) {
	// act
	withAuthor, err := parseFlags(newFlagSet(), []string{"-author", "0"}, givenEnvConfig())
	require.NoError(t, err)
	withoutAuthor, err := parseFlags(newFlagSet(), nil, givenEnvConfig())
	require.NoError(t, err)

	// assert
	assert.True(t, withAuthor.LoadAuthor)
	assert.Equal(t, 0, withAuthor.AuthorID)
	assert.False(t, withoutAuthor.LoadAuthor)
}

func Test_ParseFlags_RejectsInvalidCombinations(t *testing.T) {
	testCases := []struct {
		name string
		args []string
		err  error
	}{
		{name: "negative author", args: []string{"-author", "-1"}, err: errNegativeAuthorID},
		{name: "replay with loads", args: []string{"-replay", "a.jsonl", "-books"}, err: errReplayWithLoads},
		{name: "journal is replay source", args: []string{"-replay", "a.jsonl", "-journal", "a.jsonl"}, err: errJournalIsReplaySource},
		{name: "otel logs without endpoint", args: []string{"-log-format", "otel"}, err: errOTelLogsWithoutOTel},
		{name: "unknown driver", args: []string{"-driver", "mysql"}, err: config.ErrInvalidConfig},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// act
			_, err := parseFlags(newFlagSet(), tc.args, givenEnvConfig())

			// assert
			assert.ErrorIs(t, err, tc.err)
		})
	}
}
