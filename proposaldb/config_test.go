package proposaldb

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"spotmerge.hitchmap.org/internal/appconf"
)

func TestNewConfig(t *testing.T) {
	config := NewConfig("/path/to/spotmerge.db", appconf.Production, true)

	assert.Equal(t, "/path/to/spotmerge.db", config.DBPath)
	assert.Equal(t, appconf.Production, config.Env)
	assert.Equal(t, true, config.verbose)
}

func TestNewClientVerbose(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "spotmerge.db")

	client, err := NewClient(NewConfig(dbPath, appconf.Test, true))
	require.NoError(t, err)
	defer client.Close()

	assert.True(t, client.config.verbose)
	assert.NotNil(t, client.logger)
}
