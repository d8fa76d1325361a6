package migrations

import (
	"os"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPending_OrdersSQLFilesByName(t *testing.T) {
	fsys := fstest.MapFS{
		"002_indexes.sql": {Data: []byte("CREATE INDEX x ON y (z);")},
		"001_init.sql":    {Data: []byte("CREATE TABLE y (z INT);")},
		"README.md":       {Data: []byte("notes")},
		"archive/000.sql": {Data: []byte("-- ignored")},
	}

	got, err := Pending(fsys)
	require.NoError(t, err)
	assert.Equal(t, []Migration{
		{Version: "001", Name: "001_init.sql"},
		{Version: "002", Name: "002_indexes.sql"},
	}, got)
}

func TestPending_RepositoryMigrations(t *testing.T) {
	got, err := Pending(os.DirFS("../../../migrations"))
	require.NoError(t, err)
	require.NotEmpty(t, got)
	assert.Equal(t, "001", got[0].Version)
}
