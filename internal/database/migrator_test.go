package database

import (
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lab-backend/internal/database/migrations"
)

func TestPendingOrdersAndSkipsApplied(t *testing.T) {
	files := fstest.MapFS{
		"010_later.sql":  {Data: []byte("SELECT 1")},
		"002_second.sql": {Data: []byte("SELECT 1")},
		"001_first.sql":  {Data: []byte("SELECT 1")},
		"README.md":      {Data: []byte("notes")},
		"old/003.sql":    {Data: []byte("SELECT 1")},
	}

	pending, err := Pending(files, map[string]bool{"002_second.sql": true})
	require.NoError(t, err)
	assert.Equal(t, []string{"001_first.sql", "010_later.sql"}, pending)
}

func TestEmbeddedMigrationsCreateSchema(t *testing.T) {
	pending, err := Pending(migrations.FS, nil)
	require.NoError(t, err)
	require.Equal(t, []string{"001_materiais.sql", "002_equipamentos.sql"}, pending)

	first, err := migrations.FS.ReadFile("001_materiais.sql")
	require.NoError(t, err)
	assert.Contains(t, string(first), "CREATE TABLE IF NOT EXISTS materiais")
	assert.Contains(t, string(first), "CREATE TABLE IF NOT EXISTS movimentacoes")

	second, err := migrations.FS.ReadFile("002_equipamentos.sql")
	require.NoError(t, err)
	assert.Contains(t, string(second), "REFERENCES equipamentos(id) ON DELETE CASCADE")
}
