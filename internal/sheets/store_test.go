package sheets

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

var sampleGrid = [][]string{
	{"REFERÊNCIA", "Produto", "QtdEstoqueAtual"},
	{"Referência", "Nome do produto", "Estoque"},
	{"A1", "Parafuso, 10mm", "5"},
	{"B2", `Porca "sextavada"`, ""},
}

// exerciseStore runs the behavior every backend shares.
func exerciseStore(t *testing.T, s Store) {
	t.Helper()
	ctx := context.Background()

	_, err := s.ReadSheet(ctx, "Missing")
	require.ErrorIs(t, err, ErrSheetNotFound)

	require.NoError(t, s.WriteSheet(ctx, "EstoqueMestre", sampleGrid))
	got, err := s.ReadSheet(ctx, "EstoqueMestre")
	require.NoError(t, err)
	require.Equal(t, sampleGrid, got)

	// Full overwrite, including shrinking.
	smaller := sampleGrid[:3]
	require.NoError(t, s.WriteSheet(ctx, "EstoqueMestre", smaller))
	got, err = s.ReadSheet(ctx, "EstoqueMestre")
	require.NoError(t, err)
	require.Equal(t, smaller, got)

	// Sheets are independent.
	require.NoError(t, s.WriteSheet(ctx, "PlanilhaModelo", sampleGrid[:2]))
	got, err = s.ReadSheet(ctx, "EstoqueMestre")
	require.NoError(t, err)
	require.Len(t, got, 3)

	require.NoError(t, s.Close())
}

func TestMemory(t *testing.T) {
	exerciseStore(t, NewMemory(nil))
}

func TestMemory_CopiesGrids(t *testing.T) {
	ctx := context.Background()
	m := NewMemory(map[string][][]string{"S": {{"a"}, {"b"}}})

	got, err := m.ReadSheet(ctx, "S")
	require.NoError(t, err)
	got[0][0] = "changed"

	again, err := m.ReadSheet(ctx, "S")
	require.NoError(t, err)
	require.Equal(t, "a", again[0][0])
}

func TestDir(t *testing.T) {
	d, err := NewDir(filepath.Join(t.TempDir(), "sheets"))
	require.NoError(t, err)
	exerciseStore(t, d)
}

func TestDir_LeavesNoTempFiles(t *testing.T) {
	dir := t.TempDir()
	d, err := NewDir(dir)
	require.NoError(t, err)
	require.NoError(t, d.WriteSheet(context.Background(), "S", sampleGrid))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.Equal(t, "S.csv", entries[0].Name())
}

func TestDir_RejectsPathNames(t *testing.T) {
	d, err := NewDir(t.TempDir())
	require.NoError(t, err)

	for _, name := range []string{"", "../etc", `a\b`, ".."} {
		err := d.WriteSheet(context.Background(), name, sampleGrid)
		require.ErrorIs(t, err, ErrInvalidName, "name %q", name)
	}
}

func TestDir_CanceledContext(t *testing.T) {
	d, err := NewDir(t.TempDir())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err = d.WriteSheet(ctx, "S", sampleGrid)
	require.True(t, errors.Is(err, context.Canceled))
}

func TestSQLite(t *testing.T) {
	s, err := NewSQLite(context.Background(), filepath.Join(t.TempDir(), "stock.db"))
	require.NoError(t, err)
	exerciseStore(t, s)
}

func TestPostgres(t *testing.T) {
	url := os.Getenv("STOCKBOOK_TEST_DATABASE_URL")
	if url == "" {
		t.Skip("STOCKBOOK_TEST_DATABASE_URL not set")
	}
	ctx := context.Background()

	p, err := NewPostgres(ctx, url, PoolOptions{MaxConns: 2})
	require.NoError(t, err)
	t.Cleanup(func() {
		p.pool.Exec(ctx, `DELETE FROM sheet_grids WHERE name IN ('EstoqueMestre', 'PlanilhaModelo')`)
	})
	exerciseStore(t, p)
}

func TestPartialWriteError(t *testing.T) {
	cause := errors.New("quota exceeded")
	var err error = &PartialWriteError{Sheet: "EstoqueMestre", Err: cause}

	require.ErrorIs(t, err, cause)
	require.Contains(t, err.Error(), "partial write")
	require.Contains(t, err.Error(), "EstoqueMestre")
}
