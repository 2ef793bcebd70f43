package filelist_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/zolawuzhigang/Research-Agent/tools/filelist"
)

func TestExecuteListsDirectoryEntriesSorted(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "b.txt"), nil, 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.txt"), nil, 0o644))
	require.NoError(t, os.Mkdir(filepath.Join(dir, "sub"), 0o755))

	tool := filelist.New(dir)
	res, err := tool.Execute(context.Background(), "")
	require.NoError(t, err)
	require.Equal(t, "a.txt\nb.txt\nsub/", res.Result)
}

func TestExecuteRejectsEscapingPath(t *testing.T) {
	dir := t.TempDir()
	tool := filelist.New(dir)
	_, err := tool.Execute(context.Background(), "../../etc")
	require.Error(t, err)
}
