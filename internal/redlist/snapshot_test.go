package redlist

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestEncodeSnapshotEmpty(t *testing.T) {
	var buff bytes.Buffer
	require.NoError(t, EncodeSnapshot(&buff, nil))
	require.Equal(t, "[]\n", buff.String())
}

func TestReadSnapshotMissing(t *testing.T) {
	_, err := ReadSnapshot(filepath.Join(t.TempDir(), "missing.json"))
	require.Error(t, err)
}
