package roster

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "drivers.csv")
	err := os.WriteFile(path, []byte(
		"Jane Racer,12345\n"+
			"malformed line\n"+
			"\n"+
			"John Doe, 67890\n",
	), 0600)
	require.NoError(t, err)

	drivers, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, []Driver{
		{DisplayName: "Jane Racer", ExternalID: "12345"},
		{DisplayName: "John Doe", ExternalID: "67890"},
	}, drivers)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.csv"))
	require.Error(t, err)
}
