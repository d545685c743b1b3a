package fputil

import (
	"io/fs"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestDirectorySize(t *testing.T) {
	path := t.TempDir()
	assert.Zero(t, DirectorySize(path))

	assert.NoError(t, os.WriteFile(filepath.Join(path, "foo"), []byte{'a'}, fs.FileMode(0644)))
	assert.NoError(t, os.Mkdir(filepath.Join(path, "sub"), fs.FileMode(0755)))
	assert.NoError(t, os.WriteFile(filepath.Join(path, "sub", "bar"), []byte("bc"), fs.FileMode(0644)))
	assert.EqualValues(t, 3, DirectorySize(path))

	assert.Zero(t, DirectorySize(filepath.Join(path, "missing")))
}

func TestDiskSize(t *testing.T) {
	all, used, err := DiskSize("/")
	assert.NoError(t, err)
	assert.GreaterOrEqual(t, all, used)
}

func TestIsWritableDir(t *testing.T) {
	dir := t.TempDir()
	assert.NoError(t, IsWritableDir(dir))
	_, err := os.Stat(filepath.Join(dir, touchFileName))
	assert.True(t, os.IsNotExist(err))

	assert.Error(t, IsWritableDir(filepath.Join(dir, "missing")))
}
