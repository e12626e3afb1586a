package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andrescamacho/bob-go/internal/adapters/xmlconfig"
	"github.com/andrescamacho/bob-go/internal/infrastructure/lockfile"
)

const testScene = `
trees:
  - name: Oak
  - name: Pine
props:
  - name: Bench
buildings:
  - name: Corner Shop
    slots:
      - { prefab: Oak, tree: true, position: [0, 0, 4] }
      - { prefab: Oak, tree: true, position: [4, 0, 4] }
      - { prefab: Bench, position: [2, 0, -3] }
`

// setupWorkspace writes a scene and a bob.yaml into a temp dir and returns
// the config path and the profile directory
func setupWorkspace(t *testing.T) (string, string) {
	t.Helper()
	dir := t.TempDir()
	scene := filepath.Join(dir, "scene.yaml")
	profiles := filepath.Join(dir, "profiles")
	require.NoError(t, os.WriteFile(scene, []byte(testScene), 0o644))

	cfg := "engine:\n" +
		"  scene_path: " + scene + "\n" +
		"  storage: xml\n" +
		"  document_dir: " + profiles + "\n" +
		"  profile: test\n" +
		"  lock_file: " + filepath.Join(dir, "bob.lock") + "\n" +
		"logging:\n" +
		"  level: error\n"
	cfgPath := filepath.Join(dir, "bob.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte(cfg), 0o644))
	return cfgPath, profiles
}

func run(t *testing.T, args ...string) error {
	t.Helper()
	cmd := NewRootCommand()
	cmd.SetArgs(args)
	return cmd.Execute()
}

func TestReplaceCommand_StoresProfile(t *testing.T) {
	// Arrange
	cfgPath, profiles := setupWorkspace(t)

	// Act
	err := run(t, "--config", cfgPath,
		"replace", "--tier", "grouped", "--parent", "Corner Shop",
		"--target", "tree:Oak", "--replacement", "tree:Pine")

	// Assert
	require.NoError(t, err)
	doc, err := xmlconfig.LoadFile(filepath.Join(profiles, "test.xml"))
	require.NoError(t, err)
	require.Len(t, doc.Buildings.Grouped, 1)
	assert.Equal(t, "Corner Shop", doc.Buildings.Grouped[0].Parent)
	require.Len(t, doc.Buildings.Grouped[0].Records, 1)
	assert.Equal(t, "Oak", doc.Buildings.Grouped[0].Records[0].Target)
	assert.Equal(t, "Pine", doc.Buildings.Grouped[0].Records[0].Replacement)
}

func TestResetCommand_ClearsStoredProfile(t *testing.T) {
	// Arrange
	cfgPath, profiles := setupWorkspace(t)
	require.NoError(t, run(t, "--config", cfgPath,
		"prop", "add", "--parent", "Corner Shop", "--prefab", "prop:Bench", "--position", "1,0,1"))

	// Act
	err := run(t, "--config", cfgPath, "reset")

	// Assert
	require.NoError(t, err)
	doc, err := xmlconfig.LoadFile(filepath.Join(profiles, "test.xml"))
	require.NoError(t, err)
	assert.Zero(t, doc.RecordCount())
}

func TestReplaceCommand_RejectsUnknownTier(t *testing.T) {
	cfgPath, _ := setupWorkspace(t)

	err := run(t, "--config", cfgPath,
		"replace", "--tier", "everything", "--target", "tree:Oak", "--replacement", "tree:Pine")

	assert.Error(t, err)
}

func TestWriteCommand_FailsWhileProfileIsLocked(t *testing.T) {
	// Arrange: the parent process stands in for another live bob
	cfgPath, profiles := setupWorkspace(t)
	lockPath := filepath.Join(filepath.Dir(cfgPath), "bob.lock")
	require.NoError(t, os.WriteFile(lockPath, []byte(fmt.Sprintf("%d\n", os.Getppid())), 0o644))

	// Act
	err := run(t, "--config", cfgPath,
		"replace", "--tier", "all", "--target", "tree:Oak", "--replacement", "tree:Pine")

	// Assert
	assert.True(t, errors.Is(err, lockfile.ErrLocked))
	_, statErr := os.Stat(filepath.Join(profiles, "test.xml"))
	assert.True(t, os.IsNotExist(statErr))
}
