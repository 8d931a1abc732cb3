// pkg/rules/textfile_test.go
package rules

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadRules(t *testing.T) {
	t.Run("parses tab-separated lines", func(t *testing.T) {
		input := "100\t100 Gold\tReward\nSliver\tSilver\n"

		parsed, err := ReadRules(strings.NewReader(input))
		require.NoError(t, err)
		require.Len(t, parsed, 2)

		assert.Equal(t, "Reward", parsed[0].Category)
		assert.Equal(t, "", parsed[1].Category)
		assert.True(t, parsed[0].Enabled)
	})

	t.Run("skips blanks and comments", func(t *testing.T) {
		input := "# game log corrections\n\n100\t100 Gold\n   \n# trailing comment\n"

		parsed, err := ReadRules(strings.NewReader(input))
		require.NoError(t, err)
		assert.Len(t, parsed, 1)
	})

	t.Run("drops duplicate entries", func(t *testing.T) {
		input := "100\t100 Gold\n100\t100 Gold\n100\t100 Gold\tReward\n"

		parsed, err := ReadRules(strings.NewReader(input))
		require.NoError(t, err)
		assert.Len(t, parsed, 2)
	})

	t.Run("trims surrounding whitespace", func(t *testing.T) {
		input := "  100 \t 100 Gold \n"

		parsed, err := ReadRules(strings.NewReader(input))
		require.NoError(t, err)
		require.Len(t, parsed, 1)
		assert.Equal(t, "100", parsed[0].FromValue)
		assert.Equal(t, "100 Gold", parsed[0].ToValue)
	})

	t.Run("rejects malformed lines", func(t *testing.T) {
		_, err := ReadRules(strings.NewReader("just-one-field\n"))
		assert.Error(t, err)

		_, err = ReadRules(strings.NewReader("a\tb\tc\td\n"))
		assert.Error(t, err)
	})
}

func TestWriteRules(t *testing.T) {
	store, _ := seedStore(t)

	listed, err := store.List(Filter{})
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, WriteRules(&buf, listed))

	reread, err := ReadRules(&buf)
	require.NoError(t, err)
	require.Len(t, reread, 3)
	assert.Equal(t, "100", reread[0].FromValue)
	assert.Equal(t, "Reward", reread[0].Category)
}

func TestLoadSaveRulesFile(t *testing.T) {
	store, _ := seedStore(t)
	path := filepath.Join(t.TempDir(), "rules.txt")

	require.NoError(t, SaveRulesFile(path, store))

	loaded, err := LoadRulesFile(path)
	require.NoError(t, err)
	assert.Equal(t, 3, loaded.Len())

	// Priority order survives the round trip.
	listed, err := loaded.List(Filter{})
	require.NoError(t, err)
	assert.Equal(t, "100", listed[0].FromValue)
	assert.Equal(t, "hp", listed[2].FromValue)

	_, err = LoadRulesFile(filepath.Join(t.TempDir(), "missing.txt"))
	assert.Error(t, err)
}
