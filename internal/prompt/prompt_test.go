package prompt

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLinePrompter_Secret(t *testing.T) {
	t.Run("returns first trimmed line", func(t *testing.T) {
		p := &LinePrompter{In: strings.NewReader("  token-value \nignored\n")}

		got, err := p.Secret("Quay token: ")

		require.NoError(t, err)
		assert.Equal(t, "token-value", got)
	})

	t.Run("accepts input without newline", func(t *testing.T) {
		p := &LinePrompter{In: strings.NewReader("token-value")}

		got, err := p.Secret("Quay token: ")

		require.NoError(t, err)
		assert.Equal(t, "token-value", got)
	})

	t.Run("rejects empty input", func(t *testing.T) {
		p := &LinePrompter{In: strings.NewReader("\n")}

		_, err := p.Secret("Quay token: ")

		assert.ErrorIs(t, err, ErrEmpty)
	})
}

func TestNew(t *testing.T) {
	f, err := os.Create(filepath.Join(t.TempDir(), "input"))
	require.NoError(t, err)
	defer f.Close()

	assert.IsType(t, &LinePrompter{}, New(f))
}
