package get_flattened

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/walteh/liquidscope/pkg/cli"
	"github.com/walteh/liquidscope/pkg/config"
	"github.com/walteh/liquidscope/pkg/flatten"
)

func newOptions(t *testing.T, files map[string]string) *cli.Options {
	t.Helper()
	t.Setenv(config.EnvWorkspace, "")
	fs := afero.NewMemMapFs()
	for name, content := range files {
		require.NoError(t, afero.WriteFile(fs, name, []byte(content), 0o644))
	}
	return &cli.Options{Fs: fs, Dir: "/ws", LogOut: io.Discard}
}

func execute(t *testing.T, opts *cli.Options, args ...string) (string, error) {
	t.Helper()
	cmd := NewGetFlattenedCommand(opts)
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(io.Discard)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestGetFlattened(t *testing.T) {
	opts := newOptions(t, map[string]string{
		"/ws/reconciliation_texts/rt/main.liquid":         "a\n{% include \"parts/p\" %}\nb",
		"/ws/reconciliation_texts/rt/text_parts/p.liquid": "p",
	})

	out, err := execute(t, opts, "reconciliation_texts/rt/main.liquid")
	require.NoError(t, err)
	assert.Contains(t, out, "reconciliation_texts/rt/main.liquid:1-1")
	assert.Contains(t, out, "reconciliation_texts/rt/text_parts/p.liquid:1-1")
	assert.Contains(t, out, "reconciliation_texts/rt/main.liquid:3-3")
	assert.NotContains(t, out, "skipped")
}

func TestGetFlattenedStrict(t *testing.T) {
	opts := newOptions(t, map[string]string{
		"/ws/reconciliation_texts/rt/main.liquid": "a\n{% include \"parts/missing\" %}\nb",
	})

	out, err := execute(t, opts, "reconciliation_texts/rt/main.liquid")
	require.NoError(t, err)
	assert.Contains(t, out, `"parts/missing"`)

	_, err = execute(t, opts, "--strict", "reconciliation_texts/rt/main.liquid")
	require.ErrorIs(t, err, flatten.ErrMissingPart)
}

func TestGetFlattenedJSON(t *testing.T) {
	opts := newOptions(t, map[string]string{
		"/ws/reconciliation_texts/rt/main.liquid": "a\n{% include \"parts/missing\" %}",
	})
	opts.JSON = true

	out, err := execute(t, opts, "/ws/reconciliation_texts/rt/main.liquid")
	require.NoError(t, err)

	var got output
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	require.Len(t, got.Parts, 1)
	assert.Equal(t, "main", got.Parts[0].Name)
	require.Len(t, got.Skipped, 1)
	assert.Equal(t, "parts/missing", got.Skipped[0].IncludePath)
	assert.Equal(t, "not found", got.Skipped[0].Reason)
}
