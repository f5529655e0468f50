package output_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/restokit/internal/output"
)

func newPrinter(quiet bool) (*output.Printer, *bytes.Buffer, *bytes.Buffer) {
	var out, errOut bytes.Buffer
	p := output.NewPrinter(output.Options{Out: &out, Err: &errOut, ColorMode: output.ColorNever, Quiet: quiet})
	return p, &out, &errOut
}

func TestParseColorMode(t *testing.T) {
	t.Parallel()

	for in, want := range map[string]output.ColorMode{
		"auto":   output.ColorAuto,
		"":       output.ColorAuto,
		"always": output.ColorAlways,
		"NEVER":  output.ColorNever,
	} {
		got, err := output.ParseColorMode(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := output.ParseColorMode("rainbow")
	require.Error(t, err)
}

func TestPrinter(t *testing.T) {
	t.Parallel()

	t.Run("plain prefixes", func(t *testing.T) {
		t.Parallel()
		p, out, errOut := newPrinter(false)
		p.Success("logged in as %s", "ana@example.com")
		p.Info("page %d", 2)
		p.Warning("rate limit low")
		p.Error("boom")

		assert.Equal(t, "[OK] logged in as ana@example.com\npage 2\n", out.String())
		assert.Equal(t, "[WARN] rate limit low\n[ERROR] boom\n", errOut.String())
	})

	t.Run("quiet keeps errors and json", func(t *testing.T) {
		t.Parallel()
		p, out, errOut := newPrinter(true)
		p.Success("hidden")
		p.Header("hidden")
		p.Error("shown")
		require.NoError(t, p.JSON(map[string]int{"n": 1}))

		assert.JSONEq(t, `{"n":1}`, out.String())
		assert.Contains(t, errOut.String(), "shown")
	})

	t.Run("header and badge", func(t *testing.T) {
		t.Parallel()
		p, out, _ := newPrinter(false)
		p.Header("Status")
		assert.Equal(t, "\nStatus\n------\n", out.String())
		assert.Equal(t, "[ok]", p.StatusBadge("ok"))
		assert.Equal(t, "x", p.Bold("x"))
	})
}

func TestTable(t *testing.T) {
	t.Parallel()

	t.Run("renders rows", func(t *testing.T) {
		t.Parallel()
		p, out, _ := newPrinter(false)
		tbl := p.NewTable("ID", "NAME")
		tbl.AddRow("1", "Pizza Place")
		tbl.AddRow("2", "Sushi Bar")
		assert.Equal(t, 2, tbl.Len())
		require.NoError(t, tbl.Render())

		assert.Contains(t, out.String(), "Pizza Place")
		assert.Contains(t, out.String(), "Sushi Bar")
		assert.Contains(t, out.String(), "NAME")
	})

	t.Run("quiet renders nothing", func(t *testing.T) {
		t.Parallel()
		p, out, _ := newPrinter(true)
		tbl := p.NewTable("ID")
		tbl.AddRow("1")
		require.NoError(t, tbl.Render())
		assert.Empty(t, out.String())
	})
}
