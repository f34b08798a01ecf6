package console

import (
	"bytes"
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DimchoMorkova/crypto-calculator-dimcho/internal/engine"
	"github.com/DimchoMorkova/crypto-calculator-dimcho/internal/journal"
	"github.com/DimchoMorkova/crypto-calculator-dimcho/internal/logger"
)

func newTestConsole(t *testing.T, j *journal.Journal) (*Console, *bytes.Buffer) {
	t.Helper()

	c := New(engine.New(nil, nil), j, logger.New("error"))
	out := &bytes.Buffer{}
	c.out = out
	c.clip = func(string) error { return nil }
	return c, out
}

func runScript(t *testing.T, c *Console, script string) {
	t.Helper()

	c.in = strings.NewReader(script)
	require.NoError(t, c.Run(context.Background()))
}

func TestConsoleSession(t *testing.T) {
	c, out := newTestConsole(t, nil)

	runScript(t, c, `risk 100
entry 50000
stop 49500
fee 0.06
margin 1000
quit
`)

	got := out.String()
	assert.Contains(t, got, "0.18867925")
	assert.Contains(t, got, "9433.96")
	assert.Contains(t, got, "9.4x")
	assert.Contains(t, got, "44950.00")
	assert.Contains(t, got, "safe")
	assert.Contains(t, got, "long")
}

func TestConsoleQuitOnEOF(t *testing.T) {
	c, _ := newTestConsole(t, nil)
	runScript(t, c, "risk 100\n")
}

func TestConsoleContextCancel(t *testing.T) {
	c, _ := newTestConsole(t, nil)
	c.in = strings.NewReader("")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.NoError(t, c.Run(ctx))
}

func TestConsoleLockFlow(t *testing.T) {
	c, out := newTestConsole(t, nil)

	runScript(t, c, `margin 1000
lock margin
margin 2000
unlock margin
margin 2000
quit
`)

	got := out.String()
	assert.Contains(t, got, "margin locked")
	assert.Contains(t, got, "field is locked")
	assert.Contains(t, got, "margin unlocked")
	assert.Contains(t, got, "2000")
}

func TestConsoleLeverage(t *testing.T) {
	c, out := newTestConsole(t, nil)

	runScript(t, c, `risk 100
entry 50000
stop 49500
fee 0.06
lev 10
lev 0
quit
`)

	got := out.String()
	assert.Contains(t, got, "943.40", "leverage override derives margin")
	assert.Contains(t, got, "10.0x")
	assert.Contains(t, got, "positive")
}

func TestConsoleRenderEmpty(t *testing.T) {
	c, _ := newTestConsole(t, nil)

	panel := c.Render()

	assert.Contains(t, panel, "Side:       -")
	assert.Contains(t, panel, "Liq. price: -")
	assert.Contains(t, panel, "Stop check: -")
	assert.Contains(t, panel, "0.00000000")
	assert.Contains(t, panel, "0.0x")
}

func TestConsoleRenderLockedMarker(t *testing.T) {
	c, _ := newTestConsole(t, nil)
	require.NoError(t, c.engine.SetField("margin", "1000"))
	_, err := c.engine.ToggleLock("margin")
	require.NoError(t, err)

	assert.Contains(t, c.Render(), "[locked]")
}

func TestConsoleUnsafeWarning(t *testing.T) {
	c, _ := newTestConsole(t, nil)

	// Stop below the liquidation price: almost no margin buffer.
	runScript(t, c, `risk 100
entry 50000
stop 49500
fee 0
margin 60
quit
`)

	assert.Contains(t, c.Render(), "UNSAFE")
}

func TestConsoleCopy(t *testing.T) {
	t.Run("CopiesRenderedPanel", func(t *testing.T) {
		c, out := newTestConsole(t, nil)
		var captured string
		c.clip = func(s string) error {
			captured = s
			return nil
		}

		runScript(t, c, "entry 50000\ncopy\nquit\n")

		assert.Contains(t, out.String(), "copied to clipboard")
		assert.Contains(t, captured, "Entry:")
		assert.Contains(t, captured, "50000")
	})

	t.Run("ReportsClipboardFailure", func(t *testing.T) {
		c, out := newTestConsole(t, nil)
		c.clip = func(string) error { return errors.New("no display") }

		runScript(t, c, "copy\nquit\n")

		assert.Contains(t, out.String(), "clipboard unavailable")
	})
}

func TestConsoleSaveAndHistory(t *testing.T) {
	j, err := journal.Open(filepath.Join(t.TempDir(), "journal.db"))
	require.NoError(t, err)
	defer func() { _ = j.Close() }()

	c, out := newTestConsole(t, j)

	runScript(t, c, `risk 100
entry 50000
stop 49500
fee 0.06
margin 1000
save btc long idea
history
quit
`)

	got := out.String()
	assert.Contains(t, got, "saved plan")
	assert.Contains(t, got, "entry 50000")
	assert.Contains(t, got, "liq 44950.00")
	assert.Contains(t, got, "btc long idea")

	n, err := j.Count()
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}

func TestConsoleHistoryBadCount(t *testing.T) {
	j, err := journal.Open(filepath.Join(t.TempDir(), "journal.db"))
	require.NoError(t, err)
	defer func() { _ = j.Close() }()

	c, out := newTestConsole(t, j)

	runScript(t, c, "history x\nquit\n")

	assert.Contains(t, out.String(), `bad count "x"`)
}

func TestConsoleJournalDisabled(t *testing.T) {
	c, out := newTestConsole(t, nil)

	runScript(t, c, "save\nhistory\nquit\n")

	assert.Equal(t, 2, strings.Count(out.String(), "journal disabled"))
}

func TestConsoleUnknownCommand(t *testing.T) {
	c, out := newTestConsole(t, nil)

	runScript(t, c, "frobnicate\nquit\n")

	assert.Contains(t, out.String(), `unknown command "frobnicate"`)
}

func TestConsoleHelp(t *testing.T) {
	c, out := newTestConsole(t, nil)

	runScript(t, c, "help\nquit\n")

	got := out.String()
	assert.Contains(t, got, "commands:")
	assert.Contains(t, got, "lev <x>")
}

func TestConsoleReset(t *testing.T) {
	c, out := newTestConsole(t, nil)

	runScript(t, c, `risk 100
entry 50000
stop 49500
fee 0.06
reset
show
quit
`)

	got := out.String()
	assert.Contains(t, got, "0.18867925", "sizing appears before the reset")

	c2, _ := newTestConsole(t, nil)
	runScript(t, c2, "risk 100\nentry 50000\nstop 49500\nreset\nquit\n")
	assert.Contains(t, c2.Render(), "Risk (USD): -")
}
