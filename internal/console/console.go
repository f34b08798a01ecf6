// Package console is the interactive front end: a line-oriented prompt
// that edits calculator fields and renders the derived values after every
// accepted change.
package console

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/atotto/clipboard"

	"github.com/DimchoMorkova/crypto-calculator-dimcho/internal/engine"
	"github.com/DimchoMorkova/crypto-calculator-dimcho/internal/field"
	"github.com/DimchoMorkova/crypto-calculator-dimcho/internal/journal"
	"github.com/DimchoMorkova/crypto-calculator-dimcho/internal/logger"
	"github.com/DimchoMorkova/crypto-calculator-dimcho/internal/version"
)

const prompt = "calc> "

const helpText = `commands:
  risk <usd>      amount risked if the stop fills, e.g. risk 100
  entry <price>   planned entry price
  stop <price>    stop loss price
  fee <percent>   taker fee percent, e.g. fee 0.06
  margin <usd>    initial margin (collateral)
  lev <x>         set leverage, derives margin from notional
  lock <field>    protect a field from edits (risk/entry/stop/fee/margin)
  unlock <field>  remove the protection
  show            print the current state
  copy            copy the current state to the clipboard
  save [note]     save the current plan to the journal
  history [n]     list recent saved plans
  reset           clear every field and lock
  help            this text
  quit            leave

An empty value clears the field, e.g. "fee" alone.`

var fieldByAlias = map[string]field.Name{
	"risk":   field.RiskUSD,
	"entry":  field.EntryPrice,
	"stop":   field.StopLoss,
	"fee":    field.FeePercent,
	"margin": field.Margin,
}

// Console drives one engine over a reader/writer pair.
type Console struct {
	engine  *engine.Engine
	journal *journal.Journal // nil disables save and history
	log     *logger.Logger

	in   io.Reader
	out  io.Writer
	clip func(string) error
}

// New creates a console on stdin/stdout. The journal may be nil.
func New(e *engine.Engine, j *journal.Journal, log *logger.Logger) *Console {
	if log == nil {
		log = logger.Default()
	}
	return &Console{
		engine:  e,
		journal: j,
		log:     log,
		in:      os.Stdin,
		out:     os.Stdout,
		clip:    clipboard.WriteAll,
	}
}

// Run reads commands until quit, EOF or context cancellation.
func (c *Console) Run(ctx context.Context) error {
	fmt.Fprintf(c.out, "Crypto Position Calculator %s\n", version.Short())
	fmt.Fprintln(c.out, `Type "help" for commands.`)

	lines := make(chan string)
	scanErr := make(chan error, 1)
	go func() {
		scanner := bufio.NewScanner(c.in)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
		scanErr <- scanner.Err()
		close(lines)
	}()

	for {
		fmt.Fprint(c.out, prompt)
		select {
		case <-ctx.Done():
			fmt.Fprintln(c.out)
			return nil
		case line, ok := <-lines:
			if !ok {
				fmt.Fprintln(c.out)
				return <-scanErr
			}
			if c.dispatch(strings.TrimSpace(line)) {
				return nil
			}
		}
	}
}

// dispatch runs one command line, reporting whether the loop should end.
func (c *Console) dispatch(line string) bool {
	if line == "" {
		return false
	}

	cmd, rest, _ := strings.Cut(line, " ")
	cmd = strings.ToLower(cmd)
	rest = strings.TrimSpace(rest)

	switch cmd {
	case "risk", "entry", "stop", "fee", "margin":
		c.setField(fieldByAlias[cmd], rest)
	case "lev", "leverage":
		c.setLeverage(rest)
	case "lock":
		c.setLock(rest, true)
	case "unlock":
		c.setLock(rest, false)
	case "show":
		fmt.Fprint(c.out, c.Render())
	case "copy":
		c.copy()
	case "save":
		c.save(rest)
	case "history":
		c.history(rest)
	case "reset":
		c.engine.Reset()
		fmt.Fprint(c.out, c.Render())
	case "help", "?":
		fmt.Fprintln(c.out, helpText)
	case "quit", "exit", "q":
		return true
	default:
		fmt.Fprintf(c.out, "unknown command %q, try help\n", cmd)
	}
	return false
}

func (c *Console) setField(name field.Name, raw string) {
	if err := c.engine.SetField(name, raw); err != nil {
		fmt.Fprintln(c.out, err)
		return
	}
	fmt.Fprint(c.out, c.Render())
}

func (c *Console) setLeverage(raw string) {
	if err := c.engine.SetLeverage(raw); err != nil {
		fmt.Fprintln(c.out, err)
		return
	}
	fmt.Fprint(c.out, c.Render())
}

func (c *Console) setLock(arg string, want bool) {
	name, ok := fieldByAlias[arg]
	if !ok {
		fmt.Fprintf(c.out, "unknown field %q\n", arg)
		return
	}

	if c.engine.Locked(name) != want {
		if _, err := c.engine.ToggleLock(name); err != nil {
			fmt.Fprintln(c.out, err)
			return
		}
	}

	state := "unlocked"
	if want {
		state = "locked"
	}
	fmt.Fprintf(c.out, "%s %s\n", arg, state)
}

// Render formats the full calculator state as a text panel.
func (c *Console) Render() string {
	snap := c.engine.Snapshot()

	side := "-"
	if s, ok := c.engine.Side(); ok {
		side = s.String()
	}

	var b strings.Builder
	row := func(label, value string) {
		fmt.Fprintf(&b, "  %-12s%s\n", label, value)
	}

	row("Side:", side)
	row("Risk (USD):", inputCell(snap, field.RiskUSD, snap.RiskUSD))
	row("Entry:", inputCell(snap, field.EntryPrice, snap.EntryPrice))
	row("Stop:", inputCell(snap, field.StopLoss, snap.StopLoss))
	row("Fee (%):", inputCell(snap, field.FeePercent, snap.FeePercent))
	row("Margin:", inputCell(snap, field.Margin, snap.Margin))
	b.WriteString("  ------------\n")
	row("Size:", snap.Size)
	row("Notional:", snap.Notional)
	row("Leverage:", snap.Leverage)
	row("Liq. price:", orDash(snap.LiquidationPrice))
	row("Stop check:", stopCheck(snap.Safe))

	return b.String()
}

// inputCell renders one input field with its lock marker.
func inputCell(snap field.Snapshot, name field.Name, raw string) string {
	v := orDash(raw)
	if snap.Locked[name] {
		v += "  [locked]"
	}
	return v
}

func (c *Console) copy() {
	if err := c.clip(c.Render()); err != nil {
		c.log.Warn("clipboard write failed", "error", err)
		fmt.Fprintln(c.out, "clipboard unavailable")
		return
	}
	fmt.Fprintln(c.out, "copied to clipboard")
}

func (c *Console) save(note string) {
	if c.journal == nil {
		fmt.Fprintln(c.out, "journal disabled")
		return
	}

	side := ""
	if s, ok := c.engine.Side(); ok {
		side = s.String()
	}

	p := journal.NewPlan(c.engine.Snapshot(), side, note)
	if err := c.journal.Save(p); err != nil {
		c.log.Error("save plan failed", "error", err)
		fmt.Fprintln(c.out, "save failed")
		return
	}

	fmt.Fprintf(c.out, "saved %s\n", p.ID)
}

func (c *Console) history(arg string) {
	if c.journal == nil {
		fmt.Fprintln(c.out, "journal disabled")
		return
	}

	limit := 10
	if arg != "" {
		n, err := strconv.Atoi(arg)
		if err != nil || n <= 0 {
			fmt.Fprintf(c.out, "bad count %q\n", arg)
			return
		}
		limit = n
	}

	plans, err := c.journal.Recent(limit)
	if err != nil {
		c.log.Error("load history failed", "error", err)
		fmt.Fprintln(c.out, "history unavailable")
		return
	}
	if len(plans) == 0 {
		fmt.Fprintln(c.out, "no saved plans")
		return
	}

	for _, p := range plans {
		line := fmt.Sprintf("%s  %-6s entry %-10s liq %-10s lev %-7s %s",
			p.CreatedAt.Format("2006-01-02 15:04"),
			orDash(p.Side), orDash(p.EntryPrice), orDash(p.LiquidationPrice),
			p.Leverage, orDash(p.Verdict))
		if p.Note != "" {
			line += "  " + p.Note
		}
		fmt.Fprintln(c.out, line)
	}
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func stopCheck(safe field.NullBool) string {
	switch {
	case !safe.Valid:
		return "-"
	case safe.Bool:
		return "safe"
	default:
		return "UNSAFE (stop past liquidation)"
	}
}
