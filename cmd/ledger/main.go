package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/alecthomas/kingpin"

	"liquiplanner/internal/cli"
	"liquiplanner/internal/config"
	"liquiplanner/internal/core"
	"liquiplanner/internal/export"
	"liquiplanner/internal/format"
	"liquiplanner/internal/ledger"
	applog "liquiplanner/internal/log"
	"liquiplanner/internal/tui"
)

func main() {
	cli.LoadEnvFile()
	cfg, err := config.Load()
	if err == nil {
		err = cfg.Validate()
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	ctx, stop := cli.GracefulShutdown(newLogger(cfg, io.Discard))
	defer stop()

	if err := run(ctx, cfg, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintln(os.Stderr, "ledger:", err)
		os.Exit(1)
	}
}

func newLogger(cfg *config.Config, w io.Writer) *applog.Logger {
	return applog.New(applog.Config{
		Level:  slog.LevelWarn,
		Format: cfg.LogFormat,
		Output: w,
	})
}

type commands struct {
	app *kingpin.Application

	list *kingpin.CmdClause

	add         *kingpin.CmdClause
	title       *string
	amount      *string
	kind        *string
	date        *string
	interactive *bool

	remove   *kingpin.CmdClause
	removeID *string

	exportXLSX *kingpin.CmdClause
	out        *string

	exportSheets *kingpin.CmdClause
}

func newCommands(stderr io.Writer) *commands {
	c := &commands{app: kingpin.New("ledger", "Liqui-Planner household ledger on the command line.")}
	c.app.UsageWriter(stderr)
	c.app.ErrorWriter(stderr)
	c.app.Terminate(nil)

	c.list = c.app.Command("list", "Show the month lists and the overall balance.").Default()

	c.add = c.app.Command("add", "Add an income or expense.")
	c.title = c.add.Flag("title", "Title of the entry.").Short('t').String()
	c.amount = c.add.Flag("amount", "Amount in euros, e.g. 950 or 12,50.").Short('a').String()
	c.kind = c.add.Flag("kind", "income or expense (einnahme, ausgabe).").Short('k').Default("expense").String()
	c.date = c.add.Flag("date", "Date as DD.MM.YYYY or YYYY-MM-DD, default today.").Short('d').String()
	c.interactive = c.add.Flag("interactive", "Ask for the entry with a form.").Short('i').Bool()

	c.remove = c.app.Command("remove", "Remove an entry by id.")
	c.removeID = c.remove.Arg("id", "Entry id as shown by list.").Required().String()

	exp := c.app.Command("export", "Export the ledger.")
	c.exportXLSX = exp.Command("xlsx", "Write an XLSX workbook.")
	c.out = c.exportXLSX.Flag("out", "Output file.").Short('o').Default("liquiplanner.xlsx").String()
	c.exportSheets = exp.Command("sheets", "Rewrite the configured Google sheet.")
	return c
}

func run(ctx context.Context, cfg *config.Config, args []string, stdout, stderr io.Writer) error {
	c := newCommands(stderr)
	cmd, err := c.app.Parse(args)
	if err != nil {
		return err
	}

	logger := newLogger(cfg, stderr)
	open := cli.ViewLedger
	if cmd == c.add.FullCommand() || cmd == c.remove.FullCommand() {
		open = cli.OpenLedger
	}
	l, backend, err := open(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer backend.Close()

	switch cmd {
	case c.list.FullCommand():
		return tui.Render(stdout, snapshotSummary(l))

	case c.add.FullCommand():
		in, err := c.entryInput(time.Now())
		if err != nil {
			return err
		}
		e, err := l.AddEntry(ctx, in)
		if err != nil && !errors.Is(err, ledger.ErrPersist) {
			return describe(err)
		}
		fmt.Fprintf(stdout, "%s %s %s %s (id %s)\n",
			format.KindLabel(e.Kind), e.Title, format.Signed(e), format.Date(e.Date), e.ID)
		return err

	case c.remove.FullCommand():
		before := len(l.Entries())
		if err := l.RemoveEntryString(ctx, *c.removeID); err != nil {
			return err
		}
		if len(l.Entries()) == before {
			fmt.Fprintf(stdout, "Kein Eintrag mit id %s.\n", *c.removeID)
			return nil
		}
		fmt.Fprintf(stdout, "Eintrag %s entfernt.\n", *c.removeID)
		return nil

	case c.exportXLSX.FullCommand():
		data, err := export.WorkbookXLSX(snapshotSummary(l))
		if err != nil {
			return err
		}
		if err := os.WriteFile(*c.out, data, 0o644); err != nil {
			return fmt.Errorf("write %s: %w", *c.out, err)
		}
		fmt.Fprintf(stdout, "%s geschrieben.\n", *c.out)
		return nil

	case c.exportSheets.FullCommand():
		if !cfg.SheetsEnabled() {
			return errors.New("GOOGLE_SPREADSHEET_ID is not set")
		}
		w, err := cli.SheetsWriter(ctx, cfg, logger)
		if err != nil {
			return err
		}
		exp := export.NewSheetsExporter(w, cfg.GoogleSheetName)
		if err := exp.Export(ctx, snapshotSummary(l)); err != nil {
			return err
		}
		fmt.Fprintf(stdout, "Tabelle %s aktualisiert.\n", exp.Sheet())
		return nil
	}
	return fmt.Errorf("unknown command %q", cmd)
}

func (c *commands) entryInput(now time.Time) (ledger.EntryInput, error) {
	if *c.interactive {
		return tui.AskEntry(now)
	}
	v := tui.NewEntryValues(now)
	v.Title = *c.title
	v.Amount = *c.amount
	v.Kind = *c.kind
	if *c.date != "" {
		v.Date = *c.date
	}
	return v.Input(), nil
}

func snapshotSummary(l *ledger.Ledger) core.Summary {
	s := l.Snapshot()
	return core.Summary{Groups: s.Groups, Totals: s.Totals}
}

// describe turns a validation error into the same message the web form shows.
func describe(err error) error {
	ve, ok := core.AsValidationError(err)
	if !ok {
		return err
	}
	msg := "Folgende Felder wurden nicht korrekt ausgefüllt:"
	for _, label := range format.FieldLabels(ve.Fields) {
		msg += " " + label
	}
	return errors.New(msg)
}
