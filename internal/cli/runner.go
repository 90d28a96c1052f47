package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/urfave/cli/v3"

	"github.com/Makepad-fr/tada/internal/config"
	"github.com/Makepad-fr/tada/internal/logging"
	"github.com/Makepad-fr/tada/internal/model"
	"github.com/Makepad-fr/tada/internal/store/jsonstore"
	"github.com/Makepad-fr/tada/internal/storage"
	"github.com/Makepad-fr/tada/internal/tasks"
	"github.com/Makepad-fr/tada/internal/ui"
	"github.com/Makepad-fr/tada/internal/view"
)

// Exit codes: 0 ok, 1 error, 2 usage.
const (
	ExitOK    = 0
	ExitError = 1
	ExitUsage = 2
)

type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string { return e.err.Error() }
func (e *exitError) Unwrap() error { return e.err }

func usageErr(format string, args ...any) error {
	return &exitError{code: ExitUsage, err: fmt.Errorf(format, args...)}
}

func runtimeErr(err error) error {
	return &exitError{code: ExitError, err: err}
}

// runner carries what every subcommand needs once the root flags are parsed.
type runner struct {
	stdout, stderr io.Writer

	cfg    *config.Config
	logger *log.Logger
	kv     storage.KV
}

// Run executes the command line and returns the process exit code.
func Run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	r := &runner{stdout: stdout, stderr: stderr}
	err := r.command().Run(ctx, args)
	r.close()
	if err == nil {
		return ExitOK
	}

	ui.Fail(stderr, err.Error())
	var ee *exitError
	if errors.As(err, &ee) {
		if errors.Is(err, ErrRefRequired) || strings.HasPrefix(err.Error(), "index out of range") {
			ui.Hint(stderr, "Hint: run `tada ls` to see valid indexes")
		}
		return ee.code
	}
	// flag parsing and unknown commands
	return ExitUsage
}

func (r *runner) command() *cli.Command {
	return &cli.Command{
		Name:      "tada",
		Usage:     "a tiny task list",
		Writer:    r.stdout,
		ErrWriter: r.stderr,
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "config", Aliases: []string{"c"}, Usage: "path to config file"},
			&cli.StringFlag{Name: "storage", Usage: "storage backend: file, sqlite or memory"},
			&cli.StringFlag{Name: "data", Usage: "path of the data file"},
			&cli.StringFlag{Name: "theme", Usage: "color theme: classic, neon or mono"},
			&cli.BoolFlag{Name: "debug", Usage: "enable debug logging"},
		},
		Before:         r.setup,
		ExitErrHandler: func(context.Context, *cli.Command, error) {},
		Action:         r.runUI,
		Commands: []*cli.Command{
			{
				Name:   "ui",
				Usage:  "Open the interactive list",
				Action: r.runUI,
			},
			{
				Name:      "add",
				Usage:     "Add a new task (text can be multiple words)",
				ArgsUsage: "<text...>",
				Action:    r.runAdd,
			},
			{
				Name:    "ls",
				Aliases: []string{"list"},
				Usage:   "List tasks",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "filter", Aliases: []string{"f"}, Value: "all", Usage: "all, active or done"},
					&cli.BoolFlag{Name: "group", Aliases: []string{"g"}, Usage: "group output by pending/done"},
				},
				Action: r.runList,
			},
			{
				Name:      "done",
				Usage:     "Mark a task completed",
				ArgsUsage: "<ref>",
				Action:    r.runToggle(true),
			},
			{
				Name:      "reopen",
				Usage:     "Mark a task active again",
				ArgsUsage: "<ref>",
				Action:    r.runToggle(false),
			},
			{
				Name:      "edit",
				Usage:     "Replace the text of a task (empty text deletes it)",
				ArgsUsage: "<ref> <text...>",
				Action:    r.runEdit,
			},
			{
				Name:      "rm",
				Usage:     "Delete a task",
				ArgsUsage: "<ref>",
				Action:    r.runRemove,
			},
			{
				Name:   "clear",
				Usage:  "Delete every completed task",
				Action: r.runClear,
			},
		},
	}
}

func (r *runner) setup(ctx context.Context, cmd *cli.Command) (context.Context, error) {
	cfg, err := config.Load(cmd.String("config"))
	if err != nil {
		return ctx, runtimeErr(err)
	}
	cfg.Apply(config.Overrides{
		Backend: cmd.String("storage"),
		Path:    cmd.String("data"),
		Theme:   cmd.String("theme"),
		Debug:   cmd.Bool("debug"),
	})
	r.cfg = cfg
	r.logger = logging.New(r.stderr, cfg.Log.Level)
	ui.SetTheme(cfg.UI.Theme)

	kv, err := storage.Open(cfg.Storage.Backend, cfg.Storage.Path)
	if err != nil {
		if errors.Is(err, storage.ErrUnknownBackend) {
			return ctx, usageErr("%v", err)
		}
		return ctx, runtimeErr(fmt.Errorf("open storage: %w", err))
	}
	r.kv = kv
	r.logger.Debug("storage ready", "backend", cfg.Storage.Backend, "path", cfg.Storage.Path)
	return ctx, nil
}

func (r *runner) close() {
	if r.kv == nil {
		return
	}
	if err := r.kv.Close(); err != nil {
		r.logger.Warn("close storage", "err", err)
	}
}

// store opens the task store; announcements go to stdout.
func (r *runner) store(logger *log.Logger, opts ...tasks.Option) *tasks.Store {
	p := jsonstore.New(r.kv, r.cfg.Storage.Key, logger)
	base := []tasks.Option{
		tasks.WithLogger(logger),
		tasks.WithAnnouncer(func(msg string) { ui.OK(r.stdout, msg) }),
	}
	return tasks.New(p, append(base, opts...)...)
}

// -------------- subcommand impls ----------------

func (r *runner) runUI(_ context.Context, cmd *cli.Command) error {
	if cmd.Args().Present() {
		return usageErr("unknown subcommand: %s", cmd.Args().First())
	}
	logger, closer, err := logging.OpenFile(r.cfg.Log.File, r.cfg.Log.Level)
	if err != nil {
		return runtimeErr(err)
	}
	defer closer.Close()

	app := ui.NewApp(ui.ThemeByName(r.cfg.UI.Theme), logger)
	s := tasks.New(jsonstore.New(r.kv, r.cfg.Storage.Key, logger),
		tasks.WithLogger(logger),
		tasks.WithRenderer(app.Render),
		tasks.WithAnnouncer(app.Announce),
	)
	app.Bind(s)
	if err := ui.Run(app); err != nil {
		return runtimeErr(fmt.Errorf("tui: %w", err))
	}
	return nil
}

func (r *runner) runAdd(_ context.Context, cmd *cli.Command) error {
	text := strings.TrimSpace(strings.Join(cmd.Args().Slice(), " "))
	if text == "" {
		return usageErr("usage: tada add <text...>")
	}
	r.store(r.logger).Add(text)
	return nil
}

func (r *runner) runToggle(done bool) cli.ActionFunc {
	return func(_ context.Context, cmd *cli.Command) error {
		if cmd.Args().Len() != 1 {
			return usageErr("usage: tada %s <ref>", cmd.Name)
		}
		s := r.store(r.logger)
		t, err := ResolveRef(s.Tasks(), cmd.Args().First())
		if err != nil {
			return &exitError{code: ExitUsage, err: err}
		}
		s.Toggle(t.ID, done)
		return nil
	}
}

func (r *runner) runEdit(_ context.Context, cmd *cli.Command) error {
	args := cmd.Args().Slice()
	if len(args) < 1 {
		return usageErr("usage: tada edit <ref> <text...>")
	}
	s := r.store(r.logger)
	t, err := ResolveRef(s.Tasks(), args[0])
	if err != nil {
		return &exitError{code: ExitUsage, err: err}
	}
	s.Edit(t.ID, strings.Join(args[1:], " "))
	return nil
}

func (r *runner) runRemove(_ context.Context, cmd *cli.Command) error {
	if cmd.Args().Len() != 1 {
		return usageErr("usage: tada rm <ref>")
	}
	s := r.store(r.logger)
	t, err := ResolveRef(s.Tasks(), cmd.Args().First())
	if err != nil {
		return &exitError{code: ExitUsage, err: err}
	}
	s.Remove(t.ID)
	return nil
}

func (r *runner) runClear(_ context.Context, _ *cli.Command) error {
	r.store(r.logger).ClearCompleted()
	return nil
}

func (r *runner) runList(_ context.Context, cmd *cli.Command) error {
	filter, err := model.ParseFilter(cmd.String("filter"))
	if err != nil {
		return usageErr("%v", err)
	}
	var frame view.View
	s := r.store(r.logger, tasks.WithRenderer(func(snap tasks.Snapshot) {
		frame = view.Build(snap.Tasks, snap.Filter)
	}))
	s.SetFilter(filter)

	all := s.Tasks()
	ui.Panel(r.stdout, listLines(frame, rowNumbers(all), cmd.Bool("group")))
	return nil
}

// -------------- rendering helpers --------------

func listLines(v view.View, rows map[string]int, group bool) []string {
	t := ui.Current()
	sum := v.Summary
	header := fmt.Sprintf("%s  %s %d  %s %d  %s %d",
		t.Title.Render("Todos"),
		t.Success.Render(t.SymDone), sum.Completed(),
		t.Pending.Render(t.SymPending), sum.Active,
		t.Accent.Render("Total"), sum.Total,
	)

	var lines []string
	lines = append(lines, header)
	lines = append(lines, t.Muted.Render(ui.ProgressBar(sum.Completed(), sum.Total, 28)))
	if v.Filter != model.FilterAll {
		lines = append(lines, t.Muted.Render("showing: "+v.Filter.Label()))
	}
	lines = append(lines, "")

	if group {
		lines = append(lines, groupLines(v.Items, rows)...)
	} else {
		lines = append(lines, flatLines(v.Items, rows)...)
	}
	lines = append(lines, "")
	lines = append(lines, t.Muted.Render(sum.String()))
	lines = append(lines, t.Muted.Render("Tip: add with `tada add \"Buy milk\"`"))
	return lines
}

func flatLines(items []view.Item, rows map[string]int) []string {
	t := ui.Current()
	if len(items) == 0 {
		return []string{t.Muted.Render("no items")}
	}
	out := make([]string, 0, len(items))
	for _, it := range items {
		idx := fmt.Sprintf("%2d.", rows[it.ID])
		text := it.Text
		if len([]rune(text)) > 80 {
			text = string([]rune(text)[:77]) + "..."
		}
		box := t.Muted.Render(t.BoxUnchecked)
		if it.Done {
			box, text = t.Success.Render(t.BoxChecked), t.DoneText.Render(text)
		}
		out = append(out, fmt.Sprintf("%s %s %s  %s",
			t.Muted.Render(idx), box, text, t.Muted.Render(shortID(it.ID))))
	}
	return out
}

func groupLines(items []view.Item, rows map[string]int) []string {
	t := ui.Current()
	var pend, done []view.Item
	for _, it := range items {
		if it.Done {
			done = append(done, it)
		} else {
			pend = append(pend, it)
		}
	}
	var lines []string
	lines = append(lines, t.Accent.Render("Pending"))
	if len(pend) == 0 {
		lines = append(lines, t.Muted.Render("(none)"))
	} else {
		lines = append(lines, flatLines(pend, rows)...)
	}
	lines = append(lines, "")
	lines = append(lines, t.Accent.Render("Done"))
	if len(done) == 0 {
		lines = append(lines, t.Muted.Render("(none)"))
	} else {
		lines = append(lines, flatLines(done, rows)...)
	}
	return lines
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
