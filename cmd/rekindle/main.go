package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"rekindle/internal/config"
	"rekindle/internal/logging"
	"rekindle/internal/schedule"
	"rekindle/internal/storage"
	"rekindle/internal/task"
	"rekindle/internal/ui"
)

const usage = `usage: rekindle [command]

commands:
  run                         open the calendar (default)
  import <file.json>          import task records exported as a JSON array
  agenda [-date D] [-q term]  print the tasks active on a date (default today)
  export [-o file]            write all tasks as an iCalendar file
`

func main() {
	if err := run(os.Args[1:], os.Stdout, time.Now); err != nil {
		fmt.Fprintf(os.Stderr, "rekindle: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string, stdout io.Writer, now func() time.Time) error {
	cmd := "run"
	if len(args) > 0 {
		cmd, args = args[0], args[1:]
	}
	switch cmd {
	case "run", "import", "agenda", "export":
	case "help", "-h", "--help":
		fmt.Fprint(stdout, usage)
		return nil
	default:
		return fmt.Errorf("unknown command %q\n%s", cmd, usage)
	}

	if err := config.LoadEnv(); err != nil {
		return fmt.Errorf("load .env: %w", err)
	}
	configPath := config.ResolveConfigPath()
	cfg, err := config.LoadOrCreate(configPath)
	if err != nil {
		return fmt.Errorf("load config %s: %w", configPath, err)
	}

	logger, closer, err := logging.OpenFile(cfg.LogPath, cfg.LogLevel)
	if err != nil {
		return fmt.Errorf("open log: %w", err)
	}
	defer closer.Close()
	slog.SetDefault(logger)

	store, err := storage.Open(cfg.DBPath, logger)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer store.Close()

	logger.Debug("starting", "command", cmd, "config", configPath, "db", cfg.DBPath)

	switch cmd {
	case "run":
		return ui.Run(store, cfg, logger)
	case "import":
		return runImport(store, args, stdout)
	case "agenda":
		return runAgenda(store, args, stdout, now)
	default:
		return runExport(store, cfg, args, stdout, now)
	}
}

func runImport(store *storage.Store, args []string, stdout io.Writer) error {
	if len(args) != 1 {
		return errors.New("import needs exactly one file")
	}
	f, err := os.Open(args[0])
	if err != nil {
		return err
	}
	defer f.Close()

	res, err := store.ImportJSON(f)
	if err != nil {
		return err
	}
	for _, rej := range res.Rejected {
		fmt.Fprintf(stdout, "skipped %v\n", rej)
	}
	fmt.Fprintf(stdout, "imported %d task(s), skipped %d\n", len(res.Imported), len(res.Rejected))
	return nil
}

func runAgenda(store *storage.Store, args []string, stdout io.Writer, now func() time.Time) error {
	fs := flag.NewFlagSet("agenda", flag.ContinueOnError)
	fs.SetOutput(stdout)
	dateFlag := fs.String("date", "", "date to show (YYYY-MM-DD, default today)")
	term := fs.String("q", "", "only tasks whose title or description contains this")
	if err := fs.Parse(args); err != nil {
		return err
	}

	day := task.DateOf(now())
	if *dateFlag != "" {
		d, err := task.ParseDate(*dateFlag)
		if err != nil {
			return fmt.Errorf("-date %q: %w", *dateFlag, err)
		}
		day = d
	}

	tasks, err := store.FetchTasks()
	if err != nil {
		return err
	}
	fmt.Fprintln(stdout, day.Format("Monday, January 2, 2006"))
	active := schedule.FilterTasksForDate(tasks, day, *term)
	if len(active) == 0 {
		fmt.Fprintln(stdout, "  nothing scheduled")
		return nil
	}
	for _, t := range active {
		check := "[ ]"
		if t.Completed {
			check = "[x]"
		}
		line := fmt.Sprintf("  %s %-6s %s", check, t.Priority, t.Title)
		var extras []string
		if t.Frequency.Recurring() {
			extras = append(extras, string(t.Frequency))
		}
		if t.AddedBy != "" {
			extras = append(extras, "by "+t.AddedBy)
		}
		if len(extras) > 0 {
			line += " (" + strings.Join(extras, ", ") + ")"
		}
		fmt.Fprintln(stdout, line)
	}
	return nil
}

func runExport(store *storage.Store, cfg config.Config, args []string, stdout io.Writer, now func() time.Time) error {
	fs := flag.NewFlagSet("export", flag.ContinueOnError)
	fs.SetOutput(stdout)
	out := fs.String("o", cfg.ExportPath, "output file")
	if err := fs.Parse(args); err != nil {
		return err
	}

	tasks, err := store.FetchTasks()
	if err != nil {
		return err
	}
	ics, err := schedule.BuildCalendarICS(tasks, now())
	if err != nil {
		return err
	}
	if err := os.WriteFile(*out, []byte(ics), 0o644); err != nil {
		return err
	}
	fmt.Fprintf(stdout, "wrote %d task(s) to %s\n", len(tasks), *out)
	return nil
}
