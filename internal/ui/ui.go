package ui

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"rekindle/internal/config"
	"rekindle/internal/logging"
	"rekindle/internal/schedule"
	"rekindle/internal/task"
)

// Store is the persistence the calendar needs.
type Store interface {
	FetchTasks() ([]task.Task, error)
	AddTask(t task.Task) (task.Task, error)
	UpdateTask(t task.Task) error
	SetCompleted(id string, done bool) error
	DeleteTask(id string) error
}

type mode int

const (
	modeCalendar mode = iota
	modeSearch
	modeAdd
	modeEdit
)

type Model struct {
	store      Store
	cfg        config.Config
	horizon    schedule.Horizon
	log        *slog.Logger
	now        func() time.Time
	tasks      []task.Task
	selected   time.Time
	cursor     int
	mode       mode
	input      textinput.Model
	search     string
	status     string
	confirmDel bool
	pendingDel *task.Task
	form       *formState
}

func Run(store Store, cfg config.Config, logger *slog.Logger) error {
	m, err := NewModel(store, cfg, logger, time.Now)
	if err != nil {
		return err
	}
	program := tea.NewProgram(m)
	_, err = program.Run()
	return err
}

// NewModel loads the task snapshot and selects today's date.
func NewModel(store Store, cfg config.Config, logger *slog.Logger, now func() time.Time) (Model, error) {
	if logger == nil {
		logger = logging.Discard()
	}
	tasks, err := store.FetchTasks()
	if err != nil {
		return Model{}, err
	}

	ti := textinput.New()
	ti.CharLimit = 256
	ti.Width = 40

	return Model{
		store:    store,
		cfg:      cfg,
		horizon:  cfg.Horizon.Schedule(),
		log:      logger,
		now:      now,
		tasks:    tasks,
		selected: task.DateOf(now()),
		input:    ti,
		mode:     modeCalendar,
		status:   "Press 'a' to add, '/' to search, space to toggle, 'd' to delete.",
	}, nil
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.form != nil {
			return m.updateFormMode(msg.String(), msg)
		}
		if m.confirmDel {
			return m.updateDeleteConfirm(msg.String())
		}
		if m.mode == modeSearch {
			return m.updateSearchMode(msg.String(), msg)
		}
		return m.updateCalendarMode(msg.String())
	case tea.WindowSizeMsg:
		m.input.Width = msg.Width - 10
	}
	return m, nil
}

// DayTasks returns the tasks shown for the selected date.
func (m Model) DayTasks() []task.Task {
	return schedule.FilterTasksForDate(m.tasks, m.selected, m.search)
}

func (m Model) Selected() time.Time {
	return m.selected
}

func (m Model) Status() string {
	return m.status
}

func (m Model) updateCalendarMode(key string) (tea.Model, tea.Cmd) {
	k := m.cfg.Keys
	switch key {
	case "ctrl+c", k.Quit:
		return m, tea.Quit
	case k.Left, "left":
		m.moveDays(-1)
	case k.Right, "right":
		m.moveDays(1)
	case k.Up, "up":
		m.moveDays(-7)
	case k.Down, "down":
		m.moveDays(7)
	case k.PrevMonth:
		m.moveMonths(-1)
	case k.NextMonth:
		m.moveMonths(1)
	case k.Today:
		m.selected = task.DateOf(m.now())
		m.cursor = 0
	case k.NextTask, "tab":
		m.cursor = clampCursor(m.cursor+1, len(m.DayTasks()))
	case k.PrevTask, "shift+tab":
		m.cursor = clampCursor(m.cursor-1, len(m.DayTasks()))
	case k.Search:
		m.mode = modeSearch
		m.input.SetValue(m.search)
		m.input.Placeholder = "search title or description"
		m.input.Focus()
		m.status = "Search: type to filter, Enter to keep, Esc to clear"
	case k.Add:
		return m.startAdd()
	case k.Edit:
		day := m.DayTasks()
		if len(day) == 0 {
			m.status = "No task to edit"
			return m, nil
		}
		return m.startEdit(day[clampCursor(m.cursor, len(day))])
	case k.Toggle:
		day := m.DayTasks()
		if len(day) == 0 {
			return m, nil
		}
		t := day[clampCursor(m.cursor, len(day))]
		if err := m.store.SetCompleted(t.ID, !t.Completed); err != nil {
			m.log.Error("toggle task", "task_id", t.ID, "err", err)
			m.status = fmt.Sprintf("toggle failed: %v", err)
			return m, nil
		}
		if m.reload() {
			m.status = fmt.Sprintf("Marked %q %s", t.Title, humanDone(!t.Completed))
		}
	case k.Delete:
		day := m.DayTasks()
		if len(day) == 0 {
			return m, nil
		}
		t := day[clampCursor(m.cursor, len(day))]
		m.confirmDel = true
		m.pendingDel = &t
		if t.Frequency.Recurring() {
			m.status = fmt.Sprintf("Delete \"%s\" and all its %s repeats? y/n", t.Title, t.Frequency)
		} else {
			m.status = fmt.Sprintf("Delete \"%s\"? y/n", t.Title)
		}
	case k.Export:
		m.exportCalendar()
	}
	return m, nil
}

func (m *Model) moveDays(days int) {
	m.selected = m.selected.AddDate(0, 0, days)
	m.cursor = 0
}

// moveMonths keeps the day of month, clamped to the target month's length,
// so the 31st steps to the last day of a shorter month instead of past it.
func (m *Model) moveMonths(months int) {
	first := time.Date(m.selected.Year(), m.selected.Month()+time.Month(months), 1, 0, 0, 0, 0, time.UTC)
	m.selected = first.AddDate(0, 0, min(m.selected.Day(), daysIn(first))-1)
	m.cursor = 0
}

func daysIn(month time.Time) int {
	return time.Date(month.Year(), month.Month()+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// reload replaces the snapshot from the store; it reports false and sets the
// status line when the fetch fails.
func (m *Model) reload() bool {
	tasks, err := m.store.FetchTasks()
	if err != nil {
		m.log.Error("reload tasks", "err", err)
		m.status = fmt.Sprintf("reload failed: %v", err)
		return false
	}
	m.tasks = tasks
	m.cursor = clampCursor(m.cursor, len(m.DayTasks()))
	return true
}

func (m Model) updateSearchMode(key string, msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch key {
	case m.cfg.Keys.Cancel, "esc":
		m.search = ""
		m.input.SetValue("")
		m.input.Blur()
		m.mode = modeCalendar
		m.cursor = 0
		m.status = "Search cleared"
		return m, nil
	case m.cfg.Keys.Confirm, "enter":
		m.input.Blur()
		m.mode = modeCalendar
		if m.search == "" {
			m.status = "Search cleared"
		} else {
			m.status = fmt.Sprintf("Filtering by %q", m.search)
		}
		return m, nil
	default:
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		m.search = strings.TrimSpace(m.input.Value())
		m.cursor = 0
		return m, cmd
	}
}

func (m Model) updateDeleteConfirm(key string) (tea.Model, tea.Cmd) {
	switch key {
	case "n", "N", "esc":
		m.status = "Delete cancelled"
		m.confirmDel = false
		m.pendingDel = nil
		return m, nil
	case "y", "Y":
		if m.pendingDel == nil {
			m.status = "Nothing to delete"
			m.confirmDel = false
			return m, nil
		}
		title := m.pendingDel.Title
		if err := m.store.DeleteTask(m.pendingDel.ID); err != nil {
			m.log.Error("delete task", "task_id", m.pendingDel.ID, "err", err)
			m.status = fmt.Sprintf("delete failed: %v", err)
			m.confirmDel = false
			m.pendingDel = nil
			return m, nil
		}
		if m.reload() {
			m.status = fmt.Sprintf("Deleted %q", title)
		}
		m.confirmDel = false
		m.pendingDel = nil
		return m, nil
	default:
		return m, nil
	}
}

func (m *Model) exportCalendar() {
	out, err := schedule.BuildCalendarICS(m.tasks, m.now())
	if err != nil {
		m.status = fmt.Sprintf("export failed: %v", err)
		return
	}
	if err := os.WriteFile(m.cfg.ExportPath, []byte(out), 0o644); err != nil {
		m.log.Error("write calendar export", "path", m.cfg.ExportPath, "err", err)
		m.status = fmt.Sprintf("export failed: %v", err)
		return
	}
	m.log.Info("calendar exported", "path", m.cfg.ExportPath, "tasks", len(m.tasks))
	m.status = "Exported calendar to " + m.cfg.ExportPath
}

func clampCursor(cur, n int) int {
	if n <= 0 {
		return 0
	}
	if cur < 0 {
		return 0
	}
	if cur >= n {
		return n - 1
	}
	return cur
}

func humanDone(done bool) string {
	if done {
		return "done"
	}
	return "pending"
}
