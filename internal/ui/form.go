package ui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"rekindle/internal/task"
)

// formState holds the task fields while they are being edited. editID is
// empty when the form adds a new task.
type formState struct {
	editID      string
	completed   bool
	title       string
	description string
	due         string
	priority    string
	frequency   string
	addedBy     string
	index       int
}

func formFields() []string {
	return []string{"title", "description", "due date (YYYY-MM-DD)", "priority (low/medium/high)", "frequency (once/daily/weekly/monthly)", "added by"}
}

func (fs formState) currentLabel() string {
	return formFields()[fs.index]
}

func (fs formState) currentValue() string {
	switch fs.index {
	case 0:
		return fs.title
	case 1:
		return fs.description
	case 2:
		return fs.due
	case 3:
		return fs.priority
	case 4:
		return fs.frequency
	case 5:
		return fs.addedBy
	default:
		return ""
	}
}

func (fs *formState) setCurrentValue(v string) {
	switch fs.index {
	case 0:
		fs.title = v
	case 1:
		fs.description = v
	case 2:
		fs.due = v
	case 3:
		fs.priority = v
	case 4:
		fs.frequency = v
	case 5:
		fs.addedBy = v
	}
}

func (fs formState) values() []string {
	return []string{fs.title, fs.description, fs.due, fs.priority, fs.frequency, fs.addedBy}
}

// toTask validates the form. The returned index points at the offending field.
func (fs formState) toTask() (task.Task, int, error) {
	t := task.Task{
		ID:          fs.editID,
		Completed:   fs.completed,
		Title:       strings.TrimSpace(fs.title),
		Description: strings.TrimSpace(fs.description),
		AddedBy:     strings.TrimSpace(fs.addedBy),
	}
	if t.Title == "" {
		return task.Task{}, 0, task.ErrInvalidTitle
	}
	d, err := task.ParseDate(fs.due)
	if err != nil {
		return task.Task{}, 2, err
	}
	t.DueDate = task.FormatDate(d)
	if t.Priority, err = task.ParsePriority(fs.priority); err != nil {
		return task.Task{}, 3, err
	}
	if t.Frequency, err = task.ParseFrequency(fs.frequency); err != nil {
		return task.Task{}, 4, err
	}
	return t, -1, nil
}

func (m Model) startAdd() (tea.Model, tea.Cmd) {
	m.form = &formState{
		due:       task.FormatDate(m.selected),
		priority:  string(task.PriorityMedium),
		frequency: string(task.FrequencyOnce),
		addedBy:   m.cfg.AddedBy,
	}
	m.mode = modeAdd
	m.input.SetValue(m.form.currentValue())
	m.input.Placeholder = m.form.currentLabel()
	m.input.Focus()
	m.status = m.formPrompt()
	return m, nil
}

func (m Model) startEdit(t task.Task) (tea.Model, tea.Cmd) {
	m.form = &formState{
		editID:      t.ID,
		completed:   t.Completed,
		title:       t.Title,
		description: t.Description,
		due:         t.DueDate,
		priority:    string(t.Priority),
		frequency:   string(t.Frequency),
		addedBy:     t.AddedBy,
	}
	m.mode = modeEdit
	m.input.SetValue(m.form.currentValue())
	m.input.Placeholder = m.form.currentLabel()
	m.input.Focus()
	m.status = m.formPrompt()
	return m, nil
}

func (m Model) updateFormMode(key string, msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch key {
	case m.cfg.Keys.Cancel, "esc":
		if m.form.editID != "" {
			m.status = "Edit cancelled"
		} else {
			m.status = "Add cancelled"
		}
		m.form = nil
		m.mode = modeCalendar
		m.input.SetValue("")
		m.input.Blur()
		return m, nil
	case "tab", "down":
		m.moveFormField(1)
		return m, nil
	case "shift+tab", "up":
		m.moveFormField(-1)
		return m, nil
	case m.cfg.Keys.Confirm, "enter":
		m.form.setCurrentValue(m.input.Value())
		if m.form.index >= len(formFields())-1 {
			return m.saveForm()
		}
		m.moveFormField(1)
		return m, nil
	default:
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}
}

func (m *Model) moveFormField(delta int) {
	m.form.setCurrentValue(m.input.Value())
	m.form.index = wrapIndex(m.form.index+delta, len(formFields()))
	m.input.SetValue(m.form.currentValue())
	m.input.Placeholder = m.form.currentLabel()
	m.status = m.formPrompt()
}

func (m Model) saveForm() (tea.Model, tea.Cmd) {
	t, field, err := m.form.toTask()
	if err != nil {
		m.form.index = field
		m.input.SetValue(m.form.currentValue())
		m.input.Placeholder = m.form.currentLabel()
		m.status = fmt.Sprintf("%s invalid: %v", m.form.currentLabel(), err)
		return m, nil
	}
	verb := "Added"
	saved := t
	if t.ID != "" {
		verb = "Updated"
		err = m.store.UpdateTask(t)
	} else {
		saved, err = m.store.AddTask(t)
	}
	if err != nil {
		m.log.Error("save task", "task_id", t.ID, "err", err)
		m.status = fmt.Sprintf("save failed: %v", err)
		return m, nil
	}
	m.form = nil
	m.mode = modeCalendar
	m.input.SetValue("")
	m.input.Blur()

	if anchor, ok := saved.Anchor(); ok {
		m.selected = anchor
	}
	if !m.reload() {
		return m, nil
	}
	for i, dt := range m.DayTasks() {
		if dt.ID == saved.ID {
			m.cursor = i
			break
		}
	}
	m.status = fmt.Sprintf("%s %q", verb, saved.Title)
	return m, nil
}

func (m Model) formPrompt() string {
	if m.form == nil {
		return ""
	}
	return fmt.Sprintf("Editing %s (field %d of %d). Enter to advance, Esc to cancel, tab to move.",
		m.form.currentLabel(), m.form.index+1, len(formFields()))
}

func wrapIndex(idx, n int) int {
	if n <= 0 {
		return 0
	}
	idx %= n
	if idx < 0 {
		idx += n
	}
	return idx
}
