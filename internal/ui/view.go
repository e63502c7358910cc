package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"rekindle/internal/config"
	"rekindle/internal/schedule"
	"rekindle/internal/task"
)

var (
	titleStyle    = lipgloss.NewStyle().Bold(true)
	weekdayStyle  = lipgloss.NewStyle().Faint(true)
	selectedStyle = lipgloss.NewStyle().Reverse(true)
	todayStyle    = lipgloss.NewStyle().Underline(true)
	panelStyle    = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	doneStyle     = lipgloss.NewStyle().Strikethrough(true).Faint(true)

	priorityColors = map[task.Priority]lipgloss.Color{
		task.PriorityHigh:   lipgloss.Color("9"),
		task.PriorityMedium: lipgloss.Color("11"),
		task.PriorityLow:    lipgloss.Color("10"),
	}
	infoColor = lipgloss.Color("12")
)

// priorityColor picks the highlight for a calendar cell's dominant priority.
func priorityColor(p task.Priority) lipgloss.Color {
	if c, ok := priorityColors[p]; ok {
		return c
	}
	return infoColor
}

func (m Model) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("ReKindle"))
	b.WriteString("\n\n")

	agg := schedule.BuildDateAggregate(m.tasks, m.horizon)
	cal := panelStyle.Render(m.renderMonth(agg))
	list := panelStyle.Render(m.renderDayPanel(agg))
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, cal, " ", list))
	b.WriteString("\n")

	switch {
	case m.form != nil:
		heading := "New task"
		if m.form.editID != "" {
			heading = "Edit task"
		}
		b.WriteString(heading + " (tab/shift+tab to move, enter to save/next, esc to cancel)\n\n")
		b.WriteString(m.renderFormBox())
		b.WriteString("\n")
		b.WriteString("Field: " + m.form.currentLabel())
		b.WriteString("\n")
		b.WriteString(m.input.View())
		b.WriteString("\n")
	case m.mode == modeSearch:
		b.WriteString("Search: ")
		b.WriteString(m.input.View())
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(m.status)
	b.WriteString("\n")
	b.WriteString(renderHelp(m.cfg.Keys))

	return b.String()
}

// renderMonth draws the month of the selected date, weeks starting on Sunday.
func (m Model) renderMonth(agg map[string]schedule.DateEntry) string {
	var b strings.Builder
	first := time.Date(m.selected.Year(), m.selected.Month(), 1, 0, 0, 0, 0, time.UTC)
	daysInMonth := first.AddDate(0, 1, -1).Day()
	today := task.DateOf(m.now())

	b.WriteString(titleStyle.Render(first.Format("January 2006")))
	b.WriteString("\n")
	b.WriteString(weekdayStyle.Render("Su  Mo  Tu  We  Th  Fr  Sa"))
	b.WriteString("\n")

	col := int(first.Weekday())
	b.WriteString(strings.Repeat("    ", col))
	for d := 1; d <= daysInMonth; d++ {
		date := first.AddDate(0, 0, d-1)
		b.WriteString(renderCell(date, agg, date.Equal(m.selected), date.Equal(today)))
		col++
		if col == 7 && d < daysInMonth {
			b.WriteString("\n")
			col = 0
		} else if d < daysInMonth {
			b.WriteString(" ")
		}
	}
	return b.String()
}

// renderCell draws a three-column day cell: the day number, then a marker
// showing how many tasks fall on it.
func renderCell(date time.Time, agg map[string]schedule.DateEntry, selected, today bool) string {
	label := fmt.Sprintf("%2d", date.Day())
	marker := " "

	style := lipgloss.NewStyle()
	if entry, ok := agg[task.FormatDate(date)]; ok {
		style = style.Foreground(priorityColor(entry.Dominant())).Bold(true)
		marker = countMarker(entry.Count)
	}
	if today {
		style = style.Inherit(todayStyle)
	}
	if selected {
		style = style.Inherit(selectedStyle)
	}
	return style.Render(label + marker)
}

func countMarker(n int) string {
	switch {
	case n <= 0:
		return " "
	case n < 10:
		return fmt.Sprintf("%d", n)
	default:
		return "+"
	}
}

func (m Model) renderDayPanel(agg map[string]schedule.DateEntry) string {
	var b strings.Builder
	b.WriteString(titleStyle.Render(m.selected.Format("Mon Jan 2, 2006")))
	if entry, ok := agg[task.FormatDate(m.selected)]; ok {
		if dom := entry.Dominant(); dom != "" {
			b.WriteString(lipgloss.NewStyle().Foreground(priorityColor(dom)).Render("  " + string(dom)))
		}
	}
	if m.search != "" {
		b.WriteString(fmt.Sprintf("  (search: %s)", m.search))
	}
	b.WriteString("\n\n")

	day := m.DayTasks()
	if len(day) == 0 {
		b.WriteString("No tasks for this day. Press '" + m.cfg.Keys.Add + "' to add one.")
		return b.String()
	}
	for i, t := range day {
		cursor := " "
		if i == m.cursor && m.mode == modeCalendar {
			cursor = ">"
		}
		checkbox := "[ ]"
		if t.Completed {
			checkbox = "[x]"
		}

		title := t.Title
		if t.Completed {
			title = doneStyle.Render(title)
		}
		extras := []string{lipgloss.NewStyle().Foreground(priorityColor(t.Priority)).Render(string(t.Priority))}
		if t.Frequency.Recurring() {
			extras = append(extras, string(t.Frequency)+" since "+t.DueDate)
		}
		if t.AddedBy != "" {
			extras = append(extras, "by "+t.AddedBy)
		}

		b.WriteString(fmt.Sprintf("%s %s %s [%s]", cursor, checkbox, title, strings.Join(extras, " | ")))
		b.WriteString("\n")
		if t.Description != "" && i == m.cursor {
			b.WriteString("      " + t.Description + "\n")
		}
	}
	return strings.TrimRight(b.String(), "\n")
}

func (m Model) renderFormBox() string {
	if m.form == nil {
		return ""
	}
	var b strings.Builder
	values := m.form.values()
	for i, name := range formFields() {
		prefix := " "
		if i == m.form.index {
			prefix = ">"
		}
		val := values[i]
		if strings.TrimSpace(val) == "" {
			val = "(empty)"
		}
		b.WriteString(fmt.Sprintf("%s %-38s : %s\n", prefix, name, val))
	}
	return b.String()
}

func renderHelp(k config.Keymap) string {
	return fmt.Sprintf("%s/%s day • %s/%s week • %s/%s month • %s today • %s/%s task • %s add • %s edit • %s search • %s toggle • %s delete • %s export • %s quit",
		k.Left, k.Right, k.Up, k.Down, k.PrevMonth, k.NextMonth, k.Today, k.NextTask, k.PrevTask, k.Add, k.Edit, k.Search, displayKey(k.Toggle), k.Delete, k.Export, k.Quit)
}

func displayKey(k string) string {
	if k == " " {
		return "space"
	}
	return k
}
