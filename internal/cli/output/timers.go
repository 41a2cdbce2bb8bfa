package output

import (
	"fmt"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
)

// TimerRow is one line of the timer table.
type TimerRow struct {
	ID          string
	Description string
	Elapsed     time.Duration
	Active      bool
}

// RenderOptions tune RenderTimers.
type RenderOptions struct {
	// MarkStopped appends " (stopped)" to the task of stopped timers.
	MarkStopped bool
}

var cellStyle = lipgloss.NewStyle().Padding(0, 1)

// RenderTimers renders rows as an ID / Task / Time table.
func RenderTimers(rows []TimerRow, opts RenderOptions) string {
	data := make([][]string, 0, len(rows))
	for _, r := range rows {
		task := r.Description
		if opts.MarkStopped && !r.Active {
			task += " (stopped)"
		}
		data = append(data, []string{r.ID, task, FormatElapsed(r.Elapsed)})
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("ID", "Task", "Time").
		Rows(data...).
		StyleFunc(func(row, col int) lipgloss.Style {
			return cellStyle
		})
	return t.String()
}

// FormatElapsed formats d as HH:MM:SS. Hours are not capped at 24.
// Negative durations render as 00:00:00.
func FormatElapsed(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	total := int64(d / time.Second)
	return fmt.Sprintf("%02d:%02d:%02d", total/3600, total/60%60, total%60)
}
