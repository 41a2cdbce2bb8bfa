package output

import "github.com/charmbracelet/lipgloss"

var (
	exampleStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
)

// Hint returns a usage hint followed by a highlighted example command.
func Hint(message, example string) string {
	return message + "\n" + exampleStyle.Render(example)
}

// Error highlights an error message.
func Error(message string) string {
	return errorStyle.Render(message)
}
