package ui

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"
)

// ConfirmChange displays a box describing a controller change and asks the
// user to answer y/N. Returns true only for "y" or "yes".
func ConfirmChange(in io.Reader, out io.Writer, title string, lines []string) bool {
	width := GetTerminalWidth()

	var content []string

	titleLine := lipgloss.NewStyle().
		Foreground(WarningColor).
		Bold(true).
		Render(fmt.Sprintf("   %s  CONFIRM  ─  %s", WarningMarker, title))
	content = append(content, "", titleLine, "")

	bulletStyle := lipgloss.NewStyle().Foreground(TextColor)
	for _, line := range lines {
		content = append(content, bulletStyle.Render("   • "+line))
	}
	content = append(content, "")

	box := lipgloss.NewStyle().
		Border(lipgloss.DoubleBorder()).
		BorderForeground(WarningColor).
		Width(width-2).
		Padding(0, 2).
		Render(strings.Join(content, "\n"))

	_, _ = fmt.Fprintln(out, box)
	_, _ = fmt.Fprintln(out)

	promptStyle := lipgloss.NewStyle().
		Foreground(WarningColor).
		Bold(true)
	_, _ = fmt.Fprint(out, promptStyle.Render("Apply this change? [y/N]: "))

	ok := readYes(in)
	_, _ = fmt.Fprintln(out)
	if !ok {
		cancelStyle := lipgloss.NewStyle().Foreground(MutedColor)
		_, _ = fmt.Fprintln(out, cancelStyle.Render("  Operation cancelled."))
	}
	return ok
}

func readYes(in io.Reader) bool {
	reader := bufio.NewReader(in)
	input, err := reader.ReadString('\n')
	if err != nil && input == "" {
		return false
	}
	switch strings.ToLower(strings.TrimSpace(input)) {
	case "y", "yes":
		return true
	default:
		return false
	}
}

// ReadPassword prompts for a password on the terminal without echo.
// It fails when stdin is not a terminal.
func ReadPassword(prompt string) (string, error) {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return "", fmt.Errorf("cannot prompt for password: stdin is not a terminal")
	}

	_, _ = fmt.Fprint(os.Stderr, prompt)
	password, err := term.ReadPassword(fd)
	_, _ = fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", fmt.Errorf("failed to read password: %w", err)
	}
	return string(password), nil
}
