// Package console implements the line-oriented terminal dialog used by the
// menu and the resume collector. Input and output are injected so that the
// whole interaction can be scripted in tests.
package console

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// ErrClosed is returned when the input stream ends before an answer is read.
var ErrClosed = errors.New("input closed")

// Console reads answers from an input stream and writes styled output.
type Console struct {
	in  *bufio.Reader
	out io.Writer

	heading lipgloss.Style
	success lipgloss.Style
	warning lipgloss.Style
	failure lipgloss.Style
	label   lipgloss.Style
	accent  lipgloss.Style
	banner  lipgloss.Style
}

// New creates a Console. Colors are only emitted when out is a terminal.
func New(in io.Reader, out io.Writer) *Console {
	r := lipgloss.NewRenderer(out)
	return &Console{
		in:      bufio.NewReader(in),
		out:     out,
		heading: r.NewStyle().Bold(true).Foreground(lipgloss.Color("14")),
		success: r.NewStyle().Foreground(lipgloss.Color("10")),
		warning: r.NewStyle().Foreground(lipgloss.Color("11")),
		failure: r.NewStyle().Foreground(lipgloss.Color("9")),
		label:   r.NewStyle().Bold(true).Foreground(lipgloss.Color("12")),
		accent:  r.NewStyle().Bold(true).Foreground(lipgloss.Color("11")),
		banner:  r.NewStyle().Bold(true).Foreground(lipgloss.Color("13")),
	}
}

// Writer returns the underlying output sink.
func (c *Console) Writer() io.Writer {
	return c.out
}

// Println writes an unstyled line.
func (c *Console) Println(a ...any) {
	fmt.Fprintln(c.out, a...)
}

// Printf writes unstyled formatted text.
func (c *Console) Printf(format string, a ...any) {
	fmt.Fprintf(c.out, format, a...)
}

// Heading prints a section title.
func (c *Console) Heading(s string) {
	fmt.Fprintln(c.out, c.heading.Render(s))
}

// Success prints a confirmation line.
func (c *Console) Success(format string, a ...any) {
	fmt.Fprintln(c.out, c.success.Render(fmt.Sprintf(format, a...)))
}

// Warn prints a warning line.
func (c *Console) Warn(format string, a ...any) {
	fmt.Fprintln(c.out, c.warning.Render(fmt.Sprintf(format, a...)))
}

// Error prints an error line.
func (c *Console) Error(format string, a ...any) {
	fmt.Fprintln(c.out, c.failure.Render(fmt.Sprintf(format, a...)))
}

// Accent prints an emphasized list header.
func (c *Console) Accent(s string) {
	fmt.Fprintln(c.out, c.accent.Render(s))
}

// Option prints a numbered menu entry.
func (c *Console) Option(key, text string) {
	fmt.Fprintf(c.out, "%s %s\n", c.label.Render(key+"."), text)
}

// Label renders s in the label style without printing it.
func (c *Console) Label(s string) string {
	return c.label.Render(s)
}

// Banner prints the startup art.
func (c *Console) Banner(art string) {
	fmt.Fprintln(c.out, c.banner.Render(art))
}

// Ask prints "prompt: " and returns the trimmed answer.
func (c *Console) Ask(prompt string) (string, error) {
	fmt.Fprintf(c.out, "%s: ", prompt)
	return c.readLine()
}

// AskDefault is like Ask but returns def when the answer is empty.
func (c *Console) AskDefault(prompt, def string) (string, error) {
	if def != "" {
		fmt.Fprintf(c.out, "%s (%s): ", prompt, def)
	} else {
		fmt.Fprintf(c.out, "%s: ", prompt)
	}
	answer, err := c.readLine()
	if err != nil {
		return "", err
	}
	if answer == "" {
		return def, nil
	}
	return answer, nil
}

// Confirm asks a yes/no question, repeating it until the answer is y, yes, n or no.
func (c *Console) Confirm(prompt string) (bool, error) {
	for {
		fmt.Fprintf(c.out, "%s [y/n]: ", prompt)
		answer, err := c.readLine()
		if err != nil {
			return false, err
		}
		switch strings.ToLower(answer) {
		case "y", "yes":
			return true, nil
		case "n", "no":
			return false, nil
		}
		c.Error("Please enter Y or N")
	}
}

// Choose asks until the answer is one of choices and returns it.
func (c *Console) Choose(prompt string, choices []string) (string, error) {
	for {
		fmt.Fprintf(c.out, "%s [%s]: ", prompt, strings.Join(choices, "/"))
		answer, err := c.readLine()
		if err != nil {
			return "", err
		}
		for _, choice := range choices {
			if answer == choice {
				return answer, nil
			}
		}
		c.Error("Please select one of the available options")
	}
}

// readLine returns the next line without surrounding whitespace.
// A final line without a newline is returned normally; ErrClosed follows on the next call.
func (c *Console) readLine() (string, error) {
	line, err := c.in.ReadString('\n')
	if err != nil {
		if errors.Is(err, io.EOF) && line != "" {
			return strings.TrimSpace(line), nil
		}
		fmt.Fprintln(c.out)
		if errors.Is(err, io.EOF) {
			return "", ErrClosed
		}
		return "", fmt.Errorf("read input: %w", err)
	}
	return strings.TrimSpace(line), nil
}
