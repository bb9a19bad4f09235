package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"
	"golang.org/x/term"

	"github.com/randalmurphal/taskdeck/internal/model"
)

// styles renders headings and badges. Styling is disabled unless the output
// is a terminal.
type styles struct {
	enabled bool
	// width is the terminal width in columns, 0 when unknown.
	width  int
	title  lipgloss.Style
	subtle lipgloss.Style
	tones  map[model.Tone]lipgloss.Style
}

func newStyles(out io.Writer) styles {
	f, ok := out.(*os.File)
	enabled := ok && isatty.IsTerminal(f.Fd())
	width := 0
	if enabled {
		if w, _, err := term.GetSize(int(f.Fd())); err == nil {
			width = w
		}
	}

	return styles{
		enabled: enabled,
		width:   width,
		title:   lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("205")),
		subtle:  lipgloss.NewStyle().Foreground(lipgloss.Color("241")),
		tones: map[model.Tone]lipgloss.Style{
			model.ToneWarning: lipgloss.NewStyle().Foreground(lipgloss.Color("214")),
			model.TonePrimary: lipgloss.NewStyle().Foreground(lipgloss.Color("39")),
			model.ToneDanger:  lipgloss.NewStyle().Foreground(lipgloss.Color("196")),
			model.ToneSuccess: lipgloss.NewStyle().Foreground(lipgloss.Color("46")),
		},
	}
}

func (st styles) Title(s string) string {
	if !st.enabled {
		return s
	}
	return st.title.Render(s)
}

func (st styles) Subtle(s string) string {
	if !st.enabled {
		return s
	}
	return st.subtle.Render(s)
}

// Status renders a status label in its tone.
func (st styles) Status(s model.Status) string {
	label := s.Label()
	if !st.enabled {
		return label
	}
	if style, ok := st.tones[s.Tone()]; ok {
		return style.Render(label)
	}
	return label
}

// column scales a table column budget down on terminals narrower than 100
// columns.
func (st styles) column(n int) int {
	if st.width <= 0 || st.width >= 100 {
		return n
	}
	return max(12, n*st.width/100)
}

func printJSON(w io.Writer, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encode json: %w", err)
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}

func newTable(w io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
}

// truncate shortens s to maxLen runes, marking the cut with "...".
func truncate(s string, maxLen int) string {
	r := []rune(s)
	if len(r) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return string(r[:maxLen])
	}
	return string(r[:maxLen-3]) + "..."
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
