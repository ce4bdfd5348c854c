package aggregate

import (
	"io"
	"strings"

	"golang.org/x/text/message"
)

// WriteText writes the board as plain text, formatting numbers with p.
func (b Board) WriteText(w io.Writer, p *message.Printer) error {
	var sb strings.Builder
	sb.WriteString(p.Sprintf("Progress: %d/%d games, %d remaining\n", b.Played, b.TotalGames, b.Remaining))
	sb.WriteString(p.Sprintf("Combined: %d (baseline %d, %s)\n", b.CombinedTotal, b.Baseline, signed(p, b.BaselineDiff)))

	if len(b.Standings) == 0 {
		sb.WriteString("No players registered.\n")
	}
	for _, st := range b.Standings {
		sb.WriteString(p.Sprintf("%d. %s  %d", st.Place, st.Name, st.Total))
		if st.DiffFromLeader != 0 {
			sb.WriteString(p.Sprintf("  (%d)", st.DiffFromLeader))
		}
		sb.WriteString("\n")
	}

	sb.WriteString("Recent:\n")
	if len(b.Recent) == 0 {
		sb.WriteString("- none\n")
	}
	for _, r := range b.Recent {
		sb.WriteString("- " + r.Timestamp + ": " + strings.Join(r.Tokens, " / ") + "\n")
	}

	_, err := io.WriteString(w, sb.String())
	return err
}

// WriteText writes the settlement sheet, one line per player.
func (s Settlement) WriteText(w io.Writer, p *message.Printer) error {
	var sb strings.Builder
	sb.WriteString(p.Sprintf("Settlement at %s (%d/%d games)\n", s.At, s.Played, s.TotalGames))
	if len(s.Lines) == 0 {
		sb.WriteString("No settlement data.\n")
	}
	for _, l := range s.Lines {
		sb.WriteString(p.Sprintf("%d. %s | %s | %d\n", l.Place, l.Name, l.Summary, l.Total))
	}
	_, err := io.WriteString(w, sb.String())
	return err
}

func signed(p *message.Printer, n int) string {
	if n >= 0 {
		return p.Sprintf("+%d", n)
	}
	return p.Sprintf("%d", n)
}
