package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/happyhackingspace/detok"
	"github.com/happyhackingspace/detok/align"
)

var (
	originalStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	detokStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
	headerStyle   = lipgloss.NewStyle().Bold(true)
	tokenStyle    = lipgloss.NewStyle().Faint(true)
)

// printMismatches writes an Original / Detoken'd pair for every mismatch,
// followed by the tokens whose predicted label differs from the induced one.
// When the entry cannot be aligned every token is listed with its prediction.
func printMismatches(w io.Writer, d *detok.Detokenizer, mismatches []detok.Mismatch) {
	if len(mismatches) == 0 {
		return
	}
	_, _ = fmt.Fprintln(w, headerStyle.Render(fmt.Sprintf("%d segments do not round-trip:", len(mismatches))))
	for _, m := range mismatches {
		tokens := m.Entry.Tokens
		_, _ = fmt.Fprintf(w, "Original:  %s\n", originalStyle.Render(m.Entry.Raw))
		_, _ = fmt.Fprintf(w, "Tokens:    %s\n", strings.Join(tokens, " "))
		_, _ = fmt.Fprintf(w, "Detoken'd: %s\n", detokStyle.Render(m.Got))

		gold, aligned := align.Align(m.Entry.Raw, tokens)
		predicted := d.PredictLabels(tokens)
		proba := d.Proba(tokens)
		for i, tok := range tokens {
			if aligned && predicted[i] == gold[i] {
				continue
			}
			line := fmt.Sprintf("  %d %q: predicted %s (p=%.3f)", i, tok, predicted[i], proba[i][predicted[i]])
			if aligned {
				line += fmt.Sprintf(", expected %s (p=%.3f)", gold[i], proba[i][gold[i]])
			}
			_, _ = fmt.Fprintln(w, tokenStyle.Render(line))
		}
		_, _ = fmt.Fprintln(w)
	}
}
