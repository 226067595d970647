package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/barysiuk/skillhub/internal/core"
	"github.com/barysiuk/skillhub/internal/tui"
)

// splitList parses a comma-separated flag value, dropping empty entries.
func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// printCandidates writes one line per discovered candidate.
func printCandidates(candidates []core.SkillCandidate) {
	for _, c := range candidates {
		if c.Valid {
			line := fmt.Sprintf("  %s %-28s %s", tui.OKStyle.Render("✓"), c.Subpath, tui.NameStyle.Render(c.Name))
			if c.Description != "" {
				line += "  " + tui.MutedStyle.Render(c.Description)
			}
			fmt.Fprintln(os.Stdout, line)
			continue
		}
		fmt.Fprintf(os.Stdout, "  %s %-28s %s\n", tui.ErrorStyle.Render("✗"), c.Subpath, tui.WarningStyle.Render(c.Reason))
	}
}

// reportError prints extra context for structured core errors before the
// error itself is returned to main.
func reportError(err error) {
	if ce, ok := core.IsCloneError(err); ok {
		fmt.Fprintln(os.Stderr, tui.RenderCloneError(ce))
		return
	}
	if me, ok := core.IsMultipleSkills(err); ok {
		fmt.Fprintln(os.Stderr, "The source contains several skills:")
		for _, s := range me.Subpaths {
			fmt.Fprintf(os.Stderr, "  %s\n", s)
		}
		fmt.Fprintln(os.Stderr, "Choose one with --subpath, or use --pick.")
	}
}
