package presentation

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
)

// WriteText writes a plain-text rendering of v, used by the CLI.
func WriteText(w io.Writer, v View) error {
	if v.Loading {
		_, err := fmt.Fprintf(w, "%s\n%s\n", v.LoadingText.Title, v.LoadingText.Subtitle)
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "%s\n%s\n\n", v.Header.Title, v.Header.Subtitle)
	if v.FetchError != "" {
		fmt.Fprintf(tw, "! last refresh failed: %s\n\n", v.FetchError)
	}
	for _, n := range v.Notices {
		fmt.Fprintf(tw, "[%s] %s\n", n.Level, n.Message)
	}
	if len(v.Notices) > 0 {
		fmt.Fprintln(tw)
	}

	cards := make([]string, 0, len(v.Cards))
	for _, card := range v.Cards {
		cards = append(cards, card.Text())
	}
	fmt.Fprintf(tw, "%s\n\n", strings.Join(cards, "  |  "))

	fmt.Fprintf(tw, "%s\n", v.Upload.Title)
	fmt.Fprintf(tw, "  %s\n", v.Upload.LimitsText)
	if v.Upload.SelectedName != "" {
		fmt.Fprintf(tw, "  selected: %s (%s)\n", v.Upload.SelectedName, v.Upload.SelectedSize)
	}
	fmt.Fprintln(tw)

	fmt.Fprintf(tw, "%s\n", v.Documents.Title)
	if v.Documents.Empty != nil {
		fmt.Fprintf(tw, "  %s\n  %s\n", v.Documents.Empty.Title, v.Documents.Empty.Hint)
	}
	for _, row := range v.Documents.Rows {
		risk := "-"
		if row.Risk.Present {
			risk = row.Risk.Label
			if row.Risk.Elevated {
				risk += " (elevated)"
			}
		}
		fmt.Fprintf(tw, "  %s\t%s\t%s\t%s\t%s\n", row.Filename, row.Tag, row.Badge, row.Date, risk)
	}
	fmt.Fprintln(tw)

	fmt.Fprintf(tw, "%s\n", v.Alerts.Title)
	if v.Alerts.Empty != nil {
		fmt.Fprintf(tw, "  %s\n  %s\n", v.Alerts.Empty.Title, v.Alerts.Empty.Hint)
	}
	for _, row := range v.Alerts.Rows {
		fmt.Fprintf(tw, "  %s\t%s\t%s\n", row.Severity, row.Title, row.Date)
	}
	fmt.Fprintln(tw)

	fmt.Fprintf(tw, "%s\n%s\n", v.Footer.Version, v.Footer.SafetyNotice)
	return tw.Flush()
}
