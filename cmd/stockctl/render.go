package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/glamour"

	"stockwatch/internal/feature/quotes/domain/entity"
	"stockwatch/internal/feature/quotes/usecase"
	refreshusecase "stockwatch/internal/feature/refresh/usecase"
)

// recentWeeks is how many closes `show` prints under the chart summary.
const recentWeeks = 8

func printMarkdown(md string) {
	r, err := glamour.NewTermRenderer(glamour.WithAutoStyle(), glamour.WithWordWrap(100))
	if err != nil {
		fmt.Print(md)
		return
	}
	out, err := r.Render(md)
	if err != nil {
		fmt.Fprintf(os.Stderr, "render: %v\n", err)
		fmt.Print(md)
		return
	}
	fmt.Print(out)
}

func rowsMarkdown(rows []entity.QuoteRow) string {
	if len(rows) == 0 {
		return "_No stored quotes. Run `stockctl refresh`._\n"
	}
	var b strings.Builder
	b.WriteString("| Symbol | Price | Change |\n")
	b.WriteString("|:---|---:|---:|\n")
	for _, r := range rows {
		fmt.Fprintf(&b, "| %s | %s | %s %s |\n", r.Symbol, r.PriceText, r.ChangeText, arrow(r.Up))
	}
	return b.String()
}

func detailMarkdown(d entity.QuoteDetail) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", d.Symbol)
	fmt.Fprintf(&b, "**%s** %s %s\n\n", d.PriceText, d.ChangeText, arrow(d.Up))

	if len(d.Chart.Points) == 0 {
		b.WriteString("_No weekly history stored._\n")
		return b.String()
	}

	first := d.Chart.Points[0].Time().UTC().Format(time.DateOnly)
	last := d.Chart.Points[len(d.Chart.Points)-1].Time().UTC().Format(time.DateOnly)
	fmt.Fprintf(&b, "%d weeks from %s to %s, low %s, high %s\n\n",
		len(d.Chart.Points), first, last,
		usecase.FormatPrice(d.Chart.Min), usecase.FormatPrice(d.Chart.Max))

	b.WriteString("| Week | Close |\n")
	b.WriteString("|:---|---:|\n")
	// newest first
	for i := len(d.Chart.Points) - 1; i >= 0 && i >= len(d.Chart.Points)-recentWeeks; i-- {
		p := d.Chart.Points[i]
		fmt.Fprintf(&b, "| %s | %s |\n", p.Time().UTC().Format(time.DateOnly), usecase.FormatPrice(p.Close))
	}
	return b.String()
}

func resultMarkdown(res refreshusecase.Result) string {
	var b strings.Builder
	b.WriteString("## Refresh\n\n")
	writeList(&b, "Stored", res.Upserted)
	writeList(&b, "Removed (unknown to the data source)", res.Pruned)
	writeList(&b, "Skipped (removed during the refresh)", res.Skipped)
	return b.String()
}

func writeList(b *strings.Builder, title string, symbols []string) {
	if len(symbols) == 0 {
		return
	}
	fmt.Fprintf(b, "- **%s**: %s\n", title, strings.Join(symbols, ", "))
}

func arrow(up bool) string {
	if up {
		return "▲"
	}
	return "▼"
}
