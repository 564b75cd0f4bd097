package renderer

import (
	"embed"
	"fmt"
	"io/fs"
	"path"
	"strings"
	"text/template"
	"time"

	"github.com/etnz/caravan"
)

//go:embed templates/*.md
var templates embed.FS

// dashboardView adds the preformatted parts to a Dashboard.
type dashboardView struct {
	caravan.Dashboard
	USD         caravan.Money
	RoutesTable string
}

// DashboardMarkdown renders the dashboard of the current shift.
func DashboardMarkdown(d caravan.Dashboard) string {
	partials := map[string]string{
		"dashboard_figures": "dashboard_figures.md",
		"dashboard_routes":  "dashboard_routes.md",
	}
	if d.TradeCount == 0 {
		partials["dashboard_routes"] = ""
	}
	view := dashboardView{
		Dashboard:   d,
		USD:         caravan.USD(d.TotalUSD),
		RoutesTable: RoutesMarkdown(d.Routes),
	}
	return renderTemplate("dashboard", "dashboard.md", partials, view)
}

type tripView struct {
	caravan.Trip
	Started string
	Elapsed string
}

// TripMarkdown renders the trip in progress, if any.
func TripMarkdown(trip *caravan.Trip, now time.Time) string {
	if trip == nil {
		return renderTemplate("trip", "trip_none.md", nil, nil)
	}
	view := tripView{
		Trip:    *trip,
		Started: trip.Start.Local().Format("15:04:05"),
		Elapsed: caravan.FormatElapsed(trip.Elapsed(now)),
	}
	return renderTemplate("trip", "trip.md", nil, view)
}

// renderTemplate renders a main template that depends on several partials.
func renderTemplate(templateName, mainFile string, partials map[string]string, data any) string {
	mainContent, err := fs.ReadFile(templates, path.Join("templates", mainFile))
	if err != nil {
		return fmt.Sprintf("error reading main template %q: %v", mainFile, err)
	}

	tmpl, err := template.New(templateName).Parse(string(mainContent))
	if err != nil {
		return fmt.Sprintf("error parsing main template %q: %v", mainFile, err)
	}

	for name, file := range partials {
		var content []byte
		// An empty file name results in an empty template.
		if file != "" {
			content, err = fs.ReadFile(templates, path.Join("templates", file))
			if err != nil {
				return fmt.Sprintf("error reading partial template %q: %v", file, err)
			}
		}
		if _, err := tmpl.New(name).Parse(string(content)); err != nil {
			return fmt.Sprintf("error parsing partial template %q for %q: %v", file, name, err)
		}
	}

	var b strings.Builder
	if err := tmpl.ExecuteTemplate(&b, templateName, data); err != nil {
		return fmt.Sprintf("error executing template %q: %v", templateName, err)
	}
	return b.String()
}
