package visuals

import (
	"errors"
	"fmt"
	"html/template"
	"io"
	"strings"
	"sync"

	"github.com/evanw/esbuild/pkg/api"

	"crm-kpi/internal/stats"
)

const bootstrapScript = `
import mermaid from "https://cdn.jsdelivr.net/npm/mermaid@11/dist/mermaid.esm.min.mjs";

const prefersDark = window.matchMedia("(prefers-color-scheme: dark)").matches;
mermaid.initialize({
  startOnLoad: true,
  theme: prefersDark ? "dark" : "default",
  securityLevel: "strict",
});
`

// MinifyScript minifies an ES module with esbuild.
func MinifyScript(src string) (string, error) {
	result := api.Transform(src, api.TransformOptions{
		Loader:            api.LoaderJS,
		Format:            api.FormatESModule,
		MinifyWhitespace:  true,
		MinifyIdentifiers: true,
		MinifySyntax:      true,
	})
	if len(result.Errors) > 0 {
		msgs := make([]string, 0, len(result.Errors))
		for _, m := range result.Errors {
			msgs = append(msgs, m.Text)
		}
		return "", errors.New(strings.Join(msgs, "; "))
	}
	return string(result.Code), nil
}

var bootstrap = sync.OnceValues(func() (string, error) {
	return MinifyScript(bootstrapScript)
})

var reportTemplate = template.Must(template.New("report").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>Weekly KPIs - {{.Range}}</title>
<style>
body{font-family:system-ui,sans-serif;margin:2rem;max-width:960px}
.tiles{display:grid;grid-template-columns:repeat(3,1fr);gap:1rem}
.tile{border:1px solid #ccc;border-radius:8px;padding:1rem}
.tile h2{font-size:.9rem;margin:0 0 .5rem;font-weight:600}
.value{font-size:1.8rem}
.muted{color:#777;font-size:.85rem}
</style>
</head>
<body>
<h1>Weekly KPIs</h1>
<p class="muted">{{.Range}} · {{.Summary}} · generated {{.GeneratedAt}}</p>
<div class="tiles">
{{range .Tiles}}<div class="tile"><h2>{{.Title}}</h2><div class="value">{{.Value}}</div><div class="muted">{{.Detail}}</div></div>
{{end}}</div>
{{range .Charts}}<pre class="mermaid">
{{.}}</pre>
{{end}}<script type="module">{{.Script}}</script>
</body>
</html>
`))

type tile struct {
	Title  string
	Value  string
	Detail string
}

type reportData struct {
	Range       string
	Summary     string
	GeneratedAt string
	Tiles       []tile
	Charts      []string
	Script      template.JS
}

// RenderHTML writes a standalone HTML report for a snapshot.
func RenderHTML(w io.Writer, snap stats.Snapshot) error {
	script, err := bootstrap()
	if err != nil {
		return fmt.Errorf("failed to minify report script: %w", err)
	}

	k := snap.KPIs
	data := reportData{
		Range:       k.Ranges.Current.Label(),
		Summary:     snap.Summary.FilterSummary,
		GeneratedAt: k.GeneratedAt.Format("2006-01-02 15:04 MST"),
		Charts:      Charts(k),
		Script:      template.JS(script),
		Tiles: []tile{
			{"Opportunities Moved", fmt.Sprintf("%d", k.OpportunitiesMoved.Count), k.OpportunitiesMoved.Trend.Label},
			{"Interactions Logged", fmt.Sprintf("%d", k.InteractionsLogged.Count), fmt.Sprintf("%d this week · %s", k.InteractionsLogged.ThisWeek, k.InteractionsLogged.Trend.Label)},
			{"Action Items Due", fmt.Sprintf("%d", k.ActionItemsDue.Count), fmt.Sprintf("%d due today", k.ActionItemsDue.DueToday)},
			{"Pipeline Value", fmt.Sprintf("%.0f", k.PipelineValue.Total), fmt.Sprintf("%d open · %s", k.PipelineValue.OpportunityCount, k.PipelineValue.Trend.Label)},
			{"Overdue Items", fmt.Sprintf("%d", k.OverdueItems.Count), fmt.Sprintf("oldest %d days", k.OverdueItems.OldestDays)},
			{"Completed Tasks", fmt.Sprintf("%d", k.CompletedTasks.Count), fmt.Sprintf("%.0f%% completion · %s", k.CompletedTasks.CompletionRate, k.CompletedTasks.Trend.Label)},
		},
	}
	return reportTemplate.Execute(w, data)
}
