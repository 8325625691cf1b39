package visuals

import (
	"fmt"
	"math"
	"strings"

	"crm-kpi/internal/stats"
)

// Fence wraps a chart body in a mermaid code block for markdown consumers.
func Fence(body string) string {
	if body == "" {
		return ""
	}
	return "```mermaid\n" + body + "```"
}

// GenerateActivityChart creates a Mermaid bar chart comparing this period's activity with the previous one.
func GenerateActivityChart(data stats.WeeklyKPIData) string {
	labels := []string{`"Moved"`, `"Interactions"`, `"Completed"`}
	current := []float64{
		float64(data.OpportunitiesMoved.StageChanges),
		float64(data.InteractionsLogged.Count),
		float64(data.CompletedTasks.Count),
	}
	previous := []float64{
		data.OpportunitiesMoved.Trend.Baseline,
		data.InteractionsLogged.Trend.Baseline,
		data.CompletedTasks.Trend.Baseline,
	}

	maxVal := 0.0
	for i := range current {
		maxVal = math.Max(maxVal, math.Max(current[i], previous[i]))
	}

	var sb strings.Builder
	sb.WriteString("xychart-beta\n")
	sb.WriteString(fmt.Sprintf("    title \"Activity (%s)\"\n", data.Ranges.Current.Label()))
	sb.WriteString(fmt.Sprintf("    x-axis [%s]\n", strings.Join(labels, ", ")))
	sb.WriteString(fmt.Sprintf("    y-axis \"Count\" 0 --> %d\n", axisMax(maxVal)))
	sb.WriteString(fmt.Sprintf("    bar [%s]\n", joinValues(previous, "%.0f")))
	sb.WriteString(fmt.Sprintf("    bar [%s]\n", joinValues(current, "%.0f")))
	return sb.String()
}

// GeneratePipelineChart compares the open pipeline with the previous-period snapshot.
// It returns "" when no snapshot could be reconstructed.
func GeneratePipelineChart(data stats.WeeklyKPIData) string {
	p := data.PipelineValue
	if p.Trend.Estimated {
		return ""
	}

	var sb strings.Builder
	sb.WriteString("xychart-beta\n")
	sb.WriteString(fmt.Sprintf("    title \"Pipeline Value (%s)\"\n", p.Trend.Label))
	sb.WriteString("    x-axis [\"Previous\", \"Current\"]\n")
	sb.WriteString(fmt.Sprintf("    y-axis \"Value\" 0 --> %d\n", axisMax(math.Max(p.Total, p.Trend.Baseline))))
	sb.WriteString(fmt.Sprintf("    bar [%.0f, %.0f]\n", p.Trend.Baseline, p.Total))
	return sb.String()
}

// GenerateTaskChart creates a pie chart of completed, due and overdue follow-ups.
func GenerateTaskChart(data stats.WeeklyKPIData) string {
	completed := data.CompletedTasks.Count
	due := data.ActionItemsDue.Count
	overdue := data.OverdueItems.Count
	if completed+due+overdue == 0 {
		return ""
	}

	var sb strings.Builder
	sb.WriteString("pie showData\n")
	sb.WriteString(fmt.Sprintf("    title Follow-ups (%.0f%% complete)\n", data.CompletedTasks.CompletionRate))
	sb.WriteString(fmt.Sprintf("    \"Completed\" : %d\n", completed))
	sb.WriteString(fmt.Sprintf("    \"Due\" : %d\n", due))
	sb.WriteString(fmt.Sprintf("    \"Overdue\" : %d\n", overdue))
	return sb.String()
}

// Charts returns every non-empty chart body for a computation, in display order.
func Charts(data stats.WeeklyKPIData) []string {
	var out []string
	for _, c := range []string{GenerateActivityChart(data), GeneratePipelineChart(data), GenerateTaskChart(data)} {
		if c != "" {
			out = append(out, c)
		}
	}
	return out
}

func joinValues(values []float64, format string) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = fmt.Sprintf(format, v)
	}
	return strings.Join(parts, ", ")
}

// axisMax leaves 20% headroom above the tallest bar.
func axisMax(v float64) int {
	return int(math.Ceil(v + math.Max(1, v*0.2)))
}
