package crawler

import (
	"fmt"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"
)

// monthPage renders a page shaped like the source's daily data view: a
// header row, one row per day, then summary rows. Each entry of days holds
// the max, min and mean cell text.
func monthPage(days [][3]string) string {
	var b strings.Builder
	b.WriteString(`<html><body><h1>Daily Data Report</h1>`)
	b.WriteString(`<table class="table table-striped"><thead><tr><th>DAY</th><th>Max Temp</th><th>Min Temp</th><th>Mean Temp</th></tr></thead><tbody>`)
	for i, d := range days {
		fmt.Fprintf(&b, `<tr><th scope="row">%02d</th><td>%s</td><td>%s</td><td>%s</td></tr>`, i+1, d[0], d[1], d[2])
	}
	b.WriteString(`<tr><th>Sum</th><td></td><td></td><td></td></tr>`)
	b.WriteString(`<tr><th>Avg</th><td>99.9</td><td>99.9</td><td>99.9</td></tr>`)
	b.WriteString(`</tbody></table></body></html>`)
	return b.String()
}

func fullMonth(n int) [][3]string {
	days := make([][3]string, n)
	for i := range days {
		days[i] = [3]string{fmt.Sprintf("%d.5", i+1), fmt.Sprintf("-%d.0", i+1), fmt.Sprintf("%d.1", i)}
	}
	return days
}

const noTablePage = `<html><body><p>No data available for this month.</p></body></html>`

// counterValue reads one labelled counter from reg.
func counterValue(t *testing.T, reg *prometheus.Registry, name, label, value string) float64 {
	t.Helper()
	families, err := reg.Gather()
	require.NoError(t, err)
	for _, mf := range families {
		if mf.GetName() != name {
			continue
		}
		for _, m := range mf.GetMetric() {
			for _, lp := range m.GetLabel() {
				if lp.GetName() == label && lp.GetValue() == value {
					return m.GetCounter().GetValue()
				}
			}
		}
	}
	return 0
}
