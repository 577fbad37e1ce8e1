package format

import (
	"io"
	"strconv"

	"github.com/olekukonko/tablewriter"

	"github.com/dhamidi/peg/parse"
)

// WriteStats renders parse counters as two tables: totals, then one row per
// invoked rule, most called first. limit caps the rule rows, zero shows all.
func WriteStats(w io.Writer, stats *parse.Stats, limit int) {
	totals := tablewriter.NewWriter(w)
	totals.SetHeader([]string{"Name", "Value"})
	totals.SetAutoFormatHeaders(false)
	totals.SetAlignment(tablewriter.ALIGN_CENTER)
	totals.SetColumnAlignment([]int{tablewriter.ALIGN_LEFT, tablewriter.ALIGN_RIGHT})
	totals.Append([]string{"calls", strconv.Itoa(stats.Calls)})
	totals.Append([]string{"memo_hits", strconv.Itoa(stats.MemoHits)})
	totals.Append([]string{"memo_misses", strconv.Itoa(stats.MemoMisses)})
	totals.Append([]string{"left_recursion", strconv.Itoa(stats.LeftRecursion)})
	totals.Append([]string{"max_depth", strconv.Itoa(stats.MaxDepth)})
	totals.Render()

	names := stats.RuleNames()
	if limit > 0 && len(names) > limit {
		names = names[:limit]
	}
	rules := tablewriter.NewWriter(w)
	rules.SetHeader([]string{"Rule", "Calls", "Memo Hits", "Matches", "Failures"})
	rules.SetAutoFormatHeaders(false)
	rules.SetAlignment(tablewriter.ALIGN_RIGHT)
	rules.SetColumnAlignment([]int{tablewriter.ALIGN_LEFT, tablewriter.ALIGN_RIGHT,
		tablewriter.ALIGN_RIGHT, tablewriter.ALIGN_RIGHT, tablewriter.ALIGN_RIGHT})
	for _, name := range names {
		rs := stats.Rules[name]
		rules.Append([]string{
			name,
			strconv.Itoa(rs.Calls),
			strconv.Itoa(rs.MemoHits),
			strconv.Itoa(rs.Matches),
			strconv.Itoa(rs.Failures),
		})
	}
	rules.Render()
}
