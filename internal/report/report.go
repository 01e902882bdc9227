package report

import (
	"fmt"
	"strings"

	"github.com/danielpatrickdp/fieldstate/internal/field"
	"github.com/danielpatrickdp/fieldstate/internal/gate"
	"github.com/danielpatrickdp/fieldstate/internal/journal"
)

// #region render-state

const barWidth = 20

// RenderState builds the [FIELD STATE] block shown by the inspect tool:
// one bar per dimension with its aggregate, gate flag, and the overall
// entropy score.
func RenderState(aggregates map[field.Dimension]float64, gates map[field.Dimension]gate.Status, entropyScore float64) string {
	var b strings.Builder
	b.WriteString("[FIELD STATE]\n")
	for _, d := range field.Dimensions() {
		agg := aggregates[d]
		flag := "closed"
		if st, ok := gates[d]; ok && st.Open {
			flag = "open"
		}
		b.WriteString(fmt.Sprintf("  %-10s %.4f |%s| %s\n", d, agg, bar(agg), flag))
	}
	b.WriteString(fmt.Sprintf("  entropy    %.4f\n", entropyScore))
	return b.String()
}

func bar(v float64) string {
	filled := int(field.Clamp(v)*barWidth + 0.5)
	return strings.Repeat("#", filled) + strings.Repeat(".", barWidth-filled)
}

// #endregion render-state

// #region render-journal

// RenderJournalTail formats the newest n journal entries, oldest first.
func RenderJournalTail(events []journal.Event, n int) string {
	if n <= 0 || n > len(events) {
		n = len(events)
	}
	tail := events[len(events)-n:]

	var b strings.Builder
	b.WriteString("[JOURNAL]\n")
	if len(tail) == 0 {
		b.WriteString("  (empty)\n")
		return b.String()
	}
	for _, ev := range tail {
		switch ev.Kind {
		case journal.KindTick:
			b.WriteString(fmt.Sprintf("  #%-6d t=%-6d tick\n", ev.Seq, ev.Tick))
		default:
			b.WriteString(fmt.Sprintf("  #%-6d t=%-6d %s %s delta=%+.4f\n",
				ev.Seq, ev.Tick, ev.Dimension, ev.Motion, ev.Delta))
		}
	}
	return b.String()
}

// #endregion render-journal
