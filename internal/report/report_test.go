package report

import (
	"strings"
	"testing"

	"github.com/danielpatrickdp/fieldstate/internal/field"
	"github.com/danielpatrickdp/fieldstate/internal/gate"
	"github.com/danielpatrickdp/fieldstate/internal/journal"
)

func TestRenderStateListsEveryDimension(t *testing.T) {
	aggs := map[field.Dimension]float64{field.Capital: 0.75, field.Energy: 0.1}
	gates := map[field.Dimension]gate.Status{
		field.Capital: {Open: true, Score: 0.75},
	}

	out := RenderState(aggs, gates, 1.234)

	if !strings.HasPrefix(out, "[FIELD STATE]") {
		t.Fatalf("missing header:\n%s", out)
	}
	for _, d := range field.Dimensions() {
		if !strings.Contains(out, d.String()) {
			t.Fatalf("missing dimension %s:\n%s", d, out)
		}
	}
	if !strings.Contains(out, "capital    0.7500") {
		t.Fatalf("missing capital aggregate:\n%s", out)
	}
	if !strings.Contains(out, "open") || !strings.Contains(out, "closed") {
		t.Fatalf("missing gate flags:\n%s", out)
	}
	if !strings.Contains(out, "entropy    1.2340") {
		t.Fatalf("missing entropy line:\n%s", out)
	}

	// bar is proportionally filled: 0.75 of 20 chars rounds to 15
	if !strings.Contains(out, "|###############.....|") {
		t.Fatalf("unexpected bar rendering:\n%s", out)
	}
}

func TestRenderJournalTail(t *testing.T) {
	events := []journal.Event{
		{Seq: 1, Tick: 0, Kind: journal.KindMotion, Dimension: "capital", Motion: "acquire", Delta: 0.5},
		{Seq: 2, Tick: 1, Kind: journal.KindTick},
		{Seq: 3, Tick: 1, Kind: journal.KindMotion, Dimension: "energy", Motion: "exert", Delta: 0.1},
	}

	out := RenderJournalTail(events, 2)

	if strings.Contains(out, "#1") {
		t.Fatalf("tail of 2 must drop the oldest entry:\n%s", out)
	}
	if !strings.Contains(out, "tick") {
		t.Fatalf("missing tick marker:\n%s", out)
	}
	if !strings.Contains(out, "energy exert delta=+0.1000") {
		t.Fatalf("missing motion line:\n%s", out)
	}
}

func TestRenderJournalTailEmpty(t *testing.T) {
	out := RenderJournalTail(nil, 5)
	if !strings.Contains(out, "(empty)") {
		t.Fatalf("expected empty placeholder:\n%s", out)
	}
}
