package suite

import (
	"errors"
	"testing"

	"morphtest/internal/core"
	"morphtest/internal/i18n"
)

func sampleLoaded() []Loaded {
	return []Loaded{
		{Suite: core.Suite{Name: "nouns.yaml", Cases: []core.TestCase{
			{Name: "Nouns: hus+N", Direction: core.Generate, Input: "hus+N", Expect: []string{"hus"}},
			{Name: "Nouns: hus", Direction: core.Analyze, Input: "hus", Expect: []string{"hus+N"}},
			{Name: "Verbs: gå+V", Direction: core.Generate, Input: "gå+V", Expect: []string{"gå"}},
		}}},
		{Suite: core.Suite{Name: "adj.yaml", Cases: []core.TestCase{
			{Name: "Adj: stor+A", Direction: core.Generate, Input: "stor+A", Expect: []string{"stor"}},
		}}},
	}
}

func TestBlocks_EncounterOrder(t *testing.T) {
	blocks := Blocks(sampleLoaded())
	want := []Block{
		{Suite: 0, Group: "Nouns", Direction: core.Generate},
		{Suite: 0, Group: "Nouns", Direction: core.Analyze},
		{Suite: 0, Group: "Verbs", Direction: core.Generate},
		{Suite: 1, Group: "Adj", Direction: core.Generate},
	}
	if len(blocks) != len(want) {
		t.Fatalf("expected %v, got %v", want, blocks)
	}
	for i := range want {
		if blocks[i] != want[i] {
			t.Fatalf("block %d: expected %v, got %v", i, want[i], blocks[i])
		}
	}

	lines := Listing(blocks, i18n.English())
	if lines[1] != "2: Nouns (Surface/Analysis)" {
		t.Fatalf("unexpected listing line %q", lines[1])
	}
}

func TestChoose(t *testing.T) {
	loc := i18n.English()
	blocks := Blocks(sampleLoaded())

	got, err := Choose(blocks, " 3 ", loc)
	if err != nil || len(got) != 1 || got[0].Group != "Verbs" {
		t.Fatalf("select by number: %v, %v", got, err)
	}
	got, err = Choose(blocks, "Nouns (Lexical/Generation)", loc)
	if err != nil || len(got) != 1 || got[0].Direction != core.Generate {
		t.Fatalf("select by title: %v, %v", got, err)
	}
	got, err = Choose(blocks, "Nouns", loc)
	if err != nil || len(got) != 2 {
		t.Fatalf("select by group: %v, %v", got, err)
	}

	var serr *SelectionError
	if _, err := Choose(blocks, "9", loc); !errors.As(err, &serr) {
		t.Fatalf("expected a selection error, got %v", err)
	}
	if _, err := Choose(blocks, "Pronouns", loc); !errors.As(err, &serr) {
		t.Fatalf("expected a selection error, got %v", err)
	}
	if _, err := Choose(nil, "1", loc); !errors.As(err, &serr) {
		t.Fatalf("expected a selection error, got %v", err)
	}
}

func TestRestrictAndFilter(t *testing.T) {
	loaded := sampleLoaded()
	chosen, err := Choose(Blocks(loaded), "Nouns", i18n.English())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	out := Restrict(loaded, chosen)
	if len(out) != 1 || len(out[0].Suite.Cases) != 2 {
		t.Fatalf("unexpected restriction %+v", out)
	}
	if len(loaded[0].Suite.Cases) != 3 {
		t.Fatalf("Restrict must not modify its input")
	}

	surface := FilterDirection(loaded, core.Analyze)
	if len(surface) != 1 || len(surface[0].Suite.Cases) != 1 {
		t.Fatalf("unexpected direction filter %+v", surface)
	}
	if all := FilterDirection(loaded, ""); len(all) != 2 {
		t.Fatalf("empty direction must keep every suite")
	}
}

func TestIsListRequest(t *testing.T) {
	for _, s := range []string{"0", "null", "NULL", " list ", "liste"} {
		if !IsListRequest(s) {
			t.Fatalf("%q should request the listing", s)
		}
	}
	if IsListRequest("1") {
		t.Fatalf("a block number is not a listing request")
	}
}
