package owrates

import (
	"testing"

	"owstats/lib/telemetry"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

func TestSequenceOrder(t *testing.T) {
	cleanup := telemetry.SetupForTesting("test:scrapers/owrates")
	defer cleanup()

	domains := Domains{
		Inputs:  []string{"PC", "Controller"},
		Maps:    []string{"all-maps"},
		Regions: []string{"Europe"},
		Roles:   []string{"All"},
		RQ:      []string{"0", "1"},
		Tiers:   []string{"All", "Gold"},
	}
	expected := []FilterTuple{
		{Input: "PC", Map: "all-maps", Region: "Europe", Role: "All", RQ: "0", Tier: "All"},
		{Input: "PC", Map: "all-maps", Region: "Europe", Role: "All", RQ: "0", Tier: "Gold"},
		{Input: "PC", Map: "all-maps", Region: "Europe", Role: "All", RQ: "1", Tier: "All"},
		{Input: "PC", Map: "all-maps", Region: "Europe", Role: "All", RQ: "1", Tier: "Gold"},
		{Input: "Controller", Map: "all-maps", Region: "Europe", Role: "All", RQ: "0", Tier: "All"},
		{Input: "Controller", Map: "all-maps", Region: "Europe", Role: "All", RQ: "0", Tier: "Gold"},
		{Input: "Controller", Map: "all-maps", Region: "Europe", Role: "All", RQ: "1", Tier: "All"},
		{Input: "Controller", Map: "all-maps", Region: "Europe", Role: "All", RQ: "1", Tier: "Gold"},
	}

	seq := NewSequence(domains, 0)
	require.Equal(t, len(expected), seq.Len())

	diff := cmp.Diff(expected, seq.All())
	if diff != "" {
		t.Fatal(diff)
	}
}

func TestSequenceDefaultDomains(t *testing.T) {
	cleanup := telemetry.SetupForTesting("test:scrapers/owrates")
	defer cleanup()

	seq := NewSequence(DefaultDomains(), 0)
	require.Equal(t, 384, seq.Total())
	require.Equal(t, 384, seq.Len())

	first, ok := seq.Next()
	require.True(t, ok)
	require.Equal(t, FilterTuple{
		Input: "PC", Map: "all-maps", Region: "Europe",
		Role: "All", RQ: "0", Tier: "All",
	}, first)

	// tier varies fastest
	second, ok := seq.Next()
	require.True(t, ok)
	require.Equal(t, "Bronze", second.Tier)
	require.Equal(t, "PC", second.Input)
}

func TestSequenceLimitIsPrefix(t *testing.T) {
	cleanup := telemetry.SetupForTesting("test:scrapers/owrates")
	defer cleanup()

	full := NewSequence(DefaultDomains(), 0).All()
	for _, limit := range []int{1, 5, 17, 384, 1000} {
		limited := NewSequence(DefaultDomains(), limit).All()
		want := limit
		if want > len(full) {
			want = len(full)
		}
		require.Len(t, limited, want)
		diff := cmp.Diff(full[:want], limited)
		if diff != "" {
			t.Fatalf("limit %d: %s", limit, diff)
		}
	}
}

func TestSequenceRestart(t *testing.T) {
	cleanup := telemetry.SetupForTesting("test:scrapers/owrates")
	defer cleanup()

	seq := NewSequence(DefaultDomains(), 3)

	var pass1 []FilterTuple
	for {
		tuple, ok := seq.Next()
		if !ok {
			break
		}
		pass1 = append(pass1, tuple)
	}
	require.Len(t, pass1, 3)

	seq.Reset()
	var pass2 []FilterTuple
	for {
		tuple, ok := seq.Next()
		if !ok {
			break
		}
		pass2 = append(pass2, tuple)
	}

	diff := cmp.Diff(pass1, pass2)
	if diff != "" {
		t.Fatal(diff)
	}
}

func TestSingleSequence(t *testing.T) {
	cleanup := telemetry.SetupForTesting("test:scrapers/owrates")
	defer cleanup()

	tuple := FilterTuple{
		Input: "PC", Map: "all-maps", Region: "Europe",
		Role: "All", RQ: "1", Tier: "Gold",
	}
	seq := SingleSequence(tuple)
	require.Equal(t, 1, seq.Len())

	got, ok := seq.Next()
	require.True(t, ok)
	require.Equal(t, tuple, got)

	_, ok = seq.Next()
	require.False(t, ok)
}

func TestRestrict(t *testing.T) {
	cleanup := telemetry.SetupForTesting("test:scrapers/owrates")
	defer cleanup()

	domains, err := DefaultDomains().Restrict("region", "Asia")
	require.NoError(t, err)
	require.Equal(t, []string{"Asia"}, domains.Regions)
	require.Equal(t, 128, NewSequence(domains, 0).Total())

	_, err = DefaultDomains().Restrict("region", "Europ")
	require.Error(t, err)
	var invalid InvalidFieldError
	require.ErrorAs(t, err, &invalid)
	require.Equal(t, "Europe", invalid.Suggestion)

	// the map field is open-ended
	domains, err = DefaultDomains().Restrict("map", "King's Row")
	require.NoError(t, err)
	require.Equal(t, []string{"King's Row"}, domains.Maps)
}
