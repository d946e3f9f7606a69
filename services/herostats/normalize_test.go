package herostats

import (
	"testing"

	"owstats/lib/scrapers/owrates"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

var goldTuple = owrates.FilterTuple{
	Input:  "PC",
	Map:    "all-maps",
	Region: "Europe",
	Role:   "All",
	RQ:     "1",
	Tier:   "Gold",
}

func TestNormalize(t *testing.T) {
	table, err := Normalize(goldTuple, []byte(`{"Hero1": {"win_rate": 52.3, "pick_rate": 4.1}}`))
	require.NoError(t, err)

	diff := cmp.Diff(Table{
		Header: []string{"hero", "win_rate", "pick_rate", "input", "map", "region", "role", "rq", "tier"},
		Rows: [][]string{
			{"Hero1", "52.3", "4.1", "pc", "all-maps", "europe", "all", "1", "gold"},
		},
	}, table)
	if diff != "" {
		t.Fatal(diff)
	}
}

func TestNormalizeNestedStats(t *testing.T) {
	payload := `{
		"Ana": {
			"cells": {"kills": 10.215, "deaths": 3},
			"maps": ["Dorado","Oasis"],
			"loadouts": [{"slot": "nano"}, {"slot": "dart"}]
		}
	}`
	table, err := Normalize(goldTuple, []byte(payload))
	require.NoError(t, err)

	diff := cmp.Diff(Table{
		Header: []string{
			"hero",
			"cells_kills", "cells_deaths", "maps", "loadouts_0_slot", "loadouts_1_slot",
			"input", "map", "region", "role", "rq", "tier",
		},
		Rows: [][]string{
			{"Ana", "10.215", "3", `["Dorado","Oasis"]`, "nano", "dart", "pc", "all-maps", "europe", "all", "1", "gold"},
		},
	}, table)
	if diff != "" {
		t.Fatal(diff)
	}
}

func TestNormalizeColumnUnion(t *testing.T) {
	payload := `{
		"Hero1": {"win_rate": 52.3},
		"Hero2": {"win_rate": 48.0, "pick_rate": 1.5}
	}`
	table, err := Normalize(goldTuple, []byte(payload))
	require.NoError(t, err)

	// columns appear in first-seen order, heroes missing one get an
	// empty cell
	diff := cmp.Diff(Table{
		Header: []string{"hero", "win_rate", "pick_rate", "input", "map", "region", "role", "rq", "tier"},
		Rows: [][]string{
			{"Hero1", "52.3", "", "pc", "all-maps", "europe", "all", "1", "gold"},
			{"Hero2", "48.0", "1.5", "pc", "all-maps", "europe", "all", "1", "gold"},
		},
	}, table)
	if diff != "" {
		t.Fatal(diff)
	}
}

func TestNormalizeKeepsHeroOrder(t *testing.T) {
	payload := `{"Zarya": {"w": 1}, "Ana": {"w": 2}, "Mercy": {"w": 3}}`
	table, err := Normalize(goldTuple, []byte(payload))
	require.NoError(t, err)

	var heroes []string
	for _, row := range table.Rows {
		heroes = append(heroes, row[0])
	}
	require.Equal(t, []string{"Zarya", "Ana", "Mercy"}, heroes)
}

func TestNormalizeKeepsNumberLiterals(t *testing.T) {
	payload := `{"Hero1": {"win_rate": 52.300000000000004, "games": 12884901888}}`
	table, err := Normalize(goldTuple, []byte(payload))
	require.NoError(t, err)
	require.Equal(t, "52.300000000000004", table.Rows[0][1])
	require.Equal(t, "12884901888", table.Rows[0][2])
}

func TestNormalizeEmptyPayload(t *testing.T) {
	table, err := Normalize(goldTuple, []byte(`{}`))
	require.NoError(t, err)
	require.Empty(t, table.Rows)
	require.Equal(t, []string{"hero", "input", "map", "region", "role", "rq", "tier"}, table.Header)
}

func TestNormalizeShapeErrors(t *testing.T) {
	payloads := []string{
		`[{"hero": "Hero1"}]`,
		`42`,
		`"Hero1"`,
		`{"Hero1": 52.3}`,
		`{"Hero1": ["win_rate"]}`,
		`{"Hero1": {"win_rate": 52.3}`,
	}
	for _, payload := range payloads {
		_, err := Normalize(goldTuple, []byte(payload))
		var serr *ShapeError
		require.ErrorAs(t, err, &serr, "payload: %s", payload)
	}
}
