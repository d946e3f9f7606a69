package herostats

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"owstats/lib/scrapers/owrates"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

func TestArtifactName(t *testing.T) {
	name := ArtifactName(goldTuple)
	require.Equal(t, "stats_input-pc_map-all-maps_region-europe_role-all_rq-1_tier-gold.csv", name)
	// pure function, same tuple always maps to the same name
	require.Equal(t, name, ArtifactName(goldTuple))

	spaced := goldTuple
	spaced.Map = "King's Row"
	require.Equal(t, "stats_input-pc_map-king's-row_region-europe_role-all_rq-1_tier-gold.csv", ArtifactName(spaced))
}

func TestArtifactNamesAreDistinct(t *testing.T) {
	seq := owrates.NewSequence(owrates.DefaultDomains(), 0)
	seen := map[string]owrates.FilterTuple{}
	for _, tuple := range seq.All() {
		name := ArtifactName(tuple)
		previous, ok := seen[name]
		if ok {
			t.Fatalf("artifact name %q collides: %s and %s", name, previous, tuple)
		}
		seen[name] = tuple
	}
	require.Len(t, seen, seq.Total())
}

func TestWriteArtifact(t *testing.T) {
	dir := t.TempDir()

	table, err := Normalize(goldTuple, []byte(`{"Hero1": {"win_rate": 52.3, "pick_rate": 4.1}}`))
	require.NoError(t, err)
	artifact, err := WriteArtifact(goldTuple, table, dir)
	require.NoError(t, err)
	require.Equal(t, "stats_input-pc_map-all-maps_region-europe_role-all_rq-1_tier-gold.csv", artifact.Name)
	require.Equal(t, 1, artifact.Rows)

	contents, err := os.ReadFile(artifact.Path)
	require.NoError(t, err)
	require.Equal(t,
		"hero,win_rate,pick_rate,input,map,region,role,rq,tier\n"+
			"Hero1,52.3,4.1,pc,all-maps,europe,all,1,gold\n",
		string(contents))
}

func TestWriteArtifactOverwrites(t *testing.T) {
	dir := t.TempDir()

	table, err := Normalize(goldTuple, []byte(`{"Hero1": {"win_rate": 52.3}}`))
	require.NoError(t, err)
	_, err = WriteArtifact(goldTuple, table, dir)
	require.NoError(t, err)

	table, err = Normalize(goldTuple, []byte(`{"Hero1": {"win_rate": 48.9}}`))
	require.NoError(t, err)
	artifact, err := WriteArtifact(goldTuple, table, dir)
	require.NoError(t, err)

	contents, err := os.ReadFile(artifact.Path)
	require.NoError(t, err)
	require.Contains(t, string(contents), "48.9")
	require.NotContains(t, string(contents), "52.3")

	// no temp files left behind
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
}

func TestWriteArtifactEmptyTable(t *testing.T) {
	dir := t.TempDir()

	table, err := Normalize(goldTuple, []byte(`{}`))
	require.NoError(t, err)
	artifact, err := WriteArtifact(goldTuple, table, dir)
	require.NoError(t, err)
	require.Equal(t, 0, artifact.Rows)

	contents, err := os.ReadFile(artifact.Path)
	require.NoError(t, err)
	require.Equal(t, "hero,input,map,region,role,rq,tier\n", string(contents))
}

func TestArtifactRoundTrip(t *testing.T) {
	dir := t.TempDir()

	// hero names with commas and high precision stats have to survive
	// the trip to disk byte for byte
	payload := `{
		"Hero, The": {"win_rate": 52.300000000000004, "note": "a \"quoted\" value"},
		"Hero2": {"win_rate": 48.0, "note": ""}
	}`
	table, err := Normalize(goldTuple, []byte(payload))
	require.NoError(t, err)
	artifact, err := WriteArtifact(goldTuple, table, dir)
	require.NoError(t, err)

	f, err := os.Open(artifact.Path)
	require.NoError(t, err)
	defer f.Close()
	records, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)

	expected := append([][]string{table.Header}, table.Rows...)
	diff := cmp.Diff(expected, records)
	if diff != "" {
		t.Fatal(diff)
	}
}

func TestNormalizeAndWriteShapeError(t *testing.T) {
	dir := t.TempDir()

	_, err := NormalizeAndWrite(goldTuple, []byte(`["not", "a", "mapping"]`), dir)
	var serr *ShapeError
	require.ErrorAs(t, err, &serr)

	// nothing may be written, not even a partial file
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Empty(t, entries)
}

func TestWriteArtifactMissingDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "does", "not", "exist")

	table, err := Normalize(goldTuple, []byte(`{"Hero1": {"win_rate": 52.3}}`))
	require.NoError(t, err)
	_, err = WriteArtifact(goldTuple, table, dir)
	require.Error(t, err)
	require.True(t, strings.Contains(err.Error(), "no such file") || os.IsNotExist(err))
}
