package herostats

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"

	"owstats/lib/scrapers/owrates"
)

// Artifact describes one written output file.
type Artifact struct {
	Name string
	Path string
	Rows int
}

// ArtifactName derives the output filename for a filter tuple. It is a
// pure function of the tuple: the same tuple always maps to the same
// name and distinct tuples never collide.
func ArtifactName(tuple owrates.FilterTuple) string {
	return fmt.Sprintf(
		"stats_input-%s_map-%s_region-%s_role-%s_rq-%s_tier-%s.csv",
		owrates.Slug(tuple.Input),
		owrates.Slug(tuple.Map),
		owrates.Slug(tuple.Region),
		owrates.Slug(tuple.Role),
		owrates.Slug(tuple.RQ),
		owrates.Slug(tuple.Tier),
	)
}

// WriteArtifact serializes the table under the tuple's artifact name
// in outputDir, replacing any previous artifact of the same name. The
// rows go to a temporary file first and only a fully written file is
// renamed into place, so readers never observe a partial artifact.
func WriteArtifact(tuple owrates.FilterTuple, table Table, outputDir string) (Artifact, error) {
	name := ArtifactName(tuple)
	path := filepath.Join(outputDir, name)

	tmp, err := os.CreateTemp(outputDir, name+".tmp*")
	if err != nil {
		return Artifact{}, err
	}
	defer os.Remove(tmp.Name())

	w := csv.NewWriter(tmp)
	if err := w.Write(table.Header); err != nil {
		tmp.Close()
		return Artifact{}, err
	}
	for _, row := range table.Rows {
		if err := w.Write(row); err != nil {
			tmp.Close()
			return Artifact{}, err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		tmp.Close()
		return Artifact{}, err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return Artifact{}, err
	}
	if err := tmp.Close(); err != nil {
		return Artifact{}, err
	}

	if err := os.Rename(tmp.Name(), path); err != nil {
		return Artifact{}, err
	}
	return Artifact{Name: name, Path: path, Rows: len(table.Rows)}, nil
}

// NormalizeAndWrite flattens a raw payload and persists it as one
// artifact. On a shape error nothing is written.
func NormalizeAndWrite(tuple owrates.FilterTuple, raw []byte, outputDir string) (Artifact, error) {
	table, err := Normalize(tuple, raw)
	if err != nil {
		return Artifact{}, err
	}
	return WriteArtifact(tuple, table, outputDir)
}
