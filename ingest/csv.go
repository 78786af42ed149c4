package ingest

import (
	"encoding/csv"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"dynotune/types"

	"github.com/rs/zerolog"
)

// Column names of a processed MoTeC log export.
const (
	ColRPM    = "Engine Speed"
	ColLambda = "Fuel Mixture Aim"
	ColTiming = "Ignition Timing Main"
	ColBSFC   = "Dyno Brake Specific Fuel Consumption"
)

// LoadCSVFile reads one log export: a quoted header row, a units row
// (skipped), then data rows. Unparseable or empty cells become NaN so the
// ingestor can count them as rejections. Errors when a required column is
// missing entirely.
func LoadCSVFile(path string, l *zerolog.Logger) ([]types.RawRow, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1

	header, err := r.Read()
	if err != nil {
		return nil, fmt.Errorf("reading header of %s: %w", path, err)
	}
	for i := range header {
		header[i] = strings.TrimSpace(strings.Trim(header[i], `"`))
	}

	// Units row carries no data.
	if _, err := r.Read(); err != nil {
		return nil, fmt.Errorf("reading units row of %s: %w", path, err)
	}

	idx := map[string]int{}
	for _, col := range []string{ColRPM, ColLambda, ColTiming, ColBSFC} {
		found := -1
		for i, h := range header {
			if h == col {
				found = i
				break
			}
		}
		if found < 0 {
			return nil, fmt.Errorf("column %q not found in %s", col, path)
		}
		idx[col] = found
	}

	source := filepath.Base(path)
	var rows []types.RawRow
	for {
		rec, err := r.Read()
		if err != nil {
			break
		}
		if blankRecord(rec) {
			continue
		}
		rows = append(rows, types.RawRow{
			RPM:    cell(rec, idx[ColRPM]),
			Lambda: cell(rec, idx[ColLambda]),
			Timing: cell(rec, idx[ColTiming]),
			BSFC:   cell(rec, idx[ColBSFC]),
			Source: source,
		})
	}

	l.Info().Str("file", source).Int("rows", len(rows)).Msg("Loaded log file.")
	return rows, nil
}

// LoadCSVFiles concatenates rows from multiple log files. A file with a
// missing column is skipped with a warning rather than failing the run.
func LoadCSVFiles(paths []string, l *zerolog.Logger) ([]types.RawRow, error) {
	var all []types.RawRow
	for _, p := range paths {
		rows, err := LoadCSVFile(p, l)
		if err != nil {
			l.Warn().Err(err).Str("file", p).Msg("Skipping unreadable log file.")
			continue
		}
		all = append(all, rows...)
	}
	if len(all) == 0 {
		return nil, fmt.Errorf("no rows loaded from %d file(s)", len(paths))
	}
	return all, nil
}

// LoadCSVDir loads every *.csv in dir, sorted by name.
func LoadCSVDir(dir string, l *zerolog.Logger) ([]types.RawRow, error) {
	matches, err := filepath.Glob(filepath.Join(dir, "*.csv"))
	if err != nil {
		return nil, err
	}
	if len(matches) == 0 {
		return nil, fmt.Errorf("no CSV files found in %s", dir)
	}
	sort.Strings(matches)
	l.Info().Int("files", len(matches)).Str("dir", dir).Msg("Found log files.")
	return LoadCSVFiles(matches, l)
}

func blankRecord(rec []string) bool {
	for _, c := range rec {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

func cell(rec []string, i int) float64 {
	if i >= len(rec) {
		return math.NaN()
	}
	s := strings.TrimSpace(rec[i])
	if s == "" {
		return math.NaN()
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return math.NaN()
	}
	return v
}
