package assemble

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"dynotune/types"

	"github.com/rs/zerolog"
)

const timestampLayout = "2006-01-02_15-04-05"

// ExportJSON writes the record as a timestamped artifact in dir.
// The file lands via tmp+rename so a crashed run never leaves a partial
// artifact behind.
func ExportJSON(record types.ResultRecord, dir string, l *zerolog.Logger) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}

	name := fmt.Sprintf("optimization_results_%s.json", record.Metadata.Timestamp.Format(timestampLayout))
	path := filepath.Join(dir, name)

	data, err := json.MarshalIndent(record, "", "  ")
	if err != nil {
		return "", err
	}
	if err := writeAtomic(path, data); err != nil {
		return "", err
	}

	l.Info().Str("path", path).Msg("Result record exported.")
	return path, nil
}

// ExportECUMaps writes the lambda and timing tables as two-column CSV
// files for calibration tools.
func ExportECUMaps(record types.ResultRecord, dir string, l *zerolog.Logger) (string, string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", "", err
	}
	ts := record.Metadata.Timestamp.Format(timestampLayout)

	lambdaPath := filepath.Join(dir, fmt.Sprintf("lambda_map_%s.csv", ts))
	if err := writeMapCSV(lambdaPath, "Fuel Mixture Aim (LA)", record.OptimalMap.Axis.Values, record.OptimalMap.Tables.Lambda.Values); err != nil {
		return "", "", err
	}

	timingPath := filepath.Join(dir, fmt.Sprintf("timing_map_%s.csv", ts))
	if err := writeMapCSV(timingPath, "Ignition Timing Main (dBTDC)", record.OptimalMap.Axis.Values, record.OptimalMap.Tables.Timing.Values); err != nil {
		return "", "", err
	}

	l.Info().Str("lambda", lambdaPath).Str("timing", timingPath).Msg("ECU maps exported.")
	return lambdaPath, timingPath, nil
}

func writeMapCSV(path, valueHeader string, axis, values []float64) error {
	buf := []byte("RPM," + valueHeader + "\n")
	for i := range axis {
		buf = append(buf, fmt.Sprintf("%d,%g\n", int(axis[i]), values[i])...)
	}
	return writeAtomic(path, buf)
}

func writeAtomic(path string, data []byte) error {
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}
