// Command cli runs one optimization batch locally: MoTeC CSV exports in,
// timestamped JSON result artifact and ECU map CSVs out.
package main

import (
	"flag"
	"fmt"
	"os"
	"strconv"
	"sync"
	"time"

	"dynotune/assemble"
	"dynotune/ingest"
	"dynotune/pipeline"
	"dynotune/types"

	"github.com/pterm/pterm"
	"github.com/rs/zerolog"
)

func main() {
	dataDir := flag.String("data", "data", "directory of CSV log exports (used when no files are given)")
	outDir := flag.String("out", "results", "output directory for result artifacts")
	binWidth := flag.Float64("bin-width", types.DefaultBinWidth, "RPM bin width")
	minSamples := flag.Int("min-samples", types.DefaultMinSamplesPerBin, "minimum samples per bin")
	suggestions := flag.Int("suggestions", types.DefaultNSuggestions, "number of next experiments to suggest")
	seed := flag.Int64("seed", types.DefaultSeed, "random seed for the run")
	logLevel := flag.String("log-level", "warn", "zerolog level for diagnostic output")
	flag.Parse()

	lvl, err := zerolog.ParseLevel(*logLevel)
	if err != nil {
		lvl = zerolog.WarnLevel
	}
	l := zerolog.New(zerolog.ConsoleWriter{
		Out:        os.Stderr,
		TimeFormat: time.RFC3339,
	}).Level(lvl).With().Timestamp().Str("App", "dynotune").Logger()

	pterm.DefaultSection.Println("BSFC Optimization")

	// Load logs: explicit files win over the data directory.
	var rows []types.RawRow
	if args := flag.Args(); len(args) > 0 {
		rows, err = ingest.LoadCSVFiles(args, &l)
	} else {
		rows, err = ingest.LoadCSVDir(*dataDir, &l)
	}
	if err != nil {
		pterm.Error.Println(err)
		os.Exit(1)
	}
	pterm.Info.Printfln("Loaded %d rows", len(rows))

	cfg := types.OptimizerConfig{
		BinWidth:         *binWidth,
		MinSamplesPerBin: *minSamples,
		NSuggestions:     *suggestions,
		Seed:             *seed,
	}

	// Render the pipeline's one-way progress stream as it arrives.
	progress := make(chan types.ProgressEvent, 16)
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for ev := range progress {
			pterm.Info.Printfln("[%d/%d] %s: %s", ev.Step, ev.Total, ev.Stage, ev.Message)
		}
	}()

	record, err := pipeline.Run(cfg, rows, progress, &l)
	wg.Wait()
	if err != nil {
		pterm.Error.Println(err)
		os.Exit(1)
	}

	printSummary(record)

	jsonPath, err := assemble.ExportJSON(*record, *outDir, &l)
	if err != nil {
		pterm.Error.Println(err)
		os.Exit(1)
	}
	lambdaPath, timingPath, err := assemble.ExportECUMaps(*record, *outDir, &l)
	if err != nil {
		pterm.Error.Println(err)
		os.Exit(1)
	}

	pterm.Success.Printfln("Results saved to %s", jsonPath)
	pterm.Success.Printfln("ECU maps: %s, %s", lambdaPath, timingPath)
}

func printSummary(record *types.ResultRecord) {
	pterm.DefaultSection.Println("Optimal Map")

	data := pterm.TableData{{"RPM", "Lambda", "Timing (dBTDC)", "Predicted BSFC"}}
	axis := record.OptimalMap.Axis.Values
	tables := record.OptimalMap.Tables
	for i := range axis {
		data = append(data, []string{
			strconv.Itoa(int(axis[i])),
			fmt.Sprintf("%.4f", tables.Lambda.Values[i]),
			fmt.Sprintf("%.2f", tables.Timing.Values[i]),
			fmt.Sprintf("%.4f", tables.PredictedBSFC.Values[i]),
		})
	}
	_ = pterm.DefaultTable.WithHasHeader().WithData(data).Render()

	pterm.Info.Printfln("Best predicted BSFC: %.4f", record.CurrentBest.OverallBSFC)

	if len(record.SuggestedExperiments) > 0 {
		pterm.DefaultSection.Println("Suggested Next Experiments")
		for i, s := range record.SuggestedExperiments {
			pterm.Info.Printfln("%d. RPM=%.0f, lambda=%.3f, timing=%.1f (EI=%.4f)",
				i+1, s.RPM, s.Lambda, s.Timing, s.ExpectedImprovement)
		}
	}

	for _, w := range record.Metadata.Warnings {
		pterm.Warning.Printfln("%s: %s", w.Code, w.Message)
	}
}
