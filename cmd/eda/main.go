// The eda command generates the exploratory-analysis plot battery over a
// telemetry dataset and writes the PNGs to an output directory.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"battery-buddy/internal/eda"
	"battery-buddy/internal/logger"
)

func main() {
	dataPath := flag.String("data", "data/data.json", "path to the telemetry dataset (JSON array of rows)")
	outDir := flag.String("out", "eda_output", "directory for the generated plots")
	flag.Parse()

	_ = godotenv.Load()
	if err := logger.Init(); err != nil {
		fmt.Fprintf(os.Stderr, "startup failed: %v\n", err)
		os.Exit(1)
	}

	ctx := context.Background()

	frame, err := eda.LoadFrame(*dataPath)
	if err != nil {
		logger.ErrorWithErr(ctx, "Failed to load dataset", err, "path", *dataPath)
		os.Exit(1)
	}
	logger.Info(ctx, "Dataset loaded", "rows", frame.Len(), "columns", len(frame.Columns()))

	if err := eda.NewSuite(frame, *outDir).Run(ctx); err != nil {
		logger.ErrorWithErr(ctx, "EDA run failed", err)
		os.Exit(1)
	}
	logger.Info(ctx, "EDA plots written", "dir", *outDir)
}
