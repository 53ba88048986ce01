package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/ZanzyTHEbar/wine-quality-expert/internal/config"
	"github.com/ZanzyTHEbar/wine-quality-expert/internal/prediction"
	"github.com/ZanzyTHEbar/wine-quality-expert/internal/types"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	os.Exit(run(os.Args[1:], cfg, os.Stdout, os.Stderr))
}

// flagName turns a form key into a CLI flag, e.g. fixed_acidity -> fixed-acidity
func flagName(key string) string {
	return strings.ReplaceAll(key, "_", "-")
}

// run parses flags over the artifact locations in cfg and prints one prediction
func run(args []string, cfg config.Config, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("predict", flag.ContinueOnError)
	fs.SetOutput(stderr)

	modelDir := fs.String("model-dir", cfg.ModelDir, "directory holding the model artifacts")
	scalerFile := fs.String("scaler", cfg.ScalerFile, "scaler artifact file")
	regressorFile := fs.String("regressor", cfg.RegressorFile, "regressor artifact file")
	jsonOut := fs.Bool("json", false, "output as JSON instead of text")

	values := prediction.DefaultFeatures().Values()
	for i, key := range prediction.FeatureKeys {
		fs.Float64Var(&values[i], flagName(key), values[i], prediction.FeatureNames[i])
	}

	if err := fs.Parse(args); err != nil {
		return 2
	}
	if fs.NArg() > 0 {
		fmt.Fprintf(stderr, "unexpected arguments: %s\n", strings.Join(fs.Args(), " "))
		return 2
	}

	predictor, err := prediction.LoadPredictor(prediction.NewArtifactStore(*modelDir), *scalerFile, *regressorFile)
	if err != nil {
		fmt.Fprintf(stderr, "error: %v\n", err)
		return 1
	}

	fv, err := prediction.FeatureVectorFromValues(values)
	if err != nil {
		fmt.Fprintf(stderr, "error: %v\n", err)
		return 1
	}

	result, err := predictor.Compute(fv)
	if err != nil {
		fmt.Fprintf(stderr, "error: %v\n", err)
		return 1
	}

	if *jsonOut {
		enc := json.NewEncoder(stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(types.NewPredictResponse(result)); err != nil {
			fmt.Fprintf(stderr, "error: %v\n", err)
			return 1
		}
		return 0
	}

	fmt.Fprintf(stdout, "Predicted score: %.1f\n", result.Score)
	fmt.Fprintf(stdout, "Quality tier:    %s\n", result.Tier)
	return 0
}
