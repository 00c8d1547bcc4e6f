package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/richard-senior/knockouts/internal/logger"
	"github.com/richard-senior/knockouts/internal/processor"
	"github.com/richard-senior/knockouts/pkg/cache"
	"github.com/richard-senior/knockouts/pkg/dixoncoles"
)

func main() {
	debug := flag.Bool("debug", false, "Enable debug logging")
	inputFile := flag.String("input", "", "JSON batch request file, '-' for stdin")
	outputFile := flag.String("output", "", "Output file path (if not provided, stdout will be used)")
	posteriorLocation := flag.String("posterior", os.Getenv("KNOCKOUTS_POSTERIOR"), "Posterior samples file or http(s) URL")
	configPath := flag.String("config", "", "YAML configuration file")
	cachePath := flag.String("cache", "", "SQLite file caching posterior samples")
	refresh := flag.Bool("refresh", false, "Reload the posterior even if the cached copy looks current")
	home := flag.String("home", "", "Home (first named) team")
	away := flag.String("away", "", "Away (second named) team")
	neutral := flag.Bool("neutral", true, "Neutral venue")
	aet := flag.Bool("aet", true, "Knockout match, draws go to extra time")
	maxGoals := flag.Int("max-goals", 0, "Largest goal count per side (default: from config)")
	asJSON := flag.Bool("json", false, "Print the full prediction as JSON")
	timeout := flag.Duration("timeout", time.Minute, "Give up after this long")
	flag.Parse()

	logger.SetShowDateTime(true)
	if *debug {
		logger.SetLevel(logger.DEBUG)
		logger.Debug("Debug logging enabled")
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	p := &processor.Processor{}
	if *cachePath != "" {
		sqliteCache, err := cache.OpenSQLite(*cachePath)
		if err != nil {
			logger.Fatal("Failed to open posterior cache", err)
		}
		defer sqliteCache.Close()
		p.Cache = sqliteCache
	}

	var input []byte
	var err error
	switch {
	case *inputFile == "-":
		input, err = io.ReadAll(os.Stdin)
	case *inputFile != "":
		input, err = os.ReadFile(*inputFile)
	default:
		if *home == "" || *away == "" {
			fmt.Fprintln(os.Stderr, "either -input or both -home and -away are required")
			flag.Usage()
			os.Exit(2)
		}
		input, err = json.Marshal(processor.Request{
			RequestID: fmt.Sprintf("cli-%d", os.Getpid()),
			Posterior: *posteriorLocation,
			Config:    *configPath,
			Fixtures: []processor.Fixture{{
				Home:      *home,
				Away:      *away,
				Neutral:   neutral,
				ExtraTime: aet,
				MaxGoals:  setInt(flag.CommandLine, "max-goals", *maxGoals),
			}},
			Refresh: *refresh,
		})
	}
	if err != nil {
		logger.Fatal("Failed to read request", err)
	}

	result, err := p.ProcessRequest(ctx, input)
	if err != nil {
		logger.Fatal("Failed to process request", err)
	}

	if *outputFile != "" {
		if err := os.WriteFile(*outputFile, result, 0644); err != nil {
			logger.Fatal("Failed to write to output file", err)
		}
		return
	}
	if *asJSON || *inputFile != "" {
		fmt.Println(string(result))
		return
	}
	if err := printSummary(os.Stdout, result); err != nil {
		logger.Fatal("Failed to print prediction", err)
	}
}

// setInt returns &value when the named flag was given on the command line
func setInt(fs *flag.FlagSet, name string, value int) *int {
	set := false
	fs.Visit(func(f *flag.Flag) {
		if f.Name == name {
			set = true
		}
	})
	if !set {
		return nil
	}
	return &value
}

// printSummary writes the scoreline lines and match odds of each prediction
func printSummary(w io.Writer, result []byte) error {
	var response struct {
		processor.Response
		Error *struct {
			Code    string `json:"code"`
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.Unmarshal(result, &response); err != nil {
		return err
	}
	if response.Error != nil {
		return fmt.Errorf("%s: %s", response.Error.Code, response.Error.Message)
	}

	for _, prediction := range response.Predictions {
		fmt.Fprintf(w, "%s v %s\n", prediction.HomeTeam, prediction.AwayTeam)
		for _, line := range prediction.Final.Lines() {
			fmt.Fprintln(w, line)
		}
		printOdds(w, prediction)
	}
	return nil
}

func printOdds(w io.Writer, prediction *dixoncoles.Prediction) {
	fmt.Fprintf(w, "home %.1f%%  draw %.1f%%  away %.1f%%\n",
		100*prediction.Odds.Home, 100*prediction.Odds.Draw, 100*prediction.Odds.Away)
	fmt.Fprintf(w, "most likely %d-%d (%.1f%%)\n",
		prediction.MostLikelyHome, prediction.MostLikelyAway, 100*prediction.MostLikelyProb)
	for _, warning := range prediction.Warnings {
		fmt.Fprintln(w, "warning:", warning.Error())
	}
}
