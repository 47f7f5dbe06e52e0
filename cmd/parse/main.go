// Command parse runs a single chat export (file or ZIP archive) through the
// parsing pipeline and prints the result as JSON.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/chatlens/chatlens/internal/archive"
	"github.com/chatlens/chatlens/internal/logger"
	"github.com/chatlens/chatlens/internal/parser"
)

func main() {
	var (
		input    = flag.String("input", "", "path to a chat export (.json, .html or .zip)")
		output   = flag.String("output", "", "write the result to this file instead of stdout")
		pretty   = flag.Bool("pretty", false, "indent the JSON output")
		logLevel = flag.String("log-level", "warn", "log level (debug, info, warn, error)")
	)
	flag.Parse()

	if *input == "" {
		fmt.Fprintln(os.Stderr, "usage: parse -input <file> [-pretty]")
		os.Exit(2)
	}

	if err := logger.Init(*logLevel, ""); err != nil {
		fmt.Fprintln(os.Stderr, "failed to init logger:", err)
		os.Exit(1)
	}
	log := logger.Get()

	content, err := os.ReadFile(*input)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to read input")
	}

	filename := filepath.Base(*input)
	docs, err := archive.Expand(filename, content)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to expand input")
	}

	result, err := parser.NewPipeline(log).Run(filename, docs)
	if err != nil {
		log.Fatal().Err(err).Msg("parse failed")
	}

	out := os.Stdout
	if *output != "" {
		f, err := os.Create(*output)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to create output file")
		}
		defer f.Close()
		out = f
	}

	enc := json.NewEncoder(out)
	if *pretty {
		enc.SetIndent("", "  ")
	}
	if err := enc.Encode(result); err != nil {
		log.Fatal().Err(err).Msg("failed to encode result")
	}
}
