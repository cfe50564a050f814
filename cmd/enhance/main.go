// Command enhance applies a preset to one or more images and writes the
// results next to the originals or into a chosen directory.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/rawstory/enhance/pkg/enhance"
	"github.com/rawstory/enhance/pkg/enhance/drawer"
	"github.com/rawstory/enhance/pkg/enhance/progress"
)

func main() {
	presetName := flag.String("preset", "standard", "preset to apply, see -list")
	formatName := flag.String("format", "jpg", "output format, jpg or png")
	outDir := flag.String("out", "", "output directory, defaults to the input's directory")
	jobs := flag.Int("jobs", 2, "maximum concurrent enhancements")
	graphFile := flag.String("graph", "", "write a stage timing graph in DOT format to this file")
	preview := flag.Bool("preview", false, "write fast previews instead of full enhancements")
	verbose := flag.Bool("verbose", false, "log every stage transition")
	list := flag.Bool("list", false, "list available presets and exit")
	flag.Parse()

	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()
	if !*verbose {
		log = log.Level(zerolog.WarnLevel)
	}

	if *list {
		for _, preset := range enhance.Presets() {
			fmt.Println(preset)
		}

		return
	}

	files := flag.Args()
	if len(files) == 0 {
		fmt.Fprintln(os.Stderr, "usage: enhance [flags] file...")
		flag.PrintDefaults()
		os.Exit(2)
	}

	opts := []enhance.RunnerOption{enhance.RunnerLogger(log)}
	if *graphFile != "" {
		// The drawer records a single run.
		*jobs = 1

		opts = append(opts, enhance.RunnerDrawer(drawer.NewDOTDrawer(*graphFile)))
	}

	runner := enhance.NewRunner(opts...)
	registry := progress.NewRegistry(log)

	grp, ctx := errgroup.WithContext(context.Background())
	grp.SetLimit(*jobs)

	for _, file := range files {
		file := file

		grp.Go(func() error {
			return processFile(ctx, runner, registry, file, *presetName, *formatName, *outDir, *preview)
		})
	}

	if err := grp.Wait(); err != nil {
		log.Error().Err(err).Msg("enhancement failed")
		os.Exit(1)
	}
}

func processFile(
	ctx context.Context,
	runner *enhance.Runner,
	registry *progress.Registry,
	file, presetName, formatName, outDir string,
	preview bool,
) error {
	data, err := os.ReadFile(file)
	if err != nil {
		return fmt.Errorf("unable to read %s: %w", file, err)
	}

	registry.Create(file)
	defer registry.Remove(file)

	if preview {
		out, err := runner.Preview(ctx, data)
		if err != nil {
			return fmt.Errorf("unable to preview %s: %w", file, err)
		}

		return writeOutput(file, outDir, "_preview", "jpg", out)
	}

	result, err := runner.Run(ctx, enhance.Request{
		Data:   data,
		Preset: presetName,
		Format: formatName,
		Report: registry.Reporter(file),
	})
	if err != nil {
		return fmt.Errorf("unable to enhance %s: %w", file, err)
	}

	return writeOutput(file, outDir, "_"+string(result.Preset), string(enhance.ResolveFormat(formatName)), result.Data)
}

func writeOutput(file, outDir, suffix, ext string, data []byte) error {
	dir := outDir
	if dir == "" {
		dir = filepath.Dir(file)
	}

	base := strings.TrimSuffix(filepath.Base(file), filepath.Ext(file))
	target := filepath.Join(dir, base+suffix+"."+ext)

	if err := os.WriteFile(target, data, 0o644); err != nil {
		return fmt.Errorf("unable to write %s: %w", target, err)
	}

	return nil
}
