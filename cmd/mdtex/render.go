package main

import (
	"context"
	"fmt"

	mdtex "github.com/alnah/go-mdtex"
	"github.com/alnah/go-mdtex/internal/config"
)

// runRender orchestrates the render command: flags, config, discovery,
// pool fan-out, result reporting.
func runRender(ctx context.Context, args []string, env *Environment) error {
	flags, inputs, err := parseRenderFlags(args)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrFlagParse, err)
	}

	warnUnknownEnvVars(env.Stderr)

	if err := validateWorkers(flags.workers); err != nil {
		return err
	}

	envCfg := loadEnvConfig()

	cfg, err := loadRenderConfig(flags.common.config, envCfg)
	if err != nil {
		return err
	}

	// Merge CLI flags into config (CLI wins), then re-validate: flags can
	// introduce violations a valid file never had.
	mergeFlags(flags, cfg)
	if err := cfg.Validate(); err != nil {
		return err
	}

	files, err := discoverInputs(inputs, flags.output, flags.recursive)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		return fmt.Errorf("%w: no markdown files found", ErrNoInput)
	}

	workers := flags.workers
	if workers == 0 {
		workers = envCfg.Workers
	}
	poolSize := mdtex.ResolvePoolSize(workers)
	if flags.common.verbose {
		fmt.Fprintf(env.Stderr, "Pool size: %d\n", poolSize)
	}

	pool := &poolAdapter{pool: mdtex.NewConverterPool(poolSize, buildOptions(cfg)...)}

	// Converters are created lazily, so surface option errors here instead
	// of as one failure line per input file.
	probe, err := pool.Acquire()
	if err != nil {
		return err
	}
	pool.Release(probe)

	params := &renderParams{
		standalone:   cfg.Standalone,
		rewritePaths: flags.rewritePaths,
	}

	results := renderBatch(ctx, pool, files, params)

	failed := printResults(results, flags.common.quiet, flags.common.verbose, env)
	if failed > 0 {
		return fmt.Errorf("%d conversion(s) failed", failed)
	}

	return nil
}

// loadRenderConfig returns the effective config. Path priority: --config
// flag, MDTEX_CONFIG, discovery in the standard locations, built-in
// defaults. Only explicit paths make absence an error.
func loadRenderConfig(flagPath string, envCfg *envConfig) (*config.Config, error) {
	path := flagPath
	if path == "" {
		path = envCfg.ConfigPath
	}

	if path == "" {
		found, ok := config.Discover()
		if !ok {
			return config.DefaultConfig(), nil
		}
		path = found
	}

	cfg, err := config.LoadConfig(path)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	return cfg, nil
}

// mergeFlags merges CLI flags into config. CLI values override config
// values; the Changed bit means an explicitly passed default still wins.
func mergeFlags(flags *renderFlags, cfg *config.Config) {
	if flags.changed("text-delim") {
		cfg.TextDelimiter = flags.delims.text
	}
	if flags.changed("math-delim") {
		cfg.MathDelimiter = flags.delims.math
	}
	if flags.changed("preamble-delim") {
		cfg.PreambleDelimiter = flags.delims.preamble
	}
	if flags.changed("preamble") {
		cfg.ExtraPreamble = flags.preamble
	}
	if flags.changed("dvipng-args") {
		cfg.DvipngArgs = flags.dvipngArgs
	}
	if flags.changed("cache") {
		cfg.CachePath = flags.cache
	}
	if flags.changed("style") {
		cfg.Style = flags.style
	}
	if flags.changed("standalone") {
		cfg.Standalone = flags.standalone
	}
	if flags.changed("no-signature") {
		cfg.Signature = !flags.noSignature
	}
}

// buildOptions translates the merged config into converter options.
func buildOptions(cfg *config.Config) []mdtex.Option {
	opts := []mdtex.Option{
		mdtex.WithDelimiters(cfg.TextDelimiter, cfg.MathDelimiter, cfg.PreambleDelimiter),
		mdtex.WithDvipngArgs(cfg.DvipngArgs),
		mdtex.WithCachePath(cfg.CachePath),
		mdtex.WithStyle(cfg.Style),
		mdtex.WithStandalone(cfg.Standalone),
		mdtex.WithSignature(cfg.Signature),
		mdtex.WithSignatureDate(cfg.SignatureDate),
	}
	if cfg.ExtraPreamble != "" {
		opts = append(opts, mdtex.WithExtraPreamble(cfg.ExtraPreamble))
	}
	return opts
}
