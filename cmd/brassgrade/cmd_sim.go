package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/domino14/brassgrade/config"
	"github.com/domino14/brassgrade/montecarlo"
	"github.com/domino14/brassgrade/report"
	"github.com/domino14/brassgrade/section"
)

// simConfig builds the simulation config out of the settings.
func simConfig(cfg *config.Config) (montecarlo.Config, error) {
	absent, err := cfg.AbsentBands()
	if err != nil {
		return montecarlo.Config{}, fmt.Errorf("bad absent list: %w", err)
	}
	return montecarlo.Config{
		Promoted:       cfg.GetInt(config.ConfigPromoted),
		Relegated:      cfg.GetInt(config.ConfigRelegated),
		SamplesPerBand: cfg.GetInt(config.ConfigSamplesPerBand),
		Absent:         absent,
	}, nil
}

func loadSection(cfg *config.Config, path string) (*section.LoadResult, error) {
	res, err := section.LoadFile(path, section.LoadOptions{
		Encoding: cfg.GetString(config.ConfigEncoding)})
	if err != nil {
		return nil, err
	}
	for _, s := range res.Skipped {
		log.Warn().Int("line", s.Line).Str("row", s.Raw).Str("reason", s.Reason).
			Msg("skipping row")
	}
	return res, nil
}

func newSimCmd(cfg *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "sim <section.csv>",
		Short: "Sim a section and print each band's outcome table",
		Long: `sim reads a CSV file of band name, result two years ago, and result
last year, one band per row. Rows that don't parse are skipped with a
warning. Ctrl-C stops the run early and prints what was simmed so far.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			loaded, err := loadSection(cfg, args[0])
			if err != nil {
				return err
			}
			simCfg, err := simConfig(cfg)
			if err != nil {
				return err
			}
			simmer, err := montecarlo.NewSimmer(loaded.Section, simCfg)
			if err != nil {
				return err
			}
			simmer.SetThreads(cfg.GetInt(config.ConfigThreads))
			if seed, ok := cfg.Seed(); ok {
				simmer.SetSeed(seed)
			}
			var trialLog *trialLogFile
			if path := cfg.GetString(config.ConfigTrialLog); path != "" {
				trialLog, err = createTrialLog(path)
				if err != nil {
					return err
				}
				simmer.SetLogStream(trialLog.w)
			}

			ctx, cancel := signalContext()
			defer cancel()
			ctx = log.Logger.WithContext(ctx)

			res, simErr := simmer.Simulate(ctx)
			if trialLog != nil {
				if err := trialLog.close(); err != nil {
					return err
				}
			}
			if res == nil {
				return simErr
			}
			if simErr != nil && !errors.Is(simErr, context.Canceled) {
				return simErr
			}
			out := bufio.NewWriter(cmd.OutOrStdout())
			err = report.Write(out, cfg.GetString(config.ConfigFormat), res, loaded.Skipped,
				report.Options{Histogram: cfg.GetBool(config.ConfigHistogram)})
			if err != nil {
				return err
			}
			return out.Flush()
		},
	}
}

type trialLogFile struct {
	f *os.File
	w *bufio.Writer
}

func createTrialLog(path string) (*trialLogFile, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, err
	}
	return &trialLogFile{f: f, w: bufio.NewWriter(f)}, nil
}

// close flushes and closes the file, reporting the first error.
func (t *trialLogFile) close() error {
	err := t.w.Flush()
	if cerr := t.f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return fmt.Errorf("writing trial log: %w", err)
	}
	return nil
}
