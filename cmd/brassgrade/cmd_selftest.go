package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/domino14/brassgrade/config"
	"github.com/domino14/brassgrade/montecarlo"
	"github.com/domino14/brassgrade/stats"
)

// Below this p-value a band's positions are reported as suspicious.
const selftestAlpha = 0.001

func newSelftestCmd(cfg *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "selftest <section.csv>",
		Short: "Check that positions are dealt uniformly for the section",
		Long: `selftest draws samples-per-band times the number of bands scenarios
and runs a chi-square test of each competing band's positions against
a uniform spread.`,
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
			var src montecarlo.Source
			if seed, ok := cfg.Seed(); ok {
				src = montecarlo.NewSeededSource(seed, "selftest")
			} else {
				src = montecarlo.EntropySources()("selftest", 0, 0)
			}
			sec := loaded.Section
			trials := simCfg.SamplesPerBand * sec.NumBands()
			counts, err := montecarlo.PositionCounts(sec, simCfg, src, trials)
			if err != nil {
				return err
			}
			absent, _ := simCfg.Validate(sec)
			nPresent := montecarlo.NewScenario(absent).NumPresent()

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintf(tw, "Band\tchi2\tp\t\n")
			failed := 0
			for i, name := range sec.Names() {
				if absent[i] {
					fmt.Fprintf(tw, "%s\t-\t-\tabsent\n", name)
					continue
				}
				chi2, p, err := stats.ChiSquareUniform(counts[i][:nPresent])
				if err != nil {
					fmt.Fprintf(tw, "%s\t-\t-\t%v\n", name, err)
					continue
				}
				verdict := "ok"
				if p < selftestAlpha {
					verdict = "SUSPICIOUS"
					failed++
				}
				fmt.Fprintf(tw, "%s\t%.2f\t%.4f\t%s\n", name, chi2, p, verdict)
			}
			if err := tw.Flush(); err != nil {
				return err
			}
			if failed > 0 {
				return fmt.Errorf("%d band(s) drew positions unevenly", failed)
			}
			return nil
		},
	}
}
