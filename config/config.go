package config

import (
	"fmt"
	"runtime"
	"strings"

	"github.com/kballard/go-shellquote"
	"github.com/samber/lo"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	ConfigPromoted          = "promoted"
	ConfigRelegated         = "relegated"
	ConfigSamplesPerBand    = "samples-per-band"
	ConfigMaxSamplesPerBand = "max-samples-per-band"
	ConfigAbsent            = "absent"
	ConfigThreads           = "threads"
	ConfigSeed              = "seed"
	ConfigEncoding          = "encoding"
	ConfigFormat            = "format"
	ConfigHistogram         = "histogram"
	ConfigTrialLog          = "trial-log"
	ConfigLogLevel          = "log-level"
	ConfigNatsURL           = "nats-url"
	ConfigNatsSubject       = "nats-subject"
	ConfigFile              = "config"
)

// Config wraps viper. Settings come, highest priority first, from flags,
// BRASSGRADE_* environment variables, an optional YAML config file, and the
// defaults below.
type Config struct {
	*viper.Viper
}

// AddFlags registers every setting on fs.
func AddFlags(fs *pflag.FlagSet) {
	fs.Int(ConfigPromoted, 2, "number of bands promoted")
	fs.Int(ConfigRelegated, 2, "number of bands relegated")
	fs.Int(ConfigSamplesPerBand, 1000, "trials per band; competing bands get this times the number of bands")
	fs.String(ConfigAbsent, "", "absent bands, shell-quoted: '\"Black Dyke\" Cory'")
	fs.Int(ConfigThreads, runtime.NumCPU(), "number of threads to sim with")
	fs.Uint64(ConfigSeed, 0, "seed for a reproducible run; unset draws fresh entropy")
	fs.String(ConfigEncoding, "utf-8", "encoding of the section file (utf-8, windows-1252, iso-8859-1)")
	fs.String(ConfigFormat, "text", "output format: text, json or yaml")
	fs.Bool(ConfigHistogram, false, "chart each band's final standings (text format only)")
	fs.String(ConfigTrialLog, "", "write every trial to this file as YAML")
	fs.String(ConfigLogLevel, "info", "debug, info or disabled")
	fs.String(ConfigNatsURL, "nats://127.0.0.1:4222", "NATS server for the worker")
	fs.String(ConfigNatsSubject, "brassgrade.simulate", "subject the worker answers on")
	fs.Int(ConfigMaxSamplesPerBand, 100000, "largest samples-per-band the worker accepts")
	fs.String(ConfigFile, "", "optional YAML config file")
}

// DefaultConfig returns a config with defaults and environment only.
func DefaultConfig() *Config {
	fs := pflag.NewFlagSet("brassgrade", pflag.ContinueOnError)
	AddFlags(fs)
	c := &Config{}
	// A config file named in the environment that can't be read is ignored
	// here; the defaults still stand.
	_ = c.Load(fs)
	return c
}

// Load builds the config from a flag set that AddFlags was called on. The
// flags should already be parsed.
func (c *Config) Load(fs *pflag.FlagSet) error {
	c.Viper = viper.New()
	c.SetEnvPrefix("brassgrade")
	c.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	c.AutomaticEnv()
	if err := c.BindPFlags(fs); err != nil {
		return err
	}
	if path := c.GetString(ConfigFile); path != "" {
		c.SetConfigFile(path)
		c.SetConfigType("yaml")
		if err := c.ReadInConfig(); err != nil {
			return err
		}
	}
	return nil
}

// AbsentBands splits the absent setting. Names with spaces must be quoted,
// just as on a shell command line. A YAML list is accepted as is.
func (c *Config) AbsentBands() ([]string, error) {
	var names []string
	if v, ok := c.Get(ConfigAbsent).([]any); ok {
		names = lo.Map(v, func(n any, _ int) string { return strings.TrimSpace(fmt.Sprint(n)) })
	} else {
		var err error
		names, err = shellquote.Split(c.GetString(ConfigAbsent))
		if err != nil {
			return nil, err
		}
	}
	names = lo.Filter(names, func(n string, _ int) bool { return n != "" })
	return lo.Uniq(names), nil
}

// Seed returns the configured seed and whether one was set at all.
func (c *Config) Seed() (uint64, bool) {
	if !c.IsSet(ConfigSeed) {
		return 0, false
	}
	return c.GetUint64(ConfigSeed), true
}
