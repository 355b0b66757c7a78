// Package montecarlo estimates promotion and relegation chances in a graded
// section by simulating the next contest many times over.
package montecarlo

import (
	"context"
	"errors"
	"io"
	"runtime"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v3"

	"github.com/domino14/brassgrade/section"
)

/*
	How to simulate:

	For band in section:
		For trial in trials:
			draw a finishing position for every band; absent bands
			all take the place after the last competing band
			add the positions to the prior scores
			sort the totals; find promotion and relegation cutoffs
			tally the band's outcome under the position it drew

		convert the tallies to percentages
*/

// MaxLoggedTrials caps how many trials per band go to the log stream.
const MaxLoggedTrials = 7500

// ctxCheckInterval is how many trials a thread runs between checks of the
// context.
const ctxCheckInterval = 64

// trialChunk is the number of trials drawn from one random stream. Threads
// take chunks in turn, so the draws do not depend on the thread count.
const trialChunk = 512

var errAlreadySimming = errors.New("a simulation is already running")

// LogTrial is a single trial, serialized to the log stream for debugging.
type LogTrial struct {
	Band      string    `json:"band" yaml:"band"`
	Trial     int       `json:"trial" yaml:"trial"`
	Thread    int       `json:"thread" yaml:"thread"`
	Positions []int     `json:"positions" yaml:"positions,flow"`
	Finals    []float64 `json:"finals" yaml:"finals,flow"`
	Outcome   string    `json:"outcome" yaml:"outcome"`
	Standing  int       `json:"standing" yaml:"standing"`
}

// BandResult is the finished table of one band.
type BandResult struct {
	Name   string
	Index  int
	Absent bool
	// Trials is how many trials ran; fewer than Planned if interrupted.
	Trials  int
	Planned int
	Rows    []Row
	// Standings[i] counts trials in which the band finished i+1 overall.
	Standings     []int
	StandingMean  float64
	StandingStdev float64
}

// Promoted is the overall promotion chance in percent, over all the band's
// trials regardless of the position drawn. It is NaN if no trial ran.
func (b *BandResult) Promoted() float64 {
	p := 0
	for _, r := range b.Rows {
		p += r.Counts.Promoted
	}
	return percent(p, b.Trials)
}

// Result holds the tables of every band simmed, in section order.
type Result struct {
	Config     Config
	NumPresent int
	Bands      []*BandResult
	// Interrupted is set when the context was canceled before every band
	// finished. The tables that are present are consistent but may be short.
	Interrupted bool
}

// ByName maps band names to their results. If a name is repeated the first
// band wins.
func (r *Result) ByName() map[string]*BandResult {
	m := make(map[string]*BandResult, len(r.Bands))
	for _, b := range r.Bands {
		if _, ok := m[b.Name]; !ok {
			m[b.Name] = b
		}
	}
	return m
}

// Simmer runs the simulation for a section.
type Simmer struct {
	sec      *section.Section
	cfg      Config
	prior    []float64
	scenario *Scenario

	threads   int
	sources   SourceFunc
	logStream io.Writer

	trialCount atomic.Uint64
	simming    atomic.Bool
}

// NewSimmer validates cfg against the section. It fails with
// ErrInvalidConfig before anything is simmed.
func NewSimmer(sec *section.Section, cfg Config) (*Simmer, error) {
	absent, err := cfg.Validate(sec)
	if err != nil {
		return nil, err
	}
	return &Simmer{
		sec:      sec,
		cfg:      cfg,
		prior:    sec.PriorScores(),
		scenario: NewScenario(absent),
		threads:  max(1, runtime.NumCPU()),
		sources:  EntropySources(),
	}, nil
}

func (s *Simmer) SetThreads(threads int) {
	s.threads = max(1, threads)
}

func (s *Simmer) Threads() int {
	return s.threads
}

// SetSeed makes the simulation reproducible.
func (s *Simmer) SetSeed(seed uint64) {
	s.sources = SeededSources(seed)
}

// SetSources replaces where the randomness comes from.
func (s *Simmer) SetSources(f SourceFunc) {
	s.sources = f
}

// SetLogStream writes every trial (up to MaxLoggedTrials per band) to l as
// YAML documents.
func (s *Simmer) SetLogStream(l io.Writer) {
	s.logStream = l
}

func (s *Simmer) Scenario() *Scenario {
	return s.scenario
}

func (s *Simmer) IsSimming() bool {
	return s.simming.Load()
}

// Trials is the number of trials finished by the current or last run.
func (s *Simmer) Trials() int {
	return int(s.trialCount.Load())
}

// Simulate sims every band in the section, one after the other. It is a
// blocking function. If ctx is canceled it stops between trials and returns
// what it has so far, marked Interrupted, along with the context's error.
func (s *Simmer) Simulate(ctx context.Context) (*Result, error) {
	logger := zerolog.Ctx(ctx)
	if !s.simming.CompareAndSwap(false, true) {
		return nil, errAlreadySimming
	}
	defer s.simming.Store(false)
	s.trialCount.Store(0)

	logChan, stopWriter := s.startLogWriter(logger)
	defer stopWriter()

	res := &Result{Config: s.cfg, NumPresent: s.scenario.NumPresent()}
	tstart := time.Now()
	for idx := range s.sec.NumBands() {
		br, err := s.simBand(ctx, idx, logChan)
		if br != nil {
			res.Bands = append(res.Bands, br)
		}
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				res.Interrupted = true
				logger.Info().Int("bands-done", idx).Uint64("trials", s.trialCount.Load()).
					Msg("sim-interrupted")
			}
			return res, err
		}
	}
	elapsed := time.Since(tstart)
	trials := s.trialCount.Load()
	logger.Info().Int("bands", s.sec.NumBands()).Uint64("trials", trials).
		Float64("trials-per-sec", float64(trials)/elapsed.Seconds()).
		Dur("elapsed", elapsed).Msg("sim-ended")
	return res, nil
}

// SimulateBand sims a single band of the section.
func (s *Simmer) SimulateBand(ctx context.Context, idx int) (*BandResult, error) {
	if !s.simming.CompareAndSwap(false, true) {
		return nil, errAlreadySimming
	}
	defer s.simming.Store(false)
	s.trialCount.Store(0)

	logChan, stopWriter := s.startLogWriter(zerolog.Ctx(ctx))
	defer stopWriter()
	return s.simBand(ctx, idx, logChan)
}

func (s *Simmer) startLogWriter(logger *zerolog.Logger) (chan []byte, func()) {
	if s.logStream == nil {
		return nil, func() {}
	}
	logChan := make(chan []byte)
	done := make(chan struct{})
	writer := errgroup.Group{}
	writer.Go(func() error {
		defer func() {
			logger.Debug().Msg("log writer exiting")
		}()
		var writeErr error
		for {
			select {
			case bts := <-logChan:
				if writeErr != nil {
					continue
				}
				if _, writeErr = s.logStream.Write(bts); writeErr != nil {
					logger.Err(writeErr).Msg("trial-log-write-failed")
				}
			case <-done:
				return writeErr
			}
		}
	})
	return logChan, func() {
		close(done)
		writer.Wait()
	}
}

// simBand cuts the band's trials into chunks of trialChunk. Threads pull the
// next chunk off a shared counter and fill their own table; the tables are
// summed at the end, so nothing else is shared while the trials run.
func (s *Simmer) simBand(ctx context.Context, idx int, logChan chan []byte) (*BandResult, error) {
	logger := zerolog.Ctx(ctx)
	absent := s.scenario.IsAbsent(idx)
	nTrials := s.cfg.SamplesPerBand
	if !absent {
		nTrials *= s.sec.NumBands()
	}
	nChunks := (nTrials-1)/trialChunk + 1
	threads := min(s.threads, nChunks)

	var nextChunk atomic.Int64
	partials := make([]*Table, threads)
	g := errgroup.Group{}
	for t := range threads {
		partials[t] = newTable(s.scenario, absent)
		g.Go(func() error {
			for {
				chunk := int(nextChunk.Add(1) - 1)
				if chunk >= nChunks {
					return nil
				}
				from := chunk * trialChunk
				to := min(from+trialChunk, nTrials)
				if err := s.simTrials(ctx, idx, t, chunk, from, to, partials[t], logChan); err != nil {
					return err
				}
			}
		})
	}
	err := g.Wait()

	table := partials[0]
	for _, p := range partials[1:] {
		table.Merge(p)
	}
	br := &BandResult{
		Name:          s.sec.Band(idx).Name,
		Index:         idx,
		Absent:        absent,
		Trials:        table.Trials(),
		Planned:       nTrials,
		Rows:          table.Rows(),
		Standings:     table.standings,
		StandingMean:  table.standing.Mean(),
		StandingStdev: table.standing.Stdev(),
	}
	logger.Debug().Str("band", br.Name).Bool("absent", absent).Int("trials", br.Trials).
		Int("threads", threads).Msg("band-simmed")
	return br, err
}

func (s *Simmer) simTrials(ctx context.Context, idx, thread, chunk, from, to int, table *Table,
	logChan chan []byte) error {

	logger := zerolog.Ctx(ctx)
	name := s.sec.Band(idx).Name
	src := s.sources(name, idx, chunk)

	for trial := from; trial < to; trial++ {
		if (trial-from)%ctxCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				return err
			}
		}
		positions := s.scenario.Draw(src)
		finals := Combine(s.prior, positions)
		outcome := NewCutoffs(finals, s.cfg.Promoted, s.cfg.Relegated).Classify(finals[idx])
		standing := Standing(finals, idx)
		table.Add(positions[idx], outcome, standing)
		s.trialCount.Add(1)

		if logChan != nil && trial < MaxLoggedTrials {
			out, err := yaml.Marshal([]LogTrial{{
				Band:      name,
				Trial:     trial,
				Thread:    thread,
				Positions: positions,
				Finals:    finals,
				Outcome:   outcome.String(),
				Standing:  standing,
			}})
			if err != nil {
				logger.Error().Err(err).Msg("marshalling log")
				return err
			}
			logChan <- out
		}
	}
	return nil
}

// Simulate is a convenience wrapper: it validates cfg, then sims every band
// with fresh entropy on all CPUs.
func Simulate(ctx context.Context, sec *section.Section, cfg Config) (*Result, error) {
	s, err := NewSimmer(sec, cfg)
	if err != nil {
		return nil, err
	}
	return s.Simulate(ctx)
}
