package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/domino14/brassgrade/montecarlo"
	"github.com/domino14/brassgrade/report"
	"github.com/domino14/brassgrade/section"
)

var errNoBands = errors.New("request has no bands")

// SimWorker answers simulation requests over NATS
type SimWorker struct {
	config *WorkerConfig
}

// NewSimWorker creates a new worker
func NewSimWorker(cfg *WorkerConfig) *SimWorker {
	return &SimWorker{config: cfg}
}

// Run connects to NATS and serves requests until ctx is done.
func (w *SimWorker) Run(ctx context.Context) error {
	log.Info().
		Str("nats-url", w.config.NatsURL).
		Str("subject", w.config.Subject).
		Int("threads", w.config.Threads).
		Msg("starting simulation worker")

	var nc *nats.Conn
	err := retry.Do(
		func() error {
			var err error
			nc, err = nats.Connect(w.config.NatsURL, nats.Name("brassgrade-worker"))
			return err
		},
		retry.Context(ctx),
		retry.Attempts(w.config.ConnectAttempts),
		retry.Delay(w.config.ConnectDelay),
		retry.DelayType(func(n uint, err error, config *retry.Config) time.Duration {
			log.Err(err).Uint("n", n).Msg("nats-connect-failed-try-again")
			return retry.BackOffDelay(n, err, config)
		}),
	)
	if err != nil {
		return fmt.Errorf("could not connect to nats: %w", err)
	}
	defer nc.Close()

	sub, err := nc.Subscribe(w.config.Subject, func(m *nats.Msg) {
		log.Info().Int("bytes", len(m.Data)).Msg("request-received")
		if err := m.Respond(w.Handle(ctx, m.Data)); err != nil {
			log.Err(err).Msg("respond-failed")
		}
	})
	if err != nil {
		return err
	}
	if err := nc.Flush(); err != nil {
		return err
	}
	log.Info().Str("subject", w.config.Subject).Msg("listening")

	<-ctx.Done()
	log.Info().Msg("worker shutting down")
	if err := sub.Drain(); err != nil {
		log.Err(err).Msg("drain-failed")
	}
	return ctx.Err()
}

// Handle runs one request and returns the JSON response. It never fails;
// problems are reported in the response's Error field.
func (w *SimWorker) Handle(ctx context.Context, data []byte) []byte {
	var req Request
	var resp *Response
	if err := json.Unmarshal(data, &req); err != nil {
		resp = &Response{Error: fmt.Sprintf("bad request: %v", err)}
	} else {
		resp = w.simulate(ctx, &req)
	}
	out, err := json.Marshal(resp)
	if err != nil {
		// Should never happen; the document holds no NaNs.
		out, _ = json.Marshal(&Response{ID: req.ID, Error: err.Error()})
	}
	return out
}

func (w *SimWorker) simulate(ctx context.Context, req *Request) *Response {
	resp := &Response{ID: req.ID}
	logger := log.With().Str("request-id", req.ID).Logger()

	sec, skipped, err := requestSection(req)
	if err != nil {
		resp.Error = err.Error()
		return resp
	}
	if w.config.MaxSamplesPerBand > 0 && req.Config.SamplesPerBand > w.config.MaxSamplesPerBand {
		resp.Error = fmt.Sprintf("samples per band %d is over the limit of %d",
			req.Config.SamplesPerBand, w.config.MaxSamplesPerBand)
		return resp
	}
	simmer, err := montecarlo.NewSimmer(sec, req.Config)
	if err != nil {
		resp.Error = err.Error()
		return resp
	}
	simmer.SetThreads(w.config.Threads)
	if req.Seed != nil {
		simmer.SetSeed(*req.Seed)
	}

	if w.config.SimTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, w.config.SimTimeout)
		defer cancel()
	}
	ctx = logger.WithContext(ctx)

	res, err := simmer.Simulate(ctx)
	if err != nil {
		resp.Error = err.Error()
		logger.Warn().Err(err).Msg("simulation-did-not-finish")
	}
	if res != nil {
		resp.Result = report.NewDocument(res, skipped)
	}
	zerolog.Ctx(ctx).Info().Int("bands", sec.NumBands()).Int("trials", simmer.Trials()).
		Msg("request-simmed")
	return resp
}

func requestSection(req *Request) (*section.Section, []section.SkippedRow, error) {
	if req.CSV != "" {
		res, err := section.Load(strings.NewReader(req.CSV), section.LoadOptions{})
		if err != nil {
			return nil, nil, err
		}
		if res.Section.NumBands() == 0 {
			return nil, res.Skipped, errNoBands
		}
		return res.Section, res.Skipped, nil
	}
	if len(req.Bands) == 0 {
		return nil, nil, errNoBands
	}
	bands := make([]section.Band, len(req.Bands))
	for i, b := range req.Bands {
		bands[i] = section.NewBand(b.Name, b.TwoYearsAgo, b.LastYear)
	}
	return section.New(bands), nil, nil
}
