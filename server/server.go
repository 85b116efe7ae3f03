// Package server drives whole episodes: gather actions, step the engine,
// persist the log. Batch runs fan episodes out with bounded parallelism.
package server

import (
	"context"
	"errors"
	"fmt"

	"github.com/hashicorp/go-hclog"
	"golang.org/x/sync/errgroup"

	"github.com/voocel/crucible/agent"
	"github.com/voocel/crucible/env"
	"github.com/voocel/crucible/episode"
	"github.com/voocel/crucible/evaluation"
	"github.com/voocel/crucible/grounding"
	"github.com/voocel/crucible/scenario"
	"github.com/voocel/crucible/schema"
)

// EpisodeConfig is everything one episode needs.
type EpisodeConfig struct {
	Profile   *scenario.Profile
	Agents    [2]agent.Actor
	Grounding *grounding.Engine
	Terminal  []evaluation.Evaluator
	Tag       string
	Models    []string
	Sink      episode.Sink
	Logger    hclog.Logger

	// EnvOptions tune the engine beyond the defaults, e.g. action order
	// or turn budgets.
	EnvOptions []env.Option
}

func (c *EpisodeConfig) setDefaults() {
	if c.Logger == nil {
		c.Logger = hclog.NewNullLogger()
	}
}

// RunEpisode plays one episode to termination and returns its log. The
// log is emitted even on abnormal termination, with a diagnostic note.
func RunEpisode(ctx context.Context, cfg EpisodeConfig) (*episode.Log, error) {
	cfg.setDefaults()

	opts := append([]env.Option{}, cfg.EnvOptions...)
	opts = append(opts, env.WithTerminalEvaluators(cfg.Terminal...), env.WithLogger(cfg.Logger))
	e := env.NewEngine(cfg.Profile, cfg.Agents, cfg.Grounding, opts...)

	obs := e.Reset()
	var lastResp *env.Response
	for !e.Terminated() {
		if err := ctx.Err(); err != nil {
			return emitLog(ctx, cfg, e, lastResp, "episode cancelled: "+err.Error()), err
		}

		var actions [2]schema.AgentAction
		g, gctx := errgroup.WithContext(ctx)
		for i := range cfg.Agents {
			g.Go(func() error {
				actions[i] = cfg.Agents[i].Act(gctx, obs[i])
				return nil
			})
		}
		_ = g.Wait()

		nextObs, resp, err := e.AStep(ctx, actions)
		if err != nil {
			cfg.Logger.Error("episode terminated abnormally",
				"scenario", cfg.Profile.Codename, "turn", e.TurnNumber(), "error", err)
			return emitLog(ctx, cfg, e, lastResp, err.Error()), err
		}
		obs = nextObs
		lastResp = resp
	}

	log := emitLog(ctx, cfg, e, lastResp, "")
	cfg.Logger.Info("episode finished",
		"scenario", cfg.Profile.Codename, "turns", e.TurnNumber(), "tag", cfg.Tag)
	return log, nil
}

func emitLog(ctx context.Context, cfg EpisodeConfig, e *env.Engine, resp *env.Response, diagnostic string) *episode.Log {
	opts := []episode.LogOption{
		episode.WithResponse(resp),
		episode.WithTag(cfg.Tag),
		episode.WithModels(cfg.Models...),
	}
	if diagnostic != "" {
		opts = append(opts, episode.WithDiagnostic(diagnostic))
	}
	names := []string{cfg.Agents[0].Name(), cfg.Agents[1].Name()}
	log := episode.NewLog(cfg.Profile, names, e.Inbox(), opts...)

	if cfg.Sink != nil {
		if err := cfg.Sink.Save(ctx, log); err != nil {
			cfg.Logger.Error("saving episode log failed", "id", log.ID, "error", err)
		}
	}
	return log
}

// RunBatch plays the configured episodes with at most maxConcurrent in
// flight. One episode's failure does not stop the others; the returned
// error joins all failures, and the log slice is indexed like configs
// with nil entries for episodes that produced no log.
func RunBatch(ctx context.Context, configs []EpisodeConfig, maxConcurrent int) ([]*episode.Log, error) {
	if maxConcurrent <= 0 {
		maxConcurrent = 1
	}
	logs := make([]*episode.Log, len(configs))
	errs := make([]error, len(configs))

	g := &errgroup.Group{}
	g.SetLimit(maxConcurrent)
	for i, cfg := range configs {
		g.Go(func() error {
			logs[i], errs[i] = RunEpisode(ctx, cfg)
			return nil
		})
	}
	_ = g.Wait()
	return logs, errors.Join(errs...)
}

// BenchmarkTag names a benchmark sweep configuration so failed episodes
// can be re-queued by tag.
func BenchmarkTag(model, partnerModel, evaluatorModel, task string) string {
	return fmt.Sprintf("benchmark_%s_%s_%s_%s", model, partnerModel, evaluatorModel, task)
}
