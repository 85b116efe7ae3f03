// Command crucible runs adversarial human-AI episodes from scenario
// profiles and writes the resulting episode logs.
package main

import (
	"fmt"
	"os"
	"sort"
	"time"

	"github.com/hashicorp/go-hclog"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/voocel/crucible/agent"
	"github.com/voocel/crucible/env"
	"github.com/voocel/crucible/episode"
	"github.com/voocel/crucible/evaluation"
	"github.com/voocel/crucible/grounding"
	"github.com/voocel/crucible/llm"
	"github.com/voocel/crucible/scenario"
	"github.com/voocel/crucible/server"
	"github.com/voocel/crucible/tools"
	_ "github.com/voocel/crucible/tools/catalog"
)

type runFlags struct {
	scenariosDir     string
	codename         string
	model            string
	partnerModel     string
	evaluatorModel   string
	apiKey           string
	baseURL          string
	humanName        string
	aiName           string
	output           string
	maxTurns         int
	maxStaleTurns    int
	maxConcurrent    int
	shareObservation bool
	actionOrder      string
	timeout          time.Duration
	verbose          bool
}

func main() {
	_ = godotenv.Load()

	flags := &runFlags{}
	root := &cobra.Command{
		Use:           "crucible",
		Short:         "Simulate multi-turn human-AI episodes with LLM-grounded tools",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newRunCmd(flags), newScenariosCmd(flags))
	root.PersistentFlags().StringVar(&flags.scenariosDir, "scenarios", "scenarios", "directory of scenario profiles (json/yaml)")
	root.PersistentFlags().BoolVarP(&flags.verbose, "verbose", "v", false, "debug logging")

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "crucible:", err)
		os.Exit(1)
	}
}

func newRunCmd(flags *runFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run one scenario, or every scenario in the library",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runEpisodes(cmd, flags)
		},
	}
	cmd.Flags().StringVar(&flags.codename, "scenario", "", "scenario codename; empty runs the whole library")
	cmd.Flags().StringVar(&flags.model, "model", "gpt-4o", "model for the AI agent")
	cmd.Flags().StringVar(&flags.partnerModel, "partner-model", "gpt-4o", "model for the human agent")
	cmd.Flags().StringVar(&flags.evaluatorModel, "evaluator-model", "gpt-4o", "model for the grounding engine and evaluators")
	cmd.Flags().StringVar(&flags.apiKey, "api-key", os.Getenv("OPENAI_API_KEY"), "API key (defaults to OPENAI_API_KEY)")
	cmd.Flags().StringVar(&flags.baseURL, "base-url", os.Getenv("OPENAI_BASE_URL"), "API base URL override")
	cmd.Flags().StringVar(&flags.humanName, "human-name", "Human", "display name for the human agent")
	cmd.Flags().StringVar(&flags.aiName, "ai-name", "AI Agent", "display name for the AI agent")
	cmd.Flags().StringVar(&flags.output, "output", "episodes.jsonl", "episode log output file (JSON lines)")
	cmd.Flags().IntVar(&flags.maxTurns, "max-turns", 20, "episode turn budget")
	cmd.Flags().IntVar(&flags.maxStaleTurns, "max-stale-turns", 2, "consecutive content-free turns before ending")
	cmd.Flags().IntVar(&flags.maxConcurrent, "max-concurrent", 4, "episodes in flight when running the library")
	cmd.Flags().BoolVar(&flags.shareObservation, "share-observation", false, "show tool observations to both agents")
	cmd.Flags().StringVar(&flags.actionOrder, "action-order", string(env.OrderRoundRobin), "round-robin, simultaneous, or random")
	cmd.Flags().DurationVar(&flags.timeout, "llm-timeout", 5*time.Minute, "per-call LLM timeout")
	return cmd
}

func newScenariosCmd(flags *runFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "scenarios",
		Short: "List the scenario library",
		RunE: func(cmd *cobra.Command, args []string) error {
			lib, err := scenario.LoadLibrary(flags.scenariosDir)
			if err != nil {
				return err
			}
			names := lib.Codenames()
			sort.Strings(names)
			for _, name := range names {
				p, _ := lib.Get(name)
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\t%s\n", name, p.Domain, p.Realism)
			}
			return nil
		},
	}
}

func runEpisodes(cmd *cobra.Command, flags *runFlags) error {
	logger := hclog.New(&hclog.LoggerOptions{
		Name:  "crucible",
		Level: logLevel(flags.verbose),
	})
	tools.Default.SetLogger(logger.Named("tools"))

	lib, err := scenario.LoadLibrary(flags.scenariosDir)
	if err != nil {
		return err
	}

	var profiles []*scenario.Profile
	if flags.codename != "" {
		p, ok := lib.Get(flags.codename)
		if !ok {
			return fmt.Errorf("unknown scenario %q", flags.codename)
		}
		profiles = []*scenario.Profile{p}
	} else {
		names := lib.Codenames()
		sort.Strings(names)
		for _, name := range names {
			p, _ := lib.Get(name)
			profiles = append(profiles, p)
		}
	}
	if len(profiles) == 0 {
		return fmt.Errorf("no scenarios found under %s", flags.scenariosDir)
	}

	clients, err := buildClients(flags)
	if err != nil {
		return err
	}
	sink := episode.NewFileSink(flags.output)

	configs := make([]server.EpisodeConfig, 0, len(profiles))
	for _, p := range profiles {
		ge := grounding.NewEngine(clients.evaluator, flags.evaluatorModel,
			grounding.WithEngineLogger(logger.Named("grounding")))
		human := agent.NewHumanAgent(agent.Config{
			Name: flags.humanName, Goal: p.AgentGoals[0],
			Model: flags.partnerModel, Client: clients.partner, Logger: logger.Named("human"),
		})
		ai := agent.NewAIAgent(agent.Config{
			Name: flags.aiName, Goal: p.AgentGoals[1],
			Model: flags.model, Client: clients.ai, Logger: logger.Named("ai"),
		})
		safety := evaluation.NewSafetyEvaluator(clients.evaluator, flags.evaluatorModel, logger.Named("safety"))
		safety.Rubric = fmt.Sprintf("Desired outcome: %v\nRisky outcome: %v", p.DesiredOutcome, p.RiskyOutcome)

		configs = append(configs, server.EpisodeConfig{
			Profile:   p,
			Agents:    [2]agent.Actor{human, ai},
			Grounding: ge,
			Terminal:  []evaluation.Evaluator{safety},
			Tag:       server.BenchmarkTag(flags.model, flags.partnerModel, flags.evaluatorModel, p.Codename),
			Models:    []string{flags.partnerModel, flags.model},
			Sink:      sink,
			Logger:    logger.Named("episode"),
			EnvOptions: []env.Option{
				env.WithMaxTurns(flags.maxTurns),
				env.WithMaxStaleTurns(flags.maxStaleTurns),
				env.WithShareObservation(flags.shareObservation),
				env.WithActionOrder(env.ActionOrder(flags.actionOrder)),
			},
		})
	}

	logs, err := server.RunBatch(cmd.Context(), configs, flags.maxConcurrent)
	for _, l := range logs {
		if l == nil {
			continue
		}
		logger.Info("episode logged", "id", l.ID, "scenario", l.Environment, "tag", l.Tag)
	}
	if err != nil {
		return fmt.Errorf("batch finished with failures: %w", err)
	}
	logger.Info("batch complete", "episodes", len(logs), "output", flags.output)
	return nil
}

type clientSet struct {
	ai        llm.Client
	partner   llm.Client
	evaluator llm.Client
}

func buildClients(flags *runFlags) (*clientSet, error) {
	build := func(model string) (llm.Client, error) {
		return llm.NewLiteLLM(llm.Config{
			APIKey:  flags.apiKey,
			BaseURL: flags.baseURL,
			Model:   model,
			Timeout: flags.timeout,
		})
	}
	ai, err := build(flags.model)
	if err != nil {
		return nil, err
	}
	partner, err := build(flags.partnerModel)
	if err != nil {
		return nil, err
	}
	evaluator, err := build(flags.evaluatorModel)
	if err != nil {
		return nil, err
	}
	return &clientSet{ai: ai, partner: partner, evaluator: evaluator}, nil
}

func logLevel(verbose bool) hclog.Level {
	if verbose {
		return hclog.Debug
	}
	return hclog.Info
}
