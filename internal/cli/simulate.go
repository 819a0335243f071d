package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/rshade/energyprophet/internal/config"
	"github.com/rshade/energyprophet/internal/engine"
)

// ErrNoCountry is returned when a command needs at least one --country.
var ErrNoCountry = errors.New("at least one --country is required")

type simulateParams struct {
	countries  []string
	shares     []string
	policyFile string
	targetYear int
	growthRate float64
	output     string
	baseline   bool
}

// NewSimulateCmd creates the simulate command.
func NewSimulateCmd() *cobra.Command {
	var params simulateParams

	cmd := &cobra.Command{
		Use:   "simulate",
		Short: "Project a policy mix to the target year",
		Long: `Projects each country's total generation to the target year with compound
annual growth, then splits it across technologies by the requested shares.

Shares may be partial and need not sum to 1; they are normalized over the
country's technologies. Technologies the country does not use yet are added
from the global catalog. Several --country flags run in parallel.`,
		Example: `  # 60% solar, 40% wind in Switzerland by 2050
  energyprophet simulate --country che --share solar=0.6 --share wind=0.4

  # Same policy for two countries, compared against today's mix
  energyprophet simulate --country che --country fra --share nuclear=1 --baseline

  # Policies from a YAML file
  energyprophet simulate --policy policies.yaml --output json`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runSimulate(cmd, params)
		},
	}

	cmd.Flags().StringSliceVar(&params.countries, "country", nil, "country id (repeatable)")
	cmd.Flags().StringArrayVar(&params.shares, "share", nil, "target share as id=value (repeatable)")
	cmd.Flags().StringVar(&params.policyFile, "policy", "", "YAML/JSON file with a list of policy inputs")
	cmd.Flags().IntVar(&params.targetYear, "target-year", 0, "target year (default from config)")
	cmd.Flags().Float64Var(&params.growthRate, "growth-rate", 0, "annual demand growth rate (default from config)")
	cmd.Flags().StringVar(&params.output, "output", "", "output format: table or json (default from config)")
	cmd.Flags().BoolVar(&params.baseline, "baseline", false, "compare each projection with the current mix")

	return cmd
}

func runSimulate(cmd *cobra.Command, params simulateParams) error {
	ctx := cmd.Context()
	cfg := config.GetGlobalConfig()

	format := resolveFormat(params.output, cfg)
	if err := validateFormat(format); err != nil {
		return err
	}

	inputs, err := buildPolicyInputs(cmd, params)
	if err != nil {
		return err
	}

	eng, _, err := newEngine(ctx, cfg, false)
	if err != nil {
		return err
	}

	mixes, err := eng.SimulateMany(ctx, inputs)
	if err != nil {
		return err
	}

	var baselines []*engine.ProjectedMix
	if params.baseline {
		for _, in := range inputs {
			b, bErr := eng.Baseline(ctx, in.CountryID)
			if bErr != nil {
				return bErr
			}
			baselines = append(baselines, b)
		}
	}

	logger.Debug().Ctx(ctx).
		Str("operation", "simulate").
		Int("mixes", len(mixes)).
		Bool("baseline", params.baseline).
		Msg("simulation finished")

	if format == config.FormatJSON {
		return engine.RenderMixesAsJSON(cmd.OutOrStdout(), derefMixes(mixes), derefMixes(baselines))
	}
	return renderMixTables(cmd.OutOrStdout(), mixes, baselines, cfg.Output.Precision)
}

func renderMixTables(w io.Writer, mixes, baselines []*engine.ProjectedMix, precision int) error {
	for i, mix := range mixes {
		if i > 0 {
			if _, err := fmt.Fprintln(w); err != nil {
				return err
			}
		}
		var baseline *engine.ProjectedMix
		if i < len(baselines) {
			baseline = baselines[i]
		}
		if err := engine.RenderMixAsTable(w, mix, baseline, precision); err != nil {
			return err
		}
	}
	return nil
}

// buildPolicyInputs combines --policy entries with one input per --country.
// Flag overrides apply to every input.
func buildPolicyInputs(cmd *cobra.Command, params simulateParams) ([]engine.PolicyInput, error) {
	var inputs []engine.PolicyInput
	if params.policyFile != "" {
		fromFile, err := loadPolicyFile(params.policyFile)
		if err != nil {
			return nil, err
		}
		inputs = append(inputs, fromFile...)
	}

	shares, err := parseShares(params.shares)
	if err != nil {
		return nil, err
	}
	for _, id := range params.countries {
		id = strings.TrimSpace(id)
		if id == "" {
			continue
		}
		inputs = append(inputs, engine.PolicyInput{CountryID: id, TargetShares: shares})
	}
	if len(inputs) == 0 {
		return nil, ErrNoCountry
	}

	for i := range inputs {
		if cmd.Flags().Changed("target-year") {
			inputs[i].TargetYear = params.targetYear
		}
		if cmd.Flags().Changed("growth-rate") {
			rate := params.growthRate
			inputs[i].GrowthRate = &rate
		}
	}
	return inputs, nil
}

// parseShares parses id=value pairs. A later pair for the same id wins.
func parseShares(pairs []string) (map[string]float64, error) {
	shares := make(map[string]float64, len(pairs))
	for _, pair := range pairs {
		id, raw, ok := strings.Cut(pair, "=")
		id = strings.TrimSpace(id)
		if !ok || id == "" {
			return nil, fmt.Errorf("invalid --share %q: want id=value", pair)
		}
		v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
		if err != nil {
			return nil, fmt.Errorf("invalid --share %q: %w", pair, err)
		}
		if v < 0 {
			return nil, fmt.Errorf("invalid --share %q: share cannot be negative", pair)
		}
		shares[id] = v
	}
	return shares, nil
}

func loadPolicyFile(path string) ([]engine.PolicyInput, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading policy file: %w", err)
	}
	var inputs []engine.PolicyInput
	if err = yaml.Unmarshal(data, &inputs); err != nil {
		return nil, fmt.Errorf("parsing policy file %s: %w", path, err)
	}
	return inputs, nil
}

func derefMixes(mixes []*engine.ProjectedMix) []engine.ProjectedMix {
	if mixes == nil {
		return nil
	}
	out := make([]engine.ProjectedMix, 0, len(mixes))
	for _, m := range mixes {
		if m != nil {
			out = append(out, *m)
		}
	}
	return out
}
