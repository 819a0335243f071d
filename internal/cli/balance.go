package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/rshade/energyprophet/internal/balancer"
	"github.com/rshade/energyprophet/internal/catalog"
	"github.com/rshade/energyprophet/internal/config"
	"github.com/rshade/energyprophet/internal/engine"
	"github.com/rshade/energyprophet/internal/greenops"
	"github.com/rshade/energyprophet/internal/tui"
)

// ErrNotInteractive is returned when the balance TUI is started without a
// terminal.
var ErrNotInteractive = errors.New("balance needs an interactive terminal; use --script for non-interactive runs")

type balanceParams struct {
	country     string
	targetYear  int
	target      float64
	script      string
	noNarrative bool
}

// scriptOp is one step of a --script run.
type scriptOp struct {
	action string
	id     string
	repeat int
}

// NewBalanceCmd creates the balance command.
func NewBalanceCmd() *cobra.Command {
	var params balanceParams

	cmd := &cobra.Command{
		Use:   "balance",
		Short: "Balance a generation mix against the projected demand",
		Long: `Starts an interactive balancer: the required production for the target year
is shown and each technology's generation can be raised or lowered in fixed
steps until the mix meets it. Once the mix has stayed balanced briefly, it can
be analyzed.

With --script the steps are given as a comma separated list instead:
inc:<id>, dec:<id> and reset. Append *N to repeat a step N times.`,
		Example: `  # Interactive balancer for Italy
  energyprophet balance --country ita

  # Non-interactive: five solar steps, then analyze
  energyprophet balance --country ita --script "inc:solar*5"`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runBalance(cmd, params)
		},
	}

	cmd.Flags().StringVar(&params.country, "country", "", "country id")
	cmd.Flags().IntVar(&params.targetYear, "target-year", 0, "target year (default from config)")
	cmd.Flags().Float64Var(&params.target, "target", 0, "required production in TWh (default: projected demand)")
	cmd.Flags().StringVar(&params.script, "script", "", "run balancing steps non-interactively, e.g. inc:solar,dec:coal")
	cmd.Flags().BoolVar(&params.noNarrative, "no-narrative", false, "skip the narrative assessment")

	return cmd
}

func runBalance(cmd *cobra.Command, params balanceParams) error {
	ctx := cmd.Context()
	cfg := *config.GetGlobalConfig()

	countryID := strings.TrimSpace(params.country)
	if countryID == "" {
		return ErrNoCountry
	}
	if cmd.Flags().Changed("target-year") {
		cfg.Simulation.TargetYear = params.targetYear
	}

	var ops []scriptOp
	if params.script != "" {
		var err error
		if ops, err = parseScript(params.script); err != nil {
			return err
		}
	} else if !isTerminal(os.Stdout) {
		return ErrNotInteractive
	}

	narrate := !params.noNarrative
	eng, cat, err := newEngine(ctx, &cfg, narrate)
	if err != nil {
		return err
	}
	country, err := eng.Country(ctx, countryID)
	if err != nil {
		return err
	}

	target := params.target
	if !cmd.Flags().Changed("target") {
		target = engine.Project(country.TotalGeneration, eng.GrowthRate(), engine.YearsUntil(eng.TargetYear(), time.Now()))
	}

	session := balancer.NewSession(country, target, extraTechnologies(cmd, cat, country), cfg.BalancerOptions())

	logger.Debug().Ctx(ctx).
		Str("operation", "balance").
		Str("country", country.ID).
		Float64("base_twh", session.Base()).
		Float64("target_twh", session.Target()).
		Float64("step_twh", session.Step()).
		Bool("scripted", ops != nil).
		Msg("balance session started")

	if ops != nil {
		return runBalanceScript(cmd, eng, session, ops, narrate, narrativeConfigured(&cfg))
	}

	model := tui.NewBalanceModel(ctx, country.DisplayName(), eng.TargetYear(), session,
		balancer.NewDebounce(cfg.DebounceInterval()), eng.Analyze)
	p := tea.NewProgram(model,
		tea.WithContext(ctx),
		tea.WithAltScreen(),
		tea.WithInput(cmd.InOrStdin()),
		tea.WithOutput(cmd.OutOrStdout()),
	)
	if _, err = p.Run(); err != nil {
		return fmt.Errorf("running balancer: %w", err)
	}
	return nil
}

// extraTechnologies returns global-catalog technologies the country lacks.
func extraTechnologies(cmd *cobra.Command, cat catalog.Catalog, country *catalog.Country) []catalog.Technology {
	ctx := cmd.Context()
	techs, err := cat.Technologies(ctx)
	if err != nil {
		logger.Warn().Ctx(ctx).Err(err).Msg("technology catalog unavailable, balancing existing technologies only")
		return nil
	}
	var extra []catalog.Technology
	for _, t := range techs {
		if country.Technology(t.ID) == nil {
			extra = append(extra, t)
		}
	}
	return extra
}

// runBalanceScript applies ops, prints the resulting mix, and analyzes it when
// it is balanced.
func runBalanceScript(
	cmd *cobra.Command,
	eng *engine.Engine,
	session balancer.Session,
	ops []scriptOp,
	narrate, configured bool,
) error {
	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	for _, op := range ops {
		id := op.id
		if op.action != "reset" {
			known, ok := session.Lookup(op.id)
			if !ok {
				return fmt.Errorf("unknown technology %q in --script", op.id)
			}
			id = known
		}
		for range op.repeat {
			switch op.action {
			case "inc":
				session = session.Increase(id)
			case "dec":
				session = session.Decrease(id)
			case "reset":
				session = session.Reset()
			}
		}
	}

	// A script has no wall clock between edits: the final state settles at once.
	debounce := balancer.NewDebounce(0)
	if ticket, pending := debounce.Observe(session.IsBalanced()); pending {
		debounce.Fire(ticket)
	}

	if err := renderSession(out, session); err != nil {
		return err
	}
	if !debounce.Settled() {
		cmd.Printf("\n%s\n", tui.NotBalancedTip)
		return nil
	}

	result, err := eng.Analyze(ctx, session.CountryID(), session.Changes())
	if err != nil {
		return err
	}
	cmd.Println()
	return renderAnalysis(out, result, narrate, configured)
}

func renderSession(w io.Writer, s balancer.Session) error {
	tw := tabwriter.NewWriter(w, 0, 0, tabPadding, ' ', 0)
	fmt.Fprintln(tw, "TECHNOLOGY\tCURRENT(TWh)\tDELTA\tNEW(TWh)")
	fmt.Fprintln(tw, "----------\t------------\t-----\t--------")
	for _, id := range s.IDs() {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n",
			s.Name(id),
			greenops.FormatFloat(s.Original(id), 1),
			engine.FormatSignedTWh(s.Delta(id), 1),
			greenops.FormatFloat(s.Generation(id), 1),
		)
	}
	fmt.Fprintln(tw)
	fmt.Fprintf(tw, "TOTAL\t%s\t\t%s\n", greenops.FormatFloat(s.Base(), 1), greenops.FormatFloat(s.Total(), 1))
	fmt.Fprintf(tw, "TARGET\t\t\t%s\n", greenops.FormatFloat(s.Target(), 1))
	fmt.Fprintf(tw, "REMAINING\t\t\t%s\n", engine.FormatSignedTWh(s.Remaining(), 1))
	return tw.Flush()
}

// parseScript parses "inc:solar*3,dec:coal,reset".
func parseScript(script string) ([]scriptOp, error) {
	var ops []scriptOp
	for _, raw := range strings.Split(script, ",") {
		step := strings.TrimSpace(raw)
		if step == "" {
			continue
		}

		op := scriptOp{repeat: 1}
		if body, count, ok := strings.Cut(step, "*"); ok {
			n, err := strconv.Atoi(strings.TrimSpace(count))
			if err != nil || n <= 0 {
				return nil, fmt.Errorf("invalid repeat count in --script step %q", step)
			}
			op.repeat = n
			step = strings.TrimSpace(body)
		}

		action, id, _ := strings.Cut(step, ":")
		op.action = strings.ToLower(strings.TrimSpace(action))
		op.id = strings.TrimSpace(id)

		switch op.action {
		case "inc", "dec":
			if op.id == "" {
				return nil, fmt.Errorf("--script step %q needs a technology id", step)
			}
		case "reset":
		default:
			return nil, fmt.Errorf("unknown --script action %q (want inc, dec or reset)", op.action)
		}
		ops = append(ops, op)
	}
	if len(ops) == 0 {
		return nil, errors.New("--script has no steps")
	}
	return ops, nil
}
