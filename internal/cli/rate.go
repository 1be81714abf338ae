package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/ratio/internal/flow"
	"github.com/roach88/ratio/internal/rational"
	"github.com/roach88/ratio/internal/state"
)

// RateOptions holds flags for the rate command.
type RateOptions struct {
	*RootOptions
	Group    string
	Digits   int
	Fraction bool
}

// FlowLine is one net flow entry in command output.
type FlowLine struct {
	Name        string `json:"name"`
	Kind        string `json:"kind"`
	Temperature string `json:"temperature,omitempty"`
	Min         string `json:"min,omitempty"`
	Max         string `json:"max,omitempty"`
	Amount      string `json:"amount"` // exact fraction per second
	Rate        string `json:"rate"`   // rendered amount
}

// RateResult is the net flow of a plan or of one group.
type RateResult struct {
	Group       string     `json:"group,omitempty"`
	Ingredients []FlowLine `json:"ingredients"`
	Products    []FlowLine `json:"products"`
}

// NewRateCommand creates the rate command.
func NewRateCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RateOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "rate [fragment]",
		Short: "Show the net flow of a plan",
		Long: `Reduce every row of a plan to its net ingredients and products.

The plan is decoded from the given fragment, or read from the database
when no fragment is given. Amounts are per second.

Examples:
  ratio rate 5-q1YqS0ks...
  ratio rate --group Smelting
  ratio rate --fraction --format json`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRate(cmd, opts, args)
		},
	}

	cmd.Flags().StringVarP(&opts.Group, "group", "g", "", "only rate the named group")
	cmd.Flags().IntVar(&opts.Digits, "digits", -1, "decimal places (defaults to the config file)")
	cmd.Flags().BoolVar(&opts.Fraction, "fraction", false, "print exact fractions")

	return cmd
}

func runRate(cmd *cobra.Command, opts *RateOptions, args []string) error {
	sess, err := newSession(opts.RootOptions, cmd)
	if err != nil {
		return err
	}
	defer sess.Close()

	var plan *state.State
	if len(args) == 1 {
		plan, err = sess.decodeFragment(args[0])
	} else {
		plan, err = sess.loadSaved(cmd.Context())
	}
	if err != nil {
		return err
	}

	net, err := aggregatePlan(plan, opts.Group)
	if err != nil {
		return sess.formatter.Fail(ErrCodeGeneric, "failed to rate plan", err)
	}

	render := opts.renderer()
	result := RateResult{
		Group:       opts.Group,
		Ingredients: flowLines(net.Ingredients, render),
		Products:    flowLines(net.Products, render),
	}

	if opts.Format == "json" {
		return sess.formatter.Success(result)
	}
	writeRateText(cmd, result)
	return nil
}

// aggregatePlan reduces the whole plan, or the group named group.
func aggregatePlan(plan *state.State, group string) (flow.Result, error) {
	if group == "" {
		return plan.AggregateAll()
	}
	for _, g := range plan.Groups {
		if g.Name == group {
			return plan.Aggregate(g.ID)
		}
	}
	return flow.Result{}, fmt.Errorf("group %q: %w", group, state.ErrUnknownHandle)
}

// renderer picks fraction or decimal text. Flags override the config file.
func (o *RateOptions) renderer() func(rational.Rational) string {
	if o.Fraction || o.Settings.Fraction {
		return rational.Rational.Fraction
	}
	digits := o.Settings.Digits
	if o.Digits >= 0 {
		digits = o.Digits
	}
	rounding := rational.RoundingFactor(digits)
	return func(r rational.Rational) string {
		return r.DecimalWith(digits, rounding)
	}
}

func flowLines(entries []flow.Entry, render func(rational.Rational) string) []FlowLine {
	lines := make([]FlowLine, 0, len(entries))
	for _, e := range entries {
		line := FlowLine{
			Name:   e.Name,
			Kind:   e.Kind.String(),
			Amount: e.Amount.Fraction(),
			Rate:   render(e.Amount),
		}
		if e.Kind == flow.KindFluid {
			if e.Role == flow.RoleProduct {
				line.Temperature = e.Temperature.Fraction()
			} else {
				if e.Range.Min != nil {
					line.Min = e.Range.Min.Fraction()
				}
				if e.Range.Max != nil {
					line.Max = e.Range.Max.Fraction()
				}
			}
		}
		lines = append(lines, line)
	}
	return lines
}

// label renders name@temperature for fluids and the bare name for items.
func (l FlowLine) label() string {
	switch {
	case l.Temperature != "":
		return l.Name + "@" + l.Temperature
	case l.Min != "" || l.Max != "":
		return fmt.Sprintf("%s@[%s,%s]", l.Name, orStar(l.Min), orStar(l.Max))
	default:
		return l.Name
	}
}

func orStar(s string) string {
	if s == "" {
		return "*"
	}
	return s
}

func writeRateText(cmd *cobra.Command, result RateResult) {
	w := cmd.OutOrStdout()
	if len(result.Ingredients) == 0 && len(result.Products) == 0 {
		fmt.Fprintln(w, "No net flow.")
		return
	}
	for _, l := range result.Ingredients {
		fmt.Fprintf(w, "in   %-28s %s/s\n", l.label(), l.Rate)
	}
	for _, l := range result.Products {
		fmt.Fprintf(w, "out  %-28s %s/s\n", l.label(), l.Rate)
	}
}
