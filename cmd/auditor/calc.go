package main

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode"

	"ecom-auditor/internal/bot"
	"ecom-auditor/internal/config"
	"ecom-auditor/internal/profit"
	"ecom-auditor/internal/render"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var calcFlags struct {
	platform string
	name     string
	fees     []string
	compare  bool
	chart    bool
	advice   bool
}

var calcCmd = &cobra.Command{
	Use:   "calc",
	Short: "Calculate profitability of one product in the terminal",
	Example: `  auditor calc --platform tiktok --selling-price 350k --capital-cost 120k
  auditor calc --fee fixedFeePercent=6 --compare --chart`,
	Args: cobra.NoArgs,
	RunE: runCalc,
}

func init() {
	f := calcCmd.Flags()
	f.StringVarP(&calcFlags.platform, "platform", "p", string(profit.PlatformShopee), "shopee or tiktok")
	f.StringVar(&calcFlags.name, "name", "", "product name")
	f.StringArrayVar(&calcFlags.fees, "fee", nil, "fee override as key=value, repeatable")
	f.BoolVar(&calcFlags.compare, "compare", false, "compare both platforms")
	f.BoolVar(&calcFlags.chart, "chart", false, "show the cash-flow breakdown")
	f.BoolVar(&calcFlags.advice, "advice", false, "ask Gemini for advice (needs GEMINI_API_KEY)")

	defaults := profit.DefaultProduct()
	for _, field := range profit.ProductFields() {
		v, _ := defaults.Value(field.Key)
		f.String(flagName(field.Key), render.FieldValue(field, v), fmt.Sprintf("%s (%s)", field.Label, field.Unit))
	}
}

func runCalc(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	p, err := profit.ParsePlatform(calcFlags.platform)
	if err != nil {
		return err
	}

	product, err := productFromFlags(cmd)
	if err != nil {
		return err
	}
	fees, err := applyFeeFlags(p, profit.DefaultFees(p), calcFlags.fees)
	if err != nil {
		return err
	}
	if err := fees.Validate(); err != nil {
		return err
	}

	calc := profit.NewCalculator(profit.Options{WarningMarginPercent: cfg.Calc.WarningMarginPercent})
	result, err := calc.Calculate(p, product, fees)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, render.TerminalResult(p, product, result, cfg.Calc.WarningMarginPercent))

	if calcFlags.compare {
		schedule := func(q profit.Platform) profit.FeeStructure {
			if q == p {
				return fees
			}
			return profit.DefaultFees(q)
		}
		cmp, err := calc.Compare(product, schedule)
		if err != nil {
			return err
		}
		fmt.Fprintln(out, render.TerminalComparison(cmp))
	}
	if calcFlags.chart {
		fmt.Fprintln(out, render.TerminalBreakdown(p, result))
	}
	if calcFlags.advice {
		return printAdvice(cmd.Context(), cmd, cfg, p, product, result)
	}
	return nil
}

func printAdvice(ctx context.Context, cmd *cobra.Command, cfg *config.Config, p profit.Platform, product profit.ProductData, result profit.CalculationResult) error {
	adv, err := newAdvisor(ctx, cfg, zap.NewNop())
	if err != nil {
		return err
	}
	if adv == nil {
		return errors.New("GEMINI_API_KEY is not set")
	}
	text, err := adv.Advise(ctx, p, product, result)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), text)
	return nil
}

// productFromFlags starts from the default product and applies every field
// flag the user set.
func productFromFlags(cmd *cobra.Command) (profit.ProductData, error) {
	product := profit.DefaultProduct()
	product.Name = calcFlags.name

	for _, field := range profit.ProductFields() {
		name := flagName(field.Key)
		if !cmd.Flags().Changed(name) {
			continue
		}
		raw, err := cmd.Flags().GetString(name)
		if err != nil {
			return product, err
		}
		v, err := bot.ParseNumber(raw, field.Unit)
		if err != nil {
			return product, fmt.Errorf("--%s: %q is not a number", name, raw)
		}
		if product, err = product.WithField(field.Key, v); err != nil {
			return product, err
		}
	}
	return product, product.Validate()
}

func applyFeeFlags(p profit.Platform, fees profit.FeeStructure, overrides []string) (profit.FeeStructure, error) {
	for _, kv := range overrides {
		key, raw, ok := strings.Cut(kv, "=")
		if !ok {
			return fees, fmt.Errorf("--fee %q: expected key=value", kv)
		}
		field, ok := findFeeField(p, strings.TrimSpace(key))
		if !ok {
			return fees, fmt.Errorf("--fee: %w: %q for %s", profit.ErrUnknownField, key, p)
		}
		v, err := bot.ParseNumber(raw, field.Unit)
		if err != nil {
			return fees, fmt.Errorf("--fee %s: %q is not a number", field.Key, raw)
		}
		if fees, err = fees.WithField(field.Key, v); err != nil {
			return fees, err
		}
	}
	return fees, nil
}

func findFeeField(p profit.Platform, key string) (profit.Field, bool) {
	for _, f := range profit.FeeFields(p) {
		if f.Key == key {
			return f, true
		}
	}
	return profit.Field{}, false
}

// flagName turns a field key such as sellingPrice into selling-price.
func flagName(key string) string {
	var b strings.Builder
	for i, r := range key {
		if unicode.IsUpper(r) {
			if i > 0 {
				b.WriteByte('-')
			}
			r = unicode.ToLower(r)
		}
		b.WriteRune(r)
	}
	return b.String()
}
