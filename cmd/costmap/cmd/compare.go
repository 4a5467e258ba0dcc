package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/aecstation/costmap/pkg/bc3"
	"github.com/aecstation/costmap/pkg/catalogs"
	"github.com/aecstation/costmap/pkg/comparator"
	"github.com/aecstation/costmap/pkg/logging"
	"github.com/aecstation/costmap/pkg/matcher"
	"github.com/aecstation/costmap/pkg/phases"
)

var (
	budgetFile     string
	modelFile      string
	phaseName      string
	tolerance      float64
	noNameMatching bool
	noDescMatching bool
	simThreshold   float64
	jsonOutput     string
)

// report is the document written by --json: the match result, the
// conflict result and the phase that produced them.
type report struct {
	Phase     phases.Config     `json:"phase"`
	Matching  matcher.Summary   `json:"matching"`
	Matched   []matcher.Pair    `json:"matched"`
	Conflicts comparator.Result `json:"comparison"`
}

var compareCmd = &cobra.Command{
	Use:   "compare",
	Short: "Compare a budget file against a model type catalog",
	Long: `Compare parses a BC3 budget file and a model type catalog, links
their entries with the matching cascade, and reports every conflict
found at the selected analysis phase.`,
	Example: `  # Fast triage: codes and quantities only
  costmap compare --budget estimate.bc3 --model types.yaml --phase quick

  # Exhaustive audit with a report file
  costmap compare --budget estimate.bc3 --model types.yaml --phase full --json report.json`,
	RunE: runCompare,
}

func init() {
	rootCmd.AddCommand(compareCmd)

	compareCmd.Flags().StringVar(&budgetFile, "budget", "", "BC3 budget file (required)")
	compareCmd.Flags().StringVar(&modelFile, "model", "", "model type catalog YAML file (required)")
	compareCmd.Flags().StringVar(&phaseName, "phase", "quick", "analysis phase preset (quick, full)")
	compareCmd.Flags().Float64Var(&tolerance, "tolerance", -1, "override the phase quantity tolerance")
	compareCmd.Flags().BoolVar(&noNameMatching, "no-name-matching", false, "disable the family:type name strategy")
	compareCmd.Flags().BoolVar(&noDescMatching, "no-description-matching", false, "disable the description similarity strategy")
	compareCmd.Flags().Float64Var(&simThreshold, "similarity-threshold", matcher.DefaultSimilarityThreshold, "minimum description similarity score")
	compareCmd.Flags().StringVar(&jsonOutput, "json", "", "write the full report to a JSON file")

	_ = compareCmd.MarkFlagRequired("budget")
	_ = compareCmd.MarkFlagRequired("model")

	// Let PHASE / SIMILARITY_THRESHOLD env vars and the config file
	// supply these when the flags are not given.
	for _, name := range []string{"phase", "similarity-threshold"} {
		if err := viper.BindPFlag(name, compareCmd.Flags().Lookup(name)); err != nil {
			panic(fmt.Sprintf("Failed to bind %s flag: %v", name, err))
		}
	}
}

func runCompare(_ *cobra.Command, _ []string) error {
	phase, err := phases.Get(viper.GetString("phase"))
	if err != nil {
		return err
	}
	if tolerance >= 0 {
		phase.QuantityTolerance = tolerance
	}

	parser := bc3.New(bc3.WithLogger(logging.Default()))
	parsed, err := parser.ParseFile(budgetFile)
	if err != nil {
		return err
	}
	for _, warning := range parsed.Warnings {
		logging.Warn().
			Str("file", budgetFile).
			Int("line", warning.Line).
			Msg(warning.Message)
	}
	logging.Info().
		Str("file", budgetFile).
		Int("items", parsed.Budget.Len()).
		Int("comparable", parsed.Budget.ComparableCount()).
		Msg("parsed budget")

	model, err := catalogs.LoadModelCatalog(modelFile)
	if err != nil {
		return err
	}
	logging.Info().
		Str("file", modelFile).
		Int("types", model.Len()).
		Msg("loaded model catalog")

	m := matcher.New(
		matcher.WithNameMatching(!noNameMatching),
		matcher.WithDescriptionMatching(!noDescMatching),
		matcher.WithSimilarityThreshold(viper.GetFloat64("similarity-threshold")),
		matcher.WithIgnoreTerms(matcher.DefaultIgnoreTerms),
		matcher.WithLogger(logging.Default()),
	)
	matched := m.Match(model, parsed.Budget)
	logging.Info().Msg(matched.Summary().String())

	c := comparator.New(comparator.WithLogger(logging.Default()))
	compared := c.Compare(matched, phase)

	printConflicts(compared)

	if jsonOutput != "" {
		if err := writeReport(jsonOutput, phase, matched, compared); err != nil {
			return err
		}
		logging.Info().Str("file", jsonOutput).Msg("wrote report")
	}

	return nil
}

// printConflicts writes the ordered conflict list and totals to stdout.
func printConflicts(res *comparator.Result) {
	for _, conflict := range res.Conflicts {
		fmt.Println(conflict.String())
	}
	s := res.Summary
	fmt.Printf("\n%d conflicts across %d codes: %d errors, %d warnings, %d infos\n",
		s.TotalConflicts, s.CodesWithConflicts, s.Errors, s.Warnings, s.Infos)
}

// writeReport marshals the full run outcome to a JSON file.
func writeReport(path string, phase phases.Config, matched *matcher.Result, compared *comparator.Result) error {
	doc := report{
		Phase:     phase,
		Matching:  matched.Summary(),
		Matched:   matched.Matched,
		Conflicts: *compared,
	}
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding report: %w", err)
	}
	return os.WriteFile(path, append(data, '\n'), 0o644)
}
