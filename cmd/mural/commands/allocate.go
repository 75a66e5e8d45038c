package commands

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/rushteam/mural/tagging"
)

type allocateOptions struct {
	threshold float64
	maxTags   int
	rule      string
	json      bool
}

func newAllocateCmd(configPath *string) *cobra.Command {
	opts := &allocateOptions{}
	cmd := &cobra.Command{
		Use:   "allocate",
		Short: "Suggest tags for each opportunity by embedding similarity",
		Long: `Compare every opportunity embedding with every tag embedding and keep the
tags whose cosine similarity reaches the threshold, best first.

Laboratories never receive the tags that describe other opportunity kinds
(empresa_junior, equipe_competicao, startup_universitaria, estagio) unless
--rule overrides the eligibility expression.

Examples:
  mural allocate
  mural allocate --threshold 0.4 --max 5
  mural allocate --rule 'tag.category != "Carreira"' --json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd.Context(), cmd, *configPath)
			if err != nil {
				return err
			}
			defer a.Close()

			threshold := a.cfg.Allocation.Threshold
			if cmd.Flags().Changed("threshold") {
				threshold = opts.threshold
			}
			maxTags := a.cfg.Allocation.MaxTags
			if cmd.Flags().Changed("max") {
				maxTags = opts.maxTags
			}
			rule := a.cfg.Allocation.Rule
			if cmd.Flags().Changed("rule") {
				rule = opts.rule
			}

			alloc, err := tagging.NewAllocator(threshold, maxTags, rule)
			if err != nil {
				return fmt.Errorf("allocation rule: %w", err)
			}

			opps := a.snapshot.Opportunities.List()
			result, err := alloc.AllocateAll(opps, a.snapshot.Tags.List())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if opts.json {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(result)
			}
			for _, opp := range opps {
				assigned := result[opp.ID]
				parts := make([]string, 0, len(assigned))
				for _, as := range assigned {
					parts = append(parts, fmt.Sprintf("%s(%.3f)", as.TagID, as.Score))
				}
				fmt.Fprintf(out, "%s\t%s\t%s\n", opp.ID, opp.Name, strings.Join(parts, ", "))
			}
			return nil
		},
	}
	cmd.Flags().Float64Var(&opts.threshold, "threshold", 0.35, "Minimum cosine similarity")
	cmd.Flags().IntVar(&opts.maxTags, "max", 12, "Maximum tags per opportunity (0 = unlimited)")
	cmd.Flags().StringVar(&opts.rule, "rule", "", "CEL eligibility expression over tag and opportunity")
	cmd.Flags().BoolVar(&opts.json, "json", false, "Output as JSON")
	return cmd
}
