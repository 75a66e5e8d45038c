package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os/signal"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/rushteam/mural/catalog"
	"github.com/rushteam/mural/feed"
)

type rankOptions struct {
	page     int
	pageSize int
	json     bool
	watch    bool
}

type rankedItem struct {
	Rank         int     `json:"rank"`
	ID           string  `json:"id"`
	Name         string  `json:"name"`
	Kind         string  `json:"kind"`
	Score        float64 `json:"score"`
	Personalized bool    `json:"personalized"`
}

type rankedPage struct {
	Page         int          `json:"page"`
	PageSize     int          `json:"page_size"`
	Total        int          `json:"total"`
	Personalized bool         `json:"personalized"`
	Items        []rankedItem `json:"items"`
}

func newRankCmd(configPath *string) *cobra.Command {
	opts := &rankOptions{}
	cmd := &cobra.Command{
		Use:   "rank",
		Short: "Show opportunities ranked by your preference vector",
		Long: `Rank every opportunity by cosine similarity to the cached preference
vector. Without a preference vector all scores are 0 and opportunities are
listed by name.

Examples:
  mural rank
  mural rank --page 2 --page-size 10
  mural rank --json
  mural rank --watch`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRank(cmd, *configPath, opts)
		},
	}
	cmd.Flags().IntVar(&opts.page, "page", 1, "Page number (starting at 1)")
	cmd.Flags().IntVar(&opts.pageSize, "page-size", 0, "Items per page (0 uses ranking.page_size)")
	cmd.Flags().BoolVar(&opts.json, "json", false, "Output as JSON")
	cmd.Flags().BoolVar(&opts.watch, "watch", false, "Re-rank when local catalog files change")
	return cmd
}

func runRank(cmd *cobra.Command, configPath string, opts *rankOptions) error {
	ctx := cmd.Context()
	a, err := newApp(ctx, cmd, configPath)
	if err != nil {
		return err
	}
	defer a.Close()

	if err := printRank(ctx, cmd.OutOrStdout(), a, opts); err != nil {
		return err
	}
	if !opts.watch {
		return nil
	}

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	paths := append([]string{a.cfg.Catalog.Tags}, a.cfg.Catalog.Opportunities...)
	return catalog.Watch(ctx, paths, 300*time.Millisecond, func() {
		if err := a.reload(ctx); err != nil {
			a.logger.Printf("reload failed, keeping previous catalog: %v", err)
			return
		}
		// 标签向量可能变化，按当前选择重算缓存
		if _, err := a.prefs.Recompute(ctx); err != nil {
			a.logger.Printf("recompute preference: %v", err)
		}
		if err := printRank(ctx, cmd.OutOrStdout(), a, opts); err != nil {
			a.logger.Printf("rank: %v", err)
		}
	})
}

func printRank(ctx context.Context, out io.Writer, a *app, opts *rankOptions) error {
	svc, err := a.feed()
	if err != nil {
		return err
	}
	page, err := svc.Feed(ctx, feed.Request{Page: opts.page, PageSize: opts.pageSize})
	if err != nil {
		return fmt.Errorf("ranking: %w", err)
	}

	result := toRankedPage(page)
	if opts.json {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	}

	if !result.Personalized {
		fmt.Fprintln(out, "No preference vector yet, listing by name. Select tags with `mural tags toggle`.")
	}
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "#\tSCORE\tKIND\tID\tNAME")
	for _, it := range result.Items {
		fmt.Fprintf(w, "%d\t%.4f\t%s\t%s\t%s\n", it.Rank, it.Score, it.Kind, it.ID, truncate(it.Name, 60))
	}
	if err := w.Flush(); err != nil {
		return err
	}
	fmt.Fprintf(out, "page %d, %d of %d opportunities\n", result.Page, len(result.Items), result.Total)
	return nil
}

func toRankedPage(page *feed.Page) rankedPage {
	out := rankedPage{
		Page:         page.Page,
		PageSize:     page.PageSize,
		Total:        page.Total,
		Personalized: page.Personalized,
		Items:        make([]rankedItem, 0, len(page.Items)),
	}
	for i, it := range page.Items {
		kind := ""
		if it.Opportunity != nil {
			kind = string(it.Opportunity.Kind)
		}
		out.Items = append(out.Items, rankedItem{
			Rank:         page.Offset + i + 1,
			ID:           it.ID,
			Name:         it.Name(),
			Kind:         kind,
			Score:        it.Score,
			Personalized: it.Personalized,
		})
	}
	return out
}

// truncate 按 rune 截断，超出时以 "..." 结尾
func truncate(s string, maxLen int) string {
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return string(runes[:maxLen])
	}
	return string(runes[:maxLen-3]) + "..."
}
