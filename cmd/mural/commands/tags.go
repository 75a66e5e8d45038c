package commands

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func newTagsCmd(configPath *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tags",
		Short: "List, select and clear preference tags",
		Long: `Manage the tags that define your preference vector.

Every change recomputes the preference vector (the mean of the selected
tags' embeddings) and overwrites the cached copy. Clearing the selection
removes the cache so the feed falls back to name order.

Examples:
  mural tags list
  mural tags selected
  mural tags toggle robotica
  mural tags clear`,
	}
	cmd.AddCommand(newTagsListCmd(configPath))
	cmd.AddCommand(newTagsSelectedCmd(configPath))
	cmd.AddCommand(newTagsToggleCmd(configPath))
	cmd.AddCommand(newTagsClearCmd(configPath))
	return cmd
}

func newTagsListCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all tags in the catalog",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd.Context(), cmd, *configPath)
			if err != nil {
				return err
			}
			defer a.Close()

			selected, err := a.prefs.Selected(cmd.Context())
			if err != nil {
				return fmt.Errorf("reading selection: %w", err)
			}
			marked := make(map[string]bool, len(selected))
			for _, id := range selected {
				marked[id] = true
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "SEL\tID\tLABEL\tCATEGORY")
			for _, tag := range a.snapshot.Tags.List() {
				mark := ""
				if marked[tag.ID] {
					mark = "*"
				}
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", mark, tag.ID, tag.Label, tag.Category)
			}
			return w.Flush()
		},
	}
}

func newTagsSelectedCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "selected",
		Short: "Show the selected tags",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd.Context(), cmd, *configPath)
			if err != nil {
				return err
			}
			defer a.Close()

			selected, err := a.prefs.Selected(cmd.Context())
			if err != nil {
				return fmt.Errorf("reading selection: %w", err)
			}
			if len(selected) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No tags selected.")
				return nil
			}
			for _, id := range selected {
				fmt.Fprintln(cmd.OutOrStdout(), id)
			}
			return nil
		},
	}
}

func newTagsToggleCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "toggle <tag-id>...",
		Short: "Select or deselect tags and recompute the preference vector",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd.Context(), cmd, *configPath)
			if err != nil {
				return err
			}
			defer a.Close()

			for _, id := range args {
				if _, ok := a.snapshot.Tags.Get(id); !ok {
					a.logger.Printf("tag %q is not in the catalog", id)
				}
				if _, err := a.prefs.Toggle(cmd.Context(), id); err != nil {
					return err
				}
			}

			selected, err := a.prefs.Selected(cmd.Context())
			if err != nil {
				return fmt.Errorf("reading selection: %w", err)
			}
			_, ok, err := a.prefs.Preference(cmd.Context())
			if err != nil {
				return fmt.Errorf("reading preference: %w", err)
			}
			state := "not personalized"
			if ok {
				state = "personalized"
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Selected %d tag(s), feed is %s.\n", len(selected), state)
			return nil
		},
	}
}

func newTagsClearCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Clear the selection and the cached preference vector",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd.Context(), cmd, *configPath)
			if err != nil {
				return err
			}
			defer a.Close()

			if err := a.prefs.ClearSelection(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Selection cleared.")
			return nil
		},
	}
}
