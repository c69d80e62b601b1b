package client

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

func NewFilterCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "filter",
		Short: "Manage loot filter rarity models",
		Long:  "Discover loot filter files, parse their divination card rules and apply the resulting rarity model to a league.",
	}

	cmd.AddCommand(NewFilterScanCommand())
	cmd.AddCommand(NewFilterListCommand())
	cmd.AddCommand(NewFilterParseCommand())
	cmd.AddCommand(NewFilterSelectCommand())
	cmd.AddCommand(NewFilterSelectedCommand())
	cmd.AddCommand(NewFilterApplyCommand())
	cmd.AddCommand(NewFilterSetRarityCommand())
	cmd.AddCommand(NewFilterSourceCommand())

	return cmd
}

func NewFilterScanCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scan <game>",
		Short: "Scan the filter directories of a game",
		Long:  "Walks the local and online filter directories, reconciles the metadata table and lists what was found.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := compose(cmd.Context())
			if err != nil {
				return err
			}
			defer c.Close()

			result, err := c.svc.ScanFilters(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			title := fmt.Sprintf("Filters for %s", args[0])
			color.HiCyan(title)
			fmt.Println(strings.Repeat("=", len(title)))

			for _, f := range result.Filters {
				marker := " "
				if f.IsOutdated {
					marker = color.YellowString("!")
				}
				fmt.Printf("%s %-16s %-7s %s\n", marker, f.ID, f.FilterType, f.FilterName)
			}

			fmt.Printf("\n%s found (%s local, %s online)\n",
				pluralize("filter", int64(len(result.Filters))),
				humanize.Comma(int64(result.LocalCount)),
				humanize.Comma(int64(result.OnlineCount)))

			return nil
		},
	}

	return cmd
}

func NewFilterListCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ls",
		Short: "List known filters",
		Long:  "Lists every filter currently recorded in the metadata table, without rescanning disk.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := compose(cmd.Context())
			if err != nil {
				return err
			}
			defer c.Close()

			filters, err := c.svc.GetAllFilters(cmd.Context())
			if err != nil {
				return err
			}

			for _, f := range filters {
				parsed := " "
				if f.IsFullyParsed {
					parsed = color.GreenString("*")
				}
				fmt.Printf("%s %-16s %-7s %s\n", parsed, f.ID, f.FilterType, f.FilterName)
			}

			fmt.Printf("\n%s\n", pluralize("filter", int64(len(filters))))
			return nil
		},
	}

	return cmd
}

func NewFilterParseCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "parse <filter-id>",
		Short: "Parse a filter's divination card rules",
		Long:  "Extracts (or returns the cached) card tier mapping of a filter.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := compose(cmd.Context())
			if err != nil {
				return err
			}
			defer c.Close()

			result, err := c.svc.ParseFilter(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			if !result.HasDivinationSection {
				fmt.Println("No divination card rules found in this filter.")
				return nil
			}

			for card, rarity := range result.CardRarities {
				fmt.Printf("%d  %s\n", rarity, card)
			}

			fmt.Printf("\n%s classified\n", pluralize("card", int64(result.TotalCards)))
			return nil
		},
	}

	return cmd
}

func NewFilterSelectCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "select [filter-id]",
		Short: "Select the active filter",
		Long:  "Persists the filter used as the rarity model. Without an argument the selection is cleared.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := compose(cmd.Context())
			if err != nil {
				return err
			}
			defer c.Close()

			id := ""
			if len(args) == 1 {
				id = args[0]
			}

			if err := c.svc.SelectFilter(cmd.Context(), id); err != nil {
				return err
			}

			if id == "" {
				fmt.Println("Selection cleared")
			} else {
				fmt.Printf("Selected %s\n", id)
			}
			return nil
		},
	}

	return cmd
}

func NewFilterSelectedCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "selected",
		Short: "Show the selected filter",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := compose(cmd.Context())
			if err != nil {
				return err
			}
			defer c.Close()

			selected, err := c.svc.SelectedFilter(cmd.Context())
			if err != nil {
				return err
			}

			if selected == nil {
				fmt.Println("No filter selected")
				return nil
			}

			fmt.Printf("%s  %s (%s)\n", selected.ID, selected.FilterName, selected.FilterType)
			return nil
		},
	}

	return cmd
}

func NewFilterApplyCommand() *cobra.Command {
	var game string
	var league string

	cmd := &cobra.Command{
		Use:   "apply <filter-id>",
		Short: "Apply a filter's rarities to a league",
		Long:  "Writes the filter's card tier mapping into the per-league rarity table, defaulting unlisted cards to common.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := compose(cmd.Context())
			if err != nil {
				return err
			}
			defer c.Close()

			result, err := c.svc.ApplyFilterRarities(cmd.Context(), args[0], game, league)
			if err != nil {
				return err
			}

			if !result.Success {
				color.Yellow("Filter '%s' has no divination card rules; nothing applied.", result.FilterName)
				return nil
			}

			color.Green("Applied %s from '%s' to %s/%s",
				pluralize("card", int64(result.TotalCards)), result.FilterName, game, league)
			return nil
		},
	}

	cmd.Flags().StringVar(&game, "game", "poe1", "game id (poe1, poe2)")
	cmd.Flags().StringVar(&league, "league", "Standard", "league name")

	return cmd
}

func NewFilterSetRarityCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "set-rarity <filter-id> <card-name> <rarity>",
		Short: "Manually correct one card's rarity",
		Long:  "Overrides the tier of a single card for a filter. Rarity runs from 1 (extremely rare) to 4 (common).",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			rarity, err := strconv.Atoi(args[2])
			if err != nil {
				return fmt.Errorf("rarity must be a number: %w", err)
			}

			c, err := compose(cmd.Context())
			if err != nil {
				return err
			}
			defer c.Close()

			if err := c.svc.UpdateCardRarity(cmd.Context(), args[0], args[1], rarity); err != nil {
				return err
			}

			fmt.Printf("Set '%s' to rarity %d\n", args[1], rarity)
			return nil
		},
	}

	return cmd
}

func NewFilterSourceCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "source [value]",
		Short: "Show or set the rarity source",
		Long:  "The rarity source decides where per-card rarities come from: poe.ninja, filter or prohibited-library.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := compose(cmd.Context())
			if err != nil {
				return err
			}
			defer c.Close()

			if len(args) == 0 {
				source, err := c.svc.RaritySource(cmd.Context())
				if err != nil {
					return err
				}
				fmt.Println(source)
				return nil
			}

			if err := c.svc.SetRaritySource(cmd.Context(), args[0]); err != nil {
				return err
			}

			fmt.Printf("Rarity source set to %s\n", args[0])
			return nil
		},
	}

	return cmd
}

func pluralize(s string, count int64) string {
	if count == 1 {
		return fmt.Sprintf("1 %s", s)
	}
	return fmt.Sprintf("%s %ss", humanize.Comma(count), s)
}
