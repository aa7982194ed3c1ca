package cmd

import (
	"fmt"
	"time"

	"filament-inventory-api/internal/inventory"
	"filament-inventory-api/internal/normalize"

	"github.com/spf13/cobra"
)

var (
	listBrand      string
	listMaterial   string
	listType       string
	listColor      string
	listHideEmpty  bool
	listShowEmpty  bool
	listReset      bool
	listSort       string
	listDesc       bool
	listOptionsOut bool
)

var listCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List filament spools",
	Long: `List the inventory, filtered and sorted.

--hide-out-of-stock and --show-out-of-stock are remembered for later runs.
Brand, material and type filters match exactly. Material and type are
canonicalized first, so "pla" finds PLA. --color matches any part of the
color name, ignoring case.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		if err := ctrl.Load(cmd.Context()); err != nil {
			return describeError(err, nil)
		}

		f := ctrl.State().Filters
		if listReset {
			f = inventory.DefaultFilters()
		}
		flags := cmd.Flags()
		if flags.Changed("brand") {
			f.Brand = listBrand
		}
		if flags.Changed("material") {
			f.Material = filterValue(listMaterial, normalize.Material)
		}
		if flags.Changed("type") {
			f.Type = filterValue(listType, normalize.Type)
		}
		if flags.Changed("color") {
			f.SearchColor = listColor
		}
		switch {
		case listHideEmpty && listShowEmpty:
			return fmt.Errorf("--hide-out-of-stock and --show-out-of-stock are mutually exclusive")
		case listHideEmpty:
			f.HideOutOfStock = true
		case listShowEmpty:
			f.HideOutOfStock = false
		}
		ctrl.SetFilters(f)

		field, err := inventory.ParseField(listSort)
		if err != nil {
			return err
		}
		dir := inventory.Asc
		if listDesc {
			dir = inventory.Desc
		}
		ctrl.SetSort(inventory.SortState{Field: field, Direction: dir})

		s := ctrl.State()
		visible := s.Visible()
		out := cmd.OutOrStdout()

		if jsonOutput {
			if listOptionsOut {
				return printJSON(out, s.Options())
			}
			return printJSON(out, visible)
		}
		if listOptionsOut {
			printOptions(out, s.Options())
			return nil
		}
		if len(visible) == 0 {
			fmt.Fprintln(out, "No filament entries match.")
		} else if err := printFilaments(out, visible, time.Now()); err != nil {
			return err
		}
		printSummary(out, s, len(visible))
		return nil
	},
}

func filterValue(v string, canon func(string) string) string {
	if v == inventory.All {
		return v
	}
	return canon(v)
}

func init() {
	flags := listCmd.Flags()
	flags.StringVar(&listBrand, "brand", inventory.All, "only this brand")
	flags.StringVar(&listMaterial, "material", inventory.All, "only this material")
	flags.StringVar(&listType, "type", inventory.All, "only this type")
	flags.StringVar(&listColor, "color", "", "color contains this text")
	flags.BoolVar(&listHideEmpty, "hide-out-of-stock", false, "hide spools with no amount left")
	flags.BoolVar(&listShowEmpty, "show-out-of-stock", false, "show spools with no amount left")
	flags.BoolVar(&listReset, "reset", false, "clear every filter, including the remembered out-of-stock choice")
	flags.StringVarP(&listSort, "sort", "s", string(inventory.FieldBrand), "sort by brand, color, type, material or amount")
	flags.BoolVarP(&listDesc, "desc", "d", false, "sort descending")
	flags.BoolVar(&listOptionsOut, "options", false, "print the distinct brands, materials and types instead")
}
