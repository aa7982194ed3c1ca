package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sort"
	"text/tabwriter"
	"time"

	"filament-inventory-api/internal/client"
	"filament-inventory-api/internal/inventory"
	"filament-inventory-api/internal/model"
	"filament-inventory-api/internal/normalize"
	"filament-inventory-api/internal/state"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
)

var (
	lowStock   = color.New(color.FgYellow, color.Bold)
	outOfStock = color.New(color.FgRed)
	okMark     = color.New(color.FgGreen)
)

func formatAmount(a float64) string {
	return humanize.FtoaWithDigits(a, 2)
}

func stockMarker(f model.Filament) string {
	switch {
	case f.Amount == 0:
		return outOfStock.Sprint("empty")
	case inventory.IsLowStock(f):
		return lowStock.Sprint("low")
	default:
		return ""
	}
}

// printFilaments writes records as an aligned table. Times are shown
// relative to now.
func printFilaments(w io.Writer, records []model.Filament, now time.Time) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tBRAND\tCOLOR\tTYPE\tMATERIAL\tAMOUNT\tUPDATED\t")
	for _, f := range records {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			f.ID, f.Brand, f.Color, f.Type, f.Material,
			formatAmount(f.Amount),
			humanize.RelTime(f.UpdatedAt, now, "ago", "from now"),
			stockMarker(f),
		)
	}
	return tw.Flush()
}

// printSummary writes the counts shown below the table.
func printSummary(w io.Writer, s state.State, shown int) {
	fmt.Fprintf(w, "\n%d of %d entries shown, %s spools in total\n",
		shown, len(s.Records), formatAmount(s.TotalSpools()))
	if s.HasActiveFilters() {
		fmt.Fprintln(w, "Filters are active. Run with --reset to clear them.")
	}
}

func printOptions(w io.Writer, o inventory.Options) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "brands:\t%s\n", joinOrDash(o.Brands))
	fmt.Fprintf(tw, "materials:\t%s\n", joinOrDash(o.Materials))
	fmt.Fprintf(tw, "types:\t%s\n", joinOrDash(o.Types))
	_ = tw.Flush()
}

func joinOrDash(values []string) string {
	if len(values) == 0 {
		return "-"
	}
	out := values[0]
	for _, v := range values[1:] {
		out += ", " + v
	}
	return out
}

// printFilament writes one record as key/value lines.
func printFilament(w io.Writer, f model.Filament) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "id:\t%d\n", f.ID)
	fmt.Fprintf(tw, "brand:\t%s\n", f.Brand)
	fmt.Fprintf(tw, "color:\t%s\n", f.Color)
	fmt.Fprintf(tw, "type:\t%s\n", f.Type)
	fmt.Fprintf(tw, "material:\t%s\n", f.Material)
	fmt.Fprintf(tw, "amount:\t%s\n", formatAmount(f.Amount))
	_ = tw.Flush()
}

func printJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// describeError turns controller errors into something worth showing,
// adding the per-field problems of a rejected draft.
func describeError(err error, fields normalize.FieldErrors) error {
	var apiErr *client.APIError
	switch {
	case errors.Is(err, state.ErrInvalidDraft):
		keys := make([]string, 0, len(fields))
		for k := range fields {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		msg := "invalid filament:"
		for _, k := range keys {
			msg += "\n  " + k + ": " + fields[k]
		}
		return errors.New(msg)
	case errors.Is(err, state.ErrNotAuthorized):
		return errors.New(`not signed in, run "spoolctl login" first`)
	case errors.As(err, &apiErr):
		if apiErr.Status == 0 {
			return errors.New(apiErr.Message)
		}
		return fmt.Errorf("%s (HTTP %d)", apiErr.Message, apiErr.Status)
	default:
		return err
	}
}
