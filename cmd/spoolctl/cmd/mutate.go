package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"filament-inventory-api/internal/model"
	"filament-inventory-api/internal/state"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

var draftFlags struct {
	brand    string
	color    string
	typ      string
	material string
	amount   float64
}

var rmYes bool

var addCmd = &cobra.Command{
	Use:   "add",
	Short: "Add a filament spool",
	Example: `  spoolctl add --brand "Aster Labs" --color "Ocean Blue" --type basic --material pla --amount 1
  spoolctl add --brand Aster --color Black --type matte --material petg --amount 0.5`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()
		if err := signIn(ctx, false); err != nil {
			return err
		}

		var d model.Draft
		applyDraftFlags(cmd.Flags(), &d)

		if err := ctrl.Create(ctx, d); err != nil {
			return describeError(err, ctrl.State().CreateErrors)
		}

		records := ctrl.State().Records
		created := records[len(records)-1]
		return report(cmd.OutOrStdout(), "Added", created)
	},
}

var editCmd = &cobra.Command{
	Use:   "edit ID",
	Short: "Change a filament spool",
	Long: `Change the fields given as flags and keep the others.

  spoolctl edit 12 --amount 0.3`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		ctx := cmd.Context()
		if err := signIn(ctx, true); err != nil {
			return err
		}

		if err := ctrl.StartEdit(id); err != nil {
			return fmt.Errorf("filament %d: %w", id, err)
		}
		d := ctrl.State().EditDraft
		applyDraftFlags(cmd.Flags(), &d)
		ctrl.SetEditDraft(d)

		if err := ctrl.SaveEdit(ctx); err != nil {
			return describeError(err, ctrl.State().EditErrors)
		}

		updated, _ := ctrl.State().Record(id)
		return report(cmd.OutOrStdout(), "Updated", updated)
	},
}

var rmCmd = &cobra.Command{
	Use:     "rm ID",
	Aliases: []string{"delete"},
	Short:   "Delete a filament spool",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		ctx := cmd.Context()
		if err := signIn(ctx, true); err != nil {
			return err
		}

		rec, ok := ctrl.State().Record(id)
		if !ok {
			return fmt.Errorf("filament %d: %w", id, state.ErrUnknownRecord)
		}
		ctrl.RequestDelete(id)

		out := cmd.OutOrStdout()
		if !rmYes {
			printFilament(out, rec)
			fmt.Fprint(out, "Delete this filament entry? [y/N] ")
			answer, err := readLine(cmd.InOrStdin())
			if err != nil {
				return err
			}
			if a := strings.ToLower(strings.TrimSpace(answer)); a != "y" && a != "yes" {
				ctrl.CancelDelete()
				fmt.Fprintln(out, "Cancelled.")
				return nil
			}
		}

		if err := ctrl.ConfirmDelete(ctx, id); err != nil {
			return describeError(err, nil)
		}
		okMark.Fprintf(out, "Deleted %d\n", id)
		return nil
	},
}

// signIn restores the saved passcode, loading the list alongside when the
// command needs existing records.
func signIn(ctx context.Context, withRecords bool) error {
	var err error
	if withRecords {
		err = ctrl.Start(ctx)
	} else {
		err = ctrl.RestorePasscode(ctx)
	}
	if err != nil {
		return describeError(err, nil)
	}
	if !ctrl.State().Authorized() {
		return describeError(state.ErrNotAuthorized, nil)
	}
	return nil
}

func applyDraftFlags(flags *pflag.FlagSet, d *model.Draft) {
	if flags.Changed("brand") {
		d.Brand = draftFlags.brand
	}
	if flags.Changed("color") {
		d.Color = draftFlags.color
	}
	if flags.Changed("type") {
		d.Type = draftFlags.typ
	}
	if flags.Changed("material") {
		d.Material = draftFlags.material
	}
	if flags.Changed("amount") {
		d.Amount = draftFlags.amount
	}
}

func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, errors.New("id must be a positive integer")
	}
	return id, nil
}

func report(out io.Writer, verb string, f model.Filament) error {
	if jsonOutput {
		return printJSON(out, f)
	}
	okMark.Fprintf(out, "%s %d\n", verb, f.ID)
	printFilament(out, f)
	return nil
}

func addDraftFlags(flags *pflag.FlagSet) {
	flags.StringVar(&draftFlags.brand, "brand", "", "brand name")
	flags.StringVar(&draftFlags.color, "color", "", "color name")
	flags.StringVar(&draftFlags.typ, "type", "", "basic, matte, silk or another finish")
	flags.StringVar(&draftFlags.material, "material", "", "PLA, PETG, ABS, ASA, TPU, ...")
	flags.Float64Var(&draftFlags.amount, "amount", 0, "spools left, fractions allowed")
}

func init() {
	addDraftFlags(addCmd.Flags())
	addDraftFlags(editCmd.Flags())
	rmCmd.Flags().BoolVarP(&rmYes, "yes", "y", false, "do not ask for confirmation")
}
