package main

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/yourusername/quantikbook/internal/symmetry"
	"github.com/yourusername/quantikbook/pkg/book"
)

var (
	symJSON  bool
	symFixed []int

	symmetriesCmd = &cobra.Command{
		Use:   "symmetries",
		Short: "Inspect the board symmetry group",
		Long: `symmetries prints the order of the board symmetry group, or of the
stabilizer of the --fix cells, and the cell orbits under it. With --json it
writes the group elements in the form build saves them.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return printSymmetries(cmd.OutOrStdout(), symFixed, symJSON)
		},
	}
)

func init() {
	symmetriesCmd.Flags().BoolVar(&symJSON, "json", false, "Write the group elements as JSON")
	symmetriesCmd.Flags().IntSliceVar(&symFixed, "fix", nil, "Cells (0-15) the stabilizer must fix")
}

func printSymmetries(w io.Writer, fixed []int, asJSON bool) error {
	for _, c := range fixed {
		if c < 0 || c >= symmetry.NumCells {
			return fmt.Errorf("cell %d out of range [0, %d)", c, symmetry.NumCells)
		}
	}

	group, err := book.DefaultGroup()
	if err != nil {
		return err
	}
	if len(fixed) > 0 {
		group = group.Stabilizer(fixed)
	}
	if asJSON {
		return book.WriteSymmetriesJSON(w, group)
	}

	fmt.Fprintf(w, "order: %d\n", group.Order())
	for _, o := range group.Orbits() {
		cells := make([]string, len(o))
		for i, c := range o {
			cells[i] = strconv.Itoa(c)
		}
		fmt.Fprintf(w, "orbit: %s\n", strings.Join(cells, " "))
	}
	return nil
}
