package main

import (
	"fmt"
	"os"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/yourusername/quantikbook/pkg/book"
)

var binarizeCmd = &cobra.Command{
	Use:   "binarize <tree.json> <symmetries.json> <book.bin>",
	Short: "Encode a saved tree checkpoint as a binary opening book",
	Long: `binarize re-encodes the JSON checkpoints written by build without
solving anything. The tree must be fully resolved.`,
	Args: cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		return binarize(args[0], args[1], args[2])
	},
}

func binarize(treePath, symPath, outPath string) error {
	tf, err := os.Open(treePath)
	if err != nil {
		return err
	}
	defer tf.Close()
	tree, err := book.ReadTreeJSON(tf)
	if err != nil {
		return fmt.Errorf("%s: %w", treePath, err)
	}

	sf, err := os.Open(symPath)
	if err != nil {
		return err
	}
	defer sf.Close()
	group, err := book.ReadSymmetriesJSON(sf)
	if err != nil {
		return fmt.Errorf("%s: %w", symPath, err)
	}

	if err := book.WriteFile(outPath, group, tree); err != nil {
		return err
	}
	log.Info().Str("path", outPath).Int("nodes", tree.Len()).Int("symmetries", group.Order()).Msg("wrote opening book")
	return nil
}
