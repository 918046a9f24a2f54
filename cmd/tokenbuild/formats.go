package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-tokens/codec"
	"github.com/goliatone/go-tokens/transform"
)

var formatsCmd = &cobra.Command{
	Use:   "formats",
	Short: "List registered codec formats and transformers",
	Run: func(cmd *cobra.Command, args []string) {
		out := cmd.OutOrStdout()

		fmt.Fprintln(out, "formats:")
		for _, format := range codec.DefaultRegistry().Formats() {
			fmt.Fprintf(out, "  %s\n", format)
		}

		fmt.Fprintln(out, "transformers:")
		for _, name := range transform.DefaultRegistry().Names() {
			fmt.Fprintf(out, "  %s\n", name)
		}
	},
}

func init() {
	rootCmd.AddCommand(formatsCmd)
}
