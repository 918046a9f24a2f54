package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	tokens "github.com/goliatone/go-tokens"
	"github.com/goliatone/go-tokens/schema"
)

var (
	flagSchemaFile string
	flagStrict     bool
)

var validateCmd = &cobra.Command{
	Use:   "validate <tokens-file>",
	Short: "Schema-validate a token tree file",
	Long: `Validates a token tree against a JSON-Schema document. Without
--schema the schema is derived from the tree itself, which catches
heterogeneous color scales and malformed shapes. Every issue is
reported, not just the first.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		tree, err := loadTree(args[0])
		if err != nil {
			return err
		}

		var doc schema.Document
		if flagSchemaFile != "" {
			raw, err := os.ReadFile(flagSchemaFile)
			if err != nil {
				return fmt.Errorf("read schema %q: %w", flagSchemaFile, err)
			}
			if err := json.Unmarshal(raw, &doc); err != nil {
				return fmt.Errorf("parse schema %q: %w", flagSchemaFile, err)
			}
		} else {
			opts := []schema.Option{}
			if flagStrict {
				opts = append(opts, schema.WithStrict())
			}
			doc = schema.Generate(&tokens.Store{Tokens: tree}, opts...)
		}

		result := schema.Validate(tree, doc)
		if result.Valid {
			fmt.Fprintf(cmd.OutOrStdout(), "%s: valid\n", args[0])
			return nil
		}

		for _, issue := range result.Errors {
			fmt.Fprintf(cmd.OutOrStdout(), "%s: %s\n", issue.Path, issue.Message)
		}
		return fmt.Errorf("%d validation issue(s) in %s", len(result.Errors), args[0])
	},
}

func init() {
	validateCmd.Flags().StringVar(&flagSchemaFile, "schema", "", "validate against this schema document instead of a derived one")
	validateCmd.Flags().BoolVar(&flagStrict, "strict", false, "forbid unknown properties in the derived schema")
	rootCmd.AddCommand(validateCmd)
}
