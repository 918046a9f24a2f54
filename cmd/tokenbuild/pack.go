package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-tokens/codec"
	"github.com/goliatone/go-tokens/pkg/storage"
)

var (
	flagPackFormat      string
	flagPackCompression string
	flagPackMinify      bool
	flagPackOut         string
	flagUnpackOut       string
)

var packCmd = &cobra.Command{
	Use:   "pack",
	Short: "Serialize the resolved store into an envelope file",
	RunE: func(cmd *cobra.Command, args []string) error {
		config, err := LoadConfig(flagConfig)
		if err != nil {
			return err
		}
		store, err := resolveStore(config)
		if err != nil {
			return err
		}

		opts := []storage.SerializeOption{
			storage.WithFormat(codec.Format(flagPackFormat)),
		}
		if flagPackCompression != "" {
			opts = append(opts, storage.WithCompression(codec.Compression(flagPackCompression)))
		}
		if flagPackMinify {
			opts = append(opts, storage.WithMinify())
		}

		envelope, err := storage.Serialize(cmd.Context(), store, opts...)
		if err != nil {
			return err
		}
		encoded, err := storage.EncodeEnvelope(envelope)
		if err != nil {
			return err
		}

		if err := os.WriteFile(flagPackOut, encoded, 0o644); err != nil {
			return fmt.Errorf("write envelope %q: %w", flagPackOut, err)
		}
		logger.Infof("packed %s: format=%s checksum=%s", flagPackOut, envelope.Format, envelope.Metadata.Checksum)
		return nil
	},
}

var unpackCmd = &cobra.Command{
	Use:   "unpack <envelope-file>",
	Short: "Deserialize an envelope file back into a token tree",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		envelope, err := storage.ReadEnvelopeFile(args[0])
		if err != nil {
			return err
		}

		store, err := storage.Deserialize(cmd.Context(), envelope)
		if err != nil {
			return err
		}

		c, err := codec.DefaultRegistry().Lookup(codec.JSON)
		if err != nil {
			return err
		}
		encoded, err := c.Encode(map[string]any{
			"metadata": store.Metadata,
			"tokens":   store.Tokens,
		}, false)
		if err != nil {
			return err
		}

		if flagUnpackOut == "" {
			fmt.Fprintln(cmd.OutOrStdout(), string(encoded))
			return nil
		}
		if err := os.WriteFile(flagUnpackOut, encoded, 0o644); err != nil {
			return fmt.Errorf("write tokens %q: %w", flagUnpackOut, err)
		}
		logger.Infof("unpacked %s: theme=%s mode=%s", flagUnpackOut, store.Metadata.Name, store.Metadata.Mode)
		return nil
	},
}

func init() {
	packCmd.Flags().StringVarP(&flagConfig, "config", "c", "tokens.yaml", "build manifest")
	packCmd.Flags().StringVar(&flagPackFormat, "format", string(codec.JSON), "wire format: json, yaml, toml, binary")
	packCmd.Flags().StringVar(&flagPackCompression, "compression", "", "payload compression: gzip, brotli")
	packCmd.Flags().BoolVar(&flagPackMinify, "minify", false, "compact encoding where the format has one")
	packCmd.Flags().StringVarP(&flagPackOut, "out", "o", "tokens.envelope.json", "envelope output path")

	unpackCmd.Flags().StringVarP(&flagUnpackOut, "out", "o", "", "token output path (stdout when empty)")

	rootCmd.AddCommand(packCmd)
	rootCmd.AddCommand(unpackCmd)
}
