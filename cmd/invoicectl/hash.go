package main

import (
	"encoding/hex"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"tradeinvoice/pkg/contenthash"
)

func newHashCmd() *cobra.Command {
	var (
		file string
		raw  bool
	)

	cmd := &cobra.Command{
		Use:   "hash",
		Short: "Compute the content hash an invoice document registers under",
		Long: "Reads a YAML invoice document and prints its canonical content hash. " +
			"With --raw the file bytes are hashed as they are.",
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := readInput(cmd, file)
			if err != nil {
				return err
			}

			var sum [contenthash.Size]byte
			if raw {
				sum = contenthash.Keccak256(data)
			} else {
				var doc contenthash.Document
				if err := yaml.Unmarshal(data, &doc); err != nil {
					return fmt.Errorf("parse document: %w", err)
				}
				sum = contenthash.Sum(doc)
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "0x%s\n", hex.EncodeToString(sum[:]))
			return err
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "-", "document path, - for stdin")
	cmd.Flags().BoolVar(&raw, "raw", false, "hash file bytes instead of the parsed document")
	return cmd
}

func readInput(cmd *cobra.Command, path string) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(cmd.InOrStdin())
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return data, nil
}
