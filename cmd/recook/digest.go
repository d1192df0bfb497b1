package main

import (
	"fmt"

	"github.com/recookio/recook/pkg/digest"
	"github.com/spf13/cobra"
)

var digestAlgorithm string

var digestCmd = &cobra.Command{
	Use:   "digest DIR",
	Short: "Compute the manifest digest of a directory tree",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		value, err := digest.Tree(args[0], digestAlgorithm)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), digest.FormatPair(digestAlgorithm, value))
		return nil
	},
}

var manifestCmd = &cobra.Command{
	Use:   "manifest DIR",
	Short: "Print the canonical manifest listing of a directory tree",
	Long: `Print the canonical per-file listing the digest is computed over. Useful
for locating the file responsible for a digest mismatch.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		alg, err := digest.Resolve(digestAlgorithm)
		if err != nil {
			return err
		}
		lines, err := alg.Manifest(args[0])
		if err != nil {
			return err
		}
		for _, line := range lines {
			fmt.Fprintln(cmd.OutOrStdout(), line)
		}
		return nil
	},
}

func init() {
	digestCmd.Flags().StringVar(&digestAlgorithm, "algorithm", "sha256new", "Digest algorithm")
	manifestCmd.Flags().StringVar(&digestAlgorithm, "algorithm", "sha256new", "Digest algorithm")
}
