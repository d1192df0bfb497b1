package main

import (
	"fmt"

	"github.com/recookio/recook/pkg/config"
	"github.com/spf13/cobra"
)

var genconfigCmd = &cobra.Command{
	Use:   "genconfig",
	Short: "Print the default configuration as TOML",
	RunE: func(cmd *cobra.Command, args []string) error {
		out, err := config.GenerateDefault()
		if err != nil {
			return err
		}
		fmt.Fprint(cmd.OutOrStdout(), out)
		return nil
	},
}
