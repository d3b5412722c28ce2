package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/notesapp/notes/internal/browser"
)

// openURL is swapped out in tests.
var openURL = browser.Open

func (c *cli) openCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "open",
		Short: "Open the web dashboard in your browser",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := openURL(c.cfg.WebURL); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Opened %s\n", c.cfg.WebURL)
			return nil
		},
	}
}
