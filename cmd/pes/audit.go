package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pesenv/pes/manifest"
)

func newAuditCmd() *cobra.Command {
	var manifestPath string

	cmd := &cobra.Command{
		Use:   "audit",
		Short: "Validate a manifest without performing a solve",
		RunE: func(cmd *cobra.Command, args []string) error {
			path := manifestPath
			if path == "" {
				path = "manifest.yaml"
			}

			mf, err := manifest.Load(path)
			if err != nil {
				return fmt.Errorf("audit: %w", err)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s: ok\n", mf.Distribution())
			for _, targetName := range mf.Targets.Keys() {
				reqs, err := mf.Requires(targetName)
				if err != nil {
					return fmt.Errorf("audit: target %q: %w", targetName, err)
				}
				fmt.Fprintf(out, "  target %q: %d requirement(s)\n", targetName, len(reqs))
				for _, r := range reqs {
					fmt.Fprintf(out, "    %s %s\n", r.Package, r.Range)
				}
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&manifestPath, "manifest", "m", "", "path to the manifest to validate (default \"manifest.yaml\")")

	return cmd
}
