package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pesenv/pes/envcompose"
	"github.com/pesenv/pes/lockfile"
)

func newEnvCmd() *cobra.Command {
	var distribution string
	var target string
	var lockPath string
	var preRelease string

	cmd := &cobra.Command{
		Use:   "env [constraints...]",
		Short: "Resolve constraints and print the composed environment",
		RunE: func(cmd *cobra.Command, args []string) error {
			repos, err := openRepositories()
			if err != nil {
				return err
			}

			minReleaseType, err := releaseTypeFlag(preRelease)
			if err != nil {
				return err
			}

			var solutionEntries []composedEntry

			switch {
			case lockPath != "":
				lf, err := lockfile.FromFile(lockPath)
				if err != nil {
					return err
				}
				if target == "" {
					target = "run"
				}
				dists, err := lf.SelectedDependenciesFor(target)
				if err != nil {
					return err
				}
				for _, d := range dists {
					solutionEntries = append(solutionEntries, composedEntry{Package: d.Package, Version: d.Version.String()})
				}

			case distribution != "":
				if target == "" {
					target = "run"
				}
				mf, err := loadManifestAcross(repos, distribution)
				if err != nil {
					return err
				}
				reqs, err := mf.Requires(target)
				if err != nil {
					return err
				}
				s, err := buildSolver(repos, minReleaseType)
				if err != nil {
					return err
				}
				sol, err := s.Solve(reqs)
				if err != nil {
					return err
				}
				for _, e := range sol.Entries() {
					solutionEntries = append(solutionEntries, composedEntry{Package: e.Package, Version: e.Version.String()})
				}
				solutionEntries = append(solutionEntries, composedEntry{Package: mf.Name, Version: mf.Version.String()})

			default:
				if len(args) == 0 {
					return fmt.Errorf("env: no constraints given (and no -D/--distribution or --lockfile)")
				}
				s, err := buildSolver(repos, minReleaseType)
				if err != nil {
					return err
				}
				sol, err := s.SolveFromString(strings.Join(args, " "))
				if err != nil {
					return err
				}
				for _, e := range sol.Entries() {
					solutionEntries = append(solutionEntries, composedEntry{Package: e.Package, Version: e.Version.String()})
				}
			}

			composed, err := composeEntries(repos, solutionEntries)
			if err != nil {
				return err
			}

			for _, line := range envcompose.Render(composed) {
				fmt.Fprintln(cmd.OutOrStdout(), line)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&distribution, "distribution", "D", "", "solve a specific \"name-version\" distribution's target instead of free-form constraints")
	cmd.Flags().StringVarP(&target, "target", "t", "", "manifest target to resolve (default \"run\")")
	cmd.Flags().StringVar(&lockPath, "lockfile", "", "print the environment for an already-solved lockfile target")
	cmd.Flags().StringVar(&preRelease, "pre-release", "release", "minimum release type to consider: release, rc, beta, alpha")

	return cmd
}

// composedEntry is a package/version.String() pair, used so both the
// live-solve and lockfile-replay paths can share composeEntries
// without importing each other's Solution-shaped types.
type composedEntry struct {
	Package string
	Version string
}
