package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pesenv/pes/envcompose"
	"github.com/pesenv/pes/launcher"
	"github.com/pesenv/pes/lockfile"
)

func newShellCmd() *cobra.Command {
	var distribution string
	var target string
	var lockPath string
	var preRelease string

	cmd := &cobra.Command{
		Use:   "shell [constraints...] [-- command args...]",
		Short: "Resolve constraints and exec a subshell (or a specific command) inside the environment",
		RunE: func(cmd *cobra.Command, args []string) error {
			var command []string
			if dash := cmd.ArgsLenAtDash(); dash >= 0 {
				command = args[dash:]
				args = args[:dash]
			}

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
					return fmt.Errorf("shell: no constraints given (and no -D/--distribution or --lockfile)")
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

			log.WithField("vars", len(composed)).Debug("composed environment, launching")

			l := launcher.New(envcompose.Render(composed))
			if len(command) > 0 {
				return l.Run(command[0], command[1:])
			}
			return l.Shell(launcher.ShellFromEnv())
		},
	}

	cmd.Flags().StringVarP(&distribution, "distribution", "D", "", "solve a specific \"name-version\" distribution's target instead of free-form constraints")
	cmd.Flags().StringVarP(&target, "target", "t", "", "manifest target to resolve (default \"run\")")
	cmd.Flags().StringVar(&lockPath, "lockfile", "", "launch an already-solved lockfile target")
	cmd.Flags().StringVar(&preRelease, "pre-release", "release", "minimum release type to consider: release, rc, beta, alpha")

	return cmd
}
