package cmd

import (
	"context"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/corpeningc/reconcile/internal/config"
	"github.com/corpeningc/reconcile/internal/git"
	"github.com/corpeningc/reconcile/internal/logging"
	"github.com/corpeningc/reconcile/internal/plan"
	"github.com/corpeningc/reconcile/internal/reconcile"
	"github.com/corpeningc/reconcile/internal/ui"
)

type rootOptions struct {
	configPath string
	workDir    string
	verbose    int
}

func NewRootCmd() *cobra.Command {
	opts := &rootOptions{}

	rootCmd := &cobra.Command{
		Use:   "reconcile",
		Short: "Reconcile a work tree against a policy after a merge or rebase",
		Long: "Deletes files matching configured globs and resolves merge conflicts\n" +
			"according to per-path rules (keep ours, accept their deletion).",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			logging.SetupLogger(opts.verbose)
		},
	}

	rootCmd.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "", "config file (default: .reconcile.{yaml,yml,toml,json} or reconcile.nix in the work dir)")
	rootCmd.PersistentFlags().StringVarP(&opts.workDir, "dir", "C", ".", "repository work dir")
	rootCmd.PersistentFlags().CountVarP(&opts.verbose, "verbose", "v", "increase log verbosity")

	rootCmd.AddCommand(newApplyCmd(opts))
	rootCmd.AddCommand(newPlanCmd(opts))

	return rootCmd
}

func Execute(ctx context.Context) error {
	return NewRootCmd().ExecuteContext(ctx)
}

// newReconciler wires the config, git backend and planner for one run.
func newReconciler(ctx context.Context, opts *rootOptions) (*reconcile.Reconciler, error) {
	workDir, err := repoRoot(ctx, opts.workDir)
	if err != nil {
		return nil, err
	}

	runner := git.NewExecRunner(workDir)

	cfg, err := config.NewLoader(workDir, opts.configPath, runner).Load(ctx)
	if err != nil {
		return nil, err
	}

	repo := git.New(workDir, runner)
	repo.Binary = cfg.GitBinary

	planner := plan.New(repo, os.DirFS(workDir), cfg.Rules())
	rec := reconcile.New(planner, runner, ui.NewPrompter(os.Stdin, os.Stdout), os.Stdout)
	rec.Styles = ui.StylesFor(os.Stdout)

	return rec, nil
}

// repoRoot resolves dir to the top level of its work tree, so that a
// subdirectory passed as --dir still plans against repository-relative paths.
func repoRoot(ctx context.Context, dir string) (string, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", err
	}

	repo := git.New(abs, git.NewExecRunner(abs))
	if bin := os.Getenv(config.EnvGitBinary); bin != "" {
		repo.Binary = bin
	}
	return repo.TopLevel(ctx)
}
