// Package commands implements the CLI commands for the hob package manager.
package commands

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"go.trai.ch/hob/internal/app"
	"go.trai.ch/hob/internal/build"
	"go.trai.ch/hob/internal/core/domain"
	"go.trai.ch/hob/internal/engine/lifecycle"
	"go.trai.ch/zerr"
)

// CLI represents the command line interface for hob.
type CLI struct {
	app     Application
	rootCmd *cobra.Command
}

// Application represents the application logic interface.
type Application interface {
	Configure(s app.Settings)

	Install(ctx context.Context, name string, opts app.InstallOptions) (*app.InstallReport, error)
	Remove(ctx context.Context, name string, opts app.RemoveOptions) (*app.RemoveReport, error)
	Update(ctx context.Context, name string) ([]*lifecycle.Update, error)
	Upgrade(ctx context.Context, name string, opts app.UpgradeOptions) ([]app.Upgrade, error)
	Autoremove(ctx context.Context, dryRun bool) ([]string, error)

	List(ctx context.Context, opts app.ListOptions) ([]*domain.Recipe, error)
	Search(ctx context.Context, pattern string) ([]*domain.Recipe, error)
	Info(ctx context.Context, name string) (*domain.Recipe, error)
	Deps(ctx context.Context, name string) ([]app.DepStatus, error)
	Tree(ctx context.Context, name string) (*app.TreeNode, error)
	Why(ctx context.Context, name string) ([][]string, error)
	Impact(ctx context.Context, name string) ([]string, error)
	Orphans(ctx context.Context) ([]string, error)
	Hash(ctx context.Context, files []string) ([]domain.FileHash, error)

	LockUpdate(ctx context.Context) (*domain.Lockfile, error)
	LockShow(ctx context.Context) (*domain.Lockfile, error)
	LockVerify(ctx context.Context) ([]domain.Mismatch, error)
}

// New creates a new CLI instance with the given app.
func New(a Application) *CLI {
	c := &CLI{app: a}

	var settings app.Settings
	rootCmd := &cobra.Command{
		Use:           "hob",
		Short:         "A local-first package manager driven by recipe scripts",
		SilenceUsage:  true,
		SilenceErrors: true,
		Version:       build.Version,
		Args:          usage(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
		PersistentPreRun: func(_ *cobra.Command, _ []string) {
			c.app.Configure(settings)
		},
	}

	rootCmd.SetVersionTemplate(fmt.Sprintf(
		"{{.Name}} version {{.Version}} (commit: %s, date: %s)\n",
		build.Commit,
		build.Date,
	))
	rootCmd.InitDefaultVersionFlag()
	rootCmd.Flags().Lookup("version").Usage = "Print the application version"

	rootCmd.InitDefaultHelpFlag()
	rootCmd.Flags().Lookup("help").Usage = "Show help for command"

	rootCmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return zerr.Wrap(domain.ErrUsage, err.Error())
	})

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&settings.Overrides.RecipesPath, "recipes-path", "", "Directory containing recipe files")
	flags.StringVar(&settings.Overrides.Prefix, "prefix", "", "Destination root for installed files")
	flags.StringVar(&settings.Overrides.BuildDir, "build-dir", "", "Root of per-recipe build directories")
	flags.BoolVar(&settings.JSONLogs, "json-logs", false, "Emit logs as JSON")

	c.rootCmd = rootCmd

	rootCmd.AddCommand(
		c.newInstallCmd(),
		c.newRemoveCmd(),
		c.newUpdateCmd(),
		c.newUpgradeCmd(),
		c.newAutoremoveCmd(),
		c.newListCmd(),
		c.newSearchCmd(),
		c.newInfoCmd(),
		c.newDepsCmd(),
		c.newTreeCmd(),
		c.newWhyCmd(),
		c.newImpactCmd(),
		c.newOrphansCmd(),
		c.newHashCmd(),
		c.newLockCmd(),
		c.newVersionCmd(),
	)

	return c
}

// Execute runs the root command with the given context.
func (c *CLI) Execute(ctx context.Context) error {
	c.rootCmd.SetContext(ctx)
	return c.rootCmd.Execute()
}

// SetArgs sets the arguments for the root command. Used for testing.
func (c *CLI) SetArgs(args []string) {
	c.rootCmd.SetArgs(args)
}

// SetOutput sets the output and error streams for the root command. Used for testing.
func (c *CLI) SetOutput(out, err io.Writer) {
	c.rootCmd.SetOut(out)
	c.rootCmd.SetErr(err)
}

// usage marks argument validation failures as usage errors.
func usage(validate cobra.PositionalArgs) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if err := validate(cmd, args); err != nil {
			return zerr.Wrap(domain.ErrUsage, err.Error())
		}
		return nil
	}
}
