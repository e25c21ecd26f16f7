// Package commands implements the CLI commands for filepack.
package commands

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"go.trai.ch/filepack/internal/app"
	"go.trai.ch/filepack/internal/build"
)

// CLI represents the command line interface for filepack.
type CLI struct {
	app     Application
	rootCmd *cobra.Command
}

// Application represents the application logic interface.
type Application interface {
	Install(ctx context.Context, opts app.InstallOptions) error
	Restore(ctx context.Context, opts app.RestoreOptions) error
}

// New creates a new CLI instance with the given app.
func New(a Application) *CLI {
	c := &CLI{app: a}

	rootCmd := &cobra.Command{
		Use:   "filepack [flags] [-- install-args...]",
		Short: "Install npm dependencies, packing file+pack: local packages first",
		Long: "filepack packs every dependency declared as file+pack:<path>, points package.json\n" +
			"at the archives, runs the package manager install and restores package.json.",
		Args:          cobra.ArbitraryArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		Version:       build.Version,
		RunE:          c.runInstall,
	}
	c.rootCmd = rootCmd

	addCommonFlags(rootCmd)
	rootCmd.Flags().Bool("production", false, "Install runtime dependencies only (default from NODE_ENV=production)")
	rootCmd.Flags().Bool("silent", false, "Hide the output of the top-level install")
	rootCmd.Flags().Bool("progress", false, "Show a live list of install and pack steps instead of package manager output")
	rootCmd.Flags().Bool("nested-output", false, "Show the output of installs and packs run for dependencies")
	rootCmd.Flags().IntP("jobs", "j", 0, "Number of dependencies packed concurrently (default 1)")
	rootCmd.Flags().String("package-manager", "", "Package manager binary used for install and pack (default \"npm\")")

	rootCmd.SetVersionTemplate(fmt.Sprintf(
		"{{.Name}} version {{.Version}} (commit: %s, date: %s)\n",
		build.Commit,
		build.Date,
	))
	rootCmd.InitDefaultVersionFlag()
	rootCmd.Flags().Lookup("version").Usage = "Print the application version"

	rootCmd.InitDefaultHelpFlag()
	rootCmd.Flags().Lookup("help").Usage = "Show help for command"

	rootCmd.AddCommand(c.newRestoreCmd())
	rootCmd.AddCommand(c.newVersionCmd())

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
