package commands

import (
	"errors"
	"os"

	"github.com/spf13/cobra"
	"go.trai.ch/filepack/internal/app"
	"go.trai.ch/filepack/internal/core/domain"
)

const (
	prefixEnv  = "FILEPACK_PREFIX"
	nodeEnvVar = "NODE_ENV"
)

var errUnexpectedArgs = errors.New("unexpected arguments, pass install arguments after --")

func (c *CLI) runInstall(cmd *cobra.Command, args []string) error {
	installArgs, err := passthroughArgs(cmd, args)
	if err != nil {
		return err
	}

	flags := cmd.Flags()
	silent, _ := flags.GetBool("silent")
	progress, _ := flags.GetBool("progress")

	overrides := domain.Settings{InstallArgs: installArgs}
	if os.Getenv(nodeEnvVar) == "production" {
		overrides.Production = boolPtr(true)
	}
	if flags.Changed("production") {
		production, _ := flags.GetBool("production")
		overrides.Production = boolPtr(production)
	}
	if flags.Changed("nested-output") {
		nested, _ := flags.GetBool("nested-output")
		overrides.NestedOutput = boolPtr(nested)
	}
	if flags.Changed("jobs") {
		jobs, _ := flags.GetInt("jobs")
		if jobs < 1 {
			return errors.New("--jobs must be at least 1")
		}
		overrides.Jobs = jobs
	}
	overrides.PackageManager, _ = flags.GetString("package-manager")

	return c.app.Install(cmd.Context(), app.InstallOptions{
		Dir:       projectDir(cmd),
		Overrides: overrides,
		Silent:    silent,
		Progress:  progress,
		Log:       logOptions(cmd),
	})
}

// passthroughArgs returns the arguments given after "--". Anything before it is rejected.
func passthroughArgs(cmd *cobra.Command, args []string) ([]string, error) {
	dash := cmd.ArgsLenAtDash()
	switch {
	case len(args) == 0:
		return nil, nil
	case dash == 0:
		return args, nil
	default:
		return nil, errUnexpectedArgs
	}
}

func addCommonFlags(cmd *cobra.Command) {
	cmd.Flags().String("prefix", "", "Project directory to run in (default from FILEPACK_PREFIX, else the current directory)")
	cmd.Flags().BoolP("verbose", "v", false, "Log additional output useful for debugging")
	cmd.Flags().Bool("json-logs", false, "Write logs as JSON")
}

// projectDir returns the directory to run in. An absolute prefix is used as given,
// not joined onto the working directory.
func projectDir(cmd *cobra.Command) string {
	if cmd.Flags().Changed("prefix") {
		prefix, _ := cmd.Flags().GetString("prefix")
		return prefix
	}
	if prefix := os.Getenv(prefixEnv); prefix != "" {
		return prefix
	}
	return "."
}

func logOptions(cmd *cobra.Command) app.LogOptions {
	verbose, _ := cmd.Flags().GetBool("verbose")
	jsonLogs, _ := cmd.Flags().GetBool("json-logs")
	return app.LogOptions{Verbose: verbose, JSON: jsonLogs}
}

func boolPtr(v bool) *bool {
	return &v
}
