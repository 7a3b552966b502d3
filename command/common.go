package command

import (
	"fmt"
	"os"
	"runtime"
	"strings"

	"github.com/frantjc/bvr"
	xslice "github.com/frantjc/x/slice"
	"github.com/spf13/cobra"
)

func isTruthy(s string) bool {
	return xslice.Some([]string{"1", "y", "yes", "true", "t"}, func(t string, _ int) bool {
		return strings.EqualFold(s, t)
	})
}

// SetCommon adds a verbosity flag to cmd that, together with BVR_VERBOSE,
// sets up the logger carried by its context, and sets its version.
func SetCommon(cmd *cobra.Command, version string) *cobra.Command {
	var verbosity int
	cmd.PersistentFlags().CountVarP(&verbosity, "verbose", "V", fmt.Sprintf("Verbosity for %s.", cmd.Name()))
	cmd.PersistentPreRun = func(cmd *cobra.Command, _ []string) {
		if verbose := os.Getenv("BVR_VERBOSE"); verbose != "" && isTruthy(verbose) && verbosity < 2 {
			verbosity = 2
		}

		cmd.SetContext(
			bvr.WithLogger(
				cmd.Context(), bvr.NewLogger(cmd.ErrOrStderr(), verbosity),
			),
		)
	}

	cmd.SilenceErrors = true
	cmd.SilenceUsage = true

	cmd.Version = version
	cmd.SetVersionTemplate("{{ .Name }}{{ .Version }} " + runtime.Version() + "\n")

	return cmd
}
