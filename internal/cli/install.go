// internal/cli/install.go
package cli

import (
	"errors"
	"fmt"
	"os/exec"
	"strings"

	"github.com/spf13/cobra"
)

var installCmd = &cobra.Command{
	Use:   "install [installer-arg...]",
	Short: "Build and install the source distribution",
	Long: `Build the source distribution and hand it to the configured installer.

Extra arguments are passed to the installer before the artifact path.

Examples:
  hopsdist install
  hopsdist install -- --user --no-deps`,
	RunE: runInstall,
}

// InstallError reports a non-zero installer exit
type InstallError struct {
	Code int
	Err  error
}

func (e *InstallError) Error() string {
	return fmt.Sprintf("installer exited with status %d", e.Code)
}

func (e *InstallError) Unwrap() error {
	return e.Err
}

func runInstall(cmd *cobra.Command, args []string) error {
	if len(config.Installer) == 0 {
		return fmt.Errorf("no installer configured")
	}

	_, artifact, err := build(cmd.Context())
	if err != nil {
		return err
	}

	argv := append([]string{}, config.Installer[1:]...)
	argv = append(argv, args...)
	argv = append(argv, artifact)

	log.Info("running %s %s", config.Installer[0], strings.Join(argv, " "))

	installer := exec.CommandContext(cmd.Context(), config.Installer[0], argv...)
	installer.Stdout = cmd.OutOrStdout()
	installer.Stderr = cmd.ErrOrStderr()

	if err := installer.Run(); err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return &InstallError{Code: exitErr.ExitCode(), Err: err}
		}
		return fmt.Errorf("running installer: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "✓ Installed %s\n", artifact)
	return nil
}
