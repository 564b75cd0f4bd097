package cmd

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strconv"

	"github.com/etnz/caravan/config"
	"github.com/sirupsen/logrus"
)

// EnvVerbose tells extensions whether -v was given.
const EnvVerbose = "CARAVAN_VERBOSE"

// RunExtension attempts to find and execute an external cvn-<subcommand> binary.
// It returns (true, exitCode) if an extension was found and executed,
// and (false, 0) if no extension was found.
func RunExtension(subcommand string, args []string) (bool, int) {
	name := "cvn-" + subcommand

	lp, err := exec.LookPath(name)
	if err != nil {
		logrus.WithField("extension", name).Debug("extension not found in PATH")
		return false, 0
	}

	cmd := exec.Command(lp, args...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	// Extensions work on the same ledger.
	cmd.Env = append(os.Environ(),
		config.EnvDataDir+"="+settings.DataDir,
		config.EnvRedisAddress+"="+settings.RedisAddress,
		EnvVerbose+"="+strconv.FormatBool(*Verbose),
	)

	if err := cmd.Run(); err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return true, exitErr.ExitCode()
		}
		fmt.Fprintf(os.Stderr, "Error executing external command %q: %v\n", name, err)
		return true, 1
	}
	return true, 0
}
