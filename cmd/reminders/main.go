// Command reminders is a terminal reminder list.
package main

import (
	"fmt"
	"os"

	"github.com/roach88/reminders/internal/cli"
)

func main() {
	if err := cli.NewRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(cli.GetExitCode(err))
	}
}
