// Command confcheck loads a configuration file the way applications using
// hjarta-config do and reports every problem found in it.
//
//	confcheck [path] [--config path] [--dir dir] [--section a:b] [--print yaml|json]
//
// Without a path argument the file is resolved from --config, then the
// APPCONFIG environment variable, then application.yaml, application.yml or
// application.json in --dir. The exit status is non-zero when the file cannot
// be read or decoded.
package main

import (
	"errors"
	"fmt"
	"os"
)

func main() {
	cmd := newRootCmd(os.Stdout, os.Stderr, nil)

	err := cmd.Execute()
	if err != nil {
		if !errors.Is(err, errCheckFailed) {
			_, _ = fmt.Fprintln(os.Stderr, "Error:", err)
		}

		os.Exit(1)
	}
}
