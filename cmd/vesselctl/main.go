// vesselctl - command-line client for the vesseld control API
package main

import "github.com/vesselhq/vesselctl/pkg/cli"

func main() {
	cli.Execute()
}
