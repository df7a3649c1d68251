// Command peter is the dashboard authoring toolchain CLI.
package main

import (
	"github.com/peterhq/peter/internal/cli"
)

func main() {
	cli.Execute()
}
