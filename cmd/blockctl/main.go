// Command blockctl inspects and edits block device images.
package main

import (
	"context"
	"os"

	"github.com/hupe1980/blockstore/internal/cli"
)

func main() {
	if err := cli.NewRootCommand().ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}
