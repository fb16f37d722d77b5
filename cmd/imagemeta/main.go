package main

import (
	"fmt"
	"os"
)

func main() {
	ctx := newCommandContext()
	if err := execute(newRootCommand(ctx), ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
