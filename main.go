package main

import (
	"context"
	"os"

	"github.com/yaklabco/watchtest/cmd/watchtest"
	"github.com/yaklabco/watchtest/pkg/exitcode"
)

func main() {
	os.Exit(actualMain())
}

func actualMain() int {
	ctx := context.Background()

	rootCmd := watchtest.NewRootCmd(ctx)

	return exitcode.ExitStatus(watchtest.ExecuteWithFang(ctx, rootCmd))
}
