// Command grantimport imports grant workbooks from disk.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

func main() {
	_ = loadEnv()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

// loadEnv reads .env (or the given files) over the process environment, the
// same way the server does.
func loadEnv(files ...string) error {
	return godotenv.Overload(files...)
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "grantimport",
		Short:         "Import grant budget workbooks",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newImportCmd(), newMigrateCmd())
	return root
}
