package main

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"github.com/JonMunkholm/orderimport/internal/core"
	"github.com/JonMunkholm/orderimport/internal/inventory"
	"github.com/JonMunkholm/orderimport/internal/logging"
)

// Exit codes of validate and batch.
const (
	exitFailed    = 1 // file-level failure or bad usage
	exitRowErrors = 2 // the file was processed but rows were rejected
)

// exitError carries a process exit code. err may be nil when the output
// already explains the failure.
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string {
	if e.err == nil {
		return fmt.Sprintf("exit status %d", e.code)
	}
	return e.err.Error()
}

func (e *exitError) Unwrap() error { return e.err }

// sourceFlags selects the catalog source shared by validate and batch.
type sourceFlags struct {
	catalog      string
	inventoryURL string
	token        string
	timeout      time.Duration
	retries      uint64
}

func (f *sourceFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.catalog, "catalog", "", "JSON catalog file (array, or object keyed by warehouse id)")
	cmd.Flags().StringVar(&f.inventoryURL, "inventory-url", "", "Inventory service base URL")
	cmd.Flags().StringVar(&f.token, "token", "", "Bearer token for the inventory service")
	cmd.Flags().DurationVar(&f.timeout, "timeout", 10*time.Second, "Inventory request timeout")
	cmd.Flags().Uint64Var(&f.retries, "retries", 2, "Inventory retries after a failed request")
	cmd.MarkFlagsMutuallyExclusive("catalog", "inventory-url")
}

func (f *sourceFlags) gateway() (core.InventoryGateway, error) {
	switch {
	case f.catalog != "":
		return inventory.NewFileGateway(f.catalog), nil
	case f.inventoryURL != "":
		return inventory.NewHTTPGateway(inventory.HTTPConfig{
			BaseURL:    f.inventoryURL,
			APIToken:   f.token,
			Timeout:    f.timeout,
			MaxRetries: f.retries,
		}, nil)
	default:
		return nil, &exitError{code: exitFailed, err: fmt.Errorf("one of --catalog or --inventory-url is required")}
	}
}

func newRootCmd() *cobra.Command {
	var logLevel string

	root := &cobra.Command{
		Use:           "orderimport",
		Short:         "Validate bulk order files against a warehouse catalog",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "Log level: debug, info, warn, error")
	root.PersistentPreRun = func(cmd *cobra.Command, args []string) {
		// Logs go to stderr so stdout stays machine readable.
		slog.SetDefault(logging.New(cmd.ErrOrStderr(), logLevel, "text"))
	}

	root.AddCommand(
		newValidateCmd(),
		newBatchCmd(),
		newTemplateCmd(),
	)
	return root
}

func writeIndentedJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
