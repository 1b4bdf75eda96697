package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/avery-ling/task-tracker/internal/api"
)

var uiCmd = &cobra.Command{
	Use:   "ui [port]",
	Short: "Start the dashboard API server",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runUI,
}

func init() {
	rootCmd.AddCommand(uiCmd)
}

func runUI(cmd *cobra.Command, args []string) error {
	port := "8080"
	if len(args) == 1 {
		port = args[0]
	}

	d, err := newDeps()
	if err != nil {
		printErr(err)
		return err
	}
	defer d.Store.Close()

	server := api.New(d.Store, d.Config, d.Orch, d.Runner, d.Children, d.LogsDir, d.PlansDir)

	ctx, stop := context.WithCancel(cmd.Context())
	defer stop()

	sigCh := make(chan os.Signal, 2)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	go watchSignals(sigCh, d, stop)

	printInfo("dashboard listening on :%s", port)
	err = server.ListenAndServe(ctx, ":"+port)
	if err != nil && errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// watchSignals implements the cancellation-asymmetry rule: SIGTERM exits
// immediately; SIGINT is advisory and is ignored while agent children are
// still alive, unless a second SIGINT arrives.
func watchSignals(sigCh <-chan os.Signal, d *deps, stop context.CancelFunc) {
	interruptsSeen := 0
	for sig := range sigCh {
		if sig == syscall.SIGTERM {
			stop()
			return
		}

		interruptsSeen++
		if n := d.Children.Len(); n > 0 && interruptsSeen == 1 {
			fmt.Fprintf(os.Stderr, "\n%d agent process(es) still running; interrupt again to abandon them and exit\n", n)
			continue
		}
		stop()
		return
	}
}
