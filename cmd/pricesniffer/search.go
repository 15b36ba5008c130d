package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/dillkhalifa/price-sniffer/internal/chart"
	"github.com/dillkhalifa/price-sniffer/internal/cli"
	"github.com/dillkhalifa/price-sniffer/internal/common"
	"github.com/dillkhalifa/price-sniffer/internal/config"
	"github.com/dillkhalifa/price-sniffer/internal/model"
	"github.com/dillkhalifa/price-sniffer/internal/session"
	"github.com/dillkhalifa/price-sniffer/internal/tui/viewmodel"
)

const spinnerInterval = 100 * time.Millisecond

type searchOptions struct {
	text      string
	imagePath string
	chartPath string
	locale    string
	chartSize int
	jsonOut   bool
}

func searchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "search [product name]",
		Short: "Search prices once and print the offers",
		Long: `Search the price service for a product by name, by photo, or both,
and print the offers sorted from cheapest to most expensive.`,
		Example: `  pricesniffer search sony wh-1000xm5
  pricesniffer search --image ~/Pictures/sneaker.jpg
  pricesniffer search iphone 15 --json
  pricesniffer search iphone 15 --chart prices.png`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := common.WithLogger(cmd.Context(), slog.Default().With("command", "search"))

			client, clientCfg, err := newClient(ctx)
			if err != nil {
				return err
			}

			imagePath, _ := cmd.Flags().GetString("image")
			chartPath, _ := cmd.Flags().GetString("chart")
			jsonOut, _ := cmd.Flags().GetBool("json")

			return runSearch(ctx, cmd.OutOrStdout(), cmd.ErrOrStderr(), client, searchOptions{
				text:      strings.Join(args, " "),
				imagePath: config.ExpandPath(imagePath),
				chartPath: config.ExpandPath(chartPath),
				jsonOut:   jsonOut,
				locale:    config.LoadUI(viper.GetViper()).Locale,
				chartSize: clientCfg.ChartTopN,
			})
		},
	}

	cmd.Flags().StringP("image", "i", "", "search by photo")
	cmd.Flags().String("chart", "", "write a PNG chart of the cheapest offers to this path")
	cmd.Flags().Bool("json", false, "print the raw result as JSON")
	cmd.Flags().String("locale", config.DefaultLocale, "locale used for price grouping")

	_ = viper.BindPFlag(config.KeyLocale, cmd.Flags().Lookup("locale"))

	return cmd
}

func runSearch(ctx context.Context, out, errOut io.Writer, d session.Dispatcher, opts searchOptions) error {
	sess := session.New()
	sess.SetText(opts.text)

	var (
		ticket session.Ticket
		ok     bool
	)

	interrupts := cli.NewInterruptHandler(errOut)
	ctx = interrupts.HandleInterrupts(ctx, opts.text)
	defer interrupts.Stop()

	if opts.imagePath != "" {
		image, err := model.ReadImage(opts.imagePath)
		if err != nil {
			return err
		}
		ticket, ok = sess.SetImage(ctx, image)
	} else {
		ticket, ok = sess.Submit(ctx)
	}
	if !ok {
		return fmt.Errorf("%w: provide a product name or --image", common.ErrEmptyQuery)
	}

	result, err := await(ctx, errOut, sess, d, ticket)
	if err != nil {
		if interrupts.WasInterrupted() {
			return nil
		}
		common.LogDebug("Search failed", common.Fields{
			"query": ticket.Query.Label(),
			"kind":  common.Classify(err),
			"error": err.Error(),
		})
		return common.NewUserError(common.UserMessage(err), err)
	}

	view := viewmodel.NewResultsView(result, opts.chartSize)

	if opts.jsonOut {
		if err := cli.WriteJSON(out, result); err != nil {
			return err
		}
	} else if err := cli.RenderResults(out, view, cli.NewPriceFormatter(opts.locale)); err != nil {
		return fmt.Errorf("failed to print results: %w", err)
	}

	if opts.chartPath != "" {
		return exportChart(errOut, view, opts.chartPath)
	}
	return nil
}

// await runs the exchange for ticket while a spinner runs on w.
func await(ctx context.Context, w io.Writer, sess *session.Session, d session.Dispatcher, ticket session.Ticket) (*model.SearchResult, error) {
	spinner := cli.NewSpinner(w, "Searching for "+ticket.Query.Label()+"...")
	done := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		ticker := time.NewTicker(spinnerInterval)
		defer ticker.Stop()
		for {
			select {
			case <-done:
				return
			case <-ctx.Done():
				return
			case <-ticker.C:
				spinner.Tick()
			}
		}
	}()

	result, err := sess.Await(ticket, d)
	close(done)
	wg.Wait()
	spinner.Stop()
	return result, err
}

func exportChart(w io.Writer, view viewmodel.ResultsView, path string) error {
	err := chart.WriteFile(path, view.Chart, view.Title())
	if errors.Is(err, chart.ErrNoData) {
		fmt.Fprintln(w, cli.FormatWarning("No prices to chart"))
		return nil
	}
	if err != nil {
		return err
	}
	fmt.Fprintln(w, cli.FormatSuccess("Chart saved to "+path))
	return nil
}
