package main

import (
	"fmt"
	"log/slog"
	"net"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"golang.org/x/time/rate"

	"github.com/dillkhalifa/price-sniffer/internal/cli"
	"github.com/dillkhalifa/price-sniffer/internal/common"
	"github.com/dillkhalifa/price-sniffer/internal/config"
	"github.com/dillkhalifa/price-sniffer/internal/fixture"
)

func fixtureServerCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "fixture-server",
		Short: "Serve canned price results for offline use",
		Long: `Start a local stand-in for the price service that answers searches
from a JSON fixture file. Point the client at it with --base-url.`,
		RunE: runFixtureServer,
	}

	cmd.Flags().String("file", "", "fixture file (default: built-in catalog)")
	cmd.Flags().String("host", "127.0.0.1", "address to listen on")
	cmd.Flags().Int("port", 8000, "port to listen on")
	cmd.Flags().Duration("latency", 0, "artificial delay added to each search")
	cmd.Flags().Float64("rate", float64(fixture.DefaultRateLimit), "searches per second allowed per client (0 disables limiting)")
	cmd.Flags().Int("burst", fixture.DefaultBurst, "burst size for the rate limiter")

	return cmd
}

func runFixtureServer(cmd *cobra.Command, _ []string) error {
	flags := cmd.Flags()
	file, _ := flags.GetString("file")
	host, _ := flags.GetString("host")
	port, _ := flags.GetInt("port")
	latency, _ := flags.GetDuration("latency")
	perSecond, _ := flags.GetFloat64("rate")
	burst, _ := flags.GetInt("burst")

	if port <= 0 || port > 65535 {
		return fmt.Errorf("%w: port %d", common.ErrInvalidConfig, port)
	}

	catalog, err := fixture.LoadCatalog(config.ExpandPath(file))
	if err != nil {
		return err
	}

	gin.SetMode(gin.ReleaseMode)
	router, err := fixture.NewRouter(fixture.Config{
		Catalog:   catalog,
		Logger:    slog.Default(),
		Latency:   latency,
		RateLimit: limitFor(perSecond),
		Burst:     burst,
	})
	if err != nil {
		return err
	}

	addr := net.JoinHostPort(host, strconv.Itoa(port))
	fmt.Fprintln(cmd.ErrOrStderr(), cli.RenderBox(cli.TagIcon+" Fixture price service", fmt.Sprintf(
		"URL:      http://%s\nResults:  %d\nLatency:  %s\n\nRun: pricesniffer --base-url http://%s",
		addr, catalog.Len(), latency, addr)))

	if err := fixture.Serve(cmd.Context(), addr, router, slog.Default()); err != nil {
		common.LogError(err, "Fixture server stopped", common.Fields{"addr": addr})
		return err
	}
	return nil
}

// limitFor converts the --rate flag; zero or less disables limiting.
func limitFor(perSecond float64) rate.Limit {
	if perSecond <= 0 {
		return rate.Inf
	}
	return rate.Limit(perSecond)
}

