package main

import (
	"log/slog"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/dillkhalifa/price-sniffer/internal/config"
	"github.com/dillkhalifa/price-sniffer/internal/session"
	"github.com/dillkhalifa/price-sniffer/internal/tui"
	"github.com/dillkhalifa/price-sniffer/internal/tui/themes"
)

const keyBrowseDir = "ui.browse_dir"

func tuiCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tui",
		Short: "Open the interactive price search",
		Long: `Search by product name or pick a photo, then browse the offers,
price statistics and a chart of the cheapest merchants.`,
		RunE: runTUI,
	}

	cmd.Flags().String("theme", config.DefaultTheme, "color theme (default, catppuccin-mocha)")
	cmd.Flags().String("export-dir", ".", "directory for exported charts")
	cmd.Flags().String("browse-dir", "", "directory the image picker opens in")

	_ = viper.BindPFlag(config.KeyTheme, cmd.Flags().Lookup("theme"))
	_ = viper.BindPFlag(config.KeyExportDir, cmd.Flags().Lookup("export-dir"))
	_ = viper.BindPFlag(keyBrowseDir, cmd.Flags().Lookup("browse-dir"))

	return cmd
}

func runTUI(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	client, clientCfg, err := newClient(ctx)
	if err != nil {
		return err
	}
	ui := config.LoadUI(viper.GetViper())

	opts := []tui.Option{
		tui.WithDispatcher(client),
		tui.WithLogger(slog.Default()),
		tui.WithTheme(themes.GetTheme(ui.Theme)),
		tui.WithChartSize(clientCfg.ChartTopN),
		tui.WithExportDir(ui.ExportDir),
	}
	if dir := viper.GetString(keyBrowseDir); dir != "" {
		opts = append(opts, tui.WithBrowseDir(config.ExpandPath(dir)))
	}

	p, err := tui.New(ctx, opts...)
	if err != nil {
		return err
	}

	sess, err := p.Start()
	if err != nil {
		if ctx.Err() != nil {
			return nil
		}
		return err
	}

	if sess != nil && sess.Status() == session.StatusSucceeded {
		slog.Debug("Session ended with results", "deals", sess.Result().DealCount())
	}
	return nil
}
