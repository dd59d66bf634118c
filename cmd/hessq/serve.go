package main

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/Veraticus/hessq/internal/cli"
	"github.com/Veraticus/hessq/internal/server"
	"github.com/Veraticus/hessq/internal/service"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func serveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the browser upload UI",
		Long: `Serve a local page where a transaction CSV can be uploaded and the rendered graph
is shown. Without an upload the built-in dataset is used.`,
		RunE: runServe,
	}

	cmd.Flags().String("addr", ":8501", "Address to listen on")
	cmd.Flags().Int("max-upload-mb", 10, "Maximum upload size in megabytes")
	cmd.Flags().Int("max-rows", 5000, "Maximum number of transactions per upload")
	cmd.Flags().Bool("access-log", false, "Log every request")

	_ = viper.BindPFlag("server.addr", cmd.Flags().Lookup("addr"))
	_ = viper.BindPFlag("server.max_upload_mb", cmd.Flags().Lookup("max-upload-mb"))
	_ = viper.BindPFlag("server.max_rows", cmd.Flags().Lookup("max-rows"))
	_ = viper.BindPFlag("server.access_log", cmd.Flags().Lookup("access-log"))

	return cmd
}

func runServe(cmd *cobra.Command, _ []string) error {
	settings, err := loadSettings()
	if err != nil {
		return err
	}

	interruptHandler := cli.NewInterruptHandler(os.Stderr, "Stopping server...")
	ctx := interruptHandler.HandleInterrupts(cmd.Context())

	var history service.Storage
	if settings.History.Enabled {
		history, err = initStorage(ctx, settings)
		if err != nil {
			return fmt.Errorf("failed to open run history: %w", err)
		}
		defer func() { _ = history.Close() }()
	}

	srv, err := server.New(server.Config{
		Version:     version,
		Render:      settings.Render,
		Graph:       settings.Graph,
		MaxUploadMB: settings.Server.MaxUploadMB,
		MaxRows:     settings.Server.MaxRows,
		AccessLog:   settings.Server.AccessLog,
	}, history)
	if err != nil {
		return err
	}

	slog.Info(cli.FormatTitle("HessQ Fraud Detection Demo"))
	slog.Info(cli.FormatInfo(fmt.Sprintf("Open http://localhost%s in your browser", displayAddr(settings.Server.Addr))))

	if err := srv.Listen(ctx, settings.Server.Addr); err != nil {
		return fmt.Errorf("server failed: %w", err)
	}

	if interruptHandler.WasInterrupted() {
		slog.Info(cli.FormatSuccess("Server stopped"))
	}
	return nil
}

// displayAddr strips a host so ":8501" and "0.0.0.0:8501" both print as a localhost port.
func displayAddr(addr string) string {
	if i := strings.LastIndex(addr, ":"); i >= 0 {
		return addr[i:]
	}
	return ":" + addr
}
