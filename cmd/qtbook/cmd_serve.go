package main

import (
	"github.com/spf13/cobra"

	"github.com/yourusername/quantikbook/internal/config"
	"github.com/yourusername/quantikbook/internal/quantik"
	"github.com/yourusername/quantikbook/pkg/api"
)

var (
	serveHost string
	servePort int
	serveBook string

	serveCmd = &cobra.Command{
		Use:   "serve",
		Short: "Serve book lookups over HTTP and websockets",
		Args:  cobra.NoArgs,
		RunE:  runServe,
	}
)

func init() {
	serveCmd.Flags().StringVar(&serveHost, "host", "", "Host to bind to (use 0.0.0.0 for all interfaces)")
	serveCmd.Flags().IntVar(&servePort, "port", 0, "Port to listen on")
	serveCmd.Flags().StringVar(&serveBook, "book", "", "Opening book file (default from config)")
}

func runServe(cmd *cobra.Command, args []string) error {
	sc := cfg.Server
	if serveHost != "" {
		sc.Host = serveHost
	}
	if servePort > 0 {
		sc.Port = servePort
	}
	if serveBook != "" {
		sc.BookPath = serveBook
	}

	bk, err := loadBook(sc.BookPath)
	if err != nil {
		return err
	}

	server := api.NewServer(bk, quantik.NewSolver(sc.CacheSize), apiConfig(sc), version)
	return server.ListenAndServeWithGracefulShutdown()
}

func apiConfig(sc config.ServerConfig) api.ServerConfig {
	return api.ServerConfig{
		Host:           sc.Host,
		Port:           sc.Port,
		ReadTimeout:    sc.ReadTimeout,
		WriteTimeout:   sc.WriteTimeout,
		IdleTimeout:    sc.IdleTimeout,
		MaxFastWorkers: sc.MaxFastWorkers,
		MaxSlowWorkers: sc.MaxSlowWorkers,
		SolverWorkers:  sc.SolverWorkers,
		SolveTimeout:   sc.SolveTimeout,
	}
}
