package cmd

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/MatheusDSantossi/data-analyses-automate/internal/pipeline"
	"github.com/MatheusDSantossi/data-analyses-automate/internal/server"
)

var (
	srvAddr    string
	srvNoAI    bool
	srvOrigins []string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API used by the web frontend",
	RunE: func(cmd *cobra.Command, args []string) error {
		log := newLogger()
		analyzer := pipeline.NewAnalyzer(newGenerator(), log, pipelineOptions(0, 0, 0, srvNoAI))
		controller := pipeline.NewController(analyzer, log)

		addr := srvAddr
		if addr == "" && cfg != nil {
			addr = cfg.ServeAddr
		}
		if addr == "" {
			addr = ":8080"
		}

		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()
		srv := server.New(controller, log, server.Options{})
		return srv.ListenAndServe(ctx, addr, server.Options{AllowedOrigins: srvOrigins})
	},
}

func init() {
	serveCmd.Flags().StringVar(&srvAddr, "addr", "", "listen address (default from config, e.g. :8080)")
	serveCmd.Flags().BoolVar(&srvNoAI, "no-ai", false, "skip AI calls and serve fallback charts only")
	serveCmd.Flags().StringSliceVar(&srvOrigins, "cors-origin", nil, "allowed CORS origins (repeatable)")
	rootCmd.AddCommand(serveCmd)
}
