package main

import (
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/shashiranjanraj/sampleapp/app/routes"
	"github.com/shashiranjanraj/sampleapp/config"
	"github.com/shashiranjanraj/sampleapp/pkg/app"
	"github.com/shashiranjanraj/sampleapp/pkg/auth"
	"github.com/shashiranjanraj/sampleapp/pkg/logger"
)

// sampleapp serve: bring the service up and listen until SIGINT/SIGTERM.
var serveCmd = &cobra.Command{
	Use:     "serve",
	Aliases: []string{"run", "start"},
	Short:   "Start the HTTP server",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := config.Load(); err != nil {
			return fmt.Errorf("config: %w", err)
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		log, flush := setupLogger(ctx)
		defer flush()

		newBootstrapper(log).Exit(func(code int) {
			flush()
			os.Exit(code)
		}).Run(ctx)
		return nil
	},
}

// sampleapp route:list: print every registered route.
var routeListCmd = &cobra.Command{
	Use:   "route:list",
	Short: "List all registered routes",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := config.Load(); err != nil {
			return fmt.Errorf("config: %w", err)
		}
		return listRoutes(cmd.OutOrStdout(), config.JWTSecret())
	},
}

// listRoutes mounts the route table without a database and prints it.
func listRoutes(out io.Writer, secret string) error {
	sc, err := app.InitializeTransport(config.AppPort(), app.TransportConfig{}, logger.Discard())
	if err != nil {
		return err
	}
	if _, err := app.BindObservability(sc); err != nil {
		return err
	}
	if _, err := app.BindCORS(sc, app.DefaultOriginPolicy(), config.AppEnv()); err != nil {
		return err
	}
	if _, err := app.BindRoutes(sc, routes.API(auth.NewSigner(secret, tokenTTL))); err != nil {
		return err
	}

	w := tabwriter.NewWriter(out, 0, 0, 3, ' ', 0)
	fmt.Fprintln(w, "METHOD\tPATH\tNAME")
	fmt.Fprintln(w, "------\t----\t----")
	for _, ri := range sc.Routes() {
		fmt.Fprintf(w, "%s\t%s\t%s\n", ri.Method, ri.Path, ri.Name)
	}
	return w.Flush()
}
