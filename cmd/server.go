package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/minjae-ko/chatmarks/internal/annotations"
	"github.com/minjae-ko/chatmarks/internal/navigate"
	"github.com/minjae-ko/chatmarks/internal/reconcile"
	"github.com/minjae-ko/chatmarks/internal/search"
	"github.com/minjae-ko/chatmarks/internal/server"
)

var serverPort int

var serverCmd = &cobra.Command{
	Use:   "server",
	Short: "Start the annotation server",
	Long:  `Starts the chatmarks HTTP server with the annotation REST API, the WebSocket event stream, navigation, and search.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if serverPort != 0 {
			cfg.Port = serverPort
		}

		database, err := openDatabase(cfg)
		if err != nil {
			return err
		}
		defer database.Close()

		settingsStore, session, store, err := openStores(cfg, database)
		if err != nil {
			return err
		}
		defer settingsStore.Close()
		defer session.Close()

		index, err := newSearchIndex(cfg, database, store)
		if err != nil {
			return err
		}

		// Reconciliation: client events come in over the hub, the
		// driver debounces them, and sync frames go back out.
		hub := reconcile.NewHub()
		driver := reconcile.NewDriver(store, session, cfg.Reconcile, hub.BroadcastSync)
		hub.OnTrigger = driver.Schedule
		defer driver.Close()

		scrollDelay := time.Duration(cfg.Reconcile.ScrollDelayMS) * time.Millisecond
		navigator := navigate.NewNavigator(store, session, hub, hub, scrollDelay)

		srv := server.New(server.Config{
			Port:     cfg.Port,
			DataDir:  cfg.DataDir,
			AllowAll: cfg.AllowAllOrigins,
		}, database)

		r := srv.Router()
		annotations.RegisterRoutes(r, store, settingsStore, func() {
			driver.Schedule(reconcile.TriggerManual)
		})
		reconcile.RegisterRoutes(r, hub, driver)
		navigate.RegisterRoutes(r, navigator)
		search.RegisterRoutes(r, index)

		// Graceful shutdown.
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		go func() {
			<-ctx.Done()
			fmt.Fprintln(os.Stderr, "\nShutting down server...")
			if err := settingsStore.Flush(context.Background()); err != nil {
				fmt.Fprintf(os.Stderr, "Warning: flushing settings: %v\n", err)
			}
			srv.Shutdown(context.Background())
		}()

		fmt.Fprintf(os.Stderr, "chatmarks server v%s starting on port %d\n", Version, cfg.Port)
		fmt.Fprintf(os.Stderr, "  Data: %s\n", cfg.DataDir)
		fmt.Fprintf(os.Stderr, "  Search provider: %s\n", cfg.Search.Provider)

		return srv.Start()
	},
}

func init() {
	serverCmd.Flags().IntVar(&serverPort, "port", 0, "Port to listen on (overrides config)")
	rootCmd.AddCommand(serverCmd)
}
