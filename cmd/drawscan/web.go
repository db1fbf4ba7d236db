package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/spf13/cobra"
	"github.com/zeebo/drawscan/web"
)

var (
	listenAddress string
	webMaxTotal   uint64
)

// webCmd represents the web command
var webCmd = &cobra.Command{
	Use:   "web",
	Short: "Serve the web ui and api",
	Long: `Serve the status page, the json search api and the websocket search stream.
For example:
  drawscan web --listen 127.0.0.1:8000`,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd)
		if err != nil {
			return err
		}

		h := web.New(a.store)
		h.MaxTotal = webMaxTotal
		return serve(cmd.Context(), listenAddress, h)
	},
}

func serve(ctx context.Context, addr string, h http.Handler) error {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt)
	defer stop()

	srv := &http.Server{
		Addr:              addr,
		Handler:           h,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()
	log.Printf("[INFO] web ui listening on http://%s", addr)

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(sctx)
}

func init() {
	rootCmd.AddCommand(webCmd)

	flags := webCmd.Flags()
	flags.StringVarP(&listenAddress, "listen", "l", "127.0.0.1:8000", "http server listen address")
	flags.Uint64Var(&webMaxTotal, "max-total", web.DefaultMaxTotal, "numbers a single request may generate")
}
