package commands

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	edgeseal "github.com/edgeseal/transit-go"
)

// serveCmd runs the handshake endpoint and an encrypted demo API, mainly
// for trying the protocol against real browser clients.
func serveCmd() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve an encrypted demo API",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()
			if verbose {
				logger = logger.Level(zerolog.DebugLevel)
			} else {
				logger = logger.Level(zerolog.InfoLevel)
			}

			srv := edgeseal.NewServer(
				edgeseal.WithConfig(cfg),
				edgeseal.WithLogger(logger),
			)

			mux := http.NewServeMux()
			mux.Handle(cfg.HandshakePath, srv.HandshakeHandler())
			mux.Handle("/echo", srv.Wrap(http.HandlerFunc(echoHandler)))
			mux.Handle("/time", srv.Wrap(http.HandlerFunc(timeHandler)))

			logger.Info().
				Str("addr", addr).
				Str("handshake_path", cfg.HandshakePath).
				Dur("session_ttl", cfg.SessionTTL).
				Int("pbkdf2_iterations", cfg.PBKDF2Iterations).
				Msg("edgeseald listening")

			httpSrv := &http.Server{
				Addr:              addr,
				Handler:           mux,
				ReadHeaderTimeout: 10 * time.Second,
			}
			if err := httpSrv.ListenAndServe(); err != nil {
				return fmt.Errorf("serving %s: %w", addr, err)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&addr, "addr", ":8443", "listen address")
	return cmd
}

// echoHandler returns whatever JSON it was sent. It is an ordinary handler
// with no knowledge of the encryption around it.
func echoHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	var payload json.RawMessage
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(map[string]string{"error": "body must be JSON"})
		return
	}
	json.NewEncoder(w).Encode(map[string]json.RawMessage{"echo": payload})
}

func timeHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"now": time.Now().UTC().Format(time.RFC3339)})
}
