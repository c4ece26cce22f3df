package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/spf13/cobra"

	"github.com/salapa/vaultd/api"
	"github.com/salapa/vaultd/crypto"
	"github.com/salapa/vaultd/mail"
	"github.com/salapa/vaultd/storage"
	bboltstorage "github.com/salapa/vaultd/storage/bbolt"
	pgstorage "github.com/salapa/vaultd/storage/postgres"
	"github.com/salapa/vaultd/vault"
)

var (
	port        int
	dataDir     string
	postgresDSN string
	baseURL     string
	tlsCert     string
	tlsKey      string

	smtpHost string
	smtpPort int
	smtpUser string
	smtpFrom string
)

// Key material never travels through flags; flags show up in process
// listings.
const (
	envCipherKey     = "VAULTD_CIPHER_KEY"
	envSessionSecret = "VAULTD_SESSION_SECRET"
	envSMTPPassword  = "VAULTD_SMTP_PASSWORD"
)

var serverCmd = &cobra.Command{
	Use:   "server",
	Short: "Start the vault server",
	RunE: func(cmd *cobra.Command, args []string) error {
		logger := slog.New(slog.NewJSONHandler(os.Stderr, nil))

		cipherKey := os.Getenv(envCipherKey)
		if cipherKey == "" {
			return fmt.Errorf("%s must be set to a 64-character hex key", envCipherKey)
		}
		cipher, err := crypto.NewCipherFromHex(cipherKey)
		if err != nil {
			return fmt.Errorf("invalid cipher key: %w", err)
		}
		sessionSecret := os.Getenv(envSessionSecret)
		if sessionSecret == "" {
			return fmt.Errorf("%s must be set", envSessionSecret)
		}

		var store storage.Store
		if postgresDSN != "" {
			pg, err := pgstorage.NewStoreFromDSN(cmd.Context(), postgresDSN)
			if err != nil {
				return fmt.Errorf("failed to open postgres storage: %w", err)
			}
			store = pg
		} else {
			if err := os.MkdirAll(dataDir, 0o700); err != nil {
				return fmt.Errorf("failed to create data directory: %w", err)
			}
			bb, err := bboltstorage.NewStoreFromFile(dataDir+"/vaultd.db", nil)
			if err != nil {
				return fmt.Errorf("failed to open vault storage: %w", err)
			}
			store = bb
		}
		defer store.Close()

		opts := []vault.Option{
			vault.WithSessionSecret([]byte(sessionSecret)),
			vault.WithBaseURL(baseURL),
			vault.WithLogger(logger),
		}
		if smtpHost != "" {
			sender, err := mail.NewSMTPSender(mail.SMTPConfig{
				Host:     smtpHost,
				Port:     smtpPort,
				Username: smtpUser,
				Password: os.Getenv(envSMTPPassword),
				From:     smtpFrom,
			})
			if err != nil {
				return fmt.Errorf("invalid smtp configuration: %w", err)
			}
			opts = append(opts, vault.WithMailer(sender))
		}

		svc, err := vault.New(store, cipher, opts...)
		if err != nil {
			return fmt.Errorf("failed to initialize vault service: %w", err)
		}

		a := api.New(svc, api.WithLogger(logger))

		r := chi.NewRouter()
		r.Use(middleware.Logger)
		r.Use(middleware.Recoverer)
		r.Mount("/api/v1", a.Router())

		server := &http.Server{
			Addr:              fmt.Sprintf(":%d", port),
			Handler:           r,
			ReadHeaderTimeout: 10 * time.Second,
			ReadTimeout:       15 * time.Second,
			WriteTimeout:      30 * time.Second,
			IdleTimeout:       60 * time.Second,
		}

		// Graceful shutdown on SIGINT/SIGTERM.
		done := make(chan error, 1)
		go func() {
			var err error
			if tlsCert != "" && tlsKey != "" {
				err = server.ListenAndServeTLS(tlsCert, tlsKey)
			} else {
				err = server.ListenAndServe()
			}
			if err != nil && !errors.Is(err, http.ErrServerClosed) {
				done <- fmt.Errorf("server failed: %w", err)
				return
			}
			done <- nil
		}()

		logger.Info("server started", "port", port, "storage", storageName())

		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

		select {
		case sig := <-quit:
			logger.Info("shutting down", "signal", sig.String())
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := server.Shutdown(ctx); err != nil {
				return fmt.Errorf("server shutdown failed: %w", err)
			}
			return nil
		case err := <-done:
			return err
		}
	},
}

func storageName() string {
	if postgresDSN != "" {
		return "postgres"
	}
	return "bbolt"
}

func init() {
	rootCmd.AddCommand(serverCmd)
	serverCmd.Flags().IntVarP(&port, "port", "p", 8080, "Port to listen on")
	serverCmd.Flags().StringVar(&dataDir, "data-dir", "./data", "Directory for persistent data (bbolt backend)")
	serverCmd.Flags().StringVar(&postgresDSN, "postgres-dsn", "", "PostgreSQL DSN; when set, postgres replaces the bbolt backend")
	serverCmd.Flags().StringVar(&baseURL, "base-url", "http://localhost:8080", "Public base URL used in emailed links")
	serverCmd.Flags().StringVar(&tlsCert, "tls-cert", "", "Path to TLS certificate file")
	serverCmd.Flags().StringVar(&tlsKey, "tls-key", "", "Path to TLS key file")
	serverCmd.Flags().StringVar(&smtpHost, "smtp-host", "", "SMTP host; activation and reset emails are disabled when empty")
	serverCmd.Flags().IntVar(&smtpPort, "smtp-port", 587, "SMTP submission port")
	serverCmd.Flags().StringVar(&smtpUser, "smtp-user", "", "SMTP username")
	serverCmd.Flags().StringVar(&smtpFrom, "smtp-from", "", "From address for outgoing mail")
}
