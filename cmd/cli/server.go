package cli

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"gamebridge.io/internal/application/usecase"
	"gamebridge.io/internal/infrastructure/config"
	httphandler "gamebridge.io/internal/infrastructure/http"
	"gamebridge.io/internal/infrastructure/logger"
	"gamebridge.io/internal/infrastructure/repository"
	"gamebridge.io/internal/infrastructure/signer"
	"gamebridge.io/internal/infrastructure/validator"

	"github.com/spf13/cobra"
)

const serverDir = "server"

var apiServerCmd = &cobra.Command{
	Use:   "server",
	Short: "Run API Server.",
	RunE: func(_ *cobra.Command, _ []string) error {
		// Initialize logger
		appLogger := logger.NewLogger()

		// Get config directory (relative to where the binary is run from)
		configDir := filepath.Join("cmd", "config", serverDir)
		if _, err := os.Stat(configDir); os.IsNotExist(err) {
			// Try absolute path from project root
			configDir = filepath.Join(".", "cmd", "config", serverDir)
		}

		// Load configuration
		cfg, err := config.LoadConfig(configDir)
		if err != nil {
			appLogger.LogError(context.TODO(), "Failed to load config", err)
			return fmt.Errorf("failed to load config: %w", err)
		}

		appLogger.LogInfo(context.TODO(), "Configuration loaded",
			"port", cfg.Server.Port,
			"hmac_key_encoding", cfg.Security.HMACKeyEncoding)

		// Unlock the validator key. Failure here is fatal: the service
		// must not come up without a signing key.
		keystoreJSON := []byte(cfg.Keystore.JSON)
		if len(keystoreJSON) == 0 {
			keystoreJSON, err = os.ReadFile(cfg.Keystore.File)
			if err != nil {
				appLogger.LogError(context.TODO(), "Failed to read keystore file", err,
					"file", cfg.Keystore.File)
				return fmt.Errorf("failed to read keystore file: %w", err)
			}
		}
		validatorSigner, err := signer.NewKeystoreSigner(keystoreJSON, cfg.Keystore.Passphrase, appLogger.WithComponent("signer"))
		if err != nil {
			appLogger.LogError(context.TODO(), "Failed to unlock validator key", err)
			return fmt.Errorf("failed to unlock validator key: %w", err)
		}
		appLogger.LogInfo(context.TODO(), "Validator key unlocked",
			"address", validatorSigner.Address().Hex())

		// Initialize infrastructure adapters
		ledger := repository.NewInMemoryLedger(appLogger.WithComponent("ledger"))
		hmacGuard, err := validator.NewHMACGuard(
			cfg.Security.HMACKey,
			cfg.Security.HMACKeyEncoding,
			appLogger.WithComponent("hmac"),
		)
		if err != nil {
			appLogger.LogError(context.TODO(), "Failed to initialize HMAC guard", err)
			return fmt.Errorf("failed to initialize HMAC guard: %w", err)
		}

		// Initialize use cases
		validateIntentUseCase := usecase.NewValidateIntentUseCase(ledger, validatorSigner, appLogger)
		settleResultUseCase := usecase.NewSettleResultUseCase(ledger, appLogger)
		getAssetsUseCase := usecase.NewGetAssetsUseCase(ledger)

		// Initialize HTTP handler
		handler := httphandler.NewHandler(
			validateIntentUseCase,
			settleResultUseCase,
			getAssetsUseCase,
			hmacGuard,
			appLogger,
		)

		// Setup routes
		mux := handler.SetupRoutes()

		// Create HTTP server
		addr := ":" + cfg.Server.Port
		server := &http.Server{
			Addr:         addr,
			Handler:      mux,
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 15 * time.Second,
			IdleTimeout:  60 * time.Second,
		}

		// Channel to capture termination signals
		signalChan := make(chan os.Signal, 1)
		signal.Notify(signalChan, os.Interrupt, syscall.SIGHUP, syscall.SIGINT, syscall.SIGQUIT, syscall.SIGTERM)

		// Error channel to capture errors from server
		errChan := make(chan error, 1)

		// Start server in a goroutine
		go func() {
			appLogger.LogInfo(context.TODO(), "Starting server",
				"address", addr,
				"validator", validatorSigner.Address().Hex())
			if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				errChan <- err
			}
		}()

		// Graceful shutdown
		select {
		case <-signalChan:
			appLogger.LogInfo(context.TODO(), "Received termination signal. Initiating graceful shutdown...")

			// Create shutdown context with timeout
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()

			if err := server.Shutdown(shutdownCtx); err != nil {
				appLogger.LogError(context.TODO(), "Server forced to shutdown", err)
				return err
			}

			appLogger.LogInfo(context.TODO(), "Server stopped gracefully")
		case err := <-errChan:
			appLogger.LogError(context.TODO(), "Server error", err)
			return err
		}

		return nil
	},
}

func init() { //nolint:gochecknoinits
	rootCmd.AddCommand(apiServerCmd)
}
