package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/sync/errgroup"

	"github.com/hrygo/recall/ai"
	"github.com/hrygo/recall/bot"
	"github.com/hrygo/recall/internal/profile"
	"github.com/hrygo/recall/internal/version"
	"github.com/hrygo/recall/store"
	"github.com/hrygo/recall/store/db"
)

var rootCmd = &cobra.Command{
	Use:   "recall",
	Short: `A chat-history question answering bot. Indexes every message it sees and answers "rtfm" questions grounded in that history.`,
	PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
		// Try to load .env file from current directory (ignore error if file doesn't exist)
		_ = godotenv.Load()
		return nil
	},
	RunE: func(_ *cobra.Command, _ []string) error {
		instanceProfile := &profile.Profile{
			Mode:        viper.GetString("mode"),
			Data:        viper.GetString("data"),
			Driver:      viper.GetString("driver"),
			DSN:         viper.GetString("dsn"),
			MetricsAddr: viper.GetString("metrics-addr"),
			Version:     version.GetCurrentVersion(viper.GetString("mode")),
		}
		instanceProfile.FromEnv()
		if err := instanceProfile.Validate(); err != nil {
			return err
		}

		ctx, cancel := signal.NotifyContext(context.Background(), terminationSignals...)
		defer cancel()

		dbDriver, err := db.NewDBDriver(instanceProfile)
		if err != nil {
			slog.Error("failed to create db driver", "error", err)
			return err
		}

		storeInstance := store.New(dbDriver, instanceProfile)
		defer storeInstance.Close()
		if err := storeInstance.Migrate(ctx); err != nil {
			slog.Error("failed to migrate", "error", err)
			return err
		}

		embedder, err := ai.NewEmbeddingService(&ai.EmbeddingConfig{
			Provider:   instanceProfile.EmbeddingProvider,
			Model:      instanceProfile.EmbeddingModel,
			APIKey:     instanceProfile.EmbeddingAPIKey,
			BaseURL:    instanceProfile.EmbeddingBaseURL,
			Dimensions: instanceProfile.EmbeddingDimensions,
		})
		if err != nil {
			slog.Error("failed to create embedding service", "error", err)
			return err
		}

		llm, err := ai.NewLLMService(&ai.LLMConfig{
			Provider: instanceProfile.LLMProvider,
			Model:    instanceProfile.LLMModel,
			APIKey:   instanceProfile.LLMAPIKey,
			BaseURL:  instanceProfile.LLMBaseURL,
			Timeout:  instanceProfile.LLMTimeout,
		})
		if err != nil {
			slog.Error("failed to create llm service", "error", err)
			return err
		}

		b, err := bot.New(instanceProfile, storeInstance, embedder, llm)
		if err != nil {
			slog.Error("failed to create bot", "error", err)
			return err
		}

		printGreetings(instanceProfile)

		group, groupCtx := errgroup.WithContext(ctx)
		group.Go(func() error {
			if err := b.Run(groupCtx); err != nil && !errors.Is(err, context.Canceled) {
				return err
			}
			return nil
		})
		if instanceProfile.MetricsAddr != "" {
			group.Go(func() error {
				return runMetricsServer(groupCtx, instanceProfile.MetricsAddr)
			})
		}

		return group.Wait()
	},
}

// runMetricsServer exposes the Prometheus registry until ctx is cancelled.
func runMetricsServer(ctx context.Context, addr string) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	server := &http.Server{Addr: addr, Handler: mux}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = server.Shutdown(shutdownCtx)
	}()

	slog.Info("metrics server listening", "addr", addr)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func init() {
	viper.SetDefault("mode", "dev")
	viper.SetDefault("driver", "postgres")

	rootCmd.PersistentFlags().String("mode", "dev", `mode of bot, can be "prod" or "dev" or "demo"`)
	rootCmd.PersistentFlags().String("data", "", "data directory (sqlite driver)")
	rootCmd.PersistentFlags().String("driver", "postgres", "database driver (postgres, sqlite)")
	rootCmd.PersistentFlags().String("dsn", "", "database source name(aka. DSN)")
	rootCmd.PersistentFlags().String("metrics-addr", "", "prometheus listen address, empty disables metrics")

	for _, flag := range []string{"mode", "data", "driver", "dsn", "metrics-addr"} {
		if err := viper.BindPFlag(flag, rootCmd.PersistentFlags().Lookup(flag)); err != nil {
			panic(err)
		}
	}

	viper.SetEnvPrefix("recall")
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
}

func printGreetings(profile *profile.Profile) {
	fmt.Printf("recall %s started successfully!\n", profile.Version)

	if profile.IsDev() {
		fmt.Fprint(os.Stderr, "Development mode is enabled\n")
		if profile.DSN != "" {
			fmt.Fprintf(os.Stderr, "Database: %s\n", profile.DSN)
		}
	}

	fmt.Printf("Database driver: %s\n", profile.Driver)
	fmt.Printf("Mode: %s\n", profile.Mode)
	fmt.Printf("Trigger phrases: %s\n", strings.Join(profile.TriggerPhrases, ", "))
	if profile.MetricsAddr != "" {
		fmt.Printf("Metrics: http://%s/metrics\n", profile.MetricsAddr)
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		slog.Error("bot exited", "error", err)
		os.Exit(1)
	}
}
