package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/reflection"
	"google.golang.org/protobuf/types/known/emptypb"

	grpcAdapter "github.com/jinwsy/blood-pressure/internal/adapters/grpc"
	"github.com/jinwsy/blood-pressure/internal/metrics"
	"github.com/jinwsy/blood-pressure/internal/store"
	"github.com/jinwsy/blood-pressure/pkg/tlsconfig"
)

const shutdownTimeout = 5 * time.Second

func serveCmd(config *Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Expose the log to a local UI over gRPC",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve(cmd.Context(), *config)
		},
	}
	cmd.Flags().StringVar(&config.Addr, "addr", config.Addr, "Bridge listen address")
	cmd.Flags().StringVar(&config.MetricsAddr, "metrics-addr", config.MetricsAddr, "Prometheus listen address (disabled when empty)")
	return cmd
}

func serve(ctx context.Context, config Config) error {
	log.Info().Str("storage", config.Storage).Msg("starting reading bridge")

	registry := prometheus.NewRegistry()
	collector := metrics.NewCollector(registry)

	s, closeSlot, err := openStore(ctx, config, store.WithObserver(collector))
	if err != nil {
		return err
	}
	defer func() {
		if err := closeSlot(); err != nil {
			log.Error().Err(err).Msg("failed to close storage")
		}
	}()

	// Configure TLS if certificates are provided
	var serverOpts []grpc.ServerOption
	if config.TLSCert != "" {
		tlsCfg, err := tlsconfig.LoadServerTLS(config.TLSCert, config.TLSKey, config.TLSCA)
		if err != nil {
			return fmt.Errorf("failed to load TLS config: %w", err)
		}
		serverOpts = append(serverOpts, grpc.Creds(credentials.NewTLS(tlsCfg)))
		log.Info().Msg("mTLS enabled")
	} else {
		log.Warn().Msg("TLS_CERT not set, bridge runs without TLS")
	}

	grpcServer := grpc.NewServer(serverOpts...)
	grpcAdapter.RegisterReadingServiceServer(grpcServer, grpcAdapter.NewReadingServiceHandler(s))

	// Enable gRPC reflection so grpcurl can list and describe the bridge
	reflection.Register(grpcServer)

	listener, err := net.Listen("tcp", config.Addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", config.Addr, err)
	}
	log.Info().Str("addr", listener.Addr().String()).Msg("gRPC bridge listening")

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return grpcServer.Serve(listener)
	})

	var metricsServer *http.Server
	if config.MetricsAddr != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", metrics.Handler(registry))
		metricsServer = &http.Server{
			Addr:              config.MetricsAddr,
			Handler:           mux,
			ReadHeaderTimeout: 5 * time.Second,
		}
		g.Go(func() error {
			log.Info().Str("addr", config.MetricsAddr).Msg("metrics listening")
			if err := metricsServer.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		})
	}

	g.Go(func() error {
		<-ctx.Done()
		log.Info().Msg("shutting down bridge...")

		grpcServer.GracefulStop()
		if metricsServer != nil {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			if err := metricsServer.Shutdown(shutdownCtx); err != nil {
				log.Error().Err(err).Msg("metrics server shutdown failed")
			}
		}
		return nil
	})

	if err := g.Wait(); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
		return err
	}
	log.Info().Msg("bridge stopped")
	return nil
}

func statusCmd(config *Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Query a running bridge for its statistics",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			creds := insecure.NewCredentials()
			if config.TLSCert != "" {
				tlsCfg, err := tlsconfig.LoadClientTLS(config.TLSCert, config.TLSKey, config.TLSCA)
				if err != nil {
					return fmt.Errorf("failed to load TLS config: %w", err)
				}
				creds = credentials.NewTLS(tlsCfg)
			}

			conn, err := grpc.NewClient(config.Addr, grpc.WithTransportCredentials(creds))
			if err != nil {
				return fmt.Errorf("failed to dial bridge: %w", err)
			}
			defer conn.Close()

			ctx, cancel := context.WithTimeout(cmd.Context(), 5*time.Second)
			defer cancel()

			stats, err := grpcAdapter.NewClient(conn).GetStats(ctx, &emptypb.Empty{})
			if err != nil {
				return fmt.Errorf("bridge at %s: %w", config.Addr, err)
			}

			out := cmd.OutOrStdout()
			fields := stats.AsMap()
			fmt.Fprintf(out, "Bridge:         %s\n", config.Addr)
			fmt.Fprintf(out, "Readings:       %v\n", fields["count"])
			for _, key := range []string{"avgSystolic", "avgDiastolic", "lastCategory"} {
				value := fields[key]
				if value == nil {
					value = "-"
				}
				fmt.Fprintf(out, "%-15s %v\n", key+":", value)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&config.Addr, "addr", config.Addr, "Bridge address")
	return cmd
}
