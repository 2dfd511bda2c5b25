package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"github.com/LMSBAND/bandhub/internal/bandhub"
	"github.com/LMSBAND/bandhub/internal/blob"
	"github.com/LMSBAND/bandhub/internal/config"
	"github.com/LMSBAND/bandhub/internal/identity"
	"github.com/LMSBAND/bandhub/internal/realtime"
)

const (
	requestTimeout  = 5 * time.Minute
	shutdownTimeout = 10 * time.Second
)

func newServeCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API and websocket feed",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			runCtx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runServer(runCtx, cfg)
		},
	}
}

func runServer(ctx context.Context, cfg *config.Config) error {
	pool, err := pgxpool.New(ctx, cfg.Database.URL)
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	defer pool.Close()
	if err := bandhub.AutoMigrate(ctx, pool); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}

	blobs, downloads, closeBlobs, err := openBlobStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeBlobs()

	var (
		pub bandhub.Publisher
		rt  bandhub.Realtime
	)
	if cfg.Redis.URL != "" {
		opt, err := redis.ParseURL(cfg.Redis.URL)
		if err != nil {
			return fmt.Errorf("invalid redis url: %w", err)
		}
		rdb := redis.NewClient(opt)
		defer rdb.Close()

		hub := realtime.NewHub()
		rts := realtime.NewServer(hub, rdb, cfg.Server.CORSAllowedOrigin)
		go hub.Run(ctx)
		go func() {
			if err := rts.RunRedisSubscriber(ctx); err != nil && ctx.Err() == nil {
				log.Printf("bandhub: redis subscriber stopped: %v", err)
			}
		}()
		pub = realtime.NewPublisher(rdb)
		rt = rts
	} else {
		log.Printf("bandhub: no redis url, realtime disabled")
	}

	svc := bandhub.NewService(bandhub.NewPostgresStore(pool), blobs, pub, bandhub.Options{
		SignedURLTTL: cfg.SignedURLTTL(),
		Peaks:        cfg.Waveform.Peaks,
	})
	srv := bandhub.NewServer(svc, newVerifier(cfg), rt, bandhub.ServerOptions{
		MaxUploadBytes:    cfg.MaxUploadBytes(),
		CORSAllowedOrigin: cfg.Server.CORSAllowedOrigin,
	})

	r := srv.Router(
		middleware.RequestID,
		middleware.RealIP,
		middleware.Logger,
		middleware.Recoverer,
		middleware.Timeout(requestTimeout),
	)
	if downloads != nil {
		r.Handle("/blobs/*", downloads)
	}

	httpSrv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := httpSrv.Shutdown(shutdownCtx); err != nil {
			log.Printf("bandhub: shutdown: %v", err)
		}
	}()

	log.Printf("bandhub listening on %s (auth=%s, blobs=%s)", cfg.Addr(), cfg.Auth.Mode, cfg.Blob.Backend)
	if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("serve: %w", err)
	}
	return nil
}

func newVerifier(cfg *config.Config) identity.Verifier {
	if cfg.Auth.Mode == config.AuthHeader {
		return identity.HeaderVerifier{}
	}
	return identity.NewJWTVerifier([]byte(cfg.Auth.JWTSecret))
}

// openBlobStore returns the configured store, the handler that serves its
// signed URLs when the server must serve them itself, and a close func.
func openBlobStore(ctx context.Context, cfg *config.Config) (blob.Store, http.Handler, func(), error) {
	switch cfg.Blob.Backend {
	case config.BlobGCS:
		gcs, err := blob.NewGCSStore(ctx, cfg.Blob.GCSBucket)
		if err != nil {
			return nil, nil, nil, err
		}
		return gcs, nil, func() {
			if err := gcs.Close(); err != nil {
				log.Printf("bandhub: close gcs: %v", err)
			}
		}, nil
	default:
		local, err := blob.NewLocalStore(cfg.Blob.Dir, cfg.Server.PublicBaseURL, cfg.BlobSecret())
		if err != nil {
			return nil, nil, nil, err
		}
		return local, local.Router(), func() {}, nil
	}
}
