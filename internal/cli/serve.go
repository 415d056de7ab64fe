package cli

import (
	"context"
	"errors"
	"net/http"
	"time"

	charmlog "github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/sbgntools/sbgnmap/internal/server"
	"github.com/sbgntools/sbgnmap/pkg/cache"
	"github.com/sbgntools/sbgnmap/pkg/pipeline"
	"github.com/sbgntools/sbgnmap/pkg/store"
)

// newServeCmd creates the serve command, which runs the HTTP API.
func newServeCmd() *cobra.Command {
	var (
		addr      string
		mongoURI  string
		mongoDB   string
		redisAddr string
		noCache   bool
		cacheDir  string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP rendering and storage API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			logger := loggerFromContext(ctx)

			c, err := buildCache(ctx, noCache, redisAddr, cacheDir, logger)
			if err != nil {
				return err
			}
			defer c.Close()

			var st store.Store = store.NewMemoryStore()
			if mongoURI != "" {
				ms, err := store.NewMongoStore(ctx, mongoURI, mongoDB)
				if err != nil {
					return err
				}
				st = ms
				logger.Info("using mongodb store", "database", mongoDB)
			} else {
				logger.Warn("using in-memory store; documents are lost on shutdown")
			}
			defer func() {
				closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				if err := st.Close(closeCtx); err != nil {
					logger.Error("store close failed", "err", err)
				}
			}()

			srv := server.New(pipeline.NewRunner(c, logger), st, logger)
			httpSrv := &http.Server{
				Addr:              addr,
				Handler:           srv.Router(),
				ReadHeaderTimeout: 10 * time.Second,
			}

			errCh := make(chan error, 1)
			go func() {
				logger.Info("listening", "addr", addr)
				errCh <- httpSrv.ListenAndServe()
			}()

			select {
			case <-ctx.Done():
				logger.Info("shutting down")
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
				defer cancel()
				return httpSrv.Shutdown(shutdownCtx)
			case err := <-errCh:
				if errors.Is(err, http.ErrServerClosed) {
					return nil
				}
				return err
			}
		},
	}

	cmd.Flags().StringVar(&addr, "addr", ":8080", "listen address")
	cmd.Flags().StringVar(&mongoURI, "mongo", "", "MongoDB connection URI (default: in-memory store)")
	cmd.Flags().StringVar(&mongoDB, "mongo-db", "sbgnmap", "MongoDB database name")
	cmd.Flags().StringVar(&redisAddr, "redis", "", "Redis address for the artifact cache (default: file cache)")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable the artifact cache")
	cmd.Flags().StringVar(&cacheDir, "cache-dir", defaultCacheDir(), "artifact cache directory")
	return cmd
}

// buildCache selects the artifact cache backend: redis when an address
// is given, otherwise the file cache, otherwise nothing.
func buildCache(ctx context.Context, noCache bool, redisAddr, cacheDir string, logger *charmlog.Logger) (cache.Cache, error) {
	if noCache {
		return cache.NewNullCache(), nil
	}
	if redisAddr != "" {
		rc, err := cache.NewRedisCache(ctx, redisAddr, "sbgnmap")
		if err != nil {
			return nil, err
		}
		logger.Info("using redis cache", "addr", redisAddr)
		return rc, nil
	}
	fc, err := cache.NewFileCache(cacheDir)
	if err != nil {
		logger.Warn("cache disabled", "err", err)
		return cache.NewNullCache(), nil
	}
	return fc, nil
}
