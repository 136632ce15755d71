package cmd

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"photo-index/internal/database"
	"photo-index/internal/exif"
	"photo-index/internal/faces"
	"photo-index/internal/geocode"
	"photo-index/internal/indexer"
	"photo-index/internal/logging"
	"photo-index/internal/media"
	"photo-index/internal/memory"
	"photo-index/internal/objectstore"
	"photo-index/internal/orientation"
	"photo-index/internal/photoindex"
	"photo-index/internal/startup"
	"photo-index/internal/workers"

	"github.com/spf13/cobra"
)

// components holds everything a command needs, opened in dependency order.
type components struct {
	cfg     *startup.Config
	db      *database.Database
	store   *photoindex.Store
	objects objectstore.Store
	images  *media.DisplayCache
	builder *indexer.Builder
	vips    bool
}

// prepare applies flag overrides and loads the configuration.
func prepare(cmd *cobra.Command) (*startup.Config, error) {
	if err := applyFlagOverrides(cmd); err != nil {
		return nil, err
	}
	if f := cmd.Flags().Lookup("log-level"); f != nil && f.Changed {
		logging.SetLevel(logging.ParseLevel(f.Value.String()))
	}

	startup.LogMemoryConfig(memory.ConfigureFromEnv())
	if err := startup.ConfigureLogging(); err != nil {
		return nil, fmt.Errorf("log file: %w", err)
	}

	cfg, err := startup.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("configuration error: %w", err)
	}
	return cfg, nil
}

// openComponents opens the database, the index store, the object store and
// the collaborators, and assembles the builder and the display cache.
func openComponents(ctx context.Context, cfg *startup.Config) (*components, error) {
	c := &components{cfg: cfg}

	dbStart := time.Now()
	db, err := database.New(ctx, cfg.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}
	c.db = db
	startup.LogDatabaseInit(time.Since(dbStart))

	storeStart := time.Now()
	c.store = photoindex.New(photoindex.Options{Dir: cfg.CacheDir})
	if err := c.store.Open(ctx); err != nil {
		c.close(ctx)
		return nil, fmt.Errorf("failed to open index store: %w", err)
	}
	startup.LogIndexStoreInit(c.store.Len(), len(c.store.Deleted()), time.Since(storeStart))

	if c.objects, err = openObjectStore(ctx, cfg); err != nil {
		c.close(ctx)
		return nil, err
	}
	startup.LogObjectStoreInit(c.objects.Name())

	if err := media.InitVips(); err != nil {
		logging.Warn("libvips unavailable, display renditions cannot be encoded: %v", err)
	} else {
		c.vips = true
	}

	startup.LogCollaboratorsInit(cfg)
	collab, err := newCollaborators(ctx, cfg, db)
	if err != nil {
		c.close(ctx)
		return nil, err
	}

	c.builder = indexer.New(indexer.Config{
		MediaDir:           cfg.MediaDir,
		CacheDir:           cfg.CacheDir,
		Workers:            workers.ForIndex(0),
		CheckpointInterval: cfg.CheckpointInterval,
		OrientationMaxYear: cfg.OrientationMaxYear,
		EnrichOnIngest:     cfg.EnrichOnIngest,
	}, collab, c.store, db)

	c.images = media.NewDisplayCache(c.store, c.objects, media.Config{
		OriginalsPrefix: cfg.OriginalsPrefix,
		CachePrefix:     cfg.CachePrefix,
	})

	return c, nil
}

// openObjectStore selects the backend named by OBJECT_STORE.
func openObjectStore(ctx context.Context, cfg *startup.Config) (objectstore.Store, error) {
	switch cfg.ObjectStore {
	case startup.StoreS3:
		s3, err := objectstore.NewS3(objectstore.S3Config{
			Endpoint:     cfg.S3.Endpoint,
			Region:       cfg.S3.Region,
			Bucket:       cfg.S3.Bucket,
			AccessKey:    cfg.S3.AccessKey,
			SecretKey:    cfg.S3.SecretKey,
			UseSSL:       cfg.S3.UseSSL,
			CreateBucket: true,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create S3 client: %w", err)
		}
		if err := s3.Open(ctx); err != nil {
			return nil, fmt.Errorf("failed to open bucket %s: %w", cfg.S3.Bucket, err)
		}
		return s3, nil
	case startup.StoreMemory:
		logging.Warn("Display renditions are kept in memory and lost on restart")
		return objectstore.NewMemory(), nil
	default:
		local, err := objectstore.NewLocal(cfg.LocalStoreDir)
		if err != nil {
			return nil, fmt.Errorf("failed to open local object store: %w", err)
		}
		return local, nil
	}
}

// newCollaborators builds the enrichment sources that are configured.
func newCollaborators(ctx context.Context, cfg *startup.Config, db *database.Database) (indexer.Collaborators, error) {
	extractor := exif.New(exif.Config{
		ExifToolPath: cfg.ExifToolPath,
		Timeout:      cfg.CollaboratorTimeout,
	})
	collab := indexer.Collaborators{Tags: extractor}

	if cfg.GeocodingEnabled() {
		client := geocode.NewNominatimClient(geocode.NominatimConfig{
			BaseURL:     strings.TrimRight(cfg.GeocoderURL, "/"),
			UserAgent:   cfg.GeocoderUserAgent,
			MinInterval: cfg.GeocoderMinInterval,
			Timeout:     cfg.CollaboratorTimeout,
		})
		resolver := geocode.NewResolver(client, geocode.Config{
			ThresholdKm: geocode.DefaultThresholdKm,
			Timeout:     cfg.CollaboratorTimeout,
			Store:       db,
		})
		if err := resolver.Load(ctx); err != nil {
			if errors.Is(err, context.Canceled) {
				return collab, err
			}
			logging.Warn("Geocode cache not loaded, starting empty: %v", err)
		}
		collab.Location = resolver
	}

	if cfg.FaceDetectionEnabled() {
		detector := faces.NewClient(cfg.FaceDetectorURL, cfg.CollaboratorTimeout)
		collab.Rotation = orientation.NewVoter(detector, cfg.CollaboratorTimeout)
	}

	return collab, nil
}

// close releases everything that was opened, in reverse order.
func (c *components) close(ctx context.Context) {
	if c.vips {
		media.ShutdownVips()
	}
	if c.store != nil {
		if err := c.store.Close(ctx); err != nil {
			logging.Error("Failed to close index store: %v", err)
		}
	}
	if c.db != nil {
		if err := c.db.Close(); err != nil {
			logging.Error("Failed to close database: %v", err)
		}
	}
}
