// Package app wires configuration into the catalog services shared by the
// HTTP server, the cron scheduler and the CLI.
package app

import (
	"fmt"
	"net/http"
	"path/filepath"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"catalog.GO/config"
	"catalog.GO/core/cache"
	"catalog.GO/core/logger"
	pushRepo "catalog.GO/model/repository/push"
	"catalog.GO/service/catalog"
	"catalog.GO/service/imageurl"
	"catalog.GO/service/onedrive"
	"catalog.GO/service/push"
	"catalog.GO/service/search"
	"catalog.GO/service/thumbnail"
)

// Container holds the process-wide services. Fields may be replaced before
// first use, which is how tests inject fakes.
type Container struct {
	Config     *config.Config
	Logger     logger.Logger
	Cache      *cache.Cache
	Redis      *redis.Client
	Images     *imageurl.Chain
	Resolver   *onedrive.Resolver
	Follower   *onedrive.Follower
	Pipeline   *catalog.Pipeline
	Store      *catalog.Store
	Thumbnails *thumbnail.Service

	// OpenDB opens the subscription database; config.NewDB by default.
	OpenDB func() (*gorm.DB, error)

	// mu guards db and PushService. Failed opens are not kept, so the next
	// call retries.
	mu          sync.Mutex
	db          *gorm.DB
	PushService *push.Service
}

// New builds every service from cfg. Redis is optional; a nil client keeps
// catalog snapshots in process only.
func New(cfg *config.Config, log logger.Logger, rdb *redis.Client) *Container {
	if log == nil {
		log = logger.NewNop()
	}
	c := &Container{
		Config: cfg,
		Logger: log,
		Cache:  cache.GetInstance(),
		Redis:  rdb,
		OpenDB: config.NewDB,
	}

	timeout := time.Duration(cfg.OneDriveResolveTimeout) * time.Second
	httpClient := &http.Client{Timeout: timeout}
	c.Follower = onedrive.NewFollower(httpClient)
	c.Resolver = onedrive.NewResolver(onedrive.ResolverOptions{
		EndpointURL: cfg.OneDriveResolverURL,
		Client:      httpClient,
		Timeout:     timeout,
		Logger:      log.With(logger.String("component", "onedrive")),
	})
	c.Images = BuildImageChain(cfg, c.Cache, c.Resolver, log)

	c.Pipeline = catalog.New(catalog.Options{
		Source: catalog.Source{
			URL:       cfg.CatalogSourceURL,
			SheetsURL: cfg.GoogleSheetsURL,
			BasePath:  cfg.CatalogBasePath,
			FileName:  cfg.CatalogFileName,
		},
		Delimiter: cfg.Delimiter(),
		MaxImages: cfg.MaxProductImages,
		Images:    c.Images,
		Origin:    cfg.CatalogOrigin,
		LocalDir:  filepath.Dir(cfg.CatalogLocalFile),
		Logger:    log.With(logger.String("component", "catalog")),
	})
	c.Store = catalog.NewStore(c.Pipeline, catalog.StoreOptions{
		TTL:    cfg.CatalogCacheTTL,
		Cache:  c.Cache,
		Redis:  rdb,
		Logger: log,
	})
	c.Thumbnails = thumbnail.NewService(thumbnail.Options{Images: c.Images, Cache: c.Cache})
	return c
}

// BuildImageChain orders the rewrite rules: Google Drive links, then the
// configured OneDrive strategy, then Drive folder file names.
func BuildImageChain(cfg *config.Config, c *cache.Cache, resolver *onedrive.Resolver, log logger.Logger) *imageurl.Chain {
	var oneDrive imageurl.Rule = imageurl.OneDriveShareRule{}
	if cfg.OneDriveMode == "redirect" {
		oneDrive = imageurl.OneDriveRedirectRule{Resolver: resolver}
	}
	chain := imageurl.NewChain(imageurl.DriveRule{}, oneDrive)
	if folder := imageurl.NewDriveFolder(cfg.GoogleDriveFolderID, cfg.GoogleDriveAPIKey, c, nil, log); folder != nil {
		chain = chain.With(imageurl.FolderRule{Folder: folder})
	}
	return chain
}

// DB opens the database on first use. An error is returned to the caller
// and the next call tries again.
func (c *Container) DB() (*gorm.DB, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.openDB()
}

func (c *Container) openDB() (*gorm.DB, error) {
	if c.db != nil {
		return c.db, nil
	}
	db, err := c.OpenDB()
	if err != nil {
		return nil, err
	}
	c.db = db
	return db, nil
}

// Push returns the push service, migrating the subscription table on first
// successful use.
func (c *Container) Push() (*push.Service, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.PushService != nil {
		return c.PushService, nil
	}
	db, err := c.openDB()
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	repo := pushRepo.NewSubscriptionRepository(db)
	if err := repo.Migrate(); err != nil {
		return nil, fmt.Errorf("migrate push subscriptions: %w", err)
	}
	sender := push.NewWebPushSender(push.VAPID{
		PublicKey:  c.Config.VAPIDPublicKey,
		PrivateKey: c.Config.VAPIDPrivateKey,
		Subscriber: c.Config.VAPIDSubscriber,
	}, nil)
	c.PushService = push.NewService(repo, sender, c.Logger.With(logger.String("component", "push")))
	return c.PushService, nil
}

// Indexer returns an Elasticsearch mirror for the configured host.
func (c *Container) Indexer() (*search.Indexer, error) {
	return search.NewIndexer(c.Config.ElasticsearchHost, c.Config.ElasticsearchIndex)
}
