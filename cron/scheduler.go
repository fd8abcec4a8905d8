package cron

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"

	"catalog.GO/core/app"
	"catalog.GO/core/logger"
)

// CatalogRefreshJob is the name of the built-in catalog refresh job.
const CatalogRefreshJob = "catalogrefresh"

const refreshTimeout = 2 * time.Minute

// BuiltinJobs returns the jobs backed by the container's services. The
// catalog refresh is left out when CATALOG_REFRESH_SCHEDULE is "off".
func BuiltinJobs(c *app.Container) map[string]Job {
	jobs := map[string]Job{}
	if spec := c.Config.RefreshSchedule; spec != "" && spec != "off" {
		jobs[CatalogRefreshJob] = Job{Schedule: c.Config.RefreshSchedule, Run: refreshCatalog(c)}
	}
	return jobs
}

// AllJobs merges the built-in jobs with those registered from init().
func AllJobs(c *app.Container) map[string]Job {
	out := BuiltinJobs(c)
	for name, j := range Jobs() {
		out[name] = j
	}
	return out
}

// refreshCatalog refetches the catalog into the shared store and, when an
// Elasticsearch host is configured, mirrors the new snapshot.
func refreshCatalog(c *app.Container) func(...string) {
	log := c.Logger.With(logger.String("job", CatalogRefreshJob))
	return func(...string) {
		ctx, cancel := context.WithTimeout(context.Background(), refreshTimeout)
		defer cancel()
		start := time.Now()
		products, err := c.Store.Refresh(ctx)
		if err != nil {
			log.Error("catalog refresh failed", logger.Error(err))
			return
		}
		log.Info("catalog refreshed", logger.Int("products", len(products)), logger.Duration("took", time.Since(start)))
		if c.Config.ElasticsearchHost == "" {
			return
		}
		ix, err := c.Indexer()
		if err != nil {
			log.Error("search index unavailable", logger.Error(err))
			return
		}
		if _, err := ix.IndexProducts(ctx, products); err != nil {
			log.Error("search index failed", logger.Error(err))
		}
	}
}

// StartCron schedules every job and starts the scheduler. Jobs that are still
// running when their next tick fires are skipped; panics are logged.
func StartCron(c *app.Container) (*cron.Cron, error) {
	cl := cronLogger{log: c.Logger.With(logger.String("component", "cron"))}
	s := cron.New(cron.WithLogger(cl), cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)))
	for name, j := range AllJobs(c) {
		run := j.Run
		if _, err := s.AddFunc(j.Schedule, func() { run() }); err != nil {
			return nil, fmt.Errorf("register job %s: %w", name, err)
		}
	}
	s.Start()
	return s, nil
}

// cronLogger adapts logger.Logger to cron.Logger.
type cronLogger struct {
	log logger.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.log.Debug(msg, fields(keysAndValues)...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.log.Error(msg, append(fields(keysAndValues), logger.Error(err))...)
}

func fields(kv []interface{}) []logger.Field {
	out := make([]logger.Field, 0, len(kv)/2)
	for i := 0; i+1 < len(kv); i += 2 {
		out = append(out, logger.Any(fmt.Sprint(kv[i]), kv[i+1]))
	}
	return out
}
