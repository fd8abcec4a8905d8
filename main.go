//go:build !cli
// +build !cli

package main

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/common-nighthawk/go-figure"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"catalog.GO/api"
	_ "catalog.GO/api/catalog"
	_ "catalog.GO/api/graphql"
	_ "catalog.GO/api/images"
	_ "catalog.GO/api/metrics"
	_ "catalog.GO/api/onedrive"
	_ "catalog.GO/api/push"
	"catalog.GO/cmd"
	"catalog.GO/config"
	"catalog.GO/core/auth"
	"catalog.GO/core/logger"
	"catalog.GO/cron"
	_ "catalog.GO/custom"
)

func main() {
	config.LoadEnv()
	c, err := cmd.NewContainer()
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid configuration: %v\n", err)
		os.Exit(1)
	}
	log := c.Logger
	defer log.Sync()

	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.Recover())
	e.Use(middleware.Gzip())
	e.Use(middleware.Decompress())
	e.Use(middleware.CORS())
	e.Use(requestLogger(log))

	apiGroup := e.Group("/api")
	apiGroup.Use(auth.Middleware())
	api.ApplyModules(apiGroup, c)
	api.ApplyRoutes(e, c)

	scheduler, err := cron.StartCron(c)
	if err != nil {
		log.Error("cron scheduler not started", logger.Error(err))
	}

	fonts := []string{"banner", "big", "block", "slant", "standard", "small", "doom", "larry3d", "puffy", "rectangles"}
	figure.NewFigure("catalog.GO", fonts[rand.Intn(len(fonts))], true).Print()

	go func() {
		log.Info("server running", logger.String("port", c.Config.Port))
		if err := e.Start(":" + c.Config.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server stopped", logger.Error(err))
			os.Exit(1)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if scheduler != nil {
		<-scheduler.Stop().Done()
	}
	if err := e.Shutdown(ctx); err != nil {
		log.Error("shutdown", logger.Error(err))
	}
}

func requestLogger(log logger.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)
			if err != nil {
				c.Error(err)
			}
			duration := time.Since(start)
			log.Info("request",
				logger.String("method", c.Request().Method),
				logger.String("path", c.Path()),
				logger.Int("status", c.Response().Status),
				logger.Duration("took", duration),
			)
			return nil
		}
	}
}
