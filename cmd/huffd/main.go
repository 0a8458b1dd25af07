package main

import (
	"os"

	"github.com/gin-gonic/gin"
	"github.com/op/go-logging"

	"github.com/seiflotfy/huffpack"
	"github.com/seiflotfy/huffpack/internal/config"
	"github.com/seiflotfy/huffpack/internal/handler"
	"github.com/seiflotfy/huffpack/internal/logger"
	"github.com/seiflotfy/huffpack/internal/router"
	"github.com/seiflotfy/huffpack/internal/service"
)

var log = logging.MustGetLogger("huffd")

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	if err := logger.Setup(os.Stderr, cfg.LogLevel); err != nil {
		log.Fatalf("log level: %v", err)
	}

	enc := huffpack.NewEncoder(
		huffpack.WithWorkers(cfg.Workers),
		huffpack.WithModelCache(cfg.ModelCacheSize),
	)
	svc := service.NewCompressionService(enc)
	h := handler.NewCompressionHandler(svc, cfg.MaxBodyBytes)

	r := gin.New()
	r.Use(gin.Recovery())
	router.Register(r, router.Dependencies{
		CompressionHandler: h,
	})

	log.Infof("starting server at %s", cfg.Addr)
	if err := r.Run(cfg.Addr); err != nil {
		log.Fatal(err)
	}
}
