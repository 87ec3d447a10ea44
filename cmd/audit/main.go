package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"

	"github.com/phampho1103/UITPAY-Web/internal/audit"
	"github.com/phampho1103/UITPAY-Web/internal/config"
	kafkax "github.com/phampho1103/UITPAY-Web/internal/kafka"
	"github.com/phampho1103/UITPAY-Web/internal/postgres"
	"github.com/phampho1103/UITPAY-Web/internal/redisx"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// DB
	db, err := postgres.Connect(ctx, cfg.PostgresDSN, int32(cfg.AuditWorkers)+2)
	if err != nil {
		log.Fatalf("db: %v", err)
	}
	defer db.Close()
	if err := postgres.Migrate(ctx, db); err != nil {
		log.Fatalf("db migrate: %v", err)
	}

	// Redis
	rdb := redisx.New(cfg.RedisAddr)
	defer rdb.Close()

	svc := &audit.Service{
		Store:       &audit.Repo{DB: db},
		Redis:       rdb,
		ServiceName: cfg.ServiceName + "-audit",
	}

	cons := kafkax.NewConsumer(cfg.KafkaBrokers, cfg.AuditGroup, audit.TopicSessionRechecked, cfg.AuditWorkers)
	log.Printf("audit consumer started: group=%s topic=%s workers=%d", cfg.AuditGroup, audit.TopicSessionRechecked, cfg.AuditWorkers)
	if err := cons.Start(ctx, svc.HandleRechecked); err != nil {
		log.Fatalf("consumer exit: %v", err)
	}
	log.Println("audit consumer stopped")
}
