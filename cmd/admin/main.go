package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/phampho1103/UITPAY-Web/internal/audit"
	"github.com/phampho1103/UITPAY-Web/internal/catalog"
	"github.com/phampho1103/UITPAY-Web/internal/config"
	"github.com/phampho1103/UITPAY-Web/internal/docstore"
	"github.com/phampho1103/UITPAY-Web/internal/httpx"
	kafkax "github.com/phampho1103/UITPAY-Web/internal/kafka"
	"github.com/phampho1103/UITPAY-Web/internal/livetree"
	"github.com/phampho1103/UITPAY-Web/internal/postgres"
	"github.com/phampho1103/UITPAY-Web/internal/redisx"
	"github.com/phampho1103/UITPAY-Web/internal/sessions"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	// prices go to the dashboard as plain JSON numbers
	decimal.MarshalJSONWithoutQuotes = true

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// DB
	db, err := postgres.Connect(ctx, cfg.PostgresDSN, 10)
	if err != nil {
		log.Fatalf("db connect: %v", err)
	}
	defer db.Close()
	if err := postgres.Migrate(ctx, db); err != nil {
		log.Fatalf("db migrate: %v", err)
	}

	docs, closeDocs, err := openDocstore(ctx, cfg, db)
	if err != nil {
		log.Fatalf("docstore: %v", err)
	}
	defer closeDocs()

	// Redis live tree
	rdb := redisx.New(cfg.RedisAddr)
	defer rdb.Close()
	tree := livetree.NewRedis(rdb)

	// Kafka producer for the audit trail; it outlives ctx so queued events flush
	prodCtx, cancelProd := context.WithCancel(context.Background())
	defer cancelProd()
	prod := kafkax.NewProducer(cfg.KafkaBrokers, audit.TopicSessionRechecked, 1024)
	prod.Start(prodCtx)

	board := sessions.NewBoard()
	projector := sessions.NewProjector(tree, docs)
	rechecker := sessions.NewRechecker(tree, &audit.Publisher{Queue: prod, Service: cfg.ServiceName})

	router := httpx.NewRouter()
	(&httpx.SessionsHandler{
		Board:          board,
		Rechecker:      rechecker,
		Audit:          &audit.Repo{DB: db},
		OperatorHeader: cfg.OperatorHeader,
	}).Register(router)
	(&httpx.CatalogHandler{Catalog: &catalog.Service{Docs: docs}}).Register(router)

	srv := &http.Server{Addr: cfg.HTTPAddr, Handler: router, ReadHeaderTimeout: 5 * time.Second}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		project(gctx, projector, board)
		return nil
	})
	g.Go(func() error {
		log.Printf("HTTP listening at %s", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Println("shutting down...")
		sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(sctx)
	})
	if err := g.Wait(); err != nil {
		log.Printf("admin exit: %v", err)
	}

	prod.Close() // close inbox -> flush & close writer
	prod.WaitClosed()
}

// project keeps one projector subscription feeding the board, resubscribing
// with backoff whenever the live tree feed fails.
func project(ctx context.Context, p *sessions.Projector, board *sessions.Board) {
	const maxBackoff = 30 * time.Second
	backoff := time.Second
	for {
		started := time.Now()
		sub := p.Subscribe(ctx, board.Update)
		<-sub.Done()
		sub.Unsubscribe()
		sub.Wait()
		if ctx.Err() != nil {
			return
		}
		if err := sub.Err(); err != nil {
			board.Fail(err)
		}

		if time.Since(started) > maxBackoff {
			backoff = time.Second
		}
		log.Printf("sessions: resubscribing in %s", backoff)
		select {
		case <-ctx.Done():
			return
		case <-time.After(backoff):
		}
		backoff = min(backoff*2, maxBackoff)
	}
}

func openDocstore(ctx context.Context, cfg config.Config, db *pgxpool.Pool) (docstore.Store, func(), error) {
	switch cfg.DocstoreDriver {
	case "mongo":
		mdb, err := docstore.ConnectMongo(ctx, cfg.MongoURI, cfg.MongoDB)
		if err != nil {
			return nil, nil, err
		}
		closeFn := func() {
			dctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = mdb.Client().Disconnect(dctx)
		}
		return &docstore.Mongo{DB: mdb}, closeFn, nil
	case "memory":
		return docstore.NewMemory(), func() {}, nil
	default:
		return &docstore.Postgres{DB: db}, func() {}, nil
	}
}
