// Package app assembles the services from configuration. Both binaries use it.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/baharkarakas/sagepaypi/internal/api"
	"github.com/baharkarakas/sagepaypi/internal/auth"
	"github.com/baharkarakas/sagepaypi/internal/config"
	"github.com/baharkarakas/sagepaypi/internal/db"
	"github.com/baharkarakas/sagepaypi/internal/events"
	"github.com/baharkarakas/sagepaypi/internal/gateway"
	repo "github.com/baharkarakas/sagepaypi/internal/repository"
	"github.com/baharkarakas/sagepaypi/internal/repository/memory"
	"github.com/baharkarakas/sagepaypi/internal/repository/postgres"
	"github.com/baharkarakas/sagepaypi/internal/services"
	"github.com/baharkarakas/sagepaypi/internal/tokens"
	"github.com/baharkarakas/sagepaypi/internal/worker"
)

const (
	StoragePostgres = "postgres"
	StorageMemory   = "memory"
)

type App struct {
	Cfg      config.Config
	TM       *auth.TokenManager
	Operator *services.OperatorService
	Cards    *services.CardService
	Txns     *services.TransactionService

	closers []func()
}

type stores struct {
	cards     repo.CardIdentifiers
	txs       repo.Transactions
	responses repo.Responses
}

// Build connects storage and wires every service. Close releases what it opened.
func Build(ctx context.Context, cfg config.Config) (*App, error) {
	a := &App{Cfg: cfg}

	st, err := a.openStorage(ctx)
	if err != nil {
		return nil, err
	}

	var pub events.Publisher = events.Noop{}
	if len(cfg.KafkaBrokers) > 0 {
		wp := worker.NewPool(4)
		kp := events.NewKafkaPublisher(cfg.KafkaBrokers, cfg.KafkaTopic, wp)
		// the pool drains before the writer closes
		a.closers = append(a.closers, func() {
			wp.Stop()
			if err := kp.Close(); err != nil {
				slog.Warn("close kafka writer", "err", err)
			}
		})
		pub = kp
		slog.Info("publishing transaction events", "brokers", cfg.KafkaBrokers, "topic", cfg.KafkaTopic)
	}

	gw := gateway.NewClient(cfg.Gateway)
	gen := tokens.NewGenerator(cfg.SecretKey, cfg.Gateway.TokenDaysValid)

	a.TM = auth.NewTokenManager(cfg.JWTSecret, cfg.JWTRefreshSecret, cfg.JWTIssuer, cfg.JWTAccessTTL, cfg.JWTRefreshTTL)
	a.Operator = services.NewOperatorService(cfg.OperatorEmail, cfg.OperatorPasswordHash, a.TM)
	a.Cards = services.NewCardService(gw, st.cards)
	a.Txns = services.NewTransactionService(gw, st.cards, st.txs, st.responses, gen, pub)
	return a, nil
}

func (a *App) openStorage(ctx context.Context) (stores, error) {
	switch a.Cfg.Storage {
	case StorageMemory:
		slog.Warn("using in-memory storage; data is lost on exit")
		m := memory.NewStore()
		return stores{cards: m.Cards(), txs: m.Transactions(), responses: m.Responses()}, nil
	case StoragePostgres, "":
		pool, err := db.NewPool(ctx, a.Cfg.DatabaseURL)
		if err != nil {
			return stores{}, fmt.Errorf("db connect: %w", err)
		}
		a.closers = append(a.closers, pool.Close)

		if a.Cfg.Migrate {
			if err := db.RunMigrations(ctx, pool); err != nil {
				a.Close()
				return stores{}, fmt.Errorf("migrations: %w", err)
			}
		}
		repos := postgres.NewRepositories(pool)
		return stores{cards: repos.CardIdentifiers, txs: repos.Transactions, responses: repos.Responses}, nil
	default:
		return stores{}, fmt.Errorf("unknown STORAGE %q", a.Cfg.Storage)
	}
}

func (a *App) Router() http.Handler {
	return api.NewRouter(api.RouterDeps{
		Cfg:      a.Cfg,
		TM:       a.TM,
		Operator: a.Operator,
		Cards:    a.Cards,
		Txns:     a.Txns,
	})
}

// Close runs the closers in reverse order of opening.
func (a *App) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
}
