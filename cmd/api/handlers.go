package main

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"

	"github.com/xavierca1/ligue-leads/internal/config"
	"github.com/xavierca1/ligue-leads/internal/entity"
	"github.com/xavierca1/ligue-leads/internal/infra/cache"
	"github.com/xavierca1/ligue-leads/internal/infra/database"
	"github.com/xavierca1/ligue-leads/internal/infra/database/memory"
	"github.com/xavierca1/ligue-leads/internal/infra/http/handlers"
	"github.com/xavierca1/ligue-leads/internal/infra/http/middleware"
	"github.com/xavierca1/ligue-leads/internal/infra/mail"
	"github.com/xavierca1/ligue-leads/internal/infra/queue"
	"github.com/xavierca1/ligue-leads/internal/infra/worker"
	"github.com/xavierca1/ligue-leads/internal/ratelimit"
	"github.com/xavierca1/ligue-leads/internal/usecase"
)

type app struct {
	LeadHandler   *handlers.LeadHandler
	HealthHandler *handlers.HealthHandler
	Limiter       *ratelimit.Limiter
	ClientIP      ratelimit.KeyFunc

	closers []func()
}

func (a *app) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
}

// buildApp monta repositórios, filas, use cases e handlers a partir da config.
// Dependências opcionais (Redis, RabbitMQ, SMTP) ausentes só desligam a funcionalidade.
func buildApp(ctx context.Context, cfg *config.Config) (*app, error) {
	a := &app{}
	checks := map[string]handlers.Check{
		"database": nil,
		"redis":    nil,
		"rabbitmq": nil,
	}

	// 1. Repositório
	var repo entity.LeadRepositoryInterface
	if cfg.Database.URL == "" {
		log.Println("⚠️⚠️ DATABASE_URL não configurada: rodando em MODO DEGRADADO com repositório em memória. Nada será persistido!")
		repo = memory.NewLeadRepository()
	} else {
		db, err := database.NewDBConnection(ctx, cfg.Database.URL, database.PoolConfig{
			MaxOpenConns:    cfg.Database.MaxOpenConns,
			MaxIdleConns:    cfg.Database.MaxIdleConns,
			ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
		})
		if err != nil {
			return nil, fmt.Errorf("postgres: %w", err)
		}
		a.closers = append(a.closers, func() { db.Close() })

		if cfg.Database.AutoMigrate {
			if err := database.EnsureSchema(ctx, db); err != nil {
				a.Close()
				return nil, err
			}
		}
		repo = database.NewLeadRepository(db)
		checks["database"] = pingDB(db)
	}

	// 2. Redis (cache de leitura + contador de rate limit compartilhado)
	var rdb *redis.Client
	if cfg.Redis.URL != "" {
		client, err := connectRedis(ctx, cfg.Redis.URL)
		if err != nil {
			log.Printf("⚠️ Redis indisponível, seguindo sem cache e com rate limit em memória: %v", err)
		} else {
			rdb = client
			a.closers = append(a.closers, func() { rdb.Close() })
			checks["redis"] = func(ctx context.Context) error { return rdb.Ping(ctx).Err() }
			repo = cache.NewLeadCache(repo, rdb, cfg.Redis.LeadCacheTTL)
		}
	}

	var counter ratelimit.Counter
	if rdb != nil && cfg.Redis.RateLimitBackend == "redis" {
		counter = ratelimit.NewRedisCounter(rdb, "ratelimit:leads")
	} else {
		mem := ratelimit.NewMemoryCounter()
		sweeper := worker.NewRateLimitSweepWorker(mem, cfg.RateLimit.SweepInterval, middleware.RecordWindowsSwept)
		go sweeper.Start(ctx)
		counter = mem
	}
	a.Limiter = ratelimit.NewLimiter(counter)

	// 3. RabbitMQ (evento lead.captured) + worker de notificação por email
	var events usecase.LeadEventPublisher
	if cfg.RabbitMQ.URL != "" {
		mq, err := queue.NewRabbitMQ(cfg.RabbitMQ.URL)
		if err != nil {
			log.Printf("⚠️ RabbitMQ indisponível, eventos de lead desligados: %v", err)
		} else {
			a.closers = append(a.closers, mq.Close)
			events = queue.NewProducer(mq.Ch)
			checks["rabbitmq"] = func(context.Context) error {
				if mq.Conn.IsClosed() {
					return errors.New("connection closed")
				}
				return nil
			}
			startNotificationWorker(ctx, cfg.Mail, mq)
		}
	}

	// 4. Use cases
	createUC := usecase.NewCreateLeadUseCase(repo, events, middleware.LeadMetrics{},
		usecase.ParseExistingEmailMode(cfg.Leads.ExistingEmailMode))
	updateUC := usecase.NewUpdateLeadUseCase(repo)
	deleteUC := usecase.NewDeleteLeadUseCase(repo)
	queryUC := usecase.NewLeadQueryUseCase(repo)

	// 5. Handlers
	a.ClientIP = ratelimit.TrustedProxyKeyFunc(cfg.Server.TrustedProxyHops)
	a.LeadHandler = handlers.NewLeadHandler(createUC, updateUC, deleteUC, queryUC, cfg.IsProduction())
	a.LeadHandler.ClientIP = a.ClientIP
	a.HealthHandler = handlers.NewHealthHandler(checks)

	return a, nil
}

func startNotificationWorker(ctx context.Context, cfg config.MailConfig, mq *queue.RabbitMQ) {
	if cfg.Host == "" || cfg.NotifyTo == "" {
		log.Println("ℹ️ MAIL_HOST/LEADS_NOTIFY_EMAIL ausentes, worker de notificação desligado")
		return
	}

	ch, err := mq.Conn.Channel()
	if err != nil {
		log.Printf("⚠️ Falha ao abrir canal do worker: %v", err)
		return
	}

	sender := mail.NewEmailSender(cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.From, cfg.NotifyTo)
	w := queue.NewWorker(ch, sender)
	go func() {
		defer ch.Close()
		if err := w.Start(ctx, queue.QueueName); err != nil {
			log.Printf("❌ Worker de notificação parou: %v", err)
		}
	}()
}

func connectRedis(ctx context.Context, url string) (*redis.Client, error) {
	opt, err := redis.ParseURL(url)
	if err != nil {
		return nil, err
	}
	client := redis.NewClient(opt)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, err
	}
	return client, nil
}

func pingDB(db *sqlx.DB) handlers.Check {
	return func(ctx context.Context) error { return db.PingContext(ctx) }
}

func policiesFromConfig(c config.RateLimitConfig) handlers.Policies {
	p := handlers.DefaultPolicies()
	p.Global = p.Global.WithLimits(c.Global.Window, c.Global.Max)
	p.LeadCreation = p.LeadCreation.WithLimits(c.LeadCreation.Window, c.LeadCreation.Max)
	p.LeadLookup = p.LeadLookup.WithLimits(c.LeadLookup.Window, c.LeadLookup.Max)
	p.AdminQuery = p.AdminQuery.WithLimits(c.AdminQuery.Window, c.AdminQuery.Max)
	return p
}
