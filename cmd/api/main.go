package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/xavierca1/ligue-leads/internal/config"
	"github.com/xavierca1/ligue-leads/internal/infra/http/handlers"
)

func main() {
	cfg := config.Load()
	log.SetOutput(cfg.Log.LogWriter())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	svc, err := buildApp(ctx, cfg)
	if err != nil {
		log.Fatalf("❌ Falha ao iniciar dependências: %v", err)
	}
	defer svc.Close()

	router := handlers.NewRouter(handlers.RouterConfig{
		Leads:          svc.LeadHandler,
		Health:         svc.HealthHandler,
		Limiter:        svc.Limiter,
		Policies:       policiesFromConfig(cfg.RateLimit),
		ClientIP:       svc.ClientIP,
		AllowedOrigins: cfg.Server.AllowedOrigins,
		Metrics:        promhttp.Handler(),
		Production:     cfg.IsProduction(),
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		log.Printf("🔥 Server Ligue Leads rodando na porta %s (%s)", cfg.Server.Port, cfg.AppEnv)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("❌ Servidor caiu: %v", err)
		}
	}()

	<-ctx.Done()
	log.Println("⚠️ Sinal recebido, encerrando servidor...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("❌ Erro no shutdown: %v", err)
	}
}
