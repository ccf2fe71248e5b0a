// Entry point; loads config, wires the chat core and its collaborators, and
// starts the HTTP server.
package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"wayfinder/internal/ai"
	"wayfinder/internal/config"
	httptransport "wayfinder/internal/http"
	"wayfinder/internal/infra"
	"wayfinder/internal/modules/chat"
	"wayfinder/internal/modules/usage"
	"wayfinder/internal/routing"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	dbPool, err := infra.NewDB(ctx, cfg.DB.DSN)
	if err != nil {
		log.Fatalf("postgres init: %v", err)
	}
	defer dbPool.Close()

	redisClient := infra.NewRedis(cfg.Redis.Addr)

	responder, err := ai.NewGeminiResponder(ctx, cfg.AI.GeminiKey, cfg.AI.RequestsPerSec)
	if err != nil {
		log.Fatalf("gemini init: %v", err)
	}
	defer responder.Close()

	googleRouter, err := routing.NewGoogleRouter(cfg.AI.MapsKey, cfg.AI.RequestsPerSec)
	if err != nil {
		log.Fatalf("maps init: %v", err)
	}
	router := routing.NewCachedRouter(
		googleRouter,
		routing.NewRedisCache(redisClient),
		time.Duration(cfg.Cache.RouteTTLMinutes)*time.Minute,
	)

	usageSvc := usage.NewService(usage.NewStore(dbPool))

	registry := chat.NewRegistry(responder, router, chat.Config{
		DebounceWindow: time.Duration(cfg.Chat.DebounceMs) * time.Millisecond,
		CooldownWindow: time.Duration(cfg.Chat.CooldownMs) * time.Millisecond,
		CallTimeout:    time.Duration(cfg.Chat.CallTimeoutS) * time.Second,
	})
	registry.OnReject(func(text string, err error) {
		log.Printf("submission rejected: %v (text %q dropped, client may retry)", err, text)
	})
	defer registry.Close()

	handler := httptransport.NewRouter(httptransport.ServerDeps{
		Registry: registry,
		Quota:    usageSvc,
	})

	server := &http.Server{Addr: cfg.HTTP.Addr, Handler: handler}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = server.Shutdown(shutdownCtx)
	}()

	log.Printf("wayfinder listening on %s", cfg.HTTP.Addr)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatal(err)
	}
}
