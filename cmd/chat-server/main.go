package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/coderjudith/va-portfolio-chat/internal/chat"
	"github.com/coderjudith/va-portfolio-chat/internal/config"
	"github.com/coderjudith/va-portfolio-chat/internal/server"
	"github.com/coderjudith/va-portfolio-chat/internal/ws"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	relay := chat.NewRelay(chat.Options{
		WelcomeMessage:   cfg.WelcomeMessage,
		InactivityPolicy: cfg.Inactivity.Policy,
		GracePeriod:      cfg.Inactivity.GracePeriod,
		AdminToken:       cfg.AdminToken,
	})

	wsHandler := ws.NewHandler(relay, cfg.AllowedOrigins)
	srv := server.New(cfg, wsHandler)

	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		log.Println("shutting down...")
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			log.Printf("shutdown error: %v", err)
		}
	}()

	log.Printf("chat server listening on %s", cfg.Addr)
	if err := srv.ListenAndServe(); err != http.ErrServerClosed {
		log.Fatalf("server error: %v", err)
	}
}
