package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/JaimeStill/chronicle/internal/config"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("config load failed: ", err)
	}

	srv, err := NewServer(cfg)
	if err != nil {
		log.Fatal("server init failed: ", err)
	}

	if err := srv.Start(); err != nil {
		log.Fatal("server start failed: ", err)
	}

	// The vault must be readable before the service accepts work; an
	// unreadable vault means a wrong passphrase or corrupted material.
	openCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	if err := srv.OpenVault(openCtx); err != nil {
		cancel()
		srv.Shutdown(cfg.ShutdownTimeoutDuration())
		log.Fatal("vault open failed: ", err)
	}
	cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	if err := srv.Shutdown(cfg.ShutdownTimeoutDuration()); err != nil {
		log.Fatal("shutdown failed: ", err)
	}
}
