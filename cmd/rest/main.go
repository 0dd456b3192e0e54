package main

import (
	"context"
	"log"

	"loan-intake-be/internal/bootstrap"
	"loan-intake-be/internal/config"
	"loan-intake-be/internal/server"
	"loan-intake-be/internal/tracer"
)

func main() {
	// 1. Initialize Tracer
	shutdownTracer := tracer.InitTracer()
	defer shutdownTracer(context.Background())

	// 2. Load Configuration
	cfg := config.Load()

	// 3. Bootstrap Dependencies (Container)
	container := bootstrap.NewContainer(cfg)

	// 4. Start Background Services
	if err := container.AuditService.Consume(context.Background()); err != nil {
		log.Printf("Background Audit Consumer Error: %v", err)
	}

	// 5. Initialize Server
	srv := server.New(cfg, container)

	// 6. Run Server
	log.Fatal(srv.Run())
}
