package main

import (
	"context"
	"log"

	"ai-shopper-be/internal/bootstrap"
	"ai-shopper-be/internal/config"
	"ai-shopper-be/internal/server"
	"ai-shopper-be/internal/tracer"
)

func main() {
	// 0. Initialize Tracer (no-op unless OTEL_ENABLED=true)
	shutdownTracer := tracer.InitTracer()
	defer shutdownTracer(context.Background())

	// 1. Load Configuration
	cfg := config.Load()

	// 2. Bootstrap Dependencies (Container)
	container := bootstrap.NewContainer(cfg)

	// 3. Start Background Services
	go func() {
		log.Println("Background: Starting Consumer Service...")
		if err := container.ConsumerService.Consume(context.Background()); err != nil {
			log.Printf("Background Consumer Error: %v", err)
		}
	}()

	// 4. Load the catalog. A missing CSV is survivable: endpoints answer 503
	// until the data shows up, the process keeps serving health checks.
	if mode, err := container.CatalogLoader.Load(context.Background()); err != nil {
		log.Printf("[WARN] Catalog failed to load, serving degraded: %v", err)
	} else {
		log.Printf("[INFO] Catalog ready in %s mode", mode)
	}

	// 5. Initialize Server
	srv := server.New(cfg, container)

	// 6. Run Server
	log.Fatal(srv.Run())
}
