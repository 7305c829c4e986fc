package command

import (
	"context"
	"fmt"

	"github.com/pixelcamp/pixelcamp/internal/auth"
	"github.com/pixelcamp/pixelcamp/internal/chat"
	"github.com/pixelcamp/pixelcamp/internal/game"
	"github.com/pixelcamp/pixelcamp/internal/gateway"
	"github.com/pixelcamp/pixelcamp/internal/httpapi"
	"github.com/pixelcamp/pixelcamp/internal/messaging"
	"github.com/pixelcamp/pixelcamp/internal/store"
	"github.com/pixil98/go-service"
)

func BuildWorkers(config interface{}) (service.WorkerList, error) {
	cfg, ok := config.(*Config)
	if !ok {
		return nil, fmt.Errorf("unable to cast config")
	}

	// Create the embedded nats server
	natsServer, err := cfg.Nats.buildNatsServer()
	if err != nil {
		return nil, fmt.Errorf("creating nats server: %w", err)
	}

	// Open the database and make sure the schema is in place
	db, err := store.Open(context.Background(), cfg.Database.Url)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	err = db.ApplySchema(context.Background())
	if err != nil {
		return nil, fmt.Errorf("applying database schema: %w", err)
	}

	// Load the item catalog from disk
	cat, err := cfg.Catalog.BuildCatalog()
	if err != nil {
		return nil, fmt.Errorf("loading catalog: %w", err)
	}

	// Wire up the game core
	registry := game.NewRegistry(db, cat)
	resolver := game.NewResolver(registry, cat)
	chatProc := chat.NewProcessor(registry, cat)
	broadcast := messaging.NewBroadcaster(natsServer, registry)

	gw := gateway.New(registry, resolver, chatProc, cat, broadcast, natsServer, db)

	authService := auth.NewService(db)
	router := httpapi.NewRouter(authService, gw, cfg.Server.StaticDir)

	return service.WorkerList{
		"nats": natsServer,
		"http": httpapi.NewServer(cfg.Server.Port, router),
	}, nil
}
