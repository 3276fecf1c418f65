package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"time"

	"ledger_app_echo/internal/config"
	"ledger_app_echo/internal/ledger"
	"ledger_app_echo/internal/services"
	"ledger_app_echo/internal/tasks"
)

func main() {
	// defined flags
	op := flag.String("op", "", "Operation to run: ensure, alerts, collect, archive, rollover (mandatory)")
	month := flag.String("month", "", "Billing month YYYY-MM (optional, default: current month)")
	id := flag.Uint("id", 0, "Instance, transaction or subscription id")
	actor := flag.String("actor", "", "Actor recorded on audit entries")
	argsStr := flag.String("arguments", "", "JSON arguments, merged over the flags (optional)")
	timeout := flag.Duration("timeout", time.Minute, "Timeout for the operation")

	flag.Parse()

	// Validation
	if *op == "" {
		fmt.Println("Usage: ledgerctl -op <operation> [-month YYYY-MM] [-id N] [-actor name] [-arguments <json>]")
		flag.PrintDefaults()
		os.Exit(1)
	}

	os.Exit(run(*op, *month, *id, *actor, *argsStr, *timeout))
}

// run executes one operation and returns the process exit code, so deferred
// cleanup happens before main exits
func run(op, month string, id uint, actor, argsStr string, timeout time.Duration) int {
	cfg, err := config.Load()
	if err != nil {
		log.Printf("Invalid configuration: %v", err)
		return 1
	}
	if cfg.DatabaseURL == "" {
		log.Print("DATABASE_URL is not set")
		return 1
	}

	// Init DB
	db, err := services.InitDB(cfg.DatabaseURL)
	if err != nil {
		log.Printf("Failed to connect DB: %v", err)
		return 1
	}

	var cache services.Cache
	if cfg.RedisURL != "" {
		redisCache, err := services.NewRedisCache(cfg.RedisURL)
		if err != nil {
			slog.Warn("Redis initialization failed, alerts will not be cached", "error", err)
		} else {
			defer redisCache.Close()
			cache = redisCache
		}
	}

	engine := services.EngineConfig{
		Location:       cfg.Location,
		DueHour:        cfg.DueHour,
		CollectSplits:  cfg.CollectSplits,
		AlertsCacheTTL: cfg.AlertsCacheTTL,
	}
	ledgerService := services.NewLedgerService(db, ledger.NewSplitter(cfg.Ratios), cfg.BucketOwners, engine)

	registry := tasks.NewRegistry()
	tasks.DefineOperations(registry, tasks.Services{
		Billing:       services.NewBillingService(db, ledgerService, cache, engine),
		Ledger:        ledgerService,
		Subscriptions: services.NewSubscriptionService(db, engine),
	})

	args, err := tasks.BuildArguments(struct {
		Month string `json:"month,omitempty"`
		ID    uint   `json:"id,omitempty"`
		Actor string `json:"actor,omitempty"`
	}{month, id, actor})
	if err != nil {
		log.Printf("Invalid arguments: %v", err)
		return 1
	}

	// Parse arguments JSON
	if argsStr != "" {
		var extra map[string]interface{}
		if err := json.Unmarshal([]byte(argsStr), &extra); err != nil {
			log.Printf("Invalid JSON arguments: %v", err)
			return 1
		}
		for k, v := range extra {
			args[k] = v
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	result, err := registry.Run(ctx, op, args)
	if err != nil {
		code := ledger.CodeOf(err)
		if code == "" {
			code = "ERROR"
		}
		fmt.Fprintf(os.Stderr, "%s failed [%s]: %v\n", op, code, err)
		return 2
	}

	out, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		log.Printf("Failed to encode result: %v", err)
		return 1
	}
	fmt.Println(string(out))
	return 0
}
