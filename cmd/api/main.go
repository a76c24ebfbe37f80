package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"

	"pharmaclic/internal/assistant"
	"pharmaclic/internal/config"
	"pharmaclic/internal/handler"
	"pharmaclic/internal/jobs"
	"pharmaclic/internal/model"
	"pharmaclic/internal/repository"
	"pharmaclic/internal/service"
	"pharmaclic/internal/ws"
	"pharmaclic/pkg/database"
	"pharmaclic/pkg/jwt"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"
)

func main() {
	// 1. Load config
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}
	jwt.SetSecret(cfg.JWTSecret)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// 2. Setup database (staff accounts, and the store slot for the postgres backend)
	db, err := database.ConnectDB(cfg.DSN())
	if err != nil {
		log.Fatal(err)
	}
	if err := db.AutoMigrate(&model.Privilege{}, &model.Role{}, &model.User{}, &repository.StoreSnapshot{}); err != nil {
		log.Fatal("Failed to migrate database: ", err)
	}

	userRepo := repository.NewUserRepo(db)
	privilegeRepo := repository.NewPrivilegeRepo(db)
	roleRepo := repository.NewRoleRepo(db)

	// 3. Seed privileges, roles and the owner account
	if err := service.SeedAccessControl(privilegeRepo, roleRepo, userRepo, cfg.AdminEmail, cfg.AdminPassword); err != nil {
		log.Printf("Warning: failed to seed access control: %v", err)
	}

	// 4. Store slot
	var snapshotRepo repository.SnapshotRepository
	var redisOpts asynq.RedisClientOpt
	switch cfg.StoreBackend {
	case config.BackendRedis:
		rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		defer rdb.Close()
		snapshotRepo = repository.NewRedisSnapshotRepo(rdb, cfg.StoreKey)
		redisOpts = asynq.RedisClientOpt{Addr: cfg.RedisAddr}
	default:
		snapshotRepo = repository.NewSnapshotRepo(db, cfg.StoreKey)
	}

	// 5. WebSocket hub
	wsHub := ws.NewHub()
	go wsHub.Run()

	// 6. Services
	storeService := service.NewStoreService(snapshotRepo, wsHub)
	if err := storeService.Load(ctx); err != nil {
		log.Fatal(err)
	}
	registerService := service.NewRegisterService(storeService)
	reportService := service.NewReportService(storeService, cfg.ExpiryHorizonDays)
	authService := service.NewAuthService(userRepo, wsHub)
	assistantService := assistant.NewService(storeService, assistant.NewGeminiClient(assistant.GeminiConfig{
		APIKey:  cfg.GeminiAPIKey,
		Model:   cfg.GeminiModel,
		BaseURL: cfg.GeminiBaseURL,
		Timeout: cfg.AssistantTimeout,
	}))
	if cfg.GeminiAPIKey == "" {
		log.Println("Warning: GEMINI_API_KEY not set, the assistant will answer with a fixed message")
	}

	// 7. Fiber
	app := fiber.New(fiber.Config{
		AppName: "PHARMACLIC POS v1.0",
	})
	app.Use(logger.New())
	app.Use(recover.New())
	app.Use(cors.New())

	handler.Routes{
		Auth:      handler.NewAuthHandler(authService),
		Catalog:   handler.NewCatalogHandler(storeService),
		Register:  handler.NewRegisterHandler(registerService, storeService),
		Report:    handler.NewReportHandler(reportService),
		Assistant: handler.NewAssistantHandler(assistantService),
		Admin:     handler.NewAdminHandler(storeService),
		Staff:     handler.NewStaffHandler(service.NewStaffService(userRepo, privilegeRepo, roleRepo)),
		Roles:     handler.NewRoleHandler(roleRepo, privilegeRepo),
		UserRepo:  userRepo,
		Hub:       wsHub,
	}.Mount(app)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return app.Listen(":" + cfg.Port)
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Println("Shutting down server...")
		return app.Shutdown()
	})

	// 8. Stock alert scheduler (needs Redis for the queue)
	if cfg.StoreBackend == config.BackendRedis {
		alertJob := jobs.NewStockAlertJob(storeService, wsHub, cfg.ExpiryHorizonDays)
		task, err := jobs.NewStockAlertTask(jobs.StockAlertPayload{})
		if err != nil {
			log.Fatal(err)
		}
		worker, err := jobs.NewWorker(jobs.WorkerConfig{
			RedisOpts: redisOpts,
			Handlers:  []jobs.TaskHandler{alertJob.TaskHandler()},
			Cron:      []jobs.CronRegistration{{Spec: cfg.AlertCron, Task: task}},
		})
		if err != nil {
			log.Fatal("Failed to start job worker: ", err)
		}
		g.Go(func() error {
			return worker.Run(gctx)
		})
	} else {
		log.Println("Stock alert scheduler disabled (requires STORE_BACKEND=redis)")
	}

	if err := g.Wait(); err != nil {
		log.Fatal("Server stopped with error: ", err)
	}
	log.Println("Server exited")
}
