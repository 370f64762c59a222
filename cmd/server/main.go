package main // Entry point package

import (
    "context"
    "errors"
    "net/http"
    "os"
    "os/signal"
    "syscall"
    "time"

    "github.com/joho/godotenv"
    "github.com/labstack/echo/v4"
    echomw "github.com/labstack/echo/v4/middleware"

    "github.com/pistac/admin-backend/internal/config"
    "github.com/pistac/admin-backend/internal/database"
    "github.com/pistac/admin-backend/internal/entitlement"
    "github.com/pistac/admin-backend/internal/handler"
    "github.com/pistac/admin-backend/internal/logging"
    "github.com/pistac/admin-backend/internal/middleware"
    "github.com/pistac/admin-backend/internal/model"
    "github.com/pistac/admin-backend/internal/ordering"
    "github.com/pistac/admin-backend/internal/publication"
    "github.com/pistac/admin-backend/internal/queue"
    "github.com/pistac/admin-backend/internal/registration"
    "github.com/pistac/admin-backend/internal/repository"
    "github.com/pistac/admin-backend/internal/router"
    "github.com/pistac/admin-backend/internal/service"
    "github.com/pistac/admin-backend/internal/storage"
)

func main() {
    _ = godotenv.Load() // .env is optional

    cfg := config.Load()
    logging.Init(cfg.LogLevel, cfg.LogPretty)

    ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
    defer stop()

    db, err := database.Open(ctx, cfg)
    if err != nil {
        logging.Fatal().Err(err).Msg("database")
    }
    defer db.Close()
    if cfg.AutoMigrate {
        if err := database.Migrate(ctx, db); err != nil {
            logging.Fatal().Err(err).Msg("database")
        }
    }

    // Audit events: RabbitMQ when configured, dropped otherwise.
    qcfg := config.LoadQueueConfig()
    var events queue.Publisher = queue.NopPublisher{}
    if qcfg.URL != "" {
        pub := service.NewAuditPublisher(qcfg.URL, qcfg.AuditQueue)
        defer pub.Close()
        events = pub
        if qcfg.Consume {
            go func() {
                if err := queue.StartAuditConsumer(ctx, qcfg.URL, qcfg.AuditQueue, qcfg.AuditLogDir); err != nil && !errors.Is(err, context.Canceled) {
                    logging.Error().Err(err).Msg("audit consumer stopped")
                }
            }()
        }
    } else {
        logging.Warn().Msg("RABBITMQ_URL not set; audit events are not published")
    }

    users := repository.NewUserRepo(db)
    resolver := entitlement.NewResolver(users, repository.NewCourseRepo(db), repository.NewCourseAccessRepo(db), events)
    docs := publication.NewService(repository.NewDocumentRepo(db), repository.NewMagazineRepo(db), events)
    lifecycle := registration.NewLifecycle(repository.NewWorkshopRepo(db), repository.NewRegistrationRepo(db), events)
    slides := ordering.NewCollection[*model.Slide]("slide", repository.NewSlideRepo(db), ordering.ValidateSlide, events)
    quick := ordering.NewCollection[*model.QuickAccessItem]("quick_access", repository.NewQuickAccessRepo(db), ordering.ValidateQuickAccess, events)

    // Slide images live in S3 when a bucket is configured.
    var images handler.ImageSigner
    if scfg := config.LoadStorageConfig(); scfg.Bucket != "" {
        store, err := storage.NewS3Store(ctx, scfg)
        if err != nil {
            logging.Fatal().Err(err).Msg("s3")
        }
        images = store
        slides.OnDelete(storage.DropSlideImage(store)).OnUpdate(storage.DropReplacedSlideImage(store))
    } else {
        logging.Warn().Msg("S3_BUCKET not set; slide images are served as stored")
    }

    rdb := config.NewRedisClient(ctx)
    if rdb == nil {
        logging.Warn().Msg("redis unreachable; caching and rate limiting disabled")
    } else {
        defer rdb.Close()
    }

    h := router.Handlers{
        Access:    handler.NewAccessHandler(resolver, entitlement.NewUsers(users, events)),
        Documents: handler.NewDocumentHandler(docs),
        Display:   handler.NewDisplayHandler(slides, quick, images),
        Workshops: handler.NewWorkshopHandler(lifecycle),
    }

    e := echo.New()
    e.HideBanner = true
    e.Use(echomw.Recover())
    e.Use(middleware.RequestLogger())

    router.RegisterRoutes(e, db)
    router.RegisterPublic(e, h, middleware.NewRedisCache(config.LoadCacheConfig(), rdb))
    router.RegisterMe(e, h, cfg.JWTSecret)
    router.RegisterAdmin(e, h, cfg.JWTSecret, middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb))

    addr := ":" + cfg.Port
    go func() {
        logging.Info().Str("addr", addr).Str("env", cfg.Env).Msg("listening")
        if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
            logging.Fatal().Err(err).Msg("server")
        }
    }()

    <-ctx.Done()
    shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
    defer cancel()
    if err := e.Shutdown(shutdownCtx); err != nil {
        logging.Error().Err(err).Msg("shutdown")
    }
}
