package server

import (
	"context"
	"database/sql"
	"log"
	"net/http"
	"os"

	"github.com/gin-gonic/gin"

	"cvstudio-backend/internal/analyses"
	googleauth "cvstudio-backend/internal/auth"
	"cvstudio-backend/internal/documents"
	"cvstudio-backend/internal/enhance"
	"cvstudio-backend/internal/llm"
	"cvstudio-backend/internal/llm/openai"
	"cvstudio-backend/internal/resumes"
	"cvstudio-backend/internal/shared/config"
	"cvstudio-backend/internal/shared/metrics"
	"cvstudio-backend/internal/shared/server/middleware"
	"cvstudio-backend/internal/shared/server/respond"
	"cvstudio-backend/internal/shared/storage/db"
	"cvstudio-backend/internal/shared/storage/object"
	localstore "cvstudio-backend/internal/shared/storage/object/local"
	s3store "cvstudio-backend/internal/shared/storage/object/s3"
	"cvstudio-backend/internal/usage"
	"cvstudio-backend/internal/users"
)

// NewRouter constructs the Gin engine with middleware and routes registered.
func NewRouter(cfg config.Config) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()

	r.Use(
		middleware.RequestID(),
		middleware.Logging(),
		middleware.Recovery(),
		middleware.CORS(cfg.CORSAllowOrigin),
		middleware.Auth(cfg.Env),
		middleware.RateLimit(middleware.RateLimitConfig{
			Rules: map[string]middleware.RateLimitRule{
				"LLM": {Rate: 0.5, Burst: 3},
			},
			GroupFor: func(c *gin.Context) string {
				switch c.FullPath() {
				case "/api/v1/cv/analyze", "/api/v1/cv/enhance":
					return "LLM"
				}
				return ""
			},
		}),
	)

	store := newObjectStore(cfg)
	sqlDB := connectDB(cfg)

	var usersRepo users.Repo
	if sqlDB != nil {
		usersRepo = &users.PGRepo{DB: sqlDB}
	} else {
		usersRepo = users.NewMemoryRepo()
	}
	usersSvc := users.NewService(usersRepo)
	usersHandler := users.NewHandler(usersSvc)

	var docRepo documents.DocumentsRepo
	if sqlDB != nil {
		docRepo = &documents.PGRepo{DB: sqlDB}
	} else {
		docRepo = documents.NewMemoryRepo()
	}
	docSvc := &documents.Service{Store: store, Repo: docRepo}
	docHandler := documents.NewHandler(docSvc)

	var resumesRepo resumes.Repo
	if sqlDB != nil {
		resumesRepo = &resumes.PGRepo{DB: sqlDB}
	} else {
		resumesRepo = resumes.NewMemoryRepo()
	}
	resumesHandler := resumes.NewHandler(resumes.NewService(resumesRepo))

	var usageSvc *usage.Service
	if sqlDB != nil {
		usageSvc = usage.NewPostgresService(usage.NewPGStore(sqlDB))
	} else {
		usageSvc = usage.NewService()
	}
	usageHandler := usage.NewHandler(usageSvc)

	llmClient := newLLMClient(cfg)

	var analysisRepo analyses.Repo
	if sqlDB != nil {
		analysisRepo = &analyses.PGRepo{DB: sqlDB}
	} else {
		analysisRepo = analyses.NewMemoryRepo()
	}
	analysisSvc := &analyses.Service{
		Repo:     analysisRepo,
		Usage:    usageSvc,
		Store:    store,
		LLM:      llmClient,
		Provider: cfg.LLMProvider,
		Model:    cfg.LLMModel,
	}
	analysisHandler := analyses.NewHandler(analysisSvc)

	enhanceSvc := &enhance.Service{
		Usage: usageSvc,
		Store: store,
		LLM:   llmClient,
	}
	enhanceHandler := enhance.NewHandler(enhanceSvc)

	googleAuthSvc := googleauth.NewGoogleService(cfg.GoogleClientID, cfg.GoogleClientSecret, cfg.GoogleRedirectURL, cfg.UIRedirectURL, usersSvc)

	r.GET("/metrics", metrics.Handler())

	api := r.Group("/api/v1")
	api.GET("/health", func(c *gin.Context) {
		respond.JSON(c, http.StatusOK, gin.H{"ok": true})
	})
	googleAuthSvc.RegisterRoutes(api)
	usersHandler.RegisterRoutes(api)
	docHandler.RegisterRoutes(api)
	resumesHandler.RegisterRoutes(api)
	analysisHandler.RegisterRoutes(api)
	enhanceHandler.RegisterRoutes(api)
	usageHandler.RegisterRoutes(api)
	if cfg.Env == "dev" {
		dev := api.Group("/dev")
		usageHandler.RegisterDevRoutes(dev)
	}

	return r
}

func newObjectStore(cfg config.Config) object.ObjectStore {
	if cfg.ObjectStoreType == "s3" {
		store, err := s3store.New(context.Background(), cfg.AWSRegion, cfg.S3Bucket, cfg.S3Prefix, cfg.SSEKMSKeyID)
		if err != nil {
			log.Printf("s3 store unavailable, falling back to local: %v", err)
		} else {
			return store
		}
	}
	return localstore.New(cfg.LocalStoreDir)
}

func connectDB(cfg config.Config) *sql.DB {
	if cfg.DatabaseURL == "" {
		return nil
	}
	opts := db.OptionsFromEnv(db.DefaultServerOptions())
	dbConn, err := db.Connect(context.Background(), cfg.DatabaseURL, opts)
	if err != nil {
		log.Printf("failed to connect database, falling back to memory: %v", err)
		return nil
	}
	if err := db.RunMigrations(context.Background(), dbConn); err != nil {
		log.Printf("failed to run migrations, falling back to memory: %v", err)
		return nil
	}
	return dbConn
}

func newLLMClient(cfg config.Config) llm.Client {
	apiKey := os.Getenv("OPENAI_API_KEY")
	if apiKey == "" {
		log.Printf("OPENAI_API_KEY not set; analysis and enhancement endpoints will report not configured")
		return llm.PlaceholderClient{}
	}
	client, err := openai.NewClient(apiKey, cfg.LLMModel)
	if err != nil {
		log.Printf("llm client unavailable: %v", err)
		return llm.PlaceholderClient{}
	}
	return llm.WithBreaker(client, cfg.LLMProvider)
}

// Addr normalizes the listen address.
func Addr(port string) string {
	if port == "" {
		return ":8080"
	}
	if port[0] == ':' {
		return port
	}
	return ":" + port
}
