package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/drivelane/fi-decision-api/api/swagger"
	"github.com/drivelane/fi-decision-api/internal/handler"
	"github.com/drivelane/fi-decision-api/internal/middleware"
	"github.com/drivelane/fi-decision-api/internal/models"
	"github.com/drivelane/fi-decision-api/internal/repository"
	"github.com/drivelane/fi-decision-api/internal/service"
	"github.com/drivelane/fi-decision-api/pkg/cache"
	"github.com/drivelane/fi-decision-api/pkg/config"
	"github.com/drivelane/fi-decision-api/pkg/database"
	"github.com/drivelane/fi-decision-api/pkg/logger"
	corsmiddleware "github.com/drivelane/fi-decision-api/pkg/middleware/cors"
	reqidmiddleware "github.com/drivelane/fi-decision-api/pkg/middleware/requestid"
)

// @title FI Decision API
// @version 0.1.0
// @description Finance and insurance request decisioning service
// @BasePath /api/v1
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect to postgres", "error", err)
	}
	defer db.Close() //nolint:errcheck

	// Redis only backs the reporting cache; the service degrades to
	// uncached queries when it is unreachable.
	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		logr.Sugar().Warnw("redis unavailable, reporting cache disabled", "error", err)
		redisClient = nil
	} else {
		defer redisClient.Close() //nolint:errcheck
	}

	clientRepo := repository.NewClientRepository(db)
	requestRepo := repository.NewFIRequestRepository(db)
	documentRepo := repository.NewDocumentRepository(db)
	workflowRepo := repository.NewWorkflowRepository(db)
	metricsRepo := repository.NewMetricsRepository(db)
	auditRepo := repository.NewAuditRepository(db)
	cacheRepo := repository.NewCacheRepository(redisClient, logr)

	validate := validator.New()

	calculator := service.NewFinancingCalculator(validate, logr)
	scoring := service.NewApprovalScoringEngine(cfg.Scoring, logr)
	comparator := service.NewFinancingOptionsComparator(calculator, scoring, logr)

	clientSvc := service.NewClientService(clientRepo, validate, logr)
	requestSvc := service.NewFIRequestService(requestRepo, clientRepo, calculator, scoring, comparator, validate, logr)
	documentSvc := service.NewDocumentRequestService(documentRepo, cfg.Documents, validate, logr)
	workflowSvc := service.NewWorkflowService(workflowRepo, validate, logr)
	reportingSvc := service.NewReportingService(metricsRepo, cacheRepo, cfg.Reporting, logr)
	metricsSvc := service.NewMetricsService()
	authSvc := service.NewAuthService(cfg.JWT, logr)

	notifySvc := service.NewNotifyService(service.NewLogNotificationSender(logr), cfg.Notify, logr)

	creditProvider := service.NewTimeoutCreditReportProvider(&service.StaticCreditReportProvider{Range: models.CreditFair}, cfg.Providers.Timeout, logr)
	requestSvc.SetCreditProvider(creditProvider)
	documentSvc.SetValidator(service.NewTimeoutDocumentValidator(&service.AcceptAllDocumentValidator{}, cfg.Providers.Timeout, logr))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	notifySvc.Start(ctx)
	defer notifySvc.Stop()

	requestSvc.SetMetrics(metricsSvc)
	documentSvc.SetMetrics(metricsSvc)

	if cfg.Workflows.Enabled {
		engine := service.NewWorkflowEngine(workflowRepo, requestRepo, requestSvc, documentSvc, notifySvc, logr)
		engine.SetMetrics(metricsSvc)
		requestSvc.SetDispatcher(engine)
		documentSvc.SetDispatcher(engine)
	}

	clientHandler := handler.NewClientHandler(clientSvc)
	requestHandler := handler.NewFIRequestHandler(requestSvc, calculator, reportingSvc)
	documentHandler := handler.NewDocumentHandler(documentSvc)
	workflowHandler := handler.NewWorkflowHandler(workflowSvc)
	reportingHandler := handler.NewReportingHandler(reportingSvc)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsSvc))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	r.GET("/ready", func(c *gin.Context) {
		if err := db.PingContext(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})

	r.GET("/metrics", gin.WrapH(metricsSvc.Handler()))

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)

	// Token routes carry no JWT; possession of the token is the credential.
	if cfg.Documents.Enabled {
		public := api.Group("/public")
		public.GET("/documents/:token", documentHandler.GetByToken)
		public.POST("/documents/:token", documentHandler.SubmitByToken)
	}

	fi := api.Group("/fi")
	fi.Use(middleware.JWT(authSvc))

	clients := fi.Group("/clients")
	clients.POST("", middleware.Audit(auditRepo, "create", "fi_client"), clientHandler.Create)
	clients.GET("", clientHandler.List)
	clients.GET("/:id", clientHandler.Get)
	clients.PUT("/:id", middleware.Audit(auditRepo, "update", "fi_client"), clientHandler.Update)

	fi.POST("/calculations", requestHandler.Calculate)

	requests := fi.Group("/requests")
	requests.POST("", middleware.Audit(auditRepo, "create", "fi_request"), requestHandler.Create)
	requests.GET("", requestHandler.List)
	requests.GET("/:id", requestHandler.Get)
	requests.PUT("/:id", middleware.Audit(auditRepo, "update", "fi_request"), requestHandler.Update)
	requests.POST("/:id/submit", middleware.Audit(auditRepo, "submit", "fi_request"), requestHandler.Submit)
	requests.PUT("/:id/status", middleware.RequireReviewer(), middleware.Audit(auditRepo, "transition", "fi_request"), requestHandler.UpdateStatus)
	requests.POST("/:id/notes", middleware.Audit(auditRepo, "note", "fi_request"), requestHandler.AddNote)
	requests.PUT("/:id/assign", middleware.RequireReviewer(), middleware.Audit(auditRepo, "assign", "fi_request"), requestHandler.Assign)
	requests.GET("/:id/history", requestHandler.History)
	requests.PUT("/:id/cosigner", middleware.Audit(auditRepo, "set_cosigner", "fi_request"), requestHandler.SetCosigner)
	requests.DELETE("/:id/cosigner", middleware.Audit(auditRepo, "remove_cosigner", "fi_request"), requestHandler.RemoveCosigner)
	requests.POST("/:id/combine-score", middleware.Audit(auditRepo, "combine_score", "fi_request"), requestHandler.CombineScore)
	requests.POST("/:id/rescore", middleware.Audit(auditRepo, "rescore", "fi_request"), requestHandler.Rescore)
	requests.POST("/:id/compare-options", requestHandler.CompareOptions)
	requests.GET("/:id/quote", requestHandler.ExportQuote)

	if cfg.Documents.Enabled {
		requests.GET("/:id/documents", documentHandler.ListByRequest)
		fi.POST("/documents", middleware.Audit(auditRepo, "create", "document_request"), documentHandler.Create)
	}

	workflows := fi.Group("/workflows")
	workflows.Use(middleware.RequireReviewer())
	workflows.POST("", middleware.Audit(auditRepo, "create", "fi_workflow"), workflowHandler.Create)
	workflows.GET("", workflowHandler.List)
	workflows.GET("/:id", workflowHandler.Get)
	workflows.PUT("/:id", middleware.Audit(auditRepo, "update", "fi_workflow"), workflowHandler.Update)
	workflows.DELETE("/:id", middleware.Audit(auditRepo, "delete", "fi_workflow"), workflowHandler.Delete)

	if cfg.Reporting.Enabled {
		reports := fi.Group("/reports")
		reports.GET("/summary", reportingHandler.Summary)
		reports.GET("/export/csv", reportingHandler.ExportCSV)
		reports.GET("/export/pdf", reportingHandler.ExportPDF)
	}

	addr := fmt.Sprintf(":%d", cfg.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Sugar().Errorw("shutdown failed", "error", err)
	}
	logr.Sugar().Infow("server stopped")
}
