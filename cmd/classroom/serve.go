package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/noah-isme/classroom-attendance/api/swagger"
	"github.com/noah-isme/classroom-attendance/internal/handler"
	"github.com/noah-isme/classroom-attendance/internal/middleware"
	"github.com/noah-isme/classroom-attendance/internal/repository"
	"github.com/noah-isme/classroom-attendance/internal/service"
	"github.com/noah-isme/classroom-attendance/pkg/config"
	"github.com/noah-isme/classroom-attendance/pkg/database"
	"github.com/noah-isme/classroom-attendance/pkg/logger"
	corsmiddleware "github.com/noah-isme/classroom-attendance/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/classroom-attendance/pkg/middleware/requestid"
)

func (cli *commandLine) serve() error {
	cfg := cli.cfg
	db, err := cli.openDB(cfg.Database)
	if err != nil {
		return err
	}
	defer db.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.Migrations.AutoApply {
		applied, err := database.NewMigrator(db, database.Migrations(), cli.logger).Up(ctx)
		if err != nil {
			return fmt.Errorf("auto migrate: %w", err)
		}
		cli.logger.Info("schema up to date", zap.Int("applied", applied))
	}

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Port),
		Handler: newRouter(cfg, db, cli.logger),
	}

	errCh := make(chan error, 1)
	go func() {
		cli.logger.Sugar().Infow("server starting", "addr", srv.Addr, "env", cfg.Env, "timezone", cfg.Classroom.Timezone)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	cli.logger.Info("shutting down", zap.Duration("timeout", cfg.ShutdownTimeout))
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	cli.logger.Info("shutdown completed")
	return nil
}

func newRouter(cfg *config.Config, db *sqlx.DB, logr *zap.Logger) *gin.Engine {
	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	var metrics *service.MetricsService
	if cfg.Metrics.Enabled {
		metrics = service.NewMetricsService()
	}

	students := repository.NewStudentRepository(db)
	competencies := repository.NewCompetencyRepository(db)

	attendanceSvc := service.NewAttendanceService(
		students,
		repository.NewAttendanceSessionRepository(db),
		repository.NewAttendanceRecordRepository(db),
		cfg.Classroom.Location,
		nil,
		metrics,
		logr,
	)
	exportSvc := service.NewExportService(attendanceSvc, cfg.Exports.PDFTitle, nil, logr)
	studentSvc := service.NewStudentService(students, competencies, validator.New(), metrics, logr)
	competencySvc := service.NewCompetencyService(students, competencies, repository.NewStudentCompetencyRepository(db), metrics, logr)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metrics))

	handler.Register(r, handler.Handlers{
		Attendance:    handler.NewAttendanceHandler(attendanceSvc, exportSvc),
		Students:      handler.NewStudentHandler(studentSvc),
		Competencies:  handler.NewCompetencyHandler(competencySvc),
		Metrics:       handler.NewMetricsHandler(metrics, db),
		EnableMetrics: cfg.Metrics.Enabled,
	})

	if cfg.Docs.Enabled && cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}
	return r
}
