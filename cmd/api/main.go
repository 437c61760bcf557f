package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cmlabs-hris/presensi-backend-go/internal/config"
	appHTTP "github.com/cmlabs-hris/presensi-backend-go/internal/handler/http"
	"github.com/cmlabs-hris/presensi-backend-go/internal/pkg/cron"
	"github.com/cmlabs-hris/presensi-backend-go/internal/pkg/database"
	"github.com/cmlabs-hris/presensi-backend-go/internal/pkg/jwt"
	"github.com/cmlabs-hris/presensi-backend-go/internal/repository/postgresql"
	attendanceService "github.com/cmlabs-hris/presensi-backend-go/internal/service/attendance"
	leaveService "github.com/cmlabs-hris/presensi-backend-go/internal/service/leave"
	notificationService "github.com/cmlabs-hris/presensi-backend-go/internal/service/notification"
	penaltyService "github.com/cmlabs-hris/presensi-backend-go/internal/service/penalty"
	violationService "github.com/cmlabs-hris/presensi-backend-go/internal/service/violation"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Println("Error loading config:", err)
		return
	}

	db, err := database.NewPostgreSQLDB(cfg.DatabaseURL())
	if err != nil {
		fmt.Println("Error connecting to database:", err)
		return
	}
	defer db.Close()

	txManager := postgresql.NewTxManager(db)
	attendanceRepo := postgresql.NewAttendanceRepository(db)
	penaltyRepo := postgresql.NewPenaltyRepository(db)
	historyRepo := postgresql.NewViolationHistoryRepository(db)
	leaveRepo := postgresql.NewLeaveRequestRepository(db)
	employeeRepo := postgresql.NewEmployeeRepository(db)
	notificationRepo := postgresql.NewNotificationRepository(db)
	auditRecorder := postgresql.NewAuditLogRepository(db)
	settingsProvider := postgresql.NewSettingsRepository(db)

	jwtService := jwt.NewJWTService(cfg.JWT.Secret)

	notifier := notificationService.NewNotificationService(notificationRepo, notificationService.Config{})
	defer notifier.Stop()

	attendanceSvc := attendanceService.NewAttendanceService(
		txManager,
		settingsProvider,
		attendanceRepo,
		employeeRepo,
		notifier,
		auditRecorder,
	)
	violationSvc := violationService.NewViolationService(
		txManager,
		settingsProvider,
		attendanceRepo,
		penaltyRepo,
		historyRepo,
		notifier,
	)
	penaltySvc := penaltyService.NewPenaltyService(txManager, penaltyRepo, auditRecorder)
	leaveSvc := leaveService.NewLeaveService(
		txManager,
		settingsProvider,
		leaveRepo,
		attendanceRepo,
		employeeRepo,
		notifier,
		auditRecorder,
	)

	scheduler := cron.NewScheduler()
	if err := scheduler.AddJob(cron.NewDailyFinalizationJob(attendanceSvc, settingsProvider)); err != nil {
		fmt.Println("Error registering cron job:", err)
		return
	}
	if err := scheduler.AddJob(cron.NewMonthlyViolationJob(violationSvc, settingsProvider)); err != nil {
		fmt.Println("Error registering cron job:", err)
		return
	}
	scheduler.Start()
	defer scheduler.Stop()

	router := appHTTP.NewRouter(
		appHTTP.RouterConfig{
			AppEnv:      cfg.App.Env,
			FrontendURL: cfg.App.FrontendURL,
		},
		jwtService,
		appHTTP.NewAttendanceHandler(attendanceSvc),
		appHTTP.NewPenaltyHandler(penaltySvc),
		appHTTP.NewLeaveHandler(leaveSvc),
		appHTTP.NewViolationHandler(violationSvc),
		appHTTP.NewNotificationHandler(notifier),
	)

	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.App.Port),
		Handler: router,
	}

	go func() {
		fmt.Printf("Server running at http://localhost%s\n", server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("Server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("Shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		slog.Error("Server shutdown failed", "error", err)
	}
}
