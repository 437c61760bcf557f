package http

import (
	"log/slog"
	"os"

	"github.com/cmlabs-hris/presensi-backend-go/internal/handler/http/middleware"
	"github.com/cmlabs-hris/presensi-backend-go/internal/pkg/jwt"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httplog/v3"
	"github.com/go-chi/jwtauth/v5"
)

type RouterConfig struct {
	AppEnv      string
	FrontendURL string
}

func NewRouter(
	cfg RouterConfig,
	jwtService jwt.Service,
	attendanceHandler AttendanceHandler,
	penaltyHandler PenaltyHandler,
	leaveHandler LeaveHandler,
	violationHandler ViolationHandler,
	notificationHandler NotificationHandler,
) *chi.Mux {
	r := chi.NewRouter()
	logFormat := httplog.SchemaECS.Concise(false)
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		ReplaceAttr: logFormat.ReplaceAttr,
	})).With(
		slog.String("app", "presensi-backend"),
		slog.String("version", "v1.0.0"),
		slog.String("env", cfg.AppEnv),
	)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{cfg.FrontendURL},
		AllowCredentials: true,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link"},
		MaxAge:           300,
	}))

	r.Use(httplog.RequestLogger(logger, &httplog.Options{
		Level:  slog.LevelDebug,
		Schema: httplog.SchemaECS,
	}))

	r.Use(chiMiddleware.AllowContentEncoding("application/json"))
	r.Use(chiMiddleware.CleanPath)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Heartbeat("/"))

	r.Route("/api/v1", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(jwtauth.Verifier(jwtService.JWTAuth()))
			r.Use(middleware.AuthRequired(jwtService.JWTAuth()))

			r.Route("/attendances", func(r chi.Router) {
				r.Post("/clock-in", attendanceHandler.ClockIn)
				r.Get("/my", attendanceHandler.GetMyAttendance)

				r.Group(func(r chi.Router) {
					r.Use(middleware.AdminOnly)
					r.Get("/", attendanceHandler.List)
					r.Put("/{id}", attendanceHandler.Update)
					r.Post("/finalize", attendanceHandler.Finalize)
				})
			})

			r.Route("/violations", func(r chi.Router) {
				r.Use(middleware.AdminOnly)
				r.Post("/calculate", violationHandler.Calculate)
				r.Get("/history", violationHandler.History)
			})

			r.Route("/penalties", func(r chi.Router) {
				r.Get("/my", penaltyHandler.GetMyPenalties)
				r.Post("/{id}/acknowledge", penaltyHandler.Acknowledge)

				r.Group(func(r chi.Router) {
					r.Use(middleware.AdminOnly)
					r.Get("/", penaltyHandler.List)
					r.Post("/{id}/waive", penaltyHandler.Waive)
					r.Post("/{id}/pay", penaltyHandler.MarkPaid)
				})
			})

			r.Route("/leaves", func(r chi.Router) {
				r.Post("/", leaveHandler.Create)
				r.Get("/my", leaveHandler.GetMyRequests)

				r.Group(func(r chi.Router) {
					r.Use(middleware.AdminOnly)
					r.Post("/{id}/approve", leaveHandler.Approve)
					r.Post("/{id}/reject", leaveHandler.Reject)
				})
			})

			r.Get("/notifications/my", notificationHandler.GetMyNotifications)
		})
	})

	return r
}
