// Package server wires stores, clients, and handlers into the HTTP API.
package server

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/rs/cors"

	"github.com/fitdesert/fitdesert/internal/ai"
	"github.com/fitdesert/fitdesert/internal/auth"
	"github.com/fitdesert/fitdesert/internal/backup"
	"github.com/fitdesert/fitdesert/internal/billing"
	"github.com/fitdesert/fitdesert/internal/config"
	"github.com/fitdesert/fitdesert/internal/email"
	"github.com/fitdesert/fitdesert/internal/extauth"
	"github.com/fitdesert/fitdesert/internal/handler"
	"github.com/fitdesert/fitdesert/internal/middleware"
	"github.com/fitdesert/fitdesert/internal/model"
	"github.com/fitdesert/fitdesert/internal/payment"
	"github.com/fitdesert/fitdesert/internal/store"
	ws "github.com/fitdesert/fitdesert/internal/websocket"
)

const version = "1.0.0"

type Server struct {
	db          *sql.DB
	cfg         *config.Config
	hub         *ws.Hub
	resolver    *auth.Resolver
	rateLimiter *middleware.RateLimiter

	gyms    *store.GymStore
	members *store.MemberStore

	authH       *handler.AuthHandler
	gymH        *handler.GymHandler
	memberH     *handler.MemberHandler
	attendanceH *handler.AttendanceHandler
	paymentH    *handler.PaymentHandler
	planH       *handler.PlanHandler
	progressH   *handler.ProgressHandler
	aiH         *handler.AIHandler
	webhookH    *handler.WebhookHandler
	backupH     *handler.BackupHandler

	logger *slog.Logger
}

func New(db *sql.DB, cfg *config.Config, backupMgr *backup.Manager, logger *slog.Logger) *Server {
	userStore := store.NewUserStore(db)
	sessionStore := store.NewSessionStore(db)
	gymStore := store.NewGymStore(db)
	memberStore := store.NewMemberStore(db)
	attendanceStore := store.NewAttendanceStore(db)
	paymentStore := store.NewPaymentStore(db)
	workoutStore := store.NewWorkoutPlanStore(db)
	dietStore := store.NewDietPlanStore(db)
	progressStore := store.NewProgressStore(db)
	chatStore := store.NewChatStore(db)
	backupStore := store.NewBackupStore(db)

	emailClient := email.NewClient(cfg.Email.APIKey, cfg.Email.FromEmail)
	gatewayClient := payment.NewClient(cfg.Razorpay.KeyID, cfg.Razorpay.KeySecret)
	billingClient := billing.NewClient(billing.Config{
		SecretKey:      cfg.Stripe.SecretKey,
		WebhookSecret:  cfg.Stripe.WebhookSecret,
		BasicPriceID:   cfg.Stripe.BasicPriceID,
		ProPriceID:     cfg.Stripe.ProPriceID,
		PremiumPriceID: cfg.Stripe.PremiumPriceID,
		SuccessURL:     cfg.Stripe.SuccessURL,
		CancelURL:      cfg.Stripe.CancelURL,
	})
	aiClient := ai.NewClient(cfg.OpenAI.APIKey, cfg.OpenAI.Model)
	extAuthClient := extauth.NewClient(cfg.ExtAuth.BaseURL)

	hub := ws.NewHub(logger.With("component", "websocket"))
	resolver := auth.NewResolver(sessionStore, userStore, logger.With("component", "auth"))

	return &Server{
		db:          db,
		cfg:         cfg,
		hub:         hub,
		resolver:    resolver,
		rateLimiter: middleware.NewRateLimiter(),
		gyms:        gymStore,
		members:     memberStore,

		authH: handler.NewAuthHandler(userStore, sessionStore, resolver, extAuthClient,
			logger.With("component", "auth_handler")),
		gymH: handler.NewGymHandler(gymStore, userStore, memberStore, attendanceStore,
			paymentStore, workoutStore, dietStore, progressStore, emailClient, billingClient,
			logger.With("component", "gym")),
		memberH: handler.NewMemberHandler(memberStore, userStore, gymStore, attendanceStore,
			paymentStore, workoutStore, dietStore, progressStore, emailClient,
			logger.With("component", "member")),
		attendanceH: handler.NewAttendanceHandler(attendanceStore, memberStore, gymStore, hub,
			logger.With("component", "attendance")),
		paymentH: handler.NewPaymentHandler(paymentStore, memberStore, userStore, gymStore,
			gatewayClient, emailClient, logger.With("component", "payment")),
		planH:     handler.NewPlanHandler(workoutStore, dietStore, memberStore, logger.With("component", "plan")),
		progressH: handler.NewProgressHandler(progressStore, memberStore, logger.With("component", "progress")),
		aiH:       handler.NewAIHandler(chatStore, aiClient, logger.With("component", "ai")),
		webhookH:  handler.NewWebhookHandler(gymStore, billingClient, logger.With("component", "webhook")),
		backupH:   handler.NewBackupHandler(backupMgr, backupStore, logger.With("component", "backup_handler")),

		logger: logger,
	}
}

// RateLimiter returns the limiter so main can run periodic cleanup.
func (s *Server) RateLimiter() *middleware.RateLimiter {
	return s.rateLimiter
}

func (s *Server) Router() http.Handler {
	mux := http.NewServeMux()

	requireAuth := middleware.RequireAuth(s.resolver)
	headAdmin := middleware.RequireRole(s.resolver, model.RoleHeadAdmin)
	manager := middleware.RequireRole(s.resolver, model.RoleGymManager)
	trainer := middleware.RequireRole(s.resolver, model.RoleTrainer)
	trainee := middleware.RequireRole(s.resolver, model.RoleTrainee)

	// Public
	mux.HandleFunc("GET /api/{$}", s.bannerHandler)
	mux.HandleFunc("GET /api/health", s.healthHandler)
	mux.Handle("POST /api/auth/register", s.rateLimited(s.authH.Register))
	mux.Handle("POST /api/auth/login", s.rateLimited(s.authH.Login))
	mux.Handle("GET /api/auth/session-data", s.rateLimited(s.authH.SessionData))
	mux.HandleFunc("POST /api/webhooks/stripe", s.webhookH.HandleStripeWebhook)

	// Any authenticated user
	mux.Handle("GET /api/auth/me", requireAuth(http.HandlerFunc(s.authH.Me)))
	mux.Handle("POST /api/auth/logout", requireAuth(http.HandlerFunc(s.authH.Logout)))
	mux.Handle("POST /api/auth/change-password", requireAuth(http.HandlerFunc(s.authH.ChangePassword)))
	mux.Handle("GET /api/gyms/{id}", requireAuth(http.HandlerFunc(s.gymH.Get)))
	mux.Handle("PUT /api/gyms/{id}", requireAuth(http.HandlerFunc(s.gymH.Update)))
	mux.Handle("GET /api/members/{id}", requireAuth(http.HandlerFunc(s.memberH.Get)))
	mux.Handle("POST /api/attendance/scan", requireAuth(http.HandlerFunc(s.attendanceH.Scan)))
	mux.Handle("POST /api/attendance/checkout", requireAuth(http.HandlerFunc(s.attendanceH.Checkout)))
	mux.Handle("POST /api/ai/chat", requireAuth(http.HandlerFunc(s.aiH.Chat)))
	mux.Handle("GET /api/ai/chat-history", requireAuth(http.HandlerFunc(s.aiH.History)))
	mux.Handle("POST /api/payments/verify", s.rateLimited(
		requireAuth(http.HandlerFunc(s.paymentH.Verify)).ServeHTTP))
	mux.Handle("GET /api/ws", requireAuth(ws.Handler(s.hub, s.logger.With("component", "websocket"), s.resolveFeedGym)))

	// Head admin
	mux.Handle("POST /api/gyms/create", headAdmin(http.HandlerFunc(s.gymH.Create)))
	mux.Handle("GET /api/gyms/all", headAdmin(http.HandlerFunc(s.gymH.List)))
	mux.Handle("PUT /api/gyms/{id}/subscription", headAdmin(http.HandlerFunc(s.gymH.UpdateSubscription)))
	mux.Handle("PUT /api/gyms/{id}/status", headAdmin(http.HandlerFunc(s.gymH.SetStatus)))
	mux.Handle("DELETE /api/gyms/{id}", headAdmin(http.HandlerFunc(s.gymH.Delete)))
	mux.Handle("GET /api/admin/backup", headAdmin(http.HandlerFunc(s.backupH.Status)))
	mux.Handle("POST /api/admin/backup/run", headAdmin(http.HandlerFunc(s.backupH.Run)))

	// Gym manager
	mux.Handle("POST /api/gyms/register", manager(http.HandlerFunc(s.gymH.Register)))
	mux.Handle("GET /api/gyms/my-gym", manager(http.HandlerFunc(s.gymH.MyGym)))
	mux.Handle("POST /api/gyms/subscription/checkout", manager(http.HandlerFunc(s.gymH.SubscriptionCheckout)))
	mux.Handle("POST /api/gyms/subscription/portal", manager(http.HandlerFunc(s.gymH.SubscriptionPortal)))
	mux.Handle("POST /api/members", manager(http.HandlerFunc(s.memberH.Create)))
	mux.Handle("GET /api/members", manager(http.HandlerFunc(s.memberH.List)))
	mux.Handle("GET /api/trainers", manager(http.HandlerFunc(s.memberH.ListTrainers)))
	mux.Handle("PUT /api/members/{id}", manager(http.HandlerFunc(s.memberH.Update)))
	mux.Handle("PUT /api/members/{id}/assign-trainer", manager(http.HandlerFunc(s.memberH.AssignTrainer)))
	mux.Handle("PUT /api/members/{id}/extend", manager(http.HandlerFunc(s.memberH.Extend)))
	mux.Handle("DELETE /api/members/{id}", manager(http.HandlerFunc(s.memberH.Delete)))
	mux.Handle("GET /api/attendance/gym-stats", manager(http.HandlerFunc(s.attendanceH.GymStats)))
	mux.Handle("GET /api/payments/gym/all", manager(http.HandlerFunc(s.paymentH.AllGymPayments)))
	mux.Handle("GET /api/payments/gym-payments", manager(http.HandlerFunc(s.paymentH.GymPayments)))

	// Trainer
	mux.Handle("POST /api/plans/workout", trainer(http.HandlerFunc(s.planH.CreateWorkout)))
	mux.Handle("POST /api/plans/diet", trainer(http.HandlerFunc(s.planH.CreateDiet)))

	// Trainee
	mux.Handle("GET /api/members/my-profile", trainee(http.HandlerFunc(s.memberH.MyProfile)))
	mux.Handle("GET /api/attendance/my-history", trainee(http.HandlerFunc(s.attendanceH.MyHistory)))
	mux.Handle("POST /api/payments/create-order", trainee(http.HandlerFunc(s.paymentH.CreateOrder)))
	mux.Handle("GET /api/payments/my-payments", trainee(http.HandlerFunc(s.paymentH.MyPayments)))
	mux.Handle("GET /api/plans/workout/my-plan", trainee(http.HandlerFunc(s.planH.MyWorkout)))
	mux.Handle("GET /api/plans/diet/my-plan", trainee(http.HandlerFunc(s.planH.MyDiet)))
	mux.Handle("POST /api/progress", trainee(http.HandlerFunc(s.progressH.Create)))
	mux.Handle("GET /api/progress/my-history", trainee(http.HandlerFunc(s.progressH.MyHistory)))

	corsWrapper := cors.New(cors.Options{
		AllowedOrigins:   s.cfg.CORS.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type", "X-Session-ID"},
		AllowCredentials: true,
	})

	return middleware.RequestLogger(s.logger.With("component", "http"), s.cfg.Server.TrustedProxy)(corsWrapper.Handler(mux))
}

// resolveFeedGym decides which gym's attendance feed a websocket client
// may subscribe to.
func (s *Server) resolveFeedGym(r *http.Request) (string, error) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok {
		return "", fmt.Errorf("not authenticated")
	}

	switch user.Role {
	case model.RoleHeadAdmin:
		gymID := r.URL.Query().Get("gym_id")
		if gymID == "" {
			return "", fmt.Errorf("gym_id query parameter is required")
		}
		return gymID, nil
	case model.RoleGymManager:
		gym, err := s.gyms.GetByOwnerID(r.Context(), user.ID)
		if err != nil {
			return "", fmt.Errorf("gym lookup: %w", err)
		}
		if gym == nil {
			return "", fmt.Errorf("no gym registered")
		}
		return gym.ID, nil
	default:
		member, err := s.members.GetByUserID(r.Context(), user.ID)
		if err != nil {
			return "", fmt.Errorf("membership lookup: %w", err)
		}
		if member == nil {
			return "", fmt.Errorf("no membership found")
		}
		return member.GymID, nil
	}
}

func (s *Server) bannerHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{
		"name":    "FitDesert API",
		"version": version,
	})
}

func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

func (s *Server) rateLimited(h http.HandlerFunc) http.Handler {
	keyFunc := func(r *http.Request) string {
		return middleware.ClientIP(r, s.cfg.Server.TrustedProxy)
	}
	rl := middleware.RateLimit(s.rateLimiter, keyFunc, 10, time.Minute)
	return rl(h)
}
