package main

import (
	"context"
	"log"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/websocket/v2"
	"github.com/joho/godotenv"

	"github.com/jobup-app/backend/internal/config"
	"github.com/jobup-app/backend/internal/db"
	"github.com/jobup-app/backend/internal/handlers"
	"github.com/jobup-app/backend/internal/middleware"
	"github.com/jobup-app/backend/internal/models"
	"github.com/jobup-app/backend/internal/realtime"
	"github.com/jobup-app/backend/internal/services/chat"
	"github.com/jobup-app/backend/internal/services/deal"
	"github.com/jobup-app/backend/internal/services/notification"
	"github.com/jobup-app/backend/internal/services/post"
	"github.com/jobup-app/backend/internal/services/proposal"
	"github.com/jobup-app/backend/internal/services/rating"
	"github.com/jobup-app/backend/internal/services/reputation"
)

func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	gdb, err := db.Connect(cfg.DBDSN)
	if err != nil {
		log.Fatal(err)
	}

	if err := gdb.AutoMigrate(
		&models.User{},
		&models.Conversation{},
		&models.ChatMessage{},
		&models.Proposal{},
		&models.Deal{},
		&models.Rating{},
		&models.WorkerReputation{},
		&models.Notification{},
		&models.JobPost{},
		&models.PostLike{},
		&models.PostSave{},
		&models.PostComment{},
	); err != nil {
		log.Fatal(err)
	}

	rdb := realtime.NewRedis(cfg.RedisAddr, cfg.RedisPassword)
	if err := rdb.Ping(context.Background()).Err(); err != nil {
		log.Println("redis unavailable, realtime fan-out is local only:", err)
	}

	hub := realtime.NewHub()
	go hub.Run()
	pub := realtime.NewPublisher(hub, rdb)

	chatSvc := chat.NewService(gdb)
	proposalSvc := proposal.NewService(gdb, chatSvc)
	dealSvc := deal.NewService(gdb, chatSvc)
	reputationSvc := reputation.NewService(gdb)
	ratingSvc := rating.NewService(gdb, reputationSvc)
	notifSvc := notification.NewService(gdb, pub)
	postSvc := post.NewService(gdb, notifSvc)

	authH := &handlers.AuthHandler{
		DB:        gdb,
		JWTSecret: cfg.JWTSecret,
		Expires:   cfg.JWTExpiresMin,
	}
	chatH := handlers.NewChatHandler(gdb, chatSvc, hub, pub)
	proposalH := handlers.NewProposalHandler(gdb, proposalSvc, dealSvc, notifSvc, hub)
	dealH := handlers.NewDealHandler(gdb, dealSvc, ratingSvc, notifSvc, hub)
	workerH := handlers.NewWorkerHandler(reputationSvc)
	notifH := handlers.NewNotificationHandler(notifSvc)
	postH := handlers.NewPostHandler(gdb, postSvc)

	// nightly-style refresh keeps stored aggregates honest even if a
	// best-effort recompute after a rating was lost
	go func() {
		ticker := time.NewTicker(6 * time.Hour)
		defer ticker.Stop()
		for range ticker.C {
			if _, err := reputationSvc.RecomputeAll(); err != nil {
				log.Println("reputation refresh:", err)
			}
		}
	}()

	app := fiber.New()

	app.Use(cors.New(cors.Config{
		AllowOrigins:     "http://127.0.0.1:3000, http://localhost:3000",
		AllowMethods:     "GET,POST,PUT,PATCH,DELETE,OPTIONS",
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		ExposeHeaders:    "Content-Length",
		AllowCredentials: true,
	}))

	api := app.Group("/api")

	// public
	api.Post("/auth/register", authH.Register)
	api.Post("/auth/login", authH.Login)
	api.Post("/auth/logout", authH.Logout)
	api.Get("/workers/:workerId/rating-stats", workerH.RatingStats)
	api.Get("/posts", postH.List)

	// protected (JWT cookie)
	protected := api.Group("/",
		middleware.JWTFromCookie(cfg.JWTSecret),
		middleware.AttachJWTLocals(),
	)

	protected.Get("/me", func(c *fiber.Ctx) error {
		uid := c.Locals("userId")

		var user models.User
		if err := gdb.First(&user, "id = ?", uid).Error; err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"success": false,
				"message": "User not found",
			})
		}

		return c.JSON(fiber.Map{
			"success": true,
			"data": fiber.Map{
				"id":    user.ID,
				"name":  user.Name,
				"email": user.Email,
				"role":  user.Role,
			},
		})
	})

	// chat
	protected.Get("/chat/conversations", chatH.GetConversations)
	protected.Get("/chat/:chatId/messages", chatH.GetMessages)
	protected.Post("/chat/:chatId/messages", chatH.SendMessage)

	// proposals
	protected.Post("/proposals", proposalH.Create)
	protected.Patch("/proposals/:id/status", proposalH.UpdateStatus)
	protected.Get("/proposals/chat/:chatId", proposalH.ByChat)
	protected.Get("/proposals/worker/:workerId", proposalH.ByWorker)
	protected.Get("/proposals/client/:clientId", proposalH.ByClient)

	// deals and ratings
	protected.Post("/deals/from-proposal/:proposalId", dealH.CreateFromProposal)
	protected.Patch("/deals/:id/status", dealH.UpdateStatus)
	protected.Get("/deals/chat/:chatId", dealH.ByChat)
	protected.Get("/deals/worker/:workerId", dealH.ByWorker)
	protected.Get("/deals/:id/can-rate", dealH.CanRate)
	protected.Post("/deals/:id/rating",
		middleware.RequireRoles("client"),
		dealH.AddRating,
	)
	protected.Get("/workers/:workerId/ratings", dealH.RatingsByWorker)
	protected.Post("/workers/recompute-ratings",
		middleware.RequireRoles("admin"),
		workerH.RecomputeAll,
	)

	// job post board; static segments before the :id routes
	protected.Post("/posts", postH.Create)
	protected.Get("/posts/saved/:userId", postH.SavedByUser)
	protected.Get("/posts/created-by/:userId", postH.ByCreator)
	protected.Get("/posts/:id", postH.Get)
	protected.Post("/posts/:id/like", postH.ToggleLike)
	protected.Post("/posts/:id/save", postH.ToggleSave)
	protected.Post("/posts/:id/comments", postH.AddComment)

	// notifications
	protected.Get("/notifications", notifH.List)
	protected.Get("/notifications/unread", notifH.ListUnread)
	protected.Get("/notifications/count", notifH.UnreadCount)
	protected.Patch("/notifications/read-all", notifH.MarkAllRead)
	protected.Patch("/notifications/:id/read", notifH.MarkRead)
	protected.Delete("/notifications/:id", notifH.Delete)

	// websocket auth is via query param, no JWT middleware here
	app.Get("/ws", websocket.New(chatH.WebSocketHandler))

	log.Fatal(app.Listen(":" + cfg.AppPort))
}
