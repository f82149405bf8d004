package main

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"creatorboosta/internal/config"
	"creatorboosta/internal/handlers"
	"creatorboosta/internal/ledger"
	"creatorboosta/internal/middleware"
	"creatorboosta/internal/repository/postgres"
	ws "creatorboosta/internal/websocket"
)

func main() {
	log := logrus.New()
	log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	cfg, err := config.Load(".")
	if err != nil {
		log.WithError(err).Fatal("cannot load config")
	}
	if cfg.DSN == "" {
		log.Fatal("DSN is required")
	}
	if cfg.JwtSecret == "" {
		log.Fatal("JWT_SECRET is required")
	}

	db, err := postgres.Connect(cfg.DSN)
	if err != nil {
		log.WithError(err).Fatal("cannot connect to database")
	}
	defer db.Close()
	log.Info("connected to postgres, migrations applied")

	store := postgres.NewLedgerStore(db)
	ldg := ledger.New(store, log)

	hub := ws.NewHub(log)
	go hub.Run()
	notifier := handlers.NewNotifier(db, hub, log)

	authHandler := handlers.NewAuthHandler(db, ldg, notifier, cfg.JwtSecret, log)
	socialHandler := handlers.NewSocialHandler(db, ldg, log)
	boostHandler := handlers.NewBoostHandler(ldg, notifier, log)
	rewardsHandler := handlers.NewRewardsHandler(ldg, notifier, log)
	vipHandler := handlers.NewVipHandler(db, ldg, log)
	forumHandler := handlers.NewForumHandler(db, notifier, log)
	notificationHandler := handlers.NewNotificationHandler(db, log)
	adminHandler := handlers.NewAdminHandler(db, ldg, notifier, log)
	wsHandler := handlers.NewWebSocketHandler(hub, log)

	r := gin.Default()
	r.Use(cors.New(cors.Config{
		AllowAllOrigins: true,
		AllowMethods:    []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:    []string{"Origin", "Content-Type", "Authorization"},
	}))

	api := r.Group("/api")
	{
		api.GET("/health", func(c *gin.Context) {
			c.JSON(200, gin.H{"status": "ok"})
		})

		auth := api.Group("/auth")
		{
			auth.POST("/register", authHandler.Register)
			auth.POST("/login", authHandler.Login)
		}

		// Public catalog and discovery.
		api.GET("/social/discover", socialHandler.Discover)
		api.GET("/boost/durations", boostHandler.Durations)
		api.GET("/vip/packages", vipHandler.Packages)
		api.GET("/forum/categories", forumHandler.Categories)
		api.GET("/forum/topics", forumHandler.Topics)
		api.GET("/forum/topics/:id", forumHandler.Topic)
		api.GET("/forum/topics/:id/replies", forumHandler.Replies)

		protected := api.Group("/")
		protected.Use(middleware.AuthMiddleware(cfg.JwtSecret, log))
		{
			protected.GET("/auth/me", authHandler.Me)
			protected.GET("/ws", wsHandler.ServeWs)

			protected.POST("/social/accounts", socialHandler.Create)
			protected.GET("/social/accounts/mine", socialHandler.Mine)

			protected.POST("/boost/create", boostHandler.Create)

			protected.POST("/rewards/ad-watched", rewardsHandler.AdWatched)
			protected.GET("/rewards/ads-remaining", rewardsHandler.AdsRemaining)
			protected.POST("/rewards/daily-login", rewardsHandler.DailyLogin)
			protected.POST("/follow-creator", rewardsHandler.FollowCreator)

			protected.POST("/vip/purchase", vipHandler.Purchase)
			protected.GET("/vip/purchases", vipHandler.MyPurchases)

			protected.POST("/forum/topics", forumHandler.CreateTopic)
			protected.POST("/forum/topics/:id/replies", forumHandler.CreateReply)

			protected.GET("/notifications", notificationHandler.List)
			protected.POST("/notifications/:id/read", notificationHandler.MarkRead)

			admin := protected.Group("/admin")
			admin.Use(middleware.RequireAdmin(db, log))
			{
				admin.GET("/users", adminHandler.Users)
				admin.PUT("/users/:id/role", adminHandler.SetRole)
				admin.PUT("/users/:id/credits", adminHandler.SetCredits)
				admin.PUT("/vip/packages/:id", adminHandler.UpdatePackage)
				admin.GET("/vip/purchases", adminHandler.Purchases)
				admin.POST("/vip/purchases/:id/approve", adminHandler.ApprovePurchase)
				admin.POST("/vip/purchases/:id/reject", adminHandler.RejectPurchase)
				admin.GET("/stats", adminHandler.Stats)
				admin.POST("/broadcast", adminHandler.Broadcast)
				admin.GET("/settings", adminHandler.Settings)
				admin.PUT("/settings", adminHandler.UpdateSetting)
			}
		}
	}

	log.WithField("addr", cfg.Addr).Info("starting server")
	if err := r.Run(cfg.Addr); err != nil {
		log.WithError(err).Fatal("server stopped")
	}
}
