// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"gorm.io/gorm"

	"github.com/danielhkuo/campus-vote/auth"
	"github.com/danielhkuo/campus-vote/cache"
	"github.com/danielhkuo/campus-vote/cliparse"
	"github.com/danielhkuo/campus-vote/handlers"
	"github.com/danielhkuo/campus-vote/logger"
	"github.com/danielhkuo/campus-vote/middleware"
	"github.com/danielhkuo/campus-vote/repos"
	"github.com/danielhkuo/campus-vote/services"
	"github.com/danielhkuo/campus-vote/voting"
)

const serviceName = "campus-vote"

func NewRouter(gdb *gorm.DB, cfg cliparse.Config, log *logger.Logger, tallyCache cache.TallyCache) *gin.Engine {
	r := gin.New()
	r.HandleMethodNotAllowed = true
	r.Use(gin.Recovery())
	r.Use(otelgin.Middleware(serviceName))
	r.Use(middleware.RequestLogger(log))
	r.Use(middleware.CORS(cfg.CORSOrigins))

	// Initialize services and handlers
	store := repos.New(gdb)
	tokens := auth.NewTokenIssuer(cfg.JWTSecret, cfg.TokenTTL)
	votingService := voting.NewService(gdb, store, tallyCache, log)

	authHandler := handlers.NewAuthHandler(services.NewUserService(store.Users, tokens, cfg.AllowAdminSignup, log), log)
	electionHandler := handlers.NewElectionHandler(services.NewElectionService(gdb, store, tallyCache, log), votingService, log)
	candidateHandler := handlers.NewCandidateHandler(services.NewCandidateService(gdb, store, tallyCache, log), log)
	voteHandler := handlers.NewVoteHandler(votingService, cfg.IPHashSalt, log)

	// Health check
	r.GET("/health", func(c *gin.Context) {
		c.String(http.StatusOK, "OK")
	})

	// Root endpoint
	r.GET("/", func(c *gin.Context) {
		c.String(http.StatusOK, "campus-vote API v1")
	})

	api := r.Group("/api")
	requireAuth := middleware.Auth(tokens, log)
	require := func(need auth.Capability) gin.HandlerFunc {
		return middleware.RequireCapability(need, log)
	}

	// Accounts
	authRoutes := api.Group("/auth")
	authRoutes.POST("/register", authHandler.Register)
	authRoutes.POST("/login", authHandler.Login)
	authRoutes.GET("/profile", requireAuth, authHandler.Profile)
	authRoutes.PUT("/profile", requireAuth, authHandler.UpdateProfile)
	authRoutes.GET("/users", requireAuth, require(auth.CapManageUsers), authHandler.ListUsers)
	authRoutes.PUT("/verify/:userId", requireAuth, require(auth.CapManageUsers), authHandler.VerifyUser)

	// Elections
	elections := api.Group("/elections", requireAuth)
	elections.GET("/active", electionHandler.Active)
	elections.GET("/:id", electionHandler.Get)
	manageElections := elections.Group("", require(auth.CapManageElections))
	manageElections.GET("", electionHandler.List)
	manageElections.POST("", electionHandler.Create)
	manageElections.PUT("/:id", electionHandler.Update)
	manageElections.PUT("/:id/toggle", electionHandler.Toggle)
	manageElections.PUT("/:id/complete", electionHandler.Complete)
	manageElections.DELETE("/:id", electionHandler.Delete)
	manageElections.POST("/:id/reconcile", electionHandler.Reconcile)
	manageElections.GET("/:id/snapshot", electionHandler.Snapshot)

	// Candidates
	candidates := api.Group("/candidates", requireAuth)
	candidates.GET("/election/:electionId", candidateHandler.ListByElection)
	candidates.GET("/:id", candidateHandler.Get)
	candidates.POST("/nominate", candidateHandler.Nominate)
	manageCandidates := candidates.Group("", require(auth.CapManageCandidates))
	manageCandidates.GET("", candidateHandler.ListAll)
	manageCandidates.POST("", candidateHandler.Create)
	manageCandidates.PUT("/:id", candidateHandler.Update)
	manageCandidates.PUT("/:id/approve", candidateHandler.Approve)
	manageCandidates.DELETE("/:id", candidateHandler.Delete)

	// Votes
	votes := api.Group("/votes", requireAuth)
	votes.POST("/cast", voteHandler.Cast)
	votes.GET("/history", voteHandler.History)
	votes.GET("/results/:electionId", voteHandler.Results)
	votes.GET("", require(auth.CapViewLedger), voteHandler.Ledger)
	votes.GET("/statistics/:electionId", require(auth.CapViewLedger), voteHandler.Statistics)

	return r
}
