// twostep-server exposes the two-step planner over HTTP. Grounded on
// joshhwuu-htn-2025's cmd/main.go: godotenv.Load at startup, a gin.Engine
// with Logger/Recovery/CORS/request-ID middleware, one POST route per
// operation, log.Fatal only at the top of main.
package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/joho/godotenv"

	"example.com/your_project/two-step-routing/cfrjson"
	"example.com/your_project/two-step-routing/internal/cfrclient"
	"example.com/your_project/two-step-routing/internal/config"
	"example.com/your_project/two-step-routing/twostep"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Printf("warning: could not load .env file: %v", err)
	}

	options, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load planner options: %v", err)
	}

	endpoint := os.Getenv("CFR_SOLVER_ENDPOINT")
	if endpoint == "" {
		endpoint = "http://localhost:8090/solve"
	}
	solver := cfrclient.New(endpoint, nil)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	router := setupRouter(&planHandler{options: options, solver: solver})
	log.Printf("starting server on port %s", port)
	if err := router.Run(":" + port); err != nil {
		log.Fatalf("server exited: %v", err)
	}
}

func setupRouter(h *planHandler) *gin.Engine {
	if os.Getenv("GIN_MODE") == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Logger())
	router.Use(gin.Recovery())
	router.Use(corsMiddleware())
	router.Use(requestIDMiddleware())

	router.GET("/health", h.health)

	v1 := router.Group("/api/v1")
	{
		plans := v1.Group("/plans")
		{
			plans.POST("", h.plan)
		}
	}

	return router
}

func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

func requestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader("X-Request-ID")
		if requestID == "" {
			requestID = uuid.NewString()
		}
		c.Header("X-Request-ID", requestID)
		c.Set("requestID", requestID)
		c.Next()
	}
}

// planRequest is the HTTP body for POST /api/v1/plans: a CFR request plus
// the parking definitions needed to partition it.
type planRequest struct {
	cfrjson.OptimizeToursRequest
	ParkingLocations   []twostep.ParkingLocation  `json:"parkingLocations"`
	ParkingForShipment twostep.ParkingForShipment `json:"parkingForShipment"`
}

type planHandler struct {
	options twostep.Options
	solver  *cfrclient.Client
}

func (h *planHandler) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h *planHandler) plan(c *gin.Context) {
	var req planRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	base := req.OptimizeToursRequest
	planner, err := twostep.NewPlanner(&base, req.ParkingLocations, req.ParkingForShipment, h.options)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx, cancel := contextWithTimeout(c)
	defer cancel()

	result, err := planner.Plan(ctx, h.solver)
	if err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"requestId": c.GetString("requestID"),
		"refined":   result.Refined,
		"response":  result.MergedResponse,
	})
}

func contextWithTimeout(c *gin.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Request.Context(), 2*time.Minute)
}
