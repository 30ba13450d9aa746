package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"shopmate-backend/internal/catalog"
	"shopmate-backend/internal/config"
	"shopmate-backend/internal/handler"
	"shopmate-backend/internal/service"
	"shopmate-backend/pkg/logger"
)

func main() {
	var configPath string
	flag.StringVar(&configPath, "config", "./configs/config.yaml", "配置文件路径")
	flag.Parse()

	// 加载配置
	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// 初始化日志
	if err := logger.Init(cfg.Log.Level, cfg.Log.Format); err != nil {
		log.Fatalf("Failed to init logger: %v", err)
	}

	// 加载手机目录
	cat, err := catalog.Load(cfg.Catalog.DataPath)
	if err != nil {
		logger.Fatalf("Failed to load catalog: %v", err)
	}

	// 初始化智能体与服务
	agent, err := service.NewAgentService(context.Background(), cat)
	if err != nil {
		logger.Fatalf("Failed to create agent service: %v", err)
	}
	chatService := service.NewChatService(cfg, agent)

	// 初始化处理器
	chatHandler := handler.NewChatHandler(chatService)
	catalogHandler := handler.NewCatalogHandler(cat)

	// 创建路由
	router := setupRouter(cfg, chatHandler, catalogHandler)

	// 创建HTTP服务器
	server := &http.Server{
		Addr:           fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:        router,
		ReadTimeout:    cfg.Server.ReadTimeout,
		WriteTimeout:   cfg.Server.WriteTimeout,
		MaxHeaderBytes: cfg.Server.MaxHeaderBytes,
	}

	// 启动服务器
	go func() {
		logger.Infof("服务器启动在端口 %d", cfg.Server.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatalf("服务器启动失败: %v", err)
		}
	}()

	// 等待信号优雅关闭
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("服务器正在关闭...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Errorf("服务器关闭失败: %v", err)
	}
	logger.Info("服务器已关闭")
}

func setupRouter(cfg *config.Config, chatHandler *handler.ChatHandler, catalogHandler *handler.CatalogHandler) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()

	// 中间件
	router.Use(gin.Logger())
	router.Use(gin.Recovery())

	// CORS配置
	corsConfig := cors.Config{
		AllowOrigins:     cfg.CORS.AllowedOrigins,
		AllowMethods:     cfg.CORS.AllowedMethods,
		AllowHeaders:     cfg.CORS.AllowedHeaders,
		ExposeHeaders:    cfg.CORS.ExposedHeaders,
		AllowCredentials: cfg.CORS.AllowCredentials,
		MaxAge:           time.Duration(cfg.CORS.MaxAge) * time.Second,
	}
	router.Use(cors.New(corsConfig))

	// 健康检查
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":    "ok",
			"timestamp": time.Now().Unix(),
		})
	})

	// API路由
	api := router.Group("/api")
	{
		api.POST("/chat", chatHandler.Chat)

		session := api.Group("/session")
		{
			session.POST("", chatHandler.CreateSession)
			session.GET("/list", chatHandler.GetSessionList)
			session.GET("/:session_id", chatHandler.GetSession)
			session.PUT("/:session_id", chatHandler.UpdateSessionTitle)
			session.DELETE("/:session_id", chatHandler.DeleteSession)
			session.POST("/clear", chatHandler.ClearAllSessions)
			session.GET("/:session_id/messages", chatHandler.GetMessages)
		}

		phones := api.Group("/phones")
		{
			phones.GET("", catalogHandler.ListPhones)
			phones.GET("/:phone_id", catalogHandler.GetPhone)
		}
	}

	return router
}
