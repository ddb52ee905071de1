package main

import (
	"log"
	"net/http"

	"go.uber.org/zap"

	"github.com/ai-dope/schema-engine/pkg/config"
	"github.com/ai-dope/schema-engine/pkg/handlers"
	"github.com/ai-dope/schema-engine/pkg/llm"
	"github.com/ai-dope/schema-engine/pkg/logging"
	"github.com/ai-dope/schema-engine/pkg/mcp"
	"github.com/ai-dope/schema-engine/pkg/mcp/tools"
	"github.com/ai-dope/schema-engine/pkg/middleware"
	"github.com/ai-dope/schema-engine/pkg/repositories"
	"github.com/ai-dope/schema-engine/pkg/services"
)

// Version is set at build time via ldflags
var Version = "dev"

func main() {
	// Load configuration
	cfg, err := config.Load(Version)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger, err := logging.New(cfg.Env)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Configuration loaded",
		zap.String("environment", cfg.Env),
		zap.String("base_url", cfg.BaseURL),
		zap.String("llm_endpoint", cfg.LLM.BaseURL),
		zap.String("llm_model", cfg.LLM.Model))

	// Design services
	optimizer := services.NewOptimizerService(logger)
	validator := services.NewValidationService(logger)
	performance := services.NewPerformanceService(logger)
	simulator := services.NewDMLSimulatorService(logger)
	toolset := services.NewToolset(optimizer, validator, performance, simulator)
	executor := llm.NewSchemaToolExecutor(toolset, logger)

	mux := http.NewServeMux()

	// Register handlers
	healthHandler := handlers.NewHealthHandler(cfg, logger)
	healthHandler.RegisterRoutes(mux)

	sqlToolsHandler := handlers.NewSQLToolsHandler(optimizer, validator, performance, simulator, logger)
	sqlToolsHandler.RegisterRoutes(mux)

	// Chat requires a reachable LLM endpoint; the SQL tool endpoints and the
	// MCP surface work without one.
	if cfg.LLM.IsConfigured() {
		streamingClient, err := llm.NewStreamingClient(&llm.Config{
			Endpoint: cfg.LLM.BaseURL,
			Model:    cfg.LLM.Model,
			APIKey:   cfg.LLM.APIKey,
		}, cfg.Chat.MaxToolIterations, logger)
		if err != nil {
			logger.Fatal("Failed to create LLM client", zap.Error(err))
		}

		chatRepo := repositories.NewMemoryChatRepository()
		chatService := services.NewSchemaChatService(
			streamingClient,
			executor,
			chatRepo,
			cfg.Chat.HistoryLimit,
			cfg.LLM.Temperature,
			logger,
		)
		handlers.NewChatHandler(chatService, logger).RegisterRoutes(mux)
	} else {
		logger.Warn("LLM endpoint not configured, chat endpoints disabled")
	}

	// MCP server exposing the design tools to external agents
	mcpServer := mcp.NewServer("schema-engine", cfg.Version, logger)
	tools.RegisterHealthTool(mcpServer.MCP(), cfg.Version)
	tools.RegisterSchemaTools(mcpServer.MCP(), &tools.SchemaToolDeps{
		Optimizer:   optimizer,
		Validator:   validator,
		Performance: performance,
		Simulator:   simulator,
		Logger:      logger,
	})
	handlers.NewMCPHandler(mcpServer, logger).RegisterRoutes(mux)

	// Serve static UI files from ui/dist
	fs := http.FileServer(http.Dir("./ui/dist"))
	mux.Handle("/", fs)

	handler := middleware.RequestLogger(logger)(mux)

	addr := cfg.BindAddr + ":" + cfg.Port
	logger.Info("Starting schema-engine",
		zap.String("addr", addr),
		zap.String("version", cfg.Version))
	if err := http.ListenAndServe(addr, handler); err != nil {
		logger.Fatal("Server failed", zap.Error(err))
	}
}
