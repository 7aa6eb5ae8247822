package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/bwmarrin/discordgo"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"warden/backend/internal/adapter"
	"warden/backend/internal/agent"
	"warden/backend/internal/api"
	"warden/backend/internal/confirm"
	"warden/backend/internal/constants"
	"warden/backend/internal/discord"
	"warden/backend/internal/graph"
	"warden/backend/internal/tools"
	"warden/backend/pkg/config"
	apperrors "warden/backend/pkg/errors"
	"warden/backend/pkg/logger"
)

func main() {
	// Initialize logger
	if err := logger.Init(os.Getenv("ENV")); err != nil {
		panic(fmt.Sprintf("Failed to initialize logger: %v", err))
	}
	defer logger.Sync()

	log := logger.Get()
	log.Info("Starting Warden...")

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load configuration", zap.Error(err))
	}

	if cfg.DiscordBotToken == "" {
		log.Fatal("DISCORD_BOT_TOKEN is required")
	}

	// Initialize Neo4j driver
	driver, err := neo4j.NewDriverWithContext(
		cfg.Neo4jURI,
		neo4j.BasicAuth(cfg.Neo4jUser, cfg.Neo4jPassword, ""),
	)
	if err != nil {
		log.Fatal("Failed to create Neo4j driver", zap.Error(err))
	}

	if err := driver.VerifyConnectivity(context.Background()); err != nil {
		log.Fatal("Failed to verify Neo4j connectivity",
			zap.Error(apperrors.NewGraphConnectionFailed(cfg.Neo4jURI, err)))
	}

	graphRepo := graph.NewRepository(driver)
	defer graphRepo.Close()

	llmAdapter := adapter.NewLLMAdapter(cfg.LiteLLMURL, cfg.OpenRouterAPIKey, cfg.ModelID)
	log.Info("LLM adapter ready", zap.String("model", llmAdapter.Model()))

	// Create Discord session
	dg, err := discordgo.New("Bot " + cfg.DiscordBotToken)
	if err != nil {
		log.Fatal("Failed to create Discord session", zap.Error(err))
	}
	if cfg.IsDevelopment() {
		dg.LogLevel = discordgo.LogInformational
	}

	// Tool surface: Discord moderation, web, memory, gated by member
	// permissions
	discordExecutor := tools.NewDiscordExecutor(dg, log)
	gate := tools.NewPermissionGate(discordExecutor)
	registry := tools.NewRegistry(gate)
	tools.RegisterDiscordTools(registry, discordExecutor)
	tools.RegisterWebTools(registry, tools.NewWebExecutor())
	tools.RegisterMemoryTools(registry, graphRepo)

	// Confirmation flow for destructive actions. The expiry callback is
	// late-bound because the handler is built after the store.
	var messageHandler *discord.Handler
	store := confirm.NewStore(constants.ConfirmationTTL, confirm.SystemClock(), func(p confirm.Pending) {
		if messageHandler != nil {
			messageHandler.OnConfirmationExpired(dg)(p)
		}
	}, log)
	workflow := confirm.NewWorkflow(store, registry, log)
	orch := agent.NewOrchestrator(llmAdapter, registry, workflow, graphRepo)

	paste := tools.NewPasteClient(cfg.PasteURL)
	sender := discord.NewResponseSender(dg, paste, log)
	messageHandler = discord.NewHandler(orch, workflow, graphRepo, sender, log)

	dg.AddHandler(messageHandler.HandleMessage)
	dg.AddHandler(messageHandler.HandleInteraction)

	dg.Identify.Intents = discordgo.IntentsGuilds |
		discordgo.IntentsGuildMessages |
		discordgo.IntentsDirectMessages |
		discordgo.IntentMessageContent

	if err := dg.Open(); err != nil {
		log.Fatal("Failed to open Discord connection", zap.Error(err))
	}
	defer dg.Close()

	log.Info("Warden is running. Press CTRL-C to exit.")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)

	opsServer := api.New(cfg, dg, store, log)
	g.Go(func() error { return opsServer.Run(gctx) })

	if err := g.Wait(); err != nil {
		log.Error("Shutdown with error", zap.Error(err))
	}

	log.Info("Warden stopped")
}
