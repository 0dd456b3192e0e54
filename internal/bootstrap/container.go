package bootstrap

import (
	"log"

	"loan-intake-be/internal/config"
	"loan-intake-be/internal/controller"
	"loan-intake-be/internal/pkg/logger"
	"loan-intake-be/internal/repository/memory"
	"loan-intake-be/internal/service"
	"loan-intake-be/pkg/llm/factory"
	pktNats "loan-intake-be/pkg/nats"
	"loan-intake-be/pkg/phrasing"
	"loan-intake-be/pkg/sanction"
	"loan-intake-be/pkg/verification"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
)

const decisionTopicName = "LOAN_APPLICATION_DECIDED"

type Container struct {
	// Controllers
	IntakeController controller.IIntakeController

	// Background Services (Exposed for main.go to run)
	AuditService service.IAuditService
}

func NewContainer(cfg *config.Config) *Container {
	// 1. Core Facades
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.App.Environment == "production")

	// 2. Event Bus
	watermillLogger := watermill.NewStdLogger(false, false)
	pubSub := gochannel.NewGoChannel(
		gochannel.Config{},
		watermillLogger,
	)

	// NATS relay for the decision audit trail; optional, warn-only on failure
	var natsPub *pktNats.Publisher
	if cfg.Nats.URL != "" {
		var err error
		natsPub, err = pktNats.NewPublisher(cfg.Nats.URL)
		if err != nil {
			log.Printf("[WARN] Failed to connect to NATS Publisher: %v", err)
			natsPub = nil
		}
	}

	// 3. Collaborators
	verifier := verification.NewFormatVerifier()
	issuer := sanction.NewLetterGenerator(cfg.App.LetterOutputDir)

	renderer := phrasing.Renderer(phrasing.NewTemplateRenderer())
	if cfg.Phrasing.Provider == "ollama" {
		llmProvider, err := factory.NewLLMProvider(cfg.Phrasing.Provider, cfg.Phrasing.OllamaModel, cfg.Phrasing.OllamaBaseURL)
		if err != nil {
			log.Printf("[WARN] Failed to initialize LLM Provider, falling back to templates: %v", err)
		} else {
			renderer = phrasing.NewLLMRenderer(llmProvider)
			log.Printf("[INFO] Using Phrasing Provider: OLLAMA (%s)", cfg.Phrasing.OllamaModel)
		}
	}

	// 4. Services
	sessionRepo := memory.NewSessionRepository()
	decisionPublisher := service.NewDecisionPublisher(decisionTopicName, pubSub)
	auditService := service.NewAuditService(pubSub, decisionTopicName, natsPub, sysLogger)

	intakeService := service.NewIntakeService(
		sessionRepo,
		verifier,
		issuer,
		renderer,
		decisionPublisher,
		sysLogger,
		cfg.Loan,
	)

	// 5. Controllers
	return &Container{
		IntakeController: controller.NewIntakeController(intakeService),
		AuditService:     auditService,
	}
}
