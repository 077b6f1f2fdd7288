// Command intakebot runs the conversational intake assistant: an HTTP API
// that channel adapters post normalized user events to, backed by a guided
// registration flow, a knowledge responder, and a submissions store.
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/term"

	"intakebot/pkg/config"
	"intakebot/pkg/dispatch"
	"intakebot/pkg/flow"
	"intakebot/pkg/httpapi"
	"intakebot/pkg/knowledge"
	"intakebot/pkg/llm"
	"intakebot/pkg/llm/factory"
	"intakebot/pkg/logx"
	"intakebot/pkg/metrics"
	"intakebot/pkg/notify"
	"intakebot/pkg/persistence"
	"intakebot/pkg/session"
	"intakebot/pkg/submit"
	"intakebot/pkg/version"
)

const shutdownTimeout = 15 * time.Second

// Secret names offered during interactive setup.
var setupSecretNames = []string{ //nolint:gochecknoglobals // Static setup menu
	config.EnvAPIToken,
	config.EnvOpenAIKey,
	config.EnvAnthropicKey,
	config.EnvGoogleKey,
	config.EnvWhatsAppToken,
}

func main() {
	// .env is optional; real deployments use the encrypted secrets file.
	_ = godotenv.Load()

	var configPath string
	var setupMode bool
	var showVersion bool
	flag.StringVar(&configPath, "config", "", "Path to config file (YAML)")
	flag.BoolVar(&setupMode, "setup", false, "Interactively store credentials in the encrypted secrets file")
	flag.BoolVar(&showVersion, "version", false, "Print version and exit")
	flag.Parse()

	if showVersion {
		fmt.Printf("intakebot %s (commit %s, built %s)\n", version.Version, version.Commit, version.Date)
		return
	}

	if configPath == "" {
		configPath = os.Getenv("CONFIG_PATH")
	}

	workDir, err := os.Getwd()
	if err != nil {
		log.Fatalf("Failed to determine working directory: %v", err)
	}

	if setupMode {
		if err := runSetup(workDir); err != nil {
			log.Fatalf("Setup failed: %v", err)
		}
		fmt.Println("Secrets saved.")
		return
	}

	if err := loadSecrets(workDir); err != nil {
		log.Fatalf("Failed to load secrets: %v", err)
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if err := cfg.ValidateCredentials(); err != nil {
		log.Fatalf("Credential check failed: %v", err)
	}

	svc, err := NewService(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize service: %v", err)
	}

	ctx := context.Background()
	svc.Start(ctx)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigChan
	svc.logger.Info("Received signal %v, initiating graceful shutdown", sig)

	shutdownCtx, cancel := context.WithTimeout(ctx, shutdownTimeout)
	defer cancel()
	if err := svc.Shutdown(shutdownCtx); err != nil {
		log.Printf("Error during shutdown: %v", err)
		os.Exit(1)
	}
	svc.logger.Info("Shutdown completed")
}

// Service owns the wired components and their lifecycle.
type Service struct {
	cfg         *config.Config
	store       *persistence.Store
	sessions    *session.MemoryStore
	server      *httpapi.Server
	logger      *logx.Logger
	sweeperStop chan struct{}
	serverErr   chan error
}

// NewService wires the full pipeline from configuration.
func NewService(cfg *config.Config) (*Service, error) {
	logger := logx.NewLogger("intakebot")

	store, err := persistence.Open(cfg.Database.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open submissions store: %w", err)
	}

	sessions := session.NewMemoryStore(cfg.Flow.SessionTTL())

	client, err := buildCompletionClient(cfg)
	if err != nil {
		_ = store.Close()
		return nil, err
	}

	base, err := buildKnowledgeBase(cfg)
	if err != nil {
		_ = store.Close()
		return nil, err
	}
	responder := knowledge.NewResponder(base, client)

	whatsAppToken, _ := config.GetSecret(config.EnvWhatsAppToken)
	notifier := notify.NewWhatsAppNotifier(cfg.Notify.WhatsAppAPIURL, whatsAppToken)
	if !notifier.Configured() {
		logger.Warn("WhatsApp notifications not configured; confirmations will be logged and dropped")
	}

	var webhook submit.Webhook
	if cfg.Notify.WebhookURL != "" {
		webhook = notify.NewWebhookPoster(cfg.Notify.WebhookURL)
	}

	finalizer := submit.NewFinalizer(store, notifier, webhook)
	recorder := metrics.NewPrometheusRecorder(sessions.Len)
	engine := flow.NewEngine(sessions, finalizer, flow.AlwaysFollowed{}, recorder, flow.Options{
		RepromptOnMismatch: cfg.Flow.RepromptOnMismatch,
	})
	dispatcher := dispatch.NewDispatcher(engine, responder)

	var query *metrics.QueryService
	if cfg.Prometheus.URL != "" {
		query, err = metrics.NewQueryService(cfg.Prometheus.URL)
		if err != nil {
			logger.Warn("Prometheus query service unavailable: %v", err)
		}
	}

	server := httpapi.NewServer(cfg.Server.Addr, dispatcher, store, query)

	return &Service{
		cfg:       cfg,
		store:     store,
		sessions:  sessions,
		server:    server,
		logger:    logger,
		serverErr: make(chan error, 1),
	}, nil
}

// Start launches the HTTP listener and the session sweeper.
func (s *Service) Start(_ context.Context) {
	if ttl := s.cfg.Flow.SessionTTL(); ttl > 0 {
		s.sweeperStop = make(chan struct{})
		go s.sessions.RunSweeper(ttl, s.sweeperStop)
	}

	go func() {
		if err := s.server.Start(); err != nil {
			s.logger.Error("HTTP server failed: %v", err)
			s.serverErr <- err
		}
	}()
}

// Shutdown drains the HTTP server, stops the sweeper, and closes the store.
func (s *Service) Shutdown(ctx context.Context) error {
	var firstErr error
	if err := s.server.Stop(ctx); err != nil {
		firstErr = fmt.Errorf("failed to stop HTTP server: %w", err)
	}
	if s.sweeperStop != nil {
		close(s.sweeperStop)
	}
	if err := s.store.Close(); err != nil && firstErr == nil {
		firstErr = fmt.Errorf("failed to close submissions store: %w", err)
	}
	return firstErr
}

// buildCompletionClient returns nil when the provider is "none": the
// responder then answers from the knowledge base and static fallback only.
func buildCompletionClient(cfg *config.Config) (llm.Client, error) {
	if cfg.Completion.Provider == "none" {
		return nil, nil
	}

	var apiKey string
	if keyEnv := cfg.Completion.CompletionKeyEnv(); keyEnv != "" {
		key, err := config.GetSecret(keyEnv)
		if err != nil {
			return nil, fmt.Errorf("completion provider %q requires %s: %w", cfg.Completion.Provider, keyEnv, err)
		}
		apiKey = key
	}

	client, err := factory.NewClient(factory.Options{
		Provider: cfg.Completion.Provider,
		Model:    cfg.Completion.Model,
		APIKey:   apiKey,
		Host:     cfg.Completion.Host,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to build completion client: %w", err)
	}
	return client, nil
}

func buildKnowledgeBase(cfg *config.Config) (*knowledge.Base, error) {
	if cfg.Knowledge.File == "" {
		return knowledge.NewBase(knowledge.DefaultEntries()), nil
	}
	base, err := knowledge.LoadBase(cfg.Knowledge.File)
	if err != nil {
		return nil, fmt.Errorf("failed to load knowledge base: %w", err)
	}
	return base, nil
}

// loadSecrets decrypts the secrets file into memory when one exists.
// Deployments without a secrets file fall back to environment variables.
func loadSecrets(workDir string) error {
	if !config.SecretsFileExists(workDir) {
		return nil
	}

	password := os.Getenv("INTAKEBOT_PASSWORD")
	if password == "" {
		var err error
		password, err = promptPassword("Secrets password: ")
		if err != nil {
			return err
		}
	}

	secrets, err := config.DecryptSecretsFile(workDir, password)
	if err != nil {
		return err
	}
	config.SetDecryptedSecrets(secrets)
	return nil
}

// runSetup collects credentials interactively and writes the encrypted
// secrets file. Existing secrets are preserved; blank input skips a field.
func runSetup(workDir string) error {
	password, err := promptPassword("Secrets password: ")
	if err != nil {
		return err
	}

	secrets := make(map[string]string)
	if config.SecretsFileExists(workDir) {
		existing, err := config.DecryptSecretsFile(workDir, password)
		if err != nil {
			return fmt.Errorf("could not decrypt existing secrets file: %w", err)
		}
		secrets = existing
	} else {
		confirm, err := promptPassword("Confirm password: ")
		if err != nil {
			return err
		}
		if password != confirm {
			return fmt.Errorf("passwords do not match")
		}
	}

	reader := bufio.NewReader(os.Stdin)
	for _, name := range setupSecretNames {
		state := "unset"
		if secrets[name] != "" {
			state = "set"
		}
		fmt.Printf("%s [%s] (blank to keep): ", name, state)
		line, err := reader.ReadString('\n')
		if err != nil {
			return fmt.Errorf("failed to read input: %w", err)
		}
		if value := strings.TrimSpace(line); value != "" {
			secrets[name] = value
		}
	}

	return config.EncryptSecretsFile(workDir, password, secrets)
}

func promptPassword(prompt string) (string, error) {
	fmt.Print(prompt)
	raw, err := term.ReadPassword(int(syscall.Stdin))
	fmt.Println()
	if err != nil {
		return "", fmt.Errorf("failed to read password: %w", err)
	}
	return string(raw), nil
}
