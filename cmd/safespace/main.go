package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/gofiber/fiber/v3"
	chromem "github.com/philippgille/chromem-go"

	"github.com/safespace-labs/safespace/pkg/alerts"
	"github.com/safespace-labs/safespace/pkg/analyzer"
	"github.com/safespace-labs/safespace/pkg/config"
	"github.com/safespace-labs/safespace/pkg/taxonomy"
	"github.com/safespace-labs/safespace/pkg/telemetry"
)

const Version = "0.1.0"

// Service wires the classification tiers together. Every remote tier is
// optional; with nothing configured the keyword scorer still works.
type Service struct {
	analyzer *analyzer.ContentAnalyzer
	client   *analyzer.RemoteClient
	local    *analyzer.LocalClassifier
	store    *alerts.Store
	metrics  *telemetry.Metrics
	config   *config.Config
}

func NewService(cfg *config.Config) *Service {
	if cfg == nil {
		cfg = config.NewDefaultConfig()
	}
	cfg.MustValidate()

	tax := taxonomy.Default()
	if cfg.TaxonomySeedPath != "" {
		seeded, err := tax.LoadSeeds(cfg.TaxonomySeedPath)
		if err != nil {
			log.Printf("[STARTUP] taxonomy seed load failed (%v), using builtin taxonomy", err)
		} else {
			tax = seeded
			log.Printf("[STARTUP] taxonomy extended from %s (%d categories)", cfg.TaxonomySeedPath, tax.Len())
		}
	}

	s := &Service{config: cfg, metrics: telemetry.New()}

	var client analyzer.ModelClient
	if cfg.APIKey != "" && cfg.Provider != config.ProviderNone {
		s.client = analyzer.NewRemoteClient(cfg)
		client = s.client
		log.Printf("[STARTUP] model tier enabled (provider: %s, %d models)", cfg.Provider, len(cfg.Models))
	} else {
		log.Println("[STARTUP] model tier disabled (no API key), keyword scorer only")
	}

	s.analyzer = analyzer.NewContentAnalyzer(client, analyzer.StaticCredentials(cfg.APIKey), tax)

	if cfg.EnableLocalML {
		s.local = analyzer.NewLocalClassifierWithFallback(analyzer.DefaultLocalConfig())
		if s.local.IsReady() {
			s.analyzer.SetLocalClassifier(s.local)
			log.Println("[STARTUP] local ML tier enabled (ONNX)")
		}
	}

	if cfg.EnableSemantics && cfg.APIKey != "" && cfg.BaseURL != "" {
		embed := chromem.NewEmbeddingFuncOpenAICompat(cfg.BaseURL, cfg.APIKey, cfg.EmbeddingModel, nil)
		sd, err := analyzer.NewSemanticDetector(embed)
		if err != nil {
			log.Printf("[STARTUP] semantic tier disabled: %v", err)
		} else {
			ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
			if err := sd.SeedFromTaxonomy(ctx, tax); err != nil {
				log.Printf("[STARTUP] semantic tier disabled (seeding failed: %v)", err)
			} else {
				s.analyzer.SetSemanticDetector(sd)
				log.Printf("[STARTUP] semantic tier enabled (model: %s)", cfg.EmbeddingModel)
			}
			cancel()
		}
	}

	if cfg.RedisAddr != "" {
		store := alerts.NewStore(cfg.RedisAddr, cfg.RedisPassword, cfg.AlertTTL, int64(cfg.AlertCap))
		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		if err := store.Ping(ctx); err != nil {
			log.Printf("[STARTUP] alert store disabled (redis unreachable: %v)", err)
			_ = store.Close()
		} else {
			s.store = store
			log.Printf("[STARTUP] alert store enabled (redis %s)", cfg.RedisAddr)
		}
	}

	return s
}

// Classify runs one item and records an alert when the verdict warrants
// one and a store is attached.
func (s *Service) Classify(ctx context.Context, text string, actx analyzer.AnalysisContext) analyzer.RiskVerdict {
	verdict := s.analyzer.Classify(ctx, text, actx)
	s.metrics.RecordClassification(verdict.RiskLevel != analyzer.RiskSafe)
	s.recordAlert(ctx, verdict, text, actx)
	return verdict
}

func (s *Service) recordAlert(ctx context.Context, v analyzer.RiskVerdict, text string, actx analyzer.AnalysisContext) {
	if s.store == nil {
		return
	}
	alert := alerts.FromVerdict(v, text, actx)
	if alert == nil {
		return
	}
	if err := s.store.Add(ctx, alert); err != nil {
		log.Printf("[WARN] failed to store alert: %v", err)
		return
	}
	s.metrics.RecordAlert()
}

func (s *Service) Close() {
	if s.client != nil {
		s.client.Close()
	}
	if s.local != nil {
		_ = s.local.Close()
	}
	if s.store != nil {
		_ = s.store.Close()
	}
}

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)

	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "serve":
		port := "3000"
		if len(os.Args) > 2 {
			port = os.Args[2]
		}
		runHTTPServer(port)
	case "scan":
		if len(os.Args) < 3 {
			fmt.Println("Usage: safespace scan <text>")
			os.Exit(1)
		}
		runCLIScan(strings.Join(os.Args[2:], " "))
	case "version":
		fmt.Printf("SafeSpace v%s\n", Version)
		fmt.Println("Online safety risk classifier")
	default:
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Printf("SafeSpace v%s - online safety risk classifier\n\n", Version)
	fmt.Println("Usage:")
	fmt.Println("  safespace serve [port]   Start HTTP server (default: 3000)")
	fmt.Println("  safespace scan <text>    Classify text from the command line")
	fmt.Println("  safespace version        Show version")
	fmt.Println("")
	fmt.Println("Environment Variables:")
	fmt.Println("  SAFESPACE_API_KEY     API key for the model provider")
	fmt.Println("  SAFESPACE_PROVIDER    Provider: openrouter, openai, groq, custom")
	fmt.Println("  SAFESPACE_MODELS      Comma-separated model fallback list")
	fmt.Println("  SAFESPACE_REDIS_ADDR  Redis address for the alert store")
}

func runHTTPServer(port string) {
	svc := NewService(config.NewDefaultConfig())
	defer svc.Close()

	app := fiber.New(fiber.Config{
		AppName: "SafeSpace",
	})

	app.Get("/health", func(c fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "ok",
			"version": Version,
			"metrics": svc.metrics.Snapshot(),
		})
	})

	app.Post("/classify", func(c fiber.Ctx) error {
		var req struct {
			Text    string                   `json:"text"`
			Context analyzer.AnalysisContext `json:"context"`
		}
		if err := c.Bind().Body(&req); err != nil {
			return c.Status(400).JSON(fiber.Map{"error": "invalid request"})
		}
		verdict := svc.Classify(c.Context(), req.Text, req.Context)
		return c.JSON(verdict)
	})

	app.Post("/classify/batch", func(c fiber.Ctx) error {
		var req struct {
			Items []analyzer.BatchItem `json:"items"`
		}
		if err := c.Bind().Body(&req); err != nil {
			return c.Status(400).JSON(fiber.Map{"error": "invalid request"})
		}
		if len(req.Items) == 0 {
			return c.Status(400).JSON(fiber.Map{"error": "items field is required"})
		}

		results := svc.analyzer.AnalyzeBatch(c.Context(), req.Items)
		svc.metrics.RecordBatch(len(results))
		for _, r := range results {
			svc.metrics.RecordClassification(r.Verdict.RiskLevel != analyzer.RiskSafe)
			svc.recordAlert(c.Context(), r.Verdict, r.Item.Text, r.Item.Context)
		}
		return c.JSON(fiber.Map{"results": results})
	})

	app.Get("/alerts", func(c fiber.Ctx) error {
		if svc.store == nil {
			return c.Status(503).JSON(fiber.Map{"error": "alert store not configured"})
		}
		list, err := svc.store.List(c.Context(), int64(fiber.Query[int](c, "limit", 0)))
		if err != nil {
			return c.Status(500).JSON(fiber.Map{"error": err.Error()})
		}
		return c.JSON(fiber.Map{"alerts": list})
	})

	app.Get("/alerts/stats", func(c fiber.Ctx) error {
		if svc.store == nil {
			return c.Status(503).JSON(fiber.Map{"error": "alert store not configured"})
		}
		stats, err := svc.store.Summary(c.Context())
		if err != nil {
			return c.Status(500).JSON(fiber.Map{"error": err.Error()})
		}
		return c.JSON(stats)
	})

	app.Delete("/alerts/:id", func(c fiber.Ctx) error {
		if svc.store == nil {
			return c.Status(503).JSON(fiber.Map{"error": "alert store not configured"})
		}
		if err := svc.store.Remove(c.Context(), c.Params("id")); err != nil {
			return c.Status(500).JSON(fiber.Map{"error": err.Error()})
		}
		return c.JSON(fiber.Map{"removed": c.Params("id")})
	})

	app.Post("/block", func(c fiber.Ctx) error {
		if svc.store == nil {
			return c.Status(503).JSON(fiber.Map{"error": "alert store not configured"})
		}
		var req struct {
			Username string `json:"username"`
			Platform string `json:"platform"`
		}
		if err := c.Bind().Body(&req); err != nil || req.Username == "" {
			return c.Status(400).JSON(fiber.Map{"error": "username field is required"})
		}
		if err := svc.store.BlockAccount(c.Context(), req.Username, req.Platform); err != nil {
			return c.Status(500).JSON(fiber.Map{"error": err.Error()})
		}
		return c.JSON(fiber.Map{"blocked": req.Username})
	})

	app.Get("/blocked", func(c fiber.Ctx) error {
		if svc.store == nil {
			return c.Status(503).JSON(fiber.Map{"error": "alert store not configured"})
		}
		list, err := svc.store.BlockedAccounts(c.Context())
		if err != nil {
			return c.Status(500).JSON(fiber.Map{"error": err.Error()})
		}
		return c.JSON(fiber.Map{"accounts": list})
	})

	log.Printf("[STARTUP] SafeSpace v%s listening on :%s", Version, port)
	if err := app.Listen(":" + port); err != nil {
		log.Fatalf("server error: %v", err)
	}
}

func runCLIScan(text string) {
	svc := NewService(config.NewDefaultConfig())
	defer svc.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	verdict := svc.Classify(ctx, text, analyzer.AnalysisContext{})
	out, _ := json.MarshalIndent(verdict, "", "  ")
	fmt.Println(string(out))
}
