package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"erpassist/internal/config"
	"erpassist/internal/llm"
	"erpassist/internal/logging"
	"erpassist/internal/server"
)

var (
	// Global flags
	verbose  bool
	stateDir string
	apiKey   string

	// Logger
	logger *zap.Logger
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "erpassist",
	Short: "ERP knowledge assistant - contextual query routing for IDMS ERP",
	Long: `erpassist answers ERP user questions through a layered pipeline:

  1. Analyze the query (modules mentioned, user intent)
  2. Track per-conversation context (recent modules, queries, issues)
  3. Search the knowledge base (vector index, FAQ embeddings, keywords)
  4. Route: answer directly on high confidence, otherwise delegate to
     Gemini with the relevant context woven into the prompt.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		zapConfig := zap.NewProductionConfig()
		if verbose {
			zapConfig.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		}
		var err error
		logger, err = zapConfig.Build()
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

// serveCmd runs the HTTP API server.
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the query API server",
	Long: `Starts the HTTP server exposing the query pipeline:

  POST   /api/query                     process a query
  DELETE /api/context/{conversationId}  drop conversation context
  GET    /healthz                       liveness probe`,
	RunE: runServe,
}

// queryCmd answers a single query from the command line.
var queryCmd = &cobra.Command{
	Use:   "query [text...]",
	Short: "Answer a single query",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runQuery,
}

// clearContextCmd clears a conversation on a running server.
var clearContextCmd = &cobra.Command{
	Use:   "clear-context [conversation-id]",
	Short: "Clear a conversation's context on a running server",
	Args:  cobra.ExactArgs(1),
	RunE:  runClearContext,
}

var (
	queryModel          string
	queryConversationID string
	serverAddr          string
)

func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(filepath.Join(stateDir, "config.yaml"))
	if err != nil {
		return nil, err
	}
	if apiKey != "" {
		cfg.LLM.APIKey = apiKey
		if cfg.Embedding.GenAIAPIKey == "" {
			cfg.Embedding.GenAIAPIKey = apiKey
		}
	}
	return cfg, nil
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	if err := logging.Initialize(stateDir); err != nil {
		return fmt.Errorf("failed to initialize logging: %w", err)
	}
	defer logging.CloseAll()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	application, err := buildApp(ctx, cfg)
	if err != nil {
		return err
	}
	defer application.close()

	// Hot-reload logging settings on config edits.
	stopWatch, err := config.Watch(filepath.Join(stateDir, "config.yaml"), func() {
		if err := logging.ReloadConfig(); err != nil {
			logger.Warn("failed to reload logging config", zap.Error(err))
		}
	})
	if err != nil {
		logger.Warn("config watch disabled", zap.Error(err))
	} else {
		defer stopWatch()
	}

	logger.Info("serving",
		zap.String("host", cfg.Server.Host),
		zap.Int("port", cfg.Server.Port),
		zap.String("vector_provider", cfg.Vector.Provider),
	)

	srv := server.New(server.Config{
		Host:        cfg.Server.Host,
		Port:        cfg.Server.Port,
		CORSEnabled: true,
	}, application.router)

	return srv.Run(ctx)
}

func runQuery(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	if err := logging.Initialize(stateDir); err != nil {
		return fmt.Errorf("failed to initialize logging: %w", err)
	}
	defer logging.CloseAll()

	variant, err := llm.ParseVariant(queryModel)
	if err != nil {
		return err
	}

	conversationID := queryConversationID
	if conversationID == "" {
		conversationID = uuid.NewString()
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	application, err := buildApp(ctx, cfg)
	if err != nil {
		return err
	}
	defer application.close()

	query := strings.Join(args, " ")
	result, err := application.router.Route(ctx, query, conversationID, variant)
	if err != nil {
		return err
	}

	fmt.Println(result.Answer)
	if verbose {
		fmt.Fprintf(os.Stderr, "\nsource: %s\nintent: %s\nmodules: %s\n",
			result.Source, result.Context.DetectedIntent,
			strings.Join(result.Context.RelevantModules, ", "))
	}
	return nil
}

func runClearContext(cmd *cobra.Command, args []string) error {
	url := fmt.Sprintf("%s/api/context/%s", strings.TrimSuffix(serverAddr, "/"), args[0])

	req, err := http.NewRequest(http.MethodDelete, url, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	client := &http.Client{Timeout: 10 * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("server returned status %d", resp.StatusCode)
	}

	var body struct {
		Cleared bool `json:"cleared"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}

	if body.Cleared {
		fmt.Printf("cleared context for %s\n", args[0])
	} else {
		fmt.Printf("no context found for %s\n", args[0])
	}
	return nil
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().StringVar(&stateDir, "state-dir", ".erpassist", "State directory (config, logs, local index)")
	rootCmd.PersistentFlags().StringVar(&apiKey, "api-key", "", "Gemini API key (or set GEMINI_API_KEY env)")

	queryCmd.Flags().StringVar(&queryModel, "model", "auto", "Model variant: gemini, advanced_gemini, or auto")
	queryCmd.Flags().StringVar(&queryConversationID, "conversation", "", "Conversation id (default: new)")
	clearContextCmd.Flags().StringVar(&serverAddr, "server", "http://localhost:5000", "Server address")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(queryCmd)
	rootCmd.AddCommand(clearContextCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
