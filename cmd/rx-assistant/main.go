package main

import (
	_ "embed"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/peterbourgon/ff/v4"
	"github.com/peterbourgon/ff/v4/ffhelp"
	"github.com/zombor/rx-assistant/internal/extraction"
	"github.com/zombor/rx-assistant/internal/orderform"
	"github.com/zombor/rx-assistant/internal/prescription"
)

//go:embed VERSION.txt
var versionFile string

var version = strings.TrimSpace(versionFile)

func main() {
	// Check for version flag before parsing other flags
	for _, arg := range os.Args[1:] {
		if arg == "--version" || arg == "-version" || arg == "-v" {
			fmt.Println(version)
			os.Exit(0)
		}
	}

	fs := ff.NewFlagSet("rx-assistant")
	var (
		port        = fs.IntLong("port", 8080, "HTTP server port")
		dbPath      = fs.StringLong("db", "rx-assistant.db", "Database file path")
		storagePath = fs.StringLong("storage", "./prescriptions", "Prescription upload directory")
		reportsPath = fs.StringLong("reports", "./pdf_reports", "PDF report directory")
		geminiKey   = fs.StringLong("gemini-key", "", "Google Gemini API key (or set GEMINI_API_KEY env var)")
		geminiModel = fs.StringLong("gemini-model", "gemini-2.5-pro", "Google Gemini model name")
		fallback    = fs.StringLong("fallback", "tesseract", "Fallback OCR engine: 'tesseract', 'ollama' or 'none'")
		ocrLanguage = fs.StringLong("ocr-language", "eng", "Tesseract language")
		ollamaURL   = fs.StringLong("ollama-url", "http://localhost:11434", "Ollama API base URL")
		ollamaModel = fs.StringLong("ollama-model", "llava", "Ollama vision model name (e.g., llava, llava-phi3, qwen2-vl)")
		authUser    = fs.StringLong("auth-user", "", "Basic auth username (optional)")
		authPass    = fs.StringLong("auth-pass", "", "Basic auth password (optional)")
		showVersion = fs.BoolLong("version", "Show version information")
	)

	if err := ff.Parse(fs, os.Args[1:],
		ff.WithEnvVarPrefix("RX_ASSISTANT"),
	); err != nil {
		fmt.Fprintf(os.Stderr, "%s\n", ffhelp.Flags(fs))
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	// Check version flag after parsing
	if *showVersion {
		fmt.Println(version)
		os.Exit(0)
	}

	// Initialize database
	slog.Info("Initializing database...")
	db, err := prescription.NewBoltDB(*dbPath)
	if err != nil {
		slog.Error("Failed to initialize database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	// Initialize the primary recognizer when a Gemini credential is
	// available; processing falls back to the local engine without one
	var primary extraction.Recognizer
	var advisor prescription.Advisor
	apiKey := *geminiKey
	if apiKey == "" {
		apiKey = os.Getenv("GEMINI_API_KEY")
	}
	if apiKey != "" {
		slog.Info("Initializing Gemini recognizer...", "model", *geminiModel)
		gemini, err := extraction.NewGemini(apiKey, *geminiModel)
		if err != nil {
			slog.Error("Failed to initialize Gemini", "error", err)
			os.Exit(1)
		}
		primary = gemini
		advisor = gemini
	} else {
		slog.Warn("No Gemini API key configured, relying on the fallback OCR engine only")
	}

	// Initialize the fallback recognizer
	var fallbackRecognizer extraction.Recognizer
	switch *fallback {
	case "tesseract":
		slog.Info("Initializing Tesseract recognizer...", "language", *ocrLanguage)
		fallbackRecognizer, err = extraction.NewTesseract(*ocrLanguage)
		if err != nil {
			slog.Error("Failed to initialize Tesseract", "error", err)
			os.Exit(1)
		}
	case "ollama":
		slog.Info("Initializing Ollama recognizer...", "url", *ollamaURL, "model", *ollamaModel)
		fallbackRecognizer, err = extraction.NewOllama(*ollamaURL, *ollamaModel)
		if err != nil {
			slog.Error("Failed to initialize Ollama", "error", err)
			os.Exit(1)
		}
	case "none":
		slog.Warn("No fallback OCR engine configured")
	default:
		slog.Error("Invalid fallback engine", "engine", *fallback, "valid", "tesseract, ollama or none")
		os.Exit(1)
	}

	extractor, err := extraction.NewExtractor(primary, fallbackRecognizer)
	if err != nil {
		slog.Error("Failed to initialize extractor", "error", err)
		os.Exit(1)
	}
	defer extractor.Close()

	// Initialize storage
	slog.Info("Initializing storage...")
	store, err := prescription.NewLocalStorage(*storagePath)
	if err != nil {
		slog.Error("Failed to initialize storage", "error", err)
		os.Exit(1)
	}
	reports, err := prescription.NewLocalStorage(*reportsPath)
	if err != nil {
		slog.Error("Failed to initialize report storage", "error", err)
		os.Exit(1)
	}

	// Initialize service
	service := prescription.NewService(db, extractor, store, reports, orderform.NewRenderer(), advisor)

	// Initialize server
	basicAuth := prescription.BasicAuth{
		Username: *authUser,
		Password: *authPass,
	}
	server := prescription.NewServer(service, basicAuth)

	// Start server in goroutine
	addr := fmt.Sprintf(":%d", *port)
	go func() {
		if err := server.Start(addr); err != nil {
			slog.Error("Server error", "error", err)
			os.Exit(1)
		}
	}()

	slog.Info("Server started", "address", fmt.Sprintf("http://localhost%s", addr))
	if *authUser != "" || *authPass != "" {
		slog.Info("Basic auth enabled", "user", *authUser)
	}

	// Wait for interrupt signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	slog.Info("Shutting down...")
}
