package server

import (
	"log"
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/session"
	"github.com/gofiber/template/html/v2"

	"docchat/app/api"
	"docchat/app/middleware"
	"docchat/loader"
	"docchat/model"
	"docchat/types"
)

type Server struct {
	listenAddr string
	logger     *slog.Logger
	app        *fiber.App
}

func NewServer(addr string) *Server {
	if addr == "" {
		addr = ":8080"
	}
	return &Server{
		listenAddr: addr,
		logger:     slog.Default(),
	}
}

func (s *Server) Stop() {
	if s.app != nil {
		if err := s.app.Shutdown(); err != nil {
			s.logger.Error("error during shutdown", "error", err.Error())
		}
	}
	s.logger.Info("server stopped")
}

func (s *Server) Run() {
	cfg := configFromEnv()

	pdfLoader, err := loader.NewPDFLoader(cfg.UploadDir)
	if err != nil {
		log.Fatal("error to create upload directory: ", err)
	}

	engine := html.New("./views", ".html")

	var (
		app = fiber.New(fiber.Config{
			Views:        engine,
			ErrorHandler: api.ErrorHandler,
		})
		sessions     = session.New(session.Config{Expiration: 24 * time.Hour})
		generator    = model.NewGroqGenerator(cfg)
		chatHandler  = api.NewChatHandler(pdfLoader, generator, sessions)
		checkHandler = api.NewCheckHandler()
		check        = app.Group("/check")
	)
	s.app = app

	app.Use(middleware.PlugStatic("/static"))
	app.Static("/static", "./static")

	app.Get("/", chatHandler.HandleIndex)
	app.Get("/upload", chatHandler.HandleUploadPage)
	app.Post("/upload", chatHandler.HandleUpload)
	app.Get("/chat", chatHandler.HandleChat)
	app.Post("/send_message", chatHandler.HandleSendMessage)
	check.Get("/healthy", checkHandler.HandleHealthy)

	if err := app.Listen(s.listenAddr); err != nil {
		s.logger.Error("error to start server", "error", err.Error())
	}
}

func configFromEnv() types.Config {
	apiKey := os.Getenv("GROQ_API_KEY")
	if apiKey == "" {
		log.Fatal("GROQ_API_KEY is not set")
	}

	cfg := types.Config{
		UploadDir:   os.Getenv("UPLOAD_DIR"),
		GroqAPIKey:  apiKey,
		GroqBaseURL: os.Getenv("GROQ_BASE_URL"),
		Model:       os.Getenv("LLM_MODEL"),
		MaxTokens:   model.DefaultMaxTokens,
	}
	if cfg.UploadDir == "" {
		cfg.UploadDir = "uploads"
	}
	if cfg.GroqBaseURL == "" {
		cfg.GroqBaseURL = model.DefaultBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = model.DefaultModel
	}
	if v := os.Getenv("LLM_MAX_TOKENS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.MaxTokens = n
		}
	}
	return cfg
}
