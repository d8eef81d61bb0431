// ABOUTME: Entry point for the mod-gateway relay server
// ABOUTME: Issues broker tokens and relays operator commands to game-client mods

package main

import (
	"bufio"
	"context"
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/fatih/color"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/skyhaven/mod-gateway/internal/config"
	"github.com/skyhaven/mod-gateway/internal/gateway"
	"github.com/skyhaven/mod-gateway/internal/store"
)

// Version is set by goreleaser at build time.
var version = "dev"

const banner = `
                     _                  _
 _ __ ___   ___   __| |       __ _  __ _| |_ _____      ____ _ _   _
| '_ ' _ \ / _ \ / _' |_____ / _' |/ _' | __/ _ \ \ /\ / / _' | | | |
| | | | | | (_) | (_| |_____| (_| | (_| | ||  __/\ V  V / (_| | |_| |
|_| |_| |_|\___/ \__,_|      \__, |\__,_|\__\___| \_/\_/ \__,_|\__, |
                             |___/                             |___/
`

// getConfigPath returns the path to the gateway config file.
// Priority: MODGW_CONFIG env var > XDG_CONFIG_HOME/mod-gateway/gateway.yaml > ~/.config/mod-gateway/gateway.yaml
func getConfigPath() string {
	if envPath := os.Getenv("MODGW_CONFIG"); envPath != "" {
		return envPath
	}

	configDir := os.Getenv("XDG_CONFIG_HOME")
	if configDir == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "gateway.yaml" // fallback
		}
		configDir = filepath.Join(homeDir, ".config")
	}

	return filepath.Join(configDir, "mod-gateway", "gateway.yaml")
}

// getDataPath returns the path to the mod-gateway data directory.
// Priority: XDG_DATA_HOME/mod-gateway > ~/.local/share/mod-gateway
func getDataPath() string {
	dataDir := os.Getenv("XDG_DATA_HOME")
	if dataDir == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "data" // fallback
		}
		dataDir = filepath.Join(homeDir, ".local", "share")
	}

	return filepath.Join(dataDir, "mod-gateway")
}

func main() {
	if len(os.Args) < 2 {
		fmt.Println("Usage: mod-gateway <command>")
		fmt.Println()
		fmt.Println("Commands:")
		fmt.Println("  serve                          Start the gateway server")
		fmt.Println("  init                           Create a new config file interactively")
		fmt.Println("  bootstrap --email ADDR         Create config and initial admin user")
		fmt.Println("  health                         Check gateway health")
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	var err error
	switch os.Args[1] {
	case "serve":
		err = runServe(ctx)
	case "init":
		err = runInit()
	case "bootstrap":
		err = runBootstrap(ctx)
	case "health":
		err = runHealth(ctx)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", os.Args[1])
		os.Exit(1)
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func runServe(ctx context.Context) error {
	configPath := getConfigPath()

	// Print banner
	cyan := color.New(color.FgCyan)
	cyan.Print(banner)

	// Version info
	gray := color.New(color.FgHiBlack)
	gray.Printf("    version: %s\n\n", version)

	// Load configuration
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	// Setup logger
	logger := setupLogger(cfg.Logging)

	// Startup info
	green := color.New(color.FgGreen)
	yellow := color.New(color.FgYellow)

	green.Print("    ▶ ")
	fmt.Printf("Config:    %s\n", configPath)
	green.Print("    ▶ ")
	fmt.Printf("HTTP:      %s\n", cfg.Server.HTTPAddr)

	green.Print("    ▶ ")
	fmt.Printf("Broker:    ")
	if cfg.Broker.Key == "" {
		yellow.Println("not configured (degraded mode)")
	} else {
		cyan.Println(cfg.Broker.URL)
	}

	fmt.Println()

	logger.Info("starting mod-gateway",
		"config", configPath,
		"http_addr", cfg.Server.HTTPAddr,
	)

	// Create and run gateway
	gw, err := gateway.New(cfg, logger)
	if err != nil {
		return fmt.Errorf("creating gateway: %w", err)
	}

	return gw.Run(ctx)
}

func setupLogger(cfg config.LoggingConfig) *slog.Logger {
	var level slog.Level
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{
		Level: level,
	}

	var handler slog.Handler
	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = &colorHandler{
			level: level,
		}
	}

	return slog.New(handler)
}

// colorHandler provides colorized log output with thread-safe writes.
type colorHandler struct {
	mu     sync.Mutex
	level  slog.Level
	attrs  []slog.Attr
	groups []string
}

func (h *colorHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level
}

func (h *colorHandler) Handle(_ context.Context, r slog.Record) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	var buf strings.Builder

	// Format timestamp
	buf.WriteString(color.HiBlackString(r.Time.Format("15:04:05") + " "))

	// Colorize level
	switch r.Level {
	case slog.LevelDebug:
		buf.WriteString(color.MagentaString("DBG "))
	case slog.LevelInfo:
		buf.WriteString(color.CyanString("INF "))
	case slog.LevelWarn:
		buf.WriteString(color.YellowString("WRN "))
	case slog.LevelError:
		buf.WriteString(color.New(color.FgRed, color.Bold).Sprint("ERR "))
	default:
		buf.WriteString("??? ")
	}

	// Print message
	buf.WriteString(r.Message)

	// Print handler-level attrs first (from WithAttrs)
	for _, a := range h.attrs {
		buf.WriteString(color.HiBlackString(" " + a.Key + "="))
		buf.WriteString(a.Value.String())
	}

	// Print record attrs
	r.Attrs(func(a slog.Attr) bool {
		buf.WriteString(color.HiBlackString(" " + a.Key + "="))
		buf.WriteString(a.Value.String())
		return true
	})

	buf.WriteString("\n")
	fmt.Print(buf.String())
	return nil
}

func (h *colorHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	newAttrs := make([]slog.Attr, len(h.attrs), len(h.attrs)+len(attrs))
	copy(newAttrs, h.attrs)
	newAttrs = append(newAttrs, attrs...)
	return &colorHandler{
		level:  h.level,
		attrs:  newAttrs,
		groups: h.groups,
	}
}

func (h *colorHandler) WithGroup(name string) slog.Handler {
	newGroups := make([]string, len(h.groups), len(h.groups)+1)
	copy(newGroups, h.groups)
	newGroups = append(newGroups, name)
	return &colorHandler{
		level:  h.level,
		attrs:  h.attrs,
		groups: newGroups,
	}
}

func runHealth(ctx context.Context) error {
	configPath := getConfigPath()

	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	// Make HTTP request to health endpoint with context
	url := fmt.Sprintf("http://%s/health", cfg.Server.HTTPAddr)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unhealthy: status %d", resp.StatusCode)
	}

	fmt.Println("healthy")
	return nil
}

// bootstrapArgs holds parsed bootstrap command flags.
type bootstrapArgs struct {
	email    string
	password string
}

// parseBootstrapArgs parses flags in both "--flag value" and "--flag=value"
// formats.
func parseBootstrapArgs(args []string) (bootstrapArgs, error) {
	var parsed bootstrapArgs
	for i := 0; i < len(args); i++ {
		arg := args[i]
		switch {
		case arg == "--email" || arg == "-e":
			if i+1 >= len(args) {
				return parsed, fmt.Errorf("--email requires a value")
			}
			parsed.email = args[i+1]
			i++
		case strings.HasPrefix(arg, "--email="):
			parsed.email = strings.TrimPrefix(arg, "--email=")
		case arg == "--password" || arg == "-p":
			if i+1 >= len(args) {
				return parsed, fmt.Errorf("--password requires a value")
			}
			parsed.password = args[i+1]
			i++
		case strings.HasPrefix(arg, "--password="):
			parsed.password = strings.TrimPrefix(arg, "--password=")
		case strings.HasPrefix(arg, "-"):
			return parsed, fmt.Errorf("unknown flag: %s", arg)
		default:
			return parsed, fmt.Errorf("unexpected argument: %s", arg)
		}
	}
	return parsed, nil
}

// randomSecret returns a base64-encoded random secret.
func randomSecret(bytes int) (string, error) {
	buf := make([]byte, bytes)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(buf), nil
}

// runBootstrap performs first-time setup of the gateway:
// 1. Creates config file with random JWT secret (if not exists)
// 2. Creates database and initial admin user
//
// This is a one-command setup: mod-gateway bootstrap --email you@example.com
func runBootstrap(ctx context.Context) error {
	args, err := parseBootstrapArgs(os.Args[2:])
	if err != nil {
		return err
	}

	email := strings.TrimSpace(args.email)
	if email == "" {
		return fmt.Errorf("--email flag is required")
	}
	if !strings.Contains(email, "@") {
		return fmt.Errorf("email must contain @")
	}

	password := args.password
	if password == "" {
		generated, err := randomSecret(12)
		if err != nil {
			return fmt.Errorf("generating password: %w", err)
		}
		password = generated
	}
	if len(password) < 8 {
		return fmt.Errorf("password must be at least 8 characters")
	}

	configPath := getConfigPath()
	dataPath := getDataPath()
	dbPath := filepath.Join(dataPath, "gateway.db")

	green := color.New(color.FgGreen)
	cyan := color.New(color.FgCyan)
	yellow := color.New(color.FgYellow)

	// Check if config exists, create if not
	var cfg *config.Config

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		jwtSecret, err := randomSecret(32)
		if err != nil {
			return fmt.Errorf("generating JWT secret: %w", err)
		}

		// Create config directory
		configDir := filepath.Dir(configPath)
		if err := os.MkdirAll(configDir, 0755); err != nil {
			return fmt.Errorf("creating config directory: %w", err)
		}

		// Create data directory
		if err := os.MkdirAll(dataPath, 0755); err != nil {
			return fmt.Errorf("creating data directory: %w", err)
		}

		// Write config file
		configContent := fmt.Sprintf(`# mod-gateway configuration
# Generated by mod-gateway bootstrap

server:
  http_addr: "localhost:8080"

broker:
  # Shared broker key in name:secret form. Empty key runs the gateway in
  # degraded mode: token issuance and publish are unavailable.
  key: ""
  url: ""

database:
  path: "%s"

auth:
  jwt_secret: "%s"

logging:
  level: "info"
  format: "text"
`, dbPath, jwtSecret)

		if err := os.WriteFile(configPath, []byte(configContent), 0600); err != nil {
			return fmt.Errorf("writing config file: %w", err)
		}

		green.Printf("  ✓ Created config: %s\n", configPath)

		// Load the config we just created
		cfg, err = config.Load(configPath)
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}
	} else {
		// Config exists, load it
		cfg, err = config.Load(configPath)
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}

		if cfg.Auth.JWTSecret == "" {
			return fmt.Errorf("jwt_secret not configured in %s (required for bootstrap)", configPath)
		}

		cyan.Printf("  Using existing config: %s\n", configPath)
	}

	// Open the store directly
	s, err := store.NewSQLiteStore(cfg.Database.Path)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer s.Close()

	green.Printf("  ✓ Database: %s\n", cfg.Database.Path)

	// Check if any users already exist
	count, err := s.CountUsers(ctx)
	if err != nil {
		return fmt.Errorf("checking users: %w", err)
	}
	if count > 0 {
		return fmt.Errorf("bootstrap already complete: %d user(s) exist", count)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hashing password: %w", err)
	}

	userID := uuid.New().String()
	user := &store.User{
		ID:           userID,
		Email:        email,
		PasswordHash: string(hash),
		Role:         store.RoleAdmin,
		CreatedAt:    time.Now().UTC(),
	}
	if err := s.CreateUser(ctx, user); err != nil {
		return fmt.Errorf("creating admin user: %w", err)
	}

	green.Printf("  ✓ Created admin user: %s\n", email)

	// Print results
	fmt.Println()
	green.Println("  Bootstrap complete!")
	fmt.Println()
	cyan.Println("  Admin User")
	cyan.Println("  ----------")
	fmt.Printf("  ID:       %s\n", userID)
	fmt.Printf("  Email:    %s\n", email)
	fmt.Printf("  Role:     admin\n")
	if args.password == "" {
		fmt.Printf("  Password: %s (generated, store it somewhere safe)\n", password)
	}
	fmt.Println()

	yellow.Println("  Ready to go:")
	fmt.Println("    mod-gateway serve      # start the gateway")
	fmt.Println("    mod-gateway health     # verify it responds")
	fmt.Println()
	yellow.Println("  Remember to set broker.key and broker.url before mods can connect.")
	fmt.Println()

	return nil
}

func runInit() error {
	reader := bufio.NewReader(os.Stdin)

	fmt.Println("mod-gateway configuration setup")
	fmt.Println("===============================")
	fmt.Println()

	// Default paths
	defaultConfigPath := getConfigPath()
	defaultDataPath := getDataPath()
	defaultDbPath := filepath.Join(defaultDataPath, "gateway.db")

	// Output filename
	outputFile := prompt(reader, "Config file path", defaultConfigPath)

	// Check if file exists
	if _, err := os.Stat(outputFile); err == nil {
		overwrite := prompt(reader, "File exists. Overwrite?", "no")
		if strings.ToLower(overwrite) != "yes" && strings.ToLower(overwrite) != "y" {
			fmt.Println("Aborted.")
			return nil
		}
	}

	// Server configuration
	fmt.Println("\n--- Server Configuration ---")
	httpAddr := prompt(reader, "HTTP address", "localhost:8080")

	// Broker
	fmt.Println("\n--- Broker Configuration ---")
	brokerKey := prompt(reader, "Broker key (name:secret, empty for degraded mode)", "")
	var brokerURL, brokerClientID string
	if brokerKey != "" {
		brokerURL = prompt(reader, "Broker URL", "tcp://localhost:1883")
		brokerClientID = prompt(reader, "Broker client ID", "mod-gateway")
	}

	// Database
	fmt.Println("\n--- Database Configuration ---")
	dbPath := prompt(reader, "SQLite database path", defaultDbPath)

	// Auth
	fmt.Println("\n--- Auth Configuration ---")
	jwtSecret := prompt(reader, "JWT secret (empty to generate)", "")
	if jwtSecret == "" {
		generated, err := randomSecret(32)
		if err != nil {
			return fmt.Errorf("generating JWT secret: %w", err)
		}
		jwtSecret = generated
		fmt.Println("Generated a random JWT secret.")
	}

	// Logging
	fmt.Println("\n--- Logging Configuration ---")
	logLevel := prompt(reader, "Log level (debug/info/warn/error)", "info")
	logFormat := prompt(reader, "Log format (text/json)", "text")

	// Generate config
	var cfg strings.Builder
	cfg.WriteString("# mod-gateway configuration\n")
	cfg.WriteString("# Generated by mod-gateway init\n\n")

	cfg.WriteString("server:\n")
	cfg.WriteString(fmt.Sprintf("  http_addr: \"%s\"\n", httpAddr))
	cfg.WriteString("\n")

	cfg.WriteString("broker:\n")
	cfg.WriteString(fmt.Sprintf("  key: \"%s\"\n", brokerKey))
	if brokerKey != "" {
		cfg.WriteString(fmt.Sprintf("  url: \"%s\"\n", brokerURL))
		cfg.WriteString(fmt.Sprintf("  client_id: \"%s\"\n", brokerClientID))
	}
	cfg.WriteString("\n")

	cfg.WriteString("database:\n")
	cfg.WriteString(fmt.Sprintf("  path: \"%s\"\n", dbPath))
	cfg.WriteString("\n")

	cfg.WriteString("auth:\n")
	cfg.WriteString(fmt.Sprintf("  jwt_secret: \"%s\"\n", jwtSecret))
	cfg.WriteString("\n")

	cfg.WriteString("logging:\n")
	cfg.WriteString(fmt.Sprintf("  level: \"%s\"\n", logLevel))
	cfg.WriteString(fmt.Sprintf("  format: \"%s\"\n", logFormat))

	// Ensure config directory exists
	configDir := filepath.Dir(outputFile)
	if err := os.MkdirAll(configDir, 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	// Write config file
	if err := os.WriteFile(outputFile, []byte(cfg.String()), 0600); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}

	// Ensure data directory exists
	dataDir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return fmt.Errorf("creating data directory: %w", err)
	}

	fmt.Printf("\nConfig written to %s\n", outputFile)
	fmt.Printf("Data directory: %s\n", dataDir)
	fmt.Println("\nTo start the server:")
	fmt.Printf("  mod-gateway serve\n")

	return nil
}

func prompt(reader *bufio.Reader, question, defaultVal string) string {
	if defaultVal != "" {
		fmt.Printf("%s [%s]: ", question, defaultVal)
	} else {
		fmt.Printf("%s: ", question)
	}

	input, err := reader.ReadString('\n')
	if err != nil {
		// On EOF or error, return default
		fmt.Println()
		return defaultVal
	}
	input = strings.TrimSpace(input)

	if input == "" {
		return defaultVal
	}
	return input
}
