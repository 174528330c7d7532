package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/fatih/color"
	"github.com/rs/zerolog"

	"github.com/gastosmart/backend/internal/auth"
	"github.com/gastosmart/backend/internal/config"
	"github.com/gastosmart/backend/internal/domain"
	"github.com/gastosmart/backend/internal/logger"
	"github.com/gastosmart/backend/internal/recommend"
	"github.com/gastosmart/backend/internal/regional"
	"github.com/gastosmart/backend/internal/store"
	fsstore "github.com/gastosmart/backend/internal/store/firestore"
	"github.com/gastosmart/backend/internal/store/memory"
)

var (
	green  = color.New(color.FgGreen)
	yellow = color.New(color.FgYellow, color.Bold)
	red    = color.New(color.FgRed)
	bold   = color.New(color.Bold)
)

func main() {
	log := logger.New()

	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "recommend":
		runRecommend(log)
	case "apply":
		runApply(log)
	case "seed":
		runSeed(log)
	case "token":
		runToken(log)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println("GastoSmart CLI")
	fmt.Println("\nUsage:")
	fmt.Println("  cli <command> [options]")
	fmt.Println("\nCommands:")
	fmt.Println("  recommend  Generate recommendations for a user")
	fmt.Println("  apply      Apply a recommendation (create a goal or log an action)")
	fmt.Println("  seed       Load demo transactions for a user into the configured store")
	fmt.Println("  token      Mint a development JWT for a user")
	fmt.Println("  help       Show this help message")
	fmt.Println("\nRun 'cli <command> -h' for more information on a command.")
}

// cliStores bundles the store facets a command needs plus its cleanup.
type cliStores struct {
	transactions store.TransactionStore
	settings     store.SettingsStore
	goals        store.GoalsStore
	close        func()
}

// openStores connects to Firestore, or hands out a fresh in-memory store in
// demo mode. Commands that persist require a configured project.
func openStores(ctx context.Context, log zerolog.Logger, cfg config.Config, demo bool) cliStores {
	if demo {
		mem := memory.New()
		return cliStores{transactions: mem, settings: mem, goals: mem, close: func() {}}
	}

	if cfg.Storage.ProjectID == "" {
		log.Fatal().Msg("No Firestore project configured - set FIRESTORE_PROJECT_ID or pass -demo")
	}

	fs, err := fsstore.New(ctx, cfg.Storage.ProjectID, cfg.Storage.CredentialsFile)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to Firestore")
	}
	return cliStores{transactions: fs, settings: fs, goals: fs, close: func() { fs.Close() }}
}

func runRecommend(log zerolog.Logger) {
	fs := flag.NewFlagSet("recommend", flag.ExitOnError)
	configPath := fs.String("config", os.Getenv("CONFIG_FILE"), "Path to YAML config file")
	userID := fs.String("user", "", "User id to generate recommendations for")
	limit := fs.Int("limit", 0, "Maximum number of recommendations (0 uses the configured cap)")
	demo := fs.Bool("demo", false, "Run against an in-memory store seeded with demo data")
	fs.Parse(os.Args[2:])

	if *userID == "" {
		log.Fatal().Msg("Error: -user is required")
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}
	if *limit > 0 {
		cfg.Engine.MaxResults = *limit
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()
	ctx = logger.WithContext(ctx, log)

	stores := openStores(ctx, log, cfg, *demo)
	defer stores.close()
	if *demo {
		seedDemo(ctx, log, stores, *userID)
	}

	format := regional.NewFormatter(cfg.Regional)
	engine := recommend.New(stores.transactions, stores.settings, stores.goals, cfg.EngineOptions(format))

	recs := engine.Generate(ctx, *userID)
	printRecommendations(*userID, recs)
}

func runApply(log zerolog.Logger) {
	fs := flag.NewFlagSet("apply", flag.ExitOnError)
	configPath := fs.String("config", os.Getenv("CONFIG_FILE"), "Path to YAML config file")
	userID := fs.String("user", "", "User id to apply the recommendation for")
	recType := fs.String("type", "", "Recommendation type (e.g. suggest_goal, reduce_category)")
	confirm := fs.Bool("confirm", false, "Confirm the action")
	name := fs.String("name", "", "Goal name (goal creation only)")
	amount := fs.Float64("amount", 0, "Goal target amount (goal creation only)")
	demo := fs.Bool("demo", false, "Run against an in-memory store seeded with demo data")
	fs.Parse(os.Args[2:])

	if *userID == "" || *recType == "" {
		log.Fatal().Msg("Usage: cli apply -user ID -type TYPE [-confirm]")
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()
	ctx = logger.WithContext(ctx, log)

	stores := openStores(ctx, log, cfg, *demo)
	defer stores.close()
	if *demo {
		seedDemo(ctx, log, stores, *userID)
	}

	metadata := map[string]interface{}{}
	if *name != "" {
		metadata["name"] = *name
	}
	if *amount > 0 {
		metadata["amount"] = *amount
	}

	format := regional.NewFormatter(cfg.Regional)
	engine := recommend.New(stores.transactions, stores.settings, stores.goals, cfg.EngineOptions(format))

	result, err := engine.Apply(ctx, *userID, domain.ApplyRequest{
		RecType:  *recType,
		Metadata: metadata,
		Confirm:  *confirm,
	})
	if err != nil {
		red.Printf("Error: %s\n", result.Detail)
		log.Fatal().Err(err).Msg("Apply failed")
	}

	if result.Success {
		green.Printf("→ %s\n", result.Detail)
	} else {
		yellow.Printf("⚠ %s\n", result.Detail)
	}
}

func runSeed(log zerolog.Logger) {
	fs := flag.NewFlagSet("seed", flag.ExitOnError)
	configPath := fs.String("config", os.Getenv("CONFIG_FILE"), "Path to YAML config file")
	userID := fs.String("user", "", "User id to seed transactions for")
	fs.Parse(os.Args[2:])

	if *userID == "" {
		log.Fatal().Msg("Error: -user is required")
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()
	ctx = logger.WithContext(ctx, log)

	stores := openStores(ctx, log, cfg, false)
	defer stores.close()

	n := seedDemo(ctx, log, stores, *userID)
	green.Printf("→ Seeded %d demo transactions for %s\n", n, *userID)
}

func runToken(log zerolog.Logger) {
	fs := flag.NewFlagSet("token", flag.ExitOnError)
	configPath := fs.String("config", os.Getenv("CONFIG_FILE"), "Path to YAML config file")
	userID := fs.String("user", "", "User id to put in the token subject")
	ttl := fs.Duration("ttl", auth.DefaultTokenTTL, "Token lifetime")
	fs.Parse(os.Args[2:])

	if *userID == "" {
		log.Fatal().Msg("Error: -user is required")
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}
	if cfg.Auth.SecretKey == config.InsecureDefaultSecret {
		log.Warn().Msg("Minting with the default signing secret - only servers using the same default will accept this token")
	}

	token, err := auth.GenerateToken([]byte(cfg.Auth.SecretKey), *userID, *ttl)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to generate token")
	}

	fmt.Println(token)
}

func printRecommendations(userID string, recs []domain.Recommendation) {
	bold.Printf("\nRecommendations for %s (%d)\n\n", userID, len(recs))
	for i, rec := range recs {
		scoreColor(rec.ScoreValue()).Printf("%2d. [%.2f] ", i+1, rec.ScoreValue())
		bold.Printf("%s\n", rec.Title)
		fmt.Printf("    %s\n", rec.Detail)
		if rec.SuggestedAction != nil {
			fmt.Printf("    → %s (%s)\n", *rec.SuggestedAction, rec.Type)
		} else {
			fmt.Printf("    (%s)\n", rec.Type)
		}
		fmt.Println()
	}
}

func scoreColor(score float64) *color.Color {
	switch {
	case score >= 0.9:
		return red
	case score >= 0.5:
		return yellow
	default:
		return green
	}
}

// seedDemo inserts the demo dataset for the user and returns how many
// records it wrote.
func seedDemo(ctx context.Context, log zerolog.Logger, s cliStores, userID string) int {
	records := demoTransactions()
	for _, record := range records {
		if _, err := s.transactions.InsertTransaction(ctx, userID, record); err != nil {
			log.Fatal().Err(err).Msg("Failed to seed demo transaction")
		}
	}
	return len(records)
}

// demoTransactions is a month of sample Colombian activity: a salary, rent
// and groceries, three Netflix charges and a few small purchases. The mix
// trips the concentration, subscription and goal rules.
func demoTransactions() []map[string]interface{} {
	tx := func(typ string, amount interface{}, category, description, merchant string) map[string]interface{} {
		return map[string]interface{}{
			"type":        typ,
			"amount":      amount,
			"category":    category,
			"description": description,
			"merchant":    merchant,
		}
	}
	return []map[string]interface{}{
		tx("ingreso", 2500000, "Salario", "Pago de nómina", ""),
		tx("gasto", 900000, "Vivienda", "Arriendo", "Inmobiliaria Centro"),
		tx("gasto", 450000, "Alimentación", "Mercado del mes", "Éxito"),
		tx("gasto", "26,900", "Entretenimiento", "Netflix", "Netflix"),
		tx("gasto", 26900, "Entretenimiento", "Netflix", "netflix"),
		tx("gasto", 26900, "Entretenimiento", "Netflix", "NETFLIX "),
		tx("gasto", 120000, "Transporte", "Gasolina", ""),
		tx("gasto", 8500, "Alimentación", "Café", "Juan Valdez"),
		tx("gasto", 12000, "Alimentación", "Almuerzo corrientazo", ""),
		tx("gasto", 15500, "Transporte", "Taxi", ""),
		tx("gasto", 95000, "", "Compra varia", ""),
	}
}
