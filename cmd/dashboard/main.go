package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/damon-houk/finance-tracker/internal/application/dashboard"
	"github.com/damon-houk/finance-tracker/internal/application/service"
	"github.com/damon-houk/finance-tracker/internal/config"
	"github.com/damon-houk/finance-tracker/internal/domain/entity"
	"github.com/damon-houk/finance-tracker/internal/infrastructure/api"
	"github.com/damon-houk/finance-tracker/internal/infrastructure/cache"
	"github.com/damon-houk/finance-tracker/internal/infrastructure/logger"
)

func main() {
	if err := config.LoadDotEnv(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	cfg := config.Load()

	var (
		userID      = flag.String("user", "", "user id (required)")
		month       = flag.String("month", time.Now().UTC().Format(service.MonthLayout), "month to show, YYYY-MM")
		baseURL     = flag.String("api", cfg.APIBaseURL, "base URL of the finance tracker API")
		amount      = flag.String("amount", "", "record a transaction with this amount before showing the month")
		description = flag.String("description", "", "description of the new transaction")
		kind        = flag.String("type", string(entity.TypeExpense), "type of the new transaction: income or expense")
		category    = flag.String("category", string(entity.CategoryOther), "category of the new transaction")
		verify      = flag.Bool("verify", false, "compare the totals with the server-computed month summary")
	)
	flag.Parse()

	if err := run(*userID, *month, *baseURL, *amount, *description, *kind, *category, *verify, cfg); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func run(userID, month, baseURL, amount, description, kind, category string, verify bool, cfg *config.Config) error {
	if userID == "" {
		return errors.New("-user is required")
	}

	selected, err := time.Parse(service.MonthLayout, month)
	if err != nil {
		return fmt.Errorf("invalid -month %q: want YYYY-MM", month)
	}

	log := logger.NewJSONLogger(os.Stderr, logger.ParseLevel(cfg.LogLevel))
	client := api.NewTransactionsClient(baseURL, nil, log)
	loader := dashboard.NewLoader(client, cache.NewMonthCache(cfg.CacheTTL), log)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	var view *dashboard.View
	if amount != "" {
		parsed, err := service.ParseAmount(amount)
		if err != nil {
			return fmt.Errorf("invalid -amount %q", amount)
		}

		created, v, err := loader.Submit(ctx, api.NewTransaction{
			UserID:      userID,
			Amount:      parsed,
			Description: description,
			Type:        entity.TransactionType(kind),
			Category:    entity.Category(category),
		}, selected)
		if err != nil {
			return err
		}
		fmt.Printf("Recorded %s %s (%s)\n\n", created.Type, money(created.Amount), created.ID)
		view = v
	} else {
		view, err = loader.Load(ctx, userID, selected)
		if err != nil {
			return err
		}
	}

	if err := render(os.Stdout, view); err != nil {
		return err
	}
	if !verify {
		return nil
	}

	summary, err := client.MonthSummary(ctx, userID, view.Month.Format(service.MonthLayout))
	if err != nil {
		return fmt.Errorf("fetch server summary: %w", err)
	}
	if mismatches := compareSummary(view, summary); len(mismatches) > 0 {
		renderMismatches(os.Stdout, mismatches)
		return errors.New("server summary does not match the loaded transactions")
	}
	fmt.Println("\nServer summary matches")
	return nil
}
