package main

import (
	"context"
	"flag"
	"time"

	"petition_tally/internal/auth"
	"petition_tally/internal/notifications"
	"petition_tally/internal/petition"
	"petition_tally/internal/processing"
	"petition_tally/internal/sheets"

	"github.com/rs/zerolog/log"
)

const defaultSheetURL = "https://docs.google.com/spreadsheets/d/12I3l5W2CBLvuyMpSnau9NiHBMpmIeptQTcP6vUjY-ls/edit?usp=sharing"

func main() {
	apiKey := flag.String("api-key", "", "legacy scraping API key (no longer used)")
	sheetURL := flag.String("csv-url", defaultSheetURL, "Google Sheets URL holding the petition rows")
	delay := flag.Float64("delay", 2.0, "delay between scrape requests in seconds")
	flag.Parse()

	setupEnvironment()
	if *apiKey != "" {
		log.Debug().Msg("--api-key is ignored; scraping runs through a headless browser")
	}

	ctx := context.Background()

	log.Info().Msg("Starting petition tally run")

	service, err := auth.NewSheetsService(ctx, auth.DefaultCredentialsFile, auth.DefaultTokenFile)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to authenticate with Google Sheets")
	}
	sheetsClient := sheets.NewClient(service)

	ref, err := sheets.ResolveSpreadsheetRef(*sheetURL)
	if err != nil {
		log.Fatal().Err(err).Msg("Could not resolve spreadsheet URL")
	}
	if ref.Published {
		log.Error().Msg("Cannot update a published sheet; share the EDIT link instead")
		log.Error().Msg("The edit link looks like: https://docs.google.com/spreadsheets/d/[SPREADSHEET_ID]/edit")
		return
	}
	log.Info().Str("spreadsheet_id", ref.ID).Msg("Resolved spreadsheet")

	rows := sheets.FetchRows(ctx, ref.ExportCSVURL())
	if len(rows) == 0 {
		log.Error().Msg("No rows found in spreadsheet")
		return
	}
	log.Info().Int("rows", len(rows)).Msg("Fetched petition rows")

	scraper := petition.NewScraper(petition.DefaultRenderConfig())
	defer scraper.Close()

	results := processing.CollectSignCounts(ctx, rows, scraper, time.Duration(*delay*float64(time.Second)))

	ok := processing.WriteSignCounts(ctx, sheetsClient, ref.ID, results)

	notifier := initializeNotificationClient()
	notifier.NotifyRunSummary(ctx, len(results), processing.CountFound(results), ok)

	if !ok {
		// Plain return so the deferred scraper.Close still releases the
		// browser; Fatal would exit before defers run.
		log.Error().Msg("Failed to update Google Sheets")
		return
	}
	log.Info().
		Int("rows", len(results)).
		Int("counts_found", processing.CountFound(results)).
		Msg("Successfully updated Google Sheets")
}

func initializeNotificationClient() *notifications.Client {
	enabled := getEnvWithDefault("NTFY_ENABLED", "false") == "true"
	baseURL := getEnvWithDefault("NTFY_URL", "https://ntfy.sh")
	topic := getEnvWithDefault("NTFY_TOPIC", "petition-tally")

	if enabled {
		log.Info().Str("topic", topic).Msg("Notifications enabled")
	} else {
		log.Debug().Msg("Notifications disabled")
	}

	return notifications.NewClient(baseURL, topic, enabled)
}
