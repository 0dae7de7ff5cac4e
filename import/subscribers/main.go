// subscribers imports newsletter subscribers from a CSV file
// Run: go run ./import/subscribers -csv FILE [-notify]
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/grtshw/event-registration/notify"
	"github.com/grtshw/event-registration/signup"
	"github.com/grtshw/event-registration/store"
	"github.com/grtshw/event-registration/utils"
	"github.com/pocketbase/pocketbase"
)

type Result struct {
	Created int
	Skipped int
	Errors  []string
}

// Subscriber is the part of signup.Service the importer needs.
type Subscriber interface {
	Subscribe(ctx context.Context, email string) (string, error)
	SubscribeQuietly(ctx context.Context, email string) (string, error)
}

func main() {
	csvFile := flag.String("csv", "", "Path to CSV file (required)")
	column := flag.String("column", "email", "Header of the column holding email addresses")
	dataDir := flag.String("data-dir", "pb_data", "PocketBase data directory")
	sendMail := flag.Bool("notify", false, "Send the subscription confirmation to each imported address")
	dryRun := flag.Bool("dry-run", false, "Parse and print without importing")
	flag.Parse()

	if *csvFile == "" {
		fmt.Println("Usage: go run ./import/subscribers -csv FILE [-column email] [-notify] [-dry-run]")
		fmt.Println("\nFlags:")
		flag.PrintDefaults()
		os.Exit(1)
	}

	f, err := os.Open(*csvFile)
	if err != nil {
		log.Fatalf("Failed to open CSV: %v", err)
	}
	emails, err := readEmails(f, *column)
	f.Close()
	if err != nil {
		log.Fatalf("Failed to read CSV: %v", err)
	}
	log.Printf("Read %d addresses from %s", len(emails), *csvFile)

	if *dryRun {
		for _, email := range emails {
			fmt.Println(email)
		}
		return
	}

	cfg, err := utils.LoadConfig("../.env", ".env")
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	app := pocketbase.NewWithConfig(pocketbase.Config{DefaultDataDir: *dataDir})
	if err := app.Bootstrap(); err != nil {
		log.Fatalf("Failed to bootstrap app: %v", err)
	}

	ctx := context.Background()
	st, err := store.Open(ctx, cfg.StoreURL, cfg.MongoDatabase, app)
	if err != nil {
		log.Fatalf("Failed to open store: %v", err)
	}
	defer st.Close(ctx)

	svc := signup.NewService(st, notify.NewSender(notify.SMTPFactory(cfg.SMTP), cfg.SMTP))
	result := importSubscribers(ctx, svc, emails, *sendMail)

	fmt.Println("\n=== Import Complete ===")
	fmt.Printf("Created: %d\n", result.Created)
	fmt.Printf("Skipped: %d\n", result.Skipped)
	if len(result.Errors) > 0 {
		fmt.Printf("Errors: %d\n", len(result.Errors))
		for _, e := range result.Errors {
			fmt.Printf("  - %s\n", e)
		}
		os.Exit(1)
	}
}

// importSubscribers runs every address through the subscription workflow.
// Addresses already subscribed are skipped.
func importSubscribers(ctx context.Context, svc Subscriber, emails []string, sendMail bool) Result {
	var result Result
	for _, email := range emails {
		var err error
		if sendMail {
			_, err = svc.Subscribe(ctx, email)
		} else {
			_, err = svc.SubscribeQuietly(ctx, email)
		}

		switch {
		case err == nil:
			result.Created++
		case errors.Is(err, signup.ErrAlreadySubscribed), errors.Is(err, signup.ErrEmailRequired):
			result.Skipped++
		default:
			result.Errors = append(result.Errors, fmt.Sprintf("%s: %v", email, err))
		}
	}
	return result
}
