package cli

import (
	"errors"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/mrlokans/librarium/internal/auth"
	"github.com/mrlokans/librarium/internal/clock"
	"github.com/mrlokans/librarium/internal/database"
	"github.com/mrlokans/librarium/internal/database/books"
	"github.com/mrlokans/librarium/internal/database/goals"
	"github.com/mrlokans/librarium/internal/database/loans"
	"github.com/mrlokans/librarium/internal/database/sessions"
	"github.com/mrlokans/librarium/internal/database/shelf"
	"github.com/mrlokans/librarium/internal/entities"
)

const defaultDemoDatabasePath = "./demo/demo.db"

// SeedDemoCommand fills a fresh database with a small catalog, a shelf,
// reading sessions and loan history so the API has something to show.
type SeedDemoCommand struct {
	DatabasePath string
	Fresh        bool
}

func NewSeedDemoCommand() *SeedDemoCommand {
	return &SeedDemoCommand{}
}

func (cmd *SeedDemoCommand) ParseFlags(args []string) error {
	fs := flag.NewFlagSet("seed-demo", flag.ExitOnError)

	fs.StringVar(&cmd.DatabasePath, "db", defaultDemoDatabasePath, "Path to the database file to seed")
	fs.BoolVar(&cmd.Fresh, "fresh", true, "Remove an existing database file before seeding")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s seed-demo [options]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Seed a database with demo catalog, shelf and loan data.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		fs.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  %s seed-demo\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s seed-demo -db ./librarium.db -fresh=false\n", os.Args[0])
	}

	return fs.Parse(args)
}

func (cmd *SeedDemoCommand) Run() error {
	if cmd.Fresh {
		if err := os.Remove(cmd.DatabasePath); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("failed to remove existing database: %w", err)
		}
	}

	log.Printf("Seeding demo database at %s...", cmd.DatabasePath)

	db, err := database.NewDatabase(cmd.DatabasePath)
	if err != nil {
		return fmt.Errorf("failed to create database: %w", err)
	}
	defer db.Close()

	clk := clock.System{}
	booksRepo := books.NewRepository(db.DB)
	loansRepo := loans.NewRepository(db.DB, clk)
	shelfRepo := shelf.NewRepository(db.DB, clk)
	sessionsRepo := sessions.NewRepository(db.DB, shelfRepo, clk)
	goalsRepo := goals.NewRepository(db.DB)

	// The server resolves requests to the default account when auth is
	// disabled, so the demo data belongs to the same user.
	demoUser, err := db.EnsureDefaultUser(auth.DefaultUserID)
	if err != nil {
		return fmt.Errorf("failed to create demo user: %w", err)
	}
	demoUserID := demoUser.ID

	catalog := demoCatalog()
	for i := range catalog {
		// Re-seeding over an existing database keeps the earlier rows
		existing, err := booksRepo.GetBookByISBN(catalog[i].ISBN)
		if err == nil {
			catalog[i] = *existing
			log.Printf("Exists: %s by %s", catalog[i].Title, catalog[i].Author)
			continue
		}
		if !errors.Is(err, database.ErrNotFound) {
			return fmt.Errorf("failed to look up book %s: %w", catalog[i].Title, err)
		}
		if err := booksRepo.CreateBook(&catalog[i]); err != nil {
			log.Printf("Failed to save book %s: %v", catalog[i].Title, err)
			continue
		}
		log.Printf("Saved: %s by %s (%d copies)", catalog[i].Title, catalog[i].Author, catalog[i].TotalCopies)
	}
	if len(catalog) < 5 {
		return fmt.Errorf("not enough catalog books survived seeding")
	}

	// Shelf: one finished, one in progress, one queued
	finished, err := shelfRepo.AddOrUpdate(demoUserID, catalog[0].ID, entities.ReadingStatusFinished)
	if err != nil {
		return fmt.Errorf("failed to shelve %s: %w", catalog[0].Title, err)
	}
	rating := 5
	if _, err := shelfRepo.Patch(demoUserID, finished.ID, shelf.PatchRequest{Rating: &rating}); err != nil {
		log.Printf("Failed to rate %s: %v", catalog[0].Title, err)
	}

	reading, err := shelfRepo.AddOrUpdate(demoUserID, catalog[1].ID, entities.ReadingStatusReading)
	if err != nil {
		return fmt.Errorf("failed to shelve %s: %w", catalog[1].Title, err)
	}
	progress := 40
	if _, err := shelfRepo.Patch(demoUserID, reading.ID, shelf.PatchRequest{ProgressPercent: &progress}); err != nil {
		log.Printf("Failed to set progress on %s: %v", catalog[1].Title, err)
	}

	if _, err := shelfRepo.AddOrUpdate(demoUserID, catalog[2].ID, entities.ReadingStatusToRead); err != nil {
		return fmt.Errorf("failed to shelve %s: %w", catalog[2].Title, err)
	}

	// A week of sessions against the in-progress book
	today := clock.Today(clk)
	for day := 0; day < 7; day++ {
		date := today.AddDate(0, 0, -day)
		minutes := 20 + day*5
		pages := 10 + day*2
		if _, err := sessionsRepo.Record(demoUserID, catalog[1].ID, date, minutes, pages, ""); err != nil {
			log.Printf("Failed to record session on %s: %v", date.Format("2006-01-02"), err)
		}
	}

	if _, err := goalsRepo.Update(demoUserID, 3, 30); err != nil {
		log.Printf("Failed to set reading goal: %v", err)
	}

	// Loan history: one returned, one still out
	returned, err := loansRepo.Borrow(demoUserID, catalog[3].ID, today.AddDate(0, 0, 14))
	if err != nil {
		log.Printf("Failed to borrow %s: %v", catalog[3].Title, err)
	} else if _, err := loansRepo.Return(returned.ID); err != nil {
		log.Printf("Failed to return %s: %v", catalog[3].Title, err)
	}

	if _, err := loansRepo.Borrow(demoUserID, catalog[4].ID, today.AddDate(0, 0, 21)); err != nil {
		log.Printf("Failed to borrow %s: %v", catalog[4].Title, err)
	}

	log.Println("Demo database seeded successfully!")
	return nil
}

func demoCatalog() []entities.Book {
	return []entities.Book{
		{
			Title:       "Meditations",
			Author:      "Marcus Aurelius",
			ISBN:        "9780140449334",
			Description: "Private reflections of the Roman emperor on duty, mortality and self-discipline.",
			TotalCopies: 3,
		},
		{
			Title:       "Pride and Prejudice",
			Author:      "Jane Austen",
			ISBN:        "9780141439518",
			Description: "Elizabeth Bennet navigates manners, marriage and Mr Darcy in Regency England.",
			TotalCopies: 4,
		},
		{
			Title:       "On the Origin of Species",
			Author:      "Charles Darwin",
			ISBN:        "9780140439120",
			Description: "The foundational account of evolution by natural selection.",
			TotalCopies: 2,
		},
		{
			Title:       "Frankenstein",
			Author:      "Mary Shelley",
			ISBN:        "9780141439471",
			Description: "A scientist animates a creature and is consumed by the consequences.",
			TotalCopies: 2,
		},
		{
			Title:       "War and Peace",
			Author:      "Leo Tolstoy",
			ISBN:        "9780140447934",
			Description: "Five aristocratic families live through the Napoleonic invasion of Russia.",
			TotalCopies: 3,
		},
		{
			Title:       "Crime and Punishment",
			Author:      "Fyodor Dostoevsky",
			ISBN:        "9780140449136",
			Description: "An impoverished student commits a murder and unravels under his own conscience.",
			TotalCopies: 2,
		},
		{
			Title:       "The Picture of Dorian Gray",
			Author:      "Oscar Wilde",
			ISBN:        "9780141439570",
			Description: "A portrait ages while its subject does not.",
			TotalCopies: 1,
		},
		{
			Title:       "The Art of War",
			Author:      "Sun Tzu",
			ISBN:        "9781590302255",
			Description: "Classical Chinese treatise on strategy and conflict.",
			TotalCopies: 2,
		},
	}
}
