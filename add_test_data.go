//go:build ignore
// +build ignore

// Helper script to seed a demo project into the configured database
// Run with: go run add_test_data.go

package main

import (
	"context"
	"log"

	"github.com/thenoetrevino/lanes/internal/app"
	"github.com/thenoetrevino/lanes/internal/config"
	"github.com/thenoetrevino/lanes/internal/models"
	projectservice "github.com/thenoetrevino/lanes/internal/services/project"
	ticketservice "github.com/thenoetrevino/lanes/internal/services/ticket"
)

func main() {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	a, err := app.Open(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer a.Close()

	project, err := a.ProjectService.CreateProject(ctx, projectservice.CreateProjectRequest{
		Name:        "Demo",
		Key:         "DEMO",
		Description: "Seeded by add_test_data.go",
	})
	if err != nil {
		log.Fatalf("Failed to create project: %v", err)
	}
	log.Printf("Created project %s", project.ID)

	seed := map[models.Status][]string{
		models.StatusTodo:       {"Fix auth bug", "Refactor UI", "Update deps"},
		models.StatusInProgress: {"Write migrations", "Board view"},
		models.StatusBlocked:    {"Wait on API keys"},
		models.StatusDone:       {"Set up repo"},
	}
	for status, titles := range seed {
		for _, title := range titles {
			ticket, err := a.TicketService.CreateTicket(ctx, ticketservice.CreateTicketRequest{
				ProjectID: project.ID,
				Title:     title,
				Status:    status,
			})
			if err != nil {
				log.Printf("Error creating ticket '%s': %v", title, err)
				continue
			}
			log.Printf("Created ticket: %s (%s @ %g)", ticket.Title, ticket.Status, ticket.Position)
		}
	}

	log.Println("Seeding complete. Try: lanes board --project " + project.ID)
}
