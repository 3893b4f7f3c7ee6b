// backend/cmd/seed/main.go
package main

import (
	"flag"
	"fmt"
	"log"
	"math/rand"
	"os"
	"time"

	"github.com/answerdesk/triage/backend/internal/config"
	"github.com/answerdesk/triage/backend/internal/database"
	"github.com/answerdesk/triage/backend/internal/models"
	"github.com/answerdesk/triage/backend/internal/repository"
	"github.com/answerdesk/triage/backend/pkg/utils"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

// FeedbackSeed is one sample feedback entry, optionally with an
// escalation routed from it.
type FeedbackSeed struct {
	Query       string
	Answer      string
	Sources     models.SourceList
	Rating      bool
	UserComment string
	Tag         string
	Escalation  *EscalationSeed
}

// EscalationSeed describes an escalation to open against a seeded
// feedback record.
type EscalationSeed struct {
	Team            string
	Priority        string
	Summary         string
	Details         string
	SuggestedAction string
	Resolved        bool
	ResolutionNotes string
}

var sampleFeedback = []FeedbackSeed{
	{
		Query:  "How do JavaScript closures work?",
		Answer: "JavaScript closures are functions that have access to variables in their outer lexical scope, even after the outer function has returned.",
		Sources: models.SourceList{
			{Title: "JavaScript: The Definitive Guide", URL: "https://learning.example.com/library/view/javascript-the-definitive/", Type: "book"},
			{Title: "You Don't Know JS: Scope & Closures", URL: "https://learning.example.com/library/view/you-dont-know/", Type: "book"},
		},
		Rating: true,
	},
	{
		Query:       "What's the difference between Docker and Kubernetes?",
		Answer:      "Docker is a containerization platform that packages applications, while Kubernetes is an orchestration system for managing containerized applications at scale.",
		Sources:     models.SourceList{{Title: "Docker: Up & Running", URL: "https://learning.example.com/library/view/docker-up/", Type: "book"}},
		Rating:      false,
		UserComment: "The answer is too simplistic and doesn't explain when to use each tool",
		Tag:         models.TagPoorUX,
	},
	{
		Query:       "How do I configure AWS S3 bucket policies?",
		Answer:      "Navigate to the S3 console, select your bucket, and click on the 'Permissions' tab. Then click 'Bucket Policy' and add your JSON policy document.",
		Sources:     models.SourceList{{Title: "Amazon Web Services in Action", URL: "https://learning.example.com/library/view/amazon-web-services/", Type: "book"}},
		Rating:      false,
		UserComment: "This answer describes the old AWS console UI. The new console has a completely different layout.",
		Tag:         models.TagOutdatedContent,
		Escalation: &EscalationSeed{
			Team:            models.TeamEditorial,
			Priority:        models.PriorityMedium,
			Summary:         "S3 console walkthrough is outdated",
			Details:         "Answer references the pre-2023 AWS console layout; users following it get lost.",
			SuggestedAction: "Re-index content from the current edition",
			Resolved:        true,
			ResolutionNotes: "Content source replaced with the updated edition",
		},
	},
	{
		Query:       "What is the CAP theorem in distributed systems?",
		Answer:      "The CAP theorem states that a distributed system can only guarantee two out of three properties: Consistency, Availability, and Partition tolerance. MongoDB provides eventual consistency.",
		Sources:     models.SourceList{{Title: "Designing Data-Intensive Applications", URL: "https://learning.example.com/library/view/designing-data-intensive-applications/", Type: "book"}},
		Rating:      false,
		UserComment: "The MongoDB example is wrong - it actually provides strong consistency in recent versions",
		Tag:         models.TagHallucination,
		Escalation: &EscalationSeed{
			Team:            models.TeamEngineering,
			Priority:        models.PriorityHigh,
			Summary:         "Model asserts wrong MongoDB consistency model",
			Details:         "The claim is not supported by the cited source and contradicts current MongoDB documentation.",
			SuggestedAction: "Add grounding check for database consistency claims",
		},
	},
	{
		Query:   "How does async/await work in Python?",
		Answer:  "The 'async' keyword defines a coroutine function, and 'await' is used to wait for async operations to complete.",
		Sources: models.SourceList{{Title: "Fluent Python", URL: "https://learning.example.com/library/view/fluent-python-2nd/", Type: "book"}},
		Rating:  true,
	},
	{
		Query:   "What are React hooks?",
		Answer:  "React hooks are functions that let you use state and other React features in functional components. The most common hooks are useState, useEffect, and useContext.",
		Sources: models.SourceList{{Title: "Learning React", URL: "https://learning.example.com/library/view/learning-react-2nd/", Type: "book"}},
		Rating:  true,
	},
	{
		Query:       "How do I optimize PostgreSQL queries?",
		Answer:      "Use EXPLAIN ANALYZE to see query plans, add appropriate indexes, and avoid SELECT *.",
		Sources:     models.SourceList{{Title: "High Performance PostgreSQL", URL: "https://learning.example.com/library/view/high-performance-postgresql/", Type: "book"}},
		Rating:      false,
		UserComment: "Missing critical info about query statistics and vacuum operations",
		Tag:         models.TagPoorUX,
	},
	{
		Query:   "What is Git rebase vs merge?",
		Answer:  "Git rebase moves your commits to a new base, creating a linear history. Git merge combines branches while preserving the branch structure.",
		Sources: models.SourceList{{Title: "Version Control with Git", URL: "https://learning.example.com/library/view/version-control-with/", Type: "book"}},
		Rating:  true,
	},
	{
		Query:       "How do I implement OAuth2 authentication?",
		Answer:      "OAuth2 uses authorization codes to grant access. First, redirect users to the provider's auth page, then exchange the code for an access token.",
		Sources:     models.SourceList{{Title: "OAuth 2 in Action", URL: "https://learning.example.com/library/view/oauth-2-in/", Type: "book"}},
		Rating:      false,
		UserComment: "Missing critical security considerations like PKCE and state parameters",
		Tag:         models.TagWrongContext,
		Escalation: &EscalationSeed{
			Team:            models.TeamEngineering,
			Priority:        models.PriorityCritical,
			Summary:         "OAuth2 answer omits mandatory security steps",
			Details:         "Recommending the code flow without PKCE is actively harmful advice for public clients.",
			SuggestedAction: "Boost security-chapter passages for auth queries",
			Resolved:        true,
			ResolutionNotes: "Retrieval now prefers the hardening chapter; spot-checked ten auth queries",
		},
	},
	{
		Query:   "What is the difference between REST and GraphQL?",
		Answer:  "REST uses fixed endpoints for each resource, while GraphQL allows clients to request exactly the data they need through a single endpoint.",
		Sources: models.SourceList{{Title: "Learning GraphQL", URL: "https://learning.example.com/library/view/learning-graphql/", Type: "book"}},
		Rating:  true,
	},
	{
		Query:   "How does Redis persistence work?",
		Answer:  "Redis offers two persistence options: RDB snapshots and AOF logs. You can use both together for maximum data safety.",
		Sources: models.SourceList{{Title: "Redis in Action", URL: "https://learning.example.com/library/view/redis-in-action/", Type: "book"}},
		Rating:  true,
	},
	{
		Query:       "How do I set up SSL certificates with Nginx?",
		Answer:      "Install certbot, run 'certbot --nginx' to automatically configure SSL for your Nginx server.",
		Sources:     models.SourceList{{Title: "Nginx Cookbook", URL: "https://learning.example.com/library/view/nginx-cookbook/", Type: "book"}},
		Rating:      false,
		UserComment: "Doesn't mention certificate renewal or troubleshooting common errors",
		Tag:         models.TagPoorUX,
	},
	{
		Query:   "What are TypeScript generics?",
		Answer:  "TypeScript generics allow you to create reusable components that work with multiple types while maintaining type safety.",
		Sources: models.SourceList{{Title: "Programming TypeScript", URL: "https://learning.example.com/library/view/programming-typescript/", Type: "book"}},
		Rating:  true,
	},
	{
		Query:       "How do I read a file line by line in Go?",
		Answer:      "Use ioutil.ReadFile to load the file and then split on newlines.",
		Sources:     models.SourceList{{Title: "The Go Programming Language", URL: "https://learning.example.com/library/view/the-go-programming/", Type: "book"}},
		Rating:      false,
		UserComment: "ioutil has been deprecated for years, and this loads the whole file into memory",
		Tag:         models.TagSourceMisinterpretation,
	},
	{
		Query:   "What is the difference between TCP and UDP?",
		Answer:  "TCP provides reliable, ordered delivery with error checking. UDP is faster but doesn't guarantee delivery or order.",
		Sources: models.SourceList{{Title: "Computer Networking: A Top-Down Approach", URL: "https://learning.example.com/library/view/computer-networking-a/", Type: "book"}},
		Rating:  true,
		Tag:     models.TagCorrectAnswer,
	},
}

// Command line flags
var (
	dryRun    = flag.Bool("dry-run", false, "Don't write anything, just print what would be inserted")
	verbose   = flag.Bool("verbose", false, "Enable verbose logging")
	clearData = flag.Bool("clear", false, "Delete existing feedback and escalations before seeding")
	count     = flag.Int("count", len(sampleFeedback), "Number of feedback records to insert (cycles the sample set)")
	days      = flag.Int("days", 90, "Spread created_at over the trailing N days")
)

func main() {
	flag.Parse()

	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Printf("No .env file found: %v", err)
	}

	// Initialize logger
	logger := utils.GetLogger()
	if *verbose {
		logger.SetLevel(logrus.DebugLevel)
	}

	logger.Info("Starting triage data seeder...")

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger.WithError(err).Fatal("Failed to load configuration")
	}

	var repoManager *repository.RepositoryManager

	if !*dryRun {
		dbConfig := &database.Config{
			DatabaseURL: cfg.Database.URL,
			RedisURL:    cfg.Redis.URL,
			LogLevel:    os.Getenv("LOG_LEVEL"),
		}

		dbManager, err := database.NewManager(dbConfig, logger)
		if err != nil {
			logger.WithError(err).Fatal("Failed to initialize database manager")
		}
		defer dbManager.Close()

		if err := dbManager.Migrate(); err != nil {
			logger.WithError(err).Fatal("Database migration failed")
		}

		repoManager = repository.NewRepositoryManager(dbManager.DB)

		if *clearData {
			logger.Warn("Clearing existing feedback and escalations")
			if err := dbManager.DB.Exec("DELETE FROM escalations").Error; err != nil {
				logger.WithError(err).Fatal("Failed to clear escalations")
			}
			if err := dbManager.DB.Exec("DELETE FROM feedback").Error; err != nil {
				logger.WithError(err).Fatal("Failed to clear feedback")
			}
		}
	}

	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	inserted := 0
	escalated := 0

	for i := 0; i < *count; i++ {
		seed := sampleFeedback[i%len(sampleFeedback)]
		createdAt := time.Now().UTC().Add(-time.Duration(rng.Float64()*float64(*days)*24) * time.Hour)

		if *dryRun {
			logger.WithFields(logrus.Fields{
				"query":      seed.Query,
				"rating":     seed.Rating,
				"created_at": createdAt.Format(time.RFC3339),
			}).Info("DRY RUN: Would insert feedback")
			continue
		}

		feedback := &models.Feedback{
			Query:     seed.Query,
			Answer:    seed.Answer,
			Sources:   seed.Sources,
			Rating:    seed.Rating,
			Status:    models.FeedbackStatusOpen,
			CreatedAt: createdAt,
		}
		if seed.UserComment != "" {
			comment := seed.UserComment
			feedback.UserComment = &comment
		}
		if seed.Tag != "" {
			tag := seed.Tag
			feedback.Tag = &tag
		}

		if err := repoManager.Feedback.Create(feedback); err != nil {
			logger.WithError(err).WithField("query", seed.Query).Error("Failed to insert feedback")
			continue
		}
		inserted++

		if seed.Escalation != nil {
			if err := seedEscalation(repoManager, feedback, seed.Escalation, rng); err != nil {
				logger.WithError(err).WithField("feedback_id", feedback.ID).Error("Failed to insert escalation")
				continue
			}
			escalated++
		}

		logger.WithField("feedback_id", feedback.ID).Debug("Feedback inserted")
	}

	logger.WithFields(logrus.Fields{
		"feedback":    inserted,
		"escalations": escalated,
	}).Info("Seeding completed")
}

func seedEscalation(repoManager *repository.RepositoryManager, feedback *models.Feedback, seed *EscalationSeed, rng *rand.Rand) error {
	// Escalations open shortly after the feedback arrives
	createdAt := feedback.CreatedAt.Add(time.Duration(rng.Intn(48)) * time.Hour)

	escalation := &models.Escalation{
		FeedbackID: feedback.ID,
		Team:       seed.Team,
		Priority:   seed.Priority,
		Summary:    seed.Summary,
		Status:     models.EscalationStatusOpen,
		CreatedAt:  createdAt,
	}
	if seed.Details != "" {
		details := seed.Details
		escalation.Details = &details
	}
	if seed.SuggestedAction != "" {
		action := seed.SuggestedAction
		escalation.SuggestedAction = &action
	}
	if seed.Resolved {
		resolvedAt := createdAt.Add(time.Duration(12+rng.Intn(96)) * time.Hour)
		escalation.Status = models.EscalationStatusClosed
		escalation.ResolvedAt = &resolvedAt
		if seed.ResolutionNotes != "" {
			notes := seed.ResolutionNotes
			escalation.ResolutionNotes = &notes
		}
	}

	if err := repoManager.Escalation.Create(escalation); err != nil {
		return err
	}

	sync := map[string]interface{}{"status": models.FeedbackStatusEscalated}
	if _, err := repoManager.Feedback.UpdateFields(feedback.ID, sync); err != nil {
		return fmt.Errorf("failed to mark feedback escalated: %w", err)
	}

	return nil
}
