package main

import (
	"context"
	"log"
	"os"

	"lookbookapi/dbhelper"
	"lookbookapi/services"
	"lookbookapi/tasks"

	firebase "firebase.google.com/go/v4"
	"github.com/hibiken/asynq"
)

func NewStyleAlertTask() *asynq.Task {
	return asynq.NewTask("stylist:alert", []byte{})
}

func runScheduler() {

	scheduler := asynq.NewScheduler(asynq.RedisClientOpt{Addr: os.Getenv("ASYNC_BROKER_ADDRESS")}, &asynq.SchedulerOpts{

		LogLevel: asynq.InfoLevel,
	})

	// Schedule daily tasks with different cron expressions
	scheduled := []struct {
		cron string
		task *asynq.Task
		desc string
	}{
		{
			cron: "0 8 * * *", // 8:00 AM daily, before people get dressed
			task: NewStyleAlertTask(),
			desc: "Daily style alert notifications",
		},
	}

	for _, t := range scheduled {
		entryID, err := scheduler.Register(t.cron, t.task)
		if err != nil {
			log.Fatalf("Failed to register task '%s': %v", t.desc, err)
		}
		log.Printf("Registered task '%s' with ID: %s, cron: %s", t.desc, entryID, t.cron)
	}

	log.Println("Starting scheduler...")
	if err := scheduler.Run(); err != nil {
		log.Fatalf("Scheduler failed: %v", err)
	}
}

func main() {
	// Initialize asynq server
	srv := asynq.NewServer(
		asynq.RedisClientOpt{Addr: os.Getenv("ASYNC_BROKER_ADDRESS")},
		asynq.Config{Concurrency: 10, Queues: map[string]int{
			"generate": 7,
			"default":  1,
		}},
	)
	awsService := &services.AWSService{}
	stylist := &services.GoogleStylistLLM{}
	err := awsService.InitPresignClient(context.Background())
	if err != nil {
		log.Fatal("[Queue] Failed to initialize AWS provider: S3")
	}
	app, err := firebase.NewApp(context.Background(), nil)
	if err != nil {
		log.Fatalf("error initializing firebase app: %v\n", err)
		return
	}
	// Set up task handler
	mux := asynq.NewServeMux()
	db := dbhelper.SetupDB()
	mux.HandleFunc("stylist:extract_attributes", func(ctx context.Context, t *asynq.Task) error {
		return tasks.HandleAttributeExtractionTask(ctx, t, db, stylist, awsService, app)
	})
	mux.HandleFunc("stylist:suggest_outfits", func(ctx context.Context, t *asynq.Task) error {
		return tasks.HandleOutfitSuggestionTask(ctx, t, db, stylist, app)
	})
	mux.HandleFunc("stylist:generate_rules", func(ctx context.Context, t *asynq.Task) error {
		return tasks.HandlePreferenceRulesTask(ctx, t, db, stylist)
	})
	mux.HandleFunc("stylist:alert", func(ctx context.Context, t *asynq.Task) error {
		return tasks.ScheduledStyleAlertTask(ctx, t, db, app)
	})

	go runScheduler()
	// Run the worker
	if err := srv.Run(mux); err != nil {
		log.Fatal(err)
	}
}
