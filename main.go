package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	api "planora-backend/cmd/api"
	financeRepo "planora-backend/internal/finance/repository"
	financeUsecase "planora-backend/internal/finance/usecase"
	noteRepo "planora-backend/internal/note/repository"
	noteUsecase "planora-backend/internal/note/usecase"
	"planora-backend/internal/notification"
	taskRepo "planora-backend/internal/task/repository"
	taskUsecase "planora-backend/internal/task/usecase"
	"planora-backend/pkg/config"
	"planora-backend/pkg/database"
	"planora-backend/pkg/events"
	"planora-backend/pkg/logger"

	"github.com/spf13/cobra"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "planora",
		Short: "Personal productivity backend: tasks, notes and finance",
	}

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(seedCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func buildRepositories(cfg *config.Config) (taskRepo.TaskRepository, noteRepo.NoteRepository, financeRepo.FinanceRepository, error) {
	if cfg.StorageDriver == "sqlite" {
		db, err := database.NewSQLiteConnection(cfg.SQLitePath)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("connect sqlite: %w", err)
		}
		tr, err := taskRepo.NewGormTaskRepository(db)
		if err != nil {
			return nil, nil, nil, err
		}
		nr, err := noteRepo.NewGormNoteRepository(db)
		if err != nil {
			return nil, nil, nil, err
		}
		fr, err := financeRepo.NewGormFinanceRepository(db)
		if err != nil {
			return nil, nil, nil, err
		}
		return tr, nr, fr, nil
	}

	tr, err := taskRepo.NewFileTaskRepository(cfg.DataDir)
	if err != nil {
		return nil, nil, nil, err
	}
	nr, err := noteRepo.NewFileNoteRepository(cfg.DataDir)
	if err != nil {
		return nil, nil, nil, err
	}
	fr, err := financeRepo.NewFileFinanceRepository(cfg.DataDir)
	if err != nil {
		return nil, nil, nil, err
	}
	return tr, nr, fr, nil
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Load()
			logger.Init(cfg.LogLevel)
			log := logger.Component("main")

			tr, nr, fr, err := buildRepositories(cfg)
			if err != nil {
				return err
			}

			bus := events.NewBus()
			scheduler := notification.NewScheduler(notification.NewLogSender(), cfg.ReminderTick)

			taskUc, err := taskUsecase.NewTaskUsecase(tr, scheduler, bus, cfg.SnoozeOffset)
			if err != nil {
				return fmt.Errorf("init tasks: %w", err)
			}
			noteUc, err := noteUsecase.NewNoteUsecase(nr, bus, cfg.NoteDebounce)
			if err != nil {
				return fmt.Errorf("init notes: %w", err)
			}
			financeUc, err := financeUsecase.NewFinanceUsecase(fr, scheduler, bus)
			if err != nil {
				return fmt.Errorf("init finance: %w", err)
			}

			// Reminder action buttons route back into the task collection.
			scheduler.OnAction(taskUc.HandleNotificationAction)
			scheduler.Start()

			handler := api.NewHandler(taskUc, noteUc, financeUc, scheduler, cfg)

			errCh := make(chan error, 1)
			go func() {
				log.Infof("server starting on port %s (storage: %s)", cfg.Port, cfg.StorageDriver)
				errCh <- handler.Start(":" + cfg.Port)
			}()

			sigCh := make(chan os.Signal, 1)
			signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

			select {
			case err := <-errCh:
				return err
			case sig := <-sigCh:
				log.Infof("received %s, shutting down", sig)
			}

			scheduler.Stop()
			// Close flushes any pending debounced note write.
			if err := noteUc.Close(); err != nil {
				log.WithError(err).Error("notes close")
			}
			if err := taskUc.Close(); err != nil {
				log.WithError(err).Error("tasks close")
			}
			if err := financeUc.Close(); err != nil {
				log.WithError(err).Error("finance close")
			}
			return nil
		},
	}
}

func seedCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Initialize the data directory with sample collections",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Load()
			logger.Init(cfg.LogLevel)

			tr, nr, fr, err := buildRepositories(cfg)
			if err != nil {
				return err
			}

			bus := events.NewBus()
			scheduler := notification.NewScheduler(notification.NewLogSender(), cfg.ReminderTick)

			// First construction against empty storage writes the samples.
			taskUc, err := taskUsecase.NewTaskUsecase(tr, scheduler, bus, cfg.SnoozeOffset)
			if err != nil {
				return fmt.Errorf("seed tasks: %w", err)
			}
			noteUc, err := noteUsecase.NewNoteUsecase(nr, bus, cfg.NoteDebounce)
			if err != nil {
				return fmt.Errorf("seed notes: %w", err)
			}
			financeUc, err := financeUsecase.NewFinanceUsecase(fr, scheduler, bus)
			if err != nil {
				return fmt.Errorf("seed finance: %w", err)
			}

			if err := noteUc.Close(); err != nil {
				return err
			}
			if err := taskUc.Close(); err != nil {
				return err
			}
			if err := financeUc.Close(); err != nil {
				return err
			}

			fmt.Printf("Seeded data in %s (storage: %s)\n", cfg.DataDir, cfg.StorageDriver)
			return nil
		},
	}
}
