package app

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"taskManager/internal/config"
	"taskManager/internal/handlers"
	"taskManager/internal/logger"
	"taskManager/internal/middleware"
	"taskManager/internal/pipeline"
	"taskManager/internal/repository"
	"taskManager/internal/repository/file"
	"taskManager/internal/repository/inmemory"
	"taskManager/internal/repository/postgres"
	"taskManager/internal/repository/sqlite"
	"taskManager/internal/service"
	"taskManager/internal/worker"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/text/language"
)

type App struct {
	config     *config.Config
	server     *http.Server
	listener   net.Listener
	router     *chi.Mux
	repository repository.Repository
	service    *service.TaskService
	persister  *worker.Persister
	shutdowns  []func() error // выполняются в обратном порядке
}

func New(cfg *config.Config) *App {
	return &App{
		config:    cfg,
		shutdowns: make([]func() error, 0),
	}
}

func (a *App) Init(ctx context.Context) error {
	if err := logger.Init(a.config.Logging.Development); err != nil {
		return fmt.Errorf("инициализация логгера: %w", err)
	}
	a.shutdowns = append(a.shutdowns, func() error {
		logger.Info("Завершение работы логгирования...")
		logger.Sync()
		return nil
	})

	repo, err := openRepository(ctx, a.config)
	if err != nil {
		return multierr.Append(fmt.Errorf("инициализация хранилища: %w", err), a.close())
	}
	a.repository = repo
	a.shutdowns = append(a.shutdowns, func() error {
		logger.Info("Закрытие хранилища...")
		return repo.Close()
	})

	a.service = service.NewTaskService(repo,
		service.WithPolicy(policyFrom(a.config.Engine)),
		service.WithDuplicateThreshold(a.config.Engine.DuplicateThreshold),
		service.WithHistoryLimit(a.config.Engine.HistoryLimit),
	)
	if err := a.service.Load(ctx); err != nil {
		return multierr.Append(fmt.Errorf("загрузка состояния: %w", err), a.close())
	}

	debounce := a.config.Engine.PersistDebounce
	a.persister = worker.NewPersister(repo, a.service, &debounce)
	a.service.SetPersister(a.persister)

	handler := handlers.NewTaskHandler(a.service)
	a.router = handlers.NewRouter(handler,
		chimw.Recoverer,
		middleware.RequestID,
		middleware.Logging,
		middleware.LocalOnly,
	)

	a.listener, err = net.Listen("tcp", a.config.GetServerAddr())
	if err != nil {
		return multierr.Append(fmt.Errorf("открытие адреса %s: %w", a.config.GetServerAddr(), err), a.close())
	}
	a.server = &http.Server{
		Handler:           a.router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	logger.Info("Приложение инициализировано",
		zap.String("repository", a.config.Repository.Type),
		zap.String("addr", a.listener.Addr().String()))
	return nil
}

// Addr - фактический адрес сервера (полезно при порте 0)
func (a *App) Addr() string {
	if a.listener == nil {
		return ""
	}
	return a.listener.Addr().String()
}

// Run обслуживает запросы до отмены ctx, затем останавливает сервер,
// дописывает незаписанные изменения и закрывает хранилище
func (a *App) Run(ctx context.Context) error {
	g, gctx := errgroup.WithContext(ctx)

	persistCtx, stopPersist := context.WithCancel(context.Background())
	defer stopPersist()

	g.Go(func() error {
		a.persister.Start(persistCtx)
		return nil
	})

	g.Go(func() error {
		logger.Info("HTTP: Сервер запущен", zap.String("addr", a.Addr()))
		if err := a.server.Serve(a.listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("HTTP сервер: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("Остановка приложения...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), a.config.Server.ShutdownTimeout)
		defer cancel()

		err := a.server.Shutdown(shutdownCtx)
		stopPersist()
		if a.persister.Dirty() {
			err = multierr.Append(err, a.persister.Flush(shutdownCtx))
		}
		return err
	})

	err := g.Wait()
	return multierr.Append(err, a.close())
}

func (a *App) close() error {
	var err error
	for i := len(a.shutdowns) - 1; i >= 0; i-- {
		err = multierr.Append(err, a.shutdowns[i]())
	}
	a.shutdowns = nil
	return err
}

func openRepository(ctx context.Context, cfg *config.Config) (repository.Repository, error) {
	switch cfg.Repository.Type {
	case "postgres":
		storage, err := postgres.New(ctx, cfg.Database)
		if err != nil {
			return nil, err
		}
		if err := storage.Migrate(ctx); err != nil {
			return nil, multierr.Append(err, storage.Close())
		}
		return storage, nil
	case "file":
		storage, err := file.New(cfg.Repository.FilePath)
		if err != nil {
			return nil, err
		}
		return storage, nil
	case "inmemory":
		return inmemory.New(), nil
	default:
		storage, err := sqlite.New(ctx, cfg.Repository.SQLitePath)
		if err != nil {
			return nil, err
		}
		return storage, nil
	}
}

func policyFrom(e config.EngineConfig) pipeline.Policy {
	policy := pipeline.DefaultPolicy()
	policy.RecurringHorizon = e.RecurringHorizon()
	policy.DefaultPageSize = e.DefaultPageSize
	if tag, err := language.Parse(e.TitleLocale); err == nil {
		policy.Locale = tag
	} else if e.TitleLocale != "" {
		logger.Warn("Неизвестная локаль сортировки, используется английская",
			zap.String("locale", e.TitleLocale))
	}
	return policy
}
