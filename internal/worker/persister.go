package worker

import (
	"context"
	"fmt"
	"maps"
	"slices"
	"sync"
	"time"

	"taskManager/internal/logger"
	"taskManager/internal/repository"

	"go.uber.org/multierr"
	"go.uber.org/zap"
)

// Source отдаёт полный снимок состояния для записи, по хранилищам
type Source interface {
	Snapshot() (map[string][]repository.Record, error)
}

// Persister зеркалирует состояние движка во внешнее хранилище. Частые изменения
// схлопываются в одну запись: таймер тишины перезапускается на каждое Notify.
// Записи никогда не идут параллельно.
type Persister struct {
	repo     repository.Repository
	source   Source
	debounce time.Duration
	kick     chan struct{}

	writeMtx sync.Mutex

	mtx     sync.Mutex
	dirty   bool
	lastErr error
	writes  int
}

func NewPersister(repo repository.Repository, source Source, debounce *time.Duration) *Persister {
	var debounceToSet time.Duration
	if debounce == nil {
		debounceToSet = 500 * time.Millisecond
	} else {
		debounceToSet = *debounce
	}
	return &Persister{
		repo:     repo,
		source:   source,
		debounce: debounceToSet,
		kick:     make(chan struct{}, 1),
	}
}

// Notify помечает состояние изменённым и не блокируется
func (p *Persister) Notify() {
	p.mtx.Lock()
	p.dirty = true
	p.mtx.Unlock()

	select {
	case p.kick <- struct{}{}:
	default:
	}
}

func (p *Persister) Start(ctx context.Context) {
	timer := time.NewTimer(p.debounce)
	if !timer.Stop() {
		<-timer.C
	}
	defer timer.Stop()

	for {
		select {
		case <-p.kick:
			timer.Reset(p.debounce)
		case <-timer.C:
			if err := p.Flush(ctx); err != nil {
				logger.Warn("Worker: Отложенная запись не удалась", zap.Error(err))
			}
		case <-ctx.Done():
			if p.Dirty() {
				logger.Warn("Worker: Остановка с незаписанными изменениями")
			}
			logger.Info("Worker: Фоновая запись останавливается")
			return
		}
	}
}

// Flush записывает текущий снимок немедленно и возвращает ошибку хранилища
func (p *Persister) Flush(ctx context.Context) error {
	p.writeMtx.Lock()
	defer p.writeMtx.Unlock()

	start := time.Now()

	p.mtx.Lock()
	p.dirty = false
	p.mtx.Unlock()

	snapshot, err := p.source.Snapshot()
	if err != nil {
		err = fmt.Errorf("снимок состояния: %w", err)
		p.finish(err)
		return err
	}

	var writeErr error
	records := 0
	for _, store := range slices.Sorted(maps.Keys(snapshot)) {
		recs := snapshot[store]
		records += len(recs)
		if err := repository.ReplaceAll(ctx, p.repo, store, recs); err != nil {
			writeErr = multierr.Append(writeErr, fmt.Errorf("хранилище %s: %w", store, err))
		}
	}
	p.finish(writeErr)

	if writeErr != nil {
		logger.Error("Worker: Ошибка записи состояния", writeErr, zap.Duration("ms", time.Since(start)))
		return writeErr
	}
	logger.Info("Worker: Состояние записано",
		zap.Int("records", records),
		zap.Duration("ms", time.Since(start)),
	)
	return nil
}

func (p *Persister) finish(err error) {
	p.mtx.Lock()
	defer p.mtx.Unlock()
	p.lastErr = err
	p.writes++
	if err != nil {
		p.dirty = true
	}
}

func (p *Persister) LastError() error {
	p.mtx.Lock()
	defer p.mtx.Unlock()
	return p.lastErr
}

func (p *Persister) Dirty() bool {
	p.mtx.Lock()
	defer p.mtx.Unlock()
	return p.dirty
}

// Writes - число завершённых попыток записи
func (p *Persister) Writes() int {
	p.mtx.Lock()
	defer p.mtx.Unlock()
	return p.writes
}
