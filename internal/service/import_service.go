package service

import (
	"context"
	"fmt"
	"time"

	"taskManager/internal/importer"
	"taskManager/internal/logger"
	"taskManager/internal/models/task"

	"go.uber.org/zap"
)

// ImportOptions - параметры импорта. Match=nil выбирает поля по умолчанию,
// пустой не-nil срез отключает поиск дубликатов.
type ImportOptions struct {
	Format   importer.Format
	Match    []importer.Field
	Strategy importer.Strategy
	Confirm  bool
}

func (o ImportOptions) matchFields() []importer.Field {
	if o.Match == nil {
		return importer.DefaultMatch
	}
	return o.Match
}

type ImportResult struct {
	Strategy importer.Strategy `json:"strategy"`
	Plan     importer.Plan     `json:"plan"`
	Inserted []string          `json:"inserted"`
	Updated  []string          `json:"updated"`
	Replaced bool              `json:"replaced"`
}

// PreviewImport разбирает и классифицирует пакет, ничего не меняя
func (s *TaskService) PreviewImport(ctx context.Context, data []byte, opts ImportOptions) (importer.Plan, error) {
	start := time.Now()

	candidates, err := importer.Parse(data, opts.Format)
	if err != nil {
		logger.Warn("Service: Импорт не разобран", zap.Error(err))
		return importer.Plan{}, fromDomain(err)
	}

	s.mtx.Lock()
	existing := s.store.All()
	s.mtx.Unlock()

	plan := importer.Classify(candidates, existing, opts.matchFields(), s.threshold)
	logger.Info("Service: Предпросмотр импорта",
		zap.Int("new", plan.New),
		zap.Int("duplicates", plan.Duplicates),
		zap.Int("updated", plan.Updated),
		zap.Duration("ms", time.Since(start)))
	return plan, nil
}

// ApplyImport заново классифицирует пакет против текущей коллекции и применяет стратегию
// одной записью истории. При любой ошибке коллекция остаётся прежней.
func (s *TaskService) ApplyImport(ctx context.Context, data []byte, opts ImportOptions) (ImportResult, error) {
	start := time.Now()

	strategy := opts.Strategy
	if strategy == "" {
		strategy = importer.StrategyMerge
	}
	if strategy.Destructive() && !opts.Confirm {
		return ImportResult{}, NewConfirmationRequired("import_" + string(strategy))
	}

	candidates, err := importer.Parse(data, opts.Format)
	if err != nil {
		logger.Warn("Service: Импорт не разобран", zap.Error(err))
		return ImportResult{}, fromDomain(err)
	}

	s.mtx.Lock()
	defer s.mtx.Unlock()

	before := s.store.All()
	plan := importer.Classify(candidates, before, opts.matchFields(), s.threshold)
	actions := plan.Actions(strategy)
	s.fillDefaults(actions.Insert)

	result := ImportResult{Strategy: strategy, Plan: plan, Inserted: []string{}, Updated: []string{}}
	if !actions.Replace && len(actions.Insert) == 0 && len(actions.Updates) == 0 {
		logger.Info("Service: Импорт не содержит изменений")
		return result, nil
	}

	for _, u := range actions.Updates {
		if _, _, err := s.store.Update(u.ID, u.Patch); err != nil {
			s.store.Restore(before)
			logger.Warn("Service: Импорт отменён", zap.Error(err), zap.String("task_id", u.ID))
			return ImportResult{}, &BusinessError{
				Code:    CodeImportFailed,
				Message: "Импорт отменён: обновление задачи не прошло проверку",
				Details: map[string]any{"task_id": u.ID},
				Err:     err,
			}
		}
		result.Updated = append(result.Updated, u.ID)
	}

	if actions.Replace {
		result.Inserted = taskIDs(s.store.ReplaceAll(actions.Insert))
		result.Replaced = true
	} else {
		result.Inserted = taskIDs(s.store.AppendBatch(actions.Insert))
	}

	s.commit(fmt.Sprintf("Импорт (%s): добавлено %d, обновлено %d", strategy, len(result.Inserted), len(result.Updated)))
	logger.Info("Service: Импорт применён",
		zap.String("strategy", string(strategy)),
		zap.Int("inserted", len(result.Inserted)),
		zap.Int("updated", len(result.Updated)),
		zap.Duration("ms", time.Since(start)))
	return result, nil
}

// fillDefaults подставляет категорию и приоритет из настроек, как при создании задачи
func (s *TaskService) fillDefaults(tasks []task.Task) {
	for i := range tasks {
		if tasks[i].Category == "" {
			tasks[i].Category = s.settings.DefaultCategory
		}
		if tasks[i].Priority == "" {
			tasks[i].Priority = s.settings.DefaultPriority
		}
	}
}
