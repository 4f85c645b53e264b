package service

import (
	"context"
)

// Persister получает уведомления об изменениях и умеет записать состояние немедленно
type Persister interface {
	Notify()
	Flush(ctx context.Context) error
}
