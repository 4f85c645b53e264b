package pipeline

import (
	"strings"
	"time"

	"taskManager/internal/models/task"

	"golang.org/x/text/language"
)

type Tab string

const (
	TabAll       Tab = "all"
	TabCompleted Tab = "completed"
	TabRecurring Tab = "recurring"
)

// CategoryTab selects the tab that shows a single category.
func CategoryTab(c task.Category) Tab {
	return Tab(c)
}

type TimeBucket string

const (
	TimeAny      TimeBucket = ""
	TimeOverdue  TimeBucket = "overdue"
	TimeToday    TimeBucket = "today"
	TimeThisWeek TimeBucket = "week"
)

type SortKey string

const (
	SortOrder    SortKey = "order"
	SortPriority SortKey = "priority"
	SortDueDate  SortKey = "dueDate"
	SortTitle    SortKey = "title"
)

type Query struct {
	Search   string
	Tab      Tab
	Time     TimeBucket
	Priority task.Priority
	Sort     SortKey
	Page     int
	PageSize int
}

// Policy holds the tunables that are configuration rather than protocol.
type Policy struct {
	RecurringHorizon time.Duration
	DefaultPageSize  int
	Locale           language.Tag
}

func DefaultPolicy() Policy {
	return Policy{
		RecurringHorizon: 15 * 24 * time.Hour,
		DefaultPageSize:  10,
		Locale:           language.English,
	}
}

func (q Query) normalized(p Policy) Query {
	q.Search = strings.TrimSpace(q.Search)
	if q.Tab == "" {
		q.Tab = TabAll
	}
	if q.Sort == "" {
		q.Sort = SortOrder
	}
	if q.Page < 1 {
		q.Page = 1
	}
	if q.PageSize < 1 {
		q.PageSize = p.DefaultPageSize
	}
	if q.PageSize < 1 {
		q.PageSize = 10
	}
	return q
}

type Row struct {
	Task  task.Task `json:"task"`
	Depth int       `json:"depth"`
	// Context marks an ancestor kept visible only because a descendant matched the search.
	Context bool `json:"context,omitempty"`
}

type Page struct {
	Rows       []Row `json:"rows"`
	Page       int   `json:"page"`
	PageSize   int   `json:"pageSize"`
	Total      int   `json:"total"`
	TotalPages int   `json:"totalPages"`
}
