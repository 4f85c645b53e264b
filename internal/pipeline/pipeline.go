// Package pipeline turns the raw task collection into one displayable page:
// search, quick filters, tab filter, sort, tree flattening and pagination.
// Run is a pure function of its inputs.
package pipeline

import (
	"slices"
	"strings"
	"time"

	"taskManager/internal/models/task"

	"golang.org/x/text/collate"
)

func Run(tasks []task.Task, q Query, now time.Time, p Policy) Page {
	q = q.normalized(p)

	rows := search(tasks, q.Search)
	rows = quickFilter(rows, q, now)
	rows = tabFilter(rows, q, now, p)
	sortRows(rows, q.Sort, p)
	rows = flatten(rows)
	return paginate(rows, q.Page, q.PageSize)
}

// search keeps matching tasks plus their ancestor chains.
func search(tasks []task.Task, text string) []Row {
	rows := make([]Row, 0, len(tasks))
	if text == "" {
		for _, t := range tasks {
			rows = append(rows, Row{Task: t})
		}
		return rows
	}

	byID := make(map[string]task.Task, len(tasks))
	for _, t := range tasks {
		byID[t.ID] = t
	}

	needle := strings.ToLower(text)
	matched := map[string]bool{}
	keep := map[string]bool{}
	for _, t := range tasks {
		if !matches(t, needle) {
			continue
		}
		matched[t.ID] = true
		keep[t.ID] = true
		seen := map[string]bool{t.ID: true}
		for pid := t.ParentID; pid != "" && !seen[pid]; {
			parent, ok := byID[pid]
			if !ok {
				break
			}
			seen[pid] = true
			keep[pid] = true
			pid = parent.ParentID
		}
	}

	for _, t := range tasks {
		if keep[t.ID] {
			rows = append(rows, Row{Task: t, Context: !matched[t.ID]})
		}
	}
	return rows
}

func matches(t task.Task, needle string) bool {
	if strings.Contains(strings.ToLower(t.Title), needle) ||
		strings.Contains(strings.ToLower(t.Description), needle) {
		return true
	}
	return slices.ContainsFunc(t.Tags, func(tag string) bool {
		return strings.Contains(strings.ToLower(tag), needle)
	})
}

// quickFilter applies the time and priority buckets. Completed tasks never pass an active bucket.
func quickFilter(rows []Row, q Query, now time.Time) []Row {
	if q.Time == TimeAny && q.Priority == "" {
		return rows
	}
	return slices.DeleteFunc(rows, func(r Row) bool {
		t := r.Task
		if t.Completed {
			return true
		}
		if q.Priority != "" && t.Priority != q.Priority {
			return true
		}
		return q.Time != TimeAny && !inBucket(t.DueDate, q.Time, now)
	})
}

func inBucket(due *time.Time, bucket TimeBucket, now time.Time) bool {
	if due == nil {
		return false
	}
	start := startOfDay(now)
	switch bucket {
	case TimeOverdue:
		return due.Before(now)
	case TimeToday:
		return !due.Before(start) && due.Before(start.AddDate(0, 0, 1))
	case TimeThisWeek:
		return !due.Before(start) && due.Before(start.AddDate(0, 0, 7))
	default:
		return true
	}
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

func tabFilter(rows []Row, q Query, now time.Time, p Policy) []Row {
	horizon := now.Add(p.RecurringHorizon)
	withinHorizon := func(t task.Task) bool {
		return !t.Repeat || t.DueDate == nil || !t.DueDate.After(horizon)
	}

	if q.Search != "" {
		if q.Tab == TabCompleted {
			return rows
		}
		return slices.DeleteFunc(rows, func(r Row) bool { return r.Task.Completed })
	}

	return slices.DeleteFunc(rows, func(r Row) bool {
		t := r.Task
		switch q.Tab {
		case TabCompleted:
			return !t.Completed
		case TabRecurring:
			return t.Completed || !t.Repeat
		case TabAll:
			return t.Completed || !withinHorizon(t)
		default:
			return t.Category != task.Category(q.Tab) || t.Completed || !withinHorizon(t)
		}
	})
}

// sortRows puts completed tasks last, then orders each partition by key. Ties keep input order.
func sortRows(rows []Row, key SortKey, p Policy) {
	var byKey func(a, b task.Task) int
	switch key {
	case SortPriority:
		byKey = func(a, b task.Task) int { return a.Priority.Rank() - b.Priority.Rank() }
	case SortDueDate:
		byKey = compareDue
	case SortTitle:
		c := collate.New(p.Locale)
		byKey = func(a, b task.Task) int { return c.CompareString(a.Title, b.Title) }
	default:
		byKey = func(a, b task.Task) int {
			switch {
			case a.Order < b.Order:
				return -1
			case a.Order > b.Order:
				return 1
			}
			return 0
		}
	}

	slices.SortStableFunc(rows, func(a, b Row) int {
		if a.Task.Completed != b.Task.Completed {
			if a.Task.Completed {
				return 1
			}
			return -1
		}
		return byKey(a.Task, b.Task)
	})
}

func compareDue(a, b task.Task) int {
	switch {
	case a.DueDate == nil && b.DueDate == nil:
		return 0
	case a.DueDate == nil:
		return 1
	case b.DueDate == nil:
		return -1
	}
	return a.DueDate.Compare(*b.DueDate)
}

// flatten nests rows under parents that survived filtering and emits them
// depth first. Rows caught in a parent cycle are emitted as top-level.
func flatten(rows []Row) []Row {
	present := make(map[string]bool, len(rows))
	for _, r := range rows {
		present[r.Task.ID] = true
	}

	children := make(map[string][]int, len(rows))
	var roots []int
	for i, r := range rows {
		pid := r.Task.ParentID
		if pid == "" || pid == r.Task.ID || !present[pid] {
			roots = append(roots, i)
			continue
		}
		children[pid] = append(children[pid], i)
	}

	out := make([]Row, 0, len(rows))
	visited := make([]bool, len(rows))
	var dfs func(i, depth int)
	dfs = func(i, depth int) {
		if visited[i] {
			return
		}
		visited[i] = true
		r := rows[i]
		r.Depth = depth
		out = append(out, r)
		for _, c := range children[r.Task.ID] {
			dfs(c, depth+1)
		}
	}

	for _, i := range roots {
		dfs(i, 0)
	}
	for i := range rows {
		dfs(i, 0)
	}
	return out
}

func paginate(rows []Row, page, size int) Page {
	total := len(rows)
	res := Page{
		Page:       page,
		PageSize:   size,
		Total:      total,
		TotalPages: (total + size - 1) / size,
		Rows:       []Row{},
	}

	start := (page - 1) * size
	if start >= total {
		return res
	}
	end := min(start+size, total)
	res.Rows = rows[start:end]
	return res
}
