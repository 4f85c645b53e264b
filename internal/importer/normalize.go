package importer

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"taskManager/internal/models/task"
)

// aliases maps the field names seen in hand-written and third-party files
// onto canonical task fields. When a record carries several aliases of one
// field, the alias listed first wins.
var aliases = []struct{ name, field string }{
	{"id", "id"},
	{"ID", "id"},
	{"Id", "id"},
	{"title", "title"},
	{"Title", "title"},
	{"name", "title"},
	{"Name", "title"},
	{"task", "title"},
	{"Task", "title"},
	{"description", "description"},
	{"Description", "description"},
	{"desc", "description"},
	{"notes", "description"},
	{"Notes", "description"},
	{"category", "category"},
	{"Category", "category"},
	{"priority", "priority"},
	{"Priority", "priority"},
	{"dueDate", "dueDate"},
	{"due_date", "dueDate"},
	{"DueDate", "dueDate"},
	{"Due Date", "dueDate"},
	{"Due", "dueDate"},
	{"due", "dueDate"},
	{"deadline", "dueDate"},
	{"reminder", "reminder"},
	{"Reminder", "reminder"},
	{"remind_at", "reminder"},
	{"repeat", "repeat"},
	{"Repeat", "repeat"},
	{"recurring", "repeat"},
	{"Recurring", "repeat"},
	{"repeatFrequency", "repeatFrequency"},
	{"repeat_frequency", "repeatFrequency"},
	{"RepeatFrequency", "repeatFrequency"},
	{"Repeat Frequency", "repeatFrequency"},
	{"frequency", "repeatFrequency"},
	{"Frequency", "repeatFrequency"},
	{"tags", "tags"},
	{"Tags", "tags"},
	{"labels", "tags"},
	{"completed", "completed"},
	{"Completed", "completed"},
	{"done", "completed"},
	{"Done", "completed"},
	{"completedAt", "completedAt"},
	{"completed_at", "completedAt"},
	{"CompletedAt", "completedAt"},
	{"order", "order"},
	{"Order", "order"},
	{"parentId", "parentId"},
	{"parent_id", "parentId"},
	{"ParentID", "parentId"},
	{"Parent ID", "parentId"},
	{"previousInstanceId", "previousInstanceId"},
	{"previous_instance", "previousInstanceId"},
	{"PreviousInstanceID", "previousInstanceId"},
	{"collapsed", "collapsed"},
	{"children", "children"},
	{"subtasks", "children"},
}

type alias struct {
	field string
	rank  int
}

var synonyms = func() map[string]alias {
	m := make(map[string]alias, len(aliases))
	for i, a := range aliases {
		m[a.name] = alias{field: a.field, rank: i}
	}
	return m
}()

var dateLayouts = []string{
	"2006-01-02T15:04",
	"2006-01-02 15:04",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// normalizeAll flattens nested children into parent links and drops entries
// that are not objects or have no title.
func normalizeAll(records []any) []task.Task {
	var out []task.Task
	var walk func(list []any, parent string, path string)
	walk = func(list []any, parent string, path string) {
		for i, raw := range list {
			rec, ok := raw.(map[string]any)
			if !ok {
				continue
			}
			fields := canonical(rec)
			t, ok := normalize(fields)
			if !ok {
				continue
			}
			if parent != "" && t.ParentID == "" {
				t.ParentID = parent
			}
			children, _ := fields["children"].([]any)
			if len(children) > 0 && t.ID == "" {
				t.ID = fmt.Sprintf("import:%s%d", path, i)
			}
			out = append(out, t)
			if len(children) > 0 {
				walk(children, t.ID, fmt.Sprintf("%s%d.", path, i))
			}
		}
	}
	walk(records, "", "")
	return out
}

// canonical renames known keys. Among non-blank keys of one field the
// highest ranked alias wins, whatever the record's key order.
func canonical(rec map[string]any) map[string]any {
	fields := make(map[string]any, len(rec))
	ranks := make(map[string]int, len(rec))
	for k, v := range rec {
		a, ok := synonyms[strings.TrimSpace(k)]
		if !ok || isBlank(v) {
			continue
		}
		if r, taken := ranks[a.field]; taken && r <= a.rank {
			continue
		}
		fields[a.field] = v
		ranks[a.field] = a.rank
	}
	return fields
}

func normalize(f map[string]any) (task.Task, bool) {
	t := task.Task{
		ID:                 asString(f["id"]),
		Title:              strings.TrimSpace(asString(f["title"])),
		Description:        asString(f["description"]),
		Category:           task.NormalizeCategory(asString(f["category"])),
		DueDate:            asTime(f["dueDate"]),
		Reminder:           asTime(f["reminder"]),
		Tags:               asTags(f["tags"]),
		Completed:          asBool(f["completed"]),
		CompletedAt:        asTime(f["completedAt"]),
		Order:              asFloat(f["order"]),
		ParentID:           asString(f["parentId"]),
		PreviousInstanceID: asString(f["previousInstanceId"]),
		Collapsed:          asBool(f["collapsed"]),
	}
	if t.Title == "" {
		return task.Task{}, false
	}
	if p, ok := task.ParsePriority(asString(f["priority"])); ok {
		t.Priority = p
	}
	if freq, ok := task.ParseFrequency(asString(f["repeatFrequency"])); ok {
		t.RepeatFrequency = freq
		t.Repeat = asBool(f["repeat"]) || f["repeat"] == nil
	}
	if !t.Completed {
		t.CompletedAt = nil
	}
	return t, true
}

func isBlank(v any) bool {
	return v == nil || asString(v) == ""
}

func asString(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(x)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case int:
		return strconv.Itoa(x)
	case bool:
		return strconv.FormatBool(x)
	case time.Time:
		return x.Format(time.RFC3339)
	default:
		return strings.TrimSpace(fmt.Sprint(x))
	}
}

func asBool(v any) bool {
	switch x := v.(type) {
	case bool:
		return x
	case float64:
		return x != 0
	case int:
		return x != 0
	case string:
		switch strings.ToLower(strings.TrimSpace(x)) {
		case "yes", "y", "true", "1", "x":
			return true
		}
	}
	return false
}

func asFloat(v any) float64 {
	switch x := v.(type) {
	case float64:
		return x
	case int:
		return float64(x)
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(x), 64)
		if err == nil {
			return f
		}
	}
	return 0
}

// asTime reads RFC 3339 timestamps as-is and zone-less values as local time.
func asTime(v any) *time.Time {
	switch x := v.(type) {
	case time.Time:
		return &x
	case string:
		s := strings.TrimSpace(x)
		if s == "" {
			return nil
		}
		if t, err := time.Parse(time.RFC3339, s); err == nil {
			return &t
		}
		for _, layout := range dateLayouts {
			if t, err := time.ParseInLocation(layout, s, time.Local); err == nil {
				return &t
			}
		}
	}
	return nil
}

// asTags accepts a list or a comma separated string.
func asTags(v any) []string {
	var raw []string
	switch x := v.(type) {
	case []any:
		for _, item := range x {
			raw = append(raw, asString(item))
		}
	case []string:
		raw = x
	case string:
		raw = strings.Split(x, ",")
	}
	tags := []string{}
	for _, tag := range raw {
		if tag = strings.TrimSpace(tag); tag != "" {
			tags = append(tags, tag)
		}
	}
	return tags
}
