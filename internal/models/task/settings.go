package task

// SettingsKey is the fixed id of the single settings record.
const SettingsKey = "app-settings"

type Settings struct {
	ID                   string   `json:"id"`
	DefaultCategory      Category `json:"defaultCategory"`
	DefaultPriority      Priority `json:"defaultPriority"`
	DefaultReminderHours int      `json:"defaultReminderHours"`
	PinEnabled           bool     `json:"pinEnabled"`
	Pin                  string   `json:"pin,omitempty"`
	Theme                string   `json:"theme"`
}

func DefaultSettings() Settings {
	return Settings{
		ID:              SettingsKey,
		DefaultCategory: CategoryPersonal,
		DefaultPriority: PriorityMedium,
		Theme:           "light",
	}
}
