package constants

import "time"

const (
	AppName            = "morrow"
	Version            = "v0.3.0"
	DefaultKeyringUser = "database-connection"
	APIKeyKeyringUser  = "llm-api-key"

	// Environment overrides
	EnvLLMAPIKey    = "MORROW_LLM_API_KEY"
	EnvDBConnection = "MORROW_DB_CONNECTION"

	// DateFormat is the standard date format used throughout the application (YYYY-MM-DD)
	DateFormat = "2006-01-02"

	// TimeFormat is the standard time format used throughout the application (HH:MM)
	TimeFormat = "15:04"

	MinutesPerDay = 24 * 60

	// KeyringDatabase as storage.database reads the connection string from the keyring
	KeyringDatabase = "keyring"

	// Task list defaults
	DefaultSourceList = "Tomorrow Tasks"
	DefaultOutputList = "Morrow Schedule"
	DefaultTimezone   = "Asia/Shanghai"
	DefaultDaemonCron = "0 21 * * *"

	// LLM defaults
	DefaultLLMBaseURL        = "https://api.openai.com/v1"
	DefaultLLMModel          = "gpt-4o"
	DefaultRequestsPerMinute = 20
	DefaultLLMTimeout        = 60 * time.Second
	AnthropicVersion         = "2023-06-01"

	// Output encoding
	ScheduleTitlePrefix = "🕒"

	// Config reload debounce for the daemon
	ConfigReloadDebounce = 500 * time.Millisecond
)
