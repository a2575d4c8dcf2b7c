package cfg

type Cfg struct {
	// Telegram configuration
	BotToken     string
	TargetChatID string

	// Application configuration
	SourcesDir  string
	DBPath      string
	Port        string
	WorkerCount int

	// Admission configuration
	CheckChars  int
	HistorySize int
	WindowHours int
	StrictToday bool

	// Polling configuration
	PollInterval int
	Jitter       float64

	// Application metadata
	UserAgent string
	Timezone  string
	Debug     bool
	Version   string
}
