package config

import "time"

type Quota struct {
	DailyLimit int    `env:"QUOTA_DAILY_LIMIT" envDefault:"20"`
	Timezone   string `env:"QUOTA_TIMEZONE" envDefault:"Asia/Kolkata"`
}

type Discovery struct {
	Threshold        float64       `env:"DISCOVERY_THRESHOLD" envDefault:"50.0"`
	FanOutWidth      int           `env:"DISCOVERY_FAN_OUT_WIDTH" envDefault:"5"`
	CallTimeout      time.Duration `env:"DISCOVERY_CALL_TIMEOUT" envDefault:"30s"`
	ScheduleEnabled  bool          `env:"DISCOVERY_SCHEDULE_ENABLED" envDefault:"false"`
	ScheduleInterval time.Duration `env:"DISCOVERY_SCHEDULE_INTERVAL" envDefault:"1h"`
}

type Scanner struct {
	BaseURL  string        `env:"SCANNER_BASE_URL,notEmpty"`
	APIToken string        `env:"SCANNER_API_TOKEN" json:"-"`
	Timeout  time.Duration `env:"SCANNER_TIMEOUT" envDefault:"15s"`
	MaxDeals int           `env:"SCANNER_MAX_DEALS" envDefault:"50"`
}

type Estimator struct {
	SpecialistURL   string        `env:"ESTIMATOR_SPECIALIST_URL,notEmpty"`
	NeuralURL       string        `env:"ESTIMATOR_NEURAL_URL,notEmpty"`
	Timeout         time.Duration `env:"ESTIMATOR_TIMEOUT" envDefault:"20s"`
	PreprocessorURL string        `env:"ESTIMATOR_PREPROCESSOR_URL"`
}
