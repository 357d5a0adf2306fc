package config

func Default() *Config {
	return &Config{
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
		Training: TrainingConfig{
			Rate:        0.3,
			Momentum:    0.1,
			BatchSize:   0,
			LogInterval: 100,
			Loop:        true,
			Logging:     true,
		},
		Dataset: DatasetConfig{
			Workers: 0,
			Lenient: false,
		},
		History: HistoryConfig{
			Enabled: false,
			Path:    "2b2q.db",
		},
		Server: ServerConfig{
			Enabled: false,
			Addr:    "127.0.0.1:8311",
		},
		Dashboard: DashboardConfig{
			RefreshMS: 500,
		},
	}
}
