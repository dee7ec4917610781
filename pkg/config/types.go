// pkg/config/types.go
package config

import "time"

// Config is the root configuration structure for eventbench.
type Config struct {
	Log   LogConfig   `description:"Logging configuration" koanf:"log"`
	Bench BenchConfig `description:"Benchmark workload" koanf:"bench"`
	Loop  LoopConfig  `description:"Frame loop" koanf:"loop"`
}

// LogConfig holds logging related configuration.
type LogConfig struct {
	Level   string `description:"Log level" koanf:"level" validate:"oneof=trace debug info warn error fatal panic disabled"`
	Format  string `description:"Log format: json | text" koanf:"format" validate:"oneof=json text"`
	NoColor bool   `description:"Disable colored console logs" koanf:"no_color"`
}

// BenchConfig describes the synthetic listener workload.
type BenchConfig struct {
	Listeners      int     `description:"Listeners subscribed across all event types" koanf:"listeners" validate:"min=1,max=1000000"`
	EventsPerFrame int     `description:"Events dispatched and queued per frame" koanf:"events_per_frame" validate:"min=0,max=1000000"`
	OnceRatio      float64 `description:"Share of one-shot listeners (0..1)" koanf:"once_ratio" validate:"gte=0,lte=1"`
	MinPriority    int32   `description:"Lowest listener priority" koanf:"min_priority"`
	MaxPriority    int32   `description:"Highest listener priority" koanf:"max_priority" validate:"gtefield=MinPriority"`
	Seed           uint64  `description:"Seed for the workload generator" koanf:"seed"`
}

// LoopConfig holds frame loop settings.
type LoopConfig struct {
	Frames   uint64        `description:"Frames to run" koanf:"frames" validate:"min=1"`
	Interval time.Duration `description:"Delay between frames (0 runs back to back)" koanf:"interval" validate:"min=0"`
}
