package retry

import (
	"time"

	"github.com/avast/retry-go/v4"
)

// PollConfig drives the ingestion-job status poll: how many times to check
// and how long to wait between checks.
type PollConfig struct {
	Attempts uint          `env:"ATTEMPTS" envDefault:"60"`
	Delay    time.Duration `env:"DELAY" envDefault:"5s"`
	MaxDelay time.Duration `env:"MAX_DELAY" envDefault:"30s"`
}

func (pc *PollConfig) ToRetryOptions() []retry.Option {
	return []retry.Option{
		retry.Attempts(pc.Attempts),
		retry.Delay(pc.Delay),
		retry.MaxDelay(pc.MaxDelay),
		retry.DelayType(retry.FixedDelay),
		retry.LastErrorOnly(true),
	}
}
