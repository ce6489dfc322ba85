package searchinput

import (
	"context"

	"github.com/kbukum/smartsearch/logger"
	"github.com/kbukum/smartsearch/observability"
	"github.com/kbukum/smartsearch/transcription"
	"github.com/kbukum/smartsearch/transcription/assemblyai"
	"github.com/kbukum/smartsearch/transcription/deepgram"
)

// BuildProviders registers both transcription providers from cfg. The
// job-based provider uses the shared polling bounds unless its own are set.
// Providers without a credential are registered anyway and refuse to record.
func BuildProviders(cfg Config, log *logger.Logger, metrics *observability.Metrics) (*transcription.Registry, error) {
	if log == nil {
		log = logger.GetGlobalLogger()
	}
	reg := transcription.NewRegistry()

	aCfg := cfg.Providers.AssemblyAI
	if aCfg.Poll == (transcription.PollConfig{}) {
		aCfg.Poll = cfg.Polling
	}
	hook := transcription.WithAttemptHook(func(int) {
		metrics.RecordPollAttempt(context.Background(), assemblyai.ProviderName)
	})
	if err := assemblyai.Register(reg, aCfg, log, assemblyai.WithPollerOptions(hook)); err != nil {
		return nil, err
	}
	if err := deepgram.Register(reg, cfg.Providers.Deepgram, log); err != nil {
		return nil, err
	}

	for _, name := range reg.List() {
		p, _ := reg.Get(name)
		if !p.HasCredential() {
			log.Warn("transcription provider has no credential; recording with it is disabled",
				logger.Fields(logger.FieldProvider, name))
		}
	}
	return reg, nil
}
