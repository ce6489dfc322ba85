// Package transcription defines the speech-to-text provider contract, the
// job model for asynchronous backends, and the bounded poller that drives
// those jobs to completion.
//
// # Backends
//
//   - transcription/assemblyai: upload, create a job, poll until done
//   - transcription/deepgram: one synchronous request
//
// # Usage
//
//	reg := transcription.NewRegistry()
//	assemblyai.Register(reg, cfg.AssemblyAI, log)
//	deepgram.Register(reg, cfg.Deepgram, log)
//	p, err := transcription.Resolve(reg, transcription.ProviderDeepgram)
//	resp, err := p.Transcribe(ctx, transcription.Request{Audio: data, ContentType: "audio/webm"})
package transcription
