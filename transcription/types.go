package transcription

// ProviderID names a transcription backend.
type ProviderID string

const (
	// ProviderAssemblyAI is the job-based backend.
	ProviderAssemblyAI ProviderID = "assemblyai"
	// ProviderDeepgram is the synchronous backend.
	ProviderDeepgram ProviderID = "deepgram"
)

// String returns the provider name.
func (id ProviderID) String() string { return string(id) }

// Request holds one recorded audio artifact to transcribe.
type Request struct {
	// Audio is the complete encoded recording.
	Audio []byte
	// ContentType identifies the audio encoding, e.g. "audio/webm".
	ContentType string
	// Language is an optional language hint; empty enables auto-detection.
	Language string
}

// Response holds the result of a transcription call.
type Response struct {
	// Text is the full transcript.
	Text string `json:"text"`
	// Language is the detected or requested language, if reported.
	Language string `json:"language,omitempty"`
	// JobID is set by job-based providers.
	JobID string `json:"job_id,omitempty"`
	// Provider is the backend that produced the transcript.
	Provider ProviderID `json:"provider"`
}
