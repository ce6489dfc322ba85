package searchinput

import (
	"github.com/kbukum/smartsearch/errors"
	"github.com/kbukum/smartsearch/imagequery"
)

// EventType names a controller notification.
type EventType string

const (
	EventNotice    EventType = "notice"
	EventQuery     EventType = "query"
	EventCountdown EventType = "countdown"
	EventMode      EventType = "mode"
	EventSelection EventType = "selection"
	EventProvider  EventType = "provider"
)

// Event is a notification for the page.
type Event struct {
	Type EventType
	Data any
}

// Notifier receives controller events. Notify may be called from any
// goroutine and must not call back into the Controller.
type Notifier interface {
	Notify(Event)
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(Event)

// Notify calls f.
func (f NotifierFunc) Notify(e Event) { f(e) }

type nopNotifier struct{}

func (nopNotifier) Notify(Event) {}

// Notice reports a pipeline failure to the user.
type Notice struct {
	Pipeline string `json:"pipeline"`
	Code     string `json:"code"`
	Message  string `json:"message"`
}

func noticeFor(pipeline string, err error) Notice {
	n := Notice{Pipeline: pipeline, Code: string(errors.ErrCodeInternal), Message: err.Error()}
	if appErr, ok := errors.AsAppError(err); ok {
		n.Code = string(appErr.Code)
		n.Message = appErr.Message
	}
	return n
}

// QueryChanged carries the new query and what produced it.
type QueryChanged struct {
	Query  string `json:"query"`
	Source string `json:"source"`
}

// CountdownTick carries the seconds left in a recording.
type CountdownTick struct {
	RecordingID string `json:"recording_id"`
	Remaining   int    `json:"remaining"`
}

// ModeChanged carries the controller mode and its pipeline flags.
type ModeChanged struct {
	Mode         Mode `json:"mode"`
	Recording    bool `json:"recording"`
	Transcribing bool `json:"transcribing"`
	Uploading    bool `json:"uploading"`
}

// SelectionView is the page-facing form of an image selection.
type SelectionView struct {
	Name           string `json:"name"`
	ContentType    string `json:"content_type"`
	PreviewDataURL string `json:"preview_data_url"`
}

func selectionView(sel *imagequery.Selection) *SelectionView {
	if sel == nil {
		return nil
	}
	return &SelectionView{
		Name:           sel.File.Name,
		ContentType:    sel.File.ContentType,
		PreviewDataURL: sel.PreviewDataURL,
	}
}

// Query sources.
const (
	SourceTyped         = "typed"
	SourceTranscription = "transcription"
	SourceImage         = "image"
)
