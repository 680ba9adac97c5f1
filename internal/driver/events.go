package driver

import "time"

// Stage describes the step a template is in.
type Stage string

const (
	// StageLoad reads the template from disk.
	StageLoad Stage = "load"
	// StageCache looks the token stream up in the disk cache.
	StageCache Stage = "cache"
	// StageTokenize runs the sub-parser chain.
	StageTokenize Stage = "tokenize"
)

// Status captures progress state within a stage.
type Status string

const (
	StatusQueued  Status = "queued"
	StatusWorking Status = "working"
	StatusDone    Status = "done"
	StatusError   Status = "error"
)

// Event reports progress for a template (or for the whole run when File is empty).
type Event struct {
	File    string
	Stage   Stage
	Status  Status
	Err     error
	Elapsed time.Duration
	Tokens  int  // set on StatusDone
	Cached  bool // the stream came from the disk cache
}

// ProgressSink consumes progress events. Directory runs call OnEvent from
// several goroutines.
type ProgressSink interface {
	OnEvent(Event)
}

// ProgressFunc adapts a function to ProgressSink.
type ProgressFunc func(Event)

func (f ProgressFunc) OnEvent(ev Event) { f(ev) }

func emit(sink ProgressSink, ev Event) {
	if sink != nil {
		sink.OnEvent(ev)
	}
}

// ChannelSink forwards events into a channel.
type ChannelSink struct {
	Ch chan<- Event
}

func (s ChannelSink) OnEvent(evt Event) {
	if s.Ch == nil {
		return
	}
	s.Ch <- evt
}
