package results

import "time"

// Attempt is one scored evaluation event. It is created by the attempt
// runner at the moment an output is validated and is immutable thereafter.
// FailureMode is empty iff Passed.
type Attempt struct {
	TaskID      string    `json:"task_id"`
	Attempt     int       `json:"attempt"`
	Output      string    `json:"output"`
	Passed      bool      `json:"passed"`
	FailureMode string    `json:"failure_mode,omitempty"`
	Timestamp   time.Time `json:"timestamp"`
}

// Recorder persists attempt records. Implementations must append each
// record durably before returning and must never rewrite or reorder rows
// already written.
type Recorder interface {
	Record(a Attempt) error
	Close() error
}

// multiRecorder fans one attempt stream out to several recorders.
type multiRecorder []Recorder

// MultiRecorder returns a Recorder that writes every attempt to each of the
// given recorders in order.
func MultiRecorder(recorders ...Recorder) Recorder {
	return multiRecorder(recorders)
}

func (m multiRecorder) Record(a Attempt) error {
	for _, r := range m {
		if err := r.Record(a); err != nil {
			return err
		}
	}
	return nil
}

func (m multiRecorder) Close() error {
	var first error
	for _, r := range m {
		if err := r.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}
