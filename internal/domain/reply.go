package domain

// Reply is the structured result of processing one turn. Persisted reports
// whether the turn's write-back reached the store; a false value lets the
// caller warn the user or retry, it never means committed messages were lost.
type Reply struct {
	Message             string `json:"message"`
	ActiveSpeaker       string `json:"active_speaker,omitempty"`
	NeedsIdentification bool   `json:"needs_identification"`
	Persisted           bool   `json:"persisted"`
}
