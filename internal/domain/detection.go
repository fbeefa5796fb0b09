package domain

// DetectionKind classifies how an utterance identifies its speaker.
type DetectionKind string

const (
	// DetectionAssertion is a first-person naming opener ("Soy Pablo", "My name is Ana").
	DetectionAssertion DetectionKind = "assertion"
	// DetectionReference is a name reminder elsewhere in the utterance ("aquí Juan otra vez").
	DetectionReference DetectionKind = "reference"
	// DetectionNone means the utterance carries no identification.
	DetectionNone DetectionKind = "none"
)

// Detection is the result of classifying a single utterance. It is transient:
// produced and consumed within one turn, never stored.
type Detection struct {
	Identified bool          `json:"identified"`
	Name       string        `json:"name,omitempty"`
	Kind       DetectionKind `json:"kind"`
}
