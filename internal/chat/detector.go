package chat

import (
	"context"
	"log/slog"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/svaldes/parlante/internal/domain"
)

// Classifier is the model-backed fallback for utterances the deterministic
// patterns do not cover.
type Classifier interface {
	Classify(ctx context.Context, utterance string) (domain.Detection, error)
}

// Detector classifies one utterance as self-assertion, reference, or neither,
// extracting the candidate name when present. A deterministic pattern pass
// handles the unambiguous naming constructions; everything else is delegated
// to the classifier. Detection has no side effects.
type Detector struct {
	classifier Classifier
}

// NewDetector creates a detector. classifier may be nil, in which case only
// the pattern pass runs.
func NewDetector(classifier Classifier) *Detector {
	return &Detector{classifier: classifier}
}

// Naming constructions proper: "me llamo" / "my name is" admit no reading
// other than an introduction, so a hit settles detection outright.
var namingPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)^\s*(?:hola[,!.\s]+)?me llamo\s+(.+)$`),
	regexp.MustCompile(`(?i)^\s*(?:hi[,!.\s]+|hello[,!.\s]+)?my name is\s+(.+)$`),
}

// Reference: the speaker's name dropped mid-utterance as a reminder, flagged
// by an "again" marker.
var referencePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)(?:aquí|habla|soy)\s+(\p{L}+)\s+(?:otra vez|de nuevo)`),
	regexp.MustCompile(`(?i)(?:it'?s|this is)\s+(\p{L}+)\s+again\b`),
}

// Copular openers also introduce states and moods, not just names ("Soy
// alérgico al maní", "I am so tired"). A hit here is accepted only when the
// candidate reads like a bare name; anything else goes to the classifier.
var copularPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)^\s*(?:hola[,!.\s]+)?soy\s+(.+)$`),
	regexp.MustCompile(`(?i)^\s*(?:hi[,!.\s]+|hello[,!.\s]+)?i\s?am\s+(.+)$`),
	regexp.MustCompile(`(?i)^\s*(?:hi[,!.\s]+|hello[,!.\s]+)?i'm\s+(.+)$`),
}

// Detect classifies the utterance. Ambiguous copular sentences fall through
// to the classifier rather than being forced into an identification, and a
// failed classifier call fails open to no identification so the turn is never
// blocked on detection.
func (d *Detector) Detect(ctx context.Context, utterance string) domain.Detection {
	if det, ok := matchPatterns(utterance); ok {
		return det
	}
	if d.classifier == nil {
		return domain.Detection{Kind: domain.DetectionNone}
	}

	det, err := d.classifier.Classify(ctx, utterance)
	if err != nil {
		slog.Warn("speaker classification failed, proceeding unidentified", "error", err)
		return domain.Detection{Kind: domain.DetectionNone}
	}
	if det.Identified && strings.TrimSpace(det.Name) == "" {
		// An identification without a usable name cannot route anywhere.
		return domain.Detection{Kind: domain.DetectionNone}
	}
	if !det.Identified {
		det.Name = ""
		det.Kind = domain.DetectionNone
	}
	return det
}

// matchPatterns runs the deterministic pass. References are checked before
// the copular forms so "Soy Pablo otra vez" resolves by its "otra vez"
// marker, not by its opener.
func matchPatterns(utterance string) (domain.Detection, bool) {
	for _, re := range namingPatterns {
		if m := re.FindStringSubmatch(utterance); m != nil {
			if name := trimCandidate(m[1]); name != "" {
				return domain.Detection{Identified: true, Name: name, Kind: domain.DetectionAssertion}, true
			}
		}
	}
	for _, re := range referencePatterns {
		if m := re.FindStringSubmatch(utterance); m != nil {
			if name := trimCandidate(m[1]); name != "" {
				return domain.Detection{Identified: true, Name: name, Kind: domain.DetectionReference}, true
			}
		}
	}
	for _, re := range copularPatterns {
		if m := re.FindStringSubmatch(utterance); m != nil {
			if name := nameCandidate(m[1]); name != "" {
				return domain.Detection{Identified: true, Name: name, Kind: domain.DetectionAssertion}, true
			}
		}
	}
	return domain.Detection{}, false
}

// trimCandidate reduces a raw capture to the bare name: cut the first clause,
// keep the leading word so continuations fall away, strip surrounding
// punctuation.
func trimCandidate(raw string) string {
	s := strings.TrimSpace(raw)
	if i := strings.IndexAny(s, ",;.!?¡¿"); i >= 0 {
		s = s[:i]
	}
	fields := strings.Fields(s)
	if len(fields) == 0 {
		return ""
	}
	return strings.Trim(fields[0], ".,;:!?¡¿\"'")
}

// nameCandidate is the strict variant for copular captures: the first clause
// must be a single capitalized token to count as a name. "Pablo, ¿cómo
// estás?" qualifies; "alérgico al maní" and "so tired today" do not.
func nameCandidate(raw string) string {
	s := strings.TrimSpace(raw)
	if i := strings.IndexAny(s, ",;.!?¡¿"); i >= 0 {
		s = s[:i]
	}
	fields := strings.Fields(s)
	if len(fields) != 1 {
		return ""
	}
	name := strings.Trim(fields[0], ".,;:!?¡¿\"'")
	r, _ := utf8.DecodeRuneInString(name)
	if !unicode.IsUpper(r) && !unicode.IsTitle(r) {
		return ""
	}
	return name
}
