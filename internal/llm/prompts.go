package llm

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Prompts holds every model-facing and user-facing text used by the chat
// pipeline. The defaults are the Spanish texts the assistant ships with; a
// YAML file can override individual fields.
type Prompts struct {
	// System is the chat system prompt; %s receives the active speaker name.
	System string `yaml:"system"`
	// Detector is the classification prompt; %s receives the utterance.
	Detector string `yaml:"detector"`
	// IdentifyRequest is returned verbatim when no speaker is known.
	IdentifyRequest string `yaml:"identify_request"`
	// GenerationFailure is returned verbatim when the generation call fails.
	GenerationFailure string `yaml:"generation_failure"`
}

// DefaultPrompts returns the built-in prompt set.
func DefaultPrompts() Prompts {
	return Prompts{
		System: `Eres un asistente de IA tipo Alexa o Google Home que recuerda conversaciones con diferentes usuarios.

Comportamiento:
- Si conoces al usuario, salúdalo por su nombre y referencia conversaciones anteriores si es relevante
- Sé conversacional, útil y recuerda el contexto de conversaciones anteriores
- Cuando un usuario se identifique, confirma que lo reconoces y estás listo para continuar

Usuario actual: %s`,
		Detector: `Analiza este mensaje y determina si el usuario se está identificando con su nombre.

Ejemplos:
- "Soy Pablo" -> identified=true, name="Pablo", kind="assertion"
- "Me llamo Ana" -> identified=true, name="Ana", kind="assertion"
- "Soy María, quiero saber más" -> identified=true, name="María", kind="assertion"
- "Hola, aquí Juan otra vez" -> identified=true, name="Juan", kind="reference"
- "¿Cómo estás?" -> identified=false, name=null, kind="none"

Mensaje: %q`,
		IdentifyRequest: "¡Hola! Soy tu asistente personal. Para poder recordar nuestras conversaciones, " +
			"¿podrías decirme tu nombre? Por ejemplo: 'Soy María' o 'Me llamo Juan'",
		GenerationFailure: "Lo siento, no pude generar una respuesta en este momento. " +
			"Inténtalo de nuevo en unos segundos.",
	}
}

// LoadPrompts reads a YAML override file. Fields left empty in the file keep
// their defaults.
func LoadPrompts(path string) (Prompts, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Prompts{}, fmt.Errorf("read prompts file: %w", err)
	}

	var override Prompts
	if err := yaml.Unmarshal(data, &override); err != nil {
		return Prompts{}, fmt.Errorf("parse prompts file: %w", err)
	}

	p := DefaultPrompts()
	if override.System != "" {
		p.System = override.System
	}
	if override.Detector != "" {
		p.Detector = override.Detector
	}
	if override.IdentifyRequest != "" {
		p.IdentifyRequest = override.IdentifyRequest
	}
	if override.GenerationFailure != "" {
		p.GenerationFailure = override.GenerationFailure
	}
	return p, nil
}
