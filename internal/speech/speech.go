// Package speech turns one text segment into a spoken-audio file.
// Providers share a small interface so the timeline builder never
// knows which service produced a clip.
package speech

import (
	"context"
	"fmt"

	"storyreel/internal/config"
	"storyreel/internal/netfetch"
)

// Synthesizer converts text segments to audio artifacts. Synthesize
// returns the path of the produced (or cached) file; a pre-existing
// non-empty artifact at the deterministic path short-circuits the
// remote call.
type Synthesizer interface {
	// selects the language used for subsequent synthesis
	SetLanguage(name string) error

	// advances to the next configured voice, wrapping at the end;
	// called once per content item
	NextVoice()

	// synthesizes text into pathPrefix plus a provider extension
	Synthesize(ctx context.Context, pathPrefix, text string) (string, error)
}

// speech service provider
type Provider string

const (
	ProviderRemote Provider = "remote"
	ProviderOpenAI Provider = "openai"
	ProviderGemini Provider = "gemini"
)

type Options struct {
	Config *config.SpeechConfig // remote protocol configuration
	Fetch  *netfetch.Client     // network primitive for the remote provider
	APIKey string               // openai / gemini credentials
	Model  string
	Voices []string // overrides the provider's default voice set

	// Offline makes Synthesize fail fast with ErrUnavailable unless a
	// cached artifact exists; the remote provider inherits this from
	// its network client
	Offline bool
}

// creates a Synthesizer based on provider
func Factory(ctx context.Context, provider Provider, opts Options) (Synthesizer, error) {
	switch provider {
	case ProviderRemote:
		return NewRemoteSynthesizer(opts.Config, opts.Fetch)
	case ProviderOpenAI:
		return NewOpenAISynthesizer(opts.APIKey, opts)
	case ProviderGemini:
		return NewGeminiSynthesizer(ctx, opts.APIKey, opts)
	default:
		return nil, fmt.Errorf("unsupported speech provider: %s", provider)
	}
}

// voiceCycle rotates through a fixed voice list, one step per item.
type voiceCycle struct {
	voices []string
	index  int
}

func newVoiceCycle(voices []string) voiceCycle {
	return voiceCycle{voices: voices, index: -1}
}

func (v *voiceCycle) NextVoice() {
	if len(v.voices) == 0 {
		return
	}
	v.index++
	if v.index >= len(v.voices) {
		v.index = 0
	}
}

// current voice id; NextVoice must have been called at least once
func (v *voiceCycle) voice() string {
	if len(v.voices) == 0 {
		return ""
	}
	if v.index < 0 {
		return v.voices[0]
	}
	return v.voices[v.index]
}
