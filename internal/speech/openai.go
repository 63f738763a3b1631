package speech

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"storyreel/internal/netfetch"
	"storyreel/internal/store"
)

var defaultOpenAIVoices = []string{
	"alloy", "echo", "fable", "onyx", "nova", "shimmer",
}

// OpenAISynthesizer uses the OpenAI speech endpoint as an alternate
// synthesis provider.
type OpenAISynthesizer struct {
	client  openai.Client
	model   string
	voices  voiceCycle
	offline bool

	// the speech endpoint infers language from the input text; the
	// selected name is kept for diagnostics only
	language string
}

func NewOpenAISynthesizer(apiKey string, opts Options) (*OpenAISynthesizer, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("API key is required")
	}

	client := openai.NewClient(option.WithAPIKey(apiKey))

	model := opts.Model
	if model == "" {
		model = "tts-1"
	}

	voices := opts.Voices
	if len(voices) == 0 {
		voices = defaultOpenAIVoices
	}

	return &OpenAISynthesizer{
		client:  client,
		model:   model,
		voices:  newVoiceCycle(voices),
		offline: opts.Offline,
	}, nil
}

func (s *OpenAISynthesizer) SetLanguage(name string) error {
	s.language = name
	return nil
}

func (s *OpenAISynthesizer) NextVoice() {
	s.voices.NextVoice()
}

func (s *OpenAISynthesizer) Synthesize(ctx context.Context, pathPrefix, text string) (string, error) {
	if cached, ok := store.Cached(pathPrefix, ".mp3"); ok {
		return cached, nil
	}
	if s.offline {
		return "", netfetch.ErrUnavailable
	}

	resp, err := s.client.Audio.Speech.New(ctx, openai.AudioSpeechNewParams{
		Model:          openai.SpeechModel(s.model),
		Input:          text,
		Voice:          openai.AudioSpeechNewParamsVoice(s.voices.voice()),
		ResponseFormat: openai.AudioSpeechNewParamsResponseFormatMP3,
	})
	if err != nil {
		return "", fmt.Errorf("speech request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	audio, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read speech response: %w", err)
	}

	pathname := pathPrefix + ".mp3"
	if err := os.WriteFile(pathname, audio, 0o666); err != nil {
		return "", fmt.Errorf("write %s: %w", pathname, err)
	}

	return pathname, nil
}
