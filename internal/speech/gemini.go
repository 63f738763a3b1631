package speech

import (
	"context"
	"encoding/binary"
	"fmt"
	"os"

	"google.golang.org/genai"

	"storyreel/internal/netfetch"
	"storyreel/internal/store"
)

var defaultGeminiVoices = []string{
	"Kore", "Puck", "Charon", "Fenrir", "Aoede",
}

// Gemini TTS models return raw 16-bit mono PCM at this rate.
const geminiPCMSampleRate = 24000

// GeminiSynthesizer uses Gemini TTS models as an alternate synthesis
// provider. The PCM payload is wrapped into a WAV artifact.
type GeminiSynthesizer struct {
	client  *genai.Client
	model   string
	voices  voiceCycle
	offline bool

	language string
}

func NewGeminiSynthesizer(ctx context.Context, apiKey string, opts Options) (*GeminiSynthesizer, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey: apiKey,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	model := opts.Model
	if model == "" {
		model = "gemini-2.5-flash-preview-tts"
	}

	voices := opts.Voices
	if len(voices) == 0 {
		voices = defaultGeminiVoices
	}

	return &GeminiSynthesizer{
		client:  client,
		model:   model,
		voices:  newVoiceCycle(voices),
		offline: opts.Offline,
	}, nil
}

func (s *GeminiSynthesizer) SetLanguage(name string) error {
	s.language = name
	return nil
}

func (s *GeminiSynthesizer) NextVoice() {
	s.voices.NextVoice()
}

func (s *GeminiSynthesizer) Synthesize(ctx context.Context, pathPrefix, text string) (string, error) {
	if cached, ok := store.Cached(pathPrefix, ".wav", ".mp3"); ok {
		return cached, nil
	}
	if s.offline {
		return "", netfetch.ErrUnavailable
	}

	contents := []*genai.Content{
		genai.NewContentFromText(text, genai.RoleUser),
	}

	cfg := &genai.GenerateContentConfig{
		ResponseModalities: []string{"AUDIO"},
		SpeechConfig: &genai.SpeechConfig{
			VoiceConfig: &genai.VoiceConfig{
				PrebuiltVoiceConfig: &genai.PrebuiltVoiceConfig{
					VoiceName: s.voices.voice(),
				},
			},
		},
	}

	result, err := s.client.Models.GenerateContent(ctx, s.model, contents, cfg)
	if err != nil {
		return "", fmt.Errorf("speech request failed: %w", err)
	}

	pcm, err := extractAudioPayload(result)
	if err != nil {
		return "", err
	}

	pathname := pathPrefix + ".wav"
	if err := os.WriteFile(pathname, wrapPCM(pcm, geminiPCMSampleRate), 0o666); err != nil {
		return "", fmt.Errorf("write %s: %w", pathname, err)
	}

	return pathname, nil
}

func extractAudioPayload(result *genai.GenerateContentResponse) ([]byte, error) {
	if result == nil || len(result.Candidates) == 0 {
		return nil, fmt.Errorf("empty response from Gemini")
	}

	for _, candidate := range result.Candidates {
		if candidate.Content == nil {
			continue
		}
		for _, part := range candidate.Content.Parts {
			if part.InlineData != nil && len(part.InlineData.Data) > 0 {
				return part.InlineData.Data, nil
			}
		}
	}

	return nil, fmt.Errorf("no audio in Gemini response")
}

// wrapPCM prepends a RIFF/WAVE header to 16-bit mono PCM samples.
func wrapPCM(pcm []byte, sampleRate int) []byte {
	const (
		channels      = 1
		bitsPerSample = 16
	)
	byteRate := sampleRate * channels * bitsPerSample / 8
	blockAlign := channels * bitsPerSample / 8

	buf := make([]byte, 44+len(pcm))
	copy(buf[0:4], "RIFF")
	binary.LittleEndian.PutUint32(buf[4:8], uint32(36+len(pcm)))
	copy(buf[8:12], "WAVE")
	copy(buf[12:16], "fmt ")
	binary.LittleEndian.PutUint32(buf[16:20], 16)
	binary.LittleEndian.PutUint16(buf[20:22], 1) // PCM
	binary.LittleEndian.PutUint16(buf[22:24], channels)
	binary.LittleEndian.PutUint32(buf[24:28], uint32(sampleRate))
	binary.LittleEndian.PutUint32(buf[28:32], uint32(byteRate))
	binary.LittleEndian.PutUint16(buf[32:34], uint16(blockAlign))
	binary.LittleEndian.PutUint16(buf[34:36], bitsPerSample)
	copy(buf[36:40], "data")
	binary.LittleEndian.PutUint32(buf[40:44], uint32(len(pcm)))
	copy(buf[44:], pcm)

	return buf
}
