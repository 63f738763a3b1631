package speech

import (
	"context"
	"crypto/md5"
	"fmt"
	"net/url"

	"storyreel/internal/config"
	"storyreel/internal/netfetch"
	"storyreel/internal/store"
)

// RemoteSynthesizer speaks the two-phase prepare+download protocol of
// the remote speech service. Both phases carry identical parameters
// apart from their purpose; a keyed md5 fingerprint authenticates the
// request pair.
type RemoteSynthesizer struct {
	cfg   *config.SpeechConfig
	fetch *netfetch.Client

	language *config.SpeechLanguage
	voices   voiceCycle
}

func NewRemoteSynthesizer(cfg *config.SpeechConfig, fetch *netfetch.Client) (*RemoteSynthesizer, error) {
	if cfg == nil {
		return nil, fmt.Errorf("speech config is required")
	}
	if fetch == nil {
		return nil, fmt.Errorf("network client is required")
	}
	return &RemoteSynthesizer{cfg: cfg, fetch: fetch}, nil
}

func (s *RemoteSynthesizer) SetLanguage(name string) error {
	lang, err := s.cfg.Language(name)
	if err != nil {
		return err
	}
	s.language = lang
	s.voices = newVoiceCycle(lang.VoiceIDs)
	return nil
}

func (s *RemoteSynthesizer) NextVoice() {
	s.voices.NextVoice()
}

func (s *RemoteSynthesizer) Synthesize(ctx context.Context, pathPrefix, text string) (string, error) {
	if cached, ok := store.Cached(pathPrefix, ".mp3"); ok {
		return cached, nil
	}

	if s.language == nil {
		return "", fmt.Errorf("language not set")
	}

	voiceID := s.voices.voice()
	cs := Fingerprint(FingerprintInput{
		EID:        s.cfg.Preparation["EID"],
		LanguageID: s.language.LanguageID,
		VoiceID:    voiceID,
		Text:       text,
		IsUTF8:     s.cfg.Preparation["IS_UTF8"],
		Ext:        s.cfg.Preparation["EXT"],
		AccountID:  s.cfg.AccountID,
		SecretID:   s.cfg.SecretID,
	})

	prepareURL := s.phaseURL(s.cfg.Preparation, voiceID, text, cs)
	if _, _, err := s.fetch.Get(ctx, prepareURL); err != nil {
		return "", fmt.Errorf("prepare phase: %w", err)
	}

	downloadURL := s.phaseURL(s.cfg.Download, voiceID, text, cs)
	path, err := s.fetch.Save(ctx, pathPrefix, downloadURL)
	if err != nil {
		return "", fmt.Errorf("download phase: %w", err)
	}

	return path, nil
}

func (s *RemoteSynthesizer) phaseURL(phase map[string]string, voiceID, text, cs string) string {
	params := url.Values{}
	for k, v := range phase {
		params.Set(k, v)
	}
	params.Set("LID", s.language.LanguageID)
	params.Set("VID", voiceID)
	params.Set("ACC", s.cfg.AccountID)
	params.Set("TXT", text)
	params.Set("CS", cs)

	return s.cfg.URL + params.Encode()
}

// FingerprintInput carries the fields hashed into the request
// checksum, in protocol order.
type FingerprintInput struct {
	EID        string
	LanguageID string
	VoiceID    string
	Text       string
	IsUTF8     string
	Ext        string
	AccountID  string
	SecretID   string
}

// Fingerprint computes the keyed md5 checksum authenticating one
// synthesis request. Field order is fixed by the protocol.
func Fingerprint(in FingerprintInput) string {
	h := md5.New()
	for _, field := range []string{
		in.EID, in.LanguageID, in.VoiceID, in.Text,
		in.IsUTF8, in.Ext, in.AccountID, in.SecretID,
	} {
		h.Write([]byte(field))
	}
	return fmt.Sprintf("%x", h.Sum(nil))
}
