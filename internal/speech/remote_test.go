package speech

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"storyreel/internal/config"
	"storyreel/internal/netfetch"
)

func testSpeechConfig(serviceURL string) *config.SpeechConfig {
	return &config.SpeechConfig{
		URL:       serviceURL,
		AccountID: "acct",
		SecretID:  "topsecret",
		MaxLength: 500,
		Languages: []config.SpeechLanguage{
			{Name: "English", LanguageID: "1", VoiceIDs: []string{"v1", "v2", "v3"}},
		},
		Preparation: map[string]string{"EID": "prepare", "IS_UTF8": "1", "EXT": "mp3"},
		Download:    map[string]string{"EID": "download", "IS_UTF8": "1", "EXT": "mp3"},
	}
}

func TestFingerprintOrderAndStability(t *testing.T) {
	in := FingerprintInput{
		EID:        "prepare",
		LanguageID: "1",
		VoiceID:    "v1",
		Text:       "Hello",
		IsUTF8:     "1",
		Ext:        "mp3",
		AccountID:  "acct",
		SecretID:   "topsecret",
	}

	first := Fingerprint(in)
	if len(first) != 32 {
		t.Fatalf("fingerprint length = %d, want 32 hex digits", len(first))
	}
	if second := Fingerprint(in); second != first {
		t.Errorf("fingerprint not stable: %q vs %q", first, second)
	}

	// any changed field changes the checksum
	changed := in
	changed.SecretID = "other"
	if Fingerprint(changed) == first {
		t.Error("secret change did not alter the fingerprint")
	}

	// swapping two field values must not collide: order is significant
	swapped := in
	swapped.EID, swapped.LanguageID = in.LanguageID, in.EID
	if Fingerprint(swapped) == first {
		t.Error("field order is not significant in the fingerprint")
	}
}

func TestVoiceCycleWraps(t *testing.T) {
	cycle := newVoiceCycle([]string{"a", "b"})

	if got := cycle.voice(); got != "a" {
		t.Errorf("initial voice = %q, want first entry", got)
	}

	want := []string{"a", "b", "a", "b", "a"}
	for i, w := range want {
		cycle.NextVoice()
		if got := cycle.voice(); got != w {
			t.Errorf("step %d: voice = %q, want %q", i, got, w)
		}
	}
}

func TestVoiceCycleEmpty(t *testing.T) {
	cycle := newVoiceCycle(nil)
	cycle.NextVoice()
	if got := cycle.voice(); got != "" {
		t.Errorf("empty cycle voice = %q", got)
	}
}

func TestRemoteSynthesizeCached(t *testing.T) {
	dir := t.TempDir()
	prefix := filepath.Join(dir, "0")
	if err := os.WriteFile(prefix+".mp3", []byte("cached audio"), 0o644); err != nil {
		t.Fatal(err)
	}

	// a disabled client proves no network round trip happens
	synth, err := NewRemoteSynthesizer(testSpeechConfig("http://unused?"), netfetch.NewClient(false, 1))
	if err != nil {
		t.Fatal(err)
	}

	path, err := synth.Synthesize(context.Background(), prefix, "Hello")
	if err != nil {
		t.Fatalf("cached synthesis failed: %v", err)
	}
	if path != prefix+".mp3" {
		t.Errorf("cached path = %q", path)
	}
}

func TestRemoteSynthesizeRequiresLanguage(t *testing.T) {
	synth, err := NewRemoteSynthesizer(testSpeechConfig("http://unused?"), netfetch.NewClient(true, 1))
	if err != nil {
		t.Fatal(err)
	}

	prefix := filepath.Join(t.TempDir(), "0")
	if _, err := synth.Synthesize(context.Background(), prefix, "Hello"); err == nil {
		t.Fatal("expected error before SetLanguage")
	}
}

func TestRemoteSynthesizeTwoPhases(t *testing.T) {
	var prepareQuery, downloadQuery map[string][]string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Query().Get("EID") {
		case "prepare":
			prepareQuery = r.URL.Query()
			w.Header().Set("Content-Type", "text/plain")
			_, _ = w.Write([]byte("OK"))
		case "download":
			downloadQuery = r.URL.Query()
			w.Header().Set("Content-Type", "audio/mpeg")
			_, _ = w.Write([]byte("mp3 payload"))
		default:
			w.WriteHeader(http.StatusBadRequest)
		}
	}))
	defer srv.Close()

	cfg := testSpeechConfig(srv.URL + "/tts?")
	synth, err := NewRemoteSynthesizer(cfg, netfetch.NewClient(true, 1))
	if err != nil {
		t.Fatal(err)
	}
	if err := synth.SetLanguage("English"); err != nil {
		t.Fatal(err)
	}

	prefix := filepath.Join(t.TempDir(), "0")
	path, err := synth.Synthesize(context.Background(), prefix, "Hello world")
	if err != nil {
		t.Fatalf("Synthesize failed: %v", err)
	}

	if path != prefix+".mp3" {
		t.Errorf("audio path = %q", path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("audio file missing: %v", err)
	}
	if string(data) != "mp3 payload" {
		t.Errorf("audio content %q", data)
	}

	if prepareQuery == nil || downloadQuery == nil {
		t.Fatal("both protocol phases must be exercised")
	}

	wantCS := Fingerprint(FingerprintInput{
		EID:        "prepare",
		LanguageID: "1",
		VoiceID:    "v1",
		Text:       "Hello world",
		IsUTF8:     "1",
		Ext:        "mp3",
		AccountID:  "acct",
		SecretID:   "topsecret",
	})

	for _, q := range []map[string][]string{prepareQuery, downloadQuery} {
		checks := map[string]string{
			"LID": "1",
			"VID": "v1",
			"ACC": "acct",
			"TXT": "Hello world",
			"CS":  wantCS,
		}
		for key, want := range checks {
			if got := q[key]; len(got) != 1 || got[0] != want {
				t.Errorf("param %s = %v, want %q", key, got, want)
			}
		}
	}
	if got := prepareQuery["SEC"]; len(got) != 0 {
		t.Errorf("secret must never travel as a parameter, got %v", got)
	}
}

func TestRemoteSynthesizePrepareFailureAborts(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	synth, err := NewRemoteSynthesizer(testSpeechConfig(srv.URL+"/tts?"), netfetch.NewClient(true, 1, netfetch.WithBackoff(0)))
	if err != nil {
		t.Fatal(err)
	}
	if err := synth.SetLanguage("English"); err != nil {
		t.Fatal(err)
	}

	prefix := filepath.Join(t.TempDir(), "0")
	if _, err := synth.Synthesize(context.Background(), prefix, "Hello"); err == nil {
		t.Fatal("expected error when the prepare phase fails")
	}
	if _, statErr := os.Stat(prefix + ".mp3"); !os.IsNotExist(statErr) {
		t.Error("no audio artifact should exist after a failed prepare")
	}
}

func TestFactoryUnknownProvider(t *testing.T) {
	if _, err := Factory(context.Background(), Provider("espeak"), Options{}); err == nil {
		t.Fatal("expected error for unknown provider")
	}
}
