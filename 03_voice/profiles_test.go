package voice

import (
	"sort"
	"strings"
	"testing"
)

func TestProfileFor(t *testing.T) {
	cases := []struct {
		tone      string
		wantVoice string
		wantRate  string
		wantPitch string
	}{
		{"warm_grandfather", "ru-RU-DmitryNeural", "+0%", "-5Hz"},
		{"mysterious_elder", "ru-RU-SvetlanaNeural", "-10%", "-10Hz"},
		{"energetic_youth", "ru-RU-DariyaNeural", "+10%", "+5Hz"},
		{"ominous", "ru-RU-DmitryNeural", "-5%", "-15Hz"},
		{"protective", "ru-RU-SvetlanaNeural", "-5%", "+0Hz"},
	}
	for _, tc := range cases {
		t.Run(tc.tone, func(t *testing.T) {
			p := ProfileFor(tc.tone)
			if p.Name != tc.tone {
				t.Errorf("Name = %q, want %q", p.Name, tc.tone)
			}
			if p.Voice != tc.wantVoice || p.Rate != tc.wantRate || p.Pitch != tc.wantPitch {
				t.Errorf("profile = %+v, want %s %s %s", p, tc.wantVoice, tc.wantRate, tc.wantPitch)
			}
		})
	}
}

func TestProfileForUnknownTone(t *testing.T) {
	p := ProfileFor("spooky_whisper")
	if p.Name != DefaultProfile {
		t.Errorf("Name = %q, want default %q", p.Name, DefaultProfile)
	}
	if p.Voice != "ru-RU-DmitryNeural" {
		t.Errorf("Voice = %q", p.Voice)
	}
	if Known("spooky_whisper") {
		t.Error("Known(spooky_whisper) = true")
	}
	if !Known("stern") {
		t.Error("Known(stern) = false")
	}
}

func TestProfilesListing(t *testing.T) {
	all := Profiles()
	if len(all) != 10 {
		t.Fatalf("got %d profiles, want 10", len(all))
	}
	names := make([]string, len(all))
	for i, p := range all {
		names[i] = p.Name
		if !strings.HasPrefix(p.Voice, "ru-RU-") {
			t.Errorf("profile %s has non-Russian voice %s", p.Name, p.Voice)
		}
		if p.Rate == "" || p.Pitch == "" || p.Description == "" {
			t.Errorf("profile %s is incomplete: %+v", p.Name, p)
		}
	}
	if !sort.StringsAreSorted(names) {
		t.Errorf("profiles not in stable order: %v", names)
	}
}
