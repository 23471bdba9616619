// Package voice synthesizes Russian narration audio with Edge TTS,
// mapping a story's tone onto one of the neural voice profiles.
package voice

import "sort"

// Profile is one Edge TTS voice configuration.
type Profile struct {
	Name        string
	Voice       string
	Rate        string
	Pitch       string
	Description string
}

// DefaultProfile is used when a story carries an unknown voice tone.
const DefaultProfile = "warm_grandfather"

var profiles = map[string]Profile{
	"warm_grandfather": {
		Voice:       "ru-RU-DmitryNeural",
		Rate:        "+0%",
		Pitch:       "-5Hz",
		Description: "Warm, friendly storytelling voice",
	},
	"mysterious_elder": {
		Voice:       "ru-RU-SvetlanaNeural",
		Rate:        "-10%",
		Pitch:       "-10Hz",
		Description: "Slow, enigmatic female voice",
	},
	"energetic_youth": {
		Voice:       "ru-RU-DariyaNeural",
		Rate:        "+10%",
		Pitch:       "+5Hz",
		Description: "Upbeat, modern female voice",
	},
	"solemn_narrator": {
		Voice:       "ru-RU-DmitryNeural",
		Rate:        "-5%",
		Pitch:       "-15Hz",
		Description: "Formal, serious male voice",
	},
	"ominous": {
		Voice:       "ru-RU-DmitryNeural",
		Rate:        "-5%",
		Pitch:       "-15Hz",
		Description: "Dark, foreboding male voice",
	},
	"cautionary": {
		Voice:       "ru-RU-SvetlanaNeural",
		Rate:        "-5%",
		Pitch:       "-5Hz",
		Description: "Warning, careful female voice",
	},
	"stern": {
		Voice:       "ru-RU-DmitryNeural",
		Rate:        "+0%",
		Pitch:       "-10Hz",
		Description: "Strict, firm male voice",
	},
	"warm_storyteller": {
		Voice:       "ru-RU-SvetlanaNeural",
		Rate:        "+0%",
		Pitch:       "+0Hz",
		Description: "Warm, engaging female storyteller",
	},
	"wise_elder": {
		Voice:       "ru-RU-DmitryNeural",
		Rate:        "-10%",
		Pitch:       "-10Hz",
		Description: "Slow, wise elder male voice",
	},
	"protective": {
		Voice:       "ru-RU-SvetlanaNeural",
		Rate:        "-5%",
		Pitch:       "+0Hz",
		Description: "Caring, protective female voice",
	},
}

// ProfileFor maps a story's voice tone to its profile, falling back to
// DefaultProfile for tones it does not know.
func ProfileFor(tone string) Profile {
	p, ok := profiles[tone]
	if !ok {
		p = profiles[DefaultProfile]
		p.Name = DefaultProfile
		return p
	}
	p.Name = tone
	return p
}

// Known reports whether tone names a configured profile.
func Known(tone string) bool {
	_, ok := profiles[tone]
	return ok
}

// Profiles lists the configured profile names in stable order.
func Profiles() []Profile {
	names := make([]string, 0, len(profiles))
	for name := range profiles {
		names = append(names, name)
	}
	sort.Strings(names)

	out := make([]Profile, 0, len(names))
	for _, name := range names {
		out = append(out, ProfileFor(name))
	}
	return out
}
