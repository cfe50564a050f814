package enhance

import "strings"

// Preset identifies one of the named looks.
type Preset string

const (
	// Subjects.
	PresetPortrait Preset = "portrait"
	PresetPets     Preset = "pets"
	PresetFood     Preset = "food"

	// Scenes.
	PresetLandscape    Preset = "landscape"
	PresetArchitecture Preset = "architecture"
	PresetCity         Preset = "city"
	PresetOcean        Preset = "ocean"
	PresetUnderwater   Preset = "underwater"
	PresetJungle       Preset = "jungle"
	PresetSnow         Preset = "snow"
	PresetIndoor       Preset = "indoor"

	// Vibes.
	PresetStandard  Preset = "standard"
	PresetSunset    Preset = "sunset"
	PresetNight     Preset = "night"
	PresetBright    Preset = "bright"
	PresetCinematic Preset = "cinematic"
	PresetRetro     Preset = "retro"
	PresetMono      Preset = "black_and_white"
)

// presetAliases maps legacy and colloquial names onto canonical presets.
var presetAliases = map[string]Preset{
	"general":     PresetStandard,
	"lowlight":    PresetNight,
	"low_light":   PresetNight,
	"golden_hour": PresetSunset,
	"goldenhour":  PresetSunset,
	"highkey":     PresetBright,
	"high_key":    PresetBright,
	"moody":       PresetCinematic,
	"seascape":    PresetOcean,
	"bw":          PresetMono,
	"b&w":         PresetMono,
	"mono":        PresetMono,
}

// ResolvePreset maps a caller-supplied name onto a preset, case-insensitively.
// Unknown names resolve to the standard preset; this is never an error.
func ResolvePreset(name string) Preset {
	key := strings.ToLower(strings.TrimSpace(name))

	preset := Preset(key)
	if _, ok := strategies[preset]; ok {
		return preset
	}

	if alias, ok := presetAliases[key]; ok {
		return alias
	}

	return PresetStandard
}

// Presets lists every canonical preset.
func Presets() []Preset {
	out := make([]Preset, 0, len(strategies))
	for preset := range strategies {
		out = append(out, preset)
	}

	return out
}
