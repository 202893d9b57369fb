package params

// CustomPreset is reported by Classify when the current knobs match no
// named preset.
const CustomPreset = "Custom"

// Preset is a named knob combination selectable from the panel.
type Preset struct {
	Name   string `json:"name"`
	Params Params `json:"params"`
}

// Presets returns the fixed preset list, in panel order. Balanced equals
// the backend defaults.
func Presets() []Preset {
	return []Preset{
		{Name: "Precise", Params: Params{Temperature: 0.2, TopP: 0.9, MaxTokens: 512}},
		{Name: "Balanced", Params: Defaults()},
		{Name: "Creative", Params: Params{Temperature: 0.95, TopP: 1.0, MaxTokens: 1024}},
	}
}

// Classify names the preset the current knobs match, or CustomPreset.
func Classify(p Params) string {
	for _, preset := range Presets() {
		if p.Matches(preset.Params) {
			return preset.Name
		}
	}
	return CustomPreset
}

// Apply overwrites the three knobs with the preset's values. The model
// selector is not part of Params on purpose: applying a preset never
// touches it.
func Apply(preset Preset) Params {
	return preset.Params
}
