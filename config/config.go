// Package config defines the configuration schema spec.md §6 names (the
// core only owns the schema structs and a Validate() pass; "YAML/TOML
// parsing... yields already-validated configuration structs" per §1's
// explicit Non-goal boundary) plus the boundary loader that turns a file
// on disk into those structs. Grounded on the teacher's config/config.go
// (ConfigDir/ConfigPath/Load/Save shape, ControllerConfig), generalized
// from a controller-only JSON settings file into the full song-document
// schema, loaded with github.com/goccy/go-yaml since §6's documented
// schema is YAML-shaped.
package config

import (
	"os"
	"path/filepath"

	"github.com/goccy/go-yaml"

	"seq/errs"
	"seq/music"
)

// ControllerType identifies the kind of controller, carried over from the
// teacher's config package unchanged.
type ControllerType string

const (
	ControllerLaunchpadX    ControllerType = "launchpad-x"
	ControllerLaunchpadMini ControllerType = "launchpad-mini"
	ControllerLaunchpadPro  ControllerType = "launchpad-pro"
	ControllerKeyboard      ControllerType = "keyboard"
	ControllerGenericGrid   ControllerType = "generic-grid"
)

// ControllerConfig defines a saved controller configuration.
type ControllerConfig struct {
	PortName     string         `yaml:"port_name"`
	Type         ControllerType `yaml:"type"`
	AutoConnect  bool           `yaml:"auto_connect"`
	InputChannel int            `yaml:"input_channel,omitempty"`
}

// GeneratorConfig is a tagged union on Type per spec.md §6
// ("GeneratorConfig is a tagged union on type ∈ {drone, arpeggio, chord,
// melody, drums}"); Params carries the type-specific numeric parameters
// §4.4 lists, applied via generators.Generator.SetParam.
type GeneratorConfig struct {
	Type   string             `yaml:"type"`
	Params map[string]float64 `yaml:"params,omitempty"`
}

// NoteConfig is one entry of a Sequenced/Hybrid clip's static note list.
type NoteConfig struct {
	Tick     int64 `yaml:"tick"`
	Pitch    int   `yaml:"pitch"`
	Velocity int   `yaml:"velocity"`
	Duration int64 `yaml:"duration"`
}

// FollowActionConfig mirrors sequencer.FollowAction in config-schema form.
type FollowActionConfig struct {
	Kind    string  `yaml:"kind"` // next, previous, first, last, random, specific, either, again, none
	Target  string  `yaml:"target,omitempty"`
	TargetB string  `yaml:"target_b,omitempty"`
	Weight  float64 `yaml:"weight,omitempty"`
}

// ClipConfig is the on-disk form of a sequencer.Clip.
type ClipConfig struct {
	ID           string              `yaml:"id"`
	Generator    *GeneratorConfig    `yaml:"generator,omitempty"`
	Notes        []NoteConfig        `yaml:"notes,omitempty"`
	LengthTicks  int64               `yaml:"length_ticks"`
	LoopStart    int64               `yaml:"loop_start,omitempty"`
	LoopEnd      int64               `yaml:"loop_end,omitempty"`
	LoopMode     string              `yaml:"loop_mode,omitempty"` // forever, count, pingpong, oneshot
	LoopCount    int                 `yaml:"loop_count,omitempty"`
	FollowAction FollowActionConfig  `yaml:"follow_action,omitempty"`
}

// TrackConfig is spec.md §6's TrackConfig:
// {name, channel:0..15, transpose?:int, velocity_scale?:float, swing?:0..1,
// generator?:GeneratorConfig, clips?:[ClipConfig]}.
type TrackConfig struct {
	Name      string `yaml:"name"`
	Channel   int    `yaml:"channel"`
	Transpose int    `yaml:"transpose,omitempty"`
	// VelocityScale is a pointer so an explicit velocity_scale: 0 (a
	// valid, meaningful config value per spec.md §3 — near-silence,
	// clamped up to the 1..127 floor) is distinguishable from the field
	// being absent, which keeps the track's default of 1.0.
	VelocityScale *float64         `yaml:"velocity_scale,omitempty"`
	Swing         float64          `yaml:"swing,omitempty"`
	NoteRangeLow  int              `yaml:"note_range_low,omitempty"`
	NoteRangeHigh int              `yaml:"note_range_high,omitempty"`
	Generator     *GeneratorConfig `yaml:"generator,omitempty"`
	Clips         []ClipConfig     `yaml:"clips,omitempty"`
}

// MacroActionConfig is one of a Part's tempo-set / parameter-set /
// mute-solo-toggle / send-MIDI macros, per spec.md §4.7.
type MacroActionConfig struct {
	Kind      string  `yaml:"kind"` // tempo, parameter, mute, solo, send_midi
	Tempo     float64 `yaml:"tempo,omitempty"`
	Track     string  `yaml:"track,omitempty"`
	Param     string  `yaml:"param,omitempty"`
	Value     float64 `yaml:"value,omitempty"`
	SendBytes []int   `yaml:"send_bytes,omitempty"`
}

// PartTrackConfig is one track-index entry of a PartConfig, per spec.md
// §3's Part data model.
type PartTrackConfig struct {
	Track     string `yaml:"track"`
	State     string `yaml:"state"` // empty, clip, generator, stop, hold
	Ref       string `yaml:"ref,omitempty"`
}

// PartConfig is spec.md §3/§4.7's Part: a whole-track state snapshot with
// a quantized transition.
type PartConfig struct {
	Name       string              `yaml:"name"`
	Tracks     []PartTrackConfig   `yaml:"tracks,omitempty"`
	Transition string              `yaml:"transition,omitempty"` // immediate, next_beat, next_bar, beats(n), bars(n), end_of_phrase, crossfade(ticks)
	Macros     []MacroActionConfig `yaml:"macros,omitempty"`
}

// SceneSlotConfig is one track-index entry of a SceneConfig.
type SceneSlotConfig struct {
	Track string `yaml:"track"`
	State string `yaml:"state"` // empty, clip, generator, stop, hold
	Ref   string `yaml:"ref,omitempty"`
}

// SceneConfig is spec.md §3/§4.7's Scene.
type SceneConfig struct {
	Name         string              `yaml:"name"`
	Slots        []SceneSlotConfig   `yaml:"slots,omitempty"`
	LaunchMode   string              `yaml:"launch_mode,omitempty"`
	FollowAction string              `yaml:"follow_action,omitempty"`
	AfterBars    int                 `yaml:"after_bars,omitempty"`
	Repeat       bool                `yaml:"repeat,omitempty"`
}

// SongSectionConfig is one entry of spec.md §3's Song ordered list.
type SongSectionConfig struct {
	PartName      string  `yaml:"part_name"`
	LengthBars    int     `yaml:"length_bars"`
	Tempo         float64 `yaml:"tempo,omitempty"`
	TimeSigNum    int     `yaml:"time_sig_num,omitempty"`
	TimeSigDen    int     `yaml:"time_sig_den,omitempty"`
	SceneIndex    int     `yaml:"scene_index,omitempty"`
	LoopPoint     bool    `yaml:"loop_point,omitempty"`
}

// LoopRegionConfig is spec.md §3's optional Song LoopRegion.
type LoopRegionConfig struct {
	StartSection int `yaml:"start_section"`
	EndSection   int `yaml:"end_section"`
	Repeats      int `yaml:"repeats,omitempty"`
}

// SongConfig is spec.md §3's Song: ordered sections plus an optional loop
// region.
type SongConfig struct {
	Sections []SongSectionConfig `yaml:"sections,omitempty"`
	Loop     *LoopRegionConfig   `yaml:"loop,omitempty"`
}

// Config is the top-level song document spec.md §6 names.
type Config struct {
	Name           string             `yaml:"name"`
	Tempo          float64            `yaml:"tempo"`
	TimeSignature  [2]int             `yaml:"time_signature,omitempty"`
	Key            string             `yaml:"key,omitempty"`
	Scale          string             `yaml:"scale,omitempty"`
	Tracks         []TrackConfig      `yaml:"tracks,omitempty"`
	Parts          []PartConfig       `yaml:"parts,omitempty"`
	Scenes         []SceneConfig      `yaml:"scenes,omitempty"`
	Song           *SongConfig        `yaml:"song,omitempty"`
	Controllers    []ControllerConfig `yaml:"controllers,omitempty"`
}

// DefaultConfig returns a config with sensible defaults, matching the
// teacher's DefaultConfig() shape.
func DefaultConfig() *Config {
	return &Config{
		Name:          "untitled",
		Tempo:         120,
		TimeSignature: [2]int{4, 4},
		Key:           "C",
		Scale:         "major",
		Controllers: []ControllerConfig{
			{
				PortName:    "Launchpad X LPX MIDI",
				Type:        ControllerLaunchpadX,
				AutoConnect: true,
			},
		},
	}
}

// ConfigDir returns the config directory path.
func ConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "seq"), nil
}

// DefaultConfigPath returns the full path to the default song document.
func DefaultConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "song.yaml"), nil
}

// Load reads and validates a song document from path. If path is empty,
// it uses DefaultConfigPath and returns DefaultConfig if no file exists
// there, matching the teacher's Load() fallback behavior.
func Load(path string) (*Config, error) {
	if path == "" {
		p, err := DefaultConfigPath()
		if err != nil {
			return DefaultConfig(), nil
		}
		path = p
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultConfig(), nil
		}
		return nil, errs.Wrapf(errs.Configuration, err, "reading config %s", path)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, errs.Wrapf(errs.Configuration, err, "parsing config %s", path)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Save writes the config to path as YAML, creating its directory if
// needed.
func (c *Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return errs.Wrapf(errs.Resource, err, "creating config dir for %s", path)
	}
	data, err := yaml.Marshal(c)
	if err != nil {
		return errs.Wrapf(errs.LogicFatal, err, "marshaling config")
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return errs.Wrapf(errs.Resource, err, "writing config %s", path)
	}
	return nil
}

// Validate checks every invariant spec.md §3/§6 names: tempo range, valid
// key/scale names, channel range, per-track numeric ranges, and dangling
// references among clips/parts/scenes/song sections. Per spec.md §7,
// Configuration errors must fail fast here and never reach runtime.
func (c *Config) Validate() error {
	if c.Tempo < 20 || c.Tempo > 300 {
		return errs.Configf("tempo %.1f out of range [20, 300]", c.Tempo)
	}
	if c.TimeSignature == [2]int{0, 0} {
		c.TimeSignature = [2]int{4, 4}
	}
	if c.TimeSignature[0] <= 0 || c.TimeSignature[1] <= 0 {
		return errs.Configf("invalid time signature %v", c.TimeSignature)
	}
	if c.Scale != "" {
		if _, err := music.ParseScaleType(c.Scale); err != nil {
			return errs.Configf("unknown scale %q (not a custom-registered name either, which can't be checked until session load)", c.Scale)
		}
	}
	if c.Key != "" {
		if _, ok := pitchClassIndex(c.Key); !ok {
			return errs.Configf("unknown key %q", c.Key)
		}
	}

	clipIDs := map[string]bool{}
	trackNames := map[string]bool{}
	for i, t := range c.Tracks {
		if t.Name == "" {
			return errs.Configf("track %d has no name", i)
		}
		if trackNames[t.Name] {
			return errs.Configf("duplicate track name %q", t.Name)
		}
		trackNames[t.Name] = true
		if t.Channel < 0 || t.Channel > 15 {
			return errs.Configf("track %q channel %d out of range [0, 15]", t.Name, t.Channel)
		}
		if t.Transpose < -48 || t.Transpose > 48 {
			return errs.Configf("track %q transpose %d out of range [-48, 48]", t.Name, t.Transpose)
		}
		if t.VelocityScale != nil && (*t.VelocityScale < 0 || *t.VelocityScale > 2) {
			return errs.Configf("track %q velocity_scale %.2f out of range [0, 2]", t.Name, *t.VelocityScale)
		}
		if t.Swing < 0 || t.Swing > 1 {
			return errs.Configf("track %q swing %.2f out of range [0, 1]", t.Name, t.Swing)
		}
		for _, clip := range t.Clips {
			if clip.ID == "" {
				return errs.Configf("track %q has a clip with no id", t.Name)
			}
			clipIDs[clip.ID] = true
			if clip.LoopEnd != 0 && clip.LoopStart >= clip.LoopEnd {
				return errs.Configf("clip %q loop_start %d must be < loop_end %d", clip.ID, clip.LoopStart, clip.LoopEnd)
			}
		}
	}

	for _, p := range c.Parts {
		for _, pt := range p.Tracks {
			if !trackNames[pt.Track] {
				return errs.Configf("part %q references unknown track %q", p.Name, pt.Track)
			}
			if pt.State == "clip" && pt.Ref != "" && !clipIDs[pt.Ref] {
				return errs.Configf("part %q references unknown clip %q", p.Name, pt.Ref)
			}
		}
	}
	for _, s := range c.Scenes {
		for _, slot := range s.Slots {
			if !trackNames[slot.Track] {
				return errs.Configf("scene %q references unknown track %q", s.Name, slot.Track)
			}
		}
	}
	if c.Song != nil {
		partNames := map[string]bool{}
		for _, p := range c.Parts {
			partNames[p.Name] = true
		}
		for i, sec := range c.Song.Sections {
			if sec.PartName != "" && !partNames[sec.PartName] {
				return errs.Configf("song section %d references unknown part %q", i, sec.PartName)
			}
			if sec.LengthBars <= 0 {
				return errs.Configf("song section %d has non-positive length_bars", i)
			}
		}
	}
	return nil
}

func pitchClassIndex(name string) (int, bool) {
	return music.ParsePitchClass(name)
}
