package tui

import (
	_ "embed"
	"fmt"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"
)

//go:embed keymaps.toml
var keymapsTOML []byte

// DefaultProfile is the profile used when the configured one is missing.
const DefaultProfile = "default"

// BindingSet maps reader actions to the keys that trigger them.
type BindingSet struct {
	NextPage     []string `toml:"next_page"`
	PrevPage     []string `toml:"prev_page"`
	FirstPage    []string `toml:"first_page"`
	LastPage     []string `toml:"last_page"`
	GotoPage     []string `toml:"goto_page"`
	ScrollUp     []string `toml:"scroll_up"`
	ScrollDown   []string `toml:"scroll_down"`
	ToggleLayout []string `toml:"toggle_layout"`
	ZoomIn       []string `toml:"zoom_in"`
	ZoomOut      []string `toml:"zoom_out"`
	CycleMode    []string `toml:"cycle_mode"`
	Outline      []string `toml:"outline"`
	Bookmarks    []string `toml:"bookmarks"`
	AddBookmark  []string `toml:"add_bookmark"`
	Help         []string `toml:"help"`
}

// merged returns b with every action the override defines replaced.
// Actions the override leaves empty keep their existing keys.
func (b BindingSet) merged(over BindingSet) BindingSet {
	replace := func(dst *[]string, src []string) {
		if len(src) > 0 {
			*dst = src
		}
	}
	replace(&b.NextPage, over.NextPage)
	replace(&b.PrevPage, over.PrevPage)
	replace(&b.FirstPage, over.FirstPage)
	replace(&b.LastPage, over.LastPage)
	replace(&b.GotoPage, over.GotoPage)
	replace(&b.ScrollUp, over.ScrollUp)
	replace(&b.ScrollDown, over.ScrollDown)
	replace(&b.ToggleLayout, over.ToggleLayout)
	replace(&b.ZoomIn, over.ZoomIn)
	replace(&b.ZoomOut, over.ZoomOut)
	replace(&b.CycleMode, over.CycleMode)
	replace(&b.Outline, over.Outline)
	replace(&b.Bookmarks, over.Bookmarks)
	replace(&b.AddBookmark, over.AddBookmark)
	replace(&b.Help, over.Help)
	return b
}

// KeymapConfig holds all binding profiles
type KeymapConfig struct {
	Profiles map[string]BindingSet `toml:"profiles"`
}

// KeymapRegistry manages binding profiles
type KeymapRegistry struct {
	profiles map[string]BindingSet
}

// NewKeymapRegistry creates a registry from the embedded TOML
func NewKeymapRegistry() (*KeymapRegistry, error) {
	var config KeymapConfig
	if err := toml.Unmarshal(keymapsTOML, &config); err != nil {
		return nil, fmt.Errorf("parsing keymaps.toml: %w", err)
	}

	registry := &KeymapRegistry{
		profiles: config.Profiles,
	}

	// Try to load the user's custom binding profiles
	registry.loadUserConfig()

	return registry, nil
}

// loadUserConfig loads custom binding profiles from the user's config directory
func (r *KeymapRegistry) loadUserConfig() {
	// Try common config locations
	configPaths := []string{
		"~/.config/quire/keymaps.toml",
		"./keymaps.toml",
	}

	for _, path := range configPaths {
		if len(path) >= 2 && path[:2] == "~/" {
			if home, err := os.UserHomeDir(); err == nil {
				path = filepath.Join(home, path[2:])
			}
		}

		if data, err := os.ReadFile(path); err == nil {
			var userConfig KeymapConfig
			if err := toml.Unmarshal(data, &userConfig); err == nil {
				r.merge(userConfig)
			}
		}
	}
}

// merge folds user-defined profiles into the registry. Profiles sharing
// a name merge per action; new names are added whole.
func (r *KeymapRegistry) merge(config KeymapConfig) {
	for name, def := range config.Profiles {
		if existing, ok := r.profiles[name]; ok {
			r.profiles[name] = existing.merged(def)
		} else {
			r.profiles[name] = def
		}
	}
}

// Profile returns the named binding set, falling back to the default
// profile when the name is unknown.
func (r *KeymapRegistry) Profile(name string) BindingSet {
	if b, ok := r.profiles[name]; ok {
		return b
	}
	return r.profiles[DefaultProfile]
}

// keyMatches reports whether key triggers the action bound to keys.
func keyMatches(keys []string, key string) bool {
	for _, k := range keys {
		if k == key {
			return true
		}
	}
	return false
}

// primaryKey is the display label for an action's first key.
func primaryKey(keys []string) string {
	if len(keys) == 0 {
		return ""
	}
	return displayKey(keys[0])
}

func displayKey(k string) string {
	switch k {
	case " ":
		return "space"
	case "pgdown":
		return "pgdn"
	default:
		return k
	}
}
