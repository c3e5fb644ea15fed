// Package rubric loads and caches the scoring section configuration.
//
// The rubric is the authoritative list of scored sections (key, title,
// weight) plus per-section "why it matters" rationales and remediation
// suggestions. It is read from a YAML resource and cached keyed by the
// file's modification time; readers always see a complete, immutable view
// that is swapped atomically on reload. A broken config edit never takes
// the rubric down: the loader falls back to the previous good view, or to
// an empty one if there never was a good load.
package rubric

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/hashicorp/go-hclog"
	"gopkg.in/yaml.v3"
)

const fallbackWhy = "A low score in this section may translate into legal or commercial risk."

// SectionDef is one scored dimension of a contract.
type SectionDef struct {
	Key    string
	Title  string
	Weight int
}

type view struct {
	sections       []SectionDef
	index          map[string]SectionDef
	keys           []string
	whyMap         map[string]string
	suggestMap     map[string]string
	defaultWhy     string
	defaultSuggest string
	lines          string
}

func emptyView() *view {
	return &view{
		index:      map[string]SectionDef{},
		whyMap:     map[string]string{},
		suggestMap: map[string]string{},
		defaultWhy: fallbackWhy,
	}
}

// Rubric is a process-wide, read-mostly cache over one rubric file.
type Rubric struct {
	path   string
	logger hclog.Logger

	mu        sync.RWMutex
	current   *view
	mtime     time.Time
	haveMtime bool
}

// New creates a rubric backed by the YAML file at path. The file is not
// read until first use.
func New(path string, logger hclog.Logger) *Rubric {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	return &Rubric{path: path, logger: logger.Named("rubric")}
}

// Sections returns the configured section definitions in file order.
func (r *Rubric) Sections() []SectionDef { return r.load().sections }

// Section looks up one section definition by key.
func (r *Rubric) Section(key string) (SectionDef, bool) {
	def, ok := r.load().index[key]
	return def, ok
}

// Keys returns all section keys in file order.
func (r *Rubric) Keys() []string { return r.load().keys }

// Has reports whether key names a known section.
func (r *Rubric) Has(key string) bool {
	_, ok := r.load().index[key]
	return ok
}

// SectionsLines renders the rubric as a bullet list for prompt construction.
func (r *Rubric) SectionsLines() string { return r.load().lines }

// Why returns the "why it matters" rationale for a section, or the
// configured (or built-in) default when none is set.
func (r *Rubric) Why(key string) string {
	v := r.load()
	if why, ok := v.whyMap[key]; ok {
		return why
	}
	return v.defaultWhy
}

// Suggestion returns the configured remediation suggestion for a section,
// or empty when none is set.
func (r *Rubric) Suggestion(key string) string { return r.load().suggestMap[key] }

// DefaultSuggestion returns the rubric-wide fallback suggestion, or empty.
func (r *Rubric) DefaultSuggestion() string { return r.load().defaultSuggest }

// load returns the cached view, reparsing only when the file's mtime moved.
func (r *Rubric) load() *view {
	st, statErr := os.Stat(r.path)

	r.mu.RLock()
	if r.current != nil {
		sameMissing := statErr != nil && !r.haveMtime
		sameMtime := statErr == nil && r.haveMtime && st.ModTime().Equal(r.mtime)
		if sameMissing || sameMtime {
			v := r.current
			r.mu.RUnlock()
			return v
		}
	}
	r.mu.RUnlock()

	r.mu.Lock()
	defer r.mu.Unlock()

	// Re-check under the write lock; another goroutine may have reloaded.
	if r.current != nil {
		sameMissing := statErr != nil && !r.haveMtime
		sameMtime := statErr == nil && r.haveMtime && st.ModTime().Equal(r.mtime)
		if sameMissing || sameMtime {
			return r.current
		}
	}

	v := r.parseFile()
	r.current = v
	if statErr == nil {
		r.mtime = st.ModTime()
		r.haveMtime = true
	} else {
		r.haveMtime = false
	}
	return v
}

type rawSection struct {
	Key        string `yaml:"key"`
	Title      string `yaml:"title"`
	Weight     any    `yaml:"weight"`
	Why        string `yaml:"why"`
	Suggestion string `yaml:"suggestion"`
}

type rawConfig struct {
	Defaults struct {
		Why        string `yaml:"why"`
		Suggestion string `yaml:"suggestion"`
	} `yaml:"defaults"`
	Sections []rawSection `yaml:"sections"`
}

// parseFile reads the config from disk. On any failure it returns the prior
// cached view if one exists, otherwise an empty view — a bad config edit
// must never crash analysis.
func (r *Rubric) parseFile() *view {
	data, err := os.ReadFile(r.path)
	if err != nil {
		if r.current != nil {
			r.logger.Warn("rubric file unreadable, keeping previous", "path", r.path, "error", err)
			return r.current
		}
		return emptyView()
	}

	var raw rawConfig
	if err := yaml.Unmarshal(data, &raw); err != nil {
		if r.current != nil {
			r.logger.Warn("rubric file malformed, keeping previous", "path", r.path, "error", err)
			return r.current
		}
		r.logger.Warn("rubric file malformed, using empty rubric", "path", r.path, "error", err)
		return emptyView()
	}

	v := emptyView()
	var lines []string
	for _, s := range raw.Sections {
		if s.Key == "" || s.Title == "" {
			continue
		}
		weight, ok := coerceWeight(s.Weight)
		if !ok {
			r.logger.Warn("discarding rubric section with invalid weight", "key", s.Key)
			continue
		}
		def := SectionDef{Key: s.Key, Title: s.Title, Weight: weight}
		v.sections = append(v.sections, def)
		v.index[s.Key] = def
		v.keys = append(v.keys, s.Key)
		if s.Why != "" {
			v.whyMap[s.Key] = s.Why
		}
		if s.Suggestion != "" {
			v.suggestMap[s.Key] = s.Suggestion
		}
		lines = append(lines, fmt.Sprintf("- %q — %s", s.Key, s.Title))
	}
	if raw.Defaults.Why != "" {
		v.defaultWhy = raw.Defaults.Why
	}
	v.defaultSuggest = raw.Defaults.Suggestion
	v.lines = strings.Join(lines, "\n")
	return v
}

func coerceWeight(value any) (int, bool) {
	switch w := value.(type) {
	case int:
		return w, true
	case int64:
		return int(w), true
	case float64:
		if w == float64(int(w)) {
			return int(w), true
		}
		return 0, false
	case string:
		n, err := strconv.Atoi(strings.TrimSpace(w))
		if err != nil {
			return 0, false
		}
		return n, true
	default:
		return 0, false
	}
}
