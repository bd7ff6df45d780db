package catalog

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

//go:embed content.yaml
var embeddedContent []byte

type Category string

const (
	CategoryHealth Category = "Health"
	CategoryWealth Category = "Wealth"
	CategoryMind   Category = "Mind"
	CategorySoul   Category = "Soul"
)

// Categories is the fixed category set, in display order.
var Categories = []Category{CategoryHealth, CategoryWealth, CategoryMind, CategorySoul}

func (c Category) IsValid() bool {
	switch c {
	case CategoryHealth, CategoryWealth, CategoryMind, CategorySoul:
		return true
	default:
		return false
	}
}

// ParseCategory accepts any casing of a category name.
func ParseCategory(input string) (Category, error) {
	s := strings.TrimSpace(input)
	for _, c := range Categories {
		if strings.EqualFold(string(c), s) {
			return c, nil
		}
	}
	return "", fmt.Errorf("invalid category: %q", input)
}

type Difficulty string

const (
	DifficultyEasy   Difficulty = "Easy"
	DifficultyMedium Difficulty = "Medium"
	DifficultyHard   Difficulty = "Hard"
)

func (d Difficulty) IsValid() bool {
	switch d {
	case DifficultyEasy, DifficultyMedium, DifficultyHard:
		return true
	default:
		return false
	}
}

func ParseDifficulty(input string) (Difficulty, error) {
	s := strings.TrimSpace(input)
	for _, d := range []Difficulty{DifficultyEasy, DifficultyMedium, DifficultyHard} {
		if strings.EqualFold(string(d), s) {
			return d, nil
		}
	}
	return "", fmt.Errorf("invalid difficulty: %q", input)
}

type BreathStep struct {
	Type     string `yaml:"type"`
	Duration int    `yaml:"duration"`
}

type BreathingStyle struct {
	Name        string       `yaml:"name"`
	UnlockLevel int          `yaml:"unlock_level"`
	Description string       `yaml:"description"`
	Technique   string       `yaml:"technique"`
	WhenToUse   string       `yaml:"when_to_use"`
	Reps        int          `yaml:"reps"`
	Steps       []BreathStep `yaml:"steps"`
}

// Guided reports whether the style has a structured technique that can be walked step by step.
func (b BreathingStyle) Guided() bool {
	return b.Reps > 0 && len(b.Steps) > 0
}

type Realm struct {
	Name           string `yaml:"name"`
	MinLevel       int    `yaml:"min_level"`
	MaxLevel       int    `yaml:"max_level"`
	Theme          string `yaml:"theme"`
	BreathingStyle string `yaml:"breathing_style"`
	Enemies        string `yaml:"enemies"`
	EliteDemon     string `yaml:"elite_demon"`
	Boss           string `yaml:"boss"`
}

type ShopItem struct {
	ID               string `yaml:"id"`
	Name             string `yaml:"name"`
	Description      string `yaml:"description"`
	CostPerPoint     int    `yaml:"cost_per_point"`
	PromptSuggestion string `yaml:"prompt_suggestion"`
}

type AbilityLevel struct {
	Level       int      `yaml:"level"`
	Title       string   `yaml:"title"`
	Description string   `yaml:"description"`
	Skills      []string `yaml:"skills"`
}

type Ability struct {
	ID         string         `yaml:"id"`
	Name       string         `yaml:"name"`
	Category   Category       `yaml:"category"`
	XPPerLevel int            `yaml:"xp_per_level"`
	Question   string         `yaml:"question"`
	Levels     []AbilityLevel `yaml:"levels"`
}

// MaxLevel is the highest ability level described by the lore.
func (a Ability) MaxLevel() int {
	max := 1
	for _, l := range a.Levels {
		if l.Level > max {
			max = l.Level
		}
	}
	return max
}

type Kazuki struct {
	Name           string   `yaml:"name"`
	Title          string   `yaml:"title"`
	Domain         string   `yaml:"domain"`
	Description    string   `yaml:"description"`
	Strengths      []string `yaml:"strengths"`
	Weaknesses     []string `yaml:"weaknesses"`
	EncounterLevel int      `yaml:"encounter_level"`
	BasePower      int      `yaml:"base_power"`
	PowerVariance  int      `yaml:"power_variance"`
}

type Achievement struct {
	ID          string `yaml:"id"`
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
	// Unlock is a CEL expression evaluated against the player's progress.
	Unlock string `yaml:"unlock"`
}

type MissionTemplate struct {
	Title       string     `yaml:"title"`
	Description string     `yaml:"description"`
	Category    Category   `yaml:"category"`
	Difficulty  Difficulty `yaml:"difficulty"`
}

type JourneyDay struct {
	Day         int               `yaml:"day"`
	Title       string            `yaml:"title"`
	Realm       string            `yaml:"realm"`
	XP          int               `yaml:"xp"`
	BreathStyle string            `yaml:"breath_style"`
	KazukiWatch string            `yaml:"kazuki_watch"`
	Missions    []MissionTemplate `yaml:"missions"`
}

// Catalog is the read-only content of the game.
type Catalog struct {
	LevelTitles     map[int]string    `yaml:"level_titles"`
	BreathingStyles []BreathingStyle  `yaml:"breathing_styles"`
	Realms          []Realm           `yaml:"realms"`
	ShopItems       []ShopItem        `yaml:"shop_items"`
	Abilities       []Ability         `yaml:"abilities"`
	Kazuki          []Kazuki          `yaml:"kazuki"`
	Achievements    []Achievement     `yaml:"achievements"`
	Journey         []JourneyDay      `yaml:"journey"`
	Fallbacks       []MissionTemplate `yaml:"fallbacks"`
}

var (
	defaultOnce sync.Once
	defaultCat  *Catalog
	defaultErr  error
)

// Default returns the embedded catalog. It panics if the embedded content is invalid.
func Default() *Catalog {
	defaultOnce.Do(func() {
		defaultCat, defaultErr = Load(embeddedContent)
	})
	if defaultErr != nil {
		panic(fmt.Sprintf("catalog: embedded content: %v", defaultErr))
	}
	return defaultCat
}

// LoadFile reads a catalog from a YAML file on disk.
func LoadFile(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog %s: %w", path, err)
	}
	return Load(data)
}

func Load(data []byte) (*Catalog, error) {
	var c Catalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	sort.Slice(c.BreathingStyles, func(i, j int) bool { return c.BreathingStyles[i].UnlockLevel < c.BreathingStyles[j].UnlockLevel })
	sort.Slice(c.Kazuki, func(i, j int) bool { return c.Kazuki[i].EncounterLevel < c.Kazuki[j].EncounterLevel })
	sort.Slice(c.Journey, func(i, j int) bool { return c.Journey[i].Day < c.Journey[j].Day })
	return &c, nil
}

// Validate returns every problem found, joined.
func (c *Catalog) Validate() error {
	var errs []error
	seen := map[Category]bool{}
	for _, f := range c.Fallbacks {
		if !f.Category.IsValid() {
			errs = append(errs, fmt.Errorf("fallback %q: invalid category %q", f.Title, f.Category))
			continue
		}
		if f.Title == "" || f.Description == "" {
			errs = append(errs, fmt.Errorf("fallback for %s: title and description are required", f.Category))
		}
		seen[f.Category] = true
	}
	for _, cat := range Categories {
		if !seen[cat] {
			errs = append(errs, fmt.Errorf("missing fallback mission for %s", cat))
		}
	}
	for _, d := range c.Journey {
		if d.Day < 1 || d.XP <= 0 {
			errs = append(errs, fmt.Errorf("journey day %d: day and xp must be positive", d.Day))
		}
		for _, m := range d.Missions {
			if !m.Category.IsValid() {
				errs = append(errs, fmt.Errorf("journey day %d mission %q: invalid category %q", d.Day, m.Title, m.Category))
			}
			if m.Difficulty != "" && !m.Difficulty.IsValid() {
				errs = append(errs, fmt.Errorf("journey day %d mission %q: invalid difficulty %q", d.Day, m.Title, m.Difficulty))
			}
		}
	}
	ids := map[string]bool{}
	for _, a := range c.Achievements {
		if a.ID == "" || a.Unlock == "" {
			errs = append(errs, fmt.Errorf("achievement %q: id and unlock are required", a.ID))
		}
		if ids[a.ID] {
			errs = append(errs, fmt.Errorf("duplicate achievement id %q", a.ID))
		}
		ids[a.ID] = true
	}
	for _, k := range c.Kazuki {
		if k.Name == "" || k.BasePower <= 0 {
			errs = append(errs, fmt.Errorf("kazuki %q: name and positive base_power are required", k.Name))
		}
	}
	for _, a := range c.Abilities {
		if a.XPPerLevel <= 0 {
			errs = append(errs, fmt.Errorf("ability %q: xp_per_level must be positive", a.ID))
		}
	}
	return errors.Join(errs...)
}

// JourneyFor returns the pregenerated entry for a day, if one exists.
func (c *Catalog) JourneyFor(day int) (JourneyDay, bool) {
	for _, d := range c.Journey {
		if d.Day == day {
			return d, true
		}
	}
	return JourneyDay{}, false
}

func (c *Catalog) LevelTitle(level int) string {
	if t, ok := c.LevelTitles[level]; ok {
		return t
	}
	return fmt.Sprintf("Level %d", level)
}

func (c *Catalog) RealmFor(level int) (Realm, bool) {
	for _, r := range c.Realms {
		if level >= r.MinLevel && level <= r.MaxLevel {
			return r, true
		}
	}
	return Realm{}, false
}

// UnlockedBreathingStyles returns the styles available at level, lowest unlock first.
func (c *Catalog) UnlockedBreathingStyles(level int) []BreathingStyle {
	var out []BreathingStyle
	for _, b := range c.BreathingStyles {
		if level >= b.UnlockLevel {
			out = append(out, b)
		}
	}
	return out
}

func (c *Catalog) BreathingUnlockLevels() []int {
	out := make([]int, 0, len(c.BreathingStyles))
	for _, b := range c.BreathingStyles {
		out = append(out, b.UnlockLevel)
	}
	return out
}

func (c *Catalog) BreathingStyle(name string) (BreathingStyle, bool) {
	for _, b := range c.BreathingStyles {
		if strings.EqualFold(b.Name, strings.TrimSpace(name)) {
			return b, true
		}
	}
	return BreathingStyle{}, false
}

func (c *Catalog) ShopItem(id string) (ShopItem, bool) {
	for _, s := range c.ShopItems {
		if strings.EqualFold(s.ID, strings.TrimSpace(id)) {
			return s, true
		}
	}
	return ShopItem{}, false
}

func (c *Catalog) Ability(id string) (Ability, bool) {
	for _, a := range c.Abilities {
		if strings.EqualFold(a.ID, strings.TrimSpace(id)) {
			return a, true
		}
	}
	return Ability{}, false
}

// AbilityForCategory returns the ability trained by missions of a category.
func (c *Catalog) AbilityForCategory(cat Category) (Ability, bool) {
	for _, a := range c.Abilities {
		if a.Category == cat {
			return a, true
		}
	}
	return Ability{}, false
}

func (c *Catalog) KazukiByName(name string) (Kazuki, bool) {
	for _, k := range c.Kazuki {
		if strings.EqualFold(k.Name, strings.TrimSpace(name)) {
			return k, true
		}
	}
	return Kazuki{}, false
}

// FallbackFor returns the static mission used when generation fails for a category.
func (c *Catalog) FallbackFor(cat Category) MissionTemplate {
	for _, f := range c.Fallbacks {
		if f.Category == cat {
			return f
		}
	}
	return MissionTemplate{
		Title:       "Mindful Pause",
		Description: "Take five slow breaths and name one intention for today.",
		Category:    cat,
		Difficulty:  DifficultyEasy,
	}
}
