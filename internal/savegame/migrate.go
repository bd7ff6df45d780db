package savegame

import (
	"errors"
	"fmt"
	"strings"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"

	"github.com/Libretto-Pic/the-sage-game/internal/engine"
)

// CurrentVersion is the version Migrate produces.
const CurrentVersion = engine.StateVersion

var ErrUnsupportedVersion = errors.New("save was written by a newer version")

// DetectVersion reads the shape of a raw save. Saves written before the version
// field existed are recognized by the fields they carry.
func DetectVersion(data []byte) int {
	if v := gjson.GetBytes(data, "version"); v.Type == gjson.Number {
		return int(v.Int())
	}
	if gjson.GetBytes(data, "powerPoints").Exists() {
		return 2
	}
	if gjson.GetBytes(data, "completedMissionHistory").Exists() {
		return 1
	}
	return 0
}

// step upgrades a save from version n to n+1.
type step func(m *Migrator, data []byte) ([]byte, error)

var steps = []step{
	(*Migrator).v0ToV1,
	(*Migrator).v1ToV2,
	(*Migrator).v2ToV3,
}

// Migrator upgrades raw saves. KazukiNames are used to recover which boss an old
// trial mission belongs to from its title.
type Migrator struct {
	KazukiNames []string
}

// Migrate runs every step from the detected version up to CurrentVersion.
func (m *Migrator) Migrate(data []byte) ([]byte, error) {
	from := DetectVersion(data)
	if from > CurrentVersion {
		return nil, fmt.Errorf("%w: version %d", ErrUnsupportedVersion, from)
	}
	if from < 0 {
		from = 0
	}
	var err error
	for v := from; v < CurrentVersion; v++ {
		data, err = steps[v](m, data)
		if err != nil {
			return nil, fmt.Errorf("migrate v%d to v%d: %w", v, v+1, err)
		}
	}
	return data, nil
}

// setDefault writes value at path only when nothing is there yet.
func setDefault(data []byte, path string, value any) ([]byte, error) {
	if gjson.GetBytes(data, path).Exists() {
		return data, nil
	}
	return sjson.SetBytes(data, path, value)
}

func setDefaults(data []byte, defaults []kv) ([]byte, error) {
	var err error
	for _, d := range defaults {
		if data, err = setDefault(data, d.path, d.value); err != nil {
			return nil, err
		}
	}
	return data, nil
}

type kv struct {
	path  string
	value any
}

// v0ToV1 adds rituals, mission history, achievements and reading progress.
func (m *Migrator) v0ToV1(data []byte) ([]byte, error) {
	data, err := setDefaults(data, []kv{
		{"recurringMissions", []any{}},
		{"completedMissionHistory", []any{}},
		{"unlockedAchievements", []any{}},
		{"journalEntries", []any{}},
		{"missions", []any{}},
		{"readingProgress", 0},
	})
	if err != nil {
		return nil, err
	}
	return sjson.SetBytes(data, "version", 1)
}

// v1ToV2 adds currencies, the multiplier, Kazuki bookkeeping and abilities.
func (m *Migrator) v1ToV2(data []byte) ([]byte, error) {
	data, err := setDefaults(data, []kv{
		{"powerPoints", 0},
		{"xpMultiplier", 1.0},
		{"consecutiveDaysFailed", 0},
		{"controlledKazuki", []any{}},
		{"boostedKazuki", map[string]any{}},
		{"permanentStats", map[string]any{}},
		{"pendingActivations", []any{}},
		{"abilityLevels", map[string]any{}},
		{"abilityXp", map[string]any{}},
		{"currentTests", map[string]any{}},
		{"onDemandMissionsGeneratedToday", 0},
	})
	if err != nil {
		return nil, err
	}
	for i, r := range gjson.GetBytes(data, "recurringMissions").Array() {
		if !r.Get("xp").Exists() {
			if data, err = sjson.SetBytes(data, fmt.Sprintf("recurringMissions.%d.xp", i), engine.DefaultRitualXP); err != nil {
				return nil, err
			}
		}
	}
	return sjson.SetBytes(data, "version", 2)
}

// v2ToV3 replaces the boss, trial and activation flags on missions with a tagged kind.
func (m *Migrator) v2ToV3(data []byte) ([]byte, error) {
	var err error
	missions := gjson.GetBytes(data, "missions").Array()
	for i, ms := range missions {
		base := fmt.Sprintf("missions.%d", i)
		kind := m.kindOf(ms)
		if data, err = sjson.SetBytes(data, base+".kind", kind); err != nil {
			return nil, err
		}
		for _, flag := range []string{"isBossMission", "isTrialMission", "isActivationMission", "activationId", "kazukiName"} {
			if data, err = sjson.DeleteBytes(data, base+"."+flag); err != nil {
				return nil, err
			}
		}
	}
	started := gjson.GetBytes(data, "day").Int() > 1 || len(missions) > 0
	data, err = setDefaults(data, []kv{
		{"kazukiPower", map[string]any{}},
		{"started", started},
		{"dailyBonusClaimed", false},
	})
	if err != nil {
		return nil, err
	}
	return sjson.SetBytes(data, "version", 3)
}

func (m *Migrator) kindOf(ms gjson.Result) engine.Kind {
	switch {
	case ms.Get("isActivationMission").Bool():
		return engine.Activation(ms.Get("activationId").String())
	case ms.Get("isBossMission").Bool():
		return engine.Boss(m.bossName(ms))
	case ms.Get("isTrialMission").Bool():
		return engine.Trial(m.bossName(ms))
	default:
		return engine.Ordinary()
	}
}

func (m *Migrator) bossName(ms gjson.Result) string {
	if n := ms.Get("kazukiName").String(); n != "" {
		return n
	}
	title := strings.ToLower(ms.Get("title").String())
	for _, n := range m.KazukiNames {
		if strings.Contains(title, strings.ToLower(n)) {
			return n
		}
	}
	return ""
}
