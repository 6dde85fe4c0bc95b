package hud

// State is the single resolved condition that governs visibility rules.
// Values are declared in priority order, highest first, after the None sentinel.
type State int

const (
	// None means "no selection" and is never a resolved state
	None State = iota
	Combat
	Duty
	Crafting
	Gathering
	ChatFocus
	UserFocus
	HasEnemyTarget
	HasPlayerTarget
	HasNPCTarget
	Idle

	stateCount
)

var stateNames = [stateCount]string{
	None:            "None",
	Combat:          "Combat",
	Duty:            "Duty",
	Crafting:        "Crafting",
	Gathering:       "Gathering",
	ChatFocus:       "ChatFocus",
	UserFocus:       "UserFocus",
	HasEnemyTarget:  "HasEnemyTarget",
	HasPlayerTarget: "HasPlayerTarget",
	HasNPCTarget:    "HasNPCTarget",
	Idle:            "Idle",
}

var stateTooltips = [stateCount]string{
	None:            "No tooltip",
	Combat:          "In combat",
	Duty:            "In instanced duty",
	Crafting:        "Crafting an item",
	Gathering:       "Gathering a node",
	ChatFocus:       "When typing a message in chat",
	UserFocus:       "Focus button pressed",
	HasEnemyTarget:  "Targeting an enemy",
	HasPlayerTarget: "Targeting a player",
	HasNPCTarget:    "Targeting a NPC",
	Idle:            "When other conditions are not active",
}

func (s State) String() string {
	if s < 0 || s >= stateCount {
		return "None"
	}

	return stateNames[s]
}

// Resolvable reports whether s can be the outcome of state resolution
func (s State) Resolvable() bool {
	return s > None && s < stateCount
}

// Tooltip describes the condition that produces s
func (s State) Tooltip() string {
	if s < 0 || s >= stateCount {
		return stateTooltips[None]
	}

	return stateTooltips[s]
}

// ResolvableStates returns every state except None, highest priority first
func ResolvableStates() []State {
	out := make([]State, 0, stateCount-1)
	for s := None + 1; s < stateCount; s++ {
		out = append(out, s)
	}

	return out
}

// ParseState looks a state up by name, ignoring case. None is rejected.
func ParseState(name string) (State, error) {
	i, err := lookup("state", name, stateNames[1:])
	if err != nil {
		return None, err
	}

	return State(i + 1), nil
}

// TargetKind is the category of the player's current target
type TargetKind int

const (
	NoTarget TargetKind = iota
	EnemyTarget
	PlayerTarget
	NPCTarget
)

var targetNames = []string{"None", "Enemy", "Player", "NPC"}

func (t TargetKind) String() string {
	if t < 0 || int(t) >= len(targetNames) {
		return "None"
	}

	return targetNames[t]
}

// State maps a target kind onto the matching target state, or None for no target
func (t TargetKind) State() State {
	switch t {
	case EnemyTarget:
		return HasEnemyTarget
	case PlayerTarget:
		return HasPlayerTarget
	case NPCTarget:
		return HasNPCTarget
	}

	return None
}

// ParseTargetKind looks a target kind up by name. The empty string means no target.
func ParseTargetKind(name string) (TargetKind, error) {
	if name == "" {
		return NoTarget, nil
	}

	i, err := lookup("target kind", name, targetNames)
	if err != nil {
		return NoTarget, err
	}

	return TargetKind(i), nil
}

// MarshalText encodes the target kind by name
func (t TargetKind) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// UnmarshalText decodes a target kind name
func (t *TargetKind) UnmarshalText(b []byte) error {
	k, err := ParseTargetKind(string(b))
	if err != nil {
		return err
	}

	*t = k
	return nil
}

// Conditions is one snapshot of the raw game condition flags
type Conditions struct {
	InCombat         bool       `json:"in_combat" yaml:"in_combat" toml:"in_combat"`
	InDuty           bool       `json:"in_duty" yaml:"in_duty" toml:"in_duty"`
	IsCrafting       bool       `json:"is_crafting" yaml:"is_crafting" toml:"is_crafting"`
	IsGathering      bool       `json:"is_gathering" yaml:"is_gathering" toml:"is_gathering"`
	ChatHasFocus     bool       `json:"chat_has_focus" yaml:"chat_has_focus" toml:"chat_has_focus"`
	UserFocusPressed bool       `json:"user_focus_pressed" yaml:"user_focus_pressed" toml:"user_focus_pressed"`
	HotbarsUnlocked  bool       `json:"hotbars_unlocked" yaml:"hotbars_unlocked" toml:"hotbars_unlocked"`
	Target           TargetKind `json:"target" yaml:"target" toml:"target"`
}
