// Package hud defines the HUD elements, resolved states and visibility rules
// shared by the resolution engine and the settings store.
package hud

// ElementID identifies a HUD element that can be shown or hidden on its own
type ElementID int

const (
	Hotbar1 ElementID = iota
	Hotbar2
	Hotbar3
	Hotbar4
	Hotbar5
	Hotbar6
	Hotbar7
	Hotbar8
	Hotbar9
	Hotbar10
	CrossHotbar
	PetHotbar
	ContextActionHotbar
	Job
	CastBar
	ExperienceBar
	InventoryGrid
	Currency
	ScenarioGuide
	QuestLog
	MainMenu
	Chat
	Minimap
	Nameplates
	TargetInfo
	PartyList
	LimitBreak
	Parameters
	Status
	StatusEnfeeblements
	StatusEnhancements
	StatusOther
	Unknown

	elementCount
)

var elementNames = [elementCount]string{
	Hotbar1:             "Hotbar1",
	Hotbar2:             "Hotbar2",
	Hotbar3:             "Hotbar3",
	Hotbar4:             "Hotbar4",
	Hotbar5:             "Hotbar5",
	Hotbar6:             "Hotbar6",
	Hotbar7:             "Hotbar7",
	Hotbar8:             "Hotbar8",
	Hotbar9:             "Hotbar9",
	Hotbar10:            "Hotbar10",
	CrossHotbar:         "CrossHotbar",
	PetHotbar:           "PetHotbar",
	ContextActionHotbar: "ContextActionHotbar",
	Job:                 "Job",
	CastBar:             "CastBar",
	ExperienceBar:       "ExperienceBar",
	InventoryGrid:       "InventoryGrid",
	Currency:            "Currency",
	ScenarioGuide:       "ScenarioGuide",
	QuestLog:            "QuestLog",
	MainMenu:            "MainMenu",
	Chat:                "Chat",
	Minimap:             "Minimap",
	Nameplates:          "Nameplates",
	TargetInfo:          "TargetInfo",
	PartyList:           "PartyList",
	LimitBreak:          "LimitBreak",
	Parameters:          "Parameters",
	Status:              "Status",
	StatusEnfeeblements: "StatusEnfeeblements",
	StatusEnhancements:  "StatusEnhancements",
	StatusOther:         "StatusOther",
	Unknown:             "Unknown",
}

var elementTooltips = map[ElementID]string{
	Chat:                "Should be always visible if focused, albeit feature can be buggy with some configurations",
	Job:                 "Job-specific UI",
	Status:              "Player status (when not split into 3 separate elements)",
	StatusEnfeeblements: "Player enfeeblements (when split into 3 separate elements)",
	StatusEnhancements:  "Player enhancements (when split into 3 separate elements)",
	StatusOther:         "Player other status (when split into 3 separate elements)",
}

// String returns the element name used in config files and on the command line
func (e ElementID) String() string {
	if !e.Valid() {
		return "Unknown"
	}

	return elementNames[e]
}

// Valid reports whether e is a declared element
func (e ElementID) Valid() bool {
	return e >= 0 && e < elementCount
}

// Ignored reports whether the element is excluded from the rule matrix.
// Ignored elements are never handed to a visibility driver.
func (e ElementID) Ignored() bool {
	switch e {
	case QuestLog, Nameplates, Unknown:
		return true
	}

	return !e.Valid()
}

// Tooltip returns a short description of the element, or "" when there is none
func (e ElementID) Tooltip() string {
	return elementTooltips[e]
}

// TrackedElements returns every non-ignored element in declaration order
func TrackedElements() []ElementID {
	out := make([]ElementID, 0, elementCount)
	for e := ElementID(0); e < elementCount; e++ {
		if !e.Ignored() {
			out = append(out, e)
		}
	}

	return out
}

// ParseElement looks an element up by name, ignoring case
func ParseElement(name string) (ElementID, error) {
	names := elementNames[:]
	i, err := lookup("element", name, names)
	if err != nil {
		return Unknown, err
	}

	return ElementID(i), nil
}
