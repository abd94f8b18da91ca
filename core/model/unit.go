package model

// UnitState describes the availability of a selectable unit on the mission
// page. The numeric FMS codes of the game map onto these states.
type UnitState int

const (
	UnitAvailable    UnitState = iota // FMS 2, crewed and ready at station
	UnitAtStation                     // any other FMS code, listed but not ready
	UnitEnRoute                       // FMS 3, driving to a mission
	UnitOnScene                       // FMS 4, arrived at a mission
	UnitOutOfService                  // FMS 6, no crew
)

// StatusOutOfService is the FMS code submitted when a unit is taken out of
// service after a personnel shortage.
const StatusOutOfService = 6

// UnitStateFromFMS maps the vehicle_state checkbox attribute onto a
// UnitState. Only FMS 2 yields a dispatchable unit.
func UnitStateFromFMS(code string) UnitState {
	switch code {
	case "2":
		return UnitAvailable
	case "3":
		return UnitEnRoute
	case "4":
		return UnitOnScene
	case "6":
		return UnitOutOfService
	default:
		return UnitAtStation
	}
}

// SelectableUnit is one concrete vehicle choice on the live mission page.
// The handle is valid only for the page render it was scanned from and must
// be re-acquired after any action that reloads the unit list.
type SelectableUnit struct {
	ID       string
	Name     string
	Tags     map[string]bool // attribute tags satisfied by this unit
	State    UnitState
	Selected bool
}

// HasTag reports whether the unit carries the attribute tag.
func (u SelectableUnit) HasTag(tag string) bool { return u.Tags[tag] }

// Dispatchable reports whether the unit can still be committed.
func (u SelectableUnit) Dispatchable() bool {
	return !u.Selected && u.State == UnitAvailable
}
