package classify

import "github.com/ppiankov/riskline/internal/model"

// DefaultTables returns the built-in keyword tables. Order is significant:
// more specific systems and spaces come first.
func DefaultTables() model.ClassificationTables {
	return model.ClassificationTables{
		System: []model.KeywordRule{
			{Keywords: []string{"SOLAR", "PV", "INVERTER"}, Value: "solar"},
			{Keywords: []string{"EV_CHARGER"}, Value: "ev_charging"},
			{Keywords: []string{"SMOKE", "ALARM", "FIRE"}, Value: "fire_safety"},
			{Keywords: []string{"ASBESTOS"}, Value: "hazardous_materials"},
			{Keywords: []string{"RCD", "SWITCHBOARD", "BOARD", "CIRCUIT", "WIRING", "EARTH", "FUSE", "CONDUCTOR", "GPO", "POWER_POINT", "THERMAL", "DEMAND", "MAIN_SWITCH"}, Value: "electrical"},
		},
		Space: []model.KeywordRule{
			{Keywords: []string{"SWITCHBOARD", "BOARD", "MAIN_SWITCH", "FUSE", "RCD"}, Value: "switchboard"},
			{Keywords: []string{"SOLAR", "PV", "ROOF"}, Value: "roof"},
			{Keywords: []string{"EV_CHARGER", "OUTDOOR", "EXTERIOR", "GARAGE"}, Value: "exterior"},
			{Keywords: []string{"SMOKE", "HALLWAY", "BEDROOM"}, Value: "living_areas"},
			{Keywords: []string{"EARTH"}, Value: "sub_floor"},
		},
		Tags: []model.KeywordRule{
			{Keywords: []string{"RCD", "EXPOSED", "EARTH", "SMOKE", "HOTSPOT"}, Value: "safety"},
			{Keywords: []string{"RCD", "SMOKE", "COMPLIANCE", "CERTIFICATE", "UNLABELLED"}, Value: "compliance"},
			{Keywords: []string{"CAPACITY", "DEMAND", "SPARE"}, Value: "capacity"},
			{Keywords: []string{"ASBESTOS"}, Value: "hazardous_material"},
			{Keywords: []string{"AGED", "EXPIRED", "OLD", "VIR"}, Value: "end_of_life"},
			{Keywords: []string{"THERMAL", "HOTSPOT"}, Value: "thermal"},
		},
	}
}
