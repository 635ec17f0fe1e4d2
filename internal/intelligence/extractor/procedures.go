package extractor

import (
	"strings"

	"github.com/turtacn/chemsafe/internal/domain/chemical"
)

// StepBullet prefixes every extracted procedure step.
const StepBullet = "• "

// ProcedureCategory maps one procedure property to its display category.
type ProcedureCategory struct {
	ID       string
	Category string
	Keys     []string
}

// Procedure category identifiers.
const (
	ProcEye               = "eye"
	ProcIngestion         = "ingestion"
	ProcInhalation        = "inhalation"
	ProcInhalationSerious = "inhalation_serious"
	ProcSkin              = "skin"
	ProcSkinSerious       = "skin_serious"
	ProcFirstAidGeneral   = "first_aid_general"
	ProcSmallSpill        = "small_spill"
	ProcLargeSpill        = "large_spill"
	ProcSmallFire         = "small_fire"
	ProcLargeFire         = "large_fire"
	ProcAccidentGeneral   = "accident_general"
)

// ProcedureCategories lists every procedure category in declaration order,
// which is the output order when no filter is given.
var ProcedureCategories = []ProcedureCategory{
	{ID: ProcEye, Category: "Eye Contact", Keys: conceptKeys("hasFirstAidEye")},
	{ID: ProcIngestion, Category: "Ingestion", Keys: conceptKeys("hasFirstAidIngestion")},
	{ID: ProcInhalation, Category: "Inhalation", Keys: conceptKeys("hasFirstAidInhalation")},
	{ID: ProcInhalationSerious, Category: "Inhalation (Serious)", Keys: conceptKeys("hasFirstAidInhalationSerious")},
	{ID: ProcSkin, Category: "Skin Contact", Keys: conceptKeys("hasFirstAidSkin")},
	{ID: ProcSkinSerious, Category: "Skin Contact (Serious)", Keys: conceptKeys("hasFirstAidSkinSerious")},
	{ID: ProcFirstAidGeneral, Category: "General First Aid", Keys: conceptKeys("hasFirstAidGeneral")},
	{ID: ProcSmallSpill, Category: "Small Spill", Keys: conceptKeys("hasSmallSpill")},
	{ID: ProcLargeSpill, Category: "Large Spill", Keys: conceptKeys("hasLargeSpill")},
	{ID: ProcSmallFire, Category: "Small Fire", Keys: conceptKeys("hasSmallFire")},
	{ID: ProcLargeFire, Category: "Large Fire", Keys: conceptKeys("hasLargeFire")},
	{ID: ProcAccidentGeneral, Category: "General Accident Procedures", Keys: conceptKeys("hasAccidentalGeneral")},
}

// EmergencyFilters maps an emergency type to the categories it shows, in
// display order.
var EmergencyFilters = []struct {
	Type       string
	Categories []string
}{
	{Type: "FirstAid", Categories: []string{ProcEye, ProcSkin, ProcSkinSerious, ProcInhalation, ProcInhalationSerious, ProcIngestion, ProcFirstAidGeneral}},
	{Type: "Spill", Categories: []string{ProcSmallSpill, ProcLargeSpill, ProcAccidentGeneral}},
	{Type: "Fire", Categories: []string{ProcSmallFire, ProcLargeFire}},
	{Type: "Eye", Categories: []string{ProcEye}},
	{Type: "Skin", Categories: []string{ProcSkin, ProcSkinSerious}},
	{Type: "Inhalation", Categories: []string{ProcInhalation, ProcInhalationSerious}},
	{Type: "Ingestion", Categories: []string{ProcIngestion}},
}

// generalAccidentSteps replaces whatever the graph holds for the general
// accident category. "Absorb with Inert Dry Material" appears twice.
var generalAccidentSteps = []string{
	"• Evacuate the Danger Area",
	"• Eliminate All Ignition Sources",
	"• Ventilate the Area",
	"• Wear Appropriate Personal Protective Equipment",
	"• Stop the Leak if It Can Be Done Without Risk",
	"• Absorb with Inert Dry Material",
	"• Prevent Entry into Waterways, Sewers, or Confined Areas",
	"• Absorb with Inert Dry Material",
	"• Use Clean Non-Sparking Tools to Collect Material",
	"• Place in Suitable Closed Containers for Disposal",
	"• Wash the Spill Area with Soap and Water",
	"• Dispose of Waste According to Local Regulations",
	"• Notify Emergency Response Personnel",
}

// GeneralAccidentSteps returns a copy of the fixed general accident steps.
func GeneralAccidentSteps() []string {
	return append([]string(nil), generalAccidentSteps...)
}

var categoryByID = func() map[string]ProcedureCategory {
	m := make(map[string]ProcedureCategory, len(ProcedureCategories))
	for _, c := range ProcedureCategories {
		m[c.ID] = c
	}
	return m
}()

// EmergencyTypes returns the accepted filter names in table order.
func EmergencyTypes() []string {
	out := make([]string, 0, len(EmergencyFilters))
	for _, f := range EmergencyFilters {
		out = append(out, f.Type)
	}
	return out
}

// IsEmergencyType reports whether filter names a row of EmergencyFilters,
// ignoring case.
func IsEmergencyType(filter string) bool {
	_, ok := filterCategories(filter)
	return ok
}

func filterCategories(filter string) ([]ProcedureCategory, bool) {
	for _, f := range EmergencyFilters {
		if !strings.EqualFold(f.Type, strings.TrimSpace(filter)) {
			continue
		}
		cats := make([]ProcedureCategory, 0, len(f.Categories))
		for _, id := range f.Categories {
			cats = append(cats, categoryByID[id])
		}
		return cats, true
	}
	return nil, false
}

// ExtractProcedures builds the procedure groups of an entity's data. With an
// empty filter every category is scanned in declaration order; otherwise
// only the filter's categories, in filter-table order. An unknown filter
// yields no groups.
func ExtractProcedures(data map[string]chemical.PropertyValue, emergencyTypeFilter string) []chemical.StepGroup {
	categories := ProcedureCategories
	if strings.TrimSpace(emergencyTypeFilter) != "" {
		var ok bool
		if categories, ok = filterCategories(emergencyTypeFilter); !ok {
			return []chemical.StepGroup{}
		}
	}

	groups := make([]chemical.StepGroup, 0, len(categories))
	for _, c := range categories {
		v, ok := lookup(data, c.Keys)
		if !ok {
			continue
		}
		if c.ID == ProcAccidentGeneral {
			groups = append(groups, chemical.StepGroup{Category: c.Category, Steps: GeneralAccidentSteps()})
			continue
		}
		items := ResolveList(v)
		if len(items) == 0 {
			continue
		}
		steps := make([]string, len(items))
		for i, s := range items {
			steps[i] = StepBullet + s
		}
		groups = append(groups, chemical.StepGroup{Category: c.Category, Steps: steps})
	}
	return groups
}
