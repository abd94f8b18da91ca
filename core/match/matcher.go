// Package match maps canonical vehicle categories onto the attribute tags
// carried by the selectable units on the mission page.
package match

import (
	"strings"

	"github.com/RoMaSystems-source/Leitstellenspiel-bot/core/model"
)

// attributes lists, per category, the checkbox attribute tags that mark a
// unit as satisfying that category. The tag names mirror the page markup.
var attributes = map[model.Category][]string{
	model.CatLF:    {"lf_only", "hlf_only", "fire"},
	model.CatDLK:   {"dlk"},
	model.CatRW:    {"rw", "ab_ruest_rw"},
	model.CatELW:   {"elw", "kdow_elw", "elw_or_battalion_chief_vehicle"},
	model.CatGWA:   {"gw_a", "gwa"},
	model.CatTLF:   {"tlf"},
	model.CatRTW:   {"rtw", "ambulance"},
	model.CatNEF:   {"nef"},
	model.CatKTW:   {"ktw", "patient_transport"},
	model.CatRTH:   {"rth"},
	model.CatFuStW: {"fustw", "fustw_or_police_motorcycle"},
	model.CatGefKw: {"gefkw"},
	model.CatFwK:   {"fwk"},
	model.CatK9:    {"k9"},
}

// fallbacks names the substitute category used once the primary category's
// candidates are exhausted. At most one hop, no chains.
var fallbacks = map[model.Category]model.Category{
	model.CatKTW: model.CatRTW,
}

// AttributesFor returns the attribute tags matching a category. Categories
// without a table entry fall back to their lowercased label, matching how the
// page names single-purpose tags.
func AttributesFor(c model.Category) []string {
	if tags, ok := attributes[c]; ok {
		return tags
	}
	return []string{strings.ToLower(string(c))}
}

// FallbackFor returns the substitute category, if any.
func FallbackFor(c model.Category) (model.Category, bool) {
	fb, ok := fallbacks[c]
	return fb, ok
}

// UnitMatches reports whether the unit satisfies the category.
func UnitMatches(u model.SelectableUnit, c model.Category) bool {
	for _, tag := range AttributesFor(c) {
		if u.HasTag(tag) {
			return true
		}
	}
	return false
}
