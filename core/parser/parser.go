// Package parser extracts vehicle requirement profiles from the free-text
// missing-unit descriptions the game renders, e.g. "2 Löschfahrzeuge, 1 RTW".
package parser

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/RoMaSystems-source/Leitstellenspiel-bot/core/model"
)

// rule binds a category to the pattern matching its synonym tokens with an
// optional leading count ("2 RTW", "2x RTW", "Rettungswagen").
type rule struct {
	cat model.Category
	re  *regexp.Regexp
}

func pattern(alts string) *regexp.Regexp {
	return regexp.MustCompile(`(?i)(?:(\d+)\s*(?:x\s*)?)?\b(?:` + alts + `)\b`)
}

// The table is ordered qualified-before-generic: RE2 has no negative
// lookahead, so each match claims its span and later rules skip anything a
// more specific rule already consumed (a bare "GW" must not absorb "GW-A",
// nor "LF" the tail of "TLF").
var rules = []rule{
	{model.CatGWA, pattern(`GW-A|GW\s+A`)},
	{model.CatGWL, pattern(`GW-L|GW\s+L`)},
	{model.CatGWOel, pattern(`GW-Öl|GW\s+Öl`)},
	{model.CatGWMess, pattern(`GW-Mess|GW\s+Mess`)},
	{model.CatTLF, pattern(`Tanklöschfahrzeuge?|TLF`)},
	{model.CatDLK, pattern(`Drehleitern?|DLK`)},
	{model.CatRTH, pattern(`Rettungshubschrauber|RTH`)},
	{model.CatITW, pattern(`Intensivtransportwagen|ITW`)},
	{model.CatNAW, pattern(`Notarztwagen|NAW`)},
	{model.CatKTW, pattern(`Krankentransportwagen|KTW`)},
	{model.CatNEF, pattern(`Notarzteinsatzfahrzeuge?|NEF`)},
	{model.CatRTW, pattern(`Rettungswagen|RTW`)},
	{model.CatELW, pattern(`Einsatzleitwagen|ELW`)},
	{model.CatMTW, pattern(`Mannschaftstransportwagen|MTW`)},
	{model.CatFuStW, pattern(`Funkstreifenwagen|FuStW|Polizeimotorräder|Polizeimotorrad`)},
	{model.CatGefKw, pattern(`Gefangenenkraftwagen|GefKw`)},
	{model.CatFwK, pattern(`Feuerwehrkran|FwK`)},
	{model.CatSW, pattern(`Schlauchwagen|SW`)},
	{model.CatLF, pattern(`Löschfahrzeuge?|LF`)},
	{model.CatRW, pattern(`Rüstwagen|RW`)},
	{model.CatGW, pattern(`Gerätewagen|GW`)},
}

// Parse extracts a requirement profile from free text. Empty or absent input
// yields an empty profile; a category listed more than once has its counts
// summed; a token without a leading count counts as one unit.
func Parse(text string) model.Profile {
	profile := model.NewProfile()
	if strings.TrimSpace(text) == "" {
		return profile
	}
	var claimed [][2]int
	for _, r := range rules {
		matches := r.re.FindAllStringSubmatchIndex(text, -1)
		total := 0
		for _, m := range matches {
			start, end := m[0], m[1]
			if overlaps(claimed, start, end) {
				continue
			}
			n := 1
			if m[2] >= 0 {
				if v, err := strconv.Atoi(text[m[2]:m[3]]); err == nil {
					n = v
				}
			}
			if n < 1 {
				continue
			}
			total += n
			claimed = append(claimed, [2]int{start, end})
		}
		if total > 0 {
			profile.Add(r.cat, total)
		}
	}
	return profile
}

func overlaps(claimed [][2]int, start, end int) bool {
	for _, c := range claimed {
		if start < c[1] && c[0] < end {
			return true
		}
	}
	return false
}
