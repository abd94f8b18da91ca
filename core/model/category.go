package model

// Category identifies a canonical vehicle category. The labels follow the
// German control-centre abbreviations used by the game itself.
type Category string

const (
	CatLF     Category = "LF"      // Löschfahrzeug
	CatDLK    Category = "DLK"     // Drehleiter
	CatTLF    Category = "TLF"     // Tanklöschfahrzeug
	CatRW     Category = "RW"      // Rüstwagen
	CatGW     Category = "GW"      // Gerätewagen
	CatGWA    Category = "GW-A"    // Gerätewagen Atemschutz
	CatGWL    Category = "GW-L"    // Gerätewagen Logistik
	CatGWOel  Category = "GW-Öl"   // Gerätewagen Öl
	CatGWMess Category = "GW-Mess" // Gerätewagen Messtechnik
	CatELW    Category = "ELW"     // Einsatzleitwagen
	CatMTW    Category = "MTW"     // Mannschaftstransportwagen
	CatSW     Category = "SW"      // Schlauchwagen
	CatFwK    Category = "FwK"     // Feuerwehrkran
	CatRTW    Category = "RTW"     // Rettungswagen
	CatNEF    Category = "NEF"     // Notarzteinsatzfahrzeug
	CatKTW    Category = "KTW"     // Krankentransportwagen
	CatNAW    Category = "NAW"     // Notarztwagen
	CatRTH    Category = "RTH"     // Rettungshubschrauber
	CatITW    Category = "ITW"     // Intensivtransportwagen
	CatFuStW  Category = "FuStW"   // Funkstreifenwagen
	CatGefKw  Category = "GefKw"   // Gefangenenkraftwagen
	CatK9     Category = "Hundestaffel"
)

func (c Category) String() string { return string(c) }
