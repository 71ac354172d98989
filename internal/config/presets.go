package config

// Phase is a run preset trading breadth for precision
type Phase struct {
	Name            string
	AcceptThreshold float64
	MaxIterations   int
	ResultsPerQuery int
	LettersPerRun   int
}

// Phases are the built-in presets, from broad exploration to strict acquisition
var Phases = map[string]Phase{
	"explore": {Name: "explore", AcceptThreshold: 0.55, MaxIterations: 3, ResultsPerQuery: 10, LettersPerRun: 2},
	"refine":  {Name: "refine", AcceptThreshold: 0.62, MaxIterations: 5, ResultsPerQuery: 8, LettersPerRun: 5},
	"acquire": {Name: "acquire", AcceptThreshold: 0.7, MaxIterations: 8, ResultsPerQuery: 6, LettersPerRun: 10},
}

// DefaultPhase is used when no phase is configured
const DefaultPhase = "refine"

// Region describes where candidates are searched and which ones are out of scope
type Region struct {
	Name              string
	Label             string
	Queries           []string // planned search queries
	FallbackQueries   []string // used when refinement produces nothing
	PositiveKeywords  []string // recorded as signals, never gate
	OffRegionKeywords []string // any match rejects the candidate
	SearchLocale      string   // e.g. "de-de"
	Country           string   // ISO country filter for lookups
	LocationHint      string
	LocationCues      []string // place names recognized in page text
}

var northernCities = []string{
	"lübeck", "hamburg", "kiel", "bremen", "flensburg", "oldenburg", "bremerhaven",
	"rostock", "greifswald", "hannover", "braunschweig", "norderstedt",
}

var southernCities = []string{
	"münchen", "muenchen", "berlin", "köln", "koeln", "stuttgart", "frankfurt", "düsseldorf",
	"dresden", "leipzig", "nürnberg", "nuernberg", "karlsruhe", "freiburg", "augsburg",
}

var foreignMarkers = []string{"wien", "österreich", "austria", "zürich", "schweiz", "switzerland"}

// Regions are the built-in region profiles
var Regions = map[string]Region{
	"luebeck": {
		Name:  "luebeck",
		Label: "Lübeck und Umgebung",
		Queries: []string{
			"Makerspace Lübeck",
			"FabLab Lübeck",
			"Offene Werkstatt Lübeck",
			"Repair Café Lübeck",
			"Hackerspace Lübeck",
			"Chaos Computer Club Lübeck",
		},
		FallbackQueries: []string{
			"Makerspace Schleswig-Holstein",
			"Repair Café Ostholstein",
			"Offene Werkstatt Bad Schwartau",
			"Maker Verein Ratzeburg",
			"Jugend forscht Lübeck Technik AG",
			"Elektronik Bastler Verein Lübeck",
		},
		PositiveKeywords: []string{
			"lübeck", "luebeck", "schleswig-holstein", "ostholstein", "travemünde",
			"bad schwartau", "ratzeburg", "stockelsdorf", "hamburg", "kiel", "wismar",
		},
		OffRegionKeywords: append(append([]string{}, southernCities...), foreignMarkers...),
		SearchLocale:      "de-de",
		Country:           "DE",
		LocationHint:      "Lübeck, Schleswig-Holstein",
		LocationCues:      northernCities,
	},
	"north": {
		Name:  "north",
		Label: "Norddeutschland",
		Queries: []string{
			"Makerspace Hamburg",
			"FabLab Kiel",
			"Repair Café Schleswig-Holstein",
			"Hackerspace Bremen",
			"Offene Werkstatt Rostock",
		},
		FallbackQueries: []string{
			"Makerspace Niedersachsen",
			"Maker Verein Mecklenburg-Vorpommern",
			"Offene Werkstatt Norddeutschland",
		},
		PositiveKeywords: append([]string{
			"norddeutschland", "schleswig-holstein", "niedersachsen", "mecklenburg",
		}, northernCities...),
		OffRegionKeywords: append(append([]string{}, southernCities...), foreignMarkers...),
		SearchLocale:      "de-de",
		Country:           "DE",
		LocationHint:      "Norddeutschland",
		LocationCues:      northernCities,
	},
	"germany": {
		Name:  "germany",
		Label: "Deutschland",
		Queries: []string{
			"Makerspace Deutschland Verein",
			"FabLab Deutschland",
			"Repair Café Netzwerk",
			"Hackerspace Verein",
		},
		FallbackQueries: []string{
			"Offene Werkstätten Verbund",
			"Maker Faire Aussteller Deutschland",
		},
		PositiveKeywords:  []string{"deutschland", "germany", "e.v.", "verein"},
		OffRegionKeywords: foreignMarkers,
		SearchLocale:      "de-de",
		Country:           "DE",
		LocationHint:      "Deutschland",
		LocationCues:      append(append([]string{}, northernCities...), southernCities...),
	},
}

// DefaultRegion is used when no region is configured
const DefaultRegion = "luebeck"

// GateRules are the cheap checks applied before any judgment call
type GateRules struct {
	NegativeSuffixes       []string
	NegativeDomains        []string
	NegativeTerms          []string
	DirectoryHints         []string
	DirectoryEntryKeywords []string
	AllowedLanguages       []string // lingua language names, e.g. "German"
	MinLanguageChars       int
}

// DefaultGateRules returns a fresh copy of the built-in gate tables
func DefaultGateRules() GateRules {
	return GateRules{
		NegativeSuffixes: []string{
			".pdf", ".zip", ".doc", ".docx", ".xls", ".xlsx", ".ppt", ".pptx",
			".jpg", ".jpeg", ".png", ".gif", ".mp4", ".mp3",
		},
		NegativeDomains: []string{
			"facebook.com", "instagram.com", "twitter.com", "x.com", "youtube.com",
			"linkedin.com", "tiktok.com", "pinterest.com", "xing.com",
			"amazon.de", "amazon.com", "ebay.de", "kleinanzeigen.de", "wikipedia.org",
			"tripadvisor.de", "yelp.de", "gelbeseiten.de", "dasoertliche.de",
		},
		NegativeTerms: []string{
			"gmbh", "online-shop", "onlineshop", "jetzt kaufen", "versandkostenfrei",
			"stellenangebot", "immobilien", "rechtsanwalt", "steuerberater", "zahnarzt",
			"hotel", "ferienwohnung", "casino",
		},
		DirectoryHints: []string{
			"liste", "list of", "übersicht", "uebersicht", "overview", "verzeichnis",
			"directory", "karte der", "map of", "sammlung", "alle makerspaces", "finden sie",
		},
		DirectoryEntryKeywords: []string{
			"maker", "hack", "werkstatt", "werkstaetten", "space", "labor", "lab", "fablab",
			"kollektiv", "initiative", "verein", "freiraum", "fab", "open lab", "openlab",
			"repair", "reparatur", "club", "sojus", "chaos", "diy",
		},
		AllowedLanguages: []string{"German", "English"},
		MinLanguageChars: 80,
	}
}
