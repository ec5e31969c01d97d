package serp

import (
	"net/url"
	"strings"
)

// Engine identifies a supported search engine.
type Engine string

// Supported search engines.
const (
	EngineGoogle     Engine = "google"
	EngineStartpage  Engine = "startpage"
	EngineBing       Engine = "bing"
	EngineDuckDuckGo Engine = "duckduckgo"
	EngineAsk        Engine = "ask"
	EngineMojeek     Engine = "mojeek"
	EngineExalead    Engine = "exalead"
	EngineLycos      Engine = "lycos"
	EngineYandex     Engine = "yandex"
	EngineSwisscows  Engine = "swisscows"
)

// EngineDescriptor holds the static configuration of one search engine.
type EngineDescriptor struct {
	ID Engine

	// URLTemplate is the search URL the escaped query is appended to.
	URLTemplate string

	// OmittedResultsParam is appended to the search URL when the caller asks
	// for results the engine would otherwise omit. Empty when unsupported.
	OmittedResultsParam string

	Extraction ExtractionRule
	Pagination PaginationRule
}

// SearchURL builds the first-page URL for query.
func (d *EngineDescriptor) SearchURL(query string, includeOmitted bool) string {
	u := d.URLTemplate + url.QueryEscape(query)
	if includeOmitted && d.OmittedResultsParam != "" {
		u += d.OmittedResultsParam
	}
	return u
}

// catalog is the fixed engine table. It is never modified after
// initialization, so concurrent lookups are safe.
var catalog = []EngineDescriptor{
	{
		ID:                  EngineGoogle,
		URLTemplate:         "https://www.google.com/search?q=",
		OmittedResultsParam: "&filter=0",
		Extraction: ExtractionRule{
			Title: Locator{Tag: "h3", Class: "DKV0Md"},
			Link:  Locator{Tag: "div", Class: "NJjxre"},
			Checks: []PreCheck{
				{Marker: Locator{Tag: "form", ID: "captcha-form"}, When: MarkerPresent, Outcome: ClassBlocked},
			},
		},
		Pagination: PaginationRule{Next: &Locator{ID: "pnnext"}},
	},
	{
		ID:          EngineStartpage,
		URLTemplate: "https://www.startpage.com/do/dsearch?query=",
		Extraction: ExtractionRule{
			Title: Locator{Tag: "a", Class: "w-gl__result-title"},
			Link:  Locator{Tag: "a", Class: "w-gl__result-url"},
			// Startpage serves its challenge page without the results
			// wrapper, so a missing wrapper means blocked.
			Checks: []PreCheck{
				{Marker: Locator{Tag: "div", Class: "show-results"}, When: MarkerAbsent, Outcome: ClassBlocked},
			},
		},
		Pagination: PaginationRule{Next: &Locator{Class: "next"}},
	},
	{
		ID:          EngineBing,
		URLTemplate: "https://www.bing.com/search?q=",
		Extraction: ExtractionRule{
			Title:       Locator{Tag: "li", Class: "b_algo", Child: &Locator{Tag: "h2"}},
			Link:        Locator{Tag: "div", Class: "b_attribution"},
			LinkExclude: &Locator{Tag: "div", Class: "b_adurl"},
		},
	},
	{
		ID:          EngineDuckDuckGo,
		URLTemplate: "https://duckduckgo.com/?q=",
		Extraction: ExtractionRule{
			Title: Locator{Tag: "a", Class: "result__a"},
			Link:  Locator{Tag: "a", Class: "result__url"},
		},
	},
	{
		ID:          EngineAsk,
		URLTemplate: "https://www.ask.com/web?o=0&l=dir&qo=homepageSearchBox&q=",
		Extraction: ExtractionRule{
			Title: Locator{Tag: "a", Class: "result-link"},
			Link:  Locator{Tag: "p", Class: "PartialSearchResults-item-url"},
		},
	},
	{
		ID:          EngineMojeek,
		URLTemplate: "https://www.mojeek.com/search?q=",
		Extraction: ExtractionRule{
			Title: Locator{Tag: "a", Class: "ob"},
			Link:  Locator{Tag: "p", Class: "i"},
			Checks: []PreCheck{
				{Marker: Locator{Tag: "div", Class: "results"}, When: MarkerAbsent, Outcome: ClassNoResults},
			},
		},
	},
	{
		ID:          EngineExalead,
		URLTemplate: "http://www.exalead.com/search/web/results/?q=",
		Extraction: ExtractionRule{
			Title: Locator{Tag: "a", Class: "title"},
			Link:  Locator{Tag: "a", Class: "ellipsis"},
			Checks: []PreCheck{
				{Marker: Locator{Tag: "div", ID: "content", Child: &Locator{Tag: "form"}}, When: MarkerPresent, Outcome: ClassBlocked},
				{Marker: Locator{Tag: "div", ID: "noResults"}, When: MarkerPresent, Outcome: ClassNoResults},
			},
		},
	},
	{
		ID:          EngineLycos,
		URLTemplate: "https://search.lycos.com/web/?q=",
		Extraction: ExtractionRule{
			Title: Locator{Tag: "a", Class: "result-link"},
			Link:  Locator{Tag: "span", Class: "result-url"},
		},
	},
	{
		ID:          EngineYandex,
		URLTemplate: "https://yandex.ru/search/?text=",
		Extraction: ExtractionRule{
			Title: Locator{Tag: "div", Class: "organic__url-text"},
			Link:  Locator{Tag: "a", Class: "Link_theme_outer"},
			Checks: []PreCheck{
				{Marker: Locator{Tag: "div", Class: "CheckboxCaptcha"}, When: MarkerPresent, Outcome: ClassBlocked},
			},
		},
		Pagination: PaginationRule{Next: &Locator{Class: "pager__item_kind_next"}},
	},
	{
		ID:          EngineSwisscows,
		URLTemplate: "https://swisscows.com/web?query=",
		Extraction: ExtractionRule{
			Title: Locator{Tag: "h2", Class: "title"},
			Link:  Locator{Tag: "cite", Class: "site"},
		},
	},
}

// LookupEngine returns the descriptor for id.
// Returns EUNKNOWNENGINE if id is not a supported engine.
func LookupEngine(id Engine) (*EngineDescriptor, error) {
	for i := range catalog {
		if catalog[i].ID == id {
			d := catalog[i]
			return &d, nil
		}
	}
	return nil, Errorf(EUNKNOWNENGINE, "unknown engine %q", id)
}

// Engines returns all supported engines in catalog order.
func Engines() []Engine {
	engines := make([]Engine, len(catalog))
	for i, d := range catalog {
		engines[i] = d.ID
	}
	return engines
}

// ParseEngine converts user input to an Engine, ignoring case and
// surrounding whitespace. Returns EUNKNOWNENGINE for unsupported names.
func ParseEngine(s string) (Engine, error) {
	id := Engine(strings.ToLower(strings.TrimSpace(s)))
	if _, err := LookupEngine(id); err != nil {
		return "", err
	}
	return id, nil
}
