// Package catalog holds the fixed set of named detectors applied to visitor
// text: intent rules, product-category rules and the contact-email
// extraction rule. The vocabulary is declarative data, separate from the
// scoring logic, so it can be swapped (localized) without touching scores.
package catalog

import (
	"encoding/json"
	"fmt"
	"os"
	"regexp"
	"sort"

	"chatleads/internal/common/validation"
)

// Intent tags recognized by the default catalog. Scoring and classification
// reference these by name; a swapped vocabulary must keep the tag names for
// the weighted intents.
const (
	IntentBulkQuote      = "cotizacion_mayoreo"
	IntentWorkshops      = "talleres_clinicas"
	IntentSiteProblem    = "problema_sitio"
	IntentBrowsing       = "solo_viendo"
	IntentSeekingProduct = "busca_producto"
	IntentPrice          = "precio"
	IntentAvailability   = "disponibilidad"
	IntentShipping       = "envio"
	IntentHours          = "horario"
	IntentLocation       = "ubicacion"
	IntentReturns        = "devolucion"
	IntentInvoicing      = "factura"
	IntentContractor     = "contratista"
)

// Rule maps a tag name to a case-insensitive expression tested anywhere in
// the normalized, lowercased text (not anchored).
type Rule struct {
	Tag     string
	Pattern string

	re *regexp.Regexp
}

// Matches reports whether the rule's expression occurs anywhere in text.
func (r Rule) Matches(text string) bool {
	return r.re.MatchString(text)
}

// Catalog is the compiled set of detectors. Static configuration: build it
// once, share it freely across goroutines.
type Catalog struct {
	Intents  []Rule
	Products []Rule

	email *regexp.Regexp
}

// MatchIntents returns every intent tag whose rule matches the lowercased
// text. Multiple rules may match; classification is non-exclusive.
func (c *Catalog) MatchIntents(lower string) []string {
	return matchAll(c.Intents, lower)
}

// MatchProducts returns every product tag whose rule matches the lowercased
// text.
func (c *Catalog) MatchProducts(lower string) []string {
	return matchAll(c.Products, lower)
}

// FindEmails returns all email addresses in text, in order of appearance
// and with raw case preserved. Lowercasing happens only at the lookup and
// aggregation boundaries.
func (c *Catalog) FindEmails(text string) []string {
	return c.email.FindAllString(text, -1)
}

func matchAll(rules []Rule, text string) []string {
	var tags []string
	for _, r := range rules {
		if r.Matches(text) {
			tags = append(tags, r.Tag)
		}
	}
	return tags
}

// file is the on-disk shape of an external catalog.
type file struct {
	Intents      map[string]string `json:"intents"`
	Products     map[string]string `json:"products"`
	EmailPattern string            `json:"email_pattern"`
}

// LoadFile reads a catalog definition from a JSON file, validates it against
// the catalog schema and compiles its rules.
func LoadFile(path string) (*Catalog, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog %s: %w", path, err)
	}
	return Parse(raw)
}

// Parse validates and compiles a raw JSON catalog definition.
func Parse(raw []byte) (*Catalog, error) {
	if err := validation.ValidateCatalogDocument(raw); err != nil {
		return nil, err
	}

	var f file
	if err := json.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("decode catalog: %w", err)
	}
	if f.EmailPattern == "" {
		f.EmailPattern = defaultEmailPattern
	}

	return build(f)
}

func build(f file) (*Catalog, error) {
	intents, err := compileRules(f.Intents)
	if err != nil {
		return nil, fmt.Errorf("intent rules: %w", err)
	}
	products, err := compileRules(f.Products)
	if err != nil {
		return nil, fmt.Errorf("product rules: %w", err)
	}
	emailRe, err := regexp.Compile(f.EmailPattern)
	if err != nil {
		return nil, fmt.Errorf("email pattern: %w", err)
	}
	return &Catalog{Intents: intents, Products: products, email: emailRe}, nil
}

// compileRules turns a tag→pattern table into a deterministic rule slice.
// Tags are sorted so rule evaluation order never depends on map iteration.
func compileRules(table map[string]string) ([]Rule, error) {
	tags := make([]string, 0, len(table))
	for tag := range table {
		tags = append(tags, tag)
	}
	sort.Strings(tags)

	rules := make([]Rule, 0, len(tags))
	for _, tag := range tags {
		re, err := regexp.Compile("(?i)" + table[tag])
		if err != nil {
			return nil, fmt.Errorf("rule %q: %w", tag, err)
		}
		rules = append(rules, Rule{Tag: tag, Pattern: table[tag], re: re})
	}
	return rules, nil
}
