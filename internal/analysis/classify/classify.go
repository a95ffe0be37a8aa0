// Package classify maps a conversation's signal set to a client-type
// category through an ordered, first-match-wins decision list.
package classify

import (
	"regexp"
	"strings"

	"chatleads/internal/analysis/catalog"
	"chatleads/internal/models"
)

// Client-type categories, mutually exclusive by cascade.
const (
	TypeContractor   = "Contratista/Constructor"
	TypeWholesaler   = "Mayorista/Distribuidor"
	TypeVolumeBuyer  = "Comprador de Volumen"
	TypeBusiness     = "Empresa"
	TypeHomeowner    = "Particular/Remodelación"
	TypeTrainee      = "Profesional en Formación"
	TypeBilling      = "Cliente con Facturación"
	TypeProspect     = "Prospecto General"
)

var (
	contractorRe = regexp.MustCompile(`contratista|constructor|obra grande|proyecto|edificio|residencial|fraccionamiento`)
	businessRe   = regexp.MustCompile(`empresa|negocio|compañ[ií]a|sa de cv|s\.a\.|spr|s\.?r\.?l`)
	homeRe       = regexp.MustCompile(`mi casa|remodelaci[oó]n|arreglar|reparar|ba[nñ]o|cocina|cuarto`)
)

// Rule is one step of the cascade. Text is the lowercased joined visitor
// text of the conversation.
type Rule struct {
	Name       string
	ClientType string
	Matches    func(set models.SignalSet, text string) bool
}

// Cascade returns the decision list in business-priority order. The order
// is the contract: a contractor signal outranks a generic business-word
// match, so evaluation stops at the first rule that fires.
func Cascade() []Rule {
	return []Rule{
		{
			Name:       "contractor",
			ClientType: TypeContractor,
			Matches: func(set models.SignalSet, text string) bool {
				return set.HasIntent(catalog.IntentContractor) || contractorRe.MatchString(text)
			},
		},
		{
			Name:       "wholesaler",
			ClientType: TypeWholesaler,
			Matches: func(set models.SignalSet, text string) bool {
				return set.HasIntent(catalog.IntentBulkQuote) && set.ProductCount() >= 2
			},
		},
		{
			Name:       "volume-buyer",
			ClientType: TypeVolumeBuyer,
			Matches: func(set models.SignalSet, text string) bool {
				return set.HasIntent(catalog.IntentBulkQuote)
			},
		},
		{
			Name:       "business",
			ClientType: TypeBusiness,
			Matches: func(set models.SignalSet, text string) bool {
				return businessRe.MatchString(text)
			},
		},
		{
			Name:       "homeowner",
			ClientType: TypeHomeowner,
			Matches: func(set models.SignalSet, text string) bool {
				return homeRe.MatchString(text)
			},
		},
		{
			Name:       "trainee",
			ClientType: TypeTrainee,
			Matches: func(set models.SignalSet, text string) bool {
				return set.HasIntent(catalog.IntentWorkshops)
			},
		},
		{
			Name:       "billing-customer",
			ClientType: TypeBilling,
			Matches: func(set models.SignalSet, text string) bool {
				return set.HasIntent(catalog.IntentInvoicing)
			},
		},
	}
}

// ClientType evaluates the cascade against the signal set and the joined
// visitor text and returns the first matching category, falling back to
// general prospect.
func ClientType(rules []Rule, set models.SignalSet, visitorJoined string) string {
	text := strings.ToLower(visitorJoined)
	for _, rule := range rules {
		if rule.Matches(set, text) {
			return rule.ClientType
		}
	}
	return TypeProspect
}
