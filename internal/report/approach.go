// Package report renders the run outputs: follow-up CSVs, the marketing
// report and the executive corpus report, plus the outreach suggestion
// attached to each lead.
package report

import (
	"fmt"
	"strings"

	"chatleads/internal/analysis/catalog"
	"chatleads/internal/analysis/classify"
	"chatleads/internal/models"
)

// SuggestApproach composes the outreach suggestion for the marketing team
// from the lead's detected intents, products and client type. Multiple
// applicable suggestions are joined with " | ".
func SuggestApproach(set models.SignalSet, clientType string) string {
	var suggestions []string
	products := strings.Join(set.ProductTags(), ", ")

	if set.HasIntent(catalog.IntentBulkQuote) {
		if set.ProductCount() > 0 {
			suggestions = append(suggestions, fmt.Sprintf("Enviar cotización personalizada de: %s", products))
		} else {
			suggestions = append(suggestions, "Contactar para conocer necesidades de mayoreo y enviar catálogo")
		}
	}
	if set.HasIntent(catalog.IntentContractor) || clientType == classify.TypeContractor {
		suggestions = append(suggestions, "Ofrecer programa de descuentos para contratistas y línea de crédito")
	}
	if clientType == classify.TypeWholesaler {
		suggestions = append(suggestions, "Presentar programa de distribución y precios especiales por volumen")
	}
	if set.HasIntent(catalog.IntentWorkshops) {
		suggestions = append(suggestions, "Invitar a próximos talleres y ofrecer descuento post-capacitación")
	}
	if set.HasIntent(catalog.IntentPrice) {
		suggestions = append(suggestions, "Enviar lista de precios actualizada de los productos consultados")
	}
	if set.HasIntent(catalog.IntentInvoicing) {
		suggestions = append(suggestions, "Ya es cliente - verificar historial y ofrecer recompra con beneficios")
	}
	if set.HasIntent(catalog.IntentSiteProblem) {
		suggestions = append(suggestions, "Disculparse por inconvenientes técnicos y ofrecer atención directa")
	}

	if len(suggestions) == 0 {
		if set.ProductCount() > 0 {
			suggestions = append(suggestions, fmt.Sprintf("Contactar ofreciendo información sobre: %s", products))
		} else {
			suggestions = append(suggestions, "Enviar catálogo general y promociones vigentes")
		}
	}
	return strings.Join(suggestions, " | ")
}
