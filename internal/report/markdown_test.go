package report

import (
	"bytes"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chatleads/internal/analysis/aggregate"
	"chatleads/internal/analysis/score"
	"chatleads/internal/models"
)

var reportTime = time.Date(2025, 6, 15, 18, 30, 0, 0, time.UTC)

func leadWithTier(tier int, email string) models.LeadRecord {
	_, label := score.Tier(tierScore(tier))
	return models.LeadRecord{
		ConversationID: 1,
		ChatDate:       reportTime.Add(-72 * time.Hour),
		PrimaryEmail:   email,
		ClientType:     "Prospecto General",
		PriorityTier:   tier,
		PriorityLabel:  label,
		SummaryExcerpt: "hola, busco varilla",
	}
}

func tierScore(tier int) int {
	switch tier {
	case 1:
		return 80
	case 2:
		return 55
	case 3:
		return 40
	case 4:
		return 25
	default:
		return 0
	}
}

func TestWriteMarketingReport(t *testing.T) {
	withEmail := []models.LeadRecord{
		leadWithTier(1, "uno@a.mx"),
		leadWithTier(2, "dos@b.mx"),
		leadWithTier(3, "tres@c.mx"),
	}
	withEmail[0].IsExistingCustomer = true
	withEmail[0].Profile = models.PartnerProfile{
		Name:           "Juan Pérez",
		Phone:          "555-0100",
		City:           "Culiacán",
		State:          "Sinaloa",
		SaleOrderCount: 2,
		TotalInvoiced:  1200,
	}
	noEmail := []models.LeadRecord{leadWithTier(2, "")}

	var buf bytes.Buffer
	require.NoError(t, WriteMarketingReport(&buf, withEmail, noEmail, reportTime))
	out := buf.String()

	assert.Contains(t, out, "# REPORTE DE SEGUIMIENTO DE LEADS - Equipo de Marketing")
	assert.Contains(t, out, "**Generado:** 2025-06-15 18:30 UTC")
	assert.Contains(t, out, "| Leads con email para seguimiento | **3** |")
	assert.Contains(t, out, "| Clientes existentes en Odoo | **1** |")
	assert.Contains(t, out, "| Prospectos nuevos | **2** |")
	assert.Contains(t, out, "| Leads sin email (oportunidades perdidas) | **1** |")

	// Every tier row appears in the priority table, zero counts included.
	for _, label := range score.Labels() {
		assert.Contains(t, out, "| "+label+" | ")
	}

	// Tier 1 detail card.
	assert.Contains(t, out, "## 🔴 LEADS PRIORIDAD MÁXIMA - CONTACTAR HOY")
	assert.Contains(t, out, "| **Email** | uno@a.mx |")
	assert.Contains(t, out, "| **Nombre (Odoo)** | Juan Pérez |")
	assert.Contains(t, out, "| **Ubicación** | Culiacán, Sinaloa |")
	assert.Contains(t, out, "✅ Sí (2 órdenes, $1200.00 facturado)")

	// Tier 2 card marks the new prospect.
	assert.Contains(t, out, "| **Email** | dos@b.mx |")
	assert.Contains(t, out, "❌ No - PROSPECTO NUEVO")

	// Tier 3 lands in the compact table.
	assert.Contains(t, out, "## 🟡 LEADS PRIORIDAD MEDIA - CONTACTAR ESTA SEMANA")
	assert.Contains(t, out, "| 1 | tres@c.mx |")

	// Playbook for the marketing team: scripts and follow-up KPIs.
	assert.Contains(t, out, "## INSIGHTS PARA EL EQUIPO DE MARKETING")
	assert.Contains(t, out, "### 2. Ventana de Oportunidad")
	assert.Contains(t, out, "**Para contratistas:**")
	assert.Contains(t, out, "precios preferenciales y línea de crédito")
	assert.Contains(t, out, "- **Tasa de conversión:** % de leads que realizaron compra")

	assert.Contains(t, out, LeadsCSVName)
	assert.Contains(t, out, ConversationsCSVName)
	assert.Contains(t, out, NoEmailCSVName)
}

func TestWriteMarketingReport_EmptyTiers(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteMarketingReport(&buf, nil, nil, reportTime))
	out := buf.String()

	assert.Contains(t, out, "No hay leads en este nivel de prioridad en este momento.")
	assert.Contains(t, out, "No hay leads de prioridad media en este momento.")
}

func TestWriteMarketingReport_TopSectionCapped(t *testing.T) {
	var withEmail []models.LeadRecord
	for i := 0; i < 35; i++ {
		l := leadWithTier(1, fmt.Sprintf("lead%02d@a.mx", i))
		withEmail = append(withEmail, l)
	}

	var buf bytes.Buffer
	require.NoError(t, WriteMarketingReport(&buf, withEmail, nil, reportTime))
	out := buf.String()

	assert.Contains(t, out, "### Lead #30")
	assert.NotContains(t, out, "### Lead #31")
}

func TestWriteExecutiveReport(t *testing.T) {
	acc := aggregate.New()
	set := models.NewSignalSet()
	set.Intents["precio"] = true
	set.Products["Pintura"] = true
	set.Emails = []string{"a@b.mx"}

	acc.AddSession(models.Conversation{
		StartedAt: time.Date(2025, 5, 5, 10, 0, 0, 0, time.UTC),
		Messages:  make([]models.Message, 3),
	}, set, true)
	acc.AddSession(models.Conversation{
		StartedAt: time.Date(2025, 6, 2, 10, 0, 0, 0, time.UTC),
		Messages:  make([]models.Message, 2),
	}, models.NewSignalSet(), false)
	acc.AddSession(models.Conversation{
		StartedAt: time.Date(2025, 6, 3, 16, 0, 0, 0, time.UTC),
		Messages:  make([]models.Message, 1),
	}, models.NewSignalSet(), false)

	var buf bytes.Buffer
	require.NoError(t, WriteExecutiveReport(&buf, acc, reportTime))
	out := buf.String()

	assert.Contains(t, out, "# REPORTE EJECUTIVO - Análisis de Chat proconsa.online")
	assert.Contains(t, out, "**Período analizado:** 2025-05 a 2025-06")
	assert.Contains(t, out, "| Total de sesiones | 3 |")
	assert.Contains(t, out, "| Total de mensajes | 6 |")
	assert.Contains(t, out, "| Sesiones con participación de visitante | 1 |")
	assert.Contains(t, out, "| Promedio mensajes por sesión | 2.0 |")
	assert.Contains(t, out, "| Emails capturados | 1 |")
	assert.Contains(t, out, "| Tasa de captura de email | 33.3% |")

	// Month trend: first month is flat, growth shows an up arrow.
	assert.Contains(t, out, "| 2025-05 | 1 | → |")
	assert.Contains(t, out, "| 2025-06 | 2 | ↑ |")

	// Hour rows carry share and bar; empty hours are omitted.
	assert.Contains(t, out, "| 10:00 | 2 | 66.7% ")
	assert.Contains(t, out, "| 16:00 | 1 | 33.3% ")
	assert.NotContains(t, out, "| 03:00 |")

	assert.Contains(t, out, "| precio | 1 |")
	assert.Contains(t, out, "| Pintura | 1 |")

	// Derived findings and recommendations read from the accumulator.
	assert.Contains(t, out, "## DEDUCCIONES Y HALLAZGOS CLAVE")
	assert.Contains(t, out, "- **Producto más consultado:** Pintura (1 menciones)")
	assert.Contains(t, out, "- Tasa de captura: **33.3%** del total de sesiones")
	assert.Contains(t, out, "- **10:00 UTC (02:00 Tijuana):** 2 sesiones")
	assert.Contains(t, out, "- **16:00 UTC (08:00 Tijuana):** 1 sesiones")
	assert.Contains(t, out, "- **Lunes:** 2 sesiones (66.7%)")
	assert.Contains(t, out, "## RECOMENDACIONES Y ACCIONES")
	assert.Contains(t, out, "   - Priorizar horarios: 02:00, 08:00 (hora Tijuana)")
	assert.Contains(t, out, "   - Hay 1 leads sin seguimiento confirmado")

	assert.Contains(t, out, DetailCSVName)
}

func TestPeakHours(t *testing.T) {
	acc := aggregate.New()
	acc.SessionsByHour[9] = 3
	acc.SessionsByHour[17] = 3
	acc.SessionsByHour[11] = 5
	acc.SessionsByHour[23] = 1

	assert.Equal(t, []int{11, 9, 17}, peakHours(acc, 3))
	assert.Equal(t, []int{11, 9, 17, 23}, peakHours(acc, 5))
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "hola", truncate("hola", 10))
	assert.Equal(t, "hola", truncate("hola", 4))
	assert.Equal(t, "hol", truncate("hola", 3))
	// Rune-safe on accented text.
	assert.Equal(t, "cotizació", truncate("cotización", 9))
}

func TestBar(t *testing.T) {
	assert.Equal(t, "", bar(1.5))
	assert.Equal(t, strings.Repeat("█", 5), bar(10))
	assert.Equal(t, strings.Repeat("█", 40), bar(100))
}

func TestSortTypeCounts(t *testing.T) {
	got := sortTypeCounts(map[string]int{
		"Empresa":    2,
		"Particular": 5,
		"Abarrotes":  2,
	})

	assert.Equal(t, []typeCount{
		{"Particular", 5},
		{"Abarrotes", 2},
		{"Empresa", 2},
	}, got)
}
