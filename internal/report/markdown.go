package report

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"chatleads/internal/analysis/aggregate"
	"chatleads/internal/analysis/catalog"
	"chatleads/internal/analysis/classify"
	"chatleads/internal/analysis/score"
	"chatleads/internal/models"
)

// WeekdayOrder lists weekdays Monday-first, the order the reports use.
var WeekdayOrder = []time.Weekday{
	time.Monday, time.Tuesday, time.Wednesday, time.Thursday,
	time.Friday, time.Saturday, time.Sunday,
}

var weekdayNames = map[time.Weekday]string{
	time.Monday:    "Lunes",
	time.Tuesday:   "Martes",
	time.Wednesday: "Miércoles",
	time.Thursday:  "Jueves",
	time.Friday:    "Viernes",
	time.Saturday:  "Sábado",
	time.Sunday:    "Domingo",
}

// WeekdayName returns the Spanish weekday label used in reports.
func WeekdayName(d time.Weekday) string { return weekdayNames[d] }

var priorityActions = map[string]string{
	score.LabelMaximum: "Contactar HOY - Lead caliente reciente con intención clara de compra",
	score.LabelHigh:    "Contactar en 24-48 hrs - Interés fuerte, necesita seguimiento rápido",
	score.LabelMedium:  "Contactar esta semana - Interés moderado, enviar información",
	score.LabelLow:     "Incluir en campaña de email - Interés bajo o antiguo",
	score.LabelVeryLow: "Solo nurturing automático - Sin intención clara de compra",
}

var typeStrategies = map[string]string{
	classify.TypeContractor:  "Programa de lealtad, crédito, precios especiales por volumen",
	classify.TypeVolumeBuyer: "Cotización personalizada, descuentos por cantidad",
	classify.TypeWholesaler:  "Programa de distribución, precios de mayoreo",
	classify.TypeBusiness:    "Cuenta corporativa, facturación, línea de crédito",
	classify.TypeHomeowner:   "Asesoría técnica, paquetes de remodelación",
	classify.TypeTrainee:     "Talleres, descuentos post-capacitación, fidelización temprana",
	classify.TypeBilling:     "Recompra, programa de puntos, ofertas exclusivas",
	classify.TypeProspect:    "Catálogo general, promociones vigentes, nurturing",
}

const topLeadLimit = 30

// WriteMarketingReport renders the follow-up guide for the marketing team:
// summary, priority and type distributions, and the top lead sheets.
func WriteMarketingReport(w io.Writer, withEmail, noEmail []models.LeadRecord, now time.Time) error {
	var b strings.Builder

	priorityCounts := make(map[string]int)
	typeCounts := make(map[string]int)
	existing := 0
	for _, l := range withEmail {
		priorityCounts[l.PriorityLabel]++
		typeCounts[l.ClientType]++
		if l.IsExistingCustomer {
			existing++
		}
	}

	b.WriteString("# REPORTE DE SEGUIMIENTO DE LEADS - Equipo de Marketing\n")
	b.WriteString("## Chat proconsa.online\n\n")
	fmt.Fprintf(&b, "**Generado:** %s UTC\n\n---\n\n", now.UTC().Format("2006-01-02 15:04"))

	b.WriteString("## RESUMEN EJECUTIVO\n\n")
	b.WriteString("| Métrica | Valor |\n|---|---|\n")
	fmt.Fprintf(&b, "| Leads con email para seguimiento | **%d** |\n", len(withEmail))
	fmt.Fprintf(&b, "| Clientes existentes en Odoo | **%d** |\n", existing)
	fmt.Fprintf(&b, "| Prospectos nuevos | **%d** |\n", len(withEmail)-existing)
	fmt.Fprintf(&b, "| Leads sin email (oportunidades perdidas) | **%d** |\n\n", len(noEmail))

	b.WriteString("## DISTRIBUCIÓN POR PRIORIDAD\n\n")
	b.WriteString("| Prioridad | Cantidad | Acción Sugerida |\n|---|---|---|\n")
	for _, label := range score.Labels() {
		fmt.Fprintf(&b, "| %s | %d | %s |\n", label, priorityCounts[label], priorityActions[label])
	}
	b.WriteString("\n")

	b.WriteString("## TIPOS DE CLIENTE IDENTIFICADOS\n\n")
	b.WriteString("| Tipo de Cliente | Cantidad | Estrategia |\n|---|---|---|\n")
	for _, tc := range sortTypeCounts(typeCounts) {
		strategy := typeStrategies[tc.name]
		if strategy == "" {
			strategy = "Enviar catálogo general"
		}
		fmt.Fprintf(&b, "| %s | %d | %s |\n", tc.name, tc.count, strategy)
	}
	b.WriteString("\n")

	writeLeadSection(&b, "## 🔴 LEADS PRIORIDAD MÁXIMA - CONTACTAR HOY\n\n", filterTier(withEmail, 1))
	writeLeadSection(&b, "## 🟠 LEADS PRIORIDAD ALTA - CONTACTAR EN 24-48 HRS\n\n", filterTier(withEmail, 2))
	writeMediumSection(&b, filterTier(withEmail, 3))
	writeMarketingInsights(&b)

	b.WriteString("---\n\n## ARCHIVOS GENERADOS\n\n")
	b.WriteString("| Archivo | Descripción | Uso |\n|---|---|---|\n")
	fmt.Fprintf(&b, "| `%s` | Lista completa de leads con email, priorizada | **Archivo principal de trabajo** |\n", LeadsCSVName)
	fmt.Fprintf(&b, "| `%s` | Conversaciones íntegras de cada lead | Referencia para contexto antes de llamar |\n", ConversationsCSVName)
	fmt.Fprintf(&b, "| `%s` | Sesiones con intención de compra pero sin email | Análisis de oportunidades perdidas |\n", NoEmailCSVName)
	fmt.Fprintf(&b, "| `%s` | Este reporte | Guía de trabajo para el equipo |\n", MarketingReportName)

	_, err := io.WriteString(w, b.String())
	return err
}

func writeLeadSection(b *strings.Builder, heading string, leads []models.LeadRecord) {
	b.WriteString("---\n\n")
	b.WriteString(heading)
	if len(leads) == 0 {
		b.WriteString("No hay leads en este nivel de prioridad en este momento.\n\n")
		return
	}
	if len(leads) > topLeadLimit {
		leads = leads[:topLeadLimit]
	}

	for i, l := range leads {
		fmt.Fprintf(b, "### Lead #%d\n", i+1)
		b.WriteString("| Campo | Dato |\n|---|---|\n")
		fmt.Fprintf(b, "| **Email** | %s |\n", l.PrimaryEmail)
		if l.Profile.Name != "" {
			fmt.Fprintf(b, "| **Nombre (Odoo)** | %s |\n", l.Profile.Name)
		}
		if l.Profile.Phone != "" {
			fmt.Fprintf(b, "| **Teléfono** | %s |\n", l.Profile.Phone)
		}
		if l.Profile.Mobile != "" {
			fmt.Fprintf(b, "| **Celular** | %s |\n", l.Profile.Mobile)
		}
		fmt.Fprintf(b, "| **Fecha** | %s (hace %d días) |\n", l.ChatDate.Format("2006-01-02"), l.DaysSinceContact)
		fmt.Fprintf(b, "| **Tipo** | %s |\n", l.ClientType)
		fmt.Fprintf(b, "| **Productos** | %s |\n", productsField(l.Products))
		if l.Profile.City != "" || l.Profile.State != "" {
			fmt.Fprintf(b, "| **Ubicación** | %s, %s |\n", l.Profile.City, l.Profile.State)
		}
		if l.IsExistingCustomer {
			fmt.Fprintf(b, "| **Cliente existente** | ✅ Sí (%d órdenes, $%.2f facturado) |\n",
				l.Profile.SaleOrderCount, l.Profile.TotalInvoiced)
		} else {
			b.WriteString("| **Cliente existente** | ❌ No - PROSPECTO NUEVO |\n")
		}
		fmt.Fprintf(b, "| **💡 Abordaje** | %s |\n", l.SuggestedApproach)
		fmt.Fprintf(b, "| **Contexto** | %s |\n\n", truncate(l.SummaryExcerpt, 300))
	}
}

func writeMediumSection(b *strings.Builder, leads []models.LeadRecord) {
	b.WriteString("---\n\n## 🟡 LEADS PRIORIDAD MEDIA - CONTACTAR ESTA SEMANA\n\n")
	if len(leads) == 0 {
		b.WriteString("No hay leads de prioridad media en este momento.\n\n")
		return
	}

	fmt.Fprintf(b, "**Total: %d leads** (ver CSV para detalle completo)\n\n", len(leads))
	b.WriteString("| # | Email | Nombre | Tipo | Productos | Hace (días) | Abordaje |\n")
	b.WriteString("|---|---|---|---|---|---|---|\n")
	limit := len(leads)
	if limit > 50 {
		limit = 50
	}
	for i, l := range leads[:limit] {
		name := l.Profile.Name
		if name == "" {
			name = "-"
		}
		fmt.Fprintf(b, "| %d | %s | %s | %s | %s | %d | %s |\n",
			i+1, l.PrimaryEmail, truncate(name, 25), l.ClientType,
			truncate(productsField(l.Products), 30), l.DaysSinceContact,
			truncate(l.SuggestedApproach, 50))
	}
	b.WriteString("\n")
}

// writeMarketingInsights emits the playbook the marketing team works from:
// behavioral patterns, the outreach window, first-contact scripts and the
// follow-up KPIs.
func writeMarketingInsights(b *strings.Builder) {
	b.WriteString("---\n\n## INSIGHTS PARA EL EQUIPO DE MARKETING\n\n")

	b.WriteString("### 1. Patrón de Comportamiento del Visitante\n")
	b.WriteString("- El flujo típico es: **Bienvenida → Cotización de mayoreo → Especifica producto → Deja email**\n")
	b.WriteString("- Los visitantes que mencionan ser **contratistas** tienen mayor probabilidad de conversión\n")
	b.WriteString("- Los que preguntan por **múltiples productos** son compradores de volumen\n\n")

	b.WriteString("### 2. Ventana de Oportunidad\n")
	b.WriteString("- **0-3 días:** Lead caliente, contactar inmediatamente\n")
	b.WriteString("- **4-7 días:** Aún tiene interés, enviar cotización personalizada\n")
	b.WriteString("- **8-14 días:** Puede haber comprado en otro lado, ofrecer valor diferencial\n")
	b.WriteString("- **15+ días:** Incluir en campaña de nurturing por email\n\n")

	b.WriteString("### 3. Script Sugerido para Primer Contacto\n\n")
	b.WriteString("**Para cotización de mayoreo:**\n")
	b.WriteString("> \"Hola [Nombre], soy [Tu nombre] de Proconsa. Recibimos tu solicitud de cotización " +
		"de [producto] a través de nuestro chat. Te envío la cotización adjunta con precios " +
		"especiales de mayoreo. ¿Tienes alguna duda o necesitas agregar algo más?\"\n\n")
	b.WriteString("**Para contratistas:**\n")
	b.WriteString("> \"Hola [Nombre], soy [Tu nombre] de Proconsa. Vi que nos contactaste por [producto]. " +
		"Tenemos un programa especial para contratistas con precios preferenciales y línea de crédito. " +
		"¿Te gustaría que te explique los beneficios?\"\n\n")
	b.WriteString("**Para talleres/clínicas:**\n")
	b.WriteString("> \"Hola [Nombre], gracias por tu interés en nuestros talleres. La próxima clínica es " +
		"[tema] el [fecha]. Es totalmente gratuita. ¿Te confirmo tu lugar?\"\n\n")

	b.WriteString("### 4. Métricas de Seguimiento Sugeridas\n")
	b.WriteString("- **Tasa de contacto:** % de leads contactados vs. total\n")
	b.WriteString("- **Tasa de respuesta:** % de leads que respondieron al contacto\n")
	b.WriteString("- **Tasa de conversión:** % de leads que realizaron compra\n")
	b.WriteString("- **Ticket promedio:** Valor promedio de venta de leads del chat\n")
	b.WriteString("- **Tiempo de respuesta:** Horas entre chat y primer contacto\n\n")
}

// WriteExecutiveReport renders the corpus-level analysis: volume trends by
// month, weekday and hour, intent and product frequency, and the derived
// findings and recommendations.
func WriteExecutiveReport(w io.Writer, acc *aggregate.Accumulator, now time.Time) error {
	var b strings.Builder

	b.WriteString("# REPORTE EJECUTIVO - Análisis de Chat proconsa.online\n\n")
	fmt.Fprintf(&b, "**Fecha de generación:** %s\n\n", now.Format("2006-01-02 15:04"))
	months := acc.Months()
	if len(months) > 0 {
		fmt.Fprintf(&b, "**Período analizado:** %s a %s\n\n", months[0], months[len(months)-1])
	}
	b.WriteString("---\n\n")

	b.WriteString("## MÉTRICAS GENERALES\n\n| Métrica | Valor |\n|---|---|\n")
	fmt.Fprintf(&b, "| Total de sesiones | %d |\n", acc.Sessions)
	fmt.Fprintf(&b, "| Total de mensajes | %d |\n", acc.Messages)
	fmt.Fprintf(&b, "| Sesiones con participación de visitante | %d |\n", acc.LeadCandidates)
	fmt.Fprintf(&b, "| Promedio mensajes por sesión | %.1f |\n", ratio(acc.Messages, acc.Sessions))
	fmt.Fprintf(&b, "| Emails capturados | %d |\n", acc.UniqueEmailCount())
	fmt.Fprintf(&b, "| Tasa de captura de email | %.1f%% |\n\n", ratio(acc.UniqueEmailCount(), acc.Sessions)*100)

	b.WriteString("## SESIONES POR MES\n\n| Mes | Sesiones | Tendencia |\n|---|---|---|\n")
	prev := -1
	for _, month := range months {
		count := acc.SessionsByMonth[month]
		trend := "→"
		if prev >= 0 {
			if count > prev {
				trend = "↑"
			} else if count < prev {
				trend = "↓"
			}
		}
		fmt.Fprintf(&b, "| %s | %d | %s |\n", month, count, trend)
		prev = count
	}
	b.WriteString("\n")

	b.WriteString("## SESIONES POR DÍA DE LA SEMANA\n\n| Día | Sesiones |\n|---|---|\n")
	for _, wd := range WeekdayOrder {
		fmt.Fprintf(&b, "| %s | %d |\n", WeekdayName(wd), acc.SessionsByWeekday[wd])
	}
	b.WriteString("\n")

	b.WriteString("## SESIONES POR HORA (UTC)\n\n| Hora | Sesiones | Volumen |\n|---|---|---|\n")
	for hour := 0; hour < 24; hour++ {
		count := acc.SessionsByHour[hour]
		if count == 0 {
			continue
		}
		pct := 0.0
		if acc.Sessions > 0 {
			pct = float64(count) * 100 / float64(acc.Sessions)
		}
		fmt.Fprintf(&b, "| %02d:00 | %d | %.1f%% %s |\n", hour, count, pct, bar(pct))
	}
	b.WriteString("\n")

	b.WriteString("## INTENCIONES DETECTADAS\n\n| Intención | Sesiones |\n|---|---|\n")
	for _, tc := range acc.TopIntents() {
		fmt.Fprintf(&b, "| %s | %d |\n", tc.Tag, tc.Count)
	}
	b.WriteString("\n")

	b.WriteString("## PRODUCTOS MENCIONADOS\n\n| Producto | Sesiones |\n|---|---|\n")
	for _, tc := range acc.TopProducts() {
		fmt.Fprintf(&b, "| %s | %d |\n", tc.Tag, tc.Count)
	}
	b.WriteString("\n")

	writeExecutiveFindings(&b, acc)
	writeExecutiveRecommendations(&b, acc)

	b.WriteString("---\n\n## ARCHIVOS GENERADOS\n\n")
	fmt.Fprintf(&b, "- `%s` - Detalle de cada sesión\n", DetailCSVName)
	fmt.Fprintf(&b, "- `%s` - Lista de emails capturados\n", EmailsCSVName)
	fmt.Fprintf(&b, "- `%s` - Métricas agregadas\n", MetricsCSVName)
	fmt.Fprintf(&b, "- `%s` - Este reporte\n", ExecutiveMDName)

	_, err := io.WriteString(w, b.String())
	return err
}

// tijuanaHour converts a UTC hour to store-local (Tijuana) time.
func tijuanaHour(utc int) int { return (utc + 16) % 24 }

// writeExecutiveFindings derives the headline conclusions from the
// accumulator: visitor profile, product demand, detected problems, lead
// capture and the peak hours and days.
func writeExecutiveFindings(b *strings.Builder, acc *aggregate.Accumulator) {
	total := acc.Sessions
	intents := acc.IntentCounts

	b.WriteString("## DEDUCCIONES Y HALLAZGOS CLAVE\n\n")

	b.WriteString("### Perfil del Visitante\n")
	fmt.Fprintf(b, "- **La mayoría de visitantes buscan cotizaciones de mayoreo** (%d sesiones, %.1f%%)\n",
		intents[catalog.IntentBulkQuote], ratio(intents[catalog.IntentBulkQuote], total)*100)
	fmt.Fprintf(b, "- **Los contratistas/constructores son un segmento importante** (%d sesiones)\n", intents[catalog.IntentContractor])
	fmt.Fprintf(b, "- **Los talleres/clínicas generan interés significativo** (%d sesiones)\n", intents[catalog.IntentWorkshops])
	fmt.Fprintf(b, "- **Visitantes que solo navegan** representan %d sesiones\n\n", intents[catalog.IntentBrowsing])

	b.WriteString("### Demanda de Productos\n")
	if top := acc.TopProducts(); len(top) > 0 {
		fmt.Fprintf(b, "- **Producto más consultado:** %s (%d menciones)\n", top[0].Tag, top[0].Count)
	} else {
		b.WriteString("- **Producto más consultado:** N/A\n")
	}
	b.WriteString("- Los productos de construcción pesada (varilla, cemento, vigueta) dominan las consultas\n")
	b.WriteString("- Existe demanda cruzada: quienes piden varilla también preguntan por cemento y arena\n\n")

	b.WriteString("### Problemas Detectados\n")
	fmt.Fprintf(b, "- **%d sesiones reportaron problemas con el sitio web**\n\n", intents[catalog.IntentSiteProblem])

	b.WriteString("### Captura de Leads\n")
	fmt.Fprintf(b, "- Se capturaron **%d emails únicos** de visitantes\n", acc.UniqueEmailCount())
	fmt.Fprintf(b, "- Tasa de captura: **%.1f%%** del total de sesiones\n", ratio(acc.UniqueEmailCount(), total)*100)
	b.WriteString("- Los emails se capturan principalmente en flujos de cotización de mayoreo\n\n")

	if peaks := peakHours(acc, 5); len(peaks) > 0 {
		b.WriteString("### Horarios Pico\n")
		b.WriteString("Las horas con más actividad (UTC → Tijuana):\n")
		for _, h := range peaks {
			fmt.Fprintf(b, "- **%02d:00 UTC (%02d:00 Tijuana):** %d sesiones\n", h, tijuanaHour(h), acc.SessionsByHour[h])
		}
		b.WriteString("\n")
	}

	if days := peakWeekdays(acc, 3); len(days) > 0 {
		b.WriteString("### Días Más Activos\n")
		for _, d := range days {
			fmt.Fprintf(b, "- **%s:** %d sesiones (%.1f%%)\n", WeekdayName(d), acc.SessionsByWeekday[d], ratio(acc.SessionsByWeekday[d], total)*100)
		}
		b.WriteString("\n")
	}
}

func writeExecutiveRecommendations(b *strings.Builder, acc *aggregate.Accumulator) {
	intents := acc.IntentCounts

	b.WriteString("## RECOMENDACIONES Y ACCIONES\n\n")

	b.WriteString("### 🔴 ACCIONES URGENTES (Impacto Alto, Esfuerzo Bajo)\n\n")
	b.WriteString("1. **Asignar operadores humanos en horarios pico**\n")
	b.WriteString("   - Muchas sesiones terminan sin resolución porque no hay operadores disponibles\n")
	if peaks := peakHours(acc, 3); len(peaks) > 0 {
		local := make([]string, len(peaks))
		for i, h := range peaks {
			local[i] = fmt.Sprintf("%02d:00", tijuanaHour(h))
		}
		fmt.Fprintf(b, "   - Priorizar horarios: %s (hora Tijuana)\n", strings.Join(local, ", "))
	}
	b.WriteString("\n2. **Dar seguimiento a los emails capturados**\n")
	fmt.Fprintf(b, "   - Hay %d leads sin seguimiento confirmado\n", acc.UniqueEmailCount())
	b.WriteString("   - Crear campaña de email marketing dirigida a estos prospectos\n\n")
	b.WriteString("3. **Revisar y corregir problemas del sitio web**\n")
	fmt.Fprintf(b, "   - %d visitantes reportaron problemas técnicos\n\n", intents[catalog.IntentSiteProblem])

	b.WriteString("### 🟡 ACCIONES IMPORTANTES (Impacto Alto, Esfuerzo Medio)\n\n")
	b.WriteString("4. **Mejorar el flujo del chatbot para cotizaciones de mayoreo**\n")
	b.WriteString("   - Es la intención #1 de los visitantes\n")
	b.WriteString("   - Automatizar la generación de cotizaciones básicas\n\n")
	b.WriteString("5. **Crear landing pages específicas para contratistas**\n")
	fmt.Fprintf(b, "   - %d sesiones identificadas como contratistas\n", intents[catalog.IntentContractor])
	b.WriteString("   - Ofrecer programa de lealtad o descuentos por volumen\n\n")
	b.WriteString("6. **Potenciar los talleres/clínicas como herramienta de captación**\n")
	fmt.Fprintf(b, "   - %d sesiones mostraron interés en capacitación\n", intents[catalog.IntentWorkshops])
	b.WriteString("   - Usar talleres como gancho para capturar datos de contacto\n\n")

	b.WriteString("### 🟢 ACCIONES ESTRATÉGICAS (Impacto Medio-Alto, Esfuerzo Alto)\n\n")
	b.WriteString("7. **Implementar catálogo digital con precios en el chat**\n")
	b.WriteString("8. **Segmentar la base de datos por tipo de cliente**\n")
	b.WriteString("9. **Implementar sistema de seguimiento post-chat**\n")
	b.WriteString("10. **Analizar productos más demandados para optimizar inventario**\n\n")
}

// peakHours lists the busiest hours, highest first; early hours win ties so
// the output is stable run to run.
func peakHours(acc *aggregate.Accumulator, limit int) []int {
	var hours []int
	for h, count := range acc.SessionsByHour {
		if count > 0 {
			hours = append(hours, h)
		}
	}
	sort.Slice(hours, func(i, j int) bool {
		ci, cj := acc.SessionsByHour[hours[i]], acc.SessionsByHour[hours[j]]
		if ci != cj {
			return ci > cj
		}
		return hours[i] < hours[j]
	})
	if len(hours) > limit {
		hours = hours[:limit]
	}
	return hours
}

func peakWeekdays(acc *aggregate.Accumulator, limit int) []time.Weekday {
	var days []time.Weekday
	for _, d := range WeekdayOrder {
		if acc.SessionsByWeekday[d] > 0 {
			days = append(days, d)
		}
	}
	sort.SliceStable(days, func(i, j int) bool {
		return acc.SessionsByWeekday[days[i]] > acc.SessionsByWeekday[days[j]]
	})
	if len(days) > limit {
		days = days[:limit]
	}
	return days
}

func ratio(n, d int) float64 {
	if d <= 0 {
		d = 1
	}
	return float64(n) / float64(d)
}

type typeCount struct {
	name  string
	count int
}

func sortTypeCounts(m map[string]int) []typeCount {
	out := make([]typeCount, 0, len(m))
	for name, count := range m {
		out = append(out, typeCount{name, count})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].count != out[j].count {
			return out[i].count > out[j].count
		}
		return out[i].name < out[j].name
	})
	return out
}

func filterTier(leads []models.LeadRecord, tier int) []models.LeadRecord {
	var out []models.LeadRecord
	for _, l := range leads {
		if l.PriorityTier == tier {
			out = append(out, l)
		}
	}
	return out
}

func truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max])
}

func bar(pct float64) string {
	n := int(pct / 2)
	if n > 40 {
		n = 40
	}
	return strings.Repeat("█", n)
}
