package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"chatleads/internal/analysis/aggregate"
	"chatleads/internal/models"
)

// Output file names, stable so downstream spreadsheets keep working.
const (
	LeadsCSVName         = "LEADS_SEGUIMIENTO_MARKETING.csv"
	ConversationsCSVName = "LEADS_CONVERSACIONES_COMPLETAS.csv"
	NoEmailCSVName       = "LEADS_SIN_EMAIL_OPORTUNIDADES.csv"
	MarketingReportName  = "REPORTE_SEGUIMIENTO_MARKETING.md"

	DetailCSVName   = "chat_conversaciones_detalle.csv"
	EmailsCSVName   = "chat_emails_capturados.csv"
	MetricsCSVName  = "chat_metricas.csv"
	ExecutiveMDName = "REPORTE_EJECUTIVO_CHAT.md"
)

// DetailRow is one analyzed conversation in the detail sheet, lead or not.
type DetailRow struct {
	SessionID       int64
	Date            time.Time
	Operator        string
	Country         string
	Active          bool
	MessageCount    int
	VisitorMessages int
	Intents         []string
	Products        []string
	Emails          []string
}

const chatDateLayout = "2006-01-02 15:04:05"

// WriteLeadsCSV writes the main follow-up sheet: one row per lead with a
// captured email, in the caller's (priority-sorted) order.
func WriteLeadsCSV(w io.Writer, leads []models.LeadRecord) error {
	cw := csv.NewWriter(w)
	header := []string{
		"prioridad", "fecha_chat", "dias_transcurridos", "email", "nombre_odoo",
		"telefono", "celular", "tipo_cliente", "productos_solicitados", "intenciones",
		"sugerencia_abordaje", "resumen_visitante", "ciudad", "estado", "empresa",
		"puesto", "es_cliente_existente", "ordenes_venta", "total_facturado",
		"num_mensajes", "session_id",
	}
	if err := cw.Write(header); err != nil {
		return err
	}

	for _, l := range leads {
		row := []string{
			l.PriorityLabel,
			l.ChatDate.Format(chatDateLayout),
			strconv.Itoa(l.DaysSinceContact),
			l.PrimaryEmail,
			l.Profile.Name,
			l.Profile.Phone,
			l.Profile.Mobile,
			l.ClientType,
			productsField(l.Products),
			intentsField(l.Intents),
			l.SuggestedApproach,
			l.SummaryExcerpt,
			l.Profile.City,
			l.Profile.State,
			l.Profile.Company,
			l.Profile.Function,
			strconv.FormatBool(l.IsExistingCustomer),
			strconv.Itoa(l.Profile.SaleOrderCount),
			fmt.Sprintf("%.2f", l.Profile.TotalInvoiced),
			strconv.Itoa(l.MessageCount),
			strconv.FormatInt(l.ConversationID, 10),
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteConversationsCSV writes full transcripts for leads with email, used
// as call-preparation context.
func WriteConversationsCSV(w io.Writer, leads []models.LeadRecord) error {
	cw := csv.NewWriter(w)
	header := []string{
		"prioridad", "fecha_chat", "email", "nombre_odoo", "tipo_cliente",
		"productos_solicitados", "conversacion_completa",
	}
	if err := cw.Write(header); err != nil {
		return err
	}

	for _, l := range leads {
		row := []string{
			l.PriorityLabel,
			l.ChatDate.Format(chatDateLayout),
			l.PrimaryEmail,
			l.Profile.Name,
			l.ClientType,
			productsField(l.Products),
			l.FullTranscript,
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteNoEmailCSV writes the missed-opportunity sheet: leads without a
// captured email but with real purchase intent (tier 3 or better).
func WriteNoEmailCSV(w io.Writer, leads []models.LeadRecord) error {
	cw := csv.NewWriter(w)
	header := []string{
		"prioridad", "fecha_chat", "dias_transcurridos", "tipo_cliente",
		"productos_solicitados", "intenciones", "resumen_visitante", "num_mensajes",
	}
	if err := cw.Write(header); err != nil {
		return err
	}

	for _, l := range leads {
		row := []string{
			l.PriorityLabel,
			l.ChatDate.Format(chatDateLayout),
			strconv.Itoa(l.DaysSinceContact),
			l.ClientType,
			productsField(l.Products),
			intentsField(l.Intents),
			l.SummaryExcerpt,
			strconv.Itoa(l.MessageCount),
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteDetailCSV writes one row per analyzed conversation, lead or not.
func WriteDetailCSV(w io.Writer, rows []DetailRow) error {
	cw := csv.NewWriter(w)
	header := []string{
		"session_id", "date", "operator", "country", "active",
		"num_messages", "visitor_messages", "intents", "products", "emails",
	}
	if err := cw.Write(header); err != nil {
		return err
	}

	for _, r := range rows {
		row := []string{
			strconv.FormatInt(r.SessionID, 10),
			r.Date.Format(chatDateLayout),
			r.Operator,
			r.Country,
			strconv.FormatBool(r.Active),
			strconv.Itoa(r.MessageCount),
			strconv.Itoa(r.VisitorMessages),
			strings.Join(r.Intents, ", "),
			strings.Join(r.Products, ", "),
			strings.Join(r.Emails, ", "),
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteEmailsCSV writes the deduplicated captured-email list, sorted.
func WriteEmailsCSV(w io.Writer, emails []string) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"email"}); err != nil {
		return err
	}
	for _, email := range emails {
		if err := cw.Write([]string{email}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteMetricsCSV writes the corpus tallies as a sectioned key/value sheet.
func WriteMetricsCSV(w io.Writer, acc *aggregate.Accumulator) error {
	cw := csv.NewWriter(w)
	rows := [][]string{
		{"Métrica", "Valor"},
		{"Total Sesiones", strconv.Itoa(acc.Sessions)},
		{"Total Mensajes", strconv.Itoa(acc.Messages)},
		{"Emails Capturados", strconv.Itoa(acc.UniqueEmailCount())},
		{"---", "---"},
		{"SESIONES POR MES", ""},
	}
	for _, month := range acc.Months() {
		rows = append(rows, []string{month, strconv.Itoa(acc.SessionsByMonth[month])})
	}

	rows = append(rows, []string{"---", "---"}, []string{"SESIONES POR DÍA", ""})
	for _, wd := range WeekdayOrder {
		rows = append(rows, []string{WeekdayName(wd), strconv.Itoa(acc.SessionsByWeekday[wd])})
	}

	rows = append(rows, []string{"---", "---"}, []string{"SESIONES POR HORA (UTC)", ""})
	for hour := 0; hour < 24; hour++ {
		if count, ok := acc.SessionsByHour[hour]; ok {
			rows = append(rows, []string{fmt.Sprintf("%d:00", hour), strconv.Itoa(count)})
		}
	}

	rows = append(rows, []string{"---", "---"}, []string{"INTENCIONES DETECTADAS", ""})
	for _, tc := range acc.TopIntents() {
		rows = append(rows, []string{tc.Tag, strconv.Itoa(tc.Count)})
	}

	rows = append(rows, []string{"---", "---"}, []string{"PRODUCTOS MENCIONADOS", ""})
	for _, tc := range acc.TopProducts() {
		rows = append(rows, []string{tc.Tag, strconv.Itoa(tc.Count)})
	}

	if err := cw.WriteAll(rows); err != nil {
		return err
	}
	return cw.Error()
}

func intentsField(tags []string) string {
	if len(tags) == 0 {
		return "sin_clasificar"
	}
	return strings.Join(tags, ", ")
}

func productsField(tags []string) string {
	if len(tags) == 0 {
		return "No especificado"
	}
	return strings.Join(tags, ", ")
}
