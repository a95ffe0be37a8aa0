package catalog

// defaultEmailPattern matches an email address anywhere in a message.
const defaultEmailPattern = `[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}`

var defaultIntents = map[string]string{
	IntentBulkQuote:      `cotizaci[oó]n.*mayoreo|mayoreo|precio.*mayoreo`,
	IntentWorkshops:      `taller|cl[ií]nica|capacitaci[oó]n|curso|inscrib`,
	IntentSiteProblem:    `problema.*sitio|no.*funciona|error|no.*carga|no.*puedo`,
	IntentBrowsing:       `solo.*viendo|nada.*gracias|no.*gracias|solo.*mirando`,
	IntentSeekingProduct: `busco|necesito|quiero|donde.*encuentro|tienen`,
	IntentPrice:          `precio|costo|cu[aá]nto.*cuesta|cu[aá]nto.*vale`,
	IntentAvailability:   `disponib|hay.*en.*stock|tienen.*en.*existencia`,
	IntentShipping:       `env[ií]o|entrega|domicilio|mandan`,
	IntentHours:          `horario|abren|cierran|hora`,
	IntentLocation:       `ubicaci[oó]n|direcci[oó]n|donde.*est[aá]n|sucursal`,
	IntentReturns:        `devoluci[oó]n|cambio|garant[ií]a`,
	IntentInvoicing:      `factura|facturaci[oó]n|cfdi|rfc`,
	IntentContractor:     `contratista|constructor|obra|proyecto`,
}

var defaultProducts = map[string]string{
	"Varilla/Acero":      `varilla|acero|alambre|clavo|malla|solera|perfil.*met[aá]l`,
	"Cemento/Concreto":   `cemento|concreto|mortero|mezcla|block|tabique|tabic[oó]n`,
	"Pintura":            `pintura|rodillo|brocha|impermeabilizante|sellador|esmalte`,
	"Pisos/Loseta":       `piso|loseta|porcelanato|azulejo|cer[aá]mica|adocreto`,
	"Plomería":           `tubo|tuber[ií]a|v[aá]lvula|llave|conector|plomer[ií]a|tinaco`,
	"Electricidad":       `cable|el[eé]ctric|interruptor|contacto|l[aá]mpara|foco`,
	"Herramientas":       `herramienta|taladro|sierra|martillo|llave|desarmador`,
	"Madera":             `madera|triplay|plywood|tabla|poste|viga`,
	"Ferretería":         `tornillo|pija|ancla|bisagra|jaladera|chapa|cerradura`,
	"Impermeabilizante":  `impermeabilizante|impermeable|membrana|asfalto`,
	"Vigueta/Estructura": `vigueta|bovedilla|castillo|armex|estructura`,
	"Arena/Grava":        `arena|grava|piedra|material.*p[eé]treo`,
}

// Default returns the built-in Spanish vocabulary: 13 intent rules and 12
// product-category rules.
func Default() *Catalog {
	c, err := build(file{
		Intents:      defaultIntents,
		Products:     defaultProducts,
		EmailPattern: defaultEmailPattern,
	})
	if err != nil {
		// The built-in tables are compile-time constants; a failure here
		// is a programming error.
		panic(err)
	}
	return c
}
