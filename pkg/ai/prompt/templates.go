package prompt

// SpecializationTemplate drives the role section of the insight prompt.
type SpecializationTemplate struct {
	Role       string
	FocusAreas []string
}

// Recognized consultant specializations. "Consulente" is the generic
// fallback template used for anything unrecognized.
const GenericConsultantType = "Consulente"

var specializations = map[string]SpecializationTemplate{
	"Consulente del Lavoro": {
		Role: "consulente del lavoro esperto in contrattualistica, incentivi all'assunzione e adempimenti verso gli enti",
		FocusAreas: []string{
			"bandi pubblici e incentivi all'assunzione",
			"contratti collettivi e inquadramento",
			"adempimenti INPS/INAIL",
		},
	},
	"Commercialista": {
		Role: "commercialista esperto in fiscalità d'impresa, bilanci e finanza agevolata",
		FocusAreas: []string{
			"agevolazioni fiscali e crediti d'imposta",
			"bandi e finanziamenti per le imprese",
			"pianificazione fiscale",
		},
	},
	"Avvocato": {
		Role: "avvocato esperto in diritto commerciale e contrattualistica d'impresa",
		FocusAreas: []string{
			"normativa di settore e compliance",
			"contrattualistica",
			"contenzioso e tutela del credito",
		},
	},
	"Consulente Finanziario": {
		Role: "consulente finanziario esperto in strumenti di finanza agevolata e accesso al credito",
		FocusAreas: []string{
			"finanziamenti e garanzie pubbliche",
			"bandi regionali ed europei",
			"pianificazione finanziaria",
		},
	},
	GenericConsultantType: {
		Role: "consulente professionale esperto",
		FocusAreas: []string{
			"bandi pubblici e finanziamenti",
			"opportunità rilevanti per il settore del cliente",
		},
	},
}

// RecognizedTypes lists the specializations a session may start with.
func RecognizedTypes() []string {
	types := make([]string, 0, len(specializations))
	for t := range specializations {
		types = append(types, t)
	}
	return types
}

// templateFor never fails: unrecognized types get the generic template so
// prompt rendering keeps working even when session validation is bypassed.
func templateFor(consultantType string) SpecializationTemplate {
	if t, ok := specializations[consultantType]; ok {
		return t
	}
	return specializations[GenericConsultantType]
}
