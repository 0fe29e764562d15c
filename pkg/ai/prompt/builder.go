package prompt

import (
	"fmt"
	"strings"

	"ai-copilot-be/pkg/websearch"
)

// maxHistoryChars caps how much conversation history is embedded in a single
// prompt. Long sessions keep the tail: the most recent exchange matters most.
const maxHistoryChars = 6000

// FullContext joins the client info with the transcribed conversation, the
// way every downstream prompt expects to see it.
func FullContext(clientInfo, conversationHistory string) string {
	return clientInfo + "\n\nSTORICO CONVERSAZIONE:\n" + truncateHistory(conversationHistory)
}

func truncateHistory(history string) string {
	if len(history) <= maxHistoryChars {
		return history
	}
	cut := history[len(history)-maxHistoryChars:]
	// Re-align to a word boundary after the cut. idx 0 means the cut landed
	// exactly on a space, which still needs dropping.
	if idx := strings.IndexByte(cut, ' '); idx >= 0 {
		cut = cut[idx+1:]
	}
	return "[...]" + cut
}

// InsightBuilder renders the extraction prompt for one utterance. Pure:
// identical inputs produce identical text, which keeps the search cache's
// dedup key meaningful across retries.
type InsightBuilder struct {
	consultantType  string
	fullContext     string
	latestUtterance string
	webResults      []websearch.Result
}

func NewInsightBuilder(consultantType, fullContext, latestUtterance string, webResults []websearch.Result) *InsightBuilder {
	return &InsightBuilder{
		consultantType:  consultantType,
		fullContext:     fullContext,
		latestUtterance: latestUtterance,
		webResults:      webResults,
	}
}

func (b *InsightBuilder) Build() string {
	var prompt strings.Builder

	b.writeMission(&prompt)
	b.writeContext(&prompt)
	b.writeWebResults(&prompt)
	b.writeOutputSchema(&prompt)

	return prompt.String()
}

func (b *InsightBuilder) writeMission(prompt *strings.Builder) {
	tpl := templateFor(b.consultantType)

	prompt.WriteString("### SISTEMA AI - CO-PILOTA PROFESSIONALE ADATTIVO ###\n")
	prompt.WriteString("# MISSIONE: Sei un assistente AI di élite per consulenti esperti. Il tuo compito è analizzare i risultati web forniti e estrarre le entità di informazione più importanti.\n")
	prompt.WriteString("# REGOLA FONDAMENTALE: DEVI dare la massima priorità al contesto del cliente (settore, nome) quando analizzi i risultati. I suggerimenti devono essere specifici per il settore del cliente.\n\n")
	prompt.WriteString(fmt.Sprintf("# Il consulente è un/una `%s` (%s).\n", b.consultantType, tpl.Role))
	prompt.WriteString("# AREE DI FOCUS:\n")
	for _, area := range tpl.FocusAreas {
		prompt.WriteString("# - " + area + "\n")
	}
	prompt.WriteString("\n")
}

func (b *InsightBuilder) writeContext(prompt *strings.Builder) {
	prompt.WriteString("# CONTESTO GENERALE:\n")
	prompt.WriteString("# Il contesto del cliente e la conversazione fino ad ora sono:\n")
	prompt.WriteString("# ---\n")
	prompt.WriteString(b.fullContext)
	prompt.WriteString("\n# ---\n\n")
	prompt.WriteString(fmt.Sprintf("# ULTIMA FRASE DETTA DAL CLIENTE: %q\n\n", b.latestUtterance))
}

func (b *InsightBuilder) writeWebResults(prompt *strings.Builder) {
	prompt.WriteString("# DATI DI INPUT DALLA RICERCA WEB:\n")
	if len(b.webResults) == 0 {
		prompt.WriteString("Nessun risultato web pertinente trovato.\n\n")
		return
	}
	prompt.WriteString("### RISULTATI RICERCA WEB IN TEMPO REALE ###\n")
	for i, result := range b.webResults {
		prompt.WriteString(fmt.Sprintf("--- Risultato %d ---\nTitolo: %s\nEstratto: %s\nURL: %s\n\n",
			i+1, result.Title, result.Snippet, result.Link))
	}
}

func (b *InsightBuilder) writeOutputSchema(prompt *strings.Builder) {
	prompt.WriteString(`# SCHEMA OUTPUT JSON RIGOROSO: La tua risposta DEVE essere un oggetto JSON con una chiave 'extractedData', che contiene un array di oggetti. Per ogni oggetto, popola i seguenti campi:
{
  "extractedData": [
    {
      "type": "[Identifica il tipo di dato, es: 'Bando Pubblico', 'Articolo Scientifico']",
      "title": "[Titolo del dato]",
      "summary": "[Sintesi di 1-2 frasi]",
      "source": "[Fonte o Ente Erogatore]",
      "details": {
        "info_chiave_1": "Valore 1",
        "info_chiave_2": "Valore 2"
      },
      "directLink": "[Link diretto alla risorsa]"
    }
  ]
}
# ISTRUZIONI PER IL CAMPO 'details': Sii intelligente. Inserisci le informazioni più pertinenti. Per un bando, le chiavi potrebbero essere 'scadenza' e 'destinatari'. Adatta dinamicamente le chiavi.
# REGOLE: Rispondi SOLO con il JSON. Sii fedele alla fonte.`)
}
