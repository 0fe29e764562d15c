package prompt

import (
	"fmt"
	"strings"
)

// SummaryPrompt asks for a short free-text recap of the meeting so far.
func SummaryPrompt(fullContext string) string {
	return fmt.Sprintf(`Sei un assistente per consulenti professionisti. Riassumi la seguente conversazione in un paragrafo conciso (massimo 150 parole), in italiano, evidenziando i punti salienti e le richieste del cliente.

CONVERSAZIONE:
---
%s
---

Rispondi SOLO con il testo del riassunto, senza preamboli.`, fullContext)
}

// StructuredSummaryPrompt asks for the three-section summary used by the
// final report.
func StructuredSummaryPrompt(fullContext string) string {
	return fmt.Sprintf(`Analizza la seguente conversazione tra un consulente e un cliente e produci un riepilogo strutturato.

CONVERSAZIONE:
---
%s
---

# SCHEMA OUTPUT JSON RIGOROSO: Rispondi SOLO con un oggetto JSON con una chiave 'meetingSummary':
{
  "meetingSummary": {
    "obiettivi": ["[Obiettivo emerso dalla conversazione]"],
    "problemi": ["[Problema o criticità sollevata dal cliente]"],
    "decisioni": ["[Decisione presa o orientamento condiviso]"]
  }
}
# Ogni array deve contenere da 1 a 5 voci brevi. Se una sezione non ha contenuti, usa un array vuoto.`, fullContext)
}

// TasksPrompt asks for the post-meeting task list.
func TasksPrompt(fullContext string) string {
	return fmt.Sprintf(`Sei l'assistente di un consulente professionista. In base alla conversazione seguente, genera le attività operative che il consulente dovrà svolgere dopo il meeting.

CONVERSAZIONE:
---
%s
---

# SCHEMA OUTPUT JSON RIGOROSO: Rispondi SOLO con un array JSON di massimo 4 oggetti:
[
  {"title": "[Titolo breve dell'attività]", "description": "[Descrizione operativa in una frase]"}
]
# Non aggiungere testo fuori dal JSON.`, fullContext)
}

// AdvicePrompt turns already-extracted data into concrete guidance for the
// consultant. Seeded with the extraction output so the two passes agree.
func AdvicePrompt(consultantType, fullContext string, extractedTitles []string) string {
	var seed strings.Builder
	for _, title := range extractedTitles {
		seed.WriteString("- " + title + "\n")
	}
	return fmt.Sprintf(`Sei il co-pilota di un/una %s durante un meeting. Sono appena state individuate queste opportunità/informazioni:
%s
CONTESTO:
---
%s
---

# SCHEMA OUTPUT JSON RIGOROSO: Rispondi SOLO con un oggetto JSON:
{
  "actionableAdvice": {
    "questionsForClient": ["[Domanda da porre subito al cliente per qualificare l'opportunità]"],
    "requiredDocuments": ["[Documento che il cliente dovrà preparare]"],
    "nextSteps": ["[Passo operativo per il consulente]"]
  }
}
# Massimo 3 voci per array. Sii concreto e specifico per il settore del cliente.`, consultantType, seed.String(), fullContext)
}

// QuestionPrompt answers a direct question from the consultant, grounded in
// the running conversation.
func QuestionPrompt(consultantType, fullContext, question string) string {
	return fmt.Sprintf(`Sei l'assistente AI di un/una %s. Rispondi alla domanda del consulente basandoti sul contesto del meeting in corso. Rispondi in italiano, in modo diretto e professionale, massimo 120 parole.

CONTESTO MEETING:
---
%s
---

DOMANDA DEL CONSULENTE: %s`, consultantType, fullContext, question)
}
