package insight

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"ai-copilot-be/internal/pkg/logger"
)

func newExtractor(t *testing.T) *Extractor {
	t.Helper()
	return NewExtractor(logger.NewIsolatedLogger(t.TempDir() + "/test.log"))
}

func TestSuggestionsParsesEnvelope(t *testing.T) {
	e := newExtractor(t)

	raw := `{"extractedData":[{"type":"Bando Pubblico","title":"Bando ISI INAIL","summary":"Contributi a fondo perduto.","source":"INAIL","details":{"scadenza":"30/06/2026"},"directLink":"https://example.it/isi"}]}`

	got := e.Suggestions(raw)

	assert.Len(t, got, 1)
	assert.Equal(t, "Bando Pubblico", got[0].Type)
	assert.Equal(t, "Bando ISI INAIL", got[0].Title)
	assert.Equal(t, "INAIL", got[0].Source)
	assert.Equal(t, "30/06/2026", got[0].Details["scadenza"])
	assert.NotEqual(t, "", got[0].Id.String())
}

// Non-JSON model output is wrapped verbatim as a single suggestion.
func TestSuggestionsWrapsRawTextOnMalformedJSON(t *testing.T) {
	e := newExtractor(t)

	raw := "Ecco cosa ho trovato: il bando regionale scade a giugno."

	got := e.Suggestions(raw)

	assert.Len(t, got, 1)
	assert.Equal(t, raw, got[0].Summary)
	assert.Equal(t, "Risposta AI", got[0].Type)
}

func TestSuggestionsEmptyInput(t *testing.T) {
	e := newExtractor(t)
	assert.Nil(t, e.Suggestions("   "))
}

func TestSuggestionsEmptyEnvelopeFallsBack(t *testing.T) {
	e := newExtractor(t)

	got := e.Suggestions(`{"extractedData":[]}`)

	assert.Len(t, got, 1)
}

func TestAdviceParsesEnvelope(t *testing.T) {
	e := newExtractor(t)

	raw := `{"actionableAdvice":{"questionsForClient":["Quanti dipendenti avete?"],"requiredDocuments":["DURC"],"nextSteps":["Verificare i requisiti"]}}`

	got := e.Advice(raw)

	assert.NotNil(t, got)
	assert.Equal(t, []string{"Quanti dipendenti avete?"}, got.QuestionsForClient)
}

func TestAdviceDropsMalformedOutput(t *testing.T) {
	e := newExtractor(t)
	assert.Nil(t, e.Advice("non è json"))
	assert.Nil(t, e.Advice(`{"actionableAdvice":{}}`))
}

func TestTasksCapsAtFour(t *testing.T) {
	e := newExtractor(t)

	raw := `[{"title":"a"},{"title":"b"},{"title":"c"},{"title":"d"},{"title":"e"}]`

	got := e.Tasks(raw)

	assert.Len(t, got, 4)
}

func TestTasksDropsMalformedOutput(t *testing.T) {
	e := newExtractor(t)
	assert.Nil(t, e.Tasks("nessun json qui"))
}

func TestStructuredSummary(t *testing.T) {
	e := newExtractor(t)

	raw := `{"meetingSummary":{"obiettivi":["Aprire una seconda sede"],"problemi":["Liquidità limitata"],"decisioni":[]}}`

	got := e.StructuredSummary(raw)

	assert.NotNil(t, got)
	assert.Equal(t, []string{"Aprire una seconda sede"}, got.Obiettivi)
	assert.Empty(t, got.Decisioni)
}
