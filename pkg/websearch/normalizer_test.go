package websearch

import (
	"testing"
)

func TestNormalize(t *testing.T) {
	n := NewNormalizer("bando OR finanziamento", "bandi e finanziamenti PMI")

	tests := []struct {
		name          string
		utterance     string
		clientContext string
		want          string
	}{
		{
			name:      "strips stop words and short tokens",
			utterance: "Buongiorno dottore, volevo sapere dei bandi per l'edilizia",
			want:      "dei bandi edilizia bando OR finanziamento",
		},
		{
			name:          "prepends sector from client context",
			utterance:     "novità sui contributi",
			clientContext: "Cliente: Acme Srl, Settore: Edilizia",
			want:          "Edilizia novità sui contributi bando OR finanziamento",
		},
		{
			name:      "dedups repeated tokens",
			utterance: "bandi bandi bandi regionali",
			want:      "bandi regionali bando OR finanziamento",
		},
		{
			name:      "all filler falls back to the domain query",
			utterance: "buongiorno dottore, volevo sapere",
			want:      "bandi e finanziamenti PMI",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := n.Normalize(tt.utterance, tt.clientContext)
			if got != tt.want {
				t.Errorf("Normalize() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestExtractSector(t *testing.T) {
	tests := []struct {
		context string
		want    string
	}{
		{"Cliente: Rossi SRL, Settore: Edilizia", "Edilizia"},
		{"settore: agricoltura biologica", "agricoltura biologica"},
		{"Cliente: Rossi SRL", ""},
	}
	for _, tt := range tests {
		if got := ExtractSector(tt.context); got != tt.want {
			t.Errorf("ExtractSector(%q) = %q, want %q", tt.context, got, tt.want)
		}
	}
}
