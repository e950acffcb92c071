package payment

import "testing"

var (
	testCompleted = []string{
		"concluído", "concluída", "concluido", "concluida",
		"aprovado", "aprovada", "confirmado", "confirmada",
		"pago", "paga", "sucesso",
	}
	testPending = []string{"aguardando", "pendente", "processando", "em andamento"}
)

func newTestClassifier() *Classifier {
	return NewClassifier(testCompleted, testPending)
}

func TestClassifyStatus(t *testing.T) {
	c := newTestClassifier()

	tests := []struct {
		name string
		text string
		want Status
	}{
		{"confirmed payment", "pagamento confirmado", StatusCompleted},
		{"uppercase", "STATUS: PAGO", StatusCompleted},
		{"approved but awaiting", "pagamento aprovado, aguardando liberação", StatusPending},
		{"awaiting only", "aguardando pagamento", StatusPending},
		{"in progress", "pagamento em andamento", StatusPending},
		{"unrelated chatter", "olá, tudo bem?", StatusUnrecognized},
		{"empty", "", StatusUnrecognized},
		{"substring inside word", "pagamento recebido", StatusCompleted}, // "paga" inside "pagamento"
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := c.Classify(tt.text)
			if got.Status != tt.want {
				t.Errorf("Classify(%q).Status = %s, want %s", tt.text, got.Status, tt.want)
			}
		})
	}
}

func TestClassifyExtraction(t *testing.T) {
	c := newTestClassifier()

	text := "ID do comprador: 555\nValor total do carrinho: R$ 3,00\nStatus: Pago"
	got := c.Classify(text)

	if got.Status != StatusCompleted {
		t.Fatalf("Status = %s, want completed", got.Status)
	}
	if got.BuyerID != "555" {
		t.Errorf("BuyerID = %q, want %q", got.BuyerID, "555")
	}
	if got.RawAmount != "R$ 3,00" {
		t.Errorf("RawAmount = %q, want %q", got.RawAmount, "R$ 3,00")
	}
}

func TestClassifyExtractionMarkdown(t *testing.T) {
	c := newTestClassifier()

	// The notifier sometimes bolds the field labels
	text := "**ID do comprador:** 987654\n**Valor total do carrinho:** R$ 1.234,56\nPagamento concluído com sucesso"
	got := c.Classify(text)

	if got.Status != StatusCompleted {
		t.Fatalf("Status = %s, want completed", got.Status)
	}
	if got.BuyerID != "987654" {
		t.Errorf("BuyerID = %q, want %q", got.BuyerID, "987654")
	}
	if got.RawAmount != "R$ 1.234,56" {
		t.Errorf("RawAmount = %q, want %q", got.RawAmount, "R$ 1.234,56")
	}
}

func TestClassifyCompletedWithoutFields(t *testing.T) {
	c := newTestClassifier()

	got := c.Classify("pagamento confirmado")
	if got.Status != StatusCompleted {
		t.Fatalf("Status = %s, want completed", got.Status)
	}
	if got.BuyerID != "" || got.RawAmount != "" {
		t.Errorf("expected empty extraction, got buyer=%q amount=%q", got.BuyerID, got.RawAmount)
	}
}

func TestClassifyCustomVocabulary(t *testing.T) {
	c := NewClassifier([]string{"completed", "paid"}, []string{"pending", "awaiting"})

	if got := c.Classify("payment completed"); got.Status != StatusCompleted {
		t.Errorf("completed vocabulary not matched: %s", got.Status)
	}
	if got := c.Classify("payment completed but awaiting settlement"); got.Status != StatusPending {
		t.Errorf("pending word must override completion: %s", got.Status)
	}
	if got := c.Classify("pagamento confirmado"); got.Status != StatusUnrecognized {
		t.Errorf("non-configured vocabulary must not match: %s", got.Status)
	}
}
