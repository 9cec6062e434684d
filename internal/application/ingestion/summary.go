package ingestion

import (
	"strings"

	"github.com/caixo/backend/internal/domain/ingestion"
	"github.com/shopspring/decimal"
)

// User-facing texts, PT-BR like the audience
const (
	MsgTranscriptionFailed  = "Não consegui entender o áudio. Pode enviar novamente ou escrever o texto?"
	MsgClassificationFailed = "Não consegui entender os dados. Pode enviar novamente de forma mais clara?"
	MsgLowConfidenceDefault = "Não tenho 100% de certeza sobre a categorização. Por favor, confira!"
	lowConfidenceThreshold  = 0.8
)

// FormatSummary renders the extracted payload as the confirmation card
// text sent to the user.
func FormatSummary(p ingestion.ExtractedPayload) string {
	var b strings.Builder

	b.WriteString("💰 *Valor:* " + FormatBRL(p.Amount))
	b.WriteString("\n📝 *Descrição:* " + p.Description)
	b.WriteString("\n📅 *Data de Pagamento:* " + p.CashDate.Format("02/01/2006"))
	b.WriteString("\n📊 *Data de Competência:* " + p.CompetenceDate.Format("02/01/2006"))
	b.WriteString("\n🏷️ *Categoria:* " + p.Category)
	b.WriteString("\n📌 *Subcategoria:* " + p.Subcategory)

	if p.Supplier != "" {
		b.WriteString("\n🏢 *Fornecedor:* " + p.Supplier)
	}

	if p.Confidence < lowConfidenceThreshold {
		if p.CategoryWarning != "" {
			b.WriteString("\n\n⚠️ *Aviso:* " + p.CategoryWarning + "\nPor favor, confira se a categoria está correta!")
		} else {
			b.WriteString("\n\n⚠️ *Atenção:* " + MsgLowConfidenceDefault)
		}
	}

	if p.PaymentDone {
		b.WriteString("\n✅ *Pagamento já realizado*")
		if p.PaidAmount != nil && !p.PaidAmount.Equal(p.Amount) {
			b.WriteString(" (Valor pago: " + FormatBRL(*p.PaidAmount) + ")")
		}
	}

	return b.String()
}

// FormatBRL renders a decimal in Brazilian currency form: dot thousand
// separators, comma decimals ("R$ 1.234,56").
func FormatBRL(d decimal.Decimal) string {
	s := d.StringFixed(2)

	negative := strings.HasPrefix(s, "-")
	s = strings.TrimPrefix(s, "-")

	parts := strings.SplitN(s, ".", 2)
	intPart, fracPart := parts[0], parts[1]

	var groups []string
	for len(intPart) > 3 {
		groups = append([]string{intPart[len(intPart)-3:]}, groups...)
		intPart = intPart[:len(intPart)-3]
	}
	groups = append([]string{intPart}, groups...)

	out := "R$ " + strings.Join(groups, ".") + "," + fracPart
	if negative {
		out = "R$ -" + strings.Join(groups, ".") + "," + fracPart
	}
	return out
}
