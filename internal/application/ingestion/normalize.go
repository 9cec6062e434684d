package ingestion

import (
	"context"
	"strings"
	"time"

	"github.com/caixo/backend/internal/domain/ingestion"
	"github.com/caixo/backend/internal/domain/shared"
	"github.com/caixo/backend/internal/infrastructure/logger"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// errUnusableExtraction marks a model answer that parsed as JSON but does
// not contain a usable financial record. Terminal: retrying the same
// message would produce the same answer.
func errUnusableExtraction(detail string) error {
	return shared.NewDomainError("CLASSIFICATION_UNUSABLE", detail)
}

var dateLayouts = []string{"2006-01-02", "02/01/2006", "02-01-2006"}

// normalize turns the model's raw answer into a domain payload, applying
// the pipeline's consistency rules: positive amount, recognized date
// layouts, confidence clamped to [0,1], future competence pulled back to
// today, description falling back to the message text.
func normalize(ctx context.Context, raw *RawExtraction, rawText string, today time.Time) (ingestion.ExtractedPayload, error) {
	var payload ingestion.ExtractedPayload

	amount, err := parseAmount(raw.Amount)
	if err != nil {
		return payload, err
	}

	cashDate, err := parseDate(raw.CashDate)
	if err != nil {
		return payload, errUnusableExtraction("payment date missing or unrecognized: " + raw.CashDate)
	}

	competence := cashDate
	if strings.TrimSpace(raw.CompetenceDate) != "" {
		competence, err = parseDate(raw.CompetenceDate)
		if err != nil {
			return payload, errUnusableExtraction("competence date unrecognized: " + raw.CompetenceDate)
		}
	}
	today = truncateToDay(today)
	if competence.After(today) {
		logger.L(ctx).Warn("future competence date clamped to today",
			zap.Time("competence_date", competence))
		competence = today
	}

	description := strings.TrimSpace(raw.Description)
	if description == "" {
		description = firstRunes(strings.TrimSpace(rawText), 100)
	}
	if description == "" {
		return payload, errUnusableExtraction("no description could be derived")
	}

	if strings.TrimSpace(raw.Category) == "" || strings.TrimSpace(raw.Subcategory) == "" {
		return payload, errUnusableExtraction("category suggestion missing")
	}

	confidence := raw.Confidence
	if confidence < 0 {
		confidence = 0
	}
	if confidence > 1 {
		confidence = 1
	}

	payload = ingestion.ExtractedPayload{
		Amount:          amount,
		Description:     description,
		CashDate:        cashDate,
		CompetenceDate:  competence,
		Category:        strings.TrimSpace(raw.Category),
		Subcategory:     strings.TrimSpace(raw.Subcategory),
		Supplier:        strings.TrimSpace(raw.Supplier),
		Confidence:      confidence,
		CategoryWarning: strings.TrimSpace(raw.CategoryWarning),
		PaymentDone:     raw.PaymentDone,
	}

	if raw.PaymentDone && strings.TrimSpace(raw.PaidAmount) != "" {
		paid, err := parseAmount(raw.PaidAmount)
		if err == nil {
			payload.PaidAmount = &paid
		} else {
			logger.L(ctx).Warn("discarding unparseable paid amount", zap.String("valor_pago", raw.PaidAmount))
		}
	}

	return payload, nil
}

// parseAmount accepts the model's decimal-dot form plus the Brazilian
// comma form users type ("1.234,56", "R$ 150,50").
func parseAmount(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(s), "R$"))
	if strings.Contains(s, ",") {
		s = strings.ReplaceAll(s, ".", "")
		s = strings.ReplaceAll(s, ",", ".")
	}
	amount, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, errUnusableExtraction("amount missing or unrecognized: " + s)
	}
	if amount.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero, errUnusableExtraction("amount must be positive: " + amount.String())
	}
	return amount, nil
}

func parseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, errUnusableExtraction("unrecognized date: " + s)
}

func truncateToDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func firstRunes(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
