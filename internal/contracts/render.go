package contracts

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/luminastudio/lumina-backend/pkg/db/models"
)

// Tokens computed at render time. They are injected automatically and must
// never be requested from the client, even when the template references them.
const (
	TokenTotal         = "valor_total"
	TokenSignatureDate = "data_assinatura"
	TokenItemsTable    = "tabela_itens"
)

var tokenPattern = regexp.MustCompile(`\{\{\s*([A-Za-z0-9_]+)\s*\}\}`)

// ExtractVariables returns the distinct token names referenced by the
// template, in order of first appearance.
func ExtractVariables(content string) []string {
	matches := tokenPattern.FindAllStringSubmatch(content, -1)
	seen := make(map[string]bool, len(matches))
	names := make([]string, 0, len(matches))
	for _, m := range matches {
		name := m[1]
		if seen[name] {
			continue
		}
		seen[name] = true
		names = append(names, name)
	}
	return names
}

// RequiredFields returns the variables the client-data form must collect:
// every referenced token except the computed ones.
func RequiredFields(content string) []string {
	vars := ExtractVariables(content)
	fields := make([]string, 0, len(vars))
	for _, name := range vars {
		switch name {
		case TokenTotal, TokenSignatureDate, TokenItemsTable:
			continue
		}
		fields = append(fields, name)
	}
	return fields
}

// RenderInput carries everything substitution needs. Values holds the
// client-supplied data keyed by token name.
type RenderInput struct {
	Content string
	Values  map[string]string
	Items   []models.ProposalItem
	Total   decimal.Decimal
	Now     time.Time
}

// Render expands {{token}} placeholders in a single case-sensitive pass.
// Unmatched tokens are left verbatim so a malformed template never blocks
// signing; rendering already-rendered content is a no-op.
func Render(in RenderInput) string {
	return tokenPattern.ReplaceAllStringFunc(in.Content, func(raw string) string {
		name := tokenPattern.FindStringSubmatch(raw)[1]
		switch name {
		case TokenTotal:
			return FormatBRL(in.Total)
		case TokenSignatureDate:
			return in.Now.Format("02/01/2006")
		case TokenItemsTable:
			return renderItemsTable(in.Items)
		}
		if value, ok := in.Values[name]; ok {
			return value
		}
		return raw
	})
}

// FormatBRL renders a decimal amount as Brazilian currency, e.g. "R$ 1.234,56".
func FormatBRL(amount decimal.Decimal) string {
	fixed := amount.StringFixed(2)
	negative := strings.HasPrefix(fixed, "-")
	fixed = strings.TrimPrefix(fixed, "-")

	parts := strings.SplitN(fixed, ".", 2)
	intPart, fracPart := parts[0], parts[1]

	var grouped strings.Builder
	for i, digit := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			grouped.WriteByte('.')
		}
		grouped.WriteRune(digit)
	}

	sign := ""
	if negative {
		sign = "-"
	}
	return fmt.Sprintf("R$ %s%s,%s", sign, grouped.String(), fracPart)
}

func renderItemsTable(items []models.ProposalItem) string {
	if len(items) == 0 {
		return "Nenhum item."
	}

	var b strings.Builder
	for i, item := range items {
		if i > 0 {
			b.WriteByte('\n')
		}
		if item.ShowPrice {
			subtotal := item.UnitPrice.Mul(decimal.NewFromInt(int64(item.Quantity)))
			fmt.Fprintf(&b, "- %s (x%d) — %s — subtotal %s",
				item.Name, item.Quantity, FormatBRL(item.UnitPrice), FormatBRL(subtotal))
		} else {
			fmt.Fprintf(&b, "- %s (x%d) — incluso", item.Name, item.Quantity)
		}
	}
	return b.String()
}
