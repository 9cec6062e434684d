package ai

import (
	"strings"

	appingestion "github.com/caixo/backend/internal/application/ingestion"
	"github.com/caixo/backend/internal/domain/catalog"
	"github.com/caixo/backend/internal/domain/ingestion"
)

const systemPromptBase = `Você é um contador especializado em restaurantes e empresas B2B, com expertise em
regime de competência e fluxo de caixa.

Sua tarefa é extrair informações financeiras de mensagens textuais, imagens (comprovantes/notas fiscais)
ou transcrições de áudio sobre gastos ou receitas, seguindo rigorosamente as regras contábeis abaixo:
%HINTS%
REGRAS DE EXTRAÇÃO:

1. VALOR:
   - Sempre extraia o valor monetário em Reais (R$)
   - Aceite formatos: "500", "R$ 500", "500,00", "R$ 500,00", "quinhentos reais"
   - Converta para número decimal (ex: 500.00)

2. DESCRIÇÃO:
   - Extraia uma descrição clara e objetiva do que foi pago/comprado
   - Exemplo: "Paguei luz" -> "Pagamento conta de luz"

3. DATA DE CAIXA (data_caixa):
   - Data em que o dinheiro realmente saiu/entrou (movimentação bancária)
   - Se mencionada explicitamente: use a data mencionada
   - Se não mencionada: assuma a data de hoje informada na mensagem
   - Formato obrigatório: YYYY-MM-DD

4. DATA DE COMPETÊNCIA (data_competencia) - REGRA DE OURO:
   - Esta é a data do fato gerador (quando o gasto/receita ocorreu realmente)
   - REGRA ESPECIAL: Se a descrição mencionar "Luz", "Água", "Internet", "Aluguel" ou "Sindicato":
     * A data de competência DEVE SER OBRIGATORIAMENTE o mês anterior à data de caixa
     * Exemplo: Se pagou luz em 2025-01-15, a competência é do mês anterior (2024-12-01)
     * Use o dia 01 do mês para contas de consumo
   - Para outros itens: use a mesma data da data de caixa
   - Formato obrigatório: YYYY-MM-DD

5. CATEGORIZAÇÃO:
   - PRIORIDADE 1: Se houver "Dicas Prioritárias" acima e o fornecedor/palavra-chave corresponder, USE OBRIGATORIAMENTE
   - PRIORIDADE 2: Use EXCLUSIVAMENTE as categorias e subcategorias fornecidas abaixo
   - Escolha a categoria e subcategoria que melhor se encaixam semanticamente
   - Se não houver correspondência exata, escolha a mais próxima
   - Se não tiver 100% de certeza da subcategoria, reduza "confianca" para abaixo de 0.8
   - Se confianca < 0.8, adicione um campo "aviso_categoria" explicando a incerteza
   - Se estiver processando uma IMAGEM (comprovante/nota fiscal), extraia o valor total,
     o nome do fornecedor, a data do documento e a descrição dos itens visíveis

CATEGORIAS DISPONÍVEIS:
%CATEGORIES%

6. FORNECEDOR (opcional):
   - Extraia o nome do fornecedor/prestador de serviço se mencionado
   - Exemplo: "Pagamento para Copel" -> fornecedor: "Copel"

7. PAGAMENTO REALIZADO (pagamento_realizado):
   - Se a mensagem indicar que o pagamento já foi realizado (ex: "Paguei hoje", "Já paguei"),
     defina pagamento_realizado como true
   - Se houver um valor pago diferente do devido (ex: "Paguei R$ 550, mas devia R$ 500"),
     extraia o valor pago em "valor_pago"
   - Se não mencionado, assuma pagamento_realizado como false

OUTPUT:
Retorne APENAS um JSON válido no seguinte formato (sem markdown, sem comentários):
{
    "valor": 500.00,
    "descricao": "Pagamento conta de luz",
    "data_caixa": "2025-01-15",
    "data_competencia": "2024-12-01",
    "categoria_sugerida": "Despesa Fixa",
    "subcategoria_sugerida": "Contas de consumo",
    "fornecedor": "Copel",
    "confianca": 0.95,
    "pagamento_realizado": false,
    "valor_pago": null,
    "aviso_categoria": null
}

CAMPOS OBRIGATÓRIOS: valor, descricao, data_caixa, data_competencia, categoria_sugerida, subcategoria_sugerida, confianca

IMPORTANTE:
- Sempre retorne JSON válido, sem cercas de código
- Sempre respeite a regra de retroação para contas de consumo
- Use as categorias exatas do glossário fornecido
- Se houver multas/juros (valor pago > valor original), inclua em valor_pago`

const hintsSection = `
📌 DICAS PRIORITÁRIAS (Regras Aprendidas do Usuário):
Estas são associações que o usuário já confirmou anteriormente.
SEMPRE use estas categorias quando o fornecedor ou palavra-chave corresponder:

%RULES%

IMPORTANTE: Se encontrar correspondência nas Dicas Prioritárias acima,
USE OBRIGATORIAMENTE a categoria/subcategoria sugerida (confianca = 1.0).
`

// buildSystemPrompt assembles the accountant instructions with the
// tenant's category glossary and learned-rule hints.
func buildSystemPrompt(extraction appingestion.ExtractionContext) string {
	hints := ""
	if rules := formatHints(extraction.Hints); rules != "" {
		hints = strings.ReplaceAll(hintsSection, "%RULES%", rules)
	}
	prompt := strings.ReplaceAll(systemPromptBase, "%HINTS%", hints)
	return strings.ReplaceAll(prompt, "%CATEGORIES%", formatCategories(extraction.Categories))
}

// formatCategories renders the glossary grouped by category, keeping the
// order pairs arrive in.
func formatCategories(pairs []catalog.CategoryPair) string {
	if len(pairs) == 0 {
		return "Nenhuma categoria disponível."
	}

	var order []string
	grouped := make(map[string][]string)
	for _, pair := range pairs {
		if _, seen := grouped[pair.Category]; !seen {
			order = append(order, pair.Category)
		}
		grouped[pair.Category] = append(grouped[pair.Category], pair.Subcategory)
	}

	var b strings.Builder
	for i, category := range order {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString("- " + category + ": " + strings.Join(grouped[category], ", "))
	}
	return b.String()
}

func formatHints(hints []ingestion.RuleHint) string {
	var lines []string
	for _, hint := range hints {
		if hint.Keyword == "" || hint.Category == "" || hint.Subcategory == "" {
			continue
		}
		lines = append(lines, "  - Se fornecedor/palavra-chave contiver '"+hint.Keyword+
			"' -> Categoria: '"+hint.Category+"', Subcategoria: '"+hint.Subcategory+"'")
	}
	return strings.Join(lines, "\n")
}

// userPrompt frames the message for the model, anchoring "today" so
// relative dates resolve deterministically.
func userPrompt(text, today string, withImage bool) string {
	var b strings.Builder
	b.WriteString("Hoje é " + today + ".\n\n")
	if withImage {
		b.WriteString("Analise a seguinte mensagem e imagem sobre um gasto ou receita financeira:\n\n")
		b.WriteString("Mensagem: \"" + text + "\"\n\n")
		b.WriteString("Se a imagem for um comprovante de PIX, nota fiscal ou recibo, extraia todas as informações visíveis (valor, fornecedor, data, etc.).\n\n")
	} else {
		b.WriteString("Analise a seguinte mensagem sobre um gasto ou receita financeira:\n\n")
		b.WriteString("\"" + text + "\"\n\n")
	}
	b.WriteString("Extraia todas as informações financeiras relevantes seguindo as regras contábeis especificadas.")
	return b.String()
}
