package pipeline

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"docqa/internal/rag/interfaces"
	"docqa/internal/rag/schema"
	"docqa/pkg/logger"
)

// InsufficientEvidenceAnswer is returned, without invoking the language
// model, when retrieval found no evidence.
const InsufficientEvidenceAnswer = "I don't have enough information in the selected documents to answer that question."

// modelUnavailableAnswer is returned when the language model keeps failing
// after a retry.
const modelUnavailableAnswer = "The language model is currently unavailable, so this question cannot be answered right now. Please try again later."

const systemInstruction = `You are a document question-answering assistant. Answer the question using ONLY the numbered context passages below. Cite passages inline as [1], [2], ... matching their numbers. If the context does not contain the answer, say so plainly instead of guessing. Never invent citations.`

// excerptLen bounds the citation excerpt taken from each chunk.
const excerptLen = 200

// QAPipeline composes a grounded answer from a query and a retrieval result.
type QAPipeline struct {
	llm interfaces.LLM
	log *logger.Logger
}

// NewQAPipeline creates a new QAPipeline.
func NewQAPipeline(llm interfaces.LLM, log *logger.Logger) *QAPipeline {
	return &QAPipeline{llm: llm, log: log}
}

// Run builds a provenance-tagged prompt from the retrieval result, invokes
// the language model, and attaches one citation per ranked chunk. When the
// retriever reported no evidence, it short-circuits with a fixed answer and
// no model call. A model failure is retried once; a second failure yields a
// degraded answer rather than an error.
func (p *QAPipeline) Run(ctx context.Context, query string, result *schema.RetrievalResult) (*schema.Answer, error) {
	if result.Empty() {
		p.log.Info("No evidence retrieved, returning the insufficient-information answer")
		return &schema.Answer{Text: InsufficientEvidenceAnswer, Citations: []schema.Citation{}, Degraded: true}, nil
	}

	prompt := p.buildPrompt(query, result.Matches)

	text, err := p.llm.Generate(ctx, prompt)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		p.log.Warn(fmt.Sprintf("Language model call failed, retrying once: %v", err))
		text, err = p.llm.Generate(ctx, prompt)
	}
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		if !errors.Is(err, schema.ErrLanguageModel) {
			err = fmt.Errorf("%w: %v", schema.ErrLanguageModel, err)
		}
		p.log.Error(fmt.Sprintf("Language model failed after retry: %v", err))
		return &schema.Answer{Text: modelUnavailableAnswer, Citations: []schema.Citation{}, Degraded: true}, nil
	}

	return &schema.Answer{
		Text:      text,
		Citations: citations(result.Matches),
	}, nil
}

// buildPrompt assembles the system instruction, the numbered context block
// and the question. Context entries keep the retriever's ranking order so
// citation numbers line up with the answer's citation list.
func (p *QAPipeline) buildPrompt(query string, matches []*schema.ScoredChunk) string {
	var sb strings.Builder

	sb.WriteString(systemInstruction)
	sb.WriteString("\n\nContext:\n")

	for i, m := range matches {
		prov := m.Chunk.Provenance
		sb.WriteString(fmt.Sprintf("[%d] %s, page %d", i+1, prov.Document, prov.PageStart))
		if prov.Clause != "" {
			sb.WriteString(fmt.Sprintf(" (%s)", prov.Clause))
		}
		sb.WriteString(":\n")
		sb.WriteString(m.Chunk.Text)
		sb.WriteString("\n---\n")
	}

	sb.WriteString(fmt.Sprintf("\nQuestion: %s", query))
	return sb.String()
}

// citations maps the ranked chunks 1:1 to citation entries.
func citations(matches []*schema.ScoredChunk) []schema.Citation {
	out := make([]schema.Citation, len(matches))
	for i, m := range matches {
		out[i] = schema.Citation{
			Document: m.Chunk.Provenance.Document,
			Page:     m.Chunk.Provenance.PageStart,
			Clause:   m.Chunk.Provenance.Clause,
			Excerpt:  excerpt(m.Chunk.Text),
		}
	}
	return out
}

func excerpt(text string) string {
	runes := []rune(text)
	if len(runes) <= excerptLen {
		return text
	}
	return string(runes[:excerptLen]) + "…"
}
