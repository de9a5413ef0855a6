package prompt

import "strings"

const separator = "\n\n"

// Assembler lays out the generation prompt: preamble, the selected chunks, then the question,
// each part separated by a blank line. Nothing is truncated; callers size K and the chunk
// budget so the result fits the model's input limit.
type Assembler struct {
	preamble string
}

func NewAssembler(preamble string) *Assembler {
	return &Assembler{preamble: preamble}
}

func (a *Assembler) Assemble(chunks []string, query string) string {
	var b strings.Builder
	b.WriteString(a.preamble)
	b.WriteString(separator)
	b.WriteString(strings.Join(chunks, separator))
	b.WriteString(separator)
	b.WriteString(query)
	return b.String()
}
