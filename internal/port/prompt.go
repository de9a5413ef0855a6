package port

// PromptAssembler builds the generation prompt from the selected chunks and the question.
type PromptAssembler interface {
	Assemble(chunks []string, query string) string
}
