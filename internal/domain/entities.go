package domain

// Vector is an embedding produced by an embedding model.
type Vector []float32

type Chunk struct {
	Index int
	Text  string
}

type EmbeddedChunk struct {
	Chunk  Chunk
	Vector Vector
}

type ScoredChunk struct {
	Chunk Chunk
	Score float64
}

type Role string

const (
	RoleUser  Role = "user"
	RoleModel Role = "model"
)

// Turn is a single message of a conversation.
type Turn struct {
	Role Role   `json:"role" yaml:"role"`
	Text string `json:"text" yaml:"text"`
}

// RetrievalResult is what one question about a document produces.
type RetrievalResult struct {
	Response  string   `json:"response"`
	TopChunks []string `json:"top_chunks"`
	Prompt    string   `json:"prompt"`

	// Hits holds the selected chunks with their similarity scores, in TopChunks order.
	Hits []ScoredChunk `json:"-"`
	// GenerationErr is set when generation failed and Response was left empty.
	GenerationErr error `json:"-"`
}
