package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"docqa/internal/adapter/chunker"
	"docqa/internal/adapter/fs"
)

var (
	chunkMaxBytes int
	chunkBoundary string
	chunkJSON     bool
	chunkRaw      bool
)

var chunkCmd = &cobra.Command{
	Use:   "chunk [file|dir|glob]...",
	Short: "Show how a document is split into chunks",
	Long: `Print the chunks a document is split into before embedding, with their byte
lengths. Useful for tuning chunk.max_bytes and chunk.boundary.

Examples:
  docqa chunk paper.txt
  docqa chunk --max-bytes 120 --boundary exclusive --json paper.txt`,
	Args: cobra.MinimumNArgs(1),
	RunE: runChunk,
}

func init() {
	rootCmd.AddCommand(chunkCmd)
	chunkCmd.Flags().IntVarP(&chunkMaxBytes, "max-bytes", "m", 0, "byte budget per chunk (default from config)")
	chunkCmd.Flags().StringVar(&chunkBoundary, "boundary", "", "inclusive or exclusive (default from config)")
	chunkCmd.Flags().BoolVar(&chunkJSON, "json", false, "output as JSON")
	chunkCmd.Flags().BoolVar(&chunkRaw, "raw", false, "skip normalization")
}

type chunkOutput struct {
	Path   string      `json:"path"`
	Chunks []chunkLine `json:"chunks"`
}

type chunkLine struct {
	Index int    `json:"index"`
	Bytes int    `json:"bytes"`
	Text  string `json:"text"`
}

func runChunk(cmd *cobra.Command, args []string) error {
	cfg := GetConfig()

	maxBytes := cfg.Chunk.MaxBytes
	if chunkMaxBytes > 0 {
		maxBytes = chunkMaxBytes
	}
	boundary := cfg.Chunk.Boundary
	if chunkBoundary != "" {
		boundary = chunkBoundary
	}

	chk, err := newChunker(boundary)
	if err != nil {
		return err
	}

	files, err := fs.NewWalker(nil, nil).Resolve(args)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	var outputs []chunkOutput

	for _, f := range files {
		text, err := fs.FileReader{}.ReadFile(f.Path)
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", f.Path, err)
		}
		if !chunkRaw {
			text = chunker.Normalize(text)
		}

		chunks, err := chk.Chunk(text, maxBytes)
		if err != nil {
			return fmt.Errorf("%s: %w", f.Path, err)
		}

		o := chunkOutput{Path: f.Path, Chunks: make([]chunkLine, len(chunks))}
		for i, c := range chunks {
			o.Chunks[i] = chunkLine{Index: c.Index, Bytes: len(c.Text), Text: c.Text}
		}

		if chunkJSON {
			outputs = append(outputs, o)
			continue
		}

		fmt.Fprintf(out, "=== %s: %d chunks (max %d bytes, %s) ===\n", f.Path, len(chunks), maxBytes, boundary)
		for _, c := range o.Chunks {
			fmt.Fprintf(out, "[%d] %d bytes: %s\n", c.Index, c.Bytes, c.Text)
		}
		fmt.Fprintln(out)
	}

	if chunkJSON {
		data, err := json.MarshalIndent(outputs, "", "  ")
		if err != nil {
			return err
		}
		fmt.Fprintln(out, string(data))
	}

	return nil
}
