package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"
	"sync"

	"github.com/google/uuid"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"docqa/internal/adapter/chunker"
	"docqa/internal/adapter/fs"
	"docqa/internal/domain"
	"docqa/internal/logger"
	"docqa/internal/port"
	"docqa/internal/usecase"
)

var (
	askQuery      string
	askTopK       int
	askJSON       bool
	askSession    string
	askShowPrompt bool
	askNoProgress bool
)

var askCmd = &cobra.Command{
	Use:   "ask [file|dir|glob]...",
	Short: "Answer a question from a document",
	Long: `Answer a question using the chunks of each document most similar to it.

Every matched file is searched on its own; results are printed per file.
With --session the conversation is kept and sent along with later questions.

Examples:
  docqa ask -q "what dataset was used?" paper.txt
  docqa ask -q "compare the baselines" --top-k 5 --json "papers/**/*.txt"
  docqa ask -q "explain section 3" --session new paper.txt`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAsk,
}

func init() {
	rootCmd.AddCommand(askCmd)
	askCmd.Flags().StringVarP(&askQuery, "query", "q", "", "question to ask (required)")
	askCmd.Flags().IntVarP(&askTopK, "top-k", "k", 0, "number of chunks in the prompt (default from config)")
	askCmd.Flags().BoolVar(&askJSON, "json", false, "output as JSON")
	askCmd.Flags().StringVarP(&askSession, "session", "s", "", `session id to continue, or "new"`)
	askCmd.Flags().BoolVar(&askShowPrompt, "show-prompt", false, "print the prompt sent to the model")
	askCmd.Flags().BoolVar(&askNoProgress, "no-progress", false, "disable the progress bar")
	askCmd.MarkFlagRequired("query")
}

// askOutput is one document's result in --json mode.
type askOutput struct {
	Path      string                  `json:"path"`
	Session   string                  `json:"session,omitempty"`
	Error     string                  `json:"generation_error,omitempty"`
	Result    *domain.RetrievalResult `json:"result"`
	TopScores []float64               `json:"top_scores"`
}

func runAsk(cmd *cobra.Command, args []string) error {
	cfg := GetConfig()
	if askTopK > 0 {
		cfg.Retrieve.TopK = askTopK
	}

	files, err := fs.NewWalker(nil, nil).Resolve(args)
	if err != nil {
		return err
	}

	uc, err := newRetrieveUseCase(cfg)
	if err != nil {
		return err
	}

	history, err := openHistory(cfg, GetRootDir())
	if err != nil {
		return err
	}
	defer history.Close()

	sessionID := askSession
	if sessionID == "new" {
		sessionID = uuid.NewString()
	}

	ctx := cmd.Context()
	out := cmd.OutOrStdout()
	reader := fs.FileReader{}

	for _, f := range files {
		text, err := reader.ReadFile(f.Path)
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", f.Path, err)
		}

		var turns []domain.Turn
		if sessionID != "" {
			if turns, err = history.Load(sessionID); err != nil {
				return err
			}
		}

		run := uc
		if !askNoProgress && !askJSON {
			run = uc.WithProgress(newEmbedProgress(cmd.ErrOrStderr(), filepath.Base(f.Path)))
		}

		log := logger.With("path", f.Path)
		result, err := run.Retrieve(logger.WithContext(ctx, log), askQuery, text, turns)
		if err != nil {
			return fmt.Errorf("%s: %w", f.Path, err)
		}

		if err := recordTurn(history, sessionID, result); err != nil {
			return err
		}

		if askJSON {
			if err := printJSON(out, f, sessionID, result); err != nil {
				return err
			}
			continue
		}
		printResult(out, cmd.ErrOrStderr(), f, sessionID, result)
	}

	return nil
}

// recordTurn stores the exchange unless generation failed.
func recordTurn(history port.HistoryStore, sessionID string, result *domain.RetrievalResult) error {
	if sessionID == "" || result.GenerationErr != nil {
		return nil
	}
	return history.Append(sessionID,
		domain.Turn{Role: domain.RoleUser, Text: askQuery},
		domain.Turn{Role: domain.RoleModel, Text: result.Response},
	)
}

func newEmbedProgress(w io.Writer, name string) usecase.ProgressFunc {
	var (
		once sync.Once
		bar  *progressbar.ProgressBar
	)
	return func(done, total int) {
		once.Do(func() {
			bar = progressbar.NewOptions(total,
				progressbar.OptionSetWriter(w),
				progressbar.OptionEnableColorCodes(true),
				progressbar.OptionSetWidth(40),
				progressbar.OptionShowCount(),
				progressbar.OptionSetDescription("[cyan]Embedding[reset] "+name),
				progressbar.OptionSetTheme(progressbar.Theme{
					Saucer:        "[green]=[reset]",
					SaucerHead:    "[green]>[reset]",
					SaucerPadding: " ",
					BarStart:      "[",
					BarEnd:        "]",
				}),
				progressbar.OptionClearOnFinish(),
			)
		})
		bar.Add(1)
	}
}

func printJSON(w io.Writer, f port.FileInfo, sessionID string, result *domain.RetrievalResult) error {
	o := askOutput{
		Path:      f.Path,
		Session:   sessionID,
		Result:    result,
		TopScores: make([]float64, len(result.Hits)),
	}
	for i, h := range result.Hits {
		o.TopScores[i] = h.Score
	}
	if result.GenerationErr != nil {
		o.Error = result.GenerationErr.Error()
	}

	data, err := json.MarshalIndent(o, "", "  ")
	if err != nil {
		return err
	}
	fmt.Fprintln(w, string(data))
	return nil
}

func printResult(w, errW io.Writer, f port.FileInfo, sessionID string, result *domain.RetrievalResult) {
	fmt.Fprintf(w, "=== %s ===\n", f.Path)
	if sessionID != "" {
		fmt.Fprintf(w, "session: %s\n", sessionID)
	}

	if askShowPrompt {
		fmt.Fprintf(w, "\n--- prompt ---\n%s\n", result.Prompt)
	}

	fmt.Fprintf(w, "\n--- top %d chunks ---\n", len(result.Hits))
	for i, h := range result.Hits {
		fmt.Fprintf(w, "[%d] (score: %.3f) %s\n", i+1, h.Score, chunker.Preview(h.Chunk.Text, 200))
	}

	fmt.Fprintln(w, "\n--- answer ---")
	if result.GenerationErr != nil {
		fmt.Fprintf(errW, "(answer generation failed: %v)\n", result.GenerationErr)
	} else {
		fmt.Fprintln(w, result.Response)
	}
	fmt.Fprintln(w)
}
