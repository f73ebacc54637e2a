package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/croftt/kbchat-backend/internal/builder"
	"github.com/croftt/kbchat-backend/internal/entity"
	"github.com/croftt/kbchat-backend/internal/repository"
	"github.com/croftt/kbchat-backend/internal/usecase/chat"
)

const chunkSearchLimit = 10

func main() {
	query := flag.String("query", "", "Run a retrieval against the knowledge base and print raw and normalized results")
	listModels := flag.Bool("list-models", false, "List the foundation models exposed by the model runtime")
	chunksLike := flag.String("chunks-like", "", "Search the backing store for chunks containing the given term")
	sample := flag.Bool("sample", false, "Print the first rows of the backing store's chunk table")
	applySchema := flag.Bool("apply-schema", false, "Apply the knowledge base schema migrations to the backing store")

	diag, err := builder.BuildDiagnostics()
	if err != nil {
		log.Fatal("Failed to build diagnostics:", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	ran := false

	if *applySchema {
		ran = true
		if err := diag.ApplySchema(); err != nil {
			fail(err)
		}
		fmt.Println("schema applied")
	}

	if *query != "" {
		ran = true
		if err := runQuery(ctx, diag, *query); err != nil {
			fail(err)
		}
	}

	if *listModels {
		ran = true
		if err := runListModels(ctx, diag); err != nil {
			fail(err)
		}
	}

	if *chunksLike != "" || *sample {
		ran = true
		if err := runChunkInspection(ctx, diag, *chunksLike, *sample); err != nil {
			fail(err)
		}
	}

	if !ran {
		flag.Usage()
		os.Exit(2)
	}
}

func fail(err error) {
	fmt.Fprintln(os.Stderr, "error:", err)
	os.Exit(1)
}

func runQuery(ctx context.Context, diag *builder.Diagnostics, query string) error {
	raw, err := diag.KnowledgeBase.Retrieve(ctx, query, diag.Cfg.KBConnectorCfg.TopK)
	if err != nil {
		return fmt.Errorf("retrieve: %w", err)
	}

	pretty, err := json.MarshalIndent(raw, "", "  ")
	if err != nil {
		return fmt.Errorf("encode raw response: %w", err)
	}
	fmt.Println("raw response:")
	fmt.Println(string(pretty))

	passages := chat.NormalizeBatch(raw)
	fmt.Printf("\nnormalized passages: %d\n", len(passages))
	for i, p := range passages {
		score := "-"
		if p.Score != nil {
			score = fmt.Sprintf("%.4f", *p.Score)
		}
		fmt.Printf("[%d] id=%q score=%s text=%q\n", i, p.ID, score, preview(p.Text, 120))
	}

	assembled := chat.BuildContext(passages)
	fmt.Printf("\nassembled context: %d chars\n", len([]rune(assembled)))
	return nil
}

func runListModels(ctx context.Context, diag *builder.Diagnostics) error {
	models, err := diag.ModelRuntime.ListFoundationModels(ctx)
	if err != nil {
		return fmt.Errorf("list models: %w", err)
	}

	fmt.Printf("foundation models: %d\n", len(models))
	for _, m := range models {
		fmt.Printf("%-60s %-30s %s\n", m.ModelID, m.ModelName, m.ProviderName)
	}
	return nil
}

func runChunkInspection(ctx context.Context, diag *builder.Diagnostics, term string, sample bool) error {
	pool, err := diag.OpenDatabase(ctx)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer pool.Close()

	repo := repository.NewChunkPostgres(pool)

	if term != "" {
		chunks, err := repo.SearchChunks(ctx, term, chunkSearchLimit)
		if err != nil {
			return fmt.Errorf("search chunks: %w", err)
		}
		fmt.Printf("chunks matching %q: %d\n", term, len(chunks))
		printChunks(chunks)
	}

	if sample {
		chunks, err := repo.SampleChunks(ctx, chunkSearchLimit)
		if err != nil {
			return fmt.Errorf("sample chunks: %w", err)
		}
		fmt.Printf("sample chunks: %d\n", len(chunks))
		printChunks(chunks)
	}

	return nil
}

func printChunks(chunks []entity.Chunk) {
	for _, c := range chunks {
		fmt.Printf("id=%s\n  %s\n", c.ID, preview(c.Chunks, 200))
	}
}

func preview(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit]) + "..."
}
