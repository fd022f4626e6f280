package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"gita/config"
	"gita/internal/adapter/analyzer"
	"gita/internal/adapter/corpus"
	"gita/internal/adapter/fs"
	"gita/internal/adapter/retriever"
	"gita/internal/domain"
	"gita/internal/port"
	"gita/internal/usage"
	"gita/internal/usecase"
)

func main() {
	dir := flag.String("dir", ".", "Directory holding gita.yaml and the corpus")
	query := flag.String("q", "", "Question to test")
	topN := flag.Int("n", 5, "Verses per selection")
	rounds := flag.Int("rounds", 5, "Times the question is repeated in one session")
	flag.Parse()

	if *query == "" {
		fmt.Println("Usage: go run cmd/benchmark/main.go -dir . -q \"question\"")
		fmt.Println("\nTests:")
		fmt.Println("  1. Similarity quality (token overlap vs sense network)")
		fmt.Println("  2. Rotation (distinct verses and chapters over repeated asks)")
		os.Exit(1)
	}

	cfg, err := config.LoadFromDir(*dir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}

	normalizer := analyzer.NewNormalizer(cfg.Normalize)
	indexUC := usecase.NewIndexUseCase(
		corpus.NewLoader(fs.NewWalker(cfg.Corpus.Exclude)),
		normalizer,
		cfg.Corpus.MatchField,
		cfg.Corpus.Workers,
	)
	result, err := indexUC.Index(context.Background(), config.ResolvePath(*dir, cfg.Corpus.Path), usecase.IndexOptions{})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading corpus: %v\n", err)
		os.Exit(1)
	}

	fmt.Println("VERSE RETRIEVAL BENCHMARK")
	fmt.Println(strings.Repeat("=", 70))
	fmt.Printf("Verses: %d in %d chapters (matching %s)\n", result.Verses, result.Chapters, result.Corpus.Field())
	fmt.Printf("Query:  \"%s\"\n", *query)
	fmt.Printf("Normalized: \"%s\"\n", normalizer.Normalize(*query))
	fmt.Println()

	senses, err := analyzer.NewSenseNetwork(
		analyzer.WithThreshold(cfg.Similarity.RelatedThreshold),
		analyzer.WithStemRelations(cfg.Similarity.StemsAreRelated),
	)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Sense network not available: %v\n", err)
		os.Exit(1)
	}

	scorers := []struct {
		name   string
		scorer port.Scorer
	}{
		{"token overlap", retriever.NewSimilarityScorer()},
		{"overlap + senses", retriever.NewSimilarityScorer(
			retriever.WithRelatedness(senses),
			retriever.WithWeights(cfg.Similarity.JaccardWeight, cfg.Similarity.SemanticWeight),
		)},
	}

	for _, s := range scorers {
		retrieve := usecase.NewRetrieveUseCase(
			normalizer,
			retriever.NewRanker(s.scorer, cfg.Rank, retriever.WithJitter(func() float64 { return 1 })),
			retriever.NewDiversitySelector(),
			usage.NewTracker(nil),
			result.Corpus,
		)
		runScorer(s.name, retrieve, *query, *topN, *rounds)
	}
}

func runScorer(name string, retrieve *usecase.RetrieveUseCase, query string, topN, rounds int) {
	fmt.Printf("[%s]\n", name)
	fmt.Println(strings.Repeat("-", 70))

	ctx := context.Background()
	state := domain.NewUsageState()
	verses := make(map[domain.VerseID]struct{})
	chapters := make(map[int]struct{})

	var first domain.Selection
	for round := range rounds {
		var sel domain.Selection
		sel, state = retrieve.FindRelevantVerses(ctx, query, topN, state)
		if round == 0 {
			first = sel
		}
		for _, v := range sel.Verses {
			verses[v.VerseID] = struct{}{}
			chapters[v.Chapter] = struct{}{}
		}
	}

	if first.Empty() {
		fmt.Println("No verses matched.")
		fmt.Println()
		return
	}

	total := 0.0
	for _, v := range first.Verses {
		preview := v.Meaning
		if preview == "" {
			preview = v.VerseText
		}
		if len(preview) > 100 {
			preview = preview[:100] + "..."
		}
		fmt.Printf("%d. [%s %.3f] %s\n", v.Rank, rating(v.RawSimilarity), v.RawSimilarity, v.VerseID)
		fmt.Printf("   %s\n", preview)
		total += v.RawSimilarity
	}

	fmt.Printf("\n  Average similarity: %.3f\n", total/float64(len(first.Verses)))
	fmt.Printf("  Top-1 similarity:   %.3f\n", first.Verses[0].RawSimilarity)
	fmt.Printf("  Over %d rounds:      %d distinct verses, %d chapters\n", rounds, len(verses), len(chapters))
	fmt.Println()
}

func rating(similarity float64) string {
	switch {
	case similarity > 0.5:
		return "HIGH"
	case similarity > 0.3:
		return "GOOD"
	case similarity > 0.1:
		return "OK"
	}
	return "LOW"
}
