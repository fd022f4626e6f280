package analyzer

import (
	"fmt"
	"log/slog"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"gita/config"
)

// Stage rewrites the whole text before it is segmented.
type Stage interface {
	Name() string
	Apply(text string) (string, error)
}

// Token is a segmented word with the POS assigned to it, Noun until tagged.
type Token struct {
	Text string
	POS  POS
}

// TokenStage rewrites the token stream after segmentation.
type TokenStage interface {
	Name() string
	Apply(tokens []Token) ([]Token, error)
}

// Normalizer runs text through an ordered list of stages and joins the
// surviving tokens with single spaces. A stage that fails is skipped, so
// the worst case is lowercased text split on whitespace.
type Normalizer struct {
	text      []Stage
	segmenter Segmenter
	tokens    []TokenStage
	logger    *slog.Logger
}

// Option configures a Normalizer.
type Option func(*Normalizer)

// WithLogger sets the logger used for skipped stages.
func WithLogger(l *slog.Logger) Option {
	return func(n *Normalizer) { n.logger = l }
}

// WithTagger replaces the POS tagger used by the pos-tag stage.
func WithTagger(t Tagger) Option {
	return func(n *Normalizer) {
		for i, st := range n.tokens {
			if _, ok := st.(tagStage); ok {
				n.tokens[i] = tagStage{tagger: t}
			}
		}
	}
}

// NewNormalizer builds the pipeline enabled by cfg.
func NewNormalizer(cfg config.NormalizeConfig, opts ...Option) *Normalizer {
	n := &Normalizer{
		segmenter: NewSegmenter(cfg.Segmentation),
		logger:    slog.Default().With("component", "normalizer"),
	}

	n.text = append(n.text, lowercaseStage{})
	if cfg.FoldDiacritics {
		n.text = append(n.text, foldStage{})
	}
	n.text = append(n.text, stripStage{})

	// Tagging sees the full sentence, stop words included, because the
	// tagger leans on them for context.
	if cfg.POSTagging && cfg.Lemmatize {
		n.tokens = append(n.tokens, tagStage{tagger: NewHeuristicTagger()})
	}
	if cfg.Stopwords {
		n.tokens = append(n.tokens, stopwordStage{words: defaultStopwords()})
	}
	if cfg.Lemmatize {
		n.tokens = append(n.tokens, lemmaStage{lemmatizer: NewLemmatizer()})
	}

	for _, opt := range opts {
		opt(n)
	}
	return n
}

// Stages lists the active stage names in execution order.
func (n *Normalizer) Stages() []string {
	names := make([]string, 0, len(n.text)+len(n.tokens)+1)
	for _, st := range n.text {
		names = append(names, st.Name())
	}
	names = append(names, "segment:"+n.segmenter.Name())
	for _, st := range n.tokens {
		names = append(names, st.Name())
	}
	return names
}

// Normalize returns the canonical form of text. It never fails.
func (n *Normalizer) Normalize(text string) (out string) {
	defer func() {
		if r := recover(); r != nil {
			n.logger.Warn("normalization panicked", "panic", r)
			out = strings.ToLower(text)
		}
	}()

	cur := text
	for _, st := range n.text {
		next, err := st.Apply(cur)
		if err != nil {
			n.logger.Debug("stage skipped", "stage", st.Name(), "error", err)
			continue
		}
		cur = next
	}

	words, err := n.segmenter.Segment(cur)
	if err != nil {
		n.logger.Debug("segmenter failed, splitting on whitespace", "segmenter", n.segmenter.Name(), "error", err)
		words = strings.Fields(cur)
	}

	toks := make([]Token, len(words))
	for i, w := range words {
		toks[i] = Token{Text: w}
	}
	for _, st := range n.tokens {
		next, err := st.Apply(toks)
		if err != nil {
			n.logger.Debug("stage skipped", "stage", st.Name(), "error", err)
			continue
		}
		toks = next
	}

	parts := make([]string, 0, len(toks))
	for _, t := range toks {
		if t.Text != "" {
			parts = append(parts, t.Text)
		}
	}
	return strings.Join(parts, " ")
}

type lowercaseStage struct{}

func (lowercaseStage) Name() string { return "lowercase" }

// Casers hold state, so each call gets its own.
func (lowercaseStage) Apply(text string) (string, error) {
	return cases.Lower(language.English).String(text), nil
}

type foldStage struct{}

func (foldStage) Name() string { return "fold-diacritics" }

func (foldStage) Apply(text string) (string, error) {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, text)
	if err != nil {
		return "", fmt.Errorf("fold diacritics: %w", err)
	}
	return out, nil
}

type stripStage struct{}

func (stripStage) Name() string { return "strip-non-latin" }

func (stripStage) Apply(text string) (string, error) {
	return stripNonLatin(text), nil
}

type tagStage struct {
	tagger Tagger
}

func (tagStage) Name() string { return "pos-tag" }

func (s tagStage) Apply(tokens []Token) ([]Token, error) {
	words := make([]string, len(tokens))
	for i, t := range tokens {
		words[i] = t.Text
	}
	tags, err := s.tagger.Tag(words)
	if err != nil {
		return nil, err
	}
	if len(tags) != len(tokens) {
		return nil, fmt.Errorf("tagger returned %d tags for %d tokens", len(tags), len(tokens))
	}
	out := make([]Token, len(tokens))
	for i, t := range tokens {
		out[i] = Token{Text: t.Text, POS: tags[i]}
	}
	return out, nil
}

type stopwordStage struct {
	words map[string]struct{}
}

func (stopwordStage) Name() string { return "stopwords" }

func (s stopwordStage) Apply(tokens []Token) ([]Token, error) {
	out := make([]Token, 0, len(tokens))
	for _, t := range tokens {
		if _, stop := s.words[t.Text]; !stop {
			out = append(out, t)
		}
	}
	return out, nil
}

type lemmaStage struct {
	lemmatizer *Lemmatizer
}

func (lemmaStage) Name() string { return "lemmatize" }

func (s lemmaStage) Apply(tokens []Token) ([]Token, error) {
	out := make([]Token, len(tokens))
	for i, t := range tokens {
		out[i] = Token{Text: s.lemmatizer.Lemmatize(t.Text, t.POS), POS: t.POS}
	}
	return out, nil
}
