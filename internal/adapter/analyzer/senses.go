package analyzer

import (
	_ "embed"
	"fmt"
	"sync"

	"gopkg.in/yaml.v3"
)

//go:embed senses.yaml
var defaultSenses []byte

type synsetDef struct {
	ID        string   `yaml:"id"`
	Words     []string `yaml:"words"`
	Hypernyms []string `yaml:"hypernyms"`
}

type senseFile struct {
	Synsets []synsetDef `yaml:"synsets"`
}

// SenseNetwork is a small lexical network of synsets linked by hypernym
// edges. Path similarity between two words is 1/(1+d), where d is the
// shortest edge distance between any synsets holding them, so synonyms
// score 1 and a word and its direct hypernym score 0.5.
type SenseNetwork struct {
	threshold    float64
	stemsRelated bool
	stemmer      *PorterStemmer

	synsets map[string][]int // word -> synset indices
	dist    [][]int          // all-pairs hop count, -1 when unreachable

	stems sync.Map // word -> stem
}

// SenseOption configures a SenseNetwork.
type SenseOption func(*SenseNetwork)

// WithThreshold sets the path similarity two words must exceed to be related.
func WithThreshold(t float64) SenseOption {
	return func(n *SenseNetwork) { n.threshold = t }
}

// WithStemRelations makes words with equal Porter stems related.
func WithStemRelations(enabled bool) SenseOption {
	return func(n *SenseNetwork) { n.stemsRelated = enabled }
}

// NewSenseNetwork loads the embedded sense network.
func NewSenseNetwork(opts ...SenseOption) (*SenseNetwork, error) {
	return ParseSenseNetwork(defaultSenses, opts...)
}

// ParseSenseNetwork builds a network from YAML in the embedded format.
func ParseSenseNetwork(data []byte, opts ...SenseOption) (*SenseNetwork, error) {
	var f senseFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse sense network: %w", err)
	}

	n := &SenseNetwork{
		threshold:    0.5,
		stemsRelated: true,
		stemmer:      NewPorterStemmer(),
		synsets:      make(map[string][]int),
	}
	for _, opt := range opts {
		opt(n)
	}

	index := make(map[string]int, len(f.Synsets))
	for i, s := range f.Synsets {
		if _, dup := index[s.ID]; dup {
			return nil, fmt.Errorf("duplicate synset %q", s.ID)
		}
		index[s.ID] = i
	}

	adj := make([][]int, len(f.Synsets))
	for i, s := range f.Synsets {
		for _, w := range s.Words {
			n.synsets[w] = append(n.synsets[w], i)
		}
		for _, h := range s.Hypernyms {
			j, ok := index[h]
			if !ok {
				return nil, fmt.Errorf("synset %q: unknown hypernym %q", s.ID, h)
			}
			adj[i] = append(adj[i], j)
			adj[j] = append(adj[j], i)
		}
	}

	n.dist = make([][]int, len(adj))
	for i := range adj {
		n.dist[i] = bfs(adj, i)
	}
	return n, nil
}

func bfs(adj [][]int, from int) []int {
	d := make([]int, len(adj))
	for i := range d {
		d[i] = -1
	}
	d[from] = 0
	queue := []int{from}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for _, next := range adj[cur] {
			if d[next] < 0 {
				d[next] = d[cur] + 1
				queue = append(queue, next)
			}
		}
	}
	return d
}

// Available reports whether the network holds any words.
func (n *SenseNetwork) Available() bool {
	return n != nil && len(n.synsets) > 0
}

// Size returns the number of distinct words in the network.
func (n *SenseNetwork) Size() int {
	return len(n.synsets)
}

// PathSimilarity returns the best path similarity over all sense pairs of
// a and b, or 0 when either word is unknown or no path exists.
func (n *SenseNetwork) PathSimilarity(a, b string) float64 {
	sa, sb := n.synsets[a], n.synsets[b]
	best := -1
	for _, i := range sa {
		for _, j := range sb {
			if d := n.dist[i][j]; d >= 0 && (best < 0 || d < best) {
				best = d
			}
		}
	}
	if best < 0 {
		return 0
	}
	return 1 / float64(1+best)
}

// Related reports whether a and b count as the same concept.
func (n *SenseNetwork) Related(a, b string) bool {
	if a == b {
		return true
	}
	if n.stemsRelated && n.stem(a) == n.stem(b) {
		return true
	}
	return n.PathSimilarity(a, b) > n.threshold
}

func (n *SenseNetwork) stem(w string) string {
	if s, ok := n.stems.Load(w); ok {
		return s.(string)
	}
	s := n.stemmer.Stem(w)
	n.stems.Store(w, s)
	return s
}
