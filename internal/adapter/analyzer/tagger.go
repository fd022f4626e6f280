package analyzer

import "strings"

// POS is the coarse grammatical role used to pick lemmatization rules.
type POS int

const (
	Noun POS = iota
	Verb
	Adjective
	Adverb
)

func (p POS) String() string {
	switch p {
	case Verb:
		return "verb"
	case Adjective:
		return "adj"
	case Adverb:
		return "adv"
	default:
		return "noun"
	}
}

// Tagger assigns a POS to each token of a sentence.
type Tagger interface {
	Tag(tokens []string) ([]POS, error)
}

// HeuristicTagger tags tokens from closed-class context words, a small
// lexicon and suffix shapes. Anything it cannot place is a noun.
type HeuristicTagger struct {
	verbs      map[string]struct{}
	adjectives map[string]struct{}
	adverbs    map[string]struct{}
}

func NewHeuristicTagger() *HeuristicTagger {
	return &HeuristicTagger{
		verbs:      toSet(knownVerbs),
		adjectives: toSet(knownAdjectives),
		adverbs:    toSet(knownAdverbs),
	}
}

func (t *HeuristicTagger) Tag(tokens []string) ([]POS, error) {
	tags := make([]POS, len(tokens))
	for i, tok := range tokens {
		prev := ""
		if i > 0 {
			prev = tokens[i-1]
		}
		tags[i] = t.tagOne(tok, prev)
	}
	return tags, nil
}

func (t *HeuristicTagger) tagOne(tok, prev string) POS {
	if _, ok := t.adverbs[tok]; ok {
		return Adverb
	}
	if _, ok := t.adjectives[tok]; ok {
		return Adjective
	}
	if _, ok := verbCues[prev]; ok {
		return Verb
	}
	if _, ok := t.verbs[tok]; ok {
		if _, det := determiners[prev]; !det {
			return Verb
		}
	}
	if _, ok := degreeCues[prev]; ok {
		return Adjective
	}

	switch {
	case strings.HasSuffix(tok, "ly") && len(tok) > 4:
		return Adverb
	case strings.HasSuffix(tok, "ing") && len(tok) > 5,
		strings.HasSuffix(tok, "ed") && len(tok) > 4:
		if _, det := determiners[prev]; det {
			return Noun
		}
		return Verb
	case hasAnySuffix(tok, adjectiveSuffixes) && len(tok) > 5:
		return Adjective
	}
	return Noun
}

func hasAnySuffix(s string, suffixes []string) bool {
	for _, suf := range suffixes {
		if strings.HasSuffix(s, suf) {
			return true
		}
	}
	return false
}

func toSet(words []string) map[string]struct{} {
	m := make(map[string]struct{}, len(words))
	for _, w := range words {
		m[w] = struct{}{}
	}
	return m
}

var adjectiveSuffixes = []string{"ful", "less", "ous", "ive", "able", "ible", "ical", "ish"}

// The word after one of these is almost always a verb.
var verbCues = map[string]struct{}{
	"to": {}, "i": {}, "you": {}, "we": {}, "they": {}, "he": {}, "she": {},
	"can": {}, "could": {}, "will": {}, "would": {}, "shall": {}, "should": {},
	"may": {}, "might": {}, "must": {}, "do": {}, "does": {}, "did": {},
	"dont": {}, "doesnt": {}, "didnt": {}, "cannot": {}, "cant": {}, "wont": {},
}

// The word after one of these is usually an adjective.
var degreeCues = map[string]struct{}{
	"very": {}, "more": {}, "most": {}, "less": {}, "least": {}, "too": {},
	"so": {}, "quite": {}, "is": {}, "am": {}, "are": {}, "was": {}, "were": {},
	"feel": {}, "feels": {}, "become": {}, "becomes": {},
}

var determiners = map[string]struct{}{
	"the": {}, "a": {}, "an": {}, "this": {}, "that": {}, "these": {}, "those": {},
	"my": {}, "your": {}, "his": {}, "her": {}, "its": {}, "our": {}, "their": {},
	"every": {}, "each": {}, "no": {}, "some": {}, "any": {},
}

var knownVerbs = []string{
	"act", "acts", "acted", "acting", "attain", "attains", "attained", "become",
	"becomes", "became", "believe", "bring", "brings", "brought", "come", "comes",
	"came", "conquer", "conquered", "control", "controls", "controlled", "die",
	"dies", "died", "do", "does", "did", "done", "doing", "dwell", "dwells", "fear",
	"fears", "feared", "fight", "fights", "fought", "find", "finds", "found", "get",
	"gets", "got", "give", "gives", "gave", "given", "go", "goes", "went", "gone",
	"know", "knows", "knew", "known", "lead", "leads", "led", "leave", "leaves",
	"left", "live", "lives", "lived", "lose", "loses", "lost", "love", "loves",
	"loved", "make", "makes", "made", "meditate", "meditates", "overcome", "perform",
	"performs", "performed", "reach", "reaches", "reached", "renounce", "renounces",
	"renounced", "see", "sees", "saw", "seen", "seek", "seeks", "sought", "serve",
	"serves", "served", "sit", "sits", "sat", "speak", "speaks", "spoke", "spoken",
	"surrender", "surrenders", "surrendered", "take", "takes", "took", "taken",
	"think", "thinks", "thought", "understand", "understands", "understood",
	"worship", "worships", "worshipped",
}

var knownAdjectives = []string{
	"good", "better", "best", "bad", "worse", "worst", "great", "greater",
	"greatest", "holy", "lowly", "worldly", "godly", "early", "lovely", "friendly",
	"calm", "pure", "impure", "wise", "wiser", "wisest", "supreme", "eternal",
	"divine", "steady", "happy", "happier", "happiest", "sad", "sadder", "angry",
	"afraid", "free", "true", "false", "peaceful", "selfless", "selfish", "lonely",
	"anxious", "restless", "mortal", "immortal", "righteous", "unrighteous",
}

var knownAdverbs = []string{
	"always", "never", "often", "ever", "again", "also", "thus", "therefore",
	"hence", "indeed", "truly", "verily", "surely", "only", "still", "yet",
	"soon", "already", "together", "forever", "perhaps", "certainly", "well",
}
