package analyzer

import "strings"

// Lemmatizer reduces inflected tokens to a dictionary base form using
// irregular-form tables and conservative suffix rules chosen by POS.
// It errs on the side of leaving a word alone.
type Lemmatizer struct {
	exceptions map[POS]map[string]string
	keep       map[string]struct{}
}

func NewLemmatizer() *Lemmatizer {
	return &Lemmatizer{
		exceptions: map[POS]map[string]string{
			Noun:      nounExceptions,
			Verb:      verbExceptions,
			Adjective: adjectiveExceptions,
		},
		keep: toSet(baseForms),
	}
}

// Lemmatize returns the lemma of word (already lowercased) for the given POS.
func (l *Lemmatizer) Lemmatize(word string, pos POS) string {
	if len(word) <= 3 {
		return word
	}
	if lemma, ok := l.exceptions[pos][word]; ok {
		return lemma
	}
	if _, ok := l.keep[word]; ok {
		return word
	}

	switch pos {
	case Verb:
		return lemmatizeVerb(word)
	case Adjective:
		return lemmatizeAdjective(word)
	case Adverb:
		return word
	default:
		return lemmatizeNoun(word)
	}
}

func lemmatizeNoun(w string) string {
	switch {
	case strings.HasSuffix(w, "ss"), strings.HasSuffix(w, "us"),
		strings.HasSuffix(w, "is"), strings.HasSuffix(w, "ics"):
		return w
	case strings.HasSuffix(w, "ies") && len(w) > 4:
		return w[:len(w)-3] + "y"
	case strings.HasSuffix(w, "sses"):
		return w[:len(w)-2]
	case strings.HasSuffix(w, "ches"), strings.HasSuffix(w, "shes"),
		strings.HasSuffix(w, "xes"), strings.HasSuffix(w, "zes"):
		return w[:len(w)-2]
	case strings.HasSuffix(w, "men") && len(w) > 4:
		return w[:len(w)-3] + "man"
	case strings.HasSuffix(w, "s"):
		return w[:len(w)-1]
	}
	return w
}

func lemmatizeVerb(w string) string {
	switch {
	case strings.HasSuffix(w, "eed"):
		return w
	case strings.HasSuffix(w, "ies") && len(w) > 4:
		return w[:len(w)-3] + "y"
	case strings.HasSuffix(w, "ied") && len(w) > 4:
		return w[:len(w)-3] + "y"
	case strings.HasSuffix(w, "es"):
		stem := w[:len(w)-2]
		if hasAnySuffix(stem, []string{"s", "x", "z", "ch", "sh", "o"}) {
			return stem
		}
		return w[:len(w)-1]
	case strings.HasSuffix(w, "ss"):
		return w
	case strings.HasSuffix(w, "s"):
		return w[:len(w)-1]
	case strings.HasSuffix(w, "ing") && len(w) > 5:
		return repairStem(w, w[:len(w)-3])
	case strings.HasSuffix(w, "ed") && len(w) > 4:
		return repairStem(w, w[:len(w)-2])
	}
	return w
}

func lemmatizeAdjective(w string) string {
	switch {
	case strings.HasSuffix(w, "iest") && len(w) > 5:
		return w[:len(w)-4] + "y"
	case strings.HasSuffix(w, "ier") && len(w) > 4:
		return w[:len(w)-3] + "y"
	}
	return w
}

// eRestoring lists stem endings that lost a silent e before -ed/-ing.
var eRestoring = []string{
	"at", "bl", "iz", "iv", "uc", "rg", "dg", "rs", "ns", "rv", "lv",
	"rc", "nc", "ir", "os", "ov", "av", "ev",
}

// repairStem fixes up a stem left by removing -ed or -ing from word.
func repairStem(word, stem string) string {
	if !hasVowel(stem) {
		return word
	}
	if endsDoubleConsonant(stem) {
		switch stem[len(stem)-1] {
		case 'l', 's', 'z':
			return stem
		}
		return stem[:len(stem)-1]
	}
	if hasAnySuffix(stem, eRestoring) {
		return stem + "e"
	}
	if measure(stem) == 1 && endsCVC(stem) {
		return stem + "e"
	}
	return stem
}

var nounExceptions = map[string]string{
	"men": "man", "women": "woman", "children": "child", "feet": "foot",
	"teeth": "tooth", "mice": "mouse", "geese": "goose", "people": "person",
	"lives": "life", "wives": "wife", "knives": "knife", "selves": "self",
	"leaves": "leaf", "thieves": "thief", "wolves": "wolf", "halves": "half",
	"lies": "lie", "ties": "tie", "dies": "die", "senses": "sense",
	"verses": "verse", "causes": "cause", "purposes": "purpose", "horses": "horse",
	"houses": "house", "uses": "use", "courses": "course", "oxen": "ox",
}

var verbExceptions = map[string]string{
	"went": "go", "gone": "go", "was": "be", "were": "be", "been": "be",
	"being": "be", "is": "be", "am": "be", "are": "be", "did": "do",
	"done": "do", "does": "do", "had": "have", "has": "have", "made": "make",
	"knew": "know", "known": "know", "saw": "see", "seen": "see", "gave": "give",
	"given": "give", "took": "take", "taken": "take", "came": "come",
	"became": "become", "fought": "fight", "thought": "think", "brought": "bring",
	"sought": "seek", "found": "find", "lost": "lose", "left": "leave",
	"led": "lead", "spoke": "speak", "spoken": "speak", "understood": "understand",
	"felt": "feel", "kept": "keep", "held": "hold", "told": "tell", "said": "say",
	"got": "get", "sat": "sit", "ate": "eat", "began": "begin", "begun": "begin",
	"fell": "fall", "fallen": "fall", "won": "win", "slain": "slay", "slew": "slay",
	"forsook": "forsake", "forsaken": "forsake", "dwelt": "dwell", "freed": "free",
	"agreed": "agree", "died": "die", "lied": "lie", "tied": "tie", "dying": "die",
	"lying": "lie", "overcame": "overcome", "arose": "arise", "arisen": "arise",
	"bore": "bear", "borne": "bear", "drove": "drive", "driven": "drive",
	"rose": "rise", "risen": "rise", "wrote": "write", "written": "write",
	"sang": "sing", "sung": "sing", "taught": "teach", "caught": "catch",
	"bought": "buy", "meant": "mean", "heard": "hear", "paid": "pay",
	"sent": "send", "spent": "spend", "stood": "stand", "struck": "strike",
}

var adjectiveExceptions = map[string]string{
	"better": "good", "best": "good", "worse": "bad", "worst": "bad",
	"further": "far", "farther": "far", "wiser": "wise", "wisest": "wise",
	"greater": "great", "greatest": "great", "purer": "pure", "purest": "pure",
	"higher": "high", "highest": "high", "lower": "low", "lowest": "low",
	"calmer": "calm", "sadder": "sad", "saddest": "sad", "bigger": "big",
	"biggest": "big", "stronger": "strong", "strongest": "strong",
}

// baseForms end like inflections but are already lemmas.
var baseForms = []string{
	"always", "perhaps", "thus", "yes", "news", "series", "species", "means",
	"chaos", "cosmos", "ethos", "pathos", "lens", "alas", "ourselves",
	"themselves", "yourselves", "bless", "wing", "thing", "king", "ring", "sing",
	"bring", "string", "spring", "nothing", "something", "everything", "anything",
	"morning", "evening", "feeling", "meaning", "teaching", "being", "offspring",
	"need", "indeed", "hundred", "sacred", "kindred", "wicked", "naked", "beloved",
	"seed", "greed", "deed", "creed", "speed", "heed", "proceed", "succeed",
	"exceed",
}
