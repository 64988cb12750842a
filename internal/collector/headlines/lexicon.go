package headlines

import (
	"strings"
	"unicode"
)

// Lexicon scores short financial texts by counting polarity words from
// Loughran-McDonald style word lists.
type Lexicon struct {
	positive    map[string]bool
	negative    map[string]bool
	uncertainty map[string]bool
}

func NewLexicon() *Lexicon {
	return &Lexicon{
		positive:    wordSet(positiveWords),
		negative:    wordSet(negativeWords),
		uncertainty: wordSet(uncertaintyWords),
	}
}

// Score returns the net polarity of text in [-1, 1], damped by hedging
// language. ok is false when the text has no polarity words at all.
func (l *Lexicon) Score(text string) (score float64, ok bool) {
	var pos, neg, unc int
	words := tokenize(text)
	for _, w := range words {
		switch {
		case l.positive[w]:
			pos++
		case l.negative[w]:
			neg++
		}
		if l.uncertainty[w] {
			unc++
		}
	}
	if pos+neg == 0 {
		return 0, false
	}

	net := float64(pos-neg) / float64(pos+neg)
	uncertainty := min(float64(unc)/float64(len(words))*10, 1)
	net *= 1 - uncertainty*0.5
	return min(max(net, -1), 1), true
}

// tokenize lowercases text and splits it on anything but letters, digits
// and hyphens.
func tokenize(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsNumber(r) && r != '-'
	})
}

func wordSet(words []string) map[string]bool {
	m := make(map[string]bool, len(words))
	for _, w := range words {
		m[w] = true
	}
	return m
}

var positiveWords = []string{
	"achieve", "beat", "beats", "benefit", "better", "boost", "bullish",
	"buy", "climb", "climbs", "competitive", "enhance", "excellent",
	"exceptional", "favorable", "gain", "gains", "good", "great", "grew",
	"growth", "higher", "improve", "improved", "improvement", "innovation",
	"innovative", "jump", "jumps", "leader", "leading", "optimistic",
	"outperform", "positive", "profit", "profitable", "progress", "rally",
	"rallies", "record", "rebound", "robust", "rise", "rises", "soar",
	"soars", "solid", "strength", "strong", "stronger", "success",
	"successful", "superior", "surge", "surges", "surpass", "tops",
	"upbeat", "upgrade", "upgraded", "upside", "well-positioned", "winning",
}

var negativeWords = []string{
	"adverse", "bearish", "challenge", "challenging", "concern", "concerns",
	"crash", "crisis", "cut", "cuts", "damage", "decline", "declines",
	"decrease", "deficit", "deteriorate", "difficult", "disappoint",
	"disappointing", "downgrade", "downgraded", "downturn", "drop", "drops",
	"fail", "failure", "fall", "falls", "falling", "fear", "fears", "fraud",
	"headwind", "headwinds", "impairment", "investigation", "lawsuit",
	"layoffs", "loss", "losses", "lower", "miss", "misses", "negative",
	"plunge", "plunges", "poor", "probe", "recall", "recession", "risk",
	"risks", "sell", "selloff", "sink", "sinks", "slow", "slowdown", "slump",
	"tumble", "tumbles", "underperform", "unfavorable", "unprofitable",
	"volatile", "warning", "weak", "weakness", "worse", "worst",
}

var uncertaintyWords = []string{
	"almost", "anticipate", "appear", "appears", "approximately", "assume",
	"believe", "could", "depend", "estimate", "expect", "expects", "if",
	"likely", "may", "maybe", "might", "pending", "perhaps", "possible",
	"possibly", "potential", "predict", "should", "uncertain", "uncertainty",
	"unclear", "unlikely", "would",
}
