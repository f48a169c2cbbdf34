package extract

import (
	"regexp"
	"strings"

	"github.com/Veraticus/rupee-flow/internal/model"
)

const (
	// maxKeywordDistance is the exclusive upper bound on the distance between
	// an amount and its keyword.
	maxKeywordDistance = 100
	// nearKeywordDistance separates close pairs from loose ones.
	nearKeywordDistance = 50
)

// PositionStrategy pairs every rupee amount with its nearest transaction verb
// and keeps the closest pair.
type PositionStrategy struct {
	amount  *regexp.Regexp
	verbs   []string
	vocab   Vocabulary
	balance balanceFilter
}

// NewPositionStrategy creates the position strategy.
func NewPositionStrategy(v Vocabulary) *PositionStrategy {
	v = v.clone()
	return &PositionStrategy{
		amount:  regexp.MustCompile(`(?i)rs\.?\s*` + amountExpr),
		verbs:   v.TransactionVerbs,
		vocab:   v,
		balance: newBalanceFilter(v),
	}
}

// Name implements Strategy.
func (s *PositionStrategy) Name() string { return StrategyPosition }

type keywordHit struct {
	word string
	pos  int
}

// Extract implements Strategy.
func (s *PositionStrategy) Extract(msg model.Message) model.StrategyResult {
	result := newResult(StrategyPosition)
	hits := s.keywordHits(lowerASCII(msg.Body))
	if len(hits) == 0 {
		return result
	}

	bestDistance := maxKeywordDistance
	for _, loc := range s.amount.FindAllStringSubmatchIndex(msg.Body, -1) {
		amount, ok := parseAmount(msg.Body[loc[2]:loc[3]])
		if !ok || s.balance.isBalance(msg.Body, loc[2], loc[3]) {
			continue
		}
		for _, hit := range hits {
			distance := abs(loc[0] - hit.pos)
			if distance >= bestDistance {
				continue
			}
			bestDistance = distance
			setAmount(&result, amount)
			result.Type = typeOfVerb(hit.word, s.vocab)
		}
	}

	if !result.Amount.Valid {
		return result
	}
	result.Confidence = 75
	if bestDistance >= nearKeywordDistance {
		result.Confidence = 60
	}
	return result
}

// keywordHits lists every occurrence of every transaction verb.
func (s *PositionStrategy) keywordHits(text string) []keywordHit {
	var hits []keywordHit
	for _, verb := range s.verbs {
		offset := 0
		for {
			idx := strings.Index(text[offset:], verb)
			if idx < 0 {
				break
			}
			hits = append(hits, keywordHit{word: verb, pos: offset + idx})
			offset += idx + len(verb)
		}
	}
	return hits
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
