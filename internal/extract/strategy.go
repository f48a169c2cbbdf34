package extract

import "github.com/Veraticus/rupee-flow/internal/model"

// Strategy names as they appear in StrategyResult.Strategy.
const (
	StrategyRegex    = "regex"
	StrategyKeyword  = "keyword"
	StrategyPosition = "position"
	StrategyContext  = "context"
)

// Strategy is one independent way of reading amount, direction and account
// out of a message. Implementations are pure and never fail; a strategy that
// finds nothing returns a result with no amount.
type Strategy interface {
	Name() string
	Extract(msg model.Message) model.StrategyResult
}

// DefaultStrategies returns the four strategies in consensus order.
func DefaultStrategies(v Vocabulary) []Strategy {
	return []Strategy{
		NewRegexStrategy(v),
		NewKeywordStrategy(v),
		NewPositionStrategy(v),
		NewContextStrategy(v),
	}
}
