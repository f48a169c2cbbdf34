package extract

import (
	"fmt"

	"github.com/Veraticus/rupee-flow/internal/model"
)

// Extractor runs classification, the strategies, consensus and scoring for a
// message. It is immutable after construction and safe for concurrent use.
type Extractor struct {
	classifier *Classifier
	scorer     *Scorer
	strategies []Strategy
}

// New creates an extractor from a vocabulary.
func New(v Vocabulary) (*Extractor, error) {
	classifier, err := NewClassifier(v)
	if err != nil {
		return nil, fmt.Errorf("failed to create classifier: %w", err)
	}
	return &Extractor{
		classifier: classifier,
		scorer:     NewScorer(v),
		strategies: DefaultStrategies(v),
	}, nil
}

// NewDefault creates an extractor with the stock vocabulary.
func NewDefault() *Extractor {
	e, err := New(DefaultVocabulary())
	if err != nil {
		panic(err)
	}
	return e
}

// Classify exposes the extractor's classifier.
func (e *Extractor) Classify(body, sender string) model.MessageType {
	return e.classifier.Classify(body, sender)
}

// ExtractWithConfidence produces the decision for one message. Messages that
// are not transactions get confidence 0 and a reason; transactions with no
// agreed amount also get confidence 0 and are left for the caller to drop.
func (e *Extractor) ExtractWithConfidence(msg model.Message) model.ExtractionDecision {
	messageType := e.classifier.Classify(msg.Body, msg.Sender)
	if messageType != model.MessageTypeTransaction {
		return model.ExtractionDecision{
			MessageType:   messageType,
			AccountNumber: model.UnknownAccount,
			Reason:        model.NotTransactionReason,
		}
	}

	results := make([]model.StrategyResult, 0, len(e.strategies))
	for _, s := range e.strategies {
		results = append(results, s.Extract(msg))
	}

	consensus := Resolve(results)

	var confidence int
	if consensus.Amount.Valid {
		confidence = e.scorer.Validate(msg.Body, consensus.Amount.Decimal, e.scorer.Score(results, consensus.Amount))
	}

	account := consensus.Account
	if account == "" {
		account = model.UnknownAccount
	}

	return model.ExtractionDecision{
		IsTransaction:   true,
		MessageType:     messageType,
		Amount:          consensus.Amount,
		TransactionType: consensus.Type,
		AccountNumber:   account,
		Confidence:      confidence,
		ReferenceID:     ExtractReference(msg.Body),
		Fingerprint:     Fingerprint(msg.Body, msg.Sender),
		StrategyResults: results,
	}
}
