// Package semantics derives the defense semantics of an attack-defense tree:
// every minimal attack strategy paired with each minimal defense that
// defeats it.
//
// The derivation runs three phases over the bottom-up evaluator:
//
//  1. witness: defender action sets that may be needed to counter an attack
//  2. attack: for each witness, the minimal attacks that still succeed
//  3. counter: for each attack, the minimal defenses that make it fail
//
// Each evaluation builds a fresh basic assignment; nothing is cached across
// evaluations or trees.
package semantics

import (
	"fmt"
	"strings"
	"time"

	"github.com/dd0wney/cluso-adtree/pkg/adtree"
	"github.com/dd0wney/cluso-adtree/pkg/domain"
	"github.com/dd0wney/cluso-adtree/pkg/evaluator"
	"github.com/dd0wney/cluso-adtree/pkg/logging"
	"github.com/dd0wney/cluso-adtree/pkg/metrics"
	"github.com/dd0wney/cluso-adtree/pkg/strategy"
)

// Phase names used in logs and metrics
const (
	PhaseWitness  = "witness"
	PhaseAttack   = "attack"
	PhaseCounter  = "counter"
	PhaseOpponent = "opponent"
	PhaseStrategy = "proponent"
)

// Pair is one element of the defense semantics
type Pair struct {
	Attack  strategy.Strategy `json:"attack"`
	Defense strategy.Strategy `json:"defense"`
}

// String renders the pair as ({a1}, {d1})
func (p Pair) String() string {
	return fmt.Sprintf("(%s, %s)", p.Attack, p.Defense)
}

// Summary holds the figures reported for one tree
type Summary struct {
	Nodes              int           `json:"nodes"`
	AttackerActions    int           `json:"attacker_actions"`
	DefenderActions    int           `json:"defender_actions"`
	OpponentStrategies int           `json:"opponent_strategies"`
	Witnesses          int           `json:"witnesses"`
	AttackStrategies   int           `json:"attack_strategies"`
	DefensePairs       int           `json:"defense_pairs"`
	Pairs              []Pair        `json:"pairs"`
	Duration           time.Duration `json:"duration_ns"`
}

// Analyzer runs the derivation. The zero value is not usable; use NewAnalyzer.
// An Analyzer holds no per-analysis state and may be shared across goroutines.
type Analyzer struct {
	logger  logging.Logger
	metrics *metrics.Registry
}

// Option configures an Analyzer
type Option func(*Analyzer)

// WithLogger sets the logger; the default discards output
func WithLogger(l logging.Logger) Option {
	return func(a *Analyzer) {
		a.logger = l
	}
}

// WithMetrics records evaluations and phases in r
func WithMetrics(r *metrics.Registry) Option {
	return func(a *Analyzer) {
		a.metrics = r
	}
}

// NewAnalyzer creates an analyzer
func NewAnalyzer(opts ...Option) *Analyzer {
	a := &Analyzer{logger: logging.NopLogger{}}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// evaluate wraps a single bottom-up evaluation with logging and metrics
func (a *Analyzer) evaluate(tree *adtree.ADTree, ba evaluator.Assignment, dom *domain.AttributeDomain, proponent adtree.Actor) (*strategy.Set, error) {
	res, err := evaluator.EvaluateDetailed(tree, ba, dom, proponent)
	if a.metrics != nil {
		var duration time.Duration
		var nodes int
		if res != nil {
			duration, nodes = res.Duration, res.NodesEvaluated
		}
		a.metrics.RecordEvaluation(dom.Name(), err, duration, nodes)
	}
	if err != nil {
		return nil, fmt.Errorf("evaluate %s: %w", dom.Name(), err)
	}
	return res.Value, nil
}

func (a *Analyzer) phaseDone(op *logging.TimedOperation, phase string, n int) {
	op.End(logging.Count(n))
	if a.metrics != nil {
		a.metrics.RecordPhase(phase, n)
	}
}

// Witnesses computes the candidate defender strategies. The empty defense is
// always included.
func (a *Analyzer) Witnesses(tree *adtree.ADTree) (*strategy.Set, error) {
	op := logging.StartTimer(a.logger, "phase complete", logging.Phase(PhaseWitness))

	witnesses, err := a.evaluate(tree, witnessAssignment(tree), domain.SufficientWitnesses, adtree.Attacker)
	if err != nil {
		op.EndError(err)
		return nil, err
	}
	witnesses = witnesses.Clone()
	witnesses.Add(strategy.Strategy{})

	a.phaseDone(op, PhaseWitness, witnesses.Len())
	return witnesses, nil
}

// AttackStrategies computes, for each witness in turn, the minimal attacker
// strategies that succeed against it and collects them without duplicates
func (a *Analyzer) AttackStrategies(tree *adtree.ADTree, witnesses *strategy.Set) (*strategy.Set, error) {
	op := logging.StartTimer(a.logger, "phase complete", logging.Phase(PhaseAttack))

	attacks := strategy.NewSet()
	for _, w := range witnesses.Strategies() {
		candidates, err := a.evaluate(tree, attackAssignment(tree, w), domain.CountStrategies, adtree.Attacker)
		if err != nil {
			op.EndError(err)
			return nil, err
		}
		for _, st := range strategy.Minimal(candidates).Strategies() {
			attacks.Add(st)
		}
	}

	a.phaseDone(op, PhaseAttack, attacks.Len())
	return attacks, nil
}

// Counters computes the minimal defender strategies that defeat attack
func (a *Analyzer) Counters(tree *adtree.ADTree, attack strategy.Strategy) (*strategy.Set, error) {
	candidates, err := a.evaluate(tree, counterAssignment(tree, attack), domain.CountStrategies, adtree.Defender)
	if err != nil {
		return nil, err
	}
	return strategy.Minimal(candidates), nil
}

// DefenseSemantics returns the defense semantics of tree
func (a *Analyzer) DefenseSemantics(tree *adtree.ADTree) ([]Pair, error) {
	witnesses, err := a.Witnesses(tree)
	if err != nil {
		return nil, err
	}
	attacks, err := a.AttackStrategies(tree, witnesses)
	if err != nil {
		return nil, err
	}
	return a.pairs(tree, attacks)
}

func (a *Analyzer) pairs(tree *adtree.ADTree, attacks *strategy.Set) ([]Pair, error) {
	op := logging.StartTimer(a.logger, "phase complete", logging.Phase(PhaseCounter))

	result := make([]Pair, 0)
	for _, attack := range attacks.Strategies() {
		counters, err := a.Counters(tree, attack)
		if err != nil {
			op.EndError(err)
			return nil, err
		}
		for _, defense := range counters.Strategies() {
			result = append(result, Pair{Attack: attack, Defense: defense})
		}
	}

	a.phaseDone(op, PhaseCounter, len(result))
	return result, nil
}

// AllOpponentStrategies enumerates the defender's strategies, including the
// empty one
func (a *Analyzer) AllOpponentStrategies(tree *adtree.ADTree) (*strategy.Set, error) {
	strategies, err := a.evaluate(tree, witnessAssignment(tree), domain.OpponentStrategies, adtree.Attacker)
	if err != nil {
		return nil, err
	}
	strategies = strategies.Clone()
	strategies.Add(strategy.Strategy{})

	if a.metrics != nil {
		a.metrics.RecordPhase(PhaseOpponent, strategies.Len())
	}
	return strategies, nil
}

// ProponentStrategies enumerates the attacker's strategies against an idle
// defender
func (a *Analyzer) ProponentStrategies(tree *adtree.ADTree) (*strategy.Set, error) {
	ba := attackAssignment(tree, strategy.Strategy{})
	strategies, err := a.evaluate(tree, ba, domain.CountStrategies, adtree.Attacker)
	if err != nil {
		return nil, err
	}
	if a.metrics != nil {
		a.metrics.RecordPhase(PhaseStrategy, strategies.Len())
	}
	return strategies, nil
}

// Analyze computes every figure of the summary for one tree. name only
// labels log lines.
func (a *Analyzer) Analyze(tree *adtree.ADTree, name string) (*Summary, error) {
	start := time.Now()
	logger := a.logger.With(logging.Tree(name))

	summary, err := a.analyze(tree)
	duration := time.Since(start)
	if a.metrics != nil {
		pairs := 0
		if summary != nil {
			pairs = summary.DefensePairs
		}
		a.metrics.RecordAnalysis(err, duration, pairs)
	}
	if err != nil {
		logger.Error("analysis failed", logging.Error(err), logging.Latency(duration))
		return nil, err
	}
	summary.Duration = duration

	logger.Info("analysis complete",
		logging.Int("nodes", summary.Nodes),
		logging.Int("attack_strategies", summary.AttackStrategies),
		logging.Int("defense_pairs", summary.DefensePairs),
		logging.Latency(duration),
	)
	return summary, nil
}

func (a *Analyzer) analyze(tree *adtree.ADTree) (*Summary, error) {
	if tree == nil {
		return nil, &adtree.MalformedTreeError{Reason: adtree.ErrRootUnset}
	}

	stats := tree.Stats()
	s := &Summary{
		Nodes:           stats.Nodes,
		AttackerActions: stats.AttackerActions,
		DefenderActions: stats.DefenderActions,
	}

	opp, err := a.AllOpponentStrategies(tree)
	if err != nil {
		return nil, err
	}
	s.OpponentStrategies = opp.Len()

	witnesses, err := a.Witnesses(tree)
	if err != nil {
		return nil, err
	}
	s.Witnesses = witnesses.Len()

	attacks, err := a.AttackStrategies(tree, witnesses)
	if err != nil {
		return nil, err
	}
	s.AttackStrategies = attacks.Len()

	pairs, err := a.pairs(tree, attacks)
	if err != nil {
		return nil, err
	}
	s.Pairs = pairs
	s.DefensePairs = len(pairs)
	return s, nil
}

// FormatPairs renders pairs one per line
func FormatPairs(pairs []Pair) string {
	var b strings.Builder
	for _, p := range pairs {
		b.WriteString(p.String())
		b.WriteByte('\n')
	}
	return b.String()
}

var defaultAnalyzer = NewAnalyzer()

// DefenseSemantics computes the defense semantics with a default analyzer
func DefenseSemantics(tree *adtree.ADTree) ([]Pair, error) {
	return defaultAnalyzer.DefenseSemantics(tree)
}

// Analyze computes the summary with a default analyzer
func Analyze(tree *adtree.ADTree) (*Summary, error) {
	return defaultAnalyzer.Analyze(tree, "")
}
