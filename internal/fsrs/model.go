package fsrs

import (
	"fmt"
	"math"
)

// Interval bounds, in days, of the model's output.
const (
	MinInterval = 0.01
	MaxInterval = 36500
)

// Grade is the answer given for a review, in FSRS order.
type Grade int

// Grades, numbered as in the FSRS formulas.
const (
	Again Grade = iota + 1
	Hard
	Good
	Easy
)

// Memory is the memory state of a reviewed card.
type Memory struct {
	Stability  float64
	Difficulty float64
}

// ItemState is a candidate next state: the memory after the review and the
// interval, in fractional days, until the card is due again.
type ItemState struct {
	Memory   Memory
	Interval float64
}

// NextStates holds one candidate state per grade.
type NextStates struct {
	Again ItemState
	Hard  ItemState
	Good  ItemState
	Easy  ItemState
}

// For returns the candidate for g.
func (n NextStates) For(g Grade) (ItemState, error) {
	switch g {
	case Again:
		return n.Again, nil
	case Hard:
		return n.Hard, nil
	case Good:
		return n.Good, nil
	case Easy:
		return n.Easy, nil
	default:
		return ItemState{}, fmt.Errorf("fsrs: invalid grade %d", int(g))
	}
}

// Model computes next states with a fixed set of weights.
type Model struct {
	w      [21]float64
	decay  float64 // -w[20]
	factor float64 // 0.9^(1/decay) - 1
}

// New validates the weights and precomputes the decay constants.
func New(p [21]float64) (*Model, error) {
	if err := ValidateParameters(p); err != nil {
		return nil, err
	}
	decay := -p[20]
	return &Model{
		w:      p,
		decay:  decay,
		factor: math.Pow(0.9, 1.0/decay) - 1.0,
	}, nil
}

// Default returns a model with DefaultParameters.
func Default() *Model {
	m, err := New(DefaultParameters)
	if err != nil {
		panic(err)
	}
	return m
}

// NextStates returns the candidate states for every grade. prior is nil for
// a card that was never reviewed, in which case elapsedDays is ignored.
func (m *Model) NextStates(prior *Memory, retention float64, elapsedDays int) (NextStates, error) {
	if !(retention > 0 && retention < 1) {
		return NextStates{}, fmt.Errorf("%w: %v", ErrInvalidRetention, retention)
	}
	if elapsedDays < 0 {
		return NextStates{}, fmt.Errorf("%w: %d", ErrInvalidElapsed, elapsedDays)
	}
	if prior != nil && (!(prior.Stability > 0) || math.IsInf(prior.Stability, 0) ||
		math.IsNaN(prior.Difficulty) || math.IsInf(prior.Difficulty, 0)) {
		return NextStates{}, fmt.Errorf("%w: %+v", ErrInvalidMemory, *prior)
	}

	state := func(g Grade) ItemState {
		mem := m.nextMemory(prior, g, elapsedDays)
		return ItemState{Memory: mem, Interval: m.nextInterval(mem.Stability, retention)}
	}
	return NextStates{
		Again: state(Again),
		Hard:  state(Hard),
		Good:  state(Good),
		Easy:  state(Easy),
	}, nil
}

// Retrievability returns the probability of recall after elapsedDays for a
// card with the given stability.
func (m *Model) Retrievability(elapsedDays, stability float64) float64 {
	return math.Pow(1+m.factor*elapsedDays/stability, m.decay)
}

func (m *Model) nextMemory(prior *Memory, g Grade, elapsedDays int) Memory {
	if prior == nil {
		return Memory{
			Stability:  m.initStability(g),
			Difficulty: clampD(m.initDifficulty(g)),
		}
	}
	var s float64
	if elapsedDays == 0 {
		s = m.shortTermStability(prior.Stability, g)
	} else {
		r := m.Retrievability(float64(elapsedDays), prior.Stability)
		if g == Again {
			s = m.forgetStability(prior.Difficulty, prior.Stability, r)
		} else {
			s = m.recallStability(prior.Difficulty, prior.Stability, r, g)
		}
	}
	return Memory{
		Stability:  clampS(s),
		Difficulty: m.nextDifficulty(prior.Difficulty, g),
	}
}

// nextInterval solves R(t, S) = retention for t, in fractional days.
func (m *Model) nextInterval(stability, retention float64) float64 {
	ivl := stability / m.factor * (math.Pow(retention, 1.0/m.decay) - 1)
	return math.Min(math.Max(ivl, MinInterval), MaxInterval)
}

// initStability is S₀(G) = w[G-1].
func (m *Model) initStability(g Grade) float64 {
	return clampS(m.w[g-1])
}

// initDifficulty is D₀(G) = w[4] - e^(w[5]·(G-1)) + 1, unclamped.
func (m *Model) initDifficulty(g Grade) float64 {
	return m.w[4] - math.Exp(m.w[5]*float64(g-1)) + 1
}

// shortTermStability handles a second review on the same day.
func (m *Model) shortTermStability(s float64, g Grade) float64 {
	inc := math.Exp(m.w[17]*(float64(g)-3+m.w[18])) * math.Pow(s, -m.w[19])
	if g == Good || g == Easy {
		inc = math.Max(inc, 1.0)
	}
	return s * inc
}

// nextDifficulty applies linear damping then mean reversion towards D₀(Easy).
func (m *Model) nextDifficulty(d float64, g Grade) float64 {
	delta := -m.w[6] * (float64(g) - 3)
	damped := d + (10-d)*delta/9
	return clampD(m.w[7]*m.initDifficulty(Easy) + (1-m.w[7])*damped)
}

func (m *Model) recallStability(d, s, r float64, g Grade) float64 {
	hardPenalty := 1.0
	if g == Hard {
		hardPenalty = m.w[15]
	}
	easyBonus := 1.0
	if g == Easy {
		easyBonus = m.w[16]
	}
	return s * (1 + math.Exp(m.w[8])*
		(11-d)*
		math.Pow(s, -m.w[9])*
		(math.Exp((1-r)*m.w[10])-1)*
		hardPenalty*easyBonus)
}

func (m *Model) forgetStability(d, s, r float64) float64 {
	long := m.w[11] *
		math.Pow(d, -m.w[12]) *
		(math.Pow(s+1, m.w[13]) - 1) *
		math.Exp((1-r)*m.w[14])
	short := s / math.Exp(m.w[17]*m.w[18])
	return math.Min(long, short)
}

func clampS(s float64) float64 {
	return math.Max(s, 0.001)
}

func clampD(d float64) float64 {
	return math.Min(math.Max(d, 1), 10)
}
