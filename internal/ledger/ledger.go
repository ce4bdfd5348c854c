package ledger

import (
	"errors"
	"sort"
	"strconv"
	"strings"

	"github.com/roach88/racetally/internal/score"
)

// DefaultRetention is the number of rounds kept in detail.
const DefaultRetention = 300

// State is the serializable content of a Ledger.
type State struct {
	Roster    score.RosterConfig `json:"roster"`
	Rules     score.Rules        `json:"rules"`
	Retention int                `json:"retention"`
	Players   []string           `json:"players"`
	Totals    map[string]int     `json:"totals"`
	Carried   map[string]int     `json:"carried,omitempty"`
	Trimmed   int                `json:"trimmed,omitempty"`
	History   []Round            `json:"history"`
}

// Clone returns a deep copy.
func (s State) Clone() State {
	c := s
	c.Rules = s.Rules.Clone()
	c.Players = append([]string(nil), s.Players...)
	c.Totals = cloneTotals(s.Totals)
	c.Carried = cloneTotals(s.Carried)
	if s.History != nil {
		c.History = make([]Round, len(s.History))
		for i, r := range s.History {
			c.History[i] = r.Clone()
		}
	}
	return c
}

// Ledger holds totals and history for one session.
type Ledger struct {
	state State
	clock Clock
	ids   IDGenerator
}

// Option configures a Ledger.
type Option func(*Ledger)

// WithClock overrides the wall clock used for round timestamps.
func WithClock(c Clock) Option {
	return func(l *Ledger) { l.clock = c }
}

// WithIDGenerator overrides the UUIDv7 round ID generator.
func WithIDGenerator(g IDGenerator) Option {
	return func(l *Ledger) { l.ids = g }
}

// WithRetention sets the retention cap; 0 keeps every round.
func WithRetention(n int) Option {
	return func(l *Ledger) { l.state.Retention = n }
}

// New creates an empty, unregistered ledger.
func New(roster score.RosterConfig, rules score.Rules, opts ...Option) (*Ledger, error) {
	return Restore(State{
		Roster:    roster,
		Rules:     rules,
		Retention: DefaultRetention,
	}, opts...)
}

// Restore rebuilds a ledger from persisted state.
//
// The state is checked in full, including the totals invariant; a state
// that fails any check is reported as CORRUPT_STATE or CONFIG_ERROR.
func Restore(state State, opts ...Option) (*Ledger, error) {
	l := &Ledger{
		state: state.Clone(),
		clock: SystemClock{},
		ids:   UUIDv7Generator{},
	}
	for _, opt := range opts {
		opt(l)
	}
	if l.state.Totals == nil {
		l.state.Totals = make(map[string]int)
	}
	if l.state.Carried == nil {
		l.state.Carried = make(map[string]int)
	}

	if err := l.state.Roster.Validate(); err != nil {
		return nil, err
	}
	if err := l.state.Rules.Validate(); err != nil {
		return nil, err
	}
	if l.state.Retention < 0 {
		return nil, score.Newf(score.CodeConfigError, "retention must be >= 0, got %d", l.state.Retention)
	}
	if err := l.checkShape(); err != nil {
		return nil, err
	}
	if err := l.CheckInvariant(); err != nil {
		return nil, err
	}
	l.trim()
	return l, nil
}

// checkShape verifies that the roster and every round line up.
func (l *Ledger) checkShape() error {
	s := &l.state
	if len(s.Players) > 0 {
		if err := checkNames(s.Players, s.Roster.RosterSize, score.CodeCorruptState); err != nil {
			return err
		}
	} else if len(s.History) > 0 || s.Trimmed > 0 {
		return score.Newf(score.CodeCorruptState, "history present without registered players")
	}
	if s.Trimmed < 0 {
		return score.Newf(score.CodeCorruptState, "negative trimmed count %d", s.Trimmed)
	}
	if l.Played() > s.Roster.TotalGames {
		return score.Newf(score.CodeCorruptState, "%d rounds played exceeds %d total games", l.Played(), s.Roster.TotalGames)
	}
	for i, r := range s.History {
		if len(r.Outcomes) != len(s.Players) || len(r.Tokens) != len(s.Players) {
			return score.Newf(score.CodeCorruptState, "round %d does not match the %d-player roster", i+1, len(s.Players))
		}
		for _, o := range r.Outcomes {
			if o.Rank < score.MinRank || o.Rank > score.MaxRank {
				return score.Newf(score.CodeCorruptState, "round %d has out-of-range rank %d", i+1, o.Rank)
			}
		}
	}
	return nil
}

// State returns a deep copy of the ledger's content.
func (l *Ledger) State() State { return l.state.Clone() }

// Roster returns the roster configuration.
func (l *Ledger) Roster() score.RosterConfig { return l.state.Roster }

// Rules returns a copy of the scoring rules.
func (l *Ledger) Rules() score.Rules { return l.state.Rules.Clone() }

// Retention returns the retention cap.
func (l *Ledger) Retention() int { return l.state.Retention }

// Players returns the registered roster in slot order.
func (l *Ledger) Players() []string { return append([]string(nil), l.state.Players...) }

// Totals returns a copy of the running totals.
func (l *Ledger) Totals() map[string]int { return cloneTotals(l.state.Totals) }

// History returns a deep copy of the retained rounds, oldest first.
func (l *Ledger) History() []Round { return l.State().History }

// Played returns the number of rounds applied, including trimmed ones.
func (l *Ledger) Played() int { return len(l.state.History) + l.state.Trimmed }

// Remaining returns the number of rounds left before the session is complete.
func (l *Ledger) Remaining() int {
	if r := l.state.Roster.TotalGames - l.Played(); r > 0 {
		return r
	}
	return 0
}

// Registered reports whether every slot holds a distinct, non-empty name.
func (l *Ledger) Registered() bool {
	return checkNames(l.state.Players, l.state.Roster.RosterSize, score.CodeNotRegistered) == nil
}

// Configure changes the roster configuration.
//
// The roster size is locked once players are registered or a round exists.
// Total games may change but never below the rounds already played.
func (l *Ledger) Configure(roster score.RosterConfig) error {
	if err := roster.Validate(); err != nil {
		return err
	}
	started := len(l.state.Players) > 0 || l.Played() > 0
	if started && roster.RosterSize != l.state.Roster.RosterSize {
		return score.Newf(score.CodeConfigError, "roster size is locked while a session is in progress; reset first")
	}
	if roster.TotalGames < l.Played() {
		return score.Newf(score.CodeConfigError, "total games %d is below the %d rounds already played", roster.TotalGames, l.Played())
	}
	l.state.Roster = roster
	return nil
}

// SetRules replaces the scoring rules. Rounds already applied keep their
// recorded deltas.
func (l *Ledger) SetRules(rules score.Rules) error {
	if err := rules.Validate(); err != nil {
		return err
	}
	l.state.Rules = rules.Clone()
	return nil
}

// SetRetention changes the retention cap and trims immediately.
func (l *Ledger) SetRetention(n int) error {
	if n < 0 {
		return score.Newf(score.CodeConfigError, "retention must be >= 0, got %d", n)
	}
	l.state.Retention = n
	l.trim()
	return nil
}

// Register starts a new roster. Totals are zeroed and history is cleared.
func (l *Ledger) Register(names []string) error {
	names = trimAll(names)
	if err := checkNames(names, l.state.Roster.RosterSize, score.CodeNotRegistered); err != nil {
		return err
	}
	l.state.Players = names
	l.state.Totals = make(map[string]int, len(names))
	for _, n := range names {
		l.state.Totals[n] = 0
	}
	l.state.Carried = make(map[string]int)
	l.state.History = nil
	l.state.Trimmed = 0
	return nil
}

// ApplyRound scores one round from raw tokens, one per roster slot.
//
// Every token is parsed, the round is checked for rank collisions and every
// player is scored before any state changes; a failure at any step leaves
// the ledger untouched.
func (l *Ledger) ApplyRound(tokens []string) (Round, error) {
	if !l.Registered() {
		return Round{}, score.Newf(score.CodeNotRegistered, "register all %d players first", l.state.Roster.RosterSize)
	}
	if l.Played() >= l.state.Roster.TotalGames {
		return Round{}, score.Newf(score.CodeSessionComplete, "all %d games have been played", l.state.Roster.TotalGames)
	}
	players := l.state.Players
	if len(tokens) != len(players) {
		return Round{}, score.Newf(score.CodeInvalidToken, "expected %d tokens, got %d", len(players), len(tokens))
	}

	tokens = trimAll(tokens)
	outcomes := make([]score.Outcome, len(tokens))
	for i, tok := range tokens {
		o, err := score.ParseToken(tok)
		if err != nil {
			var se *score.Error
			if errors.As(err, &se) {
				se.Slot = i + 1
				se.Player = players[i]
			}
			return Round{}, err
		}
		outcomes[i] = o
	}

	if err := score.ValidateRound(players, outcomes); err != nil {
		return Round{}, err
	}

	delta := make(map[string]int, len(players))
	for i, name := range players {
		pts, err := l.state.Rules.Score(outcomes[i])
		if err != nil {
			var se *score.Error
			if errors.As(err, &se) {
				se.Slot = i + 1
				se.Player = name
			}
			return Round{}, err
		}
		delta[name] = pts
	}

	for name, pts := range delta {
		l.state.Totals[name] += pts
	}
	round := Round{
		ID:        l.ids.Generate(),
		Timestamp: l.clock.Now().UTC().Format(TimestampLayout),
		Tokens:    tokens,
		Outcomes:  outcomes,
		Delta:     delta,
	}
	l.state.History = append(l.state.History, round)
	l.trim()
	return round.Clone(), nil
}

// UndoLast removes the most recent round and subtracts its recorded delta
// from every current player's total.
func (l *Ledger) UndoLast() (Round, error) {
	n := len(l.state.History)
	if n == 0 {
		return Round{}, score.Newf(score.CodeEmptyHistory, "no rounds to undo")
	}
	last := l.state.History[n-1]
	l.state.History = l.state.History[:n-1]
	for _, name := range l.state.Players {
		l.state.Totals[name] -= last.Delta[name]
	}
	return last.Clone(), nil
}

// Reset clears the roster, totals and history. Configuration is kept.
func (l *Ledger) Reset() {
	l.state.Players = nil
	l.state.Totals = make(map[string]int)
	l.state.Carried = make(map[string]int)
	l.state.History = nil
	l.state.Trimmed = 0
}

// CheckInvariant verifies that every total equals the carried amount plus
// the sum of its deltas over history.
func (l *Ledger) CheckInvariant() error {
	sums := cloneTotals(l.state.Carried)
	if sums == nil {
		sums = make(map[string]int)
	}
	for _, r := range l.state.History {
		for name, pts := range r.Delta {
			sums[name] += pts
		}
	}

	names := make(map[string]struct{}, len(sums)+len(l.state.Totals))
	for n := range sums {
		names[n] = struct{}{}
	}
	for n := range l.state.Totals {
		names[n] = struct{}{}
	}
	sorted := make([]string, 0, len(names))
	for n := range names {
		sorted = append(sorted, n)
	}
	sort.Strings(sorted)

	for _, n := range sorted {
		if l.state.Totals[n] != sums[n] {
			return score.Newf(score.CodeCorruptState, "total for %s is %d but history sums to %d", n, l.state.Totals[n], sums[n])
		}
	}
	return nil
}

// trim drops the oldest rounds beyond the retention cap, folding their
// deltas into Carried.
func (l *Ledger) trim() {
	keep := l.state.Retention
	if keep <= 0 || len(l.state.History) <= keep {
		return
	}
	drop := len(l.state.History) - keep
	for _, r := range l.state.History[:drop] {
		for name, pts := range r.Delta {
			l.state.Carried[name] += pts
		}
	}
	l.state.History = append([]Round(nil), l.state.History[drop:]...)
	l.state.Trimmed += drop
}

// checkNames validates a roster: size names, none empty, none repeated.
func checkNames(names []string, size int, code score.ErrorCode) error {
	if len(names) != size {
		return score.Newf(code, "expected %d players, got %d", size, len(names))
	}
	seen := make(map[string]int, len(names))
	for i, n := range names {
		if n == "" {
			return &score.Error{Code: code, Message: "player name is empty", Slot: i + 1}
		}
		if j, ok := seen[n]; ok {
			return &score.Error{Code: code, Message: "name already used in slot " + strconv.Itoa(j+1), Slot: i + 1, Player: n}
		}
		seen[n] = i
	}
	return nil
}

func trimAll(in []string) []string {
	out := make([]string, len(in))
	for i, s := range in {
		out[i] = strings.TrimSpace(s)
	}
	return out
}
