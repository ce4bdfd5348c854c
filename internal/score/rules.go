package score

// PointTable maps a rank to the points it is worth.
type PointTable map[int]int

// Rules is the scoring configuration for a session.
//
// Each category's bonus is a flat offset added on top of the table (or flat
// DNF) value. Bonuses default to zero.
type Rules struct {
	Goal         PointTable `json:"goal" yaml:"goal"`
	Retired      PointTable `json:"retired" yaml:"retired"`
	DNF          int        `json:"dnf" yaml:"dnf"`
	GoalBonus    int        `json:"goal_bonus" yaml:"goal_bonus"`
	RetiredBonus int        `json:"retired_bonus" yaml:"retired_bonus"`
	DNFBonus     int        `json:"dnf_bonus" yaml:"dnf_bonus"`
}

// DefaultRules returns the standard 8-player point tables.
func DefaultRules() Rules {
	return Rules{
		Goal:    PointTable{1: 288, 2: 270, 3: 252, 4: 234, 5: 216, 6: 198, 7: 180, 8: 162},
		Retired: PointTable{1: 144, 2: 135, 3: 126, 4: 116, 5: 108, 6: 99, 7: 90, 8: 81},
		DNF:     0,
	}
}

// Score returns the points an outcome is worth.
//
// A table without an entry for the outcome's rank is a CONFIG_ERROR rather
// than zero points.
func (r Rules) Score(o Outcome) (int, error) {
	switch o.Category() {
	case CategoryDNF:
		return r.DNF + r.DNFBonus, nil
	case CategoryRetired:
		pts, ok := r.Retired[o.Rank]
		if !ok {
			return 0, Newf(CodeConfigError, "retired table has no entry for rank %d", o.Rank)
		}
		return pts + r.RetiredBonus, nil
	default:
		pts, ok := r.Goal[o.Rank]
		if !ok {
			return 0, Newf(CodeConfigError, "goal table has no entry for rank %d", o.Rank)
		}
		return pts + r.GoalBonus, nil
	}
}

// Validate rejects table entries outside ranks 1..8.
//
// Gaps are allowed here; scoring a rank with no entry fails with
// CONFIG_ERROR. Use Complete to require full coverage.
func (r Rules) Validate() error {
	for _, t := range r.tables() {
		for rank := range t.table {
			if rank < MinRank || rank > MaxRank {
				return Newf(CodeConfigError, "%s table has out-of-range rank %d", t.name, rank)
			}
		}
	}
	return nil
}

// Complete reports the first rank missing from either table.
func (r Rules) Complete() error {
	for _, t := range r.tables() {
		for rank := MinRank; rank <= MaxRank; rank++ {
			if _, ok := t.table[rank]; !ok {
				return Newf(CodeConfigError, "%s table has no entry for rank %d", t.name, rank)
			}
		}
	}
	return nil
}

type namedTable struct {
	name  string
	table PointTable
}

func (r Rules) tables() []namedTable {
	return []namedTable{{"goal", r.Goal}, {"retired", r.Retired}}
}

// Clone returns a deep copy.
func (r Rules) Clone() Rules {
	c := r
	c.Goal = r.Goal.clone()
	c.Retired = r.Retired.clone()
	return c
}

func (t PointTable) clone() PointTable {
	if t == nil {
		return nil
	}
	c := make(PointTable, len(t))
	for k, v := range t {
		c[k] = v
	}
	return c
}
