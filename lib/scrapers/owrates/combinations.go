package owrates

// Sequence lazily enumerates the Cartesian product of a Domains value in
// a fixed field priority order: input, map, region, role, rq, tier, with
// tier varying fastest. The order is stable, so a limited run always
// requests the same prefix of combinations as an unlimited one.
type Sequence struct {
	domains Domains
	limit   int
	next    int
}

// NewSequence builds a sequence over the full product of domains.
// limit > 0 truncates the sequence after that many tuples.
func NewSequence(domains Domains, limit int) *Sequence {
	return &Sequence{domains: domains, limit: limit}
}

// SingleSequence wraps one explicit tuple in a one-element sequence.
func SingleSequence(t FilterTuple) *Sequence {
	return &Sequence{domains: Domains{
		Inputs:  []string{t.Input},
		Maps:    []string{t.Map},
		Regions: []string{t.Region},
		Roles:   []string{t.Role},
		RQ:      []string{t.RQ},
		Tiers:   []string{t.Tier},
	}}
}

// Total is the untruncated product size.
func (s *Sequence) Total() int {
	d := s.domains
	return len(d.Inputs) * len(d.Maps) * len(d.Regions) *
		len(d.Roles) * len(d.RQ) * len(d.Tiers)
}

// Len is the number of tuples the sequence yields after truncation.
func (s *Sequence) Len() int {
	total := s.Total()
	if s.limit > 0 && s.limit < total {
		return s.limit
	}
	return total
}

// At decodes the tuple at position idx of the product without iterating.
func (s *Sequence) At(idx int) FilterTuple {
	d := s.domains
	var t FilterTuple
	t.Tier = d.Tiers[idx%len(d.Tiers)]
	idx /= len(d.Tiers)
	t.RQ = d.RQ[idx%len(d.RQ)]
	idx /= len(d.RQ)
	t.Role = d.Roles[idx%len(d.Roles)]
	idx /= len(d.Roles)
	t.Region = d.Regions[idx%len(d.Regions)]
	idx /= len(d.Regions)
	t.Map = d.Maps[idx%len(d.Maps)]
	idx /= len(d.Maps)
	t.Input = d.Inputs[idx%len(d.Inputs)]
	return t
}

// Next yields the following tuple, reporting false once the sequence is
// exhausted.
func (s *Sequence) Next() (FilterTuple, bool) {
	if s.next >= s.Len() {
		return FilterTuple{}, false
	}
	t := s.At(s.next)
	s.next++
	return t, true
}

// Reset rewinds the sequence to the first tuple.
func (s *Sequence) Reset() {
	s.next = 0
}

// All materializes the whole (truncated) sequence from the start without
// touching iteration state.
func (s *Sequence) All() []FilterTuple {
	out := make([]FilterTuple, s.Len())
	for i := range out {
		out[i] = s.At(i)
	}
	return out
}
