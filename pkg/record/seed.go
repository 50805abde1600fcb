package record

import "sync"

// ViewWriter is the one capability Seed needs from the View it targets:
// appending the serialized record and minting a Locator for it. Seed depends
// on this narrow interface rather than *view.View to avoid an import cycle
// (a View owns Indexes, which register policies on a Seed).
type ViewWriter interface {
	WriteContent(data []byte) (Locator, error)
}

// Seed is the per-insert/remove commit coordinator. It is single-use:
// constructed for one DataReal, accumulates the IndexPolicy entries each
// participating index registers during the traversal phase (one or more per
// index), then commits them all in Save (insert)
// or Remove (delete). The payload is appended at most once per Seed.
type Seed struct {
	mu   sync.Mutex
	view ViewWriter
	data DataReal

	policies     []IndexPolicy
	increment    uint64
	hasIncrement bool

	committed bool
}

// NewSeed constructs a Seed targeting view for the given record. The
// Increment field of data is left as supplied unless an Increment engine
// later calls SetIncrement.
func NewSeed(view ViewWriter, data DataReal) *Seed {
	return &Seed{view: view, data: data}
}

// Data returns the record this Seed will commit, including any increment set
// via SetIncrement.
func (s *Seed) Data() DataReal {
	s.mu.Lock()
	defer s.mu.Unlock()
	d := s.data
	if s.hasIncrement {
		d.Increment = s.increment
	}
	return d
}

// SetIncrement is called by the Increment engine once per Seed, recording
// the slot number it reserved as the record's increment.
func (s *Seed) SetIncrement(v uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.increment = v
	s.hasIncrement = true
}

// Register accumulates one index's deferred write instruction.
func (s *Seed) Register(policy IndexPolicy) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.policies = append(s.policies, policy)
}

// Policies returns a snapshot of the policies registered so far.
func (s *Seed) Policies() []IndexPolicy {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]IndexPolicy, len(s.policies))
	copy(out, s.policies)
	return out
}

// Save serializes the record exactly once, appends it to the target view's
// data file to obtain its Locator, then writes that Locator (or a policy's
// CustomBytes) to every registered index slot. It must be called at most
// once per Seed.
func (s *Seed) Save() (Locator, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.committed {
		return Locator{}, Error.Wrap(errAlreadyCommitted)
	}
	s.committed = true

	data := s.data
	if s.hasIncrement {
		data.Increment = s.increment
	}
	encoded, err := Encode(data)
	if err != nil {
		return Locator{}, err
	}

	locator, err := s.view.WriteContent(encoded)
	if err != nil {
		return Locator{}, err
	}

	for _, policy := range s.policies {
		if err := policy.Node.Write(policy.Seek, policy.payload(locator)); err != nil {
			return locator, err
		}
	}
	return locator, nil
}

// Remove writes a zero locator (or a policy's CustomBytes) to every
// registered index slot, tombstoning the record without touching the data
// file itself.
func (s *Seed) Remove() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.committed {
		return Error.Wrap(errAlreadyCommitted)
	}
	s.committed = true

	for _, policy := range s.policies {
		if err := policy.Node.Write(policy.Seek, policy.tombstone()); err != nil {
			return err
		}
	}
	return nil
}
