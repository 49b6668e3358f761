package entity

// DocumentRecord is a state-directory PDF whose name follows
// {last}_{first}_{6 digits}.pdf. It is built once per scan and never mutated.
type DocumentRecord struct {
	Path      string `json:"path"`
	Name      string `json:"name"` // base filename, the UsedSet key
	Last      string `json:"last"`
	First     string `json:"first"`
	Sequence  int    `json:"sequence"`
	ScanIndex int    `json:"scan_index"`
}

// Key returns the coarse identity encoded in the filename.
func (d DocumentRecord) Key() IdentityKey {
	return IdentityKey{First: d.First, Last: d.Last}
}

// UsedSet tracks filenames already consumed by a batch during one run.
// It is threaded explicitly through reconcile and assemble and never persisted.
type UsedSet struct {
	names map[string]struct{}
}

func NewUsedSet() *UsedSet {
	return &UsedSet{names: make(map[string]struct{})}
}

func (u *UsedSet) Add(name string) {
	u.names[name] = struct{}{}
}

func (u *UsedSet) Has(name string) bool {
	_, ok := u.names[name]
	return ok
}

func (u *UsedSet) Len() int { return len(u.names) }
