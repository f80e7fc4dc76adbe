package tileset

// FaceRef names one face of one catalogue entry.
type FaceRef struct {
	Entry int  `json:"entry"`
	Face  Face `json:"face"`
}

// Table lists, for every entry and face, the faces that may sit on the
// other side of it. Lists are ordered by entry, then face.
type Table [][FaceCount][]FaceRef

// Compatible returns the partners of face f of entry.
func (t Table) Compatible(entry int, f Face) []FaceRef {
	return t[entry][f]
}

// Contains reports whether b is listed as a partner of a.
func (t Table) Contains(a, b FaceRef) bool {
	for _, r := range t[a.Entry][a.Face] {
		if r == b {
			return true
		}
	}
	return false
}

type bucketKey struct {
	hash     uint64
	symmetry int8
	empty    bool
}

func keyOf(s Signature) bucketKey {
	return bucketKey{hash: s.Hash, symmetry: s.Symmetry, empty: s.Empty}
}

// BuildCompatibility buckets every face by signature and looks each face's
// partners up under the negated symmetry. Candidates from the bucket are
// confirmed against the full loops, so the table is symmetric and free of
// hash collisions. A face may end up with no partner at all.
func BuildCompatibility(profiles [][FaceCount]FaceProfile) Table {
	buckets := make(map[bucketKey][]FaceRef)
	for e := range profiles {
		for _, f := range Faces {
			k := keyOf(profiles[e][f].Signature)
			buckets[k] = append(buckets[k], FaceRef{Entry: e, Face: f})
		}
	}

	table := make(Table, len(profiles))
	for e := range profiles {
		for _, f := range Faces {
			p := profiles[e][f]
			want := keyOf(p.Signature)
			want.symmetry = -want.symmetry

			var partners []FaceRef
			for _, r := range buckets[want] {
				if p.Matches(profiles[r.Entry][r.Face]) {
					partners = append(partners, r)
				}
			}
			table[e][f] = partners
		}
	}
	return table
}
