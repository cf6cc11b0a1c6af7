package core

// LightFingerprint sums the fields that affect a light's derived matrices.
// Distinct states may collide; a collision only delays a recompute.
func LightFingerprint(l *LightDesc) float64 {
	return float64(l.Position.X) + float64(l.Position.Y) + float64(l.Position.Z) +
		float64(l.Orientation.H) + float64(l.Orientation.P) + float64(l.Orientation.R) +
		float64(l.Umbra) + float64(l.Penumbra)
}

func ObjectFingerprint(o *ObjectDesc) float64 {
	return float64(o.Position.X) + float64(o.Position.Y) + float64(o.Position.Z) +
		float64(o.Orientation.H) + float64(o.Orientation.P) + float64(o.Orientation.R)
}

// Fingerprint tracks the last observed hash and the moved flag of one
// entity. Marks made after the frame snapshot survive the end-of-frame
// settle and are seen by the next frame.
type Fingerprint struct {
	hash    float64
	version uint64
	clean   uint64
	snap    uint64
}

func newFingerprint(hash float64) Fingerprint {
	return Fingerprint{hash: hash, version: 1}
}

// Observe records h and marks the entity moved if it differs from the
// previous hash.
func (f *Fingerprint) Observe(h float64) bool {
	if h == f.hash {
		return false
	}
	f.hash = h
	f.MarkMoved()
	return true
}

func (f *Fingerprint) Moved() bool { return f.version != f.clean }

func (f *Fingerprint) MarkMoved() { f.version++ }

func (f *Fingerprint) snapshot() { f.snap = f.version }

func (f *Fingerprint) settle() { f.clean = f.snap }
