package core

import "context"

// JingleEngine plays jingles from a JingleStore on a NoteSequencer and
// guards the arena against edits while its notes are being played.
type JingleEngine struct {
	store *JingleStore
	seq   *NoteSequencer
}

// NewJingleEngine ties store to seq
func NewJingleEngine(store *JingleStore, seq *NoteSequencer) *JingleEngine {
	return &JingleEngine{store: store, seq: seq}
}

// Store returns the underlying Jingle Data
func (e *JingleEngine) Store() *JingleStore {
	return e.store
}

// Sequencer returns the haptic sequencer
func (e *JingleEngine) Sequencer() *NoteSequencer {
	return e.seq
}

// PlayJingle starts jingle idx. Each haptic with at least one note is
// started independently; the first failure is returned.
func (e *JingleEngine) PlayJingle(idx uint8) error {
	var seqs [HapticCount]NoteSequence
	for h := HapticRight; h < HapticCount; h++ {
		notes, err := e.store.Notes(h, idx)
		if err != nil {
			return err
		}
		seqs[h] = notes
	}

	var firstErr error
	for h := HapticRight; h < HapticCount; h++ {
		if seqs[h].Len() == 0 {
			continue
		}
		if err := e.seq.Play(h, seqs[h]); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// Busy reports whether either haptic is playing
func (e *JingleEngine) Busy() bool {
	for h := HapticRight; h < HapticCount; h++ {
		if e.seq.IsBusy(h) {
			return true
		}
	}
	return false
}

// Stop silences both haptics
func (e *JingleEngine) Stop() {
	for h := HapticRight; h < HapticCount; h++ {
		e.seq.Stop(h)
	}
}

// Wait blocks until both haptics are idle, polling once per millisecond on
// the sequencer's timer.
func (e *JingleEngine) Wait(ctx context.Context) error {
	for e.Busy() {
		if err := e.seq.timer.Sleep(ctx, 1000); err != nil {
			return err
		}
	}
	return nil
}

func (e *JingleEngine) editable() error {
	if e.Busy() {
		return ErrStoreBusy
	}
	return nil
}

// AddJingle inserts an empty jingle, see JingleStore.AddJingle
func (e *JingleEngine) AddJingle(idx uint8, numRight, numLeft uint16) error {
	if err := e.editable(); err != nil {
		return err
	}
	return e.store.AddJingle(idx, numRight, numLeft)
}

// DeleteJingle removes a jingle, see JingleStore.DeleteJingle
func (e *JingleEngine) DeleteJingle(idx uint8) error {
	if err := e.editable(); err != nil {
		return err
	}
	return e.store.DeleteJingle(idx)
}

// SetNote updates one note in place
func (e *JingleEngine) SetNote(idx uint8, h Haptic, noteIdx uint16, note Note) error {
	if err := e.editable(); err != nil {
		return err
	}
	return e.store.SetNote(idx, h, noteIdx, note)
}

// Clear empties the arena
func (e *JingleEngine) Clear() error {
	if err := e.editable(); err != nil {
		return err
	}
	e.store.Init()
	return nil
}

// LoadDefaults restores the factory jingles
func (e *JingleEngine) LoadDefaults() error {
	if err := e.editable(); err != nil {
		return err
	}
	return e.store.LoadDefaults()
}

// Load replaces the arena from persistent storage
func (e *JingleEngine) Load(ps PersistentStore) error {
	if err := e.editable(); err != nil {
		return err
	}
	return e.store.LoadFromPersisted(ps)
}

// Save writes the arena to persistent storage
func (e *JingleEngine) Save(ps PersistentStore) error {
	return e.store.SaveToPersisted(ps)
}

// ClearPersisted invalidates the persisted copy
func (e *JingleEngine) ClearPersisted(ps PersistentStore) error {
	return e.store.ClearPersisted(ps)
}
