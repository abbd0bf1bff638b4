package entities

// FileState is the per-file position in an upload run
type FileState string

// Per-file states: discovered -> parsed -> hashed_and_compared -> {skipped | uploaded | failed}
const (
	StateDiscovered        FileState = "discovered"
	StateParsed            FileState = "parsed"
	StateHashedAndCompared FileState = "hashed_and_compared"
	StateSkipped           FileState = "skipped"
	StateUploaded          FileState = "uploaded"
	StateFailed            FileState = "failed"
)

// Terminal reports whether no further transition is possible
func (s FileState) Terminal() bool {
	return s == StateSkipped || s == StateUploaded || s == StateFailed
}

// FileResult records what happened to one upload target
type FileResult struct {
	Target     UploadTarget
	State      FileState
	Descriptor SymbolArchiveDescriptor
	Signer     string // key ID of the archive's signature, if checked
	Reason     string // why a file was skipped
	Err        error

	// Transitions lists every state the file entered, in order
	Transitions []FileState
}

// NewFileResult starts a result in StateDiscovered
func NewFileResult(target UploadTarget) FileResult {
	return FileResult{
		Target:      target,
		State:       StateDiscovered,
		Transitions: []FileState{StateDiscovered},
	}
}

// Advance moves the result to state
func (r *FileResult) Advance(state FileState) {
	r.State = state
	r.Transitions = append(r.Transitions, state)
}

// Fail moves the result to StateFailed with err
func (r *FileResult) Fail(err error) {
	r.Err = err
	r.Advance(StateFailed)
}

// UploadReport summarises one invocation
type UploadReport struct {
	RunID   string
	Results []FileResult
}

func (r *UploadReport) count(state FileState) int {
	n := 0
	for _, res := range r.Results {
		if res.State == state {
			n++
		}
	}
	return n
}

// Uploaded returns the number of files uploaded
func (r *UploadReport) Uploaded() int { return r.count(StateUploaded) }

// Skipped returns the number of files skipped
func (r *UploadReport) Skipped() int { return r.count(StateSkipped) }

// Failed returns the number of files that failed
func (r *UploadReport) Failed() int { return r.count(StateFailed) }
