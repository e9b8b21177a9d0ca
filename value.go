// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package formupload

// Value is what a single-file field holds.
//
// It is one of NoFile, StagedFile, or CommittedFile.
type Value interface {
	isValue()
}

// NoFile is the empty Value.
type NoFile struct{}

// StagedFile references a file in the transaction.
type StagedFile struct{ Record }

// CommittedFile references a file in persistent storage.
type CommittedFile struct{ Record }

func (NoFile) isValue()        {}
func (StagedFile) isValue()    {}
func (CommittedFile) isValue() {}

// RecordOf unwraps the Record, if any.
//
// The Committed flag of the result reflects the variant.
func RecordOf(v Value) (Record, bool) {
	switch t := v.(type) {
	case StagedFile:
		r := t.Record
		r.Committed = false
		return r, true
	case CommittedFile:
		r := t.Record
		r.Committed = true
		return r, true
	}
	return Record{}, false
}

// ValueOf wraps a Record into the variant its Committed flag indicates.
func ValueOf(r Record) Value {
	if r.Committed {
		return CommittedFile{r}
	}
	return StagedFile{r}
}

// Assign converts what a form framework passes as default value.
//
// Accepted are nil, a Value, and a Record or pointer to one.
// Anything else results in ErrUnexpectedValue.
func Assign(v interface{}) (Value, error) {
	switch t := v.(type) {
	case nil:
		return NoFile{}, nil
	case Value:
		return t, nil
	case Record:
		return ValueOf(t), nil
	case *Record:
		if t == nil {
			return NoFile{}, nil
		}
		return ValueOf(*t), nil
	}
	return nil, ErrUnexpectedValue
}

// AssignList is Assign for fields that hold more than one file.
//
// Accepted are nil, []Record, and []Value without NoFile elements.
func AssignList(v interface{}) ([]Record, error) {
	switch t := v.(type) {
	case nil:
		return nil, nil
	case []Record:
		return append([]Record(nil), t...), nil
	case []Value:
		list := make([]Record, 0, len(t))
		for _, elem := range t {
			r, ok := RecordOf(elem)
			if !ok {
				return nil, ErrUnexpectedValue
			}
			list = append(list, r)
		}
		return list, nil
	}
	return nil, ErrUnexpectedValue
}

// State summarizes what a single-file field has settled on.
type State int

// States of a single-file field.
const (
	StateEmpty State = iota
	StateStaged
	StateCommitted
	StateMarkedForRemoval
)

var stateNames = [...]string{
	StateEmpty:            "empty",
	StateStaged:           "staged",
	StateCommitted:        "committed",
	StateMarkedForRemoval: "marked for removal",
}

func (s State) String() string {
	if s < 0 || int(s) >= len(stateNames) {
		return "unknown"
	}
	return stateNames[s]
}

func stateOf(v Value) State {
	switch v.(type) {
	case StagedFile:
		return StateStaged
	case CommittedFile:
		return StateCommitted
	}
	return StateEmpty
}
