package dataset

// Kind classifies what an active dataset can show.
type Kind int

const (
	// KindAbsent means nothing has been uploaded or selected yet.
	KindAbsent Kind = iota
	// KindError means the dataset only carries an error message.
	KindError
	// KindSummary means the dataset has analyzable statistics.
	KindSummary
)

func (k Kind) String() string {
	switch k {
	case KindError:
		return "error"
	case KindSummary:
		return "summary"
	default:
		return "absent"
	}
}

// Classify maps an optional dataset onto the three renderable states.
func Classify(d *Dataset) Kind {
	switch {
	case d == nil:
		return KindAbsent
	case d.Summary.HasError():
		return KindError
	default:
		return KindSummary
	}
}
