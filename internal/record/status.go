package record

// Status is a workflow-tracker status name.
//
// The vocabulary is ordered but not strictly linear: On hold and Rejected
// are side states reachable only by human action. This system drives
// transitions among New, In specification, Scheduled and In progress;
// every other status is read but never written.
type Status string

const (
	StatusNew             Status = "New"
	StatusInSpecification Status = "In specification"
	StatusSpecified       Status = "Specified"
	StatusConfirmed       Status = "Confirmed"
	StatusToBeScheduled   Status = "To be scheduled"
	StatusScheduled       Status = "Scheduled"
	StatusInProgress      Status = "In progress"
	StatusDeveloped       Status = "Developed"
	StatusInTesting       Status = "In testing"
	StatusTested          Status = "Tested"
	StatusClosed          Status = "Closed"
	StatusOnHold          Status = "On hold"
	StatusRejected        Status = "Rejected"
)

// StatusOrder lists the main-line statuses in workflow order, followed by
// the two side states.
var StatusOrder = []Status{
	StatusNew,
	StatusInSpecification,
	StatusSpecified,
	StatusConfirmed,
	StatusToBeScheduled,
	StatusScheduled,
	StatusInProgress,
	StatusDeveloped,
	StatusInTesting,
	StatusTested,
	StatusClosed,
	StatusOnHold,
	StatusRejected,
}

// Known reports whether s is part of the status vocabulary.
func (s Status) Known() bool {
	for _, known := range StatusOrder {
		if s == known {
			return true
		}
	}
	return false
}

// StatusTable maps status names to the numeric ids the tracker uses in
// its API. The ids are instance-specific and can be overridden from
// configuration; DefaultStatusTable matches a stock tracker install.
type StatusTable map[Status]int

// DefaultStatusTable returns the stock tracker status ids.
func DefaultStatusTable() StatusTable {
	return StatusTable{
		StatusNew:             1,
		StatusInSpecification: 2,
		StatusSpecified:       3,
		StatusConfirmed:       4,
		StatusToBeScheduled:   5,
		StatusScheduled:       6,
		StatusInProgress:      7,
		StatusDeveloped:       8,
		StatusInTesting:       9,
		StatusTested:          10,
		StatusClosed:          12,
		StatusOnHold:          13,
		StatusRejected:        14,
	}
}

// ID returns the tracker id for a status name.
func (t StatusTable) ID(s Status) (int, bool) {
	id, ok := t[s]
	return id, ok
}

// ByID returns the status name for a tracker id.
func (t StatusTable) ByID(id int) (Status, bool) {
	for s, sid := range t {
		if sid == id {
			return s, true
		}
	}
	return "", false
}
