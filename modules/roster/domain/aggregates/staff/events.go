package staff

// CreatedEvent is published when a person gains their first roster record or
// an organic change appends a fresh assignment.
type CreatedEvent struct {
	Record *Record
}

// TransferredEvent is published when a confirmed resolution or a ledger scan
// synthesizes a transfer pair.
type TransferredEvent struct {
	Old *Record
	New *Record
}

// BackfilledEvent is published when a blank ParentName or Code is filled on
// an existing record.
type BackfilledEvent struct {
	Record *Record
	Field  string
}
