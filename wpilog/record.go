package wpilog

// Control record type tags. A record whose entry id is zero carries one of
// these as the first payload byte.
const (
	startControlRecord       = 0x00
	finishControlRecord      = 0x01
	setMetadataControlRecord = 0x02
)

// Record is one framed record: a microsecond timestamp and a payload.
type Record struct {
	Timestamp uint64
	Payload   Payload
}

type Payload interface {
	isPayload()
}

// Start declares an entry id and binds it to a name, a wire type and
// metadata. It must appear before any Raw record using that id.
type Start struct {
	EntryID  uint32
	Name     string
	Type     string
	Metadata string
}

// Finish marks an entry id as no longer valid.
type Finish struct {
	EntryID uint32
}

// SetMetadata replaces the metadata of an entry.
type SetMetadata struct {
	EntryID  uint32
	Metadata string
}

// Raw carries undecoded entry data. Interpretation is up to the wire type
// bound by the entry's Start record.
type Raw struct {
	EntryID uint32
	Data    []byte
}

func (Start) isPayload()       {}
func (Finish) isPayload()      {}
func (SetMetadata) isPayload() {}
func (Raw) isPayload()         {}
