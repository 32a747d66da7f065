package wpilog

// WPILOG container framing, format version 1.0.
//
// Layout: 6-byte magic "WPILOG", u16 LE version 0x0100, u32 LE extra-header
// length, extra header bytes, then records until end of input. Each record
// starts with one length byte whose bit fields select how many bytes encode
// the entry id (bits 0-1, width-1), the payload length (bits 2-3, width-1)
// and the timestamp (bits 4-6, width-1).

const magic = "WPILOG"

// Version is the only container version this package frames.
const Version = 0x0100

// Header is the decoded file header.
type Header struct {
	Version     uint16
	ExtraHeader string
}

// IsWPILOG reports whether b starts with the WPILOG magic.
func IsWPILOG(b []byte) bool {
	return len(b) >= len(magic) && string(b[:len(magic)]) == magic
}

type headerLengths byte

func (l headerLengths) entryID() int {
	return int(l&0b0000_0011) + 1
}

func (l headerLengths) payloadLen() int {
	return int(l&0b0000_1100)>>2 + 1
}

func (l headerLengths) timestamp() int {
	return int(l&0b0111_0000)>>4 + 1
}

// Decoder frames records out of a byte stream. It tolerates truncated input:
// Next returns ErrIncomplete without consuming anything, and Feed may append
// the rest of the stream later. A malformed record is fatal to the stream;
// every Next after it returns ErrHalted.
type Decoder struct {
	r          Reader
	header     Header
	headerDone bool
	failed     error
}

func NewDecoder(b []byte) *Decoder {
	return &Decoder{r: Reader{b: b}}
}

// Feed appends more input. Safe to call after an ErrIncomplete.
func (d *Decoder) Feed(p []byte) {
	d.r.b = append(d.r.b, p...)
}

// Header parses the file header on first use.
func (d *Decoder) Header() (Header, error) {
	if d.headerDone {
		return d.header, nil
	}
	if d.failed != nil {
		return Header{}, d.failed
	}
	mark := d.r.i

	m, err := d.r.ReadBytes(len(magic))
	if err != nil {
		d.r.i = mark
		return Header{}, err
	}
	if string(m) != magic {
		d.failed = ErrBadMagic
		return Header{}, ErrBadMagic
	}
	version, err := d.r.ReadUint16()
	if err != nil {
		d.r.i = mark
		return Header{}, err
	}
	if version != Version {
		d.failed = ErrInvalidVersion
		return Header{}, ErrInvalidVersion
	}
	extraLen, err := d.r.ReadUint32()
	if err != nil {
		d.r.i = mark
		return Header{}, err
	}
	extra, err := d.r.ReadString(int(extraLen))
	if err != nil {
		if err == ErrIncomplete {
			d.r.i = mark
			return Header{}, err
		}
		d.failed = err
		return Header{}, err
	}

	d.header = Header{Version: version, ExtraHeader: extra}
	d.headerDone = true
	return d.header, nil
}

// Next frames one record. ErrIncomplete means the input ends mid-record and
// nothing was consumed. Any other error is fatal: this layer does not
// resynchronize past a corrupt record.
func (d *Decoder) Next() (Record, error) {
	if d.failed != nil {
		if d.failed == ErrBadMagic || d.failed == ErrInvalidVersion {
			return Record{}, d.failed
		}
		return Record{}, ErrHalted
	}
	if !d.headerDone {
		if _, err := d.Header(); err != nil {
			return Record{}, err
		}
	}
	mark := d.r.i

	lb, err := d.r.ReadByte()
	if err != nil {
		return Record{}, err
	}
	lengths := headerLengths(lb)

	entryID, err := d.r.ReadDynUint(lengths.entryID())
	if err != nil {
		d.r.i = mark
		return Record{}, err
	}
	payloadLen, err := d.r.ReadDynUint(lengths.payloadLen())
	if err != nil {
		d.r.i = mark
		return Record{}, err
	}
	timestamp, err := d.r.ReadDynUint(lengths.timestamp())
	if err != nil {
		d.r.i = mark
		return Record{}, err
	}
	payload, err := d.r.ReadBytes(int(payloadLen))
	if err != nil {
		d.r.i = mark
		return Record{}, err
	}

	if entryID == 0 {
		p, err := parseControl(payload)
		if err != nil {
			// The payload was fully framed: a bad control record is a
			// record-level failure, never a retry signal.
			if err == ErrIncomplete {
				err = ErrCorrupted
			}
			d.failed = err
			return Record{}, err
		}
		return Record{Timestamp: timestamp, Payload: p}, nil
	}

	return Record{
		Timestamp: timestamp,
		Payload:   Raw{EntryID: uint32(entryID), Data: payload},
	}, nil
}

func parseControl(payload []byte) (Payload, error) {
	r := NewReader(payload)

	kind, err := r.ReadByte()
	if err != nil {
		return nil, err
	}
	entryID, err := r.ReadUint32()
	if err != nil {
		return nil, err
	}

	switch kind {
	case startControlRecord:
		name, err := r.ReadLenString()
		if err != nil {
			return nil, err
		}
		typ, err := r.ReadLenString()
		if err != nil {
			return nil, err
		}
		metadata, err := r.ReadLenString()
		if err != nil {
			return nil, err
		}
		return Start{
			EntryID:  entryID,
			Name:     name,
			Type:     typ,
			Metadata: metadata,
		}, nil

	case finishControlRecord:
		return Finish{EntryID: entryID}, nil

	case setMetadataControlRecord:
		metadata, err := r.ReadLenString()
		if err != nil {
			return nil, err
		}
		return SetMetadata{EntryID: entryID, Metadata: metadata}, nil
	}
	return nil, ErrUnknownControlType
}

// Parse frames every record in b and hands each to emit. It stops quietly
// when the input runs out mid-record, which also covers a clean end of
// input; a malformed record or a bad header is returned as the error.
func Parse(b []byte, emit func(Record)) (Header, error) {
	d := NewDecoder(b)
	h, err := d.Header()
	if err != nil {
		return Header{}, err
	}
	for {
		rec, err := d.Next()
		if err != nil {
			if err == ErrIncomplete {
				return h, nil
			}
			return h, err
		}
		emit(rec)
	}
}
