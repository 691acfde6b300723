package comm

// ParseState indicates whether the parser is inside a frame.
type ParseState int

const (
	// StateIdle means waiting for a StartMarker.
	StateIdle ParseState = iota
	// StateReceiving means a StartMarker was seen and payload bytes are expected.
	StateReceiving
)

// String implements fmt.Stringer.
func (s ParseState) String() string {
	if s == StateReceiving {
		return "receiving"
	}
	return "idle"
}

// ParseResult indicates the result after parsing.
type ParseResult struct {
	// Frame is set when a frame is completed. It's not validated.
	Frame *Frame
	// Consumed is the number of bytes taken from the source.
	Consumed int
	// Skipped is the number of bytes dropped outside of a frame.
	Skipped int
}

// Parser extracts frames from a byte stream.
//
// By default the parser is wire compatible with the rover firmware:
// every byte is compared with StartMarker after it has been handled,
// so a marker inside the payload is kept as payload and also re-arms
// receiving without restarting the payload index. When the marker is
// the last payload byte, the frame completes and the parser starts
// receiving the next frame.
//
// With StrictResync, a marker always restarts the payload and
// is never stored as payload, so magnitude/opcode 0xff can't be sent.
type Parser struct {
	StrictResync bool

	receiving bool
	index     int
	payload   [PayloadLen]byte
}

// State gets the current parse state.
func (p *Parser) State() ParseState {
	if p.receiving {
		return StateReceiving
	}
	return StateIdle
}

// Pending returns the number of payload bytes received for the current frame.
func (p *Parser) Pending() int {
	return p.index
}

// Reset drops any partial frame and waits for the next StartMarker.
func (p *Parser) Reset() {
	p.receiving, p.index = false, 0
}

// Feed consumes one byte.
func (p *Parser) Feed(b byte) (pr ParseResult) {
	pr.Consumed = 1
	if p.StrictResync && b == StartMarker {
		pr.Skipped = p.index
		p.receiving, p.index = true, 0
		return
	}
	switch {
	case p.receiving:
		p.payload[p.index] = b
		p.index++
		if p.index >= PayloadLen {
			pr.Frame = &Frame{Opcode: p.payload[0], Magnitude: p.payload[1], Checksum: p.payload[2]}
			p.receiving, p.index = false, 0
		}
	case b != StartMarker:
		pr.Skipped = 1
	}
	if b == StartMarker {
		p.receiving = true
	}
	return
}

// Poll consumes bytes from src until it's empty or a frame is completed.
// Bytes after the completed frame are left in src for the next Poll.
// It never blocks, and an empty src leaves the parser untouched.
func (p *Parser) Poll(src ByteSource) (pr ParseResult) {
	for pr.Frame == nil {
		b, ok := src.Pop()
		if !ok {
			break
		}
		r := p.Feed(b)
		pr.Frame = r.Frame
		pr.Consumed += r.Consumed
		pr.Skipped += r.Skipped
	}
	return
}
