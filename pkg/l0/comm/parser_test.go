package comm

import (
	"testing"

	"github.com/stretchr/testify/require"
)

type parserTestStep struct {
	in      []byte
	frames  []Frame
	skipped int
	state   ParseState
	pending int
}

type parserTestStepBuilder struct {
	steps []parserTestStep
}

func parserTestSteps() *parserTestStepBuilder {
	return &parserTestStepBuilder{}
}

func (b *parserTestStepBuilder) on(in ...byte) *parserTestStepBuilder {
	b.steps = append(b.steps, parserTestStep{in: in})
	return b
}

func (b *parserTestStepBuilder) last() *parserTestStep {
	return &b.steps[len(b.steps)-1]
}

func (b *parserTestStepBuilder) frame(op, mag, chk byte) *parserTestStepBuilder {
	s := b.last()
	s.frames = append(s.frames, Frame{Opcode: op, Magnitude: mag, Checksum: chk})
	return b
}

func (b *parserTestStepBuilder) skipped(n int) *parserTestStepBuilder {
	b.last().skipped = n
	return b
}

func (b *parserTestStepBuilder) receiving(pending int) *parserTestStepBuilder {
	s := b.last()
	s.state, s.pending = StateReceiving, pending
	return b
}

func (b *parserTestStepBuilder) build() []parserTestStep {
	return b.steps
}

// byteQueue is a ByteSource for tests.
type byteQueue []byte

func (q *byteQueue) Pop() (byte, bool) {
	if len(*q) == 0 {
		return 0, false
	}
	b := (*q)[0]
	*q = (*q)[1:]
	return b, true
}

func TestParser(t *testing.T) {
	testCases := []struct {
		name   string
		strict bool
		steps  []parserTestStep
	}{
		{
			name: "single frame",
			steps: parserTestSteps().
				on(0xff, 1, 2, 3).frame(1, 2, 3).
				build(),
		},
		{
			name: "resync after stray byte",
			steps: parserTestSteps().
				on(0x01, 0xff, 0x01, 0x02, 0x03).frame(1, 2, 3).skipped(1).
				build(),
		},
		{
			name: "skip garbage until marker",
			steps: parserTestSteps().
				on(9, 8, 7).skipped(3).
				on(0xff).receiving(0).
				on(4, 5, 1).frame(4, 5, 1).
				build(),
		},
		{
			name: "partial frame across polls",
			steps: parserTestSteps().
				on(0xff, 0x01).receiving(1).
				on(0x02, 0x03).frame(1, 2, 3).
				build(),
		},
		{
			name: "empty input keeps state",
			steps: parserTestSteps().
				on(0xff, 3).receiving(1).
				on().receiving(1).
				on(4, 7).frame(3, 4, 7).
				build(),
		},
		{
			name: "back to back frames",
			steps: parserTestSteps().
				on(0xff, 1, 2, 3, 0xff, 3, 10, 9).frame(1, 2, 3).frame(3, 10, 9).
				build(),
		},
		{
			name: "invalid checksum still completes",
			steps: parserTestSteps().
				on(0xff, 1, 2, 4).frame(1, 2, 4).
				build(),
		},
		{
			name: "marker inside payload is data",
			steps: parserTestSteps().
				on(0xff, 1, 0xff, 0xfe).frame(1, 0xff, 0xfe).
				build(),
		},
		{
			name: "marker as last payload byte re-arms",
			steps: parserTestSteps().
				on(0xff, 1, 2, 0xff).frame(1, 2, 0xff).receiving(0).
				on(1, 2, 3).frame(1, 2, 3).
				build(),
		},
		{
			name:   "strict marker restarts payload",
			strict: true,
			steps: parserTestSteps().
				on(0xff, 1, 0xff, 2, 5, 7).frame(2, 5, 7).skipped(1).
				build(),
		},
		{
			name:   "strict single frame",
			strict: true,
			steps: parserTestSteps().
				on(0x10, 0xff, 4, 4, 0).frame(4, 4, 0).skipped(1).
				build(),
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			p := &Parser{StrictResync: tc.strict}
			for _, step := range tc.steps {
				src := byteQueue(append([]byte(nil), step.in...))
				var frames []Frame
				var skipped int
				for {
					pr := p.Poll(&src)
					skipped += pr.Skipped
					if pr.Frame == nil {
						break
					}
					frames = append(frames, *pr.Frame)
				}
				require.Empty(t, src)
				require.Equal(t, step.frames, frames)
				require.Equal(t, step.skipped, skipped)
				require.Equal(t, step.state, p.State())
				require.Equal(t, step.pending, p.Pending())
			}
		})
	}
}

func TestParserPollStopsAtFrame(t *testing.T) {
	var p Parser
	src := byteQueue{0xff, 1, 2, 3, 0xff, 2}
	pr := p.Poll(&src)
	require.NotNil(t, pr.Frame)
	require.Equal(t, NewFrame(1, 2), *pr.Frame)
	require.Equal(t, 4, pr.Consumed)
	require.Equal(t, byteQueue{0xff, 2}, src)

	pr = p.Poll(&src)
	require.Nil(t, pr.Frame)
	require.Equal(t, 2, pr.Consumed)
	require.Equal(t, StateReceiving, p.State())
}

func TestParserEmptySourceUnchanged(t *testing.T) {
	p := Parser{}
	p.Feed(0xff)
	p.Feed(1)
	before := p
	pr := p.Poll(NewRingBuffer(8))
	require.Equal(t, ParseResult{}, pr)
	require.Equal(t, before, p)
}

func TestParserReset(t *testing.T) {
	var p Parser
	p.Feed(0xff)
	p.Feed(1)
	p.Reset()
	require.Equal(t, StateIdle, p.State())
	require.Equal(t, 0, p.Pending())
	pr := p.Feed(2)
	require.Nil(t, pr.Frame)
	require.Equal(t, 1, pr.Skipped)
}
