// Package comm provides the L0 serial protocol of the rover.
package comm

// The L0 protocol carries drive commands from an operator (or an L1 bridge)
// to the rover firmware over a byte stream (e.g. serial port, 9600 8N1).
//
// Each frame is 4 bytes: a start marker (0xff), an opcode, a signed
// magnitude and a checksum which is opcode XOR magnitude. There is no
// sequence or acknowledgement: corrupted frames are dropped and any byte
// outside a frame is skipped until the next start marker.
//
// The receive path is split across two goroutines, mirroring the RX
// interrupt and the control task on the MCU:
//
//   Receiver (producer) -> RingBuffer -> Parser (consumer, polled periodically)
//
// Producer: operator / L1 bridge
// Consumer: rover controller
