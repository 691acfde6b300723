package hal

import (
	"fmt"

	"go.bug.st/serial"
)

// DefaultBaudRate is the baud rate of the rover UART.
const DefaultBaudRate = 9600

// OpenSerial opens a serial port with 8N1 framing.
func OpenSerial(portName string, baudRate int) (serial.Port, error) {
	if baudRate <= 0 {
		baudRate = DefaultBaudRate
	}
	mode := &serial.Mode{
		BaudRate: baudRate,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	}
	port, err := serial.Open(portName, mode)
	if err != nil {
		return nil, fmt.Errorf("open serial port %s: %w", portName, err)
	}
	return port, nil
}

// SerialPorts lists available serial ports.
func SerialPorts() ([]string, error) {
	return serial.GetPortsList()
}
