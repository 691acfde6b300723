// Package msgs provides the rover messages exchanged over MQTT.
//
// Every message is wrapped in a Typed envelope carrying a type ID, so a
// single topic can carry different messages and a monitor can decode
// anything it sees.
package msgs
