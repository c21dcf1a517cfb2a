package gomidi

import (
	"errors"
	"fmt"
	"strings"

	"gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/drivers"
	"gitlab.com/gomidi/midi/v2/drivers/rtmididrv"

	"supersaw/daw"
)

type (
	// RTMIDIContext owns the rtmidi driver and the currently open output
	// port. It implements daw.Sender once a device is open; sends with no
	// device open are silently dropped, so playback keeps working without
	// hardware attached.
	RTMIDIContext struct {
		driver             *rtmididrv.Driver
		currentOut         drivers.Out
		send               func(midi.Message) error
		outputDevices      []RTMIDIDevice
		devicesInitialized bool
	}

	RTMIDIDevice struct {
		context *RTMIDIContext
		out     drivers.Out
	}
)

var _ daw.Sender = (*RTMIDIContext)(nil)

// Open the driver.
func NewContext() *RTMIDIContext {
	m := RTMIDIContext{}
	// there's not much we can do if this fails, so just use m.driver = nil to
	// indicate no driver available
	m.driver, _ = rtmididrv.New()
	return &m
}

func (c *RTMIDIContext) OutputDevices(yield func(RTMIDIDevice) bool) {
	if c.devicesInitialized {
		c.yieldCachedOutputDevices(yield)
	} else {
		c.initOutputDevices(yield)
	}
}

func (c *RTMIDIContext) yieldCachedOutputDevices(yield func(RTMIDIDevice) bool) {
	for _, device := range c.outputDevices {
		if !yield(device) {
			break
		}
	}
}

func (c *RTMIDIContext) initOutputDevices(yield func(RTMIDIDevice) bool) {
	if c.driver == nil {
		return
	}
	outs, err := c.driver.Outs()
	if err != nil {
		return
	}
	for i := 0; i < len(outs); i++ {
		device := RTMIDIDevice{context: c, out: outs[i]}
		c.outputDevices = append(c.outputDevices, device)
		if !yield(device) {
			break
		}
	}
	c.devicesInitialized = true
}

// Open an output device while closing the currently open if necessary.
func (d RTMIDIDevice) Open() error {
	if d.context.currentOut == d.out {
		return nil
	}
	if d.context.driver == nil {
		return errors.New("no driver available")
	}
	if d.context.HasDeviceOpen() {
		d.context.currentOut.Close()
	}
	d.context.currentOut = d.out
	if err := d.out.Open(); err != nil {
		d.context.currentOut = nil
		return fmt.Errorf("opening MIDI output failed: %w", err)
	}
	send, err := midi.SendTo(d.out)
	if err != nil {
		d.out.Close()
		d.context.currentOut = nil
		return fmt.Errorf("connecting MIDI output failed: %w", err)
	}
	d.context.send = send
	return nil
}

func (d RTMIDIDevice) String() string {
	return d.out.String()
}

// TryToOpenBy opens the first output whose name starts with namePrefix, or
// just the first output when takeFirst is set.
func (c *RTMIDIContext) TryToOpenBy(namePrefix string, takeFirst bool) {
	if namePrefix == "" && !takeFirst {
		return
	}
	for output := range c.OutputDevices {
		if takeFirst || strings.HasPrefix(output.String(), namePrefix) {
			output.Open()
			return
		}
	}
}

// Send implements daw.Sender. With no device open the message is dropped.
func (c *RTMIDIContext) Send(msg midi.Message) error {
	if c.send == nil {
		return nil
	}
	return c.send(msg)
}

func (c *RTMIDIContext) HasDeviceOpen() bool {
	return c.currentOut != nil && c.currentOut.IsOpen()
}

func (c *RTMIDIContext) Close() {
	if c.driver == nil {
		return
	}
	if c.currentOut != nil && c.currentOut.IsOpen() {
		c.currentOut.Close()
	}
	c.driver.Close()
}
