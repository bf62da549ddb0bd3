package core

import (
	"testing"
)

func TestMemGPIOEdges(t *testing.T) {
	clk := &SimClock{}
	gpio := NewMemGPIO(clk)
	pin := GPIOPin(25)

	if err := gpio.SetPin(pin, true); err == nil {
		t.Error("SetPin on an unconfigured pin should fail")
	}

	if err := gpio.ConfigureOutput(pin); err != nil {
		t.Fatalf("ConfigureOutput failed: %v", err)
	}

	clk.Set(10)
	gpio.SetPin(pin, true)
	clk.Set(20)
	gpio.SetPin(pin, true) // no change, no edge
	clk.Set(30)
	gpio.SetPin(pin, false)

	if gpio.ReadPin(pin) {
		t.Error("pin should read back low")
	}

	edges := gpio.Edges(pin)
	if len(edges) != 2 {
		t.Fatalf("Expected 2 edges, got %d", len(edges))
	}
	if edges[0] != (Edge{Pin: pin, Tick: 10, High: true}) {
		t.Errorf("Unexpected first edge %+v", edges[0])
	}
	if edges[1] != (Edge{Pin: pin, Tick: 30, High: false}) {
		t.Errorf("Unexpected second edge %+v", edges[1])
	}
}

func TestMemGPIODrain(t *testing.T) {
	clk := &SimClock{}
	gpio := NewMemGPIO(clk)
	gpio.ConfigureOutput(1)
	gpio.ConfigureOutput(2)

	gpio.SetPin(1, true)
	gpio.SetPin(2, true)

	if got := gpio.Drain(); len(got) != 2 {
		t.Fatalf("Expected 2 drained edges, got %d", len(got))
	}
	if got := gpio.Drain(); len(got) != 0 {
		t.Errorf("Drain should forget returned edges, got %d", len(got))
	}

	gpio.SetPin(1, false)
	gpio.ResetEdges()
	if got := gpio.Edges(1); len(got) != 0 {
		t.Errorf("ResetEdges should drop edges, got %d", len(got))
	}
}

func TestGPIODriverSingleton(t *testing.T) {
	prev := gpioDriver
	defer SetGPIODriver(prev)

	SetGPIODriver(nil)
	defer func() {
		if recover() == nil {
			t.Error("MustGPIO should panic without a driver")
		}
	}()

	gpio := NewMemGPIO(nil)
	SetGPIODriver(gpio)
	if MustGPIO() != GPIODriver(gpio) {
		t.Error("MustGPIO returned a different driver")
	}

	SetGPIODriver(nil)
	MustGPIO()
}
