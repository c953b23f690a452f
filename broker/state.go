// MIT License
//
// Copyright (c) 2022-2026 GoAkt Team
//
// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to deal
// in the Software without restriction, including without limitation the rights
// to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
// copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in all
// copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
// SOFTWARE.

package broker

import "go.uber.org/atomic"

// State is the connection state of a Broker
type State int32

const (
	// Connecting is the state until the subscription is confirmed
	Connecting State = iota
	// Subscribed means messages are being delivered
	Subscribed
	// Reconnecting means the connection was lost and is being restored
	Reconnecting
	// Closed is terminal
	Closed
)

// String returns the state name
func (s State) String() string {
	switch s {
	case Connecting:
		return "connecting"
	case Subscribed:
		return "subscribed"
	case Reconnecting:
		return "reconnecting"
	case Closed:
		return "closed"
	default:
		return "unknown"
	}
}

// StateMachine tracks a broker state. Once Closed, no transition is allowed.
type StateMachine struct {
	state *atomic.Int32
}

// NewStateMachine creates a StateMachine in the Connecting state
func NewStateMachine() *StateMachine {
	return &StateMachine{state: atomic.NewInt32(int32(Connecting))}
}

// Load returns the current state
func (m *StateMachine) Load() State {
	return State(m.state.Load())
}

// Transition moves to the given state and returns the previous one.
// It returns false when the machine is closed.
func (m *StateMachine) Transition(to State) (State, bool) {
	for {
		current := m.state.Load()
		if State(current) == Closed {
			return Closed, false
		}

		if m.state.CompareAndSwap(current, int32(to)) {
			return State(current), true
		}
	}
}

// Close moves to Closed. It returns true only for the call that closed the machine.
func (m *StateMachine) Close() bool {
	return m.state.Swap(int32(Closed)) != int32(Closed)
}
