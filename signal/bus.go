// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package signal

import (
	"encoding/json"
	"sync"

	zmq "github.com/pebbe/zmq4"

	"github.com/bitmark-inc/logger"
)

// Kind - the name of one of the six consensus signals
type Kind string

const (
	AcceptedBlockHeader  Kind = "accepted_block_header"
	AcceptedBlock        Kind = "accepted_block"
	AcceptedTransaction  Kind = "accepted_transaction"
	AppliedTransaction   Kind = "applied_transaction"
	AcceptedConfirmation Kind = "accepted_confirmation"
	IrreversibleBlock    Kind = "irreversible_block"
)

// Handler - an in-process subscriber. It must not return an error:
// there is nothing a signal delivery failure could do except be
// logged, since subscribers never influence consensus.
type Handler func(kind Kind, payload interface{})

// Bus - fans a signal out to in-process subscribers and, if bound, a
// zmq PUB socket. The zero value is usable; Close is only needed once
// BindPublisher has succeeded.
type Bus struct {
	mu sync.RWMutex

	log         *logger.L
	subscribers []Handler
	socket      *zmq.Socket
}

// New - an empty bus with no publisher socket bound
func New() *Bus {
	return &Bus{log: logger.New("signal")}
}

// Subscribe - register an in-process handler, called for every signal
func (b *Bus) Subscribe(h Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.subscribers = append(b.subscribers, h)
}

// BindPublisher - open a zmq PUB socket and bind it to every address;
// every subsequent Emit is also published as a two-part
// [topic, json-payload] message
func (b *Bus) BindPublisher(addresses []string) error {
	socket, err := zmq.NewSocket(zmq.PUB)
	if nil != err {
		return err
	}
	socket.SetLinger(0)

	for _, address := range addresses {
		if err := socket.Bind(address); nil != err {
			socket.Close()
			return err
		}
	}

	b.mu.Lock()
	b.socket = socket
	b.mu.Unlock()
	return nil
}

// Close - release the publisher socket, if bound
func (b *Bus) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if nil == b.socket {
		return nil
	}
	err := b.socket.Close()
	b.socket = nil
	return err
}

// Emit - deliver kind/payload to every subscriber and the publisher
// socket. A subscriber panic is recovered and logged; a publish
// failure is logged. Neither is returned to the caller.
func (b *Bus) Emit(kind Kind, payload interface{}) {
	b.mu.RLock()
	subscribers := make([]Handler, len(b.subscribers))
	copy(subscribers, b.subscribers)
	socket := b.socket
	b.mu.RUnlock()

	for _, h := range subscribers {
		b.deliver(h, kind, payload)
	}

	if nil != socket {
		b.publish(socket, kind, payload)
	}
}

func (b *Bus) deliver(h Handler, kind Kind, payload interface{}) {
	defer func() {
		if r := recover(); nil != r {
			b.log.Errorf("signal subscriber panicked on %s: %v", kind, r)
		}
	}()
	h(kind, payload)
}

func (b *Bus) publish(socket *zmq.Socket, kind Kind, payload interface{}) {
	packed, err := json.Marshal(payload)
	if nil != err {
		b.log.Errorf("signal %s: could not marshal payload: %v", kind, err)
		return
	}
	if _, err := socket.SendMessage(string(kind), packed); nil != err {
		b.log.Errorf("signal %s: publish failed: %v", kind, err)
	}
}
