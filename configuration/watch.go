// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package configuration

import (
	"github.com/fsnotify/fsnotify"

	"github.com/bitmark-inc/logger"
)

// WatchForChanges - watch configurationFileName for edits and invoke
// onChange whenever it is written or replaced. Genesis parameters and
// on-disk paths are fixed for the life of a running node, so this does
// not hot-reload the Configuration; onChange exists for an operator to
// log a "restart required" notice, matching the way the teacher treats
// its own config file as boot-time-only.
//
// The returned stop function closes the underlying watcher; callers
// should defer it.
func WatchForChanges(configurationFileName string, onChange func()) (stop func(), err error) {
	watcher, err := fsnotify.NewWatcher()
	if nil != err {
		return nil, err
	}

	log := logger.New("config")

	if err := watcher.Add(configurationFileName); nil != err {
		watcher.Close()
		return nil, err
	}

	done := make(chan struct{})
	go func() {
		for {
			select {
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) != 0 {
					log.Warnf("configuration file %s changed on disk; restart to apply", configurationFileName)
					onChange()
				}
			case werr, ok := <-watcher.Errors:
				if !ok {
					return
				}
				log.Errorf("configuration watcher: %s", werr)
			case <-done:
				return
			}
		}
	}()

	return func() {
		close(done)
		watcher.Close()
	}, nil
}
