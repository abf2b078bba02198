//go:build unix

package main

import "golang.org/x/sys/unix"

// detachAttr puts the collector in its own session so it outlives the shell.
func detachAttr() *unix.SysProcAttr {
	return &unix.SysProcAttr{Setsid: true}
}
