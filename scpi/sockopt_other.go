//go:build !unix

package scpi

import "syscall"

// reuseAddrControl is a no-op where golang.org/x/sys/unix is unavailable.
func reuseAddrControl(_, _ string, _ syscall.RawConn) error {
	return nil
}
