package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/shogo82148/binlogtail/codec"
)

// Exit codes per spec.md §6/§7: 0 success, 1 I/O error, 2 decode error.
const (
	exitOK        = 0
	exitIOError   = 1
	exitDecodeErr = 2
)

// fail prints a single-line "<path-or-seq>: <Kind>: <message>" diagnostic
// and exits with the code matching the error's nature: a *codec.Error maps
// to exitDecodeErr, everything else (file open failures, network errors,
// etc.) maps to exitIOError.
func fail(subject string, err error) {
	var cerr *codec.Error
	if errors.As(err, &cerr) {
		fmt.Fprintf(os.Stderr, "%s: %s: %s\n", subject, cerr.Kind, cerr.Error())
		os.Exit(exitDecodeErr)
	}
	fmt.Fprintf(os.Stderr, "%s: IOError: %v\n", subject, err)
	os.Exit(exitIOError)
}
