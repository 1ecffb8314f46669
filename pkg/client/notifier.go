package client

import (
	"fmt"
	"io"
)

// NoticeKind distinguishes success and failure notices.
type NoticeKind string

const (
	NoticeSuccess NoticeKind = "success"
	NoticeError   NoticeKind = "error"
)

// Notifier surfaces short, transient messages to the user.
type Notifier interface {
	Success(message string)
	Error(message string, err error)
}

// NotifierFunc adapts a plain function to Notifier.
type NotifierFunc func(kind NoticeKind, message string, err error)

func (f NotifierFunc) Success(message string) {
	if f != nil {
		f(NoticeSuccess, message, nil)
	}
}

func (f NotifierFunc) Error(message string, err error) {
	if f != nil {
		f(NoticeError, message, err)
	}
}

// WriterNotifier prints one line per notice.
type WriterNotifier struct {
	Out     io.Writer
	Verbose bool
}

func (w WriterNotifier) Success(message string) {
	if w.Out == nil {
		return
	}
	fmt.Fprintf(w.Out, "ok: %s\n", message)
}

func (w WriterNotifier) Error(message string, err error) {
	if w.Out == nil {
		return
	}
	if w.Verbose && err != nil {
		fmt.Fprintf(w.Out, "error: %s (%v)\n", message, err)
		return
	}
	fmt.Fprintf(w.Out, "error: %s\n", message)
}

type discardNotifier struct{}

func (discardNotifier) Success(string)       {}
func (discardNotifier) Error(string, error) {}
