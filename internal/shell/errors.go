package shell

import "errors"

// ErrClosed is returned by Do after Close.
var ErrClosed = errors.New("shell closed")
