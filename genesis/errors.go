package genesis

import "errors"

// ErrUnknownNetwork is returned by NewConstants for a Name other than
// Live, Beta, Dev, or Test.
var ErrUnknownNetwork = errors.New("genesis: unknown network")
