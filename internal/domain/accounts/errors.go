package accounts

import "errors"

var ErrAccountNotFound = errors.New("account not found")
