package common

import (
	"errors"
	"strings"
)

var ErrUnknownMethod = errors.New("unknown accounting method")

// AccountingMethod selects how sell fills are costed against open lots.
type AccountingMethod int

const (
	// WAP blends every open lot into one weighted-average cost and shrinks
	// all lots proportionally.
	WAP AccountingMethod = iota
	// FIFO consumes lots oldest-first.
	FIFO
	// LIFO consumes lots newest-first.
	LIFO
)

var methodName = map[AccountingMethod]string{
	WAP:  "WAP",
	FIFO: "FIFO",
	LIFO: "LIFO",
}

func (m AccountingMethod) String() string {
	return methodName[m]
}

// ParseMethod maps a config/journal string onto an AccountingMethod.
func ParseMethod(s string) (AccountingMethod, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "WAP":
		return WAP, nil
	case "FIFO":
		return FIFO, nil
	case "LIFO":
		return LIFO, nil
	}
	return WAP, ErrUnknownMethod
}
