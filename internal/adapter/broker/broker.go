// Package broker carries purchase orders to the fulfillment side over
// a request/reply pair of Kafka topics. Requests go out keyed by a
// correlation id; the matching response resolves the waiting caller.
package broker

import (
	"errors"
	"fmt"
	"strings"
)

var ErrNotConnected = errors.New("broker is not connected")

type Encoder interface {
	Encode(v any) ([]byte, error)
}

type Decoder interface {
	Decode(b []byte, v any) error
}

func makeOp(s ...string) string {
	return strings.Join(s, ".")
}

func opErr(err error, op ...string) error {
	return fmt.Errorf("%s: %w", makeOp(op...), err)
}

func handleFetchErrs(each func(func(string, int32, error))) error {
	var msgs []string
	each(func(t string, p int32, err error) {
		if err != nil {
			msgs = append(msgs, fmt.Sprintf("topic %q partition %d: %q", t, p, err))
		}
	})
	if len(msgs) != 0 {
		return errors.New(strings.Join(msgs, "; "))
	}
	return nil
}
