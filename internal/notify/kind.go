// Package notify classifies request lifecycle notifications and fans them out to agents.
package notify

import (
	"fmt"
	"strings"
)

// Kind is a notification type. Kinds are bit flags so agents can hold an enable mask.
type Kind uint32

const (
	KindNone              Kind = 0
	KindMediaPending      Kind = 2
	KindMediaApproved     Kind = 4
	KindMediaAvailable    Kind = 8
	KindMediaFailed       Kind = 16
	KindTest              Kind = 32
	KindMediaDeclined     Kind = 64
	KindMediaAutoApproved Kind = 128
)

var kindNames = map[Kind]string{
	KindMediaPending:      "media_pending",
	KindMediaApproved:     "media_approved",
	KindMediaAvailable:    "media_available",
	KindMediaFailed:       "media_failed",
	KindTest:              "test",
	KindMediaDeclined:     "media_declined",
	KindMediaAutoApproved: "media_auto_approved",
}

// AllKinds is the mask with every kind enabled.
const AllKinds = KindMediaPending | KindMediaApproved | KindMediaAvailable | KindMediaFailed |
	KindTest | KindMediaDeclined | KindMediaAutoApproved

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	if k == KindNone {
		return "none"
	}
	return fmt.Sprintf("kind(%d)", uint32(k))
}

// Includes reports whether the mask enables k.
func (k Kind) Includes(kind Kind) bool {
	return kind != KindNone && k&kind == kind
}

// ParseKinds builds a mask from kind names. An empty list enables every kind.
func ParseKinds(names []string) (Kind, error) {
	if len(names) == 0 {
		return AllKinds, nil
	}
	var mask Kind
	for _, name := range names {
		name = strings.ToLower(strings.TrimSpace(name))
		found := false
		for k, n := range kindNames {
			if n == name {
				mask |= k
				found = true
				break
			}
		}
		if !found {
			return KindNone, fmt.Errorf("unknown notification kind %q", name)
		}
	}
	return mask, nil
}
