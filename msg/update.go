package msg

import (
	"fmt"

	"github.com/bgpfix/routed/json"
	"github.com/bgpfix/routed/rib"
)

// Prefix identifies a route by its network/netmask pair on the wire.
type Prefix = rib.Prefix

// TableEntry is one line of a "table" dump reply.
type TableEntry struct {
	Network string
	Netmask string
	Peer    string
}

// Update is the "update" message payload.
type Update struct {
	Network    string
	Netmask    string
	LocalPref  int
	SelfOrigin bool
	ASPath     []int
	Origin     rib.Origin
}

// ToJSON appends u's JSON object representation to dst.
func (u *Update) ToJSON(dst []byte) []byte {
	dst = append(dst, '{')
	dst = append(dst, `"network":`...)
	dst = json.String(dst, u.Network)
	dst = append(dst, `,"netmask":`...)
	dst = json.String(dst, u.Netmask)
	dst = append(dst, `,"localpref":`...)
	dst = json.Int(dst, u.LocalPref)
	dst = append(dst, `,"selfOrigin":`...)
	dst = json.Bool(dst, u.SelfOrigin)
	dst = append(dst, `,"ASPath":[`...)
	for i, asn := range u.ASPath {
		if i > 0 {
			dst = append(dst, ',')
		}
		dst = json.Int(dst, asn)
	}
	dst = append(dst, `],"origin":`...)
	dst = json.String(dst, u.Origin.String())
	dst = append(dst, '}')
	return dst
}

// FromJSON parses u's fields from a JSON "update" payload object.
func (u *Update) FromJSON(src []byte) error {
	var asPathErr error
	err := json.ObjectEach(src, func(key string, val []byte, typ json.Type) error {
		switch key {
		case "network":
			u.Network = json.SQ(val)
		case "netmask":
			u.Netmask = json.SQ(val)
		case "localpref":
			n, err := json.UnInt(val)
			if err != nil {
				return err
			}
			u.LocalPref = n
		case "selfOrigin":
			b, err := json.UnBool(val)
			if err != nil {
				return err
			}
			u.SelfOrigin = b
		case "ASPath":
			asPathErr = json.ArrayEach(val, func(_ int, v []byte, _ json.Type) error {
				n, err := json.UnInt(v)
				if err != nil {
					return err
				}
				u.ASPath = append(u.ASPath, n)
				return nil
			})
		case "origin":
			u.Origin = rib.ParseOrigin(json.SQ(val))
		}
		return nil
	})
	if err != nil {
		return err
	}
	if asPathErr != nil {
		return asPathErr
	}
	if u.Network == "" || u.Netmask == "" {
		return fmt.Errorf("update: missing network/netmask")
	}
	return nil
}

// Route builds the rib.Route this update describes.
func (u *Update) Route() (*rib.Route, error) {
	return rib.NewRoute(u.Network, u.Netmask, u.LocalPref, u.SelfOrigin, u.ASPath, u.Origin)
}
