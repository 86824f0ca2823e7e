package msg

import "github.com/bgpfix/routed/json"

func decodeTable(src []byte) ([]TableEntry, error) {
	var out []TableEntry
	err := json.ArrayEach(src, func(_ int, val []byte, _ json.Type) error {
		var e TableEntry
		if err := json.ObjectEach(val, func(key string, v []byte, _ json.Type) error {
			switch key {
			case "network":
				e.Network = json.SQ(v)
			case "netmask":
				e.Netmask = json.SQ(v)
			case "peer":
				e.Peer = json.SQ(v)
			}
			return nil
		}); err != nil {
			return err
		}
		out = append(out, e)
		return nil
	})
	return out, err
}

func encodeTable(dst []byte, entries []TableEntry) []byte {
	dst = append(dst, '[')
	for i, e := range entries {
		if i > 0 {
			dst = append(dst, ',')
		}
		dst = append(dst, `{"network":`...)
		dst = json.String(dst, e.Network)
		dst = append(dst, `,"netmask":`...)
		dst = json.String(dst, e.Netmask)
		dst = append(dst, `,"peer":`...)
		dst = json.String(dst, e.Peer)
		dst = append(dst, '}')
	}
	dst = append(dst, ']')
	return dst
}
