package msg

import "github.com/bgpfix/routed/json"

func decodeRevoke(src []byte) ([]Prefix, error) {
	var out []Prefix
	err := json.ArrayEach(src, func(_ int, val []byte, _ json.Type) error {
		var p Prefix
		if err := json.ObjectEach(val, func(key string, v []byte, _ json.Type) error {
			switch key {
			case "network":
				p.Network = json.SQ(v)
			case "netmask":
				p.Netmask = json.SQ(v)
			}
			return nil
		}); err != nil {
			return err
		}
		out = append(out, p)
		return nil
	})
	return out, err
}

func encodeRevoke(dst []byte, prefixes []Prefix) []byte {
	dst = append(dst, '[')
	for i, p := range prefixes {
		if i > 0 {
			dst = append(dst, ',')
		}
		dst = append(dst, `{"network":`...)
		dst = json.String(dst, p.Network)
		dst = append(dst, `,"netmask":`...)
		dst = json.String(dst, p.Netmask)
		dst = append(dst, '}')
	}
	dst = append(dst, ']')
	return dst
}
