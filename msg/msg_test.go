package msg

import (
	"testing"

	"github.com/bgpfix/routed/rib"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeUpdate(t *testing.T) {
	raw := []byte(`{
		"src": "192.168.0.1", "dst": "192.168.0.2", "type": "update",
		"msg": {
			"network": "192.168.0.0", "netmask": "255.255.255.0",
			"localpref": 100, "selfOrigin": false, "ASPath": [1, 2, 3], "origin": "IGP"
		}
	}`)

	m, err := Decode(raw)
	require.NoError(t, err)
	assert.Equal(t, UPDATE, m.Type)
	assert.Equal(t, "192.168.0.1", m.Src)
	assert.Equal(t, "192.168.0.2", m.Dst)
	require.NotNil(t, m.Update)
	assert.Equal(t, "192.168.0.0", m.Update.Network)
	assert.Equal(t, 100, m.Update.LocalPref)
	assert.Equal(t, []int{1, 2, 3}, m.Update.ASPath)
	assert.Equal(t, rib.IGP, m.Update.Origin)
}

func TestEncodeDecodeRoundtripUpdate(t *testing.T) {
	u := &Update{
		Network: "10.0.0.0", Netmask: "255.0.0.0",
		LocalPref: 50, SelfOrigin: true, ASPath: []int{7}, Origin: rib.EGP,
	}
	out := NewUpdate("1.2.3.1", "1.2.3.2", u)
	raw := Encode(out)

	m, err := Decode(raw)
	require.NoError(t, err)
	assert.Equal(t, UPDATE, m.Type)
	assert.Equal(t, u.Network, m.Update.Network)
	assert.Equal(t, u.SelfOrigin, m.Update.SelfOrigin)
	assert.Equal(t, u.ASPath, m.Update.ASPath)
	assert.Equal(t, u.Origin, m.Update.Origin)
}

func TestDecodeRevoke(t *testing.T) {
	raw := []byte(`{"src":"a","dst":"b","type":"revoke","msg":[{"network":"1.2.3.0","netmask":"255.255.255.0"}]}`)
	m, err := Decode(raw)
	require.NoError(t, err)
	assert.Equal(t, REVOKE, m.Type)
	require.Len(t, m.Revoke, 1)
	assert.Equal(t, "1.2.3.0", m.Revoke[0].Network)
}

func TestDecodeDataIsVerbatimOpaque(t *testing.T) {
	raw := []byte(`{"src":"a","dst":"b","type":"data","msg":{"payload":"hello"}}`)
	m, err := Decode(raw)
	require.NoError(t, err)
	assert.Equal(t, DATA, m.Type)
	assert.Equal(t, raw, m.Wire())
}

func TestDecodeUnknownTypeIsFatal(t *testing.T) {
	raw := []byte(`{"src":"a","dst":"b","type":"bogus","msg":{}}`)
	_, err := Decode(raw)
	assert.ErrorIs(t, err, ErrUnknownType)
}

func TestDecodeMissingTypeIsFatal(t *testing.T) {
	raw := []byte(`{"src":"a","dst":"b","msg":{}}`)
	_, err := Decode(raw)
	assert.ErrorIs(t, err, ErrMalformed)
}

func TestEncodeTable(t *testing.T) {
	out := NewTable("1.2.3.1", "1.2.3.2", []TableEntry{
		{Network: "10.0.0.0", Netmask: "255.0.0.0", Peer: "1.2.3.2"},
	})
	raw := Encode(out)

	m, err := Decode(raw)
	require.NoError(t, err)
	assert.Equal(t, TABLE, m.Type)
	require.Len(t, m.Table, 1)
	assert.Equal(t, "10.0.0.0", m.Table[0].Network)
	assert.Equal(t, "1.2.3.2", m.Table[0].Peer)
}

func TestEncodeNoRoute(t *testing.T) {
	out := NewNoRoute("1.2.3.1", "1.2.3.2")
	raw := Encode(out)

	m, err := Decode(raw)
	require.NoError(t, err)
	assert.Equal(t, NOROUTE, m.Type)
}
