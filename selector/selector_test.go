package selector

import (
	"testing"

	"github.com/bgpfix/routed/ipaddr"
	"github.com/bgpfix/routed/neighbor"
	"github.com/bgpfix/routed/rib"
	"github.com/bgpfix/routed/transport"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTable(t *testing.T, specs []neighbor.Spec) *neighbor.Table {
	t.Helper()
	nt, err := neighbor.NewTable(specs, func(addr string) (transport.Conn, error) {
		a, _ := transport.NewPipe()
		return a, nil
	})
	require.NoError(t, err)
	return nt
}

func mustRoute(t *testing.T, network, netmask string, localPref int, self bool, asPath []int, origin rib.Origin) *rib.Route {
	t.Helper()
	r, err := rib.NewRoute(network, netmask, localPref, self, asPath, origin)
	require.NoError(t, err)
	return r
}

func mustParse(t *testing.T, s string) uint32 {
	t.Helper()
	v, err := ipaddr.Parse(s)
	require.NoError(t, err)
	return v
}

// S2 — relationship filter: a peer's route is not available to a provider.
func TestSelect_RelationshipFilter(t *testing.T) {
	nt := newTable(t, []neighbor.Spec{
		{Addr: "192.168.0.2", Relation: neighbor.PEER},
		{Addr: "192.168.1.2", Relation: neighbor.CUSTOMER},
		{Addr: "172.16.0.2", Relation: neighbor.PROVIDER},
	})

	rb := rib.New()
	rb.Insert("192.168.0.2", mustRoute(t, "10.0.0.0", "255.0.0.0", 100, false, nil, rib.IGP))

	daddr := mustParse(t, "10.0.0.1")

	_, ok := Select(nt, rb, "172.16.0.2", daddr)
	assert.False(t, ok, "peer route must not be forwarded on behalf of a provider")

	n, ok := Select(nt, rb, "192.168.1.2", daddr)
	require.True(t, ok)
	assert.Equal(t, "192.168.0.2", n.Addr)
}

// S3 — tie-break cascade produces a full tie (equal local-pref, self-origin,
// AS-path length and origin), and the relationship filter — not the
// stage-6 lowest-neighbor-IP ordering that would otherwise decide it —
// picks the winner, because the requester is not a customer.
func TestSelect_TieBreakCascadeThenRelationshipFilter(t *testing.T) {
	nt := newTable(t, []neighbor.Spec{
		{Addr: "1.1.1.2", Relation: neighbor.PEER},     // lower IP, would win stage 6
		{Addr: "2.2.2.2", Relation: neighbor.CUSTOMER}, // higher IP, but a customer
		{Addr: "3.3.3.2", Relation: neighbor.PROVIDER}, // source
	})

	rb := rib.New()
	rb.Insert("1.1.1.2", mustRoute(t, "10.0.0.0", "255.0.0.0", 100, false, []int{1, 2}, rib.IGP))
	rb.Insert("2.2.2.2", mustRoute(t, "10.0.0.0", "255.0.0.0", 100, false, []int{1, 2}, rib.IGP))

	daddr := mustParse(t, "10.0.0.1")
	n, ok := Select(nt, rb, "3.3.3.2", daddr)
	require.True(t, ok)
	assert.Equal(t, "2.2.2.2", n.Addr, "relationship filter picks the customer over the lower-IP peer")
}

// S4 — longest prefix match among routes from the same neighbor.
func TestSelect_LongestPrefixMatch(t *testing.T) {
	nt := newTable(t, []neighbor.Spec{
		{Addr: "2.2.2.2", Relation: neighbor.CUSTOMER},
		{Addr: "3.3.3.2", Relation: neighbor.CUSTOMER},
	})

	rb := rib.New()
	rb.Insert("2.2.2.2", mustRoute(t, "10.0.0.0", "255.0.0.0", 100, false, nil, rib.IGP))
	rb.Insert("2.2.2.2", mustRoute(t, "10.0.0.0", "255.255.255.0", 100, false, nil, rib.IGP))

	daddr := mustParse(t, "10.0.0.5")
	n, ok := Select(nt, rb, "3.3.3.2", daddr)
	require.True(t, ok)
	assert.Equal(t, "2.2.2.2", n.Addr)
}

func TestSelect_NoCandidatesIsNoRoute(t *testing.T) {
	nt := newTable(t, []neighbor.Spec{{Addr: "1.1.1.2", Relation: neighbor.CUSTOMER}})
	rb := rib.New()
	_, ok := Select(nt, rb, "1.1.1.2", mustParse(t, "8.8.8.8"))
	assert.False(t, ok)
}

func TestSelect_HighestLocalPrefWins(t *testing.T) {
	nt := newTable(t, []neighbor.Spec{
		{Addr: "1.1.1.2", Relation: neighbor.CUSTOMER},
		{Addr: "2.2.2.2", Relation: neighbor.CUSTOMER},
		{Addr: "3.3.3.2", Relation: neighbor.CUSTOMER},
	})
	rb := rib.New()
	rb.Insert("1.1.1.2", mustRoute(t, "10.0.0.0", "255.0.0.0", 50, false, nil, rib.IGP))
	rb.Insert("2.2.2.2", mustRoute(t, "10.0.0.0", "255.0.0.0", 200, false, nil, rib.IGP))

	n, ok := Select(nt, rb, "3.3.3.2", mustParse(t, "10.0.0.1"))
	require.True(t, ok)
	assert.Equal(t, "2.2.2.2", n.Addr)
}

func TestSelect_SelfOriginPreferred(t *testing.T) {
	nt := newTable(t, []neighbor.Spec{
		{Addr: "1.1.1.2", Relation: neighbor.CUSTOMER},
		{Addr: "2.2.2.2", Relation: neighbor.CUSTOMER},
		{Addr: "3.3.3.2", Relation: neighbor.CUSTOMER},
	})
	rb := rib.New()
	rb.Insert("1.1.1.2", mustRoute(t, "10.0.0.0", "255.0.0.0", 100, false, nil, rib.IGP))
	rb.Insert("2.2.2.2", mustRoute(t, "10.0.0.0", "255.0.0.0", 100, true, nil, rib.IGP))

	n, ok := Select(nt, rb, "3.3.3.2", mustParse(t, "10.0.0.1"))
	require.True(t, ok)
	assert.Equal(t, "2.2.2.2", n.Addr)
}

func TestSelect_OriginRank(t *testing.T) {
	nt := newTable(t, []neighbor.Spec{
		{Addr: "1.1.1.2", Relation: neighbor.CUSTOMER},
		{Addr: "2.2.2.2", Relation: neighbor.CUSTOMER},
		{Addr: "3.3.3.2", Relation: neighbor.CUSTOMER},
	})
	rb := rib.New()
	rb.Insert("1.1.1.2", mustRoute(t, "10.0.0.0", "255.0.0.0", 100, false, nil, rib.UNK))
	rb.Insert("2.2.2.2", mustRoute(t, "10.0.0.0", "255.0.0.0", 100, false, nil, rib.IGP))

	n, ok := Select(nt, rb, "3.3.3.2", mustParse(t, "10.0.0.1"))
	require.True(t, ok)
	assert.Equal(t, "2.2.2.2", n.Addr)
}

func TestSelect_LowestNeighborIPBreaksFinalTie(t *testing.T) {
	nt := newTable(t, []neighbor.Spec{
		{Addr: "5.5.5.2", Relation: neighbor.CUSTOMER},
		{Addr: "1.1.1.2", Relation: neighbor.CUSTOMER},
		{Addr: "9.9.9.2", Relation: neighbor.CUSTOMER},
	})
	rb := rib.New()
	rb.Insert("5.5.5.2", mustRoute(t, "10.0.0.0", "255.0.0.0", 100, false, nil, rib.IGP))
	rb.Insert("1.1.1.2", mustRoute(t, "10.0.0.0", "255.0.0.0", 100, false, nil, rib.IGP))

	n, ok := Select(nt, rb, "9.9.9.2", mustParse(t, "10.0.0.1"))
	require.True(t, ok)
	assert.Equal(t, "1.1.1.2", n.Addr)
}
