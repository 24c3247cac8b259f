package registry

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bigdatacesga/registry/pkg/kv"
)

func newTestRegistry(t *testing.T) (*Registry, kv.Gateway) {
	t.Helper()
	g, err := kv.NewBoltGateway(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { _ = g.Close() })
	return New(g, DefaultConfig()), g
}

const twoMasterTwoSlaveTemplate = `{
  "nodes": {
    "master1": {"status": "running", "type": "master"},
    "master2": {"status": "running", "type": "master"},
    "slave1": {"status": "running", "type": "slave"},
    "slave2": {"status": "running", "type": "slave"}
  },
  "services": {
    "master": {"status": "running"},
    "worker": {"status": "running"}
  }
}`

const optionSchemaJSON = `{
  "required": {"slaves.number": 4},
  "optional": {"slaves.cpu": 2},
  "advanced": {}
}`

func registerTestProduct(t *testing.T, r *Registry) {
	t.Helper()
	_, err := r.Register(context.Background(), "p", "v", "desc",
		twoMasterTwoSlaveTemplate, optionSchemaJSON, "", TemplateJSONJinja2)
	require.NoError(t, err)
}

// Scenario 1: allocate and dereference.
func TestInstantiateAllocatesAndDereferences(t *testing.T) {
	r, _ := newTestRegistry(t)
	registerTestProduct(t, r)

	c, err := r.Instantiate(context.Background(), "u", "p", "v", map[string]any{"slaves.number": 2})
	require.NoError(t, err)
	assert.Equal(t, "clusters/u/p/v/1", c.DN())

	nodes, err := c.Nodes(context.Background())
	require.NoError(t, err)
	assert.Len(t, nodes, 4)

	services, err := c.Services(context.Background())
	require.NoError(t, err)
	assert.Len(t, services, 2)
}

// Scenario 2: reject missing required option, no writes performed.
func TestInstantiateRejectsMissingRequired(t *testing.T) {
	r, g := newTestRegistry(t)
	registerTestProduct(t, r)

	_, err := r.Instantiate(context.Background(), "u", "p", "v", map[string]any{})
	require.ErrorIs(t, err, ErrInvalidOptions)

	_, err = g.Recurse(context.Background(), "clusters/u/p/v")
	assert.ErrorIs(t, err, kv.ErrNotFound)
}

// Scenario 3: monotonic ids.
func TestInstantiateIDsAreMonotonic(t *testing.T) {
	r, _ := newTestRegistry(t)
	registerTestProduct(t, r)

	c1, err := r.Instantiate(context.Background(), "u", "p", "v", map[string]any{"slaves.number": 2})
	require.NoError(t, err)
	assert.Equal(t, "clusters/u/p/v/1", c1.DN())

	c2, err := r.Instantiate(context.Background(), "u", "p", "v", map[string]any{"slaves.number": 2})
	require.NoError(t, err)
	assert.Equal(t, "clusters/u/p/v/2", c2.DN())
}

// Scenario 4: node disks round trip.
func TestNodeDisksRoundTrip(t *testing.T) {
	r, g := newTestRegistry(t)
	_ = r
	n := NewNode(g, "clusters/u/p/v/1/nodes/master1")

	disks := []DiskAttrs{
		{Name: "disk1", Type: "ssd", Mode: "rw", Origin: "/dev/sda", Destination: "/data"},
		{Name: "disk2", Type: "hdd", Mode: "ro", Origin: "/dev/sdb", Destination: "/backup"},
	}
	require.NoError(t, n.SetDisks(context.Background(), disks))

	got, err := n.Disks(context.Background())
	require.NoError(t, err)
	require.Len(t, got, 2)

	names := map[string]bool{}
	for _, d := range got {
		name, err := d.Name(context.Background())
		require.NoError(t, err)
		names[name] = true
	}
	assert.True(t, names["disk1"])
	assert.True(t, names["disk2"])
}

// Scenario 5: tags round trip with whitespace trimmed.
func TestNodeTagsRoundTripWithTrim(t *testing.T) {
	r, g := newTestRegistry(t)
	_ = r
	n := NewNode(g, "clusters/u/p/v/1/nodes/master1")

	require.NoError(t, n.SetTags(context.Background(), []string{"a", "b", "c"}))

	tags, err := n.Tags(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "c"}, tags)

	require.NoError(t, n.set(context.Background(), "tags", "x, y ,  z"))
	tags, err = n.Tags(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"x", "y", "z"}, tags)
}

// Scenario 6: query with missing prefix returns empty result, not an error.
func TestQueryClustersMissingPrefixIsEmpty(t *testing.T) {
	r, _ := newTestRegistry(t)

	clusters, err := r.QueryClusters(context.Background(), "", "", "")
	require.NoError(t, err)
	assert.Empty(t, clusters)

	products, err := r.QueryProducts(context.Background(), "", "")
	require.NoError(t, err)
	assert.Empty(t, products)
}

func TestRegisterAndGetProduct(t *testing.T) {
	r, _ := newTestRegistry(t)
	registerTestProduct(t, r)

	p := r.GetProduct("p", "v")
	name, err := p.Name(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "p", name)

	schema, err := p.Options(context.Background())
	require.NoError(t, err)
	assert.Equal(t, float64(4), schema.Required["slaves.number"])
}

func TestDeregisterRemovesSubtree(t *testing.T) {
	r, g := newTestRegistry(t)
	registerTestProduct(t, r)

	require.NoError(t, r.Deregister(context.Background(), "p", "v"))

	_, err := g.Get(context.Background(), "products/p/v/name")
	assert.ErrorIs(t, err, kv.ErrNotFound)
}

func TestDeinstantiateRemovesClusterSubtree(t *testing.T) {
	r, g := newTestRegistry(t)
	registerTestProduct(t, r)

	c, err := r.Instantiate(context.Background(), "u", "p", "v", map[string]any{"slaves.number": 2})
	require.NoError(t, err)

	require.NoError(t, r.Deinstantiate(context.Background(), "u", "p", "v", 1))

	_, err = g.Recurse(context.Background(), c.DN())
	assert.ErrorIs(t, err, kv.ErrNotFound)
}

// Rendered templates bind clusterid/instancename to the escaped-DN form
// (path.IDFromDN), not the bare trailing path segment.
func TestInstantiateBindsEscapedDNToClusterID(t *testing.T) {
	r, _ := newTestRegistry(t)

	const idTemplate = `{
	  "nodes": {
	    "n1": {"status": "running", "clustername": "{{ clusterid }}--{{ instancename }}"}
	  }
	}`
	const noOptions = `{"required": {}, "optional": {}, "advanced": {}}`

	_, err := r.Register(context.Background(), "idp", "v", "desc",
		idTemplate, noOptions, "", TemplateJSONJinja2)
	require.NoError(t, err)

	c, err := r.Instantiate(context.Background(), "u", "idp", "v", map[string]any{})
	require.NoError(t, err)
	assert.Equal(t, "clusters/u/idp/v/1", c.DN())

	n := NewNode(c.kv, c.DN()+"/nodes/n1")
	got, err := n.ClusterName(context.Background())
	require.NoError(t, err)

	want := "clusters--u--idp--v--1--clusters--u--idp--v--1"
	assert.Equal(t, want, got)
}

func TestClusterSetIDIsReadOnly(t *testing.T) {
	r, g := newTestRegistry(t)
	_ = r
	c := NewCluster(g, "clusters/u/p/v/1")
	err := c.SetID(context.Background(), "2")
	assert.ErrorIs(t, err, ErrReadOnlyAttribute)
}
