package path

import "testing"

func TestClusterDN(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
		ok    bool
	}{
		{"services node child", "clusters/u/p/v/1/services/web/nodes/n1", "clusters/u/p/v/1", true},
		{"node service child", "clusters/u/p/v/1/nodes/n1/services/web", "clusters/u/p/v/1", true},
		{"services direct", "clusters/u/p/v/1/services", "clusters/u/p/v/1", true},
		{"nodes direct", "clusters/u/p/v/1/nodes", "clusters/u/p/v/1", true},
		{"trailing slash stripped", "clusters/u/p/v/1/nodes/", "clusters/u/p/v/1", true},
		{"no match", "clusters/u/p/v/1", "", false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := ClusterDN(tc.input)
			if ok != tc.ok || got != tc.want {
				t.Fatalf("ClusterDN(%q) = (%q, %v), want (%q, %v)", tc.input, got, ok, tc.want, tc.ok)
			}
		})
	}
}

func TestClusterDNIdempotent(t *testing.T) {
	x := "clusters/u/p/v/1/nodes/n1/disks/d1"
	first, ok := ClusterDN(x)
	if !ok {
		t.Fatalf("ClusterDN(%q) did not match", x)
	}
	second, ok := ClusterDN(first + "/x")
	if !ok || second != first {
		t.Fatalf("ClusterDN not idempotent: first=%q second=%q ok=%v", first, second, ok)
	}
}

func TestNodeServiceDiskNetworkDN(t *testing.T) {
	nodeP := "clusters/u/p/v/1/nodes/n1/disks/d1"
	if dn, ok := NodeDN(nodeP); !ok || dn != "clusters/u/p/v/1/nodes/n1" {
		t.Fatalf("NodeDN = (%q, %v)", dn, ok)
	}
	if dn, ok := DiskDN(nodeP); !ok || dn != nodeP {
		t.Fatalf("DiskDN = (%q, %v)", dn, ok)
	}
	svcP := "clusters/u/p/v/1/services/web/nodes/n1"
	if dn, ok := ServiceDN(svcP); !ok || dn != "clusters/u/p/v/1/services/web" {
		t.Fatalf("ServiceDN = (%q, %v)", dn, ok)
	}
	netP := "clusters/u/p/v/1/nodes/n1/networks/eth0"
	if dn, ok := NetworkDN(netP); !ok || dn != netP {
		t.Fatalf("NetworkDN = (%q, %v)", dn, ok)
	}
}

func TestLastSegment(t *testing.T) {
	if got := LastSegment("a/b/c/"); got != "c" {
		t.Fatalf("LastSegment = %q, want c", got)
	}
	if got := LastSegment("solo"); got != "solo" {
		t.Fatalf("LastSegment = %q, want solo", got)
	}
}

func TestIDFromDNBijective(t *testing.T) {
	inputs := []string{
		"clusters/u/p/v/1",
		"products/hadoop/2.0",
		"clusters/u/my.product/v1/3/nodes/n1",
	}
	for _, x := range inputs {
		id := IDFromDN(x)
		back := DNFromID(id)
		if back != x {
			t.Fatalf("round trip failed: IDFromDN(%q) = %q, DNFromID(...) = %q", x, id, back)
		}
	}
}

func TestJoin(t *testing.T) {
	if got := Join("clusters/u/p/v", "1", "nodes", "n1"); got != "clusters/u/p/v/1/nodes/n1" {
		t.Fatalf("Join = %q", got)
	}
	if got := Join("a/", "", "/b/"); got != "a/b" {
		t.Fatalf("Join with empties = %q", got)
	}
}
