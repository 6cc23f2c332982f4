package utils

import "testing"

var hashTests = []struct {
	in  string
	out uint32
}{
	{"", 0x0},
	{"root", 0x00079664},
	{"pelvis", 0x076c3d03},
	{"l_hand", 0x0725e844},
	{"r_hand", 0x0785e844},
	{"spine", 0x007a7045},
	{"head", 0x0006eb74},
	{"weapon", 0x07db875e},
	{"c_buffbone_glb_overhead_loc", 0x023d2bc3},
}

func TestElfHash(t *testing.T) {
	for _, test := range hashTests {
		result := ElfHash(test.in)
		if result != test.out {
			t.Errorf("ElfHash(%q)=0x%x; expected 0x%x", test.in, result, test.out)
		}
	}
}

func TestJointNameHashIsCaseInsensitive(t *testing.T) {
	if JointNameHash("L_Hand") != JointNameHash("l_hand") {
		t.Errorf("JointNameHash must lowercase before hashing")
	}
	if JointNameHash("Root") != 0x00079664 {
		t.Errorf("JointNameHash(Root)=0x%x; expected 0x00079664", JointNameHash("Root"))
	}
}
