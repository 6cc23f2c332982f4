package utils

import "strings"

// ElfHash is the classic PJW/ELF string hash the animation containers use
// to identify joints independently of name storage.
func ElfHash(str string) uint32 {
	var hash uint32
	for i := 0; i < len(str); i++ {
		hash = (hash << 4) + uint32(str[i])
		if g := hash & 0xF0000000; g != 0 {
			hash ^= g >> 24
			hash &^= g
		}
	}
	return hash
}

// JointNameHash hashes a bone name the way the containers do: names are
// lowercased before hashing, so "L_Hand" and "l_hand" collide on purpose.
func JointNameHash(name string) uint32 {
	return ElfHash(strings.ToLower(name))
}
