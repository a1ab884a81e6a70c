package common

// WipeByteArray overwrites the slice contents with zeros. Used to clear
// password material once it has been consumed.
func WipeByteArray(b []byte) {
	for i := range b {
		b[i] = 0
	}
}
