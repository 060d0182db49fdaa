package testutil

import (
	"math/rand"

	gorandom "github.com/mazen160/go-random"
)

// RandomString generates a random lowercase string given the pseudo random source.
func RandomString(rndm *rand.Rand, length int) string {
	str := make([]rune, length)
	for i := 0; i < length; i++ {
		str[i] = 'a' + rune(rndm.Intn(26))
	}
	return string(str)
}

// RandomSlug generates a random url-safe identifier, for tests
// that don't care about reproducibility.
func RandomSlug(length int) string {
	s, err := gorandom.String(length)
	if err != nil {
		panic(err)
	}
	return s
}
